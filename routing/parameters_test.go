package routing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvroute/routing"
)

func TestDefaultSearchParameters(t *testing.T) {
	p := routing.DefaultSearchParameters()
	require.NoError(t, p.Validate())
	assert.Equal(t, routing.Automatic, p.FirstSolutionStrategy)
	assert.Equal(t, routing.AutomaticMetaheuristic, p.LocalSearchMetaheuristic)
	assert.Equal(t, routing.AllOperators(), p.Operators)
	assert.Zero(t, p.TimeLimit)
	assert.Zero(t, p.SolutionLimit)
}

func TestSearchParameters_Resolve(t *testing.T) {
	p := routing.DefaultSearchParameters()
	fs, mh := p.Resolve()
	assert.Equal(t, routing.PathCheapestArc, fs)
	assert.Equal(t, routing.GreedyDescent, mh)

	p.FirstSolutionStrategy = routing.LocalCheapestInsertion
	p.LocalSearchMetaheuristic = routing.SimulatedAnnealing
	fs, mh = p.Resolve()
	assert.Equal(t, routing.LocalCheapestInsertion, fs)
	assert.Equal(t, routing.SimulatedAnnealing, mh)
}

func TestSearchParameters_Clone(t *testing.T) {
	p := routing.DefaultSearchParameters()
	c := p.Clone()
	c.TimeLimit = time.Second
	c.Operators.TwoOpt = false
	assert.Zero(t, p.TimeLimit)
	assert.True(t, p.Operators.TwoOpt)

	var nilParams *routing.SearchParameters
	assert.Equal(t, routing.DefaultSearchParameters(), nilParams.Clone())
}

func TestSearchParameters_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*routing.SearchParameters)
	}{
		{"negative time limit", func(p *routing.SearchParameters) { p.TimeLimit = -time.Second }},
		{"negative solution limit", func(p *routing.SearchParameters) { p.SolutionLimit = -1 }},
		{"negative iteration limit", func(p *routing.SearchParameters) { p.IterationLimit = -1 }},
		{"unknown strategy", func(p *routing.SearchParameters) { p.FirstSolutionStrategy = 99 }},
		{"unknown metaheuristic", func(p *routing.SearchParameters) { p.LocalSearchMetaheuristic = -1 }},
		{"negative temperature", func(p *routing.SearchParameters) { p.InitialTemperature = -1 }},
		{"cooling above one", func(p *routing.SearchParameters) { p.CoolingFactor = 1.5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := routing.DefaultSearchParameters()
			tc.mutate(p)
			require.ErrorIs(t, p.Validate(), routing.ErrInvalidParameters)
		})
	}

	// A zero-value struct is valid: zero annealing knobs select the defaults.
	require.NoError(t, (&routing.SearchParameters{}).Validate())
}

func TestParseFirstSolutionStrategy(t *testing.T) {
	for _, name := range []string{"PATH_CHEAPEST_ARC", "path-cheapest-arc", " path_cheapest_arc "} {
		fs, err := routing.ParseFirstSolutionStrategy(name)
		require.NoError(t, err)
		require.Equal(t, routing.PathCheapestArc, fs)
	}
	fs, err := routing.ParseFirstSolutionStrategy("local_cheapest_insertion")
	require.NoError(t, err)
	require.Equal(t, "LOCAL_CHEAPEST_INSERTION", fs.String())

	_, err = routing.ParseFirstSolutionStrategy("savings")
	require.ErrorIs(t, err, routing.ErrUnknownEnumValue)
	require.Equal(t, "FirstSolutionStrategy(42)", routing.FirstSolutionStrategy(42).String())
}

func TestParseLocalSearchMetaheuristic(t *testing.T) {
	mh, err := routing.ParseLocalSearchMetaheuristic("simulated-annealing")
	require.NoError(t, err)
	require.Equal(t, routing.SimulatedAnnealing, mh)
	require.Equal(t, "GREEDY_DESCENT", routing.GreedyDescent.String())

	_, err = routing.ParseLocalSearchMetaheuristic("tabu_search")
	require.ErrorIs(t, err, routing.ErrUnknownEnumValue)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ROUTING_NOT_SOLVED", routing.StatusNotSolved.String())
	assert.Equal(t, "ROUTING_SUCCESS", routing.StatusSuccess.String())
	assert.Equal(t, "ROUTING_FAIL_TIMEOUT", routing.StatusFailTimeout.String())
	assert.Equal(t, "ROUTING_UNKNOWN", routing.Status(17).String())
	assert.True(t, routing.StatusPartialSuccess.HasSolution())
	assert.False(t, routing.StatusFail.HasSolution())
}

func TestSolve_DisabledOperatorsKeepFirstSolution(t *testing.T) {
	manager, err := routing.NewIndexManager(10, 1, 0)
	require.NoError(t, err)
	p := routing.DefaultSearchParameters()
	p.FirstSolutionStrategy = routing.FirstUnboundMinValue
	p.Operators = routing.LocalSearchOperators{}

	obs := &recordingObserver{}
	m2, err := routing.NewModel(manager, routing.WithObserver(obs))
	require.NoError(t, err)
	h, err := m2.RegisterUnaryTransitCallback(func(int64) int64 { return 2 })
	require.NoError(t, err)
	require.NoError(t, m2.SetArcCostEvaluatorOfAllVehicles(h))

	asg := m2.Solve(p)
	require.NotNil(t, asg)
	require.Equal(t, int64(20), asg.ObjectiveValue())
	require.Equal(t, obs.reports[0].FirstSolutionObjective, obs.reports[0].Objective)
	require.Zero(t, obs.reports[0].Iterations)
}
