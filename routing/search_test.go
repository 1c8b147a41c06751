package routing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvroute/routing"
)

// newOnesModel returns a model over n nodes and v vehicles at depot 0 whose
// arc cost is 1 everywhere.
func newOnesModel(t *testing.T, n, v int) (*routing.IndexManager, *routing.Model) {
	t.Helper()
	manager, err := routing.NewIndexManager(n, v, 0)
	require.NoError(t, err)
	model, err := routing.NewModel(manager)
	require.NoError(t, err)
	h, err := model.RegisterTransitMatrix(onesMatrix(n))
	require.NoError(t, err)
	require.NoError(t, model.SetArcCostEvaluatorOfAllVehicles(h))
	return manager, model
}

func TestSolve_EveryStrategy(t *testing.T) {
	strategies := []routing.FirstSolutionStrategy{
		routing.Automatic,
		routing.PathCheapestArc,
		routing.GlobalCheapestArc,
		routing.FirstUnboundMinValue,
		routing.ParallelCheapestInsertion,
		routing.LocalCheapestInsertion,
	}
	for _, fs := range strategies {
		t.Run(fs.String(), func(t *testing.T) {
			_, model := newOnesModel(t, 5, 1)
			p := routing.DefaultSearchParameters()
			p.FirstSolutionStrategy = fs
			asg := model.Solve(p)
			require.NotNil(t, asg)
			require.Equal(t, int64(5), asg.ObjectiveValue())
		})
	}
}

func TestSolve_AllUnperformed(t *testing.T) {
	_, model := newOnesModel(t, 5, 1)
	p := routing.DefaultSearchParameters()
	p.FirstSolutionStrategy = routing.AllUnperformed
	require.Nil(t, model.Solve(p), "mandatory visits cannot stay unperformed")
	require.Equal(t, routing.StatusFail, model.Status())

	// With optional visits, make_active inserts them all back.
	_, model = newOnesModel(t, 5, 1)
	for i := int64(1); i < 5; i++ {
		_, err := model.AddDisjunction([]int64{i}, 10)
		require.NoError(t, err)
	}
	asg := model.Solve(p)
	require.NotNil(t, asg)
	require.Equal(t, int64(5), asg.ObjectiveValue())
	require.Positive(t, asg.Route(0)[1])
}

func TestSolve_CapacitySplitsRoutes(t *testing.T) {
	_, model := newOnesModel(t, 5, 2)
	_, err := model.AddVectorDimension([]int64{0, 6, 6, 0, 0}, 10, true, "load")
	require.NoError(t, err)

	asg := model.Solve(nil)
	require.NotNil(t, asg)
	require.Equal(t, int64(6), asg.ObjectiveValue())
	require.NotEqual(t, asg.Vehicle(1), asg.Vehicle(2))
	for v := 0; v < 2; v++ {
		load, err := asg.CumulValue("load", model.End(v))
		require.NoError(t, err)
		require.LessOrEqual(t, load, int64(10))
	}
}

func TestSolve_CapacityInfeasible(t *testing.T) {
	_, model := newOnesModel(t, 5, 1)
	_, err := model.AddVectorDimension([]int64{0, 6, 6, 0, 0}, 10, true, "load")
	require.NoError(t, err)

	require.Nil(t, model.Solve(nil))
	require.Equal(t, routing.StatusFail, model.Status())
}

// farMatrix costs 1 between nodes 0..3 and 100 to or from node 4.
func farMatrix() [][]int64 {
	m := onesMatrix(5)
	for i := 0; i < 5; i++ {
		m[i][4], m[4][i] = 100, 100
	}
	return m
}

func TestSolve_DisjunctionDropsExpensiveVisit(t *testing.T) {
	manager, err := routing.NewIndexManager(5, 1, 0)
	require.NoError(t, err)
	model, err := routing.NewModel(manager)
	require.NoError(t, err)
	h, err := model.RegisterTransitMatrix(farMatrix())
	require.NoError(t, err)
	require.NoError(t, model.SetArcCostEvaluatorOfAllVehicles(h))
	id, err := model.AddDisjunction([]int64{4}, 10)
	require.NoError(t, err)
	require.Equal(t, 0, id)
	require.Equal(t, int64(10), model.DisjunctionPenalty(id))
	require.Equal(t, id, model.DisjunctionOf(4))

	asg := model.Solve(nil)
	require.NotNil(t, asg)
	require.Equal(t, int64(14), asg.ObjectiveValue())
	require.Equal(t, int64(10), asg.PenaltyCost())
	require.Equal(t, []int64{4}, asg.Unperformed())
	require.False(t, asg.IsPerformed(4))
	require.Equal(t, int64(4), asg.Next(4))
	require.Equal(t, -1, asg.Vehicle(4))
	_, err = asg.CumulValue("missing", 4)
	require.ErrorIs(t, err, routing.ErrUnknownDimension)
}

func TestSolve_MandatoryDisjunction(t *testing.T) {
	manager, err := routing.NewIndexManager(5, 1, 0)
	require.NoError(t, err)
	model, err := routing.NewModel(manager)
	require.NoError(t, err)
	h, err := model.RegisterTransitMatrix(farMatrix())
	require.NoError(t, err)
	require.NoError(t, model.SetArcCostEvaluatorOfAllVehicles(h))
	_, err = model.AddDisjunction([]int64{4}, routing.NoPenalty)
	require.NoError(t, err)

	asg := model.Solve(nil)
	require.NotNil(t, asg)
	require.Equal(t, int64(203), asg.ObjectiveValue())
	require.True(t, asg.IsPerformed(4))
}

func TestSolve_DisjunctionAtMostOne(t *testing.T) {
	_, model := newOnesModel(t, 5, 1)
	_, err := model.AddDisjunction([]int64{1, 2}, 50)
	require.NoError(t, err)

	asg := model.Solve(nil)
	require.NotNil(t, asg)
	require.Equal(t, int64(4), asg.ObjectiveValue())
	require.NotEqual(t, asg.IsPerformed(1), asg.IsPerformed(2))
}

func TestAddDisjunction_Errors(t *testing.T) {
	_, model := newOnesModel(t, 5, 1)
	_, err := model.AddDisjunction(nil, 1)
	require.ErrorIs(t, err, routing.ErrInvalidArgument)
	_, err = model.AddDisjunction([]int64{0}, 1)
	require.ErrorIs(t, err, routing.ErrIndexOutOfRange, "start index")
	_, err = model.AddDisjunction([]int64{5}, 1)
	require.ErrorIs(t, err, routing.ErrIndexOutOfRange, "end index")
	_, err = model.AddDisjunction([]int64{1, 1}, 1)
	require.ErrorIs(t, err, routing.ErrInvalidArgument)
	_, err = model.AddDisjunction([]int64{2}, 1)
	require.NoError(t, err)
	_, err = model.AddDisjunction([]int64{2, 3}, 1)
	require.ErrorIs(t, err, routing.ErrInvalidArgument)
	require.Equal(t, 1, model.Disjunctions())
	require.Equal(t, routing.NoPenalty, model.DisjunctionPenalty(7))
}

func TestSolve_TimeWindows(t *testing.T) {
	manager, model := newOnesModel(t, 3, 1)
	h, err := model.RegisterTransitMatrix(onesMatrix(3))
	require.NoError(t, err)
	require.NoError(t, model.AddDimension(h, 10, 100, false, "time"))
	dim, err := model.Dimension("time")
	require.NoError(t, err)
	require.NoError(t, dim.SetCumulVarRange(manager.NodeToIndex(1), 5, 6))
	require.NoError(t, dim.SetCumulVarRange(manager.NodeToIndex(2), 0, 3))

	p := routing.DefaultSearchParameters()
	p.FirstSolutionStrategy = routing.ParallelCheapestInsertion
	asg := model.Solve(p)
	require.NotNil(t, asg)
	require.Equal(t, int64(3), asg.ObjectiveValue())
	require.Equal(t, []int64{0, 2, 1, 3}, asg.Route(0))

	for _, c := range []struct {
		index int64
		want  int64
	}{{0, 0}, {2, 1}, {1, 5}, {3, 6}} {
		got, err := asg.CumulValue("time", c.index)
		require.NoError(t, err)
		require.Equal(t, c.want, got, "cumul of index %d", c.index)
	}
}

func TestSolve_TimeWindowDelaysStart(t *testing.T) {
	// No slack: node 1 opens at 5, so the start cumul must move from 0 to 5.
	_, model := newOnesModel(t, 2, 1)
	_, err := model.AddConstantDimension(0, 100, false, "time")
	require.NoError(t, err)
	dim, err := model.Dimension("time")
	require.NoError(t, err)
	require.NoError(t, dim.SetCumulVarRange(model.Start(0), 0, 10))
	require.NoError(t, dim.SetCumulVarRange(1, 5, 5))

	asg := model.Solve(nil)
	require.NotNil(t, asg, "status %s", model.Status())
	require.Equal(t, routing.StatusSuccess, model.Status())
	require.Equal(t, int64(2), asg.ObjectiveValue())
	for _, index := range []int64{model.Start(0), 1, model.End(0)} {
		got, err := asg.CumulValue("time", index)
		require.NoError(t, err)
		require.Equal(t, int64(5), got, "cumul of index %d", index)
	}
}

func TestSolve_DelayedStartSpan(t *testing.T) {
	build := func(fixStart bool) *routing.Model {
		_, model := newOnesModel(t, 2, 1)
		h, err := model.RegisterTransitMatrix(onesMatrix(2))
		require.NoError(t, err)
		require.NoError(t, model.AddDimension(h, 0, 100, fixStart, "time"))
		dim, err := model.Dimension("time")
		require.NoError(t, err)
		require.NoError(t, dim.SetCumulVarRange(model.Start(0), 0, 10))
		require.NoError(t, dim.SetCumulVarRange(1, 8, 8))
		require.NoError(t, dim.SetSpanCostCoefficientForAllVehicles(1))
		return model
	}

	model := build(false)
	asg := model.Solve(nil)
	require.NotNil(t, asg)
	// Start at 7, visit at 8, back at 9: two arcs plus a span of 2.
	require.Equal(t, int64(2+2), asg.ObjectiveValue())
	for _, c := range []struct {
		index int64
		want  int64
	}{{model.Start(0), 7}, {1, 8}, {model.End(0), 9}} {
		got, err := asg.CumulValue("time", c.index)
		require.NoError(t, err)
		require.Equal(t, c.want, got, "cumul of index %d", c.index)
	}

	// A start fixed at zero cannot reach the window without slack.
	model = build(true)
	require.Nil(t, model.Solve(nil))
	require.Equal(t, routing.StatusFail, model.Status())
}

func TestSolve_SpanCost(t *testing.T) {
	_, model := newOnesModel(t, 5, 1)
	h, err := model.RegisterTransitMatrix(onesMatrix(5))
	require.NoError(t, err)
	require.NoError(t, model.AddDimension(h, 0, 100, true, "time"))
	dim, err := model.Dimension("time")
	require.NoError(t, err)
	require.NoError(t, dim.SetSpanCostCoefficientForAllVehicles(3))

	asg := model.Solve(nil)
	require.NotNil(t, asg)
	require.Equal(t, int64(5+3*5), asg.ObjectiveValue())
}

func TestSolve_SimulatedAnnealingIsDeterministic(t *testing.T) {
	run := func() *routing.Assignment {
		manager, err := routing.NewIndexManager(5, 1, 0)
		require.NoError(t, err)
		model, err := routing.NewModel(manager)
		require.NoError(t, err)
		h, err := model.RegisterTransitCallback(func(from, to int64) int64 {
			a, b := coords[manager.IndexToNode(from)], coords[manager.IndexToNode(to)]
			return abs64(a[0]-b[0]) + abs64(a[1]-b[1])
		})
		require.NoError(t, err)
		require.NoError(t, model.SetArcCostEvaluatorOfAllVehicles(h))
		p := routing.DefaultSearchParameters()
		p.LocalSearchMetaheuristic = routing.SimulatedAnnealing
		p.Seed = 7
		p.IterationLimit = 500
		return model.Solve(p)
	}
	a, b := run(), run()
	require.NotNil(t, a)
	require.Equal(t, int64(10), a.ObjectiveValue())
	require.Equal(t, a.Route(0), b.Route(0))
}

func TestSolve_SolutionLimit(t *testing.T) {
	_, model := newOnesModel(t, 5, 1)
	p := routing.DefaultSearchParameters()
	p.SolutionLimit = 1
	asg := model.Solve(p)
	require.NotNil(t, asg)
	require.Equal(t, routing.StatusSuccess, model.Status())
}

// lineModel places n nodes on a line with |i-j| arc costs.
func lineModel(t *testing.T, n int) *routing.Model {
	t.Helper()
	manager, err := routing.NewIndexManager(n, 1, 0)
	require.NoError(t, err)
	model, err := routing.NewModel(manager)
	require.NoError(t, err)
	h, err := model.RegisterTransitCallback(func(from, to int64) int64 {
		// Scramble the order so the first solution is far from optimal.
		a := int64(manager.IndexToNode(from)*7) % int64(n)
		b := int64(manager.IndexToNode(to)*7) % int64(n)
		return abs64(a - b)
	})
	require.NoError(t, err)
	require.NoError(t, model.SetArcCostEvaluatorOfAllVehicles(h))
	return model
}

func TestSolve_CancelledContextAfterFirstSolution(t *testing.T) {
	model := lineModel(t, 60)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	asg := model.SolveContext(ctx, nil)
	require.NotNil(t, asg, "the first solution survives cancellation")
	require.Equal(t, routing.StatusPartialSuccess, model.Status())
	require.Empty(t, asg.Unperformed())
}

func TestSolve_CancelledContextBeforeFirstSolution(t *testing.T) {
	model := lineModel(t, 300)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := routing.DefaultSearchParameters()
	p.FirstSolutionStrategy = routing.ParallelCheapestInsertion
	require.Nil(t, model.SolveContext(ctx, p))
	require.Equal(t, routing.StatusFailTimeout, model.Status())
}

func TestSolve_TimeLimitStopsSearch(t *testing.T) {
	model := lineModel(t, 40)
	p := routing.DefaultSearchParameters()
	p.TimeLimit = time.Nanosecond
	asg := model.Solve(p)
	require.NotNil(t, asg)
	require.Equal(t, routing.StatusPartialSuccess, model.Status())
}

func TestSolve_LocalSearchImproves(t *testing.T) {
	const n = 12
	manager, err := routing.NewIndexManager(n, 1, 0)
	require.NoError(t, err)
	obs := &recordingObserver{}
	model, err := routing.NewModel(manager, routing.WithObserver(obs))
	require.NoError(t, err)
	h, err := model.RegisterTransitCallback(func(from, to int64) int64 {
		a := int64(manager.IndexToNode(from)*7) % n
		b := int64(manager.IndexToNode(to)*7) % n
		return abs64(a - b)
	})
	require.NoError(t, err)
	require.NoError(t, model.SetArcCostEvaluatorOfAllVehicles(h))

	p := routing.DefaultSearchParameters()
	p.FirstSolutionStrategy = routing.FirstUnboundMinValue
	asg := model.Solve(p)
	require.NotNil(t, asg)

	require.Len(t, obs.reports, 1)
	r := obs.reports[0]
	require.Less(t, r.Objective, r.FirstSolutionObjective)
	require.Equal(t, asg.ObjectiveValue(), r.Objective)
	require.GreaterOrEqual(t, asg.ObjectiveValue(), int64(2*(n-1)), "no tour beats out-and-back")

	var moves int64
	for _, c := range r.Moves {
		moves += c
	}
	require.Positive(t, moves)
}
