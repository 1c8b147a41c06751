package routing

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FirstSolutionStrategy selects how the initial solution is constructed.
type FirstSolutionStrategy int

const (
	// Automatic lets the solver choose; currently PathCheapestArc.
	Automatic FirstSolutionStrategy = iota
	// PathCheapestArc extends each vehicle's route, one vehicle after the other,
	// with the cheapest feasible arc from its last visit.
	PathCheapestArc
	// GlobalCheapestArc extends all routes in parallel, always taking the globally
	// cheapest feasible arc from some route tail.
	GlobalCheapestArc
	// FirstUnboundMinValue extends each route with the smallest feasible index.
	FirstUnboundMinValue
	// ParallelCheapestInsertion repeatedly inserts the (index, vehicle, position)
	// triple with the smallest cost increase.
	ParallelCheapestInsertion
	// LocalCheapestInsertion inserts indices in increasing order, each at its
	// cheapest feasible position.
	LocalCheapestInsertion
	// AllUnperformed leaves every optional index unvisited.
	AllUnperformed
)

var firstSolutionNames = [...]string{
	Automatic:                 "AUTOMATIC",
	PathCheapestArc:           "PATH_CHEAPEST_ARC",
	GlobalCheapestArc:         "GLOBAL_CHEAPEST_ARC",
	FirstUnboundMinValue:      "FIRST_UNBOUND_MIN_VALUE",
	ParallelCheapestInsertion: "PARALLEL_CHEAPEST_INSERTION",
	LocalCheapestInsertion:    "LOCAL_CHEAPEST_INSERTION",
	AllUnperformed:            "ALL_UNPERFORMED",
}

// String returns the upper-snake name of the strategy.
func (s FirstSolutionStrategy) String() string {
	if s < 0 || int(s) >= len(firstSolutionNames) {
		return fmt.Sprintf("FirstSolutionStrategy(%d)", int(s))
	}
	return firstSolutionNames[s]
}

// ParseFirstSolutionStrategy accepts names such as "PATH_CHEAPEST_ARC" or
// "path-cheapest-arc".
func ParseFirstSolutionStrategy(name string) (FirstSolutionStrategy, error) {
	key := normalizeEnumName(name)
	for i, n := range firstSolutionNames {
		if n == key {
			return FirstSolutionStrategy(i), nil
		}
	}
	return Automatic, fmt.Errorf("first solution strategy %q: %w", name, ErrUnknownEnumValue)
}

// LocalSearchMetaheuristic selects how local search escapes local optima.
type LocalSearchMetaheuristic int

const (
	// AutomaticMetaheuristic lets the solver choose; currently GreedyDescent.
	AutomaticMetaheuristic LocalSearchMetaheuristic = iota
	// GreedyDescent accepts improving moves only and stops at a local optimum.
	GreedyDescent
	// SimulatedAnnealing accepts worsening moves with a decreasing probability,
	// then finishes with a greedy descent from the best solution seen.
	SimulatedAnnealing
)

var metaheuristicNames = [...]string{
	AutomaticMetaheuristic: "AUTOMATIC",
	GreedyDescent:          "GREEDY_DESCENT",
	SimulatedAnnealing:     "SIMULATED_ANNEALING",
}

// String returns the upper-snake name of the metaheuristic.
func (h LocalSearchMetaheuristic) String() string {
	if h < 0 || int(h) >= len(metaheuristicNames) {
		return fmt.Sprintf("LocalSearchMetaheuristic(%d)", int(h))
	}
	return metaheuristicNames[h]
}

// ParseLocalSearchMetaheuristic accepts names such as "GREEDY_DESCENT".
func ParseLocalSearchMetaheuristic(name string) (LocalSearchMetaheuristic, error) {
	key := normalizeEnumName(name)
	for i, n := range metaheuristicNames {
		if n == key {
			return LocalSearchMetaheuristic(i), nil
		}
	}
	return AutomaticMetaheuristic, fmt.Errorf("local search metaheuristic %q: %w", name, ErrUnknownEnumValue)
}

func normalizeEnumName(name string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
}

// LocalSearchOperators toggles the neighborhoods explored by local search.
type LocalSearchOperators struct {
	TwoOpt       bool
	OrOpt        bool
	Relocate     bool
	Exchange     bool
	Cross        bool
	MakeActive   bool
	MakeInactive bool
	SwapActive   bool
}

// AllOperators returns a set with every neighborhood enabled.
func AllOperators() LocalSearchOperators {
	return LocalSearchOperators{
		TwoOpt:       true,
		OrOpt:        true,
		Relocate:     true,
		Exchange:     true,
		Cross:        true,
		MakeActive:   true,
		MakeInactive: true,
		SwapActive:   true,
	}
}

// SearchParameters controls one solve.
type SearchParameters struct {
	FirstSolutionStrategy    FirstSolutionStrategy
	LocalSearchMetaheuristic LocalSearchMetaheuristic
	Operators                LocalSearchOperators

	// TimeLimit bounds the whole solve; 0 means unlimited.
	TimeLimit time.Duration
	// SolutionLimit bounds the number of solutions (first solution included);
	// 0 means unlimited.
	SolutionLimit int64
	// IterationLimit bounds annealing steps; 0 selects defaultAnnealingSteps.
	IterationLimit int64

	// Seed drives every randomized decision; 0 selects a fixed default seed.
	Seed int64
	// InitialTemperature and CoolingFactor tune SimulatedAnnealing; zero values
	// select the defaults.
	InitialTemperature float64
	CoolingFactor      float64

	// LogSearch enables Info-level progress logs on the model logger.
	LogSearch bool
}

const (
	defaultAnnealingSteps     = 2000
	defaultInitialTemperature = 10.0
	defaultCoolingFactor      = 0.995
)

// DefaultSearchParameters returns the parameters used when Solve receives nil.
//
// Defaults:
//   - FirstSolutionStrategy:    Automatic (PathCheapestArc).
//   - LocalSearchMetaheuristic: AutomaticMetaheuristic (GreedyDescent).
//   - Operators:                all enabled.
//   - Limits:                   none.
//   - Seed:                     0 (fixed default stream).
func DefaultSearchParameters() *SearchParameters {
	return &SearchParameters{
		FirstSolutionStrategy:    Automatic,
		LocalSearchMetaheuristic: AutomaticMetaheuristic,
		Operators:                AllOperators(),
		InitialTemperature:       defaultInitialTemperature,
		CoolingFactor:            defaultCoolingFactor,
	}
}

// Clone returns an independent copy.
func (p *SearchParameters) Clone() *SearchParameters {
	if p == nil {
		return DefaultSearchParameters()
	}
	c := *p
	return &c
}

// Validate checks limits and enumeration values.
func (p *SearchParameters) Validate() error {
	if p.FirstSolutionStrategy < 0 || int(p.FirstSolutionStrategy) >= len(firstSolutionNames) {
		return fmt.Errorf("first solution strategy %d: %w", int(p.FirstSolutionStrategy), ErrInvalidParameters)
	}
	if p.LocalSearchMetaheuristic < 0 || int(p.LocalSearchMetaheuristic) >= len(metaheuristicNames) {
		return fmt.Errorf("metaheuristic %d: %w", int(p.LocalSearchMetaheuristic), ErrInvalidParameters)
	}
	if p.TimeLimit < 0 {
		return fmt.Errorf("time limit %s: %w", p.TimeLimit, ErrInvalidParameters)
	}
	if p.SolutionLimit < 0 || p.IterationLimit < 0 {
		return fmt.Errorf("negative solution/iteration limit: %w", ErrInvalidParameters)
	}
	if math.IsNaN(p.InitialTemperature) || math.IsInf(p.InitialTemperature, 0) || p.InitialTemperature < 0 {
		return fmt.Errorf("initial temperature %v: %w", p.InitialTemperature, ErrInvalidParameters)
	}
	if math.IsNaN(p.CoolingFactor) || p.CoolingFactor < 0 || p.CoolingFactor > 1 {
		return fmt.Errorf("cooling factor %v: %w", p.CoolingFactor, ErrInvalidParameters)
	}
	return nil
}

// annealing returns the temperature schedule with defaults applied.
func (p *SearchParameters) annealing() (temperature, cooling float64, steps int64) {
	temperature, cooling, steps = p.InitialTemperature, p.CoolingFactor, p.IterationLimit
	if temperature == 0 {
		temperature = defaultInitialTemperature
	}
	if cooling == 0 {
		cooling = defaultCoolingFactor
	}
	if steps == 0 {
		steps = defaultAnnealingSteps
	}
	return temperature, cooling, steps
}

// Resolve returns the strategy and metaheuristic a solve actually runs,
// mapping Automatic choices to concrete ones.
func (p *SearchParameters) Resolve() (FirstSolutionStrategy, LocalSearchMetaheuristic) {
	fs := p.FirstSolutionStrategy
	if fs == Automatic {
		fs = PathCheapestArc
	}
	mh := p.LocalSearchMetaheuristic
	if mh == AutomaticMetaheuristic {
		mh = GreedyDescent
	}
	return fs, mh
}
