// Package routing - solve dispatcher and search state.
//
// Solve runs two stages on a closed model:
//
//  1. First solution: the selected strategy places visits into routes
//     (first_solution.go). A mandatory visit that cannot be placed fails the solve.
//  2. Improvement: the selected metaheuristic explores the enabled operators
//     (local_search.go) until a local optimum, a limit or the context stops it.
//
// The search state keeps per-vehicle route costs, the performed flags and the
// performed count of every disjunction, so that a candidate move is evaluated by
// re-costing only the routes it touches.
package routing

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/exp/slog"
)

// deadlineCheckMask throttles wall-clock and context checks to one every 256
// evaluations.
const deadlineCheckMask = 255

// Solve runs the search with params (nil ⇒ DefaultSearchParameters) and returns
// the best assignment found, or nil when none exists. Status reports why.
func (m *Model) Solve(params *SearchParameters) *Assignment {
	return m.SolveContext(context.Background(), params)
}

// SolveWithParameters is Solve under its historical name.
func (m *Model) SolveWithParameters(params *SearchParameters) *Assignment {
	return m.SolveContext(context.Background(), params)
}

// SolveContext is Solve with cancellation: when ctx is done the search stops
// and returns the best solution found so far.
func (m *Model) SolveContext(ctx context.Context, params *SearchParameters) *Assignment {
	m.status = StatusNotSolved
	m.closed = true
	if params == nil {
		params = DefaultSearchParameters()
	}
	began := time.Now()

	fs, mh := params.Resolve()
	report := SolveReport{
		FirstSolutionStrategy:    fs,
		LocalSearchMetaheuristic: mh,
		Moves:                    make(map[string]int64),
	}
	if err := params.Validate(); err != nil {
		m.logger.Warn("rejected search parameters", "err", err)
		return m.finish(nil, StatusInvalid, report, began, params.LogSearch)
	}

	s := newSearch(ctx, m, params)
	report.Moves = s.moves
	if params.LogSearch {
		m.logger.Info("search started",
			"first_solution", fs.String(), "metaheuristic", mh.String(),
			"vehicles", m.Vehicles(), "visits", len(s.visits))
	}

	if !s.firstSolution(fs) {
		status := StatusFail
		if s.stopped {
			status = StatusFailTimeout
		}
		report.Iterations = s.iterations
		return m.finish(nil, status, report, began, params.LogSearch)
	}
	report.FirstSolutionObjective = s.objective
	s.solutions = 1
	if params.LogSearch {
		m.logger.Info("first solution", "objective", s.objective)
	}

	var converged bool
	switch mh {
	case SimulatedAnnealing:
		s.anneal()
		converged = !s.stopped && s.descend()
	default:
		converged = s.descend()
	}

	status := StatusSuccess
	if !converged {
		status = StatusPartialSuccess
	}
	report.Objective = s.objective
	report.Iterations = s.iterations
	return m.finish(newAssignment(m, s, status), status, report, began, params.LogSearch)
}

// finish records status, notifies observers and returns asg.
func (m *Model) finish(asg *Assignment, status Status, report SolveReport, began time.Time, verbose bool) *Assignment {
	m.status = status
	report.Status = status
	report.Duration = time.Since(began)

	level := slog.LevelDebug
	if verbose {
		level = slog.LevelInfo
	}
	attrs := []any{"status", status.String(), "duration", report.Duration}
	if asg != nil {
		attrs = append(attrs,
			"objective", report.Objective,
			"first_solution_objective", report.FirstSolutionObjective,
			"iterations", report.Iterations)
	}
	m.logger.Log(context.Background(), level, "search finished", attrs...)
	for _, o := range m.observers {
		o.ObserveSolve(report)
	}
	return asg
}

// search is the mutable state of one solve.
type search struct {
	m      *Model
	params *SearchParameters
	ctx    context.Context
	rng    *rand.Rand
	ops    []string

	useDeadline bool
	deadline    time.Time
	steps       int64
	stopped     bool

	solutions  int64
	iterations int64
	moves      map[string]int64

	// visits lists every index that is neither a start nor an end, ascending.
	visits []int64

	routes    [][]int64
	costs     []int64
	performed []bool
	count     []int
	penalty   int64
	objective int64

	mv         move
	bufA, bufB []int64
	newCosts   [2]int64
	newPenalty int64
}

func newSearch(ctx context.Context, m *Model, params *SearchParameters) *search {
	numIndices := m.manager.NumberOfIndices()
	s := &search{
		m:         m,
		params:    params,
		ctx:       ctx,
		rng:       rngFromSeed(params.Seed),
		ops:       enabledOperators(params.Operators),
		moves:     make(map[string]int64),
		routes:    make([][]int64, m.Vehicles()),
		costs:     make([]int64, m.Vehicles()),
		performed: make([]bool, numIndices),
		count:     make([]int, len(m.disjunctions)),
	}
	if params.TimeLimit > 0 {
		s.useDeadline = true
		s.deadline = time.Now().Add(params.TimeLimit)
	}
	var i int64
	for i = 0; i < int64(numIndices); i++ {
		if m.isVisit(i) {
			s.visits = append(s.visits, i)
		}
	}
	return s
}

// interrupted counts one step and reports whether the time limit or the
// context stopped the search. Checks are throttled by deadlineCheckMask.
func (s *search) interrupted() bool {
	if s.stopped {
		return true
	}
	s.steps++
	if s.steps&deadlineCheckMask != 0 {
		return false
	}
	if s.ctx.Err() != nil || (s.useDeadline && time.Now().After(s.deadline)) {
		s.stopped = true
	}
	return s.stopped
}

// limitReached reports whether SolutionLimit has been hit.
func (s *search) limitReached() bool {
	return s.params.SolutionLimit > 0 && s.solutions >= s.params.SolutionLimit
}

// placeable reports whether visit i may be added to a route in the current state.
func (s *search) placeable(i int64) bool {
	if s.performed[i] {
		return false
	}
	d := s.m.disjunctionOf[i]
	return d == unassigned || s.count[d] == 0
}

// perform marks i as visited during construction.
func (s *search) perform(i int64) {
	s.performed[i] = true
	if d := s.m.disjunctionOf[i]; d != unassigned {
		s.count[d]++
	}
}

// reset recomputes every derived quantity from s.routes. It reports false when
// a route is infeasible or a mandatory visit is missing.
//
// Complexity: O(total route length · #dimensions + #visits).
func (s *search) reset() bool {
	m := s.m
	for i := range s.performed {
		s.performed[i] = false
	}
	for d := range s.count {
		s.count[d] = 0
	}
	s.objective, s.penalty = 0, 0

	var ok bool
	for v, route := range s.routes {
		for _, i := range route {
			s.perform(i)
		}
		if s.costs[v], ok = m.routeCost(v, route); !ok {
			return false
		}
		s.objective += s.costs[v]
	}
	for _, i := range s.visits {
		if !s.performed[i] && m.disjunctionOf[i] == unassigned {
			return false
		}
	}
	for d, dj := range m.disjunctions {
		if s.count[d] > 0 {
			continue
		}
		if dj.mandatory() {
			return false
		}
		s.penalty += dj.penalty
	}
	s.objective += s.penalty
	return true
}

// snapshot is a copy of the search state used to remember the best solution.
type snapshot struct {
	routes    [][]int64
	costs     []int64
	penalty   int64
	objective int64
}

func (s *search) save() snapshot {
	return snapshot{
		routes:    cloneRoutes(s.routes),
		costs:     append([]int64(nil), s.costs...),
		penalty:   s.penalty,
		objective: s.objective,
	}
}

func (s *search) restore(snap snapshot) {
	s.routes = cloneRoutes(snap.routes)
	copy(s.costs, snap.costs)
	for i := range s.performed {
		s.performed[i] = false
	}
	for d := range s.count {
		s.count[d] = 0
	}
	for _, route := range s.routes {
		for _, i := range route {
			s.perform(i)
		}
	}
	s.penalty = snap.penalty
	s.objective = snap.objective
}

// unperformed returns the visits no route contains, ascending.
func (s *search) unperformed() []int64 {
	var out []int64
	for _, i := range s.visits {
		if !s.performed[i] {
			out = append(out, i)
		}
	}
	return out
}
