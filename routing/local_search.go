// Package routing - local search operators and metaheuristics.
//
// Operators (each may be disabled through LocalSearchOperators):
//   - two_opt:       reverse a segment of one route.
//   - or_opt:        move a segment of 1..3 visits to another position of its route.
//   - relocate:      move one visit to another route.
//   - exchange:      swap two visits, within a route or across two routes.
//   - cross:         swap the tails of two routes.
//   - make_active:   insert an unperformed visit.
//   - make_inactive: remove an optional visit.
//   - swap_active:   replace a performed visit by an unperformed one.
//
// A move changes at most two routes and at most one performed flag in each
// direction. Candidates are rebuilt into the search buffers; only accepted moves
// allocate.
//
// Acceptance:
//   - GreedyDescent: first improvement (strictly lower objective), scan restarts
//     after every accepted move; stops at a local optimum.
//   - SimulatedAnnealing: one random neighbor per step, accepted with
//     probability exp(−Δ/T); T is multiplied by the cooling factor every step.
//     The best solution seen is restored, then refined by greedy descent.
package routing

import "math"

// orOptMaxSegment is the longest segment moved by or_opt.
const orOptMaxSegment = 3

// move is one neighbor of the current solution.
type move struct {
	operator string
	n        int
	vehicles [2]int
	routes   [2][]int64
	insert   int64
	remove   int64
}

func (mv *move) set(op string, insert, remove int64) {
	mv.operator = op
	mv.n = 0
	mv.insert = insert
	mv.remove = remove
}

func (mv *move) add(v int, route []int64) {
	mv.vehicles[mv.n] = v
	mv.routes[mv.n] = route
	mv.n++
}

// enabledOperators lists the enabled operator names in scan order.
func enabledOperators(o LocalSearchOperators) []string {
	var ops []string
	for _, e := range []struct {
		on   bool
		name string
	}{
		{o.TwoOpt, OperatorTwoOpt},
		{o.OrOpt, OperatorOrOpt},
		{o.Relocate, OperatorRelocate},
		{o.Exchange, OperatorExchange},
		{o.Cross, OperatorCross},
		{o.MakeActive, OperatorMakeActive},
		{o.MakeInactive, OperatorMakeInactive},
		{o.SwapActive, OperatorSwapActive},
	} {
		if e.on {
			ops = append(ops, e.name)
		}
	}
	return ops
}

// Move builders. Each fills s.mv from the current routes.

func (s *search) twoOpt(v, i, j int) *move {
	s.bufA = append(s.bufA[:0], s.routes[v]...)
	reverseInPlace(s.bufA, i, j)
	s.mv.set(OperatorTwoOpt, unassigned, unassigned)
	s.mv.add(v, s.bufA)
	return &s.mv
}

func (s *search) orOpt(v, i, length, pos int) *move {
	s.bufA = withSegmentMoved(s.bufA, s.routes[v], i, length, pos)
	s.mv.set(OperatorOrOpt, unassigned, unassigned)
	s.mv.add(v, s.bufA)
	return &s.mv
}

func (s *search) relocate(a, i, b, pos int) *move {
	x := s.routes[a][i]
	s.bufA = withRemoved(s.bufA, s.routes[a], i)
	s.bufB = withInserted(s.bufB, s.routes[b], pos, x)
	s.mv.set(OperatorRelocate, unassigned, unassigned)
	s.mv.add(a, s.bufA)
	s.mv.add(b, s.bufB)
	return &s.mv
}

func (s *search) exchange(a, i, b, j int) *move {
	s.mv.set(OperatorExchange, unassigned, unassigned)
	if a == b {
		s.bufA = append(s.bufA[:0], s.routes[a]...)
		s.bufA[i], s.bufA[j] = s.bufA[j], s.bufA[i]
		s.mv.add(a, s.bufA)
		return &s.mv
	}
	s.bufA = withReplaced(s.bufA, s.routes[a], i, s.routes[b][j])
	s.bufB = withReplaced(s.bufB, s.routes[b], j, s.routes[a][i])
	s.mv.add(a, s.bufA)
	s.mv.add(b, s.bufB)
	return &s.mv
}

func (s *search) cross(a, i, b, j int) *move {
	s.bufA = withTail(s.bufA, s.routes[a], i, s.routes[b], j)
	s.bufB = withTail(s.bufB, s.routes[b], j, s.routes[a], i)
	s.mv.set(OperatorCross, unassigned, unassigned)
	s.mv.add(a, s.bufA)
	s.mv.add(b, s.bufB)
	return &s.mv
}

func (s *search) makeActive(x int64, v, pos int) *move {
	s.bufA = withInserted(s.bufA, s.routes[v], pos, x)
	s.mv.set(OperatorMakeActive, x, unassigned)
	s.mv.add(v, s.bufA)
	return &s.mv
}

func (s *search) makeInactive(v, pos int) *move {
	x := s.routes[v][pos]
	s.bufA = withRemoved(s.bufA, s.routes[v], pos)
	s.mv.set(OperatorMakeInactive, unassigned, x)
	s.mv.add(v, s.bufA)
	return &s.mv
}

func (s *search) swapActive(v, pos int, x int64) *move {
	y := s.routes[v][pos]
	s.bufA = withReplaced(s.bufA, s.routes[v], pos, x)
	s.mv.set(OperatorSwapActive, x, y)
	s.mv.add(v, s.bufA)
	return &s.mv
}

// scan enumerates the neighborhood of every enabled operator in a fixed order
// and stops as soon as visit returns false. It reports whether the scan ran to
// completion.
//
// Complexity: O(n²) candidates for route operators, O(n²·V) for the others.
func (s *search) scan(visit func(*move) bool) bool {
	routes := s.routes
	nv := len(routes)
	for _, op := range s.ops {
		switch op {
		case OperatorTwoOpt:
			for v, r := range routes {
				for i := 0; i < len(r)-1; i++ {
					for j := i + 1; j < len(r); j++ {
						if !visit(s.twoOpt(v, i, j)) {
							return false
						}
					}
				}
			}
		case OperatorOrOpt:
			for v, r := range routes {
				for length := 1; length <= orOptMaxSegment && length < len(r); length++ {
					for i := 0; i+length <= len(r); i++ {
						for pos := 0; pos <= len(r)-length; pos++ {
							if pos == i {
								continue
							}
							if !visit(s.orOpt(v, i, length, pos)) {
								return false
							}
						}
					}
				}
			}
		case OperatorRelocate:
			for a := 0; a < nv; a++ {
				for i := range routes[a] {
					for b := 0; b < nv; b++ {
						if a == b {
							continue
						}
						for pos := 0; pos <= len(routes[b]); pos++ {
							if !visit(s.relocate(a, i, b, pos)) {
								return false
							}
						}
					}
				}
			}
		case OperatorExchange:
			for a := 0; a < nv; a++ {
				for i := range routes[a] {
					for b := a; b < nv; b++ {
						j0 := 0
						if a == b {
							j0 = i + 1
						}
						for j := j0; j < len(routes[b]); j++ {
							if !visit(s.exchange(a, i, b, j)) {
								return false
							}
						}
					}
				}
			}
		case OperatorCross:
			for a := 0; a < nv; a++ {
				for b := a + 1; b < nv; b++ {
					for i := 0; i <= len(routes[a]); i++ {
						for j := 0; j <= len(routes[b]); j++ {
							if i == len(routes[a]) && j == len(routes[b]) {
								continue
							}
							if !visit(s.cross(a, i, b, j)) {
								return false
							}
						}
					}
				}
			}
		case OperatorMakeActive:
			for _, x := range s.unperformed() {
				for v := 0; v < nv; v++ {
					for pos := 0; pos <= len(routes[v]); pos++ {
						if !visit(s.makeActive(x, v, pos)) {
							return false
						}
					}
				}
			}
		case OperatorMakeInactive:
			for v, r := range routes {
				for pos := range r {
					if !s.m.optional(r[pos]) {
						continue
					}
					if !visit(s.makeInactive(v, pos)) {
						return false
					}
				}
			}
		case OperatorSwapActive:
			idle := s.unperformed()
			for v, r := range routes {
				for pos := range r {
					if s.m.disjunctionOf[r[pos]] == unassigned {
						continue
					}
					for _, x := range idle {
						if !visit(s.swapActive(v, pos, x)) {
							return false
						}
					}
				}
			}
		}
	}
	return true
}

// randomMove draws one neighbor of operator op, or nil when op has no
// applicable move in the current state.
func (s *search) randomMove(op string) *move {
	r := s.rng
	routes := s.routes
	nv := len(routes)
	switch op {
	case OperatorTwoOpt:
		v := pickVehicle(r, routes, 2)
		if v == unassigned {
			return nil
		}
		n := len(routes[v])
		i := r.Intn(n - 1)
		j := i + 1 + r.Intn(n-i-1)
		return s.twoOpt(v, i, j)
	case OperatorOrOpt:
		v := pickVehicle(r, routes, 2)
		if v == unassigned {
			return nil
		}
		n := len(routes[v])
		maxLen := orOptMaxSegment
		if maxLen > n-1 {
			maxLen = n - 1
		}
		length := 1 + r.Intn(maxLen)
		i := r.Intn(n - length + 1)
		pos := r.Intn(n - length + 1)
		if pos == i {
			return nil
		}
		return s.orOpt(v, i, length, pos)
	case OperatorRelocate:
		a := pickVehicle(r, routes, 1)
		b := pickOtherVehicle(r, nv, a)
		if a == unassigned || b == unassigned {
			return nil
		}
		return s.relocate(a, r.Intn(len(routes[a])), b, r.Intn(len(routes[b])+1))
	case OperatorExchange:
		a, b := pickVehicle(r, routes, 1), pickVehicle(r, routes, 1)
		if a == unassigned {
			return nil
		}
		i, j := r.Intn(len(routes[a])), r.Intn(len(routes[b]))
		if a == b {
			if i == j {
				return nil
			}
			if i > j {
				i, j = j, i
			}
		}
		return s.exchange(a, i, b, j)
	case OperatorCross:
		a := pickVehicle(r, routes, 0)
		b := pickOtherVehicle(r, nv, a)
		if b == unassigned {
			return nil
		}
		i, j := r.Intn(len(routes[a])+1), r.Intn(len(routes[b])+1)
		if i == len(routes[a]) && j == len(routes[b]) {
			return nil
		}
		return s.cross(a, i, b, j)
	case OperatorMakeActive:
		idle := s.unperformed()
		if len(idle) == 0 {
			return nil
		}
		v := r.Intn(nv)
		return s.makeActive(idle[r.Intn(len(idle))], v, r.Intn(len(routes[v])+1))
	case OperatorMakeInactive:
		v := pickVehicle(r, routes, 1)
		if v == unassigned {
			return nil
		}
		pos := r.Intn(len(routes[v]))
		if !s.m.optional(routes[v][pos]) {
			return nil
		}
		return s.makeInactive(v, pos)
	case OperatorSwapActive:
		idle := s.unperformed()
		v := pickVehicle(r, routes, 1)
		if len(idle) == 0 || v == unassigned {
			return nil
		}
		return s.swapActive(v, r.Intn(len(routes[v])), idle[r.Intn(len(idle))])
	}
	return nil
}

// penaltyAfter returns the total penalty after performing insert and dropping
// remove (either may be -1). ok is false when the change violates a disjunction.
func (s *search) penaltyAfter(insert, remove int64) (penalty int64, ok bool) {
	m := s.m
	penalty = s.penalty
	di, dr := unassigned, unassigned
	if remove != unassigned {
		if dr = m.disjunctionOf[remove]; dr == unassigned {
			return 0, false
		}
	}
	if insert != unassigned {
		if s.performed[insert] {
			return 0, false
		}
		di = m.disjunctionOf[insert]
	}
	if di == dr {
		return penalty, true
	}
	if dr != unassigned {
		d := m.disjunctions[dr]
		if s.count[dr] == 1 {
			if d.mandatory() {
				return 0, false
			}
			penalty += d.penalty
		}
	}
	if di != unassigned {
		d := m.disjunctions[di]
		if s.count[di] > 0 {
			return 0, false
		}
		if !d.mandatory() {
			penalty -= d.penalty
		}
	}
	return penalty, true
}

// evaluate returns the objective after mv, or ok == false when mv is infeasible.
// It leaves the new route costs and penalty in the search for apply.
func (s *search) evaluate(mv *move) (objective int64, ok bool) {
	penalty := s.penalty
	if mv.insert != unassigned || mv.remove != unassigned {
		if penalty, ok = s.penaltyAfter(mv.insert, mv.remove); !ok {
			return 0, false
		}
	}
	objective = s.objective - s.penalty + penalty
	var (
		k int
		c int64
	)
	for k = 0; k < mv.n; k++ {
		v := mv.vehicles[k]
		if c, ok = s.m.routeCost(v, mv.routes[k]); !ok {
			return 0, false
		}
		s.newCosts[k] = c
		objective += c - s.costs[v]
	}
	s.newPenalty = penalty
	return objective, true
}

// apply commits the move last passed to evaluate.
func (s *search) apply(mv *move, objective int64) {
	for k := 0; k < mv.n; k++ {
		v := mv.vehicles[k]
		s.routes[v] = append([]int64(nil), mv.routes[k]...)
		s.costs[v] = s.newCosts[k]
	}
	if mv.remove != unassigned {
		s.performed[mv.remove] = false
		if d := s.m.disjunctionOf[mv.remove]; d != unassigned {
			s.count[d]--
		}
	}
	if mv.insert != unassigned {
		s.perform(mv.insert)
	}
	s.penalty = s.newPenalty
	s.objective = objective
	s.moves[mv.operator]++
	s.solutions++
}

// descend runs first-improvement descent from the current solution. It reports
// true when it stopped at a local optimum or on the solution limit, false when
// the deadline or the context interrupted it.
func (s *search) descend() bool {
	for {
		if s.limitReached() {
			return true
		}
		improved := false
		s.scan(func(mv *move) bool {
			if s.interrupted() {
				return false
			}
			s.iterations++
			objective, ok := s.evaluate(mv)
			if !ok || objective >= s.objective {
				return true
			}
			s.apply(mv, objective)
			improved = true
			return false
		})
		if s.stopped {
			return false
		}
		if !improved {
			return true
		}
		if s.params.LogSearch {
			s.m.logger.Debug("improved", "objective", s.objective, "iterations", s.iterations)
		}
	}
}

// anneal runs simulated annealing and leaves the best solution seen as the
// current one.
func (s *search) anneal() {
	if len(s.ops) == 0 {
		return
	}
	temperature, cooling, steps := s.params.annealing()
	best := s.save()

	var step int64
	for step = 0; step < steps; step++ {
		if s.limitReached() || s.interrupted() {
			break
		}
		mv := s.randomMove(s.ops[s.rng.Intn(len(s.ops))])
		if mv == nil {
			continue
		}
		s.iterations++
		objective, ok := s.evaluate(mv)
		if ok {
			delta := objective - s.objective
			if delta < 0 || (temperature > 0 && s.rng.Float64() < math.Exp(-float64(delta)/temperature)) {
				s.apply(mv, objective)
				if s.objective < best.objective {
					best = s.save()
				}
			}
		}
		temperature *= cooling
	}
	if s.objective != best.objective {
		s.restore(best)
	}
	if s.params.LogSearch {
		s.m.logger.Info("annealing finished", "objective", s.objective, "steps", step)
	}
}
