// Package routing - first solution strategies.
//
// Every strategy fills s.routes from empty routes and finishes with s.reset,
// which rejects the result when a mandatory visit is left out. Ties are broken
// by the smallest vehicle, then the smallest index, then the earliest position,
// so that construction is deterministic.
//
// Feasibility of a partial route is checked on the closed path
// start → visits → end, i.e. a route is extended only when it can still return.
package routing

import "sort"

// firstSolution builds the initial solution with strategy.
func (s *search) firstSolution(strategy FirstSolutionStrategy) bool {
	var ok bool
	switch strategy {
	case GlobalCheapestArc:
		ok = s.globalCheapestArc()
	case FirstUnboundMinValue:
		ok = s.pathExtension(false)
	case ParallelCheapestInsertion:
		ok = s.parallelCheapestInsertion()
	case LocalCheapestInsertion:
		ok = s.localCheapestInsertion()
	case AllUnperformed:
		ok = true
	default:
		ok = s.pathExtension(true)
	}
	if !ok {
		return false
	}
	return s.reset()
}

// candidates returns the placeable visits, ascending.
func (s *search) candidates() []int64 {
	out := make([]int64, 0, len(s.visits))
	for _, i := range s.visits {
		if s.placeable(i) {
			out = append(out, i)
		}
	}
	return out
}

// extends reports whether appending i keeps the route of v feasible.
func (s *search) extends(v int, route []int64, i int64) bool {
	s.bufA = append(append(s.bufA[:0], route...), i)
	_, ok := s.m.routeCost(v, s.bufA)
	return ok
}

// pathExtension builds routes one vehicle after the other. From the route tail
// it appends the cheapest feasible arc (byCost) or the smallest feasible index.
//
// Complexity: O(n² log n) arc evaluations plus O(n²) route checks per vehicle.
func (s *search) pathExtension(byCost bool) bool {
	m := s.m
	var v int
	for v = 0; v < m.Vehicles(); v++ {
		route := s.routes[v]
		tail := m.Start(v)
		for {
			if s.interrupted() {
				return false
			}
			cands := s.candidates()
			if len(cands) == 0 {
				break
			}
			if byCost {
				costs := make([]int64, len(cands))
				for k, i := range cands {
					costs[k] = m.ArcCostForVehicle(tail, i, v)
				}
				sort.Stable(byArcCost{cands, costs})
			}

			placed := false
			for _, i := range cands {
				if s.extends(v, route, i) {
					route = append(route, i)
					s.perform(i)
					tail = i
					placed = true
					break
				}
			}
			if !placed {
				break
			}
		}
		s.routes[v] = route
	}
	return true
}

// byArcCost sorts candidate indices by the arc cost from a fixed tail.
type byArcCost struct {
	idx   []int64
	costs []int64
}

func (b byArcCost) Len() int           { return len(b.idx) }
func (b byArcCost) Less(i, j int) bool { return b.costs[i] < b.costs[j] }
func (b byArcCost) Swap(i, j int) {
	b.idx[i], b.idx[j] = b.idx[j], b.idx[i]
	b.costs[i], b.costs[j] = b.costs[j], b.costs[i]
}

// arcCandidate is a possible extension of route v by index i.
type arcCandidate struct {
	cost    int64
	vehicle int
	index   int64
}

// globalCheapestArc extends all routes in parallel: at each step it takes the
// cheapest feasible arc leaving any route tail.
//
// Complexity: O(n · V·n log(V·n)) arc evaluations.
func (s *search) globalCheapestArc() bool {
	m := s.m
	tails := make([]int64, m.Vehicles())
	var v int
	for v = range tails {
		tails[v] = m.Start(v)
	}
	for {
		if s.interrupted() {
			return false
		}
		cands := s.candidates()
		if len(cands) == 0 {
			return true
		}
		arcs := make([]arcCandidate, 0, len(cands)*len(tails))
		for v = range tails {
			for _, i := range cands {
				arcs = append(arcs, arcCandidate{m.ArcCostForVehicle(tails[v], i, v), v, i})
			}
		}
		sort.Slice(arcs, func(a, b int) bool {
			if arcs[a].cost != arcs[b].cost {
				return arcs[a].cost < arcs[b].cost
			}
			if arcs[a].vehicle != arcs[b].vehicle {
				return arcs[a].vehicle < arcs[b].vehicle
			}
			return arcs[a].index < arcs[b].index
		})

		placed := false
		for _, a := range arcs {
			if s.extends(a.vehicle, s.routes[a.vehicle], a.index) {
				s.routes[a.vehicle] = append(s.routes[a.vehicle], a.index)
				s.perform(a.index)
				tails[a.vehicle] = a.index
				placed = true
				break
			}
		}
		if !placed {
			return true
		}
	}
}

// insertion is the cheapest feasible position of one index.
type insertion struct {
	vehicle int
	pos     int
	delta   int64
	ok      bool
}

// cheapestInsertion finds where inserting i increases the route cost least.
//
// Complexity: O(Σ_v len(route_v)²).
func (s *search) cheapestInsertion(i int64) insertion {
	var best insertion
	for v, route := range s.routes {
		for pos := 0; pos <= len(route); pos++ {
			s.bufA = withInserted(s.bufA, route, pos, i)
			c, ok := s.m.routeCost(v, s.bufA)
			if !ok {
				continue
			}
			delta := c - s.costs[v]
			if !best.ok || delta < best.delta {
				best = insertion{vehicle: v, pos: pos, delta: delta, ok: true}
			}
		}
	}
	return best
}

// worthInserting reports whether an insertion pays off: mandatory visits are
// always inserted, optional ones only when cheaper than their penalty.
func (s *search) worthInserting(i int64, ins insertion) bool {
	if !ins.ok {
		return false
	}
	if !s.m.optional(i) {
		return true
	}
	return ins.delta <= s.m.disjunctions[s.m.disjunctionOf[i]].penalty
}

// insert applies ins for index i and refreshes the cost of the touched route.
func (s *search) insert(i int64, ins insertion) {
	route := withInserted(nil, s.routes[ins.vehicle], ins.pos, i)
	s.routes[ins.vehicle] = route
	s.costs[ins.vehicle] += ins.delta
	s.perform(i)
}

// initCosts prices the current routes before an insertion strategy runs.
// Infeasible empty routes price at 0; reset rejects them at the end.
func (s *search) initCosts() {
	for v, route := range s.routes {
		c, ok := s.m.routeCost(v, route)
		if !ok {
			c = 0
		}
		s.costs[v] = c
	}
}

// parallelCheapestInsertion repeatedly performs the globally cheapest insertion.
//
// Complexity: O(n · n · Σ_v len(route_v)²) route evaluations.
func (s *search) parallelCheapestInsertion() bool {
	s.initCosts()
	for {
		var (
			bestIndex int64 = unassigned
			best      insertion
		)
		for _, i := range s.candidates() {
			if s.interrupted() {
				return false
			}
			ins := s.cheapestInsertion(i)
			if !s.worthInserting(i, ins) {
				continue
			}
			if bestIndex == unassigned || ins.delta < best.delta {
				bestIndex, best = i, ins
			}
		}
		if bestIndex == unassigned {
			return true
		}
		s.insert(bestIndex, best)
	}
}

// localCheapestInsertion inserts visits in increasing index order, each at its
// cheapest feasible position.
//
// Complexity: O(n · Σ_v len(route_v)²) route evaluations.
func (s *search) localCheapestInsertion() bool {
	s.initCosts()
	for _, i := range s.visits {
		if s.interrupted() {
			return false
		}
		if !s.placeable(i) {
			continue
		}
		if ins := s.cheapestInsertion(i); s.worthInserting(i, ins) {
			s.insert(i, ins)
		}
	}
	return true
}
