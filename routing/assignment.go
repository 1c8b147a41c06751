package routing

import (
	"fmt"

	"github.com/google/uuid"
)

// Assignment is the read-only result of a successful solve.
type Assignment struct {
	id         uuid.UUID
	status     Status
	objective  int64
	penalty    int64
	next       []int64
	vehicle    []int
	routes     [][]int64
	routeCosts []int64
	dropped    []int64
	cumuls     map[string][]int64
}

// newAssignment freezes the current search state.
func newAssignment(m *Model, s *search, status Status) *Assignment {
	numIndices := m.manager.NumberOfIndices()
	a := &Assignment{
		id:         uuid.New(),
		status:     status,
		objective:  s.objective,
		penalty:    s.penalty,
		next:       make([]int64, numIndices),
		vehicle:    make([]int, numIndices),
		routes:     make([][]int64, m.Vehicles()),
		routeCosts: append([]int64(nil), s.costs...),
		dropped:    s.unperformed(),
		cumuls:     make(map[string][]int64, len(m.dimensions)),
	}
	for i := range a.next {
		a.next[i] = int64(i)
		a.vehicle[i] = unassigned
	}
	for _, d := range m.dimensions {
		values := make([]int64, numIndices)
		for i := range values {
			values[i] = unassigned
		}
		a.cumuls[d.name] = values
	}

	for v, visits := range s.routes {
		path := append([]int64(nil), m.fullPath(v, visits)...)
		a.routes[v] = path
		for k, i := range path {
			a.vehicle[i] = v
			if k+1 < len(path) {
				a.next[i] = path[k+1]
			} else {
				a.next[i] = unassigned
			}
		}
		buf := make([]int64, len(path))
		for _, d := range m.dimensions {
			if _, ok := d.schedule(v, path, buf); !ok {
				continue
			}
			values := a.cumuls[d.name]
			for k, i := range path {
				values[i] = buf[k]
			}
		}
	}
	return a
}

// ID identifies the assignment, e.g. in a run archive.
func (a *Assignment) ID() uuid.UUID { return a.id }

// Status returns the status of the solve that produced a.
func (a *Assignment) Status() Status { return a.status }

// ObjectiveValue returns the total cost: route costs plus penalties of
// unperformed disjunctions.
func (a *Assignment) ObjectiveValue() int64 { return a.objective }

// PenaltyCost returns the part of the objective due to unperformed disjunctions.
func (a *Assignment) PenaltyCost() int64 { return a.penalty }

// Next returns the successor of index. Unperformed indices are their own
// successor; end indices and out-of-range indices return -1.
func (a *Assignment) Next(index int64) int64 {
	if index < 0 || index >= int64(len(a.next)) {
		return unassigned
	}
	return a.next[index]
}

// Vehicle returns the vehicle visiting index, or -1 when it is unperformed.
func (a *Assignment) Vehicle(index int64) int {
	if index < 0 || index >= int64(len(a.vehicle)) {
		return unassigned
	}
	return a.vehicle[index]
}

// IsPerformed reports whether some vehicle visits index.
func (a *Assignment) IsPerformed(index int64) bool { return a.Vehicle(index) != unassigned }

// Route returns start, visits, end of vehicle as a fresh slice.
func (a *Assignment) Route(vehicle int) []int64 {
	if vehicle < 0 || vehicle >= len(a.routes) {
		return nil
	}
	return append([]int64(nil), a.routes[vehicle]...)
}

// RouteCost returns the cost of the route of vehicle (0 when out of range).
func (a *Assignment) RouteCost(vehicle int) int64 {
	if vehicle < 0 || vehicle >= len(a.routeCosts) {
		return 0
	}
	return a.routeCosts[vehicle]
}

// Vehicles returns the number of routes.
func (a *Assignment) Vehicles() int { return len(a.routes) }

// Unperformed returns the visits no vehicle performs, ascending.
func (a *Assignment) Unperformed() []int64 { return append([]int64(nil), a.dropped...) }

// CumulValue returns the earliest feasible cumul of dimension at index.
//
// Errors: ErrUnknownDimension, ErrIndexOutOfRange, ErrIndexUnperformed.
func (a *Assignment) CumulValue(dimension string, index int64) (int64, error) {
	values, ok := a.cumuls[dimension]
	if !ok {
		return 0, fmt.Errorf("dimension %q: %w", dimension, ErrUnknownDimension)
	}
	if index < 0 || index >= int64(len(values)) {
		return 0, fmt.Errorf("cumul of index %d: %w", index, ErrIndexOutOfRange)
	}
	if a.vehicle[index] == unassigned {
		return 0, fmt.Errorf("cumul of index %d: %w", index, ErrIndexUnperformed)
	}
	return values[index], nil
}
