package routing

import (
	"fmt"
	"math"
)

// Dimension accumulates a quantity along routes.
//
// For consecutive visits i → j of vehicle v:
//
//	cumul[j] = cumul[i] + transit(i, j) + slack[i],  0 ≤ slack[i] ≤ slackMax,
//	0 ≤ cumul ≤ capacity(v),  cumulMin[i] ≤ cumul[i] ≤ cumulMax[i].
//
// When fixStartCumulToZero is set, cumul[start(v)] = 0 for every vehicle.
type Dimension struct {
	model      *Model
	name       string
	evaluator  int
	slackMax   int64
	capacities []int64
	fixStart   bool
	cumulMin   []int64
	cumulMax   []int64
	spanCost   []int64

	// scratch for schedule
	transitBuf, needBuf []int64
}

// Name returns the dimension name.
func (d *Dimension) Name() string { return d.name }

// Evaluator returns the transit evaluator handle of the dimension.
func (d *Dimension) Evaluator() int { return d.evaluator }

// SlackMax returns the maximum slack per visit.
func (d *Dimension) SlackMax() int64 { return d.slackMax }

// Capacity returns the capacity of vehicle, or -1 when out of range.
func (d *Dimension) Capacity(vehicle int) int64 {
	if vehicle < 0 || vehicle >= len(d.capacities) {
		return unassigned
	}
	return d.capacities[vehicle]
}

// FixStartCumulToZero reports whether start cumuls are pinned to zero.
func (d *Dimension) FixStartCumulToZero() bool { return d.fixStart }

// SetCumulVarRange restricts cumul[index] to [min, max] (a time window for a
// time dimension).
func (d *Dimension) SetCumulVarRange(index, min, max int64) error {
	if d.model.closed {
		return ErrModelClosed
	}
	if index < 0 || index >= int64(len(d.cumulMin)) {
		return fmt.Errorf("cumul range of index %d: %w", index, ErrIndexOutOfRange)
	}
	if min > max {
		return fmt.Errorf("cumul range [%d, %d]: %w", min, max, ErrInvalidArgument)
	}
	d.cumulMin[index] = min
	d.cumulMax[index] = max
	return nil
}

// CumulVarRange returns the configured range of index.
func (d *Dimension) CumulVarRange(index int64) (min, max int64, err error) {
	if index < 0 || index >= int64(len(d.cumulMin)) {
		return 0, 0, fmt.Errorf("cumul range of index %d: %w", index, ErrIndexOutOfRange)
	}
	return d.cumulMin[index], d.cumulMax[index], nil
}

// SetSpanCostCoefficientForAllVehicles adds coefficient·(cumul[end]-cumul[start])
// to the cost of every route.
func (d *Dimension) SetSpanCostCoefficientForAllVehicles(coefficient int64) error {
	if d.model.closed {
		return ErrModelClosed
	}
	if coefficient < 0 {
		return fmt.Errorf("span cost coefficient %d: %w", coefficient, ErrInvalidArgument)
	}
	for v := range d.spanCost {
		d.spanCost[v] = coefficient
	}
	return nil
}

// SetSpanCostCoefficientForVehicle sets the span cost coefficient of one vehicle.
func (d *Dimension) SetSpanCostCoefficientForVehicle(coefficient int64, vehicle int) error {
	if d.model.closed {
		return ErrModelClosed
	}
	if vehicle < 0 || vehicle >= len(d.spanCost) {
		return fmt.Errorf("span cost of vehicle %d: %w", vehicle, ErrVehicleOutOfRange)
	}
	if coefficient < 0 {
		return fmt.Errorf("span cost coefficient %d: %w", coefficient, ErrInvalidArgument)
	}
	d.spanCost[vehicle] = coefficient
	return nil
}

// schedule computes the earliest feasible cumuls along path (start … end) of
// vehicle v. It writes them into cumuls when non-nil and returns the span
// cumul[end] - cumul[start].
//
// A backward pass derives need[k], the smallest cumul at path[k] from which
// every later lower bound is still reachable with slackMax; an unfixed start is
// therefore delayed as far as the windows downstream require. The forward pass
// then takes cumul[k] = max(cumul[k-1] + transit, need[k]), which is pointwise
// the earliest schedule, so any violated upper bound proves infeasibility.
//
// Complexity: O(len(path)).
func (d *Dimension) schedule(v int, path []int64, cumuls []int64) (span int64, ok bool) {
	capacity := d.capacities[v]
	lo := func(i int64) int64 {
		if d.cumulMin[i] > 0 {
			return d.cumulMin[i]
		}
		return 0
	}
	hi := func(i int64) int64 {
		if d.cumulMax[i] < capacity {
			return d.cumulMax[i]
		}
		return capacity
	}
	eval := d.model.evaluators[d.evaluator]

	n := len(path)
	transit := d.transitBuf[:0]
	for k := 1; k < n; k++ {
		transit = append(transit, eval.eval(path[k-1], path[k]))
	}
	need := d.needBuf[:0]
	for k := 0; k < n; k++ {
		need = append(need, 0)
	}
	d.transitBuf, d.needBuf = transit, need

	need[n-1] = lo(path[n-1])
	for k := n - 2; k >= 0; k-- {
		need[k] = lo(path[k])
		if r := need[k+1] - transit[k] - d.slackMax; r > need[k] {
			need[k] = r
		}
	}

	c := need[0]
	if d.fixStart {
		if c > 0 {
			return 0, false
		}
		c = 0
	}
	if c > hi(path[0]) {
		return 0, false
	}
	first := c
	if cumuls != nil {
		cumuls[0] = c
	}
	for k := 1; k < n; k++ {
		next := c + transit[k-1]
		if next < need[k] {
			next = need[k]
		}
		if next > hi(path[k]) {
			return 0, false
		}
		c = next
		if cumuls != nil {
			cumuls[k] = c
		}
	}
	return c - first, true
}

// AddDimension creates a dimension over an already registered evaluator.
//
// Errors: ErrInvalidHandle, ErrInvalidArgument for negative slack or capacity,
// ErrDimensionExists on a name collision, ErrModelClosed after a solve.
func (m *Model) AddDimension(handle int, slackMax, capacity int64, fixStartCumulToZero bool, name string) error {
	capacities := make([]int64, m.manager.NumberOfVehicles())
	for v := range capacities {
		capacities[v] = capacity
	}
	return m.AddDimensionWithVehicleCapacity(handle, slackMax, capacities, fixStartCumulToZero, name)
}

// AddDimensionWithVehicleCapacity is AddDimension with one capacity per vehicle.
func (m *Model) AddDimensionWithVehicleCapacity(handle int, slackMax int64, capacities []int64, fixStartCumulToZero bool, name string) error {
	if m.closed {
		return ErrModelClosed
	}
	if !m.validHandle(handle) {
		return fmt.Errorf("dimension %q evaluator %d: %w", name, handle, ErrInvalidHandle)
	}
	if slackMax < 0 {
		return fmt.Errorf("dimension %q slack %d: %w", name, slackMax, ErrInvalidArgument)
	}
	if len(capacities) != m.manager.NumberOfVehicles() {
		return fmt.Errorf("dimension %q has %d capacities: %w", name, len(capacities), ErrShapeMismatch)
	}
	for v, c := range capacities {
		if c < 0 {
			return fmt.Errorf("dimension %q capacity %d of vehicle %d: %w", name, c, v, ErrInvalidArgument)
		}
	}
	if _, ok := m.dimensionByName[name]; ok {
		return fmt.Errorf("dimension %q: %w", name, ErrDimensionExists)
	}

	numIndices := m.manager.NumberOfIndices()
	d := &Dimension{
		model:      m,
		name:       name,
		evaluator:  handle,
		slackMax:   slackMax,
		capacities: append([]int64(nil), capacities...),
		fixStart:   fixStartCumulToZero,
		cumulMin:   make([]int64, numIndices),
		cumulMax:   make([]int64, numIndices),
		spanCost:   make([]int64, len(capacities)),
	}
	for i := range d.cumulMax {
		d.cumulMax[i] = math.MaxInt64
	}
	m.dimensions = append(m.dimensions, d)
	m.dimensionByName[name] = d
	m.logger.Debug("added dimension", "name", name, "evaluator", handle, "slack_max", slackMax)
	return nil
}

// AddConstantDimension registers transit(i, j) = value and a dimension over it.
// The handle is valid even when the error is ErrDimensionExists.
func (m *Model) AddConstantDimension(value, capacity int64, fixStartCumulToZero bool, name string) (int, error) {
	handle, err := m.RegisterUnaryTransitCallback(func(int64) int64 { return value })
	if err != nil {
		return unassigned, err
	}
	return handle, m.AddDimension(handle, 0, capacity, fixStartCumulToZero, name)
}

// AddVectorDimension registers values as a unary transit vector and a dimension
// over it. The handle is valid even when the error is ErrDimensionExists.
func (m *Model) AddVectorDimension(values []int64, capacity int64, fixStartCumulToZero bool, name string) (int, error) {
	handle, err := m.RegisterUnaryTransitVector(values)
	if err != nil {
		return unassigned, err
	}
	return handle, m.AddDimension(handle, 0, capacity, fixStartCumulToZero, name)
}

// AddMatrixDimension registers values as a transit matrix and a dimension over
// it. The handle is valid even when the error is ErrDimensionExists.
func (m *Model) AddMatrixDimension(values [][]int64, capacity int64, fixStartCumulToZero bool, name string) (int, error) {
	handle, err := m.RegisterTransitMatrix(values)
	if err != nil {
		return unassigned, err
	}
	return handle, m.AddDimension(handle, 0, capacity, fixStartCumulToZero, name)
}

// Dimension returns the dimension called name.
func (m *Model) Dimension(name string) (*Dimension, error) {
	d, ok := m.dimensionByName[name]
	if !ok {
		return nil, fmt.Errorf("dimension %q: %w", name, ErrUnknownDimension)
	}
	return d, nil
}

// HasDimension reports whether a dimension called name exists.
func (m *Model) HasDimension(name string) bool {
	_, ok := m.dimensionByName[name]
	return ok
}

// DimensionNames returns dimension names in creation order.
func (m *Model) DimensionNames() []string {
	out := make([]string, len(m.dimensions))
	for i, d := range m.dimensions {
		out[i] = d.name
	}
	return out
}
