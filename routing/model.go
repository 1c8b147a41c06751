// Package routing - the routing model: vehicles, arc costs, disjunctions.
//
// A Model is built once from an IndexManager, configured through registration
// calls, and then solved. The first solve closes the model; all mutators return
// ErrModelClosed afterwards, while queries and further solves stay available.
package routing

import (
	"fmt"
	"io"

	"golang.org/x/exp/slog"
)

// Option configures a Model at construction.
type Option func(*Model)

// WithLogger sets the logger used for registration (Debug) and search progress
// (Info, when SearchParameters.LogSearch is set). A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithObserver registers o to receive a SolveReport after every solve.
func WithObserver(o Observer) Option {
	return func(m *Model) {
		if o != nil {
			m.observers = append(m.observers, o)
		}
	}
}

// disjunction is a group of indices of which at most one is performed.
type disjunction struct {
	indices []int64
	penalty int64
}

func (d disjunction) mandatory() bool { return d.penalty < 0 }

// Model is a vehicle routing problem over the indices of an IndexManager.
// A Model is not safe for concurrent use.
type Model struct {
	manager   *IndexManager
	logger    *slog.Logger
	observers []Observer

	evaluators []transitEvaluator

	vehicleEvaluator []int
	fixedCost        []int64
	usedWhenEmpty    []bool

	dimensions      []*Dimension
	dimensionByName map[string]*Dimension

	disjunctions  []disjunction
	disjunctionOf []int

	// vehicleOf holds the owning vehicle of every start/end index, -1 elsewhere.
	vehicleOf []int
	isStart   []bool
	isEnd     []bool

	closed bool
	status Status

	pathBuf []int64
}

// NewModel creates an empty model over manager.
func NewModel(manager *IndexManager, opts ...Option) (*Model, error) {
	if manager == nil {
		return nil, fmt.Errorf("nil index manager: %w", ErrInvalidArgument)
	}
	numVehicles := manager.NumberOfVehicles()
	numIndices := manager.NumberOfIndices()

	m := &Model{
		manager:          manager,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		vehicleEvaluator: make([]int, numVehicles),
		fixedCost:        make([]int64, numVehicles),
		usedWhenEmpty:    make([]bool, numVehicles),
		dimensionByName:  make(map[string]*Dimension),
		disjunctionOf:    make([]int, numIndices),
		vehicleOf:        make([]int, numIndices),
		isStart:          make([]bool, numIndices),
		isEnd:            make([]bool, numIndices),
		status:           StatusNotSolved,
	}
	for v := range m.vehicleEvaluator {
		m.vehicleEvaluator[v] = unassigned
	}
	for i := range m.disjunctionOf {
		m.disjunctionOf[i] = unassigned
		m.vehicleOf[i] = unassigned
	}
	for v := 0; v < numVehicles; v++ {
		s, e := manager.StartIndex(v), manager.EndIndex(v)
		m.vehicleOf[s], m.vehicleOf[e] = v, v
		m.isStart[s], m.isEnd[e] = true, true
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Manager returns the index manager of the model.
func (m *Model) Manager() *IndexManager { return m.manager }

// Nodes returns the number of application nodes.
func (m *Model) Nodes() int { return m.manager.NumberOfNodes() }

// Vehicles returns the number of vehicles.
func (m *Model) Vehicles() int { return m.manager.NumberOfVehicles() }

// Size returns the number of indices that have a successor: every index but
// the vehicle end indices.
func (m *Model) Size() int { return m.manager.NumberOfIndices() - m.manager.NumberOfVehicles() }

// Start returns the start index of vehicle, or -1 when out of range.
func (m *Model) Start(vehicle int) int64 { return m.manager.StartIndex(vehicle) }

// End returns the end index of vehicle, or -1 when out of range.
func (m *Model) End(vehicle int) int64 { return m.manager.EndIndex(vehicle) }

// IsStart reports whether index is the start of some vehicle.
func (m *Model) IsStart(index int64) bool {
	return m.inRange(index) && m.isStart[index]
}

// IsEnd reports whether index is the end of some vehicle.
func (m *Model) IsEnd(index int64) bool {
	return m.inRange(index) && m.isEnd[index]
}

// VehicleOfStartOrEnd returns the vehicle owning a start or end index, -1 otherwise.
func (m *Model) VehicleOfStartOrEnd(index int64) int {
	if !m.inRange(index) {
		return unassigned
	}
	return m.vehicleOf[index]
}

// Status returns the outcome of the last solve.
func (m *Model) Status() Status { return m.status }

// Closed reports whether the model has been solved at least once.
func (m *Model) Closed() bool { return m.closed }

func (m *Model) inRange(index int64) bool {
	return index >= 0 && index < int64(m.manager.NumberOfIndices())
}

// isVisit reports whether index is a customer visit (neither a start nor an end).
func (m *Model) isVisit(index int64) bool {
	return m.inRange(index) && !m.isStart[index] && !m.isEnd[index]
}

// SetArcCostEvaluatorOfAllVehicles makes handle the arc cost of every vehicle.
func (m *Model) SetArcCostEvaluatorOfAllVehicles(handle int) error {
	if m.closed {
		return ErrModelClosed
	}
	if !m.validHandle(handle) {
		return fmt.Errorf("arc cost evaluator %d: %w", handle, ErrInvalidHandle)
	}
	for v := range m.vehicleEvaluator {
		m.vehicleEvaluator[v] = handle
	}
	return nil
}

// SetArcCostEvaluatorOfVehicle makes handle the arc cost of one vehicle.
func (m *Model) SetArcCostEvaluatorOfVehicle(handle, vehicle int) error {
	if m.closed {
		return ErrModelClosed
	}
	if !m.validHandle(handle) {
		return fmt.Errorf("arc cost evaluator %d: %w", handle, ErrInvalidHandle)
	}
	if vehicle < 0 || vehicle >= len(m.vehicleEvaluator) {
		return fmt.Errorf("arc cost of vehicle %d: %w", vehicle, ErrVehicleOutOfRange)
	}
	m.vehicleEvaluator[vehicle] = handle
	return nil
}

// SetFixedCostOfAllVehicles charges cost once per used vehicle.
func (m *Model) SetFixedCostOfAllVehicles(cost int64) error {
	if m.closed {
		return ErrModelClosed
	}
	if cost < 0 {
		return fmt.Errorf("fixed cost %d: %w", cost, ErrInvalidArgument)
	}
	for v := range m.fixedCost {
		m.fixedCost[v] = cost
	}
	return nil
}

// SetFixedCostOfVehicle charges cost when vehicle is used.
func (m *Model) SetFixedCostOfVehicle(cost int64, vehicle int) error {
	if m.closed {
		return ErrModelClosed
	}
	if vehicle < 0 || vehicle >= len(m.fixedCost) {
		return fmt.Errorf("fixed cost of vehicle %d: %w", vehicle, ErrVehicleOutOfRange)
	}
	if cost < 0 {
		return fmt.Errorf("fixed cost %d: %w", cost, ErrInvalidArgument)
	}
	m.fixedCost[vehicle] = cost
	return nil
}

// FixedCostOfVehicle returns the fixed cost of vehicle, or 0 when out of range.
func (m *Model) FixedCostOfVehicle(vehicle int) int64 {
	if vehicle < 0 || vehicle >= len(m.fixedCost) {
		return 0
	}
	return m.fixedCost[vehicle]
}

// ConsiderEmptyRouteCostsForVehicle makes an empty route of vehicle pay its
// fixed cost, arc cost and span costs like any other route.
func (m *Model) ConsiderEmptyRouteCostsForVehicle(consider bool, vehicle int) error {
	if m.closed {
		return ErrModelClosed
	}
	if vehicle < 0 || vehicle >= len(m.usedWhenEmpty) {
		return fmt.Errorf("empty route cost of vehicle %d: %w", vehicle, ErrVehicleOutOfRange)
	}
	m.usedWhenEmpty[vehicle] = consider
	return nil
}

// ArcCostForVehicle returns the cost of the arc from → to for vehicle.
// It is 0 when from == to, when vehicle is out of range or has no evaluator.
func (m *Model) ArcCostForVehicle(from, to int64, vehicle int) int64 {
	if from == to || vehicle < 0 || vehicle >= len(m.vehicleEvaluator) {
		return 0
	}
	h := m.vehicleEvaluator[vehicle]
	if h == unassigned {
		return 0
	}
	return m.evaluators[h].eval(from, to)
}

// AddDisjunction groups indices so that at most one of them is performed.
// When none is performed, penalty is added to the objective; a negative penalty
// (NoPenalty) makes the group mandatory instead. Indices outside any
// disjunction are mandatory.
//
// Errors: ErrIndexOutOfRange for empty groups, start/end indices, duplicates or
// indices already in a disjunction; ErrModelClosed after a solve.
func (m *Model) AddDisjunction(indices []int64, penalty int64) (int, error) {
	if m.closed {
		return unassigned, ErrModelClosed
	}
	if len(indices) == 0 {
		return unassigned, fmt.Errorf("empty disjunction: %w", ErrInvalidArgument)
	}
	seen := make(map[int64]struct{}, len(indices))
	for _, i := range indices {
		if !m.isVisit(i) {
			return unassigned, fmt.Errorf("disjunction member %d: %w", i, ErrIndexOutOfRange)
		}
		if _, dup := seen[i]; dup || m.disjunctionOf[i] != unassigned {
			return unassigned, fmt.Errorf("index %d already in a disjunction: %w", i, ErrInvalidArgument)
		}
		seen[i] = struct{}{}
	}

	id := len(m.disjunctions)
	m.disjunctions = append(m.disjunctions, disjunction{
		indices: append([]int64(nil), indices...),
		penalty: penalty,
	})
	for _, i := range indices {
		m.disjunctionOf[i] = id
	}
	m.logger.Debug("added disjunction", "id", id, "size", len(indices), "penalty", penalty)
	return id, nil
}

// Disjunctions returns the number of registered disjunctions.
func (m *Model) Disjunctions() int { return len(m.disjunctions) }

// DisjunctionPenalty returns the penalty of disjunction id, or NoPenalty when
// id is unknown.
func (m *Model) DisjunctionPenalty(id int) int64 {
	if id < 0 || id >= len(m.disjunctions) {
		return NoPenalty
	}
	return m.disjunctions[id].penalty
}

// DisjunctionOf returns the disjunction containing index, or -1.
func (m *Model) DisjunctionOf(index int64) int {
	if !m.inRange(index) {
		return unassigned
	}
	return m.disjunctionOf[index]
}

// optional reports whether index may stay unperformed on its own.
func (m *Model) optional(index int64) bool {
	d := m.disjunctionOf[index]
	return d != unassigned && !m.disjunctions[d].mandatory()
}
