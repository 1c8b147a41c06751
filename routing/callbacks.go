package routing

import "fmt"

// transitEvaluator is one registry entry. Exactly one of binary/unary is set.
type transitEvaluator struct {
	binary TransitFunc
	unary  UnaryTransitFunc
}

func (e transitEvaluator) eval(from, to int64) int64 {
	if e.unary != nil {
		return e.unary(from)
	}
	return e.binary(from, to)
}

// register appends e to the registry and returns its handle.
func (m *Model) register(e transitEvaluator, kind string) (int, error) {
	if m.closed {
		return unassigned, ErrModelClosed
	}
	handle := len(m.evaluators)
	m.evaluators = append(m.evaluators, e)
	m.logger.Debug("registered transit evaluator", "handle", handle, "kind", kind)
	return handle, nil
}

// RegisterTransitCallback registers a pairwise evaluator and returns its handle.
// The model keeps fn reachable for its whole lifetime.
func (m *Model) RegisterTransitCallback(fn TransitFunc) (int, error) {
	if fn == nil {
		return unassigned, ErrNilCallback
	}
	return m.register(transitEvaluator{binary: fn}, "binary")
}

// RegisterUnaryTransitCallback registers an evaluator of the origin index only.
func (m *Model) RegisterUnaryTransitCallback(fn UnaryTransitFunc) (int, error) {
	if fn == nil {
		return unassigned, ErrNilCallback
	}
	return m.register(transitEvaluator{unary: fn}, "unary")
}

// RegisterTransitMatrix registers a node-indexed numNodes×numNodes matrix.
// The matrix is copied; transit(from, to) = values[node(from)][node(to)].
func (m *Model) RegisterTransitMatrix(values [][]int64) (int, error) {
	dense, err := m.copyNodeMatrix(values)
	if err != nil {
		return unassigned, err
	}
	manager := m.manager
	return m.register(transitEvaluator{binary: func(from, to int64) int64 {
		return dense[manager.IndexToNode(from)][manager.IndexToNode(to)]
	}}, "matrix")
}

// RegisterUnaryTransitVector registers a node-indexed vector of length numNodes.
// The vector is copied; transit(from, ·) = values[node(from)].
func (m *Model) RegisterUnaryTransitVector(values []int64) (int, error) {
	vec, err := m.copyNodeVector(values)
	if err != nil {
		return unassigned, err
	}
	manager := m.manager
	return m.register(transitEvaluator{unary: func(from int64) int64 {
		return vec[manager.IndexToNode(from)]
	}}, "vector")
}

func (m *Model) copyNodeMatrix(values [][]int64) ([][]int64, error) {
	n := m.manager.NumberOfNodes()
	if len(values) != n {
		return nil, fmt.Errorf("matrix has %d rows, want %d: %w", len(values), n, ErrShapeMismatch)
	}
	out := make([][]int64, n)
	for i, row := range values {
		if len(row) != n {
			return nil, fmt.Errorf("matrix row %d has %d columns, want %d: %w", i, len(row), n, ErrShapeMismatch)
		}
		out[i] = make([]int64, n)
		copy(out[i], row)
	}
	return out, nil
}

func (m *Model) copyNodeVector(values []int64) ([]int64, error) {
	n := m.manager.NumberOfNodes()
	if len(values) != n {
		return nil, fmt.Errorf("vector has %d entries, want %d: %w", len(values), n, ErrShapeMismatch)
	}
	out := make([]int64, n)
	copy(out, values)
	return out, nil
}

// validHandle reports whether handle was returned by a Register* call.
func (m *Model) validHandle(handle int) bool {
	return handle >= 0 && handle < len(m.evaluators)
}
