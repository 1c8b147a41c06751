package routing

import "fmt"

// unassigned marks a node without a regular index or an index without a vehicle.
const unassigned = -1

// IndexManager translates between application nodes and solver indices.
//
// Every vehicle owns a start index and an end index. Depot nodes shared by
// several vehicles are duplicated so that these indices stay pairwise distinct.
// The mapping is computed once and never changes.
type IndexManager struct {
	numNodes     int
	numVehicles  int
	uniqueDepots int

	indexToNode    []int
	nodeToIndex    []int64
	vehicleToStart []int64
	vehicleToEnd   []int64
}

// NewIndexManager builds a manager where every vehicle starts and ends at depot.
func NewIndexManager(numNodes, numVehicles, depot int) (*IndexManager, error) {
	if numVehicles <= 0 {
		return nil, fmt.Errorf("%d vehicles: %w", numVehicles, ErrInvalidArgument)
	}
	starts := make([]int, numVehicles)
	ends := make([]int, numVehicles)
	for v := 0; v < numVehicles; v++ {
		starts[v] = depot
		ends[v] = depot
	}
	return NewIndexManagerWithDepots(numNodes, numVehicles, starts, ends)
}

// NewIndexManagerWithDepots builds a manager from per-vehicle start and end depots.
//
// Numbering:
//   - size = numNodes + numVehicles - |starts ∪ ends|, numIndices = size + numVehicles.
//   - Nodes are scanned in increasing order; a node gets a regular index when it is
//     the start of some vehicle or is not the end of any vehicle.
//   - The first vehicle starting at a node reuses that node's index; later vehicles
//     starting there get fresh duplicate indices.
//   - Each vehicle then gets a fresh end index in [size, numIndices).
//
// Errors: ErrInvalidArgument for non-positive sizes, ErrDepotLength and
// ErrNodeOutOfRange for malformed depot arrays.
//
// Complexity: O(numNodes + numVehicles).
func NewIndexManagerWithDepots(numNodes, numVehicles int, starts, ends []int) (*IndexManager, error) {
	if numNodes <= 0 {
		return nil, fmt.Errorf("%d nodes: %w", numNodes, ErrInvalidArgument)
	}
	if numVehicles <= 0 {
		return nil, fmt.Errorf("%d vehicles: %w", numVehicles, ErrInvalidArgument)
	}
	if len(starts) != numVehicles || len(ends) != numVehicles {
		return nil, fmt.Errorf("%d starts, %d ends for %d vehicles: %w",
			len(starts), len(ends), numVehicles, ErrDepotLength)
	}

	isStart := make([]bool, numNodes)
	isEnd := make([]bool, numNodes)
	uniqueDepots := 0
	mark := func(node int) {
		if !isStart[node] && !isEnd[node] {
			uniqueDepots++
		}
	}
	for v := 0; v < numVehicles; v++ {
		if starts[v] < 0 || starts[v] >= numNodes {
			return nil, fmt.Errorf("start depot %d of vehicle %d: %w", starts[v], v, ErrNodeOutOfRange)
		}
		if ends[v] < 0 || ends[v] >= numNodes {
			return nil, fmt.Errorf("end depot %d of vehicle %d: %w", ends[v], v, ErrNodeOutOfRange)
		}
		mark(starts[v])
		isStart[starts[v]] = true
		mark(ends[v])
		isEnd[ends[v]] = true
	}

	size := numNodes + numVehicles - uniqueDepots
	m := &IndexManager{
		numNodes:       numNodes,
		numVehicles:    numVehicles,
		uniqueDepots:   uniqueDepots,
		indexToNode:    make([]int, size+numVehicles),
		nodeToIndex:    make([]int64, numNodes),
		vehicleToStart: make([]int64, numVehicles),
		vehicleToEnd:   make([]int64, numVehicles),
	}

	var index int64
	for node := 0; node < numNodes; node++ {
		m.nodeToIndex[node] = unassigned
		if isStart[node] || !isEnd[node] {
			m.indexToNode[index] = node
			m.nodeToIndex[node] = index
			index++
		}
	}

	seen := make([]bool, numNodes)
	for v := 0; v < numVehicles; v++ {
		start := starts[v]
		if !seen[start] {
			seen[start] = true
			m.vehicleToStart[v] = m.nodeToIndex[start]
			continue
		}
		m.vehicleToStart[v] = index
		m.indexToNode[index] = start
		index++
	}
	for v := 0; v < numVehicles; v++ {
		m.vehicleToEnd[v] = index
		m.indexToNode[index] = ends[v]
		index++
	}

	return m, nil
}

// NumberOfNodes returns the number of application nodes.
func (m *IndexManager) NumberOfNodes() int { return m.numNodes }

// NumberOfVehicles returns the number of vehicles.
func (m *IndexManager) NumberOfVehicles() int { return m.numVehicles }

// NumberOfIndices returns numNodes + 2*numVehicles - NumberOfUniqueDepots().
func (m *IndexManager) NumberOfIndices() int { return len(m.indexToNode) }

// NumberOfUniqueDepots returns the number of distinct start/end nodes.
func (m *IndexManager) NumberOfUniqueDepots() int { return m.uniqueDepots }

// IndexToNode returns the node of index, or -1 when index is out of range.
func (m *IndexManager) IndexToNode(index int64) int {
	if index < 0 || index >= int64(len(m.indexToNode)) {
		return unassigned
	}
	return m.indexToNode[index]
}

// NodeToIndex returns the regular index of node, or -1 when the node is out of
// range or is an end-only depot (those are reachable only through EndIndex).
func (m *IndexManager) NodeToIndex(node int) int64 {
	if node < 0 || node >= m.numNodes {
		return unassigned
	}
	return m.nodeToIndex[node]
}

// IndicesToNodes maps a batch of indices; out-of-range entries become -1.
func (m *IndexManager) IndicesToNodes(indices []int64) []int {
	out := make([]int, len(indices))
	for i, index := range indices {
		out[i] = m.IndexToNode(index)
	}
	return out
}

// NodesToIndices maps a batch of nodes; nodes without a regular index become -1.
func (m *IndexManager) NodesToIndices(nodes []int) []int64 {
	out := make([]int64, len(nodes))
	for i, node := range nodes {
		out[i] = m.NodeToIndex(node)
	}
	return out
}

// StartIndex returns the start index of vehicle, or -1 when out of range.
func (m *IndexManager) StartIndex(vehicle int) int64 {
	if vehicle < 0 || vehicle >= m.numVehicles {
		return unassigned
	}
	return m.vehicleToStart[vehicle]
}

// EndIndex returns the end index of vehicle, or -1 when out of range.
func (m *IndexManager) EndIndex(vehicle int) int64 {
	if vehicle < 0 || vehicle >= m.numVehicles {
		return unassigned
	}
	return m.vehicleToEnd[vehicle]
}
