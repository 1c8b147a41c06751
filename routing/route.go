// Package routing - route utilities shared by construction and local search.
//
// A route is held as the ordered visits of one vehicle, without its start and
// end indices. The helpers below rebuild candidate routes into caller-owned
// buffers so that scanning a neighborhood does not allocate per candidate.
package routing

// routeCost evaluates the visits of vehicle v: arc costs along
// start → visits → end, span costs of every dimension and the fixed cost.
// An empty route costs 0 unless ConsiderEmptyRouteCostsForVehicle was set, but
// its feasibility is still checked. ok is false when some dimension rejects
// the route.
//
// Complexity: O(len(visits) · (1 + #dimensions)).
func (m *Model) routeCost(v int, visits []int64) (cost int64, ok bool) {
	path := m.fullPath(v, visits)

	var k int
	for k = 1; k < len(path); k++ {
		cost += m.ArcCostForVehicle(path[k-1], path[k], v)
	}

	var span int64
	for _, d := range m.dimensions {
		if span, ok = d.schedule(v, path, nil); !ok {
			return 0, false
		}
		cost += d.spanCost[v] * span
	}

	if len(visits) == 0 && !m.usedWhenEmpty[v] {
		return 0, true
	}
	return cost + m.fixedCost[v], true
}

// fullPath writes start, visits, end of vehicle v into the model scratch buffer.
// The result is valid until the next call.
func (m *Model) fullPath(v int, visits []int64) []int64 {
	p := append(m.pathBuf[:0], m.manager.StartIndex(v))
	p = append(p, visits...)
	p = append(p, m.manager.EndIndex(v))
	m.pathBuf = p
	return p
}

// reverseInPlace reverses a[i..j] (inclusive). Requires 0 ≤ i ≤ j < len(a).
//
// Complexity: O(j−i+1).
func reverseInPlace(a []int64, i, j int) {
	for i < j {
		a[i], a[j] = a[j], a[i]
		i++
		j--
	}
}

// withInserted writes route with x inserted before position pos into buf.
func withInserted(buf, route []int64, pos int, x int64) []int64 {
	buf = append(buf[:0], route[:pos]...)
	buf = append(buf, x)
	return append(buf, route[pos:]...)
}

// withRemoved writes route without its element at pos into buf.
func withRemoved(buf, route []int64, pos int) []int64 {
	buf = append(buf[:0], route[:pos]...)
	return append(buf, route[pos+1:]...)
}

// withReplaced writes route with its element at pos replaced by x into buf.
func withReplaced(buf, route []int64, pos int, x int64) []int64 {
	buf = append(buf[:0], route...)
	buf[pos] = x
	return buf
}

// withSegmentMoved writes route with the segment [i, i+length) moved so that
// it starts at position pos of the remaining sequence.
func withSegmentMoved(buf, route []int64, i, length, pos int) []int64 {
	buf = buf[:0]
	rest := len(route) - length
	var k int
	for k = 0; k <= rest; k++ {
		if k == pos {
			buf = append(buf, route[i:i+length]...)
		}
		if k == rest {
			break
		}
		if k < i {
			buf = append(buf, route[k])
		} else {
			buf = append(buf, route[k+length])
		}
	}
	return buf
}

// withTail writes head[:i] followed by tail[j:] into buf.
func withTail(buf, head []int64, i int, tail []int64, j int) []int64 {
	buf = append(buf[:0], head[:i]...)
	return append(buf, tail[j:]...)
}

// cloneRoutes returns an independent deep copy.
func cloneRoutes(routes [][]int64) [][]int64 {
	out := make([][]int64, len(routes))
	for v, r := range routes {
		out[v] = append([]int64(nil), r...)
	}
	return out
}
