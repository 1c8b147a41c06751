// Package routing_test provides runnable, deterministic examples of the
// index manager / model / assignment pipeline. Every example prints a stable
// // Output: block.
package routing_test

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/lvroute/routing"
)

// formatRoute prints the nodes of a route as "a -> b -> c".
func formatRoute(manager *routing.IndexManager, route []int64) string {
	parts := make([]string, len(route))
	for k, index := range route {
		parts[k] = fmt.Sprint(manager.IndexToNode(index))
	}
	return strings.Join(parts, " -> ")
}

// Example_manhattan solves a one-vehicle tour under the Manhattan metric.
func Example_manhattan() {
	points := [][2]int64{{0, 0}, {-1, 0}, {-1, 2}, {2, 1}, {1, 0}}
	manager, _ := routing.NewIndexManager(len(points), 1, 0)
	model, _ := routing.NewModel(manager)

	transit, _ := model.RegisterTransitCallback(func(from, to int64) int64 {
		a, b := points[manager.IndexToNode(from)], points[manager.IndexToNode(to)]
		dx, dy := a[0]-b[0], a[1]-b[1]
		if dx < 0 {
			dx = -dx
		}
		if dy < 0 {
			dy = -dy
		}
		return dx + dy
	})
	_ = model.SetArcCostEvaluatorOfAllVehicles(transit)

	asg := model.Solve(nil)
	fmt.Println(model.Status())
	fmt.Println(formatRoute(manager, asg.Route(0)))
	fmt.Println("objective:", asg.ObjectiveValue())
	// Output:
	// ROUTING_SUCCESS
	// 0 -> 1 -> 2 -> 3 -> 4 -> 0
	// objective: 10
}

// Example_capacity splits deliveries between two vehicles of capacity 10.
func Example_capacity() {
	manager, _ := routing.NewIndexManager(5, 2, 0)
	model, _ := routing.NewModel(manager)

	distance, _ := model.RegisterTransitMatrix([][]int64{
		{1, 1, 1, 1, 1},
		{1, 1, 1, 1, 1},
		{1, 1, 1, 1, 1},
		{1, 1, 1, 1, 1},
		{1, 1, 1, 1, 1},
	})
	_ = model.SetArcCostEvaluatorOfAllVehicles(distance)
	_, _ = model.AddVectorDimension([]int64{0, 6, 6, 0, 0}, 10, true, "load")

	asg := model.Solve(nil)
	for v := 0; v < model.Vehicles(); v++ {
		load, _ := asg.CumulValue("load", model.End(v))
		fmt.Printf("vehicle %d: %s (load %d)\n", v, formatRoute(manager, asg.Route(v)), load)
	}
	fmt.Println("objective:", asg.ObjectiveValue())
	// Output:
	// vehicle 0: 0 -> 1 -> 3 -> 4 -> 0 (load 6)
	// vehicle 1: 0 -> 2 -> 0 (load 6)
	// objective: 6
}

// ExampleNewIndexManagerWithDepots shows how depots are duplicated per vehicle.
func ExampleNewIndexManagerWithDepots() {
	manager, _ := routing.NewIndexManagerWithDepots(6, 2, []int{0, 0}, []int{5, 5})
	fmt.Println("indices:", manager.NumberOfIndices())
	for v := 0; v < manager.NumberOfVehicles(); v++ {
		fmt.Printf("vehicle %d: start %d (node %d), end %d (node %d)\n", v,
			manager.StartIndex(v), manager.IndexToNode(manager.StartIndex(v)),
			manager.EndIndex(v), manager.IndexToNode(manager.EndIndex(v)))
	}
	fmt.Println("node 5 has a regular index:", manager.NodeToIndex(5) >= 0)
	// Output:
	// indices: 8
	// vehicle 0: start 0 (node 0), end 6 (node 5)
	// vehicle 1: start 5 (node 0), end 7 (node 5)
	// node 5 has a regular index: false
}
