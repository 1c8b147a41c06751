// Package lvroute is a pure-Go vehicle routing toolkit: describe a fleet,
// its depots, costs and constraints, and get back a route per vehicle.
//
// What is inside?
//
//	routing/        index manager, routing model, dimensions, disjunctions,
//	                first-solution strategies, local search and assignments
//	config/         YAML problem files turned into ready-to-solve models
//	metrics/        Prometheus collector observing every solve
//	store/          SQLite archive of solve runs
//	cmd/vrpsolve/   command-line solver tying the above together
//	examples/       a runnable drone-fleet scenario
//
// Quick start:
//
//	manager, _ := routing.NewIndexManager(len(dist), 2, 0)
//	model, _ := routing.NewModel(manager)
//	cost, _ := model.RegisterTransitMatrix(dist)
//	_ = model.SetArcCostEvaluatorOfAllVehicles(cost)
//	_, _ = model.AddVectorDimension(demands, 10, true, "load")
//	asg := model.Solve(nil)
//	if asg == nil {
//		log.Fatal(model.Status())
//	}
//	fmt.Println(asg.Route(0), asg.ObjectiveValue())
//
// Everything is deterministic for a fixed SearchParameters.Seed, and no cgo is
// involved (the SQLite driver is pure Go as well).
package lvroute
