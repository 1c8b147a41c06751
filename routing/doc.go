// Package routing provides a vehicle-routing model on top of an index manager,
// user-registered transit evaluators and accumulated dimensions.
//
// The package mirrors the classic "index manager / routing model / assignment"
// split used by constraint-based routing libraries:
//
//   - IndexManager translates application nodes into solver indices. Depots are
//     duplicated per vehicle so that every vehicle owns a distinct start and end
//     index; see NewIndexManagerWithDepots for the exact numbering rule.
//   - Model owns the registry of transit evaluators (callbacks, matrices, vectors),
//     arc-cost configuration, dimensions (capacities, time windows, span costs) and
//     optional-visit disjunctions. Handles returned by the Register* methods are
//     sequential, stable and keep the evaluator reachable for the model's lifetime.
//   - SearchParameters select the first-solution strategy, the local-search
//     metaheuristic, the enabled neighborhoods and the search limits.
//   - Assignment is the immutable result of a successful solve.
//
// Solving pipeline:
//
//  1. Build a first solution (PathCheapestArc by default).
//  2. Improve it with first-improvement local search over 2-opt, or-opt, relocate,
//     exchange, cross and the activity operators for optional visits; simulated
//     annealing may run before the final descent.
//  3. Extract an Assignment with the objective, successors and cumul values.
//
// Error handling:
//
//   - Construction and registration problems are reported synchronously with
//     sentinel errors (ErrInvalidArgument and its refinements); use errors.Is.
//   - An unsolvable model is not an error: Solve returns nil and Status reports
//     StatusFail, StatusFailTimeout or StatusInvalid.
//   - A dimension name collision is reported by ErrDimensionExists while the
//     evaluator handle stays valid.
//
// Thread safety:
//
//   - A Model is not safe for concurrent use. Each IndexManager/Model pair is an
//     independent unit; distinct models may be solved on distinct goroutines.
//
// Complexity:
//
//   - Route evaluation is O(L·D) for a route of length L and D dimensions.
//   - One descent pass scans O(N²) candidate moves, N = number of visit indices.
package routing
