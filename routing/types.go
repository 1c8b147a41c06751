package routing

import "time"

// TransitFunc evaluates the transit between two solver indices.
type TransitFunc func(from, to int64) int64

// UnaryTransitFunc evaluates a transit depending only on the origin index.
type UnaryTransitFunc func(from int64) int64

// NoPenalty marks a disjunction as mandatory: one of its indices must be visited.
const NoPenalty int64 = -1

// Status is the state of the last solve attempt of a Model.
type Status int

const (
	// StatusNotSolved is the initial state and the state during a solve.
	StatusNotSolved Status = iota
	// StatusSuccess means a solution was found and local search converged
	// (or stopped on the solution limit).
	StatusSuccess
	// StatusPartialSuccess means a solution was found but the time limit or the
	// context interrupted local search before a local optimum was reached.
	StatusPartialSuccess
	// StatusFail means no feasible first solution exists for the strategy.
	StatusFail
	// StatusFailTimeout means the limits expired before any solution was found.
	StatusFailTimeout
	// StatusInvalid means the search parameters were rejected.
	StatusInvalid
)

var statusNames = [...]string{
	StatusNotSolved:      "ROUTING_NOT_SOLVED",
	StatusSuccess:        "ROUTING_SUCCESS",
	StatusPartialSuccess: "ROUTING_PARTIAL_SUCCESS_LOCAL_OPTIMUM_NOT_REACHED",
	StatusFail:           "ROUTING_FAIL",
	StatusFailTimeout:    "ROUTING_FAIL_TIMEOUT",
	StatusInvalid:        "ROUTING_INVALID",
}

// String returns the upper-snake name of the status.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "ROUTING_UNKNOWN"
	}
	return statusNames[s]
}

// HasSolution reports whether the status carries an assignment.
func (s Status) HasSolution() bool {
	return s == StatusSuccess || s == StatusPartialSuccess
}

// Local-search operator names, used in SolveReport.Moves and logs.
const (
	OperatorTwoOpt       = "two_opt"
	OperatorOrOpt        = "or_opt"
	OperatorRelocate     = "relocate"
	OperatorExchange     = "exchange"
	OperatorCross        = "cross"
	OperatorMakeActive   = "make_active"
	OperatorMakeInactive = "make_inactive"
	OperatorSwapActive   = "swap_active"
)

// SolveReport summarises one solve for observers.
type SolveReport struct {
	Status                   Status
	FirstSolutionStrategy    FirstSolutionStrategy
	LocalSearchMetaheuristic LocalSearchMetaheuristic
	// Objective is meaningful only when Status.HasSolution().
	Objective int64
	// FirstSolutionObjective is the objective before local search.
	FirstSolutionObjective int64
	Duration               time.Duration
	// Moves counts accepted moves per operator name.
	Moves map[string]int64
	// Iterations counts evaluated neighbors.
	Iterations int64
}

// Observer receives a report at the end of every solve.
type Observer interface {
	ObserveSolve(report SolveReport)
}
