package routing

import "errors"

// ErrInvalidArgument is the parent of every construction/registration argument
// error. Refined sentinels below also satisfy errors.Is(err, ErrInvalidArgument).
var ErrInvalidArgument = errors.New("routing: invalid argument")

// argError is a sentinel refining ErrInvalidArgument.
type argError struct{ msg string }

func (e *argError) Error() string { return e.msg }

// Is reports ErrInvalidArgument as an ancestor.
func (e *argError) Is(target error) bool { return target == ErrInvalidArgument }

var (
	// ErrNodeOutOfRange is returned when a node id is outside [0, numNodes).
	ErrNodeOutOfRange error = &argError{"routing: node out of range"}

	// ErrVehicleOutOfRange is returned when a vehicle id is outside [0, numVehicles).
	ErrVehicleOutOfRange error = &argError{"routing: vehicle out of range"}

	// ErrIndexOutOfRange is returned when a solver index is outside [0, numIndices).
	ErrIndexOutOfRange error = &argError{"routing: index out of range"}

	// ErrDepotLength is returned when start/end depot arrays do not have one
	// entry per vehicle.
	ErrDepotLength error = &argError{"routing: depot array length does not match vehicle count"}

	// ErrShapeMismatch is returned when a transit matrix/vector does not match
	// the number of nodes, or a per-vehicle slice the number of vehicles.
	ErrShapeMismatch error = &argError{"routing: shape does not match the index manager"}

	// ErrNilCallback is returned when a nil transit function is registered.
	ErrNilCallback error = &argError{"routing: nil transit callback"}

	// ErrInvalidHandle is returned when a transit evaluator handle was never registered.
	ErrInvalidHandle error = &argError{"routing: unknown transit evaluator handle"}
)

var (
	// ErrDimensionExists reports a dimension name collision. The evaluator
	// handle returned alongside it is still registered and usable.
	ErrDimensionExists = errors.New("routing: dimension already exists")

	// ErrUnknownDimension is returned when no dimension carries the requested name.
	ErrUnknownDimension = errors.New("routing: unknown dimension")

	// ErrModelClosed is returned by mutating calls after the first solve.
	ErrModelClosed = errors.New("routing: model is closed for modification")

	// ErrInvalidParameters is returned by SearchParameters.Validate.
	ErrInvalidParameters = errors.New("routing: invalid search parameters")

	// ErrUnknownEnumValue is returned when parsing an unknown enumeration name.
	ErrUnknownEnumValue = errors.New("routing: unknown enumeration value")

	// ErrIndexUnperformed is returned when asking cumul values of an index
	// that is not visited by any route.
	ErrIndexUnperformed = errors.New("routing: index is not performed")
)
