package taskcore

import "errors"

// Resource-exhaustion errors: returned directly to the caller with a
// stable error code, never fatal.
var (
	ErrPoolFull            = errors.New("taskcore: pool free queue is empty")
	ErrArgsTooLarge        = errors.New("taskcore: task arguments exceed local data capacity")
	ErrTooManyDependencies = errors.New("taskcore: dependency count exceeds permit list capacity")
	ErrNoPoolAvailable     = errors.New("taskcore: no pool of the requested type is free to acquire")
)

// Configuration errors: detected at storage construction.
var (
	ErrInvalidConfig      = errors.New("taskcore: invalid pool-type configuration")
	ErrInsufficientMemory = errors.New("taskcore: memory block too small for the requested configuration")
)

// ErrParentCompleted is a hardened invariant check: defining a child of
// an already-completed parent is a pure caller error, but the check is
// cheap, so taskcore surfaces it as an error instead of silently
// corrupting the parent's work_count.
var ErrParentCompleted = errors.New("taskcore: parent task has already completed")
