package progress

import "errors"

// Validation errors returned by state construction and the emitter's driving
// operations. All are raised synchronously at the violating call site; the
// engine never clamps or coerces out-of-range input.
var (
	// ErrNegativeCurrent is returned when a change would make current negative.
	ErrNegativeCurrent = errors.New("progress: current must be non-negative")

	// ErrNegativeTotal is returned for a negative total.
	ErrNegativeTotal = errors.New("progress: total must be non-negative")

	// ErrExceedsTotal is returned when a change would push current past total.
	ErrExceedsTotal = errors.New("progress: current exceeds total")

	// ErrLabelTooLong is returned for labels longer than MaxLabelLen.
	ErrLabelTooLong = errors.New("progress: label exceeds maximum length")

	// ErrIndeterminateComplete is returned by Complete when the emitter has
	// no total to complete against.
	ErrIndeterminateComplete = errors.New("progress: cannot complete indeterminate emitter")

	// ErrTotalBelowCurrent is returned by UpdateTotal when the new total is
	// smaller than the already-accumulated current.
	ErrTotalBelowCurrent = errors.New("progress: total below current")

	// ErrNonPositiveWeight is returned by CreateChild for weights <= 0.
	ErrNonPositiveWeight = errors.New("progress: child weight must be positive")
)
