package progress

import (
	"fmt"
	"time"
)

// MaxLabelLen is the maximum length of an emitter or state label.
const MaxLabelLen = 100

// Kind classifies a progress update.
type Kind string

const (
	// KindStarted marks the first transition away from zero.
	KindStarted Kind = "started"

	// KindProgress marks an ordinary increment or current-value change.
	KindProgress Kind = "progress"

	// KindTotalChanged marks a redefinition of the total, including a
	// switch to or from indeterminate progress.
	KindTotalChanged Kind = "total_changed"

	// KindCompleted marks the terminal update of a timeline.
	KindCompleted Kind = "completed"

	// KindError is reserved for consumer-side failure signaling. The
	// engine itself never emits updates of this kind.
	KindError Kind = "error"
)

// State is an immutable snapshot of a progress timeline.
//
// A nil Total means the timeline is indeterminate: the amount of remaining
// work is unknown and no completion percentage can be derived.
type State struct {
	// Current is the number of completed units.
	Current int `json:"current"`

	// Total is the number of units in the timeline, or nil when unknown.
	Total *int `json:"total,omitempty"`

	// Label is a short human-readable description of the operation.
	Label string `json:"label,omitempty"`

	// Timestamp is captured when the snapshot is taken.
	Timestamp time.Time `json:"timestamp"`
}

// NewState builds a validated snapshot. It fails fast on a negative current,
// a current exceeding a present total, or a label longer than MaxLabelLen.
func NewState(current int, total *int, label string) (State, error) {
	if current < 0 {
		return State{}, fmt.Errorf("current %d: %w", current, ErrNegativeCurrent)
	}
	if total != nil {
		if *total < 0 {
			return State{}, fmt.Errorf("total %d: %w", *total, ErrNegativeTotal)
		}
		if current > *total {
			return State{}, fmt.Errorf("current %d, total %d: %w", current, *total, ErrExceedsTotal)
		}
	}
	if len(label) > MaxLabelLen {
		return State{}, fmt.Errorf("label length %d: %w", len(label), ErrLabelTooLong)
	}
	s := State{Current: current, Label: label, Timestamp: time.Now()}
	if total != nil {
		t := *total
		s.Total = &t
	}
	return s, nil
}

// Percent returns the completion percentage. The second return value is
// false for indeterminate or zero-total states.
func (s State) Percent() (float64, bool) {
	if s.Total == nil || *s.Total <= 0 {
		return 0, false
	}
	return float64(s.Current) / float64(*s.Total) * 100.0, true
}

// Indeterminate reports whether the timeline has no known total.
func (s State) Indeterminate() bool {
	return s.Total == nil
}

// Update is the immutable event envelope delivered to consumers.
type Update struct {
	// State is the snapshot taken after the change was applied.
	State State `json:"state"`

	// Delta is the signed magnitude of the most recent change. It is zero
	// for total changes and completion.
	Delta int `json:"delta"`

	// Kind classifies the update.
	Kind Kind `json:"kind"`
}

// Consumer receives progress notifications from an emitter.
//
// Implementations are invoked inline from the emitter's driving goroutine
// and must not block. A panic inside either method is recovered and logged
// by the emitter; it never reaches the driving pipeline.
//
// Consumers are compared by identity for removal, so implementations should
// be pointer types.
type Consumer interface {
	// OnProgress is called for every delivered update.
	OnProgress(update Update)

	// OnComplete is called once per Complete call, after the completed
	// update has been delivered through OnProgress.
	OnComplete(state State)
}

// Total is a convenience for building the optional totals taken by
// UpdateTotal and CreateChild.
func Total(n int) *int {
	return &n
}
