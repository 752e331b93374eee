package progress

import (
	"fmt"
	"math"
)

// CreateChild creates a weighted child emitter and wires it into the
// parent's aggregation. The child shares the parent's throttle interval and
// logger; total may be nil for an indeterminate child. The weight must be
// positive and is interpreted relative to the other children's weights.
//
// The child holds no reference to its parent. The parent installs an opaque
// recomputation handle as a reserved internal watcher on the child, so every
// delivered child event triggers parent recomputation depth-first: the
// child's own broadcast finishes before the parent recomputes, which
// finishes before the child's driving call returns.
func (e *Emitter) CreateChild(total *int, weight float64, label string) (*Emitter, error) {
	if weight <= 0 {
		return nil, fmt.Errorf("weight %g: %w", weight, ErrNonPositiveWeight)
	}

	opts := []Option{
		WithLabel(label),
		WithThrottleInterval(e.throttle),
		WithLogger(e.log),
		WithStreamBuffer(e.streamBuffer),
	}
	if total != nil {
		opts = append(opts, WithTotal(*total))
	}
	child, err := NewEmitter(opts...)
	if err != nil {
		return nil, err
	}

	e.children = append(e.children, child)
	e.weights = append(e.weights, weight)
	child.watchers = append(child.watchers, e.recompute)
	return child, nil
}

// recompute recalculates the parent's current value from the weighted mean
// of child completion percentages.
//
// Weights are normalized to sum to one. Children without a usable total
// contribute zero rather than failing. A parent without a positive total has
// nothing to aggregate into and the call is a no-op. The resulting update is
// an ordinary KindProgress notification, subject to throttling.
func (e *Emitter) recompute() {
	if e.total == nil || *e.total <= 0 {
		return
	}

	var weightSum float64
	for _, w := range e.weights {
		weightSum += w
	}
	if weightSum == 0 {
		return
	}

	var weighted float64
	for i, child := range e.children {
		if child.total == nil || *child.total <= 0 {
			continue
		}
		pct := float64(child.current) / float64(*child.total) * 100.0
		weighted += pct * (e.weights[i] / weightSum)
	}

	previous := e.current
	e.current = int(math.Floor(weighted / 100.0 * float64(*e.total)))
	e.notify(e.current-previous, KindProgress, false)
}
