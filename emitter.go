package progress

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"
)

// DefaultThrottleInterval is the notification throttle applied when no
// interval is configured.
const DefaultThrottleInterval = 500 * time.Millisecond

// defaultStreamBuffer is the capacity of the bounded queue behind Stream.
const defaultStreamBuffer = 64

// Emitter is the stateful controller of a single progress timeline.
//
// It owns the current/total/label triple, a throttling clock, the ordered
// list of registered consumers, and the weighted child emitters it
// aggregates. All driving operations are synchronous and non-blocking; see
// the package documentation for the concurrency contract.
type Emitter struct {
	current int
	total   *int
	label   string

	throttle   time.Duration
	lastNotify time.Time

	consumers []Consumer

	// watchers are reserved internal notification hooks, fired after the
	// consumer broadcast of every delivered update. CreateChild installs
	// the parent's recomputation handle here so a child completes its own
	// notification before the parent recomputes.
	watchers []func()

	children []*Emitter
	weights  []float64

	streamBuffer int
	log          logr.Logger
}

// Option configures an Emitter during construction.
type Option func(e *Emitter)

// WithTotal sets the number of work units in the timeline. Without this
// option the emitter is indeterminate.
func WithTotal(total int) Option {
	return func(e *Emitter) {
		t := total
		e.total = &t
	}
}

// WithLabel sets the human-readable label carried by every snapshot.
func WithLabel(label string) Option {
	return func(e *Emitter) {
		e.label = label
	}
}

// WithThrottleInterval sets the minimum spacing between ordinary progress
// notifications. Zero disables throttling.
func WithThrottleInterval(d time.Duration) Option {
	return func(e *Emitter) {
		e.throttle = d
	}
}

// WithLogger sets the logger used to report suppressed consumer panics and
// dropped stream updates. Defaults to logr.Discard.
func WithLogger(log logr.Logger) Option {
	return func(e *Emitter) {
		e.log = log
	}
}

// WithStreamBuffer sets the bounded queue capacity used by Stream.
func WithStreamBuffer(n int) Option {
	return func(e *Emitter) {
		if n > 0 {
			e.streamBuffer = n
		}
	}
}

// NewEmitter creates an emitter. It fails fast on a negative total or an
// over-long label; everything else is optional.
func NewEmitter(opts ...Option) (*Emitter, error) {
	e := &Emitter{
		throttle:     DefaultThrottleInterval,
		streamBuffer: defaultStreamBuffer,
		log:          logr.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.total != nil && *e.total < 0 {
		return nil, fmt.Errorf("total %d: %w", *e.total, ErrNegativeTotal)
	}
	if len(e.label) > MaxLabelLen {
		return nil, fmt.Errorf("label length %d: %w", len(e.label), ErrLabelTooLong)
	}
	return e, nil
}

// Current returns the number of completed units.
func (e *Emitter) Current() int {
	return e.current
}

// Total returns a copy of the configured total, or nil when indeterminate.
func (e *Emitter) Total() *int {
	if e.total == nil {
		return nil
	}
	t := *e.total
	return &t
}

// Label returns the emitter's label.
func (e *Emitter) Label() string {
	return e.label
}

// State returns an immutable snapshot of the timeline.
func (e *Emitter) State() State {
	return e.snapshot()
}

// AddConsumer registers a consumer. Registration order is notification
// order; duplicates are allowed and notified once per registration.
func (e *Emitter) AddConsumer(c Consumer) {
	e.consumers = append(e.consumers, c)
}

// RemoveConsumer unregisters the first registration of c, matched by
// identity. Removing an unknown consumer is a no-op.
func (e *Emitter) RemoveConsumer(c Consumer) {
	for i, registered := range e.consumers {
		if registered == c {
			e.consumers = append(e.consumers[:i], e.consumers[i+1:]...)
			return
		}
	}
}

// Update advances current by increment, which may be negative. It fails
// without mutating when the result would be negative or exceed a present
// total. The update is classified KindStarted on the first transition away
// from zero, KindProgress otherwise, and is delivered subject to throttling
// unless force is set.
func (e *Emitter) Update(increment int, force bool) error {
	next := e.current + increment
	if next < 0 {
		return fmt.Errorf("update by %d from %d: %w", increment, e.current, ErrNegativeCurrent)
	}
	if e.total != nil && next > *e.total {
		return fmt.Errorf("update by %d from %d to %d, total %d: %w", increment, e.current, next, *e.total, ErrExceedsTotal)
	}
	kind := KindProgress
	if e.current == 0 && increment > 0 {
		kind = KindStarted
	}
	e.current = next
	e.notify(increment, kind, force)
	return nil
}

// Inc is shorthand for Update(1, false).
func (e *Emitter) Inc() error {
	return e.Update(1, false)
}

// SetCurrent sets current to an absolute value, deriving a signed delta from
// the previous value. It fails without mutating on a negative value or one
// exceeding a present total. A value of zero is classified KindStarted.
func (e *Emitter) SetCurrent(value int, force bool) error {
	if value < 0 {
		return fmt.Errorf("set current %d: %w", value, ErrNegativeCurrent)
	}
	if e.total != nil && value > *e.total {
		return fmt.Errorf("set current %d, total %d: %w", value, *e.total, ErrExceedsTotal)
	}
	delta := value - e.current
	e.current = value
	kind := KindProgress
	if value == 0 {
		kind = KindStarted
	}
	e.notify(delta, kind, force)
	return nil
}

// UpdateTotal redefines the total. A nil total switches the timeline to
// indeterminate; a present total must be non-negative and at least current.
// The resulting KindTotalChanged update bypasses throttling unconditionally.
func (e *Emitter) UpdateTotal(newTotal *int) error {
	if newTotal == nil {
		e.total = nil
	} else {
		if *newTotal < 0 {
			return fmt.Errorf("new total %d: %w", *newTotal, ErrNegativeTotal)
		}
		if *newTotal < e.current {
			return fmt.Errorf("new total %d, current %d: %w", *newTotal, e.current, ErrTotalBelowCurrent)
		}
		t := *newTotal
		e.total = &t
	}
	e.notify(0, KindTotalChanged, false)
	return nil
}

// Complete finishes the timeline: current is set to total, a KindCompleted
// update bypasses throttling, and every consumer's OnComplete is invoked
// after OnProgress. Completing an indeterminate emitter fails. Completion is
// not latched; later driving calls simply produce further events.
func (e *Emitter) Complete() error {
	if e.total == nil {
		return fmt.Errorf("complete %q: %w", e.label, ErrIndeterminateComplete)
	}
	e.current = *e.total
	e.notify(0, KindCompleted, false)

	state := e.snapshot()
	for _, c := range e.snapshotConsumers() {
		e.deliverComplete(c, state)
	}
	return nil
}

// notify applies the throttle policy and broadcasts when allowed.
//
// Only KindProgress updates are subject to suppression; started, total
// changed, and completed updates always go out, as does anything forced.
// The throttle clock is refreshed on every delivered notification.
func (e *Emitter) notify(delta int, kind Kind, force bool) {
	now := time.Now()
	if !force && kind == KindProgress && now.Sub(e.lastNotify) < e.throttle {
		return
	}
	e.lastNotify = now

	update := Update{State: e.snapshot(), Delta: delta, Kind: kind}
	for _, c := range e.snapshotConsumers() {
		e.deliverProgress(c, update)
	}
	for _, w := range e.watchers {
		w()
	}
}

// snapshotConsumers copies the registry so a consumer may remove itself (or
// others) while a broadcast is in flight.
func (e *Emitter) snapshotConsumers() []Consumer {
	return append([]Consumer(nil), e.consumers...)
}

func (e *Emitter) snapshot() State {
	s := State{Current: e.current, Label: e.label, Timestamp: time.Now()}
	if e.total != nil {
		t := *e.total
		s.Total = &t
	}
	return s
}

// deliverProgress invokes OnProgress under a recover so one misbehaving
// consumer cannot stall the pipeline or starve the remaining consumers.
func (e *Emitter) deliverProgress(c Consumer, update Update) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error(fmt.Errorf("%v", r), "progress consumer panicked, continuing",
				"kind", update.Kind,
				"label", e.label,
			)
		}
	}()
	c.OnProgress(update)
}

func (e *Emitter) deliverComplete(c Consumer, state State) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error(fmt.Errorf("%v", r), "progress consumer panicked on completion, continuing",
				"label", e.label,
			)
		}
	}()
	c.OnComplete(state)
}
