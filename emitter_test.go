package progress

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// mockConsumer captures every notification for inspection.
type mockConsumer struct {
	mu        sync.Mutex
	updates   []Update
	completes []State
}

func (m *mockConsumer) OnProgress(update Update) {
	m.mu.Lock()
	m.updates = append(m.updates, update)
	m.mu.Unlock()
}

func (m *mockConsumer) OnComplete(state State) {
	m.mu.Lock()
	m.completes = append(m.completes, state)
	m.mu.Unlock()
}

func (m *mockConsumer) Updates() []Update {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Update{}, m.updates...)
}

func (m *mockConsumer) Completes() []State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]State{}, m.completes...)
}

func (m *mockConsumer) kinds() []Kind {
	var kinds []Kind
	for _, u := range m.Updates() {
		kinds = append(kinds, u.Kind)
	}
	return kinds
}

// panickingConsumer panics on every notification.
type panickingConsumer struct{}

func (p *panickingConsumer) OnProgress(Update) { panic("misbehaving renderer") }
func (p *panickingConsumer) OnComplete(State)  { panic("misbehaving renderer") }

func newTestEmitter(t *testing.T, opts ...Option) *Emitter {
	t.Helper()
	e, err := NewEmitter(append([]Option{WithThrottleInterval(0)}, opts...)...)
	if err != nil {
		t.Fatalf("NewEmitter failed: %v", err)
	}
	return e
}

func TestNewEmitterValidation(t *testing.T) {
	if _, err := NewEmitter(WithTotal(-1)); !errors.Is(err, ErrNegativeTotal) {
		t.Errorf("Expected ErrNegativeTotal, got %v", err)
	}
	if _, err := NewEmitter(WithLabel(strings.Repeat("x", MaxLabelLen+1))); !errors.Is(err, ErrLabelTooLong) {
		t.Errorf("Expected ErrLabelTooLong, got %v", err)
	}
	e, err := NewEmitter(WithTotal(0), WithLabel(strings.Repeat("x", MaxLabelLen)))
	if err != nil {
		t.Fatalf("Expected zero total and max-length label to be valid, got %v", err)
	}
	if e.Total() == nil || *e.Total() != 0 {
		t.Errorf("Expected total 0, got %v", e.Total())
	}
}

func TestEmitterUpdateAccumulates(t *testing.T) {
	e := newTestEmitter(t, WithTotal(100))

	increments := []int{5, 0, 20, 25, 50}
	sum := 0
	for _, inc := range increments {
		if err := e.Update(inc, false); err != nil {
			t.Fatalf("Update(%d) failed: %v", inc, err)
		}
		sum += inc
	}

	if e.Current() != sum {
		t.Errorf("Expected current %d, got %d", sum, e.Current())
	}
	if pct, ok := e.State().Percent(); !ok || pct != 100.0 {
		t.Errorf("Expected 100%%, got %v (%v)", pct, ok)
	}
}

func TestEmitterUpdateExceedsTotalLeavesCurrentUnchanged(t *testing.T) {
	e := newTestEmitter(t, WithTotal(10))

	if err := e.Update(5, false); err != nil {
		t.Fatalf("Update(5) failed: %v", err)
	}
	err := e.Update(6, false)
	if !errors.Is(err, ErrExceedsTotal) {
		t.Errorf("Expected ErrExceedsTotal, got %v", err)
	}
	if e.Current() != 5 {
		t.Errorf("Expected current unchanged at 5, got %d", e.Current())
	}
}

func TestEmitterUpdateNegativeCurrent(t *testing.T) {
	e := newTestEmitter(t, WithTotal(10))

	if err := e.Update(3, false); err != nil {
		t.Fatalf("Update(3) failed: %v", err)
	}
	if err := e.Update(-4, false); !errors.Is(err, ErrNegativeCurrent) {
		t.Errorf("Expected ErrNegativeCurrent, got %v", err)
	}
	if e.Current() != 3 {
		t.Errorf("Expected current unchanged at 3, got %d", e.Current())
	}

	// A decrement that stays non-negative is legal.
	if err := e.Update(-2, false); err != nil {
		t.Fatalf("Update(-2) failed: %v", err)
	}
	if e.Current() != 1 {
		t.Errorf("Expected current 1, got %d", e.Current())
	}
}

func TestEmitterStartedClassification(t *testing.T) {
	mock := &mockConsumer{}
	e := newTestEmitter(t, WithTotal(10))
	e.AddConsumer(mock)

	e.Update(1, false)
	e.Update(1, false)

	kinds := mock.kinds()
	if len(kinds) != 2 {
		t.Fatalf("Expected 2 updates, got %d", len(kinds))
	}
	if kinds[0] != KindStarted {
		t.Errorf("Expected first update KindStarted, got %s", kinds[0])
	}
	if kinds[1] != KindProgress {
		t.Errorf("Expected second update KindProgress, got %s", kinds[1])
	}
}

func TestEmitterThrottlingSuppressesBurst(t *testing.T) {
	mock := &mockConsumer{}
	e, err := NewEmitter(WithTotal(200), WithThrottleInterval(100*time.Millisecond))
	if err != nil {
		t.Fatalf("NewEmitter failed: %v", err)
	}
	e.AddConsumer(mock)

	n := 50
	for i := 0; i < n; i++ {
		if err := e.Update(1, false); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	updates := mock.Updates()
	if len(updates) >= n {
		t.Errorf("Expected throttling to suppress some of the %d updates, got %d", n, len(updates))
	}
	if len(updates) == 0 || updates[0].Kind != KindStarted {
		t.Fatalf("Expected the started update to always be delivered, got %v", mock.kinds())
	}

	// A forced update bypasses the throttle window.
	before := len(updates)
	if err := e.Update(1, true); err != nil {
		t.Fatalf("forced Update failed: %v", err)
	}
	if len(mock.Updates()) != before+1 {
		t.Errorf("Expected forced update to be delivered")
	}
}

func TestEmitterThrottleIntervalElapsed(t *testing.T) {
	mock := &mockConsumer{}
	e, err := NewEmitter(WithTotal(100), WithThrottleInterval(30*time.Millisecond))
	if err != nil {
		t.Fatalf("NewEmitter failed: %v", err)
	}
	e.AddConsumer(mock)

	e.Update(1, false)
	time.Sleep(40 * time.Millisecond)
	e.Update(1, false)
	time.Sleep(40 * time.Millisecond)
	e.Update(1, false)

	if got := len(mock.Updates()); got != 3 {
		t.Errorf("Expected 3 delivered updates with elapsed intervals, got %d", got)
	}
}

func TestEmitterSetCurrent(t *testing.T) {
	mock := &mockConsumer{}
	e := newTestEmitter(t, WithTotal(100))
	e.AddConsumer(mock)

	if err := e.SetCurrent(40, false); err != nil {
		t.Fatalf("SetCurrent(40) failed: %v", err)
	}
	if err := e.SetCurrent(15, false); err != nil {
		t.Fatalf("SetCurrent(15) failed: %v", err)
	}

	updates := mock.Updates()
	if len(updates) != 2 {
		t.Fatalf("Expected 2 updates, got %d", len(updates))
	}
	if updates[0].Delta != 40 {
		t.Errorf("Expected delta 40, got %d", updates[0].Delta)
	}
	if updates[1].Delta != -25 {
		t.Errorf("Expected delta -25, got %d", updates[1].Delta)
	}

	if err := e.SetCurrent(101, false); !errors.Is(err, ErrExceedsTotal) {
		t.Errorf("Expected ErrExceedsTotal, got %v", err)
	}
	if err := e.SetCurrent(-1, false); !errors.Is(err, ErrNegativeCurrent) {
		t.Errorf("Expected ErrNegativeCurrent, got %v", err)
	}
	if e.Current() != 15 {
		t.Errorf("Expected current unchanged at 15, got %d", e.Current())
	}

	// Returning to zero is classified as a start.
	if err := e.SetCurrent(0, false); err != nil {
		t.Fatalf("SetCurrent(0) failed: %v", err)
	}
	updates = mock.Updates()
	if updates[len(updates)-1].Kind != KindStarted {
		t.Errorf("Expected SetCurrent(0) to be KindStarted, got %s", updates[len(updates)-1].Kind)
	}
}

func TestEmitterUpdateTotalBypassesThrottle(t *testing.T) {
	mock := &mockConsumer{}
	e, err := NewEmitter(WithTotal(10), WithThrottleInterval(time.Hour))
	if err != nil {
		t.Fatalf("NewEmitter failed: %v", err)
	}
	e.AddConsumer(mock)

	if err := e.UpdateTotal(Total(20)); err != nil {
		t.Fatalf("UpdateTotal(20) failed: %v", err)
	}
	if err := e.UpdateTotal(Total(30)); err != nil {
		t.Fatalf("UpdateTotal(30) failed: %v", err)
	}

	kinds := mock.kinds()
	if len(kinds) != 2 || kinds[0] != KindTotalChanged || kinds[1] != KindTotalChanged {
		t.Errorf("Expected two unthrottled total_changed updates, got %v", kinds)
	}
}

func TestEmitterUpdateTotalValidation(t *testing.T) {
	e := newTestEmitter(t, WithTotal(10))
	e.Update(5, false)

	if err := e.UpdateTotal(Total(4)); !errors.Is(err, ErrTotalBelowCurrent) {
		t.Errorf("Expected ErrTotalBelowCurrent, got %v", err)
	}
	if err := e.UpdateTotal(Total(-1)); !errors.Is(err, ErrNegativeTotal) {
		t.Errorf("Expected ErrNegativeTotal, got %v", err)
	}
	if e.Total() == nil || *e.Total() != 10 {
		t.Errorf("Expected total unchanged at 10, got %v", e.Total())
	}

	// Switching to indeterminate is always legal.
	if err := e.UpdateTotal(nil); err != nil {
		t.Fatalf("UpdateTotal(nil) failed: %v", err)
	}
	if !e.State().Indeterminate() {
		t.Error("Expected emitter to be indeterminate")
	}
}

func TestEmitterCompleteIndeterminateFails(t *testing.T) {
	e := newTestEmitter(t)

	err := e.Complete()
	if !errors.Is(err, ErrIndeterminateComplete) {
		t.Errorf("Expected ErrIndeterminateComplete, got %v", err)
	}
}

func TestEmitterCompleteDeliversExactlyOnce(t *testing.T) {
	mock := &mockConsumer{}
	e, err := NewEmitter(WithTotal(10), WithThrottleInterval(time.Hour))
	if err != nil {
		t.Fatalf("NewEmitter failed: %v", err)
	}
	e.AddConsumer(mock)

	e.Update(3, false)
	if err := e.Complete(); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if e.Current() != 10 {
		t.Errorf("Expected current set to total, got %d", e.Current())
	}

	completed := 0
	for _, k := range mock.kinds() {
		if k == KindCompleted {
			completed++
		}
	}
	if completed != 1 {
		t.Errorf("Expected exactly one completed update, got %d", completed)
	}
	if len(mock.Completes()) != 1 {
		t.Errorf("Expected exactly one OnComplete call, got %d", len(mock.Completes()))
	}
	if mock.Completes()[0].Current != 10 {
		t.Errorf("Expected final state current 10, got %d", mock.Completes()[0].Current)
	}
}

func TestEmitterConsumerPanicIsolation(t *testing.T) {
	wellBehaved := &mockConsumer{}
	e := newTestEmitter(t, WithTotal(10))
	e.AddConsumer(&panickingConsumer{})
	e.AddConsumer(wellBehaved)

	for i := 0; i < 5; i++ {
		if err := e.Update(1, false); err != nil {
			t.Fatalf("Update failed despite consumer isolation: %v", err)
		}
	}
	if err := e.Complete(); err != nil {
		t.Fatalf("Complete failed despite consumer isolation: %v", err)
	}

	if got := len(wellBehaved.Updates()); got != 6 {
		t.Errorf("Expected well-behaved consumer to receive all 6 updates, got %d", got)
	}
	if got := len(wellBehaved.Completes()); got != 1 {
		t.Errorf("Expected well-behaved consumer to receive completion, got %d", got)
	}
}

func TestEmitterRemoveConsumer(t *testing.T) {
	first := &mockConsumer{}
	second := &mockConsumer{}
	e := newTestEmitter(t, WithTotal(10))
	e.AddConsumer(first)
	e.AddConsumer(second)

	e.Update(1, false)
	e.RemoveConsumer(first)
	e.Update(1, false)

	if got := len(first.Updates()); got != 1 {
		t.Errorf("Expected removed consumer to stop receiving updates, got %d", got)
	}
	if got := len(second.Updates()); got != 2 {
		t.Errorf("Expected remaining consumer to receive both updates, got %d", got)
	}

	// Removing an unknown consumer is a no-op.
	e.RemoveConsumer(&mockConsumer{})
}

func TestEmitterConsumersNotifiedInRegistrationOrder(t *testing.T) {
	var order []string
	e := newTestEmitter(t, WithTotal(10))
	e.AddConsumer(namedConsumer{name: "a", order: &order})
	e.AddConsumer(namedConsumer{name: "b", order: &order})

	e.Update(1, false)

	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("Expected registration-order notification, got %v", order)
	}
}

type namedConsumer struct {
	name  string
	order *[]string
}

func (n namedConsumer) OnProgress(Update) { *n.order = append(*n.order, n.name) }
func (n namedConsumer) OnComplete(State)  {}
