package progress

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"
)

// Stream bridges the synchronous emitter to pull-style consumption.
//
// It registers a transient consumer that relays every delivered update into
// a bounded channel. Sends are non-blocking: when the buffer is full an
// ordinary update is dropped, since a stream reader only needs the latest
// state, not every intermediate tick. The completed update is exempt — the
// oldest buffered update is evicted to make room — and after it is enqueued
// the channel closes and the transient consumer unregisters itself.
//
// Cancelling ctx closes the channel immediately; the transient consumer is
// then unregistered from the driving goroutine at the next delivered event.
// Callers needing eager cleanup can call RemoveConsumer themselves.
// Abandoning the channel without cancelling leaves the transient consumer
// attached until the emitter completes.
//
// Each call is independent; concurrent streams on one emitter each get their
// own queue.
func (e *Emitter) Stream(ctx context.Context) <-chan Update {
	s := &streamConsumer{
		ch:   make(chan Update, e.streamBuffer),
		done: make(chan struct{}),
		log:  e.log,
	}
	s.detach = func() { e.RemoveConsumer(s) }
	e.AddConsumer(s)

	go func() {
		select {
		case <-ctx.Done():
			s.close()
		case <-s.done:
		}
	}()

	return s.ch
}

// streamConsumer is the transient consumer behind Stream. The read-write
// mutex follows the channel-reporter pattern: relaying holds the read lock
// so a concurrent close cannot shut the channel mid-send.
type streamConsumer struct {
	mu         sync.RWMutex
	closed     bool
	ch         chan Update
	done       chan struct{}
	detach     func()
	detachOnce sync.Once
	dropped    atomic.Uint64
	log        logr.Logger
}

func (s *streamConsumer) OnProgress(update Update) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		// Closed by context cancellation; unregister now that we are
		// on the driving goroutine.
		s.detachOnce.Do(s.detach)
		return
	}

	if update.Kind == KindCompleted {
		// The terminal update must reach the reader so the stream can
		// end; evict the oldest buffered update until it fits.
		for sent := false; !sent; {
			select {
			case s.ch <- update:
				sent = true
			default:
				select {
				case <-s.ch:
				default:
				}
			}
		}
		s.mu.RUnlock()
		s.close()
		s.detachOnce.Do(s.detach)
		return
	}

	select {
	case s.ch <- update:
	default:
		dropped := s.dropped.Add(1)
		s.log.V(1).Info("progress update dropped by slow stream reader",
			"kind", update.Kind,
			"total_dropped", dropped,
		)
	}
	s.mu.RUnlock()
}

// OnComplete is a no-op: the completed update already arrived through
// OnProgress and terminated the stream.
func (s *streamConsumer) OnComplete(State) {}

func (s *streamConsumer) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
	close(s.done)
}
