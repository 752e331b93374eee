// Package progress provides progress emission and aggregation for long-running
// operations in document and media processing pipelines.
//
// The package is built around the Emitter, a synchronous state machine that
// tracks current/total progress, broadcasts updates to a dynamic set of
// consumers under a throttling policy, and composes hierarchically through
// weighted child emitters.
//
// # Basic Usage
//
// A pipeline creates an emitter, attaches consumers, and drives it:
//
//	emitter, err := progress.NewEmitter(
//	    progress.WithTotal(len(pages)),
//	    progress.WithLabel("extracting pages"),
//	)
//	if err != nil {
//	    return err
//	}
//	emitter.AddConsumer(consumer.NewTextConsumer(os.Stderr))
//
//	for range pages {
//	    if err := emitter.Inc(); err != nil {
//	        return err
//	    }
//	}
//	emitter.Complete()
//
// # Throttling
//
// Notifications are throttled to the configured interval (500ms by default)
// so a pipeline reporting per-byte progress degrades gracefully to the
// configured refresh rate. Boundary events are never suppressed: the first
// transition away from zero, total changes, and completion are always
// delivered, as are updates driven with force set.
//
// # Hierarchical Aggregation
//
// A parent emitter aggregates weighted child emitters. Each child event
// recomputes the parent's current value from the weighted mean of child
// completion percentages:
//
//	parent, _ := progress.NewEmitter(progress.WithTotal(100))
//	ocr, _ := parent.CreateChild(progress.Total(400), 0.6, "ocr")
//	index, _ := parent.CreateChild(progress.Total(50), 0.4, "index")
//
//	// Driving ocr and index now drives parent.
//
// # Streaming
//
// Stream bridges the synchronous emitter to pull-style consumption. The
// returned channel closes after yielding the completed update, or when the
// context is cancelled:
//
//	for update := range emitter.Stream(ctx) {
//	    if pct, ok := update.State.Percent(); ok {
//	        fmt.Printf("%.0f%%\n", pct)
//	    }
//	}
//
// Streams are lossy under backpressure by design: a slow reader misses
// intermediate ticks, never the terminal update.
//
// # Concurrency
//
// An emitter is a synchronous state machine intended to be driven from a
// single goroutine; it performs no internal locking around its own state.
// Stream is the one concurrency-aware surface and may be consumed from other
// goroutines. Consumers are invoked inline from the driving goroutine and
// must not block; a panicking consumer is recovered, logged, and never
// affects the driving pipeline or other consumers.
package progress
