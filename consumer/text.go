// Package consumer provides ready-made implementations of the
// progress.Consumer capability: human-readable text, NDJSON, an in-place
// terminal bar, a structured-logging sink, a plain-function adapter, and an
// OpenTelemetry span recorder.
//
// All consumers in this package are safe for concurrent use, although an
// emitter normally invokes them from a single driving goroutine.
package consumer

import (
	"fmt"
	"io"
	"sync"

	"github.com/docforge/progress"
)

// TextConsumer writes progress updates as timestamped human-readable lines.
//
// Example output:
//
//	[17:06:14] extracting pages: started
//	[17:06:14] extracting pages: 12/45 (26.7%)
//	[17:06:15] extracting pages: total changed to 60
//	[17:06:22] extracting pages: done (60/60)
//
// The writer is typically os.Stderr for terminal output, but can be any
// io.Writer including files and buffers.
type TextConsumer struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewTextConsumer creates a text consumer that writes to w.
func NewTextConsumer(w io.Writer) *TextConsumer {
	return &TextConsumer{writer: w}
}

// OnProgress writes one line per delivered update. The format varies by
// kind; indeterminate timelines print only the current count.
func (t *TextConsumer) OnProgress(update progress.Update) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := update.State
	stamp := state.Timestamp.Format("15:04:05")
	label := state.Label
	if label == "" {
		label = "progress"
	}

	var output string
	switch update.Kind {
	case progress.KindStarted:
		output = fmt.Sprintf("[%s] %s: started\n", stamp, label)
	case progress.KindTotalChanged:
		if state.Total != nil {
			output = fmt.Sprintf("[%s] %s: total changed to %d\n", stamp, label, *state.Total)
		} else {
			output = fmt.Sprintf("[%s] %s: total unknown\n", stamp, label)
		}
	case progress.KindCompleted:
		if state.Total != nil {
			output = fmt.Sprintf("[%s] %s: done (%d/%d)\n", stamp, label, state.Current, *state.Total)
		} else {
			output = fmt.Sprintf("[%s] %s: done\n", stamp, label)
		}
	default:
		if pct, ok := state.Percent(); ok {
			output = fmt.Sprintf("[%s] %s: %d/%d (%.1f%%)\n", stamp, label, state.Current, *state.Total, pct)
		} else {
			output = fmt.Sprintf("[%s] %s: %d\n", stamp, label, state.Current)
		}
	}

	t.writer.Write([]byte(output))
}

// OnComplete is a no-op; the completed update already produced the final
// line through OnProgress.
func (t *TextConsumer) OnComplete(state progress.State) {}
