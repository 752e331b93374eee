package consumer

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/docforge/progress"
)

// BarConsumer renders progress as a visual bar that updates in-place.
//
// It uses carriage returns to redraw the same line, which only works on TTY
// output where ANSI control characters apply. For pipes, files, or CI logs,
// use TextConsumer or JSONConsumer instead.
//
// Example output:
//
//	ocr  42% |██████████░░░░░░░░░░░░░░░| 99/235
//	ocr: done
//
// Indeterminate timelines fall back to a plain counter line since no bar can
// be drawn without a total.
type BarConsumer struct {
	writer      io.Writer
	mu          sync.Mutex
	barWidth    int
	lastLineLen int
}

// NewBarConsumer creates a bar consumer that writes to w. The visual bar is
// fixed at 25 cells for consistent formatting.
func NewBarConsumer(w io.Writer) *BarConsumer {
	return &BarConsumer{
		writer:   w,
		barWidth: 25,
	}
}

// OnProgress redraws the bar for started and progress updates, and finishes
// the line on completion.
func (b *BarConsumer) OnProgress(update progress.Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := update.State
	label := state.Label
	if label == "" {
		label = "progress"
	}

	switch update.Kind {
	case progress.KindCompleted:
		b.clearLine()
		fmt.Fprintf(b.writer, "%s: done\n", label)
	case progress.KindTotalChanged:
		// The next progress update redraws against the new total;
		// nothing to print for the change itself.
	default:
		pct, ok := state.Percent()
		if !ok {
			b.redraw(fmt.Sprintf("%s  %d", label, state.Current))
			return
		}
		bar := b.buildBar(pct)
		b.redraw(fmt.Sprintf("%s %3.0f%% |%s| %d/%d", label, pct, bar, state.Current, *state.Total))
	}
}

// OnComplete is a no-op; the completed update already finished the line.
func (b *BarConsumer) OnComplete(state progress.State) {}

// buildBar renders the filled/empty cells for the given percentage.
func (b *BarConsumer) buildBar(pct float64) string {
	filled := int(pct / 100.0 * float64(b.barWidth))
	if filled > b.barWidth {
		filled = b.barWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", b.barWidth-filled)
}

// redraw clears the previous line with spaces and writes the new one
// without a trailing newline so the next update overwrites it.
func (b *BarConsumer) redraw(line string) {
	if b.lastLineLen > 0 {
		fmt.Fprint(b.writer, "\r")
		fmt.Fprint(b.writer, strings.Repeat(" ", b.lastLineLen))
		fmt.Fprint(b.writer, "\r")
	}
	fmt.Fprint(b.writer, line)
	b.lastLineLen = utf8.RuneCountInString(line)
}

func (b *BarConsumer) clearLine() {
	if b.lastLineLen > 0 {
		fmt.Fprint(b.writer, "\r")
		fmt.Fprint(b.writer, strings.Repeat(" ", b.lastLineLen))
		fmt.Fprint(b.writer, "\r")
		b.lastLineLen = 0
	}
}
