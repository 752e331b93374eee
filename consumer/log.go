package consumer

import (
	"github.com/go-logr/logr"

	"github.com/docforge/progress"
)

// LogConsumer forwards progress updates to a structured logger.
//
// Boundary events (started, total changed, completed) log at the default
// verbosity; ordinary progress ticks log at V(1) so they can be filtered out
// without losing the shape of the operation.
type LogConsumer struct {
	log logr.Logger
}

// NewLogConsumer creates a logging consumer.
func NewLogConsumer(log logr.Logger) *LogConsumer {
	return &LogConsumer{log: log}
}

// OnProgress logs the update with current/total/percent key-values.
func (l *LogConsumer) OnProgress(update progress.Update) {
	state := update.State
	keysAndValues := []interface{}{
		"kind", update.Kind,
		"label", state.Label,
		"current", state.Current,
		"delta", update.Delta,
	}
	if state.Total != nil {
		keysAndValues = append(keysAndValues, "total", *state.Total)
	}
	if pct, ok := state.Percent(); ok {
		keysAndValues = append(keysAndValues, "percent", pct)
	}

	if update.Kind == progress.KindProgress {
		l.log.V(1).Info("progress", keysAndValues...)
		return
	}
	l.log.Info("progress", keysAndValues...)
}

// OnComplete logs the terminal state.
func (l *LogConsumer) OnComplete(state progress.State) {
	l.log.Info("progress complete", "label", state.Label, "current", state.Current)
}
