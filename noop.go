package progress

// NoopConsumer discards every notification.
//
// Attach it when a pipeline requires a consumer slot but no output is
// wanted; both methods are empty and carry zero overhead.
type NoopConsumer struct{}

// NewNoopConsumer creates a consumer that does nothing.
func NewNoopConsumer() *NoopConsumer {
	return &NoopConsumer{}
}

// OnProgress discards the update.
func (n *NoopConsumer) OnProgress(update Update) {}

// OnComplete discards the state.
func (n *NoopConsumer) OnComplete(state State) {}
