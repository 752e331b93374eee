package consumer

import "github.com/docforge/progress"

// Callback adapts plain functions to the progress.Consumer capability.
//
// Either function may be nil; a nil function simply ignores that side of the
// contract. This is the lightest way for application code to observe an
// emitter without defining a type:
//
//	emitter.AddConsumer(consumer.NewCallback(
//	    func(u progress.Update) { ui.SetFraction(u.State) },
//	    nil,
//	))
type Callback struct {
	onProgress func(progress.Update)
	onComplete func(progress.State)
}

// NewCallback creates a callback consumer from the given functions.
func NewCallback(onProgress func(progress.Update), onComplete func(progress.State)) *Callback {
	return &Callback{
		onProgress: onProgress,
		onComplete: onComplete,
	}
}

// OnProgress invokes the progress function when set.
func (c *Callback) OnProgress(update progress.Update) {
	if c.onProgress != nil {
		c.onProgress(update)
	}
}

// OnComplete invokes the completion function when set.
func (c *Callback) OnComplete(state progress.State) {
	if c.onComplete != nil {
		c.onComplete(state)
	}
}
