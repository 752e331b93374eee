package consumer

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/docforge/progress"
)

// JSONConsumer writes progress updates as newline-delimited JSON (NDJSON).
//
// Each line is a complete JSON object that can be parsed independently,
// making the format robust to interruption and easy to stream into log
// aggregation systems or CI pipelines.
//
// Example output:
//
//	{"state":{"current":1,"total":45,"label":"ocr","timestamp":"2026-08-24T17:06:14Z"},"delta":1,"kind":"started"}
//	{"state":{"current":20,"total":45,"label":"ocr","timestamp":"2026-08-24T17:06:15Z"},"delta":1,"kind":"progress"}
//	{"state":{"current":45,"total":45,"label":"ocr","timestamp":"2026-08-24T17:06:22Z"},"delta":0,"kind":"completed"}
type JSONConsumer struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONConsumer creates a JSON consumer that writes to w.
func NewJSONConsumer(w io.Writer) *JSONConsumer {
	return &JSONConsumer{writer: w}
}

// OnProgress writes the update as a single JSON line. Marshal and write
// errors are silently ignored so a broken sink never disturbs the pipeline.
func (j *JSONConsumer) OnProgress(update progress.Update) {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := json.Marshal(update)
	if err != nil {
		return
	}
	fmt.Fprintln(j.writer, string(data))
}

// OnComplete is a no-op; the completed update already carries the final
// state on its own line.
func (j *JSONConsumer) OnComplete(state progress.State) {}
