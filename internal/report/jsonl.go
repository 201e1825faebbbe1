package report

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"
)

// WriteJSONL writes each report as one JSON line to w.
func WriteJSONL(w io.Writer, reports []Report) error {
	jw := NewJSONLWriter(w)
	for _, r := range reports {
		if err := jw.Write(r); err != nil {
			return err
		}
	}
	return jw.Flush()
}

// JSONLWriter streams reports as JSON lines; safe for concurrent use.
type JSONLWriter struct {
	w  *bufio.Writer
	mu sync.Mutex
}

// NewJSONLWriter wraps an io.Writer with buffering.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{w: bufio.NewWriter(w)}
}

// Write encodes a single report as one line.
func (j *JSONLWriter) Write(r Report) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	enc := json.NewEncoder(j.w)
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}

// Flush flushes the underlying buffer.
func (j *JSONLWriter) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.w.Flush()
}
