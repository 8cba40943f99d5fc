// Package json renders command results as indented JSON for scripting.
package json

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gmorris/prwatch/internal/domain"
	"github.com/gmorris/prwatch/internal/usecase/watch"
)

// Writer encodes results to a single stream.
type Writer struct {
	out io.Writer
}

// NewWriter creates a JSON writer targeting out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// WriteComments encodes the comment list. An empty snapshot encodes as
// [] rather than null so consumers always see an array.
func (w *Writer) WriteComments(comments []domain.Comment) error {
	if comments == nil {
		comments = []domain.Comment{}
	}
	return w.encode(comments)
}

// WriteOutcome encodes a watch terminal result.
func (w *Writer) WriteOutcome(outcome watch.Outcome) error {
	return w.encode(outcome)
}

func (w *Writer) encode(v interface{}) error {
	encoder := json.NewEncoder(w.out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode json output: %w", err)
	}
	return nil
}
