package annotation

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var ErrUnknownFormat = errors.New("unknown output format")

const (
	// FormatText writes one "start-end symbol label" line per annotation.
	FormatText = "text"
	// FormatJSON writes one json object per line.
	FormatJSON = "json"
)

// Writer is a sink writing annotations to an io.Writer.
type Writer struct {
	w      *bufio.Writer
	enc    *json.Encoder
	format string
}

// NewWriter returns a sink writing annotations in the given format.
func NewWriter(w io.Writer, format string) (*Writer, error) {
	bw := bufio.NewWriter(w)

	switch format {
	case FormatText:
		return &Writer{w: bw, format: format}, nil
	case FormatJSON:
		return &Writer{w: bw, enc: json.NewEncoder(bw), format: format}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Put writes a.
func (w *Writer) Put(a Annotation) error {
	if w.enc != nil {
		return w.enc.Encode(a)
	}

	_, err := fmt.Fprintf(w.w, "%d-%d %v %s\n", a.Start, a.End, a.Symbol, a.Label)
	return err
}

// Flush writes buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
