// Package capture reads recorded two-wire captures as a sample stream.
//
// Supported formats:
//
//	csv:  one record per sample, "a,b" or "index,a,b".
//	bits: two characters per line, the level of wire a and wire b, e.g. "10".
//
// Lines starting with ';' or '#' are comments, a single header line before the first sample is skipped (csv only).
// A level is one of 0, 1, l, h, low or high.
package capture

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tslad/pkg/port"
)

var (
	ErrMalformed     = errors.New("malformed capture line")
	ErrNonMonotonic  = errors.New("sample index does not increase")
	ErrUnknownFormat = errors.New("unknown capture format")
)

const (
	// FormatCSV is a comma separated list of levels, optionally with the sample index in front.
	FormatCSV = "csv"
	// FormatBits is one pair of level characters per line.
	FormatBits = "bits"
)

// Formats lists the supported capture formats.
func Formats() []string {
	return []string{FormatCSV, FormatBits}
}

// Reader is the pull based sample source of a capture.
type Reader struct {
	scanner *bufio.Scanner
	parse   func(string) (index uint64, hasIndex bool, a, b port.Level, err error)
	// line is the number of the last read line.
	line int
	// next is the index assigned to a sample without explicit index.
	next uint64
	// last is the index of the previous sample.
	last    uint64
	started bool
	// header is set while a csv header line may still be skipped.
	header bool
}

// NewReader returns a source reading samples in format from r.
func NewReader(r io.Reader, format string) (*Reader, error) {
	c := &Reader{scanner: bufio.NewScanner(r)}

	switch format {
	case FormatCSV:
		c.parse = parseCSV
		c.header = true
	case FormatBits:
		c.parse = parseBits
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return c, nil
}

// Next returns the next sample, io.EOF at the end of the capture.
func (c *Reader) Next() (port.Sample, error) {
	for c.scanner.Scan() {
		c.line++

		text := strings.TrimSpace(c.scanner.Text())
		if text == "" || strings.HasPrefix(text, ";") || strings.HasPrefix(text, "#") {
			continue
		}

		index, hasIndex, a, b, err := c.parse(text)
		if err != nil {
			if c.header && isHeader(text) {
				c.header = false
				continue
			}
			return port.Sample{}, fmt.Errorf("line %d: %w", c.line, err)
		}

		if !hasIndex {
			index = c.next
		}

		if c.started && index <= c.last {
			return port.Sample{}, fmt.Errorf("line %d: %w (%d after %d)", c.line, ErrNonMonotonic, index, c.last)
		}

		c.started = true
		c.header = false
		c.last = index
		c.next = index + 1
		return port.Sample{Index: index, A: a, B: b}, nil
	}

	if err := c.scanner.Err(); err != nil {
		return port.Sample{}, err
	}
	return port.Sample{}, io.EOF
}

// isHeader detects a csv header line like "sdo1,sdo2".
func isHeader(text string) bool {
	for _, f := range strings.Split(text, ",") {
		if _, err := parseLevel(strings.TrimSpace(f)); err == nil {
			return false
		}
		if _, err := strconv.ParseUint(strings.TrimSpace(f), 10, 64); err == nil {
			return false
		}
	}
	return true
}

func parseCSV(text string) (index uint64, hasIndex bool, a, b port.Level, err error) {
	f := strings.Split(text, ",")
	for i := range f {
		f[i] = strings.TrimSpace(f[i])
	}

	switch len(f) {
	case 2:
	case 3:
		if index, err = strconv.ParseUint(f[0], 10, 64); err != nil {
			return 0, false, 0, 0, fmt.Errorf("%w: invalid index %q", ErrMalformed, f[0])
		}
		hasIndex = true
		f = f[1:]
	default:
		return 0, false, 0, 0, fmt.Errorf("%w: %d fields", ErrMalformed, len(f))
	}

	if a, err = parseLevel(f[0]); err != nil {
		return 0, false, 0, 0, err
	}
	if b, err = parseLevel(f[1]); err != nil {
		return 0, false, 0, 0, err
	}
	return index, hasIndex, a, b, nil
}

func parseBits(text string) (index uint64, hasIndex bool, a, b port.Level, err error) {
	if len(text) != 2 {
		return 0, false, 0, 0, fmt.Errorf("%w: %q", ErrMalformed, text)
	}

	if a, err = parseLevel(text[0:1]); err != nil {
		return 0, false, 0, 0, err
	}
	if b, err = parseLevel(text[1:2]); err != nil {
		return 0, false, 0, 0, err
	}
	return 0, false, a, b, nil
}

func parseLevel(v string) (port.Level, error) {
	switch strings.ToLower(v) {
	case "0", "l", "low":
		return port.Low, nil
	case "1", "h", "high":
		return port.High, nil
	default:
		return 0, fmt.Errorf("%w: invalid level %q", ErrMalformed, v)
	}
}
