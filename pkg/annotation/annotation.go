// Package annotation defines the decoded intervals and the sinks receiving them.
package annotation

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrUnknownSymbol = errors.New("unknown symbol")

// Symbol is one of the four states of the combined two-wire signal.
type Symbol int

const (
	L Symbol = iota
	M
	H
	X
)

// Symbols lists all symbols in class order.
var Symbols = []Symbol{L, M, H, X}

var labels = [...][2]string{
	L: {"Low", "L"},
	M: {"Medium", "M"},
	H: {"High", "H"},
	X: {"X State", "X"},
}

// String returns the short label.
func (s Symbol) String() string {
	if s < L || s > X {
		return fmt.Sprintf("Symbol(%d)", int(s))
	}
	return labels[s][1]
}

// Label returns the human readable label.
func (s Symbol) Label() string {
	if s < L || s > X {
		return s.String()
	}
	return labels[s][0]
}

// ParseSymbol accepts the short or the long label.
func ParseSymbol(v string) (Symbol, error) {
	for _, s := range Symbols {
		if strings.EqualFold(v, s.String()) || strings.EqualFold(v, s.Label()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSymbol, v)
}

// MarshalText encodes the symbol as its short label.
func (s Symbol) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a short or long label.
func (s *Symbol) UnmarshalText(b []byte) (err error) {
	*s, err = ParseSymbol(string(b))
	return
}

// Annotation is a closed interval of the decoded signal.
// End is exclusive and equals the Start of the following annotation.
type Annotation struct {
	Start  uint64 `json:"start"`
	End    uint64 `json:"end"`
	Symbol Symbol `json:"symbol"`
	Label  string `json:"label"`
}

// New returns the annotation of symbol s spanning [start, end).
func New(start, end uint64, s Symbol) Annotation {
	return Annotation{Start: start, End: end, Symbol: s, Label: s.Label()}
}

// Len returns the count of samples covered.
func (a Annotation) Len() uint64 {
	return a.End - a.Start
}

func (a Annotation) String() string {
	return fmt.Sprintf("%d-%d %v", a.Start, a.End, a.Symbol)
}

// Sink receives annotations in increasing start order.
type Sink interface {
	Put(Annotation) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Annotation) error

// Put calls f(a).
func (f SinkFunc) Put(a Annotation) error {
	return f(a)
}

// Tee returns a sink forwarding every annotation to all sinks, it stops at the first error.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(a Annotation) error {
		for _, s := range sinks {
			if err := s.Put(a); err != nil {
				return err
			}
		}
		return nil
	})
}

// Collector keeps all received annotations in memory.
type Collector struct {
	// rw lock the annotations while reading and writing.
	rw    sync.RWMutex
	items []Annotation
}

// Put appends a.
func (c *Collector) Put(a Annotation) error {
	c.rw.Lock()
	defer c.rw.Unlock()

	c.items = append(c.items, a)
	return nil
}

// Annotations returns a copy of the collected annotations.
func (c *Collector) Annotations() []Annotation {
	c.rw.RLock()
	defer c.rw.RUnlock()

	return append([]Annotation(nil), c.items...)
}

// Symbols returns the symbols of the collected annotations in order.
func (c *Collector) Symbols() []Symbol {
	c.rw.RLock()
	defer c.rw.RUnlock()

	s := make([]Symbol, len(c.items))
	for i, a := range c.items {
		s[i] = a.Symbol
	}
	return s
}

// Len returns the count of collected annotations.
func (c *Collector) Len() int {
	c.rw.RLock()
	defer c.rw.RUnlock()

	return len(c.items)
}

// Reset drops all collected annotations.
func (c *Collector) Reset() {
	c.rw.Lock()
	defer c.rw.Unlock()

	c.items = c.items[0:0]
}
