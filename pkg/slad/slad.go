// Package slad is the decoder of a 3 state signal carried on two wires (3 State Logic Analyzer Decoder).
//
// Both wires idle at the passive level (L). Driving both wires active is H, driving only the second wire
// is M. X is the code with only the first wire active, it is seen while the wires do not switch on the
// same sample. The decoder walks the states and emits an annotation on every state boundary.
package slad

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/womat/debug"
	"tslad/pkg/annotation"
	"tslad/pkg/pattern"
	"tslad/pkg/polarity"
)

// Decoder is the transition state machine of the 3 state signal.
type Decoder struct {
	// symbols are the resolved polarity symbols, frozen at New.
	symbols polarity.Symbols
	// table is the transition table resolved for symbols.
	table table
	// flush closes the pending interval at the end of the stream.
	flush bool

	// sl lock the stats while a run updates them.
	sl    sync.Mutex
	stats Stats
}

// Stats contains the counters of the last run.
type Stats struct {
	// Samples is the count of samples pulled from the source.
	Samples uint64
	// Annotations is the count of emitted annotations per symbol.
	Annotations [len(transitions)]uint64
}

// Total returns the count of all emitted annotations.
func (s Stats) Total() (n uint64) {
	for _, c := range s.Annotations {
		n += c
	}
	return n
}

// Count returns the count of emitted annotations of symbol sym.
func (s Stats) Count(sym annotation.Symbol) uint64 {
	if sym < annotation.L || int(sym) >= len(s.Annotations) {
		return 0
	}
	return s.Annotations[sym]
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithFlush defines whether the interval still pending at the end of the stream is emitted.
// By default it is dropped.
func WithFlush(flush bool) Option {
	return func(d *Decoder) {
		d.flush = flush
	}
}

// New returns a decoder for the resolved polarity symbols.
func New(s polarity.Symbols, opts ...Option) (*Decoder, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	d := &Decoder{symbols: s, table: newTable(s)}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Step returns the transition of state current if the candidate with index matched was seen.
func (d *Decoder) Step(current annotation.Symbol, matched int) Transition {
	return d.table.step(current, matched)
}

// Entry returns the pattern of the L state which starts decoding.
func (d *Decoder) Entry() pattern.Pattern {
	return d.table.entry
}

// Stats returns the counters of the current or last run.
func (d *Decoder) Stats() Stats {
	d.sl.Lock()
	defer d.sl.Unlock()
	return d.stats
}

// Run decodes src and sends the annotations to sink.
// It waits for both wires at the passive level, then emits an annotation on each state boundary.
// Run returns nil at the end of the stream, the error of ctx if it is canceled or the first sink error.
func (d *Decoder) Run(ctx context.Context, src pattern.Source, sink annotation.Sink) error {
	if err := d.symbols.Validate(); err != nil {
		return err
	}

	m := pattern.NewMatcher(src)

	d.sl.Lock()
	d.stats = Stats{}
	d.sl.Unlock()
	defer d.countSamples(m)

	// 0 x 0
	s, _, err := m.Wait(ctx, d.table.entry)
	if err != nil {
		return d.finish(m, nil, sink, err)
	}

	debug.DebugLog.Printf("L entry found at sample %d", s.Index)
	p := &pending{symbol: annotation.L, start: s.Index}
	candidates := d.table.candidates[annotation.L]

	for {
		var matched int
		if s, matched, err = m.Wait(ctx, candidates...); err != nil {
			return d.finish(m, p, sink, err)
		}

		t := d.Step(p.symbol, matched)
		debug.TraceLog.Printf("%v -> %v at sample %d (candidate %d)", t.Emit, t.Next, s.Index, matched)

		if err = d.put(sink, annotation.New(p.start, s.Index, t.Emit)); err != nil {
			return err
		}

		p.symbol, p.start = t.Next, s.Index
		candidates = t.Candidates
	}
}

// pending is the interval currently open.
type pending struct {
	symbol annotation.Symbol
	start  uint64
}

// finish handles the end of a run. The end of the stream isn't an error.
func (d *Decoder) finish(m *pattern.Matcher, p *pending, sink annotation.Sink, err error) error {
	if !errors.Is(err, io.EOF) {
		return err
	}

	if p == nil {
		debug.DebugLog.Print("end of stream, no L entry found")
		return nil
	}

	last, ok := m.Last()
	if !d.flush || !ok {
		debug.DebugLog.Printf("end of stream, dropping pending %v interval from sample %d", p.symbol, p.start)
		return nil
	}

	return d.put(sink, annotation.New(p.start, last.Index+1, p.symbol))
}

func (d *Decoder) put(sink annotation.Sink, a annotation.Annotation) error {
	if err := sink.Put(a); err != nil {
		return fmt.Errorf("put annotation %v: %w", a, err)
	}

	d.sl.Lock()
	d.stats.Annotations[a.Symbol]++
	d.sl.Unlock()
	return nil
}

func (d *Decoder) countSamples(m *pattern.Matcher) {
	d.sl.Lock()
	d.stats.Samples = m.Consumed()
	d.sl.Unlock()
}
