// Package pattern implements the priority ordered wait on two-wire conditions.
package pattern

import (
	"context"
	"fmt"

	"tslad/pkg/port"
)

// kindType represents what a Condition checks on a wire.
type kindType int

const (
	// anyKind accepts every sample.
	anyKind kindType = iota
	// levelKind requires the wire to hold a level.
	levelKind
	// edgeKind requires the wire to change in a direction since the previous sample.
	edgeKind
)

// Condition is the constraint on a single wire.
type Condition struct {
	kind  kindType
	level port.Level
	edge  port.Edge
}

// Any is the condition which always holds.
var Any = Condition{}

// Is returns a condition requiring the wire to be at level l.
func Is(l port.Level) Condition {
	return Condition{kind: levelKind, level: l}
}

// On returns a condition requiring edge e on the wire.
func On(e port.Edge) Condition {
	return Condition{kind: edgeKind, edge: e}
}

// holds checks the condition, prev is only valid if hasPrev is true.
func (c Condition) holds(prev, cur port.Level, hasPrev bool) bool {
	switch c.kind {
	case levelKind:
		return cur == c.level
	case edgeKind:
		if !hasPrev {
			return false
		}
		e, ok := port.EdgeBetween(prev, cur)
		return ok && e == c.edge
	default:
		return true
	}
}

func (c Condition) String() string {
	switch c.kind {
	case levelKind:
		return c.level.String()
	case edgeKind:
		return c.edge.String()
	default:
		return "any"
	}
}

// Pattern is a conjunction of one condition per wire.
type Pattern struct {
	A Condition
	B Condition
}

func (p Pattern) String() string {
	return fmt.Sprintf("{A:%v B:%v}", p.A, p.B)
}

// Match reports whether cur satisfies the pattern, prev is the sample before cur if hasPrev is true.
func (p Pattern) Match(prev, cur port.Sample, hasPrev bool) bool {
	return p.A.holds(prev.A, cur.A, hasPrev) && p.B.holds(prev.B, cur.B, hasPrev)
}

// Source is a pull based stream of samples.
// Next returns io.EOF when the stream is exhausted.
type Source interface {
	Next() (port.Sample, error)
}

// Matcher waits on a Source until one of several patterns holds.
type Matcher struct {
	src Source
	// prev is the last pulled sample, valid if hasPrev is true.
	prev    port.Sample
	hasPrev bool
	// consumed is the count of pulled samples.
	consumed uint64
}

// NewMatcher returns a matcher reading from src.
func NewMatcher(src Source) *Matcher {
	return &Matcher{src: src}
}

// Wait pulls samples until any candidate matches and returns the sample and the index of the matched candidate.
// Candidates are checked in the given order, the first match wins.
// Every call starts with the sample after the last pulled one, so a matched sample is never matched twice.
// The error of the Source (io.EOF at the end of the stream) or of ctx is returned unchanged.
func (m *Matcher) Wait(ctx context.Context, candidates ...Pattern) (port.Sample, int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return port.Sample{}, -1, err
		}

		cur, err := m.src.Next()
		if err != nil {
			return port.Sample{}, -1, err
		}
		m.consumed++

		prev, hasPrev := m.prev, m.hasPrev
		m.prev, m.hasPrev = cur, true

		for i, p := range candidates {
			if p.Match(prev, cur, hasPrev) {
				return cur, i, nil
			}
		}
	}
}

// Last returns the last pulled sample, ok is false if nothing was pulled yet.
func (m *Matcher) Last() (s port.Sample, ok bool) {
	return m.prev, m.hasPrev
}

// Consumed returns the count of samples pulled from the source.
func (m *Matcher) Consumed() uint64 {
	return m.consumed
}
