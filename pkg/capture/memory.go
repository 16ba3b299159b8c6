package capture

import (
	"fmt"
	"io"

	"tslad/pkg/port"
)

// Samples is an in-memory sample source.
type Samples struct {
	samples []port.Sample
	pos     int
}

// FromSamples returns a source of the given samples.
func FromSamples(s []port.Sample) *Samples {
	return &Samples{samples: s}
}

// FromLevels builds a source from two level strings of equal length, e.g. FromLevels("0011", "0111").
// The sample index is the position in the string, '_' and ' ' are ignored.
func FromLevels(a, b string) (*Samples, error) {
	a, b = strip(a), strip(b)
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: wire a has %d samples, wire b %d", ErrMalformed, len(a), len(b))
	}

	s := make([]port.Sample, len(a))
	for i := range s {
		la, err := parseLevel(a[i : i+1])
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		lb, err := parseLevel(b[i : i+1])
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		s[i] = port.Sample{Index: uint64(i), A: la, B: lb}
	}

	return FromSamples(s), nil
}

func strip(v string) string {
	out := make([]byte, 0, len(v))
	for i := 0; i < len(v); i++ {
		if v[i] != '_' && v[i] != ' ' {
			out = append(out, v[i])
		}
	}
	return string(out)
}

// Next returns the next sample, io.EOF at the end.
func (s *Samples) Next() (port.Sample, error) {
	if s.pos >= len(s.samples) {
		return port.Sample{}, io.EOF
	}

	v := s.samples[s.pos]
	s.pos++
	return v, nil
}

// Reset rewinds the source to the first sample.
func (s *Samples) Reset() {
	s.pos = 0
}
