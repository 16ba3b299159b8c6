package pattern

import (
	"context"
	"errors"
	"io"
	"testing"

	"tslad/pkg/port"
)

type samples []port.Sample

func (s *samples) Next() (port.Sample, error) {
	if len(*s) == 0 {
		return port.Sample{}, io.EOF
	}
	v := (*s)[0]
	*s = (*s)[1:]
	return v, nil
}

func stream(levels ...[2]port.Level) *samples {
	s := make(samples, len(levels))
	for i, l := range levels {
		s[i] = port.Sample{Index: uint64(i), A: l[0], B: l[1]}
	}
	return &s
}

var (
	lo = port.Low
	hi = port.High
)

func TestFirstCandidateWins(t *testing.T) {
	m := NewMatcher(stream([2]port.Level{lo, lo}, [2]port.Level{hi, hi}))
	both := Pattern{A: On(port.RisingEdge), B: On(port.RisingEdge)}
	first := Pattern{A: On(port.RisingEdge), B: Any}

	s, i, err := m.Wait(context.Background(), both, first)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if i != 0 || s.Index != 1 {
		t.Fatalf("expected candidate 0 at sample 1, got %d at %d", i, s.Index)
	}

	m = NewMatcher(stream([2]port.Level{lo, lo}, [2]port.Level{hi, hi}))
	if _, i, _ = m.Wait(context.Background(), first, both); i != 0 {
		t.Fatalf("expected candidate 0, got %d", i)
	}
}

func TestNoEdgeOnFirstSample(t *testing.T) {
	m := NewMatcher(stream([2]port.Level{hi, hi}, [2]port.Level{hi, hi}))

	_, _, err := m.Wait(context.Background(), Pattern{A: On(port.RisingEdge), B: Any})
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if m.Consumed() != 2 {
		t.Fatalf("expected 2 consumed samples, got %d", m.Consumed())
	}
}

func TestWaitStartsAfterMatch(t *testing.T) {
	m := NewMatcher(stream([2]port.Level{lo, lo}, [2]port.Level{lo, lo}, [2]port.Level{hi, lo}))
	idle := Pattern{A: Is(lo), B: Is(lo)}

	for want := uint64(0); want < 2; want++ {
		s, _, err := m.Wait(context.Background(), idle)
		if err != nil {
			t.Fatalf("wait: %v", err)
		}
		if s.Index != want {
			t.Fatalf("expected sample %d, got %d", want, s.Index)
		}
	}

	if _, _, err := m.Wait(context.Background(), idle); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}

	last, ok := m.Last()
	if !ok || last.Index != 2 {
		t.Fatalf("expected last sample 2, got %v %v", last, ok)
	}
}

func TestFallingEdgeAndLevel(t *testing.T) {
	m := NewMatcher(stream([2]port.Level{hi, hi}, [2]port.Level{lo, hi}, [2]port.Level{lo, lo}))
	p := Pattern{A: Is(lo), B: On(port.FallingEdge)}

	s, i, err := m.Wait(context.Background(), Pattern{A: On(port.RisingEdge), B: Any}, p)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if i != 1 || s.Index != 2 {
		t.Fatalf("expected candidate 1 at sample 2, got %d at %d", i, s.Index)
	}
}

func TestWaitCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMatcher(stream([2]port.Level{lo, lo}))
	if _, _, err := m.Wait(ctx, Pattern{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if m.Consumed() != 0 {
		t.Fatalf("expected no consumed samples, got %d", m.Consumed())
	}
}
