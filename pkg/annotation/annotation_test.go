package annotation

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestSymbolLabels(t *testing.T) {
	want := map[Symbol][2]string{
		L: {"L", "Low"},
		M: {"M", "Medium"},
		H: {"H", "High"},
		X: {"X", "X State"},
	}

	for s, w := range want {
		if s.String() != w[0] || s.Label() != w[1] {
			t.Fatalf("%d: expected %v, got %q %q", int(s), w, s.String(), s.Label())
		}
	}
}

func TestParseSymbol(t *testing.T) {
	for v, want := range map[string]Symbol{"h": H, "Medium": M, "x state": X, "L": L} {
		s, err := ParseSymbol(v)
		if err != nil || s != want {
			t.Fatalf("%q: expected %v, got %v %v", v, want, s, err)
		}
	}

	if _, err := ParseSymbol("Z"); !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
}

func TestJSONSymbol(t *testing.T) {
	b, err := json.Marshal(New(10, 20, H))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"start":10,"end":20,"symbol":"H","label":"High"}`
	if string(b) != want {
		t.Fatalf("expected %s, got %s", want, b)
	}

	var a Annotation
	if err := json.Unmarshal(b, &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a.Symbol != H || a.Len() != 10 {
		t.Fatalf("unexpected annotation %v", a)
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, FormatText)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	_ = w.Put(New(0, 10, L))
	_ = w.Put(New(10, 12, X))
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	want := "0-10 L Low\n10-12 X X State\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}

	buf.Reset()
	w, _ = NewWriter(&buf, FormatJSON)
	_ = w.Put(New(3, 4, M))
	_ = w.Flush()
	if buf.String() != `{"start":3,"end":4,"symbol":"M","label":"Medium"}`+"\n" {
		t.Fatalf("unexpected json output %q", buf.String())
	}

	if _, err := NewWriter(&buf, "xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestTeeStopsAtError(t *testing.T) {
	errBoom := errors.New("boom")
	first, last := &Collector{}, &Collector{}
	failing := SinkFunc(func(Annotation) error { return errBoom })

	if err := Tee(first, failing, last).Put(New(0, 1, L)); !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}
	if first.Len() != 1 || last.Len() != 0 {
		t.Fatalf("expected 1 and 0 annotations, got %d and %d", first.Len(), last.Len())
	}
}

func TestCollector(t *testing.T) {
	c := &Collector{}
	_ = c.Put(New(0, 1, L))
	_ = c.Put(New(1, 2, H))

	got := c.Symbols()
	if len(got) != 2 || got[0] != L || got[1] != H {
		t.Fatalf("unexpected symbols %v", got)
	}

	list := c.Annotations()
	list[0].Symbol = X
	if c.Annotations()[0].Symbol != L {
		t.Fatalf("annotations must be copied")
	}

	c.Reset()
	if c.Len() != 0 {
		t.Fatalf("expected empty collector, got %d", c.Len())
	}
}
