// Package port holds the definition of the two wires of a 3-state line
package port

// Level is the electrical level of a wire in a single sample.
type Level int

const (
	// Low indicates an electrical 0.
	Low Level = 0
	// High indicates an electrical 1.
	High Level = 1
)

func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

// Edge indicates the type of change of a wire level between two consecutive samples.
//
// Note that for active low lines a falling edge is a transition toward the active state.
type Edge int

const (
	_ Edge = iota
	// RisingEdge indicates a low to high change.
	RisingEdge
	// FallingEdge indicates a high to low change.
	FallingEdge
)

func (e Edge) String() string {
	switch e {
	case RisingEdge:
		return "rising"
	case FallingEdge:
		return "falling"
	default:
		return "none"
	}
}

// Invert returns the opposite edge.
func (e Edge) Invert() Edge {
	switch e {
	case RisingEdge:
		return FallingEdge
	case FallingEdge:
		return RisingEdge
	default:
		return e
	}
}

// Wire names one of the two data wires (SDO1, SDO2).
type Wire int

const (
	// A is the first data wire (SDO1).
	A Wire = iota
	// B is the second data wire (SDO2).
	B
)

func (w Wire) String() string {
	if w == B {
		return "B"
	}
	return "A"
}

// Sample is the state of both wires at one sample position of a capture.
type Sample struct {
	// Index is the sample number within the capture.
	Index uint64
	A     Level
	B     Level
}

// Level returns the level of wire w.
func (s Sample) Level(w Wire) Level {
	if w == B {
		return s.B
	}
	return s.A
}

// EdgeBetween returns the edge from prev to cur, ok is false if the level is unchanged.
func EdgeBetween(prev, cur Level) (e Edge, ok bool) {
	switch {
	case prev == cur:
		return 0, false
	case cur == High:
		return RisingEdge, true
	default:
		return FallingEdge, true
	}
}
