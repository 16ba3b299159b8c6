// Package polarity maps the configured signal polarity to the levels and edges used by the decoder.
package polarity

import (
	"errors"
	"fmt"

	"tslad/pkg/port"
)

var (
	ErrUnknownPolarity = errors.New("unexpected type of signal polarity")
	ErrPolarityNotSet  = errors.New("polarity of signal is not set")
)

// Polarity is the convention mapping electrical levels to logical active/passive.
type Polarity int

const (
	// ActiveLow means an electrical low is the active state.
	ActiveLow Polarity = iota
	// ActiveHigh means an electrical high is the active state.
	ActiveHigh
)

const (
	activeLowName  = "active-low"
	activeHighName = "active-high"
)

// Default is the polarity used if nothing is configured.
const Default = activeLowName

// Names lists the accepted configuration values.
func Names() []string {
	return []string{activeLowName, activeHighName}
}

// Parse converts a configuration value to a Polarity. The value must match one of Names exactly.
func Parse(s string) (Polarity, error) {
	switch s {
	case activeLowName:
		return ActiveLow, nil
	case activeHighName:
		return ActiveHigh, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolarity, s)
	}
}

func (p Polarity) String() string {
	if p == ActiveHigh {
		return activeHighName
	}
	return activeLowName
}

// Symbols are the four primitives derived from a polarity.
// Front is the edge toward the active level, Back the edge toward the passive level.
type Symbols struct {
	Active  port.Level
	Passive port.Level
	Front   port.Edge
	Back    port.Edge
}

// Symbols returns the frozen symbol set of p.
func (p Polarity) Symbols() Symbols {
	if p == ActiveHigh {
		return Symbols{Active: port.High, Passive: port.Low, Front: port.RisingEdge, Back: port.FallingEdge}
	}
	return Symbols{Active: port.Low, Passive: port.High, Front: port.FallingEdge, Back: port.RisingEdge}
}

// Resolve parses the configuration value and returns its symbols.
func Resolve(s string) (Symbols, error) {
	p, err := Parse(s)
	if err != nil {
		return Symbols{}, err
	}
	return p.Symbols(), nil
}

// Validate reports ErrPolarityNotSet unless s was produced by a resolved polarity.
func (s Symbols) Validate() error {
	if s.Active == s.Passive || s.Front == 0 || s.Back == 0 || s.Front.Invert() != s.Back {
		return ErrPolarityNotSet
	}

	// the front edge must lead to the active level
	if e, _ := port.EdgeBetween(s.Passive, s.Active); e != s.Front {
		return ErrPolarityNotSet
	}
	return nil
}
