package slad

import (
	"fmt"

	"tslad/pkg/annotation"
	"tslad/pkg/pattern"
	"tslad/pkg/polarity"
)

// role is a wire condition expressed independently of the polarity.
type role int

const (
	anything role = iota
	active
	passive
	front
	back
)

// condition resolves the role against the polarity symbols.
func (r role) condition(s polarity.Symbols) pattern.Condition {
	switch r {
	case active:
		return pattern.Is(s.Active)
	case passive:
		return pattern.Is(s.Passive)
	case front:
		return pattern.On(s.Front)
	case back:
		return pattern.On(s.Back)
	default:
		return pattern.Any
	}
}

// rule is one candidate of a state: the condition on wire A and B and the state entered if it matches.
type rule struct {
	a, b role
	next annotation.Symbol
}

// Candidates is the number of candidates waited for in every state.
const Candidates = 3

// entry is the pattern of the L state which has to be seen before decoding starts.
var entry = [2]role{passive, passive}

// transitions holds the candidates of each state in priority order.
// The state codes are
//
//	L: A passive, B passive
//	H: A active,  B active
//	M: A passive, B active
//	X: A active,  B passive
//
// The first candidate of a state is always the one with an edge on both wires.
var transitions = [...][Candidates]rule{
	annotation.L: {
		{front, front, annotation.H},
		{front, anything, annotation.X},
		{anything, front, annotation.M},
	},
	annotation.H: {
		{back, back, annotation.L},
		{back, active, annotation.M},
		{active, back, annotation.X},
	},
	annotation.M: {
		{front, back, annotation.X},
		{front, active, annotation.H},
		{passive, back, annotation.L},
	},
	annotation.X: {
		{back, front, annotation.M},
		{back, passive, annotation.L},
		{active, front, annotation.H},
	},
}

// Transition is the result of a step of the state machine.
type Transition struct {
	// Emit is the symbol of the interval which is closed.
	Emit annotation.Symbol
	// Next is the symbol of the interval which is opened.
	Next annotation.Symbol
	// Candidates are the patterns to wait for while Next is pending.
	Candidates []pattern.Pattern
}

// table is the transition table resolved for one polarity.
type table struct {
	entry      pattern.Pattern
	candidates [len(transitions)][]pattern.Pattern
}

func newTable(s polarity.Symbols) table {
	t := table{
		entry: pattern.Pattern{A: entry[0].condition(s), B: entry[1].condition(s)},
	}

	for state, rules := range transitions {
		t.candidates[state] = make([]pattern.Pattern, len(rules))
		for i, r := range rules {
			t.candidates[state][i] = pattern.Pattern{A: r.a.condition(s), B: r.b.condition(s)}
		}
	}
	return t
}

// step returns the transition of the current state if candidate matched.
func (t *table) step(current annotation.Symbol, matched int) Transition {
	if current < annotation.L || int(current) >= len(transitions) || matched < 0 || matched >= Candidates {
		panic(fmt.Sprintf("invalid transition from %v with candidate %d", current, matched))
	}

	next := transitions[current][matched].next
	return Transition{
		Emit:       current,
		Next:       next,
		Candidates: t.candidates[next],
	}
}
