// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grammar

// State identifies a position in the automaton of a grammar. The valid states
// of a grammar are the integers in [0, States.Len()) where [Initial] is the
// start state. [End] is a sentinel outside of this range.
type State int

const (
	// Initial is the state a decode begins in.
	Initial State = 0

	// End marks the completion of a grammar. No transitions leave End.
	End State = -1
)

const (
	endStateName     = "END_STATE"
	unknownStateName = "UNKNOWN"
)

// States is the ordered set of named states of one grammar. A States value is
// immutable and may be shared between goroutines.
type States struct {
	names []string
}

// NewStates creates a state table from the given names. The name at index i
// belongs to State(i), so names[0] names the [Initial] state. NewStates panics
// if no names are given.
func NewStates(names ...string) *States {
	if len(names) == 0 {
		panic("grammar: state table without states")
	}
	return &States{names: append([]string(nil), names...)}
}

// Len returns the number of states, not counting [End].
func (s *States) Len() int {
	return len(s.names)
}

// Valid reports whether st is one of the registered states. [End] is not
// valid in this sense.
func (s *States) Valid(st State) bool {
	return st >= 0 && int(st) < len(s.names)
}

// Name returns the human-readable name of st. It returns "END_STATE" for
// [End] and "UNKNOWN" for any other unregistered value.
func (s *States) Name(st State) string {
	switch {
	case st == End:
		return endStateName
	case s.Valid(st):
		return s.names[st]
	default:
		return unknownStateName
	}
}
