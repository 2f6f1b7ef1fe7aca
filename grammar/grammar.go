// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package grammar implements table-driven decoding of BER data values.
//
// A [Grammar] describes a single ASN.1 structure as a state machine. For every
// legal pair of current [State] and TLV tag it stores a [Transition] naming the
// next state and an [Action]. Actions are plain functions that receive the
// [Container] of the running decode and the TLV that caused the transition.
// They are the only place where the typed result of a decode is modified.
//
// Grammars are built once, typically in a package-level variable, and are
// immutable afterward. Any number of goroutines may decode concurrently using
// the same grammar as long as each uses its own [Decoder] or [Container].
//
//	var g = grammar.New("example", states,
//		grammar.Transition[Result]{From: grammar.Initial, To: seqState, Tag: ldapber.TagSequence},
//		grammar.Transition[Result]{From: seqState, To: intState, Tag: ldapber.TagInteger, Action: decodeInt},
//	)
//
//	res, err := grammar.Decode(g, data)
//
// Constructed TLVs are not skipped: after the transition for a constructed TLV
// the decoder continues with its first child. The decoder validates that every
// child fits within its parent.
package grammar

import (
	"cmp"
	"fmt"
	"slices"

	"codello.dev/ldapber"
	"codello.dev/ldapber/tlv"
)

// Action applies the typed semantics of a transition. It is called with the
// container of the decode and the TLV that triggered the transition. For
// primitive TLVs t.Value aliases the input buffer; actions must copy bytes
// they keep. A non-nil error aborts the decode.
type Action[T any] func(c *Container[T], t tlv.TLV) error

// Transition is a single entry of a grammar: in state From, a TLV with the
// identifier octet Tag leads to state To after running Action. Action may be
// nil for purely structural transitions.
type Transition[T any] struct {
	From, To State
	Tag      ldapber.Tag
	Name     string // description used in logs
	Action   Action[T]
}

// Grammar is an immutable transition table for one ASN.1 structure. The result
// of a decode using the grammar is of type T.
type Grammar[T any] struct {
	name   string
	states *States

	transitions []Transition[T]
	table       [][256]*Transition[T]
}

// New builds a grammar from the given transitions. The table is sized
// [states.Len()][256]. New panics if a transition refers to an unknown state
// or if two transitions share the same (From, Tag) pair. Transitions may lead
// to [End].
//
// New is intended to be called during package initialization, so that
// malformed grammars are detected at program start.
func New[T any](name string, states *States, transitions ...Transition[T]) *Grammar[T] {
	g := &Grammar[T]{
		name:        name,
		states:      states,
		transitions: slices.Clone(transitions),
		table:       make([][256]*Transition[T], states.Len()),
	}
	for i := range g.transitions {
		tr := &g.transitions[i]
		if !states.Valid(tr.From) {
			panic(fmt.Sprintf("grammar %s: transition %q from invalid state %d", name, tr.Name, tr.From))
		}
		if !states.Valid(tr.To) && tr.To != End {
			panic(fmt.Sprintf("grammar %s: transition %q to invalid state %d", name, tr.Name, tr.To))
		}
		if prev := g.table[tr.From][tr.Tag]; prev != nil {
			panic(fmt.Sprintf("grammar %s: duplicate transition for %s × %v", name, states.Name(tr.From), tr.Tag))
		}
		g.table[tr.From][tr.Tag] = tr
	}
	return g
}

// Name returns the name of g.
func (g *Grammar[T]) Name() string {
	return g.name
}

// States returns the state table of g.
func (g *Grammar[T]) States() *States {
	return g.states
}

// Lookup returns the transition registered for the given state and tag. If
// there is none, ok is false. The returned transition must not be modified.
func (g *Grammar[T]) Lookup(s State, tag ldapber.Tag) (tr *Transition[T], ok bool) {
	if !g.states.Valid(s) {
		return nil, false
	}
	tr = g.table[s][tag]
	return tr, tr != nil
}

// Transitions returns a copy of all transitions of g, ordered by source state
// and tag.
func (g *Grammar[T]) Transitions() []Transition[T] {
	ts := slices.Clone(g.transitions)
	slices.SortFunc(ts, func(a, b Transition[T]) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		return cmp.Compare(a.Tag, b.Tag)
	})
	return ts
}
