// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grammar

import (
	"context"
	"log/slog"

	"codello.dev/ldapber/tlv"
)

// Container holds the mutable state of a single decode: a stack of grammar
// states, the TLV currently being processed, the result under construction
// and whether the input may end in the current state.
//
// A Container must not be shared between goroutines. It can be reused for
// another decode with the same grammar after calling [Container.Reset].
type Container[T any] struct {
	grammar    *Grammar[T]
	states     []State
	current    tlv.TLV
	value      T
	endAllowed bool
	logger     *slog.Logger
}

// NewContainer returns a container for a decode using g, positioned at the
// [Initial] state. Only the [WithLogger] option is used by containers.
func NewContainer[T any](g *Grammar[T], opts ...Option) *Container[T] {
	o := newOptions(opts)
	c := &Container[T]{grammar: g, logger: o.logger}
	c.Reset()
	return c
}

// Grammar returns the grammar c was created for.
func (c *Container[T]) Grammar() *Grammar[T] {
	return c.grammar
}

// CurrentState returns the state on top of the state stack. If the stack is
// empty, [End] is returned.
func (c *Container[T]) CurrentState() State {
	if len(c.states) == 0 {
		return End
	}
	return c.states[len(c.states)-1]
}

// SetState replaces the state on top of the stack with s.
func (c *Container[T]) SetState(s State) {
	if len(c.states) == 0 {
		c.states = append(c.states, s)
		return
	}
	c.states[len(c.states)-1] = s
}

// PushState puts s on top of the state stack. This is used when a nested
// structure is decoded by a separate set of states: the state below is resumed
// by [Container.PopState].
func (c *Container[T]) PushState(s State) {
	c.states = append(c.states, s)
}

// PopState removes the top state from the stack and returns it. If the stack
// is empty, End is returned.
func (c *Container[T]) PopState() State {
	if len(c.states) == 0 {
		return End
	}
	s := c.states[len(c.states)-1]
	c.states = c.states[:len(c.states)-1]
	return s
}

// StackDepth returns the number of states on the stack.
func (c *Container[T]) StackDepth() int {
	return len(c.states)
}

// SetEndAllowed records whether the input may end in the current state.
func (c *Container[T]) SetEndAllowed(allowed bool) {
	c.endAllowed = allowed
}

// EndAllowed reports whether the input may end in the current state.
func (c *Container[T]) EndAllowed() bool {
	return c.endAllowed
}

// CurrentTLV returns the TLV that is currently being processed.
func (c *Container[T]) CurrentTLV() tlv.TLV {
	return c.current
}

// Value returns a pointer to the result under construction.
func (c *Container[T]) Value() *T {
	return &c.value
}

// SetValue replaces the result under construction.
func (c *Container[T]) SetValue(v T) {
	c.value = v
}

// Logger returns the logger of c. The result may be nil.
func (c *Container[T]) Logger() *slog.Logger {
	return c.logger
}

// Debug logs msg at debug level if a logger is configured and enabled.
func (c *Container[T]) Debug(msg string, args ...any) {
	if logEnabled(c.logger, slog.LevelDebug) {
		c.logger.Log(context.Background(), slog.LevelDebug, msg, args...)
	}
}

// Reset clears the result, the state stack and the end flag. The stack is
// reset to the [Initial] state and its allocated space is reused.
func (c *Container[T]) Reset() {
	if c.states == nil {
		c.states = make([]State, 0, 4)
	}
	c.states = append(c.states[:0], Initial)
	c.current = tlv.TLV{}
	var zero T
	c.value = zero
	c.endAllowed = false
}
