// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainer_StateStack(t *testing.T) {
	c := NewContainer(pairGrammar)
	assert.Same(t, pairGrammar, c.Grammar())
	assert.Equal(t, Initial, c.CurrentState())
	assert.Equal(t, 1, c.StackDepth())

	c.SetState(pairSequenceState)
	assert.Equal(t, pairSequenceState, c.CurrentState())
	assert.Equal(t, 1, c.StackDepth())

	c.PushState(pairAState)
	assert.Equal(t, pairAState, c.CurrentState())
	assert.Equal(t, 2, c.StackDepth())

	assert.Equal(t, pairAState, c.PopState())
	assert.Equal(t, pairSequenceState, c.CurrentState())

	assert.Equal(t, pairSequenceState, c.PopState())
	assert.Equal(t, End, c.CurrentState())
	assert.Equal(t, End, c.PopState())

	c.SetState(pairBState)
	assert.Equal(t, pairBState, c.CurrentState())
	assert.Equal(t, 1, c.StackDepth())
}

func TestContainer_Reset(t *testing.T) {
	c := NewContainer(pairGrammar)
	c.PushState(pairBState)
	c.SetEndAllowed(true)
	c.SetValue(pair{A: 1, B: 2, HasB: true})
	assert.True(t, c.EndAllowed())
	assert.Equal(t, int64(2), c.Value().B)

	c.Reset()
	assert.Equal(t, Initial, c.CurrentState())
	assert.Equal(t, 1, c.StackDepth())
	assert.False(t, c.EndAllowed())
	assert.Equal(t, pair{}, *c.Value())
	assert.Zero(t, c.CurrentTLV())
}

func TestContainer_DebugWithoutLogger(t *testing.T) {
	c := NewContainer(pairGrammar)
	assert.Nil(t, c.Logger())
	assert.NotPanics(t, func() { c.Debug("no logger", "key", "value") })
}
