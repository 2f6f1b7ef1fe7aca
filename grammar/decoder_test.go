// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grammar

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codello.dev/ldapber"
	"codello.dev/ldapber/tlv"
)

func TestDecode(t *testing.T) {
	tests := map[string]struct {
		data []byte
		want pair
	}{
		"AOnly":      {[]byte{0x30, 0x03, 0x02, 0x01, 0x05}, pair{A: 5}},
		"AB":         {[]byte{0x30, 0x06, 0x02, 0x01, 0x05, 0x02, 0x01, 0x07}, pair{A: 5, B: 7, HasB: true}},
		"LongLength": {[]byte{0x30, 0x81, 0x03, 0x02, 0x01, 0x64}, pair{A: 100}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Decode(pairGrammar, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := map[string]struct {
		data       []byte
		wantState  string
		wantOffset int
		wantErr    func(error) bool
	}{
		"Empty": {nil, "PAIR_START_STATE", 0, isIncomplete},
		"EmptySequence": {[]byte{0x30, 0x00},
			"PAIR_SEQUENCE_STATE", 2, isIncomplete},
		"OutOfRange": {[]byte{0x30, 0x03, 0x02, 0x01, 0x65},
			"PAIR_SEQUENCE_STATE", 2, isIntegerRange},
		"UnexpectedTag": {[]byte{0x30, 0x03, 0x04, 0x01, 0x05},
			"PAIR_SEQUENCE_STATE", 2, isUnexpectedTag},
		"UnexpectedTopLevel": {[]byte{0x31, 0x03, 0x02, 0x01, 0x05},
			"PAIR_START_STATE", 0, isUnexpectedTag},
		"ThirdInteger": {[]byte{0x30, 0x09, 0x02, 0x01, 0x05, 0x02, 0x01, 0x07, 0x02, 0x01, 0x01},
			"PAIR_B_STATE", 8, isUnexpectedTag},
		"TrailingData": {[]byte{0x30, 0x03, 0x02, 0x01, 0x05, 0x00},
			"PAIR_A_STATE", 5, isMalformed},
		"TruncatedSequence": {[]byte{0x30, 0x06, 0x02, 0x01, 0x05},
			"PAIR_START_STATE", 0, isMalformed},
		"ExceedsParent": {[]byte{0x30, 0x03, 0x02, 0x02, 0x05, 0x05},
			"PAIR_SEQUENCE_STATE", 2, isMalformed},
		"Indefinite": {[]byte{0x30, 0x80, 0x02, 0x01, 0x05, 0x00, 0x00},
			"PAIR_START_STATE", 0, isMalformed},
		"TruncatedHeader": {[]byte{0x30, 0x03, 0x02},
			"PAIR_START_STATE", 0, isMalformed},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Decode(pairGrammar, tt.data)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, tt.wantErr(err), "unexpected error type: %v", err)

			var dErr *DecodeError
			require.ErrorAs(t, err, &dErr)
			assert.Equal(t, "pair", dErr.Grammar)
			assert.Equal(t, tt.wantState, dErr.State)
			assert.Equal(t, tt.wantOffset, dErr.Offset)
		})
	}
}

func isIncomplete(err error) bool {
	var e *IncompleteStructureError
	return errors.As(err, &e)
}

func isIntegerRange(err error) bool {
	var e *tlv.IntegerRangeError
	return errors.As(err, &e)
}

func isUnexpectedTag(err error) bool {
	var e *UnexpectedTagError
	return errors.As(err, &e)
}

func isMalformed(err error) bool {
	var e *tlv.MalformedTLVError
	return errors.As(err, &e)
}

func TestDecode_UnexpectedTagError(t *testing.T) {
	_, err := Decode(pairGrammar, []byte{0x30, 0x03, 0x04, 0x01, 0x05})
	var uErr *UnexpectedTagError
	require.ErrorAs(t, err, &uErr)
	assert.Equal(t, pairSequenceState, uErr.State)
	assert.Equal(t, ldapber.TagOctetString, uErr.Tag)
	assert.EqualError(t, err, "ldapber: decoding pair failed at offset 2 in state PAIR_SEQUENCE_STATE: "+
		"unexpected tag [UNIVERSAL 4]/p (0x04) in state PAIR_SEQUENCE_STATE")
}

func TestDecoder_Incremental(t *testing.T) {
	data := []byte{0x30, 0x06, 0x02, 0x01, 0x05, 0x02, 0x01, 0x07}
	d := NewDecoder(pairGrammar)

	done := false
	for i := range data {
		d.Feed(data[i : i+1])
		for {
			var err error
			done, err = d.Step()
			if errors.Is(err, ErrNeedMoreData) {
				break
			}
			require.NoError(t, err)
			if done {
				break
			}
		}
	}
	// the top-level SEQUENCE is complete, so no call to Finish is required
	d.Feed(nil)
	done, err := d.Step()
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, len(data), d.InputOffset())

	got, err := d.Finish()
	require.NoError(t, err)
	assert.Equal(t, pair{A: 5, B: 7, HasB: true}, *got)
}

func TestDecoder_FinishTruncated(t *testing.T) {
	d := NewDecoder(pairGrammar)
	d.Feed([]byte{0x30, 0x06, 0x02, 0x01, 0x05})
	for {
		_, err := d.Step()
		if errors.Is(err, ErrNeedMoreData) {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, pairAState, d.Container().CurrentState())

	_, err := d.Finish()
	require.ErrorIs(t, err, tlv.ErrTruncated)
	assert.Panics(t, func() { d.Feed([]byte{0x02}) })
}

func TestDecoder_ErrorIsSticky(t *testing.T) {
	d := NewDecoder(pairGrammar)
	d.Feed([]byte{0x04, 0x00})
	_, err1 := d.Step()
	require.Error(t, err1)
	_, err2 := d.Step()
	assert.Same(t, err1, err2)
	_, err3 := d.Finish()
	assert.Same(t, err1, err3)

	d.Reset()
	d.Feed([]byte{0x30, 0x03, 0x02, 0x01, 0x05})
	got, err := d.Finish()
	require.NoError(t, err)
	assert.Equal(t, pair{A: 5}, *got)
}

func TestDecode_DoesNotAliasInput(t *testing.T) {
	data := []byte{0x30, 0x03, 0x02, 0x01, 0x05}
	orig := bytes.Clone(data)
	first, err := Decode(pairGrammar, data)
	require.NoError(t, err)
	second, err := Decode(pairGrammar, data)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
	assert.Equal(t, orig, data)
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []observation
}

type observation struct {
	grammar string
	n       int
	err     error
}

func (o *recordingObserver) ObserveDecode(grammar string, n int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, observation{grammar, n, err})
}

func TestDecode_Observer(t *testing.T) {
	o := new(recordingObserver)
	_, err := Decode(pairGrammar, []byte{0x30, 0x03, 0x02, 0x01, 0x05}, WithObserver(o))
	require.NoError(t, err)
	_, err = Decode(pairGrammar, []byte{0x30, 0x03, 0x02, 0x01, 0x65}, WithObserver(o))
	require.Error(t, err)

	require.Len(t, o.calls, 2)
	assert.Equal(t, observation{"pair", 5, nil}, o.calls[0])
	assert.Equal(t, "pair", o.calls[1].grammar)
	assert.Equal(t, 2, o.calls[1].n)
	assert.Same(t, err, o.calls[1].err)
}

func TestDecode_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: LevelTrace}))

	_, err := Decode(pairGrammar, []byte{0x30, 0x03, 0x02, 0x01, 0x05}, WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "msg=transition")
	assert.Contains(t, buf.String(), "from=PAIR_START_STATE")
	assert.Contains(t, buf.String(), "to=PAIR_A_STATE")

	buf.Reset()
	_, err = Decode(pairGrammar, []byte{0x04, 0x00}, WithLogger(logger))
	require.Error(t, err)
	assert.Contains(t, buf.String(), `msg="decode failed"`)
}

// The grammar below decodes SEQUENCE { SEQUENCE { BOOLEAN } INTEGER } and uses
// the state stack to resume after the inner SEQUENCE.
func TestDecode_NestedStateStack(t *testing.T) {
	type nested struct {
		Flag  bool
		N     int64
		Depth int
	}
	const (
		start State = iota
		outer
		afterInner
		innerStart
		flag
		number
	)
	states := NewStates("START", "OUTER", "AFTER_INNER", "INNER_START", "FLAG", "NUMBER")
	g := New("nested", states,
		Transition[nested]{From: start, To: outer, Tag: ldapber.TagSequence},
		Transition[nested]{From: outer, To: afterInner, Tag: ldapber.TagSequence,
			Action: func(c *Container[nested], t tlv.TLV) error {
				c.PushState(innerStart)
				c.Value().Depth = c.StackDepth()
				return nil
			}},
		Transition[nested]{From: innerStart, To: flag, Tag: ldapber.TagBoolean,
			Action: func(c *Container[nested], t tlv.TLV) error {
				c.Value().Flag = len(t.Value) == 1 && t.Value[0] != 0
				c.PopState()
				return nil
			}},
		Transition[nested]{From: afterInner, To: number, Tag: ldapber.TagInteger,
			Action: func(c *Container[nested], t tlv.TLV) error {
				n, err := tlv.DecodeInteger(t.Value, 0, 10)
				c.Value().N = n
				c.SetEndAllowed(true)
				return err
			}},
	)

	got, err := Decode(g, []byte{0x30, 0x08, 0x30, 0x03, 0x01, 0x01, 0xFF, 0x02, 0x01, 0x03})
	require.NoError(t, err)
	assert.Equal(t, nested{Flag: true, N: 3, Depth: 2}, *got)
}
