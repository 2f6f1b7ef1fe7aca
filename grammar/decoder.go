// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grammar

import (
	"context"
	"errors"
	"log/slog"

	"codello.dev/ldapber/tlv"
)

// Decoder drives a [Grammar] over BER-encoded input. It reads the input TLV by
// TLV, looks up the transition for the current state and the tag of each TLV,
// and applies it to its [Container].
//
// A Decoder can be used in two ways. [Decode] decodes a complete buffer in a
// single call. Alternatively input can be passed incrementally via
// [Decoder.Feed] and processed with [Decoder.Step] until [Decoder.Finish]
// signals the end of input.
//
// Decoding ends when the top-level data value is complete or, if
// [Decoder.Finish] has been called, when the input is exhausted. At that point
// the container must allow the end of input. Any error aborts the decode: the
// Decoder keeps returning the same [*DecodeError] until it is reset.
//
// A Decoder must not be used concurrently.
type Decoder[T any] struct {
	c    *Container[T]
	opts options

	buf   []byte
	pos   int
	final bool
	nest  tlv.Stack

	complete bool // the top-level data value has been read entirely
	done     bool
	err      error
}

// NewDecoder returns a Decoder for g without any input.
func NewDecoder[T any](g *Grammar[T], opts ...Option) *Decoder[T] {
	d := &Decoder[T]{
		c:    NewContainer(g, opts...),
		opts: newOptions(opts),
	}
	d.nest.Reset()
	return d
}

// Decode decodes data using g and returns the result. data must contain the
// complete encoding. Decode does not retain or modify data. On error no
// result is returned and the error is a [*DecodeError].
func Decode[T any](g *Grammar[T], data []byte, opts ...Option) (*T, error) {
	d := NewDecoder(g, opts...)
	d.buf = data
	return d.Finish()
}

// Reset clears d so that it can be used for another decode. Buffered input is
// discarded.
func (d *Decoder[T]) Reset() {
	d.c.Reset()
	d.nest.Reset()
	d.buf = nil
	d.pos = 0
	d.final = false
	d.complete = false
	d.done = false
	d.err = nil
}

// Container returns the container of d.
func (d *Decoder[T]) Container() *Container[T] {
	return d.c
}

// InputOffset returns the number of input bytes processed so far.
func (d *Decoder[T]) InputOffset() int {
	return d.pos
}

// Feed appends a copy of p to the input of d. Feed must not be called after
// [Decoder.Finish].
func (d *Decoder[T]) Feed(p []byte) {
	if d.final {
		panic("grammar: Feed called after Finish")
	}
	d.buf = append(d.buf, p...)
}

// Step processes the next TLV of the input. It returns true when the decode is
// complete. If the buffered input does not contain the next TLV entirely and
// [Decoder.Finish] has not been called, Step returns [ErrNeedMoreData]. Any
// other error is fatal.
func (d *Decoder[T]) Step() (done bool, err error) {
	if d.err != nil || d.done {
		return d.done, d.err
	}

	if d.nest.Close(d.pos) > 0 && d.nest.Depth() == 0 {
		d.complete = true
	}
	if d.complete {
		if d.pos < len(d.buf) {
			return false, d.fail(&tlv.MalformedTLVError{Offset: d.pos, Err: errTrailingData}, d.pos)
		}
		return d.end()
	}
	if d.pos == len(d.buf) {
		if !d.final {
			return false, ErrNeedMoreData
		}
		if open, ok := d.nest.Top(); ok {
			// a constructed TLV announced more content than the input holds
			return false, d.fail(&tlv.MalformedTLVError{Offset: open.Offset, Err: tlv.ErrTruncated}, d.pos)
		}
		return d.end()
	}

	h, err := tlv.ReadHeader(d.buf, d.pos)
	if err != nil {
		if !d.final && errors.Is(err, tlv.ErrTruncated) {
			return false, ErrNeedMoreData
		}
		return false, d.fail(err, d.pos)
	}
	t := tlv.TLV{Header: h, Offset: d.pos}
	if err = d.nest.Fits(t); err != nil {
		return false, d.fail(err, d.pos)
	}
	if t.End() > len(d.buf) {
		if d.final {
			return false, d.fail(&tlv.MalformedTLVError{Offset: d.pos, Err: tlv.ErrTruncated}, d.pos)
		} else if !h.Constructed() {
			return false, ErrNeedMoreData
		}
	}

	from := d.c.CurrentState()
	tr, ok := d.c.grammar.Lookup(from, h.Tag)
	if !ok {
		return false, d.fail(&UnexpectedTagError{
			State:     from,
			StateName: d.c.grammar.states.Name(from),
			Tag:       h.Tag,
		}, d.pos)
	}
	if !h.Constructed() {
		t.Value = d.buf[t.ValueOffset():t.End():t.End()]
	}

	if logEnabled(d.opts.logger, LevelTrace) {
		d.opts.logger.Log(context.Background(), LevelTrace, "transition",
			slog.String("grammar", d.c.grammar.name),
			slog.String("from", d.c.grammar.states.Name(from)),
			slog.String("to", d.c.grammar.states.Name(tr.To)),
			slog.String("tlv", t.Header.String()),
			slog.Int("offset", t.Offset))
	}

	// The state is updated before the action runs so that actions may push a
	// nested state on top of the transition's target.
	d.c.current = t
	d.c.SetState(tr.To)
	if tr.Action != nil {
		if err = tr.Action(d.c, t); err != nil {
			return false, d.failIn(err, from, t.Offset)
		}
	}

	if h.Constructed() {
		_ = d.nest.Push(t) // validated by Fits above
		d.pos = t.ValueOffset()
	} else {
		d.pos = t.End()
		if d.nest.Depth() == 0 {
			d.complete = true
		}
	}
	return false, nil
}

// Finish signals that no more input follows and runs the decode to
// completion. It returns a copy of the decoded result. On error the result is
// nil and the error is a [*DecodeError].
func (d *Decoder[T]) Finish() (*T, error) {
	d.final = true
	done, err := d.Step()
	for !done && err == nil {
		done, err = d.Step()
	}
	if err != nil {
		return nil, err
	}
	res := new(T)
	*res = d.c.value
	return res, nil
}

// end completes the decode at the end of the top-level data value or input.
func (d *Decoder[T]) end() (bool, error) {
	if !d.c.EndAllowed() {
		s := d.c.CurrentState()
		return false, d.fail(&IncompleteStructureError{
			State:     s,
			StateName: d.c.grammar.states.Name(s),
		}, d.pos)
	}
	d.done = true
	if d.opts.observer != nil {
		d.opts.observer.ObserveDecode(d.c.grammar.name, d.pos, nil)
	}
	return true, nil
}

// fail records err as the terminal error of d, reported in the current state.
func (d *Decoder[T]) fail(err error, offset int) error {
	return d.failIn(err, d.c.CurrentState(), offset)
}

// failIn records err as the terminal error of d, reported in state s.
func (d *Decoder[T]) failIn(err error, s State, offset int) error {
	d.err = &DecodeError{
		Grammar: d.c.grammar.name,
		State:   d.c.grammar.states.Name(s),
		Offset:  offset,
		Err:     err,
	}
	if logEnabled(d.opts.logger, slog.LevelDebug) {
		d.opts.logger.Debug("decode failed",
			slog.String("grammar", d.c.grammar.name),
			slog.Int("offset", offset),
			slog.Any("error", err))
	}
	if d.opts.observer != nil {
		d.opts.observer.ObserveDecode(d.c.grammar.name, d.pos, d.err)
	}
	return d.err
}
