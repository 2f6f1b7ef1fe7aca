// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grammar

import (
	"errors"
	"strconv"
	"strings"

	"codello.dev/ldapber"
)

var (
	// ErrNeedMoreData is returned by [Decoder.Step] if the buffered input does
	// not contain the next TLV completely. It is not a decode failure: feed more
	// input and call Step again.
	ErrNeedMoreData = errors.New("grammar: need more data")

	errTrailingData = errors.New("trailing data after top-level data value")
)

// UnexpectedTagError indicates that the grammar has no transition for the
// current state and the tag of the next TLV.
type UnexpectedTagError struct {
	State     State
	StateName string
	Tag       ldapber.Tag
}

func (e *UnexpectedTagError) Error() string {
	var s strings.Builder
	s.WriteString("unexpected tag ")
	s.WriteString(e.Tag.String())
	s.WriteString(" (0x")
	if e.Tag < 0x10 {
		s.WriteByte('0')
	}
	s.WriteString(strconv.FormatUint(uint64(e.Tag), 16))
	s.WriteString(") in state ")
	s.WriteString(e.StateName)
	return s.String()
}

// IncompleteStructureError indicates that the input ended in a state in which
// the grammar requires more data values.
type IncompleteStructureError struct {
	State     State
	StateName string
}

func (e *IncompleteStructureError) Error() string {
	return "incomplete structure: input ended in state " + e.StateName
}

// DecodeError carries the context of a failed decode. Err is one of
// [*tlv.MalformedTLVError], [*tlv.IntegerRangeError], [*UnexpectedTagError],
// [*IncompleteStructureError] or an error returned by an [Action]. Use
// [errors.As] to inspect it.
type DecodeError struct {
	Grammar string // name of the grammar
	State   string // name of the state in which the error occurred
	Offset  int    // start of the offending TLV, or the end of input
	Err     error
}

func (e *DecodeError) Unwrap() error { return e.Err }
func (e *DecodeError) Error() string {
	var s strings.Builder
	s.WriteString("ldapber: decoding ")
	s.WriteString(e.Grammar)
	s.WriteString(" failed at offset ")
	s.WriteString(strconv.Itoa(e.Offset))
	if e.State != "" {
		s.WriteString(" in state ")
		s.WriteString(e.State)
	}
	if e.Err != nil {
		s.WriteString(": ")
		s.WriteString(e.Err.Error())
	}
	return s.String()
}
