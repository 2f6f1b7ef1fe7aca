// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrTruncated indicates that the input ends before a complete TLV. It is
	// wrapped by a [MalformedTLVError]. If more input may follow, the
	// error is not fatal.
	ErrTruncated = errors.New("truncated data value")

	errIndefiniteLength = errors.New("indefinite-length encoding not allowed")
	errReservedLength   = errors.New("reserved length octet 0xFF")
	errLengthTooLarge   = errors.New("length too large")
	errExceedsParent    = errors.New("data value exceeds parent")
	errTagNumber        = errors.New("invalid tag number")

	errEmptyInteger    = errors.New("empty integer")
	errIntegerTooLarge = errors.New("integer too large")
)

// MalformedTLVError indicates that the input does not contain a structurally
// valid TLV at the expected position. The error value contains the location of
// the error within the input.
type MalformedTLVError struct {
	Err error // underlying error

	// Offset is the location of the error. It is the start of the TLV header
	// containing the error.
	Offset int
}

func (e *MalformedTLVError) Unwrap() error { return e.Err }
func (e *MalformedTLVError) Error() string {
	b := []byte("tlv: malformed TLV")
	b = strconv.AppendInt(append(b, " at offset "...), int64(e.Offset), 10)
	if e.Err != nil {
		b = append(b, ": "...)
		b = append(b, e.Err.Error()...)
	}
	return string(b)
}

// IntegerRangeError indicates that an INTEGER or ENUMERATED value could not be
// decoded or lies outside its declared range [Min, Max]. If Err is nil, Value
// contains the decoded, out-of-range value.
type IntegerRangeError struct {
	Value    int64
	Min, Max int64
	Err      error
}

func (e *IntegerRangeError) Unwrap() error { return e.Err }
func (e *IntegerRangeError) Error() string {
	var s strings.Builder
	s.WriteString("tlv: ")
	if e.Err != nil {
		s.WriteString("invalid integer: ")
		s.WriteString(e.Err.Error())
		return s.String()
	}
	s.WriteString("integer ")
	s.WriteString(strconv.FormatInt(e.Value, 10))
	s.WriteString(" out of range [")
	s.WriteString(strconv.FormatInt(e.Min, 10))
	s.WriteString(", ")
	s.WriteString(strconv.FormatInt(e.Max, 10))
	s.WriteByte(']')
	return s.String()
}

// malformed returns a *MalformedTLVError for err at offset.
func malformed(offset int, err error) error {
	return &MalformedTLVError{Err: err, Offset: offset}
}
