// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"errors"
	"slices"
	"testing"

	"codello.dev/ldapber"
)

func TestReadTag(t *testing.T) {
	tests := map[string]struct {
		data       []byte
		pos        int
		wantTag    ldapber.Tag
		wantNumber uint
		wantNext   int
		wantErr    error
	}{
		"Sequence":      {[]byte{0x30, 0x06}, 0, ldapber.TagSequence, 16, 1, nil},
		"Offset":        {[]byte{0x30, 0x06, 0x0A, 0x01}, 2, ldapber.TagEnumerated, 10, 3, nil},
		"LongTag":       {[]byte{0xBF, 0x81, 0x2D, 0x08}, 0, 0xBF, 173, 3, nil},
		"Empty":         {nil, 0, 0, 0, 0, ErrTruncated},
		"PastEnd":       {[]byte{0x30}, 1, 0, 0, 1, ErrTruncated},
		"ShortLongTag":  {[]byte{0xBF, 0x81}, 0, 0, 0, 0, ErrTruncated},
		"NotHighNumber": {[]byte{0x1F, 0x05, 0x00}, 0, 0, 0, 0, errTagNumber},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tag, number, next, err := ReadTag(tt.data, tt.pos)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ReadTag() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var mErr *MalformedTLVError
				if !errors.As(err, &mErr) {
					t.Fatalf("ReadTag() error = %T, want *MalformedTLVError", err)
				}
				if mErr.Offset != tt.pos {
					t.Errorf("ReadTag() error offset = %d, want %d", mErr.Offset, tt.pos)
				}
				return
			}
			if tag != tt.wantTag {
				t.Errorf("ReadTag() tag = %v, want %v", tag, tt.wantTag)
			}
			if number != tt.wantNumber {
				t.Errorf("ReadTag() number = %d, want %d", number, tt.wantNumber)
			}
			if next != tt.wantNext {
				t.Errorf("ReadTag() next = %d, want %d", next, tt.wantNext)
			}
		})
	}
}

func TestReadLength(t *testing.T) {
	tests := map[string]struct {
		data     []byte
		want     int
		wantNext int
		wantErr  error
	}{
		"Short":          {[]byte{0x05, 0, 0, 0, 0, 0}, 5, 1, nil},
		"Zero":           {[]byte{0x00}, 0, 1, nil},
		"Long":           {append([]byte{0x81, 0x80}, make([]byte, 128)...), 128, 2, nil},
		"LongTwoBytes":   {append([]byte{0x82, 0x01, 0x00}, make([]byte, 256)...), 256, 3, nil},
		"LeadingZero":    {[]byte{0x82, 0x00, 0x01, 0xAA}, 1, 3, nil},
		"Empty":          {nil, 0, 0, ErrTruncated},
		"Indefinite":     {[]byte{0x80}, 0, 0, errIndefiniteLength},
		"Reserved":       {[]byte{0xFF}, 0, 0, errReservedLength},
		"TooManyOctets":  {[]byte{0x85, 0x01, 0x00, 0x00, 0x00, 0x00}, 0, 0, errLengthTooLarge},
		"Overflow":       {[]byte{0x84, 0x80, 0x00, 0x00, 0x00}, 0, 0, errLengthTooLarge},
		"MaxInt32":       {[]byte{0x84, 0xFF, 0xFF, 0xFF, 0xFF}, 0, 0, errLengthTooLarge},
		"ShortOctets":    {[]byte{0x82, 0x01}, 0, 0, ErrTruncated},
		"ExceedsBuffer":  {[]byte{0x03, 0xAA, 0xBB}, 0, 0, ErrTruncated},
		"ExceedsBuffer2": {[]byte{0x81, 0x80, 0x00}, 0, 0, ErrTruncated},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, next, err := ReadLength(tt.data, 0)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ReadLength() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var mErr *MalformedTLVError
				if !errors.As(err, &mErr) {
					t.Errorf("ReadLength() error = %T, want *MalformedTLVError", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ReadLength() = %d, want %d", got, tt.want)
			}
			if next != tt.wantNext {
				t.Errorf("ReadLength() next = %d, want %d", next, tt.wantNext)
			}
		})
	}
}

func TestReadHeader(t *testing.T) {
	tests := map[string]struct {
		data    []byte
		want    Header
		wantErr error
	}{
		"Sequence":         {[]byte{0x30, 0x06}, Header{ldapber.TagSequence, 16, 6, 2}, nil},
		"SequencePartial":  {[]byte{0x30, 0x06, 0x0A}, Header{ldapber.TagSequence, 16, 6, 2}, nil},
		"LongTagAndLength": {[]byte{0xBF, 0x81, 0x2D, 0x81, 0xC8}, Header{0xBF, 173, 200, 5}, nil},
		"NoLength":         {[]byte{0x30}, Header{}, ErrTruncated},
		"Indefinite":       {[]byte{0x30, 0x80}, Header{}, errIndefiniteLength},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ReadHeader(tt.data, 0)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ReadHeader() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got != tt.want {
				t.Errorf("ReadHeader() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadTLV(t *testing.T) {
	data := []byte{0x30, 0x06, 0x0A, 0x01, 0x01, 0x04, 0x01, 0x41}

	seq, err := ReadTLV(data, 0)
	if err != nil {
		t.Fatalf("ReadTLV(0) error = %v", err)
	}
	if !seq.Constructed() || seq.Value != nil || seq.End() != len(data) {
		t.Errorf("ReadTLV(0) = %+v, want constructed TLV spanning the input", seq)
	}

	enum, err := ReadTLV(data, seq.ValueOffset())
	if err != nil {
		t.Fatalf("ReadTLV(%d) error = %v", seq.ValueOffset(), err)
	}
	if enum.Tag != ldapber.TagEnumerated || !slices.Equal(enum.Value, []byte{0x01}) {
		t.Errorf("ReadTLV(%d) = %+v, want ENUMERATED 1", seq.ValueOffset(), enum)
	}
	if cap(enum.Value) != len(enum.Value) {
		t.Errorf("ReadTLV() value capacity = %d, want %d", cap(enum.Value), len(enum.Value))
	}

	uuid, err := ReadTLV(data, enum.End())
	if err != nil {
		t.Fatalf("ReadTLV(%d) error = %v", enum.End(), err)
	}
	if uuid.Tag != ldapber.TagOctetString || string(uuid.Value) != "A" || uuid.End() != len(data) {
		t.Errorf("ReadTLV(%d) = %+v, want OCTET STRING \"A\"", enum.End(), uuid)
	}

	if _, err = ReadTLV(data[:7], 5); !errors.Is(err, ErrTruncated) {
		t.Errorf("ReadTLV(truncated) error = %v, want %v", err, ErrTruncated)
	}
}

func TestDecodeInteger(t *testing.T) {
	tests := map[string]struct {
		data     []byte
		min, max int64
		want     int64
		wantErr  error
	}{
		"Zero":         {[]byte{0x00}, 0, 3, 0, nil},
		"Three":        {[]byte{0x03}, 0, 3, 3, nil},
		"Negative":     {[]byte{0xFF}, -10, 10, -1, nil},
		"MultiByte":    {[]byte{0x01, 0x00}, 0, 1000, 256, nil},
		"NegativeLong": {[]byte{0xFF, 0x7F}, -200, 0, -129, nil},
		"Int64":        {[]byte{0x7F, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, 0, 1<<63 - 1, 1<<63 - 1, nil},
		"AboveMax":     {[]byte{0x04}, 0, 3, 4, nil},
		"BelowMin":     {[]byte{0xFF}, 0, 3, -1, nil},
		"Empty":        {[]byte{}, 0, 3, 0, errEmptyInteger},
		"TooLarge":     {make([]byte, 9), 0, 3, 0, errIntegerTooLarge},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeInteger(tt.data, tt.min, tt.max)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeInteger() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if got != tt.want {
				t.Errorf("DecodeInteger() = %d, want %d", got, tt.want)
			}
			inRange := tt.want >= tt.min && tt.want <= tt.max
			var rErr *IntegerRangeError
			if inRange && err != nil {
				t.Errorf("DecodeInteger() error = %v, want nil", err)
			} else if !inRange && !errors.As(err, &rErr) {
				t.Errorf("DecodeInteger() error = %v, want *IntegerRangeError", err)
			} else if !inRange && rErr.Value != tt.want {
				t.Errorf("IntegerRangeError.Value = %d, want %d", rErr.Value, tt.want)
			}
		})
	}
}

func TestIntegerRangeError_Error(t *testing.T) {
	err := &IntegerRangeError{Value: 4, Min: 0, Max: 3}
	if got, want := err.Error(), "tlv: integer 4 out of range [0, 3]"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	err = &IntegerRangeError{Err: errEmptyInteger}
	if got, want := err.Error(), "tlv: invalid integer: empty integer"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestMalformedTLVError_Error(t *testing.T) {
	err := &MalformedTLVError{Offset: 5, Err: ErrTruncated}
	if got, want := err.Error(), "tlv: malformed TLV at offset 5: truncated data value"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
