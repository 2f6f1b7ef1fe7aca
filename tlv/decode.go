// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"errors"
	"fmt"
	"io"
	"math"

	"codello.dev/ldapber"
	"codello.dev/ldapber/internal/vlq"
)

// maxLengthOctets is the maximum number of length octets in the long form.
// Longer lengths cannot occur in an LDAP message.
const maxLengthOctets = 4

// ReadTag reads the identifier octets of a TLV starting at buf[pos]. It returns
// the first identifier octet, the tag number and the position of the first
// length octet.
//
// If the tag uses the high-tag-number form, the tag number is read from the
// subsequent base-128 encoded octets. A [*MalformedTLVError] is returned if buf
// ends before the tag is complete or if the tag number is invalid.
func ReadTag(buf []byte, pos int) (tag ldapber.Tag, number uint, next int, err error) {
	if pos < 0 || pos >= len(buf) {
		return 0, 0, pos, malformed(pos, ErrTruncated)
	}
	tag = ldapber.Tag(buf[pos])
	number = tag.Number()
	next = pos + 1
	if number != ldapber.HighTagNumber {
		return tag, number, next, nil
	}

	n, l, err := vlq.Parse[uint](buf[next:])
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return tag, 0, pos, malformed(pos, ErrTruncated)
	} else if err != nil {
		return tag, 0, pos, malformed(pos, fmt.Errorf("%w: %w", errTagNumber, err))
	}
	if n < ldapber.HighTagNumber {
		// must have used the low-tag-number form
		return tag, 0, pos, malformed(pos, fmt.Errorf("%w: %d in high-tag-number form", errTagNumber, n))
	}
	return tag, n, next + l, nil
}

// ReadLength reads the length octets of a TLV starting at buf[pos]. It returns
// the length of the content octets and the position of the first content
// octet.
//
// Both the short form (one octet, high bit 0) and the long form (high bit 1,
// low 7 bits = number of subsequent length octets) are supported. The
// indefinite form and the reserved octet 0xFF are rejected, as are lengths
// that exceed the remaining buffer. All errors are of type
// [*MalformedTLVError].
func ReadLength(buf []byte, pos int) (length int, next int, err error) {
	length, next, err = parseLength(buf, pos)
	if err != nil {
		return 0, pos, malformed(pos, err)
	}
	if length > len(buf)-next {
		return 0, pos, malformed(pos, ErrTruncated)
	}
	return length, next, nil
}

// parseLength decodes the length octets at buf[pos]. Unlike ReadLength it does
// not validate the length against the size of buf.
func parseLength(buf []byte, pos int) (length int, next int, err error) {
	if pos < 0 || pos >= len(buf) {
		return 0, pos, ErrTruncated
	}
	b := buf[pos]
	next = pos + 1
	switch {
	case b&0x80 == 0:
		// The length is encoded in the bottom 7 bits.
		return int(b), next, nil
	case b == 0x80:
		return 0, pos, errIndefiniteLength
	case b == 0xFF:
		return 0, pos, errReservedLength
	}

	// Bottom 7 bits give the number of length bytes to follow.
	numBytes := int(b & 0x7f)
	if numBytes > maxLengthOctets {
		return 0, pos, errLengthTooLarge
	}
	if numBytes > len(buf)-next {
		return 0, pos, ErrTruncated
	}
	for _, c := range buf[next : next+numBytes] {
		// the next shift must not overflow on 32-bit platforms
		if length > math.MaxInt>>8 {
			return 0, pos, errLengthTooLarge
		}
		length = length<<8 | int(c)
	}
	if length > math.MaxInt32 {
		return 0, pos, errLengthTooLarge
	}
	return length, next + numBytes, nil
}

// ReadHeader reads the identifier and length octets of a TLV starting at
// buf[pos]. The content octets are not required to be present in buf. Any
// error is a [*MalformedTLVError] whose offset is pos.
func ReadHeader(buf []byte, pos int) (Header, error) {
	tag, number, next, err := ReadTag(buf, pos)
	if err != nil {
		return Header{}, err
	}
	length, next, err := parseLength(buf, next)
	if err != nil {
		return Header{Tag: tag, Number: number}, malformed(pos, err)
	}
	return Header{Tag: tag, Number: number, Length: length, Size: next - pos}, nil
}

// ReadTLV reads a complete TLV starting at buf[pos]. The content octets must
// be present in buf. For primitive TLVs the returned value aliases buf. For
// constructed TLVs no value is returned. The contents of a constructed TLV can
// be read by calling ReadTLV at [TLV.ValueOffset].
func ReadTLV(buf []byte, pos int) (TLV, error) {
	h, err := ReadHeader(buf, pos)
	if err != nil {
		return TLV{}, err
	}
	t := TLV{Header: h, Offset: pos}
	if t.End() > len(buf) {
		return t, malformed(pos, ErrTruncated)
	}
	if !h.Constructed() {
		t.Value = buf[t.ValueOffset():t.End():t.End()]
	}
	return t, nil
}

// DecodeInteger interprets value as the content octets of an INTEGER or
// ENUMERATED: a big-endian two's complement integer. The result must lie
// within [min, max], otherwise an [*IntegerRangeError] is returned. An
// [*IntegerRangeError] is also returned if value is empty or does not fit into
// an int64.
func DecodeInteger(value []byte, min, max int64) (int64, error) {
	if len(value) == 0 {
		return 0, &IntegerRangeError{Min: min, Max: max, Err: errEmptyInteger}
	}
	if len(value) > 8 {
		return 0, &IntegerRangeError{Min: min, Max: max, Err: errIntegerTooLarge}
	}
	// sign extend the first octet
	i := int64(int8(value[0]))
	for _, b := range value[1:] {
		i = i<<8 | int64(b)
	}
	if i < min || i > max {
		return i, &IntegerRangeError{Value: i, Min: min, Max: max}
	}
	return i, nil
}
