// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tlv implements the syntactic layer of BER decoding: reading
// tag-length-value (TLV) units from a byte slice as specified in
// [Rec. ITU-T X.690]. See also “[A Layman's Guide to a Subset of ASN.1, BER,
// and DER]”.
//
// All functions operate on a buffer and a position within that buffer. They
// never modify the buffer and never copy value bytes: the value of a [TLV]
// aliases the input. Callers that keep values beyond the lifetime of the
// buffer must copy them.
//
// Only the definite-length encoding is supported, as required by LDAP. The
// [Stack] type tracks the nesting of constructed TLVs and validates that
// nested data values do not exceed their parents.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
// [A Layman's Guide to a Subset of ASN.1, BER, and DER]: http://luca.ntop.org/Teaching/Appunti/asn1.html
package tlv

import (
	"strconv"

	"codello.dev/ldapber"
)

// Header represents a TLV header: the identifier octets and the length
// octets of a data value encoding.
type Header struct {
	// Tag is the first identifier octet. For tags in the high-tag-number form,
	// the tag number is given by Number.
	Tag ldapber.Tag

	// Number is the tag number, including numbers in the high-tag-number form.
	Number uint

	// Length is the number of content octets.
	Length int

	// Size is the number of bytes occupied by the header itself.
	Size int
}

// Constructed reports whether h indicates the constructed encoding.
func (h Header) Constructed() bool {
	return h.Tag.Constructed()
}

// String returns a string representation of h.
func (h Header) String() string {
	s := h.Tag.String()
	if h.Tag.Number() == ldapber.HighTagNumber {
		s += "#" + strconv.FormatUint(uint64(h.Number), 10)
	}
	return s + ":" + strconv.Itoa(h.Length)
}

// TLV is a single decoded tag-length-value unit.
type TLV struct {
	Header

	// Offset is the position of the first identifier octet in the input.
	Offset int

	// Value holds the content octets of a primitive TLV. It aliases the input
	// buffer. Value is nil for constructed TLVs, whose contents are decoded as
	// separate TLVs.
	Value []byte
}

// ValueOffset returns the position of the first content octet of t.
func (t TLV) ValueOffset() int {
	return t.Offset + t.Size
}

// End returns the position directly after the last content octet of t.
func (t TLV) End() int {
	return t.Offset + t.Size + t.Length
}
