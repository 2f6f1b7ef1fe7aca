// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ldapber implements grammar-driven decoding of BER-encoded LDAP
// control values. BER is defined in [Rec. ITU-T X.690]. LDAP restricts BER
// to definite-length encodings (see [RFC 4511], Section 5.1).
//
// This package defines the [Tag] type that identifies a BER data value. The
// subpackages implement the layers of a decoder:
//
//   - Package [codello.dev/ldapber/tlv] reads tag-length-value headers and
//     primitive values from a byte slice.
//   - Package [codello.dev/ldapber/grammar] implements a declarative state
//     machine. A grammar maps a (state, tag) pair to the next state and an
//     action that fills in a typed result.
//   - Package [codello.dev/ldapber/control/syncstate] instantiates a grammar for
//     the Sync State Control of [RFC 4533].
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
// [RFC 4511]: https://www.rfc-editor.org/rfc/rfc4511
// [RFC 4533]: https://www.rfc-editor.org/rfc/rfc4533
package ldapber

import (
	"strconv"
	"strings"
)

// Tag is the identifier octet of a BER data value. It combines the tag class
// (top two bits), the constructed flag (bit 6) and the tag number (bottom
// five bits). If the tag number is 31 the actual number follows in
// base-128 encoding (the high-tag-number form); such tags are identified only
// by their first octet here.
//
// Grammars are indexed by Tag, so there are exactly 256 possible values.
type Tag uint8

// Class holds the class part of a BER tag. A Class value is an unsigned 2-bit
// integer.
//
//go:generate stringer -type=Class -trimprefix=Class
type Class uint8

// Predefined [Class] constants. These are all the possible values that can be
// encoded in the [Class] type.
const (
	ClassUniversal Class = iota
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

// IsValid reports whether c is a valid Class value.
func (c Class) IsValid() bool {
	return c <= 3
}

// tagNumberMask selects the tag number from an identifier octet.
const tagNumberMask = 0x1f

// HighTagNumber is the tag number indicating the high-tag-number form.
const HighTagNumber = tagNumberMask

// NewTag builds the identifier octet for the given class, form and number. If
// number does not fit in five bits, the identifier for the high-tag-number form
// is returned.
func NewTag(c Class, constructed bool, number uint) Tag {
	t := Tag(c&0b11) << 6
	if constructed {
		t |= 0x20
	}
	if number >= HighTagNumber {
		return t | HighTagNumber
	}
	return t | Tag(number)
}

// ContextSpecific returns the identifier octet of a context-specific tag
// [number].
func ContextSpecific(number uint, constructed bool) Tag {
	return NewTag(ClassContextSpecific, constructed, number)
}

// Class returns the class of t.
func (t Tag) Class() Class {
	return Class(t >> 6)
}

// Constructed reports whether t indicates the constructed encoding.
func (t Tag) Constructed() bool {
	return t&0x20 == 0x20
}

// Number returns the tag number of t. If t uses the high-tag-number form, the
// result is [HighTagNumber] and the actual number must be taken from the
// encoding.
func (t Tag) Number() uint {
	return uint(t & tagNumberMask)
}

// String returns a string representation of t in a format similar to the one
// used in ASN.1 notation, followed by the encoding form: "/c" for
// constructed, "/p" for primitive. The UNIVERSAL word is used for universal
// tags, although this is not valid ASN.1 syntax.
func (t Tag) String() string {
	var s strings.Builder
	s.WriteByte('[')
	if t.Class() != ClassContextSpecific {
		s.WriteString(strings.ToUpper(t.Class().String()))
		s.WriteByte(' ')
	}
	s.WriteString(strconv.FormatUint(uint64(t.Number()), 10))
	s.WriteByte(']')
	if t.Constructed() {
		s.WriteString("/c")
	} else {
		s.WriteString("/p")
	}
	return s.String()
}

// TagReserved is the reserved universal tag used by the end-of-contents marker.
// LDAP does not use the indefinite-length encoding, so this tag never appears
// in a valid control value.
const TagReserved Tag = 0x00

// These are the identifier octets of the universal types in the form LDAP uses
// them. SEQUENCE and SET are always constructed, all others primitive. The
// assignments are defined in Rec. ITU-T X.680, Section 8, Table 1.
const (
	TagBoolean          Tag = 0x01
	TagInteger          Tag = 0x02
	TagBitString        Tag = 0x03
	TagOctetString      Tag = 0x04
	TagNull             Tag = 0x05
	TagOID              Tag = 0x06
	TagObjectDescriptor Tag = 0x07
	TagReal             Tag = 0x09
	TagEnumerated       Tag = 0x0A
	TagUTF8String       Tag = 0x0C
	TagRelativeOID      Tag = 0x0D
	TagSequence         Tag = 0x30
	TagSet              Tag = 0x31
	TagNumericString    Tag = 0x12
	TagPrintableString  Tag = 0x13
	TagIA5String        Tag = 0x16
	TagUTCTime          Tag = 0x17
	TagGeneralizedTime  Tag = 0x18
	TagVisibleString    Tag = 0x1A
	TagGeneralString    Tag = 0x1B
)
