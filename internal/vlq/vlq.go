// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vlq parses [Variable-length quantity] values from byte slices. A VLQ
// is a base-128 representation of an unsigned integer with the eighth bit of
// each byte marking continuation. BER uses VLQs for tag numbers in the
// high-tag-number form.
//
// [Variable-length quantity]: https://en.wikipedia.org/wiki/Variable-length_quantity
package vlq

import (
	"errors"
	"io"
	"math/bits"
	"unsafe"
)

var (
	ErrNotMinimal = errors.New("vlq is not minimally encoded")
	ErrOverflow   = errors.New("vlq too large for target type")
)

// Parse parses a minimally encoded unsigned VLQ from the beginning of b. It
// returns the value and the number of bytes it occupies. The maximum allowed
// value is limited by the size of T.
//
// If b ends before the last byte of the VLQ, [io.ErrUnexpectedEOF] is returned
// together with the number of bytes examined.
func Parse[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](b []byte) (ret T, n int, err error) {
	if len(b) == 0 {
		return 0, 0, io.ErrUnexpectedEOF
	}
	if b[0] == 0x80 {
		return 0, 1, ErrNotMinimal
	}

	numBits := 0
	for n < len(b) {
		c := b[n]
		n++
		ret = ret<<7 | T(c&0x7f)

		if numBits == 0 {
			numBits = bits.Len8(c & 0x7f)
		} else {
			numBits += 7
		}
		if numBits > int(unsafe.Sizeof(ret)*8) {
			return 0, n, ErrOverflow
		}
		if c&0x80 == 0 {
			return ret, n, nil
		}
	}
	return 0, n, io.ErrUnexpectedEOF
}

// Length returns the number of bytes needed to encode n as a VLQ.
func Length[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](n T) int {
	if n == 0 {
		return 1
	}
	l := 0
	for i := n; i > 0; i >>= 7 {
		l++
	}
	return l
}
