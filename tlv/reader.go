// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"bufio"
	"errors"
	"io"
)

// DefaultMaxLength is the default limit on the size of a single encoding read
// by a [Reader].
const DefaultMaxLength = 1 << 20

// errTooLong indicates that an encoding exceeds the limit of a [Reader].
var errTooLong = errors.New("data value exceeds maximum length")

// ioError represents an error that occurred when reading from an underlying
// data stream.
type ioError struct {
	err error
}

func (e *ioError) Unwrap() error { return e.err }
func (e *ioError) Error() string { return "read error: " + e.err.Error() }

// Reader splits a byte stream into complete top-level BER encodings, for
// example a sequence of control values written back to back. Each call to
// [Reader.Next] returns the full encoding of one data value, including its
// header, which can then be passed to a grammar.
type Reader struct {
	br     *bufio.Reader
	offset int
	maxLen int
	header []byte
}

// NewReader returns a Reader reading from r with a maximum encoding size of
// [DefaultMaxLength].
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{br: br, maxLen: DefaultMaxLength, header: make([]byte, 0, 16)}
}

// SetMaxLength limits the size of encodings returned by r to n bytes. Larger
// encodings are reported as a [*MalformedTLVError].
func (r *Reader) SetMaxLength(n int) {
	r.maxLen = n
}

// InputOffset returns the number of bytes consumed from the stream.
func (r *Reader) InputOffset() int {
	return r.offset
}

// Next reads the next top-level encoding. At the end of the stream Next returns
// [io.EOF]. If the stream ends within an encoding, a [*MalformedTLVError]
// wrapping [ErrTruncated] is returned. The returned slice is newly allocated.
func (r *Reader) Next() ([]byte, error) {
	start := r.offset
	r.header = r.header[:0]
	var h Header
	for {
		b, err := r.br.ReadByte()
		if err == io.EOF {
			if len(r.header) == 0 {
				return nil, io.EOF
			}
			return nil, malformed(start, ErrTruncated)
		} else if err != nil {
			return nil, &ioError{err}
		}
		r.offset++
		r.header = append(r.header, b)
		h, err = ReadHeader(r.header, 0)
		if err == nil {
			break
		} else if !errors.Is(err, ErrTruncated) {
			return nil, malformed(start, errors.Unwrap(err))
		}
	}

	if h.Size+h.Length > r.maxLen {
		return nil, malformed(start, errTooLong)
	}
	buf := make([]byte, h.Size+h.Length)
	copy(buf, r.header)
	n, err := io.ReadFull(r.br, buf[h.Size:])
	r.offset += n
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, malformed(start, ErrTruncated)
	} else if err != nil {
		return nil, &ioError{err}
	}
	return buf, nil
}
