// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

// Stack maintains the nesting of constructed TLVs during decoding. Each entry
// is a constructed TLV whose contents are currently being processed. The
// bottom of the stack is the top-level data value. An empty Stack represents
// the root level of the input.
//
// Because every pushed TLV is validated against its parent, the end positions
// of the entries are non-increasing from bottom to top.
type Stack struct {
	stack []TLV
}

// Reset clears s. The allocated stack space is reused.
func (s *Stack) Reset() {
	if s.stack == nil {
		s.stack = make([]TLV, 0, 4)
	}
	s.stack = s.stack[:0]
}

// Depth returns the number of open constructed TLVs.
func (s *Stack) Depth() int { return len(s.stack) }

// Top returns the innermost open TLV. If s is at the root level, ok is false.
func (s *Stack) Top() (t TLV, ok bool) {
	if len(s.stack) == 0 {
		return TLV{}, false
	}
	return s.stack[len(s.stack)-1], true
}

// Limit returns the position at which the innermost open TLV ends, or
// -1 if s is at the root level.
func (s *Stack) Limit() int {
	if t, ok := s.Top(); ok {
		return t.End()
	}
	return -1
}

// Fits validates that t does not extend past the end of the innermost open
// TLV. The returned error is a [*MalformedTLVError].
func (s *Stack) Fits(t TLV) error {
	if l := s.Limit(); l >= 0 && t.End() > l {
		return malformed(t.Offset, errExceedsParent)
	}
	return nil
}

// Push validates t using [Stack.Fits] and puts it onto the stack, indicating
// that the contents of t are now being processed.
func (s *Stack) Push(t TLV) error {
	if err := s.Fits(t); err != nil {
		return err
	}
	s.stack = append(s.stack, t)
	return nil
}

// Close removes all TLVs that end at pos from the stack. It returns the number
// of TLVs removed.
func (s *Stack) Close(pos int) (n int) {
	for len(s.stack) > 0 && s.stack[len(s.stack)-1].End() == pos {
		s.stack = s.stack[:len(s.stack)-1]
		n++
	}
	return n
}
