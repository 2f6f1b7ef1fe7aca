// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package syncstate decodes the value of the Sync State Control defined in
// [RFC 4533], Section 2.2. The control is attached to each entry returned in a
// content synchronization search:
//
//	syncStateValue ::= SEQUENCE {
//		state ENUMERATED {
//			present (0),
//			add (1),
//			modify (2),
//			delete (3)
//		},
//		entryUUID syncUUID,
//		cookie    syncCookie OPTIONAL
//	}
//
// syncUUID and syncCookie are OCTET STRINGs.
//
// [RFC 4533]: https://www.rfc-editor.org/rfc/rfc4533#section-2.2
package syncstate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"codello.dev/ldapber/control"
	"codello.dev/ldapber/grammar"
)

// OID identifies the Sync State Control.
const OID = "1.3.6.1.4.1.4203.1.9.1.2"

// StateType indicates the reason an entry is returned.
//
//go:generate stringer -type=StateType -linecomment
type StateType int

const (
	Present StateType = iota // present
	Add                      // add
	Modify                   // modify
	Delete                   // delete
)

// IsValid reports whether s is one of the defined state types.
func (s StateType) IsValid() bool {
	return s >= Present && s <= Delete
}

// MarshalText implements [encoding.TextMarshaler].
func (s StateType) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, errors.New("syncstate: invalid state type " + strconv.Itoa(int(s)))
	}
	return []byte(s.String()), nil
}

// Value is the decoded value of a Sync State Control.
type Value struct {
	Type      StateType `json:"state" yaml:"state"`
	EntryUUID []byte    `json:"entryUUID" yaml:"entryUUID"`

	// Cookie is nil if the control does not contain a cookie.
	Cookie []byte `json:"cookie,omitempty" yaml:"cookie,omitempty"`
}

// String returns a human-readable representation of v.
func (v *Value) String() string {
	var s strings.Builder
	fmt.Fprintf(&s, "SyncStateValue{state: %s, entryUUID: 0x%X", v.Type, v.EntryUUID)
	if v.Cookie != nil {
		fmt.Fprintf(&s, ", cookie: 0x%X", v.Cookie)
	}
	s.WriteByte('}')
	return s.String()
}

// Decode decodes the BER encoding of a syncStateValue. The returned value does
// not share memory with data. On error the returned error is a
// [*grammar.DecodeError].
func Decode(data []byte, opts ...grammar.Option) (*Value, error) {
	return grammar.Decode(syncStateGrammar, data, opts...)
}

// NewDecoder returns a decoder for input that arrives in pieces.
func NewDecoder(opts ...grammar.Option) *grammar.Decoder[Value] {
	return grammar.NewDecoder(syncStateGrammar, opts...)
}

// ErrWrongControl is returned by [FromControl] if the OID of a control is not
// [OID].
var ErrWrongControl = errors.New("syncstate: not a sync state control")

// FromControl decodes the value of ctrl. It fails with [ErrWrongControl] if
// ctrl is not a Sync State Control.
func FromControl(ctrl control.Control, opts ...grammar.Option) (*Value, error) {
	if ctrl.OID != OID {
		return nil, ErrWrongControl
	}
	return Decode(ctrl.Value, opts...)
}

// Register adds a decoder for the Sync State Control to r. Decoded values are
// of type *Value.
func Register(r *control.Registry, opts ...grammar.Option) {
	r.Register(OID, func(ctrl control.Control) (any, error) {
		return FromControl(ctrl, opts...)
	})
}
