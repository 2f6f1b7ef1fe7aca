// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package control connects LDAP controls to the grammars that decode their
// values. An LDAP message carries a list of controls (see [RFC 4511],
// Section 4.1.11), each identified by an OID. The surrounding message decoder
// extracts a [Control] and uses a [Registry] to decode its value into a typed
// result.
//
// [RFC 4511]: https://www.rfc-editor.org/rfc/rfc4511#section-4.1.11
package control

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownControl is returned when no decoder is registered for the OID of
// a control.
var ErrUnknownControl = errors.New("control: unknown control type")

// Control is an LDAP control as it appears in an LDAP message.
//
//	Control ::= SEQUENCE {
//		controlType   LDAPOID,
//		criticality   BOOLEAN DEFAULT FALSE,
//		controlValue  OCTET STRING OPTIONAL }
//
// Value holds the contents of the controlValue OCTET STRING, which is itself a
// BER encoding specific to the control type.
type Control struct {
	OID         string `json:"oid" yaml:"oid"`
	Criticality bool   `json:"criticality" yaml:"criticality"`
	Value       []byte `json:"value,omitempty" yaml:"value,omitempty"`
}

// DecodeFunc decodes the value of a control. The result type depends on the
// control type.
type DecodeFunc func(ctrl Control) (any, error)

// Error wraps a decoding error with the OID of the control that failed.
type Error struct {
	OID string
	Err error
}

func (e *Error) Unwrap() error { return e.Err }
func (e *Error) Error() string {
	var s strings.Builder
	s.WriteString("control ")
	s.WriteString(e.OID)
	if e.Err != nil {
		s.WriteString(": ")
		s.WriteString(e.Err.Error())
	}
	return s.String()
}

// Registry maps control OIDs to decoders. A Registry is safe for concurrent
// use. The zero value is an empty registry ready to use.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]DecodeFunc
}

// Register makes fn the decoder for controls of type oid. If a decoder is
// already registered for oid, or if fn is nil, Register panics.
func (r *Registry) Register(oid string, fn DecodeFunc) {
	if fn == nil {
		panic("control: Register decoder is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.decoders == nil {
		r.decoders = make(map[string]DecodeFunc)
	}
	if _, dup := r.decoders[oid]; dup {
		panic("control: Register called twice for " + oid)
	}
	r.decoders[oid] = fn
}

// Lookup returns the decoder registered for oid.
func (r *Registry) Lookup(oid string) (DecodeFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.decoders[oid]
	return fn, ok
}

// OIDs returns the registered OIDs in sorted order.
func (r *Registry) OIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	oids := make([]string, 0, len(r.decoders))
	for oid := range r.decoders {
		oids = append(oids, oid)
	}
	sort.Strings(oids)
	return oids
}

// Decode decodes the value of ctrl using the decoder registered for its OID.
// Errors are wrapped in an [*Error]. If no decoder is registered, the wrapped
// error is [ErrUnknownControl].
func (r *Registry) Decode(ctrl Control) (any, error) {
	fn, ok := r.Lookup(ctrl.OID)
	if !ok {
		return nil, &Error{OID: ctrl.OID, Err: ErrUnknownControl}
	}
	v, err := fn(ctrl)
	if err != nil {
		return nil, &Error{OID: ctrl.OID, Err: err}
	}
	return v, nil
}
