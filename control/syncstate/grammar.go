// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syncstate

import (
	"bytes"
	"fmt"
	"log/slog"

	"codello.dev/ldapber"
	"codello.dev/ldapber/grammar"
	"codello.dev/ldapber/tlv"
)

// States of the syncStateValue grammar.
const (
	StartState grammar.State = iota
	SequenceState
	TypeState
	UUIDState
	CookieState
)

var states = grammar.NewStates(
	"START_STATE",
	"SYNC_STATE_VALUE_SEQUENCE_STATE",
	"SYNC_STATE_TYPE_STATE",
	"SYNC_UUID_STATE",
	"COOKIE_STATE",
)

var syncStateGrammar = grammar.New("SyncStateValue", states,
	// syncStateValue ::= SEQUENCE {
	grammar.Transition[Value]{
		From: StartState,
		To:   SequenceState,
		Tag:  ldapber.TagSequence,
		Name: "SyncStateValue SEQUENCE",
	},
	//     state ENUMERATED,
	grammar.Transition[Value]{
		From:   SequenceState,
		To:     TypeState,
		Tag:    ldapber.TagEnumerated,
		Name:   "SyncStateValue state",
		Action: decodeStateType,
	},
	//     entryUUID syncUUID,
	grammar.Transition[Value]{
		From:   TypeState,
		To:     UUIDState,
		Tag:    ldapber.TagOctetString,
		Name:   "SyncStateValue entryUUID",
		Action: decodeEntryUUID,
	},
	//     cookie syncCookie OPTIONAL }
	grammar.Transition[Value]{
		From:   UUIDState,
		To:     CookieState,
		Tag:    ldapber.TagOctetString,
		Name:   "SyncStateValue cookie",
		Action: decodeCookie,
	},
)

// Grammar returns the grammar for syncStateValue. The grammar is shared and
// must not be modified.
func Grammar() *grammar.Grammar[Value] {
	return syncStateGrammar
}

func decodeStateType(c *grammar.Container[Value], t tlv.TLV) error {
	n, err := tlv.DecodeInteger(t.Value, int64(Present), int64(Delete))
	if err != nil {
		return err
	}
	c.Value().Type = StateType(n)
	c.Debug("SyncStateValue state", "state", c.Value().Type)
	// entryUUID is mandatory
	c.SetEndAllowed(false)
	return nil
}

func decodeEntryUUID(c *grammar.Container[Value], t tlv.TLV) error {
	c.Value().EntryUUID = bytes.Clone(t.Value)
	c.Debug("SyncStateValue entryUUID", "entryUUID", hexDump(t.Value))
	c.SetEndAllowed(true)
	return nil
}

func decodeCookie(c *grammar.Container[Value], t tlv.TLV) error {
	c.Value().Cookie = bytes.Clone(t.Value)
	c.Debug("SyncStateValue cookie", "cookie", hexDump(t.Value))
	c.SetEndAllowed(true)
	return nil
}

// hexDump defers formatting of b until a log record is actually written.
type hexDump []byte

// LogValue implements [slog.LogValuer].
func (h hexDump) LogValue() slog.Value {
	return slog.StringValue(fmt.Sprintf("% X", []byte(h)))
}
