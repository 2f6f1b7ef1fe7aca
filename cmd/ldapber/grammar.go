// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codello.dev/ldapber/control/syncstate"
	"codello.dev/ldapber/grammar"
)

// transitionRow is the printable form of a grammar transition.
type transitionRow struct {
	From   string `json:"from" yaml:"from"`
	Tag    string `json:"tag" yaml:"tag"`
	To     string `json:"to" yaml:"to"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Action bool   `json:"action" yaml:"action"`
}

type grammarInfo struct {
	Grammar     string          `json:"grammar" yaml:"grammar"`
	States      []string        `json:"states" yaml:"states"`
	Transitions []transitionRow `json:"transitions" yaml:"transitions"`
}

// grammars maps control OIDs to a description of their grammar.
var grammars = map[string]func() grammarInfo{
	syncstate.OID: func() grammarInfo { return describe(syncstate.Grammar()) },
}

func describe[T any](g *grammar.Grammar[T]) grammarInfo {
	states := g.States()
	info := grammarInfo{Grammar: g.Name()}
	for s := range states.Len() {
		info.States = append(info.States, states.Name(grammar.State(s)))
	}
	for _, t := range g.Transitions() {
		info.Transitions = append(info.Transitions, transitionRow{
			From:   states.Name(t.From),
			Tag:    fmt.Sprintf("0x%02X %s", uint8(t.Tag), t.Tag),
			To:     states.Name(t.To),
			Name:   t.Name,
			Action: t.Action != nil,
		})
	}
	return info
}

func newGrammarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "grammar",
		Short: "Show the grammar of a control type",
		Long: `Grammar prints the states and transitions of the grammar used to decode the
control type selected by --oid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			oid := a.v.GetString("oid")
			desc, ok := grammars[oid]
			if !ok {
				return fmt.Errorf("no grammar for control %s", oid)
			}
			info := desc()
			out := newFormatter(a.v.GetString("output"), cmd.OutOrStdout())
			return out.print(info, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d states)\n\n", info.Grammar, len(info.States))
				rows := make([][]string, len(info.Transitions))
				for i, t := range info.Transitions {
					action := "-"
					if t.Action {
						action = "yes"
					}
					rows[i] = []string{t.From, t.Tag, t.To, action, t.Name}
				}
				out.printTable([]string{"FROM", "TAG", "TO", "ACTION", "NAME"}, rows)
			})
		},
	}
}
