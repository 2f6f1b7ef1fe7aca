// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"codello.dev/ldapber/tlv"
)

// tlvRow is the printable form of a single TLV.
type tlvRow struct {
	Offset int    `json:"offset" yaml:"offset"`
	Depth  int    `json:"depth" yaml:"depth"`
	Header string `json:"header" yaml:"header"`
	Length int    `json:"length" yaml:"length"`
	Value  string `json:"value,omitempty" yaml:"value,omitempty"`
}

// walkTLVs lists the TLVs in buf in encoding order. Only a single top-level
// data value is expected, but trailing data values are listed as well.
func walkTLVs(buf []byte) ([]tlvRow, error) {
	var (
		rows  []tlvRow
		stack tlv.Stack
		pos   int
	)
	stack.Reset()
	for {
		stack.Close(pos)
		if pos == len(buf) {
			if open, ok := stack.Top(); ok {
				return rows, &tlv.MalformedTLVError{Offset: open.Offset, Err: tlv.ErrTruncated}
			}
			return rows, nil
		}
		t, err := tlv.ReadTLV(buf, pos)
		if err != nil {
			return rows, err
		}
		if err = stack.Fits(t); err != nil {
			return rows, err
		}
		rows = append(rows, tlvRow{
			Offset: t.Offset,
			Depth:  stack.Depth(),
			Header: t.Header.String(),
			Length: t.Length,
			Value:  hex.EncodeToString(t.Value),
		})
		if t.Constructed() {
			_ = stack.Push(t)
			pos = t.ValueOffset()
		} else {
			pos = t.End()
		}
	}
}

func newTLVCmd(a *app) *cobra.Command {
	var encoding string
	cmd := &cobra.Command{
		Use:   "tlv <value>",
		Short: "Show the TLV structure of a value",
		Long: `TLV prints the tag-length-value structure of a BER encoding without applying
a grammar. This is useful to diagnose values that fail to decode.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := decodeText(encoding, []byte(args[0]))
			if err != nil {
				return err
			}
			rows, walkErr := walkTLVs(buf)
			out := newFormatter(a.v.GetString("output"), cmd.OutOrStdout())
			err = out.print(rows, func() {
				table := make([][]string, len(rows))
				for i, r := range rows {
					table[i] = []string{
						strconv.Itoa(r.Offset),
						strings.Repeat("  ", r.Depth) + r.Header,
						r.Value,
					}
				}
				out.printTable([]string{"OFFSET", "TLV", "VALUE"}, table)
			})
			if walkErr != nil {
				return walkErr
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&encoding, "encoding", "e", encodingHex, "Input encoding (hex, base64)")
	return cmd
}
