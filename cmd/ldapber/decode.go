// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"codello.dev/ldapber/control"
	"codello.dev/ldapber/control/syncstate"
	"codello.dev/ldapber/metrics"
	"codello.dev/ldapber/tlv"
)

// Input encodings.
const (
	encodingHex    = "hex"
	encodingBase64 = "base64"
	encodingRaw    = "raw"
)

type decodeFlags struct {
	files    []string
	encoding string
	jobs     int
	metrics  bool
}

// input is one control value to decode.
type input struct {
	name string
	data []byte
}

// decodeResult is the outcome of decoding one input.
type decodeResult struct {
	Input string     `json:"input" yaml:"input"`
	OID   string     `json:"oid" yaml:"oid"`
	Value *valueView `json:"value,omitempty" yaml:"value,omitempty"`
	Error string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// valueView is the printable form of a decoded control value. Byte strings are
// shown in hex.
type valueView struct {
	State     string `json:"state" yaml:"state"`
	EntryUUID string `json:"entryUUID" yaml:"entryUUID"`
	Cookie    string `json:"cookie,omitempty" yaml:"cookie,omitempty"`
}

func newDecodeCmd(a *app) *cobra.Command {
	var f decodeFlags
	cmd := &cobra.Command{
		Use:   "decode [value...]",
		Short: "Decode control values",
		Long: `Decode decodes one or more BER-encoded control values. Values are given as
arguments or read from files. All values are decoded concurrently using the
grammar registered for the control type selected by --oid.

Examples:
  # Decode a hex-encoded Sync State Control value
  ldapber decode 300a0a010104014104024344

  # Decode a raw BER file and print the result as YAML
  ldapber decode --encoding raw -f value.ber -o yaml

  # Print decode metrics in Prometheus text format
  ldapber decode --metrics 30060a0101040141 30030a0101

Metrics are written to stderr. With --output json or yaml the decode counts
are written in that format instead of the Prometheus text format.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDecode(cmd, f, args)
		},
	}
	cmd.Flags().StringArrayVarP(&f.files, "file", "f", nil, "Read a value from file (repeatable, - for stdin)")
	cmd.Flags().StringVarP(&f.encoding, "encoding", "e", encodingHex, "Input encoding (hex, base64, raw)")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "Maximum number of concurrent decodes")
	cmd.Flags().BoolVar(&f.metrics, "metrics", false, "Print decode metrics after the results")
	return cmd
}

func (a *app) runDecode(cmd *cobra.Command, f decodeFlags, args []string) error {
	if len(args) == 0 && len(f.files) == 0 {
		return errors.New("no values to decode")
	}
	if f.encoding == encodingRaw && len(args) > 0 {
		return errors.New("raw encoding is only supported for files")
	}
	if f.metrics {
		a.collector = metrics.NewCollector("ldapber")
	}

	inputs, err := readInputs(cmd.Context(), cmd.InOrStdin(), f, args)
	if err != nil {
		return err
	}

	oid := a.v.GetString("oid")
	controls := a.controls()
	results := make([]decodeResult, len(inputs))

	var g errgroup.Group
	if f.jobs > 0 {
		g.SetLimit(f.jobs)
	}
	for i, in := range inputs {
		g.Go(func() error {
			results[i] = decodeOne(controls, oid, in)
			return nil
		})
	}
	_ = g.Wait()

	out := newFormatter(a.v.GetString("output"), cmd.OutOrStdout())
	err = out.print(results, func() {
		rows := make([][]string, len(results))
		for i, r := range results {
			var v valueView
			if r.Value != nil {
				v = *r.Value
			}
			rows[i] = []string{r.Input, v.State, v.EntryUUID, v.Cookie, r.Error}
		}
		out.printTable([]string{"INPUT", "STATE", "ENTRY UUID", "COOKIE", "ERROR"}, rows)
	})
	if err != nil {
		return err
	}

	if a.collector != nil {
		if err = writeMetrics(a.v.GetString("output"), cmd.ErrOrStderr(), a.collector); err != nil {
			return err
		}
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d values failed to decode", failed, len(results))
	}
	return nil
}

// decodeOne decodes in as a control of type oid.
func decodeOne(controls *control.Registry, oid string, in input) decodeResult {
	res := decodeResult{Input: in.name, OID: oid}
	v, err := controls.Decode(control.Control{OID: oid, Value: in.data})
	if err != nil {
		res.Error = err.Error()
		return res
	}
	switch v := v.(type) {
	case *syncstate.Value:
		res.Value = &valueView{
			State:     v.Type.String(),
			EntryUUID: hex.EncodeToString(v.EntryUUID),
		}
		if v.Cookie != nil {
			res.Value.Cookie = hex.EncodeToString(v.Cookie)
		}
	default:
		res.Value = &valueView{State: fmt.Sprint(v)}
	}
	return res
}

// readInputs collects the values given as arguments and files. Files are read
// concurrently. A raw file may contain several values written back to back.
func readInputs(ctx context.Context, stdin io.Reader, f decodeFlags, args []string) ([]input, error) {
	inputs := make([]input, 0, len(args)+len(f.files))
	for i, arg := range args {
		data, err := decodeText(f.encoding, []byte(arg))
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		inputs = append(inputs, input{name: arg, data: data})
	}

	fileInputs := make([][]input, len(f.files))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range f.files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var (
				data []byte
				err  error
			)
			if name == "-" {
				data, err = io.ReadAll(stdin)
			} else {
				data, err = os.ReadFile(name)
			}
			if err != nil {
				return err
			}
			if f.encoding != encodingRaw {
				if data, err = decodeText(f.encoding, bytes.TrimSpace(data)); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				fileInputs[i] = []input{{name: name, data: data}}
				return nil
			}
			fileInputs[i], err = splitValues(name, data)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, in := range fileInputs {
		inputs = append(inputs, in...)
	}
	return inputs, nil
}

// splitValues splits the contents of a raw file into the encodings it
// contains. If there is more than one, the inputs are named name#1, name#2 and
// so on.
func splitValues(name string, data []byte) ([]input, error) {
	var values [][]byte
	r := tlv.NewReader(bytes.NewReader(data))
	for {
		v, err := r.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		// an empty file still yields an input so that the failure is reported
		return []input{{name: name, data: data}}, nil
	}
	if len(values) == 1 {
		return []input{{name: name, data: values[0]}}, nil
	}
	inputs := make([]input, len(values))
	for i, v := range values {
		inputs[i] = input{name: name + "#" + strconv.Itoa(i+1), data: v}
	}
	return inputs, nil
}

// decodeText decodes a textual representation of a value. Whitespace within
// hex input is ignored.
func decodeText(encoding string, text []byte) ([]byte, error) {
	switch encoding {
	case encodingHex:
		s := strings.Join(strings.Fields(string(text)), "")
		return hex.DecodeString(s)
	case encodingBase64:
		return base64.StdEncoding.DecodeString(string(text))
	default:
		return nil, fmt.Errorf("unknown encoding %q", encoding)
	}
}

// writeMetrics writes the metrics of c to w. The table format uses the
// Prometheus text format, other formats write the decode counts of c.
func writeMetrics(format string, w io.Writer, c *metrics.Collector) error {
	if format != formatTable {
		return newFormatter(format, w).print(c.Snapshot(), nil)
	}
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return err
	}
	mfs, err := reg.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err = enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
