// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics exports decoding statistics to Prometheus. A [Collector]
// is passed to decoders via [grammar.WithObserver] and registered with a
// [prometheus.Registerer].
package metrics

import (
	"errors"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"codello.dev/ldapber/grammar"
	"codello.dev/ldapber/tlv"
)

// Outcome labels of the decodes counter.
const (
	OutcomeOK            = "ok"
	OutcomeMalformed     = "malformed"
	OutcomeRange         = "range"
	OutcomeUnexpectedTag = "unexpected_tag"
	OutcomeIncomplete    = "incomplete"
	OutcomeOther         = "other"
)

// Outcome classifies the result of a decode for use as a metric label.
func Outcome(err error) string {
	var (
		malformed  *tlv.MalformedTLVError
		rangeErr   *tlv.IntegerRangeError
		unexpected *grammar.UnexpectedTagError
		incomplete *grammar.IncompleteStructureError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &malformed):
		return OutcomeMalformed
	case errors.As(err, &rangeErr):
		return OutcomeRange
	case errors.As(err, &unexpected):
		return OutcomeUnexpectedTag
	case errors.As(err, &incomplete):
		return OutcomeIncomplete
	default:
		return OutcomeOther
	}
}

type key struct {
	grammar string
	outcome string
}

// Collector implements [prometheus.Collector] and [grammar.Observer]. It
// counts finished decodes per grammar and outcome as well as the number of
// input bytes consumed. A Collector is safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	decodes map[key]uint64
	bytes   map[string]uint64

	decodesTotal *prometheus.Desc
	bytesTotal   *prometheus.Desc
}

// NewCollector returns a Collector whose metric names start with namespace.
// An empty namespace results in unprefixed names.
func NewCollector(namespace string) *Collector {
	return &Collector{
		decodes: make(map[key]uint64),
		bytes:   make(map[string]uint64),

		decodesTotal: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "decodes_total"),
			"Total finished decodes by grammar and outcome.",
			[]string{"grammar", "outcome"}, nil,
		),
		bytesTotal: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "decoded_bytes_total"),
			"Total input bytes consumed by decodes.",
			[]string{"grammar"}, nil,
		),
	}
}

// ObserveDecode implements [grammar.Observer].
func (c *Collector) ObserveDecode(grammar string, n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decodes[key{grammar, Outcome(err)}]++
	c.bytes[grammar] += uint64(n)
}

// Describe implements [prometheus.Collector].
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.decodesTotal
	ch <- c.bytesTotal
}

// Collect implements [prometheus.Collector].
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range c.decodes {
		ch <- prometheus.MustNewConstMetric(c.decodesTotal, prometheus.CounterValue,
			float64(v), k.grammar, k.outcome)
	}
	for g, v := range c.bytes {
		ch <- prometheus.MustNewConstMetric(c.bytesTotal, prometheus.CounterValue,
			float64(v), g)
	}
}

// Count is a snapshot of the decodes counter for one grammar and outcome.
type Count struct {
	Grammar string `json:"grammar" yaml:"grammar"`
	Outcome string `json:"outcome" yaml:"outcome"`
	Decodes uint64 `json:"decodes" yaml:"decodes"`
}

// Snapshot returns the current decode counts sorted by grammar and outcome.
func (c *Collector) Snapshot() []Count {
	c.mu.Lock()
	counts := make([]Count, 0, len(c.decodes))
	for k, v := range c.decodes {
		counts = append(counts, Count{Grammar: k.grammar, Outcome: k.outcome, Decodes: v})
	}
	c.mu.Unlock()
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Grammar != counts[j].Grammar {
			return counts[i].Grammar < counts[j].Grammar
		}
		return counts[i].Outcome < counts[j].Outcome
	})
	return counts
}
