// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grammar

import (
	"context"
	"log/slog"
)

// LevelTrace is a log level more verbose than Debug. The decoder logs every
// transition at this level.
// Enable with: &slog.HandlerOptions{Level: grammar.LevelTrace}
const LevelTrace = slog.Level(-8)

// Observer is notified once per finished decode, successful or not. n is the
// number of input bytes consumed. Implementations must be safe for concurrent
// use if they are shared between decoders.
type Observer interface {
	ObserveDecode(grammar string, n int, err error)
}

// Option configures a [Decoder] or [Container].
type Option func(*options)

type options struct {
	logger   *slog.Logger
	observer Observer
}

// WithLogger sets the logger for debug and trace output. If not set, no
// logging occurs.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithObserver registers o to be notified about finished decodes.
func WithObserver(o Observer) Option {
	return func(opts *options) { opts.observer = o }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// logEnabled returns true if logging is enabled at the given level.
func logEnabled(logger *slog.Logger, level slog.Level) bool {
	return logger != nil && logger.Enabled(context.Background(), level)
}
