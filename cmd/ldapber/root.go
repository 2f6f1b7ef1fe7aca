// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codello.dev/ldapber/control"
	"codello.dev/ldapber/control/syncstate"
	"codello.dev/ldapber/grammar"
	"codello.dev/ldapber/metrics"
)

const version = "0.1.0"

// app holds the state shared by all commands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string

	logger    *slog.Logger
	collector *metrics.Collector
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "ldapber",
		Short: "Decode BER-encoded LDAP control values",
		Long: `ldapber decodes the values of LDAP controls using declarative BER grammars.

Examples:
  # Decode a Sync State Control value
  ldapber decode 30060a0101040141

  # Decode base64 values read from files
  ldapber decode --encoding base64 -f state1.b64 -f state2.b64

  # Show the transitions of the Sync State grammar
  ldapber grammar

  # Show the TLV structure of an encoding
  ldapber tlv 300a0a010104014104024344`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initConfig(cmd.ErrOrStderr()); err != nil {
				return err
			}
			level := slog.LevelInfo
			switch {
			case a.v.GetBool("trace"):
				level = grammar.LevelTrace
			case a.v.GetBool("verbose"):
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))
			switch f := a.v.GetString("output"); f {
			case formatTable, formatJSON, formatYAML:
			default:
				return fmt.Errorf("unknown output format %q", f)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.ldapber.yaml)")
	flags.StringP("output", "o", formatTable, "Output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "Log decoded fields")
	flags.Bool("trace", false, "Log every grammar transition")
	flags.String("oid", syncstate.OID, "Control type OID of the decoded values")

	for _, name := range []string{"output", "verbose", "trace", "oid"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(newDecodeCmd(a))
	rootCmd.AddCommand(newGrammarCmd(a))
	rootCmd.AddCommand(newTLVCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// initConfig reads the config file and environment variables. The config
// file in use is reported to w in verbose mode.
func (a *app) initConfig(w io.Writer) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.SetConfigName(".ldapber")
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix("LDAPBER")
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
		return nil
	}
	if a.v.GetBool("verbose") {
		fmt.Fprintln(w, "Using config file:", a.v.ConfigFileUsed())
	}
	return nil
}

// decodeOptions returns the options passed to every decode.
func (a *app) decodeOptions() []grammar.Option {
	opts := []grammar.Option{grammar.WithLogger(a.logger)}
	if a.collector != nil {
		opts = append(opts, grammar.WithObserver(a.collector))
	}
	return opts
}

// controls returns a registry of all supported control decoders configured
// with the options of a.
func (a *app) controls() *control.Registry {
	r := new(control.Registry)
	syncstate.Register(r, a.decodeOptions()...)
	return r
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ldapber version", version)
		},
	}
}
