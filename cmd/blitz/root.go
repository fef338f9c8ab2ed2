/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package main wires the blitz CLI: attack, encode, report and plot
// subcommands over spf13/cobra, with global flags bound through
// spf13/pflag and an optional config file read via spf13/viper (parsed
// only; its values are not applied to flags) —
// the same CLI stack the teacher's own cobra wrapper builds on, used
// here directly since a four-subcommand CLI doesn't need that wrapper's
// full surface (shell completion generation, 20-type flag registry).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nabbar/blitz/internal/errs"
	"github.com/nabbar/blitz/internal/logger"
)

var (
	flagLogLevel  string
	flagLogFormat string
	flagConfig    string

	flagPrometheusAddr    string
	flagOpenTelemetryAddr string

	log logger.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "blitz",
		Short:         "A constant-rate HTTP load generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagLogLevel, "log-level", "info", "log level: debug, info, warning, error")
	pf.StringVar(&flagLogFormat, "log-format", "text", "log format: text, json")
	pf.StringVar(&flagConfig, "config", "", "config file (yaml/json/toml); it is read and parsed, but its values are not applied to flags")
	pf.StringVar(&flagPrometheusAddr, "prometheus-addr", "", "address to serve Prometheus /metrics on (disabled if empty)")
	pf.StringVar(&flagOpenTelemetryAddr, "opentelemetry-addr", "", "OTLP/HTTP endpoint to push metrics to (disabled if empty)")

	root.AddCommand(newAttackCmd())
	root.AddCommand(newEncodeCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newPlotCmd())

	return root
}

func initConfig() error {
	log = logger.New(os.Stderr, flagLogLevel, flagLogFormat)

	if flagConfig == "" {
		return nil
	}
	viper.SetConfigFile(flagConfig)
	if err := viper.ReadInConfig(); err != nil {
		return errs.Codef(errs.ConfigError, "reading config file %q: %v", flagConfig, err)
	}
	log.Debug("loaded config file", nil, "path", flagConfig)
	return nil
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "blitz:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit code the spec's error
// handling design requires: 0 success, 1 argument/IO errors, 2 tolerance
// failure, 3 internal errors.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if ce, ok := err.(errs.Error); ok {
		return ce.Code().ExitCode()
	}
	return 1
}
