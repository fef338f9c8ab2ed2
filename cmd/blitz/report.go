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

package main

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nabbar/blitz/internal/errs"
	"github.com/nabbar/blitz/internal/metrics"
	"github.com/nabbar/blitz/internal/model"
	"github.com/nabbar/blitz/internal/report"
	"github.com/nabbar/blitz/internal/resultio"
)

func newReportCmd() *cobra.Command {
	var (
		in     string
		out    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize a Result stream as text, json, hist[buckets] or hdrplot",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := os.Stdin
			if in != "" {
				f, err := os.Open(in)
				if err != nil {
					return errs.Codef(errs.ConfigError, "opening input: %v", err)
				}
				defer f.Close()
				r = f
			}

			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return errs.Codef(errs.SinkError, "creating output: %v", err)
				}
				defer f.Close()
				w = f
			}

			kind, edges, err := parseReportFormat(format)
			if err != nil {
				return err
			}

			return runReport(r, w, kind, edges)
		},
	}

	f := cmd.Flags()
	f.StringVar(&in, "input", "", "Result stream input file (default: stdin)")
	f.StringVar(&out, "output", "", "report output file (default: stdout)")
	f.StringVar(&format, "type", "text", "report type: text, json, hdrplot, or hist[edge,edge,...]")

	return cmd
}

// parseReportFormat splits the --type flag into a report kind and, for
// "hist[...]", the bucket edges it names (e.g. "hist[100ms,250ms,1s]").
func parseReportFormat(format string) (string, []time.Duration, error) {
	if !strings.HasPrefix(format, "hist") {
		return format, nil, nil
	}

	open := strings.Index(format, "[")
	shut := strings.LastIndex(format, "]")
	if open < 0 || shut < open {
		return "", nil, errs.Codef(errs.ConfigError, "malformed hist format %q: want hist[edge,edge,...]", format)
	}

	var edges []time.Duration
	for _, tok := range strings.Split(format[open+1:shut], ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		d, err := time.ParseDuration(tok)
		if err != nil {
			if ns, nerr := strconv.ParseInt(tok, 10, 64); nerr == nil {
				d = time.Duration(ns)
			} else {
				return "", nil, errs.Codef(errs.ConfigError, "invalid hist edge %q: %v", tok, err)
			}
		}
		edges = append(edges, d)
	}
	if len(edges) == 0 {
		return "", nil, errs.Codef(errs.ConfigError, "hist format needs at least one edge, got %q", format)
	}
	return "hist", edges, nil
}

func runReport(r io.Reader, w io.Writer, kind string, edges []time.Duration) error {
	dec := resultio.NewDecoder(r)

	switch kind {
	case "hist":
		ch := make(chan model.Result)
		decErr := make(chan error, 1)
		go decodeInto(dec, ch, decErr)
		buckets := report.Hist(ch, edges)
		if err := <-decErr; err != nil {
			return err
		}
		if err := report.WriteHist(w, buckets); err != nil {
			return errs.Codef(errs.SinkError, "writing hist report: %v", err)
		}
		return nil

	case "hdrplot":
		agg, err := fold(dec)
		if err != nil {
			return err
		}
		if err := report.HDRPlot(w, agg); err != nil {
			return errs.Codef(errs.SinkError, "writing hdrplot report: %v", err)
		}
		return nil

	case "json":
		agg, err := fold(dec)
		if err != nil {
			return err
		}
		if err := report.JSON(w, agg.Snapshot()); err != nil {
			return errs.Codef(errs.SinkError, "writing json report: %v", err)
		}
		return nil

	case "text":
		agg, err := fold(dec)
		if err != nil {
			return err
		}
		if err := report.Text(w, agg.Snapshot()); err != nil {
			return errs.Codef(errs.SinkError, "writing text report: %v", err)
		}
		return nil

	default:
		return errs.Codef(errs.ConfigError, "unknown --type %q", kind)
	}
}

func decodeInto(dec *resultio.Decoder, out chan<- model.Result, errc chan<- error) {
	defer close(out)
	for {
		res, err := dec.Decode()
		if err == io.EOF {
			errc <- nil
			return
		}
		if err != nil {
			errc <- errs.Codef(errs.CodecError, "decoding result stream: %v", err)
			return
		}
		out <- res
	}
}

func fold(dec *resultio.Decoder) (*metrics.Aggregator, error) {
	agg := metrics.New()
	for {
		res, err := dec.Decode()
		if err == io.EOF {
			return agg, nil
		}
		if err != nil {
			return nil, errs.Codef(errs.CodecError, "decoding result stream: %v", err)
		}
		agg.Add(res)
	}
}
