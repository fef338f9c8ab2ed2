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

	"github.com/spf13/cobra"

	"github.com/nabbar/blitz/internal/errs"
	"github.com/nabbar/blitz/internal/model"
	"github.com/nabbar/blitz/internal/plot"
	"github.com/nabbar/blitz/internal/resultio"
)

func newPlotCmd() *cobra.Command {
	var (
		in        string
		out       string
		threshold int
	)

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render a Result stream as a self-contained HTML latency plot",
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

			dec := resultio.NewDecoder(r)
			var results []model.Result
			for {
				res, err := dec.Decode()
				if err == io.EOF {
					break
				}
				if err != nil {
					return errs.Codef(errs.CodecError, "decoding result stream: %v", err)
				}
				results = append(results, res)
			}

			if err := plot.Render(w, results, threshold); err != nil {
				return errs.Codef(errs.SinkError, "rendering plot: %v", err)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in, "input", "", "Result stream input file (default: stdin)")
	f.StringVar(&out, "output", "", "HTML output file (default: stdout)")
	f.IntVar(&threshold, "threshold", 4000, "downsample to at most this many points by averaging adjacent ones")

	return cmd
}
