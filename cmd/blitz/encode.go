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

	"github.com/nabbar/blitz/internal/encode"
	"github.com/nabbar/blitz/internal/errs"
	"github.com/nabbar/blitz/internal/model"
	"github.com/nabbar/blitz/internal/resultio"
)

func newEncodeCmd() *cobra.Command {
	var (
		in     string
		out    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Convert a Result stream to JSON lines or CSV",
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

			results := make(chan model.Result)
			decErr := make(chan error, 1)
			go func() {
				defer close(results)
				dec := resultio.NewDecoder(r)
				for {
					res, err := dec.Decode()
					if err == io.EOF {
						decErr <- nil
						return
					}
					if err != nil {
						decErr <- errs.Codef(errs.CodecError, "decoding result stream: %v", err)
						return
					}
					results <- res
				}
			}()

			var encErr error
			switch format {
			case "json":
				encErr = encode.JSONLines(w, results)
			case "csv":
				encErr = encode.CSV(w, results)
			default:
				return errs.Codef(errs.ConfigError, "unknown --to %q: want json or csv", format)
			}
			if encErr != nil {
				return errs.Codef(errs.SinkError, "encoding: %v", encErr)
			}
			return <-decErr
		},
	}

	f := cmd.Flags()
	f.StringVar(&in, "input", "", "Result stream input file (default: stdin)")
	f.StringVar(&out, "output", "", "encoded output file (default: stdout)")
	f.StringVar(&format, "to", "json", "output format: json or csv")

	return cmd
}
