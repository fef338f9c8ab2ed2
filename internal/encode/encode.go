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

// Package encode converts a decoded Result stream to JSON-lines or CSV,
// the two interchange formats the encode subcommand offers.
package encode

import (
	"encoding/csv"
	"io"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/nabbar/blitz/internal/model"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonResult mirrors model.Result's field names exactly, per the encode
// format contract ("the field names from §3").
type jsonResult struct {
	AttackName string `json:"attack_name"`
	Seq        uint64 `json:"seq"`
	Timestamp  int64  `json:"timestamp"`
	Latency    uint64 `json:"latency"`
	BytesIn    uint64 `json:"bytes_in"`
	BytesOut   uint64 `json:"bytes_out"`
	Code       uint16 `json:"code"`
	URL        string `json:"url"`
	Method     string `json:"method"`
	Error      string `json:"error"`
}

// JSONLines writes one JSON object per Result, newline-delimited.
func JSONLines(w io.Writer, results <-chan model.Result) error {
	for r := range results {
		b, err := jsonAPI.Marshal(jsonResult{
			AttackName: r.AttackName,
			Seq:        r.Seq,
			Timestamp:  r.Timestamp,
			Latency:    r.Latency,
			BytesIn:    r.BytesIn,
			BytesOut:   r.BytesOut,
			Code:       r.Code,
			URL:        r.URL,
			Method:     r.Method,
			Error:      r.Error,
		})
		if err != nil {
			return err
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

var csvHeader = []string{
	"timestamp", "status_code", "latency_ns", "bytes_in", "bytes_out",
	"method", "url", "error", "attack_name", "sequence_number",
}

// CSV writes the Result stream as RFC 4180 CSV (encoding/csv quotes
// fields containing commas or quotes automatically), with the column
// order fixed by the encode format contract.
func CSV(w io.Writer, results <-chan model.Result) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for r := range results {
		row := []string{
			strconv.FormatInt(r.Timestamp, 10),
			strconv.FormatUint(uint64(r.Code), 10),
			strconv.FormatUint(r.Latency, 10),
			strconv.FormatUint(r.BytesIn, 10),
			strconv.FormatUint(r.BytesOut, 10),
			r.Method,
			r.URL,
			r.Error,
			r.AttackName,
			strconv.FormatUint(r.Seq, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
