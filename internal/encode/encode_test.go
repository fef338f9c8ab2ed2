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

package encode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nabbar/blitz/internal/model"
)

func feed(results []model.Result) <-chan model.Result {
	c := make(chan model.Result, len(results))
	for _, r := range results {
		c <- r
	}
	close(c)
	return c
}

func TestJSONLinesFieldNames(t *testing.T) {
	var buf bytes.Buffer
	err := JSONLines(&buf, feed([]model.Result{
		{AttackName: "a", Seq: 1, Code: 200, URL: "http://x", Method: "GET"},
	}))
	if err != nil {
		t.Fatalf("JSONLines: %v", err)
	}
	out := buf.String()
	for _, field := range []string{`"attack_name"`, `"seq"`, `"code"`, `"url"`, `"method"`} {
		if !strings.Contains(out, field) {
			t.Fatalf("output missing field %s: %s", field, out)
		}
	}
}

func TestCSVQuotesFieldsWithCommas(t *testing.T) {
	var buf bytes.Buffer
	err := CSV(&buf, feed([]model.Result{
		{Error: "other:bad, odd \"thing\"", Method: "GET", URL: "http://x"},
	}))
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (header + row)", len(lines))
	}
	if lines[0] != strings.Join(csvHeader, ",") {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], `"other:bad, odd ""thing"""`) {
		t.Fatalf("row not properly quoted: %q", lines[1])
	}
}

func TestCSVColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	_ = CSV(&buf, feed([]model.Result{
		{Timestamp: 42, Code: 200, Latency: 100, BytesIn: 1, BytesOut: 2, Method: "GET", URL: "http://x", AttackName: "a", Seq: 7},
	}))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := "42,200,100,1,2,GET,http://x,,a,7"
	if lines[1] != want {
		t.Fatalf("row = %q, want %q", lines[1], want)
	}
}
