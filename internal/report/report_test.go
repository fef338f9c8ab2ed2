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

package report

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nabbar/blitz/internal/metrics"
	"github.com/nabbar/blitz/internal/model"
)

func TestTextIncludesKeyFields(t *testing.T) {
	var buf bytes.Buffer
	m := metrics.Metrics{
		TotalRequests:    100,
		SuccessRate:      0.95,
		StatusCodeCounts: map[uint16]uint64{200: 95, 500: 5},
		ErrorCounts:      map[string]uint64{"http": 5},
	}
	if err := Text(&buf, m); err != nil {
		t.Fatalf("Text: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Requests", "Latencies", "Bytes In", "http"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestJSONRoundTripsTotalRequests(t *testing.T) {
	var buf bytes.Buffer
	m := metrics.Metrics{TotalRequests: 42}
	if err := JSON(&buf, m); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"TotalRequests": 42`) {
		t.Fatalf("output missing TotalRequests: %s", buf.String())
	}
}

func TestHistBucketsAndFractions(t *testing.T) {
	results := make(chan model.Result, 4)
	results <- model.Result{Latency: uint64(5 * time.Millisecond)}
	results <- model.Result{Latency: uint64(15 * time.Millisecond)}
	results <- model.Result{Latency: uint64(40 * time.Millisecond)}
	results <- model.Result{Latency: uint64(200 * time.Millisecond)}
	close(results)

	buckets := Hist(results, []time.Duration{10 * time.Millisecond, 25 * time.Millisecond, 50 * time.Millisecond})

	if len(buckets) != 4 {
		t.Fatalf("got %d buckets, want 4", len(buckets))
	}
	if buckets[0].Count != 1 || buckets[1].Count != 1 || buckets[2].Count != 1 || buckets[3].Count != 1 {
		t.Fatalf("unexpected bucket counts: %+v", buckets)
	}
	if buckets[0].Fraction != 0.25 {
		t.Fatalf("Fraction = %v, want 0.25", buckets[0].Fraction)
	}
}

func TestHDRPlotWritesMonotonicQuantiles(t *testing.T) {
	a := metrics.New()
	for i := 1; i <= 100; i++ {
		a.Add(model.Result{Latency: uint64(i) * uint64(time.Millisecond)})
	}
	var buf bytes.Buffer
	if err := HDRPlot(&buf, a); err != nil {
		t.Fatalf("HDRPlot: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 11 {
		t.Fatalf("got %d lines, want 11", len(lines))
	}
	prev := int64(-1)
	for _, l := range lines {
		fields := strings.Fields(l)
		if len(fields) != 2 {
			t.Fatalf("malformed line %q", l)
		}
		v, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			t.Fatalf("parsing %q: %v", l, err)
		}
		if v < prev {
			t.Fatalf("quantile values not monotonic at %q (previous %d)", l, prev)
		}
		prev = v
	}
}
