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

// Package report renders a metrics.Metrics snapshot (or, for the hist
// mode, the raw Result stream) in the four formats the report
// subcommand offers: text, json, hist[buckets] and hdrplot.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/nabbar/blitz/internal/metrics"
	"github.com/nabbar/blitz/internal/model"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Text writes the human-readable summary format.
func Text(w io.Writer, m metrics.Metrics) error {
	_, err := fmt.Fprintf(w, `Requests      [total, rate]            %d, %.2f/s
Duration      [wall]                   %s
Success       [ratio]                  %.2f%%
Latencies     [mean, p50, p90, p95, p99, max]  %s, %s, %s, %s, %s, %s
Bytes In      [total]                  %d
Bytes Out     [total]                  %d
Status Codes  [code:count]             %v
Error Set:
%s`,
		m.TotalRequests, m.DeliveredRate,
		m.WallDuration,
		m.SuccessRate*100,
		m.Latency.Mean, m.Latency.P50, m.Latency.P90, m.Latency.P95, m.Latency.P99, m.Latency.Max,
		m.BytesInTotal,
		m.BytesOutTotal,
		m.StatusCodeCounts,
		formatErrorSet(m.ErrorCounts),
	)
	return err
}

func formatErrorSet(errs map[string]uint64) string {
	if len(errs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out string
	for _, k := range keys {
		out += fmt.Sprintf("%-30s %d\n", k, errs[k])
	}
	return out
}

// JSON writes the Metrics object as JSON.
func JSON(w io.Writer, m metrics.Metrics) error {
	b, err := jsonAPI.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// HDRPlot writes quantile/latency pairs in a format suitable for
// HdrHistogram-compatible plotting tools: one "quantile value" line per
// fixed percentile, walking the tail closely near 1.0 the way HdrHistogram's
// own plot files do.
func HDRPlot(w io.Writer, a *metrics.Aggregator) error {
	percentiles := []float64{
		0, 0.1, 0.25, 0.5, 0.75, 0.9, 0.95, 0.99, 0.999, 0.9999, 1.0,
	}
	for _, p := range percentiles {
		v := a.Quantile(p)
		if _, err := fmt.Fprintf(w, "%.4f %d\n", p, v.Nanoseconds()); err != nil {
			return err
		}
	}
	return nil
}

// HistBucket is one row of the hist[buckets] report.
type HistBucket struct {
	LE       time.Duration
	Count    uint64
	Fraction float64
}

// Hist counts latencies from a Result stream into the user-supplied
// bucket edges (each bucket is "latency <= edge", the last edge implicitly
// extended to +Inf), the same semantics as Prometheus's "le" histogram
// buckets, mirroring the client_golang type this CLI exposes on the
// attack side.
func Hist(results <-chan model.Result, edges []time.Duration) []HistBucket {
	sorted := append([]time.Duration(nil), edges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	buckets := make([]HistBucket, len(sorted)+1)
	for i, e := range sorted {
		buckets[i].LE = e
	}

	var total uint64
	for r := range results {
		total++
		lat := time.Duration(r.Latency)
		placed := false
		for i, e := range sorted {
			if lat <= e {
				buckets[i].Count++
				placed = true
				break
			}
		}
		if !placed {
			buckets[len(buckets)-1].Count++
		}
	}

	if total > 0 {
		for i := range buckets {
			buckets[i].Fraction = float64(buckets[i].Count) / float64(total)
		}
	}
	return buckets
}

// WriteHist renders Hist's buckets as plain text.
func WriteHist(w io.Writer, buckets []HistBucket) error {
	for i, b := range buckets {
		label := fmt.Sprintf("<= %s", b.LE)
		if i == len(buckets)-1 {
			label = "+Inf"
		}
		if _, err := fmt.Fprintf(w, "%-16s %8d %6.2f%%\n", label, b.Count, b.Fraction*100); err != nil {
			return err
		}
	}
	return nil
}
