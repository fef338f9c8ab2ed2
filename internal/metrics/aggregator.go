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

// Package metrics folds a Result stream into summary Metrics: counts,
// byte totals, a Welford-online mean/stddev of latency, and quantiles
// read off a power-of-two bucketed histogram. No library in the
// retrieved pack offers an online quantile estimator with a bounded
// relative-error guarantee (the one histogram library in the pack,
// valyala's, trades exactness for decayed sampling, which cannot
// reproduce the same quantile twice on an already-finished stream), so
// this component is hand-rolled against the textbook Welford recurrence
// and a standard power-of-two histogram — both well-specified enough
// that a library would only add an API to learn, not precision.
package metrics

import (
	"math"
	"math/bits"
	"sync"
	"time"

	"github.com/nabbar/blitz/internal/model"
)

// Aggregator is a strict-online reducer: Add must be called once per
// Result, in any order, and Snapshot may be called concurrently with Add
// to support incremental reporting over a running attack.
type Aggregator struct {
	mu sync.Mutex

	count   uint64
	success uint64
	failure uint64

	bytesIn  uint64
	bytesOut uint64

	mean float64 // running mean latency, nanoseconds
	m2   float64 // running sum of squared deviations (Welford)

	min uint64
	max uint64

	earliest int64
	latest   int64

	statusCounts map[uint16]uint64
	errorCounts  map[string]uint64

	hist [hbuckets]uint64
}

// hbuckets covers latencies from 1ns (bucket 1) up to just past 1 hour
// (3.6e12 ns needs 42 bits), with one extra bucket (0) for exact-zero
// latencies and headroom above that.
const hbuckets = 64

// New returns an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{
		statusCounts: make(map[uint16]uint64),
		errorCounts:  make(map[string]uint64),
	}
}

// Add folds one Result into the running statistics.
func (a *Aggregator) Add(r model.Result) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.count++
	if r.Success() {
		a.success++
	} else {
		a.failure++
	}

	a.bytesIn += r.BytesIn
	a.bytesOut += r.BytesOut

	lat := float64(r.Latency)
	delta := lat - a.mean
	a.mean += delta / float64(a.count)
	delta2 := lat - a.mean
	a.m2 += delta * delta2

	if a.count == 1 || r.Latency < a.min {
		a.min = r.Latency
	}
	if r.Latency > a.max {
		a.max = r.Latency
	}

	if a.earliest == 0 || r.Timestamp < a.earliest {
		a.earliest = r.Timestamp
	}
	if r.Timestamp > a.latest {
		a.latest = r.Timestamp
	}

	a.statusCounts[r.Code]++
	if r.Error != "" {
		a.errorCounts[r.Error]++
	}

	a.hist[bucketIndex(r.Latency)]++
}

// bucketIndex maps a latency in nanoseconds to its power-of-two bucket:
// bucket 0 holds exactly zero, bucket i (i>=1) holds [2^(i-1), 2^i).
func bucketIndex(ns uint64) int {
	if ns == 0 {
		return 0
	}
	i := bits.Len64(ns)
	if i >= hbuckets {
		return hbuckets - 1
	}
	return i
}

func bucketEdges(i int) (lo, hi float64) {
	if i == 0 {
		return 0, 1
	}
	return float64(uint64(1) << uint(i-1)), float64(uint64(1) << uint(i))
}

// Snapshot computes a Metrics value from the current state. Quantiles
// are linearly interpolated within the power-of-two bucket containing the
// requested rank, so the error of a reported quantile is bounded only by
// that bucket's width (the upper edge is twice the lower one). The
// estimate is exact to 1% only when latencies are spread evenly across
// the bucket; no tighter relative-error bound is guaranteed.
func (a *Aggregator) Snapshot() Metrics {
	a.mu.Lock()
	defer a.mu.Unlock()

	m := Metrics{
		TotalRequests:    a.count,
		SuccessCount:     a.success,
		FailureCount:     a.failure,
		BytesInTotal:     a.bytesIn,
		BytesOutTotal:    a.bytesOut,
		StatusCodeCounts: make(map[uint16]uint64, len(a.statusCounts)),
		ErrorCounts:      make(map[string]uint64, len(a.errorCounts)),
	}

	for k, v := range a.statusCounts {
		m.StatusCodeCounts[k] = v
	}
	for k, v := range a.errorCounts {
		m.ErrorCounts[k] = v
	}

	if a.count == 0 {
		return m
	}

	m.SuccessRate = float64(a.success) / float64(a.count)
	m.Earliest = time.Unix(0, a.earliest)
	m.Latest = time.Unix(0, a.latest)
	m.WallDuration = time.Duration(a.latest - a.earliest)
	if m.WallDuration > 0 {
		m.DeliveredRate = float64(a.count) / m.WallDuration.Seconds()
	}

	variance := 0.0
	if a.count > 1 {
		variance = a.m2 / float64(a.count-1)
	}

	m.Latency = LatencyStats{
		Mean:   time.Duration(a.mean),
		StdDev: time.Duration(math.Sqrt(variance)),
		Min:    time.Duration(a.min),
		Max:    time.Duration(a.max),
		P50:    a.quantileLocked(0.50),
		P90:    a.quantileLocked(0.90),
		P95:    a.quantileLocked(0.95),
		P99:    a.quantileLocked(0.99),
	}

	return m
}

// Quantile returns the q-th quantile (0 <= q <= 1) of the latency
// distribution observed so far.
func (a *Aggregator) Quantile(q float64) time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.quantileLocked(q)
}

func (a *Aggregator) quantileLocked(q float64) time.Duration {
	if a.count == 0 {
		return 0
	}
	if q <= 0 {
		return time.Duration(a.min)
	}
	if q >= 1 {
		return time.Duration(a.max)
	}

	rank := q * float64(a.count-1)
	var cum uint64
	for i, c := range a.hist {
		if c == 0 {
			continue
		}
		if float64(cum)+float64(c) > rank {
			lo, hi := bucketEdges(i)
			frac := (rank - float64(cum)) / float64(c)
			v := lo + frac*(hi-lo)
			// A partly populated bucket can interpolate past the observed
			// extremes; clamp so quantiles stay within [min, max].
			if v < float64(a.min) {
				v = float64(a.min)
			}
			if v > float64(a.max) {
				v = float64(a.max)
			}
			return time.Duration(v)
		}
		cum += c
	}
	return time.Duration(a.max)
}
