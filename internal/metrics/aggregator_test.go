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

package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/nabbar/blitz/internal/model"
)

func addN(a *Aggregator, n int, code uint16, latency time.Duration, errStr string, bytesIn, bytesOut uint64, startTS int64) {
	for i := 0; i < n; i++ {
		a.Add(model.Result{
			Timestamp: startTS + int64(i)*int64(time.Millisecond),
			Latency:   uint64(latency),
			Code:      code,
			Error:     errStr,
			BytesIn:   bytesIn,
			BytesOut:  bytesOut,
		})
	}
}

func TestSnapshotCountsAndRates(t *testing.T) {
	a := New()
	addN(a, 80, 200, 10*time.Millisecond, "", 100, 20, 1_000_000_000)
	addN(a, 20, 0, 5*time.Millisecond, "connect", 0, 20, 1_000_000_000)

	m := a.Snapshot()

	if m.TotalRequests != 100 {
		t.Fatalf("TotalRequests = %d, want 100", m.TotalRequests)
	}
	if m.SuccessCount != 80 || m.FailureCount != 20 {
		t.Fatalf("success/failure = %d/%d, want 80/20", m.SuccessCount, m.FailureCount)
	}
	if math.Abs(m.SuccessRate-0.8) > 1e-9 {
		t.Fatalf("SuccessRate = %v, want 0.8", m.SuccessRate)
	}
	if m.BytesInTotal != 100*80 {
		t.Fatalf("BytesInTotal = %d, want %d", m.BytesInTotal, 100*80)
	}
	if m.StatusCodeCounts[200] != 80 {
		t.Fatalf("StatusCodeCounts[200] = %d, want 80", m.StatusCodeCounts[200])
	}
	if m.ErrorCounts["connect"] != 20 {
		t.Fatalf("ErrorCounts[connect] = %d, want 20", m.ErrorCounts["connect"])
	}
}

func TestQuantilesOfUniformLatencies(t *testing.T) {
	a := New()
	// 1000 samples uniformly spread from 0.1ms to 100ms.
	for i := 1; i <= 1000; i++ {
		lat := time.Duration(i) * 100 * time.Microsecond
		a.Add(model.Result{Latency: uint64(lat), Code: 200, Timestamp: int64(i)})
	}

	m := a.Snapshot()

	// p50 of a uniform [0.1ms, 100ms] distribution should land near 50ms,
	// within the bucket-doubling tolerance of the power-of-two histogram.
	if rel := relErr(m.Latency.P50, 50*time.Millisecond); rel > 0.15 {
		t.Fatalf("P50 = %v, relative error %v too large vs 50ms", m.Latency.P50, rel)
	}
	if m.Latency.Max < 99*time.Millisecond {
		t.Fatalf("Max = %v, want close to 100ms", m.Latency.Max)
	}
	if m.Latency.Min > 200*time.Microsecond {
		t.Fatalf("Min = %v, want close to 0.1ms", m.Latency.Min)
	}
}

func relErr(got, want time.Duration) float64 {
	if want == 0 {
		return 0
	}
	return math.Abs(float64(got-want)) / float64(want)
}

func TestWallDurationAndDeliveredRate(t *testing.T) {
	a := New()
	start := int64(1_000_000_000)
	for i := 0; i < 100; i++ {
		a.Add(model.Result{Timestamp: start + int64(i)*int64(10*time.Millisecond), Code: 200})
	}

	m := a.Snapshot()
	wantWall := 99 * 10 * time.Millisecond
	if m.WallDuration != wantWall {
		t.Fatalf("WallDuration = %v, want %v", m.WallDuration, wantWall)
	}
	if m.DeliveredRate <= 0 {
		t.Fatalf("DeliveredRate = %v, want > 0", m.DeliveredRate)
	}
}

func TestEmptyAggregatorSnapshot(t *testing.T) {
	a := New()
	m := a.Snapshot()
	if m.TotalRequests != 0 {
		t.Fatalf("TotalRequests = %d, want 0", m.TotalRequests)
	}
	if m.Latency.P50 != 0 {
		t.Fatalf("P50 = %v, want 0 on empty aggregator", m.Latency.P50)
	}
}

func TestBucketIndexBoundaries(t *testing.T) {
	cases := []struct {
		ns   uint64
		want int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2},
		{4, 3},
		{1023, 10},
		{1024, 11},
	}
	for _, c := range cases {
		if got := bucketIndex(c.ns); got != c.want {
			t.Fatalf("bucketIndex(%d) = %d, want %d", c.ns, got, c.want)
		}
	}
}
