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

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nabbar/blitz/internal/errs"
	"github.com/nabbar/blitz/internal/model"
	"github.com/nabbar/blitz/internal/transport"
)

type fixedSource struct {
	n   int64
	err error
}

func (f *fixedSource) Next() (model.Target, error) {
	i := atomic.AddInt64(&f.n, 1)
	if f.err != nil && i > 5 {
		return model.Target{}, f.err
	}
	return model.Target{Method: "GET", URL: fmt.Sprintf("http://example.test/%d", i)}, nil
}

type fakeSender struct {
	delay time.Duration
	code  uint16
	err   string
}

func (f fakeSender) Send(ctx context.Context, tgt model.Target, global model.GlobalHeaders, timeout time.Duration) transport.Exchange {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return transport.Exchange{Code: f.code, Latency: f.delay, Err: f.err}
}

func drain(results <-chan model.Result) []model.Result {
	var out []model.Result
	for r := range results {
		out = append(out, r)
	}
	return out
}

func tickChan(n int) <-chan uint64 {
	c := make(chan uint64)
	go func() {
		defer close(c)
		for i := 0; i < n; i++ {
			c <- uint64(i)
		}
	}()
	return c
}

func TestDispatchHappyPath(t *testing.T) {
	src := &fixedSource{}
	sender := fakeSender{code: 200}

	results, errc := Run(context.Background(), tickChan(20), src, sender, Options{
		MaxWorkers: 10,
		Tolerance:  0.1,
	})

	got := drain(results)
	if len(got) != 20 {
		t.Fatalf("got %d results, want 20", len(got))
	}
	if err := <-errc; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[uint64]bool, len(got))
	for _, r := range got {
		if r.Seq >= 20 {
			t.Fatalf("result seq %d out of range [0, 20)", r.Seq)
		}
		if seen[r.Seq] {
			t.Fatalf("duplicate seq %d", r.Seq)
		}
		seen[r.Seq] = true
	}
	if len(seen) != 20 {
		t.Fatalf("seq numbers not contiguous: saw %d distinct values, want 20", len(seen))
	}
}

func TestDispatchToleranceCountsFailedExchanges(t *testing.T) {
	src := &fixedSource{}
	sender := fakeSender{code: 0, err: "connect"}

	results, errc := Run(context.Background(), tickChan(10), src, sender, Options{
		MaxWorkers: 10,
		Tolerance:  0, // every tick must produce a Result
	})

	got := drain(results)
	if len(got) != 10 {
		t.Fatalf("got %d results, want 10", len(got))
	}
	// A failed exchange still produces a Result, so ten connect errors
	// satisfy even a zero tolerance.
	if err := <-errc; err != nil {
		t.Fatalf("unexpected tolerance error: %v", err)
	}
}

func TestDispatchToleranceToleratesPartialFailure(t *testing.T) {
	src := &fixedSource{}

	var n int64
	var sender Sender = senderFunc(func(ctx context.Context, tgt model.Target, global model.GlobalHeaders, timeout time.Duration) transport.Exchange {
		i := atomic.AddInt64(&n, 1)
		if i <= 2 {
			return transport.Exchange{Err: "connect"}
		}
		return transport.Exchange{Code: 200}
	})

	results, errc := Run(context.Background(), tickChan(10), src, sender, Options{
		MaxWorkers: 10,
		Tolerance:  0.5,
	})

	drain(results)
	if err := <-errc; err != nil {
		t.Fatalf("unexpected error within tolerance: %v", err)
	}
}

type senderFunc func(ctx context.Context, tgt model.Target, global model.GlobalHeaders, timeout time.Duration) transport.Exchange

func (f senderFunc) Send(ctx context.Context, tgt model.Target, global model.GlobalHeaders, timeout time.Duration) transport.Exchange {
	return f(ctx, tgt, global, timeout)
}

func TestDispatchStopsOnSourceError(t *testing.T) {
	src := &fixedSource{err: fmt.Errorf("boom")}
	sender := fakeSender{code: 200}

	results, errc := Run(context.Background(), tickChan(20), src, sender, Options{
		MaxWorkers: 10,
		Tolerance:  0.5,
	})

	got := drain(results)
	// at least the 5 good targets plus the one error result should appear
	if len(got) < 6 {
		t.Fatalf("got %d results, want at least 6", len(got))
	}

	var sawSourceError bool
	for _, r := range got {
		if r.Error == "other:boom" {
			sawSourceError = true
		}
	}
	if !sawSourceError {
		t.Fatalf("expected a Result carrying the source error")
	}

	err := <-errc
	if err == nil {
		t.Fatalf("expected an error from Run after source failure")
	}
	var e errs.Error
	if !errors.As(err, &e) || !e.IsCode(errs.TargetError) {
		t.Fatalf("expected TargetError, got %v", err)
	}
}

func TestDispatchRespectsWorkerCeiling(t *testing.T) {
	src := &fixedSource{}

	var inFlight int64
	var maxInFlight int64
	sender := senderFunc(func(ctx context.Context, tgt model.Target, global model.GlobalHeaders, timeout time.Duration) transport.Exchange {
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			m := atomic.LoadInt64(&maxInFlight)
			if cur <= m || atomic.CompareAndSwapInt64(&maxInFlight, m, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return transport.Exchange{Code: 200}
	})

	results, errc := Run(context.Background(), tickChan(50), src, sender, Options{
		MaxWorkers: 5,
		Tolerance:  0.1,
	})

	drain(results)
	if err := <-errc; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if atomic.LoadInt64(&maxInFlight) > 5 {
		t.Fatalf("max in-flight = %d, want <= 5", maxInFlight)
	}
}
