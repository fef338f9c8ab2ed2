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

// Package dispatch grows a worker cohort around a Pacer's ticks, bounded
// by a worker ceiling, and turns every tick into a Result by pulling a
// Target from the source and sending it through a transport.Client. It is
// grounded on the vegeta reference Attacker's tick-consumption loop
// (a goroutine per worker ranging over the ticks channel) generalized to
// a bounded pool using golang.org/x/sync/semaphore instead of vegeta's
// unbounded "default: spawn another worker" select case, so max_workers
// is an actual ceiling rather than advisory.
package dispatch

import (
	"context"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nabbar/blitz/internal/errs"
	"github.com/nabbar/blitz/internal/logger"
	"github.com/nabbar/blitz/internal/model"
	"github.com/nabbar/blitz/internal/target"
	"github.com/nabbar/blitz/internal/transport"
)

// Sender is the subset of *transport.Client the dispatcher needs, so
// tests can substitute a fake without standing up a real listener.
type Sender interface {
	Send(ctx context.Context, tgt model.Target, global model.GlobalHeaders, timeout time.Duration) transport.Exchange
}

// Options configures one dispatch run. MaxWorkers == 0 means unbounded
// (math.MaxInt64 sentinel for the semaphore weight).
type Options struct {
	Name        string
	Workers     uint64
	MaxWorkers  uint64
	HTTPTimeout time.Duration
	Tolerance   float64
	Headers     model.GlobalHeaders

	// Logger receives lifecycle events (worker cohort growth, the final
	// tolerance result). A nil Logger discards them.
	Logger logger.Logger
}

// Run drains ticks from ticks, dispatching one request per tick against
// src and sender, and streams Results to the returned channel in
// completion order (not tick order — the contract never promised
// ordering, only at-most-once delivery per tick). The returned channel
// is closed once every in-flight request has completed after ticks
// itself closes.
//
// After the drain, Run checks the tolerance: if fewer than
// (1 - tolerance) * delivered ticks produced Results, it returns a
// ToleranceError alongside the (still fully drained) Result channel.
func Run(ctx context.Context, ticks <-chan uint64, src target.Source, sender Sender, opts Options) (<-chan model.Result, <-chan error) {
	results := make(chan model.Result)
	errc := make(chan error, 1)

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	ceiling := opts.MaxWorkers
	if ceiling == 0 {
		ceiling = math.MaxInt64
	}
	sem := semaphore.NewWeighted(int64(ceiling))

	go func() {
		defer close(results)

		var wg sync.WaitGroup
		var delivered, completed, inflight, grown uint64
		var sourceErr error

	dispatchLoop:
		for seq := range ticks {
			tgt, err := src.Next()
			if err == io.EOF {
				// A lazy source that runs out of records ends the attack
				// normally; the tick that found it empty yields no Result.
				break dispatchLoop
			}
			if err != nil {
				// A broken target source stops the attack outright (the
				// contract never tolerates silently skipping ticks past a
				// parse failure in lazy mode): emit the one error Result
				// and stop pulling further ticks.
				results <- model.Result{
					AttackName: opts.Name,
					Seq:        seq,
					Timestamp:  time.Now().UnixNano(),
					Error:      "other:" + err.Error(),
				}
				atomic.AddUint64(&delivered, 1)
				sourceErr = errs.Codef(errs.TargetError, "reading target source: %v", err)
				break dispatchLoop
			}

			// Acquire blocks once the ceiling is reached. While it waits,
			// this loop receives no further ticks, so the pacer's next send
			// blocks too; ticks are not queued here. The pacer schedules by
			// absolute due time, so once a slot frees it emits the overdue
			// ticks back to back.
			if err := sem.Acquire(ctx, 1); err != nil {
				atomic.AddUint64(&delivered, 1)
				atomic.AddUint64(&completed, 1)
				results <- model.Result{
					AttackName: opts.Name,
					Seq:        seq,
					Timestamp:  time.Now().UnixNano(),
					URL:        tgt.URL,
					Method:     tgt.Method,
					Error:      "cancelled",
				}
				continue
			}

			atomic.AddUint64(&delivered, 1)
			if n := atomic.AddUint64(&inflight, 1); n > atomic.LoadUint64(&grown) {
				atomic.StoreUint64(&grown, n)
				log.Info("worker cohort grown", nil, "attack_name", opts.Name, "workers", n)
			}

			wg.Add(1)
			go func(seq uint64, tgt model.Target) {
				defer wg.Done()
				defer atomic.AddUint64(&inflight, ^uint64(0))
				defer sem.Release(1)

				ex := sender.Send(ctx, tgt, opts.Headers, opts.HTTPTimeout)
				atomic.AddUint64(&completed, 1)

				results <- model.Result{
					AttackName: opts.Name,
					Seq:        seq,
					Timestamp:  time.Now().UnixNano(),
					Latency:    uint64(ex.Latency.Nanoseconds()),
					BytesIn:    ex.BytesIn,
					BytesOut:   ex.BytesOut,
					Code:       ex.Code,
					URL:        tgt.URL,
					Method:     tgt.Method,
					Error:      ex.Err,
				}
			}(seq, tgt)
		}

		wg.Wait()

		if sourceErr != nil {
			log.Error("attack stopped by target source error", nil, "attack_name", opts.Name, "error", sourceErr.Error())
			errc <- sourceErr
			return
		}

		if n := atomic.LoadUint64(&delivered); n > 0 {
			required := uint64(math.Ceil((1 - opts.Tolerance) * float64(n)))
			c := atomic.LoadUint64(&completed)
			if c < required {
				log.Warning("tolerance check failed", nil, "attack_name", opts.Name,
					"completed", c, "delivered", n, "required", required)
				errc <- errs.Codef(errs.ToleranceError,
					"only %d/%d requests completed, tolerance requires %d",
					c, n, required)
				return
			}
			log.Info("tolerance check passed", nil, "attack_name", opts.Name,
				"completed", c, "delivered", n, "required", required)
		}
		errc <- nil
	}()

	return results, errc
}
