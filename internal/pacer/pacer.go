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

// Package pacer produces fire-tick signals on an absolute constant-rate
// schedule. Ticks are sent on an unbuffered channel, so a consumer that
// falls behind delays the sends; the overdue ticks are then emitted back
// to back until the schedule is met again. It is grounded on the
// vegeta reference attacker's emission loop (began.Add(seq * interval),
// time.Sleep to the next due instant, a stopch closed at most once by
// Stop) generalized into its own component so the dispatcher can grow a
// worker cohort around it instead of the pacer doing that growth itself.
package pacer

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/nabbar/blitz/internal/rate"
)

// Pacer emits sequence numbers on a channel at the configured Rate,
// capped at N = round(rate × duration) total ticks when both rate and
// duration are positive.
type Pacer struct {
	rate     rate.Rate
	duration time.Duration

	stopOnce sync.Once
	stopch   chan struct{}
}

// New builds a Pacer for the given rate and duration. A zero rate count
// means "infinity mode": ticks are emitted as fast as the channel can be
// drained, with no inter-tick spacing and no time-based stop — per the
// attack config's documented behavior for rate=0, the pacer only stops on
// Stop() or context cancellation in that mode.
func New(r rate.Rate, duration time.Duration) *Pacer {
	return &Pacer{rate: r, duration: duration, stopch: make(chan struct{})}
}

// Run starts emitting ticks and returns the channel they arrive on. The
// channel is closed when the tick budget is exhausted (bounded mode),
// Stop is called, or ctx is done. Run must be called at most once.
func (p *Pacer) Run(ctx context.Context) <-chan uint64 {
	ticks := make(chan uint64)

	go func() {
		defer close(ticks)

		if p.rate.Count == 0 {
			p.runInfinite(ctx, ticks)
			return
		}
		p.runBounded(ctx, ticks)
	}()

	return ticks
}

func (p *Pacer) runInfinite(ctx context.Context, ticks chan<- uint64) {
	var seq uint64
	for {
		select {
		case ticks <- seq:
			seq++
		case <-p.stopch:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pacer) runBounded(ctx context.Context, ticks chan<- uint64) {
	interval := p.rate.Interval()

	n := uint64(math.MaxUint64)
	if p.duration > 0 {
		n = uint64(math.Round(p.rate.PerSecond() * p.duration.Seconds()))
	}

	began := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for seq := uint64(0); seq < n; {
		due := began.Add(time.Duration(seq) * interval)
		if wait := time.Until(due); wait > 0 {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(wait)
			select {
			case <-timer.C:
			case <-p.stopch:
				return
			case <-ctx.Done():
				return
			}
		}

		select {
		case ticks <- seq:
			seq++
		case <-p.stopch:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop halts emission. Safe to call multiple times and from any
// goroutine; only the first call has effect.
func (p *Pacer) Stop() {
	p.stopOnce.Do(func() { close(p.stopch) })
}
