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

// Package progress drives a TTY progress bar over the lifetime of an
// attack, adapted from the teacher's file/progress package's shape — an
// io-layer observer wrapping a known-size operation — but retargeted
// from byte counts to request counts and backed by
// github.com/vbauerster/mpb/v8, the one progress-bar library the
// retrieved pack's go.mod actually carries.
package progress

import (
	"io"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Bar drives a single progress line tracking completed requests against
// an expected total. A Bar with total == 0 (unbounded attacks) renders a
// spinner instead of a percentage.
type Bar struct {
	progress *mpb.Progress
	bar      *mpb.Bar
}

// New starts a Bar rendering to w. total == 0 means the request count is
// unknown ahead of time (rate=0 or duration=0 runs).
func New(w io.Writer, name string, total int64) *Bar {
	p := mpb.New(mpb.WithOutput(w), mpb.WithWidth(40), mpb.WithRefreshRate(150*time.Millisecond))

	var bar *mpb.Bar
	if total > 0 {
		bar = p.AddBar(total,
			mpb.PrependDecorators(decor.Name(name+" "), decor.CountersNoUnit("%d / %d")),
			mpb.AppendDecorators(decor.Percentage(), decor.Name(" "), decor.EwmaETA(decor.ET_STYLE_GO, 60)),
		)
	} else {
		bar = p.AddSpinner(1,
			mpb.PrependDecorators(decor.Name(name+" "), decor.Elapsed(decor.ET_STYLE_GO)),
		)
	}

	return &Bar{progress: p, bar: bar}
}

// Increment advances the bar by one completed request.
func (b *Bar) Increment() {
	if b == nil || b.bar == nil {
		return
	}
	b.bar.Increment()
}

// Done marks the bar complete and waits for the render goroutine to
// finish drawing the final frame.
func (b *Bar) Done() {
	if b == nil || b.progress == nil {
		return
	}
	if !b.bar.Completed() {
		b.bar.SetCurrent(b.bar.Current())
		b.bar.Abort(false)
	}
	b.progress.Wait()
}
