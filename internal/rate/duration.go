/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package rate parses the duration and rate grammar used by the attack,
// report and encode flags: plain Go durations ("500ms", "2h") for
// --duration/--timeout/--http_timeout, and "count/period" for --rate.
package rate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is a thin named time.Duration, adapted from the teacher's
// duration package, trimmed to the parse/format pair this CLI needs
// (the teacher's big/ day-rollover formatting isn't meaningful for
// sub-attack-length durations).
type Duration time.Duration

// ParseDuration parses a Go duration suffix string (ns, us, ms, s, m, h).
// An empty string and the literal "0" both parse to zero, which callers
// interpret per-field: 0 duration/timeout means "disabled/forever".
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return Duration(d), nil
}

func (d Duration) Time() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Rate is a (count, period) pair reduced to an events-per-second float.
// count == 0 means "infinity mode": no spacing between emissions.
type Rate struct {
	Count  uint64
	Period time.Duration
}

// ParseRate parses "count/period" (e.g. "50/1s", "0/1s" for infinity).
// A bare integer is accepted as a shorthand for "count/1s".
func ParseRate(s string) (Rate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rate{}, nil
	}

	parts := strings.SplitN(s, "/", 2)
	count, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return Rate{}, fmt.Errorf("invalid rate count %q: %w", parts[0], err)
	}

	period := time.Second
	if len(parts) == 2 {
		p := strings.TrimSpace(parts[1])
		if p != "" {
			period, err = time.ParseDuration(p)
			if err != nil {
				return Rate{}, fmt.Errorf("invalid rate period %q: %w", parts[1], err)
			}
		}
	}

	if period <= 0 {
		return Rate{}, fmt.Errorf("rate period must be positive, got %s", period)
	}

	return Rate{Count: count, Period: period}, nil
}

// PerSecond reduces the rate to events per second. Zero count means
// unbounded ("infinity mode"); callers must check Count == 0 explicitly
// rather than compare the float, since a very small period could also
// approach a large events-per-second value.
func (r Rate) PerSecond() float64 {
	if r.Period <= 0 {
		return 0
	}
	return float64(r.Count) / r.Period.Seconds()
}

// IsZero reports whether the rate is the zero value (no rate specified).
func (r Rate) IsZero() bool {
	return r.Count == 0 && r.Period == 0
}

// Interval returns 1/PerSecond as a time.Duration; only meaningful when
// Count > 0.
func (r Rate) Interval() time.Duration {
	if r.Count == 0 {
		return 0
	}
	return time.Duration(float64(r.Period) / float64(r.Count))
}
