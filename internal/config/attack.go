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

// Package config assembles AttackConfig: the immutable, validated set of
// options shared read-only by the pacer, dispatcher and transport for one
// attack run. It follows the teacher's Options/Validate/DefaultConfig
// idiom (see httpcli/options.go) built on go-playground/validator/v10.
package config

import (
	"time"

	libval "github.com/go-playground/validator/v10"

	"github.com/nabbar/blitz/internal/errs"
	"github.com/nabbar/blitz/internal/model"
	"github.com/nabbar/blitz/internal/rate"
	"github.com/nabbar/blitz/internal/transport"
)

// AttackConfig is the immutable configuration for one attack run,
// covering every recognized option from the data model: rate, duration,
// worker bounds, timeouts, tolerance and the full transport surface.
type AttackConfig struct {
	Name string `validate:"required"`

	Rate     rate.Rate
	Duration time.Duration `validate:"gte=0"`

	Workers    uint64 `validate:"gte=1"`
	MaxWorkers uint64

	Timeout     time.Duration `validate:"gte=0"`
	HTTPTimeout time.Duration `validate:"gte=0"`

	Tolerance float64 `validate:"gte=0,lte=1"`

	LazyTargets bool

	Headers model.GlobalHeaders

	Transport transport.Options

	// ReportInterval, when non-zero, makes the attack command write a
	// text metrics snapshot to stderr at this cadence. The telemetry taps
	// and the progress bar do not depend on it.
	ReportInterval time.Duration

	PrometheusAddr    string
	OpenTelemetryAddr string
}

// DefaultAttackConfig returns the baseline AttackConfig: rate unbounded
// (fire as fast as possible), no duration cap, a single initial worker,
// no worker ceiling, a 30s per-request timeout and the transport's own
// defaults.
func DefaultAttackConfig() AttackConfig {
	return AttackConfig{
		Name:        "blitz",
		Workers:     1,
		Timeout:     30 * time.Second,
		HTTPTimeout: 30 * time.Second,
		Tolerance:   0.1,
		Transport:   transport.DefaultOptions(),
	}
}

// Validate checks the struct-tag constraints of the config and of its
// transport Options, and that Workers does not exceed a non-zero
// MaxWorkers. Redirects, rate and duration are not checked beyond that.
func (c AttackConfig) Validate() error {
	v := libval.New()
	if err := v.Struct(c); err != nil {
		if _, ok := err.(*libval.InvalidValidationError); ok {
			return errs.Codef(errs.ConfigError, "invalid attack config: %v", err)
		}
		var msgs []string
		for _, fe := range err.(libval.ValidationErrors) {
			msgs = append(msgs, fe.Field()+" failed "+fe.Tag())
		}
		return errs.Codef(errs.ConfigError, "invalid attack config: %v", msgs)
	}

	if err := c.Transport.Validate(); err != nil {
		return err
	}

	if c.MaxWorkers > 0 && c.Workers > c.MaxWorkers {
		return errs.Codef(errs.ConfigError, "workers (%d) exceeds max_workers (%d)", c.Workers, c.MaxWorkers)
	}

	return nil
}
