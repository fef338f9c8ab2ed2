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

package config

import (
	"time"

	"github.com/nabbar/blitz/internal/model"
	"github.com/nabbar/blitz/internal/rate"
	"github.com/nabbar/blitz/internal/transport"
)

// Builder assembles an AttackConfig field by field, starting from
// DefaultAttackConfig, mirroring the teacher's fluent With* option
// builders but returning the builder itself so cobra flag binding can
// chain calls directly off parsed flag values.
type Builder struct {
	cfg AttackConfig
}

// NewBuilder starts a Builder from the default configuration.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultAttackConfig()}
}

func (b *Builder) Name(name string) *Builder {
	b.cfg.Name = name
	return b
}

func (b *Builder) Rate(r rate.Rate) *Builder {
	b.cfg.Rate = r
	return b
}

func (b *Builder) Duration(d time.Duration) *Builder {
	b.cfg.Duration = d
	return b
}

func (b *Builder) Workers(n uint64) *Builder {
	b.cfg.Workers = n
	return b
}

func (b *Builder) MaxWorkers(n uint64) *Builder {
	b.cfg.MaxWorkers = n
	return b
}

func (b *Builder) Timeout(d time.Duration) *Builder {
	b.cfg.Timeout = d
	return b
}

func (b *Builder) HTTPTimeout(d time.Duration) *Builder {
	b.cfg.HTTPTimeout = d
	return b
}

func (b *Builder) Tolerance(f float64) *Builder {
	b.cfg.Tolerance = f
	return b
}

func (b *Builder) LazyTargets(lazy bool) *Builder {
	b.cfg.LazyTargets = lazy
	return b
}

func (b *Builder) Headers(h model.GlobalHeaders) *Builder {
	b.cfg.Headers = h
	return b
}

func (b *Builder) Transport(o transport.Options) *Builder {
	b.cfg.Transport = o
	return b
}

func (b *Builder) ReportInterval(d time.Duration) *Builder {
	b.cfg.ReportInterval = d
	return b
}

func (b *Builder) PrometheusAddr(addr string) *Builder {
	b.cfg.PrometheusAddr = addr
	return b
}

func (b *Builder) OpenTelemetryAddr(addr string) *Builder {
	b.cfg.OpenTelemetryAddr = addr
	return b
}

// Build validates and returns the assembled AttackConfig.
func (b *Builder) Build() (AttackConfig, error) {
	if err := b.cfg.Validate(); err != nil {
		return AttackConfig{}, err
	}
	return b.cfg, nil
}
