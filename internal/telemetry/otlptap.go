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

// Package telemetry taps the live Result stream during an attack into
// OpenTelemetry OTLP/HTTP metrics and a Prometheus exposition endpoint,
// both no-ops unless their respective address flag is set. Grounded on
// the teacher pack's otel wiring (bc-dunia-mcpdrill's internal/otel
// package: MeterProvider + PeriodicReader + instrument registration),
// trimmed to the one histogram and two counters an attack run actually
// produces, and targeting OTLP/HTTP only since that's the exporter the
// module's go.mod carries.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/nabbar/blitz/internal/model"
)

// OTLPTap publishes per-Result latency and byte counts as OTLP metrics.
// A zero-value OTLPTap (returned when no endpoint is configured) is safe
// to call Observe/Shutdown on and does nothing.
type OTLPTap struct {
	provider *sdkmetric.MeterProvider
	latency  metric.Float64Histogram
	requests metric.Int64Counter
	bytes    metric.Int64Counter
}

// NewOTLPTap builds a tap exporting to endpoint over OTLP/HTTP. An empty
// endpoint returns a no-op tap so call sites never need to branch.
func NewOTLPTap(ctx context.Context, endpoint, attackName string) (*OTLPTap, error) {
	if endpoint == "" {
		return &OTLPTap{}, nil
	}

	exporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpoint(endpoint), otlpmetrichttp.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("creating otlp exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes("",
		semconv.ServiceName("blitz"),
		attribute.String("attack_name", attackName),
	))
	if err != nil {
		return nil, fmt.Errorf("building otel resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter("blitz")

	latency, err := meter.Float64Histogram("blitz.request.latency",
		metric.WithDescription("request latency"), metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("creating latency histogram: %w", err)
	}

	requests, err := meter.Int64Counter("blitz.requests",
		metric.WithDescription("requests dispatched, by status and error"))
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	bytes, err := meter.Int64Counter("blitz.bytes",
		metric.WithDescription("bytes transferred, by direction"))
	if err != nil {
		return nil, fmt.Errorf("creating byte counter: %w", err)
	}

	return &OTLPTap{provider: provider, latency: latency, requests: requests, bytes: bytes}, nil
}

// Observe records one Result. Safe to call on a no-op tap.
func (t *OTLPTap) Observe(ctx context.Context, r model.Result) {
	if t.provider == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.Int("status_code", int(r.Code)),
	}
	if r.Error != "" {
		attrs = append(attrs, attribute.String("error", r.Error))
	}

	t.latency.Record(ctx, float64(r.Latency)/1e6, metric.WithAttributes(attrs...))
	t.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
	t.bytes.Add(ctx, int64(r.BytesIn), metric.WithAttributes(attribute.String("direction", "in")))
	t.bytes.Add(ctx, int64(r.BytesOut), metric.WithAttributes(attribute.String("direction", "out")))
}

// Shutdown flushes and tears down the meter provider. Safe to call on a
// no-op tap.
func (t *OTLPTap) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}
