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

package telemetry

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nabbar/blitz/internal/model"
)

// PromTap exposes a running attack's counters on a "/metrics" endpoint
// for Prometheus to scrape, alongside the OTLP push path — the two taps
// are independent so a run can feed either, both, or neither backend.
type PromTap struct {
	srv *http.Server

	requests *prometheus.CounterVec
	latency  prometheus.Histogram
	bytesIn  prometheus.Counter
	bytesOut prometheus.Counter
}

// NewPromTap starts an HTTP server on addr serving /metrics. An empty
// addr returns a no-op tap.
func NewPromTap(addr string) (*PromTap, error) {
	if addr == "" {
		return &PromTap{}, nil
	}

	reg := prometheus.NewRegistry()
	t := &PromTap{
		requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "blitz_requests_total",
			Help: "Requests dispatched, labeled by status code and error.",
		}, []string{"status_code", "error"}),
		latency: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "blitz_request_latency_seconds",
			Help:    "Request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		bytesIn: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "blitz_bytes_in_total",
			Help: "Total response bytes received.",
		}),
		bytesOut: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "blitz_bytes_out_total",
			Help: "Total request bytes sent.",
		}),
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	t.srv = &http.Server{Addr: addr, Handler: mux}

	go func() {
		_ = t.srv.ListenAndServe()
	}()

	return t, nil
}

// Observe records one Result. Safe to call on a no-op tap.
func (t *PromTap) Observe(r model.Result) {
	if t.requests == nil {
		return
	}
	t.requests.WithLabelValues(strconv.Itoa(int(r.Code)), r.Error).Inc()
	t.latency.Observe(float64(r.Latency) / 1e9)
	t.bytesIn.Add(float64(r.BytesIn))
	t.bytesOut.Add(float64(r.BytesOut))
}

// Shutdown stops the metrics HTTP server. Safe to call on a no-op tap.
func (t *PromTap) Shutdown(ctx context.Context) error {
	if t.srv == nil {
		return nil
	}
	err := t.srv.Shutdown(ctx)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
