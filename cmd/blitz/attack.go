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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nabbar/blitz/internal/config"
	"github.com/nabbar/blitz/internal/dispatch"
	"github.com/nabbar/blitz/internal/errs"
	"github.com/nabbar/blitz/internal/metrics"
	"github.com/nabbar/blitz/internal/pacer"
	"github.com/nabbar/blitz/internal/progress"
	"github.com/nabbar/blitz/internal/rate"
	"github.com/nabbar/blitz/internal/report"
	"github.com/nabbar/blitz/internal/resultio"
	"github.com/nabbar/blitz/internal/target"
	"github.com/nabbar/blitz/internal/telemetry"
	"github.com/nabbar/blitz/internal/transport"
)

func newAttackCmd() *cobra.Command {
	var (
		rateStr     string
		durationStr string
		timeoutStr  string
		httpTOStr   string
		workers     uint64
		maxWorkers  uint64
		tolerance   float64
		name        string
		targetsFile string
		targetsFmt  string
		lazy        bool
		out         string
		noBar       bool
		reportEvery string

		redirects     int
		maxBody       int64
		keepalive     bool
		http2         bool
		h2c           bool
		insecureTLS   bool
		maxConns      int
		unixSocket    string
		localAddr     string
		proxyURL      string
		chunked       bool
	)

	cmd := &cobra.Command{
		Use:   "attack",
		Short: "Run a constant-rate HTTP attack and emit a Result stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rate.ParseRate(rateStr)
			if err != nil {
				return errs.Codef(errs.ConfigError, "--rate: %v", err)
			}
			duration, err := parseDurationFlag(durationStr)
			if err != nil {
				return errs.Codef(errs.ConfigError, "--duration: %v", err)
			}
			timeout, err := parseDurationFlag(timeoutStr)
			if err != nil {
				return errs.Codef(errs.ConfigError, "--timeout: %v", err)
			}
			httpTimeout, err := parseDurationFlag(httpTOStr)
			if err != nil {
				return errs.Codef(errs.ConfigError, "--http_timeout: %v", err)
			}
			reportInterval, err := parseDurationFlag(reportEvery)
			if err != nil {
				return errs.Codef(errs.ConfigError, "--report-every: %v", err)
			}

			to := transport.DefaultOptions()
			to.Redirects = redirects
			to.KeepAlive = keepalive
			to.HTTP2 = http2
			to.H2C = h2c
			to.InsecureTLS = insecureTLS
			to.MaxConnsPerHost = maxConns
			to.UnixSocket = unixSocket
			to.LocalAddr = localAddr
			to.ProxyURL = proxyURL
			to.Chunked = chunked
			to.Timeout = timeout

			cfg, err := config.NewBuilder().
				Name(name).
				Rate(r).
				Duration(duration).
				Workers(workers).
				MaxWorkers(maxWorkers).
				Timeout(timeout).
				HTTPTimeout(httpTimeout).
				Tolerance(tolerance).
				LazyTargets(lazy).
				Transport(to).
				ReportInterval(reportInterval).
				PrometheusAddr(flagPrometheusAddr).
				OpenTelemetryAddr(flagOpenTelemetryAddr).
				Build()
			if err != nil {
				return err
			}

			return runAttack(cmd, cfg, targetsFile, targetsFmt, maxBody, out, noBar)
		},
	}

	f := cmd.Flags()
	f.StringVar(&rateStr, "rate", "50/1s", "requests per period (count/period), 0 for unbounded")
	f.StringVar(&durationStr, "duration", "10s", "attack duration, 0 to run until target source exhausts")
	f.StringVar(&timeoutStr, "timeout", "30s", "per-request connect/dial timeout")
	f.StringVar(&httpTOStr, "http_timeout", "30s", "per-HTTP-operation timeout")
	f.Uint64Var(&workers, "workers", 10, "initial worker count")
	f.Uint64Var(&maxWorkers, "max-workers", 0, "worker ceiling, 0 for unbounded")
	f.Float64Var(&tolerance, "tolerance", 0.1, "allowed fractional shortfall between expected and delivered requests")
	f.StringVar(&name, "name", "blitz", "attack name recorded on every Result")
	f.StringVar(&targetsFile, "targets", "", "target list file (default: stdin)")
	f.StringVar(&targetsFmt, "format", "http", "target format: http or json")
	f.BoolVar(&lazy, "lazy", false, "stream targets incrementally instead of loading them all up front")
	f.StringVar(&out, "output", "", "Result stream output file (default: stdout)")
	f.BoolVar(&noBar, "no-progress", false, "disable the TTY progress bar")
	f.StringVar(&reportEvery, "report-every", "0", "emit a metrics snapshot to stderr at this interval, 0 to disable")

	f.IntVar(&redirects, "redirects", 10, "max redirects to follow, -1 to not follow")
	f.Int64Var(&maxBody, "max-body", -1, "max response body bytes to capture, -1 for unlimited")
	f.BoolVar(&keepalive, "keepalive", true, "enable HTTP keep-alive")
	f.BoolVar(&http2, "http2", true, "enable HTTP/2")
	f.BoolVar(&h2c, "h2c", false, "enable H2C (HTTP/2 cleartext)")
	f.BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")
	f.IntVar(&maxConns, "max-connections", 10000, "max connections per host")
	f.StringVar(&unixSocket, "unix-socket", "", "dial all requests over this Unix domain socket")
	f.StringVar(&localAddr, "local-addr", "", "local address to bind outgoing connections to")
	f.StringVar(&proxyURL, "proxy", "", "HTTP proxy URL")
	f.BoolVar(&chunked, "chunked", false, "send request bodies with Transfer-Encoding: chunked instead of Content-Length")

	return cmd
}

func parseDurationFlag(s string) (time.Duration, error) {
	d, err := rate.ParseDuration(s)
	return d.Time(), err
}

func runAttack(cmd *cobra.Command, cfg config.AttackConfig, targetsFile, targetsFmt string, maxBody int64, out string, noBar bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	in := os.Stdin
	if targetsFile != "" {
		f, err := os.Open(targetsFile)
		if err != nil {
			return errs.Codef(errs.ConfigError, "opening targets file: %v", err)
		}
		defer f.Close()
		in = f
	}

	src, err := target.Open(in, target.Format(targetsFmt), cfg.LazyTargets)
	if err != nil {
		return err
	}
	log.Info("targets loaded", nil, "attack_name", cfg.Name, "format", targetsFmt, "lazy", cfg.LazyTargets)

	client, err := transport.NewClient(cfg.Transport, maxBody)
	if err != nil {
		return err
	}
	defer client.Close()

	w := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return errs.Codef(errs.SinkError, "creating output file: %v", err)
		}
		defer f.Close()
		w = f
	}
	enc := resultio.NewEncoder(w)

	prom, err := telemetry.NewPromTap(cfg.PrometheusAddr)
	if err != nil {
		return errs.Wrap(errs.ConfigError, err)
	}
	defer prom.Shutdown(ctx)

	otlp, err := telemetry.NewOTLPTap(ctx, cfg.OpenTelemetryAddr, cfg.Name)
	if err != nil {
		return errs.Wrap(errs.ConfigError, err)
	}
	defer otlp.Shutdown(ctx)

	var bar *progress.Bar
	if !noBar && isTerminal(os.Stderr) {
		var total int64
		if cfg.Rate.Count > 0 && cfg.Duration > 0 {
			total = int64(cfg.Rate.PerSecond() * cfg.Duration.Seconds())
		}
		bar = progress.New(os.Stderr, cfg.Name, total)
	}

	p := pacer.New(cfg.Rate, cfg.Duration)
	ticks := p.Run(ctx)

	results, errc := dispatch.Run(ctx, ticks, src, client, dispatch.Options{
		Name:        cfg.Name,
		Workers:     cfg.Workers,
		MaxWorkers:  cfg.MaxWorkers,
		HTTPTimeout: cfg.HTTPTimeout,
		Tolerance:   cfg.Tolerance,
		Headers:     cfg.Headers,
		Logger:      log,
	})

	agg := metrics.New()

	var reportDone chan struct{}
	if cfg.ReportInterval > 0 {
		reportDone = make(chan struct{})
		go runPeriodicReport(agg, cfg.ReportInterval, reportDone)
	}

	for r := range results {
		if bar != nil {
			bar.Increment()
		}
		agg.Add(r)
		prom.Observe(r)
		otlp.Observe(ctx, r)
		if err := enc.Encode(r); err != nil {
			p.Stop()
			if reportDone != nil {
				close(reportDone)
			}
			return errs.Codef(errs.SinkError, "writing result: %v", err)
		}
	}
	if reportDone != nil {
		close(reportDone)
	}
	if err := enc.Flush(); err != nil {
		return errs.Codef(errs.SinkError, "flushing result stream: %v", err)
	}

	if bar != nil {
		bar.Done()
	}

	if err := report.Text(os.Stderr, agg.Snapshot()); err != nil {
		log.Warning("writing final report snapshot failed", nil, "error", err.Error())
	}

	return <-errc
}

// runPeriodicReport writes an aggregator snapshot to stderr at every
// interval boundary, per the configured --report-every cadence, until
// done is closed.
func runPeriodicReport(agg *metrics.Aggregator, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = report.Text(os.Stderr, agg.Snapshot())
		case <-done:
			return
		}
	}
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	st, err := f.Stat()
	if err != nil {
		return false
	}
	return (st.Mode() & os.ModeCharDevice) != 0
}
