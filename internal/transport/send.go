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

// Package transport builds the *http.Client used to fire every attack
// request, and carries the result of one exchange back as the plain
// fields the dispatcher packs into a model.Result. It owns everything
// connection-shaped: dialing, TLS, proxying, compression and the
// taxonomy that turns a Go error into one of the Result.Error strings.
package transport

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/nabbar/blitz/internal/model"
)

// Exchange is one round trip's outcome, in the shape the dispatcher
// copies straight into a model.Result.
type Exchange struct {
	Code     uint16
	BytesIn  uint64
	BytesOut uint64
	Latency  time.Duration
	Err      string
}

// Client sends Targets over a single shared *http.Transport built once
// from Options, so every attack request in a run reuses the same
// connection pool, resolver and TLS configuration.
type Client struct {
	hc      *http.Client
	maxBody int64
	chunked bool
}

// NewClient builds a Client from Options. maxBody bounds response body
// bytes read per request; 0 disables body reads entirely, a negative
// value means unlimited.
func NewClient(o Options, maxBody int64) (*Client, error) {
	hc, err := GetClient(o)
	if err != nil {
		return nil, err
	}
	return &Client{hc: hc, maxBody: maxBody, chunked: o.Chunked}, nil
}

// Send performs one request built from target, with global overlaid on
// top of the target's own headers, bounded by timeout. It never returns
// a Go error: every failure is folded into Exchange.Err via classify, so
// callers can unconditionally emit a Result.
func (c *Client) Send(ctx context.Context, target model.Target, global model.GlobalHeaders, timeout time.Duration) Exchange {
	start := time.Now()

	req, err := target.Request()
	if err != nil {
		return Exchange{Err: classify(err), Latency: time.Since(start)}
	}
	global.Apply(req)

	bytesOut := uint64(req.ContentLength)
	if req.ContentLength < 0 {
		bytesOut = 0
	}

	// Chunked requests forgo a Content-Length header in favor of
	// Transfer-Encoding: chunked; net/http picks chunked framing for a
	// client request whose Body is non-nil and ContentLength is 0.
	if c.chunked && req.Body != nil {
		req.ContentLength = 0
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req = req.WithContext(ctx)

	resp, err := c.hc.Do(req)
	if err != nil {
		return Exchange{
			BytesOut: bytesOut,
			Err:      classify(err),
			Latency:  time.Since(start),
		}
	}

	body, decErr := decodeBody(resp)
	if decErr != nil {
		_ = resp.Body.Close()
		return Exchange{
			Code:     uint16(resp.StatusCode),
			BytesOut: bytesOut,
			Err:      classify(decErr),
			Latency:  time.Since(start),
		}
	}

	bytesIn, readErr := drainCapped(body, c.maxBody)
	_ = body.Close()

	latency := time.Since(start)

	if readErr != nil && readErr != io.EOF {
		return Exchange{
			Code:     uint16(resp.StatusCode),
			BytesIn:  uint64(bytesIn),
			BytesOut: bytesOut,
			Err:      classify(readErr),
			Latency:  latency,
		}
	}

	return Exchange{
		Code:     uint16(resp.StatusCode),
		BytesIn:  uint64(bytesIn),
		BytesOut: bytesOut,
		Latency:  latency,
	}
}

// Close releases idle connections held by the underlying transport.
func (c *Client) Close() {
	c.hc.CloseIdleConnections()
}
