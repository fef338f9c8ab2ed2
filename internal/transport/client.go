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

package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http2"

	"github.com/nabbar/blitz/internal/errs"
)

// GetTransport builds the base *http.Transport, following the teacher's
// httpcli split between transport construction and per-concern setters
// (SetTransportTLS, SetTransportDial, SetTransportProxy in httpcli/http.go).
func GetTransport(o Options) (*http.Transport, error) {
	dialer := &net.Dialer{
		Timeout:   o.Timeout,
		KeepAlive: 30 * time.Second,
	}
	if !o.KeepAlive {
		dialer.KeepAlive = -1
	}

	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConnsPerHost:   o.MaxConnsPerHost,
		MaxConnsPerHost:       o.MaxConnsPerHost,
		DisableKeepAlives:     !o.KeepAlive,
		ResponseHeaderTimeout: o.Timeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	dial, err := buildDialContext(o, dialer)
	if err != nil {
		return nil, err
	}
	tr.DialContext = dial

	tlsCfg, err := buildTLSConfig(o)
	if err != nil {
		return nil, err
	}
	tr.TLSClientConfig = tlsCfg

	if o.LocalAddr != "" {
		addr, err := net.ResolveTCPAddr("tcp", o.LocalAddr)
		if err != nil {
			return nil, errs.Codef(errs.ConfigError, "invalid local_addr %q: %v", o.LocalAddr, err)
		}
		dialer.LocalAddr = addr
	}

	if o.ProxyURL != "" {
		u, err := url.Parse(o.ProxyURL)
		if err != nil {
			return nil, errs.Codef(errs.ConfigError, "invalid proxy url %q: %v", o.ProxyURL, err)
		}
		if len(o.ProxyHeader) > 0 {
			h := make(http.Header, len(o.ProxyHeader))
			for k, v := range o.ProxyHeader {
				h.Set(k, v)
			}
			tr.ProxyConnectHeader = h
		}
		tr.Proxy = http.ProxyURL(u)
	}

	if o.HTTP2 {
		if err := http2.ConfigureTransport(tr); err != nil {
			return nil, errs.Codef(errs.ConfigError, "configuring http2: %v", err)
		}
	} else {
		tr.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	}

	return tr, nil
}

// GetClient wraps the transport into an *http.Client with the requested
// redirect policy. Redirects == -1 means "report the first 3xx as success
// without following" (spec §4.2), implemented via http.ErrUseLastResponse.
func GetClient(o Options) (*http.Client, error) {
	tr, err := GetTransport(o)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Transport: httpRoundTripper(o, tr)}

	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		switch {
		case o.Redirects < 0:
			return http.ErrUseLastResponse
		case len(via) >= o.Redirects:
			return fmt.Errorf("stopped after %d redirects", o.Redirects)
		default:
			return nil
		}
	}

	return client, nil
}

// httpRoundTripper swaps in an h2c-capable transport when H2C is requested,
// mirroring the vegeta reference's H2C functional option.
func httpRoundTripper(o Options, tr *http.Transport) http.RoundTripper {
	if !o.H2C {
		return tr
	}
	return &http2.Transport{
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return tr.DialContext(ctx, network, addr)
		},
	}
}
