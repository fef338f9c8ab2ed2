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

// Package model holds the Target and Result types shared by every
// component of the attack engine, and the Header type used by both.
package model

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

// Header is a single ordered (name, value) pair. Duplicates are allowed and
// preserved on the wire; lookups are case-insensitive but the original
// casing is kept.
type Header struct {
	Name  string
	Value string
}

// Target is an immutable request template drawn from the target source.
// A Target may be dispatched many times (round-robin cycling); Request()
// must therefore never mutate shared state.
type Target struct {
	Method  string
	URL     string
	Headers []Header

	// Body is the inline request body, if any. BodyFile, when non-empty,
	// defers the read to dispatch time (honored by lazy_targets).
	Body     []byte
	BodyFile string
}

// Validate checks the Target invariants from the data model: a valid method
// token and a http/https absolute URL.
func (t Target) Validate() error {
	if t.Method == "" {
		return fmt.Errorf("target method must not be empty")
	}
	for _, r := range t.Method {
		if r <= ' ' || r > '~' {
			return fmt.Errorf("target method %q is not a valid HTTP token", t.Method)
		}
	}

	u, err := url.Parse(t.URL)
	if err != nil {
		return fmt.Errorf("target url %q: %w", t.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("target url %q: scheme must be http or https", t.URL)
	}
	for _, h := range t.Headers {
		if h.Name == "" {
			return fmt.Errorf("target %s %s: empty header name", t.Method, t.URL)
		}
	}
	return nil
}

// Request builds an *http.Request from the Target. The body, if sourced
// from BodyFile, is opened lazily here rather than at parse time.
func (t Target) Request() (*http.Request, error) {
	body, bodyLen, err := t.bodyReader()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(t.Method, t.URL, body)
	if err != nil {
		return nil, err
	}

	for _, h := range t.Headers {
		req.Header.Add(h.Name, h.Value)
	}

	if bodyLen >= 0 {
		req.ContentLength = bodyLen
	}

	return req, nil
}

func (t Target) bodyReader() (io.Reader, int64, error) {
	if t.BodyFile != "" {
		b, err := os.ReadFile(t.BodyFile)
		if err != nil {
			return nil, -1, fmt.Errorf("reading target body file %q: %w", t.BodyFile, err)
		}
		return bytes.NewReader(b), int64(len(b)), nil
	}
	if t.Body != nil {
		return bytes.NewReader(t.Body), int64(len(t.Body)), nil
	}
	return nil, 0, nil
}

// GlobalHeaders is the ordered list applied to every Target at dispatch
// time. Both per-target and global headers are sent; neither replaces
// the other and there is no de-duplication.
type GlobalHeaders []Header

// Apply overlays the global headers onto req, in addition to whatever the
// target already set.
func (g GlobalHeaders) Apply(req *http.Request) {
	for _, h := range g {
		req.Header.Add(h.Name, h.Value)
	}
}
