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
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nabbar/blitz/internal/model"
)

func TestSendSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	c, err := NewClient(DefaultOptions(), -1)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()

	tgt := model.Target{Method: http.MethodGet, URL: srv.URL}
	ex := c.Send(context.Background(), tgt, nil, time.Second)

	if ex.Err != "" {
		t.Fatalf("unexpected error: %s", ex.Err)
	}
	if ex.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", ex.Code)
	}
	if ex.BytesIn != uint64(len("hello world")) {
		t.Fatalf("bytesIn = %d, want %d", ex.BytesIn, len("hello world"))
	}
}

func TestSendTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(DefaultOptions(), -1)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()

	tgt := model.Target{Method: http.MethodGet, URL: srv.URL}
	ex := c.Send(context.Background(), tgt, nil, 10*time.Millisecond)

	if ex.Err != "timeout" {
		t.Fatalf("err = %q, want %q", ex.Err, "timeout")
	}
	if ex.Code != 0 {
		t.Fatalf("code = %d, want 0", ex.Code)
	}
}

func TestSendConnectRefused(t *testing.T) {
	// Bind then immediately close so the port is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	c, err := NewClient(DefaultOptions(), -1)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()

	tgt := model.Target{Method: http.MethodGet, URL: "http://" + addr}
	ex := c.Send(context.Background(), tgt, nil, time.Second)

	if ex.Err != "connect" {
		t.Fatalf("err = %q, want %q", ex.Err, "connect")
	}
}

func TestSendGlobalHeadersApplied(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := NewClient(DefaultOptions(), -1)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()

	tgt := model.Target{Method: http.MethodGet, URL: srv.URL}
	global := model.GlobalHeaders{{Name: "Authorization", Value: "Bearer token"}}
	ex := c.Send(context.Background(), tgt, global, time.Second)

	if ex.Err != "" {
		t.Fatalf("unexpected error: %s", ex.Err)
	}
	if gotAuth != "Bearer token" {
		t.Fatalf("Authorization = %q, want %q", gotAuth, "Bearer token")
	}
}

func TestSendBodyCapped(t *testing.T) {
	payload := strings.Repeat("x", 1000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	c, err := NewClient(DefaultOptions(), 100)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()

	tgt := model.Target{Method: http.MethodGet, URL: srv.URL}
	ex := c.Send(context.Background(), tgt, nil, time.Second)

	if ex.BytesIn != 100 {
		t.Fatalf("bytesIn = %d, want 100", ex.BytesIn)
	}
}

func TestSendChunkedUsesTransferEncoding(t *testing.T) {
	var gotTE []string
	var gotCL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTE = r.TransferEncoding
		gotCL = r.Header.Get("Content-Length")
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	o := DefaultOptions()
	o.Chunked = true
	c, err := NewClient(o, -1)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()

	tgt := model.Target{Method: http.MethodPost, URL: srv.URL, Body: []byte("payload")}
	ex := c.Send(context.Background(), tgt, nil, time.Second)

	if ex.Err != "" {
		t.Fatalf("unexpected error: %s", ex.Err)
	}
	if len(gotTE) == 0 || gotTE[0] != "chunked" {
		t.Fatalf("TransferEncoding = %v, want [chunked]", gotTE)
	}
	if gotCL != "" {
		t.Fatalf("Content-Length = %q, want unset under chunked encoding", gotCL)
	}
}

func TestClassifyOther(t *testing.T) {
	got := classify(errUnclassified{})
	if !strings.HasPrefix(got, "other:") {
		t.Fatalf("classify = %q, want other: prefix", got)
	}
}

type errUnclassified struct{}

func (errUnclassified) Error() string { return "something bespoke went wrong" }
