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

// Package transport builds and drives the pooled *http.Client the
// dispatcher shares across every worker: TLS, keep-alive, HTTP/2, DNS,
// proxy and timeout policy in, a single Send() primitive out.
package transport

import (
	"time"

	libval "github.com/go-playground/validator/v10"

	"github.com/nabbar/blitz/internal/errs"
)

// TLSOptions configures the transport's TLS material, adapted from the
// teacher's certificates package builder surface (AddRootCAFile,
// AddCertificatePairFile, insecure toggle, session tickets) onto the
// narrower set AttackConfig actually exposes.
type TLSOptions struct {
	Insecure           bool     `json:"insecure" yaml:"insecure" toml:"insecure" mapstructure:"insecure"`
	RootCAFiles        []string `json:"root_certs" yaml:"root_certs" toml:"root_certs" mapstructure:"root_certs"`
	ClientCertFile     string   `json:"client_cert" yaml:"client_cert" toml:"client_cert" mapstructure:"client_cert"`
	ClientKeyFile      string   `json:"client_key" yaml:"client_key" toml:"client_key" mapstructure:"client_key"`
	SessionTicketsOff  bool     `json:"session_tickets_off" yaml:"session_tickets_off" toml:"session_tickets_off" mapstructure:"session_tickets_off"`
	ServerName         string   `json:"server_name,omitempty" yaml:"server_name,omitempty" toml:"server_name,omitempty" mapstructure:"server_name,omitempty"`
}

// Options is the complete, validated configuration for one *http.Client,
// following the Options/Validate/DefaultConfig idiom of httpcli/options.go.
type Options struct {
	Timeout         time.Duration     `validate:"gte=0"`
	KeepAlive       bool
	HTTP2           bool
	H2C             bool
	InsecureTLS     bool
	TLS             TLSOptions
	Redirects       int
	MaxConnsPerHost int `validate:"gte=0"`
	Resolvers       []string
	ConnectTo       map[string]string
	UnixSocket      string
	LocalAddr       string
	ProxyHeader     map[string]string
	ProxyURL        string
	Chunked         bool
}

// DefaultOptions mirrors the teacher's DefaultConfig() JSON snapshot idiom,
// returning sane defaults for every field an attack didn't override.
func DefaultOptions() Options {
	return Options{
		Timeout:         30 * time.Second,
		KeepAlive:       true,
		HTTP2:           true,
		Redirects:       10,
		MaxConnsPerHost: 10000,
	}
}

// Validate runs struct-tag validation the same way httpcli/options.go does.
func (o Options) Validate() error {
	if err := libval.New().Struct(o); err != nil {
		if _, ok := err.(*libval.InvalidValidationError); ok {
			return errs.Wrap(errs.ConfigError, err)
		}
		for _, er := range err.(libval.ValidationErrors) {
			return errs.Codef(errs.ConfigError, "field %q failed constraint %q", er.Namespace(), er.ActualTag())
		}
	}
	return nil
}
