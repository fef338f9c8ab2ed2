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
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/nabbar/blitz/internal/errs"
)

// buildTLSConfig assembles a *tls.Config from TLSOptions, adapted from the
// teacher's certificates package builder (AddRootCAFile,
// AddCertificatePairFile) trimmed to the fields AttackConfig exposes: this
// CLI doesn't need the teacher's cipher-suite/curve enumeration surface,
// only root CAs, one client cert pair, the insecure toggle and session
// ticket control.
func buildTLSConfig(o Options) (*tls.Config, error) {
	cfg := &tls.Config{
		InsecureSkipVerify: o.InsecureTLS || o.TLS.Insecure, //nolint:gosec // explicit opt-in flag
		ServerName:         o.TLS.ServerName,
		SessionTicketsDisabled: o.TLS.SessionTicketsOff,
	}

	if len(o.TLS.RootCAFiles) > 0 {
		pool := x509.NewCertPool()
		for _, f := range o.TLS.RootCAFiles {
			pem, err := os.ReadFile(f)
			if err != nil {
				return nil, errs.Codef(errs.ConfigError, "reading root cert %q: %v", f, err)
			}
			if !pool.AppendCertsFromPEM(pem) {
				return nil, errs.Codef(errs.ConfigError, "no certificates found in %q", f)
			}
		}
		cfg.RootCAs = pool
	}

	if o.TLS.ClientCertFile != "" || o.TLS.ClientKeyFile != "" {
		if o.TLS.ClientCertFile == "" || o.TLS.ClientKeyFile == "" {
			return nil, errs.Codef(errs.ConfigError, "client cert and key must both be set")
		}
		cert, err := tls.LoadX509KeyPair(o.TLS.ClientCertFile, o.TLS.ClientKeyFile)
		if err != nil {
			return nil, errs.Codef(errs.ConfigError, "loading client cert pair: %v", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}
