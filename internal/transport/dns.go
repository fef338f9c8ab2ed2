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
	"fmt"
	"net"

	"github.com/miekg/dns"

	"github.com/nabbar/blitz/internal/errs"
)

// resolver issues A/AAAA lookups against an explicit resolver list instead
// of the system resolver, for the AttackConfig `resolvers` option.
type resolver struct {
	client  *dns.Client
	servers []string
}

// newResolver returns nil when servers is empty, so buildDialContext can
// fall back to the system resolver with no branch at the call site.
func newResolver(servers []string) (*resolver, error) {
	if len(servers) == 0 {
		return nil, nil
	}
	for _, s := range servers {
		if _, _, err := net.SplitHostPort(s); err != nil {
			return nil, errs.Codef(errs.ConfigError, "invalid resolver address %q: %v", s, err)
		}
	}
	return &resolver{client: new(dns.Client), servers: servers}, nil
}

// lookup queries each configured resolver in turn for A records, returning
// on the first resolver that answers.
func (r *resolver) lookup(ctx context.Context, host string) ([]string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []string{host}, nil
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), dns.TypeA)

	var lastErr error
	for _, server := range r.servers {
		in, _, err := r.client.ExchangeContext(ctx, m, server)
		if err != nil {
			lastErr = err
			continue
		}
		var ips []string
		for _, rr := range in.Answer {
			if a, ok := rr.(*dns.A); ok {
				ips = append(ips, a.A.String())
			}
		}
		if len(ips) > 0 {
			return ips, nil
		}
		lastErr = fmt.Errorf("no A records for %q from resolver %s", host, server)
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no resolvers answered for %q", host)
	}
	return nil, errs.Codef(errs.ConfigError, "dns lookup failed: %v", lastErr)
}
