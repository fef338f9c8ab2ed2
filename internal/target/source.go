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

// Package target provides the Target Source: a lazy or eager provider of
// request templates drawn from the HTTP-text or JSON format, cycling
// round-robin over a finite set so any requested attack duration is
// satisfiable.
package target

import (
	"bufio"
	"io"

	"github.com/nabbar/blitz/internal/errs"
	"github.com/nabbar/blitz/internal/model"
)

// Format identifies the on-disk target format.
type Format string

const (
	FormatHTTP Format = "http"
	FormatJSON Format = "json"
)

// Source yields Target values on demand. Next returns io.EOF once the
// source is exhausted; under non-lazy mode that never happens (the source
// cycles indefinitely).
type Source interface {
	Next() (model.Target, error)
}

// eagerSource parses fully into memory up front and cycles through the
// list in order — the requirement for "cyclic target iteration" from the
// design notes: store the set by value, wrap an index modulo len(set),
// never a ring-linked structure.
type eagerSource struct {
	targets []model.Target
	idx     int
}

func (e *eagerSource) Next() (model.Target, error) {
	if len(e.targets) == 0 {
		return model.Target{}, errs.Codef(errs.TargetError, "no targets available")
	}
	t := e.targets[e.idx]
	e.idx = (e.idx + 1) % len(e.targets)
	return t, nil
}

// lazySource reads one record at a time from the underlying reader.
// Exhaustion (io.EOF from the parser) terminates the attack.
type lazySource struct {
	next func() (model.Target, error)
}

func (l *lazySource) Next() (model.Target, error) {
	return l.next()
}

// Open builds a Source from r in the given format. When lazy is true, r is
// read incrementally as the dispatcher consumes; otherwise r is parsed
// fully into memory immediately and the result cycles forever.
//
// Malformed records in eager mode fail here, before the pacer begins, per
// spec §4.1's startup-failure semantics. In lazy mode, malformed records
// surface as an error from Next() at the point the dispatcher reaches them.
func Open(r io.Reader, format Format, lazy bool) (Source, error) {
	var parseOne func(*bufio.Reader) (model.Target, error)

	switch format {
	case FormatHTTP:
		parseOne = nextHTTPTarget
	case FormatJSON:
		return openJSON(r, lazy)
	default:
		return nil, errs.Codef(errs.ConfigError, "unknown target format %q", format)
	}

	br := bufio.NewReader(r)

	if lazy {
		return &lazySource{next: func() (model.Target, error) { return parseOne(br) }}, nil
	}

	var all []model.Target
	for {
		t, err := parseOne(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		all = append(all, t)
	}
	if len(all) == 0 {
		return nil, errs.Codef(errs.TargetError, "target source is empty")
	}
	return &eagerSource{targets: all}, nil
}
