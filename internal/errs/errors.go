/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package errs

import (
	"fmt"
	"strings"
)

// Error extends the standard error with a numeric code and a parent chain,
// so a failure deep in the transport or codec can be classified and mapped
// to a CLI exit code without string matching.
type Error interface {
	error

	Code() CodeError
	IsCode(code CodeError) bool

	Add(parent ...error)
	HasParent() bool
	GetParent() []error

	Unwrap() []error
}

type ers struct {
	c CodeError
	m string
	p []error
}

// New creates an Error with the given code and message, optionally wrapping
// one or more parent errors.
func New(code CodeError, msg string, parent ...error) Error {
	e := &ers{c: code, m: msg}
	e.Add(parent...)
	return e
}

// Wrap creates an Error with the given code, taking its message from err.
// Returns nil when err is nil, so call sites can write `return errs.Wrap(...)`
// unconditionally.
func Wrap(code CodeError, err error) Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*ers); ok {
		return e
	}
	return &ers{c: code, m: err.Error()}
}

func (e *ers) Error() string {
	var sb strings.Builder

	if e.m != "" {
		sb.WriteString(e.m)
	} else {
		sb.WriteString(e.c.Message())
	}

	for _, p := range e.p {
		if p == nil {
			continue
		}
		sb.WriteString(": ")
		sb.WriteString(p.Error())
	}

	return sb.String()
}

func (e *ers) Code() CodeError {
	return e.c
}

func (e *ers) IsCode(code CodeError) bool {
	if e.c == code {
		return true
	}
	for _, p := range e.p {
		if pe, ok := p.(Error); ok && pe.IsCode(code) {
			return true
		}
	}
	return false
}

func (e *ers) Add(parent ...error) {
	for _, p := range parent {
		if p != nil {
			e.p = append(e.p, p)
		}
	}
}

func (e *ers) HasParent() bool {
	return len(e.p) > 0
}

func (e *ers) GetParent() []error {
	return e.p
}

func (e *ers) Unwrap() []error {
	return e.p
}

// Codef builds an Error with a formatted message, grounded on the teacher's
// CodeError/Message registration idiom (errors/code.go) but trimmed to the
// subset this CLI's exit-code mapping actually needs.
func Codef(code CodeError, format string, args ...interface{}) Error {
	return New(code, fmt.Sprintf(format, args...))
}
