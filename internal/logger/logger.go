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

// Package logger wraps logrus with the message/data/args call shape used
// across this codebase, so every subcommand logs the same way regardless of
// which component raised the entry.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	Debug(message string, data interface{}, args ...interface{})
	Info(message string, data interface{}, args ...interface{})
	Warning(message string, data interface{}, args ...interface{})
	Error(message string, data interface{}, args ...interface{})
	Fatal(message string, data interface{}, args ...interface{})

	WithField(key string, value interface{}) Logger
	SetLevel(level string) error
	SetFormat(format string) error

	// GetStdLogger returns a standard library *log.Logger writing through
	// this logger at the given level, for third-party code that expects one.
	GetStdLogger(level string) *log.Logger
}

type logger struct {
	l *logrus.Logger
	f logrus.Fields
}

// New builds a Logger writing to w (stderr by default in cmd/blitz), with
// level and format ("text" or "json") applied from the attack/report/plot
// global flags.
func New(w io.Writer, level string, format string) Logger {
	l := logrus.New()
	l.SetOutput(w)

	lg := &logger{l: l, f: logrus.Fields{}}
	_ = lg.SetLevel(level)
	_ = lg.SetFormat(format)

	return lg
}

func (o *logger) clone() *logger {
	f := make(logrus.Fields, len(o.f))
	for k, v := range o.f {
		f[k] = v
	}
	return &logger{l: o.l, f: f}
}

func (o *logger) WithField(key string, value interface{}) Logger {
	n := o.clone()
	n.f[key] = value
	return n
}

func (o *logger) SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	o.l.SetLevel(lvl)
	return nil
}

func (o *logger) SetFormat(format string) error {
	switch format {
	case "json":
		o.l.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		o.l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

func (o *logger) entry(data interface{}) *logrus.Entry {
	e := o.l.WithFields(o.f)
	if data != nil {
		if err, ok := data.(error); ok {
			e = e.WithError(err)
		} else {
			e = e.WithField("data", data)
		}
	}
	return e
}

func (o *logger) Debug(message string, data interface{}, args ...interface{}) {
	o.entry(data).Debug(fmt.Sprintf(message, args...))
}

func (o *logger) Info(message string, data interface{}, args ...interface{}) {
	o.entry(data).Info(fmt.Sprintf(message, args...))
}

func (o *logger) Warning(message string, data interface{}, args ...interface{}) {
	o.entry(data).Warn(fmt.Sprintf(message, args...))
}

func (o *logger) Error(message string, data interface{}, args ...interface{}) {
	o.entry(data).Error(fmt.Sprintf(message, args...))
}

func (o *logger) Fatal(message string, data interface{}, args ...interface{}) {
	o.entry(data).Fatal(fmt.Sprintf(message, args...))
}

func (o *logger) GetStdLogger(level string) *log.Logger {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	return log.New(o.l.WriterLevel(lvl), "", 0)
}

// Discard returns a Logger that drops every entry, used by library callers
// (e.g. report/plot when invoked as a pure filter) that don't want stderr noise.
func Discard() Logger {
	return New(io.Discard, "panic", "text")
}

// Default returns a Logger writing text-formatted entries to stderr at info level.
func Default() Logger {
	return New(os.Stderr, "info", "text")
}
