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

package target

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/nabbar/blitz/internal/errs"
	"github.com/nabbar/blitz/internal/model"
)

// nextHTTPTarget parses one HTTP-text record from br: a non-blank,
// non-comment "METHOD URL" (or "METHOD PATH HTTP/1.1" with a Host header)
// line, followed by "Name: Value" header lines, an optional body
// introduced by "@path" or "Body:", and terminated by a blank line or EOF.
func nextHTTPTarget(br *bufio.Reader) (model.Target, error) {
	var t model.Target

	line, err := firstRecordLine(br)
	if err != nil {
		return t, err
	}

	method, rawURL, host, err := parseRequestLine(line)
	if err != nil {
		return t, errs.Codef(errs.TargetError, "%v", err)
	}
	t.Method = method

	var bodyBuf bytes.Buffer
	sawHost := host != ""

	for {
		l, err := readLine(br)
		if err == io.EOF || strings.TrimSpace(l) == "" {
			break
		}
		if err != nil {
			return t, err
		}

		switch {
		case strings.HasPrefix(l, "@"):
			t.BodyFile = strings.TrimSpace(l[1:])
		case strings.HasPrefix(l, "Body:"):
			rest := strings.TrimSpace(strings.TrimPrefix(l, "Body:"))
			if rest != "" {
				bodyBuf.WriteString(rest)
				bodyBuf.WriteByte('\n')
			}
			for {
				bl, err := readLine(br)
				if err == io.EOF || strings.TrimSpace(bl) == "" {
					break
				}
				if err != nil {
					return t, err
				}
				bodyBuf.WriteString(bl)
				bodyBuf.WriteByte('\n')
			}
		default:
			name, value, ok := splitHeader(l)
			if !ok {
				return t, errs.Codef(errs.TargetError, "malformed header line: %q", l)
			}
			if strings.EqualFold(name, "Host") {
				host = value
				sawHost = true
			}
			t.Headers = append(t.Headers, model.Header{Name: name, Value: value})
		}
	}

	if bodyBuf.Len() > 0 {
		t.Body = bytes.TrimRight(bodyBuf.Bytes(), "\n")
	}

	if host != "" && sawHost && !strings.Contains(rawURL, "://") {
		scheme := "http"
		if hasTLSHeaderHint(t.Headers) {
			scheme = "https"
		}
		t.URL = scheme + "://" + host + rawURL
	} else {
		t.URL = rawURL
	}

	if err := t.Validate(); err != nil {
		return t, errs.Codef(errs.TargetError, "%v", err)
	}

	return t, nil
}

// firstRecordLine skips blank lines and `#` comments to find the start of
// the next record, returning io.EOF when the stream is exhausted.
func firstRecordLine(br *bufio.Reader) (string, error) {
	for {
		l, err := readLine(br)
		if err == io.EOF && l == "" {
			return "", io.EOF
		}
		trimmed := strings.TrimSpace(l)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			if err == io.EOF {
				return "", io.EOF
			}
			continue
		}
		return trimmed, err
	}
}

func readLine(br *bufio.Reader) (string, error) {
	l, err := br.ReadString('\n')
	l = strings.TrimRight(l, "\r\n")
	if err == io.EOF {
		if l == "" {
			return "", io.EOF
		}
		return l, io.EOF
	}
	return l, err
}

// parseRequestLine accepts both "METHOD URL" and the HTTP/1.1-style
// "METHOD PATH HTTP/1.1" (the latter requires a following Host: header,
// validated by the caller once all header lines are read).
func parseRequestLine(line string) (method, target, host string, err error) {
	fields := strings.Fields(line)
	switch len(fields) {
	case 2:
		return fields[0], fields[1], "", nil
	case 3:
		if !strings.HasPrefix(fields[2], "HTTP/") {
			return "", "", "", fmt.Errorf("malformed request line: %q", line)
		}
		return fields[0], fields[1], "", nil
	default:
		return "", "", "", fmt.Errorf("malformed request line: %q", line)
	}
}

func splitHeader(line string) (name, value string, ok bool) {
	i := strings.Index(line, ":")
	if i <= 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
}

func hasTLSHeaderHint(headers []model.Header) bool {
	for _, h := range headers {
		if strings.EqualFold(h.Name, "X-Forwarded-Proto") && strings.EqualFold(h.Value, "https") {
			return true
		}
	}
	return false
}
