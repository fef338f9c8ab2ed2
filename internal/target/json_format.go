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
	"encoding/base64"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/nabbar/blitz/internal/errs"
	"github.com/nabbar/blitz/internal/model"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonRecord mirrors the wire shape of one JSON target record. Header
// accepts either a single string or an array of strings per name, and
// Body accepts a base64 payload or an inline string.
type jsonRecord struct {
	Method string             `json:"method"`
	URL    string             `json:"url"`
	Header map[string]jsonAny `json:"header,omitempty"`
	Body   string             `json:"body,omitempty"`
}

// jsonAny decodes either a bare string or an array of strings.
type jsonAny struct {
	values []string
}

func (j *jsonAny) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "[") {
		var arr []string
		if err := jsonAPI.Unmarshal(b, &arr); err != nil {
			return err
		}
		j.values = arr
		return nil
	}
	var s string
	if err := jsonAPI.Unmarshal(b, &s); err != nil {
		return err
	}
	j.values = []string{s}
	return nil
}

func toTarget(rec jsonRecord) (model.Target, error) {
	t := model.Target{Method: rec.Method, URL: rec.URL}

	for name, vals := range rec.Header {
		for _, v := range vals.values {
			t.Headers = append(t.Headers, model.Header{Name: name, Value: v})
		}
	}

	if rec.Body != "" {
		if b, err := base64.StdEncoding.DecodeString(rec.Body); err == nil {
			t.Body = b
		} else {
			t.Body = []byte(rec.Body)
		}
	}

	if err := t.Validate(); err != nil {
		return t, errs.Codef(errs.TargetError, "%v", err)
	}
	return t, nil
}

// openJSON detects whether the stream is a bare JSON array or
// newline-delimited JSON objects by sniffing the first non-whitespace byte.
func openJSON(r io.Reader, lazy bool) (Source, error) {
	br := bufio.NewReader(r)

	first, err := peekNonSpace(br)
	if err != nil {
		return nil, errs.Codef(errs.TargetError, "empty json target source")
	}

	if first == '[' {
		return openJSONArray(br)
	}
	return openJSONLines(br, lazy)
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		if b[0] == ' ' || b[0] == '\t' || b[0] == '\n' || b[0] == '\r' {
			if _, err := br.ReadByte(); err != nil {
				return 0, err
			}
			continue
		}
		return b[0], nil
	}
}

func openJSONArray(br *bufio.Reader) (Source, error) {
	dec := jsonAPI.NewDecoder(br)

	var recs []jsonRecord
	if err := dec.Decode(&recs); err != nil {
		return nil, errs.Codef(errs.TargetError, "decoding json target array: %v", err)
	}

	var targets []model.Target
	for _, rec := range recs {
		t, err := toTarget(rec)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	if len(targets) == 0 {
		return nil, errs.Codef(errs.TargetError, "target source is empty")
	}
	return &eagerSource{targets: targets}, nil
}

func openJSONLines(br *bufio.Reader, lazy bool) (Source, error) {
	parseOne := func() (model.Target, error) {
		for {
			line, err := br.ReadString('\n')
			if err != nil && err != io.EOF {
				return model.Target{}, err
			}
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				if err == io.EOF {
					return model.Target{}, io.EOF
				}
				continue
			}

			var rec jsonRecord
			if uerr := jsonAPI.UnmarshalFromString(trimmed, &rec); uerr != nil {
				return model.Target{}, errs.Codef(errs.TargetError, "decoding json target line: %v", uerr)
			}
			t, terr := toTarget(rec)
			if terr != nil {
				return model.Target{}, terr
			}
			if err == io.EOF {
				return t, nil
			}
			return t, err
		}
	}

	if lazy {
		return &lazySource{next: parseOne}, nil
	}

	var targets []model.Target
	for {
		t, err := parseOne()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	if len(targets) == 0 {
		return nil, errs.Codef(errs.TargetError, "target source is empty")
	}
	return &eagerSource{targets: targets}, nil
}
