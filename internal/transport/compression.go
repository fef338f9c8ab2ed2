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
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"

	"github.com/nabbar/blitz/internal/errs"
)

// decodeBody wraps resp.Body with the decoder matching Content-Encoding,
// so callers always read plain bytes. The Transport doesn't register
// these with http.Transport's own DisableCompression machinery because it
// needs independent control of gzip, deflate *and* brotli in one place.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	enc := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))

	switch enc {
	case "", "identity":
		return resp.Body, nil
	case "gzip":
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, errs.Codef(errs.UnknownError, "gzip decode: %v", err)
		}
		return wrapCloser{Reader: r, close: func() error { return closeBoth(r, resp.Body) }}, nil
	case "deflate":
		r := flate.NewReader(resp.Body)
		return wrapCloser{Reader: r, close: func() error { return closeBoth(r, resp.Body) }}, nil
	case "br":
		r := brotli.NewReader(resp.Body)
		return wrapCloser{Reader: r, close: func() error { return resp.Body.Close() }}, nil
	default:
		return resp.Body, nil
	}
}

type wrapCloser struct {
	io.Reader
	close func() error
}

func (w wrapCloser) Close() error {
	return w.close()
}

func closeBoth(r io.Closer, body io.Closer) error {
	_ = r.Close()
	return body.Close()
}
