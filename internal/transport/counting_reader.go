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

import "io"

// countingReader tracks bytes read, adapted from the teacher's
// file/progress io wrappers (an io.Reader decorator that observes every
// Read without changing its semantics) but trimmed to a plain counter: no
// progress callbacks, no seeking, just the running total this package
// needs for bytes_in accounting.
type countingReader struct {
	r     io.Reader
	count int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.count += int64(n)
	return n, err
}

// drainCapped reads all of r into io.Discard and returns the number of
// bytes received, capped at maxBody: a body longer than the cap is still
// drained to the end, but bytesIn reports maxBody.
//
// maxBody < 0 means unlimited; maxBody == 0 means don't read the body at all.
func drainCapped(r io.Reader, maxBody int64) (bytesIn int64, err error) {
	if maxBody == 0 {
		return 0, nil
	}

	cr := &countingReader{r: r}

	if maxBody < 0 {
		_, err = io.Copy(io.Discard, cr)
		return cr.count, err
	}

	limited := io.LimitReader(cr, maxBody)
	if _, err = io.Copy(io.Discard, limited); err != nil {
		return cr.count, err
	}
	// Keep draining past the cap so the connection can be reused; the
	// extra bytes are discarded and not counted in bytesIn.
	_, err = io.Copy(io.Discard, cr)

	if cr.count > maxBody {
		return maxBody, err
	}
	return cr.count, err
}
