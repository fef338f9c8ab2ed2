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

package model

// Result is the recorded outcome of one dispatched request. It is emitted
// once by the dispatcher, written once by the sink, and never mutated
// afterwards.
type Result struct {
	AttackName string
	Seq        uint64
	Timestamp  int64 // nanoseconds since Unix epoch
	Latency    uint64 // nanoseconds
	BytesIn    uint64
	BytesOut   uint64
	Code       uint16
	URL        string
	Method     string
	Error      string
}

// Success reports whether the Result counts as a success under the default
// predicate: no error and a 2xx/3xx status code.
func (r Result) Success() bool {
	return r.Error == "" && r.Code >= 200 && r.Code < 400
}
