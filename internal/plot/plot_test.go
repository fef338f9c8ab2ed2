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

package plot

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/nabbar/blitz/internal/model"
)

func genResults(n int) []model.Result {
	out := make([]model.Result, n)
	for i := 0; i < n; i++ {
		out[i] = model.Result{
			Timestamp: int64(i) * int64(10*time.Millisecond),
			Latency:   uint64(i%50) * uint64(time.Millisecond),
		}
	}
	return out
}

func TestDownsampleReducesToThreshold(t *testing.T) {
	pts := buildPoints(genResults(1000))
	out := downsample(pts, 100)
	if len(out) > 100 {
		t.Fatalf("got %d points, want <= 100", len(out))
	}
	if len(out) == 0 {
		t.Fatalf("expected non-empty output")
	}
}

func TestDownsampleNoopUnderThreshold(t *testing.T) {
	pts := buildPoints(genResults(10))
	out := downsample(pts, 100)
	if len(out) != 10 {
		t.Fatalf("got %d points, want 10 (no downsampling needed)", len(out))
	}
}

func TestRenderProducesValidHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, genResults(50), 20); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</html>") {
		t.Fatalf("output does not look like HTML: %s", out[:200])
	}
}

func TestRenderEmptyResults(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, nil, 100); err != nil {
		t.Fatalf("Render on empty input: %v", err)
	}
}
