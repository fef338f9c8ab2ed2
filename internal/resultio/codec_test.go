package resultio

import (
	"bytes"
	"io"
	"testing"

	"github.com/nabbar/blitz/internal/model"
)

func sampleResults() []model.Result {
	return []model.Result{
		{AttackName: "blitz", Seq: 0, Timestamp: 1000, Latency: 500, BytesIn: 10, BytesOut: 0, Code: 200, URL: "http://localhost/", Method: "GET", Error: ""},
		{AttackName: "blitz", Seq: 1, Timestamp: 2000, Latency: 9999, BytesIn: 0, BytesOut: 0, Code: 0, URL: "http://localhost/", Method: "GET", Error: "timeout"},
	}
}

func encodeAll(t *testing.T, results []model.Result) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	if err := enc.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return buf.Bytes()
}

func decodeAll(t *testing.T, b []byte) []model.Result {
	t.Helper()
	dec := NewDecoder(bytes.NewReader(b))
	var out []model.Result
	for {
		r, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		out = append(out, r)
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	in := sampleResults()
	out := decodeAll(t, encodeAll(t, in))

	if len(out) != len(in) {
		t.Fatalf("got %d results, want %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("result %d: got %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestConcatenation(t *testing.T) {
	a := sampleResults()[:1]
	b := sampleResults()[1:]

	ab := append(encodeAll(t, a), encodeAll(t, b)...)
	out := decodeAll(t, ab)

	want := append(append([]model.Result{}, a...), b...)
	if len(out) != len(want) {
		t.Fatalf("got %d results, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("result %d: got %+v, want %+v", i, out[i], want[i])
		}
	}
}

func TestTruncatedRecordIsAnError(t *testing.T) {
	full := encodeAll(t, sampleResults()[:1])
	truncated := full[:len(full)-3]

	dec := NewDecoder(bytes.NewReader(truncated))
	if _, err := dec.Decode(); err == nil {
		t.Fatal("expected a decoding error for a truncated record, got nil")
	} else if err == io.EOF {
		t.Fatal("truncated record must not be reported as a clean io.EOF")
	}
}

func TestEmptyStreamIsCleanEOF(t *testing.T) {
	dec := NewDecoder(bytes.NewReader(nil))
	if _, err := dec.Decode(); err != io.EOF {
		t.Fatalf("got %v, want io.EOF", err)
	}
}

func TestBadMagicByte(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte{0xFF, 0, 0}))
	if _, err := dec.Decode(); err == nil {
		t.Fatal("expected an error for a bad magic byte")
	}
}
