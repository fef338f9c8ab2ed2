package target

import (
	"io"
	"strings"
	"testing"
)

func TestHTTPFormatBasic(t *testing.T) {
	in := "GET http://localhost:8080/\nHeader-A: foo\n\nPOST http://localhost:8080/submit\nContent-Type: application/json\nBody:\n{\"a\":1}\n\n"

	src, err := Open(strings.NewReader(in), FormatHTTP, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	t1, err := src.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if t1.Method != "GET" || t1.URL != "http://localhost:8080/" {
		t.Fatalf("got %+v", t1)
	}

	t2, err := src.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if t2.Method != "POST" || string(t2.Body) != `{"a":1}` {
		t.Fatalf("got %+v body=%q", t2, t2.Body)
	}

	// cyclic: third call wraps back to the first target.
	t3, err := src.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if t3.Method != "GET" {
		t.Fatalf("expected cyclic wraparound, got %+v", t3)
	}
}

func TestHTTPFormatHostHeaderReconstruction(t *testing.T) {
	in := "GET /status HTTP/1.1\nHost: example.com\n\n"
	src, err := Open(strings.NewReader(in), FormatHTTP, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	tg, err := src.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if tg.URL != "http://example.com/status" {
		t.Fatalf("got url %q", tg.URL)
	}
}

func TestHTTPFormatCommentsAndBlankLines(t *testing.T) {
	in := "# comment\n\nGET http://localhost/\n\n# trailing comment\n"
	src, err := Open(strings.NewReader(in), FormatHTTP, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	tg, err := src.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if tg.Method != "GET" {
		t.Fatalf("got %+v", tg)
	}
}

func TestJSONLinesFormat(t *testing.T) {
	in := `{"method":"GET","url":"http://localhost/a"}` + "\n" + `{"method":"POST","url":"http://localhost/b","header":{"X-Foo":["1","2"]}}` + "\n"

	src, err := Open(strings.NewReader(in), FormatJSON, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	t1, err := src.Next()
	if err != nil || t1.URL != "http://localhost/a" {
		t.Fatalf("t1=%+v err=%v", t1, err)
	}

	t2, err := src.Next()
	if err != nil || len(t2.Headers) != 2 {
		t.Fatalf("t2=%+v err=%v", t2, err)
	}
}

func TestJSONArrayFormat(t *testing.T) {
	in := `[{"method":"GET","url":"http://localhost/a"},{"method":"GET","url":"http://localhost/b"}]`

	src, err := Open(strings.NewReader(in), FormatJSON, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := src.Next(); err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
	}
}

func TestLazyModeExhaustionIsEOF(t *testing.T) {
	in := "GET http://localhost/\n\n"
	src, err := Open(strings.NewReader(in), FormatHTTP, true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := src.Next(); err != nil {
		t.Fatalf("first next: %v", err)
	}
	if _, err := src.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF on exhaustion, got %v", err)
	}
}

func TestMalformedRecordFailsAtOpenInEagerMode(t *testing.T) {
	in := "NOTVALID\n\n"
	if _, err := Open(strings.NewReader(in), FormatHTTP, false); err == nil {
		t.Fatal("expected an error for a malformed record in eager mode")
	}
}
