package wire

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDecodeWellFormed(t *testing.T) {
	raw := "POST /submit HTTP/1.1\nHost: localhost\nX-Trace: abc\n\nfirst line\nsecond line"

	req, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if req.Method != MethodPost {
		t.Errorf("Expected method POST, got %q", req.Method)
	}
	if req.Path != "/submit" {
		t.Errorf("Expected path /submit, got %q", req.Path)
	}
	if req.Version != "HTTP/1.1" {
		t.Errorf("Expected version HTTP/1.1, got %q", req.Version)
	}

	want := Header{{"Host", "localhost"}, {"X-Trace", "abc"}}
	if len(req.Headers) != len(want) {
		t.Fatalf("Expected %d headers, got %d: %v", len(want), len(req.Headers), req.Headers)
	}
	for i, f := range want {
		if req.Headers[i] != f {
			t.Errorf("Header %d: got %v, want %v", i, req.Headers[i], f)
		}
	}

	if string(req.Body) != "first line\nsecond line" {
		t.Errorf("Unexpected body %q", req.Body)
	}
}

func TestDecodeCRLF(t *testing.T) {
	raw := "GET /about HTTP/1.1\r\nHost: example.org\r\nAccept: */*\r\n\r\n"

	req, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if req.Headers.Get("accept") != "*/*" {
		t.Errorf("Expected Accept */*, got %q", req.Headers.Get("accept"))
	}
	if len(req.Body) != 0 {
		t.Errorf("Expected empty body, got %q", req.Body)
	}
}

func TestDecodeHeaderSplitsOnFirstSeparator(t *testing.T) {
	req, err := Decode([]byte("GET / HTTP/1.1\nX-Custom: a: b\n\n"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(req.Headers) != 1 {
		t.Fatalf("Expected 1 header, got %v", req.Headers)
	}
	if req.Headers[0].Key != "X-Custom" || req.Headers[0].Value != "a: b" {
		t.Errorf("Got %v, want X-Custom=\"a: b\"", req.Headers[0])
	}
}

func TestDecodeAcceptsAnyHeaderKey(t *testing.T) {
	req, err := Decode([]byte("GET / HTTP/1.1\nX Custom: v\n(odd): w\nHost: h\n\n"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(req.Headers) != 3 {
		t.Fatalf("Expected 3 headers, got %v", req.Headers)
	}
	if req.Headers.Get("X Custom") != "v" || req.Headers.Get("(odd)") != "w" || req.Headers.Get("Host") != "h" {
		t.Errorf("Unexpected headers %v", req.Headers)
	}
	if len(req.Body) != 0 {
		t.Errorf("Expected no body, got %q", req.Body)
	}
}

func TestDecodeFirstInvalidLineStartsBody(t *testing.T) {
	raw := "PUT /notes HTTP/1.1\nHost: localhost\nthis is not a header\nLate: header"

	req, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(req.Headers) != 1 || req.Headers.Get("Host") != "localhost" {
		t.Errorf("Unexpected headers %v", req.Headers)
	}
	if string(req.Body) != "this is not a header\nLate: header" {
		t.Errorf("Unexpected body %q", req.Body)
	}
}

func TestDecodeQueryAndMissingVersion(t *testing.T) {
	req, err := Decode([]byte("GET /search?q=go"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if req.Path != "/search" || req.Query != "q=go" {
		t.Errorf("Got path %q query %q", req.Path, req.Query)
	}
	if req.Version != "" {
		t.Errorf("Expected empty version, got %q", req.Version)
	}
}

func TestDecodeEmpty(t *testing.T) {
	for _, raw := range [][]byte{nil, {}} {
		_, err := Decode(raw)
		if !errors.Is(err, ErrEmptyRequest) {
			t.Errorf("Decode(%q): expected ErrEmptyRequest, got %v", raw, err)
		}
	}
}

func TestDecodeMalformedStartLine(t *testing.T) {
	cases := []string{
		"GET",
		"\n",
		"GET index.html HTTP/1.1",
		" / HTTP/1.1",
		"G(E)T / HTTP/1.1",
	}
	for _, raw := range cases {
		_, err := Decode([]byte(raw))
		if !errors.Is(err, ErrMalformedStartLine) {
			t.Errorf("Decode(%q): expected ErrMalformedStartLine, got %v", raw, err)
		}
		if errors.Is(err, ErrEmptyRequest) {
			t.Errorf("Decode(%q): malformed start line matched ErrEmptyRequest", raw)
		}
		var de *DecodeError
		if !errors.As(err, &de) || de.Line != strings.TrimSuffix(raw, "\n") {
			t.Errorf("Decode(%q): expected a DecodeError carrying the line, got %v", raw, err)
		}
	}
}

func TestEncode(t *testing.T) {
	resp := NewResponse(200, "text/plain", []byte("hello"))
	resp.Headers.Add("X-Served-By", "test")

	got := string(Encode(resp))
	want := "HTTP/1.1 200 OK\r\n" +
		"Content-Type: text/plain\r\n" +
		"X-Served-By: test\r\n" +
		"Content-Length: 5\r\n" +
		"\r\n" +
		"hello"
	if got != want {
		t.Errorf("Got %q, want %q", got, want)
	}
}

func TestEncodeOverridesContentLength(t *testing.T) {
	body := []byte("ERROR 404: Not found.")
	resp := &Response{
		Status: 404,
		Headers: Header{
			{"content-length", "999"},
			{"Content-Type", "text/plain"},
			{"Content-Length", "1"},
		},
		Body: body,
	}

	out := Encode(resp)

	if n := strings.Count(strings.ToLower(string(out)), "content-length"); n != 1 {
		t.Fatalf("Expected exactly one Content-Length header, found %d in %q", n, out)
	}
	if !bytes.Contains(out, []byte("Content-Length: 21\r\n")) {
		t.Errorf("Missing correct Content-Length in %q", out)
	}
	if !bytes.HasSuffix(out, body) {
		t.Errorf("Body not appended verbatim: %q", out)
	}

	// Encoding never mutates the caller's headers
	if resp.Headers[0].Value != "999" {
		t.Errorf("Encode modified the response headers: %v", resp.Headers)
	}
}

func TestEncodeEmptyBody(t *testing.T) {
	out := string(Encode(&Response{Status: 204}))
	if out != "HTTP/1.1 204 No Content\r\nContent-Length: 0\r\n\r\n" {
		t.Errorf("Unexpected encoding %q", out)
	}
}

func TestHeaderSet(t *testing.T) {
	var h Header
	h.Add("Accept", "text/html")
	h.Add("accept", "text/plain")
	h.Add("Host", "localhost")

	h.Set("ACCEPT", "*/*")
	if len(h) != 2 || h[0].Key != "ACCEPT" || h[0].Value != "*/*" {
		t.Errorf("Set did not collapse fields in place: %v", h)
	}

	if h.Get("host") != "localhost" {
		t.Errorf("Set disturbed other fields: %v", h)
	}

	h.Set("Connection", "close")
	if len(h) != 3 || h[2].Key != "Connection" {
		t.Errorf("Set did not append a missing field: %v", h)
	}
}
