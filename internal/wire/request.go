// Package wire converts between raw HTTP/1.x bytes and request/response values.
//
// The decoder is deliberately lenient: it works on whatever a single socket
// read produced, scans header lines until the first line that is not shaped
// like "Key: Value", and treats everything from there on as the body.
package wire

import (
	"fmt"
	"strings"
)

// Method is an HTTP request method
type Method string

// Common request methods
const (
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodOptions Method = "OPTIONS"
)

// Request is a decoded HTTP request
type Request struct {
	Method  Method
	Path    string
	Query   string
	Version string
	Headers Header
	Body    []byte
}

// ErrorKind classifies a decode failure
type ErrorKind int

const (
	// KindEmptyRequest means the input contained no lines at all
	KindEmptyRequest ErrorKind = iota + 1
	// KindMalformedStartLine means the request line has no usable method and path
	KindMalformedStartLine
)

func (k ErrorKind) String() string {
	switch k {
	case KindEmptyRequest:
		return "empty request"
	case KindMalformedStartLine:
		return "malformed start line"
	default:
		return "unknown decode error"
	}
}

// DecodeError is returned by Decode
type DecodeError struct {
	Kind ErrorKind
	Line string
}

func (e *DecodeError) Error() string {
	if e.Line == "" {
		return "wire: " + e.Kind.String()
	}
	return fmt.Sprintf("wire: %s: %q", e.Kind, e.Line)
}

// Is lets errors.Is match a DecodeError against the sentinel of its kind
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	return ok && t.Line == "" && t.Kind == e.Kind
}

// Sentinel decode errors, matched with errors.Is
var (
	ErrEmptyRequest       error = &DecodeError{Kind: KindEmptyRequest}
	ErrMalformedStartLine error = &DecodeError{Kind: KindMalformedStartLine}
)

// Decode parses raw request bytes.
//
// The first line is split on spaces into method, target and an optional
// version. Following lines are headers, split on the first ": " whatever
// the key looks like. The first
// line that does not split is where the body begins; if that line is the
// blank separator it is consumed, otherwise it is the first body line.
// Body lines are joined back with "\n".
func Decode(raw []byte) (*Request, error) {
	lines := splitLines(string(raw))
	if len(lines) == 0 {
		return nil, ErrEmptyRequest
	}

	req, err := parseStartLine(lines[0])
	if err != nil {
		return nil, err
	}

	rest := lines[1:]
	i := 0
	for ; i < len(rest); i++ {
		key, value, ok := splitHeader(rest[i])
		if !ok {
			break
		}
		req.Headers.Add(key, value)
	}

	if i < len(rest) && rest[i] == "" {
		i++
	}
	if i < len(rest) {
		req.Body = []byte(strings.Join(rest[i:], "\n"))
	}

	return req, nil
}

func parseStartLine(line string) (*Request, error) {
	fields := strings.Split(line, " ")
	if len(fields) < 2 {
		return nil, &DecodeError{Kind: KindMalformedStartLine, Line: line}
	}

	method, target := fields[0], fields[1]
	if !isToken(method) || !strings.HasPrefix(target, "/") {
		return nil, &DecodeError{Kind: KindMalformedStartLine, Line: line}
	}

	req := &Request{Method: Method(method)}
	req.Path, req.Query, _ = strings.Cut(target, "?")
	if len(fields) > 2 {
		req.Version = fields[2]
	}
	return req, nil
}

// splitHeader splits on the first ": " only, so values may contain ": ".
// Keys are not validated.
func splitHeader(line string) (string, string, bool) {
	return strings.Cut(line, ": ")
}

// splitLines splits on "\n", strips a trailing "\r" from every line and does
// not produce an empty final line for input that ends with a newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// isToken reports whether s is a non-empty RFC 7230 token
func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		case strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0:
		default:
			return false
		}
	}
	return true
}
