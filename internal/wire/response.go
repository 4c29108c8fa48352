package wire

import (
	"bytes"
	"net/http"
	"strconv"
)

// Version is written on every status line
const Version = "HTTP/1.1"

// Response is an HTTP response waiting to be encoded
type Response struct {
	Status  int
	Headers Header
	Body    []byte
}

// NewResponse builds a response with a Content-Type header
func NewResponse(status int, contentType string, body []byte) *Response {
	resp := &Response{
		Status: status,
		Body:   body,
	}
	if contentType != "" {
		resp.Headers.Set("Content-Type", contentType)
	}
	return resp
}

// Encode serializes resp. The status line, each header and the blank
// separator end with CRLF; the body follows untouched. Content-Length is
// always set from len(Body), replacing whatever the caller put there.
func Encode(resp *Response) []byte {
	headers := resp.Headers.Clone()
	headers.Set("Content-Length", strconv.Itoa(len(resp.Body)))

	var buf bytes.Buffer
	buf.Grow(64 + len(resp.Body))

	// Status line
	buf.WriteString(Version)
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(resp.Status))
	if reason := http.StatusText(resp.Status); reason != "" {
		buf.WriteByte(' ')
		buf.WriteString(reason)
	}
	buf.WriteString("\r\n")

	for _, f := range headers {
		buf.WriteString(f.Key)
		buf.WriteString(": ")
		buf.WriteString(f.Value)
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")

	buf.Write(resp.Body)
	return buf.Bytes()
}
