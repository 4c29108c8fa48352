package wire

import "strings"

// Field is a single header line
type Field struct {
	Key   string
	Value string
}

// Header is an ordered list of header fields. Keys keep the case they were
// received or set with; lookups ignore case.
type Header []Field

// Get returns the value of the first field matching key
func (h Header) Get(key string) string {
	for _, f := range h {
		if strings.EqualFold(f.Key, key) {
			return f.Value
		}
	}
	return ""
}

// Add appends a field, keeping any existing fields with the same key
func (h *Header) Add(key, value string) {
	*h = append(*h, Field{Key: key, Value: value})
}

// Set replaces the first field matching key in place and drops the others.
// If no field matches, the field is appended.
func (h *Header) Set(key, value string) {
	out := (*h)[:0]
	replaced := false
	for _, f := range *h {
		if !strings.EqualFold(f.Key, key) {
			out = append(out, f)
			continue
		}
		if !replaced {
			out = append(out, Field{Key: key, Value: value})
			replaced = true
		}
	}
	if !replaced {
		out = append(out, Field{Key: key, Value: value})
	}
	*h = out
}

// Clone returns a copy that shares no storage with h
func (h Header) Clone() Header {
	if h == nil {
		return nil
	}
	out := make(Header, len(h))
	copy(out, h)
	return out
}
