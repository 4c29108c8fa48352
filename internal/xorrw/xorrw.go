// Package xorrw provides XOR-based obfuscation for data streams
package xorrw

import (
	"errors"
	"io"
	"net"
	"sync"
)

// ErrEmptyKey is returned when a wrapper is created without a key
var ErrEmptyKey = errors.New("xorrw: empty key")

// keyStream walks the key cyclically
type keyStream struct {
	mu  sync.Mutex
	key []byte
	pos int
}

func (k *keyStream) apply(dst, src []byte) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i := range src {
		dst[i] = src[i] ^ k.key[k.pos]
		k.pos = (k.pos + 1) % len(k.key)
	}
}

// XorReaderWriter XORs everything read from and written to the wrapped
// stream. Reads and writes keep separate key positions, so a full duplex
// peer using the same key decodes both directions.
type XorReaderWriter struct {
	rw    io.ReadWriter
	read  *keyStream
	write *keyStream
}

// NewXorReaderWriter wraps rw with key
func NewXorReaderWriter(rw io.ReadWriter, key []byte) (*XorReaderWriter, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}

	k := append([]byte(nil), key...)
	return &XorReaderWriter{
		rw:    rw,
		read:  &keyStream{key: k},
		write: &keyStream{key: k},
	}, nil
}

// Read reads data from the underlying reader and applies XOR decoding
func (x *XorReaderWriter) Read(p []byte) (int, error) {
	n, err := x.rw.Read(p)
	if n > 0 {
		x.read.apply(p[:n], p[:n])
	}
	return n, err
}

// Write writes XOR encoded data to the underlying writer
func (x *XorReaderWriter) Write(p []byte) (int, error) {
	encoded := make([]byte, len(p))
	x.write.apply(encoded, p)
	return x.rw.Write(encoded)
}

// Close closes the underlying stream if it is a Closer
func (x *XorReaderWriter) Close() error {
	if closer, ok := x.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Conn is a net.Conn whose payload is XOR obfuscated
type Conn struct {
	*XorReaderWriter
	net.Conn
}

// NewConn wraps conn with key
func NewConn(conn net.Conn, key []byte) (*Conn, error) {
	rw, err := NewXorReaderWriter(conn, key)
	if err != nil {
		return nil, err
	}
	return &Conn{XorReaderWriter: rw, Conn: conn}, nil
}

// Read decodes data from the connection
func (c *Conn) Read(p []byte) (int, error) {
	return c.XorReaderWriter.Read(p)
}

// Write encodes data to the connection
func (c *Conn) Write(p []byte) (int, error) {
	return c.XorReaderWriter.Write(p)
}

// Close closes the connection
func (c *Conn) Close() error {
	return c.Conn.Close()
}

// Listener wraps every accepted connection in a Conn
type Listener struct {
	net.Listener
	key []byte
}

// NewListener returns a Listener obfuscating connections from ln with key
func NewListener(ln net.Listener, key []byte) (*Listener, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	return &Listener{Listener: ln, key: append([]byte(nil), key...)}, nil
}

// Accept waits for the next connection and wraps it
func (l *Listener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	xc, err := NewConn(conn, l.key)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return xc, nil
}
