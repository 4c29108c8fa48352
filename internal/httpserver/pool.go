package httpserver

import (
	"errors"
	"net"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
)

// ErrPoolClosed is returned by Submit after Shutdown
var ErrPoolClosed = errors.New("worker pool is closed")

// Pool runs a fixed number of workers pulling connections from a shared
// queue. Each connection is handled by exactly one worker and closed when
// the handler returns.
type Pool struct {
	queue  chan net.Conn
	handle func(net.Conn)
	log    zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool starts workers goroutines calling handle for every submitted
// connection. queueSize is the number of connections that may wait for a
// free worker before Submit blocks.
func NewPool(workers, queueSize int, handle func(net.Conn), log zerolog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	p := &Pool{
		queue:  make(chan net.Conn, queueSize),
		handle: handle,
		log:    log.With().Str("component", "pool").Logger(),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p
}

// Submit queues conn for a worker. It blocks while the queue is full.
func (p *Pool) Submit(conn net.Conn) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}
	p.queue <- conn
	return nil
}

// Shutdown stops accepting work and waits until every queued and running
// connection has been handled
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	log := p.log.With().Int("worker", id).Logger()
	log.Debug().Msg("worker started")

	for conn := range p.queue {
		p.serve(log, conn)
	}

	log.Debug().Msg("worker stopped")
}

// serve handles one connection. A panic drops the connection and leaves
// the worker running.
func (p *Pool) serve(log zerolog.Logger, conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("remote", remoteAddr(conn)).
				Bytes("stack", debug.Stack()).
				Msg("connection handler panicked")
		}
	}()
	defer conn.Close()

	p.handle(conn)
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
