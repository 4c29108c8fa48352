// Package httpserver serves the site over raw TCP connections: an acceptor
// hands every connection to a fixed worker pool, and each worker reads one
// request, dispatches it and writes one response.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/hashicorp/yamux"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"webserver/internal/config"
	"webserver/internal/socks"
	"webserver/internal/wire"
	"webserver/internal/xorrw"
)

// Options are the listener and pool settings of a Server
type Options struct {
	Address    string
	Threads    int
	ReadBuffer int
	QueueSize  int

	// Optional listeners, disabled while the address is empty
	TunnelAddress string
	TunnelKey     []byte
	SocksAddress  string
	SocksHostname string
}

// OptionsFromConfig extracts the server options from cfg
func OptionsFromConfig(cfg config.Config) Options {
	opts := Options{
		Address:       cfg.Server.Address,
		Threads:       cfg.Server.Threads,
		ReadBuffer:    cfg.Server.ReadBuffer,
		QueueSize:     cfg.Server.QueueSize,
		TunnelAddress: cfg.Tunnel.Address,
		SocksAddress:  cfg.Socks.Address,
		SocksHostname: cfg.Socks.Hostname,
	}
	if cfg.Tunnel.XorKey != "" {
		opts.TunnelKey = []byte(cfg.Tunnel.XorKey)
	}
	return opts
}

// Server represents the web server
type Server struct {
	opts       Options
	dispatcher *Dispatcher
	pool       *Pool
	root       zerolog.Logger
	log        zerolog.Logger

	mu        sync.Mutex
	closing   bool
	listeners map[net.Listener]struct{}
	sessions  map[*yamux.Session]struct{}
}

// NewServer creates a server and starts its worker pool
func NewServer(opts Options, dispatcher *Dispatcher, log zerolog.Logger) *Server {
	if opts.ReadBuffer <= 0 {
		opts.ReadBuffer = config.DefaultReadBuffer
	}

	s := &Server{
		opts:       opts,
		dispatcher: dispatcher,
		root:       log,
		log:        log.With().Str("component", "server").Logger(),
		listeners:  make(map[net.Listener]struct{}),
		sessions:   make(map[*yamux.Session]struct{}),
	}
	s.pool = NewPool(opts.Threads, opts.QueueSize, s.ServeConn, log)
	return s
}

// Pool returns the worker pool every listener feeds
func (s *Server) Pool() *Pool {
	return s.pool
}

// ServeConn runs one request/response exchange on conn. Malformed requests
// and failing handlers get no response. The caller closes conn.
func (s *Server) ServeConn(conn net.Conn) {
	log := s.log.With().Str("remote", remoteAddr(conn)).Logger()

	buf := make([]byte, s.opts.ReadBuffer)
	n, err := conn.Read(buf)
	if n == 0 {
		log.Debug().Err(err).Msg("connection closed before a request was read")
		return
	}

	req, err := wire.Decode(buf[:n])
	if err != nil {
		log.Debug().Err(err).Msg("dropping malformed request")
		return
	}

	resp, err := s.dispatcher.Dispatch(req)
	if err != nil {
		log.Error().Err(err).Str("method", string(req.Method)).Str("path", req.Path).Msg("dropping request")
		return
	}

	if _, err := conn.Write(wire.Encode(resp)); err != nil {
		log.Warn().Err(err).Msg("unable to send response")
		return
	}

	log.Info().
		Str("method", string(req.Method)).
		Str("path", req.Path).
		Int("status", resp.Status).
		Int("bytes", len(resp.Body)).
		Msg("request served")
}

// Serve accepts connections on ln and submits them to the worker pool. It
// returns nil once ln is closed.
func (s *Server) Serve(ln net.Listener) error {
	if !s.track(ln) {
		ln.Close()
		return nil
	}
	s.log.Info().Str("address", ln.Addr().String()).Int("threads", s.opts.Threads).Msg("listening")

	return s.acceptLoop(ln, func(conn net.Conn) {
		if err := s.pool.Submit(conn); err != nil {
			s.log.Debug().Err(err).Msg("refusing connection")
			conn.Close()
		}
	})
}

// acceptLoop calls handle for every accepted connection. Accept errors
// other than a closed listener are logged and retried with a short delay.
func (s *Server) acceptLoop(ln net.Listener, handle func(net.Conn)) error {
	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			if delay == 0 {
				delay = 5 * time.Millisecond
			} else if delay *= 2; delay > time.Second {
				delay = time.Second
			}
			s.log.Warn().Err(err).Dur("retry_in", delay).Msg("accept failed")
			time.Sleep(delay)
			continue
		}
		delay = 0
		handle(conn)
	}
}

// Run binds every configured listener and serves until ctx is done, then
// shuts down gracefully. Bind failures are returned before anything is
// served.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return fmt.Errorf("unable to bind %s: %w", s.opts.Address, err)
	}

	var tunnelLn, socksLn net.Listener
	closeAll := func() {
		for _, l := range []net.Listener{ln, tunnelLn, socksLn} {
			if l != nil {
				l.Close()
			}
		}
	}

	if s.opts.TunnelAddress != "" {
		if tunnelLn, err = s.listenTunnel(); err != nil {
			closeAll()
			return err
		}
	}

	var gateway *socks.Gateway
	if s.opts.SocksAddress != "" {
		if gateway, err = socks.NewGateway(s.opts.SocksHostname, s.pool, s.root); err != nil {
			closeAll()
			return err
		}
		if socksLn, err = net.Listen("tcp", s.opts.SocksAddress); err != nil {
			closeAll()
			return fmt.Errorf("unable to bind %s: %w", s.opts.SocksAddress, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Serve(ln) })
	if tunnelLn != nil {
		g.Go(func() error { return s.ServeTunnel(tunnelLn) })
	}
	if socksLn != nil {
		if !s.track(socksLn) {
			socksLn.Close()
		} else {
			g.Go(func() error { return gateway.Serve(socksLn) })
		}
	}
	g.Go(func() error {
		<-gctx.Done()
		s.log.Info().Msg("shutting down")
		s.Shutdown()
		return nil
	})

	return g.Wait()
}

func (s *Server) listenTunnel() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.opts.TunnelAddress)
	if err != nil {
		return nil, fmt.Errorf("unable to bind %s: %w", s.opts.TunnelAddress, err)
	}
	if len(s.opts.TunnelKey) == 0 {
		return ln, nil
	}

	xln, err := xorrw.NewListener(ln, s.opts.TunnelKey)
	if err != nil {
		ln.Close()
		return nil, err
	}
	return xln, nil
}

// Shutdown closes every listener, waits for the worker pool to finish the
// connections it already has and then closes the tunnel sessions
func (s *Server) Shutdown() {
	s.mu.Lock()
	s.closing = true
	for ln := range s.listeners {
		ln.Close()
	}
	sessions := make([]*yamux.Session, 0, len(s.sessions))
	for session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.Unlock()

	for _, session := range sessions {
		session.GoAway()
	}

	s.pool.Shutdown()

	for _, session := range sessions {
		session.Close()
	}
	s.log.Info().Msg("server stopped")
}

// track registers ln for Shutdown. It reports false once shutdown began.
func (s *Server) track(ln net.Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return false
	}
	s.listeners[ln] = struct{}{}
	return true
}
