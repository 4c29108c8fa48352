package httpserver

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/hashicorp/yamux"
)

// TunnelConfig returns the yamux settings used for tunnel sessions
func (s *Server) TunnelConfig() *yamux.Config {
	config := yamux.DefaultConfig()
	config.EnableKeepAlive = true
	config.KeepAliveInterval = 30 * time.Second
	config.ConnectionWriteTimeout = 10 * time.Second
	config.LogOutput = s.root.With().Str("component", "yamux").Logger()
	return config
}

// ServeTunnel accepts multiplexed carrier connections on ln. Every stream
// opened by the peer is one request connection and goes to the worker
// pool. It returns nil once ln is closed.
func (s *Server) ServeTunnel(ln net.Listener) error {
	if !s.track(ln) {
		ln.Close()
		return nil
	}
	s.log.Info().Str("address", ln.Addr().String()).Msg("tunnel listening")

	return s.acceptLoop(ln, func(carrier net.Conn) {
		go s.serveSession(carrier)
	})
}

// serveSession handles a yamux session and its streams
func (s *Server) serveSession(carrier net.Conn) {
	log := s.log.With().Str("remote", remoteAddr(carrier)).Logger()

	session, err := yamux.Server(carrier, s.TunnelConfig())
	if err != nil {
		log.Warn().Err(err).Msg("failed creating yamux session")
		carrier.Close()
		return
	}
	if !s.addSession(session) {
		session.Close()
		return
	}
	defer s.removeSession(session)
	defer session.Close()

	log.Debug().Msg("tunnel session started")

	for {
		stream, err := session.Accept()
		if err != nil {
			if !errors.Is(err, io.EOF) && !session.IsClosed() {
				log.Warn().Err(err).Msg("failed accepting yamux stream")
			}
			break
		}

		if err := s.pool.Submit(stream); err != nil {
			log.Debug().Err(err).Msg("refusing stream")
			stream.Close()
		}
	}

	log.Debug().Msg("tunnel session closed")
}

func (s *Server) addSession(session *yamux.Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return false
	}
	s.sessions[session] = struct{}{}
	return true
}

func (s *Server) removeSession(session *yamux.Session) {
	s.mu.Lock()
	delete(s.sessions, session)
	s.mu.Unlock()
}
