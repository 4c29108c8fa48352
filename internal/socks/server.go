// Package socks provides a SOCKS5 front door to the site. Clients CONNECT to
// the configured hostname and the connection is served in process: nothing
// is ever dialed on the network.
package socks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"

	"github.com/armon/go-socks5"
	"github.com/rs/zerolog"
)

// VirtualIP is what the configured hostname resolves to
var VirtualIP = net.IPv4(198, 18, 0, 1)

// ErrUnknownHost is returned when a client asks for any other hostname
var ErrUnknownHost = errors.New("socks: unknown host")

// Submitter accepts connections to serve
type Submitter interface {
	Submit(conn net.Conn) error
}

// Gateway is a SOCKS5 server whose only destination is the site
type Gateway struct {
	hostname string
	pool     Submitter
	server   *socks5.Server
	log      zerolog.Logger
}

// NewGateway creates a gateway answering CONNECT requests for hostname by
// submitting one end of an in-memory pipe to pool
func NewGateway(hostname string, pool Submitter, logger zerolog.Logger) (*Gateway, error) {
	if hostname == "" {
		return nil, errors.New("socks: empty hostname")
	}

	g := &Gateway{
		hostname: hostname,
		pool:     pool,
		log:      logger.With().Str("component", "socks").Logger(),
	}

	conf := &socks5.Config{
		Resolver: hostResolver{hostname: hostname},
		Rules:    connectRule{hostname: hostname},
		Dial:     g.dial,
		Logger:   log.New(g.log, "", 0),
	}

	server, err := socks5.New(conf)
	if err != nil {
		return nil, fmt.Errorf("socks: %w", err)
	}
	g.server = server
	return g, nil
}

// Serve accepts SOCKS5 clients on ln until it is closed
func (g *Gateway) Serve(ln net.Listener) error {
	g.log.Info().Str("address", ln.Addr().String()).Str("hostname", g.hostname).Msg("SOCKS5 gateway listening")

	err := g.server.Serve(ln)
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// dial is reached only for requests the rule set allowed
func (g *Gateway) dial(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	if ip := net.ParseIP(host); ip == nil || !ip.Equal(VirtualIP) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHost, addr)
	}

	local := &net.TCPAddr{IP: VirtualIP}
	if p, err := net.LookupPort(network, port); err == nil {
		local.Port = p
	}

	client, server := net.Pipe()
	if err := g.pool.Submit(&pipeConn{Conn: server, local: local, remote: local}); err != nil {
		client.Close()
		server.Close()
		return nil, err
	}

	g.log.Debug().Str("address", addr).Msg("connection handed to worker pool")
	return &pipeConn{Conn: client, local: local, remote: local}, nil
}

// pipeConn reports TCP addresses; go-socks5 builds its reply from the
// LocalAddr of the dialed connection and expects a *net.TCPAddr
type pipeConn struct {
	net.Conn
	local  *net.TCPAddr
	remote *net.TCPAddr
}

// Read skips the empty chunks go-socks5 writes into the pipe while it
// proxies, so a reader never sees n == 0 with a nil error
func (p *pipeConn) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	for {
		n, err := p.Conn.Read(b)
		if n > 0 || err != nil {
			return n, err
		}
	}
}

func (p *pipeConn) LocalAddr() net.Addr {
	return p.local
}

func (p *pipeConn) RemoteAddr() net.Addr {
	return p.remote
}

// hostResolver knows a single name
type hostResolver struct {
	hostname string
}

func (r hostResolver) Resolve(ctx context.Context, name string) (context.Context, net.IP, error) {
	if !strings.EqualFold(name, r.hostname) {
		return ctx, nil, fmt.Errorf("%w: %s", ErrUnknownHost, name)
	}
	return ctx, VirtualIP, nil
}

// connectRule permits CONNECT to the site hostname only
type connectRule struct {
	hostname string
}

func (c connectRule) Allow(ctx context.Context, req *socks5.Request) (context.Context, bool) {
	if req.Command != socks5.ConnectCommand || req.DestAddr == nil {
		return ctx, false
	}
	return ctx, strings.EqualFold(req.DestAddr.FQDN, c.hostname)
}
