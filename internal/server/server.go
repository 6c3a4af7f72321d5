// Package server implements the pronound request loop.
//
// A client opens a TCP connection, sends a single line holding an
// account name or numeric user ID, and receives a single line back: the
// first line of that account's preference file, the configured default,
// or "user not found". One connection is served at a time.
package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pronound/pronound/internal/config"
	"github.com/pronound/pronound/internal/identity"
)

const (
	// MaxLineLen bounds the request line and the response. Longer input
	// is truncated, never overrun.
	MaxLineLen = 256

	// NotFound is the reply for tokens that resolve to no account.
	NotFound = "user not found\n"
)

// Options contains options for the server.
type Options struct {
	// Resolver maps identity tokens to accounts. Defaults to the host
	// account database.
	Resolver identity.Resolver

	// Logger receives per-connection and reload errors. Defaults to the
	// standard logger.
	Logger *log.Logger

	// ReadTimeout is the maximum time to wait for a request line. A slow
	// client stalls every other client, so reads never wait forever.
	// Defaults to 10s.
	ReadTimeout time.Duration

	// ListenAddr overrides the listen address. Mainly for tests.
	// Defaults to ":<port>" from the configuration.
	ListenAddr string

	// OnReload is called after a successful configuration reload with
	// the new configuration.
	OnReload func(config.Config)
}

func (o *Options) resolver() identity.Resolver {
	if o == nil || o.Resolver == nil {
		return identity.System{}
	}
	return o.Resolver
}

func (o *Options) logger() *log.Logger {
	if o == nil || o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}

func (o *Options) readTimeout() time.Duration {
	if o == nil || o.ReadTimeout == 0 {
		return 10 * time.Second
	}
	return o.ReadTimeout
}

func (o *Options) listenAddr(cfg config.Config) string {
	if o == nil || o.ListenAddr == "" {
		return cfg.Addr()
	}
	return o.ListenAddr
}

func (o *Options) onReload() func(config.Config) {
	if o == nil || o.OnReload == nil {
		return func(config.Config) {}
	}
	return o.OnReload
}

// Server answers pronoun queries over TCP.
type Server struct {
	cfg    config.Config
	path   string
	opts   *Options
	ln     net.Listener
	reload chan struct{}
}

// New creates a server with an initial configuration. path is the config
// file re-read on [Server.Reload].
func New(cfg config.Config, path string, opts *Options) *Server {
	return &Server{
		cfg:    cfg,
		path:   path,
		opts:   opts,
		reload: make(chan struct{}, 1),
	}
}

// Listen binds the listening socket. It is separate from [Server.Serve]
// so the caller can drop privileges after the bind but before serving.
// Address reuse comes from net's default listener socket options.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.opts.listenAddr(s.cfg))
	if err != nil {
		return err
	}
	s.ln = ln
	return nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Reload requests a configuration reload. Safe to call from a signal
// handling goroutine; the reparse happens on the serving goroutine
// between requests, so a request never observes a half-applied
// configuration.
func (s *Server) Reload() {
	select {
	case s.reload <- struct{}{}:
	default:
	}
}

// Serve answers requests until ctx is canceled. Connections are serviced
// one at a time; accept and read failures are logged and the loop
// continues.
func (s *Server) Serve(ctx context.Context) error {
	conns := make(chan net.Conn)
	go s.acceptLoop(conns)
	for {
		select {
		case <-ctx.Done():
			s.ln.Close()
			// Close any connection accepted but not yet serviced.
			select {
			case conn := <-conns:
				conn.Close()
			default:
			}
			return nil
		case <-s.reload:
			s.reloadConfig()
		case conn := <-conns:
			s.serveConn(conn)
		}
	}
}

func (s *Server) acceptLoop(conns chan<- net.Conn) {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.opts.logger().Printf("Accept error: %v", err)
			continue
		}
		conns <- conn
	}
}

func (s *Server) reloadConfig() {
	cfg, err := config.Load(s.path, s.cfg)
	if err != nil {
		s.opts.logger().Printf("Config reload failed, keeping previous config: %v", err)
		return
	}
	if cfg.Port != s.cfg.Port {
		// The socket is bound and privileges are gone.
		s.opts.logger().Printf("Ignoring port change to %d: a restart is required", cfg.Port)
		cfg.Port = s.cfg.Port
	}
	s.cfg = cfg
	s.opts.onReload()(cfg)
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(s.opts.readTimeout()))
	line, err := readLine(conn)
	if err != nil {
		s.opts.logger().Printf("Read error from %v: %v", conn.RemoteAddr(), err)
		return
	}
	resp := s.respond(strings.TrimSpace(line))
	if _, err := io.WriteString(conn, resp); err != nil {
		s.opts.logger().Printf("Write error to %v: %v", conn.RemoteAddr(), err)
	}
}

// respond produces the reply for one already-trimmed request token. The
// reply always ends in exactly one newline.
func (s *Server) respond(token string) string {
	u, err := s.opts.resolver().Resolve(token)
	if err != nil {
		return NotFound
	}
	return s.preference(u)
}

// preference returns the first line of the account's preference file, or
// the configured default if the file is missing, unreadable, or blank.
// Unreadable files deliberately get the same answer as missing ones; the
// wire protocol has no error channel.
func (s *Server) preference(u identity.User) string {
	path := filepath.Join(u.HomeDir, s.cfg.File)
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.opts.logger().Printf("Open error for %v: %v", path, err)
		}
		return s.cfg.Defaults
	}
	defer f.Close()
	line, err := readLine(f)
	if err != nil {
		return s.cfg.Defaults
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return s.cfg.Defaults
	}
	return line + "\n"
}

// readLine reads up to MaxLineLen bytes of the first line of r. Input
// longer than the cap is truncated at it.
func readLine(r io.Reader) (string, error) {
	br := bufio.NewReaderSize(io.LimitReader(r, MaxLineLen), MaxLineLen)
	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if line == "" && err != nil {
		return "", err
	}
	return line, nil
}
