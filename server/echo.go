// File: server/echo.go
// Package server implements the echo-server harness built on the sockets
// and fifo layers. It doubles as the integration fixture for the socket
// tests.
// License: Apache-2.0

package server

import (
	"errors"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/struven/netsock/address"
	"github.com/struven/netsock/api"
	"github.com/struven/netsock/control"
	"github.com/struven/netsock/fifo"
	"github.com/struven/netsock/sockets"
)

// Option customizes echo-server initialization.
type Option func(*EchoServer)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *EchoServer) { s.log = log }
}

// WithMetrics attaches a shared counter registry.
func WithMetrics(m *control.Metrics) Option {
	return func(s *EchoServer) { s.metrics = m }
}

// EchoServer accepts stream connections and echoes every received byte
// back through a per-connection FIFO buffer.
type EchoServer struct {
	cfg     *control.Config
	log     *zap.Logger
	metrics *control.Metrics

	sock     sockets.ServerSocket
	addr     address.Addr
	unixPath string

	group   *errgroup.Group
	closing atomic.Bool

	mu       sync.Mutex
	nextConn int
	conns    map[int]sockets.StreamSocket
}

// New binds, listens and starts accepting. With the default config the
// server takes an ephemeral loopback port; use Port to learn it.
func New(cfg *control.Config, opts ...Option) (*EchoServer, error) {
	if cfg == nil {
		cfg = control.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &EchoServer{
		cfg:     cfg,
		log:     zap.NewNop(),
		metrics: control.NewMetrics(),
		conns:   make(map[int]sockets.StreamSocket),
	}
	for _, o := range opts {
		o(s)
	}

	addr, err := cfg.Address()
	if err != nil {
		return nil, err
	}
	if addr.Family() == address.UnixLocal {
		// A stale socket file from a previous run would fail the bind.
		_ = os.Remove(addr.Path())
		s.unixPath = addr.Path()
	}

	s.sock = sockets.NewServerSocket()
	if err := s.sock.Bind(addr); err != nil {
		return nil, err
	}
	if err := s.sock.Listen(cfg.Backlog); err != nil {
		_ = s.sock.Close()
		return nil, err
	}
	if s.addr, err = s.sock.Address(); err != nil {
		_ = s.sock.Close()
		return nil, err
	}

	s.log.Info("echo server listening", zap.String("addr", s.addr.String()))
	s.group = new(errgroup.Group)
	s.group.Go(s.acceptLoop)
	return s, nil
}

// Address returns the endpoint the server is listening on.
func (s *EchoServer) Address() address.Addr { return s.addr }

// Port returns the bound port; for ephemeral binds this is the port the
// OS chose.
func (s *EchoServer) Port() uint16 { return s.addr.Port() }

// Metrics exposes the counter registry.
func (s *EchoServer) Metrics() *control.Metrics { return s.metrics }

// Close stops accepting, shuts down the open connections and waits for
// the connection goroutines to drain.
func (s *EchoServer) Close() error {
	if !s.closing.CompareAndSwap(false, true) {
		return nil
	}
	// Wake the accept loop out of the kernel before releasing the
	// descriptor; close alone leaves a parked accept blocked.
	_ = s.sock.Shutdown()
	err := s.sock.Close()

	s.mu.Lock()
	for id, dup := range s.conns {
		_ = dup.Shutdown()
		_ = dup.Close()
		delete(s.conns, id)
	}
	s.mu.Unlock()

	if werr := s.group.Wait(); err == nil {
		err = werr
	}
	if s.unixPath != "" {
		_ = os.Remove(s.unixPath)
	}
	s.log.Info("echo server stopped",
		zap.Int64("connections", s.metrics.Get("connections")),
		zap.Int64("bytes_in", s.metrics.Get("bytes_in")),
		zap.Int64("bytes_out", s.metrics.Get("bytes_out")))
	return err
}

func (s *EchoServer) acceptLoop() error {
	for {
		conn, err := s.sock.AcceptConnection()
		if err != nil {
			if s.closing.Load() {
				return nil
			}
			s.log.Error("accept failed", zap.Error(err))
			return err
		}
		s.metrics.Add("connections", 1)

		id := s.register(conn)
		s.group.Go(func() error {
			defer s.unregister(id)
			s.serve(conn)
			return nil
		})
	}
}

// register keeps a duplicate facade so Close can shut the connection
// down and unblock its goroutine.
func (s *EchoServer) register(conn sockets.StreamSocket) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextConn++
	s.conns[s.nextConn] = conn.Duplicate()
	return s.nextConn
}

func (s *EchoServer) unregister(id int) {
	s.mu.Lock()
	dup, ok := s.conns[id]
	delete(s.conns, id)
	s.mu.Unlock()
	if ok {
		_ = dup.Close()
	}
}

func (s *EchoServer) serve(conn sockets.StreamSocket) {
	defer func() { _ = conn.Close() }()

	if idle := s.cfg.IdleTimeout.Std(); idle > 0 {
		if err := conn.SetReceiveTimeout(idle); err != nil {
			s.log.Warn("set idle timeout", zap.Error(err))
		}
	}

	buf := fifo.New(s.cfg.BufferSize, true)
	buf.OnWritable(func(v bool) {
		if !v {
			s.metrics.Add("fifo_full", 1)
		}
	})

	for {
		n, err := conn.ReceiveFIFO(buf)
		if err != nil {
			if !s.closing.Load() && !errors.Is(err, api.ErrTimeout) {
				s.log.Debug("receive failed", zap.Error(err))
			}
			return
		}
		if n == 0 {
			return // orderly peer shutdown
		}
		s.metrics.Add("bytes_in", int64(n))

		for !buf.IsEmpty() {
			w, err := conn.SendFIFO(buf)
			if err != nil {
				s.log.Debug("send failed", zap.Error(err))
				return
			}
			s.metrics.Add("bytes_out", int64(w))
		}
	}
}
