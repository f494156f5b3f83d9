// File: sockets/serversocket.go
// ServerSocket: bind/listen/accept over a server-kind handle.
// License: Apache-2.0

package sockets

import (
	"github.com/struven/netsock/address"
	"github.com/struven/netsock/api"
	"github.com/struven/netsock/internal/sysfd"
)

// DefaultBacklog is used when Listen is called with a non-positive value.
const DefaultBacklog = 64

// ServerSocket is the listening facade.
type ServerSocket struct {
	Socket
}

// NewServerSocket returns a server socket with no descriptor yet.
func NewServerSocket() ServerSocket {
	return ServerSocket{Socket{h: newHandle(KindServer)}}
}

// NewServerSocketFrom converts a plain facade into a server facade. The
// handle must be server-kind; anything else fails with ErrInvalidArgument.
func NewServerSocketFrom(o Socket) (ServerSocket, error) {
	var s ServerSocket
	if err := s.Assign(o); err != nil {
		return ServerSocket{}, err
	}
	return s, nil
}

// Assign replaces the referenced handle; only server-kind handles are
// accepted.
func (s *ServerSocket) Assign(o Socket) error {
	return s.assign(o, func(k Kind) bool { return k == KindServer })
}

// Duplicate returns an independently closeable alias.
func (s *ServerSocket) Duplicate() ServerSocket {
	return ServerSocket{s.Socket.Duplicate()}
}

// Detach transfers ownership to the returned value, leaving the source nil.
func (s *ServerSocket) Detach() ServerSocket {
	return ServerSocket{s.Socket.Detach()}
}

// Bind reserves the local endpoint. For IP endpoints SO_REUSEADDR is set
// first so a recently closed listener's address can be reused.
func (s *ServerSocket) Bind(addr address.Addr) error {
	if s.h == nil {
		return api.ErrInvalidSocket
	}
	if err := s.h.materialize(addr.Family()); err != nil {
		return err
	}
	fd, err := s.fd()
	if err != nil {
		return err
	}
	if addr.Family() != address.UnixLocal {
		if err := sysfd.SetReuseAddress(fd, true); err != nil {
			return api.WrapError(api.ErrCodeInternal, "set SO_REUSEADDR", err)
		}
	}
	if err := sysfd.Bind(fd, addr); err != nil {
		return api.WrapError(api.ErrCodeInternal, "bind", err)
	}
	return nil
}

// Listen transitions the bound socket to the listening state.
func (s *ServerSocket) Listen(backlog int) error {
	fd, err := s.fd()
	if err != nil {
		return err
	}
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	if err := sysfd.Listen(fd, backlog); err != nil {
		return api.WrapError(api.ErrCodeInternal, "listen", err)
	}
	return nil
}

// Shutdown stops the socket from accepting and wakes any goroutine
// parked in AcceptConnection. Closing the descriptor alone does not
// interrupt a blocked accept; call Shutdown first when another goroutine
// may be waiting.
func (s *ServerSocket) Shutdown() error {
	fd, err := s.fd()
	if err != nil {
		return err
	}
	if err := sysfd.Shutdown(fd, sysfd.ShutBoth); err != nil {
		return api.WrapError(api.ErrCodeInternal, "shutdown listener", err)
	}
	return nil
}

// AcceptConnection waits for the next peer and returns a stream facade
// with its own fresh handle. In non-blocking mode an empty backlog
// surfaces as ErrWouldBlock.
func (s *ServerSocket) AcceptConnection() (StreamSocket, error) {
	fd, err := s.fd()
	if err != nil {
		return StreamSocket{}, err
	}
	for {
		nfd, _, err := sysfd.Accept(fd)
		if err == nil {
			h := newHandleFD(KindStream, s.h.family, nfd)
			return StreamSocket{Socket{h: h}}, nil
		}
		if isEINTR(err) {
			continue
		}
		if sysfd.IsWouldBlock(err) && !s.h.isBlocking() {
			return StreamSocket{}, api.WrapError(api.ErrCodeWouldBlock, "accept would block", err)
		}
		return StreamSocket{}, api.WrapError(api.ErrCodeInternal, "accept", err)
	}
}
