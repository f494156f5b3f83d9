// File: sockets/socket.go
// Plain socket facade: shared-handle lifecycle, readiness polling and the
// socket option surface common to all kinds.
// License: Apache-2.0

package sockets

import (
	"fmt"
	"time"

	"github.com/struven/netsock/address"
	"github.com/struven/netsock/api"
	"github.com/struven/netsock/internal/sysfd"
)

// PollMode is a bit mask of readiness interests for Poll and Select.
type PollMode int

const (
	SelectRead PollMode = 1 << iota
	SelectWrite
	SelectError
)

// Socket is a copyable facade over a shared handle. Copying the value
// aliases the handle without changing its reference count; use Duplicate
// to create an independently closeable alias. The zero value is a nil
// socket usable only as an assignment target.
type Socket struct {
	h *handle
}

// NewSocket returns a plain-kind socket with no descriptor.
func NewSocket() Socket {
	return Socket{h: newHandle(KindPlain)}
}

// IsNil reports whether the facade references no handle.
func (s *Socket) IsNil() bool { return s.h == nil }

// Kind reports the discipline of the underlying handle.
func (s *Socket) Kind() Kind {
	if s.h == nil {
		return KindPlain
	}
	return s.h.kind
}

// Equal reports whether two facades share the same handle.
func (s *Socket) Equal(o Socket) bool { return s.h == o.h }

// Duplicate returns a new facade owning one additional reference to the
// handle. Every duplicate must be closed independently.
func (s *Socket) Duplicate() Socket {
	if s.h == nil {
		return Socket{}
	}
	s.h.acquire()
	return Socket{h: s.h}
}

// Detach transfers this facade's reference to the returned value and
// leaves the source nil. This is the ownership-transfer primitive: the
// source is emptied, never left as a live alias.
func (s *Socket) Detach() Socket {
	moved := Socket{h: s.h}
	s.h = nil
	return moved
}

// Assign replaces the referenced handle with o's. The plain facade
// accepts any kind.
func (s *Socket) Assign(o Socket) error {
	return s.assign(o, nil)
}

// assign implements kind-checked handle replacement shared by all
// facades. Acquire-before-release makes self-assignment harmless.
func (s *Socket) assign(o Socket, accept func(Kind) bool) error {
	if o.h != nil && accept != nil && !accept(o.h.kind) {
		return api.WrapError(api.ErrCodeInvalidArgument,
			fmt.Sprintf("cannot assign %s socket", o.h.kind), nil)
	}
	if o.h != nil {
		o.h.acquire()
	}
	if s.h != nil {
		_ = s.h.release()
	}
	s.h = o.h
	return nil
}

// Close releases this facade's reference. The descriptor is closed when
// the last reference is released. The facade is nil afterwards, so a
// second Close is a no-op.
func (s *Socket) Close() error {
	if s.h == nil {
		return nil
	}
	err := s.h.release()
	s.h = nil
	return err
}

// Poll waits up to timeout for the socket to become ready for any of the
// requested modes. A negative timeout waits without bound. Error
// conditions count as readiness so the caller's next I/O attempt can
// surface them.
func (s *Socket) Poll(timeout time.Duration, mode PollMode) (bool, error) {
	fd, err := s.fd()
	if err != nil {
		return false, err
	}
	fds := []sysfd.PollFD{{FD: fd, Events: pollEvents(mode)}}
	n, err := sysfd.Poll(fds, timeout)
	if err != nil {
		return false, api.WrapError(api.ErrCodeInternal, "poll", err)
	}
	if n == 0 {
		return false, nil
	}
	return fds[0].Revents&(pollEvents(mode)|sysfd.EventError) != 0, nil
}

// Available reports the number of bytes that can be received without
// blocking. Advisory only.
func (s *Socket) Available() (int, error) {
	fd, err := s.fd()
	if err != nil {
		return 0, err
	}
	n, err := sysfd.Available(fd)
	if err != nil {
		return 0, api.WrapError(api.ErrCodeInternal, "query available bytes", err)
	}
	return n, nil
}

// SetBlocking toggles blocking mode on the shared handle. In non-blocking
// mode send and receive never block and return ErrWouldBlock when not
// ready; the caller pairs them with Poll.
func (s *Socket) SetBlocking(blocking bool) error {
	if s.h == nil {
		return api.ErrInvalidSocket
	}
	return s.h.setBlocking(blocking)
}

// IsBlocking reports the configured blocking mode.
func (s *Socket) IsBlocking() bool {
	if s.h == nil {
		return true
	}
	return s.h.isBlocking()
}

// Address returns the local endpoint the socket is bound to.
func (s *Socket) Address() (address.Addr, error) {
	fd, err := s.fd()
	if err != nil {
		return address.Addr{}, err
	}
	a, err := sysfd.LocalAddr(fd)
	if err != nil {
		return address.Addr{}, api.WrapError(api.ErrCodeInternal, "local address", err)
	}
	return a, nil
}

// PeerAddress returns the remote endpoint of a connected socket.
func (s *Socket) PeerAddress() (address.Addr, error) {
	fd, err := s.fd()
	if err != nil {
		return address.Addr{}, err
	}
	a, err := sysfd.PeerAddr(fd)
	if err != nil {
		return address.Addr{}, api.WrapError(api.ErrCodeInternal, "peer address", err)
	}
	return a, nil
}

func (s *Socket) fd() (int, error) {
	if s.h == nil {
		return sysfd.Invalid, api.ErrInvalidSocket
	}
	return s.h.liveFD()
}

func pollEvents(mode PollMode) sysfd.Events {
	var e sysfd.Events
	if mode&SelectRead != 0 {
		e |= sysfd.EventRead
	}
	if mode&SelectWrite != 0 {
		e |= sysfd.EventWrite
	}
	if mode&SelectError != 0 {
		e |= sysfd.EventError
	}
	return e
}
