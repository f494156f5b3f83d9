// File: sockets/handle.go
// Package sockets provides typed, copyable socket facades over shared,
// reference-counted descriptor handles.
// License: Apache-2.0

package sockets

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/struven/netsock/address"
	"github.com/struven/netsock/api"
	"github.com/struven/netsock/internal/sysfd"
)

// Kind tags a handle with the socket discipline it was created for.
// Facade conversion and assignment are only permitted between compatible
// kinds.
type Kind int

const (
	KindPlain Kind = iota
	KindStream
	KindServer
)

// String returns a readable kind name.
func (k Kind) String() string {
	switch k {
	case KindStream:
		return "stream"
	case KindServer:
		return "server"
	default:
		return "plain"
	}
}

// handle owns exactly one OS descriptor and its mutable configuration.
// Facades share a handle through atomic reference counting; the descriptor
// is closed exactly once, when the count drops to zero.
type handle struct {
	refs atomic.Int32
	kind Kind

	mu         sync.Mutex
	fd         int
	family     address.Family
	blocking   bool
	sndTimeout time.Duration
	rcvTimeout time.Duration
	lingerOn   bool
	lingerSec  int
}

// newHandle creates an unmaterialized handle: no descriptor yet, usable
// as a connect/bind target or for assignment.
func newHandle(kind Kind) *handle {
	h := &handle{kind: kind, fd: sysfd.Invalid, blocking: true}
	h.refs.Store(1)
	return h
}

// newHandleFD adopts a live descriptor, as produced by accept.
func newHandleFD(kind Kind, family address.Family, fd int) *handle {
	h := &handle{kind: kind, fd: fd, family: family, blocking: true}
	h.refs.Store(1)
	return h
}

// acquire adds one owning reference.
func (h *handle) acquire() {
	h.refs.Add(1)
}

// release drops one owning reference and closes the descriptor when the
// last one is gone. Safe under concurrent release from multiple
// goroutines; exactly one caller observes the zero transition.
func (h *handle) release() error {
	if h.refs.Add(-1) != 0 {
		return nil
	}
	h.mu.Lock()
	fd := h.fd
	h.fd = sysfd.Invalid
	h.mu.Unlock()
	if fd == sysfd.Invalid {
		return nil
	}
	return sysfd.Close(fd)
}

// materialize creates the descriptor for the given family if the handle
// does not have one yet, applying the stored blocking mode.
func (h *handle) materialize(f address.Family) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fd != sysfd.Invalid {
		return nil
	}
	fd, err := sysfd.Socket(f)
	if err != nil {
		return api.WrapError(api.ErrCodeInternal, "create socket", err)
	}
	if !h.blocking {
		if err := sysfd.SetNonblock(fd, true); err != nil {
			_ = sysfd.Close(fd)
			return api.WrapError(api.ErrCodeInternal, "set non-blocking", err)
		}
	}
	h.fd = fd
	h.family = f
	return nil
}

// liveFD returns the descriptor or ErrInvalidSocket when the handle has
// none.
func (h *handle) liveFD() (int, error) {
	h.mu.Lock()
	fd := h.fd
	h.mu.Unlock()
	if fd == sysfd.Invalid {
		return sysfd.Invalid, api.ErrInvalidSocket
	}
	return fd, nil
}

func (h *handle) setBlocking(blocking bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fd != sysfd.Invalid {
		if err := sysfd.SetNonblock(h.fd, !blocking); err != nil {
			return api.WrapError(api.ErrCodeInternal, "set blocking mode", err)
		}
	}
	h.blocking = blocking
	return nil
}

func (h *handle) isBlocking() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.blocking
}

func (h *handle) setSendTimeout(d time.Duration) { h.mu.Lock(); h.sndTimeout = d; h.mu.Unlock() }
func (h *handle) sendTimeout() time.Duration     { h.mu.Lock(); defer h.mu.Unlock(); return h.sndTimeout }
func (h *handle) setRecvTimeout(d time.Duration) { h.mu.Lock(); h.rcvTimeout = d; h.mu.Unlock() }
func (h *handle) recvTimeout() time.Duration     { h.mu.Lock(); defer h.mu.Unlock(); return h.rcvTimeout }

func (h *handle) setLinger(on bool, seconds int) {
	h.mu.Lock()
	h.lingerOn, h.lingerSec = on, seconds
	h.mu.Unlock()
}

func (h *handle) linger() (bool, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lingerOn, h.lingerSec
}
