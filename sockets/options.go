// File: sockets/options.go
// Socket option accessors. Setters map 1:1 onto the OS option; getters
// report the value actually in effect, which the kernel may have adjusted
// from the requested one (SO_SNDBUF doubling, timeout granularity).
// License: Apache-2.0

package sockets

import (
	"time"

	"github.com/struven/netsock/api"
	"github.com/struven/netsock/internal/sysfd"
)

func (s *Socket) SetNoDelay(on bool) error {
	fd, err := s.fd()
	if err != nil {
		return err
	}
	return optErr("set TCP_NODELAY", sysfd.SetNoDelay(fd, on))
}

func (s *Socket) GetNoDelay() (bool, error) {
	fd, err := s.fd()
	if err != nil {
		return false, err
	}
	v, err := sysfd.GetNoDelay(fd)
	return v, optErr("get TCP_NODELAY", err)
}

func (s *Socket) SetKeepAlive(on bool) error {
	fd, err := s.fd()
	if err != nil {
		return err
	}
	return optErr("set SO_KEEPALIVE", sysfd.SetKeepAlive(fd, on))
}

func (s *Socket) GetKeepAlive() (bool, error) {
	fd, err := s.fd()
	if err != nil {
		return false, err
	}
	v, err := sysfd.GetKeepAlive(fd)
	return v, optErr("get SO_KEEPALIVE", err)
}

func (s *Socket) SetOOBInline(on bool) error {
	fd, err := s.fd()
	if err != nil {
		return err
	}
	return optErr("set SO_OOBINLINE", sysfd.SetOOBInline(fd, on))
}

func (s *Socket) GetOOBInline() (bool, error) {
	fd, err := s.fd()
	if err != nil {
		return false, err
	}
	v, err := sysfd.GetOOBInline(fd)
	return v, optErr("get SO_OOBINLINE", err)
}

func (s *Socket) SetReuseAddress(on bool) error {
	fd, err := s.fd()
	if err != nil {
		return err
	}
	return optErr("set SO_REUSEADDR", sysfd.SetReuseAddress(fd, on))
}

func (s *Socket) GetReuseAddress() (bool, error) {
	fd, err := s.fd()
	if err != nil {
		return false, err
	}
	v, err := sysfd.GetReuseAddress(fd)
	return v, optErr("get SO_REUSEADDR", err)
}

func (s *Socket) SetSendBufferSize(size int) error {
	fd, err := s.fd()
	if err != nil {
		return err
	}
	return optErr("set SO_SNDBUF", sysfd.SetSendBufferSize(fd, size))
}

func (s *Socket) GetSendBufferSize() (int, error) {
	fd, err := s.fd()
	if err != nil {
		return 0, err
	}
	v, err := sysfd.GetSendBufferSize(fd)
	return v, optErr("get SO_SNDBUF", err)
}

func (s *Socket) SetReceiveBufferSize(size int) error {
	fd, err := s.fd()
	if err != nil {
		return err
	}
	return optErr("set SO_RCVBUF", sysfd.SetReceiveBufferSize(fd, size))
}

func (s *Socket) GetReceiveBufferSize() (int, error) {
	fd, err := s.fd()
	if err != nil {
		return 0, err
	}
	v, err := sysfd.GetReceiveBufferSize(fd)
	return v, optErr("get SO_RCVBUF", err)
}

// SetLinger configures close-time lingering: when on, Close blocks up to
// seconds while unsent data drains.
func (s *Socket) SetLinger(on bool, seconds int) error {
	fd, err := s.fd()
	if err != nil {
		return err
	}
	if err := sysfd.SetLinger(fd, on, seconds); err != nil {
		return optErr("set SO_LINGER", err)
	}
	s.h.setLinger(on, seconds)
	return nil
}

// GetLinger returns the configured linger state.
func (s *Socket) GetLinger() (on bool, seconds int, err error) {
	if _, err = s.fd(); err != nil {
		return false, 0, err
	}
	on, seconds = s.h.linger()
	return on, seconds, nil
}

// SetSendTimeout bounds every blocking send; an elapsed timeout surfaces
// as ErrTimeout and leaves the socket usable.
func (s *Socket) SetSendTimeout(d time.Duration) error {
	fd, err := s.fd()
	if err != nil {
		return err
	}
	if err := sysfd.SetSendTimeout(fd, d); err != nil {
		return optErr("set SO_SNDTIMEO", err)
	}
	s.h.setSendTimeout(d)
	return nil
}

// GetSendTimeout returns the configured send timeout.
func (s *Socket) GetSendTimeout() (time.Duration, error) {
	if _, err := s.fd(); err != nil {
		return 0, err
	}
	return s.h.sendTimeout(), nil
}

// SetReceiveTimeout bounds every blocking receive the same way.
func (s *Socket) SetReceiveTimeout(d time.Duration) error {
	fd, err := s.fd()
	if err != nil {
		return err
	}
	if err := sysfd.SetReceiveTimeout(fd, d); err != nil {
		return optErr("set SO_RCVTIMEO", err)
	}
	s.h.setRecvTimeout(d)
	return nil
}

// GetReceiveTimeout returns the configured receive timeout.
func (s *Socket) GetReceiveTimeout() (time.Duration, error) {
	if _, err := s.fd(); err != nil {
		return 0, err
	}
	return s.h.recvTimeout(), nil
}

func optErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return api.WrapError(api.ErrCodeInternal, op, err)
}
