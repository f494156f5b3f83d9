//go:build linux
// +build linux

// File: internal/sysfd/fd_linux.go
// Linux descriptor operations via golang.org/x/sys/unix.
// License: Apache-2.0

package sysfd

import (
	"net/netip"
	"time"

	"golang.org/x/sys/unix"

	"github.com/struven/netsock/address"
)

// Socket creates a stream descriptor for the address family.
func Socket(f address.Family) (int, error) {
	var domain int
	switch f {
	case address.IPv4:
		domain = unix.AF_INET
	case address.IPv6:
		domain = unix.AF_INET6
	case address.UnixLocal:
		domain = unix.AF_UNIX
	default:
		return Invalid, unix.EAFNOSUPPORT
	}
	return unix.Socket(domain, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
}

// Close releases the descriptor.
func Close(fd int) error {
	return unix.Close(fd)
}

// Bind reserves the local endpoint for the descriptor.
func Bind(fd int, a address.Addr) error {
	sa, err := toSockaddr(a)
	if err != nil {
		return err
	}
	return unix.Bind(fd, sa)
}

// Listen transitions a bound descriptor to the listening state.
func Listen(fd int, backlog int) error {
	return unix.Listen(fd, backlog)
}

// Accept takes the next pending connection, returning the new descriptor
// and the peer endpoint.
func Accept(fd int) (int, address.Addr, error) {
	nfd, sa, err := unix.Accept4(fd, unix.SOCK_CLOEXEC)
	if err != nil {
		return Invalid, address.Addr{}, err
	}
	return nfd, fromSockaddr(sa), nil
}

// Connect initiates a connection. The raw errno is returned unchanged so
// the caller can distinguish EINPROGRESS from hard failures.
func Connect(fd int, a address.Addr) error {
	sa, err := toSockaddr(a)
	if err != nil {
		return err
	}
	return unix.Connect(fd, sa)
}

// Read performs one receive attempt.
func Read(fd int, p []byte) (int, error) {
	n, err := unix.Read(fd, p)
	if n < 0 {
		n = 0
	}
	return n, err
}

// Write performs one send attempt.
func Write(fd int, p []byte) (int, error) {
	n, err := unix.Write(fd, p)
	if n < 0 {
		n = 0
	}
	return n, err
}

// Shutdown closes one or both directions of the connection.
func Shutdown(fd int, how ShutHow) error {
	var h int
	switch how {
	case ShutReceive:
		h = unix.SHUT_RD
	case ShutSend:
		h = unix.SHUT_WR
	default:
		h = unix.SHUT_RDWR
	}
	return unix.Shutdown(fd, h)
}

// SetNonblock toggles the O_NONBLOCK flag.
func SetNonblock(fd int, nonblocking bool) error {
	return unix.SetNonblock(fd, nonblocking)
}

// Available reports the bytes immediately receivable without blocking.
func Available(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.SIOCINQ)
}

// LocalAddr returns the endpoint the descriptor is bound to.
func LocalAddr(fd int) (address.Addr, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return address.Addr{}, err
	}
	return fromSockaddr(sa), nil
}

// PeerAddr returns the endpoint of the connected peer.
func PeerAddr(fd int) (address.Addr, error) {
	sa, err := unix.Getpeername(fd)
	if err != nil {
		return address.Addr{}, err
	}
	return fromSockaddr(sa), nil
}

// TakeSocketError consumes the pending SO_ERROR value. A nil return means
// the last asynchronous operation succeeded.
func TakeSocketError(fd int) error {
	v, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return err
	}
	if v != 0 {
		return unix.Errno(v)
	}
	return nil
}

// IsWouldBlock reports whether the errno signals a retryable non-ready state.
func IsWouldBlock(err error) bool {
	return err == unix.EAGAIN || err == unix.EWOULDBLOCK
}

// IsInProgress reports whether a non-blocking connect is still pending.
func IsInProgress(err error) bool {
	return err == unix.EINPROGRESS
}

// IsConnRefused reports whether the peer actively refused the connection.
func IsConnRefused(err error) bool {
	return err == unix.ECONNREFUSED
}

// IsInterrupted reports whether a call was cut short by a signal and
// should be retried.
func IsInterrupted(err error) bool {
	return err == unix.EINTR
}

// Option plumbing. Getters return the value the kernel actually applied,
// which may differ from the requested one (SO_SNDBUF doubling etc.).

func SetNoDelay(fd int, on bool) error {
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, boolToInt(on))
}

func GetNoDelay(fd int) (bool, error) {
	v, err := unix.GetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY)
	return v != 0, err
}

func SetKeepAlive(fd int, on bool) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, boolToInt(on))
}

func GetKeepAlive(fd int) (bool, error) {
	v, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE)
	return v != 0, err
}

func SetOOBInline(fd int, on bool) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_OOBINLINE, boolToInt(on))
}

func GetOOBInline(fd int) (bool, error) {
	v, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_OOBINLINE)
	return v != 0, err
}

func SetReuseAddress(fd int, on bool) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, boolToInt(on))
}

func GetReuseAddress(fd int) (bool, error) {
	v, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR)
	return v != 0, err
}

func SetSendBufferSize(fd int, size int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, size)
}

func GetSendBufferSize(fd int) (int, error) {
	return unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF)
}

func SetReceiveBufferSize(fd int, size int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, size)
}

func GetReceiveBufferSize(fd int) (int, error) {
	return unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF)
}

func SetLinger(fd int, on bool, seconds int) error {
	l := unix.Linger{Linger: int32(seconds)}
	if on {
		l.Onoff = 1
	}
	return unix.SetsockoptLinger(fd, unix.SOL_SOCKET, unix.SO_LINGER, &l)
}

func SetSendTimeout(fd int, d time.Duration) error {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	return unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_SNDTIMEO, &tv)
}

func SetReceiveTimeout(fd int, d time.Duration) error {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	return unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Poll waits up to timeout for readiness on all descriptors at once.
// EINTR wakeups are retried with the remaining time recomputed, so the
// caller observes a single bounded wait. timeout NoTimeout blocks without
// bound.
func Poll(fds []PollFD, timeout time.Duration) (int, error) {
	raw := make([]unix.PollFd, len(fds))
	for i := range fds {
		raw[i] = unix.PollFd{Fd: int32(fds[i].FD), Events: requestedEvents(fds[i].Events)}
	}

	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		ms := -1
		if timeout >= 0 {
			remaining := time.Until(deadline)
			if remaining < 0 {
				remaining = 0
			}
			ms = int((remaining + time.Millisecond - 1) / time.Millisecond)
		}
		n, err := unix.Poll(raw, ms)
		if err == unix.EINTR {
			if timeout >= 0 && ms == 0 {
				return 0, nil
			}
			continue
		}
		if err != nil {
			return 0, err
		}
		for i := range raw {
			fds[i].Revents = returnedEvents(raw[i].Revents)
		}
		return n, nil
	}
}

func requestedEvents(e Events) int16 {
	var v int16
	if e&EventRead != 0 {
		v |= unix.POLLIN
	}
	if e&EventWrite != 0 {
		v |= unix.POLLOUT
	}
	if e&EventError != 0 {
		v |= unix.POLLPRI
	}
	return v
}

func returnedEvents(v int16) Events {
	var e Events
	if v&(unix.POLLIN|unix.POLLHUP) != 0 {
		e |= EventRead
	}
	if v&unix.POLLOUT != 0 {
		e |= EventWrite
	}
	if v&(unix.POLLERR|unix.POLLPRI|unix.POLLNVAL) != 0 {
		e |= EventError
	}
	return e
}

func toSockaddr(a address.Addr) (unix.Sockaddr, error) {
	switch a.Family() {
	case address.IPv4:
		sa := &unix.SockaddrInet4{Port: int(a.Port())}
		if ip := a.IP(); ip.IsValid() {
			sa.Addr = ip.As4()
		}
		return sa, nil
	case address.IPv6:
		sa := &unix.SockaddrInet6{Port: int(a.Port())}
		if ip := a.IP(); ip.IsValid() {
			sa.Addr = ip.As16()
		}
		return sa, nil
	case address.UnixLocal:
		return &unix.SockaddrUnix{Name: a.Path()}, nil
	default:
		return nil, unix.EAFNOSUPPORT
	}
}

func fromSockaddr(sa unix.Sockaddr) address.Addr {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return address.FromIP(netip.AddrFrom4(v.Addr), uint16(v.Port))
	case *unix.SockaddrInet6:
		return address.FromIP(netip.AddrFrom16(v.Addr), uint16(v.Port))
	case *unix.SockaddrUnix:
		a, _ := address.ParseUnix(v.Name)
		return a
	default:
		return address.Addr{}
	}
}
