// File: sockets/stream.go
// StreamSocket: connect and byte-transfer operations over a stream-kind
// handle, including FIFO-buffer staged I/O.
// License: Apache-2.0

package sockets

import (
	"time"

	"github.com/struven/netsock/address"
	"github.com/struven/netsock/api"
	"github.com/struven/netsock/fifo"
	"github.com/struven/netsock/internal/sysfd"
)

// StreamSocket is the connectable, byte-transferring facade.
type StreamSocket struct {
	Socket
}

// NewStreamSocket returns a stream socket with no descriptor yet; the
// descriptor is created on the first connect for the target family.
func NewStreamSocket() StreamSocket {
	return StreamSocket{Socket{h: newHandle(KindStream)}}
}

// NewStreamSocketFor returns a stream socket with a live, unconnected
// descriptor for the family, so options can be inspected before connect.
func NewStreamSocketFor(f address.Family) (StreamSocket, error) {
	s := NewStreamSocket()
	if err := s.h.materialize(f); err != nil {
		return StreamSocket{}, err
	}
	return s, nil
}

// NewStreamSocketFrom converts a plain facade into a stream facade. The
// handle must be stream-kind; anything else fails with ErrInvalidArgument.
func NewStreamSocketFrom(o Socket) (StreamSocket, error) {
	var s StreamSocket
	if err := s.Assign(o); err != nil {
		return StreamSocket{}, err
	}
	return s, nil
}

// Assign replaces the referenced handle; only stream-kind handles are
// accepted.
func (s *StreamSocket) Assign(o Socket) error {
	return s.assign(o, func(k Kind) bool { return k == KindStream })
}

// Duplicate returns an independently closeable alias.
func (s *StreamSocket) Duplicate() StreamSocket {
	return StreamSocket{s.Socket.Duplicate()}
}

// Detach transfers ownership to the returned value, leaving the source nil.
func (s *StreamSocket) Detach() StreamSocket {
	return StreamSocket{s.Socket.Detach()}
}

// Connect establishes a connection, blocking until the attempt succeeds
// or fails. An actively refusing peer surfaces as ErrConnectionRefused.
func (s *StreamSocket) Connect(addr address.Addr) error {
	if s.h == nil {
		return api.ErrInvalidSocket
	}
	if !s.h.isBlocking() {
		return api.NewError(api.ErrCodeInvalidArgument,
			"blocking connect on a non-blocking socket; use ConnectNB")
	}
	if err := s.h.materialize(addr.Family()); err != nil {
		return err
	}
	fd, err := s.fd()
	if err != nil {
		return err
	}
	for {
		err = sysfd.Connect(fd, addr)
		if err == nil {
			return nil
		}
		if isEINTR(err) {
			continue
		}
		return connectError(err)
	}
}

// ConnectTimeout races a non-blocking connect against the deadline.
// Readiness-poll results are converted into success, ErrConnectionRefused,
// or ErrTimeout. The socket's configured blocking mode is restored
// afterwards.
func (s *StreamSocket) ConnectTimeout(addr address.Addr, timeout time.Duration) error {
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
	if err := sysfd.SetNonblock(fd, true); err != nil {
		return api.WrapError(api.ErrCodeInternal, "set non-blocking", err)
	}
	defer func() {
		_ = sysfd.SetNonblock(fd, !s.h.isBlocking())
	}()

	err = sysfd.Connect(fd, addr)
	switch {
	case err == nil:
		return nil
	case sysfd.IsInProgress(err):
	default:
		return connectError(err)
	}

	fds := []sysfd.PollFD{{FD: fd, Events: sysfd.EventWrite | sysfd.EventError}}
	n, err := sysfd.Poll(fds, timeout)
	if err != nil {
		return api.WrapError(api.ErrCodeInternal, "poll for connect", err)
	}
	if n == 0 {
		return api.WrapError(api.ErrCodeTimeout, "connect timed out", nil)
	}
	if err := sysfd.TakeSocketError(fd); err != nil {
		return connectError(err)
	}
	return nil
}

// ConnectNB initiates a connect without waiting for completion. The
// caller resolves the outcome by polling for writability.
func (s *StreamSocket) ConnectNB(addr address.Addr) error {
	if s.h == nil {
		return api.ErrInvalidSocket
	}
	if err := s.h.materialize(addr.Family()); err != nil {
		return err
	}
	if err := s.h.setBlocking(false); err != nil {
		return err
	}
	fd, err := s.fd()
	if err != nil {
		return err
	}
	err = sysfd.Connect(fd, addr)
	if err == nil || sysfd.IsInProgress(err) {
		return nil
	}
	return connectError(err)
}

// SendBytes performs at most one transfer attempt and returns the number
// of bytes written. With a configured send timeout the attempt is bounded
// and fails with ErrTimeout when no progress was possible in time.
func (s *StreamSocket) SendBytes(p []byte) (int, error) {
	fd, err := s.fd()
	if err != nil {
		return 0, err
	}
	blocking := s.h.isBlocking()
	if blocking {
		if d := s.h.sendTimeout(); d > 0 {
			ready, err := s.Poll(d, SelectWrite)
			if err != nil {
				return 0, err
			}
			if !ready {
				return 0, api.WrapError(api.ErrCodeTimeout, "send timed out", nil)
			}
		}
	}
	for {
		n, err := sysfd.Write(fd, p)
		if err == nil {
			return n, nil
		}
		if isEINTR(err) {
			continue
		}
		return 0, ioError("send", err, blocking)
	}
}

// ReceiveBytes performs at most one transfer attempt. A zero count with a
// nil error signals orderly peer shutdown. With a configured receive
// timeout an idle wait fails with ErrTimeout while the socket stays
// usable.
func (s *StreamSocket) ReceiveBytes(p []byte) (int, error) {
	fd, err := s.fd()
	if err != nil {
		return 0, err
	}
	blocking := s.h.isBlocking()
	if blocking {
		if d := s.h.recvTimeout(); d > 0 {
			ready, err := s.Poll(d, SelectRead)
			if err != nil {
				return 0, err
			}
			if !ready {
				return 0, api.WrapError(api.ErrCodeTimeout, "receive timed out", nil)
			}
		}
	}
	for {
		n, err := sysfd.Read(fd, p)
		if err == nil {
			return n, nil
		}
		if isEINTR(err) {
			continue
		}
		return 0, ioError("receive", err, blocking)
	}
}

// SendFIFO drains the buffer into the socket, firing the buffer's own
// transition events for the consumed bytes.
func (s *StreamSocket) SendFIFO(f *fifo.Buffer) (int, error) {
	if f.IsEmpty() {
		return 0, nil
	}
	staged := make([]byte, f.Len())
	f.Peek(staged)
	n, err := s.SendBytes(staged)
	f.Drain(n)
	return n, err
}

// ReceiveFIFO fills the buffer's free space from the socket, firing the
// buffer's transition events for the stored bytes.
func (s *StreamSocket) ReceiveFIFO(f *fifo.Buffer) (int, error) {
	room := f.Available()
	if room == 0 {
		return 0, nil
	}
	staged := make([]byte, room)
	n, err := s.ReceiveBytes(staged)
	if n > 0 {
		f.Write(staged[:n])
	}
	return n, err
}

// ShutdownSend closes the write side of the connection, letting the peer
// observe an orderly end of stream.
func (s *StreamSocket) ShutdownSend() error {
	return s.shutdown(sysfd.ShutSend)
}

// ShutdownReceive closes the read side of the connection.
func (s *StreamSocket) ShutdownReceive() error {
	return s.shutdown(sysfd.ShutReceive)
}

// Shutdown closes both directions without releasing the descriptor.
func (s *StreamSocket) Shutdown() error {
	return s.shutdown(sysfd.ShutBoth)
}

func (s *StreamSocket) shutdown(how sysfd.ShutHow) error {
	fd, err := s.fd()
	if err != nil {
		return err
	}
	if err := sysfd.Shutdown(fd, how); err != nil {
		return api.WrapError(api.ErrCodeInternal, "shutdown", err)
	}
	return nil
}

func isEINTR(err error) bool { return sysfd.IsInterrupted(err) }

func connectError(err error) error {
	if sysfd.IsConnRefused(err) {
		return api.WrapError(api.ErrCodeConnectionRefused, "connect", err)
	}
	return api.WrapError(api.ErrCodeInternal, "connect", err)
}

func ioError(op string, err error, blocking bool) error {
	if sysfd.IsWouldBlock(err) {
		if blocking {
			return api.WrapError(api.ErrCodeTimeout, op+" timed out", err)
		}
		return api.WrapError(api.ErrCodeWouldBlock, op+" would block", err)
	}
	return api.WrapError(api.ErrCodeInternal, op, err)
}
