//go:build !linux
// +build !linux

// File: internal/sysfd/fd_stub.go
// Stub descriptor operations for platforms without a native implementation.
// License: Apache-2.0

package sysfd

import (
	"time"

	"github.com/struven/netsock/address"
	"github.com/struven/netsock/api"
)

func Socket(f address.Family) (int, error)           { return Invalid, api.ErrNotSupported }
func Close(fd int) error                             { return api.ErrNotSupported }
func Bind(fd int, a address.Addr) error              { return api.ErrNotSupported }
func Listen(fd int, backlog int) error               { return api.ErrNotSupported }
func Accept(fd int) (int, address.Addr, error)       { return Invalid, address.Addr{}, api.ErrNotSupported }
func Connect(fd int, a address.Addr) error           { return api.ErrNotSupported }
func Read(fd int, p []byte) (int, error)             { return 0, api.ErrNotSupported }
func Write(fd int, p []byte) (int, error)            { return 0, api.ErrNotSupported }
func Shutdown(fd int, how ShutHow) error             { return api.ErrNotSupported }
func SetNonblock(fd int, nonblocking bool) error     { return api.ErrNotSupported }
func Available(fd int) (int, error)                  { return 0, api.ErrNotSupported }
func LocalAddr(fd int) (address.Addr, error)         { return address.Addr{}, api.ErrNotSupported }
func PeerAddr(fd int) (address.Addr, error)          { return address.Addr{}, api.ErrNotSupported }
func TakeSocketError(fd int) error                   { return api.ErrNotSupported }
func IsWouldBlock(err error) bool                    { return false }
func IsInProgress(err error) bool                    { return false }
func IsConnRefused(err error) bool                   { return false }
func IsInterrupted(err error) bool                   { return false }
func SetNoDelay(fd int, on bool) error               { return api.ErrNotSupported }
func GetNoDelay(fd int) (bool, error)                { return false, api.ErrNotSupported }
func SetKeepAlive(fd int, on bool) error             { return api.ErrNotSupported }
func GetKeepAlive(fd int) (bool, error)              { return false, api.ErrNotSupported }
func SetOOBInline(fd int, on bool) error             { return api.ErrNotSupported }
func GetOOBInline(fd int) (bool, error)              { return false, api.ErrNotSupported }
func SetReuseAddress(fd int, on bool) error          { return api.ErrNotSupported }
func GetReuseAddress(fd int) (bool, error)           { return false, api.ErrNotSupported }
func SetSendBufferSize(fd int, size int) error       { return api.ErrNotSupported }
func GetSendBufferSize(fd int) (int, error)          { return 0, api.ErrNotSupported }
func SetReceiveBufferSize(fd int, size int) error    { return api.ErrNotSupported }
func GetReceiveBufferSize(fd int) (int, error)       { return 0, api.ErrNotSupported }
func SetLinger(fd int, on bool, seconds int) error   { return api.ErrNotSupported }
func SetSendTimeout(fd int, d time.Duration) error   { return api.ErrNotSupported }
func SetReceiveTimeout(fd int, d time.Duration) error { return api.ErrNotSupported }

func Poll(fds []PollFD, timeout time.Duration) (int, error) {
	return 0, api.ErrNotSupported
}
