// File: internal/sysfd/sysfd.go
// Package sysfd wraps raw socket descriptor operations behind a
// platform-neutral surface. Real implementations live in the platform
// files; unsupported platforms get stubs returning api.ErrNotSupported.
// License: Apache-2.0

package sysfd

import "time"

// Invalid is the sentinel descriptor value for a handle without a socket.
const Invalid = -1

// Events is a bit mask of readiness interests.
type Events int16

const (
	EventRead Events = 1 << iota
	EventWrite
	EventError
)

// PollFD pairs one descriptor with requested and returned readiness.
type PollFD struct {
	FD      int
	Events  Events
	Revents Events
}

// ShutHow selects which direction of a connection to shut down.
type ShutHow int

const (
	ShutReceive ShutHow = iota
	ShutSend
	ShutBoth
)

// NoTimeout requests an unbounded wait from Poll.
const NoTimeout time.Duration = -1
