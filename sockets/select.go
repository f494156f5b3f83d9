// File: sockets/select.go
// Batched readiness evaluation over socket lists.
// License: Apache-2.0

package sockets

import (
	"time"

	"github.com/struven/netsock/api"
	"github.com/struven/netsock/internal/sysfd"
)

// SocketList is an ordered collection of socket facades submitted to
// Select.
type SocketList []Socket

// Select waits up to timeout for any socket in the three interest lists
// to become ready, then filters each list in place down to its ready
// members and returns the total number of (socket, interest) readiness
// events. Every simultaneously ready socket is reported; none is starved.
//
// Empty lists are a valid no-op: the call waits out the timeout and
// returns 0. A negative timeout waits without bound.
func Select(read, write, except *SocketList, timeout time.Duration) (int, error) {
	lists := [3]*SocketList{read, write, except}
	interest := [3]sysfd.Events{sysfd.EventRead, sysfd.EventWrite, sysfd.EventError}

	var fds []sysfd.PollFD
	for li, list := range lists {
		if list == nil {
			continue
		}
		for _, s := range *list {
			fd, err := s.fd()
			if err != nil {
				return 0, api.WrapError(api.ErrCodeInvalidSocket,
					"select on a socket without a descriptor", err)
			}
			fds = append(fds, sysfd.PollFD{FD: fd, Events: interest[li]})
		}
	}

	n, err := sysfd.Poll(fds, timeout)
	if err != nil {
		return 0, api.WrapError(api.ErrCodeInternal, "select", err)
	}
	if n == 0 {
		for _, list := range lists {
			if list != nil {
				*list = (*list)[:0]
			}
		}
		return 0, nil
	}

	total := 0
	idx := 0
	for li, list := range lists {
		if list == nil {
			continue
		}
		ready := (*list)[:0]
		for _, s := range *list {
			// Error conditions make a socket ready for any interest so
			// the next I/O attempt can surface them.
			if fds[idx].Revents&(interest[li]|sysfd.EventError) != 0 {
				ready = append(ready, s)
				total++
			}
			idx++
		}
		*list = ready
	}
	return total, nil
}
