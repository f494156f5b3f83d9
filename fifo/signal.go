// File: fifo/signal.go
// Transition-signal dispatch for Buffer: tokenized listener registry with
// queued, re-entrancy-safe delivery.
// License: Apache-2.0

package fifo

import "github.com/eapache/queue"

// SignalFunc receives the new state of the monitored condition: true when
// the condition became asserted, false when it cleared.
type SignalFunc func(bool)

// Token identifies a registered listener.
type Token int

type signalKind int

const (
	sigReadable signalKind = iota
	sigWritable
)

type listener struct {
	tok  Token
	kind signalKind
	fn   SignalFunc
}

type transition struct {
	kind  signalKind
	value bool
}

// signalHub keeps the listener registry and a FIFO of pending transitions.
// A listener callback may itself mutate the buffer; the resulting nested
// transitions are queued and delivered in order instead of recursing.
type signalHub struct {
	enabled   bool
	nextTok   Token
	listeners []listener
	pending   *queue.Queue
	firing    bool
}

func (h *signalHub) add(kind signalKind, fn SignalFunc) Token {
	h.nextTok++
	h.listeners = append(h.listeners, listener{tok: h.nextTok, kind: kind, fn: fn})
	return h.nextTok
}

func (h *signalHub) remove(t Token) {
	for i, l := range h.listeners {
		if l.tok == t {
			h.listeners = append(h.listeners[:i], h.listeners[i+1:]...)
			return
		}
	}
}

func (h *signalHub) fire(kind signalKind, value bool) {
	if !h.enabled {
		return
	}
	if h.pending == nil {
		h.pending = queue.New()
	}
	h.pending.Add(transition{kind: kind, value: value})
	if h.firing {
		return
	}
	h.firing = true
	defer func() { h.firing = false }()

	for h.pending.Length() > 0 {
		tr := h.pending.Remove().(transition)
		// Snapshot so listeners may unregister themselves mid-dispatch.
		snapshot := make([]listener, 0, len(h.listeners))
		for _, l := range h.listeners {
			if l.kind == tr.kind {
				snapshot = append(snapshot, l)
			}
		}
		for _, l := range snapshot {
			l.fn(tr.value)
		}
	}
}
