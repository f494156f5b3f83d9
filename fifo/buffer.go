// File: fifo/buffer.go
// Package fifo implements a fixed-capacity circular byte buffer that
// reports readable/writable state transitions to registered listeners.
// License: Apache-2.0

package fifo

// Buffer is a bounded FIFO over a circular byte store.
//
// The buffer is readable while it holds at least one byte and writable
// while it has free space. Listeners are notified only when one of those
// two conditions flips, never on a zero-byte operation and never twice
// for the same crossing.
//
// A Buffer is not safe for concurrent use; callers sharing one across
// goroutines must synchronize externally.
type Buffer struct {
	data   []byte
	head   int
	length int

	signals signalHub
}

// New creates a buffer with the given fixed capacity. When notify is
// false the buffer never dispatches transition signals, matching the
// cheaper inspection-only use.
func New(capacity int, notify bool) *Buffer {
	if capacity <= 0 {
		panic("fifo: capacity must be positive")
	}
	b := &Buffer{data: make([]byte, capacity)}
	b.signals.enabled = notify
	return b
}

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int { return len(b.data) }

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int { return b.length }

// Available returns the free space left in the buffer.
func (b *Buffer) Available() int { return len(b.data) - b.length }

// IsEmpty reports whether no bytes are buffered.
func (b *Buffer) IsEmpty() bool { return b.length == 0 }

// IsFull reports whether the buffer has no free space.
func (b *Buffer) IsFull() bool { return b.length == len(b.data) }

// At returns the i-th logical byte without consuming it.
func (b *Buffer) At(i int) byte {
	if i < 0 || i >= b.length {
		panic("fifo: index out of range")
	}
	return b.data[(b.head+i)%len(b.data)]
}

// Write copies as many bytes from p as fit and returns the number copied.
// Fires readable(true) on the empty-to-non-empty crossing and
// writable(false) when the buffer becomes full.
func (b *Buffer) Write(p []byte) int {
	n := len(p)
	if free := b.Available(); n > free {
		n = free
	}
	if n == 0 {
		return 0
	}
	wasEmpty := b.length == 0

	tail := (b.head + b.length) % len(b.data)
	first := copy(b.data[tail:], p[:n])
	if first < n {
		copy(b.data, p[first:n])
	}
	b.length += n

	if wasEmpty {
		b.signals.fire(sigReadable, true)
	}
	if b.IsFull() {
		b.signals.fire(sigWritable, false)
	}
	return n
}

// Read copies up to len(p) buffered bytes into p, consuming them.
// Fires readable(false) on the non-empty-to-empty crossing and
// writable(true) when a full buffer regains room.
func (b *Buffer) Read(p []byte) int {
	n := b.Peek(p)
	b.Drain(n)
	return n
}

// Peek copies up to len(p) buffered bytes into p without consuming them.
func (b *Buffer) Peek(p []byte) int {
	n := len(p)
	if n > b.length {
		n = b.length
	}
	if n == 0 {
		return 0
	}
	first := copy(p[:n], b.data[b.head:min(b.head+n, len(b.data))])
	if first < n {
		copy(p[first:n], b.data)
	}
	return n
}

// Drain consumes up to n buffered bytes and returns the number consumed.
// Same transition signals as Read.
func (b *Buffer) Drain(n int) int {
	if n > b.length {
		n = b.length
	}
	if n <= 0 {
		return 0
	}
	wasFull := b.IsFull()

	b.head = (b.head + n) % len(b.data)
	b.length -= n
	if b.length == 0 {
		b.head = 0
	}

	if b.length == 0 {
		b.signals.fire(sigReadable, false)
	}
	if wasFull {
		b.signals.fire(sigWritable, true)
	}
	return n
}

// OnReadable registers a listener for readable transitions and returns a
// token for later removal.
func (b *Buffer) OnReadable(fn SignalFunc) Token {
	return b.signals.add(sigReadable, fn)
}

// OnWritable registers a listener for writable transitions.
func (b *Buffer) OnWritable(fn SignalFunc) Token {
	return b.signals.add(sigWritable, fn)
}

// Remove unregisters a listener. Removal during dispatch is safe; the
// in-flight snapshot still sees the listener, later firings do not.
func (b *Buffer) Remove(t Token) {
	b.signals.remove(t)
}
