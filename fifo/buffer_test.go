// Package fifo_test verifies buffer content handling and transition
// signal dispatch.
// License: Apache-2.0

package fifo_test

import (
	"bytes"
	"testing"

	"github.com/struven/netsock/fifo"
)

// transitionCounts tracks each boundary crossing separately so a test can
// assert exact, non-duplicated firing.
type transitionCounts struct {
	notToReadable int
	readableToNot int
	notToWritable int
	writableToNot int
}

func (c *transitionCounts) onReadable(v bool) {
	if v {
		c.notToReadable++
	} else {
		c.readableToNot++
	}
}

func (c *transitionCounts) onWritable(v bool) {
	if v {
		c.notToWritable++
	} else {
		c.writableToNot++
	}
}

func (c *transitionCounts) expect(t *testing.T, notToReadable, readableToNot, notToWritable, writableToNot int) {
	t.Helper()
	if c.notToReadable != notToReadable {
		t.Errorf("Expected %d not->readable transitions, got %d", notToReadable, c.notToReadable)
	}
	if c.readableToNot != readableToNot {
		t.Errorf("Expected %d readable->not transitions, got %d", readableToNot, c.readableToNot)
	}
	if c.notToWritable != notToWritable {
		t.Errorf("Expected %d not->writable transitions, got %d", notToWritable, c.notToWritable)
	}
	if c.writableToNot != writableToNot {
		t.Errorf("Expected %d writable->not transitions, got %d", writableToNot, c.writableToNot)
	}
}

// TestBuffer_TransitionCounts fills and drains a 5-byte buffer and checks
// that each crossing fires exactly once.
func TestBuffer_TransitionCounts(t *testing.T) {
	f := fifo.New(5, true)
	var counts transitionCounts
	f.OnReadable(counts.onReadable)
	f.OnWritable(counts.onWritable)

	counts.expect(t, 0, 0, 0, 0)

	n := f.Write([]byte("hello"))
	if n != 5 {
		t.Fatalf("Expected to write 5 bytes, wrote %d", n)
	}
	counts.expect(t, 1, 0, 0, 1)

	// Writing into a full buffer is a no-op and must not re-fire.
	if n := f.Write([]byte("x")); n != 0 {
		t.Errorf("Expected 0 bytes written into full buffer, got %d", n)
	}
	counts.expect(t, 1, 0, 0, 1)

	out := make([]byte, 5)
	n = f.Read(out)
	if n != 5 || !bytes.Equal(out, []byte("hello")) {
		t.Fatalf("Expected to read back %q, got %q (%d bytes)", "hello", out[:n], n)
	}
	counts.expect(t, 1, 1, 1, 1)

	// Draining an empty buffer must not re-fire either.
	if n := f.Drain(3); n != 0 {
		t.Errorf("Expected 0 bytes drained from empty buffer, got %d", n)
	}
	counts.expect(t, 1, 1, 1, 1)

	f.Write([]byte("hello"))
	counts.expect(t, 2, 1, 1, 2)
}

// TestBuffer_PartialTransitions checks that intermediate fill levels do
// not fire anything.
func TestBuffer_PartialTransitions(t *testing.T) {
	f := fifo.New(8, true)
	var counts transitionCounts
	f.OnReadable(counts.onReadable)
	f.OnWritable(counts.onWritable)

	f.Write([]byte("ab"))
	counts.expect(t, 1, 0, 0, 0)
	f.Write([]byte("cd"))
	counts.expect(t, 1, 0, 0, 0)

	f.Drain(3)
	counts.expect(t, 1, 0, 0, 0)
	f.Drain(1)
	counts.expect(t, 1, 1, 0, 0)
}

// TestBuffer_WrapAround exercises the circular cursors across the
// capacity boundary.
func TestBuffer_WrapAround(t *testing.T) {
	f := fifo.New(4, false)
	f.Write([]byte("abc"))
	f.Drain(2)
	n := f.Write([]byte("def"))
	if n != 3 {
		t.Fatalf("Expected to write 3 bytes across the wrap, wrote %d", n)
	}
	if f.Len() != 4 {
		t.Fatalf("Expected length 4, got %d", f.Len())
	}
	want := "cdef"
	for i := 0; i < f.Len(); i++ {
		if f.At(i) != want[i] {
			t.Errorf("Expected At(%d) == %q, got %q", i, want[i], f.At(i))
		}
	}
	out := make([]byte, 8)
	n = f.Read(out)
	if string(out[:n]) != want {
		t.Errorf("Expected to read %q, got %q", want, out[:n])
	}
}

// TestBuffer_Peek verifies non-consuming reads.
func TestBuffer_Peek(t *testing.T) {
	f := fifo.New(8, false)
	f.Write([]byte("hello"))

	p := make([]byte, 3)
	if n := f.Peek(p); n != 3 || string(p) != "hel" {
		t.Errorf("Expected to peek %q, got %q (%d bytes)", "hel", p[:n], n)
	}
	if f.Len() != 5 {
		t.Errorf("Expected peek to leave length 5, got %d", f.Len())
	}
}

// TestBuffer_RemoveListener checks that removed listeners stop receiving.
func TestBuffer_RemoveListener(t *testing.T) {
	f := fifo.New(2, true)
	var fired int
	tok := f.OnReadable(func(bool) { fired++ })

	f.Write([]byte("a"))
	if fired != 1 {
		t.Fatalf("Expected 1 firing before removal, got %d", fired)
	}
	f.Remove(tok)
	f.Drain(1)
	f.Write([]byte("b"))
	if fired != 1 {
		t.Errorf("Expected no firings after removal, got %d", fired)
	}
}

// TestBuffer_RemoveDuringDispatch removes a listener from inside its own
// callback; the removal must not corrupt dispatch.
func TestBuffer_RemoveDuringDispatch(t *testing.T) {
	f := fifo.New(2, true)
	var first, second int
	var tok fifo.Token
	tok = f.OnReadable(func(bool) {
		first++
		f.Remove(tok)
	})
	f.OnReadable(func(bool) { second++ })

	f.Write([]byte("a"))
	if first != 1 || second != 1 {
		t.Fatalf("Expected both listeners to see the first firing, got %d/%d", first, second)
	}
	f.Drain(1)
	f.Write([]byte("b"))
	if first != 1 {
		t.Errorf("Expected removed listener to stay silent, got %d firings", first)
	}
	if second != 3 {
		t.Errorf("Expected remaining listener to see all 3 transitions, got %d", second)
	}
}

// TestBuffer_NestedDispatch drains the buffer from inside the readable
// callback; the resulting transition must be delivered afterwards, in
// order, not recursively dropped.
func TestBuffer_NestedDispatch(t *testing.T) {
	f := fifo.New(4, true)
	var order []bool
	f.OnReadable(func(v bool) {
		order = append(order, v)
		if v {
			f.Drain(f.Len())
		}
	})

	f.Write([]byte("ab"))
	if len(order) != 2 || order[0] != true || order[1] != false {
		t.Errorf("Expected ordered transitions [true false], got %v", order)
	}
}

// TestBuffer_NotifyDisabled checks that a non-notifying buffer never
// dispatches.
func TestBuffer_NotifyDisabled(t *testing.T) {
	f := fifo.New(2, false)
	var fired int
	f.OnReadable(func(bool) { fired++ })
	f.OnWritable(func(bool) { fired++ })

	f.Write([]byte("ab"))
	f.Drain(2)
	if fired != 0 {
		t.Errorf("Expected no firings with notify disabled, got %d", fired)
	}
}
