// Package sockets_test: multiplexer coverage for Select over socket lists.
// License: Apache-2.0

package sockets_test

import (
	"testing"
	"time"

	"github.com/struven/netsock/sockets"
)

// TestSelect drives one socket through the idle, writable, and readable
// phases of a Select call and checks the list rewriting each time.
func TestSelect(t *testing.T) {
	srv := startEcho(t)
	ss := connectEcho(t, srv)

	readList := sockets.SocketList{ss.Socket}
	writeList := sockets.SocketList{}
	exceptList := sockets.SocketList{}

	start := time.Now()
	n, err := sockets.Select(&readList, &writeList, &exceptList, 1*time.Second)
	if err != nil {
		t.Fatalf("Expected select to succeed, got %v", err)
	}
	if n != 0 {
		t.Errorf("Expected no ready sockets on idle select, got %d", n)
	}
	if elapsed := time.Since(start); elapsed < 900*time.Millisecond {
		t.Errorf("Expected idle select to wait at least 900ms, waited %s", elapsed)
	}
	if len(readList) != 0 {
		t.Errorf("Expected read list to be emptied on timeout, got %d entries", len(readList))
	}

	writeList = sockets.SocketList{ss.Socket}
	n, err = sockets.Select(&readList, &writeList, &exceptList, 1*time.Second)
	if err != nil {
		t.Fatalf("Expected select to succeed, got %v", err)
	}
	if n != 1 {
		t.Errorf("Expected one writable socket, got %d", n)
	}
	if len(writeList) != 1 || !writeList[0].Equal(ss.Socket) {
		t.Errorf("Expected write list to retain the connected socket")
	}

	if _, err := ss.SendBytes([]byte("hello")); err != nil {
		t.Fatalf("Expected send to succeed, got %v", err)
	}
	readList = sockets.SocketList{ss.Socket}
	writeList = sockets.SocketList{}
	n, err = sockets.Select(&readList, &writeList, &exceptList, 2*time.Second)
	if err != nil {
		t.Fatalf("Expected select to succeed, got %v", err)
	}
	if n != 1 {
		t.Errorf("Expected one readable socket, got %d", n)
	}
	if len(readList) != 1 || !readList[0].Equal(ss.Socket) {
		t.Fatalf("Expected read list to retain the readable socket")
	}
	got := receiveFull(t, ss, 5)
	if string(got) != "hello" {
		t.Errorf("Expected to receive %q, got %q", "hello", got)
	}
}

// TestSelectFiltersReady connects two sockets, makes only one readable,
// and verifies Select keeps exactly that one in the read list.
func TestSelectFiltersReady(t *testing.T) {
	srv := startEcho(t)
	ss1 := connectEcho(t, srv)
	ss2 := connectEcho(t, srv)

	if _, err := ss1.SendBytes([]byte("hello")); err != nil {
		t.Fatalf("Expected send to succeed, got %v", err)
	}

	// Wait for the echo so readiness is deterministic.
	ready, err := ss1.Poll(2*time.Second, sockets.SelectRead)
	if err != nil || !ready {
		t.Fatalf("Expected echoed data on ss1, ready=%v err=%v", ready, err)
	}

	readList := sockets.SocketList{ss1.Socket, ss2.Socket}
	writeList := sockets.SocketList{}
	exceptList := sockets.SocketList{}
	n, err := sockets.Select(&readList, &writeList, &exceptList, 2*time.Second)
	if err != nil {
		t.Fatalf("Expected select to succeed, got %v", err)
	}
	if n != 1 {
		t.Errorf("Expected exactly one ready socket, got %d", n)
	}
	if len(readList) != 1 || !readList[0].Equal(ss1.Socket) {
		t.Fatalf("Expected only the socket with pending data to remain")
	}
	got := receiveFull(t, ss1, 5)
	if string(got) != "hello" {
		t.Errorf("Expected to receive %q, got %q", "hello", got)
	}

	// A socket listed for both read and write interest counts once per
	// list entry.
	readList = sockets.SocketList{ss1.Socket, ss2.Socket}
	writeList = sockets.SocketList{ss1.Socket, ss2.Socket}
	n, err = sockets.Select(&readList, &writeList, &exceptList, 2*time.Second)
	if err != nil {
		t.Fatalf("Expected select to succeed, got %v", err)
	}
	if n != 2 {
		t.Errorf("Expected both sockets writable and none readable, got %d", n)
	}
	if len(readList) != 0 {
		t.Errorf("Expected no readable sockets, got %d", len(readList))
	}
	if len(writeList) != 2 {
		t.Errorf("Expected two writable sockets, got %d", len(writeList))
	}
}

// TestSelectEmpty asserts the timed-sleep behavior when every interest
// list is empty.
func TestSelectEmpty(t *testing.T) {
	readList := sockets.SocketList{}
	writeList := sockets.SocketList{}
	exceptList := sockets.SocketList{}

	start := time.Now()
	n, err := sockets.Select(&readList, &writeList, &exceptList, 1*time.Second)
	if err != nil {
		t.Fatalf("Expected empty select to succeed, got %v", err)
	}
	if n != 0 {
		t.Errorf("Expected zero ready sockets, got %d", n)
	}
	if elapsed := time.Since(start); elapsed < 900*time.Millisecond {
		t.Errorf("Expected empty select to sleep the timeout, waited %s", elapsed)
	}
}
