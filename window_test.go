// Copyright 2024 The Inflate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

import (
	"bytes"
	"testing"
)

func TestOutputWindowPushAndCopyMatch(t *testing.T) {
	var w outputWindow
	dst := make([]byte, 32)
	w.init(dst)

	for _, b := range []byte("AB") {
		w.push(b)
	}
	// offset=2 copies "AB" repeatedly: length=6 -> "ABABAB".
	w.copyMatch(6, 2)
	w.notifyEndBlock()
	w.fullFlush()

	want := []byte("ABABABAB")
	if !bytes.Equal(dst[:w.dstPos], want) {
		t.Fatalf("got %q, want %q", dst[:w.dstPos], want)
	}
}

func TestOutputWindowBroadcastCopy(t *testing.T) {
	var w outputWindow
	dst := make([]byte, 300)
	w.init(dst)

	w.push(0x5A)
	w.copyMatch(257, 1) // total 258 copies of 0x5A (the maximum DEFLATE match length)
	w.notifyEndBlock()
	w.fullFlush()

	want := bytes.Repeat([]byte{0x5A}, 258)
	if !bytes.Equal(dst[:w.dstPos], want) {
		t.Fatalf("got %d bytes, want %d bytes of 0x5A", w.dstPos, len(want))
	}
}

func TestOutputWindowSelfOverlapSlowPath(t *testing.T) {
	var w outputWindow
	dst := make([]byte, 32)
	w.init(dst)

	for _, b := range []byte("XY") {
		w.push(b)
	}
	// offset=3 with length > offset forces the byte-wise fallback (offset
	// is neither >= wordSize nor == 1).
	w.push('Z')
	w.copyMatch(5, 3) // source wraps back into bytes this copy itself wrote
	w.notifyEndBlock()
	w.fullFlush()

	want := []byte("XYZXYZXY") // offset=3 makes "XYZ" repeat with period 3
	if !bytes.Equal(dst[:w.dstPos], want) {
		t.Fatalf("got %q, want %q", dst[:w.dstPos], want)
	}
}

func TestOutputWindowFlushRetainsHistory(t *testing.T) {
	// Bypass init to use a buffer much smaller than the real
	// defaultWindowBits size, so this test can force several actual
	// flush evictions without pushing a million-plus bytes.
	w := outputWindow{buf: make([]byte, minRetainedBytes+32)}
	dst := make([]byte, 1<<17)
	w.dst = dst

	// Push more than minRetainedBytes worth of literals across many
	// single-byte blocks; the buffer is sized just above minRetainedBytes
	// so this forces at least one flush eviction partway through, while
	// still keeping enough trailing history for a later long-distance
	// match.
	for i := 0; i < minRetainedBytes+100; i++ {
		if w.available() == 0 {
			w.flush()
		}
		w.push(byte(i))
		w.notifyEndBlock()
	}

	// The byte pushed 100 iterations before the last one must still be
	// reachable via a back-reference of offset 100.
	if w.available() == 0 {
		w.flush()
	}
	w.copyMatch(1, 100)
	w.notifyEndBlock()
	w.fullFlush()

	if w.dstPos != minRetainedBytes+101 {
		t.Fatalf("dstPos = %d, want %d", w.dstPos, minRetainedBytes+101)
	}
	if dst[w.dstPos-1] != dst[w.dstPos-1-100] {
		t.Fatalf("back-referenced byte %d does not match source byte %d",
			dst[w.dstPos-1], dst[w.dstPos-1-100])
	}
}

func TestOutputWindowShortOutputPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != errShortOutput {
			t.Fatalf("recovered %v, want errShortOutput", r)
		}
	}()
	var w outputWindow
	dst := make([]byte, 1)
	w.init(dst)
	w.push('A')
	w.push('B')
	w.notifyEndBlock()
	w.fullFlush()
}
