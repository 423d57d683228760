// Copyright 2024 The Inflate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

import "encoding/binary"

// defaultWindowBits sizes the internal window buffer at 2^w bytes. Any
// w >= 15 is correct for DEFLATE (the format's own maximum back-reference
// distance is 32 KiB); 20 is a pacing choice that amortizes eviction cost
// without growing memory use unreasonably.
const defaultWindowBits = 20

// minRetainedBytes is the minimum amount of trailing window history that
// must survive every flush, so that any back-reference with
// offset <= 32 KiB remains valid in the following block.
const minRetainedBytes = 1 << 15

const wordSize = 8 // bytes; matches bitReader's wordBytes for fast-path copies

// outputWindow is a sliding-window output manager. It owns a buffer of
// 2^w bytes into which literals and back-reference matches are written;
// once the buffer nears capacity, flush evicts the finalized prefix to
// the caller's output slice, retaining only the tail needed to satisfy
// future back-references.
type outputWindow struct {
	buf []byte
	next int // write cursor into buf

	dst      []byte // caller's output buffer
	dstPos   int    // bytes written into dst so far
	blockStart int  // next at the start of the current block, for flush pacing
}

func (w *outputWindow) init(dst []byte) {
	if w.buf == nil || cap(w.buf) < 1<<defaultWindowBits {
		w.buf = make([]byte, 1<<defaultWindowBits)
	}
	w.buf = w.buf[:1<<defaultWindowBits]
	w.next = 0
	w.dst = dst
	w.dstPos = 0
	w.blockStart = 0
}

// size reports how many bytes are currently buffered (i.e. the largest
// legal back-reference offset right now).
func (w *outputWindow) size() int { return w.next }

// available reports how much room is left in the buffer before a flush
// is required.
func (w *outputWindow) available() int { return len(w.buf) - w.next }

// push appends one literal byte.
func (w *outputWindow) push(b byte) {
	w.buf[w.next] = b
	w.next++
}

// copyMatch copies a DEFLATE back-reference: length bytes, starting
// offset bytes before the write cursor, to the write cursor. Because
// DEFLATE permits offset < length (the copy's source can overlap its own
// destination), later bytes in the copy must observe earlier bytes the
// same copy just wrote; this rules out a naive slice-copy when the
// regions overlap, hence the fast/slow paths below.
func (w *outputWindow) copyMatch(length, offset int) {
	dst := w.next
	src := dst - offset

	if offset >= wordSize && dst+length+wordSize <= len(w.buf) {
		// Fast path: copy full words at a time. Safe because the source
		// region (offset >= wordSize) never overlaps the destination
		// region within a single word-sized store, and we never read or
		// write past the window's backing array.
		i := 0
		for i < length {
			v := binary.LittleEndian.Uint64(w.buf[src+i:])
			binary.LittleEndian.PutUint64(w.buf[dst+i:], v)
			i += wordSize
		}
	} else if offset == 1 {
		// Single-byte broadcast: every copied byte equals the one byte
		// just before the destination.
		b := w.buf[dst-1]
		for i := 0; i < length; i++ {
			w.buf[dst+i] = b
		}
	} else {
		// General self-overlapping case: copy byte by byte so that a
		// byte just written can be read back as a source byte later in
		// the same copy.
		for i := 0; i < length; i++ {
			w.buf[dst+i] = w.buf[src+i]
		}
	}

	w.next += length
}

// copyLiteralBytes performs a byte-aligned bulk copy of n bytes from the
// input stream into the window (used by stored blocks).
func (w *outputWindow) copyLiteralBytes(br *bitReader, n int) {
	br.copyBytes(w.buf[w.next:w.next+n], n)
	w.next += n
}

// notifyEndBlock advances the per-block marker used to pace flush's
// eviction size. Informational only; it does not affect correctness.
func (w *outputWindow) notifyEndBlock() {
	w.blockStart = w.next
}

// flush evicts the finalized prefix of the window to the caller's output
// buffer once the window has grown large enough to need reclaiming,
// always retaining at least minRetainedBytes (or the whole window, if
// smaller) of trailing history so that back-references spanning the
// retained region remain valid.
//
// flush never evicts bytes belonging to the block currently in progress,
// so a single block whose decoded output exceeds the window with no
// intervening notifyEndBlock leaves nothing to evict. If that happens
// while the window is completely full, flush panics with errCorrupt
// instead of silently returning and letting the caller write past buf.
func (w *outputWindow) flush() {
	keepSize := w.next - w.blockStart
	if keepSize < minRetainedBytes {
		keepSize = minRetainedBytes
	}
	if w.size() <= keepSize {
		if w.available() == 0 {
			panic(errCorrupt)
		}
		return
	}
	evictSize := w.size() - keepSize

	if w.dstPos+evictSize > len(w.dst) {
		w.dstPos += copy(w.dst[w.dstPos:], w.buf[:evictSize])
		panic(errShortOutput)
	}
	copy(w.dst[w.dstPos:], w.buf[:evictSize])
	w.dstPos += evictSize

	copy(w.buf[:keepSize], w.buf[w.next-keepSize:w.next])
	w.next = keepSize
	w.blockStart -= evictSize
}

// fullFlush copies all remaining window contents to the caller's output
// buffer. Called once, after the final block has been decoded.
func (w *outputWindow) fullFlush() {
	if w.dstPos+w.size() > len(w.dst) {
		panic(errShortOutput)
	}
	copy(w.dst[w.dstPos:], w.buf[:w.size()])
	w.dstPos += w.size()
}
