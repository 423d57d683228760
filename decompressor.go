// Copyright 2024 The Inflate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

import "runtime"

// A Decompressor holds the scratch state needed to decode a DEFLATE
// stream: precode/litlen/offset length and decode-table buffers, the
// Huffman table-building working space, and a reusable output window.
// Reusing a Decompressor across calls to Decompress avoids reallocating
// this scratch state (in particular the window's multi-megabyte buffer)
// for every call.
//
// A Decompressor is not safe for concurrent use by multiple goroutines.
type Decompressor struct {
	precodeLens [numPrecodeSyms]byte
	lens        [numLitlenSyms + numOffsetSyms + lensOverrun]byte

	precodeTable [precodeEnough]uint32
	litlenTable  [litlenEnough]uint32
	offsetTable  [offsetEnough]uint32

	ws huffmanWorkingSpace

	win outputWindow
}

// NewDecompressor allocates a Decompressor ready for repeated use.
func NewDecompressor() *Decompressor {
	return &Decompressor{}
}

// Decompress decompresses the raw DEFLATE stream src into dst, returning
// the number of bytes written. dst must be large enough to hold the
// entire decompressed output; if it is not, Decompress returns
// (n, StatusShortOutput, err) with n equal to however many bytes fit.
//
// Decompress does not require the caller to know the decompressed size
// in advance, unlike DecompressExact.
func (d *Decompressor) Decompress(dst, src []byte) (n int, status Status, err error) {
	defer func() {
		switch ex := recover().(type) {
		case nil:
			// Do nothing.
		case runtime.Error:
			// A runtime error (index out of range, nil dereference, ...)
			// indicates a bug in this package, not corrupt input; let it
			// crash the caller rather than reporting it as bad data.
			panic(ex)
		case error:
			err = ex
			status = statusForError(err)
			n = d.win.dstPos
		default:
			panic(ex)
		}
	}()

	d.win.init(dst)
	var br bitReader
	br.init(src)

	for {
		isFinal := d.doBlock(&br, &d.win)
		if isFinal {
			break
		}
	}
	d.win.fullFlush()

	return d.win.dstPos, StatusOK, nil
}

// DecompressExact behaves like Decompress, but additionally requires the
// decompressed output to be exactly wantLen bytes. This lets a caller
// that already knows the exact uncompressed size (e.g. from a zlib or
// gzip container's trailer) catch a truncated or corrupted stream
// earlier, and without needing to over-allocate dst.
//
// If dst is shorter than wantLen, DecompressExact returns
// StatusInsufficientSpace without attempting to decode anything.
func (d *Decompressor) DecompressExact(dst, src []byte, wantLen int) (n int, status Status, err error) {
	if len(dst) < wantLen {
		return 0, StatusInsufficientSpace, Error("dst shorter than wantLen")
	}
	n, status, err = d.Decompress(dst[:wantLen], src)
	if err == nil && n != wantLen {
		return n, StatusShortOutput, errShortOutput
	}
	return n, status, err
}
