// Copyright 2024 The Inflate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package inflate implements a full-buffer DEFLATE (RFC 1951) decompressor.
//
// Unlike compress/flate, this package has no streaming Reader. Decompress
// and DecompressExact consume an entire compressed byte sequence and
// produce the entire decompressed output in one call, into a
// caller-supplied buffer. This matches the contract of libraries such as
// libdeflate: allocation of the output buffer, and of any container
// format wrapping the raw DEFLATE stream (zlib, gzip, checksums), is the
// caller's responsibility.
package inflate

const (
	maxPrecodeCodewordLen = 7
	maxLitlenCodewordLen  = 15
	maxOffsetCodewordLen  = 15

	numPrecodeSyms = 19
	numLitlenSyms  = 288 // 257 literals/lengths + 1 end-of-block, up to 288
	numOffsetSyms  = 32

	endOfBlockSym = 256

	minMatchLen = 3
	maxMatchLen = 258
	minOffset   = 1
	maxOffset   = 32768

	precodeTableBits = 7
	litlenTableBits  = 10
	offsetTableBits  = 8

	precodeEnough = 128 // enough 19 7 7
	litlenEnough  = 1334 // enough 288 10 15
	offsetEnough  = 402 // enough 32 8 15

	// lensOverrun absorbs the worst case run-length expansion: presym 18
	// can write up to 138 lengths starting one past the last symbol.
	lensOverrun = 138
)

// precodeLensPermutation is the order in which precode codeword lengths
// are stored in a dynamic Huffman block header (RFC 1951 section 3.2.7).
var precodeLensPermutation = [numPrecodeSyms]uint8{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}

// lengthBase and lengthExtraBits give, for litlen symbols 257..285, the
// base match length and number of extra length bits (RFC 1951 section
// 3.2.5).
var (
	lengthBase = [...]uint16{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
	}
	lengthExtraBits = [...]uint8{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
	}
)

// offsetBase and offsetExtraBits give, for offset symbols 0..29, the base
// match offset and number of extra offset bits (RFC 1951 section 3.2.5).
// Symbols 30 and 31 never appear in a valid stream (RFC 1951 section
// 3.2.5 defines only 30 offset codes) but the DEFLATE_NUM_OFFSET_SYMS
// alphabet is padded to 32 so a decode table built over the full
// tableBits-wide codespace has a safe, non-corrupt entry to report if a
// malformed stream's Huffman code happens to reach them.
var (
	offsetBase = [...]uint32{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145,
		8193, 12289, 16385, 24577, 32769, 49153,
	}
	offsetExtraBits = [...]uint8{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13, 14, 14,
	}
)

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "inflate: " + string(e) }

// Sentinel errors panicked by the decode loop and recovered by Decompress.
var (
	// errCorrupt reports a malformed bitstream: reserved block type,
	// LEN/NLEN mismatch, an invalid Huffman code, an out-of-range
	// back-reference, or any other structural violation.
	errCorrupt error = Error("stream is corrupted")

	// errShortOutput reports that the caller's output buffer was too
	// small to hold the fully decompressed data.
	errShortOutput error = Error("output buffer too small")

	// errInputOverrun reports that the input was exhausted before the
	// final block terminated.
	errInputOverrun error = Error("input does not contain a complete stream")
)

// Status is the outcome of a Decompress/DecompressExact call.
type Status int

const (
	StatusOK Status = iota
	StatusBadData
	StatusShortOutput
	StatusInsufficientSpace
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusBadData:
		return "bad data"
	case StatusShortOutput:
		return "short output"
	case StatusInsufficientSpace:
		return "insufficient space"
	default:
		return "unknown status"
	}
}

func statusForError(err error) Status {
	switch err {
	case nil:
		return StatusOK
	case errShortOutput:
		return StatusShortOutput
	default:
		return StatusBadData
	}
}

