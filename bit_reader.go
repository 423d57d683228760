// Copyright 2024 The Inflate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

import "encoding/binary"

// wordBytes is the width, in bytes, of the machine word used to refill the
// bit buffer. 8 gives the best amortization on 64-bit hosts; the algorithm
// below is correct for any width as long as wordBytes*8-7 bits can still be
// requested in one ensure call.
const wordBytes = 8
const wordBits = 8 * wordBytes

// bitMaxEnsure is the largest bit count that a single ensure call may be
// asked for. We never read less than a byte at a time, so once bitsLeft
// exceeds wordBits-8 we can't safely pull in another byte without first
// consuming some bits.
const bitMaxEnsure = wordBits - 7

// bitReader is a right-aligned bit buffer over a byte range. It amortizes
// refills by reading whole machine words at a time, and tolerates bounded
// lookahead past the end of the input: bytewise refill past in_end leaves
// the buffered bits zero and records the overrun in overrunCount, so the
// decode loop never needs to check availability before every bit request.
type bitReader struct {
	bitbuf       uint64 // right-aligned buffer; high bits above bitsLeft are 0
	bitsLeft     uint   // number of valid low bits in bitbuf
	overrunCount uint   // bytes "read" past in_end during bytewise refill

	in    []byte
	inPos int // index of the next unconsumed input byte
}

func (br *bitReader) init(in []byte) {
	*br = bitReader{in: in}
}

// ensure guarantees that at least n valid bits are buffered, refilling if
// necessary. n must be a compile-time-bounded value <= bitMaxEnsure; the
// caller is responsible for that invariant, exactly as in the C original
// where ensure_bits<n>() is a template parameter.
func (br *bitReader) ensure(n uint) {
	if br.bitsLeft < n {
		br.refill()
	}
}

func (br *bitReader) refill() {
	if len(br.in)-br.inPos >= wordBytes {
		br.fillWordwise()
	} else {
		br.fillBytewise()
	}
}

// fillWordwise reads one little-endian machine word from the input and
// ORs it into the buffer above the currently valid bits. This is only
// valid when at least wordBytes bytes remain in the input.
func (br *bitReader) fillWordwise() {
	word := binary.LittleEndian.Uint64(br.in[br.inPos:])
	br.bitbuf |= word << br.bitsLeft
	consumed := (wordBits - br.bitsLeft) >> 3
	br.inPos += int(consumed)
	br.bitsLeft += (wordBits - br.bitsLeft) &^ 7
}

// fillBytewise ORs in one input byte at a time until bitsLeft exceeds
// wordBits-8. Past the end of input, it still advances bitsLeft (with
// zero bits) and counts the virtual overrun instead of failing, so that
// align_to_byte can later rewind the cursor correctly.
func (br *bitReader) fillBytewise() {
	for {
		if br.inPos < len(br.in) {
			br.bitbuf |= uint64(br.in[br.inPos]) << br.bitsLeft
			br.inPos++
		} else {
			br.overrunCount++
		}
		br.bitsLeft += 8
		if br.bitsLeft > wordBits-8 {
			break
		}
	}
}

// peek returns the next n bits without consuming them. The caller must
// have already ensured at least n bits are buffered.
func (br *bitReader) peek(n uint) uint32 {
	return uint32(br.bitbuf & (uint64(1)<<n - 1))
}

// drop discards the next n buffered bits.
func (br *bitReader) drop(n uint) {
	br.bitbuf >>= n
	br.bitsLeft -= n
}

// pop consumes and returns the next n bits.
func (br *bitReader) pop(n uint) uint32 {
	v := br.peek(n)
	br.drop(n)
	return v
}

// alignToByte discards any buffered bits past the last fully consumed
// input byte. Wordwise refill may have pulled in up to wordBytes-1 bytes
// of lookahead beyond what was actually consumed as bits; alignToByte
// rewinds the input cursor to compensate, except for bytes that were
// never really there (virtual overrun).
func (br *bitReader) alignToByte() {
	unconsumedBytes := br.bitsLeft >> 3
	rewind := unconsumedBytes
	if br.overrunCount < rewind {
		rewind -= br.overrunCount
		br.overrunCount = 0
	} else {
		br.overrunCount -= rewind
		rewind = 0
	}
	br.inPos -= int(rewind)
	br.bitbuf = 0
	br.bitsLeft = 0
}

// availableBytes reports how many real input bytes remain unconsumed,
// ignoring virtual overrun.
func (br *bitReader) availableBytes() int {
	return len(br.in) - br.inPos
}

// popU16 reads a little-endian 16-bit value from the input. The stream
// must be byte-aligned (see alignToByte) and have at least 2 bytes left.
func (br *bitReader) popU16() uint16 {
	if br.availableBytes() < 2 {
		panic(errInputOverrun)
	}
	v := binary.LittleEndian.Uint16(br.in[br.inPos:])
	br.inPos += 2
	return v
}

// copyBytes performs a byte-aligned bulk copy of n bytes from the input
// into dst, advancing the cursor. The caller must have verified n does
// not exceed availableBytes().
func (br *bitReader) copyBytes(dst []byte, n int) {
	copy(dst, br.in[br.inPos:br.inPos+n])
	br.inPos += n
}
