// Copyright 2024 The Inflate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

// Decode table entry layout (32 bits), matching the scheme the original
// C implementation uses so that subtables can be inlined in the same flat
// array as the main table:
//
//	bit 31:     subtablePointerFlag
//	bit 30:     literalFlag (litlen table only)
//	bits 29-8:  result payload
//	bits 7-0:   codeword length (or, for subtable pointers, the number of
//	            extra bits used to index the subtable; for subtable
//	            entries themselves, the remaining codeword length)
const (
	subtablePointerFlag uint32 = 1 << 31
	literalFlag         uint32 = 1 << 30
	resultShift                = 8
	lengthMask          uint32 = 0xFF

	extraLengthBitsMask uint32 = 0xFF
	lengthBaseShift            = 8
	endOfBlockLength    uint32 = 0

	extraOffsetBitsShift = 16
	offsetBaseMask       = (uint32(1) << extraOffsetBitsShift) - 1
)

func makeDecodeEntry(result, length uint32) uint32 {
	return (result << resultShift) | length
}

func literalEntryResult(literal byte) uint32 {
	return (literalFlag >> resultShift) | uint32(literal)
}

func lengthEntryResult(lengthBase, numExtraBits uint32) uint32 {
	return (lengthBase << lengthBaseShift) | numExtraBits
}

func offsetEntryResult(offsetBase, numExtraBits uint32) uint32 {
	return offsetBase | (numExtraBits << extraOffsetBitsShift)
}

// precodeDecodeResults maps each precode symbol (0..18) to itself; the
// precode has no further decoding, it just selects litlen/offset lengths.
var precodeDecodeResults [numPrecodeSyms]uint32

// litlenDecodeResults maps each litlen symbol to a packed literal entry or
// a packed (length_base, extra_bits) entry, computed once at init time so
// the decode loop never needs an indirect lookup from symbol to result.
var litlenDecodeResults [numLitlenSyms]uint32

// offsetDecodeResults maps each offset symbol to a packed
// (offset_base, extra_bits) entry.
var offsetDecodeResults [numOffsetSyms]uint32

func init() {
	for i := range precodeDecodeResults {
		precodeDecodeResults[i] = uint32(i)
	}
	for i := 0; i < 256; i++ {
		litlenDecodeResults[i] = literalEntryResult(byte(i))
	}
	litlenDecodeResults[endOfBlockSym] = lengthEntryResult(endOfBlockLength, 0)
	for i, base := range lengthBase {
		litlenDecodeResults[257+i] = lengthEntryResult(uint32(base), uint32(lengthExtraBits[i]))
	}
	// Symbols 286 and 287 never appear in a valid stream (litlen only
	// defines 286 real symbols) but are padded into the 288-entry
	// alphabet the same way offset symbols 30/31 are; give them the same
	// entry as the maximum-length symbol 285 rather than leaving them at
	// the zero value.
	litlenDecodeResults[286] = lengthEntryResult(258, 0)
	litlenDecodeResults[287] = lengthEntryResult(258, 0)
	for i, base := range offsetBase {
		offsetDecodeResults[i] = offsetEntryResult(base, uint32(offsetExtraBits[i]))
	}
}

// huffmanWorkingSpace is scratch space reused across the three
// build-table calls within a single block. Its layout mirrors the C
// original's 'working_space' array of length 2*(maxCodewordLen+1)+numSyms:
// the first two segments are len_counts and offsets (each sized by the
// largest max codeword length, 15), the third is sorted_syms (sized by
// the largest alphabet, litlen's 288).
type huffmanWorkingSpace struct {
	lenCounts  [maxLitlenCodewordLen + 1]uint16
	offsets    [maxLitlenCodewordLen + 1]uint16
	sortedSyms [numLitlenSyms]uint16
}

// buildDecodeTable builds a flat canonical-Huffman decode table (a main
// table of 1<<tableBits entries, plus any inlined subtables) for the code
// described by lens[0:numSyms]. decodeResults[sym] supplies the payload to
// pack into every table entry that decodes to sym. The table is built
// under the assumption that it will be indexed by bit-reversed codewords
// (DEFLATE's bit order: least-significant bit first).
//
// lens and decodeTable must not overlap with each other in a way that
// would corrupt lens before it is fully read; this function only reads
// lens and writes decodeTable.
//
// Returns false if lens does not form a valid Huffman code (over- or
// incompletely-subscribed, outside of the two special incomplete cases
// the format allows).
func buildDecodeTable(decodeTable []uint32, lens []byte, numSyms int, decodeResults []uint32, tableBits, maxCodewordLen uint, ws *huffmanWorkingSpace) bool {
	lenCounts := ws.lenCounts[:maxCodewordLen+1]
	for i := range lenCounts {
		lenCounts[i] = 0
	}
	for _, l := range lens[:numSyms] {
		lenCounts[l]++
	}

	offsets := ws.offsets[:maxCodewordLen+1]
	offsets[0] = 0
	for l := uint(0); l < maxCodewordLen; l++ {
		offsets[l+1] = offsets[l] + lenCounts[l]
	}

	sortedSyms := ws.sortedSyms[:numSyms]
	for sym, l := range lens[:numSyms] {
		sortedSyms[offsets[l]] = uint16(sym)
		offsets[l]++
	}

	// Validate the codespace. A codeword of length n occupies a
	// proportion 2^-n of the codespace; the code is complete iff these
	// proportions sum to exactly 1.
	remainder := int32(1)
	for l := uint(1); l <= maxCodewordLen; l++ {
		remainder <<= 1
		remainder -= int32(lenCounts[l])
		if remainder < 0 {
			return false // over-subscribed
		}
	}

	if remainder != 0 {
		// Incomplete code. Fill the main table with a default sentinel
		// entry so a malformed stream that still manages to index this
		// table does not read uninitialized memory.
		entry := makeDecodeEntry(decodeResults[0], 1)
		for i := range decodeTable[:1<<tableBits] {
			decodeTable[i] = entry
		}

		if remainder == int32(uint32(1)<<maxCodewordLen) {
			return true // completely empty code
		}
		if remainder != int32(uint32(1)<<(maxCodewordLen-1)) || lenCounts[1] != 1 {
			return false // nonempty and incomplete, not the special case
		}
		// Single codeword of length 1: fall through and build it.
	}

	codewordLen := uint(1)
	for lenCounts[codewordLen] == 0 {
		codewordLen++
	}

	var (
		codewordReversed  uint
		curCodewordPrefix = ^uint(0)
		curTableStart     uint
		curTableBits      = tableBits
		numDroppedBits    uint
		// offsets[0] was advanced to lenCounts[0] by the sort above, so
		// symIdx starts at the first used symbol, past all of the
		// (unused) length-0 symbols.
		symIdx = uint(lenCounts[0])
	)
	tableMask := uint(1)<<tableBits - 1

	for {
		sym := uint(sortedSyms[symIdx])

		if codewordLen > tableBits && (codewordReversed&tableMask) != curCodewordPrefix {
			curCodewordPrefix = codewordReversed & tableMask
			curTableStart += 1 << curTableBits

			curTableBits = codewordLen - tableBits
			rem := int32(1) << curTableBits
			for {
				rem -= int32(lenCounts[tableBits+curTableBits])
				if rem <= 0 {
					break
				}
				curTableBits++
				rem <<= 1
			}

			decodeTable[curCodewordPrefix] = subtablePointerFlag |
				makeDecodeEntry(uint32(curTableStart), uint32(curTableBits))

			numDroppedBits = tableBits
		}

		entry := makeDecodeEntry(decodeResults[sym], uint32(codewordLen-numDroppedBits))

		end := curTableStart + (1 << curTableBits)
		increment := uint(1) << (codewordLen - numDroppedBits)
		for i := curTableStart + (codewordReversed >> numDroppedBits); i < end; i += increment {
			decodeTable[i] = entry
		}

		bit := uint(1) << (codewordLen - 1)
		for codewordReversed&bit != 0 {
			bit >>= 1
		}
		codewordReversed = (codewordReversed & (bit - 1)) | bit

		symIdx++
		if symIdx == uint(numSyms) {
			return true
		}
		lenCounts[codewordLen]--
		for lenCounts[codewordLen] == 0 {
			codewordLen++
		}
	}
}
