// Copyright 2024 The Inflate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

const (
	blockTypeUncompressed = 0
	blockTypeFixed        = 1
	blockTypeDynamic      = 2
	blockTypeReserved     = 3
)

// doBlock decodes a single DEFLATE block and reports whether it was the
// final block (BFINAL). It panics with errCorrupt, errShortOutput, or
// errInputOverrun on any failure; Decompress recovers these at the top
// level.
func (d *Decompressor) doBlock(br *bitReader, win *outputWindow) (isFinal bool) {
	br.ensure(1 + 2 + 5 + 5 + 4)
	isFinal = br.pop(1) != 0

	switch br.pop(2) {
	case blockTypeUncompressed:
		d.doUncompressed(br, win)
		return isFinal
	case blockTypeFixed:
		d.prepareFixed()
	case blockTypeDynamic:
		d.prepareDynamic(br)
	default:
		panic(errCorrupt) // reserved BTYPE
	}

	d.decodeHuffmanBlock(br, win)
	return isFinal
}

func (d *Decompressor) doUncompressed(br *bitReader, win *outputWindow) {
	br.alignToByte()

	length := br.popU16()
	nlength := br.popU16()
	if length != ^nlength {
		panic(errCorrupt)
	}
	n := int(length)

	if br.availableBytes() < n {
		panic(errInputOverrun)
	}
	if win.available() < n {
		win.flush()
		if win.available() < n {
			panic(errShortOutput)
		}
	}
	win.copyLiteralBytes(br, n)
}

// prepareFixed populates d.lens with the fixed Huffman codeword lengths
// defined by RFC 1951 section 3.2.6, then builds the offset and litlen
// decode tables from them. The offset table is built first because the
// scratch backing lens and the litlen decode table may alias each other.
func (d *Decompressor) prepareFixed() {
	lens := d.lens[:]
	for i := 0; i < 144; i++ {
		lens[i] = 8
	}
	for i := 144; i < 256; i++ {
		lens[i] = 9
	}
	for i := 256; i < 280; i++ {
		lens[i] = 7
	}
	for i := 280; i < numLitlenSyms; i++ {
		lens[i] = 8
	}
	for i := numLitlenSyms; i < numLitlenSyms+numOffsetSyms; i++ {
		lens[i] = 5
	}

	// All 32 offset symbols (including the two that RFC 1951 never
	// actually assigns a distance to) get a 5-bit codeword; only a
	// complete 32-symbol code at length 5 exhausts the codespace
	// exactly, so the table must be built over the full alphabet, not
	// just the 30 real distance codes.
	d.buildOffsetTable(numOffsetSyms)
	d.buildLitlenTable(numLitlenSyms)
}

// prepareDynamic reads a dynamic Huffman block header: HLIT/HDIST/HCLEN,
// the precode codeword lengths (in their stored permutation order), then
// uses the precode to reconstruct the litlen+offset codeword lengths via
// the run-length scheme of RFC 1951 section 3.2.7.
func (d *Decompressor) prepareDynamic(br *bitReader) {
	numLitlenUsed := int(br.pop(5)) + 257
	numOffsetUsed := int(br.pop(5)) + 1
	numExplicitPrecodeLens := int(br.pop(4)) + 4

	br.ensure(numPrecodeSyms * 3)
	for i := 0; i < numExplicitPrecodeLens; i++ {
		d.precodeLens[precodeLensPermutation[i]] = byte(br.pop(3))
	}
	for i := numExplicitPrecodeLens; i < numPrecodeSyms; i++ {
		d.precodeLens[precodeLensPermutation[i]] = 0
	}

	if !buildDecodeTable(d.precodeTable[:], d.precodeLens[:], numPrecodeSyms,
		precodeDecodeResults[:], precodeTableBits, maxPrecodeCodewordLen, &d.ws) {
		panic(errCorrupt)
	}

	lens := d.lens[:]
	for i := 0; i < numLitlenUsed+numOffsetUsed; {
		br.ensure(maxPrecodeCodewordLen + 7)

		// This relies on the precode table having no subtables, which
		// holds because precodeTableBits == maxPrecodeCodewordLen.
		entry := d.precodeTable[br.peek(maxPrecodeCodewordLen)]
		br.drop(uint(entry & lengthMask))
		presym := entry >> resultShift

		switch {
		case presym < 16:
			lens[i] = byte(presym)
			i++
		case presym == 16:
			if i == 0 {
				panic(errCorrupt)
			}
			rep := 3 + int(br.pop(2))
			repVal := lens[i-1]
			for k := 0; k < rep; k++ {
				lens[i+k] = repVal
			}
			i += rep
		case presym == 17:
			rep := 3 + int(br.pop(3))
			for k := 0; k < rep; k++ {
				lens[i+k] = 0
			}
			i += rep
		case presym == 18:
			rep := 11 + int(br.pop(7))
			for k := 0; k < rep; k++ {
				lens[i+k] = 0
			}
			i += rep
		default:
			panic(errCorrupt)
		}
		if i > numLitlenUsed+numOffsetUsed {
			panic(errCorrupt)
		}
	}

	copy(d.lens[numLitlenSyms:], d.lens[numLitlenUsed:numLitlenUsed+numOffsetUsed])
	for i := numOffsetUsed; i < numOffsetSyms; i++ {
		d.lens[numLitlenSyms+i] = 0
	}
	for i := numLitlenUsed; i < numLitlenSyms; i++ {
		d.lens[i] = 0
	}

	d.buildOffsetTable(numOffsetUsed)
	d.buildLitlenTable(numLitlenUsed)
}

func (d *Decompressor) buildOffsetTable(numSyms int) {
	if !buildDecodeTable(d.offsetTable[:], d.lens[numLitlenSyms:], numSyms,
		offsetDecodeResults[:], offsetTableBits, maxOffsetCodewordLen, &d.ws) {
		panic(errCorrupt)
	}
}

func (d *Decompressor) buildLitlenTable(numSyms int) {
	if !buildDecodeTable(d.litlenTable[:], d.lens[:], numSyms,
		litlenDecodeResults[:], litlenTableBits, maxLitlenCodewordLen, &d.ws) {
		panic(errCorrupt)
	}
}

// decodeHuffmanBlock runs the main DEFLATE decode loop: repeatedly decode
// a litlen symbol, which is either a literal byte, an end-of-block
// marker, or a match length; on a match, decode the paired offset symbol
// and copy the back-reference.
func (d *Decompressor) decodeHuffmanBlock(br *bitReader, win *outputWindow) {
	for {
		br.ensure(maxLitlenCodewordLen)
		entry := d.litlenTable[br.peek(litlenTableBits)]
		if entry&subtablePointerFlag != 0 {
			br.drop(litlenTableBits)
			entry = d.litlenTable[((entry>>resultShift)&0xFFFF)+br.peek(uint(entry&lengthMask))]
		}
		br.drop(uint(entry & lengthMask))

		if entry&literalFlag != 0 {
			if win.available() == 0 {
				win.flush()
			}
			win.push(byte(entry >> resultShift))
			continue
		}

		entry >>= resultShift
		br.ensure(bitMaxEnsure)
		length := int((entry >> lengthBaseShift) + br.pop(uint(entry&extraLengthBitsMask)))

		if uint(length-1) >= uint(win.available()) {
			if length == int(endOfBlockLength) {
				win.notifyEndBlock()
				return
			}
			win.flush()
			if uint(length-1) >= uint(win.available()) {
				panic(errShortOutput)
			}
		}

		entry = d.offsetTable[br.peek(offsetTableBits)]
		if entry&subtablePointerFlag != 0 {
			br.drop(offsetTableBits)
			entry = d.offsetTable[((entry>>resultShift)&0xFFFF)+br.peek(uint(entry&lengthMask))]
		}
		br.drop(uint(entry & lengthMask))
		entry >>= resultShift

		offset := int((entry & offsetBaseMask) + br.pop(uint(entry>>extraOffsetBitsShift)))
		if offset > win.size() {
			panic(errCorrupt)
		}
		win.copyMatch(length, offset)
	}
}
