// Copyright 2024 The Inflate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build debug

package inflate

import (
	"fmt"
	"strings"
)

func lenBase10(n int) int { return len(fmt.Sprintf("%d", n)) }

func padBase10(n interface{}, m int) string {
	s := fmt.Sprintf("%v", n)
	if pad := m - len(s); pad > 0 {
		s = strings.Repeat(" ", pad) + s
	}
	return s
}

// dumpDecodeTable renders a flat decode table (main table plus any
// inlined subtables) as a human-readable listing of codeword index to
// (result, length) or (subtable offset, subtable bits). Only built when
// the "debug" build tag is set; not used by the decode path itself.
func dumpDecodeTable(name string, table []uint32, mainBits uint) string {
	maxIdxStr := lenBase10(len(table) - 1)

	var ss []string
	ss = append(ss, name+" {")
	for i, entry := range table {
		length := entry & lengthMask
		if entry&subtablePointerFlag != 0 {
			start := (entry >> resultShift) & 0xFFFF
			ss = append(ss, fmt.Sprintf("\t%s:  subtable at %d, %d bits",
				padBase10(i, maxIdxStr), start, length))
			continue
		}
		result := entry >> resultShift
		if entry&literalFlag != 0 {
			ss = append(ss, fmt.Sprintf("\t%s:  literal 0x%02x, %d bits",
				padBase10(i, maxIdxStr), result&0xFF, length))
		} else {
			ss = append(ss, fmt.Sprintf("\t%s:  result %d, %d bits",
				padBase10(i, maxIdxStr), result, length))
		}
	}
	ss = append(ss, "}")
	return strings.Join(ss, "\n")
}

// String renders the precode, litlen, and offset decode tables built for
// the most recently decoded block. Only present under the "debug" build
// tag; a Decompressor otherwise carries no String method.
func (d *Decompressor) String() string {
	return strings.Join([]string{
		dumpDecodeTable("precode", d.precodeTable[:1<<precodeTableBits], precodeTableBits),
		dumpDecodeTable("litlen", d.litlenTable[:1<<litlenTableBits], litlenTableBits),
		dumpDecodeTable("offset", d.offsetTable[:1<<offsetTableBits], offsetTableBits),
	}, "\n")
}
