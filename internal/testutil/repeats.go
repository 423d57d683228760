// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

// GenRepeats generates a deterministic byte sequence of the given size
// that heavily favors LZ77-style compression: most of its content is a
// copy from some earlier distance, with occasional fresh random runs.
// This exercises a decompressor's handling of both short and very long
// back-reference offsets and lengths, which small hand-written test
// vectors rarely cover.
func GenRepeats(size int, seed int) []byte {
	r := NewRand(seed)

	randLen := func() (l int) {
		p := r.Intn(100)
		switch {
		case p < 15: // 4..8
			l = 4 + r.Intn(4)
		case p < 30: // 8..16
			l = 8 + r.Intn(8)
		case p < 45: // 16..32
			l = 16 + r.Intn(16)
		case p < 60: // 32..64
			l = 32 + r.Intn(32)
		case p < 75: // 64..128
			l = 64 + r.Intn(64)
		case p < 90: // 128..256
			l = 128 + r.Intn(128)
		default: // 256..512
			l = 256 + r.Intn(256)
		}
		return l
	}

	var b []byte
	randDist := func() (d int) {
		for d == 0 || d > len(b) {
			p := r.Intn(100)
			switch {
			case p < 10:
				d = 1
			case p < 20:
				d = 2 + r.Intn(2)
			case p < 30:
				d = 4 + r.Intn(4)
			case p < 40:
				d = 8 + r.Intn(8)
			case p < 50:
				d = 16 + r.Intn(16)
			case p < 55:
				d = 32 + r.Intn(32)
			case p < 60:
				d = 64 + r.Intn(64)
			case p < 65:
				d = 128 + r.Intn(128)
			case p < 70:
				d = 256 + r.Intn(256)
			case p < 75:
				d = 512 + r.Intn(512)
			case p < 80:
				d = 1024 + r.Intn(1024)
			case p < 85:
				d = 2048 + r.Intn(2048)
			case p < 90:
				d = 4096 + r.Intn(4096)
			case p < 95:
				d = 8192 + r.Intn(8192)
			default:
				d = 16384 + r.Intn(16384)
			}
		}
		return d
	}

	writeRand := func(l int) {
		b = append(b, r.Bytes(l)...)
	}
	writeCopy := func(d, l int) {
		for i := 0; i < l; i++ {
			b = append(b, b[len(b)-d])
		}
	}

	writeRand(randLen())
	for len(b) < size {
		p := r.Intn(100)
		switch {
		case p < 10:
			writeRand(randLen())
		case p < 90:
			d, l := randDist(), randLen()
			for d <= l {
				d, l = randDist(), randLen()
			}
			writeCopy(d, l)
		default:
			writeCopy(randDist(), randLen())
		}
	}
	return b[:size]
}
