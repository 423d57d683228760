// Copyright 2024 The Inflate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

import (
	"bytes"
	stdflate "compress/flate"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/flate"

	"github.com/rawdeflate/inflate/internal/testutil"
)

func TestDecompressVectors(t *testing.T) {
	tests := []struct {
		label string
		input []byte
		want  []byte
	}{
		{
			label: "empty stored final block",
			input: testutil.MustDecodeHex("0100" + "00ff" + "ff"),
			want:  []byte{},
		},
		{
			label: "single-byte fixed-Huffman literal",
			input: testutil.MustDecodeHex("4b0400"),
			want:  []byte("A"),
		},
		{
			label: "stored block HELLO",
			input: testutil.MustDecodeHex("010500" + "faff" + "48454c4c4f"),
			want:  []byte("HELLO"),
		},
		{
			label: "fixed-Huffman with back-reference",
			// Fixed Huffman codes (RFC 1951 section 3.2.6): literals 0-143
			// use 8-bit codes valued lit+48; length symbols 256-279 use
			// 7-bit codes valued sym-256; all 30 distance codes use 5-bit
			// codes valued by distance-code index. length=6 is exactly
			// lengthBase[3] (symbol 260) with 0 extra bits; offset=2 is
			// exactly offsetBase[1] (distance code 1) with 0 extra bits.
			input: testutil.MustDecodeBitGen(`<<<
				D1:1 D2:1   # BFINAL=1, BTYPE=01 fixed
				> 01110001  # literal 'A' (65): code = 65+48 = 0b01110001
				> 01110010  # literal 'B' (66): code = 66+48 = 0b01110010
				> 0000100   # length symbol 260 (base 6): code = 260-256 = 0b0000100
				> 00001     # offset symbol 1 (base 2): code = 0b00001
				> 0000000   # end-of-block (256): code = 0b0000000
			`),
			want: []byte("ABABABAB"),
		},
		{
			label: "dynamic Huffman over-subscribed precode",
			input: testutil.MustDecodeBitGen(`<<<
				< 1 10                  # BFINAL=1, BTYPE=10 dynamic
				< D5:0 D5:0 D4:0        # HLIT=257, HDIST=1, HCLEN=4 explicit
				< D3:1 D3:1 D3:1 D3:0   # precode lens for presym 16,17,18,0 = 1,1,1,0 (over-subscribed)
			`),
			want: nil, // StatusBadData expected, checked separately below
		},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			dst := make([]byte, 1<<16)
			d := NewDecompressor()
			n, status, err := d.Decompress(dst, tt.input)
			if tt.label == "dynamic Huffman over-subscribed precode" {
				if status != StatusBadData {
					t.Fatalf("status = %v, want StatusBadData (err=%v)", status, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decompress: %v (status %v)", err, status)
			}
			if status != StatusOK {
				t.Fatalf("status = %v, want StatusOK", status)
			}
			got := dst[:n]
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decompress output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecompressDynamicSelfRepeat(t *testing.T) {
	// Dynamic block with a minimal two-symbol litlen alphabet (literal
	// 0x5A and end-of-block, both length-1 codewords) and a completely
	// empty offset code, emitting 64 copies of 0x5A as bare literals.
	input := testutil.MustDecodeBitGen(`<<<
		< 1 10                                                  # BFINAL=1, BTYPE=10 dynamic
		< D5:0 D5:0 D4:14                                       # HLIT=257, HDIST=1, HCLEN=18 explicit
		< D3:0 D3:0 D3:1 D3:2 D3:0 D3:0 D3:0 D3:0 D3:0 D3:0 D3:0 D3:0 D3:0 D3:0 D3:0 D3:0 D3:0 D3:2
		# precode lens in permutation order (16,17,18,0,8,7,9,6,10,5,11,4,12,3,13,2,14,1):
		#   sym18=1, sym0=2, sym1=2, rest 0
		> 0 <D7:79    # presym 18 (canonical code '0'), repeat 90 zero lengths: symbols 0..89
		> 11          # presym 1  (canonical code '11'): symbol 90 gets litlen length 1
		> 0 D7:127    # presym 18, repeat 138 zero lengths: symbols 91..228
		> 0 D7:16     # presym 18, repeat 27 zero lengths: symbols 229..255
		> 11          # presym 1: symbol 256 (end-of-block) gets litlen length 1
		> 10          # presym 0 (canonical code '10'): offset symbol 0 gets length 0 (empty offset code)
		> 0*64        # 64 literal codewords for symbol 90 (litlen canonical code '0')
		> 1           # end-of-block codeword (litlen canonical code '1')
	`)

	dst := make([]byte, 64)
	d := NewDecompressor()
	n, status, err := d.Decompress(dst, input)
	if err != nil {
		t.Fatalf("Decompress: %v (status %v)", err, status)
	}
	want := bytes.Repeat([]byte{0x5A}, 64)
	if diff := cmp.Diff(want, dst[:n]); diff != "" {
		t.Errorf("Decompress output mismatch (-want +got):\n%s", diff)
	}
}

func TestDecompressShortOutput(t *testing.T) {
	input := testutil.MustDecodeHex("010500" + "faff" + "48454c4c4f")
	dst := make([]byte, 3)
	d := NewDecompressor()
	n, status, err := d.Decompress(dst, input)
	if status != StatusShortOutput {
		t.Fatalf("status = %v, want StatusShortOutput", status)
	}
	if err == nil {
		t.Fatal("Decompress: got nil error, want non-nil")
	}
	if n != len(dst) {
		t.Fatalf("n = %d, want %d (dst fully used before failing)", n, len(dst))
	}
}

func TestDecompressExact(t *testing.T) {
	input := testutil.MustDecodeHex("010500" + "faff" + "48454c4c4f")
	d := NewDecompressor()

	dst := make([]byte, 10)
	n, status, err := d.DecompressExact(dst, input, 5)
	if err != nil {
		t.Fatalf("DecompressExact: %v (status %v)", err, status)
	}
	if string(dst[:n]) != "HELLO" {
		t.Fatalf("got %q, want %q", dst[:n], "HELLO")
	}

	_, status, err = d.DecompressExact(dst, input, 4)
	if err == nil {
		t.Fatal("DecompressExact: got nil error for a wrong exact size, want non-nil")
	}
	if status != StatusShortOutput {
		t.Fatalf("status = %v, want StatusShortOutput", status)
	}

	_, status, err = d.DecompressExact(make([]byte, 2), input, 5)
	if status != StatusInsufficientSpace {
		t.Fatalf("status = %v, want StatusInsufficientSpace", status)
	}
}

// TestRoundTripCrossEncoders compresses pseudo-random, LZ77-friendly data
// with two independent DEFLATE encoders and verifies this package decodes
// both byte-for-byte, exercising many distinct Huffman shapes and match
// lengths/offsets that hand-written vectors cannot practically cover.
func TestRoundTripCrossEncoders(t *testing.T) {
	sizes := []int{0, 1, 17, 1 << 10, 1 << 16, 1 << 19}

	for _, size := range sizes {
		want := testutil.GenRepeats(max(size, 1), size+1)[:size]

		t.Run("klauspost", func(t *testing.T) {
			var buf bytes.Buffer
			zw, err := flate.NewWriter(&buf, flate.DefaultCompression)
			if err != nil {
				t.Fatalf("flate.NewWriter: %v", err)
			}
			if _, err := zw.Write(want); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if err := zw.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			dst := make([]byte, size)
			d := NewDecompressor()
			n, status, err := d.Decompress(dst, buf.Bytes())
			if err != nil {
				t.Fatalf("Decompress: %v (status %v)", err, status)
			}
			if diff := cmp.Diff(want, dst[:n]); diff != "" {
				t.Errorf("round trip mismatch for size %d (-want +got):\n%s", size, diff)
			}
		})

		t.Run("stdlib", func(t *testing.T) {
			var buf bytes.Buffer
			zw, err := stdflate.NewWriter(&buf, stdflate.DefaultCompression)
			if err != nil {
				t.Fatalf("flate.NewWriter: %v", err)
			}
			if _, err := zw.Write(want); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if err := zw.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			dst := make([]byte, size)
			d := NewDecompressor()
			n, status, err := d.Decompress(dst, buf.Bytes())
			if err != nil {
				t.Fatalf("Decompress: %v (status %v)", err, status)
			}
			if diff := cmp.Diff(want, dst[:n]); diff != "" {
				t.Errorf("round trip mismatch for size %d (-want +got):\n%s", size, diff)
			}
		})
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
