// Copyright 2024 The Inflate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command inflatebench measures this package's decompression throughput
// and verifies its output against two independent DEFLATE encoders. It
// is a conformance-plus-speed check, not a compression benchmark: this
// package does not encode.
package main

import (
	"bytes"
	stdflate "compress/flate"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"

	"github.com/rawdeflate/inflate"
	"github.com/rawdeflate/inflate/internal/testutil"
)

const defaultSizes = "1e4,1e5,1e6"
const defaultCodecs = "klauspost,stdlib"

func main() {
	sizesFlag := flag.String("sizes", defaultSizes, "comma-separated list of input sizes to benchmark")
	codecsFlag := flag.String("codecs", defaultCodecs, "comma-separated list of reference encoders: klauspost, stdlib")
	trialsFlag := flag.Int("trials", 5, "number of decode trials per (size, codec) pair")
	flag.Parse()

	sizes, err := parseSizes(*sizesFlag)
	if err != nil {
		log.Fatal(err)
	}
	codecs := strings.Split(*codecsFlag, ",")

	fmt.Printf("%-10s %-10s %12s %12s %10s\n", "codec", "size", "ratio", "decode MB/s", "status")
	for _, size := range sizes {
		raw := testutil.GenRepeats(size, size)
		for _, codec := range codecs {
			compressed, err := compress(codec, raw)
			if err != nil {
				log.Fatalf("compress(%s): %v", codec, err)
			}
			report(codec, size, raw, compressed, *trialsFlag)
		}
	}
}

func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, tok := range strings.Split(s, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid size %q: %w", tok, err)
		}
		sizes = append(sizes, int(f))
	}
	return sizes, nil
}

func compress(codec string, raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	var wc io.WriteCloser
	var err error
	switch codec {
	case "klauspost":
		wc, err = flate.NewWriter(&buf, flate.DefaultCompression)
	case "stdlib":
		wc, err = stdflate.NewWriter(&buf, stdflate.DefaultCompression)
	default:
		return nil, fmt.Errorf("unknown codec %q", codec)
	}
	if err != nil {
		return nil, err
	}
	if _, err := wc.Write(raw); err != nil {
		return nil, err
	}
	if err := wc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func report(codec string, size int, raw, compressed []byte, trials int) {
	dst := make([]byte, size)
	d := inflate.NewDecompressor()

	n, status, err := d.Decompress(dst, compressed)
	statusStr := "ok"
	if err != nil || n != size || !bytes.Equal(dst[:n], raw) {
		statusStr = fmt.Sprintf("MISMATCH (%v)", status)
	}

	start := time.Now()
	for i := 0; i < trials; i++ {
		if _, _, err := d.Decompress(dst, compressed); err != nil {
			statusStr = fmt.Sprintf("MISMATCH (%v)", err)
			break
		}
	}
	elapsed := time.Since(start)

	mbPerSec := float64(size) * float64(trials) / elapsed.Seconds() / (1 << 20)
	ratio := float64(len(compressed)) / float64(size)
	fmt.Printf("%-10s %-10d %12.3f %12.1f %10s\n", codec, size, ratio, mbPerSec, statusStr)
	os.Stdout.Sync()
}
