// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub12

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newScan(n int) *[ScanLines][]byte {
	var s [ScanLines][]byte
	for i := range s {
		s[i] = make([]byte, n)
	}
	return &s
}

func TestInterleaveLayout(t *testing.T) {
	bitmap := make([]byte, 64)
	for i := range bitmap {
		bitmap[i] = byte(i)
	}
	scan := newScan(16)
	Interleave(scan, bitmap, 32, 16)
	want := [ScanLines][]byte{
		{0, 16, 32, 48, 1, 17, 33, 49, 2, 18, 34, 50, 3, 19, 35, 51},
		{4, 20, 36, 52, 5, 21, 37, 53, 6, 22, 38, 54, 7, 23, 39, 55},
		{8, 24, 40, 56, 9, 25, 41, 57, 10, 26, 42, 58, 11, 27, 43, 59},
		{12, 28, 44, 60, 13, 29, 45, 61, 14, 30, 46, 62, 15, 31, 47, 63},
	}
	if diff := cmp.Diff(want, *scan); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestInterleaveTestPattern(t *testing.T) {
	g := Geometry{Width: 32, Height: 16, Refresh: 60}
	scan := newScan(g.HsyncLength())
	Interleave(scan, TestPattern32x16[:], g.Width, g.Height)
	rowBytes := g.RowBytes()
	for i := range scan {
		if len(scan[i]) != 16 {
			t.Fatalf("scan line %d is %d bytes", i, len(scan[i]))
		}
		for k := 0; k < rowBytes; k++ {
			for l := 0; l < ScanLines; l++ {
				if got, want := scan[i][k*4+l], TestPattern32x16[(l*4+i)*rowBytes+k]; got != want {
					t.Fatalf("scan[%d][%d] = %#x, want %#x", i, k*4+l, got, want)
				}
			}
		}
	}
	// Scan line 0 starts with the first byte of rows 0, 4, 8 and 12.
	if diff := cmp.Diff([]byte{0xFF, 0x11, 0x10, 0x15}, scan[0][:4]); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestInterleaveMultiModule(t *testing.T) {
	// Second module row of a 32x32 array: rows 16, 20, 24 and 28.
	bitmap := make([]byte, 128)
	for i := range bitmap {
		bitmap[i] = byte(i)
	}
	scan := newScan(32)
	Interleave(scan, bitmap, 32, 32)
	if diff := cmp.Diff([]byte{64, 80, 96, 112, 65, 81, 97, 113}, scan[0][16:24]); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, g := range []Geometry{{32, 16, 60}, {64, 16, 60}, {32, 32, 60}, {96, 48, 60}, {128, 64, 60}} {
		bitmap := make([]byte, g.FrameBytes())
		r.Read(bitmap)
		scan := newScan(g.HsyncLength())
		Interleave(scan, bitmap, g.Width, g.Height)
		got := make([]byte, len(bitmap))
		Deinterleave(got, scan, g.Width, g.Height)
		if diff := cmp.Diff(bitmap, got); diff != "" {
			t.Fatalf("%s (-want +got):\n%s", g, diff)
		}
	}
}

func BenchmarkInterleave(b *testing.B) {
	g := Geometry{Width: 128, Height: 64, Refresh: 60}
	bitmap := make([]byte, g.FrameBytes())
	scan := newScan(g.HsyncLength())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Interleave(scan, bitmap, g.Width, g.Height)
	}
}
