// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub12

// Each module is 16 rows high, driven as 4 scan lines of 4 rows each: scan
// line i lights rows i, i+4, i+8 and i+12. Within a scan line the shift
// registers expect, for every 8 pixel column, the 4 bytes of those rows
// before moving on to the next column, and the module rows one after the
// other.
//
//   scan[i][j*rowBytes*4 + k*4 + l] = bitmap[(j*16 + l*4 + i)*rowBytes + k]
//
// with j the module row, k the byte column and l the row in the scan line.

// InterleaveLine fills dst with scan line i of a width x height bitmap. dst
// must be at least width*height/32 bytes long.
func InterleaveLine(dst, bitmap []byte, i, width, height int) {
	rowBytes := width / 8
	n := 0
	for j := 0; j < height/ModuleHeight; j++ {
		for k := 0; k < rowBytes; k++ {
			for l := 0; l < ScanLines; l++ {
				dst[n] = bitmap[(j*ModuleHeight+l*ScanLines+i)*rowBytes+k]
				n++
			}
		}
	}
}

// DeinterleaveLine is the inverse of InterleaveLine: it copies scan line i
// back into the rows of bitmap it was taken from.
func DeinterleaveLine(bitmap, src []byte, i, width, height int) {
	rowBytes := width / 8
	n := 0
	for j := 0; j < height/ModuleHeight; j++ {
		for k := 0; k < rowBytes; k++ {
			for l := 0; l < ScanLines; l++ {
				bitmap[(j*ModuleHeight+l*ScanLines+i)*rowBytes+k] = src[n]
				n++
			}
		}
	}
}

// Interleave converts a packed bitmap into the four scan buffers.
func Interleave(scan *[ScanLines][]byte, bitmap []byte, width, height int) {
	for i := range scan {
		InterleaveLine(scan[i], bitmap, i, width, height)
	}
}

// Deinterleave rebuilds a packed bitmap from the four scan buffers.
func Deinterleave(bitmap []byte, scan *[ScanLines][]byte, width, height int) {
	for i := range scan {
		DeinterleaveLine(bitmap, scan[i], i, width, height)
	}
}
