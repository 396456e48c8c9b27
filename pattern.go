// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub12

// TestPattern32x16 is loaded into a freshly configured 32x16 panel. It is a
// frame with diagonals and a few marks, useful to check the row order and
// the bit order of the wiring.
var TestPattern32x16 = [64]byte{
	0xFF, 0xFF, 0xFF, 0xFF,
	0x30, 0x00, 0x30, 0x0C,
	0x50, 0xC0, 0x50, 0x0A,
	0x90, 0x21, 0x90, 0x09,
	0x11, 0xC0, 0x11, 0x88,
	0x12, 0x00, 0x12, 0x48,
	0x14, 0x00, 0x14, 0x28,
	0x18, 0x00, 0x18, 0x18,
	0x10, 0x10, 0x18, 0x18,
	0x12, 0x20, 0x14, 0x28,
	0x15, 0x40, 0x12, 0x58,
	0x98, 0x80, 0x19, 0x98,
	0x15, 0x01, 0x90, 0x19,
	0x12, 0x02, 0x50, 0x1A,
	0x10, 0x01, 0x38, 0x3C,
	0xFE, 0xC8, 0xF3, 0x1F,
}
