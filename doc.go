// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hub12 drives monochrome "HUB12" LED dot-matrix panels (the common
// P10 32x16 modules) from a host with an SPI port and four GPIO lines.
//
// HUB12 panels have no frame memory. Each 32x16 module is a chain of shift
// registers feeding row drivers that are multiplexed 4 ways: only a quarter
// of the rows is lit at any time. The host has to keep shifting scan lines
// out, latching them, selecting the row group with the A and B lines and
// pulsing the output enable line, about 240 times per second for a 60Hz
// image.
//
// Dev runs that scan in the background. It keeps a 1 bit source bitmap that
// can be drawn to at any time through display.Drawer or written directly via
// Buffer(), and reshuffles it into four scan buffers once per frame.
//
// # Wiring
//
// Connect R (data) to SPI_MOSI, CLK to SPI_CLK, and the OE, LAT (a.k.a. SCLK
// or STB), A and B lines to four free GPIOs. The default pin assignment is in
// DefaultPinNames.
//
// # Timing
//
// Each scan line cycle lasts 1/(4*refresh) seconds. At the start of a cycle
// the latch line is released and the next scan line is queued on the SPI
// port. When the transfer completes the latch is pulsed, the row group is
// selected and the LEDs are enabled for a duration proportional to the
// brightness, at most 255/256 of the cycle.
//
// If the SPI port is slow to complete a transfer, the next cycle is skipped
// and the same scan line is retried. The image stays correct, only the
// effective refresh rate drops.
package hub12
