// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub12

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"
)

const (
	// ModuleWidth and ModuleHeight are the size of one HUB12 module. Panel
	// arrays are always a whole number of modules.
	ModuleWidth  = 32
	ModuleHeight = 16
	// ScanLines is the multiplexing ratio: rows lit at once are 4 apart.
	ScanLines = 4
	// MaxRefresh is the highest accepted full frame refresh rate in Hz.
	MaxRefresh = 1000
	// MaxWidth and MaxHeight bound a panel array to 64x64 modules.
	MaxWidth  = 64 * ModuleWidth
	MaxHeight = 64 * ModuleHeight

	// pixelPitch is the P10 LED spacing.
	pixelPitch = 10 * physic.MilliMetre
)

// Geometry is the size and refresh rate of a panel array.
type Geometry struct {
	Width   int
	Height  int
	Refresh int
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d@%d", g.Width, g.Height, g.Refresh)
}

// Round returns g rounded up to whole modules and clamped to MaxWidth x
// MaxHeight, with the refresh rate clamped to [1, MaxRefresh].
func (g Geometry) Round() Geometry {
	g.Width = max(1, min(MaxWidth, g.Width))
	g.Height = max(1, min(MaxHeight, g.Height))
	g.Width = ((g.Width + ModuleWidth - 1) / ModuleWidth) * ModuleWidth
	g.Height = ((g.Height + ModuleHeight - 1) / ModuleHeight) * ModuleHeight
	if g.Refresh < 1 {
		g.Refresh = 1
	}
	if g.Refresh > MaxRefresh {
		g.Refresh = MaxRefresh
	}
	return g
}

// RowBytes is the number of bytes per bitmap row.
func (g Geometry) RowBytes() int {
	return g.Width / 8
}

// FrameBytes is the size of the source bitmap.
func (g Geometry) FrameBytes() int {
	return g.RowBytes() * g.Height
}

// HsyncLength is the size of one scan buffer, the number of bytes shifted
// out per scan line cycle.
func (g Geometry) HsyncLength() int {
	return g.FrameBytes() / ScanLines
}

// PhysicalSize returns the size of the array of P10 modules.
func (g Geometry) PhysicalSize() (w, h physic.Distance) {
	return physic.Distance(g.Width) * pixelPitch, physic.Distance(g.Height) * pixelPitch
}

// Timing are the scan timings derived from a geometry and a brightness.
type Timing struct {
	// HsyncPeriod is the duration of one scan line cycle.
	HsyncPeriod time.Duration
	// LedOnPeriod is how long the LEDs are enabled in each cycle.
	LedOnPeriod time.Duration
	// VsyncTimeout bounds waits for a frame, two frame periods.
	VsyncTimeout time.Duration
}

func (t Timing) String() string {
	return fmt.Sprintf("hsync: %s, led: %s, vsync timeout: %s", t.HsyncPeriod, t.LedOnPeriod, t.VsyncTimeout)
}

// Timing returns the timings of g, which must be rounded.
func (g Geometry) Timing(brightness uint8) Timing {
	hsync := time.Second / time.Duration(g.Refresh) / ScanLines
	return Timing{
		HsyncPeriod:  hsync,
		LedOnPeriod:  ledOnPeriod(brightness, hsync),
		VsyncTimeout: 2 * time.Second / time.Duration(g.Refresh),
	}
}

// ledOnPeriod is brightness/256 of the scan line period. 255 still leaves
// time to retract the enable line before the next cycle.
func ledOnPeriod(brightness uint8, hsync time.Duration) time.Duration {
	return time.Duration(int64(brightness) * int64(hsync) / 256)
}

// ParseMode parses a mode string of the form "<xres>x<yres>[@<refresh>]"
// and returns def with the specified fields replaced, rounded.
//
// The string is scanned from the right: the refresh rate, then the height,
// then the width. Each field is optional, so "@120", "x32@30" and "64x32" are
// all valid. Scanning stops at the first character that does not fit and
// the fields found so far are kept. The width is only taken when the whole
// string was consumed and a height was found.
func ParseMode(s string, def Geometry) Geometry {
	var xres, yres, refresh int
	var resSpecified, yresSpecified, refreshSpecified bool
	i := len(s) - 1
scan:
	for ; i >= 0; i-- {
		switch c := s[i]; {
		case c == '@':
			if refreshSpecified || yresSpecified {
				break scan
			}
			refresh = leadingInt(s[i+1:])
			refreshSpecified = true
		case c == 'x':
			if yresSpecified {
				break scan
			}
			yres = leadingInt(s[i+1:])
			yresSpecified = true
		case c >= '0' && c <= '9':
		default:
			break scan
		}
	}
	if i < 0 && yresSpecified {
		xres = leadingInt(s)
		resSpecified = true
	}

	g := def
	if resSpecified {
		g.Width = xres
	}
	if yresSpecified {
		g.Height = yres
	}
	if refreshSpecified {
		g.Refresh = refresh
	}
	return g.Round()
}

// leadingInt returns the value of the decimal digits at the start of s, 0 if
// there are none. It saturates instead of overflowing.
func leadingInt(s string) int {
	const limit = 1 << 24
	v := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		if v = v*10 + int(s[i]-'0'); v > limit {
			return limit
		}
	}
	return v
}
