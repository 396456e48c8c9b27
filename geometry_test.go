// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub12

import (
	"testing"
	"time"

	"periph.io/x/conn/v3/physic"
)

func TestParseMode(t *testing.T) {
	def := Geometry{Width: 32, Height: 16, Refresh: 60}
	data := []struct {
		in   string
		want Geometry
	}{
		{"", Geometry{32, 16, 60}},
		{"64x32@120", Geometry{64, 32, 120}},
		{"64x32", Geometry{64, 32, 60}},
		{"@120", Geometry{32, 16, 120}},
		{"x32@30", Geometry{32, 32, 30}},
		{"96x", Geometry{96, 16, 60}},
		{"40x20@2000", Geometry{64, 32, 1000}},
		{"64x32@0", Geometry{64, 32, 1}},
		{"abc", Geometry{32, 16, 60}},
		// Parsing stops at the second '@', only the refresh rate is kept.
		{"64x32@120@5", Geometry{32, 16, 5}},
		// Trailing garbage stops the scan before any field.
		{"64x32@120Hz", Geometry{32, 16, 60}},
		// A prefix stops the scan before the width.
		{"mode=64x32@50", Geometry{32, 32, 50}},
		{"128x64@99999999999999999999", Geometry{128, 64, 1000}},
		{"99999999x99999999", Geometry{MaxWidth, MaxHeight, 60}},
	}
	for _, line := range data {
		if got := ParseMode(line.in, def); got != line.want {
			t.Errorf("ParseMode(%q) = %s, want %s", line.in, got, line.want)
		}
	}
}

func TestRound(t *testing.T) {
	data := []struct {
		in, want Geometry
	}{
		{Geometry{0, 0, 0}, Geometry{32, 16, 1}},
		{Geometry{-5, -1, -60}, Geometry{32, 16, 1}},
		{Geometry{32, 16, 60}, Geometry{32, 16, 60}},
		{Geometry{33, 17, 1000}, Geometry{64, 32, 1000}},
		{Geometry{64, 48, 1001}, Geometry{64, 48, 1000}},
		{Geometry{MaxWidth + 1, MaxHeight + 1, 60}, Geometry{MaxWidth, MaxHeight, 60}},
		{Geometry{1 << 40, 1 << 40, 60}, Geometry{MaxWidth, MaxHeight, 60}},
	}
	for _, line := range data {
		got := line.in.Round()
		if got != line.want {
			t.Errorf("%s.Round() = %s, want %s", line.in, got, line.want)
		}
		if got.Round() != got {
			t.Errorf("%s.Round() is not stable", got)
		}
	}
}

func TestGeometry32x16At60(t *testing.T) {
	g := Geometry{Width: 32, Height: 16, Refresh: 60}
	if g.RowBytes() != 4 || g.FrameBytes() != 64 || g.HsyncLength() != 16 {
		t.Fatalf("rowbytes %d, frame %d, hsync %d", g.RowBytes(), g.FrameBytes(), g.HsyncLength())
	}
	tm := g.Timing(128)
	want := Timing{
		HsyncPeriod:  4166666 * time.Nanosecond,
		LedOnPeriod:  2083333 * time.Nanosecond,
		VsyncTimeout: 33333333 * time.Nanosecond,
	}
	if tm != want {
		t.Fatalf("Timing(128) = %s, want %s", tm, want)
	}
	if s := tm.String(); s != "hsync: 4.166666ms, led: 2.083333ms, vsync timeout: 33.333333ms" {
		t.Fatal(s)
	}
	if tm.VsyncTimeout < 2*4*tm.HsyncPeriod {
		t.Fatal("vsync timeout must cover two frames")
	}
	if w, h := g.PhysicalSize(); w != 320*physic.MilliMetre || h != 160*physic.MilliMetre {
		t.Fatalf("PhysicalSize() = %s, %s", w, h)
	}
	if s := g.String(); s != "32x16@60" {
		t.Fatal(s)
	}
}

func TestTimingBrightness(t *testing.T) {
	g := Geometry{Width: 32, Height: 16, Refresh: 1000}
	if p := g.Timing(0).LedOnPeriod; p != 0 {
		t.Fatalf("brightness 0: %s", p)
	}
	tm := g.Timing(255)
	if tm.LedOnPeriod >= tm.HsyncPeriod {
		t.Fatalf("brightness 255: %s >= %s", tm.LedOnPeriod, tm.HsyncPeriod)
	}
	if tm.LedOnPeriod != tm.HsyncPeriod*255/256 {
		t.Fatalf("brightness 255: %s", tm.LedOnPeriod)
	}
}
