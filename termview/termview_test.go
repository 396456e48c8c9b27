// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package termview

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/GermanBionicSystems/hub12/mono"
	"github.com/google/go-cmp/cmp"
	"github.com/maruel/ansi256"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func TestDraw(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{W: 3, H: 2, Writer: &out})
	if s := d.String(); s != "TermView{3x2}" {
		t.Fatal(s)
	}
	if d.ColorModel() != image1bit.BitModel {
		t.Fatal("unexpected color model")
	}
	img := mono.NewHorizontalMSB(d.Bounds())
	img.SetBit(0, 0, image1bit.On)
	img.SetBit(2, 1, image1bit.On)
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	on := ansi256.Default.Block(color.NRGBA{R: 255, A: 255})
	off := ansi256.Default.Block(color.NRGBA{R: 32, G: 32, B: 32, A: 255})
	frame := "\r\033[0m" + on + off + off + "\033[0m\n" +
		"\r\033[0m" + off + off + on + "\033[0m\n"
	if diff := cmp.Diff(frame, out.String()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	// Redraws go back up first.
	out.Reset()
	if err := d.Draw(d.Bounds(), image.NewUniform(color.Black), image.Point{}); err != nil {
		t.Fatal(err)
	}
	cleared := "\033[2A" +
		"\r\033[0m" + off + off + off + "\033[0m\n" +
		"\r\033[0m" + off + off + off + "\033[0m\n"
	if diff := cmp.Diff(cleared, out.String()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	out.Reset()
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "\033[0m\n" {
		t.Fatalf("%q", out.String())
	}
}

func TestDrawColors(t *testing.T) {
	var out bytes.Buffer
	green := color.NRGBA{G: 255, A: 255}
	d := New(&Opts{W: 1, H: 1, On: green, Writer: &out})
	if err := d.Draw(d.Bounds(), image.NewUniform(color.White), image.Point{}); err != nil {
		t.Fatal(err)
	}
	if want := "\r\033[0m" + ansi256.Default.Block(green) + "\033[0m\n"; out.String() != want {
		t.Fatalf("got %q want %q", out.String(), want)
	}
}
