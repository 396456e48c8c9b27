// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termview implements a monochrome display.Drawer that outputs to
// the terminal using ANSI color codes, one character cell per LED.
//
// Useful to watch a simulated panel, or to preview content before wiring
// the real one.
package termview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/GermanBionicSystems/hub12/mono"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Opts represents the options available for this display.
type Opts struct {
	W, H int
	// On and Off are the colors of lit and dark LEDs. The zero values select
	// the red of P10 modules and a dark gray.
	On, Off color.NRGBA
	Palette *ansi256.Palette
	// Writer defaults to the console.
	Writer io.Writer

	_ struct{}
}

// Dev is a LED matrix emulator that outputs to the console.
//
// It is not safe for concurrent use.
type Dev struct {
	w       io.Writer
	rect    image.Rectangle
	palette ansi256.Palette
	on, off string

	fb    *mono.HorizontalMSB
	drawn bool
	buf   bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	on, off := opts.On, opts.Off
	if on == (color.NRGBA{}) {
		on = color.NRGBA{R: 255, A: 255}
	}
	if off == (color.NRGBA{}) {
		off = color.NRGBA{R: 32, G: 32, B: 32, A: 255}
	}
	w := opts.Writer
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	r := image.Rect(0, 0, opts.W, opts.H)
	d := &Dev{
		w:       w,
		rect:    r,
		palette: *p,
		fb:      mono.NewHorizontalMSB(r),
	}
	d.on = d.palette.Block(on)
	d.off = d.palette.Block(off)
	return d
}

func (d *Dev) String() string {
	return fmt.Sprintf("TermView{%dx%d}", d.rect.Dx(), d.rect.Dy())
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw implements display.Drawer.
//
// The whole matrix is redrawn in place on each call.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if img, ok := src.(*mono.HorizontalMSB); ok && r == d.rect && img.Rect == d.rect && img.Stride == d.fb.Stride && sp == img.Rect.Min {
		copy(d.fb.Pix, img.Pix)
	} else {
		draw.Src.Draw(d.fb, r.Intersect(d.rect), src, sp)
	}
	return d.refresh()
}

func (d *Dev) refresh() error {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	if d.drawn {
		// Back to the top left corner of the previous frame.
		_, _ = fmt.Fprintf(&d.buf, "\033[%dA", d.rect.Dy())
	}
	for y := d.rect.Min.Y; y < d.rect.Max.Y; y++ {
		_, _ = d.buf.WriteString("\r\033[0m")
		for x := d.rect.Min.X; x < d.rect.Max.X; x++ {
			if d.fb.BitAt(x, y) {
				_, _ = d.buf.WriteString(d.on)
			} else {
				_, _ = d.buf.WriteString(d.off)
			}
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	d.drawn = true
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
