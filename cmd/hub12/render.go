// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/fogleman/gg"
	"github.com/go-errors/errors"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/GermanBionicSystems/hub12"
	"github.com/GermanBionicSystems/hub12/mono"
)

// loadFace returns the font face named name, sized for h pixels high rows.
func loadFace(name string, h int) (font.Face, error) {
	switch name {
	case "basic":
		return basicfont.Face7x13, nil
	case "regular":
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return nil, errors.Wrap(err, 0)
		}
		return truetype.NewFace(f, &truetype.Options{Size: float64(h) * 0.75, DPI: 72, Hinting: font.HintingFull}), nil
	default:
		return nil, errors.Errorf("unknown font %q", name)
	}
}

// renderText renders text vertically centered on a h pixels high bitmap,
// at least w pixels wide and wider if needed to fit the whole text.
func renderText(w, h int, text, fontName string) (*mono.HorizontalMSB, error) {
	face, err := loadFace(fontName, h)
	if err != nil {
		return nil, err
	}
	m := gg.NewContext(1, 1)
	m.SetFontFace(face)
	tw, _ := m.MeasureString(text)
	if n := int(math.Ceil(tw)); n > w {
		w = n
	}
	dc := gg.NewContext(w, h)
	dc.SetColor(color.Black)
	dc.Clear()
	dc.SetColor(color.White)
	dc.SetFontFace(face)
	dc.DrawStringAnchored(text, 0, float64(h)/2, 0, 0.5)
	return toMono(dc.Image()), nil
}

// renderFrame draws a border and the diagonals of each module, to check the
// wiring of arrays of several modules.
func renderFrame(w, h int) *mono.HorizontalMSB {
	dc := gg.NewContext(w, h)
	dc.SetColor(color.Black)
	dc.Clear()
	dc.SetColor(color.White)
	dc.SetLineWidth(1)
	dc.DrawRectangle(0.5, 0.5, float64(w)-1, float64(h)-1)
	dc.Stroke()
	for y := 0; y < h; y += hub12.ModuleHeight {
		for x := 0; x < w; x += hub12.ModuleWidth {
			dc.DrawLine(float64(x)+0.5, float64(y)+0.5, float64(x+hub12.ModuleWidth)-0.5, float64(y+hub12.ModuleHeight)-0.5)
			dc.Stroke()
		}
	}
	return toMono(dc.Image())
}

func toMono(src image.Image) *mono.HorizontalMSB {
	img := mono.NewHorizontalMSB(src.Bounds())
	draw.Draw(img, img.Rect, src, src.Bounds().Min, draw.Src)
	return img
}

// content returns what to show on a panel of geometry g.
func (o *options) content(g hub12.Geometry) (*mono.HorizontalMSB, error) {
	if o.text != "" {
		return renderText(g.Width, g.Height, o.text, o.font)
	}
	if g.Width == hub12.ModuleWidth && g.Height == hub12.ModuleHeight {
		return mono.Wrap(append([]byte(nil), hub12.TestPattern32x16[:]...), image.Rect(0, 0, g.Width, g.Height)), nil
	}
	return renderFrame(g.Width, g.Height), nil
}

// show replaces the bitmap of d between two frames.
func show(d *hub12.Dev, img image.Image) error {
	if err := d.Stop(); err != nil {
		return errors.Wrap(err, 0)
	}
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		return errors.Wrap(err, 0)
	}
	if err := d.Start(); err != nil {
		return errors.Wrap(err, 0)
	}
	return nil
}

// window draws the part of img starting at column x onto a w pixels wide
// bitmap, wrapping around.
func window(img *mono.HorizontalMSB, x, w int) *mono.HorizontalMSB {
	dst := mono.NewHorizontalMSB(image.Rect(0, 0, w, img.Rect.Dy()))
	iw := img.Rect.Dx()
	for dx := 0; dx < w; dx++ {
		sx := (x + dx) % iw
		for y := 0; y < img.Rect.Dy(); y++ {
			dst.SetBit(dx, y, img.BitAt(sx, y))
		}
	}
	return dst
}
