// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mono implements a packed 1 bit per pixel image laid out the way a
// HUB12 panel is fed: row-major, 8 horizontal pixels per byte, leftmost
// pixel in the most significant bit.
//
// Colors are periph's image1bit.Bit so the image interoperates with the
// other monochrome drivers.
package mono

import (
	"image"
	"image/color"
	"image/draw"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// HorizontalMSB is a 1 bit image. Each row is Stride bytes long; bit 7 of
// the first byte of a row is the pixel at Rect.Min.X.
type HorizontalMSB struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

// NewHorizontalMSB returns an initialized HorizontalMSB instance, all
// pixels are Off.
func NewHorizontalMSB(r image.Rectangle) *HorizontalMSB {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &HorizontalMSB{Rect: r}
	}
	stride := (w + 7) / 8
	return &HorizontalMSB{Pix: make([]byte, stride*h), Stride: stride, Rect: r}
}

// Wrap returns an image using pix as its backing store. pix must be at least
// ((w+7)/8)*h bytes long; it is not copied.
func Wrap(pix []byte, r image.Rectangle) *HorizontalMSB {
	stride := (r.Dx() + 7) / 8
	if len(pix) < stride*r.Dy() {
		panic("mono: buffer too small for image")
	}
	return &HorizontalMSB{Pix: pix, Stride: stride, Rect: r}
}

// ColorModel implements image.Image.
func (i *HorizontalMSB) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements image.Image.
func (i *HorizontalMSB) Bounds() image.Rectangle {
	return i.Rect
}

// At implements image.Image.
func (i *HorizontalMSB) At(x, y int) color.Color {
	return i.BitAt(x, y)
}

// BitAt is the optimized version of At().
func (i *HorizontalMSB) BitAt(x, y int) image1bit.Bit {
	if !(image.Point{x, y}.In(i.Rect)) {
		return image1bit.Off
	}
	offset, mask := i.PixOffset(x, y)
	return image1bit.Bit(i.Pix[offset]&mask != 0)
}

// Opaque scans the entire image and reports whether it is fully opaque.
func (i *HorizontalMSB) Opaque() bool {
	return true
}

// PixOffset returns the index of the byte holding pixel (x, y) and the bit
// mask selecting it.
func (i *HorizontalMSB) PixOffset(x, y int) (int, byte) {
	dx := x - i.Rect.Min.X
	offset := (y-i.Rect.Min.Y)*i.Stride + dx/8
	return offset, 0x80 >> uint(dx&7)
}

// Set implements draw.Image
func (i *HorizontalMSB) Set(x, y int, c color.Color) {
	i.SetBit(x, y, image1bit.BitModel.Convert(c).(image1bit.Bit))
}

// SetBit is the optimized version of Set().
func (i *HorizontalMSB) SetBit(x, y int, b image1bit.Bit) {
	if !(image.Point{x, y}.In(i.Rect)) {
		return
	}
	offset, mask := i.PixOffset(x, y)
	if b {
		i.Pix[offset] |= mask
	} else {
		i.Pix[offset] &^= mask
	}
}

// SubImage returns an image representing the portion of the image p visible
// through r. The returned value shares pixels with the original image when r
// is byte aligned on X, otherwise the pixels are copied.
func (i *HorizontalMSB) SubImage(r image.Rectangle) image.Image {
	r = r.Intersect(i.Rect)
	if r.Empty() {
		return &HorizontalMSB{}
	}
	if (r.Min.X-i.Rect.Min.X)%8 == 0 {
		offset, _ := i.PixOffset(r.Min.X, r.Min.Y)
		return &HorizontalMSB{Pix: i.Pix[offset:], Stride: i.Stride, Rect: r}
	}
	dst := NewHorizontalMSB(r)
	draw.Src.Draw(dst, r, i, r.Min)
	return dst
}

// Clear sets every pixel to b.
func (i *HorizontalMSB) Clear(b image1bit.Bit) {
	v := byte(0)
	if b {
		v = 0xff
	}
	for x := range i.Pix {
		i.Pix[x] = v
	}
}

var _ draw.Image = &HorizontalMSB{}
