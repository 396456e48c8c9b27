// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package webview provides a monochrome display.Drawer that is also an HTTP
// handler. Clients get the current panel content as a PNG picture of LED
// dots, followed by a new picture every time it changes.
//
// The stream uses "multipart/x-mixed-replace", the MJPEG protocol of IP
// cameras, which browsers render in a plain <img> tag. Add "?snapshot=1" to
// the URL to get a single picture instead.
package webview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"sync"

	"github.com/GermanBionicSystems/hub12/mono"
	"github.com/fogleman/gg"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Opts represents the options available for this display.
type Opts struct {
	W, H int
	// Scale is the size in pixels of one LED in the pictures. Defaults to 8.
	Scale int
	// On and Off are the colors of lit and dark LEDs. The zero values select
	// the red of P10 modules and a dark gray.
	On, Off color.NRGBA
	// Logger receives client errors. nil discards them.
	Logger *slog.Logger
}

// Dev keeps the last drawn panel content and streams it to HTTP clients.
type Dev struct {
	scale   int
	on, off color.NRGBA
	log     *slog.Logger

	mu      sync.Mutex
	fb      *mono.HorizontalMSB
	encoded []byte
	clients map[*client]struct{}
}

type client struct {
	refresh   chan struct{}
	terminate chan struct{}
}

// New returns a Dev with all the LEDs off.
func New(opts *Opts) *Dev {
	d := &Dev{
		scale:   opts.Scale,
		on:      opts.On,
		off:     opts.Off,
		log:     opts.Logger,
		fb:      mono.NewHorizontalMSB(image.Rect(0, 0, opts.W, opts.H)),
		clients: map[*client]struct{}{},
	}
	if d.scale <= 0 {
		d.scale = 8
	}
	if d.on == (color.NRGBA{}) {
		d.on = color.NRGBA{R: 255, A: 255}
	}
	if d.off == (color.NRGBA{}) {
		d.off = color.NRGBA{R: 32, G: 32, B: 32, A: 255}
	}
	if d.log == nil {
		d.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return d
}

func (d *Dev) String() string {
	return fmt.Sprintf("WebView{%dx%d}", d.fb.Rect.Dx(), d.fb.Rect.Dy())
}

// Halt implements conn.Resource. It ends all the running client streams.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for c := range d.clients {
		select {
		case c.terminate <- struct{}{}:
		default:
		}
	}
	return nil
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.fb.Rect
}

// Draw implements display.Drawer. Clients are only sent a new picture when
// the content changed.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := append([]byte(nil), d.fb.Pix...)
	draw.Src.Draw(d.fb, r, src, sp)
	if bytes.Equal(prev, d.fb.Pix) {
		return nil
	}
	d.encoded = nil
	for c := range d.clients {
		select {
		case c.refresh <- struct{}{}:
		default:
		}
	}
	return nil
}

// render paints every LED as a dot on a black background.
func (d *Dev) render() image.Image {
	s := float64(d.scale)
	w, h := d.fb.Rect.Dx(), d.fb.Rect.Dy()
	dc := gg.NewContext(w*d.scale, h*d.scale)
	dc.SetColor(color.Black)
	dc.Clear()
	for _, lit := range []bool{false, true} {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if bool(d.fb.BitAt(x, y)) == lit {
					dc.DrawCircle((float64(x)+0.5)*s, (float64(y)+0.5)*s, 0.4*s)
				}
			}
		}
		if lit {
			dc.SetColor(d.on)
		} else {
			dc.SetColor(d.off)
		}
		dc.Fill()
	}
	return dc.Image()
}

// snapshot returns the PNG encoded picture of the content, encoding it at
// most once per change.
func (d *Dev) snapshot() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.encoded == nil {
		var buf bytes.Buffer
		if err := encoder.Encode(&buf, d.render()); err != nil {
			return nil, err
		}
		d.encoded = buf.Bytes()
	}
	return d.encoded, nil
}

// encoder trades size for speed, pictures are sent once and discarded.
var encoder = png.Encoder{CompressionLevel: png.BestSpeed, BufferPool: &bufferPool{}}

type bufferPool sync.Pool

func (p *bufferPool) Get() *png.EncoderBuffer {
	buf, _ := (*sync.Pool)(p).Get().(*png.EncoderBuffer)
	return buf
}

func (p *bufferPool) Put(buf *png.EncoderBuffer) {
	(*sync.Pool)(p).Put(buf)
}

var _ display.Drawer = &Dev{}
