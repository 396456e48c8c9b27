// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub12sim

import (
	"bytes"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/GermanBionicSystems/hub12"
	"github.com/GermanBionicSystems/hub12/mono"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func TestPanelDecodesScanLines(t *testing.T) {
	p := New(hub12.Geometry{Width: 32, Height: 16, Refresh: 60}, nil)
	c, err := p.Connect(8*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		t.Fatal(err)
	}
	var scan [hub12.ScanLines][]byte
	for i := range scan {
		scan[i] = make([]byte, 16)
	}
	hub12.Interleave(&scan, hub12.TestPattern32x16[:], 32, 16)
	for i, line := range scan {
		if err := c.Tx(line, nil); err != nil {
			t.Fatal(err)
		}
		p.Latch.Out(gpio.High)
		p.A.Out(i&2 != 0)
		p.B.Out(i&1 != 0)
		p.Enable.Out(gpio.High)
		p.Enable.Out(gpio.Low)
		p.Latch.Out(gpio.Low)
	}
	if diff := cmp.Diff(hub12.TestPattern32x16[:], p.Snapshot().Pix); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	want := Stats{Transfers: 4, Bytes: 64, Latches: 4, Pulses: 4}
	if s := p.Stats(); s != want {
		t.Fatalf("Stats() = %+v, want %+v", s, want)
	}
}

func TestPanelNeedsLatch(t *testing.T) {
	p := New(hub12.Geometry{Width: 32, Height: 16}, nil)
	c, _ := p.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err := c.Tx(bytes.Repeat([]byte{0xff}, 16), nil); err != nil {
		t.Fatal(err)
	}
	p.Enable.Out(gpio.High)
	for _, b := range p.Snapshot().Pix {
		if b != 0 {
			t.Fatal("data shown without a latch pulse")
		}
	}
	if !p.Lit() || p.Enable.Read() != gpio.High {
		t.Fatal("OE should be high")
	}
}

func TestPanelShortWritesShift(t *testing.T) {
	p := New(hub12.Geometry{Width: 32, Height: 16}, nil)
	c, _ := p.Connect(physic.MegaHertz, spi.Mode0, 8)
	for i := 0; i < 20; i++ {
		if err := c.Tx([]byte{byte(i)}, nil); err != nil {
			t.Fatal(err)
		}
	}
	want := []byte{4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
	if diff := cmp.Diff(want, p.shift); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	long := make([]byte, 40)
	for i := range long {
		long[i] = byte(100 + i)
	}
	if err := c.TxPackets([]spi.Packet{{W: long}}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(long[24:], p.shift); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestPanelPort(t *testing.T) {
	p := New(hub12.Geometry{Width: 33, Height: 1}, nil)
	if s := p.String(); s != "hub12sim(64x16)" {
		t.Fatal(s)
	}
	if _, err := p.Connect(physic.MegaHertz, spi.Mode3, 8); err == nil {
		t.Fatal("mode 3 must be refused")
	}
	if _, err := p.Connect(physic.MegaHertz, spi.Mode0, 9); err == nil {
		t.Fatal("9 bits words must be refused")
	}
	c, err := p.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Tx(nil, []byte{0}); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("got %v, want ErrNotImplemented", err)
	}
	if err := p.Enable.PWM(gpio.DutyHalf, physic.KiloHertz); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("got %v, want ErrNotImplemented", err)
	}
	if s := p.Latch.String(); s != "hub12sim(64x16).LAT" {
		t.Fatal(s)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Tx([]byte{0}, nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("got %v, want ErrClosed", err)
	}
}

func TestPanelTxDelay(t *testing.T) {
	clk := clockwork.NewFakeClock()
	p := New(hub12.Geometry{Width: 32, Height: 16}, &Opts{TxDelay: time.Millisecond, Clock: clk})
	c, _ := p.Connect(physic.MegaHertz, spi.Mode0, 8)
	done := make(chan error)
	go func() { done <- c.Tx([]byte{1}, nil) }()
	clk.BlockUntil(1)
	if p.Stats().Transfers != 0 {
		t.Fatal("transfer completed before its delay")
	}
	clk.Advance(time.Millisecond)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if p.Stats().Transfers != 1 {
		t.Fatal("transfer not counted")
	}
}

// TestEngine runs the scan engine on the wall clock against a panel and
// checks the panel ends up showing the bitmap.
func TestEngine(t *testing.T) {
	g := hub12.Geometry{Width: 64, Height: 32, Refresh: 200}
	p := New(g, nil)
	d, err := hub12.New(p, p.Pins(), &hub12.Opts{
		Width:      g.Width,
		Height:     g.Height,
		Refresh:    g.Refresh,
		Brightness: 32,
		Allocator:  hub12.HeapAllocator{},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer d.Halt()

	img := mono.NewHorizontalMSB(image.Rect(0, 0, g.Width, g.Height))
	for x := 0; x < g.Width; x++ {
		img.SetBit(x, x%g.Height, image1bit.On)
		img.SetBit(x, g.Height-1, image1bit.On)
	}
	if err := d.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(10 * time.Second)
	for !bytes.Equal(p.Snapshot().Pix, img.Pix) {
		if time.Now().After(deadline) {
			t.Fatalf("panel never showed the image, stats %+v", d.Stats())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if s := d.Stats(); s.Errors != 0 || s.Frames == 0 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if p.Lit() {
		t.Fatal("LEDs left on after Halt")
	}
	ps := p.Stats()
	if ps.Bytes != ps.Transfers*uint64(g.HsyncLength()) {
		t.Fatalf("partial scan lines: %+v", ps)
	}
}
