// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hub12sim simulates an array of HUB12 panels.
//
// A HUB12 module is a chain of 74HC595-like shift registers clocked from the
// R and CLK lines, whose outputs are copied to the row drivers on a rising
// edge of LAT. The A and B lines select one of the four row groups and OE
// lights it. Panel models that: it is a spi.PortCloser receiving the bit
// stream and exposes the four control lines as gpio.PinOut, so it can be
// handed to hub12.New in place of real hardware.
//
// The image seen on the panel is updated each time OE goes high, from the
// latched data and the selected row group.
package hub12sim

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/GermanBionicSystems/hub12"
	"github.com/GermanBionicSystems/hub12/mono"
	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

var (
	// ErrNotImplemented is returned by the features the panel doesn't have.
	ErrNotImplemented = errors.New("hub12sim: not implemented")
	// ErrClosed is returned once the port was closed.
	ErrClosed = errors.New("hub12sim: port closed")
)

// Control lines.
const (
	lineEnable = iota
	lineLatch
	lineA
	lineB
	numLines
)

// Opts defines the options for the simulated panel.
type Opts struct {
	// TxDelay is how long each transfer takes, to simulate a slow SPI
	// controller.
	TxDelay time.Duration
	// Clock is used for TxDelay. nil selects the wall clock.
	Clock clockwork.Clock
}

// Stats are counters of the panel activity.
type Stats struct {
	// Transfers and Bytes count the SPI writes.
	Transfers uint64
	Bytes     uint64
	// Latches counts the rising edges of LAT.
	Latches uint64
	// Pulses counts the rising edges of OE.
	Pulses uint64
}

// Panel is a simulated HUB12 panel array.
type Panel struct {
	// Enable, Latch, A and B are the OE, LAT, A and B inputs.
	Enable *Pin
	Latch  *Pin
	A      *Pin
	B      *Pin

	geom    hub12.Geometry
	clock   clockwork.Clock
	txDelay time.Duration

	mu      sync.Mutex
	closed  bool
	speed   physic.Frequency
	shift   []byte
	latched []byte
	levels  [numLines]gpio.Level
	display *mono.HorizontalMSB
	stats   Stats
}

// New returns a panel array of geometry g, rounded up to whole modules.
// opts may be nil.
func New(g hub12.Geometry, opts *Opts) *Panel {
	g = g.Round()
	p := &Panel{
		geom:    g,
		clock:   clockwork.NewRealClock(),
		shift:   make([]byte, g.HsyncLength()),
		latched: make([]byte, g.HsyncLength()),
		display: mono.NewHorizontalMSB(image.Rect(0, 0, g.Width, g.Height)),
	}
	if opts != nil {
		p.txDelay = opts.TxDelay
		if opts.Clock != nil {
			p.clock = opts.Clock
		}
	}
	for i, name := range [numLines]string{"OE", "LAT", "A", "B"} {
		pin := &Pin{panel: p, line: i, name: name}
		switch i {
		case lineEnable:
			p.Enable = pin
		case lineLatch:
			p.Latch = pin
		case lineA:
			p.A = pin
		case lineB:
			p.B = pin
		}
	}
	return p
}

func (p *Panel) String() string {
	return fmt.Sprintf("hub12sim(%dx%d)", p.geom.Width, p.geom.Height)
}

// Pins returns the control lines, ready for hub12.New.
func (p *Panel) Pins() *hub12.Pins {
	return &hub12.Pins{Enable: p.Enable, Latch: p.Latch, A: p.A, B: p.B}
}

// Geometry returns the size of the array.
func (p *Panel) Geometry() hub12.Geometry {
	return p.geom
}

// Connect implements spi.Port.
//
// Like the real modules, only mode 0 with 8 bit words makes sense.
func (p *Panel) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if mode != spi.Mode0 {
		return nil, fmt.Errorf("hub12sim: unsupported mode %s", mode)
	}
	if bits != 8 {
		return nil, fmt.Errorf("hub12sim: unsupported %d bits word", bits)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	p.speed = f
	return &simConn{p: p}, nil
}

// LimitSpeed implements spi.PortCloser.
func (p *Panel) LimitSpeed(f physic.Frequency) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.speed == 0 || f < p.speed {
		p.speed = f
	}
	return nil
}

// Close implements spi.PortCloser.
func (p *Panel) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Snapshot returns a copy of the image currently shown.
func (p *Panel) Snapshot() *mono.HorizontalMSB {
	p.mu.Lock()
	defer p.mu.Unlock()
	img := mono.NewHorizontalMSB(p.display.Rect)
	copy(img.Pix, p.display.Pix)
	return img
}

// Lit reports whether OE is high.
func (p *Panel) Lit() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return bool(p.levels[lineEnable])
}

// Stats returns the activity counters.
func (p *Panel) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// write shifts w into the register chain. Bytes pushed beyond the end of
// the chain are lost.
func (p *Panel) write(w []byte) error {
	if p.txDelay > 0 {
		p.clock.Sleep(p.txDelay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	n := len(p.shift)
	if len(w) >= n {
		copy(p.shift, w[len(w)-n:])
	} else {
		copy(p.shift, p.shift[len(w):])
		copy(p.shift[n-len(w):], w)
	}
	p.stats.Transfers++
	p.stats.Bytes += uint64(len(w))
	return nil
}

// set changes the level of a control line and acts on rising edges.
func (p *Panel) set(line int, l gpio.Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.levels[line]
	p.levels[line] = l
	if !l || prev {
		return
	}
	switch line {
	case lineLatch:
		copy(p.latched, p.shift)
		p.stats.Latches++
	case lineEnable:
		i := 0
		if p.levels[lineA] {
			i |= 2
		}
		if p.levels[lineB] {
			i |= 1
		}
		hub12.DeinterleaveLine(p.display.Pix, p.latched, i, p.geom.Width, p.geom.Height)
		p.stats.Pulses++
	}
}

func (p *Panel) level(line int) gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.levels[line]
}

// simConn is the write only connection to the register chain.
type simConn struct {
	p *Panel
}

func (c *simConn) String() string {
	return c.p.String()
}

// Tx implements conn.Conn. The panel has no data output, r must be empty.
func (c *simConn) Tx(w, r []byte) error {
	if len(r) != 0 {
		return fmt.Errorf("hub12sim: read %w", ErrNotImplemented)
	}
	return c.p.write(w)
}

func (c *simConn) Duplex() conn.Duplex {
	return conn.Half
}

// TxPackets implements spi.Conn.
func (c *simConn) TxPackets(pkts []spi.Packet) error {
	for _, pkt := range pkts {
		if err := c.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

var _ spi.PortCloser = &Panel{}
var _ spi.Conn = &simConn{}
