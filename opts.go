// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub12

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

var (
	// ErrTimeout is returned when no vsync happened within the allotted time.
	ErrTimeout = errors.New("hub12: timed out waiting for vsync")
	// ErrPin is returned when a control line is missing or cannot be driven.
	ErrPin = errors.New("hub12: control pin unavailable")
	// ErrAlloc is returned when the frame or scan buffers cannot be allocated.
	ErrAlloc = errors.New("hub12: buffer allocation failed")
	// ErrHalted is returned by operations on a halted device.
	ErrHalted = errors.New("hub12: device halted")
)

// DefaultPinNames are the GPIO names of the enable (OE), latch (LAT), A and
// B lines, in that order, as wired on the usual Raspberry Pi adapters.
var DefaultPinNames = [4]string{"18", "17", "22", "27"}

// Pins are the four control lines of a HUB12 panel.
type Pins struct {
	// Enable is the output enable line, active high on the driver side.
	Enable gpio.PinOut
	// Latch moves the shifted bits to the row drivers on a rising edge.
	Latch gpio.PinOut
	// A and B select one of the four multiplexed row groups.
	A gpio.PinOut
	B gpio.PinOut
}

type namedPin struct {
	name string
	p    gpio.PinOut
}

func (p *Pins) list() []namedPin {
	return []namedPin{{"oe", p.Enable}, {"la", p.Latch}, {"a", p.A}, {"b", p.B}}
}

// init validates the pins and drives them all low.
func (p *Pins) init() error {
	if p == nil {
		return fmt.Errorf("%w: no pins", ErrPin)
	}
	for _, np := range p.list() {
		if np.p == nil || np.p == gpio.INVALID {
			return fmt.Errorf("%w: %s is not set", ErrPin, np.name)
		}
	}
	for _, np := range p.list() {
		if err := np.p.Out(gpio.Low); err != nil {
			return fmt.Errorf("%w: %s (%s): %w", ErrPin, np.name, np.p, err)
		}
	}
	return nil
}

// Opts defines the options for the device.
type Opts struct {
	// Width and Height of the panel array in pixels. They are rounded up to
	// whole 32x16 modules.
	Width  int
	Height int
	// Refresh is the full frame refresh rate in Hz, at most MaxRefresh.
	Refresh int
	// Brightness is the share of each scan line cycle the LEDs are on, in
	// 1/256 units. It can be changed later with SetBrightness. Unlike the
	// other fields, 0 is taken as is and keeps the LEDs off.
	Brightness uint8
	// Speed is the SPI clock. Long ribbon cables may need less than the
	// default.
	Speed physic.Frequency
	// Clock drives the scan timers. nil selects the wall clock.
	Clock clockwork.Clock
	// Logger receives configuration and diagnostic records. nil discards
	// them.
	Logger *slog.Logger
	// Allocator provides the scan buffers. nil probes with ProbeAllocator.
	Allocator Allocator
}

// DefaultOpts is a single P10 module at 60Hz and half brightness.
var DefaultOpts = Opts{
	Width:      32,
	Height:     16,
	Refresh:    60,
	Brightness: 128,
	Speed:      8 * physic.MegaHertz,
}
