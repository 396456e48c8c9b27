// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub12

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/gpio"
)

// Transfer guard states.
const (
	idle int32 = iota
	pending
)

// rowSelect is the level of the A and B lines for each scan line.
var rowSelect = [ScanLines][2]gpio.Level{
	{gpio.Low, gpio.Low},
	{gpio.Low, gpio.High},
	{gpio.High, gpio.Low},
	{gpio.High, gpio.High},
}

// scanLoop is the hsync cycle. It owns t and exits when quit is closed or
// when it fires while the engine is not running.
//
// Deadlines are computed from the previous deadline rather than from the
// time the timer was serviced, so jitter does not accumulate. When the loop
// fell behind by one or more whole periods, those cycles are skipped.
func (d *Dev) scanLoop(t clockwork.Timer, next time.Time, period time.Duration, quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer t.Stop()
	for {
		select {
		case <-quit:
			return
		case <-t.Chan():
		}
		d.out(d.pins.Latch, gpio.Low)
		if !d.running.Load() {
			d.vs.signal()
			return
		}
		d.requestTransfer()

		now := d.clock.Now()
		next = next.Add(period)
		if !next.After(now) {
			missed := now.Sub(next)/period + 1
			next = next.Add(missed * period)
			d.stats.overruns.Add(uint64(missed))
		}
		t.Reset(next.Sub(now))
	}
}

// requestTransfer queues the current scan line unless one is in flight, in
// which case the cycle is dropped and the same line is retried next time.
func (d *Dev) requestTransfer() {
	if !d.guard.CompareAndSwap(idle, pending) {
		d.stats.dropped.Add(1)
		return
	}
	if !d.xfer.submit(d.scan.lines[d.scanIndex.Load()], d.scanlineShifted) {
		// Not expected while the guard is held.
		d.stats.dropped.Add(1)
		d.guard.Store(idle)
	}
}

// scanlineShifted runs on the transport goroutine once a scan line is in
// the shift registers.
func (d *Dev) scanlineShifted(err error) {
	i := d.scanIndex.Load()
	if err != nil {
		d.fail(fmt.Errorf("hub12: scan line %d: %w", i, err))
		d.release()
		return
	}
	d.out(d.pins.Latch, gpio.High)
	d.out(d.pins.A, rowSelect[i][0])
	d.out(d.pins.B, rowSelect[i][1])
	if p := time.Duration(d.ledOn.Load()); p > 0 && d.running.Load() && BlankMode(d.blank.Load()) == Unblank {
		d.out(d.pins.Enable, gpio.High)
		d.led.Reset(p)
	}
	d.stats.scanlines.Add(1)
	if i+1 == ScanLines {
		d.stats.frames.Add(1)
		d.vsync()
	} else {
		d.scanIndex.Store(i + 1)
	}
	d.release()
}

// release clears the transfer guard. Once the engine is stopping, it also
// wakes the teardown waiting for the last transfer.
func (d *Dev) release() {
	d.guard.Store(idle)
	if !d.running.Load() {
		d.vs.signal()
	}
}

// vsync refills the scan buffers from the bitmap and signals the new frame.
func (d *Dev) vsync() {
	Interleave(&d.scan.lines, d.fb.Pix, d.geom.Width, d.geom.Height)
	d.scanIndex.Store(0)
	d.vs.signal()
}

// ledOff ends the brightness pulse.
func (d *Dev) ledOff() {
	d.out(d.pins.Enable, gpio.Low)
}

// out drives a control line. Errors can't be returned from the scan paths,
// they are recorded for Stats.
func (d *Dev) out(p gpio.PinOut, l gpio.Level) {
	if err := p.Out(l); err != nil {
		d.fail(fmt.Errorf("%w: %s: %w", ErrPin, p, err))
	}
}

func (d *Dev) fail(err error) {
	d.stats.errors.Add(1)
	d.stats.lastErr.Store(&errBox{err})
	d.log.Debug("hub12: scan error", "err", err)
}

type errBox struct {
	err error
}
