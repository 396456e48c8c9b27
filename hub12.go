// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub12

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GermanBionicSystems/hub12/mono"
	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// New returns a Dev driving a HUB12 panel array over p, with the scan
// already running.
//
// The pins are driven low before anything else; the engine does not start if
// any of them can't be. opts may be nil, zero fields take their value from
// DefaultOpts.
func New(p spi.Port, pins *Pins, opts *Opts) (*Dev, error) {
	o := DefaultOpts
	if opts != nil {
		o = *opts
		if o.Width == 0 {
			o.Width = DefaultOpts.Width
		}
		if o.Height == 0 {
			o.Height = DefaultOpts.Height
		}
		if o.Refresh == 0 {
			o.Refresh = DefaultOpts.Refresh
		}
		if o.Speed == 0 {
			o.Speed = DefaultOpts.Speed
		}
	}
	if err := pins.init(); err != nil {
		return nil, err
	}
	c, err := p.Connect(o.Speed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("hub12: %w", err)
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Allocator == nil {
		o.Allocator = ProbeAllocator()
	}
	d := &Dev{
		c:     c,
		pins:  *pins,
		clock: o.Clock,
		log:   o.Logger,
		alloc: o.Allocator,
		vs:    newVsync(o.Clock),
	}
	d.brightness.Store(uint32(o.Brightness))
	d.led = d.clock.AfterFunc(time.Hour, d.ledOff)
	d.led.Stop()
	d.xfer = newTransport(c)
	if _, err := d.Configure(Geometry{Width: o.Width, Height: o.Height, Refresh: o.Refresh}); err != nil {
		d.xfer.close(true)
		return nil, err
	}
	return d, nil
}

// Dev is an open handle to a HUB12 panel array.
//
// The scan runs on its own goroutines: a timer loop pacing the scan lines
// and the goroutine owning the SPI connection, which also handles transfer
// completions. They share state with the methods below through atomics only.
// mu serializes the lifecycle methods and Draw.
type Dev struct {
	c     spi.Conn
	pins  Pins
	clock clockwork.Clock
	log   *slog.Logger
	alloc Allocator
	xfer  *transport
	vs    *vsync
	led   clockwork.Timer

	mu     sync.Mutex
	halted bool
	geom   Geometry
	timing Timing
	fb     *mono.HorizontalMSB
	scan   *scanBuffers
	quit   chan struct{}
	done   chan struct{}

	brightness atomic.Uint32
	ledOn      atomic.Int64
	blank      atomic.Int32
	running    atomic.Bool
	guard      atomic.Int32
	scanIndex  atomic.Int32

	stats struct {
		frames    atomic.Uint64
		scanlines atomic.Uint64
		dropped   atomic.Uint64
		overruns  atomic.Uint64
		errors    atomic.Uint64
		lastErr   atomic.Pointer[errBox]
	}
}

func (d *Dev) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fmt.Sprintf("hub12.Dev{%s, %s}", d.c, d.geom)
}

// Start starts the scan. It is a no-op if already running.
func (d *Dev) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	return d.startLocked()
}

// Stop stops the scan and returns once no transfer is in flight anymore.
// It is a no-op if not running.
//
// The LEDs are turned off. ErrTimeout is returned if the SPI port did not
// complete the last transfer within the vsync timeout; the engine is then
// stopped but the transfer is still outstanding.
func (d *Dev) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	return d.stopLocked()
}

func (d *Dev) startLocked() error {
	if d.running.Load() {
		return nil
	}
	if err := d.drain(); err != nil {
		return err
	}
	d.vsync()
	period := d.timing.HsyncPeriod
	d.quit = make(chan struct{})
	d.done = make(chan struct{})
	t := d.clock.NewTimer(period)
	next := d.clock.Now().Add(period)
	d.running.Store(true)
	go d.scanLoop(t, next, period, d.quit, d.done)
	return nil
}

func (d *Dev) stopLocked() error {
	wasRunning := d.running.Swap(false)
	if wasRunning {
		close(d.quit)
		<-d.done
	}
	// A completion that saw the engine running may still arm the LEDs until
	// the last transfer is drained.
	err := d.drain()
	if wasRunning {
		d.led.Stop()
		d.out(d.pins.Enable, gpio.Low)
		d.out(d.pins.Latch, gpio.Low)
		d.vs.signal()
	}
	return err
}

// drain waits for the in-flight transfer, if any, to complete. The engine
// must not be running.
func (d *Dev) drain() error {
	for d.guard.Load() != idle {
		gen := d.vs.current()
		if d.guard.Load() == idle {
			break
		}
		if err := d.vs.await(context.Background(), gen, d.timing.VsyncTimeout); err != nil {
			d.log.Warn("hub12: transfer did not complete", "timeout", d.timing.VsyncTimeout)
			return fmt.Errorf("%w: transfer still in flight", err)
		}
	}
	return nil
}

// Configure changes the panel geometry, which is first rounded up to whole
// modules, and returns the geometry in effect.
//
// The scan is stopped while the buffers are replaced and restarted if the
// display is unblanked. On error the previous configuration is kept. A
// single 32x16 module starts with a test pattern.
func (d *Dev) Configure(g Geometry) (Geometry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return d.geom, ErrHalted
	}
	g = g.Round()
	if err := d.stopLocked(); err != nil {
		return d.geom, err
	}
	scan, err := newScanBuffers(d.alloc, g.HsyncLength())
	if err != nil {
		d.log.Error("hub12: configure", "mode", g, "alloc", d.alloc, "err", err)
		if d.scan != nil && BlankMode(d.blank.Load()) == Unblank {
			err = errors.Join(err, d.startLocked())
		}
		return d.geom, err
	}
	if d.scan != nil {
		if err := d.scan.free(); err != nil {
			d.log.Warn("hub12: freeing scan buffers", "err", err)
		}
	}
	d.geom = g
	d.fb = mono.NewHorizontalMSB(image.Rect(0, 0, g.Width, g.Height))
	d.scan = scan
	d.timing = g.Timing(uint8(d.brightness.Load()))
	d.ledOn.Store(int64(d.timing.LedOnPeriod))
	if g.Width == ModuleWidth && g.Height == ModuleHeight {
		copy(d.fb.Pix, TestPattern32x16[:])
	}
	w, h := g.PhysicalSize()
	d.log.Info("hub12: configured",
		"mode", g,
		"hsync", d.timing.HsyncPeriod,
		"led", d.timing.LedOnPeriod,
		"vsync_timeout", d.timing.VsyncTimeout,
		"alloc", d.alloc,
		"size", fmt.Sprintf("%sx%s", w, h))
	if BlankMode(d.blank.Load()) == Unblank {
		return g, d.startLocked()
	}
	return g, nil
}

// Blank sets the blanking mode. Unblank starts the scan, every other mode
// stops it.
func (d *Dev) Blank(m BlankMode) error {
	if m < Unblank || m > Powerdown {
		return fmt.Errorf("hub12: invalid blank mode %s", m)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	d.blank.Store(int32(m))
	if m == Unblank {
		return d.startLocked()
	}
	return d.stopLocked()
}

// BlankMode returns the current blanking mode.
func (d *Dev) BlankMode() BlankMode {
	return BlankMode(d.blank.Load())
}

// Suspend stops the scan, for system sleep.
func (d *Dev) Suspend() error {
	return d.Stop()
}

// Resume restarts the scan after Suspend unless the display is blanked.
func (d *Dev) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	if BlankMode(d.blank.Load()) != Unblank {
		return nil
	}
	return d.startLocked()
}

// WaitForFrame blocks until the next frame was shifted out.
//
// A frame completing right as the call is made may be missed, so the wait
// can last up to two frames. timeout <= 0 selects the vsync timeout, two
// frame periods.
func (d *Dev) WaitForFrame(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = d.Timing().VsyncTimeout
	}
	return d.vs.wait(ctx, timeout)
}

// SetBrightness sets the share of each scan line the LEDs are on, in 1/256
// units. It takes effect on the next scan line. 0 turns the LEDs off.
func (d *Dev) SetBrightness(v uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.brightness.Store(uint32(v))
	d.timing.LedOnPeriod = ledOnPeriod(v, d.timing.HsyncPeriod)
	d.ledOn.Store(int64(d.timing.LedOnPeriod))
}

// Brightness returns the current brightness.
func (d *Dev) Brightness() uint8 {
	return uint8(d.brightness.Load())
}

// Backlight implements display.DisplayBacklight. Values are clamped to
// [0, 255].
func (d *Dev) Backlight(intensity display.Intensity) error {
	d.SetBrightness(uint8(max(0, min(255, int(intensity)))))
	return nil
}

// ColorModel implements display.Drawer.
//
// It is a one bit color model, as implemented by image1bit.Bit.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fb.Rect
}

// Draw implements display.Drawer.
//
// It only updates the bitmap, which is picked up at the next frame boundary.
// It doesn't synchronize with the scan, a frame may show a partial update.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	if img, ok := src.(*mono.HorizontalMSB); ok && r == d.fb.Rect && img.Rect == d.fb.Rect && img.Stride == d.fb.Stride && sp == img.Rect.Min {
		// Same layout, full frame: fast path!
		copy(d.fb.Pix, img.Pix)
		return nil
	}
	draw.Src.Draw(d.fb, r, src, sp)
	return nil
}

// Buffer returns the bitmap, Stride() bytes per row, leftmost pixel in the
// most significant bit. Writes are picked up at the next frame boundary.
//
// The slice is only valid until the next Configure.
func (d *Dev) Buffer() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fb.Pix
}

// Stride returns the number of bytes per bitmap row.
func (d *Dev) Stride() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fb.Stride
}

// Geometry returns the geometry in effect.
func (d *Dev) Geometry() Geometry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.geom
}

// Timing returns the current scan timings.
func (d *Dev) Timing() Timing {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timing
}

// Running reports whether the scan is running.
func (d *Dev) Running() bool {
	return d.running.Load()
}

// Stats are counters of the scan since New.
type Stats struct {
	// Frames is the number of complete frames shifted out.
	Frames uint64
	// Scanlines is the number of scan lines shifted out and latched.
	Scanlines uint64
	// Dropped is the number of cycles skipped because the previous transfer
	// was still in flight.
	Dropped uint64
	// Overruns is the number of cycles skipped because the timer was
	// serviced late.
	Overruns uint64
	// Errors is the number of failed transfers and pin writes.
	Errors uint64
	// LastErr is the last of those errors.
	LastErr error
}

// Stats returns the scan counters.
func (d *Dev) Stats() Stats {
	s := Stats{
		Frames:    d.stats.frames.Load(),
		Scanlines: d.stats.scanlines.Load(),
		Dropped:   d.stats.dropped.Load(),
		Overruns:  d.stats.overruns.Load(),
		Errors:    d.stats.errors.Load(),
	}
	if b := d.stats.lastErr.Load(); b != nil {
		s.LastErr = b.err
	}
	return s
}

// Halt implements conn.Resource.
//
// It stops the scan, releases the buffers and drives all the control lines
// low. The Dev can't be used afterward.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return nil
	}
	d.halted = true
	err := d.stopLocked()
	d.led.Stop()
	stuck := d.guard.Load() != idle
	d.xfer.close(!stuck)
	if !stuck {
		if ferr := d.scan.free(); ferr != nil {
			err = errors.Join(err, ferr)
		}
	}
	for _, np := range d.pins.list() {
		if perr := np.p.Out(gpio.Low); perr != nil {
			err = errors.Join(err, fmt.Errorf("%w: %s: %w", ErrPin, np.name, perr))
		}
	}
	return err
}

var _ conn.Resource = &Dev{}
var _ display.Drawer = &Dev{}
var _ display.DisplayBacklight = &Dev{}
