// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub12

import (
	"periph.io/x/conn/v3/spi"
)

// transport runs SPI writes asynchronously.
//
// spi.Conn.Tx blocks for the whole transfer, which at 8MHz is tens of
// microseconds per scan line and can stall for milliseconds on a busy
// controller. A dedicated goroutine owns the connection so the scan timer is
// never blocked; done runs on that goroutine once the write finished.
type transport struct {
	c    spi.Conn
	jobs chan job
	exit chan struct{}
}

type job struct {
	w    []byte
	done func(error)
}

func newTransport(c spi.Conn) *transport {
	t := &transport{c: c, jobs: make(chan job, 1), exit: make(chan struct{})}
	go t.run()
	return t
}

func (t *transport) run() {
	defer close(t.exit)
	for j := range t.jobs {
		j.done(t.c.Tx(j.w, nil))
	}
}

// submit queues w without blocking. It returns false if a write is already
// queued.
func (t *transport) submit(w []byte, done func(error)) bool {
	select {
	case t.jobs <- job{w: w, done: done}:
		return true
	default:
		return false
	}
}

// close stops the goroutine once the queued write is done. With wait false
// it returns immediately, for when a write is stuck in the driver.
func (t *transport) close(wait bool) {
	close(t.jobs)
	if wait {
		<-t.exit
	}
}
