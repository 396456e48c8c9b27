// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub12

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// vsync is a broadcast event raised once per frame shifted out.
//
// Each signal closes the current channel and installs a new one, so every
// waiter holding the closed channel wakes up and later waiters only see
// later signals. signal never blocks and takes no lock, it is called from
// the scan paths.
type vsync struct {
	clock clockwork.Clock
	gen   atomic.Pointer[chan struct{}]
}

func newVsync(clock clockwork.Clock) *vsync {
	v := &vsync{clock: clock}
	c := make(chan struct{})
	v.gen.Store(&c)
	return v
}

func (v *vsync) signal() {
	c := make(chan struct{})
	close(*v.gen.Swap(&c))
}

// current returns the channel closed by the next signal.
func (v *vsync) current() <-chan struct{} {
	return *v.gen.Load()
}

// wait waits for the next signal.
//
// A signal racing with the call may be missed, in which case the wait lasts
// until the following one. Callers size timeouts for two frames.
func (v *vsync) wait(ctx context.Context, timeout time.Duration) error {
	return v.await(ctx, v.current(), timeout)
}

func (v *vsync) await(ctx context.Context, c <-chan struct{}, timeout time.Duration) error {
	t := v.clock.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-c:
		return nil
	case <-t.Chan():
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
