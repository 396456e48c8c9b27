// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub12sim

import (
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Pin is one of the control inputs of the panel.
type Pin struct {
	panel *Panel
	line  int
	name  string
}

// Halt implements conn.Resource.
func (pin *Pin) Halt() error {
	return nil
}

// Name returns the name of the control line.
func (pin *Pin) Name() string {
	return pin.name
}

// Number returns -1, the line is not a host GPIO.
func (pin *Pin) Number() int {
	return -1
}

// Deprecated: returns "Out"
func (pin *Pin) Function() string {
	return "Out"
}

// Out drives the control line.
func (pin *Pin) Out(l gpio.Level) error {
	pin.panel.set(pin.line, l)
	return nil
}

// Read returns the level the line was last driven to.
func (pin *Pin) Read() gpio.Level {
	return pin.panel.level(pin.line)
}

// Not implemented.
func (pin *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return ErrNotImplemented
}

func (pin *Pin) String() string {
	return pin.panel.String() + "." + pin.name
}

var _ gpio.PinOut = &Pin{}
