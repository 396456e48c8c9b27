// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/hub12"
)

func newRunCmd(o *options) *cobra.Command {
	var spiName, gpioNames, speed string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "drive a panel wired to this host until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(ctx context.Context, log *slog.Logger) error {
				return o.drive(ctx, log, spiName, gpioNames, speed)
			})
		},
	}
	cmd.Flags().StringVar(&spiName, "spi", "", "SPI port name, the first one if empty")
	cmd.Flags().StringVar(&gpioNames, "gpio", strings.Join(hub12.DefaultPinNames[:], ","), "GPIO names of the oe,la,a,b lines")
	cmd.Flags().StringVar(&speed, "speed", "8MHz", "SPI clock")
	return cmd
}

func (o *options) drive(ctx context.Context, log *slog.Logger, spiName, gpioNames, speed string) error {
	var f physic.Frequency
	if err := f.Set(speed); err != nil {
		return errors.Errorf("invalid --speed %q: %v", speed, err)
	}
	names, err := parsePinNames(gpioNames)
	if err != nil {
		return err
	}
	if _, err := host.Init(); err != nil {
		return errors.Wrap(err, 0)
	}
	p, err := spireg.Open(spiName)
	if err != nil {
		return errors.Wrap(err, 0)
	}
	defer p.Close()
	pins, err := lookupPins(names)
	if err != nil {
		return err
	}
	g := o.geometry()
	d, err := hub12.New(p, pins, &hub12.Opts{
		Width:      g.Width,
		Height:     g.Height,
		Refresh:    g.Refresh,
		Brightness: o.brightness,
		Speed:      f,
		Logger:     log,
	})
	if err != nil {
		return errors.Wrap(err, 0)
	}
	defer d.Halt()
	img, err := o.content(d.Geometry())
	if err != nil {
		return err
	}
	if err := show(d, img); err != nil {
		return err
	}
	log.Info("running", "dev", d, "pins", gpioNames)
	<-ctx.Done()
	s := d.Stats()
	log.Info("stopping", "frames", s.Frames, "dropped", s.Dropped, "overruns", s.Overruns, "errors", s.Errors)
	if err := d.Halt(); err != nil {
		return errors.Wrap(err, 0)
	}
	return nil
}

// parsePinNames splits a list of the four control line names.
func parsePinNames(s string) ([4]string, error) {
	var names [4]string
	parts := strings.Split(s, ",")
	if len(parts) != len(names) {
		return names, errors.Errorf("--gpio needs 4 GPIO names (oe,la,a,b), got %q", s)
	}
	for i, p := range parts {
		if names[i] = strings.TrimSpace(p); names[i] == "" {
			return names, errors.Errorf("--gpio: empty name at position %d", i+1)
		}
	}
	return names, nil
}

func lookupPins(names [4]string) (*hub12.Pins, error) {
	var pins hub12.Pins
	for i, dst := range []*gpio.PinOut{&pins.Enable, &pins.Latch, &pins.A, &pins.B} {
		p := gpioreg.ByName(names[i])
		if p == nil {
			return nil, errors.Errorf("no GPIO named %q", names[i])
		}
		*dst = p
	}
	return &pins, nil
}
