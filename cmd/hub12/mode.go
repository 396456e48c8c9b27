// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/hub12"
)

func newModeCmd(o *options) *cobra.Command {
	var speed string
	cmd := &cobra.Command{
		Use:   "mode [mode]",
		Short: "print the geometry and scan timings of a mode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				o.mode = args[0]
			}
			var f physic.Frequency
			if err := f.Set(speed); err != nil {
				return errors.Errorf("invalid --speed %q: %v", speed, err)
			}
			return printMode(cmd.OutOrStdout(), o.geometry(), o.brightness, f)
		},
	}
	cmd.Flags().StringVar(&speed, "speed", "8MHz", "SPI clock")
	return cmd
}

func printMode(w io.Writer, g hub12.Geometry, brightness uint8, speed physic.Frequency) error {
	tm := g.Timing(brightness)
	pw, ph := g.PhysicalSize()
	shift := time.Duration(g.HsyncLength()*8) * speed.Period()
	_, err := fmt.Fprintf(w,
		"mode:          %s\n"+
			"modules:       %dx%d (%s x %s)\n"+
			"bitmap:        %d bytes, %d bytes per row\n"+
			"scan line:     %d bytes, %s at %s\n"+
			"hsync:         %s\n"+
			"led on:        %s (brightness %d)\n"+
			"vsync timeout: %s\n",
		g,
		g.Width/hub12.ModuleWidth, g.Height/hub12.ModuleHeight, pw, ph,
		g.FrameBytes(), g.RowBytes(),
		g.HsyncLength(), shift, speed,
		tm.HsyncPeriod,
		tm.LedOnPeriod, brightness,
		tm.VsyncTimeout)
	if err != nil {
		return err
	}
	if shift >= tm.HsyncPeriod {
		_, err = fmt.Fprintf(w, "warning: shifting a scan line takes longer than the scan line period, cycles will be dropped\n")
	}
	return err
}
