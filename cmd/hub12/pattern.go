// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/GermanBionicSystems/hub12"
	"github.com/GermanBionicSystems/hub12/mono"
)

func newPatternCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "pattern",
		Short: "print the bitmap shown by default, or --text, and its four scan lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g := o.geometry()
			img, err := o.content(g)
			if err != nil {
				return err
			}
			if img.Rect.Dx() > g.Width {
				img = window(img, 0, g.Width)
			}
			return printPattern(cmd.OutOrStdout(), img, g)
		},
	}
}

func printPattern(w io.Writer, img *mono.HorizontalMSB, g hub12.Geometry) error {
	var buf bytes.Buffer
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if img.BitAt(x, y) {
				buf.WriteByte('#')
			} else {
				buf.WriteByte('.')
			}
		}
		buf.WriteByte('\n')
	}
	var scan [hub12.ScanLines][]byte
	for i := range scan {
		scan[i] = make([]byte, g.HsyncLength())
	}
	hub12.Interleave(&scan, img.Pix, g.Width, g.Height)
	for i, line := range scan {
		fmt.Fprintf(&buf, "scan %d: % x\n", i, line)
	}
	_, err := buf.WriteTo(w)
	return err
}
