// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// hub12 drives HUB12 LED panels, or a simulation of them in the terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"

	"github.com/GermanBionicSystems/hub12"
)

// options are the flags shared by all the subcommands.
type options struct {
	debug      bool
	mode       string
	brightness uint8
	text       string
	font       string
}

func (o *options) geometry() hub12.Geometry {
	return hub12.ParseMode(o.mode, hub12.Geometry{
		Width:   hub12.DefaultOpts.Width,
		Height:  hub12.DefaultOpts.Height,
		Refresh: hub12.DefaultOpts.Refresh,
	})
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	lvl := slog.LevelInfo
	if o.debug {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
}

// run runs fn and prints the stack of its error in debug mode.
func (o *options) run(cmd *cobra.Command, fn func(ctx context.Context, log *slog.Logger) error) error {
	if fn == nil {
		return errors.New("nil command")
	}
	err := fn(cmd.Context(), o.logger(cmd))
	if err == nil {
		return nil
	}
	if stackFramer, ok := err.(interface{ ErrorStack() string }); o.debug && ok {
		fmt.Fprintln(cmd.ErrOrStderr(), stackFramer.ErrorStack())
	}
	return err
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:          "hub12",
		Short:        "drive HUB12 LED dot-matrix panels",
		Long:         "hub12 drives monochrome HUB12 (P10) LED panels over SPI and four GPIOs, or simulates them in the terminal.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&o.debug, "debug", "d", false, "debug logging and error stacks")
	pf.StringVarP(&o.mode, "mode", "m", "32x16@60", "panel mode, <xres>x<yres>[@<refresh>]")
	pf.Uint8VarP(&o.brightness, "brightness", "b", hub12.DefaultOpts.Brightness, "LED on time per scan line, in 1/256")
	pf.StringVarP(&o.text, "text", "t", "", "text to display instead of the test pattern")
	pf.StringVar(&o.font, "font", "basic", "font of --text: basic (7x13) or regular (Go Regular)")
	cmd.AddCommand(newRunCmd(o), newSimCmd(o), newModeCmd(o), newPatternCmd(o))
	return cmd
}

func main() {
	cobra.EnablePrefixMatching = true
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
