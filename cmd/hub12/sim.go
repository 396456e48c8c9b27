// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"image"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/display"

	"github.com/GermanBionicSystems/hub12"
	"github.com/GermanBionicSystems/hub12/hub12sim"
	"github.com/GermanBionicSystems/hub12/termview"
	"github.com/GermanBionicSystems/hub12/webview"
)

type simOptions struct {
	duration time.Duration
	interval time.Duration
	txDelay  time.Duration
	scroll   bool
	http     string
}

func newSimCmd(o *options) *cobra.Command {
	var so simOptions
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "run the scan engine against a simulated panel shown in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(ctx context.Context, log *slog.Logger) error {
				return o.simulate(ctx, log, cmd.OutOrStdout(), &so)
			})
		},
	}
	cmd.Flags().DurationVar(&so.duration, "duration", 0, "stop after this long, 0 to run until interrupted")
	cmd.Flags().DurationVar(&so.interval, "interval", 50*time.Millisecond, "terminal refresh interval")
	cmd.Flags().DurationVar(&so.txDelay, "tx-delay", 0, "simulated duration of each SPI transfer")
	cmd.Flags().BoolVar(&so.scroll, "scroll", false, "scroll --text one pixel per refresh")
	cmd.Flags().StringVar(&so.http, "http", "", "also stream the panel as PNG pictures on this address, e.g. localhost:8012")
	return cmd
}

func (o *options) simulate(ctx context.Context, log *slog.Logger, out io.Writer, so *simOptions) error {
	if so.interval <= 0 {
		return errors.Errorf("invalid --interval %s", so.interval)
	}
	g := o.geometry()
	panel := hub12sim.New(g, &hub12sim.Opts{TxDelay: so.txDelay})
	d, err := hub12.New(panel, panel.Pins(), &hub12.Opts{
		Width:      g.Width,
		Height:     g.Height,
		Refresh:    g.Refresh,
		Brightness: o.brightness,
		Logger:     log,
	})
	if err != nil {
		return errors.Wrap(err, 0)
	}
	defer d.Halt()
	img, err := o.content(g)
	if err != nil {
		return err
	}
	if err := show(d, img); err != nil {
		return err
	}
	view := termview.New(&termview.Opts{W: g.Width, H: g.Height, Writer: out})
	defer view.Halt()
	views := []display.Drawer{view}
	if so.http != "" {
		web := webview.New(&webview.Opts{W: g.Width, H: g.Height, Logger: log})
		stop, err := serve(log, so.http, web)
		if err != nil {
			return err
		}
		defer stop()
		defer web.Halt()
		views = append(views, web)
	}

	if so.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, so.duration)
		defer cancel()
	}
	t := time.NewTicker(so.interval)
	defer t.Stop()
	for x := 0; ; x++ {
		select {
		case <-ctx.Done():
			s, ps := d.Stats(), panel.Stats()
			log.Info("simulation done",
				"frames", s.Frames, "scanlines", s.Scanlines, "dropped", s.Dropped, "overruns", s.Overruns,
				"transfers", ps.Transfers, "pulses", ps.Pulses)
			return nil
		case <-t.C:
		}
		if so.scroll && o.text != "" {
			if err := d.Draw(d.Bounds(), window(img, x, g.Width), image.Point{}); err != nil {
				return errors.Wrap(err, 0)
			}
		}
		snap := panel.Snapshot()
		for _, v := range views {
			if err := v.Draw(v.Bounds(), snap, image.Point{}); err != nil {
				return errors.Wrap(err, 0)
			}
		}
	}
}

// serve runs an HTTP server for h on addr until the returned function is
// called.
func serve(log *slog.Logger, addr string, h http.Handler) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error("http", "err", err)
		}
	}()
	log.Info("serving", "url", "http://"+ln.Addr().String()+"/")
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
