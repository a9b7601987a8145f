// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/dualstick/internal/config"
	"github.com/relabs-tech/dualstick/internal/control"
	"github.com/relabs-tech/dualstick/internal/sensors"
	"github.com/relabs-tech/dualstick/internal/transport"
)

// RunController samples the sticks and drives the configured transport
// until SIGINT or SIGTERM.
func RunController(mock bool) error {
	cfg := config.Get()
	tuning := control.DefaultConfig()

	var (
		src  control.Source
		fake *sensors.MockSource
	)
	if mock {
		log.Println("controller: using mock stick source")
		fake = sensors.NewMockSource(tuning.RawMax)
		src = fake
	} else {
		stick, err := sensors.NewStickSource(cfg, tuning.RawMax)
		if err != nil {
			return err
		}
		defer stick.Close()
		src = stick
	}

	sink, err := transport.New(cfg)
	if err != nil {
		return err
	}
	defer sink.Close()
	log.Printf("controller: %q using %s transport", cfg.DeviceName, cfg.Transport)

	p, err := control.New(tuning, keyMap(cfg), src, control.Trace(sink, nil))
	if err != nil {
		return fmt.Errorf("controller: %w", err)
	}

	log.Println("controller: calibrating, keep both sticks centered")
	if fake != nil {
		// sink setup may have outlasted the mock's rest period
		fake.Settle()
	}
	cal := p.Calibrate()
	logCalibration(cal)
	if pub, ok := sink.(transport.CalibrationPublisher); ok {
		if err := pub.PublishCalibration(cal.Report(cfg.DeviceName)); err != nil {
			log.Printf("controller: calibration publish failed: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("controller: running, poll interval %v", tuning.PollInterval)
	if err := p.Run(ctx); err != nil {
		return err
	}
	log.Println("controller: shutting down")
	return nil
}

func keyMap(cfg *config.Config) control.KeyMap {
	return control.KeyMap{
		Up:     cfg.KeyUp,
		Down:   cfg.KeyDown,
		Left:   cfg.KeyLeft,
		Right:  cfg.KeyRight,
		Button: cfg.KeyButton,
	}
}

func logCalibration(cal control.Calibration) {
	axes := []struct {
		name string
		a    control.AxisCalibration
	}{
		{"left X", cal.LeftX},
		{"left Y", cal.LeftY},
		{"right X", cal.RightX},
		{"right Y", cal.RightY},
	}
	for _, ax := range axes {
		log.Printf("controller: %-7s center=%4d  high press>%d release<%d  low press<%d release>%d",
			ax.name, ax.a.Center, ax.a.PressHigh, ax.a.ReleaseHigh, ax.a.PressLow, ax.a.ReleaseLow)
	}
}
