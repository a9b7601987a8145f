// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package transport holds the output sinks a controller can drive: an MQTT
// broker, a serial link to a USB HID co-processor, the Linux USB gadget
// HID devices, or just the log.
package transport

import (
	"fmt"
	"io"
	"log"

	"github.com/relabs-tech/dualstick/internal/config"
	"github.com/relabs-tech/dualstick/internal/control"
	"github.com/relabs-tech/dualstick/internal/hid"
)

// Sink is a control.Sink that owns a connection.
type Sink interface {
	control.Sink
	io.Closer
}

// CalibrationPublisher is implemented by sinks that can forward the
// calibration report to their peer.
type CalibrationPublisher interface {
	PublishCalibration(hid.Calibration) error
}

// New opens the sink selected by cfg.Transport.
func New(cfg *config.Config) (Sink, error) {
	switch cfg.Transport {
	case config.TransportMQTT:
		return NewMQTTSink(cfg)
	case config.TransportSerial:
		return NewSerialSink(cfg)
	case config.TransportGadget:
		return NewGadgetSink(cfg.GadgetKeyboardDevice, cfg.GadgetMouseDevice)
	case config.TransportLog:
		return NewLogSink(nil), nil
	default:
		return nil, fmt.Errorf("transport: unknown transport %q", cfg.Transport)
	}
}

// LogSink prints every output call. It is always connected, which makes
// it useful for bench testing the sticks without a host.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink logs to logger, or to the standard logger when nil.
func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) PressKey(k hid.Key)      { s.logger.Printf("log sink: press %s", k) }
func (s *LogSink) ReleaseKey(k hid.Key)    { s.logger.Printf("log sink: release %s", k) }
func (s *LogSink) MoveRelative(dx, dy int) { s.logger.Printf("log sink: move dx=%d dy=%d", dx, dy) }
func (s *LogSink) IsConnected() bool       { return true }

func (s *LogSink) PublishCalibration(c hid.Calibration) error {
	s.logger.Printf("log sink: calibration %s centers lx=%d ly=%d rx=%d ry=%d",
		c.Device, c.LeftX.Center, c.LeftY.Center, c.RightX.Center, c.RightY.Center)
	return nil
}

func (s *LogSink) Close() error { return nil }
