// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package control

import (
	"context"
	"fmt"
	"time"
)

// Pipeline owns all conditioning state and runs one control cycle at a
// time: sample, movement keys, pointer, button. It is not safe for
// concurrent use; a single loop drives it.
type Pipeline struct {
	cfg  Config
	keys KeyMap
	src  Source
	sink Sink

	cal     Calibration
	moveX   *AxisKeyMapper
	moveY   *AxisKeyMapper
	pointer *PointerMapper
	button  *ButtonDebouncer

	// connected is the sink state seen on the previous cycle.
	connected bool
}

// New validates cfg and builds a pipeline whose axes all sit at
// cfg.DefaultCenter until Calibrate is called.
func New(cfg Config, keys KeyMap, src Source, sink Sink) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("control config: %w", err)
	}
	if src == nil || sink == nil {
		return nil, fmt.Errorf("control: source and sink are required")
	}
	p := &Pipeline{
		cfg:    cfg,
		keys:   keys,
		src:    src,
		sink:   sink,
		button: NewButtonDebouncer(keys.Button),
	}
	def := NewAxisCalibration(cfg.DefaultCenter, cfg)
	p.setCalibration(Calibration{LeftX: def, LeftY: def, RightX: def, RightY: def})
	return p, nil
}

// Calibrate measures the rest center of every channel, one channel after
// the other, and rebuilds the mappers around the new thresholds. Key and
// filter state is cleared.
func (p *Pipeline) Calibrate() Calibration {
	p.setCalibration(Calibration{
		LeftX:  Calibrate(p.src, LeftX, p.cfg),
		LeftY:  Calibrate(p.src, LeftY, p.cfg),
		RightX: Calibrate(p.src, RightX, p.cfg),
		RightY: Calibrate(p.src, RightY, p.cfg),
	})
	return p.cal
}

func (p *Pipeline) setCalibration(cal Calibration) {
	p.cal = cal
	p.moveX = NewAxisKeyMapper(cal.LeftX, p.keys.Right, p.keys.Left)
	p.moveY = NewAxisKeyMapper(cal.LeftY, p.keys.Up, p.keys.Down)
	p.pointer = NewPointerMapper(cal.RightX, cal.RightY, p.cfg)
	p.button.Reset()
}

func (p *Pipeline) Calibration() Calibration { return p.cal }

// Cycle runs one iteration. Nothing is sampled or emitted while the sink
// is disconnected; on the first connected cycle after a disconnect the
// state is reset to neutral first, so keys that were held when the link
// dropped are not assumed to still be held by the host. It reports
// whether the cycle ran.
func (p *Pipeline) Cycle() bool {
	if !p.sink.IsConnected() {
		p.connected = false
		return false
	}
	if !p.connected {
		p.Reset()
		p.connected = true
	}

	s := p.sample()
	p.moveX.Update(s.LeftX, p.sink)
	p.moveY.Update(s.LeftY, p.sink)
	p.pointer.Update(s.RightX, s.RightY, p.sink)
	p.button.Update(s.ButtonLevel, p.sink)
	return true
}

func (p *Pipeline) sample() Sample {
	s := ReadSample(p.src)
	s.LeftX = p.cfg.clamp(s.LeftX)
	s.LeftY = p.cfg.clamp(s.LeftY)
	s.RightX = p.cfg.clamp(s.RightX)
	s.RightY = p.cfg.clamp(s.RightY)
	return s
}

// Reset returns every key to released and both motion filters to zero
// without emitting anything.
func (p *Pipeline) Reset() {
	p.moveX.Reset()
	p.moveY.Reset()
	p.pointer.Reset()
	p.button.Reset()
}

// State is a read-only view of the held keys and motion filters.
type State struct {
	Up, Down, Left, Right bool
	Button                bool
	FilterX, FilterY      float64
}

func (p *Pipeline) State() State {
	var st State
	st.Right, st.Left = p.moveX.Held()
	st.Up, st.Down = p.moveY.Held()
	st.Button = p.button.Pressed()
	st.FilterX, st.FilterY = p.pointer.Filter()
	return st
}

// Run cycles until ctx is cancelled, waiting cfg.PollInterval after each
// iteration whether or not it ran.
func (p *Pipeline) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
		p.Cycle()
		timer.Reset(p.cfg.PollInterval)
	}
}
