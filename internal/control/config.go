// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package control

import (
	"fmt"
	"time"

	"github.com/relabs-tech/dualstick/internal/hid"
)

// Config holds the signal-conditioning constants. It is built once at
// startup and never changes while the pipeline runs.
type Config struct {
	// Raw analog domain; every sample and center is clamped into it.
	RawMin int
	RawMax int

	// Center assumed for an axis until it has been calibrated.
	DefaultCenter int

	// Direction keys: pressed at center±(Threshold+Hysteresis),
	// released at center±(Threshold-Hysteresis).
	DirectionThreshold int
	Hysteresis         int

	// Pointer motion.
	Deadzone       int     // |deflection| below this is treated as 0
	Sensitivity    int     // deflection multiplier
	Normalization  float64 // divisor applied after Sensitivity
	MaxStep        int     // per-cycle clamp on each pointer delta
	SmoothingAlpha float64 // EMA weight of the newest sample, in (0,1)

	// Startup calibration burst.
	CalibrationSamples int
	CalibrationDelay   time.Duration

	// Delay after every loop iteration.
	PollInterval time.Duration
}

// DefaultConfig returns the constants the controller ships with.
func DefaultConfig() Config {
	return Config{
		RawMin:             0,
		RawMax:             4095,
		DefaultCenter:      1900,
		DirectionThreshold: 500,
		Hysteresis:         80,
		Deadzone:           300,
		Sensitivity:        12,
		Normalization:      200,
		MaxStep:            8,
		SmoothingAlpha:     0.25,
		CalibrationSamples: 10,
		CalibrationDelay:   2 * time.Millisecond,
		PollInterval:       10 * time.Millisecond,
	}
}

// Validate rejects constant sets the mappers cannot work with.
func (c Config) Validate() error {
	if c.RawMax <= c.RawMin {
		return fmt.Errorf("raw domain [%d, %d] is empty", c.RawMin, c.RawMax)
	}
	if c.DefaultCenter < c.RawMin || c.DefaultCenter > c.RawMax {
		return fmt.Errorf("default center %d outside raw domain [%d, %d]", c.DefaultCenter, c.RawMin, c.RawMax)
	}
	if c.Hysteresis < 0 || c.Hysteresis >= c.DirectionThreshold {
		return fmt.Errorf("hysteresis %d must be in [0, threshold %d)", c.Hysteresis, c.DirectionThreshold)
	}
	if c.Deadzone < 0 {
		return fmt.Errorf("deadzone %d must not be negative", c.Deadzone)
	}
	if c.Normalization <= 0 {
		return fmt.Errorf("normalization %g must be positive", c.Normalization)
	}
	if c.MaxStep <= 0 {
		return fmt.Errorf("max step %d must be positive", c.MaxStep)
	}
	if c.SmoothingAlpha <= 0 || c.SmoothingAlpha >= 1 {
		return fmt.Errorf("smoothing alpha %g must be in (0, 1)", c.SmoothingAlpha)
	}
	if c.CalibrationSamples <= 0 {
		return fmt.Errorf("calibration samples %d must be positive", c.CalibrationSamples)
	}
	if c.CalibrationDelay < 0 || c.PollInterval < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}

func (c Config) clamp(v int) int {
	return clampInt(v, c.RawMin, c.RawMax)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// KeyMap assigns a HID key to each emulated direction and to the
// auxiliary button.
type KeyMap struct {
	Up     hid.Key // movement stick Y above center
	Down   hid.Key // movement stick Y below center
	Left   hid.Key // movement stick X below center
	Right  hid.Key // movement stick X above center
	Button hid.Key // pointer stick push button
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:     hid.KeyW,
		Down:   hid.KeyS,
		Left:   hid.KeyA,
		Right:  hid.KeyD,
		Button: hid.KeySpace,
	}
}
