// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/dualstick/internal/control"
)

// MockSettle is how long a MockSource holds both sticks at mid-scale with
// the button released, so startup calibration sees sticks at rest.
const MockSettle = time.Second

// MockSource rests for MockSettle, then moves both sticks in slow circles
// around mid-scale and presses the button for half a second every four
// seconds.
type MockSource struct {
	start     time.Time
	domainMax int
	now       func() time.Time
}

// NewMockSource creates a synthetic source over [0, domainMax].
func NewMockSource(domainMax int) *MockSource {
	return &MockSource{start: time.Now(), domainMax: domainMax, now: time.Now}
}

// Settle restarts the rest period from now. Call it right before
// calibrating when setup may have taken longer than MockSettle.
func (m *MockSource) Settle() {
	m.start = m.now()
}

// elapsed is the time since the rest period ended, false while resting.
func (m *MockSource) elapsed() (time.Duration, bool) {
	d := m.now().Sub(m.start) - MockSettle
	return d, d >= 0
}

func (m *MockSource) ReadChannel(ch control.Channel) int {
	mid := float64(m.domainMax) / 2
	d, moving := m.elapsed()
	if !moving {
		return int(math.Round(mid))
	}
	t := d.Seconds()

	var v float64
	switch ch {
	case control.LeftX:
		v = mid + 0.45*float64(m.domainMax)*math.Cos(2*math.Pi*t/8)
	case control.LeftY:
		v = mid + 0.45*float64(m.domainMax)*math.Sin(2*math.Pi*t/8)
	case control.RightX:
		v = mid + 0.30*float64(m.domainMax)*math.Sin(2*math.Pi*t/5)
	case control.RightY:
		v = mid + 0.30*float64(m.domainMax)*math.Cos(2*math.Pi*t/5)
	default:
		v = mid
	}
	return int(math.Round(v))
}

// ReadDigital is high (released) while resting, then low (pressed) during
// the first 500ms of every 4s.
func (m *MockSource) ReadDigital(pin control.Pin) bool {
	d, moving := m.elapsed()
	if pin != control.ButtonPin || !moving {
		return true
	}
	return d%(4*time.Second) >= 500*time.Millisecond
}
