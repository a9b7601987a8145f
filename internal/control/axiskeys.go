package control

import "github.com/relabs-tech/dualstick/internal/hid"

// keyState is one emulated key and whether it is reported as held.
type keyState struct {
	key  hid.Key
	held bool
}

// set moves the key to held and emits the matching edge. Nothing is
// emitted when the state does not change.
func (s *keyState) set(held bool, sink Sink) {
	if s.held == held {
		return
	}
	s.held = held
	if held {
		sink.PressKey(s.key)
	} else {
		sink.ReleaseKey(s.key)
	}
}

// AxisKeyMapper turns one axis into two direction keys with hysteresis.
// A key is pressed once the value goes past its press threshold and is
// released only after the value comes back past its release threshold,
// so a value wandering inside the 2H band in between never toggles it.
type AxisKeyMapper struct {
	cal  AxisCalibration
	high keyState
	low  keyState
}

func NewAxisKeyMapper(cal AxisCalibration, high, low hid.Key) *AxisKeyMapper {
	return &AxisKeyMapper{
		cal:  cal,
		high: keyState{key: high},
		low:  keyState{key: low},
	}
}

// Update evaluates both directions against v and emits at most one edge
// per direction.
func (m *AxisKeyMapper) Update(v int, sink Sink) {
	switch {
	case !m.high.held && v > m.cal.PressHigh:
		m.high.set(true, sink)
	case m.high.held && v < m.cal.ReleaseHigh:
		m.high.set(false, sink)
	}

	switch {
	case !m.low.held && v < m.cal.PressLow:
		m.low.set(true, sink)
	case m.low.held && v > m.cal.ReleaseLow:
		m.low.set(false, sink)
	}
}

// Held reports the current state of the high and low keys.
func (m *AxisKeyMapper) Held() (high, low bool) {
	return m.high.held, m.low.held
}

// Reset forgets held keys without emitting releases.
func (m *AxisKeyMapper) Reset() {
	m.high.held = false
	m.low.held = false
}
