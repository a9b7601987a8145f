package control

import "github.com/relabs-tech/dualstick/internal/hid"

// ButtonDebouncer maps an active-low pin to press/release edges of one
// key. There is no settle timer: the switch is assumed stable within one
// polling cycle, so a bounce spanning two cycles produces an extra edge
// pair.
type ButtonDebouncer struct {
	state keyState
}

func NewButtonDebouncer(k hid.Key) *ButtonDebouncer {
	return &ButtonDebouncer{state: keyState{key: k}}
}

// Update takes the electrical level of the pin; low means pressed.
func (b *ButtonDebouncer) Update(level bool, sink Sink) {
	b.state.set(!level, sink)
}

func (b *ButtonDebouncer) Pressed() bool { return b.state.held }

func (b *ButtonDebouncer) Reset() { b.state.held = false }
