package control

import (
	"math"
	"testing"
)

func pointerConfig() Config {
	cfg := testConfig()
	cfg.Deadzone = 300
	cfg.Sensitivity = 12
	cfg.Normalization = 200
	cfg.MaxStep = 8
	cfg.SmoothingAlpha = 0.25
	return cfg
}

func newTestPointer(center int) *PointerMapper {
	cfg := pointerConfig()
	c := NewAxisCalibration(center, cfg)
	return NewPointerMapper(c, c, cfg)
}

func TestDeflectionDeadzone(t *testing.T) {
	tests := []struct {
		raw, center, deadzone int
		want                  int
	}{
		{2000, 2000, 300, 0},
		{2299, 2000, 300, 0},
		{1701, 2000, 300, 0},
		{2300, 2000, 300, 300},
		{1700, 2000, 300, -300},
		{4095, 2000, 300, 2095},
		{2001, 2000, 0, 1},
	}
	for _, tt := range tests {
		if got := Deflection(tt.raw, tt.center, tt.deadzone); got != tt.want {
			t.Errorf("Deflection(%d, %d, %d) = %d, want %d", tt.raw, tt.center, tt.deadzone, got, tt.want)
		}
	}
}

func TestDeadzoneForcesZeroRawStep(t *testing.T) {
	m := newTestPointer(2000)
	for d := -299; d < 300; d += 13 {
		if got := m.rawStep(2000+d, 2000); got != 0 {
			t.Fatalf("rawStep with deflection %d = %g, want 0", d, got)
		}
	}
}

func TestStepRoundsAndClamps(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{0.49, 0},
		{0.5, 1},
		{-0.5, -1},
		{-0.49, 0},
		{4.5, 5},
		{7.6, 8},
		{8.4, 8},
		{1e9, 8},
		{-31.4, -8},
	}
	for _, tt := range tests {
		if got := Step(tt.in, 8); got != tt.want {
			t.Errorf("Step(%g, 8) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestStepAlwaysWithinBounds(t *testing.T) {
	for f := -500.0; f <= 500; f += 0.37 {
		if s := Step(f, 8); s < -8 || s > 8 {
			t.Fatalf("Step(%g, 8) = %d out of [-8, 8]", f, s)
		}
	}
}

func TestPointerIdleEmitsNothing(t *testing.T) {
	m := newTestPointer(2000)
	sink := &recordingSink{}

	for i := 0; i < 100; i++ {
		m.Update(2000, 2000, sink)
	}
	if got := sink.take(); len(got) != 0 {
		t.Fatalf("idle stick emitted %v", got)
	}
	if x, y := m.Filter(); x != 0 || y != 0 {
		t.Fatalf("filter = (%g, %g), want (0, 0)", x, y)
	}
}

func TestPointerJitterInsideDeadzone(t *testing.T) {
	m := newTestPointer(2000)
	sink := &recordingSink{}

	for i := 0; i < 100; i++ {
		jitter := (i*53)%599 - 299
		m.Update(2000+jitter, 2000-jitter, sink)
	}
	if got := sink.take(); len(got) != 0 {
		t.Fatalf("jitter inside deadzone emitted %v", got)
	}
}

func TestPointerSmoothing(t *testing.T) {
	m := newTestPointer(2000)
	sink := &recordingSink{}

	// Deflection 400: raw step 24, filter 6 then 10.5.
	if dx, dy := m.Update(2400, 2000, sink); dx != 6 || dy != 0 {
		t.Fatalf("first step = (%d, %d), want (6, 0)", dx, dy)
	}
	if dx, _ := m.Update(2400, 2000, sink); dx != 8 {
		t.Fatalf("second step = %d, want clamped 8", dx)
	}
	if x, _ := m.Filter(); math.Abs(x-10.5) > 1e-9 {
		t.Fatalf("filter = %g, want 10.5", x)
	}
	want := []string{"move 6,0", "move 8,0"}
	if got := sink.take(); !equalEvents(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestPointerFullDeflectionIsClamped(t *testing.T) {
	m := newTestPointer(2000)
	sink := &recordingSink{}

	for i := 0; i < 50; i++ {
		dx, dy := m.Update(4095, 0, sink)
		if dx != 8 || dy != -8 {
			t.Fatalf("cycle %d: step = (%d, %d), want (8, -8)", i, dx, dy)
		}
	}
}

func TestPointerDecaysAfterRelease(t *testing.T) {
	m := newTestPointer(2000)
	sink := &recordingSink{}

	for i := 0; i < 40; i++ {
		m.Update(2350, 2000, sink) // raw step 21
	}
	sink.take()

	moves := 0
	for i := 0; i < 100; i++ {
		dx, dy := m.Update(2000, 2000, sink)
		if dx != 0 || dy != 0 {
			moves++
		}
	}
	// 21 * 0.75^n drops below 0.5 on the 13th cycle.
	if moves != 12 {
		t.Fatalf("motion continued for %d cycles after release, want 12", moves)
	}
	if got := len(sink.take()); got != moves {
		t.Fatalf("emitted %d events for %d non-zero cycles", got, moves)
	}
	if x, _ := m.Filter(); math.Abs(x) >= 0.5 {
		t.Fatalf("filter did not settle: %g", x)
	}
}
