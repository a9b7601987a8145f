package control

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"
	"time"
)

func newCalibratedPipeline(t *testing.T, src *fixedSource, sink *recordingSink) *Pipeline {
	t.Helper()
	p, err := New(testConfig(), DefaultKeyMap(), src, sink)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Calibrate()
	return p
}

func TestNewRejectsBadInput(t *testing.T) {
	cfg := testConfig()
	cfg.Hysteresis = cfg.DirectionThreshold
	if _, err := New(cfg, DefaultKeyMap(), newFixedSource(2000), &recordingSink{}); err == nil {
		t.Error("New accepted hysteresis >= threshold")
	}
	if _, err := New(testConfig(), DefaultKeyMap(), nil, &recordingSink{}); err == nil {
		t.Error("New accepted nil source")
	}
}

func TestPipelineDefaultCenterBeforeCalibration(t *testing.T) {
	p, err := New(testConfig(), DefaultKeyMap(), newFixedSource(2000), &recordingSink{})
	if err != nil {
		t.Fatal(err)
	}
	if c := p.Calibration().LeftX.Center; c != 1900 {
		t.Fatalf("center before calibration = %d, want 1900", c)
	}
}

func TestPipelineCalibrate(t *testing.T) {
	src := newFixedSource(0)
	src.channels = [4]int{2010, 1990, 2100, 5000}
	p := newCalibratedPipeline(t, src, &recordingSink{})

	cal := p.Calibration()
	got := []int{cal.LeftX.Center, cal.LeftY.Center, cal.RightX.Center, cal.RightY.Center}
	want := []int{2010, 1990, 2100, 4095}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%v center = %d, want %d", Channels[i], got[i], want[i])
		}
	}
	if src.reads != 4*testConfig().CalibrationSamples {
		t.Errorf("calibration made %d reads, want %d", src.reads, 4*testConfig().CalibrationSamples)
	}
	if cal.LeftX.PressHigh != 2010+580 {
		t.Errorf("left X pressHigh = %d", cal.LeftX.PressHigh)
	}
}

func TestPipelineCycleOrder(t *testing.T) {
	src := newFixedSource(2000)
	sink := &recordingSink{}
	p := newCalibratedPipeline(t, src, sink)

	src.channels = [4]int{4095, 4095, 2400, 2000}
	src.level = false
	if !p.Cycle() {
		t.Fatal("cycle did not run while connected")
	}
	want := []string{"press D", "press W", "move 6,0", "press SPACE"}
	if got := sink.take(); !equalEvents(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}

	st := p.State()
	if !st.Up || !st.Right || st.Down || st.Left || !st.Button {
		t.Fatalf("state = %+v", st)
	}

	src.channels = [4]int{0, 0, 2000, 2000}
	src.level = true
	p.Cycle()
	want = []string{"release D", "press A", "release W", "press S", "move 5,0", "release SPACE"}
	if got := sink.take(); !equalEvents(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestPipelineIdleWhileDisconnected(t *testing.T) {
	src := newFixedSource(2000)
	sink := &recordingSink{disconnected: true}
	p := newCalibratedPipeline(t, src, sink)
	reads := src.reads

	src.channels = [4]int{4095, 4095, 4095, 4095}
	src.level = false
	for i := 0; i < 10; i++ {
		if p.Cycle() {
			t.Fatal("cycle ran while disconnected")
		}
	}
	if src.reads != reads {
		t.Fatalf("source sampled %d times while disconnected", src.reads-reads)
	}
	if got := sink.take(); len(got) != 0 {
		t.Fatalf("events while disconnected: %v", got)
	}
}

func TestPipelineResetsOnReconnect(t *testing.T) {
	src := newFixedSource(2000)
	sink := &recordingSink{}
	p := newCalibratedPipeline(t, src, sink)

	src.channels[LeftY] = 4095
	src.channels[RightX] = 4095
	p.Cycle()
	sink.take()

	sink.disconnected = true
	p.Cycle()
	sink.disconnected = false

	// Still deflected: the key is pressed afresh and the pointer starts
	// from an empty filter rather than the old saturated one.
	p.Cycle()
	want := []string{"press W", "move 8,0"}
	if got := sink.take(); !equalEvents(got, want) {
		t.Fatalf("events after reconnect = %v, want %v", got, want)
	}
	if x := p.State().FilterX; x > 32 {
		t.Fatalf("filter carried over across reconnect: %g", x)
	}

	// Stick back at rest while disconnected: no stale release.
	sink.disconnected = true
	p.Cycle()
	src.channels = [4]int{2000, 2000, 2000, 2000}
	sink.disconnected = false
	p.Cycle()
	if got := sink.take(); len(got) != 0 {
		t.Fatalf("events after reconnect at rest = %v, want none", got)
	}
}

func TestPipelineRunStopsOnCancel(t *testing.T) {
	src := newFixedSource(2000)
	sink := &recordingSink{}
	p := newCalibratedPipeline(t, src, sink)
	reads := src.reads

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if src.reads == reads {
		t.Fatal("Run never cycled")
	}
}

func TestTraceLogsKeyEdges(t *testing.T) {
	var buf bytes.Buffer
	inner := &recordingSink{}
	sink := Trace(inner, log.New(&buf, "", 0))

	sink.PressKey(DefaultKeyMap().Up)
	sink.MoveRelative(1, 2)
	sink.ReleaseKey(DefaultKeyMap().Up)

	want := []string{"press W", "move 1,2", "release W"}
	if got := inner.take(); !equalEvents(got, want) {
		t.Fatalf("inner events = %v, want %v", got, want)
	}
	out := buf.String()
	if !strings.Contains(out, "key W pressed") || !strings.Contains(out, "key W released") {
		t.Fatalf("trace output = %q", out)
	}
	if strings.Contains(out, "move") {
		t.Fatalf("motion was traced: %q", out)
	}
}
