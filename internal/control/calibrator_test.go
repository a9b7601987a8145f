package control

import "testing"

func TestNewAxisCalibrationScenario(t *testing.T) {
	cfg := testConfig()
	cfg.DirectionThreshold = 500
	cfg.Hysteresis = 80

	got := NewAxisCalibration(1900, cfg)
	want := AxisCalibration{
		Center:      1900,
		PressHigh:   2480,
		ReleaseHigh: 2320,
		PressLow:    1320,
		ReleaseLow:  1480,
	}
	if got != want {
		t.Fatalf("NewAxisCalibration(1900) = %+v, want %+v", got, want)
	}
}

func TestThresholdBandWidth(t *testing.T) {
	cfg := testConfig()
	for _, th := range []struct{ t, h int }{{500, 80}, {100, 1}, {2000, 1999}, {300, 0}} {
		cfg.DirectionThreshold, cfg.Hysteresis = th.t, th.h
		for center := cfg.RawMin; center <= cfg.RawMax; center += 273 {
			c := NewAxisCalibration(center, cfg)
			if d := c.PressHigh - c.ReleaseHigh; d != 2*th.h {
				t.Errorf("T=%d H=%d center=%d: pressHigh-releaseHigh = %d", th.t, th.h, center, d)
			}
			if d := c.ReleaseLow - c.PressLow; d != 2*th.h {
				t.Errorf("T=%d H=%d center=%d: releaseLow-pressLow = %d", th.t, th.h, center, d)
			}
			if c.ReleaseHigh <= c.Center || c.ReleaseLow >= c.Center {
				t.Errorf("T=%d H=%d center=%d: release thresholds do not bracket center: %+v", th.t, th.h, center, c)
			}
		}
	}
}

func TestCalibrateAverages(t *testing.T) {
	cfg := testConfig()
	cfg.CalibrationSamples = 4
	src := &seqSource{values: []int{1890, 1910, 1900, 1903}}

	got := Calibrate(src, LeftX, cfg)
	if got.Center != 1900 {
		t.Fatalf("center = %d, want 1900 (truncated mean of 7603/4)", got.Center)
	}
	if src.i != 4 {
		t.Fatalf("read %d samples, want 4", src.i)
	}
}

func TestCalibrateClampsToDomain(t *testing.T) {
	cfg := testConfig()
	cfg.CalibrationSamples = 3

	high := Calibrate(&seqSource{values: []int{9000}}, LeftX, cfg)
	if high.Center != cfg.RawMax {
		t.Errorf("center = %d, want %d", high.Center, cfg.RawMax)
	}
	low := Calibrate(&seqSource{values: []int{-50}}, LeftX, cfg)
	if low.Center != cfg.RawMin {
		t.Errorf("center = %d, want %d", low.Center, cfg.RawMin)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"hysteresis equals threshold", func(c *Config) { c.Hysteresis = c.DirectionThreshold }},
		{"negative hysteresis", func(c *Config) { c.Hysteresis = -1 }},
		{"alpha zero", func(c *Config) { c.SmoothingAlpha = 0 }},
		{"alpha one", func(c *Config) { c.SmoothingAlpha = 1 }},
		{"no samples", func(c *Config) { c.CalibrationSamples = 0 }},
		{"zero max step", func(c *Config) { c.MaxStep = 0 }},
		{"zero normalization", func(c *Config) { c.Normalization = 0 }},
		{"empty domain", func(c *Config) { c.RawMax = c.RawMin }},
		{"center outside domain", func(c *Config) { c.DefaultCenter = c.RawMax + 1 }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.modify(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate() = nil, want error", tt.name)
		}
	}
}
