package control

import (
	"time"

	"github.com/relabs-tech/dualstick/internal/hid"
)

// AxisCalibration is the rest center of one axis and the four hysteresis
// thresholds derived from it.
type AxisCalibration struct {
	Center      int
	PressHigh   int // center + T + H
	ReleaseHigh int // center + T - H
	PressLow    int // center - T - H
	ReleaseLow  int // center - T + H
}

// NewAxisCalibration derives the thresholds for center. The press and
// release thresholds on each side are 2H apart.
func NewAxisCalibration(center int, cfg Config) AxisCalibration {
	t, h := cfg.DirectionThreshold, cfg.Hysteresis
	return AxisCalibration{
		Center:      center,
		PressHigh:   center + t + h,
		ReleaseHigh: center + t - h,
		PressLow:    center - t - h,
		ReleaseLow:  center - t + h,
	}
}

func (a AxisCalibration) Thresholds() hid.AxisThresholds {
	return hid.AxisThresholds{
		Center:      a.Center,
		PressHigh:   a.PressHigh,
		ReleaseHigh: a.ReleaseHigh,
		PressLow:    a.PressLow,
		ReleaseLow:  a.ReleaseLow,
	}
}

// Calibrate averages cfg.CalibrationSamples reads of ch, waiting
// cfg.CalibrationDelay after each read, and returns the calibration for
// the clamped average. The stick must be at rest; nothing checks it.
func Calibrate(src Source, ch Channel, cfg Config) AxisCalibration {
	n := cfg.CalibrationSamples
	if n <= 0 {
		n = 1
	}
	sum := 0
	for i := 0; i < n; i++ {
		sum += src.ReadChannel(ch)
		if cfg.CalibrationDelay > 0 {
			time.Sleep(cfg.CalibrationDelay)
		}
	}
	return NewAxisCalibration(cfg.clamp(sum/n), cfg)
}

// Calibration holds one AxisCalibration per channel.
type Calibration struct {
	LeftX, LeftY   AxisCalibration
	RightX, RightY AxisCalibration
}

// Report converts the calibration to its wire form.
func (c Calibration) Report(device string) hid.Calibration {
	return hid.Calibration{
		Device: device,
		LeftX:  c.LeftX.Thresholds(),
		LeftY:  c.LeftY.Thresholds(),
		RightX: c.RightX.Thresholds(),
		RightY: c.RightY.Thresholds(),
		Time:   time.Now(),
	}
}
