package control

import "math"

// PointerMapper turns a stick pair into relative pointer steps: deadzone,
// linear scaling, a single-pole low-pass (EMA) per axis, then rounding
// and clamping to ±MaxStep.
type PointerMapper struct {
	cfg     Config
	x, y    AxisCalibration
	filterX float64
	filterY float64
}

func NewPointerMapper(x, y AxisCalibration, cfg Config) *PointerMapper {
	return &PointerMapper{cfg: cfg, x: x, y: y}
}

// Update feeds one raw sample per axis and emits a single MoveRelative
// when either resulting step is non-zero. It returns the steps.
func (m *PointerMapper) Update(rawX, rawY int, sink Sink) (dx, dy int) {
	m.filterX = smooth(m.filterX, m.rawStep(rawX, m.x.Center), m.cfg.SmoothingAlpha)
	m.filterY = smooth(m.filterY, m.rawStep(rawY, m.y.Center), m.cfg.SmoothingAlpha)

	dx = Step(m.filterX, m.cfg.MaxStep)
	dy = Step(m.filterY, m.cfg.MaxStep)
	if dx != 0 || dy != 0 {
		sink.MoveRelative(dx, dy)
	}
	return dx, dy
}

// rawStep is the scaled deflection of raw from center, zero inside the
// deadzone.
func (m *PointerMapper) rawStep(raw, center int) float64 {
	d := Deflection(raw, center, m.cfg.Deadzone)
	return float64(d*m.cfg.Sensitivity) / m.cfg.Normalization
}

// Filter returns the current smoothed values.
func (m *PointerMapper) Filter() (x, y float64) {
	return m.filterX, m.filterY
}

// Reset zeroes both filters.
func (m *PointerMapper) Reset() {
	m.filterX = 0
	m.filterY = 0
}

// Deflection returns raw-center, or 0 when its magnitude is below
// deadzone.
func Deflection(raw, center, deadzone int) int {
	d := raw - center
	if d < deadzone && d > -deadzone {
		return 0
	}
	return d
}

func smooth(prev, sample, alpha float64) float64 {
	return prev*(1-alpha) + sample*alpha
}

// Step rounds filtered half away from zero and clamps it to ±maxStep.
func Step(filtered float64, maxStep int) int {
	r := math.Round(filtered)
	if r > float64(maxStep) {
		return maxStep
	}
	if r < -float64(maxStep) {
		return -maxStep
	}
	return int(r)
}
