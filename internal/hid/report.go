package hid

// Boot protocol report sizes.
const (
	KeyboardReportLen = 8
	MouseReportLen    = 3
	maxRollover       = 6
)

// KeyboardReport tracks the keys currently held and renders them as a
// boot keyboard input report: modifiers, reserved, then up to six usages.
type KeyboardReport struct {
	keys [maxRollover]Key
}

// Press adds k to the report. It returns false when k is already held or
// all six slots are in use.
func (r *KeyboardReport) Press(k Key) bool {
	if k == KeyNone || r.Held(k) {
		return false
	}
	for i := range r.keys {
		if r.keys[i] == KeyNone {
			r.keys[i] = k
			return true
		}
	}
	return false
}

// Release removes k from the report, keeping the remaining keys in order.
func (r *KeyboardReport) Release(k Key) bool {
	for i := range r.keys {
		if r.keys[i] != k || k == KeyNone {
			continue
		}
		copy(r.keys[i:], r.keys[i+1:])
		r.keys[maxRollover-1] = KeyNone
		return true
	}
	return false
}

func (r *KeyboardReport) Held(k Key) bool {
	for _, h := range r.keys {
		if h == k && k != KeyNone {
			return true
		}
	}
	return false
}

// Reset releases every key.
func (r *KeyboardReport) Reset() {
	r.keys = [maxRollover]Key{}
}

func (r *KeyboardReport) Bytes() []byte {
	buf := make([]byte, KeyboardReportLen)
	for i, k := range r.keys {
		buf[2+i] = byte(k)
	}
	return buf
}

// MouseReport renders a relative motion as a boot mouse report with no
// buttons held. Deltas are clamped to the int8 range of the report.
func MouseReport(dx, dy int) []byte {
	return []byte{0, byte(clampInt8(dx)), byte(clampInt8(dy))}
}

func clampInt8(v int) int8 {
	switch {
	case v > 127:
		return 127
	case v < -127:
		return -127
	}
	return int8(v)
}
