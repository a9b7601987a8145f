package hid

import "time"

// Event types carried in Event.Type.
const (
	EventKey    = "key"
	EventMotion = "motion"
)

// Event is a single HID-level action as published on the wire (MQTT,
// websocket). Key events fill Key/Usage/Pressed, motion events fill DX/DY.
type Event struct {
	Type    string    `json:"type"`
	Key     string    `json:"key,omitempty"`
	Usage   uint8     `json:"usage,omitempty"`
	Pressed bool      `json:"pressed,omitempty"`
	DX      int       `json:"dx,omitempty"`
	DY      int       `json:"dy,omitempty"`
	Seq     uint64    `json:"seq"`
	Time    time.Time `json:"time"`
}

func KeyEvent(k Key, pressed bool) Event {
	return Event{
		Type:    EventKey,
		Key:     k.String(),
		Usage:   uint8(k),
		Pressed: pressed,
		Time:    time.Now(),
	}
}

func MotionEvent(dx, dy int) Event {
	return Event{
		Type: EventMotion,
		DX:   dx,
		DY:   dy,
		Time: time.Now(),
	}
}

// AxisThresholds is the wire form of one axis calibration.
type AxisThresholds struct {
	Center      int `json:"center"`
	PressHigh   int `json:"press_high"`
	ReleaseHigh int `json:"release_high"`
	PressLow    int `json:"press_low"`
	ReleaseLow  int `json:"release_low"`
}

// Calibration is the startup calibration report for all four axes.
type Calibration struct {
	Device string         `json:"device"`
	LeftX  AxisThresholds `json:"left_x"`
	LeftY  AxisThresholds `json:"left_y"`
	RightX AxisThresholds `json:"right_x"`
	RightY AxisThresholds `json:"right_y"`
	Time   time.Time      `json:"time"`
}

// Status is the retained link state published by a controller.
type Status struct {
	Device string `json:"device"`
	Online bool   `json:"online"`
}
