package control

import "github.com/relabs-tech/dualstick/internal/hid"

// Channel identifies one analog axis.
type Channel int

const (
	LeftX  Channel = iota // movement stick X
	LeftY                 // movement stick Y
	RightX                // pointer stick X
	RightY                // pointer stick Y
)

var channelNames = [...]string{"left_x", "left_y", "right_x", "right_y"}

func (c Channel) String() string {
	if c < 0 || int(c) >= len(channelNames) {
		return "unknown"
	}
	return channelNames[c]
}

// Channels lists every analog channel in sampling order.
var Channels = []Channel{LeftX, LeftY, RightX, RightY}

// Pin identifies a digital input.
type Pin int

const (
	ButtonPin Pin = iota // pointer stick push button, active low
)

// Source provides raw readings. ReadChannel returns a value already
// inside the analog domain; ReadDigital returns the electrical level
// (true = high). Both are called at the polling rate with no filtering
// expected from the implementation.
type Source interface {
	ReadChannel(ch Channel) int
	ReadDigital(pin Pin) bool
}

// Sink is the HID transport. Calls are fire-and-forget; delivery errors
// are the sink's own business.
type Sink interface {
	PressKey(k hid.Key)
	ReleaseKey(k hid.Key)
	MoveRelative(dx, dy int)
	IsConnected() bool
}

// Sample is one cycle's worth of raw input.
type Sample struct {
	LeftX, LeftY   int
	RightX, RightY int
	ButtonLevel    bool
}

// ReadSample reads all four channels and the button pin in a fixed order.
func ReadSample(src Source) Sample {
	return Sample{
		LeftX:       src.ReadChannel(LeftX),
		LeftY:       src.ReadChannel(LeftY),
		RightX:      src.ReadChannel(RightX),
		RightY:      src.ReadChannel(RightY),
		ButtonLevel: src.ReadDigital(ButtonPin),
	}
}
