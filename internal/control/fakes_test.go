package control

import (
	"fmt"

	"github.com/relabs-tech/dualstick/internal/hid"
)

// recordingSink records every call as a short string.
type recordingSink struct {
	events       []string
	disconnected bool
}

func (r *recordingSink) PressKey(k hid.Key)   { r.events = append(r.events, "press "+k.String()) }
func (r *recordingSink) ReleaseKey(k hid.Key) { r.events = append(r.events, "release "+k.String()) }
func (r *recordingSink) MoveRelative(dx, dy int) {
	r.events = append(r.events, fmt.Sprintf("move %d,%d", dx, dy))
}
func (r *recordingSink) IsConnected() bool { return !r.disconnected }

func (r *recordingSink) take() []string {
	ev := r.events
	r.events = nil
	return ev
}

// fixedSource returns the same value for every read until changed.
type fixedSource struct {
	channels [4]int
	level    bool
	reads    int
}

func newFixedSource(v int) *fixedSource {
	return &fixedSource{channels: [4]int{v, v, v, v}, level: true}
}

func (f *fixedSource) ReadChannel(ch Channel) int {
	f.reads++
	return f.channels[ch]
}

func (f *fixedSource) ReadDigital(Pin) bool { return f.level }

// seqSource plays back a list of values on one channel.
type seqSource struct {
	values []int
	i      int
}

func (s *seqSource) ReadChannel(Channel) int {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v
}

func (s *seqSource) ReadDigital(Pin) bool { return true }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.CalibrationDelay = 0
	cfg.PollInterval = 0
	return cfg
}

func equalEvents(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
