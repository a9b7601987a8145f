package control

import (
	"testing"

	"github.com/relabs-tech/dualstick/internal/hid"
)

func TestButtonDebouncerTransitions(t *testing.T) {
	const (
		inactive = true // pin pulled high
		active   = false
	)
	tests := []struct {
		name   string
		levels []bool
		want   []string
	}{
		{"press and release", []bool{inactive, active, active, inactive}, []string{"press SPACE", "release SPACE"}},
		{"idle", []bool{inactive, inactive, inactive}, nil},
		{"held throughout", []bool{active, active, active}, []string{"press SPACE"}},
		{"double tap", []bool{active, inactive, active, inactive}, []string{"press SPACE", "release SPACE", "press SPACE", "release SPACE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewButtonDebouncer(hid.KeySpace)
			sink := &recordingSink{}
			for _, l := range tt.levels {
				b.Update(l, sink)
			}
			if got := sink.take(); !equalEvents(got, tt.want) {
				t.Fatalf("events = %v, want %v", got, tt.want)
			}
		})
	}
}
