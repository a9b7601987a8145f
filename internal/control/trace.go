package control

import (
	"log"

	"github.com/relabs-tech/dualstick/internal/hid"
)

type traceSink struct {
	Sink
	logger *log.Logger
}

// Trace wraps sink so that every key edge is logged as "key W pressed".
// Motion is passed through silently.
func Trace(sink Sink, logger *log.Logger) Sink {
	if logger == nil {
		logger = log.Default()
	}
	return &traceSink{Sink: sink, logger: logger}
}

func (t *traceSink) PressKey(k hid.Key) {
	t.logger.Printf("key %s pressed", k)
	t.Sink.PressKey(k)
}

func (t *traceSink) ReleaseKey(k hid.Key) {
	t.logger.Printf("key %s released", k)
	t.Sink.ReleaseKey(k)
}
