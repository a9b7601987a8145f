package transport

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/dualstick/internal/config"
	"github.com/relabs-tech/dualstick/internal/hid"
	"github.com/relabs-tech/dualstick/internal/link"
)

// SerialSink drives a BLE HID co-processor over a UART. The co-processor
// owns pairing and the HID descriptor; it reports whether a BLE host is
// connected with $PJOYS sentences, which is what IsConnected returns.
type SerialSink struct {
	port io.ReadWriteCloser

	mu        sync.Mutex // serializes writes
	connected atomic.Bool
	done      chan struct{}
}

// NewSerialSink opens the configured port and starts reading status
// sentences from it.
func NewSerialSink(cfg *config.Config) (*SerialSink, error) {
	opts := serial.OpenOptions{
		PortName:              cfg.SerialPort,
		BaudRate:              uint(cfg.SerialBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("serial sink: open %s: %w", cfg.SerialPort, err)
	}
	log.Printf("serial sink: opened %s at %d baud", opts.PortName, opts.BaudRate)
	return newSerialSink(port), nil
}

func newSerialSink(port io.ReadWriteCloser) *SerialSink {
	s := &SerialSink{port: port, done: make(chan struct{})}
	go s.readStatus()
	return s
}

func (s *SerialSink) PressKey(k hid.Key)      { s.write(link.EncodeKey(k, true)) }
func (s *SerialSink) ReleaseKey(k hid.Key)    { s.write(link.EncodeKey(k, false)) }
func (s *SerialSink) MoveRelative(dx, dy int) { s.write(link.EncodeMotion(dx, dy)) }
func (s *SerialSink) IsConnected() bool       { return s.connected.Load() }

// PublishCalibration sends the calibration report to the co-processor.
func (s *SerialSink) PublishCalibration(c hid.Calibration) error {
	return s.writeErr(link.EncodeCalibration(c))
}

// Close closes the port, which normally ends the status reader. Some
// tty drivers do not wake a blocked read on close, so the wait is bounded.
func (s *SerialSink) Close() error {
	err := s.port.Close()
	select {
	case <-s.done:
	case <-time.After(time.Second):
		log.Println("serial sink: status reader still blocked after close")
	}
	return err
}

func (s *SerialSink) write(sentence string) {
	if err := s.writeErr(sentence); err != nil {
		log.Printf("serial sink: write error: %v", err)
	}
}

func (s *SerialSink) writeErr(sentence string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.port, sentence)
	return err
}

func (s *SerialSink) readStatus() {
	defer close(s.done)
	reader := bufio.NewReader(s.port)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				log.Printf("serial sink: read error: %v", err)
			}
			s.connected.Store(false)
			return
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "$") {
			continue
		}
		sentence, err := link.Parse(line)
		if err != nil {
			// line noise or a partial sentence after power-up
			continue
		}
		if st, ok := sentence.(link.Status); ok {
			if s.connected.Swap(st.Connected) != st.Connected {
				log.Printf("serial sink: BLE host connected=%v", st.Connected)
			}
		}
	}
}
