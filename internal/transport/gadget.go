// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package transport

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/relabs-tech/dualstick/internal/hid"
)

// probeInterval limits how often a disconnected gadget is re-probed.
const probeInterval = 500 * time.Millisecond

// reportWriter is the part of a HID gadget character device the sink
// uses; fdWriter is the real one.
type reportWriter interface {
	Write(report []byte) error
	Close() error
}

// GadgetSink writes boot-protocol reports to Linux USB HID gadget
// function devices (/dev/hidgN), one for the keyboard and one for the
// mouse. The kernel fails writes with ESHUTDOWN or EAGAIN while no USB
// host has configured the gadget; that is how disconnection is detected.
type GadgetSink struct {
	keyboard reportWriter
	mouse    reportWriter

	mu        sync.Mutex
	report    hid.KeyboardReport
	connected bool
	lastProbe time.Time
	now       func() time.Time
}

// NewGadgetSink opens both gadget devices non-blocking.
func NewGadgetSink(keyboardPath, mousePath string) (*GadgetSink, error) {
	kbd, err := openFD(keyboardPath)
	if err != nil {
		return nil, fmt.Errorf("gadget sink: keyboard %s: %w", keyboardPath, err)
	}
	mouse, err := openFD(mousePath)
	if err != nil {
		kbd.Close()
		return nil, fmt.Errorf("gadget sink: mouse %s: %w", mousePath, err)
	}
	log.Printf("gadget sink: keyboard=%s mouse=%s", keyboardPath, mousePath)
	return newGadgetSink(kbd, mouse), nil
}

func newGadgetSink(keyboard, mouse reportWriter) *GadgetSink {
	return &GadgetSink{keyboard: keyboard, mouse: mouse, now: time.Now}
}

func (g *GadgetSink) PressKey(k hid.Key) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.report.Press(k) {
		log.Printf("gadget sink: %s not added to keyboard report (held or rollover full)", k)
		return
	}
	g.send(g.keyboard, g.report.Bytes())
}

func (g *GadgetSink) ReleaseKey(k hid.Key) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.report.Release(k) {
		return
	}
	g.send(g.keyboard, g.report.Bytes())
}

func (g *GadgetSink) MoveRelative(dx, dy int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.send(g.mouse, hid.MouseReport(dx, dy))
}

// IsConnected returns the outcome of the last write. While disconnected
// it re-probes with an all-keys-up report at most every probeInterval.
func (g *GadgetSink) IsConnected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.connected {
		return true
	}
	if now := g.now(); now.Sub(g.lastProbe) >= probeInterval {
		g.lastProbe = now
		g.report.Reset()
		g.send(g.keyboard, g.report.Bytes())
	}
	return g.connected
}

func (g *GadgetSink) Close() error {
	return errors.Join(g.keyboard.Close(), g.mouse.Close())
}

// send writes one report and updates the connection state. The caller
// holds g.mu.
func (g *GadgetSink) send(w reportWriter, report []byte) {
	err := w.Write(report)
	switch {
	case err == nil:
		if !g.connected {
			log.Println("gadget sink: USB host connected")
		}
		g.connected = true
	case errors.Is(err, unix.ESHUTDOWN), errors.Is(err, unix.EAGAIN):
		if g.connected {
			log.Println("gadget sink: USB host gone")
		}
		g.connected = false
		// the host forgets held keys with the link
		g.report.Reset()
	default:
		log.Printf("gadget sink: write error: %v", err)
	}
}

type fdWriter struct {
	fd int
}

func openFD(path string) (*fdWriter, error) {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	return &fdWriter{fd: fd}, nil
}

func (w *fdWriter) Write(report []byte) error {
	n, err := unix.Write(w.fd, report)
	if err != nil {
		return err
	}
	if n != len(report) {
		return fmt.Errorf("short report write: %d of %d bytes", n, len(report))
	}
	return nil
}

func (w *fdWriter) Close() error {
	return unix.Close(w.fd)
}
