package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/dualstick/internal/config"
	"github.com/relabs-tech/dualstick/internal/hid"
)

// RunConsoleMQTT prints one line for every message a controller publishes.
func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg, cfg.MQTTClientIDConsole, "console")
	if err != nil {
		return err
	}

	err = subscribeController(client, cfg, "console", controllerHandlers{
		event:       func(ev hid.Event) { fmt.Println(formatEvent(ev)) },
		calibration: func(c hid.Calibration) { fmt.Println(formatCalibration(c)) },
		status:      func(s hid.Status) { fmt.Println(formatStatus(s)) },
	})
	if err != nil {
		client.Disconnect(250)
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

func formatEvent(ev hid.Event) string {
	switch ev.Type {
	case hid.EventKey:
		state := "released"
		if ev.Pressed {
			state = "pressed"
		}
		return fmt.Sprintf("[KEY ] #%-6d %-5s (0x%02X) %s", ev.Seq, ev.Key, ev.Usage, state)
	case hid.EventMotion:
		return fmt.Sprintf("[MOVE] #%-6d dx=%3d dy=%3d", ev.Seq, ev.DX, ev.DY)
	default:
		return fmt.Sprintf("[????] #%-6d type=%q", ev.Seq, ev.Type)
	}
}

func formatCalibration(c hid.Calibration) string {
	return fmt.Sprintf("[CAL ] %s  LX=%d LY=%d RX=%d RY=%d  LX keys >%d/<%d  <%d/>%d",
		c.Device, c.LeftX.Center, c.LeftY.Center, c.RightX.Center, c.RightY.Center,
		c.LeftX.PressHigh, c.LeftX.ReleaseHigh, c.LeftX.PressLow, c.LeftX.ReleaseLow)
}

func formatStatus(s hid.Status) string {
	state := "offline"
	if s.Online {
		state = "online"
	}
	return fmt.Sprintf("[LINK] %s %s", s.Device, state)
}
