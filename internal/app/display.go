package app

import (
	"fmt"
	"image"
	"log"
	"strings"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/dualstick/internal/config"
)

const (
	displayWidth  = 128
	displayHeight = 64
	lineHeight    = 13
)

// RunDisplay shows the controller state on an SSD1306 panel.
func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("display: failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("display: failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	// The driver always talks to 0x3C; config validation enforces it.
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("display: failed to initialize SSD1306: %w", err)
	}
	log.Printf("display: SSD1306 initialized at 0x%02X", cfg.DisplayI2CAddr)
	defer dev.Halt()

	if err := drawLines(dev, []string{"", " Dual Stick", " waiting for", " controller"}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	mon := NewMonitor()
	client, err := connectMQTT(cfg, cfg.MQTTClientIDDisplay, "display")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeController(client, cfg, "display", monitorHandlers(mon, nil)); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	var shown string
	for range ticker.C {
		lines := displayLines(mon.Snapshot())
		// The panel is slow over I2C; only redraw on change.
		if key := strings.Join(lines, "\n"); key != shown {
			if err := drawLines(dev, lines); err != nil {
				log.Printf("display: error updating: %v", err)
				continue
			}
			shown = key
		}
	}
	return nil
}

// displayLines lays out a snapshot as up to five 18-column text lines.
func displayLines(s Snapshot) []string {
	link := "LINK ?"
	if s.KnownStatus {
		link = "LINK DOWN"
		if s.Online {
			link = "LINK UP"
		}
	}
	lines := []string{link}

	if c := s.Calibration; c != nil {
		lines = append(lines,
			fmt.Sprintf("L %4d %4d", c.LeftX.Center, c.LeftY.Center),
			fmt.Sprintf("R %4d %4d", c.RightX.Center, c.RightY.Center))
	} else {
		lines = append(lines, "not calibrated", "")
	}

	keys := "-"
	if len(s.Held) > 0 {
		keys = strings.Join(s.Held, " ")
	}
	lines = append(lines,
		"K "+keys,
		fmt.Sprintf("M %+d %+d", s.LastDX, s.LastDY))
	return lines
}

func renderLines(lines []string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(0, lineHeight*(i+1)-2)
		drawer.DrawString(line)
	}
	return img
}

func drawLines(dev *ssd1306.Dev, lines []string) error {
	return dev.Draw(dev.Bounds(), renderLines(lines), image.Point{})
}
