// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/dualstick/internal/config"
	"github.com/relabs-tech/dualstick/internal/control"
)

// ads1115Max is the largest single-ended conversion result.
const ads1115Max = 1<<15 - 1

// Sample rate requested from the converter. The ADS1115 rounds to the
// nearest supported rate.
const adcRate = 860 * physic.Hertz

var adsChannels = [...]ads1x15.Channel{
	ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2, ads1x15.Channel3,
}

// StickSource reads the two analog sticks through an ADS1115 and the
// pointer stick push button from a GPIO pin.
type StickSource struct {
	bus    i2c.BusCloser
	adc    *ads1x15.Dev
	pins   [4]ads1x15.PinADC
	button gpio.PinIn

	domainMax int
	last      [4]int
	lastLevel bool
	failing   [4]bool
}

// NewStickSource opens the ADC and button pin named in cfg. domainMax is
// the top of the analog domain readings are scaled to.
func NewStickSource(cfg *config.Config, domainMax int) (*StickSource, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("stick source: periph host init: %w", err)
	}

	bus, err := i2creg.Open(cfg.ADCI2CBus)
	if err != nil {
		return nil, fmt.Errorf("stick source: open I2C bus %q: %w", cfg.ADCI2CBus, err)
	}

	opts := ads1x15.DefaultOpts
	opts.I2cAddress = cfg.ADCI2CAddr
	adc, err := ads1x15.NewADS1115(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("stick source: ADS1115 at 0x%02X: %w", cfg.ADCI2CAddr, err)
	}

	s := &StickSource{bus: bus, adc: adc, domainMax: domainMax, lastLevel: true}
	fullScale := physic.ElectricPotential(cfg.ADCFullScaleMV) * physic.MilliVolt
	for _, ch := range control.Channels {
		in := cfg.ADCChannels[ch]
		pin, err := adc.PinForChannel(adsChannels[in], fullScale, adcRate, ads1x15.BestQuality)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("stick source: %s on AIN%d: %w", ch, in, err)
		}
		s.pins[ch] = pin
		// Sticks rest near mid-scale; start there until the first good read.
		s.last[ch] = domainMax / 2
	}

	button := gpioreg.ByName(cfg.ButtonPin)
	if button == nil {
		s.Close()
		return nil, fmt.Errorf("stick source: button pin %q not found", cfg.ButtonPin)
	}
	if err := button.In(gpio.PullUp, gpio.NoEdge); err != nil {
		s.Close()
		return nil, fmt.Errorf("stick source: button pin %s: %w", cfg.ButtonPin, err)
	}
	s.button = button

	log.Printf("stick source: ADS1115 on %s at 0x%02X, full scale %dmV, channels %v, button %s",
		bus, cfg.ADCI2CAddr, cfg.ADCFullScaleMV, cfg.ADCChannels, cfg.ButtonPin)
	return s, nil
}

// ReadChannel returns the channel scaled to the analog domain. On a
// conversion error the previous reading is returned; the error is logged
// once per failure streak.
func (s *StickSource) ReadChannel(ch control.Channel) int {
	sample, err := s.pins[ch].Read()
	if err != nil {
		if !s.failing[ch] {
			log.Printf("stick source: %s read error (holding %d): %v", ch, s.last[ch], err)
		}
		s.failing[ch] = true
		return s.last[ch]
	}
	if s.failing[ch] {
		log.Printf("stick source: %s reads recovered", ch)
		s.failing[ch] = false
	}
	s.last[ch] = ScaleToDomain(int(sample.Raw), ads1115Max, s.domainMax)
	return s.last[ch]
}

// ReadDigital returns the button level; high means released.
func (s *StickSource) ReadDigital(pin control.Pin) bool {
	if pin != control.ButtonPin || s.button == nil {
		return s.lastLevel
	}
	s.lastLevel = s.button.Read() == gpio.High
	return s.lastLevel
}

func (s *StickSource) Close() error {
	var errs []error
	for _, p := range s.pins {
		if p != nil {
			errs = append(errs, p.Halt())
		}
	}
	errs = append(errs, s.adc.Halt(), s.bus.Close())
	return errors.Join(errs...)
}
