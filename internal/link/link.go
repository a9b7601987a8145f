// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package link frames HID actions as proprietary NMEA 0183 sentences for
// the serial line between the controller and a BLE HID co-processor.
//
//	$PJOYK,P,1A*hh   key press (R for release), usage ID in hex
//	$PJOYM,3,-2*hh   relative pointer motion
//	$PJOYS,1*hh      co-processor → controller: BLE host connected (0/1)
//	$PJOYC,...*hh    calibration report: device name then center and the
//	                 four thresholds of left X, left Y, right X, right Y
//
// Every sentence carries the standard XOR checksum and ends in CRLF.
package link

import (
	"fmt"
	"strconv"
	"strings"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/relabs-tech/dualstick/internal/hid"
)

// Sentence types, without the proprietary "P" talker.
const (
	TypeKey         = "JOYK"
	TypeMotion      = "JOYM"
	TypeStatus      = "JOYS"
	TypeCalibration = "JOYC"
)

// Key is a key press or release.
type Key struct {
	nmea.BaseSentence
	Key     hid.Key
	Pressed bool
}

// Motion is a relative pointer step.
type Motion struct {
	nmea.BaseSentence
	DX int64
	DY int64
}

// Status is the BLE link state reported by the co-processor.
type Status struct {
	nmea.BaseSentence
	Connected bool
}

// Calibration is the startup calibration report.
type Calibration struct {
	nmea.BaseSentence
	Report hid.Calibration
}

func frame(typ string, fields ...string) string {
	body := "P" + typ
	if len(fields) > 0 {
		body += "," + strings.Join(fields, ",")
	}
	return "$" + body + "*" + nmea.Checksum(body) + "\r\n"
}

// EncodeKey frames a key edge.
func EncodeKey(k hid.Key, pressed bool) string {
	action := "R"
	if pressed {
		action = "P"
	}
	return frame(TypeKey, action, fmt.Sprintf("%02X", uint8(k)))
}

// EncodeMotion frames a pointer step.
func EncodeMotion(dx, dy int) string {
	return frame(TypeMotion, strconv.Itoa(dx), strconv.Itoa(dy))
}

// EncodeStatus frames a link state report.
func EncodeStatus(connected bool) string {
	state := "0"
	if connected {
		state = "1"
	}
	return frame(TypeStatus, state)
}

// EncodeCalibration frames a calibration report. Commas and asterisks in
// the device name are replaced so the sentence stays parseable.
func EncodeCalibration(c hid.Calibration) string {
	name := strings.NewReplacer(",", " ", "*", " ", "$", " ").Replace(c.Device)
	fields := []string{name}
	for _, a := range []hid.AxisThresholds{c.LeftX, c.LeftY, c.RightX, c.RightY} {
		fields = append(fields,
			strconv.Itoa(a.Center),
			strconv.Itoa(a.PressHigh),
			strconv.Itoa(a.ReleaseHigh),
			strconv.Itoa(a.PressLow),
			strconv.Itoa(a.ReleaseLow),
		)
	}
	return frame(TypeCalibration, fields...)
}

// NewParser returns a go-nmea parser that understands the PJOY sentences
// in addition to the standard ones.
func NewParser() *nmea.SentenceParser {
	return &nmea.SentenceParser{
		CustomParsers: map[string]nmea.ParserFunc{
			TypeKey:         parseKey,
			TypeMotion:      parseMotion,
			TypeStatus:      parseStatus,
			TypeCalibration: parseCalibration,
		},
	}
}

var defaultParser = NewParser()

// Parse decodes one framed line; surrounding whitespace is ignored.
func Parse(line string) (nmea.Sentence, error) {
	return defaultParser.Parse(strings.TrimSpace(line))
}

func parseKey(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	action := p.EnumString(0, "action", "P", "R")
	usage := p.String(1, "usage")
	if err := p.Err(); err != nil {
		return nil, err
	}
	v, err := strconv.ParseUint(usage, 16, 8)
	if err != nil {
		return nil, fmt.Errorf("nmea: %s invalid usage %q: %w", s.Prefix(), usage, err)
	}
	return Key{
		BaseSentence: s,
		Key:          hid.Key(v),
		Pressed:      action == "P",
	}, nil
}

func parseMotion(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	m := Motion{
		BaseSentence: s,
		DX:           p.Int64(0, "dx"),
		DY:           p.Int64(1, "dy"),
	}
	return m, p.Err()
}

func parseStatus(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	st := Status{
		BaseSentence: s,
		Connected:    p.EnumString(0, "state", "0", "1") == "1",
	}
	return st, p.Err()
}

func parseCalibration(s nmea.BaseSentence) (nmea.Sentence, error) {
	if len(s.Fields) != 21 {
		return nil, fmt.Errorf("nmea: %s expected 21 fields, got %d", s.Prefix(), len(s.Fields))
	}
	p := nmea.NewParser(s)
	axis := func(i int) hid.AxisThresholds {
		return hid.AxisThresholds{
			Center:      int(p.Int64(i, "center")),
			PressHigh:   int(p.Int64(i+1, "press high")),
			ReleaseHigh: int(p.Int64(i+2, "release high")),
			PressLow:    int(p.Int64(i+3, "press low")),
			ReleaseLow:  int(p.Int64(i+4, "release low")),
		}
	}
	c := Calibration{
		BaseSentence: s,
		Report: hid.Calibration{
			Device: p.String(0, "device"),
			LeftX:  axis(1),
			LeftY:  axis(6),
			RightX: axis(11),
			RightY: axis(16),
		},
	}
	return c, p.Err()
}
