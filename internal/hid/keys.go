// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hid

import (
	"fmt"
	"strconv"
	"strings"
)

// Key is a USB HID keyboard usage ID (usage page 0x07).
type Key uint8

// Usage IDs for the keys the controller emulates.
const (
	KeyNone  Key = 0x00
	KeyA     Key = 0x04
	KeyD     Key = 0x07
	KeyS     Key = 0x16
	KeyW     Key = 0x1A
	KeySpace Key = 0x2C
)

var keyNames = map[Key]string{
	KeyNone:  "NONE",
	KeyA:     "A",
	KeyD:     "D",
	KeyS:     "S",
	KeyW:     "W",
	KeySpace: "SPACE",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", uint8(k))
}

// ParseKey accepts a key name ("W", "space") or a usage ID in any base
// strconv understands ("0x1A", "26").
func ParseKey(s string) (Key, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for k, n := range keyNames {
		if n == name && k != KeyNone {
			return k, nil
		}
	}
	usage, err := strconv.ParseUint(name, 0, 8)
	if err != nil {
		return KeyNone, fmt.Errorf("unknown key %q", s)
	}
	if usage == 0 {
		return KeyNone, fmt.Errorf("key usage %q is reserved", s)
	}
	return Key(usage), nil
}
