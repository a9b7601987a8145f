// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/relabs-tech/dualstick/internal/hid"
)

// Transport names accepted by TRANSPORT.
const (
	TransportMQTT   = "mqtt"
	TransportSerial = "serial"
	TransportGadget = "hidg"
	TransportLog    = "log"
)

// ssd1306Addr is the only address the periph SSD1306 driver uses.
const ssd1306Addr = 0x3C

// Config holds the deployment settings of the controller and its tools.
// Signal-conditioning constants are not here; they are fixed in
// control.DefaultConfig.
type Config struct {
	DeviceName string
	Transport  string

	// MQTT
	MQTTBroker             string
	MQTTClientIDController string
	MQTTClientIDConsole    string
	MQTTClientIDWeb        string
	MQTTClientIDDisplay    string

	// Topics
	TopicKeys        string
	TopicMotion      string
	TopicCalibration string
	TopicStatus      string

	// Serial link to the BLE HID co-processor
	SerialPort     string
	SerialBaudRate int

	// USB HID gadget
	GadgetKeyboardDevice string
	GadgetMouseDevice    string

	// ADS1115 analog front end
	ADCI2CBus      string
	ADCI2CAddr     uint16
	ADCFullScaleMV int
	ADCChannels    [4]int // ADS1115 input for left X, left Y, right X, right Y

	// Pointer stick push button (active low, internal pull-up)
	ButtonPin string

	// Key assignment
	KeyUp     hid.Key
	KeyDown   hid.Key
	KeyLeft   hid.Key
	KeyRight  hid.Key
	KeyButton hid.Key

	// Status display
	DisplayI2CBus         string
	DisplayI2CAddr        uint16 // must be 0x3C
	DisplayUpdateInterval int    // milliseconds

	// Web monitor
	WebServerPort int
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported so other packages go through InitGlobal/Get.
//   - configOnce: ensures InitGlobal() only runs once.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

var defaults = map[string]string{
	"DEVICE_NAME": "Dual Joystick Controller",
	"TRANSPORT":   TransportMQTT,

	"MQTT_BROKER":               "tcp://localhost:1883",
	"MQTT_CLIENT_ID_CONTROLLER": "dualstick-controller",
	"MQTT_CLIENT_ID_CONSOLE":    "dualstick-console",
	"MQTT_CLIENT_ID_WEB":        "dualstick-web",
	"MQTT_CLIENT_ID_DISPLAY":    "dualstick-display",

	"TOPIC_KEYS":        "dualstick/keys",
	"TOPIC_MOTION":      "dualstick/motion",
	"TOPIC_CALIBRATION": "dualstick/calibration",
	"TOPIC_STATUS":      "dualstick/status",

	"SERIAL_PORT":      "",
	"SERIAL_BAUD_RATE": "115200",

	"GADGET_KEYBOARD_DEVICE": "/dev/hidg0",
	"GADGET_MOUSE_DEVICE":    "/dev/hidg1",

	"ADC_I2C_BUS":       "",
	"ADC_I2C_ADDR":      "0x48",
	"ADC_FULL_SCALE_MV": "4096",
	"ADC_CH_LEFT_X":     "0",
	"ADC_CH_LEFT_Y":     "1",
	"ADC_CH_RIGHT_X":    "2",
	"ADC_CH_RIGHT_Y":    "3",

	"BUTTON_PIN": "GPIO13",

	"KEY_UP":     "W",
	"KEY_DOWN":   "S",
	"KEY_LEFT":   "A",
	"KEY_RIGHT":  "D",
	"KEY_BUTTON": "SPACE",

	"DISPLAY_I2C_BUS":         "",
	"DISPLAY_I2C_ADDR":        "0x3C",
	"DISPLAY_UPDATE_INTERVAL": "200",

	"WEB_SERVER_PORT": "8080",
}

// Load reads a KEY=VALUE configuration file. Keys missing from the file
// fall back to their defaults; any key can be overridden from the
// environment as DUALSTICK_<KEY>.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("env")
	v.SetEnvPrefix("DUALSTICK")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	for _, key := range v.AllKeys() {
		upper := strings.ToUpper(key)
		if err := cfg.setValue(upper, strings.TrimSpace(v.GetString(key))); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	case "DEVICE_NAME":
		c.DeviceName = value
	case "TRANSPORT":
		c.Transport = strings.ToLower(value)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_CONTROLLER":
		c.MQTTClientIDController = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_KEYS":
		c.TopicKeys = value
	case "TOPIC_MOTION":
		c.TopicMotion = value
	case "TOPIC_CALIBRATION":
		c.TopicCalibration = value
	case "TOPIC_STATUS":
		c.TopicStatus = value

	// Serial
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = rate

	// HID gadget
	case "GADGET_KEYBOARD_DEVICE":
		c.GadgetKeyboardDevice = value
	case "GADGET_MOUSE_DEVICE":
		c.GadgetMouseDevice = value

	// ADC
	case "ADC_I2C_BUS":
		c.ADCI2CBus = value
	case "ADC_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid ADC_I2C_ADDR %q: %w", value, err)
		}
		c.ADCI2CAddr = uint16(addr)
	case "ADC_FULL_SCALE_MV":
		mv, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid ADC_FULL_SCALE_MV %q: %w", value, err)
		}
		c.ADCFullScaleMV = mv
	case "ADC_CH_LEFT_X", "ADC_CH_LEFT_Y", "ADC_CH_RIGHT_X", "ADC_CH_RIGHT_Y":
		ch, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		if ch < 0 || ch > 3 {
			return fmt.Errorf("%s must be 0-3, got %d", key, ch)
		}
		c.ADCChannels[adcChannelIndex[key]] = ch

	case "BUTTON_PIN":
		c.ButtonPin = value

	// Keys
	case "KEY_UP", "KEY_DOWN", "KEY_LEFT", "KEY_RIGHT", "KEY_BUTTON":
		k, err := hid.ParseKey(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*c.keyField(key) = k

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayI2CAddr = uint16(addr)
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

var adcChannelIndex = map[string]int{
	"ADC_CH_LEFT_X":  0,
	"ADC_CH_LEFT_Y":  1,
	"ADC_CH_RIGHT_X": 2,
	"ADC_CH_RIGHT_Y": 3,
}

func (c *Config) keyField(key string) *hid.Key {
	switch key {
	case "KEY_UP":
		return &c.KeyUp
	case "KEY_DOWN":
		return &c.KeyDown
	case "KEY_LEFT":
		return &c.KeyLeft
	case "KEY_RIGHT":
		return &c.KeyRight
	default:
		return &c.KeyButton
	}
}

// validate checks that the settings fit together.
func (c *Config) validate() error {
	switch c.Transport {
	case TransportMQTT:
		if c.MQTTBroker == "" {
			return fmt.Errorf("MQTT_BROKER is required for TRANSPORT=mqtt")
		}
	case TransportSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required for TRANSPORT=serial")
		}
		if c.SerialBaudRate <= 0 {
			return fmt.Errorf("SERIAL_BAUD_RATE must be positive, got %d", c.SerialBaudRate)
		}
	case TransportGadget:
		if c.GadgetKeyboardDevice == "" || c.GadgetMouseDevice == "" {
			return fmt.Errorf("GADGET_KEYBOARD_DEVICE and GADGET_MOUSE_DEVICE are required for TRANSPORT=hidg")
		}
	case TransportLog:
	default:
		return fmt.Errorf("TRANSPORT must be one of mqtt, serial, hidg, log; got %q", c.Transport)
	}

	seen := map[int]bool{}
	for _, ch := range c.ADCChannels {
		if seen[ch] {
			return fmt.Errorf("ADC channels must be distinct, got %v", c.ADCChannels)
		}
		seen[ch] = true
	}
	if c.ADCFullScaleMV <= 0 {
		return fmt.Errorf("ADC_FULL_SCALE_MV must be positive, got %d", c.ADCFullScaleMV)
	}
	if c.ButtonPin == "" {
		return fmt.Errorf("BUTTON_PIN is required")
	}
	if c.DisplayI2CAddr != ssd1306Addr {
		return fmt.Errorf("DISPLAY_I2C_ADDR must be 0x%02X (the SSD1306 driver address), got 0x%02X", ssd1306Addr, c.DisplayI2CAddr)
	}
	if c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive, got %d", c.DisplayUpdateInterval)
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once so repeated calls keep the first result.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
