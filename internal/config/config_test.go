package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/relabs-tech/dualstick/internal/hid"
)

func writeConfig(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dualstick_config.txt")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "# only comments", ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transport != TransportMQTT || cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Errorf("transport defaults = %q %q", cfg.Transport, cfg.MQTTBroker)
	}
	if cfg.ADCI2CAddr != 0x48 || cfg.ADCChannels != [4]int{0, 1, 2, 3} {
		t.Errorf("ADC defaults = 0x%X %v", cfg.ADCI2CAddr, cfg.ADCChannels)
	}
	if cfg.KeyUp != hid.KeyW || cfg.KeyButton != hid.KeySpace {
		t.Errorf("key defaults = %v %v", cfg.KeyUp, cfg.KeyButton)
	}
	if cfg.ButtonPin != "GPIO13" || cfg.DisplayI2CAddr != 0x3C {
		t.Errorf("pin defaults = %q 0x%X", cfg.ButtonPin, cfg.DisplayI2CAddr)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t,
		"TRANSPORT=serial",
		"SERIAL_PORT=/dev/ttyS0",
		"SERIAL_BAUD_RATE=9600",
		"ADC_CH_LEFT_X=3",
		"ADC_CH_RIGHT_Y=0",
		"KEY_BUTTON=0x28",
		"WEB_SERVER_PORT=9090",
	)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transport != TransportSerial || cfg.SerialPort != "/dev/ttyS0" || cfg.SerialBaudRate != 9600 {
		t.Errorf("serial = %q %q %d", cfg.Transport, cfg.SerialPort, cfg.SerialBaudRate)
	}
	if cfg.ADCChannels != [4]int{3, 1, 2, 0} {
		t.Errorf("ADC channels = %v", cfg.ADCChannels)
	}
	if cfg.KeyButton != hid.Key(0x28) {
		t.Errorf("KEY_BUTTON = %v", cfg.KeyButton)
	}
	if cfg.WebServerPort != 9090 {
		t.Errorf("WEB_SERVER_PORT = %d", cfg.WebServerPort)
	}
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("DUALSTICK_MQTT_BROKER", "tcp://broker:1883")
	cfg, err := Load(writeConfig(t, "MQTT_BROKER=tcp://file:1883"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MQTTBroker != "tcp://broker:1883" {
		t.Errorf("MQTT_BROKER = %q, want environment value", cfg.MQTTBroker)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"unknown key", "NOT_A_KEY=1"},
		{"bad baud", "SERIAL_BAUD_RATE=fast"},
		{"channel range", "ADC_CH_LEFT_X=4"},
		{"duplicate channel", "ADC_CH_LEFT_X=1"},
		{"bad key", "KEY_UP=jump"},
		{"bad transport", "TRANSPORT=carrier-pigeon"},
		{"serial without port", "TRANSPORT=serial"},
		{"bad address", "ADC_I2C_ADDR=zz"},
		{"display address not 0x3C", "DISPLAY_I2C_ADDR=0x3D"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.line)); err == nil {
				t.Fatalf("Load accepted %q", tt.line)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("Load accepted a missing file")
	}
}
