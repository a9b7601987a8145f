package app

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/dualstick/internal/config"
	"github.com/relabs-tech/dualstick/internal/hid"
)

// Monitor is the subscriber-side picture of one controller, rebuilt from
// its MQTT topics.
type Monitor struct {
	mu sync.RWMutex

	status     hid.Status
	haveStatus bool

	cal     hid.Calibration
	haveCal bool

	held       map[string]bool
	lastMotion hid.Event
	haveMotion bool
	events     uint64
}

// Snapshot is a copy of the monitor state, shaped for JSON.
type Snapshot struct {
	Device      string           `json:"device"`
	Online      bool             `json:"online"`
	KnownStatus bool             `json:"known_status"`
	Calibration *hid.Calibration `json:"calibration,omitempty"`
	Held        []string         `json:"held"`
	LastDX      int              `json:"last_dx"`
	LastDY      int              `json:"last_dy"`
	LastMotion  time.Time        `json:"last_motion"`
	Events      uint64           `json:"events"`
}

func NewMonitor() *Monitor {
	return &Monitor{held: make(map[string]bool)}
}

func (m *Monitor) ApplyEvent(ev hid.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events++
	switch ev.Type {
	case hid.EventKey:
		if ev.Pressed {
			m.held[ev.Key] = true
		} else {
			delete(m.held, ev.Key)
		}
	case hid.EventMotion:
		m.lastMotion = ev
		m.haveMotion = true
	}
}

func (m *Monitor) ApplyCalibration(c hid.Calibration) {
	m.mu.Lock()
	m.cal = c
	m.haveCal = true
	m.mu.Unlock()
}

// ApplyStatus records the controller link state. Going offline clears the
// held keys: a controller that comes back starts from neutral.
func (m *Monitor) ApplyStatus(s hid.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = s
	m.haveStatus = true
	if !s.Online {
		clear(m.held)
	}
}

func (m *Monitor) Calibration() (hid.Calibration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cal, m.haveCal
}

func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Snapshot{
		Device:      m.status.Device,
		Online:      m.status.Online,
		KnownStatus: m.haveStatus,
		Held:        make([]string, 0, len(m.held)),
		Events:      m.events,
	}
	if m.haveCal {
		cal := m.cal
		s.Calibration = &cal
		if s.Device == "" {
			s.Device = cal.Device
		}
	}
	for k := range m.held {
		s.Held = append(s.Held, k)
	}
	sort.Strings(s.Held)
	if m.haveMotion {
		s.LastDX, s.LastDY = m.lastMotion.DX, m.lastMotion.DY
		s.LastMotion = m.lastMotion.Time
	}
	return s
}

// controllerHandlers receives the decoded controller topics. Nil fields
// are not subscribed.
type controllerHandlers struct {
	event       func(hid.Event)
	calibration func(hid.Calibration)
	status      func(hid.Status)
}

// monitorHandlers feeds every topic into m, then calls after (if set).
func monitorHandlers(m *Monitor, after func(kind string, v any)) controllerHandlers {
	notify := func(kind string, v any) {
		if after != nil {
			after(kind, v)
		}
	}
	return controllerHandlers{
		event:       func(ev hid.Event) { m.ApplyEvent(ev); notify("event", ev) },
		calibration: func(c hid.Calibration) { m.ApplyCalibration(c); notify("calibration", c) },
		status:      func(s hid.Status) { m.ApplyStatus(s); notify("status", s) },
	}
}

func connectMQTT(cfg *config.Config, clientID, component string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("%s: MQTT connect %s: %w", component, cfg.MQTTBroker, token.Error())
	}
	log.Printf("%s: connected to MQTT broker at %s", component, cfg.MQTTBroker)
	return client, nil
}

func subscribeController(client mqtt.Client, cfg *config.Config, component string, h controllerHandlers) error {
	if h.status != nil {
		if err := subscribeJSON(client, cfg.TopicStatus, component, h.status); err != nil {
			return err
		}
	}
	if h.calibration != nil {
		if err := subscribeJSON(client, cfg.TopicCalibration, component, h.calibration); err != nil {
			return err
		}
	}
	if h.event != nil {
		if err := subscribeJSON(client, cfg.TopicKeys, component, h.event); err != nil {
			return err
		}
		if err := subscribeJSON(client, cfg.TopicMotion, component, h.event); err != nil {
			return err
		}
	}
	return nil
}

func subscribeJSON[T any](client mqtt.Client, topic, component string, fn func(T)) error {
	token := client.Subscribe(topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		var v T
		if err := json.Unmarshal(msg.Payload(), &v); err != nil {
			log.Printf("%s: %s unmarshal error: %v", component, topic, err)
			return
		}
		fn(v)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("%s: subscribe %s: %w", component, topic, token.Error())
	}
	log.Printf("%s: subscribed to %s", component, topic)
	return nil
}
