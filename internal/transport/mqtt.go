// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package transport

import (
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/dualstick/internal/config"
	"github.com/relabs-tech/dualstick/internal/hid"
)

// MQTTSink publishes HID events as JSON for a bridge process that owns
// the actual HID device. Key edges go out at QoS 1 so a press is never
// silently lost while its release arrives; motion is QoS 0.
type MQTTSink struct {
	client mqtt.Client
	device string

	topicKeys        string
	topicMotion      string
	topicCalibration string
	topicStatus      string

	seq atomic.Uint64
}

// NewMQTTSink connects to the broker and announces the controller online.
// The broker publishes the retained "offline" status if the connection
// drops without a clean disconnect.
func NewMQTTSink(cfg *config.Config) (*MQTTSink, error) {
	s := newMQTTSink(nil, cfg)

	offline, err := json.Marshal(hid.Status{Device: cfg.DeviceName, Online: false})
	if err != nil {
		return nil, fmt.Errorf("mqtt sink: status marshal: %w", err)
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDController).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second).
		SetWill(cfg.TopicStatus, string(offline), 1, true).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Printf("mqtt sink: connected to %s", cfg.MQTTBroker)
			s.publishStatus(true)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("mqtt sink: connection lost: %v", err)
		})

	s.client = mqtt.NewClient(opts)
	if token := s.client.Connect(); token.WaitTimeout(10*time.Second) && token.Error() != nil {
		return nil, fmt.Errorf("mqtt sink: connect %s: %w", cfg.MQTTBroker, token.Error())
	}
	return s, nil
}

func newMQTTSink(client mqtt.Client, cfg *config.Config) *MQTTSink {
	return &MQTTSink{
		client:           client,
		device:           cfg.DeviceName,
		topicKeys:        cfg.TopicKeys,
		topicMotion:      cfg.TopicMotion,
		topicCalibration: cfg.TopicCalibration,
		topicStatus:      cfg.TopicStatus,
	}
}

func (s *MQTTSink) PressKey(k hid.Key)   { s.publishEvent(s.topicKeys, 1, hid.KeyEvent(k, true)) }
func (s *MQTTSink) ReleaseKey(k hid.Key) { s.publishEvent(s.topicKeys, 1, hid.KeyEvent(k, false)) }

func (s *MQTTSink) MoveRelative(dx, dy int) {
	s.publishEvent(s.topicMotion, 0, hid.MotionEvent(dx, dy))
}

// IsConnected reports whether the broker connection is up. While paho is
// reconnecting it is false, which pauses the control loop.
func (s *MQTTSink) IsConnected() bool {
	return s.client.IsConnectionOpen()
}

// PublishCalibration publishes the startup calibration, retained so late
// subscribers see it.
func (s *MQTTSink) PublishCalibration(c hid.Calibration) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("mqtt sink: calibration marshal: %w", err)
	}
	token := s.client.Publish(s.topicCalibration, 1, true, payload)
	token.Wait()
	return token.Error()
}

func (s *MQTTSink) Close() error {
	s.publishStatus(false)
	s.client.Disconnect(250)
	return nil
}

func (s *MQTTSink) publishEvent(topic string, qos byte, ev hid.Event) {
	ev.Seq = s.seq.Add(1)
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("mqtt sink: event marshal error: %v", err)
		return
	}
	// Fire-and-forget: paho reports failures on the token; we only log them.
	token := s.client.Publish(topic, qos, false, payload)
	go func() {
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			log.Printf("mqtt sink: publish %s: %v", topic, token.Error())
		}
	}()
}

func (s *MQTTSink) publishStatus(online bool) {
	payload, err := json.Marshal(hid.Status{Device: s.device, Online: online})
	if err != nil {
		log.Printf("mqtt sink: status marshal error: %v", err)
		return
	}
	token := s.client.Publish(s.topicStatus, 1, true, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		log.Printf("mqtt sink: status publish: %v", token.Error())
	}
}
