// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/kortschak/polarsdk/heart"
	"github.com/kortschak/polarsdk/pmd"
)

const publishTimeout = 5 * time.Second

// ErrNotConnected is returned when publishing without a broker connection.
var ErrNotConnected = errors.New("mqtt client not connected")

// Publisher publishes decoded sample sets to an MQTT broker. Sample sets
// are published to <topic>/<device>/<measurement> with the measurement
// name in lower case.
type Publisher struct {
	client mqtt.Client
	topic  string
	qos    byte
	log    *slog.Logger

	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewPublisher returns a new Publisher for the broker URL, for example
// tcp://localhost:1883. The client reconnects automatically after a
// connection loss.
func NewPublisher(broker, clientID, topic string, qos byte, log *slog.Logger) *Publisher {
	p := &Publisher{
		topic:  strings.Trim(topic, "/"),
		qos:    qos,
		log:    log,
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		p.setConnected(true)
		log.Info("mqtt connected", "broker", broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		log.Warn("mqtt connection lost", "error", err)
	})
	p.client = mqtt.NewClient(opts)
	return p
}

// newPublisherWithClient returns a Publisher using the provided client.
// The client is assumed to be connected.
func newPublisherWithClient(c mqtt.Client, topic string, qos byte, log *slog.Logger) *Publisher {
	return &Publisher{
		client:    c,
		topic:     strings.Trim(topic, "/"),
		qos:       qos,
		log:       log,
		connected: true,
		stopCh:    make(chan struct{}),
	}
}

// Connect establishes the broker connection, waiting for the initial
// connection until ctx is cancelled or the Publisher is closed.
func (p *Publisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return errors.New("publisher closed")
	default:
	}
	if p.IsConnected() {
		return nil
	}

	token := p.client.Connect()
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			err := token.Error()
			if err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return errors.New("publisher closed")
		default:
		}
	}
}

// Message is the payload of a published sample set.
type Message struct {
	Device  string    `json:"device"`
	Measure string    `json:"measure"`
	Time    time.Time `json:"time"`
	Samples int       `json:"samples"`
	Data    any       `json:"data"`
}

// Topic returns the topic measurements with the given name from device
// are published to.
func (p *Publisher) Topic(device, measure string) string {
	return fmt.Sprintf("%s/%s/%s", p.topic, device, strings.ToLower(measure))
}

// Publish publishes a decoded sample set received from device at the
// wall time t.
func (p *Publisher) Publish(device string, t time.Time, set pmd.SampleSet) error {
	return p.publish(Message{
		Device:  device,
		Measure: set.Measure().String(),
		Time:    t.UTC(),
		Samples: set.Len(),
		Data:    set,
	})
}

// PublishRate publishes a heart rate measurement received from device
// at the wall time t.
func (p *Publisher) PublishRate(device string, t time.Time, r heart.Rate) error {
	return p.publish(Message{
		Device:  device,
		Measure: "HR",
		Time:    t.UTC(),
		Samples: 1,
		Data:    r,
	})
}

func (p *Publisher) publish(msg Message) error {
	if !p.IsConnected() {
		return ErrNotConnected
	}
	topic := p.Topic(msg.Device, msg.Measure)
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s samples: %w", msg.Measure, err)
	}
	token := p.client.Publish(topic, p.qos, false, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	err = token.Error()
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	p.log.Debug("published samples", "topic", topic, "samples", msg.Samples)
	return nil
}

// IsConnected returns whether the publisher is connected to the broker.
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Close disconnects from the broker. It is safe to call Close more
// than once.
func (p *Publisher) Close() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.client.Disconnect(250)
	p.setConnected(false)
	p.log.Info("mqtt disconnected")
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}
