// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sink

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/kortschak/polarsdk/heart"
	"github.com/kortschak/polarsdk/pmd"
)

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient is an mqtt.Client that records published messages.
type fakeClient struct {
	mqtt.Client

	connected bool
	err       error
	sent      []published
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Disconnect(uint) { c.connected = false }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload any) mqtt.Token {
	c.sent = append(c.sent, published{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return doneToken{err: c.err}
}

type doneToken struct{ err error }

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Done() <-chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}
func (t doneToken) Error() error { return t.err }

func TestPublish(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := &fakeClient{connected: true}
	p := newPublisherWithClient(client, "/polar/", 1, log)

	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	set := &pmd.AccData{Samples: []pmd.AccSample{{Timestamp: 599634867000000000, X: 100, Y: 200, Z: 300}}}
	err := p.Publish("A0:9E:1A:12:34:56", now, set)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.sent) != 1 {
		t.Fatalf("unexpected number of messages: got:%d want:1", len(client.sent))
	}
	msg := client.sent[0]
	if msg.topic != "polar/A0:9E:1A:12:34:56/acc" || msg.qos != 1 || msg.retained {
		t.Errorf("unexpected message parameters: %+v", msg)
	}
	var got struct {
		Device  string    `json:"device"`
		Measure string    `json:"measure"`
		Time    time.Time `json:"time"`
		Samples int       `json:"samples"`
		Data    struct {
			Samples []pmd.AccSample
		} `json:"data"`
	}
	err = json.Unmarshal(msg.payload, &got)
	if err != nil {
		t.Fatalf("unexpected error unmarshaling payload: %v", err)
	}
	if got.Device != "A0:9E:1A:12:34:56" || got.Measure != "Acc" || got.Samples != 1 {
		t.Errorf("unexpected message: %+v", got)
	}
	if !got.Time.Equal(now) {
		t.Errorf("unexpected message time: %v", got.Time)
	}
	if len(got.Data.Samples) != 1 || got.Data.Samples[0] != set.Samples[0] {
		t.Errorf("unexpected samples: %+v", got.Data.Samples)
	}

	client.err = errors.New("broker unavailable")
	err = p.Publish("A0:9E:1A:12:34:56", now, set)
	if err == nil {
		t.Error("expected publish error")
	}

	p.Close()
	err = p.Publish("A0:9E:1A:12:34:56", now, set)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("unexpected error after close: got:%v want:%v", err, ErrNotConnected)
	}
	p.Close()
}

func TestPublishRate(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := &fakeClient{connected: true}
	p := newPublisherWithClient(client, "polar", 0, log)

	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	err := p.PublishRate("A0:9E:1A:12:34:56", now, heart.Rate{HR: 62, RR: []time.Duration{time.Second}, Energy: -1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.sent) != 1 {
		t.Fatalf("unexpected number of messages: got:%d want:1", len(client.sent))
	}
	if client.sent[0].topic != "polar/A0:9E:1A:12:34:56/hr" {
		t.Errorf("unexpected topic: %s", client.sent[0].topic)
	}
	var got struct {
		Measure string     `json:"measure"`
		Data    heart.Rate `json:"data"`
	}
	err = json.Unmarshal(client.sent[0].payload, &got)
	if err != nil {
		t.Fatalf("unexpected error unmarshaling payload: %v", err)
	}
	if got.Measure != "HR" || got.Data.HR != 62 || len(got.Data.RR) != 1 || got.Data.RR[0] != time.Second {
		t.Errorf("unexpected message: %+v", got)
	}
}
