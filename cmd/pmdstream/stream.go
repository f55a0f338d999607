// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/kortschak/polarsdk/battery"
	"github.com/kortschak/polarsdk/cmd/internal/channels"
	"github.com/kortschak/polarsdk/cmd/internal/ring"
	"github.com/kortschak/polarsdk/heart"
	"github.com/kortschak/polarsdk/internal/config"
	"github.com/kortschak/polarsdk/internal/sink"
	"github.com/kortschak/polarsdk/pmd"
)

const (
	// windowSize is the number of recent values per
	// channel retained for summaries.
	windowSize = 1024

	// lowBattery is the battery level percentage at
	// or below which level notifications are warnings.
	lowBattery = 15
)

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	adapter := bluetooth.DefaultAdapter
	err := adapter.Enable()
	if err != nil {
		return fmt.Errorf("failed to enable bluetooth: %w", err)
	}
	dev, err := connect(ctx, adapter, cfg.Address, cfg.ScanTimeout, log)
	if err != nil {
		return err
	}
	defer dev.Disconnect()

	level, err := battery.Level(&dev)
	if err != nil {
		log.Warn("failed to read battery level", "error", err)
	} else {
		log.Info("battery", "level", level)
	}
	bat, err := battery.NewMonitor(&dev, func(level int, err error) {
		switch {
		case err != nil:
			log.Warn("invalid battery notification", "error", err)
		case level <= lowBattery:
			log.Warn("battery low", "level", level)
		default:
			log.Info("battery", "level", level)
		}
	})
	if err != nil {
		log.Debug("battery notifications unavailable", "error", err)
	} else {
		defer bat.Close()
	}

	l, err := pmd.NewListener(&dev)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	defer l.Close()
	log.Info("supported features", "features", l.Features().String())

	s := newSession(cfg.Address, log)
	if cfg.Capture != "" {
		f, err := os.OpenFile(cfg.Capture, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open capture file: %w", err)
		}
		defer f.Close()
		s.capture = sink.NewJSONLWriter(f)
		l.SetTap(s.tap)
	}
	if cfg.MQTT.Broker != "" {
		p := sink.NewPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic, cfg.MQTT.QoS, log)
		err = p.Connect(ctx)
		if err != nil {
			return err
		}
		defer p.Close()
		s.publisher = p
	}

	var wg sync.WaitGroup
	if s.publisher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.publish(ctx)
		}()
	}

	var started []pmd.MeasureType
	defer func() {
		for _, m := range started {
			// Use a fresh context since ctx is likely cancelled.
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.CommandTimeout)
			err := l.SetHandler(stopCtx, pmd.MeasurementHandler{Type: m})
			cancel()
			if err != nil {
				log.Warn("failed to stop measurement", "measure", m.String(), "error", err)
			}
		}
	}()
	for _, m := range cfg.Measurements {
		cmdCtx, cancel := context.WithTimeout(ctx, cfg.CommandTimeout)
		avail, err := l.Settings(cmdCtx, m.Type)
		cancel()
		if err != nil {
			log.Warn("failed to get measurement settings", "measure", m.Type.String(), "error", err)
		} else {
			log.Debug("available settings", "measure", m.Type.String(), "settings", fmt.Sprint(avail))
		}

		cmdCtx, cancel = context.WithTimeout(ctx, cfg.CommandTimeout)
		err = l.SetHandler(cmdCtx, pmd.MeasurementHandler{
			Type:     m.Type,
			Settings: m.Settings(),
			Handler:  s.handler(m.Type),
		})
		cancel()
		if err != nil {
			return fmt.Errorf("failed to start %v measurement: %w", m.Type, err)
		}
		started = append(started, m.Type)
		log.Info("started measurement", "measure", m.Type.String())
	}

	if cfg.HeartRate {
		hr, err := heart.NewRateListener(&dev, s.heartRate)
		if err != nil {
			return fmt.Errorf("failed to start heart rate stream: %w", err)
		}
		defer hr.Close()
		log.Info("started heart rate")
	}

	var tick <-chan time.Time
	if cfg.SummaryInterval > 0 {
		t := time.NewTicker(cfg.SummaryInterval)
		defer t.Stop()
		tick = t.C
	}
	for {
		select {
		case <-ctx.Done():
			s.summarize()
			wg.Wait()
			return nil
		case <-tick:
			s.summarize()
		}
	}
}

// session holds the state of a streaming session.
type session struct {
	device string
	log    *slog.Logger

	capture   *sink.JSONLWriter
	publisher *sink.Publisher
	out       chan message

	mu      sync.Mutex
	windows map[string]map[string]*window
	dropped map[string]int
}

type message struct {
	time time.Time
	set  pmd.SampleSet
	rate *heart.Rate
}

// window holds the recent values of a single channel.
type window struct {
	ts   *ring.Buffer[uint64]
	vals *ring.Buffer[float64]
}

func newWindow() *window {
	return &window{
		ts:   ring.NewBuffer[uint64](windowSize),
		vals: ring.NewBuffer[float64](windowSize),
	}
}

func (w *window) write(s channels.Series) {
	w.ts.Write(s.Timestamps...)
	w.vals.Write(s.Values...)
}

func (w *window) series(name string) channels.Series {
	return channels.Series{
		Name:       name,
		Timestamps: w.ts.Values(nil),
		Values:     w.vals.Values(nil),
	}
}

func newSession(device string, log *slog.Logger) *session {
	return &session{
		device:  device,
		log:     log,
		out:     make(chan message, 64),
		windows: make(map[string]map[string]*window),
		dropped: make(map[string]int),
	}
}

// tap captures received data packets.
func (s *session) tap(st *pmd.Stream, packet []byte) {
	err := s.capture.Write(sink.Packet{
		Time:       time.Now(),
		Device:     s.device,
		Measure:    st.Measure,
		SampleRate: st.SampleRate,
		Factor:     st.Factor,
		Data:       packet,
	})
	if err != nil {
		s.log.Warn("failed to capture packet", "measure", st.Measure.String(), "error", err)
	}
}

// handler returns the decoded sample handler for the measurement type m.
func (s *session) handler(m pmd.MeasureType) func(pmd.SampleSet, error) {
	return func(set pmd.SampleSet, err error) {
		now := time.Now()
		if err != nil {
			s.drop(m.String(), err)
			return
		}
		s.record(m.String(), channels.Split(set))
		s.send(message{time: now, set: set})
	}
}

func (s *session) heartRate(t time.Time, r heart.Rate, err error) {
	if err != nil {
		s.drop("HR", err)
		return
	}
	ts := uint64(t.UnixNano())
	hr := channels.Series{Name: "hr"}
	hr.Append(ts, float64(r.HR))
	series := []channels.Series{hr}
	if len(r.RR) != 0 {
		rr := channels.Series{Name: "rr"}
		for _, d := range r.RR {
			rr.Append(ts, float64(d.Milliseconds()))
		}
		series = append(series, rr)
	}
	s.record("HR", series)
	s.send(message{time: t, rate: &r})
}

func (s *session) drop(measure string, err error) {
	s.mu.Lock()
	s.dropped[measure]++
	s.mu.Unlock()
	var derr *pmd.DecodeError
	if errors.As(err, &derr) {
		s.log.Debug("dropped packet", "measure", measure, "kind", derr.Kind.String(), "error", err)
		return
	}
	s.log.Debug("dropped measurement", "measure", measure, "error", err)
}

func (s *session) record(measure string, series []channels.Series) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chans, ok := s.windows[measure]
	if !ok {
		chans = make(map[string]*window)
		s.windows[measure] = chans
	}
	for _, c := range series {
		w, ok := chans[c.Name]
		if !ok {
			w = newWindow()
			chans[c.Name] = w
		}
		w.write(c)
	}
}

func (s *session) send(msg message) {
	if s.publisher == nil {
		return
	}
	select {
	case s.out <- msg:
	default:
		s.log.Warn("publish queue full, dropping samples")
	}
}

// publish publishes queued messages until ctx is cancelled.
func (s *session) publish(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.out:
			var err error
			if msg.rate != nil {
				err = s.publisher.PublishRate(s.device, msg.time, *msg.rate)
			} else {
				err = s.publisher.Publish(s.device, msg.time, msg.set)
			}
			if err != nil {
				s.log.Warn("failed to publish", "error", err)
			}
		}
	}
}

// summarize logs summaries of the recent values of each channel.
func (s *session) summarize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range slices.Sorted(maps.Keys(s.windows)) {
		chans := s.windows[m]
		for _, name := range slices.Sorted(maps.Keys(chans)) {
			sum := channels.Summarize(chans[name].series(name))
			s.log.Info("summary",
				"measure", m,
				"channel", name,
				"n", sum.N,
				"mean", sum.Mean,
				"sd", sum.StdDev,
				"min", sum.Min,
				"max", sum.Max,
				"rate", sum.Rate,
				"peak", sum.Peak,
			)
		}
	}
	for _, m := range slices.Sorted(maps.Keys(s.dropped)) {
		s.log.Warn("dropped", "measure", m, "count", s.dropped[m])
	}
}
