// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"tinygo.org/x/bluetooth"

	"github.com/kortschak/polarsdk/internal/forkbeard"
)

// Service and characteristic identifiers.
const (
	pmdServiceID      = "fb005c80-02e7-f387-1cad-8acd2d8df0c8"
	pmdControlPointID = "fb005c81-02e7-f387-1cad-8acd2d8df0c8"
	pmdDataID         = "fb005c82-02e7-f387-1cad-8acd2d8df0c8"
)

var (
	pmdService = must(bluetooth.ParseUUID(pmdServiceID))
	pmdCP      = must(bluetooth.ParseUUID(pmdControlPointID))
	pmdData    = must(bluetooth.ParseUUID(pmdDataID))
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// Control point response layout.
const (
	responseCode         = 0xf0
	responseOpOffset     = 1
	responseStatusOffset = 3
	responseParamsOffset = 5
)

// Listener implements PMD notification listening.
type Listener struct {
	dev *bluetooth.Device

	cpDevice, dataDevice bluetooth.DeviceCharacteristic

	features Features

	mu       sync.Mutex
	handlers [measurementTypes]func([]byte)
	tap      func(*Stream, []byte)
}

// NewListener returns a new Listener for the provided Bluetooth device.
func NewListener(dev *bluetooth.Device) (*Listener, error) {
	chars, err := forkbeard.Characteristics(dev, pmdService, pmdCP, pmdData)
	if err != nil {
		return nil, fmt.Errorf("failed to get device pmd characteristics: %w", err)
	}
	cpDevice, dataDevice := chars[0], chars[1]
	// Section 5.1 Figure 1 shows 17 bytes, but this
	// is not otherwise documented and cp does not have
	// an MTU characteristic. The first two bytes are
	// the only relevant data for our use.
	buf, err := forkbeard.ReadCharacteristic(cpDevice)
	if err != nil {
		return nil, fmt.Errorf("failed read device features: %w", err)
	}
	if len(buf) < 2 {
		return nil, fmt.Errorf("device features too short: %#x", buf)
	}
	var feats Features
	copy(feats[:], buf[:2])
	l := &Listener{
		dev:        dev,
		cpDevice:   cpDevice,
		features:   feats,
		dataDevice: dataDevice,
	}
	err = dataDevice.EnableNotifications(l.dispatch)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Listener) dispatch(buf []byte) {
	if len(buf) == 0 || int(buf[sampleTypeOffset]) >= len(l.handlers) {
		return
	}
	l.mu.Lock()
	handle := l.handlers[buf[sampleTypeOffset]]
	l.mu.Unlock()
	if handle != nil {
		handle(buf)
	}
}

// Settings returns the available setting for the recording and measurement type
// of the sensor the Listener is connected to.
func (l *Listener) Settings(ctx context.Context, m MeasureType) ([]Setting, error) {
	resp, err := command(ctx, l.cpDevice, MeasureSettings, Online, m)
	if err != nil {
		return nil, err
	}
	return ParseSettings(resp)
}

// SetHandler sets the notification handler, command, recording type and
// settings with the results of the h.Handle call. Notifications for the
// measurement type are decoded by a Stream configured from the requested
// sample rate and the conversion factor reported by the sensor in its
// start response. Notifications received before the start response are
// dropped.
func (l *Listener) SetHandler(ctx context.Context, h Handler) error {
	com, measureTyp, settings, handle := h.Handle()
	if int(measureTyp) >= len(l.handlers) {
		return fmt.Errorf("invalid measurement type: %d", measureTyp)
	}
	l.setHandler(measureTyp, nil)
	if com != MeasureStart || handle == nil {
		_, err := command(ctx, l.cpDevice, MeasureStop, Online, measureTyp)
		return err
	}
	params, err := command(ctx, l.cpDevice, com, Online, measureTyp, settings...)
	if err != nil {
		return err
	}
	return l.start(measureTyp, settings, params, handle)
}

// start installs the decoding notification handler for m using the
// requested settings and the start response parameters.
func (l *Listener) start(m MeasureType, settings []Setting, params []byte, handle func(SampleSet, error)) error {
	rate, _ := StreamSettings(settings)
	factor := float32(1)
	if len(params) != 0 {
		p, err := ParseSettings(params)
		if err != nil {
			return fmt.Errorf("invalid start response parameters: %w", err)
		}
		_, factor = StreamSettings(p)
	}
	stream := NewStream(m, rate, factor)
	var mu sync.Mutex
	l.setHandler(m, func(buf []byte) {
		l.mu.Lock()
		tap := l.tap
		l.mu.Unlock()
		mu.Lock()
		if tap != nil {
			tap(stream, buf)
		}
		set, err := stream.Decode(buf)
		mu.Unlock()
		handle(set, err)
	})
	return nil
}

// SetTap sets a function to be called with each received data packet
// before it is decoded, and the Stream that will decode it. The tap must
// not retain the packet or modify the Stream.
func (l *Listener) SetTap(tap func(s *Stream, packet []byte)) {
	l.mu.Lock()
	l.tap = tap
	l.mu.Unlock()
}

func (l *Listener) setHandler(m MeasureType, fn func([]byte)) {
	l.mu.Lock()
	l.handlers[m] = fn
	l.mu.Unlock()
}

// Close disables notifications and disconnects the device.
func (l *Listener) Close() error {
	l.dataDevice.EnableNotifications(nil)
	return l.dev.Disconnect()
}

// Features returns the set of features supported by the connected sensor.
func (l *Listener) Features() Features {
	return l.features
}

// Handler defines a PMD notification handler.
type Handler interface {
	// Handle returns the command, measurement types and
	// the settings to configure notifications with. The
	// function is called with the decoded samples for all
	// notifications of the specified measurement type.
	Handle() (Command, MeasureType, []Setting, func(SampleSet, error))
}

// MeasurementHandler implements the Handler interface for any
// measurement type.
type MeasurementHandler struct {
	Type     MeasureType
	Settings []Setting

	// Handler is called with the decoded samples of each
	// notification. A nil Handler stops the measurement.
	Handler func(SampleSet, error)
}

func (h MeasurementHandler) Handle() (Command, MeasureType, []Setting, func(SampleSet, error)) {
	if h.Handler == nil {
		return MeasureStop, h.Type, nil, nil
	}
	return MeasureStart, h.Type, h.Settings, h.Handler
}

// command writes a control point command and returns the parameters of
// the sensor's response.
func command(ctx context.Context, dev bluetooth.DeviceCharacteristic, com Command, rec RecordingType, measure MeasureType, settings ...Setting) ([]byte, error) {
	msg := make([]byte, settingSize(setCommand{})+settingSize(settings...))
	off := 0
	n, err := setCommand{
		Command: com,
		Record:  rec,
		Measure: measure,
	}.write(msg[off:])
	if err != nil {
		return nil, err
	}
	off += n
	for _, w := range settings {
		n, err := w.write(msg[off:])
		if err != nil {
			return nil, err
		}
		off += n
	}
	resp := newResponse()
	dev.EnableNotifications(resp.notify)
	dev.WriteWithoutResponse(msg)
	buf, err := resp.wait(ctx)
	dev.EnableNotifications(nil)
	if err != nil {
		return nil, err
	}
	return checkResponse(buf, com)
}

// response holds the first control point notification received after
// a command is written. Later notifications are ignored.
type response struct {
	once sync.Once
	done chan struct{}
	buf  []byte
}

func newResponse() *response {
	return &response{done: make(chan struct{})}
}

func (r *response) notify(buf []byte) {
	r.once.Do(func() {
		r.buf = bytes.Clone(buf)
		close(r.done)
	})
}

// wait returns the first notification, or the context's error if it is
// cancelled first.
func (r *response) wait(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.done:
		return r.buf, nil
	}
}

// checkResponse validates a control point response to com and returns
// its parameters.
func checkResponse(resp []byte, com Command) ([]byte, error) {
	if len(resp) < responseParamsOffset {
		return nil, fmt.Errorf("short response: %#x", resp)
	}
	if resp[0] != responseCode || Command(resp[responseOpOffset]) != com {
		return nil, fmt.Errorf("invalid response: %#x", resp)
	}
	if resp[responseStatusOffset] != 0 {
		// https://www.bluetooth.com/wp-content/uploads/Files/Specification/HTML/Core-54/out/en/host/attribute-protocol--att-.html#UUID-5a07e398-0e4d-af25-0243-2b45ebfbda5b
		return nil, fmt.Errorf("invalid response: %#x", resp[:responseParamsOffset])
	}
	return resp[responseParamsOffset:], nil
}
