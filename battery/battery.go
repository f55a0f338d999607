// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package battery implements the standard 180f Bluetooth battery service.
//
// See https://www.bluetooth.com/specifications/specs/battery-service/.
package battery

import (
	"errors"
	"fmt"

	"tinygo.org/x/bluetooth"

	"github.com/kortschak/polarsdk/internal/forkbeard"
)

const (
	ServiceID             = "180f"
	LevelCharacteristicID = "2a19"
)

var (
	service             = must(bluetooth.ParseUUID(ServiceID))
	levelCharacteristic = must(bluetooth.ParseUUID(LevelCharacteristicID))
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

var (
	ErrEmptyLevel   = errors.New("battery: empty level")
	ErrInvalidLevel = errors.New("battery: level out of range")
)

// Level returns the battery level percentage of the provided Bluetooth
// device.
func Level(dev *bluetooth.Device) (int, error) {
	char, err := level(dev)
	if err != nil {
		return 0, err
	}
	resp, err := forkbeard.ReadCharacteristic(char)
	if err != nil {
		return 0, fmt.Errorf("failed read battery level: %w", err)
	}
	return ParseLevel(resp)
}

// Monitor reports battery level notifications.
type Monitor struct {
	char bluetooth.DeviceCharacteristic
}

// NewMonitor returns a Monitor that calls h with the battery level each
// time the device notifies a change. Not all devices support level
// notifications.
func NewMonitor(dev *bluetooth.Device, h func(level int, err error)) (*Monitor, error) {
	char, err := level(dev)
	if err != nil {
		return nil, err
	}
	err = char.EnableNotifications(func(buf []byte) {
		h(ParseLevel(buf))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enable battery level notifications: %w", err)
	}
	return &Monitor{char: char}, nil
}

// Close stops battery level notifications.
func (m *Monitor) Close() error {
	return m.char.EnableNotifications(nil)
}

func level(dev *bluetooth.Device) (bluetooth.DeviceCharacteristic, error) {
	chars, err := forkbeard.Characteristics(dev, service, levelCharacteristic)
	if err != nil {
		return bluetooth.DeviceCharacteristic{}, fmt.Errorf("failed to get battery level characteristic: %w", err)
	}
	return chars[0], nil
}

// ParseLevel returns the battery level percentage held in a battery level
// characteristic value.
func ParseLevel(b []byte) (int, error) {
	switch {
	case len(b) == 0:
		return 0, ErrEmptyLevel
	case b[0] > 100:
		return 0, fmt.Errorf("%w: %d", ErrInvalidLevel, b[0])
	}
	return int(b[0]), nil
}
