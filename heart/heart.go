// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package heart implements handling of the standard 180d Bluetooth
// heart rate service notifications.
package heart

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/kortschak/polarsdk/internal/forkbeard"
)

const (
	RateServiceID     = "180d"
	RateMeasurementID = "2a37"
)

var (
	hrService     = must(bluetooth.ParseUUID(RateServiceID))
	hrMeasurement = must(bluetooth.ParseUUID(RateMeasurementID))
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

var (
	// ErrNoContact is returned for measurements made while the
	// sensor reports that it is not in contact with the skin.
	ErrNoContact = errors.New("no sensor contact")
	// ErrShortMeasurement is returned for notifications too
	// short to hold the fields indicated by their flags.
	ErrShortMeasurement = errors.New("short heart rate measurement")
)

// RateListener implements handling of heart rate notifications.
type RateListener struct {
	char bluetooth.DeviceCharacteristic
}

// NewRateListener returns a new RateListener for the provided Bluetooth
// device. The h function is called with received heart rate notifications
// and the time they were received.
func NewRateListener(dev *bluetooth.Device, h func(time.Time, Rate, error)) (*RateListener, error) {
	chars, err := forkbeard.Characteristics(dev, hrService, hrMeasurement)
	if err != nil {
		return nil, fmt.Errorf("failed to get heart rate device characteristic: %w", err)
	}
	char := chars[0]
	err = char.EnableNotifications(func(buf []byte) {
		now := time.Now()
		var m Rate
		err := m.UnmarshalBinary(buf)
		h(now, m, err)
	})
	if err != nil {
		return nil, err
	}
	return &RateListener{char: char}, nil
}

// Close disables heart rate notifications from the connected sensor.
func (l *RateListener) Close() error { return l.char.EnableNotifications(nil) }

// Rate is a heart rate measurement.
type Rate struct {
	HR               uint16 // bpm
	RR               []time.Duration
	Energy           int // kJ, -1 if not present
	EnergyExpended   bool
	Contact          bool
	ContactSupported bool
}

// Measurement flags.
//
//	| 0x10 | 0x8 | 0x4  0x2 | 0x1 |
//	|  rr  | nrg | scs  cnt | fmt |
const (
	flagHR16           = 0x01
	flagContact        = 0x06
	flagContactSupport = 0x04
	flagEnergyExpended = 0x08
	flagRRPresent      = 0x10

	energyExpendedSize = 2
	rrIntervalSize     = 2
	rrScale            = 1024 // intervals per second
)

func (m *Rate) UnmarshalBinary(data []byte) error {
	// https://www.bluetooth.com/specifications/specs/heart-rate-service-1-0/
	if len(data) < 2 {
		return ErrShortMeasurement
	}
	flags := data[0]
	contact := flags&flagContact == flagContact
	contactSupported := flags&flagContactSupport != 0
	if contactSupported && !contact {
		*m = Rate{ContactSupported: true, Energy: -1}
		return ErrNoContact
	}

	b := data[1:]
	var hr uint16
	if flags&flagHR16 != 0 {
		if len(b) < 2 {
			return ErrShortMeasurement
		}
		hr = binary.LittleEndian.Uint16(b)
		b = b[2:]
	} else {
		hr = uint16(b[0])
		b = b[1:]
	}

	energy := -1
	energyExpended := flags&flagEnergyExpended != 0
	if energyExpended {
		if len(b) < energyExpendedSize {
			return ErrShortMeasurement
		}
		energy = int(binary.LittleEndian.Uint16(b))
		b = b[energyExpendedSize:]
	}

	var rr []time.Duration
	if flags&flagRRPresent != 0 {
		if len(b)%rrIntervalSize != 0 {
			return ErrShortMeasurement
		}
		rr = make([]time.Duration, 0, len(b)/rrIntervalSize)
		for ; len(b) != 0; b = b[rrIntervalSize:] {
			rr = append(rr, time.Duration(binary.LittleEndian.Uint16(b))*time.Second/rrScale)
		}
	}

	*m = Rate{
		HR:               hr,
		RR:               rr,
		Energy:           energy,
		EnergyExpended:   energyExpended,
		Contact:          contact,
		ContactSupported: contactSupported,
	}
	return nil
}
