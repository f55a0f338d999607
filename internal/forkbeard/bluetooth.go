// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package forkbeard provides helper functions for interacting with
// Bluetooth devices.
package forkbeard

import (
	"fmt"
	"io"

	"tinygo.org/x/bluetooth"
)

// Characteristics returns the characteristics of a Bluetooth service
// in the order of the requested IDs. It is an error for any requested
// characteristic to be missing.
func Characteristics(dev *bluetooth.Device, srvID bluetooth.UUID, charIDs ...bluetooth.UUID) ([]bluetooth.DeviceCharacteristic, error) {
	srv, err := dev.DiscoverServices([]bluetooth.UUID{srvID})
	if err != nil {
		return nil, fmt.Errorf("failed to discover service %s: %w", srvID, err)
	}
	if len(srv) == 0 {
		return nil, fmt.Errorf("service %s not found", srvID)
	}
	found, err := srv[0].DiscoverCharacteristics(charIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to discover characteristics of %s: %w", srvID, err)
	}
	chars := make([]bluetooth.DeviceCharacteristic, len(charIDs))
	for i, id := range charIDs {
		idx := -1
		for j, c := range found {
			if c.UUID() == id {
				idx = j
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("characteristic %s not found in service %s", id, srvID)
		}
		chars[i] = found[idx]
	}
	return chars, nil
}

// ReadCharacteristic reads data from a Bluetooth characteristic.
func ReadCharacteristic(char bluetooth.DeviceCharacteristic) ([]byte, error) {
	mtu, err := char.GetMTU()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain mtu of characteristic: %w", err)
	}
	buf := make([]byte, mtu)
	n, err := char.Read(buf)
	if err != nil && err != io.EOF {
		return buf[:n], fmt.Errorf("failed to read response from characteristic: %w", err)
	}
	return buf[:n], nil
}
