// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The pmdstream command streams Polar Measurement Data from a sensor.
// Received data packets are decoded and summarised, and may be captured
// to a JSON lines file for later decoding with pmddecode and published
// to an MQTT broker.
//
// The command is configured with a TOML file:
//
//	address = "A0:9E:1A:12:34:56"
//	capture = "h10.jsonl"
//	summary_interval = "10s"
//	heart_rate = true
//
//	[log]
//	level = "info"
//	format = "text"
//
//	[mqtt]
//	broker = "tcp://localhost:1883"
//	topic = "polar"
//
//	[[measurement]]
//	type = "ECG"
//	sample_rate = 130
//	resolution = 14
//
//	[[measurement]]
//	type = "Acc"
//	sample_rate = 200
//	resolution = 16
//	range = 8
//
// Flags override the corresponding configuration values.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/kortschak/polarsdk/internal/config"
	"github.com/kortschak/polarsdk/internal/logging"
)

func main() {
	os.Exit(Main())
}

func Main() int {
	cfgPath := flag.String("config", "", "path to TOML configuration file")
	addr := flag.String("addr", "", "sensor bluetooth address")
	capture := flag.String("capture", "", "path of JSONL packet capture file")
	broker := flag.String("mqtt", "", "MQTT broker URL")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}
	if *addr != "" {
		cfg.Address = *addr
	}
	if *capture != "" {
		cfg.Capture = *capture
	}
	if *broker != "" {
		cfg.MQTT.Broker = *broker
	}
	if cfg.Address == "" {
		flag.Usage()
		return 2
	}

	log, err := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel, isTerminal(os.Stderr))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = run(ctx, cfg, log)
	if err != nil {
		log.Error("stream failed", "error", err)
		return 1
	}
	return 0
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// polarElectroOY is the Bluetooth SIG company identifier for Polar.
//
// https://bitbucket.org/bluetooth-SIG/public/src/05be78f4ef6461cce0370663adf778613a1754eb/assigned_numbers/company_identifiers/company_identifiers.yaml#lines-11148:11149
const polarElectroOY = 0x6b

// connect scans for the Polar sensor with the given address and connects
// to it. Scanning stops after timeout or when ctx is cancelled.
func connect(ctx context.Context, adapter *bluetooth.Adapter, addr string, timeout time.Duration, log *slog.Logger) (bluetooth.Device, error) {
	var macAddr bluetooth.Address
	err := macAddr.UnmarshalText([]byte(addr))
	if err != nil {
		return bluetooth.Device{}, fmt.Errorf("invalid sensor address %q: %w", addr, err)
	}

	scanTimeout := time.AfterFunc(timeout, func() { adapter.StopScan() })
	defer scanTimeout.Stop()
	stopScan := context.AfterFunc(ctx, func() { adapter.StopScan() })
	defer stopScan()

	log.Info("scanning", "addr", addr)
	var (
		dev     bluetooth.Device
		found   bool
		connErr error
	)
	err = adapter.Scan(func(adapter *bluetooth.Adapter, res bluetooth.ScanResult) {
		if !slices.ContainsFunc(res.ManufacturerData(), func(m bluetooth.ManufacturerDataElement) bool {
			return m.CompanyID == polarElectroOY
		}) {
			return
		}
		if res.Address != macAddr {
			return
		}
		log.Info("found device", "addr", res.Address.String(), "rssi", res.RSSI, "name", res.LocalName())
		dev, connErr = adapter.Connect(res.Address, bluetooth.ConnectionParams{})
		found = true
		adapter.StopScan()
	})
	if err != nil {
		return bluetooth.Device{}, fmt.Errorf("failed to scan: %w", err)
	}
	if !found {
		if ctx.Err() != nil {
			return bluetooth.Device{}, ctx.Err()
		}
		return bluetooth.Device{}, errors.New("sensor not found")
	}
	if connErr != nil {
		return bluetooth.Device{}, fmt.Errorf("failed to connect: %w", connErr)
	}
	return dev, nil
}
