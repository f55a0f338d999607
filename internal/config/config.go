// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config implements loading of pmdstream TOML configuration files.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kortschak/polarsdk/internal/logging"
	"github.com/kortschak/polarsdk/pmd"
)

// Config is the pmdstream configuration.
type Config struct {
	// Address is the Bluetooth address of the sensor.
	Address string
	// ScanTimeout is the maximum time to scan for
	// the sensor.
	ScanTimeout time.Duration
	// CommandTimeout is the maximum time to wait
	// for a PMD control point response.
	CommandTimeout time.Duration

	// Capture is the path of the JSONL capture file.
	// Packets are not captured if it is empty.
	Capture string
	// SummaryInterval is the interval between logged
	// sample summaries. Summaries are not logged if
	// it is zero.
	SummaryInterval time.Duration
	// HeartRate enables the standard heart rate
	// service stream.
	HeartRate bool

	LogLevel  slog.Level
	LogFormat string

	MQTT MQTT

	Measurements []Measurement
}

// MQTT is the MQTT publisher configuration. Publishing is disabled if
// Broker is empty.
type MQTT struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
}

// Measurement is the configuration of a single online PMD measurement.
// Zero valued settings are not sent to the sensor.
type Measurement struct {
	Type       pmd.MeasureType
	SampleRate uint16 // Hz
	Resolution uint16 // bits
	Range      uint16
	Channels   uint8
}

// Settings returns the PMD start settings for the measurement.
func (m Measurement) Settings() []pmd.Setting {
	var s []pmd.Setting
	for _, u := range []struct {
		typ pmd.SettingType
		val uint16
	}{
		{typ: pmd.SampleRateSetting, val: m.SampleRate},
		{typ: pmd.ResolutionSetting, val: m.Resolution},
		{typ: pmd.RangeUnitSetting, val: m.Range},
	} {
		if u.val != 0 {
			s = append(s, pmd.Uint16{Type: u.typ, Val: []uint16{u.val}})
		}
	}
	if m.Channels != 0 {
		s = append(s, pmd.Uint8{Type: pmd.ChannelsSetting, Val: []uint8{m.Channels}})
	}
	return s
}

// Default returns the default configuration. The default measurement
// is the 130 Hz ECG stream.
func Default() Config {
	return Config{
		ScanTimeout:     30 * time.Second,
		CommandTimeout:  time.Second,
		SummaryInterval: 10 * time.Second,
		LogLevel:        slog.LevelInfo,
		LogFormat:       logging.Text,
		MQTT: MQTT{
			ClientID: "pmdstream",
			Topic:    "polar",
			QoS:      1,
		},
		Measurements: []Measurement{
			{Type: pmd.ECGType, SampleRate: pmd.ECGSampleFreq, Resolution: pmd.ECGResolution},
		},
	}
}

type fileConfig struct {
	Address         string `toml:"address"`
	ScanTimeout     string `toml:"scan_timeout"`
	CommandTimeout  string `toml:"command_timeout"`
	Capture         string `toml:"capture"`
	SummaryInterval string `toml:"summary_interval"`
	HeartRate       bool   `toml:"heart_rate"`

	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`

	MQTT struct {
		Broker   string `toml:"broker"`
		ClientID string `toml:"client_id"`
		Topic    string `toml:"topic"`
		QoS      int    `toml:"qos"`
	} `toml:"mqtt"`

	Measurements []fileMeasurement `toml:"measurement"`
}

type fileMeasurement struct {
	Type       string `toml:"type"`
	SampleRate uint16 `toml:"sample_rate"`
	Resolution uint16 `toml:"resolution"`
	Range      uint16 `toml:"range"`
	Channels   uint8  `toml:"channels"`
}

// Load returns the configuration held in the TOML file at path. Values
// not set in the file take their default.
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return overlay(Default(), raw, meta)
}

// Parse returns the configuration held in the TOML text data. Values
// not set in data take their default.
func Parse(data string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return overlay(Default(), raw, meta)
}

func overlay(cfg Config, raw fileConfig, meta toml.MetaData) (Config, error) {
	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		return Config{}, fmt.Errorf("unknown config keys: %v", undecoded)
	}

	if meta.IsDefined("address") {
		cfg.Address = strings.TrimSpace(raw.Address)
	}
	for _, d := range []struct {
		key string
		val string
		dst *time.Duration
	}{
		{key: "scan_timeout", val: raw.ScanTimeout, dst: &cfg.ScanTimeout},
		{key: "command_timeout", val: raw.CommandTimeout, dst: &cfg.CommandTimeout},
		{key: "summary_interval", val: raw.SummaryInterval, dst: &cfg.SummaryInterval},
	} {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.val))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		if v < 0 {
			return Config{}, fmt.Errorf("invalid %s: %v", d.key, v)
		}
		*d.dst = v
	}
	if meta.IsDefined("capture") {
		cfg.Capture = strings.TrimSpace(raw.Capture)
	}
	if meta.IsDefined("heart_rate") {
		cfg.HeartRate = raw.HeartRate
	}

	if meta.IsDefined("log", "level") {
		l, err := logging.ParseLevel(strings.TrimSpace(raw.Log.Level))
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = l
	}
	if meta.IsDefined("log", "format") {
		cfg.LogFormat = strings.ToLower(strings.TrimSpace(raw.Log.Format))
		switch cfg.LogFormat {
		case logging.Text, logging.JSON:
		default:
			return Config{}, fmt.Errorf("unknown log format: %q", raw.Log.Format)
		}
	}

	if meta.IsDefined("mqtt", "broker") {
		cfg.MQTT.Broker = strings.TrimSpace(raw.MQTT.Broker)
	}
	if meta.IsDefined("mqtt", "client_id") {
		cfg.MQTT.ClientID = strings.TrimSpace(raw.MQTT.ClientID)
	}
	if meta.IsDefined("mqtt", "topic") {
		cfg.MQTT.Topic = strings.Trim(strings.TrimSpace(raw.MQTT.Topic), "/")
	}
	if meta.IsDefined("mqtt", "qos") {
		if raw.MQTT.QoS < 0 || raw.MQTT.QoS > 2 {
			return Config{}, fmt.Errorf("invalid mqtt qos: %d", raw.MQTT.QoS)
		}
		cfg.MQTT.QoS = byte(raw.MQTT.QoS)
	}

	if meta.IsDefined("measurement") {
		cfg.Measurements = make([]Measurement, 0, len(raw.Measurements))
		seen := make(map[pmd.MeasureType]bool)
		for i, m := range raw.Measurements {
			typ, err := pmd.ParseMeasureType(strings.TrimSpace(m.Type))
			if err != nil {
				return Config{}, fmt.Errorf("measurement %d: %w", i, err)
			}
			if seen[typ] {
				return Config{}, fmt.Errorf("measurement %d: duplicate %v measurement", i, typ)
			}
			seen[typ] = true
			cfg.Measurements = append(cfg.Measurements, Measurement{
				Type:       typ,
				SampleRate: m.SampleRate,
				Resolution: m.Resolution,
				Range:      m.Range,
				Channels:   m.Channels,
			})
		}
	}
	return cfg, nil
}
