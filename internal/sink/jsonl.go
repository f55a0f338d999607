// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sink provides destinations for received PMD data packets and
// decoded sample sets.
package sink

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/kortschak/polarsdk/pmd"
)

// Packet is a captured PMD data packet with the stream parameters
// required to decode it.
type Packet struct {
	// Time is the wall time the packet was received.
	Time time.Time
	// Device is the address of the sensor.
	Device string
	// Measure is the measurement type of the stream.
	Measure pmd.MeasureType
	// SampleRate and Factor are the stream parameters
	// in effect when the packet was received.
	SampleRate uint32
	Factor     float32
	// Data is the complete data packet, including the
	// header.
	Data []byte
}

type jsonRecord struct {
	TS         string  `json:"ts"`
	Device     string  `json:"device"`
	Measure    string  `json:"measure"`
	SampleRate uint32  `json:"sample_rate,omitempty"`
	Factor     float32 `json:"factor,omitempty"`
	PayloadHex string  `json:"payload_hex"`
}

// JSONLWriter writes captured packets as JSON lines. It is safe for
// concurrent use.
type JSONLWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONLWriter returns a new JSONLWriter writing to w.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{enc: enc}
}

// Write writes p as a single line.
func (j *JSONLWriter) Write(p Packet) error {
	rec := jsonRecord{
		TS:         p.Time.UTC().Format(time.RFC3339Nano),
		Device:     p.Device,
		Measure:    p.Measure.String(),
		SampleRate: p.SampleRate,
		PayloadHex: hex.EncodeToString(p.Data),
	}
	if p.Factor != 1 {
		rec.Factor = p.Factor
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.enc.Encode(rec)
}

// JSONLReader reads packets written by a JSONLWriter.
type JSONLReader struct {
	dec  *json.Decoder
	line int
}

// NewJSONLReader returns a new JSONLReader reading from r.
func NewJSONLReader(r io.Reader) *JSONLReader {
	return &JSONLReader{dec: json.NewDecoder(r)}
}

// Next returns the next packet in the capture. It returns io.EOF when
// no packets remain.
func (j *JSONLReader) Next() (Packet, error) {
	var rec jsonRecord
	err := j.dec.Decode(&rec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Packet{}, io.EOF
		}
		return Packet{}, fmt.Errorf("record %d: %w", j.line+1, err)
	}
	j.line++
	ts, err := time.Parse(time.RFC3339Nano, rec.TS)
	if err != nil {
		return Packet{}, fmt.Errorf("record %d: invalid time: %w", j.line, err)
	}
	m, err := pmd.ParseMeasureType(rec.Measure)
	if err != nil {
		return Packet{}, fmt.Errorf("record %d: %w", j.line, err)
	}
	data, err := hex.DecodeString(rec.PayloadHex)
	if err != nil {
		return Packet{}, fmt.Errorf("record %d: invalid payload: %w", j.line, err)
	}
	factor := rec.Factor
	if factor == 0 {
		factor = 1
	}
	return Packet{
		Time:       ts,
		Device:     rec.Device,
		Measure:    m,
		SampleRate: rec.SampleRate,
		Factor:     factor,
		Data:       data,
	}, nil
}
