// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import (
	"encoding/binary"
	"time"
)

// PPI frame layout.
//
//	| 0 hr | 1-2 pp interval | 3-4 error estimate | 5 flags |
const (
	PPISamplingStride = 6

	ppiHROffset       = 0
	ppiIntervalOffset = 1
	ppiErrorOffset    = 3
	ppiFlagsOffset    = 5
)

// PPISample is a peak-to-peak interval measurement.
type PPISample struct {
	Timestamp uint64

	HR            uint8  // bpm
	PPInterval    uint16 // ms
	ErrorEstimate uint16 // ms

	Blocker              bool
	SkinContact          bool
	SkinContactSupported bool
}

// Interval returns the peak-to-peak interval as a time.Duration.
func (s PPISample) Interval() time.Duration {
	return time.Duration(s.PPInterval) * time.Millisecond
}

// PPIData is a set of peak-to-peak interval measurements.
type PPIData struct {
	Samples []PPISample
}

func (*PPIData) Measure() MeasureType { return PPIType }
func (d *PPIData) Len() int           { return len(d.Samples) }
func (*PPIData) sampleSet()           {}

// decodePPI decodes type 0 PPI frames. PPI samples are not taken at a
// fixed rate, so the last sample takes the frame timestamp and each
// earlier sample precedes its successor by the successor's interval.
func decodePPI(f Frame) (SampleSet, error) {
	n, err := strided(f.Content, PPISamplingStride)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, &DecodeError{Kind: SampleCountMissing}
	}
	d := &PPIData{Samples: make([]PPISample, n)}
	for i := range d.Samples {
		b := f.Content[i*PPISamplingStride : (i+1)*PPISamplingStride]
		flags := newBitReader(b[ppiFlagsOffset:])
		d.Samples[i] = PPISample{
			HR:                   b[ppiHROffset],
			PPInterval:           binary.LittleEndian.Uint16(b[ppiIntervalOffset:]),
			ErrorEstimate:        binary.LittleEndian.Uint16(b[ppiErrorOffset:]),
			Blocker:              flags.bool(),
			SkinContact:          flags.bool(),
			SkinContactSupported: flags.bool(),
		}
	}
	ts := f.Timestamp
	for i := n - 1; i >= 0; i-- {
		d.Samples[i].Timestamp = ts
		if i == 0 {
			break
		}
		step := uint64(d.Samples[i].Interval())
		if step >= ts {
			return nil, &DecodeError{Kind: NegativeTimestamp, Msg: "interval sum precedes epoch"}
		}
		ts -= step
	}
	return d, nil
}
