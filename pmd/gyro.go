// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import "math"

// GyroSample is an angular velocity measurement.
type GyroSample struct {
	Timestamp uint64
	X, Y, Z   float32 // deg/s
}

// GyroData is a set of angular velocity measurements.
type GyroData struct {
	Samples []GyroSample
}

func (*GyroData) Measure() MeasureType { return GyroType }
func (d *GyroData) Len() int           { return len(d.Samples) }
func (*GyroData) sampleSet()           {}

// decodeGyroCompressed decodes delta compressed gyroscope frames. Type 0
// frames hold 16-bit integer references. Type 1 frames hold IEEE-754
// float references which are used directly unless a conversion factor
// is set.
func decodeGyroCompressed(f Frame) (SampleSet, error) {
	var (
		samples [][]int64
		err     error
	)
	switch f.Type {
	case FrameType0:
		samples, err = decompressed(f, 3, 16, SignedInt)
	case FrameType1:
		samples, err = decompressed(f, 3, 32, Float)
	}
	if err != nil {
		return nil, err
	}
	ts, err := frameTimestamps(f, len(samples))
	if err != nil {
		return nil, err
	}
	conv := func(v int64) float32 { return scaleFloat(v, f.factor()) }
	if f.Type == FrameType1 && f.factor() == 1 {
		conv = floatBits
	}
	d := &GyroData{Samples: make([]GyroSample, len(samples))}
	for i, s := range samples {
		d.Samples[i] = GyroSample{
			Timestamp: ts[i],
			X:         conv(s[0]),
			Y:         conv(s[1]),
			Z:         conv(s[2]),
		}
	}
	return d, nil
}

// floatBits returns the float32 with the IEEE-754 bit pattern held in
// the low 32 bits of v.
func floatBits(v int64) float32 { return math.Float32frombits(uint32(v)) }
