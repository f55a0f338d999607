// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

// PressureSample is a barometric pressure measurement.
type PressureSample struct {
	Timestamp uint64
	Pressure  float32 // bar
}

// PressureData is a set of barometric pressure measurements.
type PressureData struct {
	Samples []PressureSample
}

func (*PressureData) Measure() MeasureType { return PressureType }
func (d *PressureData) Len() int           { return len(d.Samples) }
func (*PressureData) sampleSet()           {}

func decodePressure(f Frame) (SampleSet, error) {
	ts, vals, err := decodeScalarFloats(f)
	if err != nil {
		return nil, err
	}
	d := &PressureData{Samples: make([]PressureSample, len(vals))}
	for i, v := range vals {
		d.Samples[i] = PressureSample{Timestamp: ts[i], Pressure: v}
	}
	return d, nil
}

// decodeScalarFloats decodes single channel IEEE-754 float frames
// shared by the pressure and temperature measurement types.
//
// Raw frames hold 4-byte floats scaled by the conversion factor.
// Compressed frames hold 32-bit float references; when a conversion
// factor is set the decompressed values are treated as integers and
// scaled, otherwise they are the float bit patterns.
func decodeScalarFloats(f Frame) ([]uint64, []float32, error) {
	factor := f.factor()
	var vals []float32
	if f.Compressed {
		samples, err := decompressed(f, 1, 32, Float)
		if err != nil {
			return nil, nil, err
		}
		vals = make([]float32, len(samples))
		for i, s := range samples {
			if factor != 1 {
				vals[i] = scaleFloat(s[0], factor)
			} else {
				vals[i] = floatBits(s[0])
			}
		}
	} else {
		n, err := strided(f.Content, float32Size)
		if err != nil {
			return nil, nil, err
		}
		vals = make([]float32, n)
		for i := range vals {
			vals[i] = leFloat32(f.Content[i*float32Size:]) * factor
		}
	}
	ts, err := frameTimestamps(f, len(vals))
	if err != nil {
		return nil, nil, err
	}
	return ts, vals, nil
}
