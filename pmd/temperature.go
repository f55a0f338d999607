// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

// TemperatureSample is a temperature measurement.
type TemperatureSample struct {
	Timestamp   uint64
	Temperature float32 // °C
}

// TemperatureData is a set of device temperature measurements.
type TemperatureData struct {
	Samples []TemperatureSample
}

func (*TemperatureData) Measure() MeasureType { return TemperatureType }
func (d *TemperatureData) Len() int           { return len(d.Samples) }
func (*TemperatureData) sampleSet()           {}

// SkinTemperatureData is a set of skin temperature measurements.
type SkinTemperatureData struct {
	Samples []TemperatureSample
}

func (*SkinTemperatureData) Measure() MeasureType { return SkinTemperatureType }
func (d *SkinTemperatureData) Len() int           { return len(d.Samples) }
func (*SkinTemperatureData) sampleSet()           {}

func decodeTemperature(f Frame) (SampleSet, error) {
	s, err := temperatures(f)
	if err != nil {
		return nil, err
	}
	return &TemperatureData{Samples: s}, nil
}

func decodeSkinTemperature(f Frame) (SampleSet, error) {
	s, err := temperatures(f)
	if err != nil {
		return nil, err
	}
	return &SkinTemperatureData{Samples: s}, nil
}

func temperatures(f Frame) ([]TemperatureSample, error) {
	ts, vals, err := decodeScalarFloats(f)
	if err != nil {
		return nil, err
	}
	samples := make([]TemperatureSample, len(vals))
	for i, v := range vals {
		samples[i] = TemperatureSample{Timestamp: ts[i], Temperature: v}
	}
	return samples, nil
}
