// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

// MagCalibration is the magnetometer calibration status.
type MagCalibration uint8

const (
	MagCalibrationUnknown MagCalibration = iota
	MagCalibrationPoor
	MagCalibrationOK
	MagCalibrationGood
	MagCalibrationNotAvailable MagCalibration = 0xff
)

// MagSample is a magnetic field measurement.
type MagSample struct {
	Timestamp   uint64
	X, Y, Z     float32 // Gauss
	Calibration MagCalibration
}

// MagData is a set of magnetic field measurements.
type MagData struct {
	Samples []MagSample
}

func (*MagData) Measure() MeasureType { return MagnetometerType }
func (d *MagData) Len() int           { return len(d.Samples) }
func (*MagData) sampleSet()           {}

// decodeMagCompressed decodes delta compressed magnetometer frames.
// Type 0 frames hold x, y and z channels in units of the conversion
// factor. Type 1 frames hold x, y and z in milliGauss after scaling and
// a calibration status channel.
func decodeMagCompressed(f Frame) (SampleSet, error) {
	channels := 3
	factor := f.factor()
	if f.Type == FrameType1 {
		channels = 4
		factor /= 1000
	}
	samples, err := decompressed(f, channels, 16, SignedInt)
	if err != nil {
		return nil, err
	}
	ts, err := frameTimestamps(f, len(samples))
	if err != nil {
		return nil, err
	}
	d := &MagData{Samples: make([]MagSample, len(samples))}
	for i, s := range samples {
		cal := MagCalibrationNotAvailable
		if channels == 4 {
			cal = MagCalibration(s[3])
		}
		d.Samples[i] = MagSample{
			Timestamp:   ts[i],
			X:           scaleFloat(s[0], factor),
			Y:           scaleFloat(s[1], factor),
			Z:           scaleFloat(s[2], factor),
			Calibration: cal,
		}
	}
	return d, nil
}
