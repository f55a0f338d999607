// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

// OfflineHRSample is a heart rate measurement from an offline recording.
type OfflineHRSample struct {
	Timestamp uint64
	HR        uint8 // bpm

	// Frame type 1.
	PPGQuality  uint8
	CorrectedHR uint8 // bpm
}

// OfflineHRData is a set of offline heart rate measurements.
type OfflineHRData struct {
	FrameType FrameType
	Samples   []OfflineHRSample
}

func (*OfflineHRData) Measure() MeasureType { return OfflineHRType }
func (d *OfflineHRData) Len() int           { return len(d.Samples) }
func (*OfflineHRData) sampleSet()           {}

// decodeOfflineHR decodes type 0 frames of one byte heart rates and
// type 1 frames of heart rate, PPG quality and corrected heart rate.
func decodeOfflineHR(f Frame) (SampleSet, error) {
	stride := 1
	if f.Type == FrameType1 {
		stride = 3
	}
	n, err := strided(f.Content, stride)
	if err != nil {
		return nil, err
	}
	ts, err := frameTimestamps(f, n)
	if err != nil {
		return nil, err
	}
	d := &OfflineHRData{FrameType: f.Type, Samples: make([]OfflineHRSample, n)}
	for i := range d.Samples {
		b := f.Content[i*stride : (i+1)*stride]
		s := OfflineHRSample{Timestamp: ts[i], HR: b[0]}
		if f.Type == FrameType1 {
			s.PPGQuality = b[1]
			s.CorrectedHR = b[2]
		}
		d.Samples[i] = s
	}
	return d, nil
}
