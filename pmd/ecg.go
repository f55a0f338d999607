// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import "time"

const (
	ECGSampleFreq     = 130 // Hz
	ECGSampleInterval = time.Second / ECGSampleFreq

	ECGResolution = 14 // bits
)

// ECG frame layout.
const (
	ECGSamplingStride     = 3
	ECGDualSamplingStride = 7

	ecgType1ValueBits     = 14
	ecgType1UnusedBits    = 2
	ecgType1ContactBits   = 2
	ecgType1ImpedanceBits = 2
	ecgType2ValueBits     = 18
	ecgType2TagBits       = 3
	ecgType3StatusOffset  = 2 * int24Size
)

// ECGHandler implements the Handler interface for ECG data.
// The function is called with the decoded samples of each
// notification.
type ECGHandler func(*ECGData, error)

func (h ECGHandler) Handle() (Command, MeasureType, []Setting, func(SampleSet, error)) {
	if h == nil {
		return MeasureStop, ECGType, nil, nil
	}
	return MeasureStart, ECGType, []Setting{
		Uint16{Type: SampleRateSetting, Val: []uint16{ECGSampleFreq}},
		Uint16{Type: ResolutionSetting, Val: []uint16{ECGResolution}},
	}, typed((func(*ECGData, error))(h))
}

// ECGSample is an ECG measurement. Fields other than Timestamp and
// MicroVolts are only set for the frame types that carry them.
type ECGSample struct {
	Timestamp  uint64
	MicroVolts int32 // µV

	// Frame type 1.
	Oversampling     bool
	SkinContact      uint8
	ContactImpedance uint8

	// Frame type 2.
	DataTag uint8
	PaceTag uint8

	// Frame type 3. MicroVolts holds the first lead.
	Lead2  int32 // µV
	Status uint8
}

// ECGData is a set of ECG measurements.
type ECGData struct {
	FrameType FrameType
	Samples   []ECGSample
}

func (*ECGData) Measure() MeasureType { return ECGType }
func (d *ECGData) Len() int           { return len(d.Samples) }
func (*ECGData) sampleSet()           {}

// Trace returns the µV values of the samples.
func (d *ECGData) Trace() []int32 {
	trace := make([]int32, len(d.Samples))
	for i, s := range d.Samples {
		trace[i] = s.MicroVolts
	}
	return trace
}

func decodeECGRaw(f Frame) (SampleSet, error) {
	stride := ECGSamplingStride
	if f.Type == FrameType3 {
		stride = ECGDualSamplingStride
	}
	n, err := strided(f.Content, stride)
	if err != nil {
		return nil, err
	}
	ts, err := frameTimestamps(f, n)
	if err != nil {
		return nil, err
	}
	d := &ECGData{FrameType: f.Type, Samples: make([]ECGSample, n)}
	for i := range d.Samples {
		b := f.Content[i*stride : (i+1)*stride]
		s := ECGSample{Timestamp: ts[i]}
		switch f.Type {
		case FrameType0:
			s.MicroVolts = leInt24(b)
		case FrameType1:
			// | 0-13 µV | 14-15 unused | 16 oversampling | 17-18 contact | 19-20 impedance |
			r := newBitReader(b)
			s.MicroVolts = int32(r.int(ecgType1ValueBits))
			r.skip(ecgType1UnusedBits)
			s.Oversampling = r.bool()
			s.SkinContact = uint8(r.uint(ecgType1ContactBits))
			s.ContactImpedance = uint8(r.uint(ecgType1ImpedanceBits))
		case FrameType2:
			// | 0-17 µV | 18-20 data tag | 21-23 pace tag |
			r := newBitReader(b)
			s.MicroVolts = int32(r.int(ecgType2ValueBits))
			s.DataTag = uint8(r.uint(ecgType2TagBits))
			s.PaceTag = uint8(r.uint(ecgType2TagBits))
		case FrameType3:
			s.MicroVolts = leInt24(b)
			s.Lead2 = leInt24(b[int24Size:])
			s.Status = b[ecgType3StatusOffset]
		}
		d.Samples[i] = s
	}
	return d, nil
}
