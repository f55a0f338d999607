// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import "time"

const (
	AccSampleFreq25      AccSampleFreq = 25 // Hz
	AccSampleInterval25                = time.Second / time.Duration(AccSampleFreq25)
	AccSampleFreq50      AccSampleFreq = 50 // Hz
	AccSampleInterval50                = time.Second / time.Duration(AccSampleFreq50)
	AccSampleFreq100     AccSampleFreq = 100 // Hz
	AccSampleInterval100               = time.Second / time.Duration(AccSampleFreq100)
	AccSampleFreq200     AccSampleFreq = 200 // Hz
	AccSampleInterval200               = time.Second / time.Duration(AccSampleFreq200)

	AccRange2G AccRange = 2 // G
	AccRange4G AccRange = 4 // G
	AccRange8G AccRange = 8 // G
)

type AccSampleFreq uint16

type AccRange uint16

// AccHandler implements the Handler interface for accelerometer data.
type AccHandler struct {
	// SampleFreq is the sample frequency to use.
	SampleFreq AccSampleFreq
	// Range is the acceleration resolution to use.
	Range AccRange

	// Handler is called with the decoded samples
	// of each notification.
	Handler func(*AccData, error)
}

func (h AccHandler) Handle() (Command, MeasureType, []Setting, func(SampleSet, error)) {
	if h.Handler == nil {
		return MeasureStop, AccType, nil, nil
	}
	return MeasureStart, AccType, []Setting{
		Uint16{Type: SampleRateSetting, Val: []uint16{uint16(h.SampleFreq)}}, // Hz
		Uint16{Type: ResolutionSetting, Val: []uint16{16}},                   // bits
		Uint16{Type: RangeUnitSetting, Val: []uint16{uint16(h.Range)}},       // G
	}, typed(h.Handler)
}

// AccSample is an acceleration measurement.
type AccSample struct {
	Timestamp uint64
	X, Y, Z   int32 // mG
}

// AccData is a set of acceleration measurements.
type AccData struct {
	Samples []AccSample
}

func (*AccData) Measure() MeasureType { return AccType }
func (d *AccData) Len() int           { return len(d.Samples) }
func (*AccData) sampleSet()           {}

// decodeAccRaw decodes uncompressed frames. Frame types 0, 1 and 2
// hold 8, 16 and 24-bit axis values respectively.
func decodeAccRaw(f Frame) (SampleSet, error) {
	width := int(f.Type) + 1
	stride := 3 * width
	n, err := strided(f.Content, stride)
	if err != nil {
		return nil, err
	}
	ts, err := frameTimestamps(f, n)
	if err != nil {
		return nil, err
	}
	factor := f.factor()
	d := &AccData{Samples: make([]AccSample, n)}
	for i := range d.Samples {
		s := f.Content[i*stride:]
		d.Samples[i] = AccSample{
			Timestamp: ts[i],
			X:         scaleInt(leInt(s[:width]), factor),
			Y:         scaleInt(leInt(s[width:2*width]), factor),
			Z:         scaleInt(leInt(s[2*width:3*width]), factor),
		}
	}
	return d, nil
}

// decodeAccCompressed decodes delta compressed frames. Type 0 samples
// are in G and are converted to mG. Type 1 samples are in mG.
func decodeAccCompressed(f Frame) (SampleSet, error) {
	samples, err := decompressed(f, 3, 16, SignedInt)
	if err != nil {
		return nil, err
	}
	ts, err := frameTimestamps(f, len(samples))
	if err != nil {
		return nil, err
	}
	factor := f.factor()
	if f.Type == FrameType0 {
		factor *= 1000
	}
	d := &AccData{Samples: make([]AccSample, len(samples))}
	for i, s := range samples {
		d.Samples[i] = AccSample{
			Timestamp: ts[i],
			X:         scaleInt(s[0], factor),
			Y:         scaleInt(s[1], factor),
			Z:         scaleInt(s[2], factor),
		}
	}
	return d, nil
}

// scaleInt returns v scaled by factor, truncated toward zero.
func scaleInt(v int64, factor float32) int32 {
	if factor == 1 {
		return int32(v)
	}
	return int32(float32(v) * factor)
}

// scaleFloat returns v scaled by factor.
func scaleFloat(v int64, factor float32) float32 {
	return float32(v) * factor
}

// typed returns a SampleSet handler that calls h with the concrete
// sample set type.
func typed[T SampleSet](h func(T, error)) func(SampleSet, error) {
	return func(s SampleSet, err error) {
		var d T
		if err == nil {
			var ok bool
			d, ok = s.(T)
			if !ok {
				err = &DecodeError{Kind: UnsupportedFrameVariant, Measure: s.Measure()}
			}
		}
		h(d, err)
	}
}
