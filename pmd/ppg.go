// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import "encoding/binary"

// PPG frame layout.
const (
	ppgChannelStride  = 4 * int24Size
	ppgGainChannels   = 12
	ppgGainStride     = 3 * ppgGainChannels
	ppgGainMask       = 0x07
	ppgNibbleStride   = ppgGainChannels + ppgGainChannels/2
	ppgOperationSize  = 4
	ppgSportIDSize    = 8
	ppgStatusMask     = 1<<24 - 1
	ppgType9GainWidth = 4
)

// ppgLayouts holds the compressed PPG frame layouts.
var ppgLayouts = map[FrameType]struct {
	channels int // including ambient or status
	bits     int
	status   bool // last channel is status rather than ambient
}{
	FrameType0:  {channels: 4, bits: 22},
	FrameType7:  {channels: 17, bits: 24, status: true},
	FrameType8:  {channels: 25, bits: 24, status: true},
	FrameType10: {channels: 21, bits: 24, status: true},
}

// PPGSample is a PPG measurement. It is one of PPGChannels, PPGGains,
// PPGOperationMode or PPGSportID.
type PPGSample interface {
	ppgSample()
}

// PPGChannels is a multi-channel photoplethysmography measurement.
type PPGChannels struct {
	Timestamp uint64
	PPG       []int32

	// Ambient is set for type 0 frames.
	Ambient int32
	// Status is set for compressed type 7, 8
	// and 10 frames.
	Status uint32
}

// PPGGains is the PPG sensor integration time and gain state.
type PPGGains struct {
	Timestamp        uint64
	IntegrationTimes []uint8
	Channel1Gains    []uint8
	Channel2Gains    []uint8 // nil for type 9 frames
}

// PPGOperationMode is the PPG sensor operation mode. It applies to the
// entire frame.
type PPGOperationMode struct {
	Timestamp uint64
	Mode      uint32
}

// PPGSportID is the sport being recorded. It applies to the entire frame.
type PPGSportID struct {
	Timestamp uint64
	SportID   uint64
}

func (PPGChannels) ppgSample()      {}
func (PPGGains) ppgSample()         {}
func (PPGOperationMode) ppgSample() {}
func (PPGSportID) ppgSample()       {}

// PPGData is a set of PPG measurements.
type PPGData struct {
	FrameType FrameType
	Samples   []PPGSample
}

func (*PPGData) Measure() MeasureType { return PPGType }
func (d *PPGData) Len() int           { return len(d.Samples) }
func (*PPGData) sampleSet()           {}

// decodePPGChannelsRaw decodes type 0 frames of three 24-bit PPG
// channels and an ambient channel.
func decodePPGChannelsRaw(f Frame) (SampleSet, error) {
	n, err := strided(f.Content, ppgChannelStride)
	if err != nil {
		return nil, err
	}
	ts, err := frameTimestamps(f, n)
	if err != nil {
		return nil, err
	}
	factor := f.factor()
	d := &PPGData{FrameType: f.Type, Samples: make([]PPGSample, n)}
	for i := range d.Samples {
		b := f.Content[i*ppgChannelStride:]
		ppg := make([]int32, 3)
		for c := range ppg {
			ppg[c] = scaleInt(int64(leInt24(b[c*int24Size:])), factor)
		}
		d.Samples[i] = PPGChannels{
			Timestamp: ts[i],
			PPG:       ppg,
			Ambient:   scaleInt(int64(leInt24(b[3*int24Size:])), factor),
		}
	}
	return d, nil
}

// decodePPGCompressed decodes delta compressed PPG frames.
func decodePPGCompressed(f Frame) (SampleSet, error) {
	l := ppgLayouts[f.Type]
	samples, err := decompressed(f, l.channels, l.bits, SignedInt)
	if err != nil {
		return nil, err
	}
	ts, err := frameTimestamps(f, len(samples))
	if err != nil {
		return nil, err
	}
	factor := f.factor()
	d := &PPGData{FrameType: f.Type, Samples: make([]PPGSample, len(samples))}
	for i, s := range samples {
		ppg := make([]int32, l.channels-1)
		for c := range ppg {
			ppg[c] = scaleInt(s[c], factor)
		}
		p := PPGChannels{Timestamp: ts[i], PPG: ppg}
		last := s[l.channels-1]
		if l.status {
			p.Status = uint32(last) & ppgStatusMask
		} else {
			p.Ambient = scaleInt(last, factor)
		}
		d.Samples[i] = p
	}
	return d, nil
}

// decodePPGGains decodes type 4 and type 9 frames.
//
// Type 4 frames hold twelve integration times, twelve channel 1 gains
// and twelve channel 2 gains, one byte each with gains in the low three
// bits. Type 9 frames hold twelve integration times and twelve 4-bit
// gains packed low nibble first.
func decodePPGGains(f Frame) (SampleSet, error) {
	stride := ppgGainStride
	if f.Type == FrameType9 {
		stride = ppgNibbleStride
	}
	n, err := strided(f.Content, stride)
	if err != nil {
		return nil, err
	}
	ts, err := frameTimestamps(f, n)
	if err != nil {
		return nil, err
	}
	d := &PPGData{FrameType: f.Type, Samples: make([]PPGSample, n)}
	for i := range d.Samples {
		b := f.Content[i*stride : (i+1)*stride]
		g := PPGGains{
			Timestamp:        ts[i],
			IntegrationTimes: append([]uint8(nil), b[:ppgGainChannels]...),
			Channel1Gains:    make([]uint8, ppgGainChannels),
		}
		switch f.Type {
		case FrameType4:
			g.Channel2Gains = make([]uint8, ppgGainChannels)
			for c := range ppgGainChannels {
				g.Channel1Gains[c] = b[ppgGainChannels+c] & ppgGainMask
				g.Channel2Gains[c] = b[2*ppgGainChannels+c] & ppgGainMask
			}
		case FrameType9:
			r := newBitReader(b[ppgGainChannels:])
			for c := range g.Channel1Gains {
				g.Channel1Gains[c] = uint8(r.uint(ppgType9GainWidth))
			}
		}
		d.Samples[i] = g
	}
	return d, nil
}

// decodePPGOperationMode decodes type 5 frames. The mode applies to the
// whole frame and takes the frame timestamp.
func decodePPGOperationMode(f Frame) (SampleSet, error) {
	if len(f.Content) != ppgOperationSize {
		return nil, malformed("invalid operation mode length: %d", len(f.Content))
	}
	return &PPGData{FrameType: f.Type, Samples: []PPGSample{
		PPGOperationMode{
			Timestamp: f.Timestamp,
			Mode:      binary.LittleEndian.Uint32(f.Content),
		},
	}}, nil
}

// decodePPGSportID decodes type 6 frames. The sport ID applies to the
// whole frame and takes the frame timestamp.
func decodePPGSportID(f Frame) (SampleSet, error) {
	if len(f.Content) != ppgSportIDSize {
		return nil, malformed("invalid sport id length: %d", len(f.Content))
	}
	return &PPGData{FrameType: f.Type, Samples: []PPGSample{
		PPGSportID{
			Timestamp: f.Timestamp,
			SportID:   binary.LittleEndian.Uint64(f.Content),
		},
	}}, nil
}
