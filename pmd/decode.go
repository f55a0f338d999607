// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

// Frame is a single PMD data frame with its decoding context.
type Frame struct {
	// Type is the frame type of the content.
	Type FrameType
	// Compressed indicates the content is delta
	// compressed.
	Compressed bool

	// SampleRate is the stream sample rate in Hz, or
	// zero if it is not known.
	SampleRate uint32
	// Factor is the conversion factor applied to
	// decoded samples. A zero Factor is treated as 1.
	Factor float32

	// Timestamp is the time of the last sample in the
	// frame, in nanoseconds since 2000-01-01T00:00:00Z.
	Timestamp uint64
	// PreviousTimestamp is the Timestamp of the preceding
	// frame of the stream, or zero if there is none.
	PreviousTimestamp uint64

	// Content is the frame payload following the
	// data packet header.
	Content []byte
}

func (f Frame) factor() float32 {
	if f.Factor == 0 {
		return 1
	}
	return f.Factor
}

// SampleSet is the set of decoded samples for a frame. The concrete
// type of a SampleSet is determined by the measurement type of the frame.
type SampleSet interface {
	// Measure returns the measurement type of the samples.
	Measure() MeasureType
	// Len returns the number of samples in the set.
	Len() int

	sampleSet()
}

type variant struct {
	measure    MeasureType
	frame      FrameType
	compressed bool
}

const (
	raw        = false
	compressed = true
)

// decoders is the complete set of supported frame variants.
var decoders = map[variant]func(Frame) (SampleSet, error){
	{AccType, FrameType0, raw}:        decodeAccRaw,
	{AccType, FrameType1, raw}:        decodeAccRaw,
	{AccType, FrameType2, raw}:        decodeAccRaw,
	{AccType, FrameType0, compressed}: decodeAccCompressed,
	{AccType, FrameType1, compressed}: decodeAccCompressed,

	{GyroType, FrameType0, compressed}: decodeGyroCompressed,
	{GyroType, FrameType1, compressed}: decodeGyroCompressed,

	{MagnetometerType, FrameType0, compressed}: decodeMagCompressed,
	{MagnetometerType, FrameType1, compressed}: decodeMagCompressed,

	{ECGType, FrameType0, raw}: decodeECGRaw,
	{ECGType, FrameType1, raw}: decodeECGRaw,
	{ECGType, FrameType2, raw}: decodeECGRaw,
	{ECGType, FrameType3, raw}: decodeECGRaw,

	{PPGType, FrameType0, raw}:         decodePPGChannelsRaw,
	{PPGType, FrameType4, raw}:         decodePPGGains,
	{PPGType, FrameType5, raw}:         decodePPGOperationMode,
	{PPGType, FrameType6, raw}:         decodePPGSportID,
	{PPGType, FrameType9, raw}:         decodePPGGains,
	{PPGType, FrameType0, compressed}:  decodePPGCompressed,
	{PPGType, FrameType7, compressed}:  decodePPGCompressed,
	{PPGType, FrameType8, compressed}:  decodePPGCompressed,
	{PPGType, FrameType10, compressed}: decodePPGCompressed,

	{PPIType, FrameType0, raw}: decodePPI,

	{PressureType, FrameType0, raw}:        decodePressure,
	{PressureType, FrameType0, compressed}: decodePressure,

	{TemperatureType, FrameType0, raw}:        decodeTemperature,
	{TemperatureType, FrameType0, compressed}: decodeTemperature,

	{SkinTemperatureType, FrameType0, raw}:        decodeSkinTemperature,
	{SkinTemperatureType, FrameType0, compressed}: decodeSkinTemperature,

	{LocationType, FrameType0, raw}: decodeLocationCoordinates,
	{LocationType, FrameType1, raw}: decodeLocationDilution,
	{LocationType, FrameType2, raw}: decodeLocationSatellites,
	{LocationType, FrameType3, raw}: decodeLocationNMEA,

	{OfflineHRType, FrameType0, raw}: decodeOfflineHR,
	{OfflineHRType, FrameType1, raw}: decodeOfflineHR,
}

// Supported returns whether frames of the measurement type m with frame
// type t and the given compression can be decoded.
func Supported(m MeasureType, t FrameType, isCompressed bool) bool {
	_, ok := decoders[variant{m, t, isCompressed}]
	return ok
}

// Decode decodes the frame f holding data for the measurement type m.
// Decode does not retain f.Content.
//
// Errors returned by Decode are of type *DecodeError.
func Decode(f Frame, m MeasureType) (SampleSet, error) {
	dec, ok := decoders[variant{m, f.Type, f.Compressed}]
	if !ok {
		return nil, &DecodeError{
			Kind:       UnsupportedFrameVariant,
			Measure:    m,
			Frame:      f.Type,
			Compressed: f.Compressed,
		}
	}
	s, err := dec(f)
	if err != nil {
		return nil, withVariant(err, m, f)
	}
	return s, nil
}

// strided returns the number of stride sized samples in content.
func strided(content []byte, stride int) (int, error) {
	if len(content)%stride != 0 {
		return 0, malformed("content length %d not a multiple of %d", len(content), stride)
	}
	return len(content) / stride, nil
}

// decompressed returns the delta decompressed samples of f, checking
// that each sample holds the expected number of channels.
func decompressed(f Frame, channels, refBits int, enc FieldEncoding) ([][]int64, error) {
	samples, err := Decompress(f.Content, channels, refBits, enc)
	if err != nil {
		return nil, err
	}
	for i, s := range samples {
		if len(s) != channels {
			return nil, malformed("sample %d has %d channels, expected %d", i, len(s), channels)
		}
	}
	return samples, nil
}
