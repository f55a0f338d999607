// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import (
	"encoding/binary"
	"time"
)

// Location frame layouts.
const (
	// Type 0.
	locCoordinatesStride = 51
	locLatitudeOffset    = 0
	locLongitudeOffset   = 8
	locDateTimeOffset    = 16
	locDateTimeSize      = 6
	locDistanceOffset    = 22
	locSpeedOffset       = 26
	locCourseOffset      = 42
	locChipSpeedOffset   = 44
	locFixOffset         = 48
	locSpeedFlagOffset   = 49
	locFusionOffset      = 50

	// Type 1.
	locDilutionStride     = 6
	locDilutionOffset     = 0
	locAltitudeOffset     = 2
	locSatellitesOffset   = 4
	locDilutionFixOffset  = 5
	locDilutionResolution = 100

	// Type 2.
	locSatellitesStride = 41
	locSummarySize      = 10
	locSummaries        = 4
	locMaxSNROffset     = locSummaries * locSummarySize
	locSNRResolution    = 100

	// Type 3.
	locNMEAHeaderSize   = 6
	locNMEAPeriodOffset = 0
	locNMEALengthOffset = 4
)

// Packed date-time field widths in bits, least significant first.
const (
	dtMillisBits = 10
	dtSecondBits = 6
	dtMinuteBits = 6
	dtHourBits   = 5
	dtDayBits    = 5
	dtMonthBits  = 4
	dtYearBits   = 12
)

// LocationSample is a GNSS measurement. It is one of LocationCoordinates,
// LocationDilution, LocationSatellites or LocationNMEA.
type LocationSample interface {
	locationSample()
}

// LocationCoordinates is a GNSS position fix.
type LocationCoordinates struct {
	Timestamp uint64

	Latitude  float64 // degrees
	Longitude float64 // degrees
	Time      time.Time

	CumulativeDistance      float32 // m
	Speed                   float32 // km/h
	UsedAccelerationSpeed   float32 // km/h
	CoordinateSpeed         float32 // km/h
	AccelerationSpeedFactor float32
	Course                  float32 // degrees
	GPSChipSpeed            float32 // km/h

	Fix         bool
	SpeedFlag   uint8
	FusionState uint8
}

// LocationDilution is the GNSS dilution of precision and altitude.
type LocationDilution struct {
	Timestamp uint64

	Dilution   float32
	Altitude   int16 // m
	Satellites uint8
	Fix        bool
}

// Constellation is a GNSS satellite constellation.
type Constellation uint8

const (
	GPS Constellation = iota
	GLONASS
	Galileo
	BeiDou
)

// SatelliteSummary is the satellite reception summary for a single
// constellation.
type SatelliteSummary struct {
	Constellation Constellation

	SeenBand1 uint8
	UsedBand1 uint8
	SeenBand2 uint8
	UsedBand2 uint8

	MaxSNRBand1     uint8   // dB-Hz
	MaxSNRBand2     uint8   // dB-Hz
	Top5AvgSNRBand1 float32 // dB-Hz
	Top5AvgSNRBand2 float32 // dB-Hz
}

// LocationSatellites is the satellite reception summary for all
// constellations.
type LocationSatellites struct {
	Timestamp uint64

	Summaries [locSummaries]SatelliteSummary
	MaxSNR    uint8 // dB-Hz
}

// LocationNMEA is an NMEA 0183 sentence.
type LocationNMEA struct {
	Timestamp uint64

	Period  time.Duration
	Message string
}

func (LocationCoordinates) locationSample() {}
func (LocationDilution) locationSample()    {}
func (LocationSatellites) locationSample()  {}
func (LocationNMEA) locationSample()        {}

// LocationData is a set of GNSS measurements.
type LocationData struct {
	FrameType FrameType
	Samples   []LocationSample
}

func (*LocationData) Measure() MeasureType { return LocationType }
func (d *LocationData) Len() int           { return len(d.Samples) }
func (*LocationData) sampleSet()           {}

func decodeLocationCoordinates(f Frame) (SampleSet, error) {
	return decodeLocationStrided(f, locCoordinatesStride, func(ts uint64, b []byte) LocationSample {
		return LocationCoordinates{
			Timestamp:               ts,
			Latitude:                leFloat64(b[locLatitudeOffset:]),
			Longitude:               leFloat64(b[locLongitudeOffset:]),
			Time:                    packedDateTime(b[locDateTimeOffset : locDateTimeOffset+locDateTimeSize]),
			CumulativeDistance:      leFloat32(b[locDistanceOffset:]),
			Speed:                   leFloat32(b[locSpeedOffset:]),
			UsedAccelerationSpeed:   leFloat32(b[locSpeedOffset+float32Size:]),
			CoordinateSpeed:         leFloat32(b[locSpeedOffset+2*float32Size:]),
			AccelerationSpeedFactor: leFloat32(b[locSpeedOffset+3*float32Size:]),
			Course:                  float32(binary.LittleEndian.Uint16(b[locCourseOffset:])) / 100,
			GPSChipSpeed:            leFloat32(b[locChipSpeedOffset:]),
			Fix:                     b[locFixOffset] != 0,
			SpeedFlag:               b[locSpeedFlagOffset],
			FusionState:             b[locFusionOffset],
		}
	})
}

func decodeLocationDilution(f Frame) (SampleSet, error) {
	return decodeLocationStrided(f, locDilutionStride, func(ts uint64, b []byte) LocationSample {
		return LocationDilution{
			Timestamp:  ts,
			Dilution:   float32(binary.LittleEndian.Uint16(b[locDilutionOffset:])) / locDilutionResolution,
			Altitude:   int16(binary.LittleEndian.Uint16(b[locAltitudeOffset:])),
			Satellites: b[locSatellitesOffset],
			Fix:        b[locDilutionFixOffset] != 0,
		}
	})
}

func decodeLocationSatellites(f Frame) (SampleSet, error) {
	return decodeLocationStrided(f, locSatellitesStride, func(ts uint64, b []byte) LocationSample {
		s := LocationSatellites{Timestamp: ts}
		for i := range s.Summaries {
			p := b[i*locSummarySize : (i+1)*locSummarySize]
			s.Summaries[i] = SatelliteSummary{
				Constellation:   Constellation(i),
				SeenBand1:       p[0],
				UsedBand1:       p[1],
				SeenBand2:       p[2],
				UsedBand2:       p[3],
				MaxSNRBand1:     p[4],
				MaxSNRBand2:     p[5],
				Top5AvgSNRBand1: float32(binary.LittleEndian.Uint16(p[6:])) / locSNRResolution,
				Top5AvgSNRBand2: float32(binary.LittleEndian.Uint16(p[8:])) / locSNRResolution,
			}
		}
		s.MaxSNR = b[locMaxSNROffset]
		return s
	})
}

// decodeLocationNMEA decodes type 3 frames. Each record is a 4-byte
// measurement period in milliseconds and a 2-byte message length followed
// by the message.
func decodeLocationNMEA(f Frame) (SampleSet, error) {
	var msgs []LocationNMEA
	for b := f.Content; len(b) != 0; {
		if len(b) < locNMEAHeaderSize {
			return nil, malformed("short nmea header: %d bytes", len(b))
		}
		period := binary.LittleEndian.Uint32(b[locNMEAPeriodOffset:])
		n := int(binary.LittleEndian.Uint16(b[locNMEALengthOffset:]))
		b = b[locNMEAHeaderSize:]
		if len(b) < n {
			return nil, malformed("short nmea message: need %d bytes, have %d", n, len(b))
		}
		msgs = append(msgs, LocationNMEA{
			Period:  time.Duration(period) * time.Millisecond,
			Message: string(b[:n]),
		})
		b = b[n:]
	}
	ts, err := frameTimestamps(f, len(msgs))
	if err != nil {
		return nil, err
	}
	d := &LocationData{FrameType: f.Type, Samples: make([]LocationSample, len(msgs))}
	for i, m := range msgs {
		m.Timestamp = ts[i]
		d.Samples[i] = m
	}
	return d, nil
}

// decodeLocationStrided decodes fixed stride location frames using fn
// to decode each sample.
func decodeLocationStrided(f Frame, stride int, fn func(ts uint64, b []byte) LocationSample) (SampleSet, error) {
	n, err := strided(f.Content, stride)
	if err != nil {
		return nil, err
	}
	ts, err := frameTimestamps(f, n)
	if err != nil {
		return nil, err
	}
	d := &LocationData{FrameType: f.Type, Samples: make([]LocationSample, n)}
	for i := range d.Samples {
		d.Samples[i] = fn(ts[i], f.Content[i*stride:(i+1)*stride])
	}
	return d, nil
}

// packedDateTime decodes a UTC date and time packed least significant
// field first as milliseconds, seconds, minutes, hours, day, month and
// year.
func packedDateTime(b []byte) time.Time {
	r := newBitReader(b)
	ms := int(r.uint(dtMillisBits))
	sec := int(r.uint(dtSecondBits))
	minute := int(r.uint(dtMinuteBits))
	hour := int(r.uint(dtHourBits))
	day := int(r.uint(dtDayBits))
	month := time.Month(r.uint(dtMonthBits))
	year := int(r.uint(dtYearBits))
	return time.Date(year, month, day, hour, minute, sec, ms*int(time.Millisecond), time.UTC)
}
