// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import (
	"errors"
	"fmt"
)

// Stream decodes consecutive data packets of a single measurement
// stream, interpolating sample timestamps from the timestamp of the
// previously decoded packet.
//
// Packets must be provided in the order they were received. A Stream
// must not be used concurrently.
type Stream struct {
	// Measure is the measurement type of the stream.
	Measure MeasureType
	// SampleRate is the stream sample rate in Hz.
	// It is only used for the first packet of the
	// stream, or the first after a Reset. If it is
	// zero, that packet is dropped.
	SampleRate uint32
	// Factor is the conversion factor for the
	// stream.
	Factor float32

	prev uint64
}

// NewStream returns a Stream for the measurement type m with the provided
// sample rate and conversion factor.
func NewStream(m MeasureType, sampleRate uint32, factor float32) *Stream {
	return &Stream{Measure: m, SampleRate: sampleRate, Factor: factor}
}

// Decode decodes a single PMD data packet. If the packet can not be
// decoded, the packet should be dropped and the stream state is not
// changed, except that a stream without a sample rate takes the
// timestamp of its untimed first packet as the start of interpolation
// for the next.
func (s *Stream) Decode(packet []byte) (SampleSet, error) {
	var h Header
	err := h.UnmarshalBinary(packet)
	if err != nil {
		return nil, err
	}
	if h.Measure != s.Measure {
		return nil, malformed("packet measurement type %v does not match stream %v", h.Measure, s.Measure)
	}
	set, err := Decode(Frame{
		Type:              h.Frame,
		Compressed:        h.Compressed,
		SampleRate:        s.SampleRate,
		Factor:            s.Factor,
		Timestamp:         h.Timestamp,
		PreviousTimestamp: s.prev,
		Content:           packet[dataOffset:],
	}, s.Measure)
	if err != nil {
		if errors.Is(err, ErrTimestampUnavailable) {
			s.prev = h.Timestamp
		}
		return nil, err
	}
	s.prev = h.Timestamp
	return set, nil
}

// Previous returns the timestamp interpolation of the next packet starts
// from, or zero if there is none.
func (s *Stream) Previous() uint64 { return s.prev }

// Reset clears the previous timestamp so that the next packet is
// timed using the stream sample rate.
func (s *Stream) Reset() { s.prev = 0 }

func (s *Stream) String() string {
	return fmt.Sprintf("%v stream (%d Hz, factor %g)", s.Measure, s.SampleRate, s.Factor)
}
