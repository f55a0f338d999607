// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import (
	"math"
	"time"
)

const epoch = 946684800 // epoch 2000 January 1st 00:00:00 UTC

// Time returns the wall time of a PMD timestamp, the number of
// nanoseconds since 2000-01-01T00:00:00Z.
func Time(ts uint64) time.Time {
	return time.Unix(int64(ts/1e9)+epoch, int64(ts%1e9)).UTC()
}

// Timestamps returns n ascending sample timestamps for a frame whose last
// sample was taken at current. If previous is non-zero, it is the timestamp
// of the last sample of the preceding frame and the sample interval is
// interpolated between the two. Otherwise the interval is derived from
// sampleRate, in Hz. The last timestamp is always exactly current, and
// timestamps are strictly ascending; frames too short in time to give
// each sample a distinct nanosecond are rejected.
func Timestamps(previous, current uint64, n int, sampleRate uint32) ([]uint64, error) {
	if n <= 0 {
		return nil, &DecodeError{Kind: SampleCountMissing}
	}

	ts := make([]uint64, n)
	if previous == 0 {
		if sampleRate == 0 {
			return nil, &DecodeError{Kind: TimestampUnavailable, Msg: "no previous timestamp and no sample rate"}
		}
		delta := 1e9 / float64(sampleRate)
		if n > 1 && delta < 1 {
			return nil, &DecodeError{Kind: NonMonotonicTimestamp, Msg: "sample interval shorter than timestamp resolution"}
		}
		span := uint64(math.Round(delta * float64(n-1)))
		if span >= current {
			return nil, &DecodeError{Kind: NegativeTimestamp, Msg: "first sample precedes epoch"}
		}
		// Work back from current to avoid float64
		// precision loss on absolute times.
		for i := range ts {
			ts[i] = current - uint64(math.Round(delta*float64(n-1-i)))
		}
	} else {
		if current <= previous {
			return nil, &DecodeError{Kind: NonMonotonicTimestamp, Msg: "frame timestamp not after previous frame"}
		}
		if current-previous < uint64(n) {
			return nil, &DecodeError{Kind: NonMonotonicTimestamp, Msg: "frame interval shorter than sample count"}
		}
		delta := float64(current-previous) / float64(n)
		for i := range ts {
			ts[i] = previous + uint64(math.Round(delta*float64(i+1)))
		}
	}
	ts[n-1] = current
	return ts, nil
}

// frameTimestamps returns the sample timestamps for n samples of f.
func frameTimestamps(f Frame, n int) ([]uint64, error) {
	return Timestamps(f.PreviousTimestamp, f.Timestamp, n, f.SampleRate)
}
