// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package channels splits decoded PMD sample sets into per-channel series
// and summarises them.
package channels

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kortschak/polarsdk/pmd"
)

// Series is the sequence of values of a single channel.
type Series struct {
	Name       string
	Timestamps []uint64 // ns since 2000-01-01T00:00:00Z
	Values     []float64
}

// Append appends the value v at time ts to the series.
func (s *Series) Append(ts uint64, v float64) {
	s.Timestamps = append(s.Timestamps, ts)
	s.Values = append(s.Values, v)
}

// builder collects named series in first-seen order.
type builder struct {
	series []Series
	index  map[string]int
}

func (b *builder) add(name string, ts uint64, v float64) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	i, ok := b.index[name]
	if !ok {
		i = len(b.series)
		b.index[name] = i
		b.series = append(b.series, Series{Name: name})
	}
	b.series[i].Append(ts, v)
}

// Split returns the numeric channels of set. Sample kinds without a
// natural numeric channel, such as PPG gains or NMEA sentences, are
// omitted.
func Split(set pmd.SampleSet) []Series {
	var b builder
	switch set := set.(type) {
	case *pmd.AccData:
		for _, s := range set.Samples {
			b.add("x", s.Timestamp, float64(s.X))
			b.add("y", s.Timestamp, float64(s.Y))
			b.add("z", s.Timestamp, float64(s.Z))
		}
	case *pmd.GyroData:
		for _, s := range set.Samples {
			b.add("x", s.Timestamp, float64(s.X))
			b.add("y", s.Timestamp, float64(s.Y))
			b.add("z", s.Timestamp, float64(s.Z))
		}
	case *pmd.MagData:
		for _, s := range set.Samples {
			b.add("x", s.Timestamp, float64(s.X))
			b.add("y", s.Timestamp, float64(s.Y))
			b.add("z", s.Timestamp, float64(s.Z))
		}
	case *pmd.ECGData:
		for _, s := range set.Samples {
			b.add("uv", s.Timestamp, float64(s.MicroVolts))
			if set.FrameType == pmd.FrameType3 {
				b.add("lead2", s.Timestamp, float64(s.Lead2))
			}
		}
	case *pmd.PPGData:
		for _, s := range set.Samples {
			c, ok := s.(pmd.PPGChannels)
			if !ok {
				continue
			}
			for i, v := range c.PPG {
				b.add(fmt.Sprintf("ppg%d", i), c.Timestamp, float64(v))
			}
			if set.FrameType == pmd.FrameType0 {
				b.add("ambient", c.Timestamp, float64(c.Ambient))
			}
		}
	case *pmd.PPIData:
		for _, s := range set.Samples {
			b.add("hr", s.Timestamp, float64(s.HR))
			b.add("ppi", s.Timestamp, float64(s.PPInterval))
			b.add("error", s.Timestamp, float64(s.ErrorEstimate))
		}
	case *pmd.PressureData:
		for _, s := range set.Samples {
			b.add("pressure", s.Timestamp, float64(s.Pressure))
		}
	case *pmd.TemperatureData:
		for _, s := range set.Samples {
			b.add("temperature", s.Timestamp, float64(s.Temperature))
		}
	case *pmd.SkinTemperatureData:
		for _, s := range set.Samples {
			b.add("temperature", s.Timestamp, float64(s.Temperature))
		}
	case *pmd.LocationData:
		for _, s := range set.Samples {
			switch s := s.(type) {
			case pmd.LocationCoordinates:
				b.add("latitude", s.Timestamp, s.Latitude)
				b.add("longitude", s.Timestamp, s.Longitude)
				b.add("speed", s.Timestamp, float64(s.Speed))
			case pmd.LocationDilution:
				b.add("altitude", s.Timestamp, float64(s.Altitude))
				b.add("dilution", s.Timestamp, float64(s.Dilution))
			}
		}
	case *pmd.OfflineHRData:
		for _, s := range set.Samples {
			b.add("hr", s.Timestamp, float64(s.HR))
		}
	}
	return b.series
}

// Summary is a statistical summary of a series.
type Summary struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64

	// Rate is the mean sample rate in Hz. It is
	// zero if the series spans no time.
	Rate float64
	// Peak is the frequency in Hz of the largest
	// non-DC spectral component. It is zero if
	// Rate is zero or there are fewer than four
	// values.
	Peak float64
}

// Summarize returns the summary statistics of s.
func Summarize(s Series) Summary {
	n := len(s.Values)
	if n == 0 {
		return Summary{}
	}
	sum := Summary{
		N:   n,
		Min: floats.Min(s.Values),
		Max: floats.Max(s.Values),
	}
	if n > 1 {
		sum.Mean, sum.StdDev = stat.MeanStdDev(s.Values, nil)
	} else {
		sum.Mean = s.Values[0]
	}
	if len(s.Timestamps) == n && n > 1 && s.Timestamps[n-1] > s.Timestamps[0] {
		span := float64(s.Timestamps[n-1]-s.Timestamps[0]) / 1e9
		sum.Rate = float64(n-1) / span
	}
	if sum.Rate != 0 && n >= 4 {
		sum.Peak = PeakFrequency(s.Values, sum.Rate)
	}
	return sum
}

// PeakFrequency returns the frequency in Hz of the largest non-DC
// component of the spectrum of values sampled at rate Hz. The values
// are mean-centred and Hamming windowed before transformation.
func PeakFrequency(values []float64, rate float64) float64 {
	if len(values) < 2 || rate <= 0 {
		return 0
	}
	x := make([]float64, len(values))
	copy(x, values)
	floats.AddConst(-stat.Mean(x, nil), x)
	window.Hamming(x)

	fft := fourier.NewFFT(len(x))
	coeff := fft.Coefficients(nil, x)
	peak := 0
	best := math.Inf(-1)
	for i := 1; i < len(coeff); i++ {
		if m := cmplx.Abs(coeff[i]); m > best {
			best = m
			peak = i
		}
	}
	if peak == 0 {
		return 0
	}
	return fft.Freq(peak) * rate
}
