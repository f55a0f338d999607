// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package channels

import (
	"math"
	"reflect"
	"testing"

	"github.com/kortschak/polarsdk/pmd"
)

var splitTests = []struct {
	name string
	set  pmd.SampleSet
	want []Series
}{
	{
		name: "acc",
		set: &pmd.AccData{Samples: []pmd.AccSample{
			{Timestamp: 1, X: 1, Y: 2, Z: 3},
			{Timestamp: 2, X: -1, Y: -2, Z: -3},
		}},
		want: []Series{
			{Name: "x", Timestamps: []uint64{1, 2}, Values: []float64{1, -1}},
			{Name: "y", Timestamps: []uint64{1, 2}, Values: []float64{2, -2}},
			{Name: "z", Timestamps: []uint64{1, 2}, Values: []float64{3, -3}},
		},
	},
	{
		name: "ecg_dual",
		set: &pmd.ECGData{FrameType: pmd.FrameType3, Samples: []pmd.ECGSample{
			{Timestamp: 1, MicroVolts: 16, Lead2: -16, Status: 7},
		}},
		want: []Series{
			{Name: "uv", Timestamps: []uint64{1}, Values: []float64{16}},
			{Name: "lead2", Timestamps: []uint64{1}, Values: []float64{-16}},
		},
	},
	{
		name: "ppg_mixed",
		set: &pmd.PPGData{FrameType: pmd.FrameType0, Samples: []pmd.PPGSample{
			pmd.PPGChannels{Timestamp: 1, PPG: []int32{10, 20}, Ambient: 5},
			pmd.PPGOperationMode{Timestamp: 1, Mode: 2},
		}},
		want: []Series{
			{Name: "ppg0", Timestamps: []uint64{1}, Values: []float64{10}},
			{Name: "ppg1", Timestamps: []uint64{1}, Values: []float64{20}},
			{Name: "ambient", Timestamps: []uint64{1}, Values: []float64{5}},
		},
	},
	{
		name: "ppi",
		set: &pmd.PPIData{Samples: []pmd.PPISample{
			{Timestamp: 1, HR: 60, PPInterval: 1000, ErrorEstimate: 16},
		}},
		want: []Series{
			{Name: "hr", Timestamps: []uint64{1}, Values: []float64{60}},
			{Name: "ppi", Timestamps: []uint64{1}, Values: []float64{1000}},
			{Name: "error", Timestamps: []uint64{1}, Values: []float64{16}},
		},
	},
	{
		name: "location_nmea",
		set: &pmd.LocationData{FrameType: pmd.FrameType3, Samples: []pmd.LocationSample{
			pmd.LocationNMEA{Timestamp: 1, Message: "$GPGGA"},
		}},
		want: nil,
	},
}

func TestSplit(t *testing.T) {
	for _, test := range splitTests {
		t.Run(test.name, func(t *testing.T) {
			got := Split(test.set)
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("unexpected result:\ngot: %#v\nwant:%#v", got, test.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(Series{
		Name:       "x",
		Timestamps: []uint64{1e9, 2e9, 3e9, 4e9},
		Values:     []float64{1, 2, 3, 4},
	})
	const tol = 1e-9
	if got.N != 4 || got.Min != 1 || got.Max != 4 || got.Mean != 2.5 {
		t.Errorf("unexpected summary: %+v", got)
	}
	if math.Abs(got.StdDev-math.Sqrt(5.0/3)) > tol {
		t.Errorf("unexpected standard deviation: got:%v want:%v", got.StdDev, math.Sqrt(5.0/3))
	}
	if math.Abs(got.Rate-1) > tol {
		t.Errorf("unexpected rate: got:%v want:1", got.Rate)
	}

	if got := Summarize(Series{}); got != (Summary{}) {
		t.Errorf("unexpected summary of empty series: %+v", got)
	}
	got = Summarize(Series{Timestamps: []uint64{1}, Values: []float64{7}})
	if got != (Summary{N: 1, Mean: 7, Min: 7, Max: 7}) {
		t.Errorf("unexpected summary of single value: %+v", got)
	}
}

func TestPeakFrequency(t *testing.T) {
	const (
		rate = 100.0
		freq = 10.0
		n    = 200
	)
	s := Series{Name: "sine"}
	for i := range n {
		ts := uint64(1e9 + i*1e7)
		s.Append(ts, 50+math.Sin(2*math.Pi*freq*float64(i)/rate))
	}
	got := Summarize(s)
	if math.Abs(got.Rate-rate) > 1e-6 {
		t.Errorf("unexpected rate: got:%v want:%v", got.Rate, rate)
	}
	if math.Abs(got.Peak-freq) > 1e-6 {
		t.Errorf("unexpected peak frequency: got:%v want:%v", got.Peak, freq)
	}
	if got := PeakFrequency([]float64{1}, rate); got != 0 {
		t.Errorf("unexpected peak frequency for single value: %v", got)
	}
}
