// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

var timestampsTests = []struct {
	name       string
	previous   uint64
	current    uint64
	n          int
	sampleRate uint32
	want       []uint64
	wantErr    error
}{
	{
		name:    "rate_100",
		current: 1e9, n: 5, sampleRate: 100,
		want: []uint64{96e7, 97e7, 98e7, 99e7, 1e9},
	},
	{
		name:    "rate_1_single",
		current: 1000, n: 1, sampleRate: 1,
		want: []uint64{1000},
	},
	{
		name:    "rate_130",
		current: 599634867000000000, n: 3, sampleRate: 130,
		want: []uint64{599634867000000000 - 15384615, 599634867000000000 - 7692308, 599634867000000000},
	},
	{
		name:     "previous_even",
		previous: 1000, current: 1300, n: 3,
		want: []uint64{1100, 1200, 1300},
	},
	{
		name:     "previous_uneven",
		previous: 1000, current: 2000, n: 3,
		want: []uint64{1333, 1667, 2000},
	},
	{
		name:     "previous_ignores_rate",
		previous: 1000, current: 2000, n: 2, sampleRate: 1,
		want: []uint64{1500, 2000},
	},
	{
		name:     "non_monotonic",
		previous: 100, current: 50, n: 3,
		wantErr: ErrNonMonotonicTimestamp,
	},
	{
		name:     "repeated",
		previous: 100, current: 100, n: 3,
		wantErr: ErrNonMonotonicTimestamp,
	},
	{
		name:     "interval_shorter_than_count",
		previous: 1000, current: 1002, n: 5,
		wantErr: ErrNonMonotonicTimestamp,
	},
	{
		name:     "interval_equal_to_count",
		previous: 1000, current: 1005, n: 5,
		want: []uint64{1001, 1002, 1003, 1004, 1005},
	},
	{
		name:    "rate_above_resolution",
		current: 1e9, n: 3, sampleRate: 2e9,
		wantErr: ErrNonMonotonicTimestamp,
	},
	{
		name:    "no_samples",
		current: 1000, n: 0, sampleRate: 100,
		wantErr: ErrSampleCountMissing,
	},
	{
		name:    "no_rate",
		current: 1000, n: 3,
		wantErr: ErrTimestampUnavailable,
	},
	{
		name:    "negative",
		current: 10, n: 3, sampleRate: 1,
		wantErr: ErrNegativeTimestamp,
	},
}

func TestTimestamps(t *testing.T) {
	for _, test := range timestampsTests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Timestamps(test.previous, test.current, test.n, test.sampleRate)
			if !errors.Is(err, test.wantErr) && err != test.wantErr {
				t.Fatalf("unexpected error: got:%v want:%v", err, test.wantErr)
			}
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("unexpected result:\ngot: %v\nwant:%v", got, test.want)
			}
			for i := 1; i < len(got); i++ {
				if got[i] <= got[i-1] {
					t.Errorf("timestamps not ascending at %d: %v", i, got)
				}
			}
		})
	}
}

func TestTime(t *testing.T) {
	got := Time(599634867000000123)
	want := time.Date(2019, time.January, 1, 5, 14, 27, 123, time.UTC)
	if !got.Equal(want) {
		t.Errorf("unexpected time: got:%v want:%v", got, want)
	}
	if got := Time(0); !got.Equal(time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected epoch: got:%v", got)
	}
}
