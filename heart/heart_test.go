// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heart

import (
	"reflect"
	"testing"
	"time"
)

var rateTests = []struct {
	name    string
	data    []byte
	want    Rate
	wantErr error
}{
	{
		name: "hr8",
		data: []byte{0x00, 72},
		want: Rate{HR: 72, Energy: -1},
	},
	{
		name: "hr8_contact_rr",
		data: []byte{0x16, 60, 0x00, 0x04, 0x00, 0x02},
		want: Rate{
			HR:               60,
			RR:               []time.Duration{time.Second, time.Second / 2},
			Energy:           -1,
			Contact:          true,
			ContactSupported: true,
		},
	},
	{
		name: "hr16_energy",
		data: []byte{0x0f, 0x2c, 0x01, 0x10, 0x00},
		want: Rate{
			HR:               300,
			Energy:           16,
			EnergyExpended:   true,
			Contact:          true,
			ContactSupported: true,
		},
	},
	{
		name:    "no_contact",
		data:    []byte{0x04, 60},
		want:    Rate{Energy: -1, ContactSupported: true},
		wantErr: ErrNoContact,
	},
	{
		name:    "empty",
		data:    []byte{0x00},
		wantErr: ErrShortMeasurement,
	},
	{
		name:    "short_hr16",
		data:    []byte{0x01, 60},
		wantErr: ErrShortMeasurement,
	},
	{
		name:    "short_energy",
		data:    []byte{0x08, 60, 0x01},
		wantErr: ErrShortMeasurement,
	},
	{
		name:    "odd_rr",
		data:    []byte{0x10, 60, 0x00},
		wantErr: ErrShortMeasurement,
	},
}

func TestRate(t *testing.T) {
	for _, test := range rateTests {
		t.Run(test.name, func(t *testing.T) {
			var got Rate
			err := got.UnmarshalBinary(test.data)
			if err != test.wantErr {
				t.Fatalf("unexpected error: got:%v want:%v", err, test.wantErr)
			}
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("unexpected result:\ngot: %#v\nwant:%#v", got, test.want)
			}
		})
	}
}
