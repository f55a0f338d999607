// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import (
	"reflect"
	"testing"
)

var parseSettingsTests = []struct {
	name    string
	data    []byte
	want    []Setting
	wantErr bool
}{
	{
		name: "acc_settings",
		data: []byte{
			0x00, 0x02, 0x19, 0x00, 0x34, 0x00,
			0x01, 0x01, 0x10, 0x00,
			0x02, 0x03, 0x02, 0x00, 0x04, 0x00, 0x08, 0x00,
			0x04, 0x01, 0x03,
		},
		want: []Setting{
			Uint16{Type: SampleRateSetting, Val: []uint16{25, 52}},
			Uint16{Type: ResolutionSetting, Val: []uint16{16}},
			Uint16{Type: RangeUnitSetting, Val: []uint16{2, 4, 8}},
			Uint8{Type: ChannelsSetting, Val: []uint8{3}},
		},
	},
	{
		name: "start_params",
		data: []byte{0x05, 0x01, 0x00, 0x00, 0x00, 0x3f},
		want: []Setting{
			Float32{Type: ConversionFactorSetting, Val: []float32{0.5}},
		},
	},
	{
		name: "empty",
		data: nil,
		want: nil,
	},
	{
		name:    "unknown_type",
		data:    []byte{0x03, 0x01, 0x00},
		wantErr: true,
	},
	{
		name: "truncated",
		data: []byte{0x00, 0x01, 0x19, 0x00, 0x01, 0x02, 0x10},
		want: []Setting{
			Uint16{Type: SampleRateSetting, Val: []uint16{25}},
		},
		wantErr: true,
	},
}

func TestParseSettings(t *testing.T) {
	for _, test := range parseSettingsTests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseSettings(test.data)
			if (err != nil) != test.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("unexpected result:\ngot: %#v\nwant:%#v", got, test.want)
			}
		})
	}
}

func TestStreamSettings(t *testing.T) {
	rate, factor := StreamSettings([]Setting{
		Uint16{Type: SampleRateSetting, Val: []uint16{52, 104}},
		Uint16{Type: ResolutionSetting, Val: []uint16{16}},
		Float32{Type: ConversionFactorSetting, Val: []float32{0.25}},
	})
	if rate != 52 || factor != 0.25 {
		t.Errorf("unexpected stream settings: got:(%d, %v) want:(52, 0.25)", rate, factor)
	}
	rate, factor = StreamSettings(nil)
	if rate != 0 || factor != 1 {
		t.Errorf("unexpected default stream settings: got:(%d, %v) want:(0, 1)", rate, factor)
	}
}

var writeSettingsTests = []struct {
	name    string
	setting Setting
	want    []byte
	wantErr bool
}{
	{
		name:    "command",
		setting: setCommand{Command: MeasureStart, Record: Offline, Measure: AccType},
		want:    []byte{0x02, 0x82},
	},
	{
		name:    "sample_rate",
		setting: Uint16{Type: SampleRateSetting, Val: []uint16{130}},
		want:    []byte{0x00, 0x01, 0x82, 0x00},
	},
	{
		name:    "channels",
		setting: Uint8{Type: ChannelsSetting, Val: []uint8{3}},
		want:    []byte{0x04, 0x01, 0x03},
	},
	{
		name:    "factor",
		setting: Float32{Type: ConversionFactorSetting, Val: []float32{0.5}},
		want:    []byte{0x05, 0x01, 0x00, 0x00, 0x00, 0x3f},
	},
	{
		name:    "too_many_values",
		setting: Uint16{Type: SampleRateSetting, Val: []uint16{25, 52}},
		wantErr: true,
	},
	{
		name:    "wrong_size",
		setting: Uint8{Type: SampleRateSetting, Val: []uint8{25}},
		wantErr: true,
	},
}

func TestWriteSettings(t *testing.T) {
	for _, test := range writeSettingsTests {
		t.Run(test.name, func(t *testing.T) {
			buf := make([]byte, test.setting.Size())
			n, err := test.setting.write(buf)
			if (err != nil) != test.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(buf[:n], test.want) {
				t.Errorf("unexpected result:\ngot: %#x\nwant:%#x", buf[:n], test.want)
			}
		})
	}
}

func TestCheckResponse(t *testing.T) {
	params, err := checkResponse([]byte{0xf0, 0x02, 0x02, 0x00, 0x00, 0x05, 0x01, 0x00, 0x00, 0x00, 0x3f}, MeasureStart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x05, 0x01, 0x00, 0x00, 0x00, 0x3f}
	if !reflect.DeepEqual(params, want) {
		t.Errorf("unexpected params:\ngot: %#x\nwant:%#x", params, want)
	}
	for _, resp := range [][]byte{
		{0xf0, 0x02},
		{0xf1, 0x02, 0x02, 0x00, 0x00},
		{0xf0, 0x01, 0x02, 0x00, 0x00},
		{0xf0, 0x02, 0x02, 0x05, 0x00},
	} {
		_, err := checkResponse(resp, MeasureStart)
		if err == nil {
			t.Errorf("expected error for %#x", resp)
		}
	}
}
