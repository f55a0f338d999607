// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

// compressDelta returns the delta compressed encoding of samples as a
// single reference block. Deltas are written in blocks of at most
// 255 samples with the given bit width.
func compressDelta(samples [][]int64, refBits, width int) []byte {
	refSize := (refBits + 7) / 8
	var buf []byte
	for _, v := range samples[0] {
		for i := range refSize {
			buf = append(buf, byte(uint64(v)>>(8*i)))
		}
	}
	for start := 1; start < len(samples); start += 255 {
		end := min(start+255, len(samples))
		buf = append(buf, byte(width), byte(end-start))
		var w bitWriter
		for i := start; i < end; i++ {
			for c := range samples[i] {
				w.write(samples[i][c]-samples[i-1][c], width)
			}
		}
		buf = append(buf, w.buf...)
	}
	return buf
}

var decompressTests = []struct {
	name     string
	samples  [][]int64
	channels int
	refBits  int
	width    int
}{
	{
		name:     "single_reference",
		samples:  [][]int64{{1, -2, 3}},
		channels: 3, refBits: 16, width: 4,
	},
	{
		name: "acc_16",
		samples: [][]int64{
			{100, -200, 1000},
			{101, -201, 998},
			{103, -199, 1001},
			{99, -199, 1005},
		},
		channels: 3, refBits: 16, width: 5,
	},
	{
		name: "ppg_22",
		samples: [][]int64{
			{-2097152, 2097151, 0, 5},
			{-2097100, 2097000, -90, 5},
			{-2097152, 2097151, 0, 4},
		},
		channels: 4, refBits: 22, width: 9,
	},
	{
		name: "many",
		samples: func() [][]int64 {
			s := make([][]int64, 600)
			for i := range s {
				s[i] = []int64{int64(i % 17), -int64(i % 5)}
			}
			return s
		}(),
		channels: 2, refBits: 24, width: 6,
	},
}

func TestDecompress(t *testing.T) {
	for _, test := range decompressTests {
		t.Run(test.name, func(t *testing.T) {
			data := compressDelta(test.samples, test.refBits, test.width)
			got, err := Decompress(data, test.channels, test.refBits, SignedInt)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, test.samples) {
				t.Errorf("unexpected result:\ngot: %v\nwant:%v", got, test.samples)
			}
		})
	}
}

func TestDecompressReferenceRestart(t *testing.T) {
	first := compressDelta([][]int64{{10, 20}, {11, 19}}, 16, 3)
	// A zero width byte begins the second reference block:
	// the low byte of the first channel reference is zero.
	second := compressDelta([][]int64{{0x0100, 7}, {0x0101, 8}}, 16, 3)
	data := append(first, second...)
	got, err := Decompress(data, 2, 16, SignedInt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]int64{{10, 20}, {11, 19}, {0x0100, 7}, {0x0101, 8}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected result:\ngot: %v\nwant:%v", got, want)
	}
}

func TestDecompressFloat(t *testing.T) {
	ref := int64(int32(math.Float32bits(1.5)))
	data := compressDelta([][]int64{{ref}, {ref + 1}}, 32, 2)
	got, err := Decompress(data, 1, 32, Float)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]int64{{ref}, {ref + 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected result:\ngot: %v\nwant:%v", got, want)
	}
	if floatBits(got[0][0]) != 1.5 {
		t.Errorf("unexpected reference value: got:%v want:1.5", floatBits(got[0][0]))
	}
}

var decompressErrorTests = []struct {
	name     string
	data     []byte
	channels int
	refBits  int
	enc      FieldEncoding
}{
	{name: "empty", data: nil, channels: 3, refBits: 16, enc: SignedInt},
	{name: "short_reference", data: []byte{1, 2, 3}, channels: 3, refBits: 16, enc: SignedInt},
	{name: "short_delta_header", data: []byte{1, 0, 2, 0, 3, 0, 4}, channels: 3, refBits: 16, enc: SignedInt},
	{name: "short_delta_block", data: []byte{1, 0, 2, 0, 3, 0, 4, 2, 0xff}, channels: 3, refBits: 16, enc: SignedInt},
	{name: "no_channels", data: []byte{1, 0}, channels: 0, refBits: 16, enc: SignedInt},
	{name: "bad_width", data: []byte{1, 0}, channels: 1, refBits: 0, enc: SignedInt},
	{name: "bad_float_width", data: []byte{1, 0}, channels: 1, refBits: 16, enc: Float},
	{name: "bad_encoding", data: []byte{1, 0}, channels: 1, refBits: 16, enc: Boolean},
}

func TestDecompressErrors(t *testing.T) {
	for _, test := range decompressErrorTests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Decompress(test.data, test.channels, test.refBits, test.enc)
			if !errors.Is(err, ErrMalformedContent) {
				t.Errorf("unexpected error: got:%v want:%v", err, ErrMalformedContent)
			}
		})
	}
}
