package ring

import (
	"reflect"
	"testing"
)

var bufferTests = []struct {
	name    string
	ops     func() *Buffer[float64]
	want    []float64
	wantLen int
}{
	{
		name: "new_4",
		ops: func() *Buffer[float64] {
			return NewBuffer[float64](4)
		},
		want:    nil,
		wantLen: 0,
	},
	{
		name: "new_4_write_2",
		ops: func() *Buffer[float64] {
			r := NewBuffer[float64](4)
			r.Write(1, 2)
			return r
		},
		want:    []float64{1, 2},
		wantLen: 2,
	},
	{
		name: "new_4_write_2_1",
		ops: func() *Buffer[float64] {
			r := NewBuffer[float64](4)
			r.Write(1, 2)
			r.Write(3)
			return r
		},
		want:    []float64{1, 2, 3},
		wantLen: 3,
	},
	{
		name: "new_4_write_2_2",
		ops: func() *Buffer[float64] {
			r := NewBuffer[float64](4)
			r.Write(1, 2)
			r.Write(3, 4)
			return r
		},
		want:    []float64{1, 2, 3, 4},
		wantLen: 4,
	},
	{
		name: "new_4_write_2_3",
		ops: func() *Buffer[float64] {
			r := NewBuffer[float64](4)
			r.Write(1, 2)
			r.Write(3, 4, 5)
			return r
		},
		want:    []float64{2, 3, 4, 5},
		wantLen: 4,
	},
	{
		name: "new_4_write_3_2_2",
		ops: func() *Buffer[float64] {
			r := NewBuffer[float64](4)
			r.Write(1, 2, 3)
			r.Write(4, 5)
			r.Write(6, 7)
			return r
		},
		want:    []float64{4, 5, 6, 7},
		wantLen: 4,
	},
	{
		name: "new_4_write_5",
		ops: func() *Buffer[float64] {
			r := NewBuffer[float64](4)
			r.Write(1, 2, 3, 4, 5)
			return r
		},
		want:    []float64{2, 3, 4, 5},
		wantLen: 4,
	},
	{
		name: "new_4_write_1_5",
		ops: func() *Buffer[float64] {
			r := NewBuffer[float64](4)
			r.Write(1)
			r.Write(2, 3, 4, 5, 6)
			return r
		},
		want:    []float64{3, 4, 5, 6},
		wantLen: 4,
	},
	{
		name: "new_4_write_3_reset_1",
		ops: func() *Buffer[float64] {
			r := NewBuffer[float64](4)
			r.Write(1, 2, 3)
			r.Reset()
			r.Write(4)
			return r
		},
		want:    []float64{4},
		wantLen: 1,
	},
	{
		name: "new_0_write_2",
		ops: func() *Buffer[float64] {
			r := NewBuffer[float64](0)
			r.Write(1, 2)
			return r
		},
		want:    nil,
		wantLen: 0,
	},
}

func TestBuffer(t *testing.T) {
	for _, test := range bufferTests {
		t.Run(test.name, func(t *testing.T) {
			r := test.ops()
			got := r.Values(nil)
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("unexpected result:\ngot: %v\nwant:%v", got, test.want)
			}
			if r.Len() != test.wantLen {
				t.Errorf("unexpected length: got:%d want:%d", r.Len(), test.wantLen)
			}
		})
	}
}
