// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import (
	"reflect"
	"testing"
)

// bitWriter is the inverse of bitReader for constructing test data.
type bitWriter struct {
	buf []byte
	off int
}

func (w *bitWriter) write(v int64, n int) {
	for i := range n {
		if w.off/8 >= len(w.buf) {
			w.buf = append(w.buf, 0)
		}
		if uint64(v)>>i&1 != 0 {
			w.buf[w.off/8] |= 1 << (w.off % 8)
		}
		w.off++
	}
}

func TestBitReader(t *testing.T) {
	// 0b1011_0101, 0b1110_0110
	r := newBitReader([]byte{0xb5, 0xe6})
	var got []int64
	got = append(got, int64(r.uint(3))) // 101 -> 5
	got = append(got, r.int(3))         // 110 -> -2
	got = append(got, int64(r.uint(4))) // 10 from byte 0, 10 from byte 1 -> 0b1010
	r.skip(2)
	got = append(got, r.int(4)) // 1110 -> -2
	want := []int64{5, -2, 0b1010, -2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected result:\ngot: %v\nwant:%v", got, want)
	}
	if r.remaining() != 0 {
		t.Errorf("unexpected remaining bits: got:%d want:0", r.remaining())
	}
}

func TestBitReaderWide(t *testing.T) {
	var w bitWriter
	vals := []struct {
		v int64
		n int
	}{
		{v: 1, n: 1},
		{v: -1, n: 7},
		{v: 0x123456789, n: 37},
		{v: -12345, n: 19},
		{v: 0, n: 0},
	}
	for _, v := range vals {
		w.write(v.v, v.n)
	}
	r := newBitReader(w.buf)
	for _, v := range vals {
		got := r.int(v.n)
		if v.n == 37 {
			got = int64(uint64(got) & (1<<37 - 1))
		}
		if got != v.v {
			t.Errorf("unexpected value for width %d: got:%d want:%d", v.n, got, v.v)
		}
	}
}
