// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

// bitReader reads LSB-first bit fields from a byte slice. Bit i of the
// stream is bit i%8 of byte i/8.
type bitReader struct {
	buf []byte
	off int // in bits
}

func newBitReader(b []byte) *bitReader { return &bitReader{buf: b} }

// remaining returns the number of unread bits.
func (r *bitReader) remaining() int { return 8*len(r.buf) - r.off }

func (r *bitReader) skip(n int) { r.off += n }

// uint returns the next n bits as an unsigned value. n must
// not be greater than 64 or the number of remaining bits.
func (r *bitReader) uint(n int) uint64 {
	var v uint64
	for i := 0; i < n; {
		idx, bit := r.off/8, r.off%8
		take := min(8-bit, n-i)
		part := uint64(r.buf[idx]>>bit) & (1<<take - 1)
		v |= part << i
		i += take
		r.off += take
	}
	return v
}

// int returns the next n bits as a two's-complement signed value.
func (r *bitReader) int(n int) int64 {
	if n == 0 {
		return 0
	}
	shift := 64 - uint(n)
	return int64(r.uint(n)<<shift) >> shift
}

func (r *bitReader) bool() bool { return r.uint(1) != 0 }
