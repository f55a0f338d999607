// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import (
	"encoding/binary"
	"math"
)

// FieldEncoding is the wire encoding of a single PMD data field.
type FieldEncoding uint8

//go:generate go tool golang.org/x/tools/cmd/stringer -type FieldEncoding
const (
	SignedInt FieldEncoding = iota + 1
	UnsignedInt
	UnsignedByte
	UnsignedLong
	Float
	Double
	Boolean
)

// Value is a decoded field value.
type Value struct {
	enc  FieldEncoding
	bits uint64
}

// Encoding returns the encoding the value was decoded from.
func (v Value) Encoding() FieldEncoding { return v.enc }

// Int returns the value as a signed integer. Floating point
// values are truncated.
func (v Value) Int() int64 {
	switch v.enc {
	case Float, Double:
		return int64(v.Float())
	}
	return int64(v.bits)
}

// Uint returns the value as an unsigned integer. Floating point
// values are truncated.
func (v Value) Uint() uint64 {
	switch v.enc {
	case Float, Double:
		return uint64(v.Float())
	}
	return v.bits
}

// Float returns the value as a float64.
func (v Value) Float() float64 {
	switch v.enc {
	case Float:
		return float64(math.Float32frombits(uint32(v.bits)))
	case Double:
		return math.Float64frombits(v.bits)
	case SignedInt:
		return float64(int64(v.bits))
	}
	return float64(v.bits)
}

// Bool returns whether the value is non-zero.
func (v Value) Bool() bool { return v.bits != 0 }

// DecodeField decodes the little-endian field in b with the provided
// encoding. The length of b must be a valid width for enc.
func DecodeField(b []byte, enc FieldEncoding) (Value, error) {
	n := len(b)
	switch enc {
	case SignedInt:
		if n < 1 || n > 4 {
			return Value{}, malformed("invalid %v width: %d", enc, n)
		}
		return Value{enc: enc, bits: uint64(leInt(b))}, nil
	case UnsignedInt:
		if n < 1 || n > 4 {
			return Value{}, malformed("invalid %v width: %d", enc, n)
		}
	case UnsignedByte, Boolean:
		if n != 1 {
			return Value{}, malformed("invalid %v width: %d", enc, n)
		}
	case UnsignedLong:
		if n < 1 || n > 8 {
			return Value{}, malformed("invalid %v width: %d", enc, n)
		}
	case Float:
		if n != float32Size {
			return Value{}, malformed("invalid %v width: %d", enc, n)
		}
	case Double:
		if n != float64Size {
			return Value{}, malformed("invalid %v width: %d", enc, n)
		}
	default:
		return Value{}, malformed("unknown field encoding: %d", enc)
	}
	return Value{enc: enc, bits: leUint(b)}, nil
}

// leUint returns the little-endian unsigned integer held in b.
func leUint(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// leInt returns the little-endian two's-complement integer held in b.
func leInt(b []byte) int64 {
	shift := 64 - 8*uint(len(b))
	return int64(leUint(b)<<shift) >> shift
}

func leInt24(b []byte) int32 {
	_ = b[2] // bounds check hint to compiler; see golang.org/issue/14808
	return int32(b[0]) | int32(b[1])<<8 | int32(int8(b[2]))<<16
}

func leFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func leFloat64(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}
