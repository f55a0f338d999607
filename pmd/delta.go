// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

// Delta frame header layout.
const (
	deltaWidthOffset = 0
	deltaCountOffset = 1
	deltaHeaderSize  = 2
)

// Decompress reconstructs the sample tuples held in a delta compressed
// frame content.
//
// The content is a sequence of reference blocks. A reference block holds
// one sample per channel, each refBits wide rounded up to whole bytes and
// encoded with enc, followed by zero or more delta blocks. A delta block is
// a one byte delta bit width and a one byte sample count followed by the
// bit-packed signed deltas for count samples of all channels. Each delta is
// added to the same channel of the preceding sample.
//
// A delta width of zero or wider than refBits ends the current reference
// block, and decoding continues with a new reference block at that offset.
//
// Float references are retained as their IEEE-754 bit pattern.
func Decompress(content []byte, channels, refBits int, enc FieldEncoding) ([][]int64, error) {
	if channels <= 0 {
		return nil, malformed("invalid channel count: %d", channels)
	}
	if refBits <= 0 || refBits > 64 {
		return nil, malformed("invalid reference width: %d", refBits)
	}
	refSize := (refBits + 7) / 8
	if len(content) == 0 {
		return nil, malformed("empty compressed frame")
	}

	var samples [][]int64
	for off := 0; off < len(content); {
		ref, err := referenceSample(content[off:], channels, refBits, refSize, enc)
		if err != nil {
			return samples, err
		}
		off += channels * refSize
		samples = append(samples, ref)

		for off < len(content) {
			if len(content)-off < deltaHeaderSize {
				return samples, malformed("short delta header at offset %d", off)
			}
			width := int(content[off+deltaWidthOffset])
			count := int(content[off+deltaCountOffset])
			if width == 0 || width > refBits {
				// Start of the next reference block.
				break
			}
			off += deltaHeaderSize
			size := (width*count*channels + 7) / 8
			if len(content)-off < size {
				return samples, malformed("short delta block at offset %d: need %d bytes, have %d", off, size, len(content)-off)
			}
			r := newBitReader(content[off : off+size])
			for range count {
				prev := samples[len(samples)-1]
				next := make([]int64, channels)
				for c := range next {
					next[c] = prev[c] + r.int(width)
				}
				samples = append(samples, next)
			}
			off += size
		}
	}
	return samples, nil
}

func referenceSample(b []byte, channels, refBits, refSize int, enc FieldEncoding) ([]int64, error) {
	if len(b) < channels*refSize {
		return nil, malformed("short reference sample: need %d bytes, have %d", channels*refSize, len(b))
	}
	ref := make([]int64, channels)
	for c := range ref {
		field := b[c*refSize : (c+1)*refSize]
		switch enc {
		case SignedInt:
			ref[c] = newBitReader(field).int(refBits)
		case UnsignedInt, UnsignedByte, UnsignedLong:
			ref[c] = int64(newBitReader(field).uint(refBits))
		case Float:
			if refSize != float32Size {
				return nil, malformed("invalid float reference width: %d", refBits)
			}
			ref[c] = int64(int32(leUint(field)))
		case Double:
			if refSize != float64Size {
				return nil, malformed("invalid double reference width: %d", refBits)
			}
			ref[c] = int64(leUint(field))
		default:
			return nil, malformed("invalid reference encoding: %v", enc)
		}
	}
	return ref, nil
}
