// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ring implements a fixed size ring buffer retaining the most
// recently written values.
package ring

// Buffer is a ring buffer of values. Writes beyond the capacity of the
// buffer overwrite the oldest values.
type Buffer[T any] struct {
	data []T
	next int
	full bool
}

// NewBuffer returns a Buffer holding at most n values.
func NewBuffer[T any](n int) *Buffer[T] {
	return &Buffer[T]{data: make([]T, n)}
}

// Len returns the number of values held.
func (r *Buffer[T]) Len() int {
	if r.full {
		return len(r.data)
	}
	return r.next
}

// Cap returns the maximum number of values the buffer can hold.
func (r *Buffer[T]) Cap() int {
	return len(r.data)
}

// Write appends src to the buffer.
func (r *Buffer[T]) Write(src ...T) {
	if len(r.data) == 0 {
		return
	}
	if len(src) >= len(r.data) {
		copy(r.data, src[len(src)-len(r.data):])
		r.next = 0
		r.full = true
		return
	}
	for len(src) != 0 {
		n := copy(r.data[r.next:], src)
		src = src[n:]
		r.next += n
		if r.next == len(r.data) {
			r.next = 0
			r.full = true
		}
	}
}

// Values appends the held values to dst, oldest first, and returns the
// extended slice.
func (r *Buffer[T]) Values(dst []T) []T {
	if !r.full {
		return append(dst, r.data[:r.next]...)
	}
	dst = append(dst, r.data[r.next:]...)
	return append(dst, r.data[:r.next]...)
}

// Reset empties the buffer.
func (r *Buffer[T]) Reset() {
	r.next = 0
	r.full = false
}
