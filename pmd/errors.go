// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import "fmt"

// ErrorKind is the class of a decoding failure.
type ErrorKind uint8

//go:generate go tool golang.org/x/tools/cmd/stringer -type ErrorKind
const (
	UnsupportedFrameVariant ErrorKind = iota + 1
	SampleCountMissing
	TimestampUnavailable
	NonMonotonicTimestamp
	NegativeTimestamp
	MalformedContent
)

// Sentinel errors for use with errors.Is.
var (
	ErrUnsupportedFrameVariant = &DecodeError{Kind: UnsupportedFrameVariant}
	ErrSampleCountMissing      = &DecodeError{Kind: SampleCountMissing}
	ErrTimestampUnavailable    = &DecodeError{Kind: TimestampUnavailable}
	ErrNonMonotonicTimestamp   = &DecodeError{Kind: NonMonotonicTimestamp}
	ErrNegativeTimestamp       = &DecodeError{Kind: NegativeTimestamp}
	ErrMalformedContent        = &DecodeError{Kind: MalformedContent}
)

// DecodeError is the error returned for a frame that could not be decoded.
// All decode errors are fatal to the frame being decoded.
type DecodeError struct {
	Kind ErrorKind

	// Measure, Frame and Compressed identify the
	// frame variant when it is known.
	Measure    MeasureType
	Frame      FrameType
	Compressed bool

	Msg string
}

func (e *DecodeError) Error() string {
	switch {
	case e.Kind == UnsupportedFrameVariant:
		return fmt.Sprintf("pmd: unsupported frame variant: %v frame type %d compressed=%t", e.Measure, e.Frame, e.Compressed)
	case e.Msg != "":
		return fmt.Sprintf("pmd: %v: %s", e.Kind, e.Msg)
	default:
		return fmt.Sprintf("pmd: %v", e.Kind)
	}
}

// Is reports whether target is a *DecodeError of the same kind.
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	return ok && t.Kind == e.Kind
}

func malformed(format string, args ...any) error {
	return &DecodeError{Kind: MalformedContent, Msg: fmt.Sprintf(format, args...)}
}

// withVariant annotates a decode error with the frame variant it
// was returned for.
func withVariant(err error, m MeasureType, f Frame) error {
	e, ok := err.(*DecodeError)
	if !ok {
		return err
	}
	c := *e
	c.Measure = m
	c.Frame = f.Type
	c.Compressed = f.Compressed
	return &c
}
