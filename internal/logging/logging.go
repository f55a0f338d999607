// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logging provides the structured loggers used by the polarsdk
// commands.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Formats.
const (
	Text = "text"
	JSON = "json"
)

// New returns a logger writing to w in the given format at the given
// level. Text output is colourised when color is true.
func New(w io.Writer, format string, level slog.Level, color bool) (*slog.Logger, error) {
	var h slog.Handler
	switch strings.ToLower(format) {
	case "", Text:
		h = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    !color,
		})
	case JSON:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	default:
		return nil, fmt.Errorf("unknown log format: %q", format)
	}
	return slog.New(h), nil
}

// ParseLevel returns the slog level for the named level.
func ParseLevel(name string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(name))
	if err != nil {
		return 0, fmt.Errorf("invalid log level: %q", name)
	}
	return l, nil
}
