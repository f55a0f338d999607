// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, JSON, slog.LevelInfo, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Debug("dropped")
	log.Info("decoded", "measure", "ECG", "samples", 73)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("unexpected number of lines: got:%d want:1\n%s", len(lines), buf.String())
	}
	var rec map[string]any
	err = json.Unmarshal([]byte(lines[0]), &rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec["msg"] != "decoded" || rec["measure"] != "ECG" || rec["samples"] != 73.0 {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, Text, slog.LevelDebug, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Debug("connected", "addr", "A0:9E:1A:00:00:01")
	got := buf.String()
	if !strings.Contains(got, "connected") || !strings.Contains(got, "addr=A0:9E:1A:00:00:01") {
		t.Errorf("unexpected output: %q", got)
	}
	if strings.Contains(got, "\x1b[") {
		t.Errorf("unexpected colour codes in output: %q", got)
	}
}

func TestNewUnknown(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "xml", slog.LevelInfo, false)
	if err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	for _, test := range []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{name: "debug", want: slog.LevelDebug},
		{name: "INFO", want: slog.LevelInfo},
		{name: "warn", want: slog.LevelWarn},
		{name: "error+2", want: slog.LevelError + 2},
		{name: "loud", wantErr: true},
	} {
		got, err := ParseLevel(test.name)
		if (err != nil) != test.wantErr {
			t.Errorf("unexpected error for %q: %v", test.name, err)
			continue
		}
		if got != test.want {
			t.Errorf("unexpected level for %q: got:%v want:%v", test.name, got, test.want)
		}
	}
}
