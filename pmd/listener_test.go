// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pmd

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestResponse(t *testing.T) {
	r := newResponse()
	first := []byte{0xf0, 0x02, 0x02, 0x00, 0x00}
	r.notify(first)
	r.notify([]byte{0xf0, 0x02, 0x02, 0x05, 0x00})
	first[3] = 0xff

	got, err := r.wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0xf0, 0x02, 0x02, 0x00, 0x00}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected response: got:%#x want:%#x", got, want)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newResponse().wait(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("unexpected error for cancelled wait: got:%v want:%v", err, context.Canceled)
	}
}

func TestListenerStart(t *testing.T) {
	var (
		l       Listener
		got     []SampleSet
		tapped  []float32
		handled int
	)
	l.SetTap(func(s *Stream, _ []byte) {
		tapped = append(tapped, s.Factor)
	})
	handle := func(set SampleSet, err error) {
		handled++
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		got = append(got, set)
	}
	acc := packet(AccType, 1e9, 0x01, 0x10, 0x00, 0xf0, 0xff, 0x00, 0x01)

	l.dispatch(acc)
	if handled != 0 {
		t.Fatalf("unexpected handler call before start")
	}

	err := l.start(AccType, []Setting{Uint16{Type: SampleRateSetting, Val: []uint16{1}}}, []byte{0x05, 0x01, 0x00, 0x00, 0x00, 0x3f}, handle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.dispatch(acc)
	want := []SampleSet{&AccData{Samples: []AccSample{
		{Timestamp: 1e9, X: 8, Y: -8, Z: 128},
	}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected samples:\ngot: %#v\nwant:%#v", got, want)
	}
	if !reflect.DeepEqual(tapped, []float32{0.5}) {
		t.Errorf("unexpected tapped stream factors: got:%v want:[0.5]", tapped)
	}

	err = l.start(ECGType, nil, []byte{0x03, 0x01, 0x00}, handle)
	if err == nil {
		t.Error("expected error for invalid start parameters")
	}
	l.dispatch(packet(ECGType, 2e9, 0x00, 0x01, 0x00, 0x00))
	if handled != 1 {
		t.Errorf("unexpected handler calls after failed start: got:%d want:1", handled)
	}
}
