// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/kortschak/polarsdk/cmd/internal/channels"
	"github.com/kortschak/polarsdk/internal/sink"
	"github.com/kortschak/polarsdk/pmd"
)

// decoder replays captured packets through a pmd.Stream per sensor and
// measurement type.
type decoder struct {
	// filter is the set of measurement types to
	// decode. All types are decoded if it is empty.
	filter []pmd.MeasureType
	// reset indicates that stream timing should be
	// reset after a dropped packet.
	reset bool

	log *slog.Logger
}

// result is the decoded content of a single captured stream.
type result struct {
	Device  string
	Measure pmd.MeasureType

	Packets int
	Samples int
	Series  []channels.Series
	// Dropped is the count of dropped packets
	// keyed by failure kind.
	Dropped map[string]int

	stream *pmd.Stream
	index  map[string]int
}

func (r *result) add(series []channels.Series) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	for _, s := range series {
		i, ok := r.index[s.Name]
		if !ok {
			i = len(r.Series)
			r.index[s.Name] = i
			r.Series = append(r.Series, channels.Series{Name: s.Name})
		}
		r.Series[i].Timestamps = append(r.Series[i].Timestamps, s.Timestamps...)
		r.Series[i].Values = append(r.Series[i].Values, s.Values...)
	}
}

type streamKey struct {
	device  string
	measure pmd.MeasureType
}

// replay decodes all packets in the capture read from r and returns the
// results in order of first appearance.
func (d decoder) replay(r io.Reader) ([]*result, error) {
	var results []*result
	streams := make(map[streamKey]*result)
	capture := sink.NewJSONLReader(r)
	for {
		p, err := capture.Next()
		if err != nil {
			if err == io.EOF {
				return results, nil
			}
			return results, err
		}
		if len(d.filter) != 0 && !slices.Contains(d.filter, p.Measure) {
			continue
		}
		key := streamKey{device: p.Device, measure: p.Measure}
		res, ok := streams[key]
		if !ok {
			res = &result{
				Device:  p.Device,
				Measure: p.Measure,
				Dropped: make(map[string]int),
				stream:  pmd.NewStream(p.Measure, p.SampleRate, p.Factor),
			}
			streams[key] = res
			results = append(results, res)
		}
		res.Packets++
		res.stream.SampleRate = p.SampleRate
		res.stream.Factor = p.Factor
		set, err := res.stream.Decode(p.Data)
		if err != nil {
			kind := "other"
			var derr *pmd.DecodeError
			if errors.As(err, &derr) {
				kind = derr.Kind.String()
			}
			res.Dropped[kind]++
			d.log.Debug("dropped packet", "device", p.Device, "measure", p.Measure.String(), "time", p.Time, "kind", kind, "error", err)
			if d.reset {
				res.stream.Reset()
			}
			continue
		}
		res.Samples += set.Len()
		res.add(channels.Split(set))
	}
}

// writeReport writes a table of channel summaries and dropped packet
// counts for results to w.
func writeReport(w io.Writer, results []*result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "device\tmeasure\tchannel\tn\tmean\tsd\tmin\tmax\trate\tpeak")
	for _, r := range results {
		for _, s := range r.Series {
			sum := channels.Summarize(s)
			fmt.Fprintf(tw, "%s\t%v\t%s\t%d\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\n",
				r.Device, r.Measure, s.Name, sum.N, sum.Mean, sum.StdDev, sum.Min, sum.Max, sum.Rate, sum.Peak)
		}
	}
	err := tw.Flush()
	if err != nil {
		return err
	}
	for _, r := range results {
		if len(r.Dropped) == 0 {
			continue
		}
		for _, kind := range slices.Sorted(maps.Keys(r.Dropped)) {
			_, err = fmt.Fprintf(w, "%s %v: dropped %d of %d packets: %s\n", r.Device, r.Measure, r.Dropped[kind], r.Packets, kind)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
