// Copyright ©2025 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The pmddecode command decodes a JSON lines packet capture written by
// pmdstream and prints summary statistics for each decoded channel.
//
// Usage:
//
//	pmddecode [-measure ECG,Acc] [-reset] capture.jsonl
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kortschak/polarsdk/internal/logging"
	"github.com/kortschak/polarsdk/pmd"
)

func main() {
	os.Exit(Main())
}

func Main() int {
	measures := flag.String("measure", "", "comma separated list of measurement types to decode (default all)")
	reset := flag.Bool("reset", false, "reset stream timing after a dropped packet")
	logLevel := flag.String("log-level", "warn", "log level")
	logFormat := flag.String("log-format", logging.Text, "log format (text or json)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [options] <capture.jsonl>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	log, err := logging.New(os.Stderr, *logFormat, level, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	var filter []pmd.MeasureType
	if *measures != "" {
		for _, name := range strings.Split(*measures, ",") {
			m, err := pmd.ParseMeasureType(strings.TrimSpace(name))
			if err != nil {
				log.Error("invalid measurement type", "name", name, "error", err)
				return 2
			}
			filter = append(filter, m)
		}
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Error("failed to open capture", "error", err)
		return 1
	}
	defer f.Close()

	d := decoder{filter: filter, reset: *reset, log: log}
	results, err := d.replay(f)
	if err != nil {
		log.Error("failed to decode capture", "error", err)
		return 1
	}
	err = writeReport(os.Stdout, results)
	if err != nil {
		log.Error("failed to write report", "error", err)
		return 1
	}
	return 0
}
