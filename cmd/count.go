// elCNV: a tool for detecting copy-number variation in binned SAM/BAM data.
// Copyright (c) 2020-2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elcnv/blob/master/LICENSE.txt>.

package cmd

import (
	"bytes"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/exascience/elcnv/bed"
	"github.com/exascience/elcnv/internal"
	"github.com/exascience/elcnv/intervals"
	"github.com/exascience/elcnv/reads"
)

// CountHelp is the help string for this command.
const CountHelp = "count parameters:\n" +
	"elcnv count --input bam-file --output bed-file\n" +
	"[--binsize n]\n" +
	"[--reference fasta-file]\n" +
	"[--bin-file bed-file]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--log-path path]\n"

type countArgs struct {
	commonArgs
	Input   string `arg:"-I,--input,required" help:"coordinate-sorted BAM file with a .bai index"`
	Output  string `arg:"-O,--output,required" help:"output BED file with one read count per bin"`
	Timed   bool   `arg:"--timed" help:"measure the runtime"`
	Profile string `arg:"--profile" help:"write a runtime profile to the specified file(s)"`
}

// Count implements the elcnv count command.
func Count() (err error) {
	var args countArgs
	parseArgs("count", &args, CountHelp)

	if err := setLogOutput(args.LogPath); err != nil {
		return err
	}

	// sanity checks

	sanityChecksFailed := !args.check(false)
	if !checkExist("--input", args.Input) {
		sanityChecksFailed = true
	}
	if !checkExist("", reads.IndexFilename(args.Input)) {
		sanityChecksFailed = true
	}
	if !checkCreate("--output", args.Output) {
		sanityChecksFailed = true
	}
	if args.Profile != "" && !checkCreate("--profile", args.Profile) {
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, CountHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " count --input ", fullPath(args.Input), " --output ", fullPath(args.Output), args.commandLine())
	if args.Timed {
		fmt.Fprint(&command, " --timed")
	}
	if args.Profile != "" {
		fmt.Fprint(&command, " --profile ", args.Profile)
	}

	// executing command

	log.Println("Executing command:\n", command.String())

	bam, err := reads.OpenIndexedBam(args.Input)
	if err != nil {
		return err
	}
	defer internal.Close(bam, &err)

	contigs := func() ([]intervals.Contig, error) {
		return bam.Contigs(), nil
	}
	if args.Reference != "" {
		contigs = args.referenceContigs
	}
	layout, err := args.layout(contigs)
	if err != nil {
		return err
	}

	var regions []bed.Region
	if err := timedRun(args.Timed, args.Profile, "Counting reads per bin.", 1, func() error {
		progress, finish := newProgress()
		defer finish()
		regions = reads.CountBins(layout, bam, nil, progress)
		return nil
	}); err != nil {
		return err
	}
	return timedRun(args.Timed, "", "Writing read counts.", 2, func() error {
		return bed.WriteRegions(args.Output, regions)
	})
}
