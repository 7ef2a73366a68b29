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
	"github.com/exascience/elcnv/reference"
)

// NewrefHelp is the help string for this command.
const NewrefHelp = "newref parameters:\n" +
	"elcnv newref --input bed-file [--input bed-file ...] --output bed-file\n" +
	"(--reference fasta-file [--binsize n] | --bin-file bed-file)\n" +
	"[--n-bins n]\n" +
	"[--timed]\n" +
	"[--log-path path]\n"

type newrefArgs struct {
	commonArgs
	Input  []string `arg:"-I,--input,required,separate" help:"GC-corrected BED file of a reference sample (repeatable)"`
	Output string   `arg:"-O,--output,required" help:"output reference database; a .gz name gives BGZF compressed output"`
	NBins  int      `arg:"-n,--n-bins" default:"250" help:"number of similar bins to consider per bin"`
	Timed  bool     `arg:"--timed" help:"measure the runtime"`
}

// Newref implements the elcnv newref command.
func Newref() error {
	var args newrefArgs
	parseArgs("newref", &args, NewrefHelp)

	if err := setLogOutput(args.LogPath); err != nil {
		return err
	}

	// sanity checks

	sanityChecksFailed := !args.check(false)
	if args.Reference == "" && args.BinFile == "" {
		log.Println("Error: Either --reference or --bin-file is required to determine the bin layout.")
		sanityChecksFailed = true
	}
	for _, input := range args.Input {
		if !checkExist("--input", input) {
			sanityChecksFailed = true
		}
	}
	if !checkCreate("--output", args.Output) {
		sanityChecksFailed = true
	}
	if args.NBins < 1 {
		log.Println("Error: Invalid n-bins: ", args.NBins)
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, NewrefHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " newref")
	for _, input := range args.Input {
		fmt.Fprint(&command, " --input ", fullPath(input))
	}
	fmt.Fprint(&command, " --output ", fullPath(args.Output), args.commandLine(), " --n-bins ", args.NBins)
	if args.Timed {
		fmt.Fprint(&command, " --timed")
	}

	// executing command

	log.Println("Executing command:\n", command.String())

	layout, err := args.layout(args.referenceContigs)
	if err != nil {
		return err
	}

	var builder *reference.Builder
	if err := timedRun(args.Timed, "", "Ranking bins.", 1, func() (err error) {
		samples := make([]bed.Region, 0, len(layout)*len(args.Input))
		for _, input := range args.Input {
			regions, err := bed.ReadRegions(input)
			if err != nil {
				return err
			}
			if err := checkLayout(input, layout, regions); err != nil {
				return err
			}
			samples = append(samples, regions...)
		}
		builder, err = reference.NewBuilder(layout, samples, args.NBins)
		return err
	}); err != nil {
		return err
	}

	return timedRun(args.Timed, "", "Writing reference database.", 2, func() (err error) {
		w, err := bed.Create(args.Output)
		if err != nil {
			return err
		}
		defer internal.Close(w, &err)
		progress, finish := newProgress()
		defer finish()
		return reference.WriteDatabase(w, builder, progress)
	})
}
