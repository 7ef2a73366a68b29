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

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/exascience/elcnv/bed"
	"github.com/exascience/elcnv/fasta"
	"github.com/exascience/elcnv/gc"
	"github.com/exascience/elcnv/internal"
	"github.com/exascience/elcnv/intervals"
	"github.com/exascience/elcnv/utils"
)

// GcCorrectHelp is the help string for this command.
const GcCorrectHelp = "gc-correct parameters:\n" +
	"elcnv gc-correct --input bed-file --output bed-file --reference fasta-file\n" +
	"[--frac-n f]\n" +
	"[--frac-r f]\n" +
	"[--iter n]\n" +
	"[--frac-lowess f]\n" +
	"[--plot image-file]\n" +
	"[--nr-of-threads n]\n" +
	"[--timed]\n" +
	"[--log-path path]\n"

type gcCorrectArgs struct {
	commonArgs
	Input      string  `arg:"-I,--input,required" help:"BED file with read counts per bin"`
	Output     string  `arg:"-O,--output,required" help:"output BED file with corrected values"`
	FracN      float64 `arg:"-n,--frac-n" default:"0.1" help:"maximum fraction of ambiguous bases per bin"`
	FracR      float64 `arg:"-r,--frac-r" default:"0.0001" help:"minimum number of reads per base"`
	Iter       int     `arg:"-t,--iter" default:"3" help:"number of lowess robustness iterations"`
	FracLowess float64 `arg:"-l,--frac-lowess" default:"0.1" help:"fraction of bins used for each local fit"`
	Plot       string  `arg:"--plot" help:"write a plot of the GC fit to the specified image file"`
	Threads    int     `arg:"--nr-of-threads" help:"number of worker threads"`
	Timed      bool    `arg:"--timed" help:"measure the runtime"`
}

// GcCorrect implements the elcnv gc-correct command.
func GcCorrect() error {
	var args gcCorrectArgs
	parseArgs("gc-correct", &args, GcCorrectHelp)

	if err := setLogOutput(args.LogPath); err != nil {
		return err
	}

	// sanity checks

	sanityChecksFailed := !args.check(true)
	if !checkExist("--input", args.Input) {
		sanityChecksFailed = true
	}
	if !checkCreate("--output", args.Output) {
		sanityChecksFailed = true
	}
	if args.Plot != "" && !checkCreate("--plot", args.Plot) {
		sanityChecksFailed = true
	}
	if !checkThreads(args.Threads) {
		sanityChecksFailed = true
	}
	config := gc.DefaultConfig()
	config.FracN, config.FracR, config.Iterations, config.Frac = args.FracN, args.FracR, args.Iter, args.FracLowess
	if err := config.Validate(); err != nil {
		log.Println("Error:", err)
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, GcCorrectHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " gc-correct --input ", fullPath(args.Input), " --output ", fullPath(args.Output), args.commandLine())
	fmt.Fprint(&command, " --frac-n ", args.FracN, " --frac-r ", args.FracR, " --iter ", args.Iter, " --frac-lowess ", args.FracLowess)
	if args.Plot != "" {
		fmt.Fprint(&command, " --plot ", args.Plot)
	}
	if args.Threads > 0 {
		fmt.Fprint(&command, " --nr-of-threads ", args.Threads)
	}
	if args.Timed {
		fmt.Fprint(&command, " --timed")
	}

	// executing command

	log.Println("Executing command:\n", command.String())

	regions, err := bed.ReadRegions(args.Input)
	if err != nil {
		return err
	}
	if args.BinFile != "" {
		layout, err := bed.ReadLayout(args.BinFile)
		if err != nil {
			return err
		}
		if err := checkLayout(args.Input, layout, regions); err != nil {
			return err
		}
	}

	var result gc.Result
	var correctErr error
	if err := timedRun(args.Timed, "", "Correcting GC bias.", 1, func() (err error) {
		ref, err := fasta.Open(args.Reference)
		if err != nil {
			return err
		}
		defer internal.Close(ref, &err)
		result, correctErr = gc.CorrectWithReference(regions, ref, config)
		if correctErr != nil && !errors.Is(correctErr, utils.ErrInsufficientData) {
			return correctErr
		}
		return nil
	}); err != nil {
		return err
	}
	log.Printf("%v of %v bins are usable.\n", result.Usable.Count(), len(regions))

	if err := timedRun(args.Timed, "", "Writing corrected values.", 2, func() error {
		return bed.WriteRegions(args.Output, result.Regions)
	}); err != nil {
		return err
	}
	if correctErr != nil {
		return correctErr
	}
	if args.Plot != "" {
		return gc.PlotFit(result.Fit, args.Input, args.Plot)
	}
	return nil
}

// GcHelp is the help string for this command.
const GcHelp = "gc parameters:\n" +
	"elcnv gc --reference fasta-file --output bed-file\n" +
	"[--binsize n]\n" +
	"[--bin-file bed-file]\n" +
	"[--nr-of-threads n]\n" +
	"[--log-path path]\n"

type gcArgs struct {
	commonArgs
	Output  string `arg:"-O,--output,required" help:"output BED file with the number of GC bases per bin"`
	Threads int    `arg:"--nr-of-threads" help:"number of worker threads"`
}

// Gc implements the elcnv gc command.
func Gc() (err error) {
	var args gcArgs
	parseArgs("gc", &args, GcHelp)

	if err := setLogOutput(args.LogPath); err != nil {
		return err
	}

	// sanity checks

	sanityChecksFailed := !args.check(true)
	if !checkCreate("--output", args.Output) {
		sanityChecksFailed = true
	}
	if !checkThreads(args.Threads) {
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, GcHelp)
		os.Exit(1)
	}

	log.Println("Executing command:\n", os.Args[0], " gc --output ", fullPath(args.Output), args.commandLine())

	ref, err := fasta.Open(args.Reference)
	if err != nil {
		return err
	}
	defer internal.Close(ref, &err)
	layout, err := args.layout(func() ([]intervals.Contig, error) {
		return ref.Contigs(), nil
	})
	if err != nil {
		return err
	}
	profile, err := gc.Profile(ref, layout)
	if err != nil {
		return err
	}
	regions := make([]bed.Region, len(layout))
	for i, p := range layout {
		regions[i] = bed.Region{Position: p, Value: float64(profile[i].GC)}
	}
	return bed.WriteRegions(args.Output, regions)
}
