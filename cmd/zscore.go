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
	"github.com/exascience/elcnv/zscore"
)

// ZscoreHelp is the help string for this command.
const ZscoreHelp = "zscore parameters:\n" +
	"elcnv zscore --input bed-file --dictionary-file bed-file --output bed-file\n" +
	"[--timed]\n" +
	"[--log-path path]\n"

type zscoreArgs struct {
	Input          string `arg:"-I,--input,required" help:"GC-corrected BED file of the sample to score"`
	DictionaryFile string `arg:"-D,--dictionary-file,required" help:"reference database created with elcnv newref"`
	Output         string `arg:"-O,--output,required" help:"output BED file with one z-score per bin"`
	Timed          bool   `arg:"--timed" help:"measure the runtime"`
	LogPath        string `arg:"--log-path" help:"write log files to the specified directory"`
}

// Zscore implements the elcnv zscore command.
func Zscore() error {
	var args zscoreArgs
	parseArgs("zscore", &args, ZscoreHelp)

	if err := setLogOutput(args.LogPath); err != nil {
		return err
	}

	// sanity checks

	var sanityChecksFailed bool
	if !checkExist("--input", args.Input) {
		sanityChecksFailed = true
	}
	if !checkExist("--dictionary-file", args.DictionaryFile) {
		sanityChecksFailed = true
	}
	if !checkCreate("--output", args.Output) {
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, ZscoreHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " zscore --input ", fullPath(args.Input), " --dictionary-file ", fullPath(args.DictionaryFile), " --output ", fullPath(args.Output))
	if args.Timed {
		fmt.Fprint(&command, " --timed")
	}
	if args.LogPath != "" {
		fmt.Fprint(&command, " --log-path ", args.LogPath)
	}

	// executing command

	log.Println("Executing command:\n", command.String())

	var index *zscore.Index
	if err := timedRun(args.Timed, "", "Building reference index.", 1, func() (err error) {
		progress, finish := newProgress()
		defer finish()
		index, err = zscore.BuildIndex(zscore.FileSource(args.DictionaryFile), progress)
		return err
	}); err != nil {
		return err
	}

	var scores []bed.Region
	if err := timedRun(args.Timed, "", "Calculating z-scores.", 2, func() error {
		query, err := bed.ReadRegions(args.Input)
		if err != nil {
			return err
		}
		progress, finish := newProgress()
		defer finish()
		scores, err = index.Score(query, progress)
		return err
	}); err != nil {
		return err
	}

	return bed.WriteRegions(args.Output, scores)
}
