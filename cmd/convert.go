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
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/exascience/elcnv/fasta"
	"github.com/exascience/elcnv/internal"
)

// FastaToElfastaHelp is the help string for this command.
const FastaToElfastaHelp = "fasta-to-elfasta parameters:\n" +
	"elcnv fasta-to-elfasta fasta-file elfasta-file\n" +
	"[--log-path path]\n"

type convertArgs struct {
	Input   string `arg:"positional,required" help:"input FASTA file"`
	Output  string `arg:"positional,required" help:"output file"`
	LogPath string `arg:"--log-path" help:"write log files to the specified directory"`
}

// FastaToElfasta implements the elcnv fasta-to-elfasta command.
func FastaToElfasta() (err error) {
	var args convertArgs
	parseArgs("fasta-to-elfasta", &args, FastaToElfastaHelp)

	if err := setLogOutput(args.LogPath); err != nil {
		return err
	}

	if !checkExist("", args.Input) || !checkCreate("", args.Output) {
		fmt.Fprint(os.Stderr, FastaToElfastaHelp)
		os.Exit(1)
	}

	ref, err := fasta.Open(args.Input)
	if err != nil {
		return err
	}
	defer internal.Close(ref, &err)
	log.Printf("Converting %v contigs.\n", len(ref.Contigs()))
	return fasta.ToElfasta(ref, args.Output)
}

// FastaIndexHelp is the help string for this command.
const FastaIndexHelp = "fasta-index parameters:\n" +
	"elcnv fasta-index fasta-file fai-file\n" +
	"[--log-path path]\n"

// FastaIndex implements the elcnv fasta-index command.
func FastaIndex() (err error) {
	var args convertArgs
	parseArgs("fasta-index", &args, FastaIndexHelp)

	if err := setLogOutput(args.LogPath); err != nil {
		return err
	}

	if !checkExist("", args.Input) || !checkCreate("", args.Output) {
		fmt.Fprint(os.Stderr, FastaIndexHelp)
		os.Exit(1)
	}

	in, err := os.Open(args.Input)
	if err != nil {
		return err
	}
	defer internal.Close(in, &err)
	fai, err := fasta.BuildFai(in)
	if err != nil {
		return err
	}
	out, err := os.Create(args.Output)
	if err != nil {
		return err
	}
	defer internal.Close(out, &err)
	return fasta.WriteFai(out, fai)
}
