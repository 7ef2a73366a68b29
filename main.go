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

// elCNV detects copy-number variation in binned alignment data. It
// counts reads per bin, corrects the counts for GC bias, builds
// reference databases of similar bins from a cohort of samples, and
// scores new samples against such a database.
//
// Please see https://github.com/exascience/elcnv for a documentation
// of the tool, and below for the API documentation.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/exascience/elcnv/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: count, gc-correct, gc, newref, zscore, fasta-to-elfasta, fasta-index")
	fmt.Fprint(os.Stderr, "\n", cmd.CountHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.GcCorrectHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.GcHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.NewrefHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.ZscoreHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.FastaToElfastaHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.FastaIndexHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "count":
		err = cmd.Count()
	case "gc-correct":
		err = cmd.GcCorrect()
	case "gc":
		err = cmd.Gc()
	case "newref":
		err = cmd.Newref()
	case "zscore":
		err = cmd.Zscore()
	case "fasta-to-elfasta":
		err = cmd.FastaToElfasta()
	case "fasta-index":
		err = cmd.FastaIndex()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Println("Unknown command:", os.Args[1])
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}
