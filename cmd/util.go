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
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/exascience/elcnv/bed"
	"github.com/exascience/elcnv/fasta"
	"github.com/exascience/elcnv/internal"
	"github.com/exascience/elcnv/intervals"
	"github.com/exascience/elcnv/utils"
)

// ProgramMessage is the first line printed when the elcnv binary is
// called.
var ProgramMessage string

func init() {
	ProgramMessage = fmt.Sprint(
		"\n", utils.ProgramName, " version ", utils.ProgramVersion,
		" compiled with ", runtime.Version(),
		" - see ", utils.ProgramURL, " for more information.\n",
	)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

// HelpMessage is printed to show the --help flag
const HelpMessage = "Print command details:\n" +
	"[--help]\n"

// parseArgs parses the parameters following the command name into
// dest. The help string is printed when parsing fails, or when help
// is requested.
func parseArgs(command string, dest interface{}, help string) {
	parser, err := arg.NewParser(arg.Config{Program: utils.ProgramName + " " + command}, dest)
	if err != nil {
		log.Panic(err)
	}
	if err = parser.Parse(os.Args[2:]); err != nil {
		x := 0
		if err != arg.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			x = 1
		}
		fmt.Fprint(os.Stderr, help)
		os.Exit(x)
	}
}

// commonArgs are the parameters shared by all commands that work on a
// bin layout.
type commonArgs struct {
	Binsize   int32  `arg:"-B,--binsize" default:"50000" help:"width of the bins"`
	Reference string `arg:"-R,--reference" help:"reference genome (FASTA, FAI-indexed FASTA, or .elfasta)"`
	BinFile   string `arg:"-L,--bin-file" help:"BED file with the bin layout, overrides --binsize"`
	LogPath   string `arg:"--log-path" help:"write log files to the specified directory"`
}

func (args *commonArgs) check(needReference bool) bool {
	ok := true
	if args.Binsize <= 0 {
		log.Println("Error: Invalid binsize: ", args.Binsize)
		ok = false
	}
	if needReference || args.Reference != "" {
		if !checkExist("--reference", args.Reference) {
			ok = false
		}
	}
	if args.BinFile != "" && !checkExist("--bin-file", args.BinFile) {
		ok = false
	}
	return ok
}

func (args *commonArgs) commandLine() string {
	s := fmt.Sprint(" --binsize ", args.Binsize)
	if args.Reference != "" {
		s += " --reference " + fullPath(args.Reference)
	}
	if args.BinFile != "" {
		s += " --bin-file " + fullPath(args.BinFile)
	}
	if args.LogPath != "" {
		s += " --log-path " + args.LogPath
	}
	return s
}

// layout returns the bin layout: the bins of the bin file if one is
// given, and otherwise the partition of the given contigs.
func (args *commonArgs) layout(contigs func() ([]intervals.Contig, error)) ([]bed.Position, error) {
	if args.BinFile != "" {
		return bed.ReadLayout(args.BinFile)
	}
	list, err := contigs()
	if err != nil {
		return nil, err
	}
	return intervals.Layout(list, args.Binsize)
}

// referenceContigs returns the contigs of the --reference file.
func (args *commonArgs) referenceContigs() ([]intervals.Contig, error) {
	ref, err := fasta.Open(args.Reference)
	if err != nil {
		return nil, err
	}
	contigs := ref.Contigs()
	return contigs, ref.Close()
}

// fullPath returns the absolute version of filename for reporting
// purposes, or filename itself if it cannot be determined.
func fullPath(filename string) string {
	if path, err := internal.FullPathname(filename); err == nil {
		return path
	}
	return filename
}

func logCheckFile(parameter, format string, v ...interface{}) {
	if parameter != "" {
		log.Printf(format+" for command line parameter %v.\n", append(v, parameter)...)
	} else {
		log.Printf(format+".\n", v...)
	}
}

func checkExist(parameter, filename string) bool {
	if len(filename) == 0 {
		logCheckFile(parameter, "Error: Missing filename")
		return false
	}
	if filename[0] == '-' {
		logCheckFile(parameter, "Error: Missing filename before %v", filename)
		return false
	}
	if _, err := os.Stat(filename); err == nil {
		return true
	} else if os.IsNotExist(err) {
		logCheckFile(parameter, "Error: File %v does not exist", filename)
		return false
	} else if os.IsPermission(err) {
		logCheckFile(parameter, "Error: No permission to read file %v", filename)
		return false
	} else {
		logCheckFile(parameter, "Error %v when trying to access file %v", err, filename)
		return false
	}
}

func checkCreate(parameter, filename string) bool {
	if len(filename) == 0 {
		logCheckFile(parameter, "Error: Missing filename")
		return false
	}
	if filename[0] == '-' {
		logCheckFile(parameter, "Error: Missing filename before %v", filename)
		return false
	}
	if _, err := os.Stat(filename); err == nil {
		// Assume that the file has been written by previous elcnv runs, and can be overwritten.
		return true
	}
	err := os.MkdirAll(filepath.Dir(filename), 0700)
	if err == nil {
		err = os.WriteFile(filename, nil, 0666)
	}
	if err != nil {
		if os.IsPermission(err) {
			logCheckFile(parameter, "Error: No permission to create file %v", filename)
		} else {
			logCheckFile(parameter, "Error %v when trying to create file %v", err, filename)
		}
		return false
	}
	_ = os.Remove(filename)
	return true
}

func checkThreads(nrOfThreads int) bool {
	if nrOfThreads < 0 {
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
		return false
	}
	if nrOfThreads > 0 {
		runtime.GOMAXPROCS(nrOfThreads)
	}
	return true
}

func createLogFilename() string {
	t := time.Now()
	zone, _ := t.Zone()
	return fmt.Sprintf("logs/elcnv/elcnv-%d-%02d-%02d-%02d-%02d-%02d-%09d-%v-%v.log", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), zone, uuid.New())
}

// setLogOutput creates a log file for this run, and duplicates all
// output to stderr into it.
func setLogOutput(path string) error {
	logPath := createLogFilename()
	var logFile string
	if path == "" {
		logFile = filepath.Join(os.Getenv("HOME"), logPath)
	} else {
		logFile = filepath.Join(path, logPath)
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0700); err != nil {
		return errors.Wrap(err, "creating log directory")
	}
	f, err := os.Create(logFile)
	if err != nil {
		return errors.Wrap(err, "creating log file")
	}
	fmt.Fprintln(f, ProgramMessage)

	orgStderr, err := unix.Dup(2)
	if err != nil {
		return errors.Wrap(err, "duplicating stderr")
	}
	ferr := os.NewFile(uintptr(orgStderr), "/dev/stderr")
	if err := unix.Dup2(int(f.Fd()), 2); err != nil {
		return errors.Wrap(err, "redirecting stderr")
	}

	log.SetOutput(io.MultiWriter(f, ferr))
	log.Println("Created log file at", logFile)
	log.Println("Command line:", os.Args)
	return nil
}

func timedRun(timed bool, profile, msg string, phase int64, f func() error) (err error) {
	if profile != "" {
		filename := profile + strconv.FormatInt(phase, 10) + ".prof"
		file, ferr := os.Create(filename)
		if ferr != nil {
			return ferr
		}
		defer internal.Close(file, &err)
		if err := pprof.StartCPUProfile(file); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}
	if timed {
		log.Println(msg)
		start := time.Now()
		defer func() {
			log.Println("Elapsed time: ", time.Since(start))
		}()
	}
	return f()
}

// newProgress returns a progress observer that draws a progress bar on
// stderr, and a function that finishes the bar.
func newProgress() (*utils.Progress, func()) {
	var bar *pb.ProgressBar
	progress := &utils.Progress{
		Every: 1000,
		Notify: func(done, total int) {
			if bar == nil {
				bar = pb.Full.Start(total)
			}
			bar.SetCurrent(int64(done))
		},
	}
	return progress, func() {
		if bar != nil {
			bar.Finish()
		}
	}
}

// checkLayout verifies that the regions read from filename have
// exactly the positions of the layout.
func checkLayout(filename string, layout []bed.Position, regions []bed.Region) error {
	return errors.Wrapf(intervals.CheckLayout(layout, bed.Positions(regions)), "bins of %v", filename)
}
