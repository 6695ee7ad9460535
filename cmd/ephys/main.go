// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Command ephys inspects electrophysiology recordings, aligns behavioral logs
// with hardware marker trains and cuts trial-aligned epochs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/OpenPSG/ephys/internal/monitoring"
)

const version = "0.1.0"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	global := flag.NewFlagSet("ephys", flag.ContinueOnError)
	quiet := global.Bool("quiet", false, "Suppress diagnostic logging")
	global.Usage = func() { printUsage(global.Output()) }
	if err := global.Parse(args); err != nil {
		return err
	}
	if *quiet {
		monitoring.SetLogger(nil)
	}

	if global.NArg() < 1 {
		printUsage(stdout)
		return errors.New("no command given")
	}

	command, rest := global.Arg(0), global.Args()[1:]
	switch command {
	case "info":
		return runInfo(rest, stdout)
	case "align":
		return runAlign(rest, stdout)
	case "epoch":
		return runEpoch(rest, stdout)
	case "psth":
		return runPSTH(rest, stdout)
	case "wav":
		return runWAV(rest, stdout)
	case "version":
		fmt.Fprintf(stdout, "ephys version %s\n", version)
		return nil
	case "help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stdout)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `ephys - electrophysiology recording toolkit

Usage: ephys [-quiet] <command> [options]

Commands:
  info     Summarize an EDF/EDF+ (.edf) or Neuralynx (.ncs) recording
  align    Validate a behavioral log against a hardware marker train
  epoch    Cut marker-aligned epochs and write the trial average
  psth     Peri-stimulus time histogram or cross-correlogram of a spike train
  wav      Export one channel as a 16-bit PCM WAV file
  version  Show the ephys version
  help     Show this help message

Run 'ephys <command> -h' for the options of a command.`)
}
