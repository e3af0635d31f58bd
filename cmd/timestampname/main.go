// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Command timestampname renames the media files in the current directory
// after the creation timestamp stored in their metadata.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bep/timestampname"
	"github.com/bep/timestampname/rename"
	"go.uber.org/zap"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Renames supported files in the current directory to their creation timestamp.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	var cfg rename.Config
	var debug bool
	flag.BoolVar(&cfg.DryRun, "dry", false, "dry run")
	flag.BoolVar(&cfg.NoPrefix, "noprefix", false, "no counter prefix")
	flag.BoolVar(&cfg.UTC, "utc", false, "format MP4 timestamps in UTC")
	flag.BoolVar(&debug, "debug", false, "debug output")
	flag.Parse()

	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unrecognized argument: %s\n", flag.Arg(0))
		os.Exit(1)
	}

	logger := zap.NewNop()
	if debug {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
			os.Exit(1)
		}
		logger = l
	}
	defer logger.Sync()
	cfg.Debugf = logger.Sugar().Debugf

	if err := run(cfg); err != nil {
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Failure:\n%s\n", err)
		os.Exit(1)
	}
}

func run(cfg rename.Config) error {
	dir, err := os.Getwd()
	if err != nil {
		return &timestampname.EnvFailure{Operation: "Get current working directory", Cause: err}
	}
	return rename.Run(dir, cfg, os.Stdout)
}
