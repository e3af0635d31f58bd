// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rename

import (
	"fmt"
	"io"

	"github.com/bep/timestampname"
)

// Config configures a Run.
type Config struct {
	// DryRun prints the operations without renaming anything.
	DryRun bool
	// NoPrefix drops the counter prefix from the target names.
	NoPrefix bool
	// UTC formats MP4 timestamps in UTC.
	UTC bool
	// Debugf receives decoder trace output.
	Debugf func(string, ...any)
}

// Run renames all supported files in dir after their creation timestamp.
// It stops at the first file that fails to decode.
func Run(dir string, cfg Config, out io.Writer) error {
	fmt.Fprint(out, "Scanning for files...")
	files, err := ListFiles(dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, " %d files found.\n", len(files))

	opts := timestampname.Options{UTC: cfg.UTC, Debugf: cfg.Debugf}

	var collected []timestampname.FileMetadata
	for i, file := range files {
		fmt.Fprintf(out, "\rProcessing files: %d/%d...", i+1, len(files))
		md, ok, err := timestampname.Extract(file, opts)
		if err != nil {
			fmt.Fprintln(out)
			return err
		}
		if ok {
			collected = append(collected, md)
		}
	}
	fmt.Fprintf(out, " %d supported files found.\n", len(collected))

	if len(collected) == 0 {
		fmt.Fprintln(out, "No supported files found.")
		return nil
	}

	fmt.Fprint(out, "Preparing rename operations...")
	operations, err := PrepareRenameOperations(collected, cfg.NoPrefix)
	if err != nil {
		fmt.Fprintln(out)
		return err
	}
	fmt.Fprintln(out, " done.")

	fmt.Fprintln(out, "Verifying:")
	if err := VerifyOperations(dir, operations, out); err != nil {
		return err
	}
	fmt.Fprintln(out, "done.")

	err = ExecuteOperations(dir, operations, cfg.DryRun, func(i, n int) {
		fmt.Fprintf(out, "\rRenaming files: %d/%d", i, n)
	})
	if err != nil {
		fmt.Fprintln(out)
		return err
	}
	fmt.Fprintln(out, " done.")

	fmt.Fprintln(out, "\nFinished.")
	return nil
}
