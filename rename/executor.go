// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rename

import (
	"os"
	"path/filepath"

	"github.com/bep/timestampname"
)

// lockedMode is the permission of a renamed file.
const lockedMode os.FileMode = 0o444

// ExecuteOperations renames the files in dir and makes them read-only.
// If dryRun is set, nothing is changed on disk.
// The optional progress func is called before each operation.
func ExecuteOperations(dir string, operations []Operation, dryRun bool, progress func(i, n int)) error {
	for i, op := range operations {
		if progress != nil {
			progress(i+1, len(operations))
		}
		if dryRun {
			continue
		}
		from, to := filepath.Join(dir, op.From), filepath.Join(dir, op.To)
		if err := os.Rename(from, to); err != nil {
			return &timestampname.FileFailure{File: op.From, Description: "failed to rename file to " + op.To, Cause: err}
		}
		if err := os.Chmod(to, lockedMode); err != nil {
			return &timestampname.FileFailure{File: op.To, Description: "failed to change permissions", Cause: err}
		}
	}
	return nil
}
