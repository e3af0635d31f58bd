// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rename

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bep/timestampname"
	"github.com/hashicorp/go-multierror"
)

// VerifyOperations prints the operations to w and checks that no two
// operations share a target name and that no target exists in dir
// unless it is the source itself. All problems found are returned.
func VerifyOperations(dir string, operations []Operation, w io.Writer) error {
	longest := LongestSourceName(operations)
	targets := make(map[string]bool, len(operations))

	var result *multierror.Error
	for _, op := range operations {
		fmt.Fprintf(w, "    %[3]*[1]s    =>    %[2]s\n", displayName(op.From), op.To, longest)

		if targets[op.To] {
			result = multierror.Append(result, &timestampname.FileFailure{
				File:        op.From,
				Description: fmt.Sprintf("target file name duplicate: %s", op.To),
			})
		}
		targets[op.To] = true

		if op.From != op.To {
			if _, err := os.Lstat(filepath.Join(dir, op.To)); err == nil {
				result = multierror.Append(result, &timestampname.FileFailure{
					File:        op.From,
					Description: fmt.Sprintf("target file exists on the file system: %s", op.To),
				})
			}
		}
	}

	return result.ErrorOrNil()
}
