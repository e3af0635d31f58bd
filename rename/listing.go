// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rename

import (
	"os"
	"path/filepath"

	"github.com/bep/timestampname"
)

// ListFiles returns the paths of the regular files in dir, sorted by name.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &timestampname.EnvFailure{Operation: "Failed to list directory contents", Cause: err}
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}
