// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Package rename turns creation timestamps into file rename operations
// and carries them out.
package rename

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/bep/timestampname"
	"golang.org/x/text/unicode/norm"
)

// MaxFiles is the largest number of files a single run can handle.
const MaxFiles = 99999

// Operation renames From to To.
type Operation struct {
	From string
	To   string
}

func targetFileNameFormat(numberOfFiles int, noPrefix bool) (string, error) {
	if numberOfFiles > MaxFiles {
		return "", &timestampname.EnvFailure{Operation: fmt.Sprintf("too many files: %d", numberOfFiles)}
	}
	if noPrefix {
		return "%[2]s%[3]s", nil
	}
	switch {
	case numberOfFiles < 10:
		return "%d-%s%s", nil
	case numberOfFiles < 100:
		return "%02d-%s%s", nil
	case numberOfFiles < 1000:
		return "%03d-%s%s", nil
	case numberOfFiles < 10000:
		return "%04d-%s%s", nil
	default:
		return "%05d-%s%s", nil
	}
}

// PrepareRenameOperations sorts files by creation timestamp and assigns
// each file its target name. Files with the same timestamp are ordered by
// name length first, then by name, so that Android style same-second names
// keep their order:
//
//	20180430_184327.jpg
//	20180430_184327(0).jpg
//
// Names are compared byte by byte, as found on disk.
func PrepareRenameOperations(files []timestampname.FileMetadata, noPrefix bool) ([]Operation, error) {
	format, err := targetFileNameFormat(len(files), noPrefix)
	if err != nil {
		return nil, err
	}

	items := make([]timestampname.FileMetadata, len(files))
	copy(items, files)

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.CreationTimestamp != b.CreationTimestamp {
			return a.CreationTimestamp < b.CreationTimestamp
		}
		if len(a.FileName) != len(b.FileName) {
			return len(a.FileName) < len(b.FileName)
		}
		return a.FileName < b.FileName
	})

	for i := 1; i < len(items); i++ {
		a, b := items[i-1], items[i]
		if a.CreationTimestamp == b.CreationTimestamp && a.FileName == b.FileName {
			return nil, &timestampname.FileFailure{File: b.FileName, Description: "encountered twice"}
		}
	}

	operations := make([]Operation, len(items))
	for i, md := range items {
		operations[i] = Operation{
			From: md.FileName,
			To:   fmt.Sprintf(format, i+1, md.CreationTimestamp, md.Extension),
		}
	}

	return operations, nil
}

// displayName returns name composed to Unicode normal form C, so that
// decomposed accents print and pad as one character.
func displayName(name string) string {
	return norm.NFC.String(name)
}

// LongestSourceName returns the length in runes of the longest From name
// as printed by VerifyOperations.
func LongestSourceName(operations []Operation) int {
	var longest int
	for _, op := range operations {
		if n := utf8.RuneCountInString(displayName(op.From)); n > longest {
			longest = n
		}
	}
	return longest
}
