// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package timestampname

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoDateTags is returned when a TIFF stream was walked completely
// without finding any of the date tags.
var ErrNoDateTags = errors.New("TIFF no date tags were found")

// InvalidFormatError is used when the format is invalid.
type InvalidFormatError struct {
	Err error
}

func (e *InvalidFormatError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *InvalidFormatError) Unwrap() error {
	return e.Err
}

// IsInvalidFormat reports whether the error was an InvalidFormatError.
func IsInvalidFormat(err error) bool {
	var e *InvalidFormatError
	return errors.As(err, &e)
}

func newInvalidFormatErrorf(format string, args ...any) error {
	return &InvalidFormatError{fmt.Errorf(format, args...)}
}

func newInvalidFormatError(err error) error {
	if err == nil || IsInvalidFormat(err) {
		return err
	}
	return &InvalidFormatError{err}
}

// isInvalidFormatErrorCandidate reports whether err was caused by the
// content of the stream rather than by the environment.
func isInvalidFormatErrorCandidate(err error) bool {
	var eod *EndOfDataError
	return errors.As(err, &eod) || errors.Is(err, errShortRead) || errors.Is(err, ErrNoDateTags)
}

// FileFailure is a failure tied to a single input file.
type FileFailure struct {
	File        string
	Description string
	Cause       error
}

func (f *FileFailure) Error() string {
	var sb strings.Builder
	sb.WriteString("\tFile: ")
	sb.WriteString(f.File)
	sb.WriteString("\n\tDescription: ")
	sb.WriteString(f.Description)
	if f.Cause != nil {
		sb.WriteString("\n\tCause: ")
		sb.WriteString(f.Cause.Error())
	}
	return sb.String()
}

// Unwrap returns the cause of the failure, if any.
func (f *FileFailure) Unwrap() error {
	return f.Cause
}

// EnvFailure is a failure of an operation not related to a specific file,
// e.g. listing the working directory.
type EnvFailure struct {
	Operation string
	Cause     error
}

func (f *EnvFailure) Error() string {
	if f.Cause == nil {
		return "\tOperation: " + f.Operation
	}
	return "\tOperation: " + f.Operation + "\n\tCause: " + f.Cause.Error()
}

// Unwrap returns the cause of the failure, if any.
func (f *EnvFailure) Unwrap() error {
	return f.Cause
}

// wrapf annotates err with a description, keeping it unwrappable.
func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
