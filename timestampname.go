// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Package timestampname extracts the creation timestamp of a media file
// from its native metadata container.
//
// All decoders return the timestamp in the canonical form YYYYMMDD-HHMMSS,
// which orders the same way lexicographically and chronologically.
package timestampname

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ImageFormatAuto signals that the format is not known.
	ImageFormatAuto ImageFormat = iota
	// TIFF is a TIFF structured file, e.g. NEF or DNG raw files.
	TIFF
	// JPEG is the JPEG image format with an Exif APP1 segment.
	JPEG
	// MP4 is the ISO Base Media File Format (QuickTime family) movie format.
	MP4
	// CR3 is the Canon raw format, built on ISO Base Media File Format boxes.
	CR3
)

// canonicalLayout is the time layout of a canonical timestamp.
const canonicalLayout = "20060102-150405"

// ImageFormat is the media file format.
type ImageFormat int

func (f ImageFormat) String() string {
	switch f {
	case ImageFormatAuto:
		return "ImageFormatAuto"
	case TIFF:
		return "TIFF"
	case JPEG:
		return "JPEG"
	case MP4:
		return "MP4"
	case CR3:
		return "CR3"
	default:
		return fmt.Sprintf("ImageFormat(%d)", int(f))
	}
}

var extensionFormats = map[string]ImageFormat{
	"nef":  TIFF,
	"dng":  TIFF,
	"mp4":  MP4,
	"cr3":  CR3,
	"jpg":  JPEG,
	"jpeg": JPEG,
}

// FormatFromExtension returns the format for the given file extension,
// with or without the leading dot. The match is case insensitive.
func FormatFromExtension(ext string) (ImageFormat, bool) {
	f, ok := extensionFormats[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return f, ok
}

// Options contains the options for the Decode function.
type Options struct {
	// The reader (typically a *os.File) to read metadata from.
	R io.ReaderAt

	// Size is the number of bytes readable from R.
	Size int64

	// The format of R.
	ImageFormat ImageFormat

	// If set, MP4 creation times are formatted in UTC, else in the local time zone.
	// Some producers store local time in the field, contrary to the container specification.
	// It has no effect on the other formats.
	UTC bool

	// Debugf will be called with trace output of the decoders.
	Debugf func(string, ...any)
}

// FileMetadata is the creation timestamp of a single file.
type FileMetadata struct {
	// FileName is the base name of the file.
	FileName string
	// CreationTimestamp in the form YYYYMMDD-HHMMSS.
	CreationTimestamp string
	// Extension is the lower cased extension including the leading dot.
	Extension string
}

// Decode reads the creation timestamp from opts.R.
func Decode(opts Options) (timestamp string, err error) {
	errFromRecover := func(r any) (err2 error) {
		if r == nil {
			return nil
		}
		if errp, ok := r.(error); ok {
			err2 = errp
		} else {
			err2 = fmt.Errorf("unknown panic: %v", r)
		}
		return
	}

	defer func() {
		err2 := errFromRecover(recover())
		if err == nil {
			err = err2
		}
		if err != nil {
			timestamp = ""
			if isInvalidFormatErrorCandidate(err) {
				err = newInvalidFormatError(err)
			}
		}
	}()

	if opts.R == nil {
		return "", errors.New("no reader provided")
	}
	if opts.ImageFormat == ImageFormatAuto {
		return "", errors.New("no image format provided")
	}
	if opts.Debugf == nil {
		opts.Debugf = func(string, ...any) {}
	}

	base := &baseDecoder{
		boundedReader: newBoundedReader(opts.R, opts.Size),
		opts:          opts,
	}

	var dec decoder

	switch opts.ImageFormat {
	case TIFF:
		dec = &imageDecoderTIFF{baseDecoder: base}
	case JPEG:
		dec = &imageDecoderJPEG{baseDecoder: base}
	case MP4:
		dec = &imageDecoderMP4{baseDecoder: base}
	case CR3:
		dec = &imageDecoderCR3{baseDecoder: base}
	default:
		return "", fmt.Errorf("unsupported image format")
	}

	return dec.decode()
}

// Extract decodes the creation timestamp of the file at path.
// If the extension of the file is not supported, ok is false and err is nil.
// Any failure to open or decode a supported file is returned as a *FileFailure.
func Extract(path string, opts Options) (md FileMetadata, ok bool, err error) {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	if ext == name {
		// A dot file such as ".jpg" has no extension.
		return md, false, nil
	}
	format, ok := FormatFromExtension(ext)
	if !ok {
		return md, false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return md, true, &FileFailure{File: name, Description: "failed to open file", Cause: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return md, true, &FileFailure{File: name, Description: "failed to get file metadata", Cause: err}
	}

	opts.R = f
	opts.Size = fi.Size()
	opts.ImageFormat = format

	ts, err := Decode(opts)
	if err != nil {
		return md, true, &FileFailure{File: name, Description: fmt.Sprintf("failed to decode %s", format), Cause: err}
	}

	return FileMetadata{
		FileName:          name,
		CreationTimestamp: ts,
		Extension:         strings.ToLower(ext),
	}, true, nil
}

type baseDecoder struct {
	*boundedReader
	opts Options
}

// withReader returns a copy of d reading from r.
func (d *baseDecoder) withReader(r *boundedReader) *baseDecoder {
	return &baseDecoder{
		boundedReader: r,
		opts:          d.opts,
	}
}
