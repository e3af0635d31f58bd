// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package timestampname

import (
	"encoding/binary"
)

// https://www.media.mit.edu/pia/Research/deepview/exif.html
// https://www.fileformat.info/format/jpeg/egff.htm

const (
	markerSOI        = 0xffd8
	markerApp1EXIF   = 0xffe1
	exifHeader       = "Exif"
	exifHeaderSuffix = 0x0000
)

type imageDecoderJPEG struct {
	*baseDecoder
}

func (e *imageDecoderJPEG) decode() (string, error) {
	// JPEG SOI marker.
	soi, err := e.read2(binary.BigEndian)
	if err != nil {
		return "", wrapf(err, "reading jpeg header")
	}
	if soi != markerSOI {
		return "", newInvalidFormatErrorf("unexpected JPEG SOI: %#x", soi)
	}

	for {
		marker, err := e.read2(binary.BigEndian)
		if err != nil {
			return "", wrapf(err, "reading jpeg field marker")
		}
		// The value includes the 2 bytes for the length itself.
		length, err := e.read2(binary.BigEndian)
		if err != nil {
			return "", wrapf(err, "reading jpeg field length")
		}

		if marker == markerApp1EXIF {
			return e.handleEXIF(int64(length))
		}

		if length < 2 {
			return "", newInvalidFormatErrorf("invalid length %d for jpeg field %#x", length, marker)
		}
		e.opts.Debugf("JPEG skipping field %#x of length %d", marker, length)
		if err := e.skip(int64(length) - 2); err != nil {
			return "", wrapf(err, "fast-forward jpeg field")
		}
	}
}

func (e *imageDecoderJPEG) handleEXIF(length int64) (string, error) {
	header, err := e.readString(4)
	if err != nil {
		return "", wrapf(err, "reading jpeg exif header")
	}
	suffix, err := e.read2(binary.BigEndian)
	if err != nil {
		return "", wrapf(err, "reading jpeg exif header suffix")
	}
	if header != exifHeader || suffix != exifHeaderSuffix {
		return "", newInvalidFormatErrorf("JPEG APP1 field does not have valid Exif header")
	}

	// The rest of the segment is a TIFF stream:
	//   -2 field length
	//   -4 exif header
	//   -2 exif header suffix
	if length < 8 {
		return "", newInvalidFormatErrorf("invalid length %d for jpeg APP1 field", length)
	}
	tiff, err := e.section(length - 8)
	if err != nil {
		return "", wrapf(err, "jpeg APP1 field exceeds file")
	}

	return (&imageDecoderTIFF{baseDecoder: e.withReader(tiff)}).decode()
}
