// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package timestampname

import (
	"encoding/binary"
	"math"
	"time"
)

// Seconds between 1904-01-01 and 1970-01-01.
const mp4EpochOffset = 2082844800

type imageDecoderMP4 struct {
	*baseDecoder
}

func (e *imageDecoderMP4) decode() (string, error) {
	moov, err := e.searchBox(fccMoov)
	if err != nil {
		return "", wrapf(err, "moov box not found")
	}
	mvhd, err := e.withReader(moov).searchBox(fccMvhd)
	if err != nil {
		return "", wrapf(err, "mvhd box not found")
	}

	versionAndFlags, err := mvhd.read4(binary.BigEndian)
	if err != nil {
		return "", wrapf(err, "failed to read mvhd version")
	}

	var creationTime uint64
	switch version := versionAndFlags >> 24; version {
	case 0:
		ct, err := mvhd.read4(binary.BigEndian)
		if err != nil {
			return "", wrapf(err, "failed to read creation time")
		}
		if _, err := mvhd.read4(binary.BigEndian); err != nil {
			return "", wrapf(err, "failed to read modification time")
		}
		creationTime = uint64(ct)
	case 1:
		ct, err := mvhd.read8(binary.BigEndian)
		if err != nil {
			return "", wrapf(err, "failed to read creation time")
		}
		if _, err := mvhd.read8(binary.BigEndian); err != nil {
			return "", wrapf(err, "failed to read modification time")
		}
		creationTime = ct
	default:
		return "", newInvalidFormatErrorf("unsupported mvhd version: %d", version)
	}

	return formatMP4Timestamp(creationTime, e.opts.UTC)
}

// formatMP4Timestamp converts seconds since 1904-01-01 to a canonical timestamp.
func formatMP4Timestamp(seconds uint64, utc bool) (string, error) {
	if seconds < mp4EpochOffset {
		return "", newInvalidFormatErrorf("mp4 timestamp overflows i64: %d is before the unix epoch", seconds)
	}
	unixSeconds := seconds - mp4EpochOffset
	if unixSeconds > math.MaxInt64 {
		return "", newInvalidFormatErrorf("mp4 timestamp overflows i64: %d", unixSeconds)
	}

	t := time.Unix(int64(unixSeconds), 0)
	if utc {
		t = t.UTC()
	} else {
		t = t.Local()
	}
	if y := t.Year(); y < 0 || y > 9999 {
		return "", newInvalidFormatErrorf("mp4 timestamp out of range: year %d", y)
	}

	return t.Format(canonicalLayout), nil
}
