// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package timestampname

import (
	"encoding/binary"
	"math"
)

// http://l.web.umkc.edu/lizhu/teaching/2016sp.video-communication/ref/mp4.pdf
// https://mpeg.chiariglione.org/standards/mpeg-4/iso-base-media-file-format

type fourCC [4]byte

func (f fourCC) String() string {
	return string(f[:])
}

// ISOBMFF box types.
var (
	fccMoov = fourCC{'m', 'o', 'o', 'v'}
	fccMvhd = fourCC{'m', 'v', 'h', 'd'}
	fccUUID = fourCC{'u', 'u', 'i', 'd'}
	fccCMT1 = fourCC{'C', 'M', 'T', '1'}
	fccCMT2 = fourCC{'C', 'M', 'T', '2'}
)

const (
	boxHeaderSize      = 8  // 4 bytes length, 4 bytes type.
	boxLargeHeaderSize = 16 // plus 8 bytes large length.
	boxUUIDSize        = 16
)

// boxUUID is a 128-bit box user type, most significant half first.
type boxUUID [2]uint64

// searchBox scans the sibling boxes starting at the cursor of e and returns a
// view of the payload of the first box of type name.
// Running out of boxes surfaces as an *EndOfDataError.
func (e *baseDecoder) searchBox(name fourCC) (*boundedReader, error) {
	return e.scanForBox(name, nil)
}

// searchUUIDBox is like searchBox, but looks for the "uuid" box with the given user type.
// The returned view starts after the 16 bytes of the user type.
func (e *baseDecoder) searchUUIDBox(uuid boxUUID) (*boundedReader, error) {
	return e.scanForBox(fccUUID, &uuid)
}

func (e *baseDecoder) scanForBox(name fourCC, uuid *boxUUID) (*boundedReader, error) {
	for {
		boxStart := e.pos()
		size, err := e.read4(binary.BigEndian)
		if err != nil {
			return nil, err
		}
		typ, err := e.readString(4)
		if err != nil {
			return nil, err
		}

		// Length of the box payload.
		var bodyLen int64
		switch size {
		case 0:
			// Box extends to the end of the enclosing view.
			bodyLen = e.limit - e.pos()
		case 1:
			largeSize, err := e.read8(binary.BigEndian)
			if err != nil {
				return nil, err
			}
			if largeSize < boxLargeHeaderSize || largeSize > math.MaxInt64 {
				return nil, newInvalidFormatErrorf("invalid large box size %d for box %q at %d", largeSize, typ, boxStart)
			}
			bodyLen = int64(largeSize) - boxLargeHeaderSize
		default:
			if size < boxHeaderSize {
				return nil, newInvalidFormatErrorf("invalid box size %d for box %q at %d", size, typ, boxStart)
			}
			bodyLen = int64(size) - boxHeaderSize
		}

		e.opts.Debugf("box %q at %d with payload length %d", typ, boxStart, bodyLen)

		if typ == name.String() {
			if uuid == nil {
				return e.section(bodyLen)
			}
			if bodyLen < boxUUIDSize {
				return nil, newInvalidFormatErrorf("uuid box at %d is too short: %d", boxStart, bodyLen)
			}
			msb, err := e.read8(binary.BigEndian)
			if err != nil {
				return nil, err
			}
			lsb, err := e.read8(binary.BigEndian)
			if err != nil {
				return nil, err
			}
			bodyLen -= boxUUIDSize
			if msb == uuid[0] && lsb == uuid[1] {
				return e.section(bodyLen)
			}
		}

		if err := e.skip(bodyLen); err != nil {
			return nil, err
		}
	}
}
