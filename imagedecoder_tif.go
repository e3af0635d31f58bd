// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package timestampname

import (
	"container/heap"
	"encoding/binary"
)

// https://www.adobe.io/content/dam/udp/en/open/standards/tiff/TIFF6.pdf

const (
	byteOrderBigEndian    = "MM"
	byteOrderLittleEndian = "II"
	meaningOfLife         = 42

	tagDateTime          = 0x0132
	tagDateTimeOriginal  = 0x9003
	tagDateTimeDigitized = 0x9004
	tagExifIFDPointer    = 0x8769

	exifTypeASCII = 2
	exifTypeLong  = 4

	// "YYYY:MM:DD HH:MM:SS" plus the NUL terminator.
	exifDateCount = 20
	exifDateLen   = 19
)

type offsetKind uint8

const (
	// Dates sort before IFDs at the same offset.
	offsetKindDate offsetKind = iota
	offsetKindIFD
)

type pendingOffset struct {
	offset uint32
	kind   offsetKind
}

// offsetQueue is a min-heap of offsets still to visit.
// Draining it visits the stream forward-only.
type offsetQueue []pendingOffset

func (q offsetQueue) Len() int { return len(q) }

func (q offsetQueue) Less(i, j int) bool {
	if q[i].offset != q[j].offset {
		return q[i].offset < q[j].offset
	}
	return q[i].kind < q[j].kind
}

func (q offsetQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *offsetQueue) Push(x any) { *q = append(*q, x.(pendingOffset)) }

func (q *offsetQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

type imageDecoderTIFF struct {
	*baseDecoder
}

func (e *imageDecoderTIFF) decode() (string, error) {
	// Bytes 0-1: The byte order used within the file.
	byteOrderTag, err := e.readString(2)
	if err != nil {
		return "", wrapf(err, "TIFF failed to read endianness header")
	}

	var bo binary.ByteOrder
	switch byteOrderTag {
	case byteOrderBigEndian:
		bo = binary.BigEndian
	case byteOrderLittleEndian:
		bo = binary.LittleEndian
	default:
		return "", newInvalidFormatErrorf("invalid TIFF file header: %q", byteOrderTag)
	}

	// Bytes 2-3 An arbitrary but carefully chosen number (42).
	magic, err := e.read2(bo)
	if err != nil {
		return "", wrapf(err, "TIFF failed to read magic number header")
	}
	if magic != meaningOfLife {
		return "", newInvalidFormatErrorf("invalid TIFF magic number: %d", magic)
	}

	// Bytes 4-7 The offset (in bytes) of the first IFD.
	ifdOffset, err := e.read4(bo)
	if err != nil {
		return "", wrapf(err, "TIFF failed to read first IFD offset")
	}

	q := &offsetQueue{{offset: ifdOffset, kind: offsetKindIFD}}
	visitedIFDs := make(map[uint32]bool)
	var earliest string

	for q.Len() > 0 {
		next := heap.Pop(q).(pendingOffset)

		switch next.kind {
		case offsetKindDate:
			e.opts.Debugf("TIFF collecting date at offset: %d", next.offset)
			if err := e.seek(int64(next.offset)); err != nil {
				return "", wrapf(err, "TIFF failed to fast-forward to next date tag offset: %d", next.offset)
			}
			date, err := e.readString(exifDateLen)
			if err != nil {
				return "", wrapf(err, "TIFF failed to read date tag at offset: %d", next.offset)
			}
			e.opts.Debugf("TIFF date value read: %s", date)
			if earliest == "" || date < earliest {
				earliest = date
			}
		case offsetKindIFD:
			if visitedIFDs[next.offset] {
				continue
			}
			visitedIFDs[next.offset] = true
			e.opts.Debugf("TIFF scavenging IFD at offset: %d", next.offset)
			if err := e.decodeIFD(bo, next.offset, q); err != nil {
				return "", err
			}
		}
	}

	if earliest == "" {
		return "", ErrNoDateTags
	}

	return normalizeExifDate(earliest)
}

// A field is represented in 12 bytes:
//   - 2 bytes for the tag ID
//   - 2 bytes for the data type
//   - 4 bytes for the number of values
//   - 4 bytes for the value itself or the offset to it
func (e *imageDecoderTIFF) decodeIFD(bo binary.ByteOrder, offset uint32, q *offsetQueue) error {
	if err := e.seek(int64(offset)); err != nil {
		return wrapf(err, "TIFF failed to fast-forward to next IFD offset: %d", offset)
	}

	fields, err := e.read2(bo)
	if err != nil {
		return wrapf(err, "TIFF failed to read IFD field count at offset: %d", offset)
	}

	for i := 0; i < int(fields); i++ {
		tag, err := e.read2(bo)
		if err != nil {
			return wrapf(err, "TIFF failed to read field tag for field: %d", i)
		}
		typ, err := e.read2(bo)
		if err != nil {
			return wrapf(err, "TIFF failed to read field type for field: %d", i)
		}
		count, err := e.read4(bo)
		if err != nil {
			return wrapf(err, "TIFF failed to read field count for field: %d", i)
		}
		valueOffset, err := e.read4(bo)
		if err != nil {
			return wrapf(err, "TIFF failed to read field value offset for field: %d", i)
		}

		switch tag {
		case tagDateTime, tagDateTimeOriginal, tagDateTimeDigitized:
			if typ != exifTypeASCII {
				return newInvalidFormatErrorf("expected tag has unexpected type: %d == %d", tag, typ)
			}
			if count != exifDateCount {
				return newInvalidFormatErrorf("expected tag has unexpected count: %d == %d", tag, count)
			}
			e.opts.Debugf("TIFF IFD value offset for tag: %d => %d", tag, valueOffset)
			heap.Push(q, pendingOffset{offset: valueOffset, kind: offsetKindDate})
		case tagExifIFDPointer:
			if typ != exifTypeLong {
				return newInvalidFormatErrorf("EXIF pointer tag has unexpected type: %d == %d", tag, typ)
			}
			if count != 1 {
				return newInvalidFormatErrorf("EXIF pointer tag has unexpected size: %d == %d", tag, count)
			}
			e.opts.Debugf("TIFF IFD Exif offset: %d", valueOffset)
			heap.Push(q, pendingOffset{offset: valueOffset, kind: offsetKindIFD})
		}
	}

	// Followed by a 4-byte offset of the next IFD (or 0 if none).
	nextIFD, err := e.read4(bo)
	if err != nil {
		return wrapf(err, "TIFF failed to read next IFD offset")
	}
	if nextIFD != 0 {
		e.opts.Debugf("TIFF IFD found next IFD offset: %d", nextIFD)
		heap.Push(q, pendingOffset{offset: nextIFD, kind: offsetKindIFD})
	}

	return nil
}
