// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package timestampname

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	mp4 "github.com/abema/go-mp4"
)

type tiffEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	value uint32
}

func dateEntry(tag uint16) tiffEntry {
	return tiffEntry{tag: tag, typ: exifTypeASCII, count: exifDateCount}
}

type appendByteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// tiffBuilder writes TIFF streams. Offsets are relative to the stream start.
type tiffBuilder struct {
	bo appendByteOrder
	b  []byte
}

func newTIFFBuilder(bo appendByteOrder) *tiffBuilder {
	t := &tiffBuilder{bo: bo}
	if bo == binary.LittleEndian {
		t.b = append(t.b, "II"...)
	} else {
		t.b = append(t.b, "MM"...)
	}
	t.b = bo.AppendUint16(t.b, meaningOfLife)
	t.b = bo.AppendUint32(t.b, 8)
	return t
}

func (t *tiffBuilder) offset() uint32 {
	return uint32(len(t.b))
}

func (t *tiffBuilder) setFirstIFD(off uint32) {
	t.bo.PutUint32(t.b[4:], off)
}

// ifd appends an IFD and returns its offset.
func (t *tiffBuilder) ifd(entries []tiffEntry, next uint32) uint32 {
	off := t.offset()
	t.b = t.bo.AppendUint16(t.b, uint16(len(entries)))
	for _, e := range entries {
		t.b = t.bo.AppendUint16(t.b, e.tag)
		t.b = t.bo.AppendUint16(t.b, e.typ)
		t.b = t.bo.AppendUint32(t.b, e.count)
		t.b = t.bo.AppendUint32(t.b, e.value)
	}
	t.b = t.bo.AppendUint32(t.b, next)
	return off
}

// setValue patches the value of entry i in the IFD at ifdOff.
func (t *tiffBuilder) setValue(ifdOff uint32, i int, v uint32) {
	t.bo.PutUint32(t.b[ifdOff+2+12*uint32(i)+8:], v)
}

// setNext patches the next IFD offset of the IFD at ifdOff with n entries.
func (t *tiffBuilder) setNext(ifdOff uint32, n int, v uint32) {
	t.bo.PutUint32(t.b[ifdOff+2+12*uint32(n):], v)
}

// ascii appends s with a NUL terminator and returns its offset.
func (t *tiffBuilder) ascii(s string) uint32 {
	off := t.offset()
	t.b = append(t.b, s...)
	t.b = append(t.b, 0)
	return off
}

// bytes returns the stream with some trailing padding,
// as the last byte of a view is never readable.
func (t *tiffBuilder) bytes() []byte {
	return append(bytes.Clone(t.b), 0, 0, 0, 0)
}

// dateTIFF returns a TIFF stream with a single IFD holding
// one DateTimeOriginal entry per date.
func dateTIFF(bo appendByteOrder, dates ...string) []byte {
	t := newTIFFBuilder(bo)
	entries := make([]tiffEntry, len(dates))
	for i := range dates {
		entries[i] = dateEntry(tagDateTimeOriginal)
	}
	ifd := t.ifd(entries, 0)
	for i, d := range dates {
		t.setValue(ifd, i, t.ascii(d))
	}
	return t.bytes()
}

// exifTIFF returns a TIFF stream with DateTime in IFD0 and
// DateTimeOriginal in the Exif IFD, the way cameras write them.
func exifTIFF(bo appendByteOrder, dateTime, dateTimeOriginal string) []byte {
	t := newTIFFBuilder(bo)
	ifd0 := t.ifd([]tiffEntry{
		dateEntry(tagDateTime),
		{tag: tagExifIFDPointer, typ: exifTypeLong, count: 1},
	}, 0)
	exifIFD := t.ifd([]tiffEntry{dateEntry(tagDateTimeOriginal)}, 0)
	t.setValue(ifd0, 1, exifIFD)
	t.setValue(ifd0, 0, t.ascii(dateTime))
	t.setValue(exifIFD, 0, t.ascii(dateTimeOriginal))
	return t.bytes()
}

type jpegSegment struct {
	marker uint16
	data   []byte
}

// jpegBytes returns a JPEG stream with the given segments followed by SOS and EOI.
func jpegBytes(segments ...jpegSegment) []byte {
	b := binary.BigEndian.AppendUint16(nil, markerSOI)
	for _, s := range segments {
		b = binary.BigEndian.AppendUint16(b, s.marker)
		b = binary.BigEndian.AppendUint16(b, uint16(len(s.data)+2))
		b = append(b, s.data...)
	}
	b = append(b, 0xff, 0xda, 0x00, 0x02, 0xff, 0xd9)
	return b
}

func app0JFIF() jpegSegment {
	return jpegSegment{marker: 0xffe0, data: []byte("JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")}
}

func app1Exif(tiff []byte) jpegSegment {
	return jpegSegment{marker: markerApp1EXIF, data: append([]byte("Exif\x00\x00"), tiff...)}
}

// box returns an ISOBMFF box with a 32-bit size.
func box(typ string, payload ...[]byte) []byte {
	var body []byte
	for _, p := range payload {
		body = append(body, p...)
	}
	b := binary.BigEndian.AppendUint32(nil, uint32(len(body)+boxHeaderSize))
	b = append(b, typ...)
	return append(b, body...)
}

// largeBox returns an ISOBMFF box with a 64-bit size.
func largeBox(typ string, payload []byte) []byte {
	b := binary.BigEndian.AppendUint32(nil, 1)
	b = append(b, typ...)
	b = binary.BigEndian.AppendUint64(b, uint64(len(payload)+boxLargeHeaderSize))
	return append(b, payload...)
}

func uuidBytes(u boxUUID) []byte {
	b := binary.BigEndian.AppendUint64(nil, u[0])
	return binary.BigEndian.AppendUint64(b, u[1])
}

// writeBoxes writes a box tree using the go-mp4 writer and returns the bytes.
func writeBoxes(t testing.TB, write func(w *mp4.Writer) error) []byte {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "boxes.mp4")
	f, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}
	if err := write(mp4.NewWriter(f)); err != nil {
		f.Close()
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// mp4Bytes returns a movie with an ftyp box, a moov box holding mvhd and a trailing free box.
func mp4Bytes(t testing.TB, mvhd *mp4.Mvhd) []byte {
	return writeBoxes(t, func(w *mp4.Writer) error {
		if _, err := w.StartBox(&mp4.BoxInfo{Type: mp4.BoxTypeFtyp()}); err != nil {
			return err
		}
		ftyp := &mp4.Ftyp{
			MajorBrand:   [4]byte{'i', 's', 'o', 'm'},
			MinorVersion: 0x200,
			CompatibleBrands: []mp4.CompatibleBrandElem{
				{CompatibleBrand: [4]byte{'i', 's', 'o', 'm'}},
				{CompatibleBrand: [4]byte{'m', 'p', '4', '1'}},
			},
		}
		if _, err := mp4.Marshal(w, ftyp, mp4.Context{}); err != nil {
			return err
		}
		if _, err := w.EndBox(); err != nil {
			return err
		}

		if _, err := w.StartBox(&mp4.BoxInfo{Type: mp4.BoxTypeMoov()}); err != nil {
			return err
		}
		if _, err := w.StartBox(&mp4.BoxInfo{Type: mp4.BoxTypeMvhd()}); err != nil {
			return err
		}
		if _, err := mp4.Marshal(w, mvhd, mp4.Context{}); err != nil {
			return err
		}
		if _, err := w.EndBox(); err != nil {
			return err
		}
		if _, err := w.EndBox(); err != nil {
			return err
		}

		if _, err := w.StartBox(&mp4.BoxInfo{Type: mp4.BoxTypeFree()}); err != nil {
			return err
		}
		if _, err := w.Write(make([]byte, 8)); err != nil {
			return err
		}
		_, err := w.EndBox()
		return err
	})
}

func mvhdV0(creationTime uint32) *mp4.Mvhd {
	return &mp4.Mvhd{
		FullBox:            mp4.FullBox{Version: 0},
		CreationTimeV0:     creationTime,
		ModificationTimeV0: creationTime + 10,
		Timescale:          1000,
		DurationV0:         5000,
		Rate:               0x10000,
		Volume:             0x100,
		Matrix:             [9]int32{0x10000, 0, 0, 0, 0x10000, 0, 0, 0, 0x40000000},
		NextTrackID:        2,
	}
}

func mvhdV1(creationTime uint64) *mp4.Mvhd {
	return &mp4.Mvhd{
		FullBox:            mp4.FullBox{Version: 1},
		CreationTimeV1:     creationTime,
		ModificationTimeV1: creationTime + 10,
		Timescale:          1000,
		DurationV1:         5000,
		Rate:               0x10000,
		Volume:             0x100,
		Matrix:             [9]int32{0x10000, 0, 0, 0, 0x10000, 0, 0, 0, 0x40000000},
		NextTrackID:        2,
	}
}

// cr3Bytes returns a CR3 style container: ftyp, then moov holding the Canon
// uuid box with CMT1 and CMT2 boxes carrying the given TIFF streams.
func cr3Bytes(t testing.TB, cmt1, cmt2 []byte) []byte {
	rawBox := func(w *mp4.Writer, typ string, payload []byte) error {
		if _, err := w.StartBox(&mp4.BoxInfo{Type: mp4.StrToBoxType(typ)}); err != nil {
			return err
		}
		if _, err := w.Write(payload); err != nil {
			return err
		}
		_, err := w.EndBox()
		return err
	}

	return writeBoxes(t, func(w *mp4.Writer) error {
		if err := rawBox(w, "ftyp", []byte("crx \x00\x00\x00\x01crx isom")); err != nil {
			return err
		}
		if _, err := w.StartBox(&mp4.BoxInfo{Type: mp4.BoxTypeMoov()}); err != nil {
			return err
		}
		// A foreign uuid box first, to be skipped.
		if err := rawBox(w, "uuid", append(uuidBytes(boxUUID{1, 2}), make([]byte, 12)...)); err != nil {
			return err
		}
		if _, err := w.StartBox(&mp4.BoxInfo{Type: mp4.StrToBoxType("uuid")}); err != nil {
			return err
		}
		if _, err := w.Write(uuidBytes(canonBoxUUID)); err != nil {
			return err
		}
		if err := rawBox(w, "CNCV", []byte("CanonCR3_001/01.09.00/00.00.00")); err != nil {
			return err
		}
		if err := rawBox(w, "CMT1", cmt1); err != nil {
			return err
		}
		if err := rawBox(w, "CMT2", cmt2); err != nil {
			return err
		}
		if err := rawBox(w, "CMT3", make([]byte, 16)); err != nil {
			return err
		}
		if _, err := w.EndBox(); err != nil {
			return err
		}
		if err := rawBox(w, "trak", make([]byte, 16)); err != nil {
			return err
		}
		if _, err := w.EndBox(); err != nil {
			return err
		}
		return rawBox(w, "mdat", make([]byte, 32))
	})
}
