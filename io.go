// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package timestampname

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var errShortRead = errors.New("short read")

// EndOfDataError is returned when a read, seek or section would reach
// outside the bounds of a reader view.
type EndOfDataError struct {
	// Pos is the position, relative to the view, the operation started at.
	Pos int64
	// Len is the number of bytes the operation needed.
	Len int64
	// Limit is the length of the view.
	Limit int64
}

func (e *EndOfDataError) Error() string {
	return fmt.Sprintf("EOF: accessing %d bytes from %d, input length: %d", e.Len, e.Pos, e.Limit)
}

type decoder interface {
	decode() (string, error)
}

// boundedReader is a length limited, cursor based view over r.
// All views created from the same file share r, but never their bounds.
// Note that this is not thread safe.
type boundedReader struct {
	r io.ReaderAt

	// Absolute start of this view in r.
	offset int64
	// Length of this view.
	limit int64
	// Position relative to offset.
	cursor int64

	buf [8]byte
}

func newBoundedReader(r io.ReaderAt, size int64) *boundedReader {
	return &boundedReader{
		r:     r,
		limit: size,
	}
}

// check verifies that n bytes can be accessed from the cursor.
// The view's last byte is never reachable; this matches the
// box and segment length arithmetic of the decoders.
func (e *boundedReader) check(n int64) error {
	if n < 0 || n >= e.limit-e.cursor {
		return &EndOfDataError{Pos: e.cursor, Len: n, Limit: e.limit}
	}
	return nil
}

func (e *boundedReader) readNIntoBuf(b []byte) error {
	n := int64(len(b))
	if err := e.check(n); err != nil {
		return err
	}
	n2, err := e.r.ReadAt(b, e.offset+e.cursor)
	if int64(n2) < n {
		if err == nil || err == io.EOF {
			err = errShortRead
		}
		return fmt.Errorf("reading %d bytes at %d: %w", n, e.offset+e.cursor, err)
	}
	e.cursor += n
	return nil
}

func (e *boundedReader) read2(bo binary.ByteOrder) (uint16, error) {
	const n = 2
	if err := e.readNIntoBuf(e.buf[:n]); err != nil {
		return 0, err
	}
	return bo.Uint16(e.buf[:n]), nil
}

func (e *boundedReader) read4(bo binary.ByteOrder) (uint32, error) {
	const n = 4
	if err := e.readNIntoBuf(e.buf[:n]); err != nil {
		return 0, err
	}
	return bo.Uint32(e.buf[:n]), nil
}

func (e *boundedReader) read8(bo binary.ByteOrder) (uint64, error) {
	const n = 8
	if err := e.readNIntoBuf(e.buf[:n]); err != nil {
		return 0, err
	}
	return bo.Uint64(e.buf[:n]), nil
}

// readString reads exactly n bytes.
func (e *boundedReader) readString(n int64) (string, error) {
	if err := e.check(n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if err := e.readNIntoBuf(b); err != nil {
		return "", err
	}
	return string(b), nil
}

func (e *boundedReader) pos() int64 {
	return e.cursor
}

// seek moves the cursor to pos within the view.
func (e *boundedReader) seek(pos int64) error {
	if pos < 0 || pos >= e.limit {
		return &EndOfDataError{Pos: pos, Len: 0, Limit: e.limit}
	}
	e.cursor = pos
	return nil
}

// skip moves the cursor n bytes forward.
func (e *boundedReader) skip(n int64) error {
	if n < 0 || n >= e.limit-e.cursor {
		return &EndOfDataError{Pos: e.cursor, Len: n, Limit: e.limit}
	}
	return e.seek(e.cursor + n)
}

// section returns a child view of n bytes starting at the cursor.
// The cursor of e is left untouched.
func (e *boundedReader) section(n int64) (*boundedReader, error) {
	if n < 0 || n > e.limit-e.cursor {
		return nil, &EndOfDataError{Pos: e.cursor, Len: n, Limit: e.limit}
	}
	return &boundedReader{
		r:      e.r,
		offset: e.offset + e.cursor,
		limit:  n,
	}, nil
}
