// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package timestampname

import (
	"encoding/binary"
	"errors"

	uuid "github.com/satori/go.uuid"
)

// https://github.com/lclevy/canon_cr3

var canonBoxUUID = func() boxUUID {
	u := uuid.Must(uuid.FromString("85c0b687-820f-11e0-8111-f4ce462b6a48"))
	return boxUUID{
		binary.BigEndian.Uint64(u[:8]),
		binary.BigEndian.Uint64(u[8:]),
	}
}()

type imageDecoderCR3 struct {
	*baseDecoder
}

func (e *imageDecoderCR3) decode() (string, error) {
	moov, err := e.searchBox(fccMoov)
	if err != nil {
		return "", wrapf(err, "moov box not found")
	}
	canon, err := e.withReader(moov).searchUUIDBox(canonBoxUUID)
	if err != nil {
		return "", wrapf(err, "canon box not found")
	}
	canonDec := e.withReader(canon)

	cmt1, err := canonDec.timestampFromTIFFBox(fccCMT1)
	if err != nil {
		return "", err
	}

	if err := canon.seek(0); err != nil {
		return "", wrapf(err, "failed to rewind till canon box start")
	}
	cmt2, err := canonDec.timestampFromTIFFBox(fccCMT2)
	if err != nil {
		return "", err
	}

	switch {
	case cmt1 == "" && cmt2 == "":
		return "", newInvalidFormatErrorf("timestamps not found in CMT1 and CMT2 boxes")
	case cmt1 == "":
		return cmt2, nil
	case cmt2 == "":
		return cmt1, nil
	case cmt1 < cmt2:
		return cmt1, nil
	default:
		return cmt2, nil
	}
}

// timestampFromTIFFBox decodes the TIFF stream in the named box.
// A TIFF stream without date tags yields an empty timestamp.
func (e *baseDecoder) timestampFromTIFFBox(name fourCC) (string, error) {
	box, err := e.searchBox(name)
	if err != nil {
		return "", wrapf(err, "failed to find box: %s", name)
	}
	ts, err := (&imageDecoderTIFF{baseDecoder: e.withReader(box)}).decode()
	if err != nil {
		if errors.Is(err, ErrNoDateTags) {
			e.opts.Debugf("no date tags in box: %s", name)
			return "", nil
		}
		return "", wrapf(err, "failed to decode box: %s", name)
	}
	return ts, nil
}
