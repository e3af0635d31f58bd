// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package timestampname

import (
	"strings"
	"unicode"
)

// normalizeExifDate validates an Exif date of the form "YYYY:MM:DD HH:MM:SS"
// and returns it in the canonical form "YYYYMMDD-HHMMSS".
//
// Some Samsung cameras write the date part separated by dashes
// ("YYYY-MM-DD HH:MM:SS"), so both ':' and '-' are accepted at
// the two date separator positions.
func normalizeExifDate(s string) (string, error) {
	isDigit := func(i int) bool {
		return s[i] >= '0' && s[i] <= '9'
	}
	isDateSep := func(i int) bool {
		return s[i] == ':' || s[i] == '-'
	}

	ok := len(s) == exifDateLen &&
		isDigit(0) && isDigit(1) && isDigit(2) && isDigit(3) &&
		isDateSep(4) &&
		isDigit(5) && isDigit(6) &&
		isDateSep(7) &&
		isDigit(8) && isDigit(9) &&
		s[10] == ' ' &&
		isDigit(11) && isDigit(12) &&
		s[13] == ':' &&
		isDigit(14) && isDigit(15) &&
		s[16] == ':' &&
		isDigit(17) && isDigit(18)

	if !ok {
		return "", newInvalidFormatErrorf("invalid exif date format: %q", printableString(s))
	}

	var sb strings.Builder
	sb.Grow(len(canonicalLayout))
	sb.WriteString(s[0:4])
	sb.WriteString(s[5:7])
	sb.WriteString(s[8:10])
	sb.WriteByte('-')
	sb.WriteString(s[11:13])
	sb.WriteString(s[14:16])
	sb.WriteString(s[17:19])
	return sb.String(), nil
}

func printableString(s string) string {
	ss := strings.Map(func(r rune) rune {
		if unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, s)

	return strings.TrimSpace(ss)
}
