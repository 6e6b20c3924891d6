// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"math"
	"unicode"
)

// truncateMode is where a string can be truncated.
type truncateMode int

const (
	truncateAuto  truncateMode = iota // at word boundary, unless the result is too short
	truncateWords                     // at word boundary
	truncateChars                     // at any character
)

const (
	// truncateTerminator is the default terminator of the truncated strings.
	truncateTerminator = "[...]"

	// truncateWordMinLength is the minimum length of a string truncated at
	// word boundary in auto mode, relative to the maximum length.
	truncateWordMinLength = 0.75
)

// truncate truncates s so that, with terminator appended, it is at most
// maxLength characters long. terminatorLength is the length assumed for
// terminator. The terminator is always present in a truncated string, even
// if with it the string exceeds maxLength. A space is put between the
// terminator and a truncated word.
func truncate(s []rune, maxLength int, terminator []rune, terminatorLength int, mode truncateMode) string {
	if len(s) <= maxLength {
		return string(s)
	}
	t := truncatePoint(s, maxLength, terminatorLength, isDot(terminator), mode)
	if len(t) == 0 {
		return string(terminator)
	}
	return string(t) + string(terminator)
}

// truncatePoint returns s truncated, without the terminator. It returns nil
// if nothing of s can be kept.
func truncatePoint(s []rune, maxLength, terminatorLength int, removesDots bool, mode truncateMode) []rune {

	charLast := maxLength - terminatorLength - 1
	last := skipTrailingSpaces(s, charLast)
	if last < 0 {
		return nil
	}

	if mode != truncateChars {
		wordTerminatorLength := terminatorLength + 1
		minIndex := 0
		if mode == truncateAuto {
			minIndex = max(int(math.Ceil(float64(maxLength)*truncateWordMinLength))-wordTerminatorLength-1, 0)
		}
		i := min(maxLength-wordTerminatorLength-1, last)
		followingIsSpace := true
		if i+1 < len(s) {
			followingIsSpace = unicode.IsSpace(s[i+1])
		}
		for ; i >= minIndex; i-- {
			isSpace := unicode.IsSpace(s[i])
			if !isSpace && followingIsSpace {
				t := make([]rune, i+1, i+2)
				copy(t, s)
				return append(t, ' ')
			}
			followingIsSpace = isSpace
		}
		if mode == truncateWords {
			return nil
		}
	}

	// With the space before the terminator, the string would exceed
	// maxLength by one.
	if last == charLast && isWordEnd(s, last) {
		last--
		if last < 0 {
			return nil
		}
	}
	for {
		last = skipTrailingSpaces(s, last)
		if last < 0 {
			return nil
		}
		if !removesDots || !isDot(s[last:last+1]) || isWordEnd(s, last) {
			break
		}
		for last >= 0 && isDot(s[last:last+1]) {
			last--
		}
		if last < 0 {
			return nil
		}
	}
	t := make([]rune, last+1, last+2)
	copy(t, s)
	if isWordEnd(s, last) {
		t = append(t, ' ')
	}
	return t
}

// skipTrailingSpaces returns the index of the last non space character of
// s[:last+1], or -1 if there is none.
func skipTrailingSpaces(s []rune, last int) int {
	for last >= 0 && unicode.IsSpace(s[last]) {
		last--
	}
	return last
}

// isWordEnd reports whether the character at index i of s is the last one
// of a word.
func isWordEnd(s []rune, i int) bool {
	return i+1 >= len(s) || unicode.IsSpace(s[i+1])
}

// isDot reports whether s starts with a dot or an ellipsis.
func isDot(s []rune) bool {
	return len(s) > 0 && (s[0] == '.' || s[0] == '…')
}
