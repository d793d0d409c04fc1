// SPDX-License-Identifier: Apache-2.0

package edi

import (
	"strings"
	"unicode/utf8"
)

// SplitSegments splits raw interchange text on the segment separator. Line
// breaks and blanks around segments are dropped, as are empty segments.
func SplitSegments(raw, sep string) []string {
	return SplitReleasedSegments(raw, sep, "")
}

// SplitReleasedSegments is SplitSegments for text using a release
// character: a segment separator preceded by release does not end the
// segment. Release sequences are left in place for the extractor.
func SplitReleasedSegments(raw, sep, release string) []string {
	if sep == "" {
		return nil
	}
	parts := splitReleased(raw, sep, release)
	segments := make([]string, 0, len(parts))
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		segments = append(segments, s)
	}
	return segments
}

// splitReleased splits s on sep, skipping separators escaped by release.
func splitReleased(s, sep, release string) []string {
	if release == "" || !strings.Contains(s, release) {
		return strings.Split(s, sep)
	}
	var out []string
	start := 0
	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], release):
			i += len(release)
			if i < len(s) {
				_, size := utf8.DecodeRuneInString(s[i:])
				i += size
			}
		case strings.HasPrefix(s[i:], sep):
			out = append(out, s[start:i])
			i += len(sep)
			start = i
		default:
			_, size := utf8.DecodeRuneInString(s[i:])
			i += size
		}
	}
	return append(out, s[start:])
}

// unescape drops release characters, keeping the character each one
// escapes.
func unescape(s, release string) string {
	if release == "" || !strings.Contains(s, release) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], release) {
			i += len(release)
			if i == len(s) {
				break
			}
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		b.WriteString(s[i : i+size])
		i += size
	}
	return b.String()
}

// leadingNoise is stripped before looking at the first segment.
const leadingNoise = " \t\r\n\ufeff"

// ISA is fixed width: the element separator follows the tag, ISA16 holds
// the subelement separator and the segment terminator comes right after.
const (
	isaLength                = 106
	isaElementSeparatorIndex = 3
	isaSubelementIndex       = 104
	isaTerminatorIndex       = 105
)

// DetectX12Separators reads the separators off a leading ISA segment. It
// reports false when the text does not start with a complete ISA.
func DetectX12Separators(raw string) (Separators, bool) {
	raw = strings.TrimLeft(raw, leadingNoise)
	if len(raw) < isaLength || !strings.HasPrefix(raw, "ISA") {
		return Separators{}, false
	}
	seps := Separators{
		Element:    raw[isaElementSeparatorIndex : isaElementSeparatorIndex+1],
		Subelement: raw[isaSubelementIndex : isaSubelementIndex+1],
		Segment:    raw[isaTerminatorIndex : isaTerminatorIndex+1],
	}
	if seps.Element == seps.Segment || seps.Element == seps.Subelement {
		return Separators{}, false
	}
	return seps, true
}

// UNA service string advice positions.
const (
	unaLength          = 9
	unaSubelementIndex = 3
	unaElementIndex    = 4
	unaReleaseIndex    = 6
	unaTerminatorIndex = 8
)

// unaNoRelease in the release position means the interchange has no release
// character.
const unaNoRelease = " "

// DetectEDIFACTSeparators reads the separators and release character off a
// leading UNA service string advice. It reports false when there is none.
func DetectEDIFACTSeparators(raw string) (Separators, bool) {
	raw = strings.TrimLeft(raw, leadingNoise)
	if len(raw) < unaLength || !strings.HasPrefix(raw, "UNA") {
		return Separators{}, false
	}
	seps := Separators{
		Element:    raw[unaElementIndex : unaElementIndex+1],
		Subelement: raw[unaSubelementIndex : unaSubelementIndex+1],
		Segment:    raw[unaTerminatorIndex : unaTerminatorIndex+1],
	}
	if rel := raw[unaReleaseIndex : unaReleaseIndex+1]; rel != unaNoRelease {
		seps.Release = rel
	}
	return seps, true
}

// DetectDialect guesses the dialect from the leading segment: ISA for X12,
// UNA or UNB for EDIFACT.
func DetectDialect(raw string) (Dialect, bool) {
	raw = strings.TrimLeft(raw, leadingNoise)
	switch {
	case strings.HasPrefix(raw, "ISA"):
		return X12, true
	case strings.HasPrefix(raw, "UNA"), strings.HasPrefix(raw, "UNB"):
		return EDIFACT, true
	}
	return "", false
}
