// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tableau

import (
	"strings"
)

// nullMarker is the cell value denoting the absence of any event on a
// timeline at a given instant. The reference implementation renders this
// as the ASCII underscore rather than the ⊥ glyph in spec.md; this port
// keeps the underscore since it is what the wire format (searchable
// strings, persisted itemset serializations) actually contains.
const nullMarker = "_"

func isNullMarker(m string) bool { return m == nullMarker }

func isStartMarker(m string) bool { return strings.HasPrefix(m, "S_") }
func isEndMarker(m string) bool   { return strings.HasPrefix(m, "E_") }
func isInteriorMarker(m string) bool {
	return strings.HasPrefix(m, "I_")
}

// markerLabel returns the label carried by a S_/I_/E_ marker, or "" for the
// null marker.
func markerLabel(m string) string {
	if isNullMarker(m) {
		return ""
	}
	i := strings.IndexByte(m, '_')
	if i < 0 {
		return ""
	}
	return m[i+1:]
}

func startMarker(label string) string    { return "S_" + label }
func interiorMarker(label string) string { return "I_" + label }
func endMarker(label string) string      { return "E_" + label }

// zeroSentinel returns the "before everything" instant code of the given
// digit width: a run of '0'.
func zeroSentinel(width int) string {
	return strings.Repeat("0", width)
}

// threeSentinel returns the "after everything" instant code of the given
// digit width: a leading '3' followed by '0's.
func threeSentinel(width int) string {
	if width == 0 {
		return ""
	}
	return "3" + strings.Repeat("0", width-1)
}

// isAnchored reports whether an instant code denotes an integer
// (non-interstitial) position: its last digit is '0'.
func isAnchored(code string) bool {
	return len(code) > 0 && code[len(code)-1] == '0'
}

// isZeroSentinel reports whether code matches the "all zero digits"
// pattern, i.e. the global "before all" boundary.
func isZeroSentinel(code string) bool {
	for i := 0; i < len(code); i++ {
		if code[i] != '0' {
			return false
		}
	}
	return len(code) > 0
}

// isThreeSentinel reports whether code matches the "3 followed by zeros"
// pattern, i.e. the global "after all" boundary.
func isThreeSentinel(code string) bool {
	if len(code) == 0 || code[0] != '3' {
		return false
	}
	for i := 1; i < len(code); i++ {
		if code[i] != '0' {
			return false
		}
	}
	return true
}

// anchoredImage rewrites an interstitial instant code (trailing '5') to
// its anchored image with the given trailing digit ('4' for a new start,
// '6' for a new end).
func anchoredImage(code string, trailing byte) string {
	return code[:len(code)-1] + string(trailing)
}

// Bound is a 1- or 2-tuple of instant codes describing an allowed boundary
// range for a ForbiddenInterval endpoint.
type Bound []string

// Equal reports whether two bounds are structurally equal.
func (b Bound) Equal(other Bound) bool {
	if len(b) != len(other) {
		return false
	}
	for i := range b {
		if b[i] != other[i] {
			return false
		}
	}
	return true
}

func (b Bound) key() string { return strings.Join(b, ",") }

// ForbiddenInterval is a memoized (start-range, end-range) pair under a
// label that disables future merge insertions of that label at
// overlapping positions. It never mutates once constructed.
type ForbiddenInterval struct {
	Start Bound
	End   Bound
}

// NewForbiddenInterval constructs a ForbiddenInterval from its two bounds.
func NewForbiddenInterval(start, end Bound) ForbiddenInterval {
	return ForbiddenInterval{Start: start, End: end}
}

// ContainsStart reports whether instant x falls within the allowed start
// range: exact match for a 1-tuple bound, or a ≤ x < b for a 2-tuple bound.
func (f ForbiddenInterval) ContainsStart(x string) bool {
	switch len(f.Start) {
	case 1:
		return x == f.Start[0]
	case 2:
		return f.Start[0] <= x && x < f.Start[1]
	default:
		return false
	}
}

// ContainsEnd reports whether instant x falls within the allowed end
// range: exact match for a 1-tuple bound, or a < x ≤ b for a 2-tuple bound.
func (f ForbiddenInterval) ContainsEnd(x string) bool {
	switch len(f.End) {
	case 1:
		return x == f.End[0]
	case 2:
		return f.End[0] < x && x <= f.End[1]
	default:
		return false
	}
}

// Equal reports whether two forbidden intervals are structurally equal.
func (f ForbiddenInterval) Equal(other ForbiddenInterval) bool {
	return f.Start.Equal(other.Start) && f.End.Equal(other.End)
}

func (f ForbiddenInterval) key() string {
	return f.Start.key() + "|" + f.End.key()
}

// dedupeForbidden removes structurally duplicate ForbiddenIntervals from a
// slice, preserving the order of first occurrence.
func dedupeForbidden(in []ForbiddenInterval) []ForbiddenInterval {
	seen := make(map[string]bool, len(in))
	out := make([]ForbiddenInterval, 0, len(in))
	for _, f := range in {
		k := f.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, f)
	}
	return out
}
