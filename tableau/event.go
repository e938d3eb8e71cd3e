// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tableau implements the lexical-tableau representation of
// interval-itemsets and the Apriori engine that mines them from a dataset
// of multi-timeline symbolic event logs.
package tableau

import (
	"fmt"
	"strings"
)

// Event is an immutable labelled interval on one timeline of a record.
// Start is strictly less than End; Label never contains an underscore,
// since the underscore separates the S/I/E marker prefix from the label
// in a cell's string form.
type Event struct {
	Timeline int
	Label    string
	Start    int
	End      int
}

// NewEvent validates and constructs an Event. Timeline must be
// non-negative, Label must be non-empty and free of underscores, and Start
// must be strictly less than End.
func NewEvent(timeline int, label string, start, end int) (Event, error) {
	if timeline < 0 {
		return Event{}, fmt.Errorf("tableau: negative timeline %d: %w", timeline, ErrInvalidArgument)
	}
	if label == "" {
		return Event{}, fmt.Errorf("tableau: empty label: %w", ErrInvalidArgument)
	}
	if strings.Contains(label, "_") {
		return Event{}, fmt.Errorf("tableau: label %q contains '_': %w", label, ErrInvalidArgument)
	}
	if start >= end {
		return Event{}, fmt.Errorf("tableau: start %d not before end %d: %w", start, end, ErrInvalidArgument)
	}
	return Event{Timeline: timeline, Label: label, Start: start, End: end}, nil
}

// Tuple returns the event's fields as a positional tuple, matching the
// reference implementation's (timeline, label, (start, end)) access.
func (e Event) Tuple() (timeline int, label string, span [2]int) {
	return e.Timeline, e.Label, [2]int{e.Start, e.End}
}

// String renders e as "(timeline, label, (start, end))".
func (e Event) String() string {
	return fmt.Sprintf("(%d, %s, (%d, %d))", e.Timeline, e.Label, e.Start, e.End)
}

// Less orders events lexicographically by (Start, End, Timeline, Label).
func (e Event) Less(other Event) bool {
	if e.Start != other.Start {
		return e.Start < other.Start
	}
	if e.End != other.End {
		return e.End < other.End
	}
	if e.Timeline != other.Timeline {
		return e.Timeline < other.Timeline
	}
	return e.Label < other.Label
}

// byEventOrder sorts a slice of Event per Less.
type byEventOrder []Event

func (s byEventOrder) Len() int           { return len(s) }
func (s byEventOrder) Less(i, j int) bool { return s[i].Less(s[j]) }
func (s byEventOrder) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
