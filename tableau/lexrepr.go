// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tableau

import (
	"fmt"
	"sort"
	"strings"
)

// BaseLexRepr is the lexical-tableau representation of an interval-itemset:
// a matrix of marker cells, one column per timeline and one row per
// instant in the itemset's own local instant space. Data is exported and
// directly mutable, matching the reference implementation's plain
// attribute access; callers that need the structural guarantees applied
// at construction should route mutation through DeleteEvent rather than
// editing Data by hand.
type BaseLexRepr struct {
	Data [][]string
}

// openMark records the timeline position currently holding an unclosed
// interval while scanning a single timeline's column.
type openMark struct {
	label string
	start int
	open  bool
}

// NewBaseLexRepr validates and constructs a BaseLexRepr from a marker
// matrix. Every row must have the same width (the timeline count), every
// cell must be the null marker or a S_/I_/E_-prefixed label, and every
// timeline's column must be a well-formed sequence of markers: at most one
// interval open at a time, no interior marker without an enclosing start,
// no end marker without a matching start, and no label started twice
// while already open. An interval left open at the end of the matrix is
// not an error: it denotes an event whose end lies beyond the itemset's
// own local instant space.
func NewBaseLexRepr(data [][]string) (*BaseLexRepr, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("tableau: empty itemset: %w", ErrInvalidFormat)
	}
	width := len(data[0])
	if width == 0 {
		return nil, fmt.Errorf("tableau: zero-width itemset: %w", ErrInvalidFormat)
	}
	allNull := true
	for _, row := range data {
		if len(row) != width {
			return nil, fmt.Errorf("tableau: ragged row width %d, want %d: %w", len(row), width, ErrInvalidFormat)
		}
		for _, c := range row {
			if !isNullMarker(c) {
				allNull = false
			}
			if !validCell(c) {
				return nil, fmt.Errorf("tableau: invalid cell %q: %w", c, ErrInvalidFormat)
			}
		}
	}
	if allNull {
		return nil, fmt.Errorf("tableau: every row is entirely null: %w", ErrInvalidFormat)
	}
	l := &BaseLexRepr{Data: data}
	for t := 0; t < width; t++ {
		if _, err := l.scanTimeline(t); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// validCell reports whether c is the null marker or a well-formed S_/I_/E_
// marker over a non-empty, underscore-free label.
func validCell(c string) bool {
	if isNullMarker(c) {
		return true
	}
	if !isStartMarker(c) && !isInteriorMarker(c) && !isEndMarker(c) {
		return false
	}
	label := markerLabel(c)
	if label == "" || strings.Contains(label, "_") {
		return false
	}
	return true
}

// Width reports the number of timelines.
func (l *BaseLexRepr) Width() int {
	if len(l.Data) == 0 {
		return 0
	}
	return len(l.Data[0])
}

// Size reports the number of distinct events in the itemset.
func (l *BaseLexRepr) Size() int {
	events, err := l.EventsList()
	if err != nil {
		return 0
	}
	return len(events)
}

// Len reports the number of rows (local instants) in the itemset.
func (l *BaseLexRepr) Len() int { return len(l.Data) }

// CheckCompatibility reports whether l and other share the same timeline
// count, the precondition for merge and containment.
func (l *BaseLexRepr) CheckCompatibility(other *BaseLexRepr) error {
	if l.Width() != other.Width() {
		return fmt.Errorf("tableau: width %d incompatible with %d: %w", l.Width(), other.Width(), ErrInvalidArgument)
	}
	return nil
}

// scanTimeline replays timeline t's column against the single-slot
// open/close automaton, returning the events it closes in row order.
// Every timeline column carries at most one open interval at a time: a
// start marker for a different label than the one currently open
// implicitly closes the incumbent at that row, exactly as a later event's
// start marker physically overwrites the earlier event's own closing
// cell in the rendered matrix.
func (l *BaseLexRepr) scanTimeline(t int) ([]Event, error) {
	var events []Event
	var cur openMark
	for row, r := range l.Data {
		c := r[t]
		switch {
		case isNullMarker(c):
			continue
		case isStartMarker(c):
			label := markerLabel(c)
			if cur.open && cur.label == label {
				return nil, fmt.Errorf("tableau: timeline %d: label %q started twice while open: %w", t, label, ErrInvalidFormat)
			}
			if cur.open {
				e, err := NewEvent(t, cur.label, cur.start, row)
				if err != nil {
					return nil, err
				}
				events = append(events, e)
			}
			cur = openMark{label: label, start: row, open: true}
		case isInteriorMarker(c):
			label := markerLabel(c)
			if !cur.open || cur.label != label {
				return nil, fmt.Errorf("tableau: timeline %d row %d: interior marker %q without enclosing start: %w", t, row, c, ErrInvalidFormat)
			}
		case isEndMarker(c):
			label := markerLabel(c)
			if !cur.open || cur.label != label {
				return nil, fmt.Errorf("tableau: timeline %d row %d: unmatched end marker %q: %w", t, row, c, ErrInvalidFormat)
			}
			e, err := NewEvent(t, label, cur.start, row)
			if err != nil {
				return nil, err
			}
			events = append(events, e)
			cur = openMark{}
		}
	}
	if cur.open {
		e, err := NewEvent(t, cur.label, cur.start, len(l.Data))
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

// EventsList extracts every event carried by the itemset, across all
// timelines, ordered per Event.Less.
func (l *BaseLexRepr) EventsList() ([]Event, error) {
	var all []Event
	for t := 0; t < l.Width(); t++ {
		events, err := l.scanTimeline(t)
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
	}
	sort.Sort(byEventOrder(all))
	return all, nil
}

// GenNull reports the marker that timeline t would carry at rowIndex if
// no event started, interior-marked or ended exactly there: the null
// marker if nothing is open going into that row, or the interior marker
// for whatever label is open, replaying rows [0, rowIndex) of the column.
func (l *BaseLexRepr) GenNull(rowIndex, t int) (string, error) {
	var cur openMark
	for row := 0; row < rowIndex && row < len(l.Data); row++ {
		c := l.Data[row][t]
		switch {
		case isNullMarker(c):
			continue
		case isStartMarker(c):
			cur = openMark{label: markerLabel(c), start: row, open: true}
		case isInteriorMarker(c):
			// no state change; membership already validated at construction.
		case isEndMarker(c):
			cur = openMark{}
		}
	}
	if cur.open {
		return interiorMarker(cur.label), nil
	}
	return nullMarker, nil
}

// GenNullRow computes the full-width row implied at rowIndex: the
// interior marker for whatever label is open on each timeline, or the
// null marker where none is.
func (l *BaseLexRepr) GenNullRow(rowIndex int) ([]string, error) {
	row := make([]string, l.Width())
	for t := 0; t < l.Width(); t++ {
		c, err := l.GenNull(rowIndex, t)
		if err != nil {
			return nil, err
		}
		row[t] = c
	}
	return row, nil
}

// FromEvent builds the canonical 2-row matrix for a singleton itemset
// carrying exactly e, over totalTimelines columns.
func FromEvent(e Event, totalTimelines int) ([][]string, error) {
	if totalTimelines <= e.Timeline {
		return nil, fmt.Errorf("tableau: timeline %d out of range for %d timelines: %w", e.Timeline, totalTimelines, ErrInvalidArgument)
	}
	start := make([]string, totalTimelines)
	end := make([]string, totalTimelines)
	for i := range start {
		start[i] = nullMarker
		end[i] = nullMarker
	}
	start[e.Timeline] = startMarker(e.Label)
	end[e.Timeline] = endMarker(e.Label)
	return [][]string{start, end}, nil
}

// AsSearchableString renders l as the canonical one-line serialization
// "[c00,c01,...][c10,c11,...]..." used for logging and audit-sink keys.
func (l *BaseLexRepr) AsSearchableString() string {
	var b strings.Builder
	for _, row := range l.Data {
		b.WriteByte('[')
		b.WriteString(strings.Join(row, ","))
		b.WriteByte(']')
	}
	return b.String()
}

// delNull removes every row that carries no start or end marker on any
// timeline (rows that are entirely null or carry only interior markers),
// matching the reference's del_null: such rows record no structural
// information once an event has been added or removed.
func delNull(data [][]string) [][]string {
	out := data[:0:0]
	for _, row := range data {
		keep := false
		for _, c := range row {
			if isStartMarker(c) || isEndMarker(c) {
				keep = true
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

func copyMatrix(data [][]string) [][]string {
	out := make([][]string, len(data))
	for i, row := range data {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// DeleteEvent returns the itemset obtained by removing e. The event's own
// start cell is always a literal start marker and is cleared. Its end
// cell, if within the matrix, is cleared only when it still literally
// carries the event's own end marker: when a later event's start
// overwrote it instead, that cell belongs to the later event and is left
// untouched. Interior markers strictly between the event's start and end
// are cleared. If some other label was open on the timeline immediately
// before the event's start — the event that the deleted one had itself
// implicitly closed — its end marker is restored into the now-null start
// cell, recreating the boundary the deleted event had overwritten. Rows
// left with no start or end marker on any timeline are then dropped.
func (l *BaseLexRepr) DeleteEvent(e Event) (*BaseLexRepr, error) {
	if e.Timeline < 0 || e.Timeline >= l.Width() {
		return nil, fmt.Errorf("tableau: timeline %d out of range: %w", e.Timeline, ErrInvalidArgument)
	}
	events, err := l.EventsList()
	if err != nil {
		return nil, err
	}
	found := false
	for _, c := range events {
		if c == e {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("tableau: event %v not present: %w", e, ErrInvalidArgument)
	}

	data := copyMatrix(l.Data)
	t := e.Timeline

	for row := e.Start + 1; row < e.End && row < len(data); row++ {
		if data[row][t] == interiorMarker(e.Label) {
			data[row][t] = nullMarker
		}
	}

	data[e.Start][t] = nullMarker
	if e.End < len(data) && data[e.End][t] == endMarker(e.Label) {
		data[e.End][t] = nullMarker
	}

	var prior openMark
	for row := 0; row < e.Start; row++ {
		c := data[row][t]
		switch {
		case isStartMarker(c):
			prior = openMark{label: markerLabel(c), start: row, open: true}
		case isEndMarker(c):
			prior = openMark{}
		}
	}
	if prior.open {
		data[e.Start][t] = endMarker(prior.label)
	}

	data = delNull(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("tableau: deleting %v leaves an empty itemset: %w", e, ErrInvariantViolated)
	}
	return NewBaseLexRepr(data)
}

// eventKey is the comparable projection of an Event used for exact
// membership tests against an already-extracted events list.
type eventKey struct {
	timeline   int
	label      string
	start, end int
}

// Contains reports whether pattern's interval-itemset is exhibited by
// container: there is a strictly order-preserving mapping from pattern's
// local rows to a subset of container's local rows under which every one
// of pattern's events corresponds, timeline and label, to an event of
// container at the mapped start and end. The identity mapping always
// witnesses a pattern against itself, so containment is reflexive.
func Contains(container, pattern *BaseLexRepr) (bool, error) {
	if err := container.CheckCompatibility(pattern); err != nil {
		return false, err
	}
	patternEvents, err := pattern.EventsList()
	if err != nil {
		return false, fmt.Errorf("tableau: contains: %w", err)
	}
	containerEvents, err := container.EventsList()
	if err != nil {
		return false, fmt.Errorf("tableau: contains: %w", err)
	}
	have := make(map[eventKey]bool, len(containerEvents))
	for _, e := range containerEvents {
		have[eventKey{e.Timeline, e.Label, e.Start, e.End}] = true
	}

	rowSet := make(map[int]bool)
	for _, e := range patternEvents {
		rowSet[e.Start] = true
		rowSet[e.End] = true
	}
	rows := make([]int, 0, len(rowSet))
	for r := range rowSet {
		rows = append(rows, r)
	}
	sort.Ints(rows)

	assign := make(map[int]int, len(rows))
	return searchRowAssignment(rows, 0, -1, len(container.Data), assign, patternEvents, have), nil
}

// searchRowAssignment backtracks over strictly increasing assignments of
// pattern's local rows to container rows in [0, n], accepting the first
// assignment under which every pattern event matches a container event
// exactly.
func searchRowAssignment(rows []int, idx, prevTarget, n int, assign map[int]int, events []Event, have map[eventKey]bool) bool {
	if idx == len(rows) {
		for _, e := range events {
			cs, ok1 := assign[e.Start]
			ce, ok2 := assign[e.End]
			if !ok1 || !ok2 || !have[eventKey{e.Timeline, e.Label, cs, ce}] {
				return false
			}
		}
		return true
	}
	for target := prevTarget + 1; target <= n; target++ {
		assign[rows[idx]] = target
		if searchRowAssignment(rows, idx+1, target, n, assign, events, have) {
			return true
		}
	}
	delete(assign, rows[idx])
	return false
}
