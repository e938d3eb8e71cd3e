// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tableau

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// HistoryEntry records the most recent insertion that produced a
// MemLexRepr: the label that was grafted on, and the final instant codes
// at which its start and end markers were placed.
type HistoryEntry struct {
	Label      string
	Start, End string
}

// MemLexRepr extends BaseLexRepr with per-row instant coordinates, a
// forbidden-insertion memory keyed by label, and the single insertion
// that produced it. Merge uses the coordinates to generate admissible
// insertion points and the memory to prune ones already known to be
// fruitless.
type MemLexRepr struct {
	BaseLexRepr
	Instants  []string
	Forbidden map[string][]ForbiddenInterval
	History   []HistoryEntry
}

// NewMemLexRepr validates data as a BaseLexRepr and pairs it with
// instants. A nil instants slice is accepted and denotes an itemset with
// no assigned coordinate space yet; a non-nil one must have one code per
// row.
func NewMemLexRepr(data [][]string, instants []string) (*MemLexRepr, error) {
	base, err := NewBaseLexRepr(data)
	if err != nil {
		return nil, err
	}
	if instants != nil && len(instants) != len(data) {
		return nil, fmt.Errorf("tableau: %d instants for %d rows: %w", len(instants), len(data), ErrInvalidFormat)
	}
	return &MemLexRepr{
		BaseLexRepr: *base,
		Instants:    instants,
		Forbidden:   map[string][]ForbiddenInterval{},
	}, nil
}

// NewSingletonMemLexRepr builds the canonical two-row itemset for a
// single event, with the reference implementation's placeholder instant
// pair ["1", "2"].
func NewSingletonMemLexRepr(e Event, totalTimelines int) (*MemLexRepr, error) {
	data, err := FromEvent(e, totalTimelines)
	if err != nil {
		return nil, err
	}
	return NewMemLexRepr(data, []string{"1", "2"})
}

// Key returns a canonical string identifying the itemset's marker matrix,
// used for equality and deduplication in place of Python's structural
// hash: two MemLexRepr values with the same Data are interchangeable for
// every purpose the engine cares about, regardless of how their
// instants, forbidden memory or history differ.
func (m *MemLexRepr) Key() string { return m.AsSearchableString() }

// Equal reports whether m and other carry the same marker matrix.
func (m *MemLexRepr) Equal(other *MemLexRepr) bool { return m.Key() == other.Key() }

// Copy returns an independently owned deep copy of m.
func (m *MemLexRepr) Copy() *MemLexRepr {
	out := &MemLexRepr{
		BaseLexRepr: BaseLexRepr{Data: copyMatrix(m.Data)},
		Instants:    append([]string(nil), m.Instants...),
		Forbidden:   make(map[string][]ForbiddenInterval, len(m.Forbidden)),
		History:     append([]HistoryEntry(nil), m.History...),
	}
	for label, rules := range m.Forbidden {
		out.Forbidden[label] = append([]ForbiddenInterval(nil), rules...)
	}
	return out
}

// MergeForbidden accumulates rules into m.Forbidden, deduplicating
// structurally equal intervals under each label rather than overwriting.
func (m *MemLexRepr) MergeForbidden(rules map[string][]ForbiddenInterval) {
	if m.Forbidden == nil {
		m.Forbidden = map[string][]ForbiddenInterval{}
	}
	for label, rs := range rules {
		m.Forbidden[label] = dedupeForbidden(append(append([]ForbiddenInterval(nil), m.Forbidden[label]...), rs...))
	}
}

// MergeForbiddenAll applies MergeForbidden for each map in order,
// matching the reference's list-of-dicts assignment form.
func (m *MemLexRepr) MergeForbiddenAll(rulesList []map[string][]ForbiddenInterval) {
	for _, rules := range rulesList {
		m.MergeForbidden(rules)
	}
}

// AsForbidden turns the most recent entry of m.History into a forbidden
// rule: a 1-tuple bound when the recorded instant is anchored, or a range
// from its own anchored floor up to the instant following the recorded
// end (or the three-sentinel, if the end was the last) when it is
// interstitial. Start and end bounds share that same upper limit.
func (m *MemLexRepr) AsForbidden() (map[string][]ForbiddenInterval, error) {
	if len(m.History) == 0 {
		return nil, fmt.Errorf("tableau: no history to derive a forbidden rule from: %w", ErrInvalidArgument)
	}
	if len(m.Instants) == 0 {
		return nil, fmt.Errorf("tableau: no instants to derive a forbidden rule from: %w", ErrInvalidArgument)
	}
	last := m.History[len(m.History)-1]
	width := len(m.Instants[0])

	nextInstant := threeSentinel(width)
	if idx := indexOf(m.Instants, last.End); idx >= 0 && idx+1 < len(m.Instants) {
		nextInstant = m.Instants[idx+1]
	}

	var sBound, eBound Bound
	if isAnchored(last.Start) {
		sBound = Bound{last.Start}
	} else {
		sBound = Bound{last.Start[:len(last.Start)-1] + "0", nextInstant}
	}
	if isAnchored(last.End) {
		eBound = Bound{last.End}
	} else {
		eBound = Bound{last.End[:len(last.End)-1] + "0", nextInstant}
	}
	return map[string][]ForbiddenInterval{
		last.Label: {NewForbiddenInterval(sBound, eBound)},
	}, nil
}

// DeleteEvent mirrors BaseLexRepr.DeleteEvent, additionally dropping the
// instant code of any row collapsed away so the result's instants stay in
// lockstep with its data. The returned itemset carries no forbidden
// memory or history: those belong to a specific insertion lineage the
// deletion does not preserve.
func (m *MemLexRepr) DeleteEvent(e Event) (*MemLexRepr, error) {
	if e.Timeline < 0 || e.Timeline >= m.Width() {
		return nil, fmt.Errorf("tableau: timeline %d out of range: %w", e.Timeline, ErrInvalidArgument)
	}
	events, err := m.EventsList()
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

	data := copyMatrix(m.Data)
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

	var newData [][]string
	var newInstants []string
	for i, row := range data {
		keep := false
		for _, c := range row {
			if isStartMarker(c) || isEndMarker(c) {
				keep = true
				break
			}
		}
		if keep {
			newData = append(newData, row)
			if m.Instants != nil && i < len(m.Instants) {
				newInstants = append(newInstants, m.Instants[i])
			}
		}
	}
	if len(newData) == 0 {
		return nil, fmt.Errorf("tableau: deleting %v leaves an empty itemset: %w", e, ErrInvariantViolated)
	}
	if m.Instants == nil {
		newInstants = nil
	}
	return NewMemLexRepr(newData, newInstants)
}

// DelNull drops every row carrying no start or end marker on any
// timeline, keeping instants in lockstep.
func (m *MemLexRepr) DelNull() (*MemLexRepr, error) {
	var newData [][]string
	var newInstants []string
	for i, row := range m.Data {
		keep := false
		for _, c := range row {
			if isStartMarker(c) || isEndMarker(c) {
				keep = true
				break
			}
		}
		if keep {
			newData = append(newData, append([]string(nil), row...))
			if m.Instants != nil && i < len(m.Instants) {
				newInstants = append(newInstants, m.Instants[i])
			}
		}
	}
	if m.Instants == nil {
		newInstants = nil
	}
	return NewMemLexRepr(newData, newInstants)
}

// Merge grafts add's singleton event onto the larger of m and other at
// every admissible (start,end) instant pair on add's timeline, pruned by
// m's own forbidden memory under the label carried by other, and returns
// each surviving placement as a freshly owned MemLexRepr whose history
// holds exactly that one insertion.
func (m *MemLexRepr) Merge(other *MemLexRepr) ([]*MemLexRepr, error) {
	if err := m.CheckCompatibility(&other.BaseLexRepr); err != nil {
		return nil, err
	}

	base, add := m, other
	if other.Size() > m.Size() {
		base, add = other, m
	}

	addEvents, err := add.EventsList()
	if err != nil {
		return nil, err
	}
	if len(addEvents) != 1 {
		return nil, fmt.Errorf("tableau: merge operand carries %d events, want a singleton: %w", len(addEvents), ErrInvalidArgument)
	}
	timeline := addEvents[0].Timeline

	graph, err := generateInsertionPoints(base, timeline)
	if err != nil {
		return nil, err
	}

	otherEvents, err := other.EventsList()
	if err != nil {
		return nil, err
	}
	item := otherEvents[0].Label

	m.pruneFromMemory(item, graph)

	for k, v := range graph {
		if len(v) == 0 {
			delete(graph, k)
		}
	}

	return generateCombinations(base, add, timeline, graph)
}

// pruneFromMemory removes (start,end) pairs from graph that fall inside
// any forbidden interval memoized under item.
func (m *MemLexRepr) pruneFromMemory(item string, graph map[string][]string) {
	rules, ok := m.Forbidden[item]
	if !ok {
		return
	}
	for _, rule := range rules {
		for start, ends := range graph {
			if !rule.ContainsStart(start) {
				continue
			}
			kept := ends[:0:0]
			for _, e := range ends {
				if !rule.ContainsEnd(e) {
					kept = append(kept, e)
				}
			}
			graph[start] = kept
		}
	}
}

// insertionWindow is a fencepost boundary (the end of one already-placed
// event and the start of the next) used to find gaps on a timeline
// available for a new event.
type insertionWindow struct{ start, end string }

// generateInsertionPoints builds the insertion-point graph over base's
// instant coordinates for timeline: every admissible start instant code
// mapped to the admissible end instant codes reachable without crossing
// an event already occupying that timeline.
func generateInsertionPoints(base *MemLexRepr, timeline int) (map[string][]string, error) {
	points := base.Instants
	if len(points) == 0 {
		return nil, fmt.Errorf("tableau: merge operand has no instants: %w", ErrInvalidArgument)
	}
	width := len(points[0])

	updated := make([]string, len(points))
	middles := make([]string, len(points))
	for i, p := range points {
		updated[i] = p + "0"
		middles[i] = p + "5"
	}
	startingPoint := strings.Repeat("0", width) + "5"

	candidates := make([]string, 0, 2*len(points)+1)
	candidates = append(candidates, startingPoint)
	for i := range points {
		candidates = append(candidates, updated[i], middles[i])
	}

	events := []insertionWindow{{zeroSentinel(width + 1), zeroSentinel(width + 1)}}
	var openStart string
	open := false
	for i := range points {
		c := base.Data[i][timeline]
		switch {
		case isStartMarker(c):
			if !open {
				openStart = updated[i]
				open = true
			}
		case isEndMarker(c):
			events = append(events, insertionWindow{openStart, updated[i]})
			open = false
		}
	}
	events = append(events, insertionWindow{threeSentinel(width + 1), threeSentinel(width + 1)})

	graph := map[string][]string{}
	for ev := 1; ev < len(events); ev++ {
		prevEnd := events[ev-1].end
		curStart := events[ev].start

		var startingPoints, endingPoints []string
		for _, c := range candidates {
			if c >= prevEnd && c < curStart {
				startingPoints = append(startingPoints, c)
			}
		}
		for _, c := range candidates {
			if c > prevEnd && c <= curStart {
				endingPoints = append(endingPoints, c)
			}
		}

		for _, sp := range startingPoints {
			var ends []string
			for _, ep := range endingPoints {
				if (sp[len(sp)-1] == '5' && ep >= sp) || ep > sp {
					ends = append(ends, ep)
				}
			}
			if len(ends) > 0 {
				graph[sp] = ends
			}
		}
	}
	return graph, nil
}

// generateCombinations materializes one candidate MemLexRepr per
// surviving (start,end) pair in graph: a deep copy of base's data with
// add's event grafted on at that placement, per 4.4.2 of the insertion
// algorithm. A placement whose grafted matrix is not a well-formed tableau
// (the new event's start landing on an open event of the same label) is
// skipped.
func generateCombinations(base, add *MemLexRepr, timeline int, graph map[string][]string) ([]*MemLexRepr, error) {
	baseWidth := len(base.Instants[0])
	positions := make([]string, 0, len(base.Instants)+2)
	positions = append(positions, zeroSentinel(baseWidth))
	positions = append(positions, base.Instants...)
	positions = append(positions, threeSentinel(baseWidth))

	addEvents, err := add.EventsList()
	if err != nil {
		return nil, err
	}
	addEvent := addEvents[0]
	startCell := startMarker(addEvent.Label)
	endCell := endMarker(addEvent.Label)

	starts := make([]string, 0, len(graph))
	for s := range graph {
		starts = append(starts, s)
	}
	sort.Strings(starts)

	var out []*MemLexRepr
	for _, i := range starts {
		ends := append([]string(nil), graph[i]...)
		sort.Strings(ends)

		iPos := indexOf(positions, i[:len(i)-1])
		if iPos != 0 && i[len(i)-1] != '5' {
			iPos--
		}

		for _, j := range ends {
			jPos := indexOf(positions, j[:len(j)-1])
			if jPos != 0 && j[len(j)-1] != '5' {
				jPos--
			}

			combination := copyMatrix(base.Data)

			offset := 0
			if i[len(i)-1] != '0' {
				row, err := base.GenNullRow(iPos)
				if err != nil {
					return nil, err
				}
				combination = insertRow(combination, iPos, row)
				offset = 1
			}

			combination[iPos][timeline] = startCell

			if j[len(j)-1] != '0' {
				row, err := base.GenNullRow(jPos)
				if err != nil {
					return nil, err
				}
				combination = insertRow(combination, jPos+offset, row)
			}

			if !isStartMarker(combination[jPos+offset][timeline]) {
				combination[jPos+offset][timeline] = endCell
			}

			for k := iPos + 1; k < jPos+offset; k++ {
				combination[k][timeline] = interiorMarker(addEvent.Label)
			}

			tempInstants := make([]string, len(base.Instants))
			for idx, p := range base.Instants {
				tempInstants[idx] = p + "0"
			}

			iFinal, jFinal := i, j
			if i[len(i)-1] != '0' {
				iFinal = anchoredImage(i, '4')
				tempInstants = insertString(tempInstants, iPos, iFinal)
			}
			if j[len(j)-1] != '0' {
				jFinal = anchoredImage(j, '6')
				tempInstants = insertString(tempInstants, jPos+offset, jFinal)
			}

			candidate, err := NewMemLexRepr(combination, tempInstants)
			if errors.Is(err, ErrInvalidFormat) {
				continue
			}
			if err != nil {
				return nil, err
			}
			candidate.History = []HistoryEntry{{Label: addEvent.Label, Start: iFinal, End: jFinal}}
			out = append(out, candidate)
		}
	}
	return out, nil
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func insertRow(rows [][]string, pos int, row []string) [][]string {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, rows[:pos]...)
	out = append(out, row)
	out = append(out, rows[pos:]...)
	return out
}

func insertString(s []string, pos int, v string) []string {
	out := make([]string, 0, len(s)+1)
	out = append(out, s[:pos]...)
	out = append(out, v)
	out = append(out, s[pos:]...)
	return out
}
