// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package preprocess builds lexical tableaux from raw per-timeline interval
// observations, the façade between a caller's timestamped event log and the
// tableau package's matrix representation.
package preprocess

import (
	"fmt"
	"sort"

	"github.com/biogo/store/interval"
	"github.com/biogo/store/step"

	"github.com/eirikstad/tableau/tableau"
)

// Interval is a single labelled occurrence on one timeline. Start and End
// may be integer or floating seconds; only their relative order matters; the
// façade ranks them into lexical-tableau rows itself.
type Interval struct {
	Label string  `json:"label"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// span is the interval.Interface wrapper used to detect overlapping input
// intervals on a single timeline, the same technique cullContained uses to
// find features contained by a higher scoring one.
type span struct {
	id         uintptr
	start, end int
}

// Overlap reports whether s and b share more than a boundary point. Touching
// intervals (one's end equal to another's start) are not an overlap: they
// collapse onto a single tableau row under the force-close rule.
func (s span) Overlap(b interval.IntRange) bool { return s.start < b.End && b.Start < s.end }
func (s span) ID() uintptr                      { return s.id }
func (s span) Range() interval.IntRange         { return interval.IntRange{Start: s.start, End: s.end} }

// labelState is the step.Equaler carried by a timeline's step.Vector: the
// label of whichever interval is active, or "" when none is.
type labelState string

func (l labelState) Equal(e step.Equaler) bool {
	other, ok := e.(labelState)
	return ok && other == l
}

// Record builds a *tableau.BaseLexRepr from one record's timelines. Every
// timeline's intervals must already be disjoint; overlapping intervals on
// the same timeline are rejected.
func Record(timelines map[int][]Interval) (*tableau.BaseLexRepr, error) {
	width := 0
	for t := range timelines {
		if t+1 > width {
			width = t + 1
		}
	}
	if width == 0 {
		return nil, fmt.Errorf("preprocess: no timelines: %w", tableau.ErrInvalidArgument)
	}

	marks, err := globalMarks(timelines)
	if err != nil {
		return nil, err
	}
	rankOf := func(v float64) int {
		return sort.SearchFloat64s(marks, v)
	}

	data := make([][]string, len(marks))
	for r := range data {
		data[r] = make([]string, width)
	}

	for t, ivs := range timelines {
		sorted := make([]Interval, len(ivs))
		copy(sorted, ivs)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

		if err := checkDisjoint(sorted, rankOf); err != nil {
			return nil, fmt.Errorf("preprocess: timeline %d: %w", t, err)
		}

		tv, err := step.New(0, 1, labelState(""))
		if err != nil {
			return nil, fmt.Errorf("preprocess: timeline %d: %v: %w", t, err, tableau.ErrInvalidArgument)
		}
		tv.Relaxed = true

		for _, iv := range sorted {
			s, e := rankOf(iv.Start), rankOf(iv.End)
			data[s][t] = "S_" + iv.Label
			data[e][t] = "E_" + iv.Label
			if e > s+1 {
				lbl := iv.Label
				err := tv.ApplyRange(s+1, e, func(step.Equaler) step.Equaler {
					return labelState(lbl)
				})
				if err != nil {
					return nil, fmt.Errorf("preprocess: timeline %d: %v: %w", t, err, tableau.ErrInvalidArgument)
				}
			}
		}

		tv.Do(func(start, end int, e step.Equaler) {
			lbl := string(e.(labelState))
			if lbl == "" {
				return
			}
			for r := start; r < end; r++ {
				if data[r][t] == "" {
					data[r][t] = "I_" + lbl
				}
			}
		})
	}

	for r := range data {
		for t := range data[r] {
			if data[r][t] == "" {
				data[r][t] = "_"
			}
		}
	}

	return tableau.NewBaseLexRepr(data)
}

// checkDisjoint rejects overlapping intervals on one timeline via an
// interval.IntTree, the same overlap-query technique cullContained uses.
func checkDisjoint(sorted []Interval, rankOf func(float64) int) error {
	var tree interval.IntTree
	spans := make([]span, len(sorted))
	for i, iv := range sorted {
		spans[i] = span{id: uintptr(i), start: rankOf(iv.Start), end: rankOf(iv.End)}
		if err := tree.Insert(spans[i], true); err != nil {
			return fmt.Errorf("%v: %w", err, tableau.ErrInvalidArgument)
		}
	}
	tree.AdjustRanges()
	for _, s := range spans {
		for _, hit := range tree.Get(s) {
			if hit.(span).id != s.id {
				return fmt.Errorf("overlapping intervals: %w", tableau.ErrInvalidArgument)
			}
		}
	}
	return nil
}

// globalMarks collects every distinct Start/End value across all of a
// record's timelines and returns them sorted ascending; their indices are
// the record's lexical-tableau row ranks.
func globalMarks(timelines map[int][]Interval) ([]float64, error) {
	seen := make(map[float64]bool)
	var marks []float64
	for _, ivs := range timelines {
		for _, iv := range ivs {
			if iv.End <= iv.Start {
				return nil, fmt.Errorf("preprocess: interval %q end %v not after start %v: %w", iv.Label, iv.End, iv.Start, tableau.ErrInvalidArgument)
			}
			if !seen[iv.Start] {
				seen[iv.Start] = true
				marks = append(marks, iv.Start)
			}
			if !seen[iv.End] {
				seen[iv.End] = true
				marks = append(marks, iv.End)
			}
		}
	}
	if len(marks) == 0 {
		return nil, fmt.Errorf("preprocess: no intervals: %w", tableau.ErrInvalidArgument)
	}
	sort.Float64s(marks)
	return marks, nil
}

// Dataset runs Record over every element of records, returning one
// *tableau.BaseLexRepr per record, the direct input to tableau.NewEngine.
func Dataset(records []map[int][]Interval) ([]*tableau.BaseLexRepr, error) {
	out := make([]*tableau.BaseLexRepr, len(records))
	for i, r := range records {
		base, err := Record(r)
		if err != nil {
			return nil, fmt.Errorf("preprocess: record %d: %w", i, err)
		}
		out[i] = base
	}
	return out, nil
}
