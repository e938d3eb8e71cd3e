// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package preprocess

import (
	"errors"
	"testing"

	"github.com/eirikstad/tableau/tableau"
)

func TestRecordBuildsInteriorMarkers(t *testing.T) {
	timelines := map[int][]Interval{
		0: {{Label: "a", Start: 0, End: 1}},
		1: {{Label: "b", Start: 0.5, End: 1.5}},
	}
	base, err := Record(timelines)
	if err != nil {
		t.Fatal(err)
	}
	events, err := base.EventsList()
	if err != nil {
		t.Fatal(err)
	}
	want := []tableau.Event{
		mustEvent(t, 0, "a", 0, 2),
		mustEvent(t, 1, "b", 1, 3),
	}
	if len(events) != len(want) {
		t.Fatalf("EventsList() = %v, want %v", events, want)
	}
	for i, e := range events {
		if e != want[i] {
			t.Fatalf("EventsList()[%d] = %v, want %v", i, e, want[i])
		}
	}
}

func TestRecordTouchingIntervalsCollapse(t *testing.T) {
	timelines := map[int][]Interval{
		0: {
			{Label: "a", Start: 0, End: 1},
			{Label: "b", Start: 1, End: 2},
		},
	}
	base, err := Record(timelines)
	if err != nil {
		t.Fatal(err)
	}
	events, err := base.EventsList()
	if err != nil {
		t.Fatal(err)
	}
	want := []tableau.Event{
		mustEvent(t, 0, "a", 0, 1),
		mustEvent(t, 0, "b", 1, 2),
	}
	if len(events) != len(want) {
		t.Fatalf("EventsList() = %v, want %v", events, want)
	}
	for i, e := range events {
		if e != want[i] {
			t.Fatalf("EventsList()[%d] = %v, want %v", i, e, want[i])
		}
	}
}

func TestRecordRejectsOverlap(t *testing.T) {
	timelines := map[int][]Interval{
		0: {
			{Label: "a", Start: 0, End: 2},
			{Label: "b", Start: 1, End: 3},
		},
	}
	if _, err := Record(timelines); !errors.Is(err, tableau.ErrInvalidArgument) {
		t.Fatalf("Record() with overlapping intervals = %v, want ErrInvalidArgument", err)
	}
}

func TestRecordRejectsEmpty(t *testing.T) {
	if _, err := Record(nil); !errors.Is(err, tableau.ErrInvalidArgument) {
		t.Fatalf("Record(nil) = %v, want ErrInvalidArgument", err)
	}
	if _, err := Record(map[int][]Interval{0: nil}); !errors.Is(err, tableau.ErrInvalidArgument) {
		t.Fatalf("Record(no intervals) = %v, want ErrInvalidArgument", err)
	}
}

func TestDatasetWrapsMultipleRecords(t *testing.T) {
	records := []map[int][]Interval{
		{0: {{Label: "a", Start: 0, End: 1}}},
		{0: {{Label: "a", Start: 5, End: 6}}},
	}
	dataset, err := Dataset(records)
	if err != nil {
		t.Fatal(err)
	}
	if len(dataset) != 2 {
		t.Fatalf("Dataset() returned %d records, want 2", len(dataset))
	}
}

func mustEvent(t *testing.T, timeline int, label string, start, end int) tableau.Event {
	t.Helper()
	e, err := tableau.NewEvent(timeline, label, start, end)
	if err != nil {
		t.Fatal(err)
	}
	return e
}
