// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tableau

import (
	"errors"
	"testing"
)

func TestNewBaseLexReprValidation(t *testing.T) {
	if _, err := NewBaseLexRepr(nil); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("empty matrix: got %v, want ErrInvalidFormat", err)
	}
	if _, err := NewBaseLexRepr([][]string{{"_"}, {"_"}}); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("all-null matrix: got %v, want ErrInvalidFormat", err)
	}
	if _, err := NewBaseLexRepr([][]string{{"S_a"}, {"_", "_"}}); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("ragged row: got %v, want ErrInvalidFormat", err)
	}
	if _, err := NewBaseLexRepr([][]string{{"X_a"}}); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("bad cell: got %v, want ErrInvalidFormat", err)
	}
	if _, err := NewBaseLexRepr([][]string{{"S_a"}, {"S_a"}}); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("double start: got %v, want ErrInvalidFormat", err)
	}
	if _, err := NewBaseLexRepr([][]string{{"I_a"}}); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("orphan interior marker: got %v, want ErrInvalidFormat", err)
	}
	if _, err := NewBaseLexRepr([][]string{{"E_a"}}); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("orphan end marker: got %v, want ErrInvalidFormat", err)
	}
}

func TestEventsListForceClose(t *testing.T) {
	l, err := NewBaseLexRepr([][]string{{"S_a"}, {"S_b"}, {"E_b"}})
	if err != nil {
		t.Fatal(err)
	}
	events, err := l.EventsList()
	if err != nil {
		t.Fatal(err)
	}
	want := []Event{
		{Timeline: 0, Label: "a", Start: 0, End: 1},
		{Timeline: 0, Label: "b", Start: 1, End: 2},
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

func TestEventsListOpenAtEnd(t *testing.T) {
	l, err := NewBaseLexRepr([][]string{{"S_a"}, {"I_a"}})
	if err != nil {
		t.Fatal(err)
	}
	events, err := l.EventsList()
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0] != (Event{Timeline: 0, Label: "a", Start: 0, End: 2}) {
		t.Fatalf("EventsList() = %v, want one event a=(0,2)", events)
	}
}

func TestDeleteEventRestoresBoundary(t *testing.T) {
	l, err := NewBaseLexRepr([][]string{{"S_a"}, {"S_b"}, {"S_c"}, {"E_c"}})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewEvent(0, "b", 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	out, err := l.DeleteEvent(b)
	if err != nil {
		t.Fatal(err)
	}
	events, err := out.EventsList()
	if err != nil {
		t.Fatal(err)
	}
	want := []Event{
		{Timeline: 0, Label: "a", Start: 0, End: 1},
		{Timeline: 0, Label: "c", Start: 2, End: 3},
	}
	if len(events) != len(want) {
		t.Fatalf("DeleteEvent(b).EventsList() = %v, want %v", events, want)
	}
	for i, e := range events {
		if e != want[i] {
			t.Fatalf("DeleteEvent(b).EventsList()[%d] = %v, want %v", i, e, want[i])
		}
	}
}

func TestDeleteEventUnknownEvent(t *testing.T) {
	l, err := NewBaseLexRepr([][]string{{"S_a"}, {"E_a"}})
	if err != nil {
		t.Fatal(err)
	}
	other, err := NewEvent(0, "zzz", 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.DeleteEvent(other); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("DeleteEvent(absent event) = %v, want ErrInvalidArgument", err)
	}
}

// TestContainsShiftedMapping verifies that Contains recognizes a pattern
// whose events only line up with a container under a non-identity row
// shift: the container's b/c pair sits one row later than the pattern's own
// local coordinates place them.
func TestContainsShiftedMapping(t *testing.T) {
	container, err := NewBaseLexRepr([][]string{{"S_a"}, {"S_b"}, {"S_c"}, {"E_c"}})
	if err != nil {
		t.Fatal(err)
	}
	pattern, err := NewBaseLexRepr([][]string{{"S_b"}, {"S_c"}, {"E_c"}})
	if err != nil {
		t.Fatal(err)
	}
	ok, err := Contains(container, pattern)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("Contains() = false, want true for a shifted-but-structurally-equal pattern")
	}
}

func TestContainsReflexive(t *testing.T) {
	l, err := NewBaseLexRepr([][]string{{"S_a"}, {"S_b"}, {"E_b"}})
	if err != nil {
		t.Fatal(err)
	}
	ok, err := Contains(l, l)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("Contains(l, l) = false, want true")
	}
}

func TestContainsRejectsMissingEvent(t *testing.T) {
	container, err := NewBaseLexRepr([][]string{{"S_a"}, {"E_a"}})
	if err != nil {
		t.Fatal(err)
	}
	pattern, err := NewBaseLexRepr([][]string{{"S_z"}, {"E_z"}})
	if err != nil {
		t.Fatal(err)
	}
	ok, err := Contains(container, pattern)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("Contains() = true, want false: pattern label never occurs in container")
	}
}

func TestContainsRejectsWidthMismatch(t *testing.T) {
	container, err := NewBaseLexRepr([][]string{{"S_a", "_"}, {"E_a", "_"}})
	if err != nil {
		t.Fatal(err)
	}
	pattern, err := NewBaseLexRepr([][]string{{"S_a"}, {"E_a"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Contains(container, pattern); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Contains() width mismatch = %v, want ErrInvalidArgument", err)
	}
}

func TestFromEvent(t *testing.T) {
	e, err := NewEvent(1, "x", 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	data, err := FromEvent(e, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"_", "S_x"}, {"_", "E_x"}}
	for i := range want {
		for j := range want[i] {
			if data[i][j] != want[i][j] {
				t.Fatalf("FromEvent()[%d][%d] = %q, want %q", i, j, data[i][j], want[i][j])
			}
		}
	}
}
