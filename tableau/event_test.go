// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tableau

import (
	"errors"
	"sort"
	"testing"
)

func TestNewEvent(t *testing.T) {
	tests := []struct {
		name    string
		tl      int
		label   string
		s, e    int
		wantErr bool
	}{
		{name: "valid", tl: 0, label: "a", s: 0, e: 1},
		{name: "negative timeline", tl: -1, label: "a", s: 0, e: 1, wantErr: true},
		{name: "empty label", tl: 0, label: "", s: 0, e: 1, wantErr: true},
		{name: "underscore label", tl: 0, label: "a_b", s: 0, e: 1, wantErr: true},
		{name: "start not before end", tl: 0, label: "a", s: 1, e: 1, wantErr: true},
		{name: "start after end", tl: 0, label: "a", s: 2, e: 1, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEvent(tc.tl, tc.label, tc.s, tc.e)
			if tc.wantErr && !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("NewEvent(%d, %q, %d, %d) = %v, want ErrInvalidArgument", tc.tl, tc.label, tc.s, tc.e, err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("NewEvent(%d, %q, %d, %d) = %v, want nil", tc.tl, tc.label, tc.s, tc.e, err)
			}
		})
	}
}

func TestEventLess(t *testing.T) {
	a, _ := NewEvent(0, "a", 0, 2)
	b, _ := NewEvent(1, "b", 0, 2)
	c, _ := NewEvent(0, "a", 1, 3)
	events := []Event{c, b, a}
	sort.Sort(byEventOrder(events))
	want := []Event{a, b, c}
	for i, e := range events {
		if e != want[i] {
			t.Fatalf("sorted[%d] = %v, want %v", i, e, want[i])
		}
	}
}

func TestEventTuple(t *testing.T) {
	e, err := NewEvent(2, "foo", 3, 5)
	if err != nil {
		t.Fatal(err)
	}
	tl, label, span := e.Tuple()
	if tl != 2 || label != "foo" || span != [2]int{3, 5} {
		t.Fatalf("Tuple() = %d, %q, %v, want 2, \"foo\", [3 5]", tl, label, span)
	}
}
