// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tableau

import "errors"

// Sentinel errors for the taxonomy described in the package design notes.
// Callers should use errors.Is to test for these, since every raise site
// wraps one of them with context via fmt.Errorf's %w verb.
var (
	// ErrInvalidFormat is returned when a marker matrix, instant list or
	// label fails the structural checks applied at construction time.
	ErrInvalidFormat = errors.New("tableau: invalid format")

	// ErrInvalidArgument is returned for well-formed but inapplicable
	// arguments: merging a non-singleton, merging incompatible widths.
	ErrInvalidArgument = errors.New("tableau: invalid argument")

	// ErrInvariantViolated is returned when a downward-closure check finds
	// more than one structural match for a (k-1)-subset in frequent[k-1],
	// which would indicate a duplicate slipped through candidate
	// generation.
	ErrInvariantViolated = errors.New("tableau: invariant violated")

	// ErrSink is returned when the optional audit sink fails to persist a
	// record. It always surfaces immediately; the engine performs no
	// partial-audit recovery.
	ErrSink = errors.New("tableau: audit sink error")
)
