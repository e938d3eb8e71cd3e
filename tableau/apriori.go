// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tableau

import (
	"context"
	"fmt"
)

// AuditSink persists every itemset the engine measures, frequent or not.
// Insert must be synchronous: the engine treats a sink failure as fatal
// and aborts the run rather than continue with a partial audit trail.
type AuditSink interface {
	Insert(itemset *MemLexRepr, support float64, frequent bool) error
}

// EngineOption configures an Engine at construction time.
type EngineOption func(*Engine)

// WithAuditSink attaches a sink that records every measured itemset.
// saveAll additionally controls whether itemsets that miss the support
// threshold are recorded too; when false only frequent ones are.
func WithAuditSink(sink AuditSink, saveAll bool) EngineOption {
	return func(e *Engine) {
		e.sink = sink
		e.saveAll = saveAll
	}
}

// WithCutSolutions supplies a denylist of itemsets to discard before
// support evaluation: singlets matching one are never extracted, and
// candidates matching one are never measured.
func WithCutSolutions(cut []*BaseLexRepr) EngineOption {
	return func(e *Engine) {
		e.cutSolutions = make(map[string]bool, len(cut))
		for _, c := range cut {
			e.cutSolutions[c.AsSearchableString()] = true
		}
	}
}

// Engine mines frequent interval-itemsets from a dataset of lexical
// tableaux by iterated merge, downward-closure backing and support
// measurement. It owns no dataset state beyond read access: every
// candidate it produces is an independently owned MemLexRepr.
type Engine struct {
	dataset []*BaseLexRepr
	epsilon float64

	sink    AuditSink
	saveAll bool

	cutSolutions map[string]bool

	size int

	singlets        []*MemLexRepr
	frequentItemsets map[int][]*MemLexRepr
	candidateNext    map[int][][]*MemLexRepr

	lineage *lineageGraph
}

// NewEngine constructs an Engine over dataset at support threshold
// epsilon. epsilon must lie in (0, 1]; dataset must be non-empty.
func NewEngine(dataset []*BaseLexRepr, epsilon float64, opts ...EngineOption) (*Engine, error) {
	if len(dataset) == 0 {
		return nil, fmt.Errorf("tableau: empty dataset: %w", ErrInvalidArgument)
	}
	if epsilon <= 0 || epsilon > 1 {
		return nil, fmt.Errorf("tableau: epsilon %v out of (0,1]: %w", epsilon, ErrInvalidArgument)
	}
	width := dataset[0].Width()
	for _, d := range dataset[1:] {
		if d.Width() != width {
			return nil, fmt.Errorf("tableau: dataset record width %d, want %d: %w", d.Width(), width, ErrInvalidArgument)
		}
	}
	e := &Engine{
		dataset:          dataset,
		epsilon:          epsilon,
		frequentItemsets: map[int][]*MemLexRepr{},
		candidateNext:    map[int][][]*MemLexRepr{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run executes the full Apriori loop, returning frequent itemsets keyed
// by size. It stops early, returning ctx.Err(), if ctx is cancelled
// between sizes or singlets; merge, backing and support measurement
// themselves never suspend. When it stops between sizes, the itemsets of
// every size already completed are returned alongside ctx.Err(); when it
// stops while measuring singlets, the returned map is nil.
func (e *Engine) Run(ctx context.Context) (map[int][]*MemLexRepr, error) {
	if e.singlets == nil {
		singlets, err := e.extractItems()
		if err != nil {
			return nil, err
		}
		e.singlets = singlets
	}

	e.size = 1
	e.candidateNext[1] = [][]*MemLexRepr{e.singlets}
	e.frequentItemsets[1] = nil
	for _, itemset := range e.singlets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.measure(itemset); err != nil {
			return nil, err
		}
	}

	for len(e.frequentItemsets[e.size]) > 0 {
		if err := ctx.Err(); err != nil {
			return e.frequentItemsets, err
		}
		e.size++

		groups, err := e.generateNext()
		if err != nil {
			return nil, err
		}
		e.candidateNext[e.size] = groups

		frequent, err := e.checkGroupSupport()
		if err != nil {
			return nil, err
		}
		e.frequentItemsets[e.size] = frequent
	}
	return e.frequentItemsets, nil
}

// measure computes itemset's support, records it to the frequent-itemset
// list and audit sink if it clears epsilon, and audits it as unfrequent
// otherwise when save-all is on.
func (e *Engine) measure(itemset *MemLexRepr) error {
	supp, err := e.support(itemset)
	if err != nil {
		return err
	}
	if supp >= e.epsilon {
		e.frequentItemsets[e.size] = append(e.frequentItemsets[e.size], itemset)
		return e.audit(itemset, supp, true)
	}
	return e.audit(itemset, supp, false)
}

func (e *Engine) audit(itemset *MemLexRepr, supp float64, frequent bool) error {
	if e.sink == nil {
		return nil
	}
	if !frequent && !e.saveAll {
		return nil
	}
	if err := e.sink.Insert(itemset, supp, frequent); err != nil {
		return fmt.Errorf("tableau: audit sink: %v: %w", err, ErrSink)
	}
	return nil
}

// support measures the fraction of the dataset that exhibits itemset,
// using exact containment.
func (e *Engine) support(itemset *MemLexRepr) (float64, error) {
	count := 0
	for _, record := range e.dataset {
		ok, err := Contains(record, &itemset.BaseLexRepr)
		if err != nil {
			return 0, err
		}
		if ok {
			count++
		}
	}
	return float64(count) / float64(len(e.dataset)), nil
}

// extractItems builds one singleton MemLexRepr per distinct event across
// the dataset, excluding any named by cutSolutions.
func (e *Engine) extractItems() ([]*MemLexRepr, error) {
	seen := make(map[string]bool)
	var out []*MemLexRepr
	for _, record := range e.dataset {
		events, err := record.EventsList()
		if err != nil {
			return nil, err
		}
		width := record.Width()
		for _, ev := range events {
			singlet, err := NewSingletonMemLexRepr(ev, width)
			if err != nil {
				return nil, err
			}
			key := singlet.Key()
			if seen[key] {
				continue
			}
			if e.cutSolutions != nil && e.cutSolutions[key] {
				continue
			}
			seen[key] = true
			out = append(out, singlet)
		}
	}
	return out, nil
}

// generateNext merges every frequent (size-1) itemset with every
// frequent singlet, keeping one merge-sibling group per (i,j) pair whose
// candidates pass downward-closure backing. A candidate equal to one
// already kept, in this group or an earlier one, is dropped.
func (e *Engine) generateNext() ([][]*MemLexRepr, error) {
	var groups [][]*MemLexRepr
	var known []*MemLexRepr
	for _, i := range e.frequentItemsets[e.size-1] {
		for _, j := range e.frequentItemsets[1] {
			candidates, err := i.Merge(j)
			if err != nil {
				return nil, err
			}

			var kept []*MemLexRepr
			for _, c := range candidates {
				dup := false
				for _, k := range known {
					if k.Equal(c) {
						dup = true
						break
					}
				}
				if dup {
					continue
				}
				reasonable, err := e.checkReasonable(c)
				if err != nil {
					return nil, err
				}
				if !reasonable {
					continue
				}
				if e.cutSolutions != nil && e.cutSolutions[c.Key()] {
					continue
				}
				known = append(known, c)
				kept = append(kept, c)
			}
			if len(kept) > 0 {
				groups = append(groups, kept)
			}
		}
	}
	return groups, nil
}

// checkGroupSupport measures support for every candidate in every group
// of candidateNext[size], dropping those below epsilon (auditing both
// outcomes) and flattening the survivors into the next frequent set.
func (e *Engine) checkGroupSupport() ([]*MemLexRepr, error) {
	var out []*MemLexRepr
	for _, group := range e.candidateNext[e.size] {
		var kept []*MemLexRepr
		for _, candidate := range group {
			supp, err := e.support(candidate)
			if err != nil {
				return nil, err
			}
			if supp < e.epsilon {
				if err := e.audit(candidate, supp, false); err != nil {
					return nil, err
				}
				continue
			}
			if err := e.audit(candidate, supp, true); err != nil {
				return nil, err
			}
			kept = append(kept, candidate)
		}
		if len(kept) > 0 {
			out = append(out, kept...)
		}
	}
	return out, nil
}

// checkReasonable performs downward-closure backing on candidate: for
// every event it carries, the itemset obtained by deleting that event
// must structurally match some member of frequentItemsets[size-1].
// Along the way it rewrites that member's forbidden memory into
// candidate's own instant coordinates (the forward pass) and registers a
// new forbidden rule on the member itself reflecting the removed event's
// position (the backward pass), so a future merge that revisits the same
// member skips the placement this candidate already explored.
func (e *Engine) checkReasonable(candidate *MemLexRepr) (bool, error) {
	events, err := candidate.EventsList()
	if err != nil {
		return false, err
	}
	prevSize := e.frequentItemsets[e.size-1]

	found := true
	for _, event := range events {
		candidatePrevious, err := candidate.DeleteEvent(event)
		if err != nil {
			return false, err
		}

		var match *MemLexRepr
		matches := 0
		for _, cand := range prevSize {
			if cand.Equal(candidatePrevious) {
				match = cand
				matches++
			}
		}
		if matches == 0 {
			found = false
			continue
		}
		if matches > 1 {
			return false, fmt.Errorf("tableau: %d matches for %s: %w", matches, candidatePrevious.Key(), ErrInvariantViolated)
		}

		candidateWidth := len(candidate.Instants[0])
		shifted := make(map[string][]ForbiddenInterval, len(match.Forbidden))
		for label, rules := range match.Forbidden {
			for _, rule := range rules {
				shifted[label] = append(shifted[label], NewForbiddenInterval(
					rewriteBound(rule.Start, candidateWidth, candidatePrevious, match),
					rewriteBound(rule.End, candidateWidth, candidatePrevious, match),
				))
			}
		}
		candidate.MergeForbidden(shifted)

		if e.lineage == nil {
			e.lineage = newLineageGraph()
		}
		e.lineage.addEdge(match.Key(), candidate.Key(), event.Label)

		match.MergeForbidden(map[string][]ForbiddenInterval{
			event.Label: {NewForbiddenInterval(
				backwardStartBound(candidate, candidatePrevious, match, event),
				backwardEndBound(candidate, candidatePrevious, match, event),
			)},
		})
	}
	return found, nil
}

// rewriteBound rewrites a forbidden-rule bound recorded in match's
// coordinate space into width-digit codes in candidate's coordinate
// space: the global sentinels map to their own width's image, and every
// other code is relocated through its position in match.Instants to the
// same position in candidatePrevious.Instants (the same (size-1) itemset,
// expressed in candidate's own coordinate system).
func rewriteBound(rule Bound, width int, candidatePrevious, match *MemLexRepr) Bound {
	out := make(Bound, len(rule))
	for i, code := range rule {
		switch {
		case isZeroSentinel(code):
			out[i] = zeroSentinel(width)
		case isThreeSentinel(code):
			out[i] = threeSentinel(width)
		default:
			idx := indexOf(match.Instants, code)
			out[i] = candidatePrevious.Instants[idx]
		}
	}
	return out
}

// backwardStartBound computes the allowed-start range to register on
// match, in match's own coordinate space, for the position the removed
// event's start occupied in candidate.
func backwardStartBound(candidate, candidatePrevious, match *MemLexRepr, event Event) Bound {
	matchWidth := len(match.Instants[0])
	code := candidate.Instants[event.Start]
	if idx := indexOf(candidatePrevious.Instants, code); idx >= 0 {
		return Bound{match.Instants[idx]}
	}
	if event.Start == 0 {
		return Bound{zeroSentinel(matchWidth), match.Instants[event.Start]}
	}
	prevInstant := candidate.Instants[event.Start-1]
	prevIdx := indexOf(candidatePrevious.Instants, prevInstant)
	if prevIdx == len(candidatePrevious.Instants)-1 {
		return Bound{match.Instants[prevIdx], threeSentinel(matchWidth)}
	}
	return Bound{match.Instants[prevIdx], match.Instants[prevIdx+1]}
}

// backwardEndBound computes the allowed-end range to register on match,
// in match's own coordinate space, for the position the removed event's
// end occupied in candidate.
func backwardEndBound(candidate, candidatePrevious, match *MemLexRepr, event Event) Bound {
	matchWidth := len(match.Instants[0])
	code := candidate.Instants[event.End]
	if idx := indexOf(candidatePrevious.Instants, code); idx >= 0 {
		return Bound{match.Instants[idx]}
	}
	if event.End == len(candidate.Instants)-1 {
		return Bound{match.Instants[len(match.Instants)-1], threeSentinel(matchWidth)}
	}
	nextInstant := candidate.Instants[event.End+1]
	nextIdx := indexOf(candidatePrevious.Instants, nextInstant)
	var start string
	if nextIdx == 0 {
		start = zeroSentinel(matchWidth)
	} else {
		start = match.Instants[nextIdx-1]
	}
	return Bound{start, match.Instants[nextIdx]}
}
