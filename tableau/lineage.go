// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tableau

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
)

// lineageNode is a graph.Node wrapping an itemset's searchable-string key.
type lineageNode struct {
	id   int64
	name string
}

func (n lineageNode) ID() int64     { return n.id }
func (n lineageNode) DOTID() string { return n.name }

// lineageEdge is a parent-to-child backing edge, labelled with the event
// whose deletion from the child recovers the parent.
type lineageEdge struct {
	f, t  graph.Node
	label string
}

func (e lineageEdge) From() graph.Node         { return e.f }
func (e lineageEdge) To() graph.Node           { return e.t }
func (e lineageEdge) ReversedEdge() graph.Edge { return lineageEdge{f: e.t, t: e.f, label: e.label} }
func (e lineageEdge) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "label", Value: e.label}}
}

// lineageGraph assigns stable node IDs to itemsets keyed by their
// searchable string, so the same itemset seen through multiple backing
// checks collapses onto one node.
type lineageGraph struct {
	*simple.DirectedGraph
	idFor map[string]int64
}

func newLineageGraph() *lineageGraph {
	return &lineageGraph{DirectedGraph: simple.NewDirectedGraph(), idFor: make(map[string]int64)}
}

func (g *lineageGraph) nodeFor(key string) graph.Node {
	if id, ok := g.idFor[key]; ok {
		return g.Node(id)
	}
	id := g.NewNode().ID()
	g.idFor[key] = id
	n := lineageNode{id: id, name: key}
	g.AddNode(n)
	return n
}

func (g *lineageGraph) addEdge(parentKey, childKey, label string) {
	g.SetEdge(lineageEdge{f: g.nodeFor(parentKey), t: g.nodeFor(childKey), label: label})
}

// Lineage exposes the parent-to-child backing edges recorded during the
// run so far as a directed graph: one edge per (candidate, match) pair
// checkReasonable found, labelled with the event that distinguishes
// child from parent. It is diagnostic only and never affects Run's
// result.
func (e *Engine) Lineage() graph.Directed {
	if e.lineage == nil {
		return newLineageGraph().DirectedGraph
	}
	return e.lineage.DirectedGraph
}

// WriteLineageDOT marshals g in DOT format, in the same style as the
// teacher's discordance-graph export.
func WriteLineageDOT(g graph.Directed, w io.Writer) error {
	b, err := dot.Marshal(g, "lineage", "", "\t")
	if err != nil {
		return fmt.Errorf("tableau: marshal lineage graph: %w", err)
	}
	_, err = w.Write(b)
	return err
}
