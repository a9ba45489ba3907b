/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package compose is the graph mutation and execution engine: it owns the
// canonical node and edge collections, applies structural deltas from the
// rendering layer, propagates values along edges, and runs the graph in
// dependency order, invoking one completion call per llm-prompt node.
package compose

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/cloudwego/flowcanvas/callbacks"
	"github.com/cloudwego/flowcanvas/components/model"
	"github.com/cloudwego/flowcanvas/schema"
)

// Graph is the canonical store of a workflow's nodes and edges. Every
// mutation is serialized behind a single lock; readers receive deep copies so
// no caller can observe or corrupt internal state through a retained
// reference after the graph has moved on.
type Graph struct {
	mu sync.Mutex

	nodes     map[string]*schema.Node
	nodeOrder []string
	edges     []*schema.Edge
	selection string

	cm       model.CompletionModel
	handlers []callbacks.Handler
}

// GraphOption configures a new graph.
type GraphOption func(g *Graph)

// WithCompletionModel sets the completion model used to run llm-prompt nodes.
// The model instance carries the external-call credential; the engine shares
// it read-only across concurrent node runs.
func WithCompletionModel(cm model.CompletionModel) GraphOption {
	return func(g *Graph) {
		g.cm = cm
	}
}

// WithCallbacks registers handlers notified of structural changes and node
// runs.
func WithCallbacks(handlers ...callbacks.Handler) GraphOption {
	return func(g *Graph) {
		g.handlers = append(g.handlers, handlers...)
	}
}

// NewGraph creates an empty graph.
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{
		nodes: make(map[string]*schema.Node),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FromSnapshot restores a graph from a persisted snapshot. The snapshot is
// validated: node ids must be unique, edges must reference existing nodes,
// the (target, target handle) pairs must be unique, and the graph must be
// acyclic.
func FromSnapshot(s *schema.GraphSnapshot, opts ...GraphOption) (*Graph, error) {
	g := NewGraph(opts...)
	if s == nil {
		return g, nil
	}

	for _, n := range s.Nodes {
		if n == nil || n.ID == "" {
			return nil, newValidationError("snapshot contains a node without id")
		}
		if n.Data == nil {
			return nil, newValidationError("snapshot node '%s' has no data", n.ID)
		}
		if n.Type != n.Data.NodeType() {
			return nil, newValidationError("snapshot node '%s': type tag '%s' does not match data type '%s'",
				n.ID, n.Type, n.Data.NodeType())
		}
		if _, ok := g.nodes[n.ID]; ok {
			return nil, newValidationError("snapshot contains duplicate node id '%s'", n.ID)
		}
		g.insertNodeLocked(n.Clone())
	}

	for _, e := range s.Edges {
		if e == nil {
			continue
		}
		if _, ok := g.nodes[e.Source]; !ok {
			return nil, newValidationError("snapshot edge '%s' references unknown source '%s'", e.ID, e.Source)
		}
		if _, ok := g.nodes[e.Target]; !ok {
			return nil, newValidationError("snapshot edge '%s' references unknown target '%s'", e.ID, e.Target)
		}
		if prev := g.edgeToHandleLocked(e.Target, e.TargetHandle); prev != nil {
			return nil, newValidationError("snapshot has multiple edges into '%s' handle '%s'", e.Target, e.TargetHandle)
		}
		cp := *e
		g.edges = append(g.edges, &cp)
	}

	if err := g.checkAcyclicLocked(); err != nil {
		return nil, err
	}

	if s.Selection != "" {
		if _, ok := g.nodes[s.Selection]; ok {
			g.selection = s.Selection
		}
	}

	return g, nil
}

// AddNode creates a node of the given type at the given position and returns
// a copy of it. This is the explicit-placement path; placeholders are later
// materialized in place via MaterializePlaceholder.
func (g *Graph) AddNode(ctx context.Context, t schema.NodeType, pos schema.Position) (*schema.Node, error) {
	data, err := schema.NewNodeData(t)
	if err != nil {
		return nil, newValidationError("add node: %s", err.Error())
	}

	n := &schema.Node{
		ID:       uuid.New().String(),
		Type:     t,
		Position: pos,
		Data:     data,
	}

	g.mu.Lock()
	g.insertNodeLocked(n)
	cp := n.Clone()
	g.mu.Unlock()

	g.onNodesChange(ctx, []*schema.Node{cp.Clone()})
	return cp, nil
}

// GetNodes returns copies of the nodes with the given ids, in request order.
// Unknown ids are skipped. With no ids, all nodes are returned in insertion
// order.
func (g *Graph) GetNodes(ids ...string) []*schema.Node {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(ids) == 0 {
		ids = g.nodeOrder
	}
	out := make([]*schema.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := g.nodes[id]; ok {
			out = append(out, n.Clone())
		}
	}
	return out
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (*schema.Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// Edges returns copies of all edges.
func (g *Graph) Edges() []*schema.Edge {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.cloneEdgesLocked(g.edges)
}

// Selection returns the currently selected node id, if any.
func (g *Graph) Selection() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.selection, g.selection != ""
}

// Snapshot returns a deep copy of the whole graph, ready for the persistence
// adapter.
func (g *Graph) Snapshot() *schema.GraphSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := &schema.GraphSnapshot{
		Nodes:     make([]*schema.Node, 0, len(g.nodeOrder)),
		Edges:     g.cloneEdgesLocked(g.edges),
		Selection: g.selection,
	}
	for _, id := range g.nodeOrder {
		s.Nodes = append(s.Nodes, g.nodes[id].Clone())
	}
	return s
}

// ClearAllNodeResponses resets every llm-prompt node's response to empty
// without altering structure, then re-propagates so successors' cached inputs
// reflect the cleared outputs. Used to prepare a fresh full re-run.
func (g *Graph) ClearAllNodeResponses(ctx context.Context) {
	g.mu.Lock()
	changed := make([]*schema.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		d, ok := n.Data.(*schema.LLMPromptData)
		if !ok || d.Response == "" {
			continue
		}
		n2 := n.Clone()
		n2.Data.(*schema.LLMPromptData).Response = ""
		g.nodes[id] = n2
		changed = append(changed, n2)
	}
	for _, n := range changed {
		g.propagateFromLocked(n.ID)
	}
	notify := make([]*schema.Node, 0, len(changed))
	for _, n := range changed {
		notify = append(notify, g.nodes[n.ID].Clone())
	}
	g.mu.Unlock()

	if len(notify) > 0 {
		g.onNodesChange(ctx, notify)
	}
}

// insertNodeLocked stores a node the graph now owns.
func (g *Graph) insertNodeLocked(n *schema.Node) {
	g.nodes[n.ID] = n
	g.nodeOrder = append(g.nodeOrder, n.ID)
}

func (g *Graph) removeNodeLocked(id string) {
	delete(g.nodes, id)
	for i, nid := range g.nodeOrder {
		if nid == id {
			g.nodeOrder = append(g.nodeOrder[:i], g.nodeOrder[i+1:]...)
			break
		}
	}
	if g.selection == id {
		g.selection = ""
	}
}

func (g *Graph) edgeToHandleLocked(target, targetHandle string) *schema.Edge {
	for _, e := range g.edges {
		if e.Target == target && e.TargetHandle == targetHandle {
			return e
		}
	}
	return nil
}

func (g *Graph) cloneEdgesLocked(edges []*schema.Edge) []*schema.Edge {
	out := make([]*schema.Edge, 0, len(edges))
	for _, e := range edges {
		cp := *e
		out = append(out, &cp)
	}
	return out
}

// checkAcyclicLocked runs a Kahn relaxation over the current edge set and
// fails if any node never reaches in-degree zero.
func (g *Graph) checkAcyclicLocked() error {
	inDegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		inDegree[id] = 0
	}
	for _, e := range g.edges {
		inDegree[e.Target]++
	}

	hasChanged := true
	for hasChanged {
		hasChanged = false
		for id, d := range inDegree {
			if d != 0 {
				continue
			}
			hasChanged = true
			delete(inDegree, id)
			for _, e := range g.edges {
				if e.Source == id {
					inDegree[e.Target]--
				}
			}
		}
	}

	if len(inDegree) > 0 {
		remaining := make([]string, 0, len(inDegree))
		for id := range inDegree {
			remaining = append(remaining, id)
		}
		return newStructuralIntegrityError("cycle detected among nodes %v", remaining)
	}
	return nil
}

// hasPathLocked reports whether `to` is reachable from `from` along existing
// edges.
func (g *Graph) hasPathLocked(from, to string) bool {
	if from == to {
		return true
	}
	visited := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.edges {
			if e.Source != cur || visited[e.Target] {
				continue
			}
			if e.Target == to {
				return true
			}
			visited[e.Target] = true
			stack = append(stack, e.Target)
		}
	}
	return false
}

func outputValueOf(n *schema.Node) string {
	if n == nil || n.Data == nil {
		return ""
	}
	return n.Data.OutputValue()
}
