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

package compose

import (
	"context"

	"github.com/cloudwego/flowcanvas/schema"
)

// NodeChangeType discriminates structural node deltas from the rendering
// layer.
type NodeChangeType string

const (
	NodeChangeTypeAdd      NodeChangeType = "add"
	NodeChangeTypeRemove   NodeChangeType = "remove"
	NodeChangeTypePosition NodeChangeType = "position"
	NodeChangeTypeSelect   NodeChangeType = "select"
)

// NodeChange is one structural node delta. Which fields are read depends on
// Type: add reads Node; remove reads ID; position reads ID and Position;
// select reads ID and Selected.
type NodeChange struct {
	Type     NodeChangeType
	Node     *schema.Node
	ID       string
	Position schema.Position
	Selected bool
}

// EdgeChangeType discriminates structural edge deltas.
type EdgeChangeType string

const (
	EdgeChangeTypeAdd    EdgeChangeType = "add"
	EdgeChangeTypeRemove EdgeChangeType = "remove"
)

// EdgeChange is one structural edge delta: add reads Edge, remove reads ID.
type EdgeChange struct {
	Type EdgeChangeType
	Edge *schema.Edge
	ID   string
}

// ApplyNodeChanges applies a batch of node deltas atomically: either every
// delta is reflected or, on any validation failure, none are. Removing a node
// cascades to every edge touching it and prunes the stale input slots of its
// successors; removing the selected node clears the selection in the same
// update.
func (g *Graph) ApplyNodeChanges(ctx context.Context, changes []NodeChange) error {
	g.mu.Lock()

	st := g.cloneStateLocked()
	touched := make(map[string]bool)
	var removedEdges []*schema.Edge

	for _, c := range changes {
		switch c.Type {
		case NodeChangeTypeAdd:
			if c.Node == nil || c.Node.ID == "" {
				g.mu.Unlock()
				return newValidationError("add change without a node")
			}
			if c.Node.Data == nil {
				g.mu.Unlock()
				return newValidationError("add change for node '%s' without data", c.Node.ID)
			}
			if c.Node.Type != c.Node.Data.NodeType() {
				g.mu.Unlock()
				return newValidationError("add change for node '%s': type tag '%s' does not match data type '%s'",
					c.Node.ID, c.Node.Type, c.Node.Data.NodeType())
			}
			if _, ok := st.nodes[c.Node.ID]; ok {
				g.mu.Unlock()
				return newValidationError("node '%s' already present", c.Node.ID)
			}
			st.insert(c.Node.Clone())
			touched[c.Node.ID] = true

		case NodeChangeTypeRemove:
			if _, ok := st.nodes[c.ID]; !ok {
				g.mu.Unlock()
				return newValidationError("remove change for unknown node '%s'", c.ID)
			}
			removedEdges = append(removedEdges, st.removeNode(c.ID)...)
			delete(touched, c.ID)

		case NodeChangeTypePosition:
			n, ok := st.nodes[c.ID]
			if !ok {
				g.mu.Unlock()
				return newValidationError("position change for unknown node '%s'", c.ID)
			}
			n2 := n.Clone()
			n2.Position = c.Position
			st.nodes[c.ID] = n2
			touched[c.ID] = true

		case NodeChangeTypeSelect:
			if _, ok := st.nodes[c.ID]; !ok {
				g.mu.Unlock()
				return newValidationError("select change for unknown node '%s'", c.ID)
			}
			if c.Selected {
				st.selection = c.ID
			} else if st.selection == c.ID {
				st.selection = ""
			}

		default:
			g.mu.Unlock()
			return newValidationError("unknown node change type '%s'", c.Type)
		}
	}

	g.commitStateLocked(st)

	notify := make([]*schema.Node, 0, len(touched))
	for id := range touched {
		if n, ok := g.nodes[id]; ok {
			notify = append(notify, n.Clone())
		}
	}
	notifyEdges := g.cloneEdgesLocked(removedEdges)
	g.mu.Unlock()

	if len(notify) > 0 {
		ctx = g.onNodesChange(ctx, notify)
	}
	if len(notifyEdges) > 0 {
		g.onEdgesDelete(ctx, notifyEdges)
	}
	return nil
}

// ApplyEdgeChanges applies a batch of edge deltas atomically. Added edges are
// validated like connections (existing distinct endpoints, unique target
// handle, acyclicity) and propagate the source value into the target slot;
// removed edges prune the target's stale input slot.
func (g *Graph) ApplyEdgeChanges(ctx context.Context, changes []EdgeChange) error {
	g.mu.Lock()

	st := g.cloneStateLocked()
	var added, removed []*schema.Edge

	for _, c := range changes {
		switch c.Type {
		case EdgeChangeTypeAdd:
			if c.Edge == nil {
				g.mu.Unlock()
				return newValidationError("add change without an edge")
			}
			e := *c.Edge
			if e.SourceHandle == "" {
				e.SourceHandle = schema.DefaultSourceHandle
			}
			if e.ID == "" {
				e.ID = schema.EdgeID(e.Source, e.SourceHandle, e.Target, e.TargetHandle)
			}
			if err := st.connect(&e); err != nil {
				g.mu.Unlock()
				return err
			}
			added = append(added, &e)

		case EdgeChangeTypeRemove:
			e := st.removeEdgeByID(c.ID)
			if e == nil {
				g.mu.Unlock()
				return newValidationError("remove change for unknown edge '%s'", c.ID)
			}
			removed = append(removed, e)

		default:
			g.mu.Unlock()
			return newValidationError("unknown edge change type '%s'", c.Type)
		}
	}

	g.commitStateLocked(st)
	notifyAdded := g.cloneEdgesLocked(added)
	notifyRemoved := g.cloneEdgesLocked(removed)
	g.mu.Unlock()

	if len(notifyAdded)+len(notifyRemoved) > 0 {
		ctx = g.onEdgesChange(ctx, append(notifyAdded, notifyRemoved...))
	}
	if len(notifyRemoved) > 0 {
		g.onEdgesDelete(ctx, notifyRemoved)
	}
	return nil
}

// graphState is a scratch copy of the graph's collections that a batch is
// applied to before being committed wholesale.
type graphState struct {
	nodes     map[string]*schema.Node
	nodeOrder []string
	edges     []*schema.Edge
	selection string
}

func (g *Graph) cloneStateLocked() *graphState {
	st := &graphState{
		nodes:     make(map[string]*schema.Node, len(g.nodes)),
		nodeOrder: append([]string(nil), g.nodeOrder...),
		edges:     g.cloneEdgesLocked(g.edges),
		selection: g.selection,
	}
	for id, n := range g.nodes {
		st.nodes[id] = n.Clone()
	}
	return st
}

func (g *Graph) commitStateLocked(st *graphState) {
	g.nodes = st.nodes
	g.nodeOrder = st.nodeOrder
	g.edges = st.edges
	g.selection = st.selection
}

func (st *graphState) insert(n *schema.Node) {
	st.nodes[n.ID] = n
	st.nodeOrder = append(st.nodeOrder, n.ID)
}

// removeNode deletes the node, every edge touching it, and the input slots
// those edges fed. Returns the removed edges.
func (st *graphState) removeNode(id string) []*schema.Edge {
	delete(st.nodes, id)
	for i, nid := range st.nodeOrder {
		if nid == id {
			st.nodeOrder = append(st.nodeOrder[:i], st.nodeOrder[i+1:]...)
			break
		}
	}
	if st.selection == id {
		st.selection = ""
	}

	var removed []*schema.Edge
	kept := st.edges[:0]
	for _, e := range st.edges {
		if e.Source == id || e.Target == id {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	st.edges = kept

	for _, e := range removed {
		st.pruneInput(e)
	}
	return removed
}

func (st *graphState) removeEdgeByID(id string) *schema.Edge {
	for i, e := range st.edges {
		if e.ID == id {
			st.edges = append(st.edges[:i], st.edges[i+1:]...)
			st.pruneInput(e)
			return e
		}
	}
	return nil
}

// pruneInput strips the input slot a removed edge fed, so that no dangling
// input reference survives the edge.
func (st *graphState) pruneInput(e *schema.Edge) {
	t, ok := st.nodes[e.Target]
	if !ok {
		return
	}
	if v, ok := t.Data.InputSlots().Get(e.TargetHandle); !ok || v.Source != e.Source {
		return
	}
	t2 := t.Clone()
	t2.Data.InputSlots().Delete(e.TargetHandle)
	st.nodes[e.Target] = t2
}

// connect validates and records one edge on the scratch state, replacing any
// prior edge into the same target handle and refusing cycles, then seeds the
// target slot with the source's current output.
func (st *graphState) connect(e *schema.Edge) error {
	if e.Source == e.Target {
		return newValidationError("self connection on node '%s'", e.Source)
	}
	src, ok := st.nodes[e.Source]
	if !ok {
		return newValidationError("connection source node '%s' does not exist", e.Source)
	}
	if _, ok = st.nodes[e.Target]; !ok {
		return newValidationError("connection target node '%s' does not exist", e.Target)
	}
	if e.TargetHandle == "" {
		return newValidationError("connection into node '%s' without a target handle", e.Target)
	}

	if st.hasPath(e.Target, e.Source) {
		return newValidationError("connection '%s' -> '%s' would create a cycle", e.Source, e.Target)
	}

	// each input slot has at most one active source
	for i, prev := range st.edges {
		if prev.Target == e.Target && prev.TargetHandle == e.TargetHandle {
			st.edges = append(st.edges[:i], st.edges[i+1:]...)
			break
		}
	}

	st.edges = append(st.edges, e)

	t2 := st.nodes[e.Target].Clone()
	t2.Data.InputSlots().Set(e.TargetHandle, &schema.InputValue{
		Source: e.Source,
		Value:  outputValueOf(src),
	})
	st.nodes[e.Target] = t2
	return nil
}

func (st *graphState) hasPath(from, to string) bool {
	if from == to {
		return true
	}
	visited := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range st.edges {
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
