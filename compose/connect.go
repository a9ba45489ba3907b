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

// Connect records the requested connection and immediately propagates the
// source node's current value into the target's input slot. Source and target
// must be distinct existing nodes; a prior edge into the same (target, target
// handle) is replaced; a cycle-forming connection is rejected with a
// ValidationError and the graph is left unchanged.
func (g *Graph) Connect(ctx context.Context, conn *schema.Connection) (*schema.Edge, error) {
	if conn == nil {
		return nil, newValidationError("nil connection")
	}

	g.mu.Lock()

	st := g.cloneStateLocked()
	e := conn.Edge()
	if err := st.connect(e); err != nil {
		g.mu.Unlock()
		return nil, err
	}
	g.commitStateLocked(st)
	cp := *e
	g.mu.Unlock()

	g.onConnect(ctx, &cp)
	out := cp
	return &out, nil
}

// DeleteEdgesFromHandle removes every edge leaving the given source handle,
// pruning the input slots those edges fed. Used when a node's output handle
// is being retired. Returns the removed edges.
func (g *Graph) DeleteEdgesFromHandle(ctx context.Context, source, sourceHandle string) []*schema.Edge {
	g.mu.Lock()

	st := g.cloneStateLocked()
	var removed []*schema.Edge
	kept := st.edges[:0]
	for _, e := range st.edges {
		if e.Source == source && e.SourceHandle == sourceHandle {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	st.edges = kept
	for _, e := range removed {
		st.pruneInput(e)
	}
	g.commitStateLocked(st)

	notify := g.cloneEdgesLocked(removed)
	g.mu.Unlock()

	if len(notify) > 0 {
		g.onEdgesDelete(ctx, notify)
	}
	return notify
}

// DeleteEdges removes the given edges (matched by id) and strips the
// corresponding stale input entries from each affected target node, so that
// an edge removal never leaves a dangling input reference. Unknown edges are
// ignored. This is the handler for edge deletions originating in the
// rendering layer.
func (g *Graph) DeleteEdges(ctx context.Context, edges []*schema.Edge) {
	g.mu.Lock()

	st := g.cloneStateLocked()
	var removed []*schema.Edge
	for _, e := range edges {
		if e == nil {
			continue
		}
		if got := st.removeEdgeByID(e.ID); got != nil {
			removed = append(removed, got)
		}
	}
	g.commitStateLocked(st)

	notify := g.cloneEdgesLocked(removed)
	g.mu.Unlock()

	if len(notify) > 0 {
		g.onEdgesDelete(ctx, notify)
	}
}
