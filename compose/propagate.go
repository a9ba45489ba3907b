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

// UpdateNode replaces the node's data and pushes the node's (possibly new)
// output into the input slot of every direct successor. The replacement is
// copy-on-write: the previous data value is never mutated, so callers holding
// it can rely on identity comparison for change detection.
//
// Propagation is single-hop: only direct successors are refreshed, and only
// the slot tied to each edge is written. Multi-hop propagation happens when
// the topological executor drives successive node runs, not here.
func (g *Graph) UpdateNode(ctx context.Context, nodeID string, data schema.NodeData) error {
	if data == nil {
		return newValidationError("update for node '%s' without data", nodeID)
	}

	g.mu.Lock()
	n, ok := g.nodes[nodeID]
	if !ok {
		g.mu.Unlock()
		return newValidationError("update for unknown node '%s'", nodeID)
	}
	if n.Type != data.NodeType() {
		g.mu.Unlock()
		return newValidationError("update for node '%s': data type '%s' does not match node type '%s'",
			nodeID, data.NodeType(), n.Type)
	}

	n2 := n.Clone()
	n2.Data = data.Clone()
	g.nodes[nodeID] = n2

	targets := g.propagateFromLocked(nodeID)

	notify := make([]*schema.Node, 0, len(targets)+1)
	notify = append(notify, n2.Clone())
	for _, id := range targets {
		notify = append(notify, g.nodes[id].Clone())
	}
	g.mu.Unlock()

	g.onNodesChange(ctx, notify)
	return nil
}

// propagateFromLocked copies the source node's current output into the input
// slot of each direct successor, one slot per edge. Targets are replaced
// copy-on-write; unrelated slots are never touched. Returns the ids of the
// updated targets.
func (g *Graph) propagateFromLocked(sourceID string) []string {
	src, ok := g.nodes[sourceID]
	if !ok {
		return nil
	}
	out := outputValueOf(src)

	var targets []string
	for _, e := range g.edges {
		if e.Source != sourceID {
			continue
		}
		t, ok := g.nodes[e.Target]
		if !ok {
			continue
		}
		t2 := t.Clone()
		t2.Data.InputSlots().Set(e.TargetHandle, &schema.InputValue{
			Source: sourceID,
			Value:  out,
		})
		g.nodes[e.Target] = t2
		targets = append(targets, e.Target)
	}
	return targets
}
