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

// MaterializePlaceholder converts the placeholder node into a concrete node
// of the given type in place, preserving its id, position, input slots and
// every edge already attached to it. If placeholderID does not
// resolve to an existing placeholder node the operation is a reported no-op.
func (g *Graph) MaterializePlaceholder(ctx context.Context, placeholderID string, t schema.NodeType) (*schema.Node, error) {
	if t == schema.NodeTypePlaceholder {
		return nil, newValidationError("cannot materialize '%s' into another placeholder", placeholderID)
	}

	data, err := schema.NewNodeData(t)
	if err != nil {
		return nil, newValidationError("materialize '%s': %s", placeholderID, err.Error())
	}

	g.mu.Lock()
	n, ok := g.nodes[placeholderID]
	if !ok {
		g.mu.Unlock()
		return nil, newValidationError("placeholder '%s' does not exist", placeholderID)
	}
	if n.Type != schema.NodeTypePlaceholder {
		g.mu.Unlock()
		return nil, newValidationError("node '%s' is a '%s', not a placeholder", placeholderID, n.Type)
	}

	// carry over inputs recorded by edges attached before materialization
	for pair := n.Data.InputSlots().Oldest(); pair != nil; pair = pair.Next() {
		v := *pair.Value
		data.InputSlots().Set(pair.Key, &v)
	}

	n2 := n.Clone()
	n2.Type = t
	n2.Data = data
	g.nodes[placeholderID] = n2

	g.propagateFromLocked(placeholderID)

	cp := n2.Clone()
	g.mu.Unlock()

	g.onNodesChange(ctx, []*schema.Node{cp.Clone()})
	return cp, nil
}
