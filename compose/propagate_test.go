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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloudwego/flowcanvas/schema"
)

func TestUpdateNodePropagatesToDirectSuccessors(t *testing.T) {
	ctx := context.Background()
	g := NewGraph()
	src := addTextNode(t, g, "old")
	d1 := addPromptNode(t, g, "{in}")
	d2 := addPromptNode(t, g, "{other}")
	connectNodes(t, g, src.ID, d1.ID, "in")
	connectNodes(t, g, src.ID, d2.ID, "other")

	nd := schema.NewTextInputData()
	nd.Text = "new"
	assert.NoError(t, g.UpdateNode(ctx, src.ID, nd))

	for _, tc := range []struct{ id, handle string }{{d1.ID, "in"}, {d2.ID, "other"}} {
		n, _ := g.Node(tc.id)
		v, ok := n.Data.InputSlots().Get(tc.handle)
		assert.True(t, ok)
		assert.Equal(t, "new", v.Value)
	}
}

func TestUpdateNodePropagationIsSingleHop(t *testing.T) {
	ctx := context.Background()
	g := NewGraph()
	a := addTextNode(t, g, "start")
	b := addPromptNode(t, g, "{in}")
	c := addPromptNode(t, g, "{in}")
	connectNodes(t, g, a.ID, b.ID, "in")
	connectNodes(t, g, b.ID, c.ID, "in")

	nd := schema.NewTextInputData()
	nd.Text = "changed"
	assert.NoError(t, g.UpdateNode(ctx, a.ID, nd))

	// b sees the new value, c keeps b's output (still empty) untouched
	nb, _ := g.Node(b.ID)
	v, _ := nb.Data.InputSlots().Get("in")
	assert.Equal(t, "changed", v.Value)

	nc, _ := g.Node(c.ID)
	v, _ = nc.Data.InputSlots().Get("in")
	assert.Equal(t, "", v.Value)
}

func TestUpdateNodeLeavesUnrelatedSlotsAlone(t *testing.T) {
	ctx := context.Background()
	g := NewGraph()
	a := addTextNode(t, g, "a")
	b := addTextNode(t, g, "b")
	dst := addPromptNode(t, g, "{x} {y}")
	connectNodes(t, g, a.ID, dst.ID, "x")
	connectNodes(t, g, b.ID, dst.ID, "y")

	nd := schema.NewTextInputData()
	nd.Text = "a2"
	assert.NoError(t, g.UpdateNode(ctx, a.ID, nd))

	n, _ := g.Node(dst.ID)
	vx, _ := n.Data.InputSlots().Get("x")
	vy, _ := n.Data.InputSlots().Get("y")
	assert.Equal(t, "a2", vx.Value)
	assert.Equal(t, "b", vy.Value)
}

func TestUpdateNodeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	g := NewGraph()
	src := addTextNode(t, g, "v")
	dst := addPromptNode(t, g, "{in}")
	connectNodes(t, g, src.ID, dst.ID, "in")

	nd := schema.NewTextInputData()
	nd.Text = "twice"
	assert.NoError(t, g.UpdateNode(ctx, src.ID, nd))
	first := g.Snapshot()
	assert.NoError(t, g.UpdateNode(ctx, src.ID, nd))
	second := g.Snapshot()

	b1, err := schema.MarshalGraph(first)
	assert.NoError(t, err)
	b2, err := schema.MarshalGraph(second)
	assert.NoError(t, err)
	assert.Equal(t, string(b1), string(b2))
}

func TestUpdateNodeValidation(t *testing.T) {
	ctx := context.Background()
	g := NewGraph()
	n := addTextNode(t, g, "x")

	assert.True(t, IsValidationError(g.UpdateNode(ctx, n.ID, nil)))
	assert.True(t, IsValidationError(g.UpdateNode(ctx, "ghost", schema.NewTextInputData())))
	// data type must match the node's type tag
	assert.True(t, IsValidationError(g.UpdateNode(ctx, n.ID, schema.NewLLMPromptData())))
}

func TestUpdateNodeIsCopyOnWrite(t *testing.T) {
	ctx := context.Background()
	g := NewGraph()
	n := addTextNode(t, g, "before")

	held, _ := g.Node(n.ID)
	heldData := held.Data.(*schema.TextInputData)

	nd := schema.NewTextInputData()
	nd.Text = "after"
	assert.NoError(t, g.UpdateNode(ctx, n.ID, nd))

	// the previously captured data value never mutates under the caller
	assert.Equal(t, "before", heldData.Text)
}
