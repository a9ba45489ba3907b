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

func addTextNode(t *testing.T, g *Graph, text string) *schema.Node {
	t.Helper()
	ctx := context.Background()
	n, err := g.AddNode(ctx, schema.NodeTypeTextInput, schema.Position{})
	assert.NoError(t, err)
	d := schema.NewTextInputData()
	d.Text = text
	assert.NoError(t, g.UpdateNode(ctx, n.ID, d))
	n.Data = d
	return n
}

func addPromptNode(t *testing.T, g *Graph, template string) *schema.Node {
	t.Helper()
	ctx := context.Background()
	n, err := g.AddNode(ctx, schema.NodeTypeLLMPrompt, schema.Position{})
	assert.NoError(t, err)
	d := schema.NewLLMPromptData()
	d.Template = template
	assert.NoError(t, g.UpdateNode(ctx, n.ID, d))
	n.Data = d
	return n
}

func connectNodes(t *testing.T, g *Graph, source, target, targetHandle string) *schema.Edge {
	t.Helper()
	e, err := g.Connect(context.Background(), &schema.Connection{
		Source:       source,
		Target:       target,
		TargetHandle: targetHandle,
	})
	assert.NoError(t, err)
	return e
}

func TestAddAndGetNodes(t *testing.T) {
	ctx := context.Background()
	g := NewGraph()

	n1, err := g.AddNode(ctx, schema.NodeTypeTextInput, schema.Position{X: 1})
	assert.NoError(t, err)
	n2, err := g.AddNode(ctx, schema.NodeTypeLLMPrompt, schema.Position{X: 2})
	assert.NoError(t, err)
	n3, err := g.AddNode(ctx, schema.NodeTypePlaceholder, schema.Position{X: 3})
	assert.NoError(t, err)

	_, err = g.AddNode(ctx, schema.NodeType("mystery"), schema.Position{})
	assert.True(t, IsValidationError(err))

	all := g.GetNodes()
	assert.Len(t, all, 3)
	assert.Equal(t, []string{n1.ID, n2.ID, n3.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	// request order wins when ids are given; unknown ids are skipped
	some := g.GetNodes(n3.ID, "nope", n1.ID)
	assert.Len(t, some, 2)
	assert.Equal(t, n3.ID, some[0].ID)
	assert.Equal(t, n1.ID, some[1].ID)

	got, ok := g.Node(n2.ID)
	assert.True(t, ok)
	assert.Equal(t, schema.NodeTypeLLMPrompt, got.Type)
	_, ok = g.Node("nope")
	assert.False(t, ok)
}

func TestReadersReturnCopies(t *testing.T) {
	g := NewGraph()
	n := addTextNode(t, g, "original")

	got, _ := g.Node(n.ID)
	got.Data.(*schema.TextInputData).Text = "tampered"

	again, _ := g.Node(n.ID)
	assert.Equal(t, "original", again.Data.(*schema.TextInputData).Text)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	g := NewGraph()
	src := addTextNode(t, g, "Hello")
	dst := addPromptNode(t, g, "Say: {in}")
	connectNodes(t, g, src.ID, dst.ID, "in")
	assert.NoError(t, g.ApplyNodeChanges(ctx, []NodeChange{
		{Type: NodeChangeTypeSelect, ID: dst.ID, Selected: true},
	}))

	s := g.Snapshot()
	assert.Len(t, s.Nodes, 2)
	assert.Len(t, s.Edges, 1)
	assert.Equal(t, dst.ID, s.Selection)

	g2, err := FromSnapshot(s)
	assert.NoError(t, err)

	restored, ok := g2.Node(dst.ID)
	assert.True(t, ok)
	v, ok := restored.Data.InputSlots().Get("in")
	assert.True(t, ok)
	assert.Equal(t, src.ID, v.Source)
	assert.Equal(t, "Hello", v.Value)

	sel, ok := g2.Selection()
	assert.True(t, ok)
	assert.Equal(t, dst.ID, sel)
}

func TestFromSnapshotValidation(t *testing.T) {
	mk := func(id string, typ schema.NodeType) *schema.Node {
		d, _ := schema.NewNodeData(typ)
		return &schema.Node{ID: id, Type: typ, Data: d}
	}

	_, err := FromSnapshot(&schema.GraphSnapshot{
		Nodes: []*schema.Node{mk("a", schema.NodeTypeTextInput), mk("a", schema.NodeTypeTextInput)},
	})
	assert.True(t, IsValidationError(err))

	_, err = FromSnapshot(&schema.GraphSnapshot{
		Nodes: []*schema.Node{mk("a", schema.NodeTypeTextInput)},
		Edges: []*schema.Edge{{ID: "e1", Source: "a", Target: "ghost", TargetHandle: "in"}},
	})
	assert.True(t, IsValidationError(err))

	_, err = FromSnapshot(&schema.GraphSnapshot{
		Nodes: []*schema.Node{
			mk("a", schema.NodeTypeTextInput),
			mk("b", schema.NodeTypeTextInput),
			mk("c", schema.NodeTypeLLMPrompt),
		},
		Edges: []*schema.Edge{
			{ID: "e1", Source: "a", Target: "c", TargetHandle: "in"},
			{ID: "e2", Source: "b", Target: "c", TargetHandle: "in"},
		},
	})
	assert.True(t, IsValidationError(err))

	// a type tag mismatching the data payload is rejected, same as the
	// corresponding add change
	_, err = FromSnapshot(&schema.GraphSnapshot{
		Nodes: []*schema.Node{{ID: "a", Type: schema.NodeTypeLLMPrompt, Data: schema.NewTextInputData()}},
	})
	assert.True(t, IsValidationError(err))

	_, err = FromSnapshot(&schema.GraphSnapshot{
		Nodes: []*schema.Node{mk("a", schema.NodeTypeLLMPrompt), mk("b", schema.NodeTypeLLMPrompt)},
		Edges: []*schema.Edge{
			{ID: "e1", Source: "a", Target: "b", TargetHandle: "x"},
			{ID: "e2", Source: "b", Target: "a", TargetHandle: "y"},
		},
	})
	var sie *StructuralIntegrityError
	assert.ErrorAs(t, err, &sie)

	// a selection naming a missing node is dropped, not fatal
	g, err := FromSnapshot(&schema.GraphSnapshot{
		Nodes:     []*schema.Node{mk("a", schema.NodeTypeTextInput)},
		Selection: "ghost",
	})
	assert.NoError(t, err)
	_, ok := g.Selection()
	assert.False(t, ok)
}

func TestClearAllNodeResponses(t *testing.T) {
	ctx := context.Background()
	g := NewGraph()
	p1 := addPromptNode(t, g, "one")
	p2 := addPromptNode(t, g, "two: {in}")
	connectNodes(t, g, p1.ID, p2.ID, "in")

	d := schema.NewLLMPromptData()
	d.Template = "one"
	d.Response = "cached"
	assert.NoError(t, g.UpdateNode(ctx, p1.ID, d))

	// the response reached p2's slot via propagation
	n2, _ := g.Node(p2.ID)
	v, _ := n2.Data.InputSlots().Get("in")
	assert.Equal(t, "cached", v.Value)

	g.ClearAllNodeResponses(ctx)

	n1, _ := g.Node(p1.ID)
	assert.Equal(t, "", n1.Data.(*schema.LLMPromptData).Response)
	n2, _ = g.Node(p2.ID)
	v, _ = n2.Data.InputSlots().Get("in")
	assert.Equal(t, "", v.Value)
}
