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

func TestMaterializePlaceholder(t *testing.T) {
	ctx := context.Background()
	g := NewGraph()
	src := addTextNode(t, g, "Hello")
	ph, err := g.AddNode(ctx, schema.NodeTypePlaceholder, schema.Position{X: 9, Y: 9})
	assert.NoError(t, err)
	e := connectNodes(t, g, src.ID, ph.ID, "in")

	n, err := g.MaterializePlaceholder(ctx, ph.ID, schema.NodeTypeLLMPrompt)
	assert.NoError(t, err)

	// id, position and the already-attached edge all survive
	assert.Equal(t, ph.ID, n.ID)
	assert.Equal(t, schema.NodeTypeLLMPrompt, n.Type)
	assert.Equal(t, schema.Position{X: 9, Y: 9}, n.Position)

	edges := g.Edges()
	assert.Len(t, edges, 1)
	assert.Equal(t, e.ID, edges[0].ID)

	// the slot recorded while still a placeholder carries over
	v, ok := n.Data.InputSlots().Get("in")
	assert.True(t, ok)
	assert.Equal(t, src.ID, v.Source)
	assert.Equal(t, "Hello", v.Value)

	_, ok = n.Data.(*schema.LLMPromptData)
	assert.True(t, ok)
}

func TestMaterializePlaceholderValidation(t *testing.T) {
	ctx := context.Background()
	g := NewGraph()
	ph, _ := g.AddNode(ctx, schema.NodeTypePlaceholder, schema.Position{})
	txt := addTextNode(t, g, "x")

	_, err := g.MaterializePlaceholder(ctx, ph.ID, schema.NodeTypePlaceholder)
	assert.True(t, IsValidationError(err))

	_, err = g.MaterializePlaceholder(ctx, ph.ID, schema.NodeType("mystery"))
	assert.True(t, IsValidationError(err))

	_, err = g.MaterializePlaceholder(ctx, "ghost", schema.NodeTypeTextInput)
	assert.True(t, IsValidationError(err))

	// a non-placeholder node is refused and left untouched
	_, err = g.MaterializePlaceholder(ctx, txt.ID, schema.NodeTypeLLMPrompt)
	assert.True(t, IsValidationError(err))
	n, _ := g.Node(txt.ID)
	assert.Equal(t, schema.NodeTypeTextInput, n.Type)
}

func TestMaterializePlaceholderPropagatesDownstream(t *testing.T) {
	ctx := context.Background()
	g := NewGraph()
	ph, _ := g.AddNode(ctx, schema.NodeTypePlaceholder, schema.Position{})
	dst := addPromptNode(t, g, "{in}")
	connectNodes(t, g, ph.ID, dst.ID, "in")

	_, err := g.MaterializePlaceholder(ctx, ph.ID, schema.NodeTypeTextInput)
	assert.NoError(t, err)

	nd := schema.NewTextInputData()
	nd.Text = "now concrete"
	assert.NoError(t, g.UpdateNode(ctx, ph.ID, nd))

	n, _ := g.Node(dst.ID)
	v, _ := n.Data.InputSlots().Get("in")
	assert.Equal(t, "now concrete", v.Value)
}
