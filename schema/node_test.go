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

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloudwego/flowcanvas/internal/generic"
)

func TestNewNodeData(t *testing.T) {
	for _, typ := range []NodeType{NodeTypeTextInput, NodeTypeLLMPrompt, NodeTypePlaceholder} {
		d, err := NewNodeData(typ)
		assert.NoError(t, err)
		assert.Equal(t, typ, d.NodeType())
		assert.NotNil(t, d.InputSlots())
		assert.Equal(t, "", d.OutputValue())
	}

	_, err := NewNodeData(NodeType("mystery"))
	assert.Error(t, err)
}

func TestOutputValue(t *testing.T) {
	ti := NewTextInputData()
	ti.Text = "hello"
	assert.Equal(t, "hello", ti.OutputValue())

	lp := NewLLMPromptData()
	assert.Equal(t, "", lp.OutputValue())
	lp.Response = "resp"
	assert.Equal(t, "resp", lp.OutputValue())

	assert.Equal(t, "", NewPlaceholderData().OutputValue())
}

func TestNodeCloneIsDeep(t *testing.T) {
	d := NewLLMPromptData()
	d.Template = "Say: {in}"
	d.Inputs.Set("in", &InputValue{Source: "n1", Value: "Hello"})
	d.Model = &ModelParams{
		Model:       "gpt-4o-mini",
		Temperature: generic.PtrOf(float32(0.7)),
		MaxTokens:   generic.PtrOf(128),
		Stop:        []string{"\n"},
	}

	n := &Node{ID: "n2", Type: NodeTypeLLMPrompt, Position: Position{X: 1, Y: 2}, Data: d}
	cp := n.Clone()

	assert.Equal(t, n.ID, cp.ID)
	assert.Equal(t, n.Position, cp.Position)

	cd := cp.Data.(*LLMPromptData)
	assert.Equal(t, "Say: {in}", cd.Template)
	v, ok := cd.Inputs.Get("in")
	assert.True(t, ok)
	assert.Equal(t, "Hello", v.Value)

	// mutations of the copy must not be observable through the original
	cd.Template = "changed"
	v.Value = "changed"
	*cd.Model.Temperature = 0.1
	cd.Model.Stop[0] = "changed"

	assert.Equal(t, "Say: {in}", d.Template)
	ov, _ := d.Inputs.Get("in")
	assert.Equal(t, "Hello", ov.Value)
	assert.Equal(t, float32(0.7), *d.Model.Temperature)
	assert.Equal(t, "\n", d.Model.Stop[0])
}

func TestInputSlotOrder(t *testing.T) {
	d := NewLLMPromptData()
	d.Inputs.Set("b", &InputValue{Source: "n1"})
	d.Inputs.Set("a", &InputValue{Source: "n2"})
	d.Inputs.Set("c", &InputValue{Source: "n3"})

	var keys []string
	for pair := d.Inputs.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"b", "a", "c"}, keys)

	// clone preserves insertion order
	cd := d.Clone().(*LLMPromptData)
	keys = keys[:0]
	for pair := cd.Inputs.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"b", "a", "c"}, keys)
}
