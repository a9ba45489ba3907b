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

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloudwego/flowcanvas/schema"
)

func sampleSnapshot() *schema.GraphSnapshot {
	ti := schema.NewTextInputData()
	ti.Text = "Hello"
	lp := schema.NewLLMPromptData()
	lp.Template = "Say: {in}"
	lp.Inputs.Set("in", &schema.InputValue{Source: "n1", Value: "Hello"})

	return &schema.GraphSnapshot{
		Nodes: []*schema.Node{
			{ID: "n1", Type: schema.NodeTypeTextInput, Data: ti},
			{ID: "n2", Type: schema.NodeTypeLLMPrompt, Data: lp},
		},
		Edges: []*schema.Edge{
			{
				ID:           schema.EdgeID("n1", schema.DefaultSourceHandle, "n2", "in"),
				Source:       "n1",
				SourceHandle: schema.DefaultSourceHandle,
				Target:       "n2",
				TargetHandle: "in",
			},
		},
	}
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	_, err := s.Load(ctx, "wf-1")
	assert.ErrorIs(t, err, ErrNotFound)

	snap := sampleSnapshot()
	assert.NoError(t, s.Save(ctx, "wf-1", snap))

	got, err := s.Load(ctx, "wf-1")
	assert.NoError(t, err)
	assert.Len(t, got.Nodes, 2)
	assert.Len(t, got.Edges, 1)

	lp, ok := got.Nodes[1].Data.(*schema.LLMPromptData)
	assert.True(t, ok)
	v, ok := lp.Inputs.Get("in")
	assert.True(t, ok)
	assert.Equal(t, "Hello", v.Value)

	// stored snapshots are isolated from later caller mutations
	snap.Nodes[0].Data.(*schema.TextInputData).Text = "tampered"
	got, err = s.Load(ctx, "wf-1")
	assert.NoError(t, err)
	assert.Equal(t, "Hello", got.Nodes[0].Data.(*schema.TextInputData).Text)

	assert.NoError(t, s.Delete(ctx, "wf-1"))
	_, err = s.Load(ctx, "wf-1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, s.Save(ctx, "", snap))
}
