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
	"errors"

	"github.com/cloudwego/flowcanvas/callbacks"
	"github.com/cloudwego/flowcanvas/components/model"
	"github.com/cloudwego/flowcanvas/schema"
)

// errNodeGone reports that a node was removed from the graph between the
// start of its run and its write-back. The run's result is discarded.
var errNodeGone = errors.New("node no longer exists in the graph")

func (g *Graph) runNode(ctx context.Context, id string, o *traverseOptions) (string, error) {
	g.mu.Lock()
	n, ok := g.nodes[id]
	if !ok {
		g.mu.Unlock()
		return "", errNodeGone
	}
	node := n.Clone()
	g.mu.Unlock()

	info := &callbacks.RunInfo{NodeID: id, NodeType: node.Type}
	ctx = g.onNodeRunStart(ctx, info)

	switch d := node.Data.(type) {
	case *schema.TextInputData:
		// the literal text is the output; re-propagate so successors observe
		// the current value before they execute
		if err := g.refreshOutputs(ctx, id); err != nil {
			return "", err
		}
		g.onNodeRunEnd(ctx, info, d.Text)
		return d.Text, nil

	case *schema.PlaceholderData:
		// placeholders produce nothing until materialized
		g.onNodeRunEnd(ctx, info, "")
		return "", nil

	case *schema.LLMPromptData:
		resp, err := g.runLLMPrompt(ctx, id, d, o)
		if err != nil {
			if err != errNodeGone {
				g.onNodeRunError(ctx, info, err)
			}
			return "", err
		}
		g.onNodeRunEnd(ctx, info, resp)
		return resp, nil

	default:
		err := newValidationError("node '%s' has unsupported type '%s'", id, node.Type)
		g.onNodeRunError(ctx, info, err)
		return "", err
	}
}

func (g *Graph) runLLMPrompt(ctx context.Context, id string, d *schema.LLMPromptData, o *traverseOptions) (string, error) {
	if !o.fullRerun && d.Response != "" {
		// incremental pass: keep the response already on the node, but still
		// push it downstream so successors see a consistent view
		if err := g.refreshOutputs(ctx, id); err != nil {
			return "", err
		}
		return d.Response, nil
	}

	if g.cm == nil {
		return "", newValidationError("node '%s' requires a completion model and none is configured", id)
	}

	vs := make(map[string]any, d.Inputs.Len())
	for pair := d.Inputs.Oldest(); pair != nil; pair = pair.Next() {
		vs[pair.Key] = pair.Value.Value
	}
	prompt, err := schema.RenderPrompt(d.Template, vs, d.Format)
	if err != nil {
		return "", newValidationError("node '%s': render prompt: %v", id, err)
	}

	resp, err := g.cm.Complete(ctx, prompt, completionOptions(d.Model)...)
	if err != nil {
		// the node keeps whatever response it had before the failed call
		return "", newExternalCallError(id, err)
	}

	// write-back re-checks existence: a node deleted mid-call absorbs nothing
	g.mu.Lock()
	cur, ok := g.nodes[id]
	if !ok || cur.Type != schema.NodeTypeLLMPrompt {
		g.mu.Unlock()
		return "", errNodeGone
	}
	nd := cur.Data.Clone().(*schema.LLMPromptData)
	nd.Response = resp
	replaced := cur.Clone()
	replaced.Data = nd
	g.nodes[id] = replaced
	targets := g.propagateFromLocked(id)
	changed := g.changedNodesLocked(append([]string{id}, targets...))
	g.mu.Unlock()

	g.onNodesChange(ctx, changed)
	return resp, nil
}

// refreshOutputs pushes a node's current output value to its direct
// successors, failing with errNodeGone if the node has been removed.
func (g *Graph) refreshOutputs(ctx context.Context, id string) error {
	g.mu.Lock()
	if _, ok := g.nodes[id]; !ok {
		g.mu.Unlock()
		return errNodeGone
	}
	targets := g.propagateFromLocked(id)
	if len(targets) == 0 {
		g.mu.Unlock()
		return nil
	}
	changed := g.changedNodesLocked(targets)
	g.mu.Unlock()

	g.onNodesChange(ctx, changed)
	return nil
}

func (g *Graph) changedNodesLocked(ids []string) []*schema.Node {
	out := make([]*schema.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := g.nodes[id]; ok {
			out = append(out, n.Clone())
		}
	}
	return out
}

func completionOptions(p *schema.ModelParams) []model.Option {
	if p == nil {
		return nil
	}
	opts := make([]model.Option, 0, 5)
	if p.Model != "" {
		opts = append(opts, model.WithModel(p.Model))
	}
	if p.Temperature != nil {
		opts = append(opts, model.WithTemperature(*p.Temperature))
	}
	if p.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*p.MaxTokens))
	}
	if p.TopP != nil {
		opts = append(opts, model.WithTopP(*p.TopP))
	}
	if len(p.Stop) > 0 {
		opts = append(opts, model.WithStop(p.Stop))
	}
	return opts
}
