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
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// NodeType is the type tag of a canvas node. The set is closed: every site
// that inspects a node's type must handle all of these exhaustively.
type NodeType string

const (
	// NodeTypeTextInput is a node holding free text entered by the user.
	// Its output is the literal stored text, always immediately complete.
	NodeTypeTextInput NodeType = "text-input"
	// NodeTypeLLMPrompt is a node that renders a prompt template against its
	// input slots and issues one completion call per run.
	NodeTypeLLMPrompt NodeType = "llm-prompt"
	// NodeTypePlaceholder is an untyped stub awaiting materialization into a
	// concrete node type. It produces no output.
	NodeTypePlaceholder NodeType = "placeholder"
)

// Position is the node's coordinates on the canvas. Not semantically
// load-bearing for execution.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// InputValue is one named input slot of a node: the id of the upstream node
// feeding the slot plus the cached value last propagated from it.
type InputValue struct {
	// Source is the id of the upstream node this slot is connected to.
	Source string `json:"source"`
	// Value is the upstream node's output as of the last propagation.
	Value string `json:"value"`
}

// Node is a unit of computation in the workflow graph.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Position Position `json:"position"`
	// Data is the type-dependent payload. Treat it as immutable: replace the
	// whole value via the graph's UpdateNode rather than mutating in place.
	Data NodeData `json:"data"`
}

// NodeData is the tagged union over the closed node-type set.
// Every implementation carries an ordered collection of named input slots and
// exposes its current output value for propagation to successors.
type NodeData interface {
	NodeType() NodeType
	// InputSlots returns the node's input slots keyed by handle name,
	// in insertion order.
	InputSlots() *orderedmap.OrderedMap[string, *InputValue]
	// OutputValue is the value propagated to successors. Empty until the node
	// has something to offer: a text-input's literal text, an llm-prompt's
	// last response, nothing for a placeholder.
	OutputValue() string
	// Clone returns a deep copy. Updates to the copy must not be observable
	// through the original.
	Clone() NodeData
}

// TextInputData is the payload of a text-input node.
type TextInputData struct {
	Text   string                                      `json:"text"`
	Inputs *orderedmap.OrderedMap[string, *InputValue] `json:"inputs"`
}

// NewTextInputData creates an empty text-input payload.
func NewTextInputData() *TextInputData {
	return &TextInputData{
		Inputs: orderedmap.New[string, *InputValue](),
	}
}

func (d *TextInputData) NodeType() NodeType {
	return NodeTypeTextInput
}

func (d *TextInputData) InputSlots() *orderedmap.OrderedMap[string, *InputValue] {
	return d.Inputs
}

func (d *TextInputData) OutputValue() string {
	return d.Text
}

func (d *TextInputData) Clone() NodeData {
	return &TextInputData{
		Text:   d.Text,
		Inputs: cloneInputs(d.Inputs),
	}
}

// ModelParams are the completion-call parameters recorded on an llm-prompt
// node. Nil pointer fields mean "use the model's default".
type ModelParams struct {
	Model       string   `json:"model,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	TopP        *float32 `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

func (p *ModelParams) clone() *ModelParams {
	if p == nil {
		return nil
	}
	cp := &ModelParams{Model: p.Model}
	if p.Temperature != nil {
		t := *p.Temperature
		cp.Temperature = &t
	}
	if p.MaxTokens != nil {
		m := *p.MaxTokens
		cp.MaxTokens = &m
	}
	if p.TopP != nil {
		t := *p.TopP
		cp.TopP = &t
	}
	if len(p.Stop) > 0 {
		cp.Stop = make([]string, len(p.Stop))
		copy(cp.Stop, p.Stop)
	}
	return cp
}

// LLMPromptData is the payload of an llm-prompt node.
type LLMPromptData struct {
	// Template references input slot names, e.g. "Say: {in}" with the
	// default FString format.
	Template string       `json:"template"`
	Format   FormatType   `json:"format"`
	Model    *ModelParams `json:"model,omitempty"`
	// Response is the last completion result. Empty until the first
	// successful run; left unchanged by failed runs.
	Response string                                      `json:"response"`
	Inputs   *orderedmap.OrderedMap[string, *InputValue] `json:"inputs"`
}

// NewLLMPromptData creates an empty llm-prompt payload with the default
// FString template format.
func NewLLMPromptData() *LLMPromptData {
	return &LLMPromptData{
		Format: FString,
		Inputs: orderedmap.New[string, *InputValue](),
	}
}

func (d *LLMPromptData) NodeType() NodeType {
	return NodeTypeLLMPrompt
}

func (d *LLMPromptData) InputSlots() *orderedmap.OrderedMap[string, *InputValue] {
	return d.Inputs
}

func (d *LLMPromptData) OutputValue() string {
	return d.Response
}

func (d *LLMPromptData) Clone() NodeData {
	return &LLMPromptData{
		Template: d.Template,
		Format:   d.Format,
		Model:    d.Model.clone(),
		Response: d.Response,
		Inputs:   cloneInputs(d.Inputs),
	}
}

// PlaceholderData is the payload of a placeholder node. It only records input
// slots so that edges attached before materialization survive it.
type PlaceholderData struct {
	Inputs *orderedmap.OrderedMap[string, *InputValue] `json:"inputs"`
}

// NewPlaceholderData creates an empty placeholder payload.
func NewPlaceholderData() *PlaceholderData {
	return &PlaceholderData{
		Inputs: orderedmap.New[string, *InputValue](),
	}
}

func (d *PlaceholderData) NodeType() NodeType {
	return NodeTypePlaceholder
}

func (d *PlaceholderData) InputSlots() *orderedmap.OrderedMap[string, *InputValue] {
	return d.Inputs
}

func (d *PlaceholderData) OutputValue() string {
	return ""
}

func (d *PlaceholderData) Clone() NodeData {
	return &PlaceholderData{
		Inputs: cloneInputs(d.Inputs),
	}
}

// NewNodeData returns the initial payload for the given node type.
func NewNodeData(t NodeType) (NodeData, error) {
	switch t {
	case NodeTypeTextInput:
		return NewTextInputData(), nil
	case NodeTypeLLMPrompt:
		return NewLLMPromptData(), nil
	case NodeTypePlaceholder:
		return NewPlaceholderData(), nil
	default:
		return nil, fmt.Errorf("unknown node type: %s", t)
	}
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := *n
	if n.Data != nil {
		cp.Data = n.Data.Clone()
	}
	return &cp
}

func cloneInputs(in *orderedmap.OrderedMap[string, *InputValue]) *orderedmap.OrderedMap[string, *InputValue] {
	out := orderedmap.New[string, *InputValue]()
	if in == nil {
		return out
	}
	for pair := in.Oldest(); pair != nil; pair = pair.Next() {
		v := *pair.Value
		out.Set(pair.Key, &v)
	}
	return out
}
