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
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// GraphSnapshot is the whole-graph value exchanged with the persistence
// adapter and the rendering layer.
type GraphSnapshot struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
	// Selection is the currently selected node id, empty when nothing is
	// selected.
	Selection string `json:"selection,omitempty"`
}

// MarshalGraph encodes a snapshot to JSON.
func MarshalGraph(s *GraphSnapshot) ([]byte, error) {
	return sonic.Marshal(s)
}

// UnmarshalGraph decodes a snapshot from JSON, restoring the concrete node
// data type behind each node's type tag.
func UnmarshalGraph(b []byte) (*GraphSnapshot, error) {
	s := &GraphSnapshot{}
	if err := sonic.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("unmarshal graph snapshot fail: %w", err)
	}
	return s, nil
}

// UnmarshalJSON decodes a node, selecting the data variant by the node's type
// tag.
func (n *Node) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID       string          `json:"id"`
		Type     NodeType        `json:"type"`
		Position Position        `json:"position"`
		Data     json.RawMessage `json:"data"`
	}
	if err := sonic.Unmarshal(b, &raw); err != nil {
		return err
	}

	data, err := NewNodeData(raw.Type)
	if err != nil {
		return fmt.Errorf("unmarshal node '%s' fail: %w", raw.ID, err)
	}
	if len(raw.Data) > 0 {
		if err = sonic.Unmarshal(raw.Data, data); err != nil {
			return fmt.Errorf("unmarshal node '%s' data fail: %w", raw.ID, err)
		}
	}
	if data.InputSlots() == nil {
		// a data object without an inputs field still gets usable slots
		fresh, _ := NewNodeData(raw.Type)
		switch d := data.(type) {
		case *TextInputData:
			d.Inputs = fresh.InputSlots()
		case *LLMPromptData:
			d.Inputs = fresh.InputSlots()
		case *PlaceholderData:
			d.Inputs = fresh.InputSlots()
		}
	}

	n.ID = raw.ID
	n.Type = raw.Type
	n.Position = raw.Position
	n.Data = data
	return nil
}
