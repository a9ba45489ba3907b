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

import "fmt"

// DefaultSourceHandle is the output handle used when a connection does not
// name one. Nodes in this graph expose a single output.
const DefaultSourceHandle = "output"

// Edge is a directed connection carrying the source node's output into one
// named input slot of the target node. At most one edge may terminate at a
// given (target, target handle) pair.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	SourceHandle string `json:"sourceHandle"`
	Target       string `json:"target"`
	TargetHandle string `json:"targetHandle"`
}

// Connection is a request to create an edge, as issued by the rendering
// layer. An empty SourceHandle defaults to DefaultSourceHandle.
type Connection struct {
	Source       string `json:"source"`
	SourceHandle string `json:"sourceHandle"`
	Target       string `json:"target"`
	TargetHandle string `json:"targetHandle"`
}

// EdgeID builds the deterministic id of the edge a connection would create.
func EdgeID(source, sourceHandle, target, targetHandle string) string {
	return fmt.Sprintf("e-%s:%s-%s:%s", source, sourceHandle, target, targetHandle)
}

// Edge materializes the connection into an edge value, applying handle
// defaults.
func (c *Connection) Edge() *Edge {
	sh := c.SourceHandle
	if sh == "" {
		sh = DefaultSourceHandle
	}
	return &Edge{
		ID:           EdgeID(c.Source, sh, c.Target, c.TargetHandle),
		Source:       c.Source,
		SourceHandle: sh,
		Target:       c.Target,
		TargetHandle: c.TargetHandle,
	}
}
