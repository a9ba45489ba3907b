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

// Package callbacks is the engine's notification surface: the rendering layer
// registers a Handler to observe structural changes and node runs.
package callbacks

import (
	"context"

	"github.com/cloudwego/flowcanvas/schema"
)

// RunInfo identifies the node a run notification refers to.
type RunInfo struct {
	NodeID   string
	NodeType schema.NodeType
}

// Handler receives engine notifications. All values passed to a handler are
// snapshots owned by the handler; mutating them does not touch graph state.
type Handler interface {
	// OnNodesChange fires after a batch of node changes has been applied,
	// with the post-change state of the touched nodes. Removed nodes are not
	// delivered here; their cascaded edge removals arrive via OnEdgesDelete.
	OnNodesChange(ctx context.Context, nodes []*schema.Node) context.Context
	// OnEdgesChange fires after a batch of edge changes has been applied.
	OnEdgesChange(ctx context.Context, edges []*schema.Edge) context.Context
	// OnConnect fires after a connection has been recorded and its first
	// propagation performed.
	OnConnect(ctx context.Context, edge *schema.Edge) context.Context
	// OnEdgesDelete fires after a batch of edges has been removed and the
	// stale input slots pruned.
	OnEdgesDelete(ctx context.Context, edges []*schema.Edge) context.Context

	// OnNodeRunStart fires before a node's body executes.
	OnNodeRunStart(ctx context.Context, info *RunInfo) context.Context
	// OnNodeRunEnd fires after a node's body executed successfully.
	OnNodeRunEnd(ctx context.Context, info *RunInfo, response string) context.Context
	// OnNodeRunError fires after a node's body failed.
	OnNodeRunError(ctx context.Context, info *RunInfo, err error) context.Context
}

// CallbackTiming enumerates all the timing of callback aspects.
type CallbackTiming uint8

// CallbackTiming values enumerate the lifecycle moments when handlers run.
const (
	TimingOnNodesChange CallbackTiming = iota
	TimingOnEdgesChange
	TimingOnConnect
	TimingOnEdgesDelete
	TimingOnNodeRunStart
	TimingOnNodeRunEnd
	TimingOnNodeRunError
)

// TimingChecker checks if the handler is needed for the given callback aspect
// timing. Handlers built with HandlerBuilder implement it automatically; the
// engine skips handlers that report a timing as not needed.
type TimingChecker interface {
	Needed(ctx context.Context, timing CallbackTiming) bool
}
