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

	"github.com/cloudwego/flowcanvas/callbacks"
	"github.com/cloudwego/flowcanvas/schema"
)

// handlers are invoked outside the graph lock, with cloned values only.

func needed(ctx context.Context, h callbacks.Handler, timing callbacks.CallbackTiming) bool {
	if tc, ok := h.(callbacks.TimingChecker); ok {
		return tc.Needed(ctx, timing)
	}
	return true
}

func (g *Graph) onNodesChange(ctx context.Context, nodes []*schema.Node) context.Context {
	for _, h := range g.handlers {
		if needed(ctx, h, callbacks.TimingOnNodesChange) {
			ctx = h.OnNodesChange(ctx, nodes)
		}
	}
	return ctx
}

func (g *Graph) onEdgesChange(ctx context.Context, edges []*schema.Edge) context.Context {
	for _, h := range g.handlers {
		if needed(ctx, h, callbacks.TimingOnEdgesChange) {
			ctx = h.OnEdgesChange(ctx, edges)
		}
	}
	return ctx
}

func (g *Graph) onConnect(ctx context.Context, edge *schema.Edge) context.Context {
	for _, h := range g.handlers {
		if needed(ctx, h, callbacks.TimingOnConnect) {
			ctx = h.OnConnect(ctx, edge)
		}
	}
	return ctx
}

func (g *Graph) onEdgesDelete(ctx context.Context, edges []*schema.Edge) context.Context {
	for _, h := range g.handlers {
		if needed(ctx, h, callbacks.TimingOnEdgesDelete) {
			ctx = h.OnEdgesDelete(ctx, edges)
		}
	}
	return ctx
}

func (g *Graph) onNodeRunStart(ctx context.Context, info *callbacks.RunInfo) context.Context {
	for _, h := range g.handlers {
		if needed(ctx, h, callbacks.TimingOnNodeRunStart) {
			ctx = h.OnNodeRunStart(ctx, info)
		}
	}
	return ctx
}

func (g *Graph) onNodeRunEnd(ctx context.Context, info *callbacks.RunInfo, response string) context.Context {
	for _, h := range g.handlers {
		if needed(ctx, h, callbacks.TimingOnNodeRunEnd) {
			ctx = h.OnNodeRunEnd(ctx, info, response)
		}
	}
	return ctx
}

func (g *Graph) onNodeRunError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	for _, h := range g.handlers {
		if needed(ctx, h, callbacks.TimingOnNodeRunError) {
			ctx = h.OnNodeRunError(ctx, info, err)
		}
	}
	return ctx
}
