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

// Package callbacks provides ready-to-use handler helpers on top of the core
// callbacks package.
package callbacks

import (
	"context"

	"github.com/cloudwego/flowcanvas/callbacks"
	"github.com/cloudwego/flowcanvas/schema"
)

// NodeRunHandler receives the run lifecycle events of one node type.
type NodeRunHandler struct {
	OnStart func(ctx context.Context, info *callbacks.RunInfo) context.Context
	OnEnd   func(ctx context.Context, info *callbacks.RunInfo, response string) context.Context
	OnError func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context
}

// NewHandlerHelper creates a builder for a handler that dispatches node-run
// events by node type. Useful when the caller cares about, say, llm-prompt
// runs only, without switching on the type in every callback.
//
//	handler := NewHandlerHelper().
//		LLMPrompt(&NodeRunHandler{OnEnd: logResponse}).
//		Fallback(&NodeRunHandler{OnStart: trace}).
//		Handler()
func NewHandlerHelper() *HandlerHelper {
	return &HandlerHelper{
		byType: map[schema.NodeType]*NodeRunHandler{},
	}
}

// HandlerHelper routes node-run callbacks to per-node-type handlers, with an
// optional fallback for types without a dedicated one.
type HandlerHelper struct {
	byType   map[schema.NodeType]*NodeRunHandler
	fallback *NodeRunHandler
}

// TextInput sets the handler for text-input node runs.
func (h *HandlerHelper) TextInput(handler *NodeRunHandler) *HandlerHelper {
	h.byType[schema.NodeTypeTextInput] = handler
	return h
}

// LLMPrompt sets the handler for llm-prompt node runs.
func (h *HandlerHelper) LLMPrompt(handler *NodeRunHandler) *HandlerHelper {
	h.byType[schema.NodeTypeLLMPrompt] = handler
	return h
}

// Placeholder sets the handler for placeholder node runs.
func (h *HandlerHelper) Placeholder(handler *NodeRunHandler) *HandlerHelper {
	h.byType[schema.NodeTypePlaceholder] = handler
	return h
}

// Fallback sets the handler for node types without a dedicated one.
func (h *HandlerHelper) Fallback(handler *NodeRunHandler) *HandlerHelper {
	h.fallback = handler
	return h
}

// Handler builds the dispatching handler.
func (h *HandlerHelper) Handler() callbacks.Handler {
	return &dispatchHandler{byType: h.byType, fallback: h.fallback}
}

type dispatchHandler struct {
	byType   map[schema.NodeType]*NodeRunHandler
	fallback *NodeRunHandler
}

func (d *dispatchHandler) pick(info *callbacks.RunInfo) *NodeRunHandler {
	if info == nil {
		return d.fallback
	}
	if h, ok := d.byType[info.NodeType]; ok {
		return h
	}
	return d.fallback
}

func (d *dispatchHandler) OnNodesChange(ctx context.Context, _ []*schema.Node) context.Context {
	return ctx
}

func (d *dispatchHandler) OnEdgesChange(ctx context.Context, _ []*schema.Edge) context.Context {
	return ctx
}

func (d *dispatchHandler) OnConnect(ctx context.Context, _ *schema.Edge) context.Context {
	return ctx
}

func (d *dispatchHandler) OnEdgesDelete(ctx context.Context, _ []*schema.Edge) context.Context {
	return ctx
}

func (d *dispatchHandler) OnNodeRunStart(ctx context.Context, info *callbacks.RunInfo) context.Context {
	if h := d.pick(info); h != nil && h.OnStart != nil {
		return h.OnStart(ctx, info)
	}
	return ctx
}

func (d *dispatchHandler) OnNodeRunEnd(ctx context.Context, info *callbacks.RunInfo, response string) context.Context {
	if h := d.pick(info); h != nil && h.OnEnd != nil {
		return h.OnEnd(ctx, info, response)
	}
	return ctx
}

func (d *dispatchHandler) OnNodeRunError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	if h := d.pick(info); h != nil && h.OnError != nil {
		return h.OnError(ctx, info, err)
	}
	return ctx
}

// Needed reports whether any configured handler consumes the timing, so the
// engine can skip dispatch entirely for timings nobody listens to.
func (d *dispatchHandler) Needed(_ context.Context, timing callbacks.CallbackTiming) bool {
	all := make([]*NodeRunHandler, 0, len(d.byType)+1)
	for _, h := range d.byType {
		all = append(all, h)
	}
	if d.fallback != nil {
		all = append(all, d.fallback)
	}
	for _, h := range all {
		if h == nil {
			continue
		}
		switch timing {
		case callbacks.TimingOnNodeRunStart:
			if h.OnStart != nil {
				return true
			}
		case callbacks.TimingOnNodeRunEnd:
			if h.OnEnd != nil {
				return true
			}
		case callbacks.TimingOnNodeRunError:
			if h.OnError != nil {
				return true
			}
		}
	}
	return false
}
