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

package callbacks

import (
	"context"

	"github.com/cloudwego/flowcanvas/schema"
)

// HandlerBuilder constructs a Handler by chaining callback functions for the
// change and run aspects. Unset aspects are no-ops.
type HandlerBuilder struct {
	onNodesChangeFn  func(ctx context.Context, nodes []*schema.Node) context.Context
	onEdgesChangeFn  func(ctx context.Context, edges []*schema.Edge) context.Context
	onConnectFn      func(ctx context.Context, edge *schema.Edge) context.Context
	onEdgesDeleteFn  func(ctx context.Context, edges []*schema.Edge) context.Context
	onNodeRunStartFn func(ctx context.Context, info *RunInfo) context.Context
	onNodeRunEndFn   func(ctx context.Context, info *RunInfo, response string) context.Context
	onNodeRunErrorFn func(ctx context.Context, info *RunInfo, err error) context.Context
}

type handlerImpl struct {
	HandlerBuilder
}

func (hb *handlerImpl) OnNodesChange(ctx context.Context, nodes []*schema.Node) context.Context {
	return hb.onNodesChangeFn(ctx, nodes)
}

func (hb *handlerImpl) OnEdgesChange(ctx context.Context, edges []*schema.Edge) context.Context {
	return hb.onEdgesChangeFn(ctx, edges)
}

func (hb *handlerImpl) OnConnect(ctx context.Context, edge *schema.Edge) context.Context {
	return hb.onConnectFn(ctx, edge)
}

func (hb *handlerImpl) OnEdgesDelete(ctx context.Context, edges []*schema.Edge) context.Context {
	return hb.onEdgesDeleteFn(ctx, edges)
}

func (hb *handlerImpl) OnNodeRunStart(ctx context.Context, info *RunInfo) context.Context {
	return hb.onNodeRunStartFn(ctx, info)
}

func (hb *handlerImpl) OnNodeRunEnd(ctx context.Context, info *RunInfo, response string) context.Context {
	return hb.onNodeRunEndFn(ctx, info, response)
}

func (hb *handlerImpl) OnNodeRunError(ctx context.Context, info *RunInfo, err error) context.Context {
	return hb.onNodeRunErrorFn(ctx, info, err)
}

func (hb *handlerImpl) Needed(_ context.Context, timing CallbackTiming) bool {
	switch timing {
	case TimingOnNodesChange:
		return hb.onNodesChangeFn != nil
	case TimingOnEdgesChange:
		return hb.onEdgesChangeFn != nil
	case TimingOnConnect:
		return hb.onConnectFn != nil
	case TimingOnEdgesDelete:
		return hb.onEdgesDeleteFn != nil
	case TimingOnNodeRunStart:
		return hb.onNodeRunStartFn != nil
	case TimingOnNodeRunEnd:
		return hb.onNodeRunEndFn != nil
	case TimingOnNodeRunError:
		return hb.onNodeRunErrorFn != nil
	default:
		return false
	}
}

// NewHandlerBuilder creates and returns a new HandlerBuilder instance.
func NewHandlerBuilder() *HandlerBuilder {
	return &HandlerBuilder{}
}

// OnNodesChangeFn sets the handler for applied node changes.
func (hb *HandlerBuilder) OnNodesChangeFn(
	fn func(ctx context.Context, nodes []*schema.Node) context.Context) *HandlerBuilder {

	hb.onNodesChangeFn = fn
	return hb
}

// OnEdgesChangeFn sets the handler for applied edge changes.
func (hb *HandlerBuilder) OnEdgesChangeFn(
	fn func(ctx context.Context, edges []*schema.Edge) context.Context) *HandlerBuilder {

	hb.onEdgesChangeFn = fn
	return hb
}

// OnConnectFn sets the handler for recorded connections.
func (hb *HandlerBuilder) OnConnectFn(
	fn func(ctx context.Context, edge *schema.Edge) context.Context) *HandlerBuilder {

	hb.onConnectFn = fn
	return hb
}

// OnEdgesDeleteFn sets the handler for deleted edges.
func (hb *HandlerBuilder) OnEdgesDeleteFn(
	fn func(ctx context.Context, edges []*schema.Edge) context.Context) *HandlerBuilder {

	hb.onEdgesDeleteFn = fn
	return hb
}

// OnNodeRunStartFn sets the handler for the node-run start timing.
func (hb *HandlerBuilder) OnNodeRunStartFn(
	fn func(ctx context.Context, info *RunInfo) context.Context) *HandlerBuilder {

	hb.onNodeRunStartFn = fn
	return hb
}

// OnNodeRunEndFn sets the handler for the node-run end timing.
func (hb *HandlerBuilder) OnNodeRunEndFn(
	fn func(ctx context.Context, info *RunInfo, response string) context.Context) *HandlerBuilder {

	hb.onNodeRunEndFn = fn
	return hb
}

// OnNodeRunErrorFn sets the handler for the node-run error timing.
func (hb *HandlerBuilder) OnNodeRunErrorFn(
	fn func(ctx context.Context, info *RunInfo, err error) context.Context) *HandlerBuilder {

	hb.onNodeRunErrorFn = fn
	return hb
}

// Build returns a Handler with the functions set in the builder.
func (hb *HandlerBuilder) Build() Handler {
	return &handlerImpl{*hb}
}
