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

// Package storage persists workflow graph snapshots under caller-chosen ids.
package storage

import (
	"context"
	"errors"

	"github.com/cloudwego/flowcanvas/schema"
)

// ErrNotFound reports that no snapshot is stored under the given id.
var ErrNotFound = errors.New("workflow not found")

// WorkflowStore saves and loads graph snapshots by workflow id.
type WorkflowStore interface {
	Save(ctx context.Context, id string, snapshot *schema.GraphSnapshot) error
	Load(ctx context.Context, id string) (*schema.GraphSnapshot, error)
	Delete(ctx context.Context, id string) error
}
