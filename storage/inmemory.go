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
	"fmt"
	"sync"

	"github.com/cloudwego/flowcanvas/schema"
)

// InMemoryStore keeps snapshots in process memory. Snapshots are stored in
// their encoded form so callers never share node structures with the store.
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewInMemoryStore creates an empty in-memory workflow store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: map[string][]byte{}}
}

func (s *InMemoryStore) Save(_ context.Context, id string, snapshot *schema.GraphSnapshot) error {
	if id == "" {
		return fmt.Errorf("save workflow: empty id")
	}
	b, err := schema.MarshalGraph(snapshot)
	if err != nil {
		return fmt.Errorf("save workflow '%s': %w", id, err)
	}
	s.mu.Lock()
	s.data[id] = b
	s.mu.Unlock()
	return nil
}

func (s *InMemoryStore) Load(_ context.Context, id string) (*schema.GraphSnapshot, error) {
	s.mu.RLock()
	b, ok := s.data[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("load workflow '%s': %w", id, ErrNotFound)
	}
	snapshot, err := schema.UnmarshalGraph(b)
	if err != nil {
		return nil, fmt.Errorf("load workflow '%s': %w", id, err)
	}
	return snapshot, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.data, id)
	s.mu.Unlock()
	return nil
}
