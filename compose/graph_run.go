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
	"fmt"
	"runtime/debug"

	"github.com/cloudwego/flowcanvas/internal/safe"
)

// NodeState is the terminal state of one node within a traversal pass.
type NodeState string

const (
	// NodeStateSucceeded means the node ran and its output was recorded.
	NodeStateSucceeded NodeState = "succeeded"
	// NodeStateFailed means the node's own run failed.
	NodeStateFailed NodeState = "failed"
	// NodeStateSkipped means the node was not executed because an ancestor
	// failed, or because the node disappeared mid-pass.
	NodeStateSkipped NodeState = "skipped"
)

// NodeResult is the per-node outcome of a traversal pass.
type NodeResult struct {
	NodeID   string
	State    NodeState
	Response string
	Err      error
}

type traverseOptions struct {
	maxConcurrency int
	fullRerun      bool
}

// TraverseOption configures one TraverseTree pass.
type TraverseOption func(*traverseOptions)

// WithMaxConcurrency bounds the number of node runs in flight at once.
// Zero or negative means unbounded.
func WithMaxConcurrency(n int) TraverseOption {
	return func(o *traverseOptions) {
		o.maxConcurrency = n
	}
}

// WithFullRerun selects the re-run granularity of the pass: a full re-run
// executes every llm-prompt node again, an incremental one reuses responses
// already present and only runs unsatisfied nodes. Defaults to full.
func WithFullRerun(full bool) TraverseOption {
	return func(o *traverseOptions) {
		o.fullRerun = full
	}
}

// TraverseTree computes a dependency-consistent execution order over the
// whole graph and drives each node's run, never executing a node before all
// of its input-providing ancestors have completed and propagated. Nodes
// without a shared data dependency may run concurrently.
//
// The returned map holds one outcome per node in the pass; the boolean is
// false when any node failed or was skipped. If a node's run fails, its
// direct and transitive successors are skipped while independent branches
// continue. Connect keeps the graph acyclic, so a cycle found here means the
// store was corrupted; the pass then aborts with a StructuralIntegrityError
// before anything runs.
func (g *Graph) TraverseTree(ctx context.Context, opts ...TraverseOption) (map[string]*NodeResult, bool, error) {
	options := &traverseOptions{fullRerun: true}
	for _, opt := range opts {
		opt(options)
	}

	g.mu.Lock()
	if err := g.checkAcyclicLocked(); err != nil {
		g.mu.Unlock()
		return nil, false, err
	}

	ids := append([]string(nil), g.nodeOrder...)
	inDegree := make(map[string]int, len(ids))
	successors := make(map[string][]string, len(ids))
	for _, id := range ids {
		inDegree[id] = 0
	}
	for _, e := range g.edges {
		inDegree[e.Target]++
		successors[e.Source] = append(successors[e.Source], e.Target)
	}
	g.mu.Unlock()

	results := make(map[string]*NodeResult, len(ids))
	skipped := make(map[string]bool, len(ids))

	var ready []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	type nodeOutcome struct {
		id       string
		response string
		err      error
	}
	done := make(chan *nodeOutcome, len(ids))

	launch := func(id string) {
		go func() {
			defer func() {
				if panicInfo := recover(); panicInfo != nil {
					done <- &nodeOutcome{id: id, err: safe.NewPanicErr(panicInfo, debug.Stack())}
				}
			}()
			resp, err := g.runNode(ctx, id, options)
			done <- &nodeOutcome{id: id, response: resp, err: err}
		}()
	}

	// transitive successors of a failed or vanished node never run
	var markSkippedFrom func(id string, cause error)
	markSkippedFrom = func(id string, cause error) {
		for _, s := range successors[id] {
			if results[s] != nil || skipped[s] {
				continue
			}
			skipped[s] = true
			results[s] = &NodeResult{
				NodeID: s,
				State:  NodeStateSkipped,
				Err:    fmt.Errorf("skipped: dependency '%s' did not complete: %w", id, cause),
			}
			markSkippedFrom(s, cause)
		}
	}

	inFlight := 0
	canceled := false
	for {
		if !canceled {
			select {
			case <-ctx.Done():
				canceled = true
			default:
			}
		}

		for len(ready) > 0 && !canceled &&
			(options.maxConcurrency <= 0 || inFlight < options.maxConcurrency) {
			id := ready[0]
			ready = ready[1:]
			if skipped[id] || results[id] != nil {
				continue
			}
			inFlight++
			launch(id)
		}

		if inFlight == 0 {
			break
		}

		select {
		case <-ctx.Done():
			// stop launching; in-flight runs drain below
			canceled = true
			out := <-done
			inFlight--
			g.recordOutcome(results, skipped, successors, inDegree, &ready, out.id, out.response, out.err, markSkippedFrom)
		case out := <-done:
			inFlight--
			g.recordOutcome(results, skipped, successors, inDegree, &ready, out.id, out.response, out.err, markSkippedFrom)
		}
	}

	if canceled {
		return results, false, fmt.Errorf("traverse canceled: %w", ctx.Err())
	}

	// every node of the pass must have an outcome on an acyclic graph
	if len(results) != len(ids) {
		missing := make([]string, 0)
		for _, id := range ids {
			if results[id] == nil {
				missing = append(missing, id)
			}
		}
		return results, false, newStructuralIntegrityError("nodes %v never became runnable", missing)
	}

	ok := true
	for _, r := range results {
		if r.State != NodeStateSucceeded {
			ok = false
			break
		}
	}
	return results, ok, nil
}

func (g *Graph) recordOutcome(
	results map[string]*NodeResult,
	skipped map[string]bool,
	successors map[string][]string,
	inDegree map[string]int,
	ready *[]string,
	id, response string,
	err error,
	markSkippedFrom func(string, error),
) {
	if err != nil {
		state := NodeStateFailed
		if err == errNodeGone {
			// the node was deleted while its run was in flight; the result
			// has been discarded, nothing was written back
			state = NodeStateSkipped
		}
		results[id] = &NodeResult{NodeID: id, State: state, Err: err}
		markSkippedFrom(id, err)
		return
	}

	results[id] = &NodeResult{NodeID: id, State: NodeStateSucceeded, Response: response}
	for _, s := range successors[id] {
		inDegree[s]--
		if inDegree[s] == 0 && !skipped[s] && results[s] == nil {
			*ready = append(*ready, s)
		}
	}
}
