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
	"errors"
	"fmt"
)

// ValidationError reports a rejected mutation: invalid endpoints, a
// cycle-forming connection, a missing placeholder target. The operation is a
// no-op; graph state is unchanged.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("graph validation error: %s", e.Err.Error())
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(format string, a ...any) error {
	return &ValidationError{Err: fmt.Errorf(format, a...)}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	ve := &ValidationError{}
	return errors.As(err, &ve)
}

// ExternalCallError reports a failed completion call during a node run. It is
// node-scoped: the failing node's branch halts, sibling branches proceed, and
// the node's response is left unchanged.
type ExternalCallError struct {
	NodeID string
	Err    error
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("external call failed for node '%s': %s", e.NodeID, e.Err.Error())
}

func (e *ExternalCallError) Unwrap() error {
	return e.Err
}

func newExternalCallError(nodeID string, err error) error {
	return &ExternalCallError{NodeID: nodeID, Err: err}
}

// StructuralIntegrityError reports a cycle detected at run time despite the
// connect-time guard. It is fatal to the current traversal; graph state is
// left unchanged.
type StructuralIntegrityError struct {
	Err error
}

func (e *StructuralIntegrityError) Error() string {
	return fmt.Sprintf("graph structural integrity error: %s", e.Err.Error())
}

func (e *StructuralIntegrityError) Unwrap() error {
	return e.Err
}

func newStructuralIntegrityError(format string, a ...any) error {
	return &StructuralIntegrityError{Err: fmt.Errorf(format, a...)}
}
