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

package model

import "context"

// CompletionModel is the single-shot external completion contract consumed by
// the node executor: one prompt in, one text out. Implementations own the
// credential, transport, retry and timeout policy; the engine issues exactly
// one call per llm-prompt node run and never retries.
type CompletionModel interface {
	Complete(ctx context.Context, prompt string, opts ...Option) (string, error)
}
