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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderPromptFString(t *testing.T) {
	out, err := RenderPrompt("Say: {in}", map[string]any{"in": "Hello"}, FString)
	assert.NoError(t, err)
	assert.Equal(t, "Say: Hello", out)

	// unconnected slots render as empty instead of failing
	out, err = RenderPrompt("a={a}, b={b}", map[string]any{"a": "1"}, FString)
	assert.NoError(t, err)
	assert.Equal(t, "a=1, b=", out)

	// doubled braces are literals
	out, err = RenderPrompt("{{literal}} {v}", map[string]any{"v": "x"}, FString)
	assert.NoError(t, err)
	assert.Equal(t, "{literal} x", out)
}

func TestRenderPromptGoTemplate(t *testing.T) {
	out, err := RenderPrompt("Say: {{.in}}", map[string]any{"in": "Hello"}, GoTemplate)
	assert.NoError(t, err)
	assert.Equal(t, "Say: Hello", out)

	_, err = RenderPrompt("{{.missing}}", map[string]any{}, GoTemplate)
	assert.Error(t, err)
}

func TestRenderPromptJinja2(t *testing.T) {
	out, err := RenderPrompt("Say: {{ in }}", map[string]any{"in": "Hello"}, Jinja2)
	assert.NoError(t, err)
	assert.Equal(t, "Say: Hello", out)

	_, err = RenderPrompt("{% include 'x' %}", map[string]any{}, Jinja2)
	assert.ErrorContains(t, err, "disabled")

	_, err = RenderPrompt("{% extends 'x' %}", map[string]any{}, Jinja2)
	assert.ErrorContains(t, err, "disabled")
}

func TestRenderPromptUnknownFormat(t *testing.T) {
	_, err := RenderPrompt("x", nil, FormatType(9))
	assert.ErrorContains(t, err, "unknown format type")
}
