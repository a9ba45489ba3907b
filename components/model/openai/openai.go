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

// Package openai implements model.CompletionModel on top of any
// OpenAI-compatible chat-completions endpoint (OpenAI, Azure-style hosts,
// OpenRouter, a local Ollama, ...).
package openai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/cloudwego/flowcanvas/components/model"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 2 * time.Minute

	chatCompletionsEndpoint = "/chat/completions"
)

// Config is the static configuration of the client. APIKey is the external
// call credential; it is read-only once the client is built.
type Config struct {
	// APIKey is sent as a bearer token. Required for hosted endpoints,
	// ignored by local ones.
	APIKey string
	// BaseURL overrides the API host, e.g. "http://localhost:11434/v1".
	BaseURL string
	// Model is the default model name, overridable per call with
	// model.WithModel.
	Model string
	// Timeout bounds a single completion call. The engine mandates no
	// timeout of its own.
	Timeout time.Duration
	// HTTPClient optionally replaces the transport, mostly for tests.
	HTTPClient *http.Client
}

// CompletionModel is the OpenAI-compatible implementation of
// model.CompletionModel.
type CompletionModel struct {
	config *Config
	client *http.Client
}

// NewCompletionModel creates a client from the given config.
func NewCompletionModel(config *Config) (*CompletionModel, error) {
	if config == nil {
		config = &Config{}
	}
	cfg := *config
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &CompletionModel{
		config: &cfg,
		client: client,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	TopP        *float32      `json:"top_p,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
	User        string        `json:"user,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete issues one chat completion call and returns the assistant text.
func (m *CompletionModel) Complete(ctx context.Context, prompt string, opts ...Option) (string, error) {
	options := model.GetCommonOptions(&model.Options{
		Model: &m.config.Model,
	}, opts...)
	implOptions := model.GetImplSpecificOptions(&openaiOptions{}, opts...)

	reqBody := chatCompletionRequest{
		Model:       *options.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
		TopP:        options.TopP,
		Stop:        options.Stop,
		User:        implOptions.User,
	}

	body, err := sonic.Marshal(&reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal completion request fail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		m.config.BaseURL+chatCompletionsEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request fail: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.config.APIKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request fail: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response fail: %w", err)
	}

	var parsed chatCompletionResponse
	if err = sonic.Unmarshal(respBody, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("completion request failed with status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("unmarshal completion response fail: %w", err)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf("completion request failed: %s: %s", parsed.Error.Type, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion request failed with status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

type openaiOptions struct {
	// User is the optional end-user identifier forwarded to the provider.
	User string
}

// WithUser is the openai-specific option to set the end-user identifier.
func WithUser(user string) model.Option {
	return model.WrapImplSpecificOptFn[openaiOptions](func(o *openaiOptions) {
		o.User = user
	})
}

// Option is an alias so callers do not need to import both packages.
type Option = model.Option
