// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/docent/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client llms.Model
	logger *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat completion
	client, err := openai.New(
		openai.WithBaseURL(config.GenerationHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client: client,
		logger: slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Generate produces a reply to the conversation turns, streaming
// fragments through onFragment as the provider emits them. The
// accumulated reply is returned once the stream reaches its natural
// end; a mid-stream failure returns an error instead.
func (g *Generator) Generate(ctx context.Context, turns []ai.Turn, onFragment ai.FragmentFunc) (string, error) {
	content := make([]llms.MessageContent, 0, len(turns))
	for _, turn := range turns {
		content = append(content, llms.MessageContent{
			Role: mapRole(turn.Role),
			Parts: []llms.ContentPart{
				llms.TextPart(turn.Content),
			},
		})
	}

	var accumulated strings.Builder
	response, err := g.client.GenerateContent(ctx, content,
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			accumulated.Write(chunk)
			if onFragment != nil {
				return onFragment(ctx, chunk)
			}
			return nil
		}))
	if err != nil {
		g.logger.Error("failed to generate reply", "err", err)
		return "", err
	}

	// Prefer the accumulated stream; some providers deliver the full
	// text only in the final response when streaming is unsupported.
	if accumulated.Len() > 0 {
		return accumulated.String(), nil
	}
	if len(response.Choices) < 1 {
		g.logger.Debug("no choices returned from model")
		return "", nil
	}
	reply := response.Choices[0].Content
	if reply != "" && onFragment != nil {
		if err := onFragment(ctx, []byte(reply)); err != nil {
			return "", err
		}
	}
	return reply, nil
}

func mapRole(role ai.TurnRole) llms.ChatMessageType {
	switch role {
	case ai.TurnRoleSystem:
		return llms.ChatMessageTypeSystem
	case ai.TurnRoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
