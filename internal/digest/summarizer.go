// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pdiddy/research-digest/pkg/types"
)

// Defaults applied by NewAnthropicSummarizer.
const (
	DefaultModel     = "claude-sonnet-4-5"
	DefaultMaxTokens = 4096
)

const systemPrompt = "You write concise, traceable research digests. You only report what the supplied items state and you cite a link for every claim."

// Summarizer turns a rendered prompt into report text.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// AnthropicMessager is the subset of the Anthropic client the summarizer uses.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicSummarizer sends the prompt as a single user message.
type AnthropicSummarizer struct {
	Messages  AnthropicMessager
	Model     string
	MaxTokens int
}

// NewAnthropicSummarizer builds a summarizer from cfg. The client never
// retries and each request is bounded by timeout.
func NewAnthropicSummarizer(cfg types.AIConfig, timeout time.Duration) (*AnthropicSummarizer, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("anthropic API key not configured")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	client := anthropic.NewClient(opts...)

	s := &AnthropicSummarizer{Messages: &client.Messages, Model: cfg.Model, MaxTokens: cfg.MaxTokens}
	if s.Model == "" {
		s.Model = DefaultModel
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = DefaultMaxTokens
	}
	return s, nil
}

// Summarize returns the concatenated text blocks of the model's reply.
func (s *AnthropicSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	resp, err := s.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.Model),
		MaxTokens: int64(s.MaxTokens),
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", errors.New("anthropic returned no text")
	}
	return out, nil
}
