package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultAnthropicModel = "claude-haiku-4.5"
	contentTypeText       = "text"

	summarizeMaxTokens = int64(512)
	answerMaxTokens    = int64(768)
)

// anthropicClient adapts the Anthropic Messages API to Client.
type anthropicClient struct {
	client anthropic.Client
	model  string
}

func newAnthropicClient(apiKey, model string) Client {
	if model == "" {
		model = defaultAnthropicModel
	}

	return &anthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *anthropicClient) Summarize(ctx context.Context, text string) (string, error) {
	prompt := summarizePromptPrefix + text

	return c.complete(ctx, prompt, summarizeMaxTokens)
}

func (c *anthropicClient) Answer(ctx context.Context, query string, contexts []string) (string, error) {
	prompt := buildAnswerPrompt(query, contexts)

	return c.complete(ctx, prompt, answerMaxTokens)
}

func (c *anthropicClient) complete(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	result, err := withRetry(ctx, func() (string, error) {
		resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(c.model),
			MaxTokens: maxTokens,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			return "", fmt.Errorf("anthropic messages.new: %w", err)
		}

		return strings.TrimSpace(extractAnthropicText(resp)), nil
	})
	if err != nil {
		return "", err
	}

	if result == "" {
		return "", ErrEmptyResponse
	}

	return result, nil
}

func extractAnthropicText(resp *anthropic.Message) string {
	var sb strings.Builder

	for _, block := range resp.Content {
		if block.Type == contentTypeText {
			sb.WriteString(block.Text)
		}
	}

	return sb.String()
}
