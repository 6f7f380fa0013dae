package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"

	summarizeTemperature = 0.3
	answerTemperature    = 0.2
)

// openaiClient adapts the Chat Completions API to Client.
type openaiClient struct {
	client *openai.Client
	model  string
}

func newOpenAIClient(apiKey, model string) Client {
	if model == "" {
		model = defaultOpenAIModel
	}

	return &openaiClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *openaiClient) Summarize(ctx context.Context, text string) (string, error) {
	prompt := summarizePromptPrefix + text

	return c.complete(ctx, prompt, summarizeTemperature)
}

func (c *openaiClient) Answer(ctx context.Context, query string, contexts []string) (string, error) {
	prompt := buildAnswerPrompt(query, contexts)

	return c.complete(ctx, prompt, answerTemperature)
}

func (c *openaiClient) complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	result, err := withRetry(ctx, func() (string, error) {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Temperature: temperature,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			return "", fmt.Errorf("openai chat completion: %w", err)
		}

		if len(resp.Choices) == 0 {
			return "", ErrEmptyResponse
		}

		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	})
	if err != nil {
		return "", err
	}

	if result == "" {
		return "", ErrEmptyResponse
	}

	return result, nil
}
