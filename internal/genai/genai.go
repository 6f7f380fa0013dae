// Package genai wraps the external generation endpoint behind the
// narrow Summarizer/Answerer capability (C13): identical transport,
// timeouts, and retry policy for both operations.
package genai

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyResponse is surfaced when the provider returns no usable
// text; the caller (C8 for summarize, C11 for answer) decides the
// consequence.
var ErrEmptyResponse = errors.New("empty generation response")

// Summarizer produces a short summary of extracted page text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Answerer synthesizes a grounded natural-language answer from
// retrieved contexts.
type Answerer interface {
	Answer(ctx context.Context, query string, contexts []string) (string, error)
}

// Client implements both Summarizer and Answerer.
type Client interface {
	Summarizer
	Answerer
}

// New selects a concrete Client: the mock adapter when apiKey is
// empty or the literal "mock", otherwise a real provider adapter
// selected by provider name.
func New(provider, apiKey, model string) Client {
	if apiKey == "" || apiKey == "mock" {
		return &mockClient{}
	}

	switch strings.ToLower(provider) {
	case "openai":
		return newOpenAIClient(apiKey, model)
	default:
		return newAnthropicClient(apiKey, model)
	}
}

const (
	summarizePromptPrefix = "Summarize the following web page content in 2-3 sentences, preserving key facts:\n\n"
)

func buildAnswerPrompt(query string, contexts []string) string {
	var sb strings.Builder

	sb.WriteString("Answer the question in 2-4 sentences, using only the information in the provided contexts. ")
	sb.WriteString("If the contexts do not contain the answer, say so briefly.\n\n")
	sb.WriteString("Question: ")
	sb.WriteString(query)
	sb.WriteString("\n\nContexts:\n")

	for _, c := range contexts {
		sb.WriteString(c)
		sb.WriteString("\n---\n")
	}

	return sb.String()
}
