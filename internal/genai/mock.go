package genai

import "context"

// mockClient provides deterministic, offline output so the rest of
// the system is exercisable without a configured LLM API key.
type mockClient struct{}

func (m *mockClient) Summarize(_ context.Context, text string) (string, error) {
	words := splitWords(text)
	if len(words) == 0 {
		return "", ErrEmptyResponse
	}

	const maxWords = 40
	if len(words) > maxWords {
		words = words[:maxWords]
	}

	return joinWords(words) + "...", nil
}

func (m *mockClient) Answer(_ context.Context, query string, contexts []string) (string, error) {
	if len(contexts) == 0 {
		return "", ErrEmptyResponse
	}

	return "Based on the top result, here is what was found regarding \"" + query + "\": " + firstLine(contexts[0]), nil
}

func splitWords(s string) []string {
	var words []string

	field := make([]rune, 0, 16)
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' {
			if len(field) > 0 {
				words = append(words, string(field))
				field = field[:0]
			}

			continue
		}

		field = append(field, r)
	}

	if len(field) > 0 {
		words = append(words, string(field))
	}

	return words
}

func joinWords(words []string) string {
	out := ""

	for i, w := range words {
		if i > 0 {
			out += " "
		}

		out += w
	}

	return out
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}

	return s
}
