package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{"shorter than budget", "hello", 10, "hello"},
		{"exact budget", "hello", 5, "hello"},
		{"ascii cut", "hello world", 5, "hello"},
		{"zero budget", "hello", 0, ""},
		{"negative budget", "hello", -1, ""},
		{"empty input", "", 8, ""},
		{"multibyte kept whole", "héllo", 3, "hé"},
		{"multibyte cut before boundary", "héllo", 2, "h"},
		{"emoji boundary", "a😀b", 4, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.n)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
			}
		})
	}
}

// Truncation must always return a valid-UTF-8 prefix within budget,
// for any input and budget.
func TestTruncateInvariants(t *testing.T) {
	inputs := []string{
		"plain ascii",
		"mixé düst wörds",
		"日本語のテキスト",
		"a😀b😀c",
		strings.Repeat("é", 100),
	}

	for _, s := range inputs {
		for n := 0; n <= len(s)+2; n++ {
			got := Truncate(s, n)

			if len(got) > n && n >= 0 {
				t.Fatalf("Truncate(%q, %d) = %q exceeds byte budget", s, n, got)
			}

			if !strings.HasPrefix(s, got) {
				t.Fatalf("Truncate(%q, %d) = %q is not a prefix", s, n, got)
			}

			if !utf8.ValidString(got) {
				t.Fatalf("Truncate(%q, %d) = %q is not valid UTF-8", s, n, got)
			}
		}
	}
}
