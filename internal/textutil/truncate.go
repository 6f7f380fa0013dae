// Package textutil holds small text-shaping helpers shared across
// components that need to bound string sizes without corrupting UTF-8.
package textutil

// Truncate returns a prefix of s that is at most n bytes long, never
// splitting a multi-byte rune. Used to bound the text handed to the
// summarizer to a fixed byte budget.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}

	if len(s) <= n {
		return s
	}

	end := n
	for end > 0 && !isRuneStart(s[end]) {
		end--
	}

	return s[:end]
}

// isRuneStart reports whether b is not a UTF-8 continuation byte
// (10xxxxxx), i.e. it begins a new rune or is plain ASCII.
func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
