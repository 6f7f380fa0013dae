package instant

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var conversationalPrefixes = []string{
	"what is", "what's", "calculate", "compute", "evaluate", "find", "solve",
}

var numberWords = map[string]string{
	"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",
	"ten": "10", "eleven": "11", "twelve": "12", "thirteen": "13",
	"fourteen": "14", "fifteen": "15", "sixteen": "16", "seventeen": "17",
	"eighteen": "18", "nineteen": "19",
	"twenty": "20", "thirty": "30", "forty": "40", "fifty": "50",
	"sixty": "60", "seventy": "70", "eighty": "80", "ninety": "90",
	"hundred": "100", "thousand": "1000", "million": "1000000",
}

var wholeWordNumberPattern = buildNumberWordPattern()

func buildNumberWordPattern() *regexp.Regexp {
	var words []string
	for w := range numberWords {
		words = append(words, w)
	}

	// Longest first so "seventeen" is not shadowed by a shorter prefix.
	for i := 0; i < len(words); i++ {
		for j := i + 1; j < len(words); j++ {
			if len(words[j]) > len(words[i]) {
				words[i], words[j] = words[j], words[i]
			}
		}
	}

	return regexp.MustCompile(`(?i)\b(` + strings.Join(words, "|") + `)\b`)
}

type funcAlias struct {
	pattern *regexp.Regexp
	fn      string
}

var funcAliases = []funcAlias{
	{regexp.MustCompile(`(?i)square root of\s+(-?\d+(\.\d+)?)`), "sqrt"},
	{regexp.MustCompile(`(?i)cube root of\s+(-?\d+(\.\d+)?)`), "cbrt"},
	{regexp.MustCompile(`(?i)\bsqrt\s+(-?\d+(\.\d+)?)`), "sqrt"},
	{regexp.MustCompile(`(?i)\bcbrt\s+(-?\d+(\.\d+)?)`), "cbrt"},
}

var powerPhrasePattern = regexp.MustCompile(`(?i)(-?\d+(\.\d+)?)\s*to the power of\s*(-?\d+(\.\d+)?)`)
var raisedToPattern = regexp.MustCompile(`(?i)(-?\d+(\.\d+)?)\s*raised to\s*(-?\d+(\.\d+)?)`)
var nthPowerPattern = regexp.MustCompile(`(?i)(-?\d+(\.\d+)?)\s*to the\s*(-?\d+)(st|nd|rd|th)\s*power`)

type operatorPhrase struct {
	pattern *regexp.Regexp
	replace string
}

var operatorPhrases = []operatorPhrase{
	{regexp.MustCompile(`(?i)\bplus\b`), "+"},
	{regexp.MustCompile(`(?i)\bminus\b`), "-"},
	{regexp.MustCompile(`(?i)\btimes\b|\bmultiplied by\b`), "*"},
	{regexp.MustCompile(`(?i)\bdivided by\b|\bover\b`), "/"},
	{regexp.MustCompile(`(?i)\bmod\b|\bmodulo\b`), "%"},
	{regexp.MustCompile(`(?i)\bsquared\b`), "^2"},
	{regexp.MustCompile(`(?i)\bcubed\b`), "^3"},
}

// NormalizeMath converts a natural-language or already-numeric math
// query into a precedence-parseable expression. It is idempotent on
// already-normalized expressions.
func NormalizeMath(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))

	for _, prefix := range conversationalPrefixes {
		if strings.HasPrefix(q, prefix) {
			q = strings.TrimSpace(strings.TrimPrefix(q, prefix))

			break
		}
	}

	q = wholeWordNumberPattern.ReplaceAllStringFunc(q, func(word string) string {
		return numberWords[strings.ToLower(word)]
	})

	for _, alias := range funcAliases {
		q = alias.pattern.ReplaceAllString(q, alias.fn+"($1)")
	}

	q = nthPowerPattern.ReplaceAllString(q, "$1^$3")
	q = powerPhrasePattern.ReplaceAllString(q, "$1^$3")
	q = raisedToPattern.ReplaceAllString(q, "$1^$3")

	for _, op := range operatorPhrases {
		q = op.pattern.ReplaceAllString(q, op.replace)
	}

	return strings.TrimSpace(q)
}

// EvaluateMath normalizes and evaluates query, returning the
// formatted result as an Answer.
func EvaluateMath(query string) (Answer, error) {
	trimmed := strings.ToLower(strings.TrimSpace(query))
	if trimmed == "calculator" || trimmed == "calc" {
		return Answer{Kind: KindCalculation, Value: "0"}, nil
	}

	expr := NormalizeMath(query)

	result, err := Evaluate(expr)
	if err != nil {
		return Answer{}, fmt.Errorf("evaluate math %q: %w", query, err)
	}

	return Answer{Kind: KindCalculation, Value: formatNumber(result)}, nil
}

const integerFormatThreshold = 1e15

func formatNumber(v float64) string {
	if v == math.Floor(v) && math.Abs(v) < integerFormatThreshold {
		return strconv.FormatInt(int64(v), 10)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)

	return s
}
