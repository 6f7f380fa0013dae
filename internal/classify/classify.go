// Package classify routes a user query to one of the intents the
// query pipeline understands.
package classify

import (
	"regexp"
	"strings"
)

// Intent is the result of classification.
type Intent string

// The five intents in rule-evaluation order. The classifier applies
// rules top to bottom; the first match wins.
const (
	IntentTimer              Intent = "timer"
	IntentUnitConversion     Intent = "unit_conversion"
	IntentCurrencyConversion Intent = "currency_conversion"
	IntentMath               Intent = "math"
	IntentSearch             Intent = "search"
)

var (
	timerPattern = regexp.MustCompile(
		`(?i)^(set|start|create)?\s*a?\s*timer\s*(for)?\s*\d+\s*(s|sec|secs|second|seconds|m|min|mins|minute|minutes|h|hr|hrs|hour|hours)\b`,
	)
	timerBareTokens = map[string]bool{"timer": true, "stopwatch": true}

	unitCategories = []string{
		"km", "m", "cm", "mm", "mi", "ft", "in",
		"kg", "g", "lbs", "oz",
		"l", "ml", "gal",
		"mph", "km/h",
		"c", "f", "k",
		"miles", "meters", "feet", "inches", "pounds", "grams", "ounces", "liters", "gallons",
		"celsius", "fahrenheit", "kelvin", "°c", "°f",
	}
	unitConversionPattern = regexp.MustCompile(
		`(?i)-?\d+(\.\d+)?\s*(` + strings.Join(unitCategories, "|") + `)\b\s*(to|in|into|as)\s*(` + strings.Join(unitCategories, "|") + `)\b`,
	)

	currencyConversionPattern = regexp.MustCompile(`-?\d+(\.\d+)?\s*[A-Z]{3}\s*(?i:to|in|into|as)\s*[A-Z]{3}\b`)
	currencyBareTokens        = map[string]bool{"converter": true}

	arithmeticExprPattern = regexp.MustCompile(`^[\d\s+\-*/^%().]+$`)
	mathFunctionPattern   = regexp.MustCompile(`(?i)\b(sqrt|cbrt|sin|cos|tan|log|ln|abs|ceil|floor)\s*\(`)
	mathBareTokens        = map[string]bool{"calculator": true, "calc": true}
)

// mathPhraseHints are substrings that only appear in English
// arithmetic phrases, used to route natural-language math queries to
// Math without requiring full normalization here (the evaluator in
// internal/instant performs the actual normalization).
var mathPhraseHints = []string{
	"plus", "minus", "times", "multiplied by", "divided by", "modulo",
	"square root of", "cube root of", "to the power of", "raised to", "squared", "cubed",
}

// Classify applies the rule cascade and returns the first matching
// intent; Search is the fallback.
func Classify(query string) Intent {
	q := strings.TrimSpace(query)
	lower := strings.ToLower(q)

	if isTimer(lower) {
		return IntentTimer
	}

	if unitConversionPattern.MatchString(lower) {
		return IntentUnitConversion
	}

	if currencyConversionPattern.MatchString(q) || currencyBareTokens[lower] {
		return IntentCurrencyConversion
	}

	if isMath(lower) {
		return IntentMath
	}

	return IntentSearch
}

func isTimer(lower string) bool {
	if timerBareTokens[lower] {
		return true
	}

	return timerPattern.MatchString(lower)
}

func isMath(lower string) bool {
	if mathBareTokens[lower] {
		return true
	}

	if lower != "" && arithmeticExprPattern.MatchString(lower) {
		return true
	}

	if mathFunctionPattern.MatchString(lower) {
		return true
	}

	for _, hint := range mathPhraseHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}

	return isNaturalLanguageArithmetic(lower)
}

// conversationalPrefixes mirrors internal/instant's normalization
// prefixes, so a query like "what is 2 plus 2" is recognized as Math
// even before normalization strips the prefix.
var conversationalPrefixes = []string{"what is", "what's", "calculate", "compute", "evaluate", "find", "solve"}

func isNaturalLanguageArithmetic(lower string) bool {
	stripped := lower

	for _, prefix := range conversationalPrefixes {
		if strings.HasPrefix(stripped, prefix) {
			stripped = strings.TrimSpace(strings.TrimPrefix(stripped, prefix))

			break
		}
	}

	if stripped == lower {
		return false
	}

	if arithmeticExprPattern.MatchString(stripped) {
		return true
	}

	for _, hint := range mathPhraseHints {
		if strings.Contains(stripped, hint) {
			return true
		}
	}

	return mathFunctionPattern.MatchString(stripped)
}
