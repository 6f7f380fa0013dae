// Package instant implements the computation intents the query
// pipeline can answer without touching the full-text index: math,
// unit conversion, currency conversion, and timers.
package instant

// Answer is the structured response returned instead of ranked
// documents when the classifier matches a computation intent.
type Answer struct {
	Kind  string
	Value string
}

// Kinds of instant answer.
const (
	KindCalculation        = "calculation"
	KindUnitConversion     = "unit_conversion"
	KindCurrencyConversion = "currency_conversion"
	KindTimer              = "timer"
)
