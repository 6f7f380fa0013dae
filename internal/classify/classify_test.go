package classify

import "testing"

func TestClassifyTimer(t *testing.T) {
	cases := []string{
		"set a timer for 10 minutes",
		"timer for 5 seconds",
		"timer",
		"stopwatch",
		"start a timer for 1 hour",
	}

	for _, q := range cases {
		if got := Classify(q); got != IntentTimer {
			t.Errorf("Classify(%q) = %q, want timer", q, got)
		}
	}
}

func TestClassifyUnitConversion(t *testing.T) {
	cases := []string{
		"5 km to mi",
		"10 lbs in kg",
		"100 celsius to fahrenheit",
	}

	for _, q := range cases {
		if got := Classify(q); got != IntentUnitConversion {
			t.Errorf("Classify(%q) = %q, want unit_conversion", q, got)
		}
	}
}

func TestClassifyCurrencyConversion(t *testing.T) {
	cases := []string{
		"100 USD to EUR",
		"converter",
	}

	for _, q := range cases {
		if got := Classify(q); got != IntentCurrencyConversion {
			t.Errorf("Classify(%q) = %q, want currency_conversion", q, got)
		}
	}
}

func TestClassifyMath(t *testing.T) {
	cases := []string{
		"2 + 2",
		"what is 150 times 6 plus 7",
		"sqrt(16)",
		"calculator",
		"calc",
	}

	for _, q := range cases {
		if got := Classify(q); got != IntentMath {
			t.Errorf("Classify(%q) = %q, want math", q, got)
		}
	}
}

func TestClassifySearchFallback(t *testing.T) {
	cases := []string{
		"golang concurrency patterns",
		"best pizza in town",
	}

	for _, q := range cases {
		if got := Classify(q); got != IntentSearch {
			t.Errorf("Classify(%q) = %q, want search", q, got)
		}
	}
}

func TestClassifyRuleOrderUnitBeforeCurrency(t *testing.T) {
	if got := Classify("60 mph to km/h"); got != IntentUnitConversion {
		t.Errorf("expected mph query to classify as unit conversion before currency, got %q", got)
	}
}

func TestClassifyRuleOrderTimerFirst(t *testing.T) {
	if got := Classify("timer"); got != IntentTimer {
		t.Errorf("expected bare timer token to take priority, got %q", got)
	}
}
