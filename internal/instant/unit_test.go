package instant

import (
	"strings"
	"testing"
)

func TestEvaluateUnitConversionScenario(t *testing.T) {
	ans, err := EvaluateUnitConversion("5 km to mi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ans.Kind != KindUnitConversion {
		t.Errorf("expected unit_conversion kind, got %q", ans.Kind)
	}

	if !strings.HasPrefix(ans.Value, "3.10") {
		t.Errorf("got %q, want ≈3.10686", ans.Value)
	}
}

func TestEvaluateUnitConversionAliases(t *testing.T) {
	ans, err := EvaluateUnitConversion("10 pounds to kg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(ans.Value, "4.5") {
		t.Errorf("got %q, want ≈4.53592", ans.Value)
	}
}

func TestEvaluateUnitConversionTemperature(t *testing.T) {
	ans, err := EvaluateUnitConversion("100 celsius to fahrenheit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ans.Value != "212" {
		t.Errorf("got %q, want 212", ans.Value)
	}
}

func TestEvaluateUnitConversionRejectsCrossCategory(t *testing.T) {
	_, err := EvaluateUnitConversion("5 km to kg")
	if err == nil {
		t.Error("expected cross-category conversion to fail")
	}
}

func TestEvaluateUnitConversionVolumeOunces(t *testing.T) {
	ans, err := EvaluateUnitConversion("1 gal to oz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(ans.Value, "128") {
		t.Errorf("got %q, want ≈128 fl oz per gallon", ans.Value)
	}
}
