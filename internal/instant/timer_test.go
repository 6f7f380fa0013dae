package instant

import "testing"

func TestEvaluateTimerBareTokens(t *testing.T) {
	cases := []string{"timer", "stopwatch", "Timer"}

	for _, q := range cases {
		ans := EvaluateTimer(q)
		if ans.Value != "300" {
			t.Errorf("EvaluateTimer(%q) = %q, want 300", q, ans.Value)
		}
	}
}

func TestEvaluateTimerSumsUnits(t *testing.T) {
	ans := EvaluateTimer("set a timer for 1 hour and 30 minutes")

	if ans.Value != "5400" {
		t.Errorf("got %q, want 5400", ans.Value)
	}
}

func TestEvaluateTimerSeconds(t *testing.T) {
	ans := EvaluateTimer("timer for 45 seconds")

	if ans.Value != "45" {
		t.Errorf("got %q, want 45", ans.Value)
	}
}
