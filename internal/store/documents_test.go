package store

import "testing"

func TestClampQuality(t *testing.T) {
	cases := map[float64]float64{
		0.0: minQuality,
		0.5: 0.5,
		1.8: 1.8,
		3.0: 3.0,
		5.0: maxQuality,
	}

	for in, want := range cases {
		if got := clampQuality(in); got != want {
			t.Errorf("clampQuality(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestNullableText(t *testing.T) {
	if nullableText("") != nil {
		t.Error("expected nil for empty string")
	}

	got := nullableText("hello")
	if got == nil || *got != "hello" {
		t.Errorf("expected pointer to \"hello\", got %v", got)
	}
}
