package instant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCurrencyConverterEvaluate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rates":{"EUR":0.9123}}`))
	}))
	defer srv.Close()

	c := NewCurrencyConverter(srv.URL, "")

	ans, err := c.Evaluate(context.Background(), "100 USD to EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ans.Kind != KindCurrencyConversion {
		t.Errorf("expected currency_conversion kind, got %q", ans.Kind)
	}

	if ans.Value != "91.23" {
		t.Errorf("got %q, want \"91.23\"", ans.Value)
	}
}

func TestCurrencyConverterBareToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("base") != "USD" || r.URL.Query().Get("symbols") != "EUR" {
			t.Errorf("expected default 1 USD to EUR query, got %s", r.URL.RawQuery)
		}

		_, _ = w.Write([]byte(`{"rates":{"EUR":1.0}}`))
	}))
	defer srv.Close()

	c := NewCurrencyConverter(srv.URL, "")

	if _, err := c.Evaluate(context.Background(), "converter"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
