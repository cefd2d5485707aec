package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ForAlpha/internal/domain/models"
	"ForAlpha/pkg/config"
)

func newTestAdvisor(url string) *OllamaAdvisor {
	cfg := &config.Config{}
	cfg.Advisor.URL = url
	cfg.Advisor.Model = "llama3"
	cfg.Advisor.Timeout = 2 * time.Second
	return NewOllamaAdvisor(cfg)
}

func sampleTable() []models.AlphaRecord {
	a := 0.5123
	return []models.AlphaRecord{{Year: 2021, ForensicAlpha: &a, SignalCount: 4, Signal: models.SignalPositive}}
}

func ollamaReply(t *testing.T, inner string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": inner})
	}
}

func TestAdviseParsesStrictJSON(t *testing.T) {
	srv := httptest.NewServer(ollamaReply(t,
		`Here is my analysis: {"recommendation":"LONG","confidence":"High","reasoning":"Improving alpha trend."} done`))
	defer srv.Close()

	got := newTestAdvisor(srv.URL).Advise(context.Background(), "ACME", sampleTable())
	if got.Fallback {
		t.Fatalf("unexpected fallback: %+v", got)
	}
	if got.Recommendation != models.RecommendationLong || got.Confidence != models.ConfidenceHigh {
		t.Fatalf("unexpected advice: %+v", got)
	}
}

func TestAdviseFallbackOnServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	got := newTestAdvisor(srv.URL).Advise(context.Background(), "ACME", sampleTable())
	assertFallback(t, got)
}

func TestAdviseFallbackOnUnreachableService(t *testing.T) {
	got := newTestAdvisor("http://127.0.0.1:1/api/generate").Advise(context.Background(), "ACME", sampleTable())
	assertFallback(t, got)
}

func TestAdviseFallbackOnMalformedModelOutput(t *testing.T) {
	cases := []string{
		"no json here at all",
		`{"recommendation":"BUY","confidence":"High","reasoning":"x"}`,
		`{"recommendation":"LONG","confidence":"Certain","reasoning":"x"}`,
		`{"recommendation":"LONG","confidence":"High"}`,
		`{"recommendation":"LONG","confidence":"High","reasoning":`,
	}
	for _, inner := range cases {
		srv := httptest.NewServer(ollamaReply(t, inner))
		got := newTestAdvisor(srv.URL).Advise(context.Background(), "ACME", sampleTable())
		srv.Close()
		assertFallback(t, got)
	}
}

func assertFallback(t *testing.T, got models.Advice) {
	t.Helper()
	if !got.Fallback {
		t.Fatalf("expected fallback advice, got %+v", got)
	}
	if got.Recommendation != models.RecommendationHold || got.Confidence != models.ConfidenceLow {
		t.Fatalf("fallback must be HOLD/Low, got %+v", got)
	}
	if got.Reasoning == "" {
		t.Fatalf("fallback must carry a reasoning note")
	}
}

func TestParseAdviceExtractsEmbeddedObject(t *testing.T) {
	advice, ok := parseAdvice(`prefix {"recommendation":"HOLD","confidence":"Medium","reasoning":"Flat trend."} suffix`)
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if advice.Recommendation != models.RecommendationHold || advice.Confidence != models.ConfidenceMedium {
		t.Fatalf("unexpected advice: %+v", advice)
	}
}
