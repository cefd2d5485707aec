package advisor

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ForAlpha/internal/domain/models"
	domsvc "ForAlpha/internal/domain/service"
	"ForAlpha/pkg/config"
	xhttp "ForAlpha/pkg/http"
)

const systemPrompt = `You are an equity research analyst specializing in forensic accounting.

You are given:
- A time series of forensic alpha values
- Component forensic signals (Beneish, Sloan, Piotroski, Altman)

Your task:
1. Recommend ONE of: LONG, SHORT, or HOLD
2. Provide concise, professional reasoning grounded ONLY in the data
3. Reference trends, not single-year noise
4. Avoid speculation or market price discussion
5. Be cautious and balanced in tone

Output STRICT JSON with exactly these keys:
recommendation
confidence (Low / Medium / High)
reasoning
`

// OllamaAdvisor calls a locally or remotely hosted language model through the
// Ollama generate API. The model's reply must be strict JSON with exactly the
// recommendation/confidence/reasoning keys; anything else, and any transport
// failure or timeout, yields the fixed conservative fallback instead of an
// error. The fallback is a requirement of the boundary contract, not a
// convenience.
type OllamaAdvisor struct {
	url    string
	model  string
	client *xhttp.Client
}

// NewOllamaAdvisor builds the advisor from config.
func NewOllamaAdvisor(cfg *config.Config) *OllamaAdvisor {
	timeout := cfg.Advisor.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OllamaAdvisor{
		url:    cfg.Advisor.URL,
		model:  cfg.Advisor.Model,
		client: xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type generateReq struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResp struct {
	Response string `json:"response"`
}

// Advise serializes the alpha table into the prompt and returns the model's
// recommendation, or FallbackAdvice when the call or the contract fails.
func (a *OllamaAdvisor) Advise(ctx context.Context, symbol string, table []models.AlphaRecord) models.Advice {
	data, err := json.Marshal(table)
	if err != nil {
		return FallbackAdvice()
	}

	var gr generateResp
	err = a.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     a.url,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body: generateReq{
			Model:  a.model,
			Prompt: systemPrompt + "\n\nSYMBOL: " + symbol + "\n\nDATA:\n" + string(data),
			Stream: false,
		},
	}, &gr)
	if err != nil {
		return FallbackAdvice()
	}

	advice, ok := parseAdvice(gr.Response)
	if !ok {
		return FallbackAdvice()
	}
	return advice
}

// parseAdvice extracts the first JSON object from raw model output and
// enforces the three-field contract.
func parseAdvice(raw string) (models.Advice, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return models.Advice{}, false
	}

	var parsed struct {
		Recommendation string `json:"recommendation"`
		Confidence     string `json:"confidence"`
		Reasoning      string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return models.Advice{}, false
	}

	switch parsed.Recommendation {
	case models.RecommendationLong, models.RecommendationShort, models.RecommendationHold:
	default:
		return models.Advice{}, false
	}
	switch parsed.Confidence {
	case models.ConfidenceLow, models.ConfidenceMedium, models.ConfidenceHigh:
	default:
		return models.Advice{}, false
	}
	if parsed.Reasoning == "" {
		return models.Advice{}, false
	}

	return models.Advice{
		Recommendation: parsed.Recommendation,
		Confidence:     parsed.Confidence,
		Reasoning:      parsed.Reasoning,
	}, true
}

// FallbackAdvice is the conservative default substituted whenever the model
// call fails or its output breaks the contract.
func FallbackAdvice() models.Advice {
	return models.Advice{
		Recommendation: models.RecommendationHold,
		Confidence:     models.ConfidenceLow,
		Reasoning:      "AI interpretation unavailable. Recommendation based solely on quantitative forensic alpha.",
		Fallback:       true,
	}
}

var _ domsvc.Advisor = (*OllamaAdvisor)(nil)
