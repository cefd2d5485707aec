package models

// Recommendation values the advisor may return.
const (
	RecommendationLong  = "LONG"
	RecommendationShort = "SHORT"
	RecommendationHold  = "HOLD"
)

// Confidence values the advisor may return.
const (
	ConfidenceLow    = "Low"
	ConfidenceMedium = "Medium"
	ConfidenceHigh   = "High"
)

// Advice is the advisor collaborator's interpretation of an alpha table.
// Fallback marks responses substituted because the model call failed or
// returned something other than the strict three-field JSON contract.
type Advice struct {
	Recommendation string `json:"recommendation"`
	Confidence     string `json:"confidence"`
	Reasoning      string `json:"reasoning"`
	Fallback       bool   `json:"fallback,omitempty"`
}
