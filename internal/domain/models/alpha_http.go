package models

// Requests for the alpha HTTP endpoints. Defined in domain for consistency and reuse.

type AlphaRequest struct {
	Symbol     string `query:"symbol" json:"symbol" validate:"required"`
	MinSignals int    `query:"min_signals" json:"min_signals" default:"3" validate:"gte=1,lte=4"`
}

type AdviceRequest struct {
	Symbol     string `query:"symbol" json:"symbol" validate:"required"`
	MinSignals int    `query:"min_signals" json:"min_signals" default:"3" validate:"gte=1,lte=4"`
}

type ScoresRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

// ScorePoint is one year/value pair inside an upload.
type ScorePoint struct {
	Year  int     `json:"year" validate:"gt=0"`
	Value float64 `json:"value"`
}

// ScoreUploadRequest replaces the spreadsheet path of the original tool: a
// collaborator posts one metric's series for a symbol.
type ScoreUploadRequest struct {
	Symbol string       `json:"symbol" validate:"required"`
	Metric string       `json:"metric" validate:"required,oneof=beneish sloan piotroski altman"`
	Points []ScorePoint `json:"points" validate:"required,min=1,dive"`
}
