package models

// AssembledRow is one year of the merged score table. Nil fields mean the
// metric has no value for that year. Rows with SignalCount below the
// configured minimum never leave the assembler.
type AssembledRow struct {
	Year        int      `json:"year"`
	Beneish     *float64 `json:"beneish"`
	Sloan       *float64 `json:"sloan"`
	Piotroski   *float64 `json:"piotroski"`
	Altman      *float64 `json:"altman"`
	SignalCount int      `json:"signal_count"`
}

// Qualitative labels assigned to a rounded forensic alpha.
const (
	SignalStrongPositive = "Strong Positive"
	SignalPositive       = "Positive"
	SignalNeutral        = "Neutral"
	SignalNegative       = "Negative"
	SignalStrongNegative = "Strong Negative"
)

// AlphaRecord is one year of the blended output table: the four
// direction-corrected normalized signals, the composite alpha rounded to
// 4 decimal places, and its qualitative label. ForensicAlpha is nil when no
// signal carried weight that year; Signal is then empty, never "Neutral".
type AlphaRecord struct {
	Year            int      `json:"year"`
	BeneishSignal   *float64 `json:"beneish_signal"`
	SloanSignal     *float64 `json:"sloan_signal"`
	PiotroskiSignal *float64 `json:"piotroski_signal"`
	AltmanSignal    *float64 `json:"altman_signal"`
	ForensicAlpha   *float64 `json:"forensic_alpha"`
	SignalCount     int      `json:"signal_count"`
	Signal          string   `json:"signal,omitempty"`
}
