package models

// Metric identifies one of the four forensic scores tracked per company.
type Metric string

const (
	MetricBeneish   Metric = "beneish"   // earnings-manipulation risk, higher = worse
	MetricSloan     Metric = "sloan"     // accrual quality, higher = worse
	MetricPiotroski Metric = "piotroski" // fundamental strength, higher = stronger
	MetricAltman    Metric = "altman"    // bankruptcy distance, higher = safer
)

// Metrics lists all forensic metrics in blending order.
var Metrics = []Metric{MetricBeneish, MetricSloan, MetricPiotroski, MetricAltman}

// IsValidMetric returns true if m is one of the four forensic metrics.
func IsValidMetric(m Metric) bool {
	switch m {
	case MetricBeneish, MetricSloan, MetricPiotroski, MetricAltman:
		return true
	default:
		return false
	}
}

// SignalSeries maps a fiscal year ordinal to a computed score.
// An absent year means the score is not available for that year; years are
// not required to be contiguous.
type SignalSeries map[int]float64

// ScoreUpdate is a single per-year score event produced by the external
// scoring collaborator (feed, Kafka or HTTP upload).
type ScoreUpdate struct {
	Symbol    string
	Metric    Metric
	Year      int
	Value     float64
	Source    string
	Timestamp int64 // unix seconds of the update event
}
