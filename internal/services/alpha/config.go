package alpha

import (
	"fmt"
	"math"

	"ForAlpha/internal/domain/models"
)

// DefaultMinSignals is the minimum number of non-null scores a year must
// carry to survive assembly.
const DefaultMinSignals = 3

// BlendConfig carries the static weight table and polarity map for one blend
// call. Callers build a fresh value per invocation (DefaultBlendConfig) so
// concurrent blends with different schemes cannot interfere; nothing in this
// package holds mutable state.
type BlendConfig struct {
	// Weights must cover all four metrics and sum to 1.0.
	Weights map[models.Metric]float64
	// Inverted marks metrics where a higher raw value means worse health;
	// their normalized signals are negated before blending.
	Inverted map[models.Metric]bool
	// MinSignals is the assembly threshold, valid range 1..4.
	MinSignals int
}

// DefaultBlendConfig returns the documented weight table:
//
//	beneish   0.35  (inverted)
//	sloan     0.25  (inverted)
//	piotroski 0.25
//	altman    0.15
func DefaultBlendConfig() BlendConfig {
	return BlendConfig{
		Weights: map[models.Metric]float64{
			models.MetricBeneish:   0.35,
			models.MetricSloan:     0.25,
			models.MetricPiotroski: 0.25,
			models.MetricAltman:    0.15,
		},
		Inverted: map[models.Metric]bool{
			models.MetricBeneish: true,
			models.MetricSloan:   true,
		},
		MinSignals: DefaultMinSignals,
	}
}

// Validate checks the weight table covers every metric and sums to 1.0.
func (c BlendConfig) Validate() error {
	if c.MinSignals < 1 || c.MinSignals > 4 {
		return fmt.Errorf("min_signals %d out of range [1,4]", c.MinSignals)
	}
	sum := 0.0
	for _, m := range models.Metrics {
		w, ok := c.Weights[m]
		if !ok {
			return fmt.Errorf("missing weight for metric %s", m)
		}
		if w < 0 {
			return fmt.Errorf("negative weight %f for metric %s", w, m)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("weights sum to %f, expected 1.0", sum)
	}
	return nil
}
