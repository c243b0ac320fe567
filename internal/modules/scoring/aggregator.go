package scoring

import "math"

const weightSumTolerance = 1e-9

// Aggregator combines pillar sub-scores into an overall score and risk
// rating. It is stateless; the same input always produces the same output.
type Aggregator struct {
	weights    Weights
	thresholds Thresholds
}

// NewAggregator creates an aggregator with validated weights and thresholds.
func NewAggregator(weights Weights, thresholds Thresholds) (*Aggregator, error) {
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}
	if err := ValidateThresholds(thresholds); err != nil {
		return nil, err
	}
	return &Aggregator{weights: weights, thresholds: thresholds}, nil
}

// ValidateWeights checks that each weight is in [0, 1] and the sum is 1.
func ValidateWeights(w Weights) error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"weights.environmental", w.Environmental},
		{"weights.social", w.Social},
		{"weights.governance", w.Governance},
	} {
		if math.IsNaN(f.value) || f.value < 0 || f.value > 1 {
			return &ValidationError{Field: f.name, Reason: "must be in [0, 1]"}
		}
	}
	if math.Abs(w.Environmental+w.Social+w.Governance-1.0) > weightSumTolerance {
		return &ValidationError{Field: "weights", Reason: "must sum to 1.0"}
	}
	return nil
}

// ValidateThresholds checks that the bucket cut points are strictly descending.
func ValidateThresholds(t Thresholds) error {
	if !(t.Low > t.MediumLow && t.MediumLow > t.Medium && t.Medium > t.MediumHigh) {
		return &ValidationError{Field: "thresholds", Reason: "must be strictly descending"}
	}
	return nil
}

// Aggregate computes the full ScoreSet for three pillar sub-scores.
// Sub-scores are clamped to [0, 100]; NaN or Inf input is rejected.
func (a *Aggregator) Aggregate(environmental, social, governance float64) (ScoreSet, error) {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"environmental", environmental},
		{"social", social},
		{"governance", governance},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return ScoreSet{}, &ValidationError{Field: f.name, Reason: "must be a finite number"}
		}
	}

	environmental = clamp(environmental, 0, 100)
	social = clamp(social, 0, 100)
	governance = clamp(governance, 0, 100)

	overall := environmental*a.weights.Environmental +
		social*a.weights.Social +
		governance*a.weights.Governance

	return ScoreSet{
		Environmental: round2(environmental),
		Social:        round2(social),
		Governance:    round2(governance),
		Overall:       round2(overall),
		RiskRating:    a.RateRisk(overall),
	}, nil
}

// RateRisk maps an overall score onto its risk bucket. The bands are
// half-open: a score equal to a cut point lands in the lower-risk bucket.
func (a *Aggregator) RateRisk(overall float64) RiskRating {
	switch {
	case overall >= a.thresholds.Low:
		return LowRisk
	case overall >= a.thresholds.MediumLow:
		return MediumLowRisk
	case overall >= a.thresholds.Medium:
		return MediumRisk
	case overall >= a.thresholds.MediumHigh:
		return MediumHighRisk
	default:
		return HighRisk
	}
}

// Weights returns the configured pillar weights.
func (a *Aggregator) Weights() Weights {
	return a.weights
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
