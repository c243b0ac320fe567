// Package scoring implements ESG score aggregation: three pillar sub-scores
// are combined into an overall score by configurable weights, and the overall
// score maps onto a discrete risk rating. All functions are pure.
package scoring

import "fmt"

// RiskRating is a discrete risk bucket derived from the overall ESG score.
// Order matters: lower values mean lower risk.
type RiskRating int

const (
	LowRisk RiskRating = iota
	MediumLowRisk
	MediumRisk
	MediumHighRisk
	HighRisk
)

// String returns the display label used by the dashboard and stored in history.
func (r RiskRating) String() string {
	switch r {
	case LowRisk:
		return "Low Risk"
	case MediumLowRisk:
		return "Medium-Low Risk"
	case MediumRisk:
		return "Medium Risk"
	case MediumHighRisk:
		return "Medium-High Risk"
	case HighRisk:
		return "High Risk"
	default:
		return "Unknown"
	}
}

// ParseRiskRating maps a stored label back to its rating.
func ParseRiskRating(label string) (RiskRating, error) {
	for r := LowRisk; r <= HighRisk; r++ {
		if r.String() == label {
			return r, nil
		}
	}
	return HighRisk, fmt.Errorf("unknown risk rating: %q", label)
}

// MarshalJSON serializes the rating as its label.
func (r RiskRating) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// ScoreSet holds the three pillar sub-scores plus the derived overall score
// and risk rating. Overall is never set directly; it is always computed by
// the aggregator.
type ScoreSet struct {
	Environmental float64    `json:"environmental"`
	Social        float64    `json:"social"`
	Governance    float64    `json:"governance"`
	Overall       float64    `json:"overall"`
	RiskRating    RiskRating `json:"risk_rating"`
}

// Weights holds the pillar weights for aggregation. Each weight must be in
// [0, 1] and the three must sum to 1.
type Weights struct {
	Environmental float64 `json:"environmental"`
	Social        float64 `json:"social"`
	Governance    float64 `json:"governance"`
}

// DefaultWeights returns the standard 0.35/0.35/0.30 weighting.
func DefaultWeights() Weights {
	return Weights{Environmental: 0.35, Social: 0.35, Governance: 0.30}
}

// Thresholds holds the lower bounds of the four upper risk buckets, in
// descending order. A score below MediumHigh lands in HighRisk.
type Thresholds struct {
	Low        float64 `json:"low"`
	MediumLow  float64 `json:"medium_low"`
	Medium     float64 `json:"medium"`
	MediumHigh float64 `json:"medium_high"`
}

// DefaultThresholds returns the standard 80/65/50/35 bands.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: 80, MediumLow: 65, Medium: 50, MediumHigh: 35}
}

// ValidationError signals malformed aggregation input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// Fundamentals is the subset of financial metrics consumed by pillar scoring.
// Zero values mean "unknown" and leave the corresponding adjustment at zero,
// matching how missing API fields have always been treated.
type Fundamentals struct {
	Sector        string
	MarketCap     float64
	PERatio       float64
	DebtToEquity  float64
	ROE           float64
	RevenueGrowth float64 // percent, year over year
}

// SentimentSignal is the subset of the news sentiment summary consumed by
// pillar scoring.
type SentimentSignal struct {
	Overall   float64 // mean polarity in [-1, 1]
	KeyTopics []string
}
