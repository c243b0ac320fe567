package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultAggregator(t *testing.T) *Aggregator {
	t.Helper()
	a, err := NewAggregator(DefaultWeights(), DefaultThresholds())
	require.NoError(t, err)
	return a
}

func TestNewAggregatorRejectsInvalidWeights(t *testing.T) {
	_, err := NewAggregator(Weights{Environmental: 0.4, Social: 0.4, Governance: 0.4}, DefaultThresholds())
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "weights", verr.Field)
}

func TestNewAggregatorRejectsOutOfRangeWeight(t *testing.T) {
	_, err := NewAggregator(Weights{Environmental: 1.2, Social: -0.1, Governance: -0.1}, DefaultThresholds())
	require.Error(t, err)
}

func TestNewAggregatorRejectsNonDescendingThresholds(t *testing.T) {
	_, err := NewAggregator(DefaultWeights(), Thresholds{Low: 50, MediumLow: 65, Medium: 50, MediumHigh: 35})
	require.Error(t, err)
}

func TestAggregateWeightedAverage(t *testing.T) {
	a := newDefaultAggregator(t)

	// 90*0.35 + 70*0.35 + 60*0.30 = 74.0
	scores, err := a.Aggregate(90, 70, 60)
	require.NoError(t, err)

	assert.Equal(t, 74.0, scores.Overall)
	assert.Equal(t, MediumLowRisk, scores.RiskRating)
}

func TestAggregateOverallStaysInRange(t *testing.T) {
	a := newDefaultAggregator(t)

	cases := [][3]float64{
		{0, 0, 0},
		{100, 100, 100},
		{-50, 200, 50},
		{12.3, 99.9, 0.1},
	}
	for _, c := range cases {
		scores, err := a.Aggregate(c[0], c[1], c[2])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, scores.Overall, 0.0)
		assert.LessOrEqual(t, scores.Overall, 100.0)
	}
}

func TestAggregateClampsSubScores(t *testing.T) {
	a := newDefaultAggregator(t)

	scores, err := a.Aggregate(-20, 150, 50)
	require.NoError(t, err)

	assert.Equal(t, 0.0, scores.Environmental)
	assert.Equal(t, 100.0, scores.Social)
	assert.Equal(t, 50.0, scores.Governance)
}

func TestAggregateRejectsNaNAndInf(t *testing.T) {
	a := newDefaultAggregator(t)

	_, err := a.Aggregate(math.NaN(), 50, 50)
	require.Error(t, err)

	_, err = a.Aggregate(50, math.Inf(1), 50)
	require.Error(t, err)

	_, err = a.Aggregate(50, 50, math.Inf(-1))
	require.Error(t, err)
}

func TestAggregateMonotonicInEachPillar(t *testing.T) {
	a := newDefaultAggregator(t)

	base, err := a.Aggregate(50, 50, 50)
	require.NoError(t, err)

	higherEnv, err := a.Aggregate(60, 50, 50)
	require.NoError(t, err)
	assert.Greater(t, higherEnv.Overall, base.Overall)

	higherSoc, err := a.Aggregate(50, 60, 50)
	require.NoError(t, err)
	assert.Greater(t, higherSoc.Overall, base.Overall)

	higherGov, err := a.Aggregate(50, 50, 60)
	require.NoError(t, err)
	assert.Greater(t, higherGov.Overall, base.Overall)
}

func TestAggregateIdempotent(t *testing.T) {
	a := newDefaultAggregator(t)

	first, err := a.Aggregate(72.5, 61.2, 88.8)
	require.NoError(t, err)
	second, err := a.Aggregate(72.5, 61.2, 88.8)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRateRiskBuckets(t *testing.T) {
	a := newDefaultAggregator(t)

	cases := []struct {
		overall float64
		want    RiskRating
	}{
		{100, LowRisk},
		{80, LowRisk},
		{79.9, MediumLowRisk},
		{65, MediumLowRisk},
		{64.9, MediumRisk},
		{50, MediumRisk},
		{49.9, MediumHighRisk},
		{35, MediumHighRisk},
		{34.9, HighRisk},
		{0, HighRisk},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, a.RateRisk(c.overall), "overall=%v", c.overall)
	}
}

func TestRiskRatingLabels(t *testing.T) {
	assert.Equal(t, "Low Risk", LowRisk.String())
	assert.Equal(t, "Medium-Low Risk", MediumLowRisk.String())
	assert.Equal(t, "Medium Risk", MediumRisk.String())
	assert.Equal(t, "Medium-High Risk", MediumHighRisk.String())
	assert.Equal(t, "High Risk", HighRisk.String())

	for r := LowRisk; r <= HighRisk; r++ {
		parsed, err := ParseRiskRating(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}

	_, err := ParseRiskRating("No Risk")
	assert.Error(t, err)
}

func TestRiskRatingJSON(t *testing.T) {
	b, err := MediumLowRisk.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"Medium-Low Risk"`, string(b))
}

func TestCustomWeightsShiftOverall(t *testing.T) {
	envHeavy, err := NewAggregator(Weights{Environmental: 0.8, Social: 0.1, Governance: 0.1}, DefaultThresholds())
	require.NoError(t, err)

	scores, err := envHeavy.Aggregate(90, 30, 30)
	require.NoError(t, err)

	// 90*0.8 + 30*0.1 + 30*0.1 = 78.0
	assert.Equal(t, 78.0, scores.Overall)
	assert.Equal(t, MediumLowRisk, scores.RiskRating)
}

func TestCompareToIndustry(t *testing.T) {
	a := newDefaultAggregator(t)

	scores, err := a.Aggregate(75, 80, 85)
	require.NoError(t, err)

	cmp := a.CompareToIndustry(scores, "Technology")

	assert.Equal(t, 70.0, cmp.Environmental.Benchmark)
	assert.Equal(t, 5.0, cmp.Environmental.Difference)
	assert.Equal(t, 75.0, cmp.Social.Benchmark)
	assert.Equal(t, 80.0, cmp.Governance.Benchmark)

	assert.GreaterOrEqual(t, cmp.Overall.Percentile, 1.0)
	assert.LessOrEqual(t, cmp.Overall.Percentile, 99.0)
	assert.Greater(t, cmp.Overall.Percentile, 50.0)
}

func TestCompareToIndustryUnknownSectorFallsBack(t *testing.T) {
	a := newDefaultAggregator(t)

	scores, err := a.Aggregate(60, 65, 70)
	require.NoError(t, err)

	cmp := a.CompareToIndustry(scores, "Basket Weaving")
	def := BenchmarkFor("Default")

	assert.Equal(t, def.EnvironmentalBaseline, cmp.Environmental.Benchmark)
	assert.Equal(t, def.SocialBaseline, cmp.Social.Benchmark)
	assert.Equal(t, def.GovernanceBaseline, cmp.Governance.Benchmark)
}
