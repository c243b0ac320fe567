package scoring

// IndustryBenchmark holds sector-level ESG baselines and adjustment factors.
type IndustryBenchmark struct {
	EnvironmentalBaseline float64 `json:"environmental_baseline"`
	SocialBaseline        float64 `json:"social_baseline"`
	GovernanceBaseline    float64 `json:"governance_baseline"`
	CarbonIntensityFactor float64 `json:"carbon_intensity_factor"`
	SectorBonus           float64 `json:"sector_bonus"`
}

// industryBenchmarks maps sector names to their benchmarks. Unknown sectors
// fall back to the Default entry.
var industryBenchmarks = map[string]IndustryBenchmark{
	"Technology": {
		EnvironmentalBaseline: 70,
		SocialBaseline:        75,
		GovernanceBaseline:    80,
		CarbonIntensityFactor: 0.8,
		SectorBonus:           10,
	},
	"Energy": {
		EnvironmentalBaseline: 45,
		SocialBaseline:        60,
		GovernanceBaseline:    65,
		CarbonIntensityFactor: 1.5,
		SectorBonus:           15,
	},
	"Healthcare": {
		EnvironmentalBaseline: 65,
		SocialBaseline:        85,
		GovernanceBaseline:    75,
		CarbonIntensityFactor: 0.9,
		SectorBonus:           12,
	},
	"Financials": {
		EnvironmentalBaseline: 60,
		SocialBaseline:        70,
		GovernanceBaseline:    85,
		CarbonIntensityFactor: 0.7,
		SectorBonus:           8,
	},
	"Default": {
		EnvironmentalBaseline: 60,
		SocialBaseline:        65,
		GovernanceBaseline:    70,
		CarbonIntensityFactor: 1.0,
		SectorBonus:           0,
	},
}

// BenchmarkFor returns the benchmark for a sector, falling back to Default.
func BenchmarkFor(sector string) IndustryBenchmark {
	if b, ok := industryBenchmarks[sector]; ok {
		return b
	}
	return industryBenchmarks["Default"]
}

// PillarComparison holds one pillar's score against its sector baseline.
type PillarComparison struct {
	Score      float64 `json:"score"`
	Benchmark  float64 `json:"benchmark"`
	Difference float64 `json:"difference"`
}

// IndustryComparison holds the full score-vs-benchmark breakdown.
type IndustryComparison struct {
	Environmental PillarComparison `json:"environmental"`
	Social        PillarComparison `json:"social"`
	Governance    PillarComparison `json:"governance"`
	Overall       struct {
		Score      float64 `json:"score"`
		Benchmark  float64 `json:"benchmark"`
		Percentile float64 `json:"percentile"`
	} `json:"overall"`
}

// CompareToIndustry compares a score set against its sector's baselines.
// The percentile is a simplified ranking: 50 plus the overall delta, bounded
// to [1, 99].
func (a *Aggregator) CompareToIndustry(scores ScoreSet, sector string) IndustryComparison {
	b := BenchmarkFor(sector)

	var cmp IndustryComparison
	cmp.Environmental = PillarComparison{
		Score:      scores.Environmental,
		Benchmark:  b.EnvironmentalBaseline,
		Difference: round2(scores.Environmental - b.EnvironmentalBaseline),
	}
	cmp.Social = PillarComparison{
		Score:      scores.Social,
		Benchmark:  b.SocialBaseline,
		Difference: round2(scores.Social - b.SocialBaseline),
	}
	cmp.Governance = PillarComparison{
		Score:      scores.Governance,
		Benchmark:  b.GovernanceBaseline,
		Difference: round2(scores.Governance - b.GovernanceBaseline),
	}

	overallBenchmark := b.EnvironmentalBaseline*a.weights.Environmental +
		b.SocialBaseline*a.weights.Social +
		b.GovernanceBaseline*a.weights.Governance

	cmp.Overall.Score = scores.Overall
	cmp.Overall.Benchmark = round2(overallBenchmark)
	cmp.Overall.Percentile = round2(clamp(50+(scores.Overall-overallBenchmark), 1, 99))

	return cmp
}
