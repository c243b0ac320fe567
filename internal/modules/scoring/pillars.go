package scoring

// Pillar scoring derives the three sub-scores from sector baselines adjusted
// by news sentiment, fundamentals, and industry factors. Each pillar result
// is clamped to [0, 100] before aggregation.

const (
	topicEnvironmental = "Environmental"
	topicSocial        = "Social"
	topicGovernance    = "Governance"
)

// ScorePillars computes the three pillar sub-scores for a company.
func ScorePillars(f Fundamentals, s SentimentSignal) (environmental, social, governance float64) {
	b := BenchmarkFor(f.Sector)
	environmental = scoreEnvironmental(f, s, b)
	social = scoreSocial(f, s, b)
	governance = scoreGovernance(f, s, b)
	return environmental, social, governance
}

func scoreEnvironmental(f Fundamentals, s SentimentSignal, b IndustryBenchmark) float64 {
	score := b.EnvironmentalBaseline

	// Sentiment impact (30% weight)
	score += sentimentImpact(s, topicEnvironmental) * 30

	// Revenue growth: sustained growth tends to track operational efficiency
	if f.RevenueGrowth > 10 {
		score += 5
	} else if f.RevenueGrowth < -5 && f.RevenueGrowth != 0 {
		score -= 5
	}

	// Market cap: larger companies have more ESG resources
	switch {
	case f.MarketCap > 100_000_000_000:
		score += 8
	case f.MarketCap > 10_000_000_000:
		score += 5
	case f.MarketCap > 0 && f.MarketCap < 1_000_000_000:
		score -= 3
	}

	// Carbon intensity penalty/bonus
	if b.CarbonIntensityFactor > 1.2 {
		score -= 10
	} else if b.CarbonIntensityFactor < 0.8 {
		score += 8
	}

	if containsTopic(s.KeyTopics, topicEnvironmental) {
		score += 5
	}

	return clamp(score, 0, 100)
}

func scoreSocial(f Fundamentals, s SentimentSignal, b IndustryBenchmark) float64 {
	score := b.SocialBaseline

	// Sentiment impact (35% weight)
	score += sentimentImpact(s, topicSocial) * 35

	// Leverage: low debt supports workforce stability
	if f.DebtToEquity != 0 {
		if f.DebtToEquity < 0.3 {
			score += 8
		} else if f.DebtToEquity > 1.0 {
			score -= 5
		}
	}

	// Profitability funds social programs
	if f.ROE != 0 {
		if f.ROE > 0.15 {
			score += 6
		} else if f.ROE < 0 {
			score -= 8
		}
	}

	if f.MarketCap > 50_000_000_000 {
		score += 6
	}

	if containsTopic(s.KeyTopics, topicSocial) {
		score += 7
	}

	if f.Sector == "Healthcare" {
		score += b.SectorBonus
	}

	return clamp(score, 0, 100)
}

func scoreGovernance(f Fundamentals, s SentimentSignal, b IndustryBenchmark) float64 {
	score := b.GovernanceBaseline

	// Sentiment impact (25% weight)
	score += sentimentImpact(s, topicGovernance) * 25

	// Returns discipline
	if f.ROE != 0 {
		switch {
		case f.ROE > 0.20:
			score += 10
		case f.ROE > 0.10:
			score += 5
		case f.ROE < 0:
			score -= 10
		}
	}

	// Valuation sanity: extreme multiples flag weak capital discipline
	if f.PERatio != 0 {
		if f.PERatio >= 10 && f.PERatio <= 25 {
			score += 5
		} else if f.PERatio > 50 {
			score -= 5
		}
	}

	if f.DebtToEquity != 0 {
		if f.DebtToEquity < 0.5 {
			score += 8
		} else if f.DebtToEquity > 1.5 {
			score -= 8
		}
	}

	if f.Sector == "Financials" {
		score += b.SectorBonus
	}

	if containsTopic(s.KeyTopics, topicGovernance) {
		score += 8
	}

	// Sustained good news usually reflects functioning governance
	if s.Overall > 0.3 {
		score += 5
	} else if s.Overall < -0.3 {
		score -= 5
	}

	return clamp(score, 0, 100)
}

// sentimentImpact returns the per-topic sentiment contribution: overall
// polarity scaled to [-20, 20], plus a bonus of up to 10 when the topic ranks
// high among the detected key topics.
func sentimentImpact(s SentimentSignal, topic string) float64 {
	impact := s.Overall * 20

	for i, t := range s.KeyTopics {
		if t == topic {
			if bonus := 10 - float64(i)*2; bonus > 0 {
				impact += bonus
			}
			break
		}
	}

	return impact
}

func containsTopic(topics []string, topic string) bool {
	for _, t := range topics {
		if t == topic {
			return true
		}
	}
	return false
}
