// Package analysis orchestrates the full ESG analysis pipeline and persists
// the resulting immutable analysis records.
package analysis

import (
	"time"

	"github.com/verdantlabs/esgboard/internal/modules/financial"
	"github.com/verdantlabs/esgboard/internal/modules/scoring"
	"github.com/verdantlabs/esgboard/internal/modules/sentiment"
)

// Record is one completed analysis. Records are immutable once stored;
// a re-analysis creates a new record rather than updating the old one.
type Record struct {
	ID            string            `json:"id"`
	Symbol        string            `json:"symbol"`
	Environmental float64           `json:"environmental_score"`
	Social        float64           `json:"social_score"`
	Governance    float64           `json:"governance_score"`
	Overall       float64           `json:"overall_score"`
	RiskRating    string            `json:"risk_rating"`
	Sentiment     sentiment.Summary `json:"sentiment_data"`
	Financial     financial.Metrics `json:"financial_data"`
	AnalysisDate  time.Time         `json:"analysis_date"`
}

// HistoryEntry is the compact per-record view returned by history queries.
// The msgpack blobs are not decoded for history listings.
type HistoryEntry struct {
	ID            string    `json:"id"`
	Symbol        string    `json:"symbol"`
	Environmental float64   `json:"environmental_score"`
	Social        float64   `json:"social_score"`
	Governance    float64   `json:"governance_score"`
	Overall       float64   `json:"overall_score"`
	RiskRating    string    `json:"risk_rating"`
	AnalysisDate  time.Time `json:"analysis_date"`
}

// Result is the full payload returned to the caller after an analysis.
type Result struct {
	Record             Record                     `json:"record"`
	Scores             scoring.ScoreSet           `json:"scores"`
	IndustryComparison scoring.IndustryComparison `json:"industry_comparison"`
	ArticlesAnalyzed   int                        `json:"articles_analyzed"`
}

// Request is the analyze operation's input.
type Request struct {
	Symbol   string `json:"symbol"`
	DaysBack int    `json:"days_back"`
}

const (
	defaultDaysBack = 30
	minDaysBack     = 1
	maxDaysBack     = 365
)

// normalizeDaysBack applies the default and bounds the lookback window.
func normalizeDaysBack(days int) int {
	if days == 0 {
		return defaultDaysBack
	}
	if days < minDaysBack {
		return minDaysBack
	}
	if days > maxDaysBack {
		return maxDaysBack
	}
	return days
}
