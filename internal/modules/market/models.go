// Package market provides the aggregated dashboard views: trending companies,
// sector averages and market indices.
package market

import "time"

// TrendingCompany is a company ranked by the magnitude of its latest ESG
// score change.
type TrendingCompany struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Sector        string  `json:"sector"`
	LatestScore   float64 `json:"latest_score"`
	PreviousScore float64 `json:"previous_score"`
	ScoreChange   float64 `json:"score_change"`
}

// SectorSummary is the average ESG picture across one sector's companies.
type SectorSummary struct {
	Sector           string  `json:"sector"`
	CompanyCount     int     `json:"company_count"`
	AvgEnvironmental float64 `json:"avg_environmental"`
	AvgSocial        float64 `json:"avg_social"`
	AvgGovernance    float64 `json:"avg_governance"`
	AvgOverall       float64 `json:"avg_overall"`
}

// Index is one market index snapshot.
type Index struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Timestamp     time.Time `json:"timestamp"`
}

// CompanyOverview is one row of the tracked companies dashboard view.
type CompanyOverview struct {
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	Sector       string    `json:"sector"`
	LatestScore  float64   `json:"latest_score"`
	RiskRating   string    `json:"risk_rating"`
	AnalysisDate time.Time `json:"analysis_date"`
}

// PortfolioCompany is one holding's latest ESG analysis.
type PortfolioCompany struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Sector        string  `json:"sector"`
	Environmental float64 `json:"environmental_score"`
	Social        float64 `json:"social_score"`
	Governance    float64 `json:"governance_score"`
	Overall       float64 `json:"overall_score"`
	RiskRating    string  `json:"risk_rating"`
}

// PortfolioSummary averages the pillar scores across a portfolio's holdings.
type PortfolioSummary struct {
	AvgEnvironmental float64 `json:"avg_environmental"`
	AvgSocial        float64 `json:"avg_social"`
	AvgGovernance    float64 `json:"avg_governance"`
	AvgOverall       float64 `json:"avg_overall"`
	CompanyCount     int     `json:"company_count"`
}

// Portfolio is the aggregated ESG view over a list of symbols.
type Portfolio struct {
	Companies []PortfolioCompany `json:"companies"`
	Summary   PortfolioSummary   `json:"portfolio_summary"`
}

// TrackedIndices are the indices the dashboard follows.
var TrackedIndices = map[string]string{
	"^GSPC": "S&P 500",
	"^DJI":  "Dow Jones",
	"^IXIC": "NASDAQ",
	"^RUT":  "Russell 2000",
}
