package market

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"
)

// Repository reads the aggregated market views from the analysis tables and
// stores index snapshots.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new market repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetTrendingCompanies ranks companies by the magnitude of the change between
// their two most recent analyses in the last 30 days. Companies with a single
// analysis are excluded since there is no change to rank.
func (r *Repository) GetTrendingCompanies(limit int) ([]TrendingCompany, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(`
		WITH recent_analyses AS (
			SELECT symbol, overall_score, analysis_date,
			       ROW_NUMBER() OVER (PARTITION BY symbol ORDER BY analysis_date DESC) AS rn
			FROM esg_analyses
			WHERE analysis_date >= date('now', '-30 days')
		),
		score_changes AS (
			SELECT r1.symbol,
			       r1.overall_score AS latest_score,
			       r2.overall_score AS previous_score,
			       (r1.overall_score - r2.overall_score) AS score_change
			FROM recent_analyses r1
			LEFT JOIN recent_analyses r2 ON r1.symbol = r2.symbol AND r2.rn = 2
			WHERE r1.rn = 1 AND r2.overall_score IS NOT NULL
		)
		SELECT sc.symbol, c.name, c.sector, sc.latest_score, sc.previous_score, sc.score_change
		FROM score_changes sc
		JOIN companies c ON sc.symbol = c.symbol
		ORDER BY ABS(sc.score_change) DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trending companies: %w", err)
	}
	defer rows.Close()

	var trending []TrendingCompany
	for rows.Next() {
		var t TrendingCompany
		var name, sector sql.NullString
		if err := rows.Scan(&t.Symbol, &name, &sector, &t.LatestScore, &t.PreviousScore, &t.ScoreChange); err != nil {
			return nil, fmt.Errorf("failed to scan trending row: %w", err)
		}
		t.Name = name.String
		t.Sector = sector.String
		trending = append(trending, t)
	}
	return trending, rows.Err()
}

// GetSectorAnalysis averages each sector's latest analyses from the last
// 30 days, best average overall first.
func (r *Repository) GetSectorAnalysis() ([]SectorSummary, error) {
	rows, err := r.db.Query(`
		WITH latest_analyses AS (
			SELECT e.symbol,
			       e.environmental_score, e.social_score, e.governance_score, e.overall_score,
			       c.sector,
			       ROW_NUMBER() OVER (PARTITION BY e.symbol ORDER BY e.analysis_date DESC) AS rn
			FROM esg_analyses e
			JOIN companies c ON e.symbol = c.symbol
			WHERE e.analysis_date >= date('now', '-30 days')
		)
		SELECT sector,
		       COUNT(*) AS company_count,
		       AVG(environmental_score), AVG(social_score), AVG(governance_score), AVG(overall_score)
		FROM latest_analyses
		WHERE rn = 1 AND sector IS NOT NULL AND sector != ''
		GROUP BY sector
		ORDER BY AVG(overall_score) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sector analysis: %w", err)
	}
	defer rows.Close()

	var sectors []SectorSummary
	for rows.Next() {
		var s SectorSummary
		if err := rows.Scan(&s.Sector, &s.CompanyCount, &s.AvgEnvironmental, &s.AvgSocial, &s.AvgGovernance, &s.AvgOverall); err != nil {
			return nil, fmt.Errorf("failed to scan sector row: %w", err)
		}
		sectors = append(sectors, s)
	}
	return sectors, rows.Err()
}

// GetCompanyOverviews returns each tracked company's latest analysis summary.
func (r *Repository) GetCompanyOverviews() ([]CompanyOverview, error) {
	rows, err := r.db.Query(`
		WITH latest AS (
			SELECT symbol, overall_score, risk_rating, analysis_date,
			       ROW_NUMBER() OVER (PARTITION BY symbol ORDER BY analysis_date DESC) AS rn
			FROM esg_analyses
		)
		SELECT l.symbol, c.name, c.sector, l.overall_score, l.risk_rating, l.analysis_date
		FROM latest l
		JOIN companies c ON l.symbol = c.symbol
		WHERE l.rn = 1
		ORDER BY l.overall_score DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company overviews: %w", err)
	}
	defer rows.Close()

	var overviews []CompanyOverview
	for rows.Next() {
		var o CompanyOverview
		var name, sector sql.NullString
		var date string
		if err := rows.Scan(&o.Symbol, &name, &sector, &o.LatestScore, &o.RiskRating, &date); err != nil {
			return nil, fmt.Errorf("failed to scan overview row: %w", err)
		}
		o.Name = name.String
		o.Sector = sector.String
		o.AnalysisDate = parseTimestamp(date)
		overviews = append(overviews, o)
	}
	return overviews, rows.Err()
}

// GetPortfolio aggregates the latest analysis of each given symbol into a
// portfolio view. Symbols with no analyses are skipped; an empty portfolio is
// returned when none of them have one.
func (r *Repository) GetPortfolio(symbols []string) (*Portfolio, error) {
	if len(symbols) == 0 {
		return &Portfolio{Companies: []PortfolioCompany{}}, nil
	}

	placeholders := strings.Repeat("?,", len(symbols))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]interface{}, len(symbols))
	for i, s := range symbols {
		args[i] = strings.ToUpper(strings.TrimSpace(s))
	}

	rows, err := r.db.Query(fmt.Sprintf(`
		WITH latest_analyses AS (
			SELECT e.symbol,
			       e.environmental_score, e.social_score, e.governance_score, e.overall_score,
			       e.risk_rating, c.name, c.sector,
			       ROW_NUMBER() OVER (PARTITION BY e.symbol ORDER BY e.analysis_date DESC) AS rn
			FROM esg_analyses e
			JOIN companies c ON e.symbol = c.symbol
			WHERE e.symbol IN (%s)
		)
		SELECT symbol, name, sector, environmental_score, social_score, governance_score, overall_score, risk_rating
		FROM latest_analyses
		WHERE rn = 1
		ORDER BY symbol`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch portfolio: %w", err)
	}
	defer rows.Close()

	portfolio := &Portfolio{Companies: []PortfolioCompany{}}
	var totalEnv, totalSoc, totalGov, totalOverall float64

	for rows.Next() {
		var c PortfolioCompany
		var name, sector sql.NullString
		if err := rows.Scan(&c.Symbol, &name, &sector, &c.Environmental, &c.Social, &c.Governance, &c.Overall, &c.RiskRating); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio row: %w", err)
		}
		c.Name = name.String
		c.Sector = sector.String
		portfolio.Companies = append(portfolio.Companies, c)

		totalEnv += c.Environmental
		totalSoc += c.Social
		totalGov += c.Governance
		totalOverall += c.Overall
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if count := len(portfolio.Companies); count > 0 {
		n := float64(count)
		portfolio.Summary = PortfolioSummary{
			AvgEnvironmental: round2(totalEnv / n),
			AvgSocial:        round2(totalSoc / n),
			AvgGovernance:    round2(totalGov / n),
			AvgOverall:       round2(totalOverall / n),
			CompanyCount:     count,
		}
	}

	return portfolio, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// StoreIndex inserts one index snapshot.
func (r *Repository) StoreIndex(idx Index) error {
	_, err := r.db.Exec(`
		INSERT INTO market_indices (index_symbol, index_name, price, change_amount, change_percent, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		idx.Symbol, idx.Name, idx.Price, idx.Change, idx.ChangePercent,
		idx.Timestamp.UTC().Format("2006-01-02T15:04:05.000000000Z07:00"),
	)
	if err != nil {
		return fmt.Errorf("failed to store index %s: %w", idx.Symbol, err)
	}
	return nil
}

// GetLatestIndices returns the most recent snapshot of every tracked index.
func (r *Repository) GetLatestIndices() ([]Index, error) {
	rows, err := r.db.Query(`
		WITH latest AS (
			SELECT index_symbol, index_name, price, change_amount, change_percent, timestamp,
			       ROW_NUMBER() OVER (PARTITION BY index_symbol ORDER BY timestamp DESC) AS rn
			FROM market_indices
		)
		SELECT index_symbol, index_name, price, change_amount, change_percent, timestamp
		FROM latest WHERE rn = 1
		ORDER BY index_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch indices: %w", err)
	}
	defer rows.Close()

	var indices []Index
	for rows.Next() {
		var idx Index
		var date string
		if err := rows.Scan(&idx.Symbol, &idx.Name, &idx.Price, &idx.Change, &idx.ChangePercent, &date); err != nil {
			return nil, fmt.Errorf("failed to scan index row: %w", err)
		}
		idx.Timestamp = parseTimestamp(date)
		indices = append(indices, idx)
	}
	return indices, rows.Err()
}

func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
