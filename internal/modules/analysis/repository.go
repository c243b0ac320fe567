package analysis

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/verdantlabs/esgboard/internal/modules/financial"
	"github.com/verdantlabs/esgboard/internal/modules/news"
	"github.com/verdantlabs/esgboard/internal/modules/sentiment"
)

// timeLayout is RFC3339 with fixed-width nanoseconds so the TEXT column
// sorts chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Repository persists companies, analysis records and per-article sentiment.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new analysis repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// UpsertCompany inserts or refreshes a company's profile row.
func (r *Repository) UpsertCompany(symbol, name, sector, industry string, marketCap float64) error {
	_, err := r.db.Exec(`
		INSERT INTO companies (symbol, name, sector, industry, market_cap, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (symbol) DO UPDATE SET
			name = excluded.name,
			sector = excluded.sector,
			industry = excluded.industry,
			market_cap = excluded.market_cap,
			updated_at = CURRENT_TIMESTAMP`,
		symbol, name, sector, industry, marketCap,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert company %s: %w", symbol, err)
	}
	return nil
}

// Insert stores a completed analysis record. The sentiment and financial
// snapshots are serialized as msgpack blobs.
func (r *Repository) Insert(rec *Record) error {
	sentimentBlob, err := msgpack.Marshal(rec.Sentiment)
	if err != nil {
		return fmt.Errorf("failed to encode sentiment snapshot: %w", err)
	}
	financialBlob, err := msgpack.Marshal(rec.Financial)
	if err != nil {
		return fmt.Errorf("failed to encode financial snapshot: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO esg_analyses (
			id, symbol, environmental_score, social_score, governance_score,
			overall_score, risk_rating, sentiment_data, financial_data, analysis_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Symbol,
		rec.Environmental, rec.Social, rec.Governance, rec.Overall,
		rec.RiskRating, sentimentBlob, financialBlob,
		rec.AnalysisDate.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis for %s: %w", rec.Symbol, err)
	}
	return nil
}

// GetByID fetches one full analysis record, decoding the snapshot blobs.
// Returns nil, nil if no record exists.
func (r *Repository) GetByID(id string) (*Record, error) {
	row := r.db.QueryRow(`
		SELECT id, symbol, environmental_score, social_score, governance_score,
		       overall_score, risk_rating, sentiment_data, financial_data, analysis_date
		FROM esg_analyses WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch analysis %s: %w", id, err)
	}
	return rec, nil
}

// GetLatest fetches the most recent full record for a symbol.
// Returns nil, nil if the symbol has never been analyzed.
func (r *Repository) GetLatest(symbol string) (*Record, error) {
	row := r.db.QueryRow(`
		SELECT id, symbol, environmental_score, social_score, governance_score,
		       overall_score, risk_rating, sentiment_data, financial_data, analysis_date
		FROM esg_analyses WHERE symbol = ?
		ORDER BY analysis_date DESC LIMIT 1`, symbol)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest analysis for %s: %w", symbol, err)
	}
	return rec, nil
}

// GetHistory returns a symbol's analyses within the lookback window,
// newest first.
func (r *Repository) GetHistory(symbol string, days int) ([]HistoryEntry, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Format(timeLayout)

	rows, err := r.db.Query(`
		SELECT id, symbol, environmental_score, social_score, governance_score,
		       overall_score, risk_rating, analysis_date
		FROM esg_analyses
		WHERE symbol = ? AND analysis_date >= ?
		ORDER BY analysis_date DESC`, symbol, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", symbol, err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var date string
		if err := rows.Scan(
			&e.ID, &e.Symbol,
			&e.Environmental, &e.Social, &e.Governance, &e.Overall,
			&e.RiskRating, &date,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.AnalysisDate = parseTimestamp(date)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// StoreArticleSentiments persists per-article sentiment rows for a symbol.
func (r *Repository) StoreArticleSentiments(symbol string, articles []news.Article, trend []sentiment.TrendPoint) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO news_sentiment (symbol, article_title, article_url, source, sentiment_score, sentiment_label, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare sentiment insert: %w", err)
	}
	defer stmt.Close()

	// Keyed by URL; the article list is already deduped on it, while titles
	// can repeat across sources.
	scores := make(map[string]float64, len(trend))
	for _, p := range trend {
		scores[p.URL] = p.Sentiment
	}

	for _, a := range articles {
		score := scores[a.URL]
		label := "NEUTRAL"
		if score > 0.1 {
			label = "POSITIVE"
		} else if score < -0.1 {
			label = "NEGATIVE"
		}
		if _, err := stmt.Exec(
			symbol, a.Title, a.URL, a.Source,
			score, label, a.PublishedAt.UTC().Format(timeLayout),
		); err != nil {
			return fmt.Errorf("failed to insert article sentiment: %w", err)
		}
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var sentimentBlob, financialBlob []byte
	var date string

	err := row.Scan(
		&rec.ID, &rec.Symbol,
		&rec.Environmental, &rec.Social, &rec.Governance, &rec.Overall,
		&rec.RiskRating, &sentimentBlob, &financialBlob, &date,
	)
	if err != nil {
		return nil, err
	}

	if len(sentimentBlob) > 0 {
		if err := msgpack.Unmarshal(sentimentBlob, &rec.Sentiment); err != nil {
			return nil, fmt.Errorf("failed to decode sentiment snapshot: %w", err)
		}
	}
	if len(financialBlob) > 0 {
		var fin financial.Metrics
		if err := msgpack.Unmarshal(financialBlob, &fin); err != nil {
			return nil, fmt.Errorf("failed to decode financial snapshot: %w", err)
		}
		rec.Financial = fin
	}
	rec.AnalysisDate = parseTimestamp(date)

	return &rec, nil
}

// parseTimestamp handles both RFC3339 strings and sqlite's default
// CURRENT_TIMESTAMP format.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
