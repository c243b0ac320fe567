package analysis

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/esgboard/internal/modules/financial"
	"github.com/verdantlabs/esgboard/internal/modules/news"
	"github.com/verdantlabs/esgboard/internal/modules/sentiment"
	testhelpers "github.com/verdantlabs/esgboard/internal/testing"
)

func newTestRepo(t *testing.T) (*Repository, func()) {
	t.Helper()
	db, cleanup := testhelpers.NewTestDB(t)
	return NewRepository(db.Conn()), cleanup
}

func sampleRecord(symbol string, overall float64, date time.Time) *Record {
	return &Record{
		ID:            uuid.NewString(),
		Symbol:        symbol,
		Environmental: 70,
		Social:        65,
		Governance:    80,
		Overall:       overall,
		RiskRating:    "Medium-Low Risk",
		Sentiment: sentiment.Summary{
			OverallSentiment: 0.25,
			PositiveCount:    3,
			KeyTopics:        []string{"Environmental"},
			TotalArticles:    5,
		},
		Financial: financial.Metrics{
			Symbol:       symbol,
			CompanyName:  "Test Corp",
			Sector:       "Technology",
			CurrentPrice: 150.5,
			MarketCap:    2e12,
		},
		AnalysisDate: date,
	}
}

func TestUpsertCompany(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	require.NoError(t, repo.UpsertCompany("AAPL", "Apple Inc", "Technology", "Consumer Electronics", 3e12))

	// Second upsert updates in place
	require.NoError(t, repo.UpsertCompany("AAPL", "Apple Inc.", "Technology", "Consumer Electronics", 3.1e12))
}

func TestInsertAndGetByID(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	require.NoError(t, repo.UpsertCompany("AAPL", "Apple Inc", "Technology", "", 3e12))

	rec := sampleRecord("AAPL", 71.5, time.Now().UTC())
	require.NoError(t, repo.Insert(rec))

	got, err := repo.GetByID(rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, 71.5, got.Overall)
	assert.Equal(t, "Medium-Low Risk", got.RiskRating)

	// Snapshot blobs survive the msgpack round trip
	assert.Equal(t, 0.25, got.Sentiment.OverallSentiment)
	assert.Equal(t, []string{"Environmental"}, got.Sentiment.KeyTopics)
	assert.Equal(t, "Test Corp", got.Financial.CompanyName)
	assert.Equal(t, 150.5, got.Financial.CurrentPrice)
}

func TestGetByIDMissing(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	got, err := repo.GetByID("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetLatest(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	require.NoError(t, repo.UpsertCompany("AAPL", "Apple Inc", "Technology", "", 3e12))

	now := time.Now().UTC()
	older := sampleRecord("AAPL", 60, now.Add(-48*time.Hour))
	newer := sampleRecord("AAPL", 75, now)
	require.NoError(t, repo.Insert(older))
	require.NoError(t, repo.Insert(newer))

	got, err := repo.GetLatest("AAPL")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, newer.ID, got.ID)
	assert.Equal(t, 75.0, got.Overall)
}

func TestGetLatestMissing(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	got, err := repo.GetLatest("NOPE")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetHistoryWindowAndOrder(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	require.NoError(t, repo.UpsertCompany("AAPL", "Apple Inc", "Technology", "", 3e12))

	now := time.Now().UTC()
	inWindow1 := sampleRecord("AAPL", 70, now.Add(-24*time.Hour))
	inWindow2 := sampleRecord("AAPL", 72, now)
	outOfWindow := sampleRecord("AAPL", 50, now.AddDate(0, 0, -100))
	otherSymbol := sampleRecord("MSFT", 80, now)

	for _, rec := range []*Record{inWindow1, inWindow2, outOfWindow, otherSymbol} {
		require.NoError(t, repo.Insert(rec))
	}

	entries, err := repo.GetHistory("AAPL", 30)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first
	assert.Equal(t, inWindow2.ID, entries[0].ID)
	assert.Equal(t, inWindow1.ID, entries[1].ID)
}

func TestStoreArticleSentiments(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	now := time.Now().UTC()
	articles := []news.Article{
		{Symbol: "AAPL", Title: "Great quarter", URL: "https://a.example/1", Source: "Wire", PublishedAt: now},
		{Symbol: "AAPL", Title: "Lawsuit filed", URL: "https://a.example/2", Source: "Wire", PublishedAt: now},
	}
	trend := []sentiment.TrendPoint{
		{Title: "Great quarter", URL: "https://a.example/1", Sentiment: 0.6},
		{Title: "Lawsuit filed", URL: "https://a.example/2", Sentiment: -0.5},
	}

	require.NoError(t, repo.StoreArticleSentiments("AAPL", articles, trend))

	rows, err := repo.db.Query(`SELECT article_title, sentiment_score, sentiment_label FROM news_sentiment WHERE symbol = ? ORDER BY id`, "AAPL")
	require.NoError(t, err)
	defer rows.Close()

	type row struct {
		title string
		score float64
		label string
	}
	var got []row
	for rows.Next() {
		var r row
		require.NoError(t, rows.Scan(&r.title, &r.score, &r.label))
		got = append(got, r)
	}
	require.Len(t, got, 2)
	assert.Equal(t, "POSITIVE", got[0].label)
	assert.Equal(t, "NEGATIVE", got[1].label)
}

func TestStoreArticleSentimentsDuplicateTitles(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	now := time.Now().UTC()
	articles := []news.Article{
		{Symbol: "AAPL", Title: "Earnings preview", URL: "https://a.example/1", Source: "Wire", PublishedAt: now},
		{Symbol: "AAPL", Title: "Earnings preview", URL: "https://b.example/1", Source: "Other", PublishedAt: now},
	}
	trend := []sentiment.TrendPoint{
		{Title: "Earnings preview", URL: "https://a.example/1", Sentiment: 0.4},
		{Title: "Earnings preview", URL: "https://b.example/1", Sentiment: -0.3},
	}

	require.NoError(t, repo.StoreArticleSentiments("AAPL", articles, trend))

	rows, err := repo.db.Query(`SELECT article_url, sentiment_score FROM news_sentiment WHERE symbol = ? ORDER BY id`, "AAPL")
	require.NoError(t, err)
	defer rows.Close()

	scores := make(map[string]float64)
	for rows.Next() {
		var url string
		var score float64
		require.NoError(t, rows.Scan(&url, &score))
		scores[url] = score
	}
	require.Len(t, scores, 2)
	assert.Equal(t, 0.4, scores["https://a.example/1"])
	assert.Equal(t, -0.3, scores["https://b.example/1"])
}
