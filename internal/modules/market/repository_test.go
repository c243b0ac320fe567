package market

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testhelpers "github.com/verdantlabs/esgboard/internal/testing"
)

const recordTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func newTestRepo(t *testing.T) (*Repository, func()) {
	t.Helper()
	db, cleanup := testhelpers.NewTestDB(t)
	return NewRepository(db.Conn()), cleanup
}

func insertCompany(t *testing.T, repo *Repository, symbol, name, sector string) {
	t.Helper()
	_, err := repo.db.Exec(
		`INSERT INTO companies (symbol, name, sector) VALUES (?, ?, ?)`,
		symbol, name, sector,
	)
	require.NoError(t, err)
}

func insertAnalysis(t *testing.T, repo *Repository, symbol string, env, soc, gov, overall float64, at time.Time) {
	t.Helper()
	_, err := repo.db.Exec(`
		INSERT INTO esg_analyses (id, symbol, environmental_score, social_score, governance_score, overall_score, risk_rating, analysis_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), symbol, env, soc, gov, overall, "Medium Risk",
		at.UTC().Format(recordTimeLayout),
	)
	require.NoError(t, err)
}

func TestGetTrendingCompanies(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	now := time.Now().UTC()

	insertCompany(t, repo, "AAPL", "Apple Inc", "Technology")
	insertCompany(t, repo, "XOM", "Exxon Mobil", "Energy")
	insertCompany(t, repo, "SOLO", "Single Analysis Corp", "Technology")

	// AAPL moved +8, XOM moved -3, SOLO has one analysis only
	insertAnalysis(t, repo, "AAPL", 70, 70, 70, 62, now.Add(-72*time.Hour))
	insertAnalysis(t, repo, "AAPL", 78, 78, 78, 70, now)
	insertAnalysis(t, repo, "XOM", 50, 60, 65, 57, now.Add(-72*time.Hour))
	insertAnalysis(t, repo, "XOM", 48, 58, 62, 54, now)
	insertAnalysis(t, repo, "SOLO", 60, 60, 60, 60, now)

	trending, err := repo.GetTrendingCompanies(10)
	require.NoError(t, err)
	require.Len(t, trending, 2)

	// Ordered by absolute change, biggest mover first
	assert.Equal(t, "AAPL", trending[0].Symbol)
	assert.InDelta(t, 8, trending[0].ScoreChange, 1e-9)
	assert.Equal(t, "Apple Inc", trending[0].Name)
	assert.Equal(t, "XOM", trending[1].Symbol)
	assert.InDelta(t, -3, trending[1].ScoreChange, 1e-9)
}

func TestGetTrendingCompaniesIgnoresOldAnalyses(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	now := time.Now().UTC()
	insertCompany(t, repo, "AAPL", "Apple Inc", "Technology")
	insertAnalysis(t, repo, "AAPL", 70, 70, 70, 60, now.AddDate(0, 0, -60))
	insertAnalysis(t, repo, "AAPL", 78, 78, 78, 70, now)

	// The old analysis falls outside the 30 day window, so no change exists
	trending, err := repo.GetTrendingCompanies(10)
	require.NoError(t, err)
	assert.Empty(t, trending)
}

func TestGetSectorAnalysis(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	now := time.Now().UTC()
	insertCompany(t, repo, "AAPL", "Apple Inc", "Technology")
	insertCompany(t, repo, "MSFT", "Microsoft", "Technology")
	insertCompany(t, repo, "XOM", "Exxon Mobil", "Energy")

	// Older AAPL analysis must not contribute; only the latest per symbol counts
	insertAnalysis(t, repo, "AAPL", 10, 10, 10, 10, now.Add(-72*time.Hour))
	insertAnalysis(t, repo, "AAPL", 80, 70, 90, 80, now)
	insertAnalysis(t, repo, "MSFT", 70, 80, 80, 76, now)
	insertAnalysis(t, repo, "XOM", 45, 60, 65, 55, now)

	sectors, err := repo.GetSectorAnalysis()
	require.NoError(t, err)
	require.Len(t, sectors, 2)

	// Best average overall first
	assert.Equal(t, "Technology", sectors[0].Sector)
	assert.Equal(t, 2, sectors[0].CompanyCount)
	assert.InDelta(t, 78, sectors[0].AvgOverall, 1e-9)
	assert.InDelta(t, 75, sectors[0].AvgEnvironmental, 1e-9)

	assert.Equal(t, "Energy", sectors[1].Sector)
	assert.Equal(t, 1, sectors[1].CompanyCount)
}

func TestGetCompanyOverviews(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	now := time.Now().UTC()
	insertCompany(t, repo, "AAPL", "Apple Inc", "Technology")
	insertCompany(t, repo, "XOM", "Exxon Mobil", "Energy")

	insertAnalysis(t, repo, "AAPL", 80, 70, 90, 80, now)
	insertAnalysis(t, repo, "XOM", 45, 60, 65, 55, now)

	overviews, err := repo.GetCompanyOverviews()
	require.NoError(t, err)
	require.Len(t, overviews, 2)

	// Highest score first
	assert.Equal(t, "AAPL", overviews[0].Symbol)
	assert.Equal(t, 80.0, overviews[0].LatestScore)
	assert.Equal(t, "Medium Risk", overviews[0].RiskRating)
	assert.Equal(t, "XOM", overviews[1].Symbol)
}

func TestGetPortfolio(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	now := time.Now().UTC()
	insertCompany(t, repo, "AAPL", "Apple Inc", "Technology")
	insertCompany(t, repo, "XOM", "Exxon Mobil", "Energy")
	insertCompany(t, repo, "IGNORED", "Not In Portfolio", "Energy")

	// Older AAPL analysis must not win over the newer one
	insertAnalysis(t, repo, "AAPL", 10, 10, 10, 10, now.Add(-72*time.Hour))
	insertAnalysis(t, repo, "AAPL", 80, 70, 90, 80, now)
	insertAnalysis(t, repo, "XOM", 40, 50, 60, 50, now)
	insertAnalysis(t, repo, "IGNORED", 99, 99, 99, 99, now)

	portfolio, err := repo.GetPortfolio([]string{"aapl", " XOM ", "NOHISTORY"})
	require.NoError(t, err)
	require.Len(t, portfolio.Companies, 2)

	assert.Equal(t, "AAPL", portfolio.Companies[0].Symbol)
	assert.Equal(t, 80.0, portfolio.Companies[0].Overall)
	assert.Equal(t, "XOM", portfolio.Companies[1].Symbol)

	assert.Equal(t, 2, portfolio.Summary.CompanyCount)
	assert.InDelta(t, 65, portfolio.Summary.AvgOverall, 1e-9)
	assert.InDelta(t, 60, portfolio.Summary.AvgEnvironmental, 1e-9)
}

func TestGetPortfolioEmptyInput(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	portfolio, err := repo.GetPortfolio(nil)
	require.NoError(t, err)
	assert.Empty(t, portfolio.Companies)
	assert.Equal(t, 0, portfolio.Summary.CompanyCount)
}

func TestStoreAndGetLatestIndices(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	now := time.Now().UTC()

	require.NoError(t, repo.StoreIndex(Index{
		Symbol: "^GSPC", Name: "S&P 500", Price: 6400, Change: -12.5, ChangePercent: -0.19,
		Timestamp: now.Add(-time.Hour),
	}))
	require.NoError(t, repo.StoreIndex(Index{
		Symbol: "^GSPC", Name: "S&P 500", Price: 6420, Change: 20, ChangePercent: 0.31,
		Timestamp: now,
	}))
	require.NoError(t, repo.StoreIndex(Index{
		Symbol: "^DJI", Name: "Dow Jones", Price: 45000, Change: 100, ChangePercent: 0.22,
		Timestamp: now,
	}))

	indices, err := repo.GetLatestIndices()
	require.NoError(t, err)
	require.Len(t, indices, 2)

	bySymbol := make(map[string]Index, len(indices))
	for _, idx := range indices {
		bySymbol[idx.Symbol] = idx
	}

	// Only the newest snapshot per index survives
	assert.Equal(t, 6420.0, bySymbol["^GSPC"].Price)
	assert.Equal(t, 45000.0, bySymbol["^DJI"].Price)
}
