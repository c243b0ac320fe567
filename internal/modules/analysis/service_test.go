package analysis

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/esgboard/internal/events"
	"github.com/verdantlabs/esgboard/internal/modules/financial"
	"github.com/verdantlabs/esgboard/internal/modules/news"
	"github.com/verdantlabs/esgboard/internal/modules/scoring"
	"github.com/verdantlabs/esgboard/internal/modules/sentiment"
	testhelpers "github.com/verdantlabs/esgboard/internal/testing"
)

type stubMetrics struct {
	metrics *financial.Metrics
	err     error
}

func (s *stubMetrics) GetCompanyMetrics(symbol string, daysBack int) (*financial.Metrics, error) {
	if s.err != nil {
		return nil, s.err
	}
	m := *s.metrics
	m.Symbol = symbol
	return &m, nil
}

type stubNews struct {
	articles []news.Article
}

func (s *stubNews) GetCompanyNews(symbol, companyName string, daysBack int) []news.Article {
	return s.articles
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(e *events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *e)
}

func (r *eventRecorder) byType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func newTestService(t *testing.T, metrics MetricsFetcher, articles []news.Article) (*Service, *eventRecorder, func()) {
	t.Helper()

	db, cleanup := testhelpers.NewTestDB(t)

	bus := events.NewBus(zerolog.Nop())
	recorder := &eventRecorder{}
	bus.Subscribe(events.AnalysisComplete, recorder.handle)
	bus.Subscribe(events.AnalysisFailed, recorder.handle)

	aggregator, err := scoring.NewAggregator(scoring.DefaultWeights(), scoring.DefaultThresholds())
	require.NoError(t, err)

	svc := NewService(
		metrics,
		&stubNews{articles: articles},
		sentiment.NewAnalyzer(zerolog.Nop()),
		aggregator,
		NewRepository(db.Conn()),
		events.NewManager(bus, zerolog.Nop()),
		zerolog.Nop(),
	)
	return svc, recorder, cleanup
}

func techMetrics() *financial.Metrics {
	return &financial.Metrics{
		CompanyName:   "Apple Inc",
		Sector:        "Technology",
		Industry:      "Consumer Electronics",
		CurrentPrice:  180,
		MarketCap:     3e12,
		PERatio:       28,
		ROE:           0.45,
		RevenueGrowth: 8.1,
		Timestamp:     time.Now().UTC(),
	}
}

func positiveArticles() []news.Article {
	now := time.Now().UTC()
	return []news.Article{
		{Title: "Apple reports record profit and strong growth", URL: "https://a/1", Source: "Wire", PublishedAt: now},
		{Title: "Apple wins sustainability award for renewable energy push", URL: "https://a/2", Source: "Wire", PublishedAt: now},
	}
}

func TestAnalyzeHappyPath(t *testing.T) {
	svc, recorder, cleanup := newTestService(t, &stubMetrics{metrics: techMetrics()}, positiveArticles())
	defer cleanup()

	result, err := svc.Analyze(Request{Symbol: "aapl"})
	require.NoError(t, err)
	require.NotNil(t, result)

	// Symbol is normalized to upper case
	assert.Equal(t, "AAPL", result.Record.Symbol)
	assert.NotEmpty(t, result.Record.ID)
	assert.GreaterOrEqual(t, result.Record.Overall, 0.0)
	assert.LessOrEqual(t, result.Record.Overall, 100.0)
	assert.NotEmpty(t, result.Record.RiskRating)
	assert.Equal(t, 2, result.ArticlesAnalyzed)

	// Record was persisted
	stored, err := svc.GetRecord(result.Record.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, result.Record.Overall, stored.Overall)

	// Completion event fired with the record's identity
	completed := recorder.byType(events.AnalysisComplete)
	require.Len(t, completed, 1)
	assert.Equal(t, "AAPL", completed[0].Data["symbol"])
	assert.Equal(t, result.Record.ID, completed[0].Data["analysis_id"])

	assert.Empty(t, recorder.byType(events.AnalysisFailed))
}

func TestAnalyzeEmptySymbol(t *testing.T) {
	svc, _, cleanup := newTestService(t, &stubMetrics{metrics: techMetrics()}, nil)
	defer cleanup()

	_, err := svc.Analyze(Request{Symbol: "   "})
	assert.Error(t, err)
}

func TestAnalyzeFinancialFetchFailure(t *testing.T) {
	svc, recorder, cleanup := newTestService(t, &stubMetrics{err: errors.New("upstream down")}, nil)
	defer cleanup()

	_, err := svc.Analyze(Request{Symbol: "AAPL"})
	require.Error(t, err)

	failed := recorder.byType(events.AnalysisFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "AAPL", failed[0].Data["symbol"])
	assert.Empty(t, recorder.byType(events.AnalysisComplete))
}

func TestAnalyzeCreatesNewRecordEachTime(t *testing.T) {
	svc, _, cleanup := newTestService(t, &stubMetrics{metrics: techMetrics()}, positiveArticles())
	defer cleanup()

	first, err := svc.Analyze(Request{Symbol: "AAPL"})
	require.NoError(t, err)
	second, err := svc.Analyze(Request{Symbol: "AAPL"})
	require.NoError(t, err)

	assert.NotEqual(t, first.Record.ID, second.Record.ID)

	history, err := svc.GetHistory("AAPL", 30)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestAnalyzeDaysBackBounds(t *testing.T) {
	assert.Equal(t, 30, normalizeDaysBack(0))
	assert.Equal(t, 1, normalizeDaysBack(-5))
	assert.Equal(t, 365, normalizeDaysBack(1000))
	assert.Equal(t, 90, normalizeDaysBack(90))
}

func TestAnalyzeSentimentAffectsScores(t *testing.T) {
	now := time.Now().UTC()
	negativeArticles := []news.Article{
		{Title: "Fraud scandal and lawsuit rock the company", URL: "https://n/1", Source: "Wire", PublishedAt: now},
		{Title: "Regulators probe violations amid pollution crisis", URL: "https://n/2", Source: "Wire", PublishedAt: now},
	}

	posSvc, _, cleanupPos := newTestService(t, &stubMetrics{metrics: techMetrics()}, positiveArticles())
	defer cleanupPos()
	negSvc, _, cleanupNeg := newTestService(t, &stubMetrics{metrics: techMetrics()}, negativeArticles)
	defer cleanupNeg()

	pos, err := posSvc.Analyze(Request{Symbol: "AAPL"})
	require.NoError(t, err)
	neg, err := negSvc.Analyze(Request{Symbol: "AAPL"})
	require.NoError(t, err)

	assert.Greater(t, pos.Record.Overall, neg.Record.Overall)
}

func TestGetLatestReturnsNewestRecord(t *testing.T) {
	svc, _, cleanup := newTestService(t, &stubMetrics{metrics: techMetrics()}, positiveArticles())
	defer cleanup()

	_, err := svc.Analyze(Request{Symbol: "AAPL"})
	require.NoError(t, err)
	second, err := svc.Analyze(Request{Symbol: "AAPL"})
	require.NoError(t, err)

	latest, err := svc.GetLatest("aapl")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.Record.ID, latest.ID)
}
