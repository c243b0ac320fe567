package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verdantlabs/esgboard/internal/events"
	"github.com/verdantlabs/esgboard/internal/modules/financial"
	"github.com/verdantlabs/esgboard/internal/modules/news"
	"github.com/verdantlabs/esgboard/internal/modules/scoring"
	"github.com/verdantlabs/esgboard/internal/modules/sentiment"
)

// MetricsFetcher provides the financial inputs to an analysis.
type MetricsFetcher interface {
	GetCompanyMetrics(symbol string, daysBack int) (*financial.Metrics, error)
}

// NewsFetcher provides the news inputs to an analysis.
type NewsFetcher interface {
	GetCompanyNews(symbol, companyName string, daysBack int) []news.Article
}

// Service runs the analysis pipeline: fetch financials and news, score
// sentiment, derive the pillar scores, aggregate, persist, notify.
type Service struct {
	financial  MetricsFetcher
	news       NewsFetcher
	analyzer   *sentiment.Analyzer
	aggregator *scoring.Aggregator
	repo       *Repository
	events     *events.Manager
	log        zerolog.Logger
}

// NewService creates an analysis service.
func NewService(
	metrics MetricsFetcher,
	newsService NewsFetcher,
	analyzer *sentiment.Analyzer,
	aggregator *scoring.Aggregator,
	repo *Repository,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Service {
	return &Service{
		financial:  metrics,
		news:       newsService,
		analyzer:   analyzer,
		aggregator: aggregator,
		repo:       repo,
		events:     eventManager,
		log:        log.With().Str("service", "analysis").Logger(),
	}
}

// Analyze runs the full pipeline for a symbol and stores a new immutable
// record. Emits an analysis_complete event on success and an analysis_failed
// event on any pipeline error.
func (s *Service) Analyze(req Request) (*Result, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	daysBack := normalizeDaysBack(req.DaysBack)

	s.log.Info().
		Str("symbol", symbol).
		Int("days_back", daysBack).
		Msg("Starting analysis")

	result, err := s.runPipeline(symbol, daysBack)
	if err != nil {
		s.events.EmitTyped(events.AnalysisFailed, "analysis", &events.AnalysisFailedData{
			Symbol: symbol,
			Error:  err.Error(),
		})
		return nil, err
	}

	s.events.EmitTyped(events.AnalysisComplete, "analysis", &events.AnalysisCompleteData{
		Symbol:       symbol,
		AnalysisID:   result.Record.ID,
		OverallScore: result.Record.Overall,
		RiskRating:   result.Record.RiskRating,
	})

	s.log.Info().
		Str("symbol", symbol).
		Str("analysis_id", result.Record.ID).
		Float64("overall", result.Record.Overall).
		Str("risk", result.Record.RiskRating).
		Msg("Analysis complete")

	return result, nil
}

func (s *Service) runPipeline(symbol string, daysBack int) (*Result, error) {
	metrics, err := s.financial.GetCompanyMetrics(symbol, daysBack)
	if err != nil {
		return nil, fmt.Errorf("financial data fetch failed: %w", err)
	}

	articles := s.news.GetCompanyNews(symbol, metrics.CompanyName, daysBack)
	summary := s.analyzer.AnalyzeBatch(news.ToSentimentInput(articles))

	signal := scoring.SentimentSignal{
		Overall:   summary.OverallSentiment,
		KeyTopics: summary.KeyTopics,
	}
	env, soc, gov := scoring.ScorePillars(metrics.ToFundamentals(), signal)

	scores, err := s.aggregator.Aggregate(env, soc, gov)
	if err != nil {
		return nil, fmt.Errorf("score aggregation failed: %w", err)
	}

	record := Record{
		ID:            uuid.NewString(),
		Symbol:        symbol,
		Environmental: scores.Environmental,
		Social:        scores.Social,
		Governance:    scores.Governance,
		Overall:       scores.Overall,
		RiskRating:    scores.RiskRating.String(),
		Sentiment:     summary,
		Financial:     *metrics,
		AnalysisDate:  time.Now().UTC(),
	}

	if err := s.repo.UpsertCompany(symbol, metrics.CompanyName, metrics.Sector, metrics.Industry, metrics.MarketCap); err != nil {
		return nil, err
	}
	if err := s.repo.Insert(&record); err != nil {
		return nil, err
	}
	if err := s.repo.StoreArticleSentiments(symbol, articles, summary.Trend); err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to store article sentiments")
	}

	return &Result{
		Record:             record,
		Scores:             scores,
		IndustryComparison: s.aggregator.CompareToIndustry(scores, metrics.Sector),
		ArticlesAnalyzed:   len(articles),
	}, nil
}

// GetHistory returns a symbol's analysis history within the window.
func (s *Service) GetHistory(symbol string, days int) ([]HistoryEntry, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	return s.repo.GetHistory(symbol, normalizeDaysBack(days))
}

// GetRecord returns one full analysis record by ID.
func (s *Service) GetRecord(id string) (*Record, error) {
	if id == "" {
		return nil, fmt.Errorf("analysis id is required")
	}
	return s.repo.GetByID(id)
}

// GetLatest returns the most recent record for a symbol.
func (s *Service) GetLatest(symbol string) (*Record, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	return s.repo.GetLatest(symbol)
}
