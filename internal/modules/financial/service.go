// Package financial assembles company fundamentals and price-derived metrics
// from the market data providers.
package financial

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/verdantlabs/esgboard/internal/clients/alphavantage"
	"github.com/verdantlabs/esgboard/internal/clients/fundamentals"
	"github.com/verdantlabs/esgboard/internal/modules/scoring"
)

// Metrics is the combined financial picture for one company.
type Metrics struct {
	Symbol        string             `json:"symbol"`
	CompanyName   string             `json:"company_name"`
	Sector        string             `json:"sector"`
	Industry      string             `json:"industry"`
	CurrentPrice  float64            `json:"current_price"`
	ChangePercent float64            `json:"change_percent"`
	MarketCap     float64            `json:"market_cap"`
	PERatio       float64            `json:"pe_ratio"`
	EPS           float64            `json:"eps"`
	DebtToEquity  float64            `json:"debt_to_equity"`
	ROE           float64            `json:"roe"`
	RevenueGrowth float64            `json:"revenue_growth"` // percent, year over year
	SMA20         *float64           `json:"sma_20,omitempty"`
	SMA50         *float64           `json:"sma_50,omitempty"`
	RSI14         *float64           `json:"rsi_14,omitempty"`
	Volatility    *float64           `json:"volatility,omitempty"` // annualized, percent
	History       []fundamentals.Bar `json:"historical_prices,omitempty"`
	Timestamp     time.Time          `json:"timestamp"`
}

// OverviewFetcher provides company fundamentals and leverage figures.
type OverviewFetcher interface {
	GetCompanyOverview(symbol string) (*alphavantage.CompanyOverview, error)
	GetBalanceSheet(symbol string) (*alphavantage.BalanceSheet, error)
}

// Service fetches and merges financial data.
type Service struct {
	market   fundamentals.Provider
	overview OverviewFetcher
	log      zerolog.Logger
}

// NewService creates a financial data service. overview may be nil.
func NewService(market fundamentals.Provider, overview OverviewFetcher, log zerolog.Logger) *Service {
	return &Service{
		market:   market,
		overview: overview,
		log:      log.With().Str("component", "financial").Logger(),
	}
}

// GetCompanyMetrics fetches quote, fundamentals and price history for a
// symbol and derives the technical indicators. A missing overview degrades to
// quote-only data rather than failing the whole fetch.
func (s *Service) GetCompanyMetrics(symbol string, daysBack int) (*Metrics, error) {
	quote, err := s.market.GetQuote(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}

	m := &Metrics{
		Symbol:        symbol,
		CompanyName:   quote.Name,
		CurrentPrice:  quote.Price,
		ChangePercent: quote.ChangePercent,
		MarketCap:     quote.MarketCap,
		PERatio:       quote.PERatio,
		EPS:           quote.EPS,
		Timestamp:     time.Now().UTC(),
	}

	if s.overview != nil {
		ov, err := s.overview.GetCompanyOverview(symbol)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Overview unavailable, using quote data only")
		} else {
			m.Sector = ov.Sector
			m.Industry = ov.Industry
			m.ROE = ov.ReturnOnEquity
			m.RevenueGrowth = ov.RevenueGrowthYoY
			if m.CompanyName == "" {
				m.CompanyName = ov.Name
			}
			if m.MarketCap == 0 {
				m.MarketCap = ov.MarketCap
			}
			if m.PERatio == 0 {
				m.PERatio = ov.PERatio
			}
		}

		bs, err := s.overview.GetBalanceSheet(symbol)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Balance sheet unavailable, leverage treated as unknown")
		} else {
			m.DebtToEquity = bs.DebtToEquity
		}
	}

	// Indicators need more history than the analysis window
	historyDays := daysBack
	if historyDays < 90 {
		historyDays = 90
	}
	bars, err := s.market.GetHistory(symbol, historyDays)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Price history unavailable")
	} else {
		closes := make([]float64, 0, len(bars))
		for _, b := range bars {
			closes = append(closes, b.Close)
		}
		m.SMA20 = SMA(closes, 20)
		m.SMA50 = SMA(closes, 50)
		m.RSI14 = RSI(closes, 14)
		m.Volatility = AnnualizedVolatility(closes)

		if len(bars) > daysBack {
			bars = bars[len(bars)-daysBack:]
		}
		m.History = bars
	}

	return m, nil
}

// ToFundamentals projects the metrics onto the pillar scoring input.
func (m *Metrics) ToFundamentals() scoring.Fundamentals {
	return scoring.Fundamentals{
		Sector:        m.Sector,
		MarketCap:     m.MarketCap,
		PERatio:       m.PERatio,
		DebtToEquity:  m.DebtToEquity,
		ROE:           m.ROE,
		RevenueGrowth: m.RevenueGrowth,
	}
}
