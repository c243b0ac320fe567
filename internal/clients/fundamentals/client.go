// Package fundamentals fetches quotes and price history from Yahoo Finance.
package fundamentals

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"github.com/rs/zerolog"

	"github.com/verdantlabs/esgboard/internal/clientdata"
)

// Quote is a snapshot of a symbol's market data.
type Quote struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	ChangePercent    float64 `json:"change_percent"`
	PreviousClose    float64 `json:"previous_close"`
	Volume           int64   `json:"volume"`
	MarketCap        float64 `json:"market_cap"`
	PERatio          float64 `json:"pe_ratio"`
	EPS              float64 `json:"eps"`
	FiftyTwoWeekHigh float64 `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  float64 `json:"fifty_two_week_low"`
}

// Bar is one day of price history.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int       `json:"volume"`
}

// Provider is the market data surface consumed by the analysis and market
// services. The Yahoo client implements it; tests substitute stubs.
type Provider interface {
	GetQuote(symbol string) (*Quote, error)
	GetHistory(symbol string, days int) ([]Bar, error)
}

// Client fetches market data from Yahoo Finance with a persistent quote cache.
type Client struct {
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a Yahoo Finance client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		log:       log.With().Str("client", "yahoo-finance").Logger(),
		cacheRepo: cacheRepo,
	}
}

// GetQuote fetches the current quote for a symbol, cache first.
// If the API fails, returns stale cached data if available.
func (c *Client) GetQuote(symbol string) (*Quote, error) {
	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh(clientdata.TableQuotes, symbol)
		if err == nil && data != nil {
			var cached Quote
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().Str("symbol", symbol).Msg("Cache hit")
				return &cached, nil
			}
		}
	}

	eq, err := equity.Get(symbol)
	if err != nil || eq == nil {
		if stale, ok := c.getStaleQuote(symbol); ok {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("API failed, using stale cached quote")
			return stale, nil
		}
		if err == nil {
			err = fmt.Errorf("empty response")
		}
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}

	q := &Quote{
		Symbol:           eq.Symbol,
		Name:             eq.LongName,
		Price:            eq.RegularMarketPrice,
		ChangePercent:    eq.RegularMarketChangePercent,
		PreviousClose:    eq.RegularMarketPreviousClose,
		Volume:           int64(eq.RegularMarketVolume),
		MarketCap:        float64(eq.MarketCap),
		PERatio:          eq.TrailingPE,
		EPS:              eq.EpsTrailingTwelveMonths,
		FiftyTwoWeekHigh: eq.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  eq.FiftyTwoWeekLow,
	}
	if q.Name == "" {
		q.Name = eq.ShortName
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(clientdata.TableQuotes, symbol, q, clientdata.TTLQuote); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache quote")
		}
	}

	c.log.Info().
		Str("symbol", symbol).
		Float64("price", q.Price).
		Msg("Fetched quote")

	return q, nil
}

// GetHistory fetches daily bars for the last N days.
func (c *Client) GetHistory(symbol string, days int) ([]Bar, error) {
	if days <= 0 {
		days = 30
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Interval: datetime.OneDay,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
	})

	var bars []Bar
	for iter.Next() {
		b := iter.Bar()
		open, _ := b.Open.Float64()
		high, _ := b.High.Float64()
		low, _ := b.Low.Float64()
		closePrice, _ := b.Close.Float64()
		bars = append(bars, Bar{
			Date:   time.Unix(int64(b.Timestamp), 0).UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: b.Volume,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", symbol, err)
	}

	c.log.Debug().
		Str("symbol", symbol).
		Int("bars", len(bars)).
		Msg("Fetched price history")

	return bars, nil
}

func (c *Client) getStaleQuote(symbol string) (*Quote, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	data, err := c.cacheRepo.Get(clientdata.TableQuotes, symbol)
	if err != nil || data == nil {
		return nil, false
	}

	var cached Quote
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	return &cached, true
}
