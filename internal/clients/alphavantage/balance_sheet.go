package alphavantage

import (
	"encoding/json"
	"fmt"

	"github.com/verdantlabs/esgboard/internal/clientdata"
)

// BalanceSheet holds the leverage figures from the most recent annual report.
type BalanceSheet struct {
	Symbol            string  `json:"symbol"`
	FiscalDateEnding  string  `json:"fiscal_date_ending"`
	TotalLiabilities  float64 `json:"total_liabilities"`
	ShareholderEquity float64 `json:"shareholder_equity"`
	DebtToEquity      float64 `json:"debt_to_equity"`
}

// rawBalanceSheet mirrors the API's stringly-typed BALANCE_SHEET payload.
// Reports are ordered newest first.
type rawBalanceSheet struct {
	Symbol        string `json:"symbol"`
	AnnualReports []struct {
		FiscalDateEnding       string `json:"fiscalDateEnding"`
		TotalLiabilities       string `json:"totalLiabilities"`
		TotalShareholderEquity string `json:"totalShareholderEquity"`
	} `json:"annualReports"`
}

// GetBalanceSheet fetches the latest annual balance sheet and derives the
// debt-to-equity ratio, cache first. Balance sheets only change with filings,
// so the persistent cache holds them for a month. If the API fails or the
// budget is spent, stale cached data is returned when available.
func (c *Client) GetBalanceSheet(symbol string) (*BalanceSheet, error) {
	cacheKey := buildCacheKey("BALANCE_SHEET", map[string]string{"symbol": symbol})

	if cached, ok := c.getFromCache(cacheKey); ok {
		if bs, ok := cached.(*BalanceSheet); ok {
			return bs, nil
		}
	}

	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh(clientdata.TableBalanceSheet, symbol)
		if err == nil && data != nil {
			var bs BalanceSheet
			if err := json.Unmarshal(data, &bs); err == nil {
				c.log.Debug().Str("symbol", symbol).Msg("Balance sheet cache hit")
				c.setCache(cacheKey, &bs, memoryCacheTTL)
				return &bs, nil
			}
		}
	}

	var raw rawBalanceSheet
	if err := c.fetch("BALANCE_SHEET", map[string]string{"symbol": symbol}, &raw); err != nil {
		if stale, ok := c.getStaleBalanceSheet(symbol); ok {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("API failed, using stale cached balance sheet")
			return stale, nil
		}
		return nil, err
	}

	if raw.Symbol == "" || len(raw.AnnualReports) == 0 {
		if stale, ok := c.getStaleBalanceSheet(symbol); ok {
			c.log.Warn().Str("symbol", symbol).Msg("Empty balance sheet response, using stale cached data")
			return stale, nil
		}
		return nil, fmt.Errorf("no balance sheet data for %s", symbol)
	}

	latest := raw.AnnualReports[0]
	bs := &BalanceSheet{
		Symbol:            raw.Symbol,
		FiscalDateEnding:  latest.FiscalDateEnding,
		TotalLiabilities:  parseFloat64(latest.TotalLiabilities),
		ShareholderEquity: parseFloat64(latest.TotalShareholderEquity),
	}
	if bs.ShareholderEquity > 0 {
		bs.DebtToEquity = bs.TotalLiabilities / bs.ShareholderEquity
	}

	c.setCache(cacheKey, bs, memoryCacheTTL)
	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(clientdata.TableBalanceSheet, symbol, bs, clientdata.TTLBalanceSheet); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache balance sheet")
		}
	}

	c.log.Info().
		Str("symbol", symbol).
		Str("fiscal_date", bs.FiscalDateEnding).
		Float64("debt_to_equity", bs.DebtToEquity).
		Msg("Fetched balance sheet")

	return bs, nil
}

func (c *Client) getStaleBalanceSheet(symbol string) (*BalanceSheet, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	data, err := c.cacheRepo.Get(clientdata.TableBalanceSheet, symbol)
	if err != nil || data == nil {
		return nil, false
	}

	var bs BalanceSheet
	if err := json.Unmarshal(data, &bs); err != nil {
		return nil, false
	}
	return &bs, true
}
