package alphavantage

import (
	"encoding/json"
	"fmt"

	"github.com/verdantlabs/esgboard/internal/clientdata"
)

// CompanyOverview holds the fundamentals returned by the OVERVIEW function.
type CompanyOverview struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Sector            string  `json:"sector"`
	Industry          string  `json:"industry"`
	MarketCap         float64 `json:"market_cap"`
	PERatio           float64 `json:"pe_ratio"`
	EPS               float64 `json:"eps"`
	Beta              float64 `json:"beta"`
	DividendYield     float64 `json:"dividend_yield"`
	ProfitMargin      float64 `json:"profit_margin"`
	ReturnOnEquity    float64 `json:"return_on_equity"`
	RevenueGrowthYoY  float64 `json:"revenue_growth_yoy"` // percent
	FiftyTwoWeekHigh  float64 `json:"fifty_two_week_high"`
	FiftyTwoWeekLow   float64 `json:"fifty_two_week_low"`
	SharesOutstanding int64   `json:"shares_outstanding"`
}

// rawOverview mirrors the API's stringly-typed OVERVIEW payload.
type rawOverview struct {
	Symbol            string `json:"Symbol"`
	Name              string `json:"Name"`
	Description       string `json:"Description"`
	Sector            string `json:"Sector"`
	Industry          string `json:"Industry"`
	MarketCap         string `json:"MarketCapitalization"`
	PERatio           string `json:"PERatio"`
	EPS               string `json:"EPS"`
	Beta              string `json:"Beta"`
	DividendYield     string `json:"DividendYield"`
	ProfitMargin      string `json:"ProfitMargin"`
	ReturnOnEquity    string `json:"ReturnOnEquityTTM"`
	RevenueGrowthYoY  string `json:"QuarterlyRevenueGrowthYOY"`
	FiftyTwoWeekHigh  string `json:"52WeekHigh"`
	FiftyTwoWeekLow   string `json:"52WeekLow"`
	SharesOutstanding string `json:"SharesOutstanding"`
}

// GetCompanyOverview fetches company fundamentals, cache first. Overview data
// changes slowly, so the persistent cache holds it for a week. If the API
// fails or the budget is spent, stale cached data is returned when available.
func (c *Client) GetCompanyOverview(symbol string) (*CompanyOverview, error) {
	cacheKey := buildCacheKey("OVERVIEW", map[string]string{"symbol": symbol})

	if cached, ok := c.getFromCache(cacheKey); ok {
		if ov, ok := cached.(*CompanyOverview); ok {
			return ov, nil
		}
	}

	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh(clientdata.TableOverview, symbol)
		if err == nil && data != nil {
			var ov CompanyOverview
			if err := json.Unmarshal(data, &ov); err == nil {
				c.log.Debug().Str("symbol", symbol).Msg("Overview cache hit")
				c.setCache(cacheKey, &ov, memoryCacheTTL)
				return &ov, nil
			}
		}
	}

	var raw rawOverview
	if err := c.fetch("OVERVIEW", map[string]string{"symbol": symbol}, &raw); err != nil {
		if stale, ok := c.getStaleOverview(symbol); ok {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("API failed, using stale cached overview")
			return stale, nil
		}
		return nil, err
	}

	if raw.Symbol == "" {
		if stale, ok := c.getStaleOverview(symbol); ok {
			c.log.Warn().Str("symbol", symbol).Msg("Empty overview response, using stale cached overview")
			return stale, nil
		}
		return nil, fmt.Errorf("no overview data for %s", symbol)
	}

	ov := &CompanyOverview{
		Symbol:            raw.Symbol,
		Name:              raw.Name,
		Description:       raw.Description,
		Sector:            normalizeSector(raw.Sector),
		Industry:          raw.Industry,
		MarketCap:         parseFloat64(raw.MarketCap),
		PERatio:           parseFloat64(raw.PERatio),
		EPS:               parseFloat64(raw.EPS),
		Beta:              parseFloat64(raw.Beta),
		DividendYield:     parseFloat64(raw.DividendYield),
		ProfitMargin:      parseFloat64(raw.ProfitMargin),
		ReturnOnEquity:    parseFloat64(raw.ReturnOnEquity),
		RevenueGrowthYoY:  parseFloat64(raw.RevenueGrowthYoY) * 100,
		FiftyTwoWeekHigh:  parseFloat64(raw.FiftyTwoWeekHigh),
		FiftyTwoWeekLow:   parseFloat64(raw.FiftyTwoWeekLow),
		SharesOutstanding: parseInt64(raw.SharesOutstanding),
	}

	c.setCache(cacheKey, ov, memoryCacheTTL)
	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(clientdata.TableOverview, symbol, ov, clientdata.TTLOverview); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache overview")
		}
	}

	c.log.Info().
		Str("symbol", symbol).
		Str("sector", ov.Sector).
		Msg("Fetched company overview")

	return ov, nil
}

func (c *Client) getStaleOverview(symbol string) (*CompanyOverview, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	data, err := c.cacheRepo.Get(clientdata.TableOverview, symbol)
	if err != nil || data == nil {
		return nil, false
	}

	var ov CompanyOverview
	if err := json.Unmarshal(data, &ov); err != nil {
		return nil, false
	}
	return &ov, true
}

// normalizeSector maps the API's all-caps sector names onto the labels the
// benchmark table uses.
func normalizeSector(sector string) string {
	switch sector {
	case "TECHNOLOGY", "Technology":
		return "Technology"
	case "ENERGY", "Energy":
		return "Energy"
	case "HEALTHCARE", "LIFE SCIENCES", "Healthcare":
		return "Healthcare"
	case "FINANCE", "FINANCIAL SERVICES", "Financials":
		return "Financials"
	case "":
		return ""
	default:
		return titleCase(sector)
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := []rune(s)
	for i := 1; i < len(lower); i++ {
		if lower[i] >= 'A' && lower[i] <= 'Z' && lower[i-1] != ' ' {
			lower[i] += 'a' - 'A'
		}
	}
	return string(lower)
}
