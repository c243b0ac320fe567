package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Company overview (sector, industry, fundamentals) updates with filings
	TTLOverview = 7 * 24 * time.Hour

	// News windows shift constantly but re-fetching per request wastes quota
	TTLNews = time.Hour

	// Current price cache for batch operations
	TTLQuote = 10 * time.Minute

	// Annual balance sheets only change with filings
	TTLBalanceSheet = 30 * 24 * time.Hour
)

// Cache table names.
const (
	TableOverview     = "client_overview"
	TableNews         = "client_news"
	TableQuotes       = "client_quotes"
	TableBalanceSheet = "client_balance_sheet"
)
