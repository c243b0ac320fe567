package alphavantage

import (
	"encoding/json"
	"time"

	"github.com/verdantlabs/esgboard/internal/clientdata"
)

// NewsItem is one article from the NEWS_SENTIMENT feed.
type NewsItem struct {
	Title          string    `json:"title"`
	Summary        string    `json:"summary"`
	URL            string    `json:"url"`
	Source         string    `json:"source"`
	PublishedAt    time.Time `json:"published_at"`
	SentimentScore float64   `json:"sentiment_score"`
	SentimentLabel string    `json:"sentiment_label"`
}

type rawNewsFeed struct {
	Feed []struct {
		Title                 string `json:"title"`
		URL                   string `json:"url"`
		TimePublished         string `json:"time_published"`
		Summary               string `json:"summary"`
		Source                string `json:"source"`
		OverallSentimentScore any    `json:"overall_sentiment_score"`
		OverallSentimentLabel string `json:"overall_sentiment_label"`
	} `json:"feed"`
}

// GetNewsSentiment fetches recent news for a ticker, cache first. News is
// cached persistently for an hour.
func (c *Client) GetNewsSentiment(symbol string, limit int) ([]NewsItem, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	cacheKey := buildCacheKey("NEWS_SENTIMENT", map[string]string{"tickers": symbol})

	if cached, ok := c.getFromCache(cacheKey); ok {
		if items, ok := cached.([]NewsItem); ok {
			return truncateNews(items, limit), nil
		}
	}

	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh(clientdata.TableNews, symbol)
		if err == nil && data != nil {
			var items []NewsItem
			if err := json.Unmarshal(data, &items); err == nil {
				c.log.Debug().Str("symbol", symbol).Msg("News cache hit")
				c.setCache(cacheKey, items, memoryCacheTTL)
				return truncateNews(items, limit), nil
			}
		}
	}

	var raw rawNewsFeed
	err := c.fetch("NEWS_SENTIMENT", map[string]string{
		"tickers": symbol,
		"sort":    "LATEST",
	}, &raw)
	if err != nil {
		if stale, ok := c.getStaleNews(symbol); ok {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("API failed, using stale cached news")
			return truncateNews(stale, limit), nil
		}
		return nil, err
	}

	items := make([]NewsItem, 0, len(raw.Feed))
	for _, f := range raw.Feed {
		published, perr := time.Parse(timePublishedFmt, f.TimePublished)
		if perr != nil {
			published = time.Now().UTC()
		}
		items = append(items, NewsItem{
			Title:          f.Title,
			Summary:        f.Summary,
			URL:            f.URL,
			Source:         f.Source,
			PublishedAt:    published,
			SentimentScore: anyToFloat(f.OverallSentimentScore),
			SentimentLabel: f.OverallSentimentLabel,
		})
	}

	c.setCache(cacheKey, items, memoryCacheTTL)
	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(clientdata.TableNews, symbol, items, clientdata.TTLNews); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache news")
		}
	}

	c.log.Info().
		Str("symbol", symbol).
		Int("articles", len(items)).
		Msg("Fetched news sentiment")

	return truncateNews(items, limit), nil
}

func (c *Client) getStaleNews(symbol string) ([]NewsItem, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	data, err := c.cacheRepo.Get(clientdata.TableNews, symbol)
	if err != nil || data == nil {
		return nil, false
	}

	var items []NewsItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return items, true
}

func truncateNews(items []NewsItem, limit int) []NewsItem {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

// anyToFloat handles the API sometimes returning scores as strings.
func anyToFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		return parseFloat64(x)
	default:
		return 0
	}
}
