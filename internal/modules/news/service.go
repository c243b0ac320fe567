// Package news aggregates company news from multiple providers into a single
// normalized feed for sentiment analysis.
package news

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/verdantlabs/esgboard/internal/clients/alphavantage"
	"github.com/verdantlabs/esgboard/internal/clients/newsapi"
	"github.com/verdantlabs/esgboard/internal/modules/sentiment"
)

const maxArticles = 50

// HeadlineFetcher fetches general news articles for a company.
type HeadlineFetcher interface {
	GetCompanyNews(symbol, companyName string, daysBack, pageSize int) ([]newsapi.Article, error)
	HasKey() bool
}

// FeedFetcher fetches ticker news with provider-side sentiment scores.
type FeedFetcher interface {
	GetNewsSentiment(symbol string, limit int) ([]alphavantage.NewsItem, error)
}

// Service merges news from the configured providers. When no provider yields
// articles it falls back to generated sample data so the analysis pipeline
// keeps working in offline and demo setups.
type Service struct {
	headlines HeadlineFetcher
	feed      FeedFetcher
	log       zerolog.Logger
}

// NewService creates a news service. Either fetcher may be nil.
func NewService(headlines HeadlineFetcher, feed FeedFetcher, log zerolog.Logger) *Service {
	return &Service{
		headlines: headlines,
		feed:      feed,
		log:       log.With().Str("component", "news").Logger(),
	}
}

// GetCompanyNews returns up to 50 recent articles for a symbol, merged across
// providers and deduplicated by URL.
func (s *Service) GetCompanyNews(symbol, companyName string, daysBack int) []Article {
	var articles []Article

	if s.headlines != nil && s.headlines.HasKey() {
		fetched, err := s.headlines.GetCompanyNews(symbol, companyName, daysBack, 30)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Headline provider failed")
		}
		for _, a := range fetched {
			articles = append(articles, Article{
				Symbol:      symbol,
				Title:       a.Title,
				Description: a.Description,
				Content:     a.Content,
				URL:         a.URL,
				Source:      a.Source,
				PublishedAt: a.PublishedAt,
			})
		}
	}

	if s.feed != nil {
		items, err := s.feed.GetNewsSentiment(symbol, 20)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Sentiment feed provider failed")
		}
		for _, item := range items {
			articles = append(articles, Article{
				Symbol:         symbol,
				Title:          item.Title,
				Description:    item.Summary,
				Content:        item.Summary,
				URL:            item.URL,
				Source:         item.Source,
				PublishedAt:    item.PublishedAt,
				SentimentScore: item.SentimentScore,
				SentimentLabel: item.SentimentLabel,
			})
		}
	}

	articles = dedupeByURL(articles)

	if len(articles) == 0 {
		s.log.Info().Str("symbol", symbol).Msg("No articles from providers, using sample data")
		articles = sampleNews(symbol)
	}

	if len(articles) > maxArticles {
		articles = articles[:maxArticles]
	}

	return articles
}

// ToSentimentInput converts articles into the analyzer's input type.
func ToSentimentInput(articles []Article) []sentiment.Article {
	out := make([]sentiment.Article, 0, len(articles))
	for _, a := range articles {
		out = append(out, sentiment.Article{
			Title:       a.Title,
			Description: a.Description,
			Source:      a.Source,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}
	return out
}

func dedupeByURL(articles []Article) []Article {
	seen := make(map[string]bool, len(articles))
	out := articles[:0]
	for _, a := range articles {
		if a.URL != "" && seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		out = append(out, a)
	}
	return out
}

// sampleNews generates a deterministic demo feed for a symbol.
func sampleNews(symbol string) []Article {
	headlines := []struct {
		title string
		score float64
		label string
	}{
		{"%s Reports Strong Q4 Earnings Beat", 0.8, "Positive"},
		{"%s Announces New Sustainability Initiative", 0.5, "Positive"},
		{"%s CEO Discusses Climate Change Strategy", 0.2, "Neutral"},
		{"%s Invests in Renewable Energy Projects", 0.5, "Positive"},
		{"%s Receives ESG Rating Upgrade", 0.8, "Positive"},
		{"%s Launches Green Bond Program", 0.2, "Neutral"},
		{"%s Partners with Environmental Organizations", 0.5, "Positive"},
		{"%s Sets Net-Zero Carbon Emissions Target", 0.2, "Neutral"},
		{"%s Improves Corporate Governance Practices", 0.5, "Positive"},
		{"%s Enhances Employee Diversity Programs", 0.2, "Neutral"},
	}
	sources := []string{"Financial Times", "Reuters", "Bloomberg", "Wall Street Journal"}

	now := time.Now().UTC()
	articles := make([]Article, 0, len(headlines))
	for i, h := range headlines {
		articles = append(articles, Article{
			Symbol:         symbol,
			Title:          fmt.Sprintf(h.title, symbol),
			Description:    fmt.Sprintf("Analysis of %s recent developments and market impact.", symbol),
			URL:            fmt.Sprintf("https://example.com/news/%s-%d", symbol, i),
			Source:         sources[i%len(sources)],
			PublishedAt:    now.AddDate(0, 0, -(i*3 + 1)),
			SentimentScore: h.score,
			SentimentLabel: h.label,
		})
	}
	return articles
}
