// Package newsapi provides a client for newsapi.org with persistent caching.
package newsapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/verdantlabs/esgboard/internal/clientdata"
)

const defaultBaseURL = "https://newsapi.org/v2"

// Article is one article from the everything endpoint.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// Client is a newsapi.org client.
type Client struct {
	apiKey    string
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a new newsapi.org client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(apiKey string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		apiKey:    apiKey,
		baseURL:   defaultBaseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log.With().Str("client", "newsapi").Logger(),
		cacheRepo: cacheRepo,
	}
}

// SetBaseURL overrides the API endpoint. Used in tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// HasKey reports whether the client is configured with an API key.
func (c *Client) HasKey() bool {
	return c.apiKey != ""
}

type rawResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// GetCompanyNews fetches recent articles mentioning a symbol or company name,
// cache first. If the API fails, stale cached data is returned when available.
func (c *Client) GetCompanyNews(symbol, companyName string, daysBack, pageSize int) ([]Article, error) {
	if daysBack <= 0 {
		daysBack = 30
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 30
	}

	cacheKey := symbol + ":" + strconv.Itoa(daysBack)

	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh(clientdata.TableNews, cacheKey)
		if err == nil && data != nil {
			var cached []Article
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().Str("symbol", symbol).Msg("Cache hit")
				return cached, nil
			}
		}
	}

	query := symbol
	if companyName != "" && companyName != symbol {
		query = fmt.Sprintf("%s OR %q", symbol, companyName)
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("from", time.Now().AddDate(0, 0, -daysBack).Format("2006-01-02"))
	q.Set("sortBy", "relevancy")
	q.Set("language", "en")
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("apiKey", c.apiKey)

	resp, err := c.client.Get(c.baseURL + "/everything?" + q.Encode())
	if err != nil {
		if stale, ok := c.getStale(cacheKey); ok {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("API failed, using stale cached news")
			return stale, nil
		}
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.getStale(cacheKey); ok {
			c.log.Warn().Int("status", resp.StatusCode).Str("symbol", symbol).Msg("API error, using stale cached news")
			return stale, nil
		}
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var raw rawResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if raw.Status != "ok" {
		return nil, fmt.Errorf("API returned status %q", raw.Status)
	}

	articles := make([]Article, 0, len(raw.Articles))
	for _, a := range raw.Articles {
		published, perr := time.Parse(time.RFC3339, a.PublishedAt)
		if perr != nil {
			published = time.Now().UTC()
		}
		articles = append(articles, Article{
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: published,
		})
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(clientdata.TableNews, cacheKey, articles, clientdata.TTLNews); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache news")
		}
	}

	c.log.Info().
		Str("symbol", symbol).
		Int("articles", len(articles)).
		Msg("Fetched company news")

	return articles, nil
}

// GetSectorNews fetches ESG-related articles for a sector.
func (c *Client) GetSectorNews(sector string, limit int) ([]Article, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	q := url.Values{}
	q.Set("q", sector+" sustainability ESG")
	q.Set("sortBy", "relevancy")
	q.Set("language", "en")
	q.Set("pageSize", strconv.Itoa(limit))
	q.Set("apiKey", c.apiKey)

	resp, err := c.client.Get(c.baseURL + "/everything?" + q.Encode())
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var raw rawResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	articles := make([]Article, 0, len(raw.Articles))
	for _, a := range raw.Articles {
		published, perr := time.Parse(time.RFC3339, a.PublishedAt)
		if perr != nil {
			published = time.Now().UTC()
		}
		articles = append(articles, Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: published,
		})
	}

	return articles, nil
}

func (c *Client) getStale(cacheKey string) ([]Article, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	data, err := c.cacheRepo.Get(clientdata.TableNews, cacheKey)
	if err != nil || data == nil {
		return nil, false
	}

	var cached []Article
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	return cached, true
}
