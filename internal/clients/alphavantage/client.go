// Package alphavantage provides a client for the Alpha Vantage API with
// rate limiting and two cache layers: an in-memory cache for repeated calls
// within a process and a persistent cache shared across restarts.
//
// The free tier allows 25 requests per day, so every fetch goes through the
// rate limiter and cache aggressively.
package alphavantage

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/verdantlabs/esgboard/internal/clientdata"
)

const (
	defaultBaseURL   = "https://www.alphavantage.co/query"
	dailyLimit       = 25
	memoryCacheTTL   = time.Hour
	timePublishedFmt = "20060102T150405"
)

// ErrRateLimitExceeded signals that the daily request budget is spent.
type ErrRateLimitExceeded struct {
	Limit int
}

func (e ErrRateLimitExceeded) Error() string {
	return fmt.Sprintf("alpha vantage daily rate limit of %d requests exceeded", e.Limit)
}

// cacheEntry is one in-memory cached response.
type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

// Client is an Alpha Vantage API client.
type Client struct {
	apiKey    string
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository

	mu           sync.Mutex
	requestCount int
	cache        map[string]cacheEntry
}

// NewClient creates a new Alpha Vantage client.
// cacheRepo is optional - if nil, only the in-memory cache is used.
func NewClient(apiKey string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		apiKey:    apiKey,
		baseURL:   defaultBaseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
		log:       log.With().Str("client", "alphavantage").Logger(),
		cacheRepo: cacheRepo,
		cache:     make(map[string]cacheEntry),
	}
}

// SetBaseURL overrides the API endpoint. Used in tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// GetRemainingRequests returns how many requests are left today.
func (c *Client) GetRemainingRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return dailyLimit - c.requestCount
}

// ResetDailyCounter resets the request budget. Scheduled at midnight.
func (c *Client) ResetDailyCounter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestCount = 0
	c.log.Info().Msg("Daily request counter reset")
}

// checkRateLimit consumes one request from the budget, or fails.
func (c *Client) checkRateLimit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.requestCount >= dailyLimit {
		return ErrRateLimitExceeded{Limit: dailyLimit}
	}
	c.requestCount++
	return nil
}

func (c *Client) setCache(key string, data interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cacheEntry{data: data, expiresAt: time.Now().Add(ttl)}
}

func (c *Client) getFromCache(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.data, true
}

// ClearCache drops all in-memory cached responses.
func (c *Client) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cacheEntry)
}

// buildCacheKey builds a deterministic cache key from a function name and
// its parameters. The API key is never part of the key.
func buildCacheKey(function string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "apikey" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(function)
	for _, k := range keys {
		sb.WriteString("|")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(params[k])
	}
	return sb.String()
}

// fetch performs a rate-limited GET against the API.
func (c *Client) fetch(function string, params map[string]string, out interface{}) error {
	if err := c.checkRateLimit(); err != nil {
		return err
	}

	q := url.Values{}
	q.Set("function", function)
	q.Set("apikey", c.apiKey)
	for k, v := range params {
		q.Set(k, v)
	}

	resp, err := c.client.Get(c.baseURL + "?" + q.Encode())
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// parseFloat64 parses Alpha Vantage's stringly-typed numbers. The API uses
// "None", "null", "-" and empty strings for missing values; those parse to 0.
// Percent signs are stripped.
func parseFloat64(s string) float64 {
	v := parseFloat64Ptr(s)
	if v == nil {
		return 0
	}
	return *v
}

// parseFloat64Ptr is like parseFloat64 but distinguishes missing from zero.
func parseFloat64Ptr(s string) *float64 {
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	switch s {
	case "", "None", "none", "null", "-":
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// parseInt64 parses integer fields with the same missing-value handling.
func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	switch s {
	case "", "None", "none", "null", "-":
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
