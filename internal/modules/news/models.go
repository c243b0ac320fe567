package news

import "time"

// Article is a normalized news article from any source.
type Article struct {
	Symbol         string    `json:"symbol"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Content        string    `json:"content,omitempty"`
	URL            string    `json:"url"`
	Source         string    `json:"source"`
	PublishedAt    time.Time `json:"published_at"`
	SentimentScore float64   `json:"sentiment_score,omitempty"`
	SentimentLabel string    `json:"sentiment_label,omitempty"`
}
