// Package sentiment scores news articles for polarity and ESG relevance.
// Polarity comes from a lexicon with simple negation handling, so the
// analyzer needs no external model and is fully deterministic.
package sentiment

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

const (
	// Polarity beyond these bounds counts as positive or negative; anything
	// in between is neutral.
	positiveCutoff = 0.1
	negativeCutoff = -0.1

	maxKeyTopics = 5
)

var (
	urlPattern        = regexp.MustCompile(`http[s]?://\S+`)
	nonTextPattern    = regexp.MustCompile(`[^\w\s.,!?;:-]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	tokenPattern      = regexp.MustCompile(`[a-z]+`)
)

// Article is the input unit for sentiment analysis.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// TrendPoint is one article's contribution to the sentiment timeline.
type TrendPoint struct {
	Date      time.Time          `json:"date"`
	Sentiment float64            `json:"sentiment"`
	Title     string             `json:"title"`
	URL       string             `json:"url"`
	Source    string             `json:"source"`
	Relevance map[string]float64 `json:"esg_relevance"`
}

// Relevance holds per-pillar keyword relevance in [0, 1].
type Relevance struct {
	Environmental float64 `json:"environmental"`
	Social        float64 `json:"social"`
	Governance    float64 `json:"governance"`
}

// Summary is the aggregated sentiment result for a batch of articles.
type Summary struct {
	OverallSentiment float64      `json:"overall_sentiment"`
	PositiveCount    int          `json:"positive_count"`
	NegativeCount    int          `json:"negative_count"`
	NeutralCount     int          `json:"neutral_count"`
	Trend            []TrendPoint `json:"sentiment_trend"`
	KeyTopics        []string     `json:"key_topics"`
	Relevance        Relevance    `json:"esg_relevance"`
	TotalArticles    int          `json:"total_articles"`
}

// Analyzer scores article batches. It is safe for concurrent use.
type Analyzer struct {
	log zerolog.Logger
}

// NewAnalyzer creates a sentiment analyzer.
func NewAnalyzer(log zerolog.Logger) *Analyzer {
	return &Analyzer{
		log: log.With().Str("component", "sentiment").Logger(),
	}
}

// AnalyzeBatch scores a batch of articles and aggregates the results.
// An empty batch returns a zero-valued summary.
func (a *Analyzer) AnalyzeBatch(articles []Article) Summary {
	if len(articles) == 0 {
		return Summary{Trend: []TrendPoint{}, KeyTopics: []string{}}
	}

	polarities := make([]float64, 0, len(articles))
	envScores := make([]float64, 0, len(articles))
	socScores := make([]float64, 0, len(articles))
	govScores := make([]float64, 0, len(articles))
	trend := make([]TrendPoint, 0, len(articles))

	var positive, negative, neutral int

	for _, art := range articles {
		text := preprocess(art.Title + " " + art.Description)
		polarity := a.Polarity(text)
		relevance := relevanceScores(text)

		switch {
		case polarity > positiveCutoff:
			positive++
		case polarity < negativeCutoff:
			negative++
		default:
			neutral++
		}

		polarities = append(polarities, polarity)
		envScores = append(envScores, relevance["Environmental"])
		socScores = append(socScores, relevance["Social"])
		govScores = append(govScores, relevance["Governance"])

		trend = append(trend, TrendPoint{
			Date:      art.PublishedAt,
			Sentiment: round3(polarity),
			Title:     art.Title,
			URL:       art.URL,
			Source:    art.Source,
			Relevance: relevance,
		})
	}

	// Newest first
	sort.Slice(trend, func(i, j int) bool {
		return trend[i].Date.After(trend[j].Date)
	})

	summary := Summary{
		OverallSentiment: round3(stat.Mean(polarities, nil)),
		PositiveCount:    positive,
		NegativeCount:    negative,
		NeutralCount:     neutral,
		Trend:            trend,
		KeyTopics:        keyTopics(articles),
		Relevance: Relevance{
			Environmental: round3(stat.Mean(envScores, nil)),
			Social:        round3(stat.Mean(socScores, nil)),
			Governance:    round3(stat.Mean(govScores, nil)),
		},
		TotalArticles: len(articles),
	}

	a.log.Debug().
		Int("articles", len(articles)).
		Float64("overall", summary.OverallSentiment).
		Strs("topics", summary.KeyTopics).
		Msg("Analyzed article batch")

	return summary
}

// Polarity scores a single text in [-1, 1]. Texts with no sentiment-bearing
// words score 0. A negator immediately before a sentiment word flips it.
func (a *Analyzer) Polarity(text string) float64 {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return 0
	}

	var sum float64
	var matched int
	negated := false

	for _, tok := range tokens {
		if negators[tok] {
			negated = true
			continue
		}
		if valence, ok := wordValence[tok]; ok {
			if negated {
				valence = -valence
			}
			sum += valence
			matched++
		}
		negated = false
	}

	if matched == 0 {
		return 0
	}
	return clampPolarity(sum / float64(matched))
}

// preprocess strips URLs and non-text characters and collapses whitespace.
func preprocess(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = nonTextPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// relevanceScores counts pillar keyword hits, normalized so five or more
// hits saturate at 1.0.
func relevanceScores(text string) map[string]float64 {
	lower := strings.ToLower(text)
	scores := make(map[string]float64, len(esgKeywords))

	for topic, keywords := range esgKeywords {
		var hits int
		for _, kw := range keywords {
			hits += strings.Count(lower, kw)
		}
		score := float64(hits) / 5.0
		if score > 1.0 {
			score = 1.0
		}
		scores[topic] = score
	}

	return scores
}

// keyTopics ranks the pillar topics by keyword frequency across the whole
// batch and returns the ones that appear at all, most frequent first.
func keyTopics(articles []Article) []string {
	var sb strings.Builder
	for _, art := range articles {
		sb.WriteString(strings.ToLower(art.Title))
		sb.WriteString(" ")
		sb.WriteString(strings.ToLower(art.Description))
		sb.WriteString(" ")
	}
	all := sb.String()

	type topicCount struct {
		topic string
		count int
	}
	counts := make([]topicCount, 0, len(esgKeywords))
	for topic, keywords := range esgKeywords {
		var n int
		for _, kw := range keywords {
			n += strings.Count(all, kw)
		}
		counts = append(counts, topicCount{topic, n})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].topic < counts[j].topic
	})

	topics := make([]string, 0, maxKeyTopics)
	for _, tc := range counts {
		if tc.count == 0 || len(topics) == maxKeyTopics {
			break
		}
		topics = append(topics, tc.topic)
	}
	return topics
}

func clampPolarity(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

func round3(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Round(v*1000) / 1000
}
