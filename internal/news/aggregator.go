package news

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"sentiment-forecaster/internal/interfaces"
	"sentiment-forecaster/internal/logger"
	"sentiment-forecaster/internal/sentiment"
	"sentiment-forecaster/internal/types"
)

const (
	DefaultMaxArticles  = 10
	DefaultDisplayCount = 5
)

// Aggregator turns recent news for a ticker into one bounded sentiment score
type Aggregator struct {
	source     interfaces.NewsSource
	classifier interfaces.Classifier
	cache      *sentimentCache
}

// sentimentCache stores aggregate results for a short time
type sentimentCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
	now  func() time.Time
}

type cacheEntry struct {
	result    types.SentimentResult
	timestamp time.Time
}

func newSentimentCache(ttl time.Duration) *sentimentCache {
	return &sentimentCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// get retrieves a cached result if it has not expired
func (c *sentimentCache) get(key string) (types.SentimentResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[key]
	if !exists || c.now().Sub(entry.timestamp) > c.ttl {
		return types.SentimentResult{}, false
	}
	return copyResult(entry.result), true
}

// set stores a result and drops expired entries
func (c *sentimentCache) set(key string, result types.SentimentResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, k)
		}
	}
	c.data[key] = &cacheEntry{result: copyResult(result), timestamp: now}
}

func copyResult(r types.SentimentResult) types.SentimentResult {
	r.Articles = append([]types.NewsItem(nil), r.Articles...)
	return r
}

// NewAggregator creates an aggregator. A nil source always yields neutral
// sentiment; a cacheTTL of zero disables caching.
func NewAggregator(source interfaces.NewsSource, classifier interfaces.Classifier, cacheTTL time.Duration) *Aggregator {
	if classifier == nil {
		classifier = sentiment.Passthrough{}
	}
	a := &Aggregator{source: source, classifier: classifier}
	if cacheTTL > 0 {
		a.cache = newSentimentCache(cacheTTL)
	}
	return a
}

// Neutral is the result used when no news could be scored
func Neutral() types.SentimentResult {
	return types.SentimentResult{Score: 0, Label: types.Neutral, Articles: []types.NewsItem{}}
}

// Aggregate fetches up to maxArticles news records for ticker, scores each
// and averages the scores. It never fails: a fetch error yields neutral
// sentiment and an article whose classification fails is skipped. At most
// displayCount scored articles are returned, in fetch order.
func (a *Aggregator) Aggregate(ctx context.Context, ticker string, maxArticles, displayCount int) types.SentimentResult {
	if maxArticles <= 0 {
		maxArticles = DefaultMaxArticles
	}
	if displayCount < 0 {
		displayCount = DefaultDisplayCount
	}

	key := fmt.Sprintf("%s|%d|%d", ticker, maxArticles, displayCount)
	if a.cache != nil {
		if cached, ok := a.cache.get(key); ok {
			logger.Info(ctx, "Using cached sentiment", "ticker", ticker)
			return cached
		}
	}

	result := a.aggregate(ctx, ticker, maxArticles, displayCount)
	if a.cache != nil {
		a.cache.set(key, result)
	}
	return result
}

func (a *Aggregator) aggregate(ctx context.Context, ticker string, maxArticles, displayCount int) types.SentimentResult {
	if a.source == nil {
		return Neutral()
	}

	records, err := a.source.FetchRecentNews(ctx, ticker)
	if err != nil {
		logger.Warn(ctx, "News unavailable, using neutral sentiment", "ticker", ticker, "error", err)
		return Neutral()
	}
	if len(records) == 0 {
		logger.Info(ctx, "No news found, using neutral sentiment", "ticker", ticker)
		return Neutral()
	}
	if len(records) > maxArticles {
		records = records[:maxArticles]
	}

	var scores []float64
	items := []types.NewsItem{}
	for i, rec := range records {
		article := ParseRecord(rec)
		text := article.Text()
		if text == "" {
			continue
		}

		raw, err := a.classifier.Classify(ctx, text)
		if err != nil {
			logger.Warn(ctx, "Skipping article, classification failed", "ticker", ticker, "index", i, "error", err)
			continue
		}

		score, label := sentiment.Score(raw, text)
		scores = append(scores, score)
		items = append(items, types.NewsItem{
			Title:   article.Title,
			Summary: article.Summary,
			Link:    article.Link,
			Score:   round3(score),
			Label:   label,
		})
	}

	if len(scores) == 0 {
		return Neutral()
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	avg := sentiment.Clamp(sum / float64(len(scores)))

	if len(items) > displayCount {
		items = items[:displayCount]
	}

	logger.Info(ctx, "News sentiment aggregated",
		"ticker", ticker,
		"fetched", len(records),
		"scored", len(scores),
		"score", avg,
	)

	return types.SentimentResult{
		Score:        avg,
		Label:        sentiment.LabelFor(avg),
		Articles:     items,
		ArticleCount: len(scores),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
