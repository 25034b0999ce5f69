package fetcher

import (
	"context"
	"time"

	"github.com/gurudayal37/indian-stock-ai-chatbot/internal/cache"
	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

// CachedProvider memoizes provider responses within one run. The cache only
// prevents duplicate network calls for identical fetch parameters; it plays
// no part in staleness decisions.
type CachedProvider struct {
	inner Provider
	cache *cache.FetchCache
}

// NewCachedProvider wraps a provider with the run-local fetch cache
func NewCachedProvider(inner Provider, fetchCache *cache.FetchCache) *CachedProvider {
	return &CachedProvider{inner: inner, cache: fetchCache}
}

// FetchIncremental memoizes on (symbol, data type, since)
func (c *CachedProvider) FetchIncremental(ctx context.Context, stock *models.Stock, dataType models.DataType, since time.Time) ([]models.Record, error) {
	key := cache.Key(stock.Symbol(), string(dataType), map[string]string{
		"mode":  "incremental",
		"since": since.Format("2006-01-02"),
	})

	if cached, ok := c.cache.Get(key); ok {
		return cached.([]models.Record), nil
	}

	records, err := c.inner.FetchIncremental(ctx, stock, dataType, since)
	if err != nil {
		return nil, err
	}
	c.cache.Put(key, records)
	return records, nil
}

// FetchFull memoizes on (symbol, data type, window)
func (c *CachedProvider) FetchFull(ctx context.Context, stock *models.Stock, dataType models.DataType, window time.Duration) ([]models.Record, error) {
	key := cache.Key(stock.Symbol(), string(dataType), map[string]string{
		"mode":   "full",
		"window": window.String(),
	})

	if cached, ok := c.cache.Get(key); ok {
		return cached.([]models.Record), nil
	}

	records, err := c.inner.FetchFull(ctx, stock, dataType, window)
	if err != nil {
		return nil, err
	}
	c.cache.Put(key, records)
	return records, nil
}

// FetchLatest memoizes on (symbol, data type)
func (c *CachedProvider) FetchLatest(ctx context.Context, stock *models.Stock, dataType models.DataType) (models.Record, error) {
	key := cache.Key(stock.Symbol(), string(dataType), map[string]string{
		"mode": "latest",
	})

	if cached, ok := c.cache.Get(key); ok {
		if cached == nil {
			return nil, nil
		}
		return cached.(models.Record), nil
	}

	record, err := c.inner.FetchLatest(ctx, stock, dataType)
	if err != nil {
		return nil, err
	}
	c.cache.Put(key, record)
	return record, nil
}
