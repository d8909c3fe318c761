package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/internal/domain/providers"
)

const classifierKeyPrefix = "classifier:"

var (
	cacheMetricsOnce sync.Once
	cacheLookups     metric.Int64Counter
)

func initCacheMetrics() {
	cacheMetricsOnce.Do(func() {
		meter := otel.Meter("github.com/zatekoja/careroute/backend/cache")
		cacheLookups, _ = meter.Int64Counter(
			"triage.classifier.cache.lookups",
			metric.WithDescription("Classifier cache lookups by result (hit/miss)"),
		)
	})
}

// CachedClassifier memoises classifier answers by normalized symptom text.
// Only successful answers are cached so an outage is retried on the next call.
type CachedClassifier struct {
	next  providers.SymptomClassifier
	cache providers.CacheProvider
	ttl   time.Duration
}

// NewCachedClassifier wraps next with cache
func NewCachedClassifier(next providers.SymptomClassifier, cache providers.CacheProvider, ttl time.Duration) *CachedClassifier {
	initCacheMetrics()
	return &CachedClassifier{next: next, cache: cache, ttl: ttl}
}

func (c *CachedClassifier) Name() string {
	return c.next.Name() + "+cache"
}

func (c *CachedClassifier) Classify(ctx context.Context, text string) (*entities.ClassifierResult, error) {
	key := classifierCacheKey(c.next.Name(), text)

	data, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		var cached entities.ClassifierResult
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			c.record(ctx, "hit")
			return &cached, nil
		}
		log.Warn().Str("key", key).Msg("discarding undecodable classifier cache entry")
	case !errors.Is(err, providers.ErrCacheMiss):
		log.Warn().Err(err).Msg("classifier cache read failed")
	}
	c.record(ctx, "miss")

	result, err := c.next.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := c.cache.Set(ctx, key, data, int(c.ttl.Seconds())); err != nil {
			log.Warn().Err(err).Msg("classifier cache write failed")
		}
	}
	return result, nil
}

func (c *CachedClassifier) record(ctx context.Context, result string) {
	if cacheLookups != nil {
		cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	}
}

func classifierCacheKey(name, text string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.Join(strings.Fields(text), " "))))
	return classifierKeyPrefix + name + ":" + hex.EncodeToString(sum[:])
}

var _ providers.SymptomClassifier = (*CachedClassifier)(nil)
