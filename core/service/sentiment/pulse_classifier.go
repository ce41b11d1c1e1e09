// Package sentiment classifies emails and aggregates the results into
// statistics, insights and urgency rankings.
package sentiment

import (
	"context"
	"fmt"
	"time"

	"pulse_server/core/domain"
	"pulse_server/core/port/out"
	"pulse_server/pkg/cache"
	"pulse_server/pkg/logger"
	"pulse_server/pkg/metrics"
	"pulse_server/pkg/resilience"
)

// =============================================================================
// Classifier
// =============================================================================

// SentimentClassifier turns one email into a SentimentResult. Implementations never fail.
type SentimentClassifier interface {
	Classify(ctx context.Context, content string, subject *string) domain.SentimentResult
}

// Classifier asks the remote generator first and falls back to keywords on any failure.
type Classifier struct {
	gen      out.TextGenerator
	breaker  *resilience.Breaker
	cache    out.ResultCache
	cacheTTL time.Duration
	timeout  time.Duration
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithBreaker guards the remote call with a circuit breaker.
func WithBreaker(b *resilience.Breaker) ClassifierOption {
	return func(c *Classifier) { c.breaker = b }
}

// WithTimeout bounds each remote call.
func WithTimeout(d time.Duration) ClassifierOption {
	return func(c *Classifier) { c.timeout = d }
}

// WithResultCache reuses remote results for identical subject and content
// from the same provider and model.
func WithResultCache(rc out.ResultCache, ttl time.Duration) ClassifierOption {
	return func(c *Classifier) {
		if ttl > 0 {
			c.cache = rc
			c.cacheTTL = ttl
		}
	}
}

// NewClassifier creates a classifier. A nil generator means fallback only.
func NewClassifier(gen out.TextGenerator, opts ...ClassifierOption) *Classifier {
	c := &Classifier{gen: gen}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns exactly one result for the email.
func (c *Classifier) Classify(ctx context.Context, content string, subject *string) (result domain.SentimentResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithContext(ctx).Error("[Classifier] recovered from panic: %v", r)
			result = c.fallback(content)
		}
	}()

	if c.gen == nil {
		return c.fallback(content)
	}

	var key string
	if c.cache != nil {
		subj := ""
		if subject != nil {
			subj = *subject
		}
		key = cache.ContentKey(c.gen.Provider(), c.gen.Model(), subj, content)
		cached, err := c.cache.GetResult(ctx, key)
		if err != nil {
			logger.WithContext(ctx).WithError(err).Debug("[Classifier] cache lookup failed")
		} else if cached != nil {
			metrics.RecordClassification(metrics.SourceCache, string(cached.Sentiment))
			return *cached
		}
	}

	start := time.Now()
	result, err := resilience.Execute(ctx, c.breaker, c.timeout, func(ctx context.Context) (domain.SentimentResult, error) {
		raw, err := c.gen.CompleteJSON(ctx, systemPrompt, buildPrompt(content, subject))
		if err != nil {
			return domain.SentimentResult{}, err
		}
		return parseResult(raw)
	})
	if err != nil {
		metrics.RecordLLMCall(c.gen.Provider(), "error", time.Since(start))
		logger.WithContext(ctx).WithError(err).Warn("[Classifier] %s classification failed, using keyword fallback", c.gen.Provider())
		return c.fallback(content)
	}
	metrics.RecordLLMCall(c.gen.Provider(), "ok", time.Since(start))
	metrics.RecordClassification(metrics.SourceLLM, string(result.Sentiment))

	if c.cache != nil {
		if err := c.cache.SetResult(ctx, key, &result, c.cacheTTL); err != nil {
			logger.WithContext(ctx).WithError(err).Debug("[Classifier] cache store failed")
		}
	}
	return result
}

func (c *Classifier) fallback(content string) domain.SentimentResult {
	result := FallbackClassify(content)
	metrics.RecordClassification(metrics.SourceFallback, string(result.Sentiment))
	return result
}

// String describes the classifier for startup logs.
func (c *Classifier) String() string {
	if c.gen == nil {
		return "keyword-only"
	}
	return fmt.Sprintf("%s/%s (timeout=%s, cache=%t)", c.gen.Provider(), c.gen.Model(), c.timeout, c.cache != nil)
}
