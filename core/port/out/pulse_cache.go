package out

import (
	"context"
	"time"

	"pulse_server/core/domain"
)

// ResultCache stores classifier output keyed by a content fingerprint.
// A miss returns (nil, nil).
type ResultCache interface {
	GetResult(ctx context.Context, key string) (*domain.SentimentResult, error)
	SetResult(ctx context.Context, key string, result *domain.SentimentResult, ttl time.Duration) error
}
