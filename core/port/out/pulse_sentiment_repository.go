package out

import (
	"context"
	"time"

	"pulse_server/core/domain"

	"github.com/google/uuid"
)

// =============================================================================
// SentimentRepository (PostgreSQL)
// =============================================================================

// SentimentRepository persists analysis records per user.
type SentimentRepository interface {
	SaveRecords(ctx context.Context, userID uuid.UUID, records []domain.EmailSentimentRecord) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.EmailSentimentRecord, int, error)
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]domain.EmailSentimentRecord, error)
}

// =============================================================================
// SenderGraph (Neo4j)
// =============================================================================

// SenderGraph tracks which sentiments each sender produces.
type SenderGraph interface {
	RecordSentiments(ctx context.Context, userID uuid.UUID, records []domain.EmailSentimentRecord) error
	GetSenderProfile(ctx context.Context, userID uuid.UUID, sender string) (*domain.SenderProfile, error)
}
