package in

import (
	"context"

	"pulse_server/core/domain"
	"pulse_server/core/port/out"

	"github.com/google/uuid"
)

// SentimentService is the inbound port used by the HTTP and worker adapters.
type SentimentService interface {
	// Analysis
	AnalyzeEmail(ctx context.Context, userID uuid.UUID, input domain.EmailInput) (domain.SentimentResult, error)
	AnalyzeEmails(ctx context.Context, userID uuid.UUID, inputs []domain.EmailInput) ([]domain.EmailSentimentRecord, error)

	// Aggregation
	Overview(ctx context.Context, userID uuid.UUID, records []domain.EmailSentimentRecord) (*domain.Overview, error)
	UrgentEmails(ctx context.Context, userID uuid.UUID, inputs []domain.EmailInput) ([]domain.UrgentEmail, error)

	// Stored data
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.EmailSentimentRecord, int, error)
	SenderProfile(ctx context.Context, userID uuid.UUID, sender string) (*domain.SenderProfile, error)
	LatestReport(ctx context.Context, userID uuid.UUID) (*out.InsightReportEntity, error)

	// Async
	EnqueueBatch(ctx context.Context, userID uuid.UUID, inputs []domain.EmailInput) (string, error)
	ProcessBatchJob(ctx context.Context, job *out.SentimentBatchJob) error
}
