package out

import (
	"context"
	"time"

	"pulse_server/core/domain"
)

// StreamSentimentJobs is the stream carrying asynchronous batch analysis jobs.
const StreamSentimentJobs = "sentiment:jobs"

// SentimentBatchJob asks the worker to analyse a batch for one user.
type SentimentBatchJob struct {
	JobID     string              `json:"job_id"`
	UserID    string              `json:"user_id"`
	Emails    []domain.EmailInput `json:"emails"`
	CreatedAt time.Time           `json:"created_at"`
}

// JobPublisher is the outbound port for the job stream.
type JobPublisher interface {
	PublishSentimentBatch(ctx context.Context, job *SentimentBatchJob) (string, error)
}
