package stream

import (
	"context"
	"time"

	"pulse_server/adapter/in/worker"
	"pulse_server/core/port/out"

	"github.com/google/uuid"
)

// Publisher is the write side of a job stream.
type Publisher interface {
	Publish(ctx context.Context, stream string, data any) (string, error)
}

type Producer struct {
	stream Publisher
}

var _ out.JobPublisher = (*Producer)(nil)

func NewProducer(stream Publisher) *Producer {
	return &Producer{stream: stream}
}

type Job struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

// PublishSentimentBatch queues a batch analysis job and returns the stream entry ID.
func (p *Producer) PublishSentimentBatch(ctx context.Context, job *out.SentimentBatchJob) (string, error) {
	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	return p.stream.Publish(ctx, out.StreamSentimentJobs, &Job{
		ID:   job.JobID,
		Type: worker.JobSentimentBatch,
		Payload: map[string]any{
			"job_id":     job.JobID,
			"user_id":    job.UserID,
			"emails":     job.Emails,
			"created_at": job.CreatedAt,
		},
		CreatedAt: job.CreatedAt,
	})
}
