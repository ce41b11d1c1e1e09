package worker

import (
	"context"
	"fmt"

	"pulse_server/core/port/in"
	"pulse_server/core/port/out"
	"pulse_server/pkg/logger"
	"pulse_server/pkg/metrics"
)

// SentimentProcessor handles asynchronous sentiment jobs.
type SentimentProcessor struct {
	sentimentService in.SentimentService
}

// NewSentimentProcessor creates a new sentiment processor.
func NewSentimentProcessor(sentimentService in.SentimentService) *SentimentProcessor {
	return &SentimentProcessor{
		sentimentService: sentimentService,
	}
}

// ProcessBatch analyses a queued batch of emails for one user.
func (p *SentimentProcessor) ProcessBatch(ctx context.Context, msg *Message) error {
	payload, err := ParsePayload[out.SentimentBatchJob](msg)
	if err != nil {
		metrics.RecordJob(msg.Type, "invalid")
		return fmt.Errorf("failed to parse payload: %w", err)
	}
	if payload.JobID == "" {
		payload.JobID = msg.ID
	}

	logger.Info("[SentimentProcessor.ProcessBatch] job=%s, user=%s, emails=%d",
		payload.JobID, payload.UserID, len(payload.Emails))

	if p.sentimentService == nil {
		return fmt.Errorf("sentimentService not initialized")
	}

	if err := p.sentimentService.ProcessBatchJob(ctx, payload); err != nil {
		metrics.RecordJob(msg.Type, "failed")
		return err
	}

	metrics.RecordJob(msg.Type, "success")
	return nil
}
