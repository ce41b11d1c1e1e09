package sentiment

import (
	"context"
	"time"

	"pulse_server/core/domain"
	"pulse_server/pkg/metrics"
)

// BatchAnalyzer classifies emails one at a time, preserving input order.
type BatchAnalyzer struct {
	classifier SentimentClassifier
	now        func() time.Time
}

// NewBatchAnalyzer creates an analyzer. A nil clock uses time.Now.
func NewBatchAnalyzer(classifier SentimentClassifier, now func() time.Time) *BatchAnalyzer {
	if now == nil {
		now = time.Now
	}
	return &BatchAnalyzer{classifier: classifier, now: now}
}

// AnalyzeBatch returns one record per input. Each record is stamped with its analysis time.
func (a *BatchAnalyzer) AnalyzeBatch(ctx context.Context, inputs []domain.EmailInput) []domain.EmailSentimentRecord {
	records := make([]domain.EmailSentimentRecord, 0, len(inputs))
	for _, in := range inputs {
		analysis := a.classifier.Classify(ctx, in.Content, in.Subject)
		records = append(records, domain.EmailSentimentRecord{
			EmailID:   in.ID,
			Subject:   in.SubjectText(),
			Content:   in.Content,
			Sender:    in.Sender,
			Timestamp: a.now(),
			Analysis:  analysis,
		})
	}
	metrics.BatchSize.Observe(float64(len(inputs)))
	return records
}
