package sentiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pulse_server/core/domain"
	"pulse_server/core/port/in"
	"pulse_server/core/port/out"
	"pulse_server/pkg/apperr"
	"pulse_server/pkg/logger"

	"github.com/google/uuid"
)

// Overview sources.
const (
	SourceRequest = "request"
	SourceHistory = "history"
	SourceDemo    = "demo"
)

const DefaultMaxBatch = 50

var _ in.SentimentService = (*Service)(nil)

// ServiceConfig holds tunables for Service.
type ServiceConfig struct {
	MaxBatch int
	Now      func() time.Time
}

type Service struct {
	classifier SentimentClassifier
	analyzer   *BatchAnalyzer
	recordRepo out.SentimentRepository
	reportRepo out.InsightReportRepository
	graph      out.SenderGraph
	jobs       out.JobPublisher
	maxBatch   int
	now        func() time.Time
}

// NewService wires the sentiment service. Every repository may be nil.
func NewService(
	classifier SentimentClassifier,
	recordRepo out.SentimentRepository,
	reportRepo out.InsightReportRepository,
	graph out.SenderGraph,
	jobs out.JobPublisher,
	cfg ServiceConfig,
) *Service {
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = DefaultMaxBatch
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		classifier: classifier,
		analyzer:   NewBatchAnalyzer(classifier, cfg.Now),
		recordRepo: recordRepo,
		reportRepo: reportRepo,
		graph:      graph,
		jobs:       jobs,
		maxBatch:   cfg.MaxBatch,
		now:        cfg.Now,
	}
}

// MaxBatch is the largest batch accepted by AnalyzeEmails and EnqueueBatch.
func (s *Service) MaxBatch() int {
	return s.maxBatch
}

// AnalyzeEmail classifies one email and stores the record.
func (s *Service) AnalyzeEmail(ctx context.Context, userID uuid.UUID, input domain.EmailInput) (domain.SentimentResult, error) {
	result := s.classifier.Classify(ctx, input.Content, input.Subject)

	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	s.persist(ctx, userID, []domain.EmailSentimentRecord{{
		EmailID:   input.ID,
		Subject:   input.SubjectText(),
		Content:   input.Content,
		Sender:    input.Sender,
		Timestamp: s.now(),
		Analysis:  result,
	}})
	return result, nil
}

// AnalyzeEmails runs the batch analyzer and stores the records.
func (s *Service) AnalyzeEmails(ctx context.Context, userID uuid.UUID, inputs []domain.EmailInput) ([]domain.EmailSentimentRecord, error) {
	if len(inputs) > s.maxBatch {
		return nil, apperr.BatchTooLarge(len(inputs), s.maxBatch)
	}

	prepared := make([]domain.EmailInput, len(inputs))
	for i, input := range inputs {
		if input.ID == "" {
			input.ID = uuid.NewString()
		}
		prepared[i] = input
	}

	records := s.analyzer.AnalyzeBatch(ctx, prepared)
	s.persist(ctx, userID, records)
	return records, nil
}

// Overview aggregates the given records, or the user's recent history when
// none are given, or demo data when there is no history.
func (s *Service) Overview(ctx context.Context, userID uuid.UUID, records []domain.EmailSentimentRecord) (*domain.Overview, error) {
	now := s.now()
	source := SourceRequest
	if len(records) == 0 {
		records, source = s.recentOrDemo(ctx, userID, now)
	}

	stats := Aggregate(records, now)
	overview := &domain.Overview{
		Statistics:    stats,
		InsightReport: GenerateInsights(stats, records),
		Source:        source,
	}

	if s.reportRepo != nil && source != SourceDemo {
		if err := s.reportRepo.Save(ctx, out.NewInsightReportEntity(userID, *overview)); err != nil {
			logger.WithContext(ctx).WithError(err).Warn("[SentimentService] failed to save insight report")
		}
	}
	return overview, nil
}

// UrgentEmails analyses the inputs, or falls back to history or demo data,
// and returns the urgent subset ranked by score.
func (s *Service) UrgentEmails(ctx context.Context, userID uuid.UUID, inputs []domain.EmailInput) ([]domain.UrgentEmail, error) {
	var records []domain.EmailSentimentRecord
	if len(inputs) > 0 {
		var err error
		records, err = s.AnalyzeEmails(ctx, userID, inputs)
		if err != nil {
			return nil, err
		}
	} else {
		records, _ = s.recentOrDemo(ctx, userID, s.now())
	}
	return SelectUrgent(records), nil
}

// History pages through the user's stored records, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.EmailSentimentRecord, int, error) {
	if s.recordRepo == nil {
		return []domain.EmailSentimentRecord{}, 0, nil
	}
	records, total, err := s.recordRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, apperr.DatabaseError("list sentiment history", err)
	}
	if records == nil {
		records = []domain.EmailSentimentRecord{}
	}
	return records, total, nil
}

// SenderProfile returns the sentiment distribution for one sender.
func (s *Service) SenderProfile(ctx context.Context, userID uuid.UUID, sender string) (*domain.SenderProfile, error) {
	if s.graph == nil {
		return nil, apperr.NotFound("sender profile")
	}
	profile, err := s.graph.GetSenderProfile(ctx, userID, sender)
	if err != nil {
		return nil, apperr.ExternalError("sender graph", err)
	}
	if profile == nil {
		return nil, apperr.NotFound("sender profile")
	}
	return profile, nil
}

// LatestReport returns the most recent stored overview snapshot.
func (s *Service) LatestReport(ctx context.Context, userID uuid.UUID) (*out.InsightReportEntity, error) {
	if s.reportRepo == nil {
		return nil, apperr.NotFound("insight report")
	}
	report, err := s.reportRepo.GetLatestByUser(ctx, userID)
	if err != nil {
		return nil, apperr.DatabaseError("get latest insight report", err)
	}
	if report == nil {
		return nil, apperr.NotFound("insight report")
	}
	return report, nil
}

// EnqueueBatch publishes a batch for the worker and returns the job ID.
func (s *Service) EnqueueBatch(ctx context.Context, userID uuid.UUID, inputs []domain.EmailInput) (string, error) {
	if len(inputs) == 0 {
		return "", apperr.MissingField("emails")
	}
	if len(inputs) > s.maxBatch {
		return "", apperr.BatchTooLarge(len(inputs), s.maxBatch)
	}
	if s.jobs == nil {
		return "", apperr.QueueError(errors.New("job queue is not configured"))
	}

	job := &out.SentimentBatchJob{
		JobID:     uuid.NewString(),
		UserID:    userID.String(),
		Emails:    inputs,
		CreatedAt: s.now(),
	}
	if _, err := s.jobs.PublishSentimentBatch(ctx, job); err != nil {
		return "", apperr.QueueError(err)
	}
	logger.WithContext(ctx).WithField("job_id", job.JobID).Info("[SentimentService] enqueued batch of %d emails", len(inputs))
	return job.JobID, nil
}

// ProcessBatchJob analyses a queued batch and stores an overview snapshot of it.
func (s *Service) ProcessBatchJob(ctx context.Context, job *out.SentimentBatchJob) error {
	if job == nil {
		return errors.New("sentiment: nil batch job")
	}
	userID, err := uuid.Parse(job.UserID)
	if err != nil {
		return fmt.Errorf("sentiment: invalid user id in job %s: %w", job.JobID, err)
	}

	records, err := s.AnalyzeEmails(ctx, userID, job.Emails)
	if err != nil {
		return fmt.Errorf("sentiment: analyze job %s: %w", job.JobID, err)
	}
	if len(records) == 0 {
		return nil
	}
	_, err = s.Overview(ctx, userID, records)
	return err
}

func (s *Service) recentOrDemo(ctx context.Context, userID uuid.UUID, now time.Time) ([]domain.EmailSentimentRecord, string) {
	if s.recordRepo != nil {
		records, err := s.recordRepo.ListSince(ctx, userID, windowStart(now))
		if err != nil {
			logger.WithContext(ctx).WithError(err).Warn("[SentimentService] failed to load history, using demo data")
		} else if len(records) > 0 {
			return records, SourceHistory
		}
	}
	return DemoRecords(now), SourceDemo
}

// persist stores records and sender edges. Failures are logged only.
func (s *Service) persist(ctx context.Context, userID uuid.UUID, records []domain.EmailSentimentRecord) {
	if len(records) == 0 {
		return
	}
	if s.recordRepo != nil {
		if err := s.recordRepo.SaveRecords(ctx, userID, records); err != nil {
			logger.WithContext(ctx).WithError(err).Warn("[SentimentService] failed to save %d records", len(records))
		}
	}
	if s.graph != nil {
		if err := s.graph.RecordSentiments(ctx, userID, records); err != nil {
			logger.WithContext(ctx).WithError(err).Warn("[SentimentService] failed to update sender graph")
		}
	}
}
