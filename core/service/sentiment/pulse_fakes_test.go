package sentiment

import (
	"context"
	"errors"
	"sync"
	"time"

	"pulse_server/core/domain"
	"pulse_server/core/port/out"

	"github.com/google/uuid"
)

type fakeGenerator struct {
	mu       sync.Mutex
	provider string
	model    string
	response string
	err      error
	block    bool
	panicMsg string
	calls    int
	prompts  []string
}

func (f *fakeGenerator) Provider() string {
	if f.provider == "" {
		return "fake"
	}
	return f.provider
}

func (f *fakeGenerator) Model() string { return f.model }

func (f *fakeGenerator) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, userPrompt)
	f.mu.Unlock()

	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.response, f.err
}

type memoryCache struct {
	items map[string]domain.SentimentResult
	err   error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string]domain.SentimentResult)}
}

func (m *memoryCache) GetResult(ctx context.Context, key string) (*domain.SentimentResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.items[key]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memoryCache) SetResult(ctx context.Context, key string, result *domain.SentimentResult, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.items[key] = *result
	return nil
}

type memoryRecords struct {
	saved   []domain.EmailSentimentRecord
	history []domain.EmailSentimentRecord
	since   time.Time
	err     error
}

func (m *memoryRecords) SaveRecords(ctx context.Context, userID uuid.UUID, records []domain.EmailSentimentRecord) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, records...)
	return nil
}

func (m *memoryRecords) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.EmailSentimentRecord, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	if offset >= len(m.history) {
		return nil, len(m.history), nil
	}
	end := offset + limit
	if end > len(m.history) {
		end = len(m.history)
	}
	return m.history[offset:end], len(m.history), nil
}

func (m *memoryRecords) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]domain.EmailSentimentRecord, error) {
	m.since = since
	if m.err != nil {
		return nil, m.err
	}
	return m.history, nil
}

type memoryReports struct {
	saved []*out.InsightReportEntity
}

func (m *memoryReports) Save(ctx context.Context, report *out.InsightReportEntity) error {
	m.saved = append(m.saved, report)
	return nil
}

func (m *memoryReports) GetLatestByUser(ctx context.Context, userID uuid.UUID) (*out.InsightReportEntity, error) {
	if len(m.saved) == 0 {
		return nil, nil
	}
	return m.saved[len(m.saved)-1], nil
}

type memoryGraph struct {
	recorded int
	profile  *domain.SenderProfile
}

func (m *memoryGraph) RecordSentiments(ctx context.Context, userID uuid.UUID, records []domain.EmailSentimentRecord) error {
	m.recorded += len(records)
	return nil
}

func (m *memoryGraph) GetSenderProfile(ctx context.Context, userID uuid.UUID, sender string) (*domain.SenderProfile, error) {
	return m.profile, nil
}

type memoryPublisher struct {
	jobs []*out.SentimentBatchJob
	err  error
}

func (m *memoryPublisher) PublishSentimentBatch(ctx context.Context, job *out.SentimentBatchJob) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.jobs = append(m.jobs, job)
	return "1-0", nil
}

var errUnavailable = errors.New("service unavailable")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func strPtr(s string) *string { return &s }

func record(id string, sentiment domain.Sentiment, confidence float64, urgency domain.UrgencyLevel, emotion string, ts time.Time) domain.EmailSentimentRecord {
	return domain.EmailSentimentRecord{
		EmailID:   id,
		Timestamp: ts,
		Analysis: domain.SentimentResult{
			Sentiment:    sentiment,
			Confidence:   confidence,
			Emotion:      emotion,
			UrgencyLevel: urgency,
			Tone:         "professional",
			KeyPhrases:   []string{},
		},
	}
}
