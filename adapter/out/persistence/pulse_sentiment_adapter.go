// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"pulse_server/core/domain"
	"pulse_server/core/port/out"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// contentPreviewLen bounds the stored body; analyses only need a prefix.
const contentPreviewLen = 1000

const sentimentSchema = `
CREATE TABLE IF NOT EXISTS email_sentiments (
	id            BIGSERIAL PRIMARY KEY,
	user_id       UUID NOT NULL,
	email_id      TEXT NOT NULL,
	subject       TEXT NOT NULL DEFAULT '',
	content       TEXT NOT NULL DEFAULT '',
	sender        TEXT NOT NULL DEFAULT '',
	sentiment     TEXT NOT NULL,
	confidence    DOUBLE PRECISION NOT NULL,
	emotion       TEXT NOT NULL,
	reasoning     TEXT NOT NULL,
	urgency_level TEXT NOT NULL,
	tone          TEXT NOT NULL,
	key_phrases   TEXT[] NOT NULL DEFAULT '{}',
	analyzed_at   TIMESTAMPTZ NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, email_id)
);
CREATE INDEX IF NOT EXISTS idx_email_sentiments_user_analyzed
	ON email_sentiments (user_id, analyzed_at DESC);
`

// SentimentAdapter implements out.SentimentRepository using PostgreSQL.
type SentimentAdapter struct {
	db *sqlx.DB
}

var _ out.SentimentRepository = (*SentimentAdapter)(nil)

// NewSentimentAdapter creates a new SentimentAdapter.
func NewSentimentAdapter(db *sqlx.DB) *SentimentAdapter {
	return &SentimentAdapter{db: db}
}

// EnsureSchema creates the table and index if they do not exist.
func (a *SentimentAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, sentimentSchema); err != nil {
		return fmt.Errorf("failed to ensure sentiment schema: %w", err)
	}
	return nil
}

// sentimentRow represents the database row for email sentiments.
type sentimentRow struct {
	ID           int64          `db:"id"`
	UserID       uuid.UUID      `db:"user_id"`
	EmailID      string         `db:"email_id"`
	Subject      string         `db:"subject"`
	Content      string         `db:"content"`
	Sender       string         `db:"sender"`
	Sentiment    string         `db:"sentiment"`
	Confidence   float64        `db:"confidence"`
	Emotion      string         `db:"emotion"`
	Reasoning    string         `db:"reasoning"`
	UrgencyLevel string         `db:"urgency_level"`
	Tone         string         `db:"tone"`
	KeyPhrases   pq.StringArray `db:"key_phrases"`
	AnalyzedAt   time.Time      `db:"analyzed_at"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (r *sentimentRow) toEntity() domain.EmailSentimentRecord {
	sentiment, ok := domain.ParseSentiment(r.Sentiment)
	if !ok {
		sentiment = domain.SentimentNeutral
	}
	urgency, ok := domain.ParseUrgencyLevel(r.UrgencyLevel)
	if !ok {
		urgency = domain.UrgencyLow
	}

	return domain.EmailSentimentRecord{
		EmailID:   r.EmailID,
		Subject:   r.Subject,
		Content:   r.Content,
		Sender:    r.Sender,
		Timestamp: r.AnalyzedAt,
		Analysis: domain.SentimentResult{
			Sentiment:    sentiment,
			Confidence:   domain.ClampConfidence(r.Confidence),
			Emotion:      r.Emotion,
			Reasoning:    r.Reasoning,
			UrgencyLevel: urgency,
			Tone:         r.Tone,
			KeyPhrases:   domain.TruncateKeyPhrases(r.KeyPhrases),
		},
	}
}

const sentimentColumns = `id, user_id, email_id, subject, content, sender, sentiment, confidence,
	emotion, reasoning, urgency_level, tone, key_phrases, analyzed_at, created_at`

// SaveRecords upserts records in a single transaction; a re-analysed email replaces its row.
func (a *SentimentAdapter) SaveRecords(ctx context.Context, userID uuid.UUID, records []domain.EmailSentimentRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO email_sentiments (user_id, email_id, subject, content, sender, sentiment, confidence,
			emotion, reasoning, urgency_level, tone, key_phrases, analyzed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id, email_id) DO UPDATE SET
			subject = EXCLUDED.subject,
			content = EXCLUDED.content,
			sender = EXCLUDED.sender,
			sentiment = EXCLUDED.sentiment,
			confidence = EXCLUDED.confidence,
			emotion = EXCLUDED.emotion,
			reasoning = EXCLUDED.reasoning,
			urgency_level = EXCLUDED.urgency_level,
			tone = EXCLUDED.tone,
			key_phrases = EXCLUDED.key_phrases,
			analyzed_at = EXCLUDED.analyzed_at`

	for _, r := range records {
		if r.EmailID == "" {
			return fmt.Errorf("%w: record without email id", ErrInvalidInput)
		}
		phrases := r.Analysis.KeyPhrases
		if phrases == nil {
			phrases = []string{}
		}
		_, err := tx.ExecContext(ctx, query,
			userID,
			r.EmailID,
			r.Subject,
			contentPreview(r.Content),
			r.Sender,
			string(r.Analysis.Sentiment),
			r.Analysis.Confidence,
			r.Analysis.Emotion,
			r.Analysis.Reasoning,
			string(r.Analysis.UrgencyLevel),
			r.Analysis.Tone,
			pq.Array(phrases),
			r.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("failed to save sentiment record %s: %w", r.EmailID, err)
		}
	}

	return tx.Commit()
}

// ListByUser returns one page of records, newest first, plus the total count.
func (a *SentimentAdapter) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.EmailSentimentRecord, int, error) {
	var total int
	if err := a.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM email_sentiments WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count sentiment records: %w", err)
	}

	var rows []sentimentRow
	query := `SELECT ` + sentimentColumns + ` FROM email_sentiments
		WHERE user_id = $1 ORDER BY analyzed_at DESC, id DESC LIMIT $2 OFFSET $3`
	if err := a.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list sentiment records: %w", err)
	}

	return toEntities(rows), total, nil
}

// ListSince returns records analysed at or after since, oldest first.
func (a *SentimentAdapter) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]domain.EmailSentimentRecord, error) {
	var rows []sentimentRow
	query := `SELECT ` + sentimentColumns + ` FROM email_sentiments
		WHERE user_id = $1 AND analyzed_at >= $2 ORDER BY analyzed_at ASC, id ASC`
	if err := a.db.SelectContext(ctx, &rows, query, userID, since); err != nil {
		return nil, fmt.Errorf("failed to list recent sentiment records: %w", err)
	}
	return toEntities(rows), nil
}

func toEntities(rows []sentimentRow) []domain.EmailSentimentRecord {
	records := make([]domain.EmailSentimentRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].toEntity()
	}
	return records
}

func contentPreview(s string) string {
	if utf8.RuneCountInString(s) <= contentPreviewLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:contentPreviewLen])
}
