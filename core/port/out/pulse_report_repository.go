package out

import (
	"context"
	"time"

	"pulse_server/core/domain"

	"github.com/google/uuid"
)

// =============================================================================
// InsightReportRepository (MongoDB)
// =============================================================================

// DefaultInsightReportTTLDays is how long overview snapshots are kept.
const DefaultInsightReportTTLDays = 30

// InsightReportEntity is a stored overview snapshot.
type InsightReportEntity struct {
	ID        string          `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Source    string          `json:"source"`
	Overview  domain.Overview `json:"overview"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// NewInsightReportEntity creates a snapshot with the default TTL.
func NewInsightReportEntity(userID uuid.UUID, overview domain.Overview) *InsightReportEntity {
	now := time.Now()
	return &InsightReportEntity{
		ID:        uuid.New().String(),
		UserID:    userID,
		Source:    overview.Source,
		Overview:  overview,
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, 0, DefaultInsightReportTTLDays),
	}
}

// InsightReportRepository stores overview snapshots.
type InsightReportRepository interface {
	Save(ctx context.Context, report *InsightReportEntity) error
	GetLatestByUser(ctx context.Context, userID uuid.UUID) (*InsightReportEntity, error)
}
