package mongodb

import (
	"strings"
	"testing"
	"time"

	"pulse_server/core/domain"
	"pulse_server/core/port/out"

	"github.com/google/uuid"
)

func TestDocumentConversion_Compression(t *testing.T) {
	tests := []struct {
		name           string
		insights       int
		wantCompressed bool
	}{
		{"small overview stays plain", 0, false},
		{"large overview is gzipped", 40, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overview := domain.Overview{
				Statistics: domain.StatisticsSummary{Positive: 2, TotalAnalyzed: 2},
				Source:     "request",
			}
			for i := 0; i < tt.insights; i++ {
				overview.Insights = append(overview.Insights, strings.Repeat("insight ", 4))
			}
			entity := out.NewInsightReportEntity(uuid.New(), overview)

			doc, err := toDocument(entity)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if doc.IsCompressed != tt.wantCompressed {
				t.Errorf("expected compressed=%v, got %v", tt.wantCompressed, doc.IsCompressed)
			}
			if doc.TotalAnalyzed != 2 {
				t.Errorf("expected total_analyzed 2, got %d", doc.TotalAnalyzed)
			}

			back, err := toEntity(doc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if back.UserID != entity.UserID || back.Source != "request" {
				t.Errorf("expected identity preserved, got %+v", back)
			}
			if len(back.Overview.Insights) != tt.insights {
				t.Errorf("expected %d insights, got %d", tt.insights, len(back.Overview.Insights))
			}
		})
	}
}

func TestNewInsightReportEntity_TTL(t *testing.T) {
	entity := out.NewInsightReportEntity(uuid.New(), domain.Overview{Source: "history"})
	ttl := entity.ExpiresAt.Sub(entity.CreatedAt)
	want := time.Duration(out.DefaultInsightReportTTLDays) * 24 * time.Hour
	if ttl < want-time.Hour || ttl > want+time.Hour {
		t.Errorf("expected about %d day TTL, got %v", out.DefaultInsightReportTTLDays, ttl)
	}
	if entity.Source != "history" {
		t.Errorf("expected source copied from overview, got %q", entity.Source)
	}
}

func TestToEntity_InvalidUser(t *testing.T) {
	if _, err := toEntity(&insightReportDocument{UserID: "nope"}); err == nil {
		t.Errorf("expected error for invalid user id")
	}
}
