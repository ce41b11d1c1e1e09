package sentiment

import (
	"testing"
	"time"

	"pulse_server/core/domain"
)

func batchOf(counts map[domain.Sentiment]int, confidence float64) []domain.EmailSentimentRecord {
	var records []domain.EmailSentimentRecord
	for _, s := range domain.AllSentiments {
		for i := 0; i < counts[s]; i++ {
			records = append(records, record(string(s), s, confidence, domain.UrgencyLow, "x", statsNow))
		}
	}
	return records
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestGenerateInsights_Rules(t *testing.T) {
	tests := []struct {
		name            string
		counts          map[domain.Sentiment]int
		confidence      float64
		insights        []string
		recommendations []string
	}{
		{
			name:       "strong positive",
			counts:     map[domain.Sentiment]int{domain.SentimentPositive: 7, domain.SentimentNeutral: 3},
			confidence: 0.5,
			insights:   []string{"Strong positive communication: 70% of emails show positive sentiment"},
		},
		{
			name:       "exactly sixty percent positive does not fire",
			counts:     map[domain.Sentiment]int{domain.SentimentPositive: 6, domain.SentimentNeutral: 4},
			confidence: 0.5,
		},
		{
			name:       "urgent above fifteen percent",
			counts:     map[domain.Sentiment]int{domain.SentimentUrgent: 2, domain.SentimentNeutral: 8},
			confidence: 0.5,
			insights:   []string{"Many urgent communications: 20% of emails marked as urgent"},
			recommendations: []string{
				"Consider prioritizing urgent email responses to improve communication flow",
			},
		},
		{
			name:       "negative between fifteen and twenty percent only recommends",
			counts:     map[domain.Sentiment]int{domain.SentimentNegative: 2, domain.SentimentNeutral: 9},
			confidence: 0.5,
			recommendations: []string{
				"Review negative sentiment emails for potential issues requiring immediate attention",
			},
		},
		{
			name:       "high negative and frustrated",
			counts:     map[domain.Sentiment]int{domain.SentimentNegative: 3, domain.SentimentFrustrated: 1, domain.SentimentNeutral: 6},
			confidence: 0.5,
			insights:   []string{"High negative sentiment detected: 30% of emails require attention"},
			recommendations: []string{
				"Review negative sentiment emails for potential issues requiring immediate attention",
				"Address frustrated communications promptly to maintain positive relationships",
			},
		},
		{
			name:       "high confidence rounds",
			counts:     map[domain.Sentiment]int{domain.SentimentNeutral: 4},
			confidence: 0.876,
			insights:   []string{"High confidence analysis: 88% average accuracy"},
		},
		{
			name:       "rules fire in fixed order",
			counts:     map[domain.Sentiment]int{domain.SentimentPositive: 0, domain.SentimentNegative: 3, domain.SentimentUrgent: 2},
			confidence: 0.9,
			insights: []string{
				"High negative sentiment detected: 60% of emails require attention",
				"Many urgent communications: 40% of emails marked as urgent",
				"High confidence analysis: 90% average accuracy",
			},
			recommendations: []string{
				"Consider prioritizing urgent email responses to improve communication flow",
				"Review negative sentiment emails for potential issues requiring immediate attention",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := batchOf(tt.counts, tt.confidence)
			report := GenerateInsights(Aggregate(records, statsNow), records)

			if len(report.Insights) != len(tt.insights) {
				t.Fatalf("expected insights %v, got %v", tt.insights, report.Insights)
			}
			for i := range tt.insights {
				if report.Insights[i] != tt.insights[i] {
					t.Errorf("expected insight %q, got %q", tt.insights[i], report.Insights[i])
				}
			}
			if len(report.Recommendations) != len(tt.recommendations) {
				t.Fatalf("expected recommendations %v, got %v", tt.recommendations, report.Recommendations)
			}
			for i := range tt.recommendations {
				if report.Recommendations[i] != tt.recommendations[i] {
					t.Errorf("expected recommendation %q, got %q", tt.recommendations[i], report.Recommendations[i])
				}
			}
		})
	}
}

func TestGenerateInsights_AlertsAndHighlights(t *testing.T) {
	r1 := record("R1", domain.SentimentNegative, 0.7, domain.UrgencyLow, "concerned", statsNow)
	r2 := record("R2", domain.SentimentPositive, 0.9, domain.UrgencyLow, "happy", statsNow)
	r3 := record("R3", domain.SentimentPositive, 0.5, domain.UrgencyLow, "happy", statsNow)
	r4 := record("R4", domain.SentimentNeutral, 0.6, domain.UrgencyHigh, "neutral", statsNow)
	records := []domain.EmailSentimentRecord{r1, r2, r3, r4}

	report := GenerateInsights(Aggregate(records, statsNow), records)

	if len(report.Alerts) != 2 || report.Alerts[0].EmailID != "R1" || report.Alerts[1].EmailID != "R4" {
		t.Errorf("expected alerts [R1 R4], got %v", ids(report.Alerts))
	}
	if len(report.Highlights) != 1 || report.Highlights[0].EmailID != "R2" {
		t.Errorf("expected highlights [R2], got %v", ids(report.Highlights))
	}
}

func TestGenerateInsights_FrustratedIsAlert(t *testing.T) {
	records := []domain.EmailSentimentRecord{
		record("F", domain.SentimentFrustrated, 0.7, domain.UrgencyLow, "annoyed", statsNow),
	}
	report := GenerateInsights(Aggregate(records, statsNow), records)
	if len(report.Alerts) != 1 {
		t.Errorf("expected frustrated record to be an alert, got %v", ids(report.Alerts))
	}
}

func TestGenerateInsights_HighlightsCapped(t *testing.T) {
	var records []domain.EmailSentimentRecord
	for _, id := range []string{"h1", "h2", "h3", "h4", "h5"} {
		records = append(records, record(id, domain.SentimentPositive, 0.95, domain.UrgencyLow, "happy", statsNow))
	}
	report := GenerateInsights(Aggregate(records, statsNow), records)

	got := ids(report.Highlights)
	if len(got) != 3 || got[0] != "h1" || got[2] != "h3" {
		t.Errorf("expected first three highlights, got %v", got)
	}
}

func TestGenerateInsights_Empty(t *testing.T) {
	report := GenerateInsights(Aggregate(nil, time.Now()), nil)
	if len(report.Insights) != 0 || len(report.Recommendations) != 0 || len(report.Alerts) != 0 || len(report.Highlights) != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
	if report.Insights == nil || report.Alerts == nil {
		t.Errorf("expected non-nil slices for JSON output")
	}
}

func ids(records []domain.EmailSentimentRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.EmailID
	}
	return out
}
