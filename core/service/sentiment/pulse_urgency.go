package sentiment

import (
	"sort"

	"pulse_server/core/domain"
)

const urgentScoreThreshold = 0.7

// UrgencyScore is a weighted sum of the result's fields, capped at 1.
func UrgencyScore(r domain.SentimentResult) float64 {
	score := 0.0
	switch r.UrgencyLevel {
	case domain.UrgencyHigh:
		score += 0.4
	case domain.UrgencyMedium:
		score += 0.2
	}
	if r.Sentiment == domain.SentimentUrgent {
		score += 0.3
	}
	if r.Sentiment == domain.SentimentFrustrated {
		score += 0.2
	}
	if r.Sentiment == domain.SentimentNegative {
		score += 0.1
	}
	score += domain.ClampConfidence(r.Confidence) * 0.3
	if score > 1 {
		return 1
	}
	return score
}

// SelectUrgent keeps high-urgency or high-scoring records, highest score first.
func SelectUrgent(records []domain.EmailSentimentRecord) []domain.UrgentEmail {
	urgent := make([]domain.UrgentEmail, 0)
	for _, r := range records {
		score := UrgencyScore(r.Analysis)
		if r.Analysis.UrgencyLevel == domain.UrgencyHigh || score > urgentScoreThreshold {
			urgent = append(urgent, domain.UrgentEmail{EmailSentimentRecord: r, UrgencyScore: score})
		}
	}
	sort.SliceStable(urgent, func(i, j int) bool {
		return urgent[i].UrgencyScore > urgent[j].UrgencyScore
	})
	return urgent
}
