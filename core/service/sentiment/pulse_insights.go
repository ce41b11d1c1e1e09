package sentiment

import (
	"fmt"
	"math"

	"pulse_server/core/domain"
)

const (
	positiveInsightPct   = 60.0
	negativeInsightPct   = 20.0
	urgentInsightPct     = 15.0
	negativeRecommendPct = 15.0
	highConfidence       = 0.8
	highlightConfidence  = 0.8
	maxHighlights        = 3
)

const (
	recommendPrioritize        = "Consider prioritizing urgent email responses to improve communication flow"
	recommendReviewNegative    = "Review negative sentiment emails for potential issues requiring immediate attention"
	recommendAddressFrustrated = "Address frustrated communications promptly to maintain positive relationships"
)

// GenerateInsights applies the fixed threshold rules in order. Rules are
// independent and may fire together.
func GenerateInsights(summary domain.StatisticsSummary, records []domain.EmailSentimentRecord) domain.InsightReport {
	report := domain.InsightReport{
		Insights:        []string{},
		Recommendations: []string{},
		Alerts:          []domain.EmailSentimentRecord{},
		Highlights:      []domain.EmailSentimentRecord{},
	}

	total := summary.TotalAnalyzed
	if total == 0 {
		return report
	}

	pct := func(n int) float64 {
		return float64(n) / float64(total) * 100
	}
	positive := pct(summary.Positive)
	negative := pct(summary.Negative)
	urgent := pct(summary.Urgent)

	if positive > positiveInsightPct {
		report.Insights = append(report.Insights,
			fmt.Sprintf("Strong positive communication: %d%% of emails show positive sentiment", roundPct(positive)))
	}
	if negative > negativeInsightPct {
		report.Insights = append(report.Insights,
			fmt.Sprintf("High negative sentiment detected: %d%% of emails require attention", roundPct(negative)))
	}
	if urgent > urgentInsightPct {
		report.Insights = append(report.Insights,
			fmt.Sprintf("Many urgent communications: %d%% of emails marked as urgent", roundPct(urgent)))
		report.Recommendations = append(report.Recommendations, recommendPrioritize)
	}
	if summary.AverageConfidence > highConfidence {
		report.Insights = append(report.Insights,
			fmt.Sprintf("High confidence analysis: %d%% average accuracy", roundPct(summary.AverageConfidence*100)))
	}
	if negative > negativeRecommendPct {
		report.Recommendations = append(report.Recommendations, recommendReviewNegative)
	}
	if summary.Frustrated > 0 {
		report.Recommendations = append(report.Recommendations, recommendAddressFrustrated)
	}

	for _, r := range records {
		if isAlert(r.Analysis) {
			report.Alerts = append(report.Alerts, r)
		}
		if len(report.Highlights) < maxHighlights &&
			r.Analysis.Sentiment == domain.SentimentPositive && r.Analysis.Confidence > highlightConfidence {
			report.Highlights = append(report.Highlights, r)
		}
	}

	return report
}

func isAlert(a domain.SentimentResult) bool {
	return a.Sentiment == domain.SentimentNegative ||
		a.Sentiment == domain.SentimentFrustrated ||
		a.UrgencyLevel == domain.UrgencyHigh
}

func roundPct(v float64) int {
	return int(math.Round(v))
}
