package sentiment

import (
	"sort"
	"time"

	"pulse_server/core/domain"
)

const (
	trendDays      = 7
	maxTopEmotions = 5
	dateLayout     = "2006-01-02"
)

// Aggregate reduces records into a summary. The trend window is the seven
// calendar days ending on now's day, in now's location.
func Aggregate(records []domain.EmailSentimentRecord, now time.Time) domain.StatisticsSummary {
	summary := domain.StatisticsSummary{
		TotalAnalyzed: len(records),
		TopEmotions:   []domain.EmotionCount{},
	}

	days := trendWindow(now)
	dayIndex := make(map[string]int, len(days))
	for i, d := range days {
		dayIndex[d] = i
	}
	cells := make([][]int, len(days))
	for i := range cells {
		cells[i] = make([]int, len(domain.AllSentiments))
	}

	emotionIndex := make(map[string]int)
	var confidenceSum float64
	loc := now.Location()

	for _, r := range records {
		summary.Tally(r.Analysis.Sentiment)
		confidenceSum += r.Analysis.Confidence

		if i, ok := emotionIndex[r.Analysis.Emotion]; ok {
			summary.TopEmotions[i].Count++
		} else {
			emotionIndex[r.Analysis.Emotion] = len(summary.TopEmotions)
			summary.TopEmotions = append(summary.TopEmotions, domain.EmotionCount{Emotion: r.Analysis.Emotion, Count: 1})
		}

		if d, ok := dayIndex[r.Timestamp.In(loc).Format(dateLayout)]; ok {
			cells[d][sentimentIndex(r.Analysis.Sentiment)]++
		}
	}

	if len(records) > 0 {
		summary.AverageConfidence = confidenceSum / float64(len(records))
	}

	sort.SliceStable(summary.TopEmotions, func(i, j int) bool {
		return summary.TopEmotions[i].Count > summary.TopEmotions[j].Count
	})
	if len(summary.TopEmotions) > maxTopEmotions {
		summary.TopEmotions = summary.TopEmotions[:maxTopEmotions]
	}

	summary.TrendData = make([]domain.TrendPoint, 0, len(days)*len(domain.AllSentiments))
	for i, d := range days {
		for j, s := range domain.AllSentiments {
			summary.TrendData = append(summary.TrendData, domain.TrendPoint{Date: d, Sentiment: s, Count: cells[i][j]})
		}
	}

	return summary
}

// trendWindow lists the window's dates, oldest first.
func trendWindow(now time.Time) []string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	days := make([]string, trendDays)
	for i := 0; i < trendDays; i++ {
		days[i] = today.AddDate(0, 0, i-(trendDays-1)).Format(dateLayout)
	}
	return days
}

// windowStart is midnight of the oldest day in the trend window.
func windowStart(now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -(trendDays - 1))
}

// sentimentIndex maps unknown tags to neutral, matching StatisticsSummary.Tally.
func sentimentIndex(s domain.Sentiment) int {
	neutral := 0
	for i, known := range domain.AllSentiments {
		if s == known {
			return i
		}
		if known == domain.SentimentNeutral {
			neutral = i
		}
	}
	return neutral
}
