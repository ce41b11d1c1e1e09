package domain

import (
	"strings"
	"time"
)

// Sentiment is the emotional valence assigned to one email.
type Sentiment string

const (
	SentimentPositive   Sentiment = "positive"
	SentimentNeutral    Sentiment = "neutral"
	SentimentNegative   Sentiment = "negative"
	SentimentUrgent     Sentiment = "urgent"
	SentimentFrustrated Sentiment = "frustrated"
)

// AllSentiments lists every sentiment in reporting order.
var AllSentiments = []Sentiment{
	SentimentPositive,
	SentimentNeutral,
	SentimentNegative,
	SentimentUrgent,
	SentimentFrustrated,
}

// ParseSentiment validates an untrusted sentiment tag.
func ParseSentiment(s string) (Sentiment, bool) {
	v := Sentiment(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllSentiments {
		if v == known {
			return v, true
		}
	}
	return "", false
}

// UrgencyLevel is the coarse urgency label, distinct from the numeric urgency score.
type UrgencyLevel string

const (
	UrgencyLow    UrgencyLevel = "low"
	UrgencyMedium UrgencyLevel = "medium"
	UrgencyHigh   UrgencyLevel = "high"
)

// ParseUrgencyLevel validates an untrusted urgency tag.
func ParseUrgencyLevel(s string) (UrgencyLevel, bool) {
	switch v := UrgencyLevel(strings.ToLower(strings.TrimSpace(s))); v {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return v, true
	}
	return "", false
}

// MaxKeyPhrases bounds SentimentResult.KeyPhrases.
const MaxKeyPhrases = 5

// SentimentResult is the structured judgment for one email.
type SentimentResult struct {
	Sentiment    Sentiment    `json:"sentiment"`
	Confidence   float64      `json:"confidence"`
	Emotion      string       `json:"emotion"`
	Reasoning    string       `json:"reasoning"`
	UrgencyLevel UrgencyLevel `json:"urgencyLevel"`
	Tone         string       `json:"tone"`
	KeyPhrases   []string     `json:"keyPhrases"`
}

// ClampConfidence bounds a confidence value to [0,1].
func ClampConfidence(v float64) float64 {
	if v != v || v < 0 { // NaN or negative
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// TruncateKeyPhrases keeps at most MaxKeyPhrases entries and never returns nil.
func TruncateKeyPhrases(phrases []string) []string {
	if len(phrases) > MaxKeyPhrases {
		phrases = phrases[:MaxKeyPhrases]
	}
	out := make([]string, len(phrases))
	copy(out, phrases)
	return out
}

// EmailInput is one email submitted for analysis.
type EmailInput struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Subject *string `json:"subject,omitempty"`
	Sender  string  `json:"sender"`
}

// SubjectText returns the subject or an empty string.
func (e EmailInput) SubjectText() string {
	if e.Subject == nil {
		return ""
	}
	return *e.Subject
}

// EmailSentimentRecord pairs an email with its analysis. Never mutated after creation.
type EmailSentimentRecord struct {
	EmailID   string          `json:"emailId"`
	Subject   string          `json:"subject"`
	Content   string          `json:"content"`
	Sender    string          `json:"sender"`
	Timestamp time.Time       `json:"timestamp"`
	Analysis  SentimentResult `json:"analysis"`
}

// EmotionCount is one entry of StatisticsSummary.TopEmotions.
type EmotionCount struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

// TrendPoint is one (day, sentiment) cell of the trend window.
type TrendPoint struct {
	Date      string    `json:"date"` // YYYY-MM-DD
	Sentiment Sentiment `json:"sentiment"`
	Count     int       `json:"count"`
}

// StatisticsSummary is derived on demand from a set of records.
type StatisticsSummary struct {
	Positive          int            `json:"positive"`
	Neutral           int            `json:"neutral"`
	Negative          int            `json:"negative"`
	Urgent            int            `json:"urgent"`
	Frustrated        int            `json:"frustrated"`
	TotalAnalyzed     int            `json:"totalAnalyzed"`
	AverageConfidence float64        `json:"averageConfidence"`
	TopEmotions       []EmotionCount `json:"topEmotions"`
	TrendData         []TrendPoint   `json:"trendData"`
}

// Count returns the counter for a sentiment.
func (s *StatisticsSummary) Count(sentiment Sentiment) int {
	switch sentiment {
	case SentimentPositive:
		return s.Positive
	case SentimentNeutral:
		return s.Neutral
	case SentimentNegative:
		return s.Negative
	case SentimentUrgent:
		return s.Urgent
	case SentimentFrustrated:
		return s.Frustrated
	}
	return 0
}

// Tally adds one record's sentiment to the counters. Unknown tags count as neutral
// so the counters always sum to TotalAnalyzed.
func (s *StatisticsSummary) Tally(sentiment Sentiment) {
	switch sentiment {
	case SentimentPositive:
		s.Positive++
	case SentimentNegative:
		s.Negative++
	case SentimentUrgent:
		s.Urgent++
	case SentimentFrustrated:
		s.Frustrated++
	default:
		s.Neutral++
	}
}

// InsightReport holds rule-based observations about a batch.
type InsightReport struct {
	Insights        []string               `json:"insights"`
	Recommendations []string               `json:"recommendations"`
	Alerts          []EmailSentimentRecord `json:"alerts"`
	Highlights      []EmailSentimentRecord `json:"highlights"`
}

// UrgentEmail is a record ranked by its urgency score.
type UrgentEmail struct {
	EmailSentimentRecord
	UrgencyScore float64 `json:"urgencyScore"`
}

// Overview combines statistics and insights for the dashboard.
type Overview struct {
	Statistics StatisticsSummary `json:"statistics"`
	InsightReport
	Source string `json:"source"` // request, history, demo
}

// SenderProfile is the per-sender sentiment distribution kept in the graph store.
type SenderProfile struct {
	Sender       string            `json:"sender"`
	Total        int               `json:"total"`
	Counts       map[Sentiment]int `json:"counts"`
	LastSeenAt   *time.Time        `json:"lastSeenAt,omitempty"`
	Dominant     Sentiment         `json:"dominant"`
	NegativeRate float64           `json:"negativeRate"`
}

// NewSenderProfile derives totals, the dominant sentiment and the share of
// negative or frustrated mail from per-sentiment counts.
func NewSenderProfile(sender string, counts map[Sentiment]int, lastSeenAt *time.Time) *SenderProfile {
	p := &SenderProfile{
		Sender:     sender,
		Counts:     make(map[Sentiment]int, len(AllSentiments)),
		LastSeenAt: lastSeenAt,
		Dominant:   SentimentNeutral,
	}
	best := 0
	for _, s := range AllSentiments {
		n := counts[s]
		p.Counts[s] = n
		p.Total += n
		if n > best {
			best = n
			p.Dominant = s
		}
	}
	if p.Total > 0 {
		p.NegativeRate = float64(p.Counts[SentimentNegative]+p.Counts[SentimentFrustrated]) / float64(p.Total)
	}
	return p
}

// Normalize applies the result invariants to a result from an untrusted source.
// Unknown tags become neutral and low.
func (r SentimentResult) Normalize() SentimentResult {
	if s, ok := ParseSentiment(string(r.Sentiment)); ok {
		r.Sentiment = s
	} else {
		r.Sentiment = SentimentNeutral
	}
	if u, ok := ParseUrgencyLevel(string(r.UrgencyLevel)); ok {
		r.UrgencyLevel = u
	} else {
		r.UrgencyLevel = UrgencyLow
	}
	r.Confidence = ClampConfidence(r.Confidence)
	r.KeyPhrases = TruncateKeyPhrases(r.KeyPhrases)
	return r
}
