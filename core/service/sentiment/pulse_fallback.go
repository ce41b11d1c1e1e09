package sentiment

import (
	"strings"

	"pulse_server/core/domain"
)

// =============================================================================
// Keyword Fallback
// =============================================================================

const (
	fallbackConfidence = 0.6
	fallbackReasoning  = "Basic keyword-based analysis"
	defaultTone        = "professional"
)

var (
	positiveWords = []string{"thank", "great", "excellent", "good", "appreciate", "wonderful", "amazing", "perfect"}
	negativeWords = []string{"urgent", "asap", "immediately", "problem", "issue", "error", "wrong", "bad", "terrible"}
	urgentWords   = []string{"urgent", "asap", "immediately", "emergency", "critical", "deadline"}
)

// lexiconHits counts how many lexicon entries appear in text. Matching is by
// substring, so "thanks" hits "thank".
func lexiconHits(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

// FallbackClassify is the deterministic local classifier used when the remote
// call is unavailable. It is a pure function of the content.
func FallbackClassify(content string) domain.SentimentResult {
	text := strings.ToLower(content)
	positive := lexiconHits(text, positiveWords)
	negative := lexiconHits(text, negativeWords)
	urgent := lexiconHits(text, urgentWords)

	result := domain.SentimentResult{
		Sentiment:    domain.SentimentNeutral,
		Confidence:   fallbackConfidence,
		Emotion:      "neutral",
		Reasoning:    fallbackReasoning,
		UrgencyLevel: domain.UrgencyLow,
		Tone:         defaultTone,
		KeyPhrases:   []string{},
	}

	switch {
	case urgent > 0:
		result.Sentiment = domain.SentimentUrgent
		result.Emotion = "stressed"
		result.UrgencyLevel = domain.UrgencyHigh
	case negative > positive:
		result.Sentiment = domain.SentimentNegative
		result.Emotion = "concerned"
		result.UrgencyLevel = domain.UrgencyMedium
		if negative > 2 {
			result.UrgencyLevel = domain.UrgencyHigh
		}
	case positive > 0:
		result.Sentiment = domain.SentimentPositive
		result.Emotion = "happy"
	}

	return result
}
