package sentiment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"pulse_server/core/domain"
)

// Defaults applied to absent or invalid response fields.
const (
	defaultConfidence = 0.5
	defaultEmotion    = "neutral"
	defaultReasoning  = "Analysis completed"
)

// ErrNotObject is returned when the model answers with anything but one JSON object.
var ErrNotObject = errors.New("sentiment: response is not a JSON object")

// parseResult validates an untyped model response field by field.
func parseResult(raw string) (domain.SentimentResult, error) {
	var doc any
	if err := json.Unmarshal([]byte(stripFences(raw)), &doc); err != nil {
		return domain.SentimentResult{}, fmt.Errorf("sentiment: decode response: %w", err)
	}
	fields, ok := doc.(map[string]any)
	if !ok {
		return domain.SentimentResult{}, ErrNotObject
	}

	result := domain.SentimentResult{
		Sentiment:    domain.SentimentNeutral,
		Confidence:   defaultConfidence,
		Emotion:      stringField(fields, "emotion", defaultEmotion),
		Reasoning:    stringField(fields, "reasoning", defaultReasoning),
		UrgencyLevel: domain.UrgencyLow,
		Tone:         stringField(fields, "tone", defaultTone),
	}

	if s, ok := fields["sentiment"].(string); ok {
		if v, ok := domain.ParseSentiment(s); ok {
			result.Sentiment = v
		}
	}
	if s, ok := fields["urgencyLevel"].(string); ok {
		if v, ok := domain.ParseUrgencyLevel(s); ok {
			result.UrgencyLevel = v
		}
	}
	if v, ok := numberField(fields["confidence"]); ok {
		result.Confidence = v
	}
	result.Confidence = domain.ClampConfidence(result.Confidence)
	result.KeyPhrases = domain.TruncateKeyPhrases(stringList(fields["keyPhrases"]))

	return result, nil
}

// stripFences removes a markdown code fence around the reply, if present.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func stringField(fields map[string]any, key, def string) string {
	if s, ok := fields[key].(string); ok {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return def
}

// numberField accepts JSON numbers and numeric strings.
func numberField(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
