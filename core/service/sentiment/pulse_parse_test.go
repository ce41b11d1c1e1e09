package sentiment

import (
	"testing"

	"pulse_server/core/domain"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		sentiment  domain.Sentiment
		confidence float64
		urgency    domain.UrgencyLevel
		emotion    string
		reasoning  string
		tone       string
		phrases    int
	}{
		{
			name:       "complete response",
			raw:        `{"sentiment":"positive","confidence":0.9,"emotion":"grateful","reasoning":"Thanks","urgencyLevel":"low","tone":"polite","keyPhrases":["thank you"]}`,
			sentiment:  domain.SentimentPositive,
			confidence: 0.9,
			urgency:    domain.UrgencyLow,
			emotion:    "grateful",
			reasoning:  "Thanks",
			tone:       "polite",
			phrases:    1,
		},
		{
			name:       "fenced reply",
			raw:        "```json\n{\"sentiment\":\"frustrated\",\"confidence\":0.8,\"urgencyLevel\":\"high\"}\n```",
			sentiment:  domain.SentimentFrustrated,
			confidence: 0.8,
			urgency:    domain.UrgencyHigh,
			emotion:    "neutral",
			reasoning:  "Analysis completed",
			tone:       "professional",
		},
		{
			name:       "bare fence",
			raw:        "```\n{\"sentiment\":\"negative\"}\n```",
			sentiment:  domain.SentimentNegative,
			confidence: 0.5,
			urgency:    domain.UrgencyLow,
			emotion:    "neutral",
			reasoning:  "Analysis completed",
			tone:       "professional",
		},
		{
			name:       "empty object uses defaults",
			raw:        `{}`,
			sentiment:  domain.SentimentNeutral,
			confidence: 0.5,
			urgency:    domain.UrgencyLow,
			emotion:    "neutral",
			reasoning:  "Analysis completed",
			tone:       "professional",
			phrases:    0,
		},
		{
			name:       "confidence above range clamps to one",
			raw:        `{"sentiment":"urgent","confidence":1.5}`,
			sentiment:  domain.SentimentUrgent,
			confidence: 1,
			urgency:    domain.UrgencyLow,
			emotion:    "neutral",
			reasoning:  "Analysis completed",
			tone:       "professional",
		},
		{
			name:       "negative confidence clamps to zero",
			raw:        `{"confidence":-0.2}`,
			sentiment:  domain.SentimentNeutral,
			confidence: 0,
			urgency:    domain.UrgencyLow,
			emotion:    "neutral",
			reasoning:  "Analysis completed",
			tone:       "professional",
		},
		{
			name:       "present but far out of range is clamped not defaulted",
			raw:        `{"confidence":-5}`,
			sentiment:  domain.SentimentNeutral,
			confidence: 0,
			urgency:    domain.UrgencyLow,
			emotion:    "neutral",
			reasoning:  "Analysis completed",
			tone:       "professional",
		},
		{
			name:       "unrecognized tags map to defaults",
			raw:        `{"sentiment":"ecstatic","urgencyLevel":"extreme","confidence":0.7}`,
			sentiment:  domain.SentimentNeutral,
			confidence: 0.7,
			urgency:    domain.UrgencyLow,
			emotion:    "neutral",
			reasoning:  "Analysis completed",
			tone:       "professional",
		},
		{
			name:       "tags are case insensitive",
			raw:        `{"sentiment":"Frustrated","urgencyLevel":"HIGH"}`,
			sentiment:  domain.SentimentFrustrated,
			confidence: 0.5,
			urgency:    domain.UrgencyHigh,
			emotion:    "neutral",
			reasoning:  "Analysis completed",
			tone:       "professional",
		},
		{
			name:       "wrong field types use defaults",
			raw:        `{"sentiment":3,"confidence":"high","emotion":false,"keyPhrases":"urgent"}`,
			sentiment:  domain.SentimentNeutral,
			confidence: 0.5,
			urgency:    domain.UrgencyLow,
			emotion:    "neutral",
			reasoning:  "Analysis completed",
			tone:       "professional",
		},
		{
			name:       "key phrases truncated to five",
			raw:        `{"keyPhrases":["a","b","c","d","e","f","g"]}`,
			sentiment:  domain.SentimentNeutral,
			confidence: 0.5,
			urgency:    domain.UrgencyLow,
			emotion:    "neutral",
			reasoning:  "Analysis completed",
			tone:       "professional",
			phrases:    5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResult(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Sentiment != tt.sentiment {
				t.Errorf("expected sentiment %q, got %q", tt.sentiment, got.Sentiment)
			}
			if got.Confidence != tt.confidence {
				t.Errorf("expected confidence %v, got %v", tt.confidence, got.Confidence)
			}
			if got.UrgencyLevel != tt.urgency {
				t.Errorf("expected urgency %q, got %q", tt.urgency, got.UrgencyLevel)
			}
			if got.Emotion != tt.emotion {
				t.Errorf("expected emotion %q, got %q", tt.emotion, got.Emotion)
			}
			if got.Reasoning != tt.reasoning {
				t.Errorf("expected reasoning %q, got %q", tt.reasoning, got.Reasoning)
			}
			if got.Tone != tt.tone {
				t.Errorf("expected tone %q, got %q", tt.tone, got.Tone)
			}
			if got.KeyPhrases == nil {
				t.Errorf("expected non-nil key phrases")
			}
			if len(got.KeyPhrases) != tt.phrases {
				t.Errorf("expected %d key phrases, got %d", tt.phrases, len(got.KeyPhrases))
			}
		})
	}
}

func TestParseResult_KeepsFirstFivePhrases(t *testing.T) {
	got, err := parseResult(`{"keyPhrases":["one","two","three","four","five","six"]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"one", "two", "three", "four", "five"}
	for i := range want {
		if got.KeyPhrases[i] != want[i] {
			t.Errorf("expected phrase %d to be %q, got %q", i, want[i], got.KeyPhrases[i])
		}
	}
}

func TestParseResult_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty body", ""},
		{"plain text", "The email is positive."},
		{"array", `[{"sentiment":"positive"}]`},
		{"string", `"positive"`},
		{"null", `null`},
		{"truncated object", `{"sentiment":"positive"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseResult(tt.raw); err == nil {
				t.Errorf("expected error for %q", tt.raw)
			}
		})
	}
}
