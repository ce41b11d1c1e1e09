package sentiment

import (
	"time"

	"pulse_server/core/domain"
)

// DemoRecords returns sample records for users with no stored analyses.
func DemoRecords(now time.Time) []domain.EmailSentimentRecord {
	return []domain.EmailSentimentRecord{
		{
			EmailID:   "demo-1",
			Subject:   "Thank you for the excellent support!",
			Content:   "Hi team, I wanted to thank you for the excellent support during our migration. Everything went perfectly.",
			Sender:    "sarah.johnson@acme.example",
			Timestamp: now.Add(-2 * time.Hour),
			Analysis: domain.SentimentResult{
				Sentiment:    domain.SentimentPositive,
				Confidence:   0.92,
				Emotion:      "grateful",
				Reasoning:    "Explicit thanks and praise for the support received",
				UrgencyLevel: domain.UrgencyLow,
				Tone:         "appreciative",
				KeyPhrases:   []string{"thank you", "excellent support", "went perfectly"},
			},
		},
		{
			EmailID:   "demo-2",
			Subject:   "URGENT: Production server down",
			Content:   "Our production server has been down for 30 minutes. Customers cannot check out. We need this fixed immediately!",
			Sender:    "ops@retailer.example",
			Timestamp: now.Add(-5 * time.Hour),
			Analysis: domain.SentimentResult{
				Sentiment:    domain.SentimentUrgent,
				Confidence:   0.95,
				Emotion:      "stressed",
				Reasoning:    "Outage affecting customers with an explicit demand for immediate action",
				UrgencyLevel: domain.UrgencyHigh,
				Tone:         "demanding",
				KeyPhrases:   []string{"server down", "customers cannot check out", "fixed immediately"},
			},
		},
		{
			EmailID:   "demo-3",
			Subject:   "Still waiting on my refund",
			Content:   "This is the third time I am writing about the refund. Nobody has answered and I am running out of patience.",
			Sender:    "m.chen@mail.example",
			Timestamp: now.Add(-26 * time.Hour),
			Analysis: domain.SentimentResult{
				Sentiment:    domain.SentimentFrustrated,
				Confidence:   0.88,
				Emotion:      "annoyed",
				Reasoning:    "Repeated follow-up without a response",
				UrgencyLevel: domain.UrgencyMedium,
				Tone:         "exasperated",
				KeyPhrases:   []string{"third time", "nobody has answered", "running out of patience"},
			},
		},
		{
			EmailID:   "demo-4",
			Subject:   "Meeting notes from Tuesday",
			Content:   "Attached are the notes from Tuesday's planning meeting. Let me know if anything is missing.",
			Sender:    "david.kim@acme.example",
			Timestamp: now.Add(-50 * time.Hour),
			Analysis: domain.SentimentResult{
				Sentiment:    domain.SentimentNeutral,
				Confidence:   0.81,
				Emotion:      "neutral",
				Reasoning:    "Informational message without emotional language",
				UrgencyLevel: domain.UrgencyLow,
				Tone:         "professional",
				KeyPhrases:   []string{"meeting notes", "planning meeting"},
			},
		},
		{
			EmailID:   "demo-5",
			Subject:   "Issue with the latest invoice",
			Content:   "The latest invoice has the wrong amount and a billing error on line 4. Please correct it before Friday.",
			Sender:    "accounts@vendor.example",
			Timestamp: now.Add(-74 * time.Hour),
			Analysis: domain.SentimentResult{
				Sentiment:    domain.SentimentNegative,
				Confidence:   0.84,
				Emotion:      "concerned",
				Reasoning:    "Reports an incorrect invoice and requests a correction",
				UrgencyLevel: domain.UrgencyMedium,
				Tone:         "formal",
				KeyPhrases:   []string{"wrong amount", "billing error", "before Friday"},
			},
		},
	}
}
