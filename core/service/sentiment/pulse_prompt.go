package sentiment

import (
	"fmt"
	"unicode/utf8"
)

// systemPrompt is sent with every remote classification.
const systemPrompt = "You are an expert sentiment analysis AI specialized in business email communication. " +
	"Analyze the emotional tone, urgency, and intent of emails. Always respond with valid JSON only."

// maxPromptContent bounds how much of the body is sent to the model.
const maxPromptContent = 2000

const noSubject = "(no subject)"

const promptTemplate = `Analyze the sentiment of this email.

Subject: %s
Content: %s

Return a JSON object with exactly these fields:
- "sentiment": one of "positive", "neutral", "negative", "urgent", "frustrated"
- "confidence": a number between 0 and 1
- "emotion": a single word for the dominant emotion (for example "grateful", "stressed", "annoyed", "excited")
- "reasoning": one short sentence explaining the classification
- "urgencyLevel": one of "low", "medium", "high"
- "tone": a single word for the register (for example "professional", "casual", "polite", "demanding")
- "keyPhrases": up to 5 short phrases from the email that drove the classification

Consider:
- word choice and emotional language
- punctuation and emphasis such as exclamation marks or ALL CAPS
- the context and purpose of the message
- whether the register is professional or personal
- urgency indicators and explicit requests for action or deadlines`

// buildPrompt renders the user message for one email.
func buildPrompt(content string, subject *string) string {
	subj := noSubject
	if subject != nil && *subject != "" {
		subj = *subject
	}
	return fmt.Sprintf(promptTemplate, subj, truncateRunes(content, maxPromptContent))
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
