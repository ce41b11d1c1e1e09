package out

import "context"

// TextGenerator is the outbound port for the remote text-generation service.
// CompleteJSON must request a single JSON object and return the raw body.
type TextGenerator interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Provider() string
	Model() string
}
