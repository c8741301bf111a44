package ai

import (
	"context"
	"errors"
)

// Usage reports token accounting for one generation.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Generation is the result of a text generation call.
type Generation struct {
	Text  string `json:"text"`
	Usage *Usage `json:"usage,omitempty"`
}

// ImageGeneration is the result of an image generation call.
type ImageGeneration struct {
	// Data holds the decoded image payload.
	Data        []byte
	ContentType string
}

// Provider is the generative AI collaborator. Implementations are
// constructor-injected so callers can be tested without network access.
// Failures and timeouts are recoverable: callers degrade to deterministic
// fallbacks rather than surfacing provider errors.
type Provider interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (*Generation, error)
	GenerateImage(ctx context.Context, prompt string) (*ImageGeneration, error)
}

var (
	// ErrProviderUnavailable indicates the provider call failed or the
	// circuit is open.
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	// ErrEmptyResponse indicates the provider returned no content.
	ErrEmptyResponse = errors.New("ai provider returned empty response")
)
