package generation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/promptcraft/server/internal/module/ai"
	"github.com/promptcraft/server/internal/module/quota"
	"github.com/promptcraft/server/internal/shared/storage"
	"go.uber.org/zap"
)

// QuotaGate meters generation calls.
type QuotaGate interface {
	CheckAndConsume(ctx context.Context, userID, appID string, quotaType quota.QuotaType) (*quota.Decision, error)
}

// TextResult is the outcome of a text generation request.
type TextResult struct {
	QuotaExceeded bool      `json:"quotaExceeded"`
	Remaining     int64     `json:"remaining"`
	Text          string    `json:"text,omitempty"`
	Usage         *ai.Usage `json:"usage,omitempty"`
}

// ImageResult is the outcome of an image generation request.
type ImageResult struct {
	QuotaExceeded bool   `json:"quotaExceeded"`
	Remaining     int64  `json:"remaining"`
	ImageURL      string `json:"imageUrl,omitempty"`
}

// Service runs metered AI generations. Unlike the scorers it surfaces
// provider failures to the caller: there is no meaningful fallback for a
// generation the user asked for.
type Service struct {
	quota    QuotaGate
	provider ai.Provider
	store    storage.ObjectStore
	appID    string
	logger   *zap.Logger
}

// NewService creates a new generation service.
func NewService(quotaGate QuotaGate, provider ai.Provider, store storage.ObjectStore, appID string, logger *zap.Logger) *Service {
	return &Service{
		quota:    quotaGate,
		provider: provider,
		store:    store,
		appID:    appID,
		logger:   logger,
	}
}

// GenerateText produces text from the user's prompt, consuming one textCalls
// unit.
func (s *Service) GenerateText(ctx context.Context, userID, systemPrompt, prompt string) (*TextResult, error) {
	decision, err := s.quota.CheckAndConsume(ctx, userID, s.appID, quota.QuotaTextCalls)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return &TextResult{QuotaExceeded: true, Remaining: decision.Remaining}, nil
	}

	gen, err := s.provider.GenerateText(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrProviderUnavailable, err)
	}

	return &TextResult{
		Remaining: decision.Remaining,
		Text:      gen.Text,
		Usage:     gen.Usage,
	}, nil
}

// GenerateImage produces an image, stores it and returns its https URL,
// consuming one imageCalls unit.
func (s *Service) GenerateImage(ctx context.Context, userID, prompt string) (*ImageResult, error) {
	decision, err := s.quota.CheckAndConsume(ctx, userID, s.appID, quota.QuotaImageCalls)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return &ImageResult{QuotaExceeded: true, Remaining: decision.Remaining}, nil
	}

	img, err := s.provider.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrProviderUnavailable, err)
	}

	key := fmt.Sprintf("generated/%s/%s.png", userID, uuid.New().String())
	if err := s.store.Store(ctx, key, img.Data, img.ContentType); err != nil {
		return nil, fmt.Errorf("store generated image: %w", err)
	}

	url := s.store.URL(key)
	s.logger.Debug("image generated",
		zap.String("user_id", userID),
		zap.String("key", key))

	return &ImageResult{
		Remaining: decision.Remaining,
		ImageURL:  url,
	}, nil
}
