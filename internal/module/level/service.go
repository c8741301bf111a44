package level

import (
	"context"

	"github.com/promptcraft/server/internal/module/hint"
	"go.uber.org/zap"
)

// Service exposes the level catalog.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new level service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// List returns catalog levels, optionally filtered by type.
func (s *Service) List(ctx context.Context, levelType LevelType) ([]Level, error) {
	return s.repo.List(ctx, levelType)
}

// Get returns one level by id.
func (s *Service) Get(ctx context.Context, id string) (*Level, error) {
	return s.repo.GetByID(ctx, id)
}

// LevelDifficulty resolves a level's difficulty tier for the hint engine.
func (s *Service) LevelDifficulty(ctx context.Context, levelID string) (hint.Difficulty, error) {
	lvl, err := s.repo.GetByID(ctx, levelID)
	if err != nil {
		return "", err
	}
	return lvl.Difficulty, nil
}
