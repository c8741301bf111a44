package level

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/promptcraft/server/internal/shared/errors"
	"gorm.io/gorm"
)

// ErrLevelNotFound indicates the level does not exist.
var ErrLevelNotFound = fmt.Errorf("%w: level", apperrors.ErrNotFound)

// Repository defines level catalog data access.
type Repository interface {
	List(ctx context.Context, levelType LevelType) ([]Level, error)
	GetByID(ctx context.Context, id string) (*Level, error)
	Create(ctx context.Context, level *Level) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new level repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, levelType LevelType) ([]Level, error) {
	var levels []Level
	q := r.db.WithContext(ctx).Order("number ASC")
	if levelType != "" {
		q = q.Where("type = ?", levelType)
	}
	if err := q.Find(&levels).Error; err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}
	return levels, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Level, error) {
	var level Level
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&level).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLevelNotFound
		}
		return nil, fmt.Errorf("failed to get level: %w", err)
	}
	return &level, nil
}

func (r *repository) Create(ctx context.Context, level *Level) error {
	if err := r.db.WithContext(ctx).Create(level).Error; err != nil {
		return fmt.Errorf("failed to create level: %w", err)
	}
	return nil
}
