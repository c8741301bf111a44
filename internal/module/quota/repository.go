package quota

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for quota data access.
//
// MutatePlan is the single write path for usage plans: implementations must
// run the callback against a copy of the row that no concurrent MutatePlan
// call can observe mid-flight (row lock or equivalent), so the meter's
// check-and-increment behaves as if serialized per (userID, appID).
type Repository interface {
	GetAppLimits(ctx context.Context, appID string) (*AppLimits, error)
	GetPlan(ctx context.Context, userID, appID string) (*UsagePlan, error)
	// MutatePlan loads (or lazily creates) the plan for (userID, appID) under
	// a write lock and applies fn. When fn returns true the mutated plan is
	// persisted; when false nothing is written.
	MutatePlan(ctx context.Context, userID, appID string, periodStart int64, fn func(plan *UsagePlan) (mutated bool, err error)) (*UsagePlan, error)
	SetTier(ctx context.Context, userID, appID string, tier Tier) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new quota repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetAppLimits(ctx context.Context, appID string) (*AppLimits, error) {
	var limits AppLimits
	err := r.db.WithContext(ctx).First(&limits, "app_id = ?", appID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppNotFound
		}
		return nil, fmt.Errorf("get app limits: %w", err)
	}
	return &limits, nil
}

func (r *repository) GetPlan(ctx context.Context, userID, appID string) (*UsagePlan, error) {
	var plan UsagePlan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND app_id = ?", userID, appID).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("get usage plan: %w", err)
	}
	return &plan, nil
}

func (r *repository) MutatePlan(ctx context.Context, userID, appID string, periodStart int64, fn func(plan *UsagePlan) (bool, error)) (*UsagePlan, error) {
	var result *UsagePlan

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Idempotent lazy creation keyed on the unique (user_id, app_id)
		// index: concurrent callers cannot create two plans.
		seed := &UsagePlan{
			UserID:      userID,
			AppID:       appID,
			Tier:        TierFree,
			Used:        CounterMap{},
			PeriodStart: periodStart,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "app_id"}},
			DoNothing: true,
		}).Create(seed).Error; err != nil {
			return fmt.Errorf("create usage plan: %w", err)
		}

		var plan UsagePlan
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND app_id = ?", userID, appID).
			First(&plan).Error; err != nil {
			return fmt.Errorf("lock usage plan: %w", err)
		}

		mutated, err := fn(&plan)
		if err != nil {
			return err
		}
		if mutated {
			if err := tx.Save(&plan).Error; err != nil {
				return fmt.Errorf("save usage plan: %w", err)
			}
		}

		result = &plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) SetTier(ctx context.Context, userID, appID string, tier Tier) error {
	_, err := r.MutatePlan(ctx, userID, appID, nowMillis(), func(plan *UsagePlan) (bool, error) {
		if plan.Tier == tier {
			return false, nil
		}
		plan.Tier = tier
		return true, nil
	})
	return err
}
