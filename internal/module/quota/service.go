package quota

import (
	"context"
	"sync"
	"time"

	"github.com/promptcraft/server/internal/utils/metrics"
	"go.uber.org/zap"
)

// Decision is the outcome of a quota check. A deny is a normal outcome, not
// an error.
type Decision struct {
	Allowed   bool  `json:"allowed"`
	Remaining int64 `json:"remaining"`
	Limit     int64 `json:"limit"`
	Tier      Tier  `json:"tier"`
}

// TypeStatus describes one counter for the usage screen.
type TypeStatus struct {
	QuotaType QuotaType `json:"quota_type"`
	Used      int64     `json:"used"`
	Limit     int64     `json:"limit"`
}

// Status is the read-only usage view for one (user, app) pair.
type Status struct {
	Tier        Tier         `json:"tier"`
	PeriodStart int64        `json:"period_start"`
	Counters    []TypeStatus `json:"counters"`
}

// Service implements the quota meter.
//
// The underlying store serializes conflicting writes per plan row (the
// repository's MutatePlan runs under a row lock); the keyed mutex in front of
// it additionally serializes in-process callers so two concurrent checks for
// the same (user, app) can never both observe usage below the limit when only
// one increment fits.
type Service struct {
	repo    Repository
	locks   keyedMutex
	logger  *zap.Logger
	metrics *metrics.Metrics

	now func() time.Time // injectable for tests
}

// NewService creates a new quota service.
func NewService(repo Repository, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// CheckAndConsume atomically checks the counter for (userID, appID, quotaType)
// against the tier limit and increments it when the call fits. Exactly one
// counter is touched per call; denied checks never write.
func (s *Service) CheckAndConsume(ctx context.Context, userID, appID string, quotaType QuotaType) (*Decision, error) {
	if userID == "" || appID == "" {
		return nil, ErrInvalidIdentifier
	}
	if !quotaType.IsValid() {
		return nil, ErrInvalidQuotaType
	}

	limits, err := s.repo.GetAppLimits(ctx, appID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(userID + "\x00" + appID)
	defer unlock()

	now := s.now()
	var decision *Decision

	_, err = s.repo.MutatePlan(ctx, userID, appID, now.UnixMilli(), func(plan *UsagePlan) (bool, error) {
		limit := limits.LimitFor(plan.Tier, quotaType)

		if plan.StaleAt(now) {
			// New billing period: zero every counter, the incrementing one
			// starts at 1.
			plan.Used = CounterMap{quotaType: 1}
			plan.PeriodStart = now.UnixMilli()
			decision = &Decision{
				Allowed:   true,
				Remaining: maxZero(limit - 1),
				Limit:     limit,
				Tier:      plan.Tier,
			}
			return true, nil
		}

		used := plan.Used[quotaType]
		if used >= limit {
			decision = &Decision{
				Allowed:   false,
				Remaining: 0,
				Limit:     limit,
				Tier:      plan.Tier,
			}
			return false, nil
		}

		if plan.Used == nil {
			plan.Used = CounterMap{}
		}
		plan.Used[quotaType] = used + 1
		decision = &Decision{
			Allowed:   true,
			Remaining: maxZero(limit - used - 1),
			Limit:     limit,
			Tier:      plan.Tier,
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.recordCheck(quotaType, decision.Allowed)
	return decision, nil
}

// Status returns the current usage view. A user with no plan yet reads as
// zero usage on the free tier.
func (s *Service) Status(ctx context.Context, userID, appID string) (*Status, error) {
	if userID == "" || appID == "" {
		return nil, ErrInvalidIdentifier
	}

	limits, err := s.repo.GetAppLimits(ctx, appID)
	if err != nil {
		return nil, err
	}

	tier := TierFree
	var used CounterMap
	var periodStart int64

	plan, err := s.repo.GetPlan(ctx, userID, appID)
	switch err {
	case nil:
		tier = plan.Tier
		used = plan.Used
		periodStart = plan.PeriodStart
	case ErrPlanNotFound:
		// lazily created on first check; report zero usage
	default:
		return nil, err
	}

	status := &Status{Tier: tier, PeriodStart: periodStart}
	for _, qt := range AllQuotaTypes {
		status.Counters = append(status.Counters, TypeStatus{
			QuotaType: qt,
			Used:      used[qt],
			Limit:     limits.LimitFor(tier, qt),
		})
	}
	return status, nil
}

// SetTier updates the tier of a user's plan, creating the plan if needed.
func (s *Service) SetTier(ctx context.Context, userID, appID string, tier Tier) error {
	if userID == "" || appID == "" {
		return ErrInvalidIdentifier
	}

	unlock := s.locks.lock(userID + "\x00" + appID)
	defer unlock()

	if err := s.repo.SetTier(ctx, userID, appID, tier); err != nil {
		return err
	}

	s.logger.Info("plan tier updated",
		zap.String("user_id", userID),
		zap.String("app_id", appID),
		zap.String("tier", string(tier)),
	)
	return nil
}

func (s *Service) recordCheck(quotaType QuotaType, allowed bool) {
	if s.metrics == nil {
		return
	}
	outcome := "allowed"
	if !allowed {
		outcome = "denied"
	}
	s.metrics.QuotaChecksTotal.WithLabelValues(string(quotaType), outcome).Inc()
}

func maxZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// keyedMutex serializes callers per string key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
