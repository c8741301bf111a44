package quota

import (
	"time"

	"github.com/google/uuid"
)

// QuotaType identifies one independently metered usage counter.
type QuotaType string

const (
	QuotaTextCalls         QuotaType = "textCalls"
	QuotaImageCalls        QuotaType = "imageCalls"
	QuotaAudioSummaries    QuotaType = "audioSummaries"
	QuotaDailyQuests       QuotaType = "dailyQuests"
	QuotaImageLevels       QuotaType = "imageLevels"
	QuotaCodingLogicLevels QuotaType = "codingLogicLevels"
	QuotaCopywritingLevels QuotaType = "copywritingLevels"
)

// AllQuotaTypes lists every metered counter, in display order.
var AllQuotaTypes = []QuotaType{
	QuotaTextCalls,
	QuotaImageCalls,
	QuotaAudioSummaries,
	QuotaDailyQuests,
	QuotaImageLevels,
	QuotaCodingLogicLevels,
	QuotaCopywritingLevels,
}

// IsValid checks if the quota type is one of the metered counters.
func (q QuotaType) IsValid() bool {
	switch q {
	case QuotaTextCalls, QuotaImageCalls, QuotaAudioSummaries, QuotaDailyQuests,
		QuotaImageLevels, QuotaCodingLogicLevels, QuotaCopywritingLevels:
		return true
	default:
		return false
	}
}

// Tier selects which limit table applies to a usage plan.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// IsValid checks if the tier is known.
func (t Tier) IsValid() bool {
	return t == TierFree || t == TierPro
}

// CounterMap maps quota types to counter values. Stored as a JSON column.
type CounterMap map[QuotaType]int64

const millisPerDay int64 = 86_400_000

// UsagePlan tracks one user's metered usage for one app over the current
// billing period. Created lazily on first quota check; deleted only by full
// account erasure.
type UsagePlan struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      string     `json:"user_id" gorm:"not null;uniqueIndex:idx_usage_plans_user_app"`
	AppID       string     `json:"app_id" gorm:"not null;uniqueIndex:idx_usage_plans_user_app"`
	Tier        Tier       `json:"tier" gorm:"not null;default:free"`
	Used        CounterMap `json:"used" gorm:"type:jsonb;serializer:json;not null"`
	PeriodStart int64      `json:"period_start" gorm:"not null"` // epoch ms
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the database table name.
func (UsagePlan) TableName() string {
	return "usage_plans"
}

// StaleAt reports whether the plan's billing period has elapsed at the given
// instant. The period length is the day count of now's calendar month, in
// milliseconds.
func (p *UsagePlan) StaleAt(now time.Time) bool {
	return now.UnixMilli()-p.PeriodStart >= int64(daysInMonth(now))*millisPerDay
}

// daysInMonth returns the number of days in t's calendar month.
func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// AppLimits holds the per-tier quota limits for one app. Read-only from the
// metering perspective.
type AppLimits struct {
	AppID      string     `json:"app_id" gorm:"primaryKey"`
	FreeLimits CounterMap `json:"free_limits" gorm:"type:jsonb;serializer:json;not null"`
	ProLimits  CounterMap `json:"pro_limits" gorm:"type:jsonb;serializer:json;not null"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName returns the database table name.
func (AppLimits) TableName() string {
	return "app_limits"
}

// LimitFor resolves the limit for a tier and quota type. A missing entry
// means the feature is disabled for that tier (limit 0).
func (a *AppLimits) LimitFor(tier Tier, quotaType QuotaType) int64 {
	var limits CounterMap
	switch tier {
	case TierPro:
		limits = a.ProLimits
	default:
		limits = a.FreeLimits
	}
	return limits[quotaType]
}
