package attempt

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/promptcraft/server/internal/module/scoring"
	"gorm.io/gorm"
)

// LevelAttempt is one scored submission for a level. Attempts are immutable
// once created; new submissions supersede old ones with a higher number.
type LevelAttempt struct {
	ID            string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string `gorm:"type:varchar(128);not null;uniqueIndex:idx_attempt_user_level_number,priority:1" json:"userId"`
	LevelID       string `gorm:"type:uuid;not null;uniqueIndex:idx_attempt_user_level_number,priority:2" json:"levelId"`
	AttemptNumber int    `gorm:"not null;uniqueIndex:idx_attempt_user_level_number,priority:3" json:"attemptNumber"`

	Score     int  `gorm:"not null" json:"score"`
	BaseScore int  `gorm:"not null" json:"baseScore"`
	HintsUsed int  `gorm:"not null;default:0" json:"hintsUsed"`
	Passed    bool `gorm:"not null;default:false" json:"passed"`

	Feedback        pq.StringArray `gorm:"type:text[]" json:"feedback"`
	KeywordsMatched pq.StringArray `gorm:"type:text[]" json:"keywordsMatched"`

	// Exactly one of the three artifacts is set.
	ImageURL string `gorm:"type:text" json:"imageUrl,omitempty"`
	Code     string `gorm:"type:text" json:"code,omitempty"`
	Copy     string `gorm:"type:text" json:"copy,omitempty"`

	TestResults []scoring.CodeTestResult `gorm:"type:jsonb;serializer:json" json:"testResults,omitempty"`
	Source      scoring.Source           `gorm:"type:varchar(16)" json:"source"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the table name for the LevelAttempt model.
func (LevelAttempt) TableName() string {
	return "level_attempts"
}

// BeforeCreate generates a UUID if not set.
func (a *LevelAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
