package level

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/promptcraft/server/internal/module/hint"
	"github.com/promptcraft/server/internal/module/scoring"
	"gorm.io/gorm"
)

// LevelType selects which scorer evaluates attempts for the level.
type LevelType string

const (
	TypeImage       LevelType = "image"
	TypeCodingLogic LevelType = "codingLogic"
	TypeCopywriting LevelType = "copywriting"
)

// Level is one entry in the level catalog. The catalog is read-only at
// request time; rows are written by seeding.
type Level struct {
	ID           string          `gorm:"type:uuid;primaryKey" json:"id"`
	Number       int             `gorm:"not null;index" json:"number"`
	Type         LevelType       `gorm:"type:varchar(32);not null;index" json:"type"`
	Difficulty   hint.Difficulty `gorm:"type:varchar(16);not null" json:"difficulty"`
	Title        string          `gorm:"type:varchar(255);not null" json:"title"`
	Description  string          `gorm:"type:text" json:"description"`
	PassingScore int             `gorm:"not null;default:70" json:"passingScore"`
	XPReward     int             `gorm:"not null;default:100" json:"xpReward"`

	// Image brief
	TargetImageURL string         `gorm:"type:text" json:"targetImageUrl,omitempty"`
	TargetStyle    string         `gorm:"type:varchar(255)" json:"targetStyle,omitempty"`
	TargetPrompt   string         `gorm:"type:text" json:"-"`
	HiddenKeywords pq.StringArray `gorm:"type:text[]" json:"-"`

	// Coding brief
	FunctionName string             `gorm:"type:varchar(255)" json:"functionName,omitempty"`
	Requirements string             `gorm:"type:text" json:"requirements,omitempty"`
	TestCases    []scoring.TestCase `gorm:"type:jsonb;serializer:json" json:"testCases,omitempty"`

	// Copywriting brief
	Product          string         `gorm:"type:varchar(255)" json:"product,omitempty"`
	TargetAudience   string         `gorm:"type:varchar(255)" json:"targetAudience,omitempty"`
	Tone             string         `gorm:"type:varchar(64)" json:"tone,omitempty"`
	Goal             string         `gorm:"type:text" json:"goal,omitempty"`
	MinWords         int            `json:"minWords,omitempty"`
	MaxWords         int            `json:"maxWords,omitempty"`
	RequiredElements pq.StringArray `gorm:"type:text[]" json:"requiredElements,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the table name for the Level model.
func (Level) TableName() string {
	return "levels"
}

// BeforeCreate generates a UUID if not set.
func (l *Level) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
