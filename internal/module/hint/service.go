package hint

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrNoHintsRemaining indicates the session already consumed the tier's
// full hint budget.
var ErrNoHintsRemaining = errors.New("no hints remaining for this level")

// LevelSource resolves a level's difficulty tier. The level catalog
// implements it.
type LevelSource interface {
	LevelDifficulty(ctx context.Context, levelID string) (Difficulty, error)
}

// State is the hint session view returned to the client.
type State struct {
	LevelID             string `json:"levelId"`
	HintsUsed           int    `json:"hintsUsed"`
	MaxHints            int    `json:"maxHints"`
	Available           bool   `json:"available"`
	NextHintCost        int    `json:"nextHintCost"`
	TotalPenaltyPercent int    `json:"totalPenaltyPercent"`
}

// Service manages per-session hint usage against the penalty rules.
type Service struct {
	counter *SessionCounter
	levels  LevelSource
	logger  *zap.Logger
}

// NewService creates a new hint service.
func NewService(counter *SessionCounter, levels LevelSource, logger *zap.Logger) *Service {
	return &Service{
		counter: counter,
		levels:  levels,
		logger:  logger,
	}
}

// Use consumes one hint for the session and returns the updated state.
func (s *Service) Use(ctx context.Context, userID, levelID string) (*State, error) {
	difficulty, err := s.levels.LevelDifficulty(ctx, levelID)
	if err != nil {
		return nil, err
	}

	used, ok := s.counter.Consume(userID, levelID, difficulty)
	if !ok {
		return nil, ErrNoHintsRemaining
	}

	s.logger.Debug("hint consumed",
		zap.String("user_id", userID),
		zap.String("level_id", levelID),
		zap.Int("hints_used", used),
	)
	return s.state(levelID, used, difficulty), nil
}

// Preview reports the marginal cost of the next hint without consuming it.
func (s *Service) Preview(ctx context.Context, userID, levelID string) (*State, error) {
	difficulty, err := s.levels.LevelDifficulty(ctx, levelID)
	if err != nil {
		return nil, err
	}
	return s.state(levelID, s.counter.Count(userID, levelID), difficulty), nil
}

// Reset clears the session counter when the user restarts the level.
func (s *Service) Reset(userID, levelID string) {
	s.counter.Reset(userID, levelID)
}

// HintsUsed returns the current session count for score calculation.
func (s *Service) HintsUsed(userID, levelID string) int {
	return s.counter.Count(userID, levelID)
}

func (s *Service) state(levelID string, used int, d Difficulty) *State {
	preview := PreviewNext(used, d)
	return &State{
		LevelID:             levelID,
		HintsUsed:           used,
		MaxHints:            preview.MaxHints,
		Available:           preview.Available,
		NextHintCost:        preview.NextHintCost,
		TotalPenaltyPercent: TotalPenaltyPercent(used, d),
	}
}
