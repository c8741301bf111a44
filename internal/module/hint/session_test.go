package hint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticLevels struct {
	difficulty Difficulty
	err        error
}

func (s *staticLevels) LevelDifficulty(ctx context.Context, levelID string) (Difficulty, error) {
	return s.difficulty, s.err
}

func TestSessionCounter_ConsumeUpToBudget(t *testing.T) {
	c := NewSessionCounter()

	for i := 1; i <= 3; i++ {
		used, ok := c.Consume("user-1", "level-1", DifficultyAdvanced)
		require.True(t, ok)
		assert.Equal(t, i, used)
	}

	used, ok := c.Consume("user-1", "level-1", DifficultyAdvanced)
	assert.False(t, ok)
	assert.Equal(t, 3, used)
}

func TestSessionCounter_IsolatesUsersAndLevels(t *testing.T) {
	c := NewSessionCounter()

	c.Consume("user-1", "level-1", DifficultyBeginner)
	c.Consume("user-1", "level-1", DifficultyBeginner)

	assert.Equal(t, 2, c.Count("user-1", "level-1"))
	assert.Equal(t, 0, c.Count("user-1", "level-2"))
	assert.Equal(t, 0, c.Count("user-2", "level-1"))
}

func TestSessionCounter_ResetClearsLevelSession(t *testing.T) {
	c := NewSessionCounter()

	c.Consume("user-1", "level-1", DifficultyBeginner)
	c.Reset("user-1", "level-1")

	assert.Equal(t, 0, c.Count("user-1", "level-1"))
}

func TestService_UseTracksPenaltyState(t *testing.T) {
	svc := NewService(NewSessionCounter(), &staticLevels{difficulty: DifficultyIntermediate}, zap.NewNop())

	state, err := svc.Use(context.Background(), "user-1", "level-1")
	require.NoError(t, err)
	assert.Equal(t, 1, state.HintsUsed)
	assert.Equal(t, 4, state.MaxHints)
	assert.Equal(t, 0, state.TotalPenaltyPercent)
	assert.Equal(t, 5, state.NextHintCost)

	state, err = svc.Use(context.Background(), "user-1", "level-1")
	require.NoError(t, err)
	assert.Equal(t, 2, state.HintsUsed)
	assert.Equal(t, 5, state.TotalPenaltyPercent)
}

func TestService_UseFailsWhenBudgetExhausted(t *testing.T) {
	svc := NewService(NewSessionCounter(), &staticLevels{difficulty: DifficultyAdvanced}, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := svc.Use(context.Background(), "user-1", "level-1")
		require.NoError(t, err)
	}

	_, err := svc.Use(context.Background(), "user-1", "level-1")
	assert.ErrorIs(t, err, ErrNoHintsRemaining)
}
