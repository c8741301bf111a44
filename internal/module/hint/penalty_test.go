package hint

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxHints(t *testing.T) {
	assert.Equal(t, 5, MaxHints(DifficultyBeginner))
	assert.Equal(t, 4, MaxHints(DifficultyIntermediate))
	assert.Equal(t, 3, MaxHints(DifficultyAdvanced))
	assert.Equal(t, 3, MaxHints(Difficulty("nightmare")))
}

func TestTotalPenaltyPercent_FirstHintFree(t *testing.T) {
	assert.Equal(t, 0, TotalPenaltyPercent(0, DifficultyBeginner))
	assert.Equal(t, 0, TotalPenaltyPercent(1, DifficultyBeginner))
	assert.Equal(t, 5, TotalPenaltyPercent(2, DifficultyBeginner))
	assert.Equal(t, 20, TotalPenaltyPercent(5, DifficultyBeginner))
}

func TestTotalPenaltyPercent_CappedAtBudget(t *testing.T) {
	// Advanced allows 3 hints, extra usage adds nothing.
	assert.Equal(t, 10, TotalPenaltyPercent(3, DifficultyAdvanced))
	assert.Equal(t, 10, TotalPenaltyPercent(7, DifficultyAdvanced))
}

func TestFinalScore_NoHintsReturnsBase(t *testing.T) {
	assert.Equal(t, 83, FinalScore(83, 0, 70, DifficultyBeginner))
}

func TestFinalScore_FirstHintCostsNothing(t *testing.T) {
	for _, score := range []int{0, 35, 70, 100} {
		assert.Equal(t, score, FinalScore(score, 1, 70, DifficultyIntermediate))
	}
}

func TestFinalScore_AppliesFlatPenalty(t *testing.T) {
	// 3 hints = 10% penalty, 60 * 0.9 = 54. Base below passing, no clamp.
	assert.Equal(t, 54, FinalScore(60, 3, 70, DifficultyBeginner))
}

func TestFinalScore_PassProtection(t *testing.T) {
	for _, d := range []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced} {
		for base := 70; base <= 100; base += 5 {
			for used := 0; used <= MaxHints(d); used++ {
				got := FinalScore(base, used, 70, d)
				assert.GreaterOrEqual(t, got, 70,
					fmt.Sprintf("difficulty=%s base=%d hints=%d", d, base, used))
			}
		}
	}
}

func TestFinalScore_ClampsToExactPassingScore(t *testing.T) {
	// 75 * 0.8 = 60 would fail, but the base already passed.
	assert.Equal(t, 70, FinalScore(75, 5, 70, DifficultyBeginner))
}

func TestFinalScore_FailingBaseStaysPenalized(t *testing.T) {
	// 65 never met the passing score, so no protection applies.
	assert.Equal(t, 52, FinalScore(65, 5, 70, DifficultyBeginner))
}

func TestPreviewNext(t *testing.T) {
	p := PreviewNext(0, DifficultyBeginner)
	assert.True(t, p.Available)
	assert.Equal(t, 0, p.NextHintCost)
	assert.Equal(t, 0, p.TotalPenaltyAfter)

	p = PreviewNext(1, DifficultyBeginner)
	assert.True(t, p.Available)
	assert.Equal(t, 5, p.NextHintCost)
	assert.Equal(t, 5, p.TotalPenaltyAfter)

	p = PreviewNext(5, DifficultyBeginner)
	assert.False(t, p.Available)
	assert.Equal(t, 0, p.NextHintCost)
	assert.Equal(t, 20, p.TotalPenaltyAfter)
}
