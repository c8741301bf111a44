package hint

import "math"

// Difficulty tiers control how many hints a level offers.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// flatPenaltyPercent is the cost of every hint after the first.
const flatPenaltyPercent = 5

var maxHintsByDifficulty = map[Difficulty]int{
	DifficultyBeginner:     5,
	DifficultyIntermediate: 4,
	DifficultyAdvanced:     3,
}

// MaxHints returns the hint budget for a difficulty tier. Unknown tiers get
// the advanced budget.
func MaxHints(d Difficulty) int {
	if n, ok := maxHintsByDifficulty[d]; ok {
		return n
	}
	return maxHintsByDifficulty[DifficultyAdvanced]
}

// HintCost returns the penalty percent of the nth hint (1-based). The first
// hint is free, every later hint costs a flat percentage.
func HintCost(n int) int {
	if n <= 1 {
		return 0
	}
	return flatPenaltyPercent
}

// TotalPenaltyPercent sums the cost of the hints used so far, capped at the
// tier's hint budget.
func TotalPenaltyPercent(hintsUsed int, d Difficulty) int {
	if hintsUsed < 0 {
		hintsUsed = 0
	}
	if max := MaxHints(d); hintsUsed > max {
		hintsUsed = max
	}
	total := 0
	for n := 1; n <= hintsUsed; n++ {
		total += HintCost(n)
	}
	return total
}

// FinalScore applies the hint penalty to a base score. A score that met the
// passing threshold before penalties is clamped back up to exactly the
// passing score, so hint usage can never turn an earned pass into a fail.
// The result is rounded to the nearest integer and never negative.
func FinalScore(baseScore, hintsUsed, passingScore int, d Difficulty) int {
	if hintsUsed <= 0 {
		return baseScore
	}

	penalty := TotalPenaltyPercent(hintsUsed, d)
	penalized := float64(baseScore) * (100 - float64(penalty)) / 100

	if baseScore >= passingScore && penalized < float64(passingScore) {
		return passingScore
	}

	final := int(math.Round(penalized))
	if final < 0 {
		return 0
	}
	return final
}

// Preview describes the marginal cost of taking one more hint. It is pure
// and never mutates any counter.
type Preview struct {
	HintsUsed         int  `json:"hintsUsed"`
	MaxHints          int  `json:"maxHints"`
	Available         bool `json:"available"`
	NextHintCost      int  `json:"nextHintCost"`
	TotalPenaltyAfter int  `json:"totalPenaltyAfter"`
}

// PreviewNext reports what taking the next hint would cost given the hints
// used so far.
func PreviewNext(hintsUsed int, d Difficulty) Preview {
	max := MaxHints(d)
	if hintsUsed < 0 {
		hintsUsed = 0
	}

	p := Preview{
		HintsUsed: hintsUsed,
		MaxHints:  max,
		Available: hintsUsed < max,
	}
	if p.Available {
		p.NextHintCost = HintCost(hintsUsed + 1)
		p.TotalPenaltyAfter = TotalPenaltyPercent(hintsUsed+1, d)
	} else {
		p.TotalPenaltyAfter = TotalPenaltyPercent(hintsUsed, d)
	}
	return p
}
