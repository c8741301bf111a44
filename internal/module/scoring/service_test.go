package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/promptcraft/server/internal/module/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cannedProvider struct {
	text string
	err  error
}

func (p *cannedProvider) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (*ai.Generation, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &ai.Generation{Text: p.text}, nil
}

func (p *cannedProvider) GenerateImage(ctx context.Context, prompt string) (*ai.ImageGeneration, error) {
	return nil, errors.New("not used in scoring")
}

func newTestService(p ai.Provider) *Service {
	return NewService(p, nil, zap.NewNop())
}

func TestScoreImage_ParsesProviderJSON(t *testing.T) {
	svc := newTestService(&cannedProvider{text: "```json\n" + `{
		"score": 82, "similarity": 80, "keywordScore": 90, "styleScore": 75,
		"feedback": ["Good composition"],
		"keywordsMatched": ["sunset"],
		"criteria": ["content", "style"]
	}` + "\n```"})

	res := svc.ScoreImage(context.Background(), ImageSubmission{
		TargetImageURL: "https://example.com/t.png",
		UserImageURL:   "https://example.com/u.png",
	})

	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, 82, res.Score)
	assert.Equal(t, 90, res.KeywordScore)
	assert.Equal(t, []string{"Good composition"}, res.Feedback)
	assert.Equal(t, []string{"sunset"}, res.KeywordsMatched)
}

func TestScoreImage_ClampsOutOfRangeScores(t *testing.T) {
	svc := newTestService(&cannedProvider{text: `{"score": 140, "similarity": -5, "keywordScore": 50, "styleScore": 50}`})

	res := svc.ScoreImage(context.Background(), ImageSubmission{})

	assert.Equal(t, 100, res.Score)
	assert.Equal(t, 0, res.Similarity)
}

func TestScoreImage_NeutralFallbackOnProviderError(t *testing.T) {
	svc := newTestService(&cannedProvider{err: ai.ErrProviderUnavailable})

	res := svc.ScoreImage(context.Background(), ImageSubmission{})

	require.NotNil(t, res)
	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, 50, res.Score)
	assert.Equal(t, 50, res.Similarity)
	assert.Equal(t, []string{"Unable to parse AI evaluation response"}, res.Feedback)
}

func TestScoreImage_NeutralFallbackOnUnparseableResponse(t *testing.T) {
	svc := newTestService(&cannedProvider{text: "I cannot produce JSON today."})

	res := svc.ScoreImage(context.Background(), ImageSubmission{})

	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, 50, res.Score)
}

func TestScoreCode_DerivesPassedFromScore(t *testing.T) {
	svc := newTestService(&cannedProvider{text: `{
		"code": "function add(a, b) { return a + b; }",
		"evaluation": {
			"score": 85, "passed": false,
			"testResults": [{"input": "1,2", "expectedOutput": "3", "actualOutput": "3", "passed": true, "description": "adds"}],
			"feedback": ["Correct"]
		}
	}`})

	res := svc.ScoreCode(context.Background(), CodeSubmission{UserPrompt: "write add"})

	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, 85, res.Score)
	// The evaluator said passed=false but score>=70 wins here. The caller
	// still re-derives pass/fail from the level's passing score.
	assert.True(t, res.Passed)
	require.Len(t, res.TestResults, 1)
	assert.True(t, res.TestResults[0].Passed)
}

func TestScoreCode_FallbackNeverPasses(t *testing.T) {
	svc := newTestService(&cannedProvider{err: ai.ErrProviderUnavailable})

	sub := CodeSubmission{
		UserPrompt:   "Write a function named reverseString that reverses its input string argument carefully",
		FunctionName: "reverseString",
		TestCases:    []TestCase{{Input: "abc", ExpectedOutput: "cba", Description: "reverses"}},
	}
	res := svc.ScoreCode(context.Background(), sub)

	assert.Equal(t, SourceFallback, res.Source)
	assert.False(t, res.Passed)
	assert.Less(t, res.Score, 70)
	require.Len(t, res.TestResults, 1)
	assert.False(t, res.TestResults[0].Passed)
}

func TestScoreCopy_BlendsProviderMetrics(t *testing.T) {
	svc := newTestService(&cannedProvider{text: `{
		"metrics": {"TONE": 80, "PERSUASION": 80, "CLARITY": 80, "AUDIENCE FIT": 80, "CREATIVITY": 80, "ENGAGEMENT": 80},
		"feedback": ["Solid copy"]
	}`})

	sub := CopySubmission{
		Copy:             "Try our new organic coffee today. You will love the rich flavor.",
		RequiredElements: []string{"organic", "fair trade"},
		MinWords:         5,
		MaxWords:         50,
	}
	res := svc.ScoreCopy(context.Background(), sub)

	assert.Equal(t, SourceAI, res.Source)
	// 0.7*80 + 0.2*50 + 0.1*100 = 76
	assert.Equal(t, 76, res.Score)
	assert.Equal(t, []string{"organic"}, res.KeywordsMatched)
	require.Len(t, res.Metrics, 6)
}

func TestScoreCopy_FallbackIsDeterministic(t *testing.T) {
	svc := newTestService(&cannedProvider{err: ai.ErrProviderUnavailable})

	sub := CopySubmission{
		Copy:           "Discover the new EcoBottle today! Why wait? You deserve hydration that saves the planet.",
		Product:        "EcoBottle",
		TargetAudience: "eco-conscious commuters",
		Tone:           "energetic",
		MinWords:       5,
		MaxWords:       100,
	}

	first := svc.ScoreCopy(context.Background(), sub)
	second := svc.ScoreCopy(context.Background(), sub)

	assert.Equal(t, SourceFallback, first.Source)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Metrics, second.Metrics)
	assert.Equal(t, first.KeywordsMatched, second.KeywordsMatched)
}

func TestScoreCopy_FallbackOnIncompleteMetrics(t *testing.T) {
	svc := newTestService(&cannedProvider{text: `{"metrics": {"TONE": 80}}`})

	res := svc.ScoreCopy(context.Background(), CopySubmission{Copy: "Some copy."})

	assert.Equal(t, SourceFallback, res.Source)
	require.Len(t, res.Metrics, 6)
}

func TestWordLimitCompliance(t *testing.T) {
	tests := []struct {
		name string
		sub  CopySubmission
		want int
	}{
		{"within bounds", CopySubmission{Copy: "one two three four", MinWords: 2, MaxWords: 10}, 100},
		{"below minimum", CopySubmission{Copy: "one", MinWords: 2, MaxWords: 10}, 70},
		{"above maximum", CopySubmission{Copy: "one two three four", MinWords: 1, MaxWords: 3}, 70},
		{"no bounds", CopySubmission{Copy: "one two three"}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wordLimitCompliance(tt.sub))
		})
	}
}

func TestMatchRequiredElements(t *testing.T) {
	matched, ratio := matchRequiredElements("Our Organic coffee is fair trade certified.", []string{"organic", "fair trade", "vegan"})
	assert.Equal(t, []string{"organic", "fair trade"}, matched)
	assert.InDelta(t, 2.0/3.0, ratio, 1e-9)

	matched, ratio = matchRequiredElements("anything", nil)
	assert.Empty(t, matched)
	assert.Equal(t, 1.0, ratio)
}

func TestExtractJSON(t *testing.T) {
	raw, ok := extractJSON("Here you go:\n```json\n{\"a\": 1}\n```\nthanks")
	require.True(t, ok)
	assert.Equal(t, `{"a": 1}`, raw)

	_, ok = extractJSON("no json here")
	assert.False(t, ok)
}
