package scoring

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const imageSystemPrompt = `You are an expert image evaluation assistant for a prompt engineering trainer.
Compare the user's generated image against the target image and respond with a single JSON object:
{"score": 0-100, "similarity": 0-100, "keywordScore": 0-100, "styleScore": 0-100, "feedback": ["..."], "keywordsMatched": ["..."], "criteria": ["..."]}
Respond with JSON only, no prose.`

type imageEvaluation struct {
	Score           int      `json:"score"`
	Similarity      int      `json:"similarity"`
	KeywordScore    int      `json:"keywordScore"`
	StyleScore      int      `json:"styleScore"`
	Feedback        []string `json:"feedback"`
	KeywordsMatched []string `json:"keywordsMatched"`
	Criteria        []string `json:"criteria"`
}

// ScoreImage evaluates a generated image against the level target. Provider
// failures and unparseable responses degrade to a neutral fallback result.
func (s *Service) ScoreImage(ctx context.Context, sub ImageSubmission) *ImageResult {
	gen, err := s.provider.GenerateText(ctx, imageSystemPrompt, buildImagePrompt(sub))
	if err != nil {
		s.logger.Warn("image evaluation unavailable, using neutral fallback",
			zap.Error(err))
		s.recordFallback("image")
		return neutralImageResult()
	}

	var eval imageEvaluation
	if !parseInto(gen.Text, &eval) {
		s.logger.Warn("image evaluation response not parseable, using neutral fallback")
		s.recordFallback("image")
		return neutralImageResult()
	}

	feedback := eval.Feedback
	if len(feedback) == 0 {
		feedback = []string{"Evaluation complete."}
	}

	return &ImageResult{
		Score:           clampScore(eval.Score),
		Similarity:      clampScore(eval.Similarity),
		KeywordScore:    clampScore(eval.KeywordScore),
		StyleScore:      clampScore(eval.StyleScore),
		Feedback:        feedback,
		KeywordsMatched: eval.KeywordsMatched,
		Criteria:        eval.Criteria,
		Source:          SourceAI,
	}
}

func buildImagePrompt(sub ImageSubmission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target image: %s\nUser image: %s\n", sub.TargetImageURL, sub.UserImageURL)
	if sub.TargetPrompt != "" {
		fmt.Fprintf(&b, "Target prompt: %s\n", sub.TargetPrompt)
	}
	if sub.UserPrompt != "" {
		fmt.Fprintf(&b, "User prompt: %s\n", sub.UserPrompt)
	}
	if sub.TargetStyle != "" {
		fmt.Fprintf(&b, "Expected style: %s\n", sub.TargetStyle)
	}
	if len(sub.HiddenKeywords) > 0 {
		fmt.Fprintf(&b, "Hidden keywords to look for: %s\n", strings.Join(sub.HiddenKeywords, ", "))
	}
	b.WriteString("Evaluate how closely the user's image matches the target in content, style and keyword coverage.")
	return b.String()
}

func neutralImageResult() *ImageResult {
	return &ImageResult{
		Score:           50,
		Similarity:      50,
		KeywordScore:    50,
		StyleScore:      50,
		Feedback:        []string{"Unable to parse AI evaluation response"},
		KeywordsMatched: []string{},
		Criteria:        []string{},
		Source:          SourceFallback,
	}
}
