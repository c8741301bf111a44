package scoring

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const codeSystemPrompt = `You are a code generation and evaluation assistant for a prompt engineering trainer.
Generate the code the user's prompt asks for, then evaluate your own output against the supplied test cases.
Respond with a single JSON object:
{"code": "...", "evaluation": {"score": 0-100, "passed": true|false, "testResults": [{"input": "...", "expectedOutput": "...", "actualOutput": "...", "passed": true|false, "description": "..."}], "feedback": ["..."]}}
Mark "passed" true when score is 70 or above. Respond with JSON only, no prose.`

type codeEvaluation struct {
	Code       string `json:"code"`
	Evaluation struct {
		Score       int              `json:"score"`
		Passed      bool             `json:"passed"`
		TestResults []CodeTestResult `json:"testResults"`
		Feedback    []string         `json:"feedback"`
	} `json:"evaluation"`
}

// ScoreCode asks the provider to synthesize code from the user's prompt and
// self-evaluate it against the level's test cases. Provider failures degrade
// to a deterministic fallback built from the prompt alone.
func (s *Service) ScoreCode(ctx context.Context, sub CodeSubmission) *CodeResult {
	gen, err := s.provider.GenerateText(ctx, codeSystemPrompt, buildCodePrompt(sub))
	if err != nil {
		s.logger.Warn("code evaluation unavailable, using heuristic fallback",
			zap.Error(err))
		s.recordFallback("code")
		return fallbackCodeResult(sub)
	}

	var eval codeEvaluation
	if !parseInto(gen.Text, &eval) || eval.Code == "" {
		s.logger.Warn("code evaluation response not parseable, using heuristic fallback")
		s.recordFallback("code")
		return fallbackCodeResult(sub)
	}

	feedback := eval.Evaluation.Feedback
	if len(feedback) == 0 {
		feedback = []string{"Evaluation complete."}
	}

	score := clampScore(eval.Evaluation.Score)
	return &CodeResult{
		Code:        eval.Code,
		Score:       score,
		Passed:      score >= 70,
		TestResults: eval.Evaluation.TestResults,
		Feedback:    feedback,
		Source:      SourceAI,
	}
}

func buildCodePrompt(sub CodeSubmission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User prompt: %s\n", sub.UserPrompt)
	if sub.FunctionName != "" {
		fmt.Fprintf(&b, "Required function name: %s\n", sub.FunctionName)
	}
	if sub.Requirements != "" {
		fmt.Fprintf(&b, "Requirements: %s\n", sub.Requirements)
	}
	if len(sub.TestCases) > 0 {
		b.WriteString("Test cases:\n")
		for i, tc := range sub.TestCases {
			fmt.Fprintf(&b, "%d. input=%s expected=%s (%s)\n", i+1, tc.Input, tc.ExpectedOutput, tc.Description)
		}
	}
	return b.String()
}

// fallbackCodeResult scores a coding submission without the evaluator. It
// only checks that the prompt plausibly addresses the task, so the score is
// capped well below a pass.
func fallbackCodeResult(sub CodeSubmission) *CodeResult {
	prompt := strings.ToLower(sub.UserPrompt)

	score := 20
	if sub.FunctionName != "" && strings.Contains(prompt, strings.ToLower(sub.FunctionName)) {
		score += 15
	}
	if len(strings.Fields(prompt)) >= 10 {
		score += 10
	}

	results := make([]CodeTestResult, 0, len(sub.TestCases))
	for _, tc := range sub.TestCases {
		results = append(results, CodeTestResult{
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			ActualOutput:   "",
			Passed:         false,
			Description:    tc.Description,
		})
	}

	return &CodeResult{
		Code:        "",
		Score:       clampScore(score),
		Passed:      false,
		TestResults: results,
		Feedback:    []string{"Automated evaluation is temporarily unavailable. Your prompt was reviewed with basic checks only."},
		Source:      SourceFallback,
	}
}
