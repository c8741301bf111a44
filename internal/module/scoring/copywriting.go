package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

const copySystemPrompt = `You are a copywriting evaluation assistant for a prompt engineering trainer.
Score the submitted copy on six dimensions, each 0-100, and respond with a single JSON object:
{"metrics": {"TONE": n, "PERSUASION": n, "CLARITY": n, "AUDIENCE FIT": n, "CREATIVITY": n, "ENGAGEMENT": n}, "feedback": ["..."]}
Respond with JSON only, no prose.`

type copyEvaluation struct {
	Metrics  map[string]int `json:"metrics"`
	Feedback []string       `json:"feedback"`
}

// ScoreCopy evaluates copywriting against its brief. The six metrics come
// from the AI evaluator when available and from the deterministic heuristics
// otherwise. The overall blend, required-element matching and word-limit
// compliance are always computed here so they do not depend on model output.
func (s *Service) ScoreCopy(ctx context.Context, sub CopySubmission) *CopyResult {
	metrics, feedback, source := s.copyMetrics(ctx, sub)

	matched, ratio := matchRequiredElements(sub.Copy, sub.RequiredElements)
	compliance := wordLimitCompliance(sub)

	var sum int
	for _, m := range metrics {
		sum += m.Score
	}
	avg := float64(sum) / float64(len(metrics))
	overall := int(math.Round(0.7*avg + 0.2*ratio*100 + 0.1*float64(compliance)))

	return &CopyResult{
		Score:           clampScore(overall),
		Metrics:         metrics,
		Feedback:        feedback,
		KeywordsMatched: matched,
		Source:          source,
	}
}

func (s *Service) copyMetrics(ctx context.Context, sub CopySubmission) ([]CopyMetric, []string, Source) {
	gen, err := s.provider.GenerateText(ctx, copySystemPrompt, buildCopyPrompt(sub))
	if err != nil {
		s.logger.Warn("copy evaluation unavailable, using heuristic metrics",
			zap.Error(err))
		s.recordFallback("copywriting")
		return heuristicMetrics(sub), heuristicFeedback(), SourceFallback
	}

	var eval copyEvaluation
	if !parseInto(gen.Text, &eval) || !hasAllMetrics(eval.Metrics) {
		s.logger.Warn("copy evaluation response not parseable, using heuristic metrics")
		s.recordFallback("copywriting")
		return heuristicMetrics(sub), heuristicFeedback(), SourceFallback
	}

	metrics := make([]CopyMetric, 0, len(metricOrder))
	for _, name := range metricOrder {
		metrics = append(metrics, CopyMetric{Name: name, Score: clampScore(eval.Metrics[name])})
	}

	feedback := eval.Feedback
	if len(feedback) == 0 {
		feedback = []string{"Evaluation complete."}
	}
	return metrics, feedback, SourceAI
}

func hasAllMetrics(m map[string]int) bool {
	for _, name := range metricOrder {
		if _, ok := m[name]; !ok {
			return false
		}
	}
	return true
}

func heuristicFeedback() []string {
	return []string{"Scored with automated heuristics while the AI evaluator was unavailable."}
}

func buildCopyPrompt(sub CopySubmission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Copy to evaluate:\n%s\n\n", sub.Copy)
	if sub.Product != "" {
		fmt.Fprintf(&b, "Product: %s\n", sub.Product)
	}
	if sub.TargetAudience != "" {
		fmt.Fprintf(&b, "Target audience: %s\n", sub.TargetAudience)
	}
	if sub.Tone != "" {
		fmt.Fprintf(&b, "Requested tone: %s\n", sub.Tone)
	}
	if sub.Goal != "" {
		fmt.Fprintf(&b, "Goal: %s\n", sub.Goal)
	}
	if len(sub.RequiredElements) > 0 {
		fmt.Fprintf(&b, "Required elements: %s\n", strings.Join(sub.RequiredElements, ", "))
	}
	return b.String()
}

// matchRequiredElements does case-insensitive substring matching of each
// required element against the copy. Ratio is 1 when nothing is required.
func matchRequiredElements(text string, required []string) ([]string, float64) {
	if len(required) == 0 {
		return []string{}, 1
	}
	lower := strings.ToLower(text)
	matched := make([]string, 0, len(required))
	for _, el := range required {
		if el != "" && strings.Contains(lower, strings.ToLower(el)) {
			matched = append(matched, el)
		}
	}
	return matched, float64(len(matched)) / float64(len(required))
}

// wordLimitCompliance returns 100 when the word count sits inside the brief's
// bounds and 70 otherwise. A zero bound means no bound on that side.
func wordLimitCompliance(sub CopySubmission) int {
	n := len(strings.Fields(sub.Copy))
	if sub.MinWords > 0 && n < sub.MinWords {
		return 70
	}
	if sub.MaxWords > 0 && n > sub.MaxWords {
		return 70
	}
	return 100
}
