package scoring

import (
	"encoding/json"
	"strings"

	"github.com/promptcraft/server/internal/module/ai"
	"github.com/promptcraft/server/internal/utils/metrics"
	"go.uber.org/zap"
)

// Service scores level submissions. The AI provider does the subjective
// evaluation; when it fails or returns unparseable output the service
// degrades to deterministic heuristics and tags the result accordingly.
// Scoring methods never return provider errors to the caller.
type Service struct {
	provider ai.Provider
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewService creates a new scoring service.
func NewService(provider ai.Provider, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		logger:   logger,
		metrics:  m,
	}
}

func (s *Service) recordFallback(scorer string) {
	if s.metrics != nil {
		s.metrics.AIFallbacksTotal.WithLabelValues(scorer).Inc()
	}
}

// extractJSON pulls the first JSON object out of a model response. Models
// routinely wrap JSON in markdown fences or prose, so the parser works on
// the outermost brace pair.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func parseInto(text string, v any) bool {
	raw, ok := extractJSON(text)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(raw), v) == nil
}
