package scoring

import (
	"math"
	"strings"
)

// Deterministic copywriting heuristics. Each metric is a pure function of
// the submission text and brief with fixed constants, so the same input
// always produces the same score. They stand in for the AI evaluator when
// it is unavailable.

var persuasionSignals = []string{
	"you", "your", "free", "now", "today", "guarantee", "guaranteed",
	"save", "proven", "results", "exclusive", "limited", "discover", "imagine",
}

var engagementSignals = []string{
	"you", "discover", "join", "get", "try", "start", "love", "amazing", "new",
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	return fields
}

func sentenceCount(text string) int {
	n := strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?")
	if n == 0 && strings.TrimSpace(text) != "" {
		return 1
	}
	return n
}

func countAny(words []string, signals []string) int {
	set := make(map[string]struct{}, len(signals))
	for _, s := range signals {
		set[s] = struct{}{}
	}
	hits := 0
	for _, w := range words {
		if _, ok := set[w]; ok {
			hits++
		}
	}
	return hits
}

// toneScore rewards copy that echoes the requested tone vocabulary.
func toneScore(words []string, tone string) int {
	toneTokens := tokenize(tone)
	if len(toneTokens) == 0 {
		return 70
	}
	hits := countAny(words, toneTokens)
	return clampScore(55 + 15*hits)
}

// persuasionScore counts persuasion-signal word occurrences.
func persuasionScore(words []string) int {
	hits := countAny(words, persuasionSignals)
	return clampScore(40 + 8*hits)
}

// clarityScore scores average sentence length, rewarding the 8-18 word band.
func clarityScore(text string, words []string) int {
	sentences := sentenceCount(text)
	if sentences == 0 || len(words) == 0 {
		return 30
	}
	avg := float64(len(words)) / float64(sentences)
	var distance float64
	switch {
	case avg < 8:
		distance = 8 - avg
	case avg > 18:
		distance = avg - 18
	}
	score := 90 - int(math.Round(3*distance))
	if score < 30 {
		score = 30
	}
	return score
}

// audienceFitScore rewards copy that mentions the product and audience from
// the brief.
func audienceFitScore(words []string, product, audience string) int {
	briefTokens := append(tokenize(product), tokenize(audience)...)
	if len(briefTokens) == 0 {
		return 70
	}
	hits := countAny(words, briefTokens)
	return clampScore(50 + 12*hits)
}

// creativityScore uses lexical uniqueness as a proxy for varied writing.
func creativityScore(words []string) int {
	if len(words) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	ratio := float64(len(unique)) / float64(len(words))
	return clampScore(40 + int(math.Round(ratio*60)))
}

// engagementScore counts direct-address punctuation and call-to-action words.
func engagementScore(text string, words []string) int {
	punct := strings.Count(text, "?") + strings.Count(text, "!")
	hits := countAny(words, engagementSignals)
	return clampScore(35 + 10*punct + 5*hits)
}

func heuristicMetrics(sub CopySubmission) []CopyMetric {
	words := tokenize(sub.Copy)
	return []CopyMetric{
		{Name: MetricTone, Score: toneScore(words, sub.Tone)},
		{Name: MetricPersuasion, Score: persuasionScore(words)},
		{Name: MetricClarity, Score: clarityScore(sub.Copy, words)},
		{Name: MetricAudienceFit, Score: audienceFitScore(words, sub.Product, sub.TargetAudience)},
		{Name: MetricCreativity, Score: creativityScore(words)},
		{Name: MetricEngagement, Score: engagementScore(sub.Copy, words)},
	}
}
