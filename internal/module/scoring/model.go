package scoring

// Source tags whether a result came from the AI evaluator or the
// deterministic heuristic fallback.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// TestCase is one input/expected-output pair for a coding level.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
	Description    string `json:"description"`
}

// ImageSubmission carries everything needed to compare a generated image
// against the level's target.
type ImageSubmission struct {
	TargetImageURL string
	UserImageURL   string
	HiddenKeywords []string
	TargetStyle    string
	UserPrompt     string
	TargetPrompt   string
}

// ImageResult is the scored outcome of an image comparison.
type ImageResult struct {
	Score           int      `json:"score"`
	Similarity      int      `json:"similarity"`
	KeywordScore    int      `json:"keywordScore"`
	StyleScore      int      `json:"styleScore"`
	Feedback        []string `json:"feedback"`
	KeywordsMatched []string `json:"keywordsMatched"`
	Criteria        []string `json:"criteria"`
	Source          Source   `json:"source"`
}

// CodeSubmission carries a coding-level prompt and its verification cases.
type CodeSubmission struct {
	UserPrompt   string
	FunctionName string
	Requirements string
	TestCases    []TestCase
}

// CodeTestResult is the evaluator's verdict for one test case.
type CodeTestResult struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
	ActualOutput   string `json:"actualOutput"`
	Passed         bool   `json:"passed"`
	Description    string `json:"description"`
}

// CodeResult is the scored outcome of a coding submission. Passed reflects
// the evaluator's own score>=70 convention; callers compare Score against
// the level's passing score themselves, which wins when the two disagree.
type CodeResult struct {
	Code        string           `json:"code"`
	Score       int              `json:"score"`
	Passed      bool             `json:"passed"`
	TestResults []CodeTestResult `json:"testResults"`
	Feedback    []string         `json:"feedback"`
	Source      Source           `json:"source"`
}

// Copywriting metric names.
const (
	MetricTone        = "TONE"
	MetricPersuasion  = "PERSUASION"
	MetricClarity     = "CLARITY"
	MetricAudienceFit = "AUDIENCE FIT"
	MetricCreativity  = "CREATIVITY"
	MetricEngagement  = "ENGAGEMENT"
)

// metricOrder fixes the presentation order of copywriting metrics.
var metricOrder = []string{
	MetricTone,
	MetricPersuasion,
	MetricClarity,
	MetricAudienceFit,
	MetricCreativity,
	MetricEngagement,
}

// CopyMetric is one named 0-100 copywriting dimension.
type CopyMetric struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// CopySubmission carries generated copy plus the brief it was written
// against.
type CopySubmission struct {
	Copy             string
	Product          string
	TargetAudience   string
	Tone             string
	Goal             string
	MinWords         int
	MaxWords         int
	RequiredElements []string
}

// CopyResult is the scored outcome of a copywriting submission.
type CopyResult struct {
	Score           int          `json:"score"`
	Metrics         []CopyMetric `json:"metrics"`
	Feedback        []string     `json:"feedback"`
	KeywordsMatched []string     `json:"keywordsMatched"`
	Source          Source       `json:"source"`
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
