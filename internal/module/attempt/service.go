package attempt

import (
	"context"

	"github.com/promptcraft/server/internal/module/hint"
	"github.com/promptcraft/server/internal/module/level"
	"github.com/promptcraft/server/internal/module/quota"
	"github.com/promptcraft/server/internal/module/scoring"
	"go.uber.org/zap"
)

// QuotaGate meters level submissions.
type QuotaGate interface {
	CheckAndConsume(ctx context.Context, userID, appID string, quotaType quota.QuotaType) (*quota.Decision, error)
}

// LevelCatalog resolves levels for submissions.
type LevelCatalog interface {
	Get(ctx context.Context, id string) (*level.Level, error)
}

// Scorer evaluates submissions per level type.
type Scorer interface {
	ScoreImage(ctx context.Context, sub scoring.ImageSubmission) *scoring.ImageResult
	ScoreCode(ctx context.Context, sub scoring.CodeSubmission) *scoring.CodeResult
	ScoreCopy(ctx context.Context, sub scoring.CopySubmission) *scoring.CopyResult
}

// HintSource reports session hint usage for the penalty calculation.
type HintSource interface {
	HintsUsed(userID, levelID string) int
}

// StatsRecorder bumps user statistics after a recorded attempt. Ranking is
// recomputed later by the daily aggregator, not here.
type StatsRecorder interface {
	RecordAttemptOutcome(ctx context.Context, userID string, xpAwarded int) error
}

// Service records scored attempts and orchestrates the submission flow.
type Service struct {
	repo           Repository
	levels         LevelCatalog
	quota          QuotaGate
	scorer         Scorer
	hints          HintSource
	stats          StatsRecorder
	appID          string
	trustedDomains []string
	logger         *zap.Logger
}

// NewService creates a new attempt service.
func NewService(
	repo Repository,
	levels LevelCatalog,
	quotaGate QuotaGate,
	scorer Scorer,
	hints HintSource,
	stats StatsRecorder,
	appID string,
	trustedDomains []string,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:           repo,
		levels:         levels,
		quota:          quotaGate,
		scorer:         scorer,
		hints:          hints,
		stats:          stats,
		appID:          appID,
		trustedDomains: trustedDomains,
		logger:         logger,
	}
}

// Record validates and persists one attempt with the next attempt number.
// The record is immutable once written.
func (s *Service) Record(ctx context.Context, userID, levelID string, p *Payload) (*LevelAttempt, error) {
	if err := validate(p, s.trustedDomains); err != nil {
		return nil, err
	}

	a := &LevelAttempt{
		UserID:          userID,
		LevelID:         levelID,
		Score:           p.Score,
		BaseScore:       p.BaseScore,
		HintsUsed:       p.HintsUsed,
		Passed:          p.Passed,
		Feedback:        p.Feedback,
		KeywordsMatched: p.KeywordsMatched,
		ImageURL:        p.ImageURL,
		Code:            p.Code,
		Copy:            p.Copy,
		TestResults:     toTestResults(p.TestResults),
		Source:          scoring.Source(p.Source),
	}
	if err := s.repo.CreateNumbered(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns the user's attempts for a level ordered by attempt number.
func (s *Service) List(ctx context.Context, userID, levelID string) ([]LevelAttempt, error) {
	return s.repo.ListByUserLevel(ctx, userID, levelID)
}

// SubmitResult is the outcome of a level submission.
type SubmitResult struct {
	// QuotaExceeded is a normal outcome, not an error. Attempt is nil and
	// Remaining reports the exhausted budget.
	QuotaExceeded bool          `json:"quotaExceeded"`
	Remaining     int64         `json:"remaining"`
	Attempt       *LevelAttempt `json:"attempt,omitempty"`

	BaseScore      int `json:"baseScore"`
	HintsUsed      int `json:"hintsUsed"`
	PenaltyPercent int `json:"penaltyPercent"`

	Metrics     []scoring.CopyMetric     `json:"metrics,omitempty"`
	TestResults []scoring.CodeTestResult `json:"testResults,omitempty"`
	Criteria    []string                 `json:"criteria,omitempty"`
}

// Submit runs the full flow for one submission: quota gate, scoring, hint
// penalty, persistence, statistics.
func (s *Service) Submit(ctx context.Context, userID, levelID string, req *SubmitAttemptRequest) (*SubmitResult, error) {
	lvl, err := s.levels.Get(ctx, levelID)
	if err != nil {
		return nil, err
	}

	decision, err := s.quota.CheckAndConsume(ctx, userID, s.appID, quotaTypeFor(lvl.Type))
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return &SubmitResult{QuotaExceeded: true, Remaining: decision.Remaining}, nil
	}

	payload := s.score(ctx, lvl, req)

	hintsUsed := s.hints.HintsUsed(userID, levelID)
	payload.BaseScore = payload.Score
	payload.HintsUsed = hintsUsed
	payload.Score = hint.FinalScore(payload.BaseScore, hintsUsed, lvl.PassingScore, lvl.Difficulty)
	payload.Passed = payload.Score >= lvl.PassingScore

	recorded, err := s.Record(ctx, userID, levelID, payload)
	if err != nil {
		return nil, err
	}

	xp := 0
	if recorded.Passed {
		xp = lvl.XPReward
	}
	if err := s.stats.RecordAttemptOutcome(ctx, userID, xp); err != nil {
		// The attempt itself is the source of truth; a failed stats bump is
		// picked up by the next ranking rebuild.
		s.logger.Warn("failed to update statistics after attempt",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	return &SubmitResult{
		Remaining:      decision.Remaining,
		Attempt:        recorded,
		BaseScore:      payload.BaseScore,
		HintsUsed:      hintsUsed,
		PenaltyPercent: hint.TotalPenaltyPercent(hintsUsed, lvl.Difficulty),
		TestResults:    recorded.TestResults,
	}, nil
}

// score runs the matching scorer and maps its result into a payload.
// Provider failures are already absorbed by the scorers.
func (s *Service) score(ctx context.Context, lvl *level.Level, req *SubmitAttemptRequest) *Payload {
	switch lvl.Type {
	case TypeCodingLogic:
		res := s.scorer.ScoreCode(ctx, scoring.CodeSubmission{
			UserPrompt:   req.Prompt,
			FunctionName: lvl.FunctionName,
			Requirements: lvl.Requirements,
			TestCases:    lvl.TestCases,
		})
		code := res.Code
		if code == "" {
			code = req.Prompt
		}
		return &Payload{
			Score:       res.Score,
			Feedback:    res.Feedback,
			Code:        code,
			TestResults: fromTestResults(res.TestResults),
			Source:      string(res.Source),
		}
	case TypeCopywriting:
		res := s.scorer.ScoreCopy(ctx, scoring.CopySubmission{
			Copy:             req.Copy,
			Product:          lvl.Product,
			TargetAudience:   lvl.TargetAudience,
			Tone:             lvl.Tone,
			Goal:             lvl.Goal,
			MinWords:         lvl.MinWords,
			MaxWords:         lvl.MaxWords,
			RequiredElements: lvl.RequiredElements,
		})
		return &Payload{
			Score:           res.Score,
			Feedback:        res.Feedback,
			KeywordsMatched: res.KeywordsMatched,
			Copy:            req.Copy,
			Source:          string(res.Source),
		}
	default:
		res := s.scorer.ScoreImage(ctx, scoring.ImageSubmission{
			TargetImageURL: lvl.TargetImageURL,
			UserImageURL:   req.ImageURL,
			HiddenKeywords: lvl.HiddenKeywords,
			TargetStyle:    lvl.TargetStyle,
			UserPrompt:     req.Prompt,
			TargetPrompt:   lvl.TargetPrompt,
		})
		return &Payload{
			Score:           res.Score,
			Feedback:        res.Feedback,
			KeywordsMatched: res.KeywordsMatched,
			ImageURL:        req.ImageURL,
			Source:          string(res.Source),
		}
	}
}

// Level type aliases keep the switch above readable.
const (
	TypeImage       = level.TypeImage
	TypeCodingLogic = level.TypeCodingLogic
	TypeCopywriting = level.TypeCopywriting
)

func quotaTypeFor(t level.LevelType) quota.QuotaType {
	switch t {
	case TypeCodingLogic:
		return quota.QuotaCodingLogicLevels
	case TypeCopywriting:
		return quota.QuotaCopywritingLevels
	default:
		return quota.QuotaImageLevels
	}
}

func toTestResults(in []TestResultInput) []scoring.CodeTestResult {
	if len(in) == 0 {
		return nil
	}
	out := make([]scoring.CodeTestResult, 0, len(in))
	for _, r := range in {
		out = append(out, scoring.CodeTestResult(r))
	}
	return out
}

func fromTestResults(in []scoring.CodeTestResult) []TestResultInput {
	if len(in) == 0 {
		return nil
	}
	out := make([]TestResultInput, 0, len(in))
	for _, r := range in {
		out = append(out, TestResultInput(r))
	}
	return out
}
