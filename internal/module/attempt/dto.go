package attempt

// SubmitAttemptRequest is the body of POST /levels/:id/attempts.
//
// Prompt carries the user's prompt for every level type. ImageURL carries
// the generated image for image levels, Copy the generated copy for
// copywriting levels.
type SubmitAttemptRequest struct {
	Prompt   string `json:"prompt" binding:"required"`
	ImageURL string `json:"imageUrl"`
	Copy     string `json:"copy"`
}

// RecordAttemptRequest is the body of POST /levels/:id/attempts/record, the
// raw persistence path for externally scored attempts.
type RecordAttemptRequest struct {
	Score           int               `json:"score"`
	BaseScore       int               `json:"baseScore"`
	HintsUsed       int               `json:"hintsUsed"`
	Passed          bool              `json:"passed"`
	Feedback        []string          `json:"feedback"`
	KeywordsMatched []string          `json:"keywordsMatched"`
	ImageURL        string            `json:"imageUrl"`
	Code            string            `json:"code"`
	Copy            string            `json:"copy"`
	TestResults     []TestResultInput `json:"testResults"`
	Source          string            `json:"source"`
}

func (r *RecordAttemptRequest) toPayload() *Payload {
	return &Payload{
		Score:           r.Score,
		BaseScore:       r.BaseScore,
		HintsUsed:       r.HintsUsed,
		Passed:          r.Passed,
		Feedback:        r.Feedback,
		KeywordsMatched: r.KeywordsMatched,
		ImageURL:        r.ImageURL,
		Code:            r.Code,
		Copy:            r.Copy,
		TestResults:     r.TestResults,
		Source:          r.Source,
	}
}
