package attempt

import (
	"net/url"
	"strings"
)

const (
	maxFeedbackEntries     = 10
	maxFeedbackEntryLength = 200
)

// Payload is the validated input of recordAttempt.
type Payload struct {
	Score           int
	BaseScore       int
	HintsUsed       int
	Passed          bool
	Feedback        []string
	KeywordsMatched []string
	ImageURL        string
	Code            string
	Copy            string
	TestResults     []TestResultInput
	Source          string
}

// TestResultInput mirrors one evaluator verdict in the submit payload.
type TestResultInput struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
	ActualOutput   string `json:"actualOutput"`
	Passed         bool   `json:"passed"`
	Description    string `json:"description"`
}

// validate checks the payload before any write. Order matters: score, then
// feedback, then artifact presence, then image URL trust.
func validate(p *Payload, trustedDomains []string) error {
	if p.Score < 0 || p.Score > 100 {
		return ErrInvalidScore
	}

	if len(p.Feedback) > maxFeedbackEntries {
		return ErrInvalidFeedback
	}
	for _, entry := range p.Feedback {
		if len(entry) > maxFeedbackEntryLength {
			return ErrInvalidFeedback
		}
	}

	artifacts := 0
	for _, a := range []string{p.ImageURL, p.Code, p.Copy} {
		if a != "" {
			artifacts++
		}
	}
	if artifacts != 1 {
		return ErrMissingArtifact
	}

	if p.ImageURL != "" && !isTrustedImageURL(p.ImageURL, trustedDomains) {
		return ErrUntrustedImageURL
	}
	return nil
}

// isTrustedImageURL accepts https URLs whose hostname equals or is a
// subdomain of one of the trusted storage domains.
func isTrustedImageURL(raw string, trustedDomains []string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}

	for _, domain := range trustedDomains {
		domain = strings.ToLower(domain)
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
