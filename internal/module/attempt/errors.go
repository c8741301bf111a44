package attempt

import "errors"

var (
	// ErrInvalidScore indicates a score outside [0, 100].
	ErrInvalidScore = errors.New("score must be between 0 and 100")
	// ErrInvalidFeedback indicates too many or too long feedback entries.
	ErrInvalidFeedback = errors.New("feedback is limited to 10 entries of at most 200 characters")
	// ErrMissingArtifact indicates the attempt has zero or more than one artifact.
	ErrMissingArtifact = errors.New("exactly one of imageUrl, code or copy must be set")
	// ErrUntrustedImageURL indicates an image URL outside the trusted storage domains.
	ErrUntrustedImageURL = errors.New("image url must be an https url on a trusted storage domain")
)
