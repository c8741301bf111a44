package quota

import "errors"

var (
	// ErrAppNotFound indicates the app has no registered limits.
	ErrAppNotFound = errors.New("app limits not found")
	// ErrPlanNotFound indicates no usage plan exists for the user and app.
	ErrPlanNotFound = errors.New("usage plan not found")
	// ErrInvalidQuotaType indicates an unknown quota type.
	ErrInvalidQuotaType = errors.New("invalid quota type")
	// ErrInvalidIdentifier indicates an empty user or app identifier.
	ErrInvalidIdentifier = errors.New("user and app identifiers must be non-empty")
)
