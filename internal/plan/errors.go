package plan

import "errors"

var (
	ErrMissingFields = errors.New("businessName, industry and description are required")

	// ErrPlanNotFound covers both a missing plan and a plan owned by someone
	// else. The two cases are never distinguished so non-owners cannot probe
	// for existence.
	ErrPlanNotFound = errors.New("plan not found")
)
