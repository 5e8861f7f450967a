package reports

import "errors"

var (
	ErrNotFound        = errors.New("analysis job not found")
	ErrJobNotCompleted = errors.New("analysis not completed yet")
	ErrInvalidType     = errors.New("invalid report type")
)
