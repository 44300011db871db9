package ai

import "errors"

var (
	// ErrModelUnavailable is returned by ReadinessChecker implementations
	// when the backing model cannot serve predictions.
	ErrModelUnavailable = errors.New("classification model unavailable")

	// ErrResultMismatch is returned when a batch call returns a different
	// number of results than inputs.
	ErrResultMismatch = errors.New("result count does not match input count")
)
