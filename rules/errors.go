package rules

import "errors"

var (
	// ErrInvalidThreshold is returned when the threshold is outside [0,1].
	ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")

	// ErrNoPlatformKeywords is returned when the platform rule is gated on
	// subject keywords but none are configured.
	ErrNoPlatformKeywords = errors.New("platform keyword gate enabled without keywords")
)
