package core

import "fmt"

// Status is the fine-grained state of an accepted job-related message.
type Status string

const (
	StatusApplicationConfirmation Status = "APPLICATION_CONFIRMATION"
	StatusInterviewInvite         Status = "INTERVIEW_INVITE"
	StatusRejection               Status = "REJECTION"
	StatusJobOpening              Status = "JOB_OPENING"
	StatusOther                   Status = "OTHER"
)

// Statuses lists every status in precedence order.
var Statuses = []Status{
	StatusApplicationConfirmation,
	StatusInterviewInvite,
	StatusRejection,
	StatusJobOpening,
	StatusOther,
}

// Applied reports whether the status implies the user applied for the job.
func (s Status) Applied() bool {
	switch s {
	case StatusApplicationConfirmation, StatusInterviewInvite, StatusRejection:
		return true
	}
	return false
}

// ParseStatus converts a persisted status value. The empty string maps to
// StatusOther.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return StatusOther, nil
	}
	for _, status := range Statuses {
		if string(status) == s {
			return status, nil
		}
	}
	return StatusOther, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}
