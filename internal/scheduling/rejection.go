package scheduling

import (
	"errors"

	"github.com/noah-isme/class-enrollment-api/internal/models"
)

// RejectionKind classifies why a staging change was refused.
type RejectionKind string

const (
	RejectScheduleConflict  RejectionKind = "SCHEDULE_CONFLICT"
	RejectDuplicateCourse   RejectionKind = "DUPLICATE_COURSE"
	RejectConfirmed         RejectionKind = "ENROLLMENT_CONFIRMED"
	RejectNotStaged         RejectionKind = "NOT_STAGED"
	RejectMissingParent     RejectionKind = "MISSING_PARENT"
	RejectMalformedSchedule RejectionKind = "MALFORMED_SCHEDULE"
)

// Rejection is returned when a staging change would break a planner rule.
// The ledger is left untouched.
type Rejection struct {
	Kind    RejectionKind
	Reason  string
	ClassID string
	Verdict models.Verdict
}

func (r *Rejection) Error() string {
	if r == nil {
		return "<nil>"
	}
	return r.Reason
}

// AsRejection extracts a Rejection from err.
func AsRejection(err error) (*Rejection, bool) {
	var rejection *Rejection
	if errors.As(err, &rejection) {
		return rejection, true
	}
	return nil, false
}
