package models

import "time"

// StagedEntry is one staged class persisted in the staging plan store.
type StagedEntry struct {
	TempID   string    `json:"temp_id"`
	ClassID  string    `json:"class_id"`
	StagedAt time.Time `json:"staged_at"`
}

// StagingPlan holds a student's pending, unsubmitted selections.
type StagingPlan struct {
	StudentID string        `json:"student_id"`
	Entries   []StagedEntry `json:"entries"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ClassIDs returns staged class ids in staging order.
func (p *StagingPlan) ClassIDs() []string {
	if p == nil {
		return nil
	}
	ids := make([]string, 0, len(p.Entries))
	for _, entry := range p.Entries {
		ids = append(ids, entry.ClassID)
	}
	return ids
}

// CourseState is the theory/practice pairing state of one course.
type CourseState string

const (
	CourseNotEnrolled       CourseState = "NOT_ENROLLED"
	CourseTheoryOnly        CourseState = "THEORY_ONLY"
	CourseTheoryAndPractice CourseState = "THEORY_AND_PRACTICE"
)

// CourseEnrollmentState reports the pairing state of a course in a plan.
type CourseEnrollmentState struct {
	CourseID   string      `json:"course_id"`
	CourseCode string      `json:"course_code"`
	State      CourseState `json:"state"`
}

// ConflictDetail identifies the two colliding schedule entries.
type ConflictDetail struct {
	Day                Weekday    `json:"day"`
	CandidateClassID   string     `json:"candidate_class_id"`
	CandidateClassName string     `json:"candidate_class_name"`
	CandidateShift     string     `json:"candidate_shift"`
	ExistingClassID    string     `json:"existing_class_id"`
	ExistingClassName  string     `json:"existing_class_name"`
	ExistingShift      string     `json:"existing_shift"`
	ExistingKind       RecordKind `json:"existing_kind"`
}

// Verdict is the outcome of checking one candidate class. It is
// recomputed on every evaluation.
type Verdict struct {
	HasConflict bool            `json:"has_conflict"`
	Reason      string          `json:"reason"`
	Conflict    *ConflictDetail `json:"conflict,omitempty"`
}

// PlanView is the merged confirmed and staged view returned to clients.
type PlanView struct {
	StudentID string                  `json:"student_id"`
	Records   []EnrollmentRecord      `json:"records"`
	Courses   []CourseEnrollmentState `json:"courses"`
	ExpiresAt *time.Time              `json:"expires_at,omitempty"`
}

// CheckResult is a dry run of staging one class.
type CheckResult struct {
	ClassID     string      `json:"class_id"`
	CanStage    bool        `json:"can_stage"`
	Reason      string      `json:"reason,omitempty"`
	Verdict     Verdict     `json:"verdict"`
	CourseState CourseState `json:"course_state"`
	WouldAdd    []string    `json:"would_add,omitempty"`
}

// StageResult lists the records added by a staging request.
type StageResult struct {
	Added []EnrollmentRecord `json:"added"`
	Plan  PlanView           `json:"plan"`
}

// UnstageResult lists the records removed by an unstage request.
type UnstageResult struct {
	Removed []EnrollmentRecord `json:"removed"`
	Plan    PlanView           `json:"plan"`
}

// SubmitResult carries the enrollments created by a batch submission.
type SubmitResult struct {
	Enrollments []Enrollment `json:"enrollments"`
}
