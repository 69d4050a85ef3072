package models

import "time"

// EnrollmentStatus represents the lifecycle of a confirmed enrollment.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusWithdrawn EnrollmentStatus = "WITHDRAWN"
)

// Enrollment is a server-acknowledged enrollment of a student in a class.
type Enrollment struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	ClassID    string           `db:"class_id" json:"class_id"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt time.Time        `db:"enrolled_at" json:"enrolled_at"`
}

// RecordKind tags an EnrollmentRecord as confirmed or staged.
type RecordKind string

const (
	RecordConfirmed RecordKind = "CONFIRMED"
	RecordStaged    RecordKind = "STAGED"
)

// EnrollmentRecord is the merged view of one class a student holds.
// RecordID is the server enrollment id for confirmed records and the
// temporary staging id for staged ones.
type EnrollmentRecord struct {
	Kind     RecordKind    `json:"kind"`
	RecordID string        `json:"record_id"`
	Class    AcademicClass `json:"class"`
	StagedAt *time.Time    `json:"staged_at,omitempty"`
}

// ConfirmedRecord builds a record for a server-acknowledged enrollment.
func ConfirmedRecord(serverID string, class AcademicClass) EnrollmentRecord {
	return EnrollmentRecord{Kind: RecordConfirmed, RecordID: serverID, Class: class}
}

// StagedRecord builds a record for a locally staged selection.
func StagedRecord(tempID string, class AcademicClass, stagedAt time.Time) EnrollmentRecord {
	at := stagedAt
	return EnrollmentRecord{Kind: RecordStaged, RecordID: tempID, Class: class, StagedAt: &at}
}

// IsStaged reports whether the record is still pending submission.
func (r EnrollmentRecord) IsStaged() bool {
	return r.Kind == RecordStaged
}
