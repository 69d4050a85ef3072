package models

import "github.com/lib/pq"

// ScheduleSlot pairs a weekday with the shift a class meets in.
type ScheduleSlot struct {
	ClassID   string  `db:"class_id" json:"-"`
	DayOfWeek Weekday `db:"day_of_week" json:"day_of_week"`
	ShiftID   string  `db:"shift_id" json:"shift_id"`
}

// AcademicClass is the schedule-relevant view of an offerable class.
// A class with a parent theory class is a practice class.
type AcademicClass struct {
	ID                    string         `db:"id" json:"id"`
	Name                  string         `db:"name" json:"name"`
	CourseID              string         `db:"course_id" json:"course_id"`
	CourseCode            string         `db:"course_code" json:"course_code"`
	CourseName            string         `db:"course_name" json:"course_name"`
	TermID                string         `db:"term_id" json:"term_id"`
	ParentTheoryClassID   *string        `db:"parent_theory_class_id" json:"parent_theory_class_id,omitempty"`
	Capacity              int            `db:"capacity" json:"capacity"`
	EnrolledCount         int            `db:"enrolled_count" json:"enrolled_count"`
	ListOfWeeks           pq.Int64Array  `db:"list_of_weeks" json:"list_of_weeks,omitempty"`
	ScheduleInDays        []ScheduleSlot `db:"-" json:"schedule_in_days"`
	ChildPracticeClassIDs []string       `db:"-" json:"child_practice_class_ids,omitempty"`
}

// IsPractice reports whether the class hangs off a theory class.
func (c AcademicClass) IsPractice() bool {
	return c.ParentTheoryClassID != nil && *c.ParentTheoryClassID != ""
}

// ParentID returns the parent theory class id or an empty string.
func (c AcademicClass) ParentID() string {
	if c.ParentTheoryClassID == nil {
		return ""
	}
	return *c.ParentTheoryClassID
}

// MeetsInWeek reports whether the class runs in the given teaching week.
// Classes without a week list run every week; week <= 0 matches everything.
func (c AcademicClass) MeetsInWeek(week int) bool {
	if week <= 0 || len(c.ListOfWeeks) == 0 {
		return true
	}
	for _, w := range c.ListOfWeeks {
		if int(w) == week {
			return true
		}
	}
	return false
}

// ClassFilter defines filter criteria for listing offerable classes.
type ClassFilter struct {
	TermID    string
	CourseID  string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
