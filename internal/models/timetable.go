package models

// TimetableEntry is one class placed in a timetable cell.
type TimetableEntry struct {
	ClassID    string     `json:"class_id"`
	ClassName  string     `json:"class_name"`
	CourseCode string     `json:"course_code"`
	ShiftName  string     `json:"shift_name"`
	Kind       RecordKind `json:"kind"`
}

// TimetableCell holds the entries of one day in one slot row.
type TimetableCell struct {
	Day     Weekday          `json:"day"`
	Entries []TimetableEntry `json:"entries"`
}

// TimetableRow is one shift slot across the week.
type TimetableRow struct {
	Slot  ShiftSlot       `json:"slot"`
	Cells []TimetableCell `json:"cells"`
}

// Timetable is the day by shift grid of a student's classes.
type Timetable struct {
	StudentID string         `json:"student_id"`
	Week      int            `json:"week,omitempty"`
	Days      []Weekday      `json:"days"`
	Rows      []TimetableRow `json:"rows"`
}
