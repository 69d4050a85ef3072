package scheduling

import (
	"fmt"
	"time"

	"github.com/noah-isme/class-enrollment-api/internal/models"
)

var stagedAt = time.Date(2024, 8, 19, 9, 0, 0, 0, time.UTC)

func testShifts() []models.Shift {
	return []models.Shift{
		{ID: "m1", Name: "Morning 1", StartTime: "07:00:00", EndTime: "08:40:00"},
		{ID: "m2", Name: "Morning 2", StartTime: "08:50:00", EndTime: "10:30:00"},
		{ID: "mf", Name: "Morning Full", StartTime: "07:00:00", EndTime: "10:30:00"},
		{ID: "a1", Name: "Afternoon 1", StartTime: "13:00:00", EndTime: "14:40:00"},
		{ID: "a2", Name: "Afternoon 2", StartTime: "14:50:00", EndTime: "16:30:00"},
		{ID: "af", Name: "Afternoon Full", StartTime: "13:00:00", EndTime: "16:30:00"},
		{ID: "ev", Name: "Evening", StartTime: "18:30:00", EndTime: "20:00:00"},
	}
}

func testBook() *ShiftBook {
	return NewShiftBook(testShifts(), nil)
}

func theory(id, courseID string, slots ...models.ScheduleSlot) models.AcademicClass {
	return models.AcademicClass{
		ID:             id,
		Name:           id,
		CourseID:       courseID,
		CourseCode:     courseID,
		ScheduleInDays: slots,
	}
}

func practice(id, courseID, parentID string, slots ...models.ScheduleSlot) models.AcademicClass {
	class := theory(id, courseID, slots...)
	parent := parentID
	class.ParentTheoryClassID = &parent
	return class
}

func at(day models.Weekday, shiftID string) models.ScheduleSlot {
	return models.ScheduleSlot{DayOfWeek: day, ShiftID: shiftID}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("tmp-%d", n)
	}
}
