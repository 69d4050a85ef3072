package scheduling

import (
	"fmt"
	"strings"

	"github.com/noah-isme/class-enrollment-api/internal/models"
)

// Occupancy is one (day, slot) a held class occupies.
type Occupancy struct {
	Day       models.Weekday
	Slot      models.ShiftSlot
	ShiftName string
	ClassID   string
	ClassName string
	Kind      models.RecordKind
}

// Occupy expands a class's weekly schedule into occupancies.
func Occupy(class models.AcademicClass, kind models.RecordKind, book *ShiftBook) []Occupancy {
	out := make([]Occupancy, 0, len(class.ScheduleInDays))
	for _, entry := range class.ScheduleInDays {
		name, slot := book.Lookup(entry.ShiftID)
		out = append(out, Occupancy{
			Day:       canonicalDay(entry.DayOfWeek),
			Slot:      slot,
			ShiftName: name,
			ClassID:   class.ID,
			ClassName: class.Name,
			Kind:      kind,
		})
	}
	return out
}

// OccupancyOf expands every record into the effective schedule.
func OccupancyOf(records []models.EnrollmentRecord, book *ShiftBook) []Occupancy {
	var out []Occupancy
	for _, record := range records {
		out = append(out, Occupy(record.Class, record.Kind, book)...)
	}
	return out
}

// CheckConflict compares every slot of candidate against the effective
// schedule and stops at the first collision. A candidate without schedule
// entries passes.
func CheckConflict(candidate models.AcademicClass, effective []Occupancy, book *ShiftBook) models.Verdict {
	for _, entry := range candidate.ScheduleInDays {
		day := canonicalDay(entry.DayOfWeek)
		shiftName, slot := book.Lookup(entry.ShiftID)
		for _, held := range effective {
			if held.ClassID == candidate.ID || held.Day != day {
				continue
			}
			if !SlotsConflict(slot, held.Slot) {
				continue
			}
			detail := &models.ConflictDetail{
				Day:                day,
				CandidateClassID:   candidate.ID,
				CandidateClassName: candidate.Name,
				CandidateShift:     shiftName,
				ExistingClassID:    held.ClassID,
				ExistingClassName:  held.ClassName,
				ExistingShift:      held.ShiftName,
				ExistingKind:       held.Kind,
			}
			return models.Verdict{HasConflict: true, Reason: conflictReason(detail), Conflict: detail}
		}
	}
	return models.Verdict{}
}

func conflictReason(d *models.ConflictDetail) string {
	return fmt.Sprintf("%s conflicts with %s class %s on %s: %s overlaps %s",
		d.CandidateClassName,
		strings.ToLower(string(d.ExistingKind)),
		d.ExistingClassName,
		d.Day,
		d.CandidateShift,
		d.ExistingShift,
	)
}

func canonicalDay(raw models.Weekday) models.Weekday {
	if day, ok := models.ParseWeekday(string(raw)); ok {
		return day
	}
	return raw
}
