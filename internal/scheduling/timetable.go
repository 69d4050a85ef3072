package scheduling

import (
	"sort"

	"github.com/noah-isme/class-enrollment-api/internal/models"
)

// standardSlots are always rendered, even when empty.
var standardSlots = []models.ShiftSlot{
	models.ShiftSlotMorning1,
	models.ShiftSlotMorning2,
	models.ShiftSlotMorning,
	models.ShiftSlotMorningFull,
	models.ShiftSlotAfternoon1,
	models.ShiftSlotAfternoon2,
	models.ShiftSlotAfternoon,
	models.ShiftSlotAfternoonFull,
}

// BuildTimetable projects records onto a day by slot grid. When week > 0
// only classes running in that week are placed. Monday to Saturday are always
// present; Sunday and the OTHER row only when something lands there.
func BuildTimetable(studentID string, records []models.EnrollmentRecord, book *ShiftBook, week int) models.Timetable {
	cells := make(map[models.ShiftSlot]map[models.Weekday][]models.TimetableEntry)
	usedSunday := false
	usedOther := false

	for _, record := range records {
		if !record.Class.MeetsInWeek(week) {
			continue
		}
		for _, slot := range record.Class.ScheduleInDays {
			day, ok := models.ParseWeekday(string(slot.DayOfWeek))
			if !ok {
				continue
			}
			shiftName, shiftSlot := book.Lookup(slot.ShiftID)
			if cells[shiftSlot] == nil {
				cells[shiftSlot] = make(map[models.Weekday][]models.TimetableEntry)
			}
			cells[shiftSlot][day] = append(cells[shiftSlot][day], models.TimetableEntry{
				ClassID:    record.Class.ID,
				ClassName:  record.Class.Name,
				CourseCode: record.Class.CourseCode,
				ShiftName:  shiftName,
				Kind:       record.Kind,
			})
			if day == models.Sunday {
				usedSunday = true
			}
			if shiftSlot == models.ShiftSlotOther {
				usedOther = true
			}
		}
	}

	days := models.Weekdays[:6]
	if usedSunday {
		days = models.Weekdays
	}
	slots := standardSlots
	if usedOther {
		slots = append(append([]models.ShiftSlot{}, standardSlots...), models.ShiftSlotOther)
	}

	table := models.Timetable{
		StudentID: studentID,
		Week:      week,
		Days:      append([]models.Weekday{}, days...),
		Rows:      make([]models.TimetableRow, 0, len(slots)),
	}
	for _, slot := range slots {
		row := models.TimetableRow{Slot: slot, Cells: make([]models.TimetableCell, 0, len(days))}
		for _, day := range days {
			entries := cells[slot][day]
			sort.SliceStable(entries, func(i, j int) bool { return entries[i].ClassName < entries[j].ClassName })
			if entries == nil {
				entries = []models.TimetableEntry{}
			}
			row.Cells = append(row.Cells, models.TimetableCell{Day: day, Entries: entries})
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
