package scheduling

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-enrollment-api/internal/models"
)

func findCell(t *testing.T, table models.Timetable, slot models.ShiftSlot, day models.Weekday) models.TimetableCell {
	t.Helper()
	for _, row := range table.Rows {
		if row.Slot != slot {
			continue
		}
		for _, cell := range row.Cells {
			if cell.Day == day {
				return cell
			}
		}
	}
	t.Fatalf("cell %s/%s not found", slot, day)
	return models.TimetableCell{}
}

func TestBuildTimetablePlacesRecords(t *testing.T) {
	records := []models.EnrollmentRecord{
		models.ConfirmedRecord("enr-1", theory("CS101-A", "CS101", at(models.Monday, "m1"))),
		models.StagedRecord("tmp-1", theory("DB-T1", "DB", at("tue", "a2")), stagedAt),
	}

	table := BuildTimetable("stu-1", records, testBook(), 0)

	assert.Equal(t, "stu-1", table.StudentID)
	assert.Len(t, table.Days, 6)
	assert.Len(t, table.Rows, 8)

	cell := findCell(t, table, models.ShiftSlotMorning1, models.Monday)
	require.Len(t, cell.Entries, 1)
	assert.Equal(t, "CS101-A", cell.Entries[0].ClassID)
	assert.Equal(t, models.RecordConfirmed, cell.Entries[0].Kind)

	cell = findCell(t, table, models.ShiftSlotAfternoon2, models.Tuesday)
	require.Len(t, cell.Entries, 1)
	assert.Equal(t, models.RecordStaged, cell.Entries[0].Kind)
	assert.Equal(t, "Afternoon 2", cell.Entries[0].ShiftName)

	assert.Empty(t, findCell(t, table, models.ShiftSlotMorning2, models.Friday).Entries)
}

func TestBuildTimetableAddsSundayAndOtherOnDemand(t *testing.T) {
	records := []models.EnrollmentRecord{
		models.StagedRecord("tmp-1", theory("EV-1", "EV", at(models.Sunday, "ev")), stagedAt),
	}

	table := BuildTimetable("stu-1", records, testBook(), 0)

	assert.Len(t, table.Days, 7)
	require.Len(t, table.Rows, 9)
	assert.Equal(t, models.ShiftSlotOther, table.Rows[8].Slot)
	assert.Len(t, findCell(t, table, models.ShiftSlotOther, models.Sunday).Entries, 1)
}

func TestBuildTimetableFiltersByWeek(t *testing.T) {
	early := theory("EARLY", "C1", at(models.Monday, "m1"))
	early.ListOfWeeks = pq.Int64Array{1, 2, 3}
	late := theory("LATE", "C2", at(models.Monday, "m2"))
	late.ListOfWeeks = pq.Int64Array{8, 9}
	always := theory("ALWAYS", "C3", at(models.Monday, "a1"))

	records := []models.EnrollmentRecord{
		models.ConfirmedRecord("1", early),
		models.ConfirmedRecord("2", late),
		models.ConfirmedRecord("3", always),
	}

	table := BuildTimetable("stu-1", records, testBook(), 2)
	assert.Equal(t, 2, table.Week)
	assert.Len(t, findCell(t, table, models.ShiftSlotMorning1, models.Monday).Entries, 1)
	assert.Empty(t, findCell(t, table, models.ShiftSlotMorning2, models.Monday).Entries)
	assert.Len(t, findCell(t, table, models.ShiftSlotAfternoon1, models.Monday).Entries, 1)
}
