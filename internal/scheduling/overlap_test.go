package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/class-enrollment-api/internal/models"
)

func TestSlotsConflictIsSymmetric(t *testing.T) {
	for _, a := range models.ShiftSlots {
		for _, b := range models.ShiftSlots {
			assert.Equal(t, SlotsConflict(a, b), SlotsConflict(b, a), "%s vs %s", a, b)
		}
	}
}

func TestFullShiftCoversItsPeriod(t *testing.T) {
	for _, part := range []models.ShiftSlot{models.ShiftSlotMorning1, models.ShiftSlotMorning2, models.ShiftSlotMorning} {
		assert.True(t, SlotsConflict(models.ShiftSlotMorningFull, part), part)
		assert.False(t, SlotsConflict(models.ShiftSlotAfternoonFull, part), part)
	}
	for _, part := range []models.ShiftSlot{models.ShiftSlotAfternoon1, models.ShiftSlotAfternoon2, models.ShiftSlotAfternoon} {
		assert.True(t, SlotsConflict(models.ShiftSlotAfternoonFull, part), part)
		assert.False(t, SlotsConflict(models.ShiftSlotMorningFull, part), part)
	}
}

func TestSlotsConflictRules(t *testing.T) {
	assert.True(t, SlotsConflict(models.ShiftSlotMorning1, models.ShiftSlotMorning1))
	assert.True(t, SlotsConflict(models.ShiftSlotAfternoonFull, models.ShiftSlotAfternoonFull))
	assert.False(t, SlotsConflict(models.ShiftSlotMorning1, models.ShiftSlotMorning2))
	assert.False(t, SlotsConflict(models.ShiftSlotMorning1, models.ShiftSlotAfternoon1))
	assert.False(t, SlotsConflict(models.ShiftSlotMorningFull, models.ShiftSlotAfternoonFull))
	assert.False(t, SlotsConflict(models.ShiftSlotOther, models.ShiftSlotOther))
	assert.False(t, SlotsConflict(models.ShiftSlotOther, models.ShiftSlotMorning1))
	assert.False(t, SlotsConflict("", ""))
}
