package scheduling

import "github.com/noah-isme/class-enrollment-api/internal/models"

// SlotsConflict decides whether two slots on the same weekday collide.
// Identical slots collide, and a full shift covers every half of its period.
// OTHER never collides, and morning never collides with afternoon.
func SlotsConflict(a, b models.ShiftSlot) bool {
	if !a.Valid() || !b.Valid() || a == models.ShiftSlotOther || b == models.ShiftSlotOther {
		return false
	}
	if a == b {
		return true
	}
	return covers(a, b) || covers(b, a)
}

func covers(full, part models.ShiftSlot) bool {
	switch full {
	case models.ShiftSlotMorningFull:
		return part == models.ShiftSlotMorning1 || part == models.ShiftSlotMorning2 || part == models.ShiftSlotMorning
	case models.ShiftSlotAfternoonFull:
		return part == models.ShiftSlotAfternoon1 || part == models.ShiftSlotAfternoon2 || part == models.ShiftSlotAfternoon
	default:
		return false
	}
}
