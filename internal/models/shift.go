package models

import "time"

// ShiftSlot is the semantic category a shift occupies within a day.
type ShiftSlot string

const (
	ShiftSlotMorning1      ShiftSlot = "MORNING_1"
	ShiftSlotMorning2      ShiftSlot = "MORNING_2"
	ShiftSlotMorning       ShiftSlot = "MORNING"
	ShiftSlotMorningFull   ShiftSlot = "MORNING_FULL"
	ShiftSlotAfternoon1    ShiftSlot = "AFTERNOON_1"
	ShiftSlotAfternoon2    ShiftSlot = "AFTERNOON_2"
	ShiftSlotAfternoon     ShiftSlot = "AFTERNOON"
	ShiftSlotAfternoonFull ShiftSlot = "AFTERNOON_FULL"
	ShiftSlotOther         ShiftSlot = "OTHER"
)

// ShiftSlots lists every slot in display order.
var ShiftSlots = []ShiftSlot{
	ShiftSlotMorning1,
	ShiftSlotMorning2,
	ShiftSlotMorning,
	ShiftSlotMorningFull,
	ShiftSlotAfternoon1,
	ShiftSlotAfternoon2,
	ShiftSlotAfternoon,
	ShiftSlotAfternoonFull,
	ShiftSlotOther,
}

// Valid reports whether s is one of the known slot tags.
func (s ShiftSlot) Valid() bool {
	for _, slot := range ShiftSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// Shift is a named time-of-day interval classes are scheduled into.
// Times use the HH:mm:ss layout.
type Shift struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	Slot      ShiftSlot `db:"slot" json:"slot"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
