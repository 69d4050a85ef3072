package models

import "strings"

// Weekday is the canonical English weekday name used by class schedules.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists the days in timetable order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday accepts full or three-letter names in any case.
func ParseWeekday(raw string) (Weekday, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if len(key) < 3 {
		return "", false
	}
	for _, day := range Weekdays {
		name := strings.ToLower(string(day))
		if key == name || key == name[:3] {
			return day, true
		}
	}
	return "", false
}
