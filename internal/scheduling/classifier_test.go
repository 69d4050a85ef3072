package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/class-enrollment-api/internal/models"
)

func TestClassifyByName(t *testing.T) {
	cases := []struct {
		name  string
		start string
		want  models.ShiftSlot
	}{
		{"Morning 1", "07:00:00", models.ShiftSlotMorning1},
		{"morning1", "", models.ShiftSlotMorning1},
		{"Morning-2", "", models.ShiftSlotMorning2},
		{"Morning_2", "", models.ShiftSlotMorning2},
		{"Morning Full", "", models.ShiftSlotMorningFull},
		{"FULL MORNING", "", models.ShiftSlotMorningFull},
		{"Afternoon 1", "", models.ShiftSlotAfternoon1},
		{"Afternoon2", "", models.ShiftSlotAfternoon2},
		{"Afternoon Full", "", models.ShiftSlotAfternoonFull},
		{"Morning session", "", models.ShiftSlotMorning},
		{"Morning 12", "", models.ShiftSlotMorning},
		{"Afternoon (lab)", "", models.ShiftSlotAfternoon},
		{"Evening", "19:00", models.ShiftSlotOther},
		{"Block A", "08:30", models.ShiftSlotMorning},
		{"Block B", "13:15:00", models.ShiftSlotAfternoon},
		{"Block C", "10:30", models.ShiftSlotOther},
		{"Block D", "not-a-time", models.ShiftSlotOther},
		{"", "", models.ShiftSlotOther},
	}

	for _, tc := range cases {
		t.Run(tc.name+"/"+tc.start, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.name, tc.start))
		})
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	names := []string{"Morning 1", "Afternoon Full", "Evening", "morning2", "Lab"}
	for _, name := range names {
		first := Classify(name, "08:00")
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, Classify(name, "08:00"))
		}
	}
}

func TestClassifierCustomKeywords(t *testing.T) {
	c := NewClassifier([]string{"pagi"}, []string{"siang"}, []string{"penuh"})

	assert.Equal(t, models.ShiftSlotMorning1, c.Classify("Pagi 1", ""))
	assert.Equal(t, models.ShiftSlotAfternoonFull, c.Classify("Siang Penuh", ""))
	assert.Equal(t, models.ShiftSlotOther, c.Classify("Morning 1", "20:00"))
}

func TestResolvePrefersStoredSlot(t *testing.T) {
	c := NewClassifier(nil, nil, nil)

	tagged := models.Shift{Name: "Morning 1", Slot: models.ShiftSlotAfternoon2}
	assert.Equal(t, models.ShiftSlotAfternoon2, c.Resolve(tagged))

	legacy := models.Shift{Name: "Morning 1", Slot: ""}
	assert.Equal(t, models.ShiftSlotMorning1, c.Resolve(legacy))

	bogus := models.Shift{Name: "Afternoon Full", Slot: "LUNCH"}
	assert.Equal(t, models.ShiftSlotAfternoonFull, c.Resolve(bogus))
}

func TestParseClock(t *testing.T) {
	minutes, ok := ParseClock("07:30")
	assert.True(t, ok)
	assert.Equal(t, 450, minutes)

	minutes, ok = ParseClock("13:05:59")
	assert.True(t, ok)
	assert.Equal(t, 785, minutes)

	for _, raw := range []string{"", "7", "24:00", "12:60", "1:2:3:4", "aa:bb", "123:00"} {
		_, ok := ParseClock(raw)
		assert.False(t, ok, raw)
	}
}
