// Package scheduling holds the enrollment planner's pure scheduling rules:
// shift classification, slot overlap, conflict checking, the theory and
// practice pairing ledger and the weekly timetable projection.
package scheduling

import (
	"strconv"
	"strings"

	"github.com/noah-isme/class-enrollment-api/internal/models"
)

var (
	defaultMorningKeywords   = []string{"morning"}
	defaultAfternoonKeywords = []string{"afternoon"}
	defaultFullKeywords      = []string{"full"}
)

// Clock windows used when a shift name carries no period keyword.
const (
	morningStart   = 7 * 60
	morningEnd     = 9*60 + 59
	afternoonStart = 12 * 60
	afternoonEnd   = 17*60 + 59
)

// Classifier maps free-text shift names onto slot tags. It only proposes a
// tag; shifts that already carry a valid tag keep it.
type Classifier struct {
	morning   []string
	afternoon []string
	full      []string
}

// NewClassifier builds a classifier from keyword lists. Empty lists fall back
// to the English defaults.
func NewClassifier(morning, afternoon, full []string) *Classifier {
	return &Classifier{
		morning:   keywordsOrDefault(morning, defaultMorningKeywords),
		afternoon: keywordsOrDefault(afternoon, defaultAfternoonKeywords),
		full:      keywordsOrDefault(full, defaultFullKeywords),
	}
}

var defaultClassifier = NewClassifier(nil, nil, nil)

// Classify uses the default English keywords.
func Classify(name, startTime string) models.ShiftSlot {
	return defaultClassifier.Classify(name, startTime)
}

// Classify derives a slot from the shift name, falling back to the start time.
func (c *Classifier) Classify(name, startTime string) models.ShiftSlot {
	normalized := normalizeName(name)

	if containsAny(normalized, c.full) {
		if containsAny(normalized, c.morning) {
			return models.ShiftSlotMorningFull
		}
		if containsAny(normalized, c.afternoon) {
			return models.ShiftSlotAfternoonFull
		}
	}

	if slot, ok := matchPeriod(normalized, c.morning, models.ShiftSlotMorning1, models.ShiftSlotMorning2, models.ShiftSlotMorning); ok {
		return slot
	}
	if slot, ok := matchPeriod(normalized, c.afternoon, models.ShiftSlotAfternoon1, models.ShiftSlotAfternoon2, models.ShiftSlotAfternoon); ok {
		return slot
	}

	minutes, ok := ParseClock(startTime)
	switch {
	case !ok:
		return models.ShiftSlotOther
	case minutes >= morningStart && minutes <= morningEnd:
		return models.ShiftSlotMorning
	case minutes >= afternoonStart && minutes <= afternoonEnd:
		return models.ShiftSlotAfternoon
	default:
		return models.ShiftSlotOther
	}
}

// Resolve returns the stored tag when valid, otherwise the classified one.
func (c *Classifier) Resolve(shift models.Shift) models.ShiftSlot {
	if shift.Slot.Valid() {
		return shift.Slot
	}
	return c.Classify(shift.Name, shift.StartTime)
}

// ParseClock converts HH:mm or HH:mm:ss into minutes after midnight.
func ParseClock(raw string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	limits := []int{23, 59, 59}
	values := make([]int, len(parts))
	for i, part := range parts {
		if len(part) == 0 || len(part) > 2 {
			return 0, false
		}
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 || v > limits[i] {
			return 0, false
		}
		values[i] = v
	}
	return values[0]*60 + values[1], true
}

func matchPeriod(name string, keywords []string, first, second, generic models.ShiftSlot) (models.ShiftSlot, bool) {
	matched := false
	for _, kw := range keywords {
		if !strings.Contains(name, kw) {
			continue
		}
		matched = true
		switch {
		case hasOrdinal(name, kw, '1'):
			return first, true
		case hasOrdinal(name, kw, '2'):
			return second, true
		}
	}
	if matched {
		return generic, true
	}
	return "", false
}

// hasOrdinal reports whether kw is followed, optionally after one space, by
// the single digit d ("morning 1", "morning1" but not "morning 12").
func hasOrdinal(name, kw string, d byte) bool {
	for offset := 0; offset < len(name); {
		idx := strings.Index(name[offset:], kw)
		if idx < 0 {
			return false
		}
		pos := offset + idx + len(kw)
		if pos < len(name) && name[pos] == ' ' {
			pos++
		}
		if pos < len(name) && name[pos] == d && (pos+1 == len(name) || !isDigit(name[pos+1])) {
			return true
		}
		offset += idx + len(kw)
	}
	return false
}

func normalizeName(name string) string {
	replacer := strings.NewReplacer("-", " ", "_", " ", ".", " ", "(", " ", ")", " ")
	return strings.Join(strings.Fields(replacer.Replace(strings.ToLower(name))), " ")
}

func containsAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

func keywordsOrDefault(keywords, fallback []string) []string {
	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	if len(cleaned) == 0 {
		return fallback
	}
	return cleaned
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
