package scheduling

import "github.com/noah-isme/class-enrollment-api/internal/models"

type bookEntry struct {
	shift models.Shift
	slot  models.ShiftSlot
}

// ShiftBook resolves shift ids against the reference shift list fetched for
// one evaluation. Slots are resolved once when the book is built.
type ShiftBook struct {
	entries   map[string]bookEntry
	onMissing func(shiftID string)
}

// NewShiftBook indexes shifts by id. A nil classifier uses the defaults.
func NewShiftBook(shifts []models.Shift, classifier *Classifier) *ShiftBook {
	if classifier == nil {
		classifier = defaultClassifier
	}
	entries := make(map[string]bookEntry, len(shifts))
	for _, shift := range shifts {
		entries[shift.ID] = bookEntry{shift: shift, slot: classifier.Resolve(shift)}
	}
	return &ShiftBook{entries: entries}
}

// OnMissing registers a hook invoked whenever an unknown shift id is looked up.
func (b *ShiftBook) OnMissing(fn func(shiftID string)) *ShiftBook {
	b.onMissing = fn
	return b
}

// Lookup returns the display name and slot for a shift id. Unknown ids
// resolve to OTHER so they never produce a conflict.
func (b *ShiftBook) Lookup(shiftID string) (string, models.ShiftSlot) {
	if b != nil {
		if entry, ok := b.entries[shiftID]; ok {
			return entry.shift.Name, entry.slot
		}
		if b.onMissing != nil {
			b.onMissing(shiftID)
		}
	}
	return "unknown shift " + shiftID, models.ShiftSlotOther
}

// Shift returns the raw shift for an id.
func (b *ShiftBook) Shift(shiftID string) (models.Shift, bool) {
	if b == nil {
		return models.Shift{}, false
	}
	entry, ok := b.entries[shiftID]
	return entry.shift, ok
}
