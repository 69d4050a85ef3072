package scheduling

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/class-enrollment-api/internal/models"
)

// Options tunes ledger rules.
type Options struct {
	// RejectEmptySchedule refuses classes without schedule entries instead of
	// letting them pass the conflict check vacuously.
	RejectEmptySchedule bool
}

// Ledger is the merged confirmed and staged view of one student's
// enrollments. It is rebuilt for every evaluation and enforces the one class
// per course rule together with theory and practice pairing.
type Ledger struct {
	records []models.EnrollmentRecord
	book    *ShiftBook
	opts    Options
}

// NewLedger builds a ledger over the given records.
func NewLedger(records []models.EnrollmentRecord, book *ShiftBook, opts Options) *Ledger {
	copied := make([]models.EnrollmentRecord, len(records))
	copy(copied, records)
	return &Ledger{records: copied, book: book, opts: opts}
}

// Records returns a copy of every record, confirmed first.
func (l *Ledger) Records() []models.EnrollmentRecord {
	out := make([]models.EnrollmentRecord, 0, len(l.records))
	for _, kind := range []models.RecordKind{models.RecordConfirmed, models.RecordStaged} {
		for _, record := range l.records {
			if record.Kind == kind {
				out = append(out, record)
			}
		}
	}
	return out
}

// Staged returns the staged records in staging order.
func (l *Ledger) Staged() []models.EnrollmentRecord {
	var out []models.EnrollmentRecord
	for _, record := range l.records {
		if record.IsStaged() {
			out = append(out, record)
		}
	}
	return out
}

// Find returns the record holding classID.
func (l *Ledger) Find(classID string) (models.EnrollmentRecord, bool) {
	for _, record := range l.records {
		if record.Class.ID == classID {
			return record, true
		}
	}
	return models.EnrollmentRecord{}, false
}

// CourseState reports the pairing state of a course.
func (l *Ledger) CourseState(courseID string) models.CourseState {
	held := false
	for _, record := range l.records {
		if record.Class.CourseID != courseID {
			continue
		}
		if record.Class.IsPractice() {
			return models.CourseTheoryAndPractice
		}
		held = true
	}
	if held {
		return models.CourseTheoryOnly
	}
	return models.CourseNotEnrolled
}

// Courses reports the state of every course present in the ledger.
func (l *Ledger) Courses() []models.CourseEnrollmentState {
	seen := make(map[string]bool)
	var out []models.CourseEnrollmentState
	for _, record := range l.Records() {
		courseID := record.Class.CourseID
		if seen[courseID] {
			continue
		}
		seen[courseID] = true
		out = append(out, models.CourseEnrollmentState{
			CourseID:   courseID,
			CourseCode: record.Class.CourseCode,
			State:      l.CourseState(courseID),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CourseCode < out[j].CourseCode })
	return out
}

// Plan works out which classes staging candidate would add without changing
// the ledger. A practice candidate pulls in its parent theory class unless the
// parent is already staged. parent must be the candidate's theory class for
// practice candidates and is ignored otherwise.
func (l *Ledger) Plan(candidate models.AcademicClass, parent *models.AcademicClass) ([]models.AcademicClass, models.Verdict, error) {
	additions, err := l.additions(candidate, parent)
	if err != nil {
		return nil, models.Verdict{}, err
	}

	if l.opts.RejectEmptySchedule {
		for _, class := range additions {
			if len(class.ScheduleInDays) == 0 {
				return nil, models.Verdict{}, &Rejection{
					Kind:    RejectMalformedSchedule,
					ClassID: class.ID,
					Reason:  fmt.Sprintf("%s has no schedule entries", class.Name),
				}
			}
		}
	}

	effective := OccupancyOf(l.records, l.book)
	for _, class := range additions {
		verdict := CheckConflict(class, effective, l.book)
		if verdict.HasConflict {
			return nil, verdict, &Rejection{
				Kind:    RejectScheduleConflict,
				ClassID: class.ID,
				Reason:  verdict.Reason,
				Verdict: verdict,
			}
		}
		effective = append(effective, Occupy(class, models.RecordStaged, l.book)...)
	}
	return additions, models.Verdict{}, nil
}

// Stage applies Plan and records the additions as staged. newID supplies the
// temporary id of each new record. Either every addition is staged or none.
func (l *Ledger) Stage(candidate models.AcademicClass, parent *models.AcademicClass, newID func() string, now time.Time) ([]models.EnrollmentRecord, error) {
	additions, _, err := l.Plan(candidate, parent)
	if err != nil {
		return nil, err
	}
	added := make([]models.EnrollmentRecord, 0, len(additions))
	for _, class := range additions {
		added = append(added, models.StagedRecord(newID(), class, now))
	}
	l.records = append(l.records, added...)
	return added, nil
}

// Unstage removes a staged class. Removing a theory class also removes its
// staged practice classes; removing a practice class keeps its theory class.
func (l *Ledger) Unstage(classID string) ([]models.EnrollmentRecord, error) {
	record, ok := l.Find(classID)
	if !ok {
		return nil, &Rejection{Kind: RejectNotStaged, ClassID: classID, Reason: fmt.Sprintf("class %s is not staged", classID)}
	}
	if !record.IsStaged() {
		return nil, &Rejection{
			Kind:    RejectConfirmed,
			ClassID: classID,
			Reason:  fmt.Sprintf("%s is a confirmed enrollment and cannot be removed here", record.Class.Name),
		}
	}

	remove := map[string]bool{classID: true}
	if !record.Class.IsPractice() {
		for _, other := range l.records {
			if other.IsStaged() && other.Class.ParentID() == classID {
				remove[other.Class.ID] = true
			}
		}
	}

	var removed []models.EnrollmentRecord
	kept := l.records[:0:0]
	for _, other := range l.records {
		if other.IsStaged() && remove[other.Class.ID] {
			removed = append(removed, other)
			continue
		}
		kept = append(kept, other)
	}
	l.records = kept
	return removed, nil
}

// Rebuild re-applies staged records over the confirmed ones, keeping their
// ids. Theory classes are applied before practice classes. Staged records
// that no longer satisfy the rules, e.g. after confirmed enrollments changed,
// are left out and returned as rejections.
func Rebuild(confirmed, staged []models.EnrollmentRecord, book *ShiftBook, opts Options) (*Ledger, []*Rejection) {
	ledger := NewLedger(confirmed, book, opts)

	ordered := make([]models.EnrollmentRecord, len(staged))
	copy(ordered, staged)
	sort.SliceStable(ordered, func(i, j int) bool {
		return !ordered[i].Class.IsPractice() && ordered[j].Class.IsPractice()
	})

	var dropped []*Rejection
	for _, record := range ordered {
		if err := ledger.restore(record); err != nil {
			dropped = append(dropped, err)
			continue
		}
		ledger.records = append(ledger.records, record)
	}
	return ledger, dropped
}

// Replay is the strict form of Rebuild: it fails on the first staged record
// that cannot be restored.
func Replay(confirmed, staged []models.EnrollmentRecord, book *ShiftBook, opts Options) (*Ledger, error) {
	ledger, dropped := Rebuild(confirmed, staged, book, opts)
	if len(dropped) > 0 {
		return nil, dropped[0]
	}
	return ledger, nil
}

func (l *Ledger) restore(record models.EnrollmentRecord) *Rejection {
	var parent *models.AcademicClass
	if record.Class.IsPractice() {
		if held, ok := l.Find(record.Class.ParentID()); ok {
			parentClass := held.Class
			parent = &parentClass
		}
	}
	additions, _, err := l.Plan(record.Class, parent)
	if err != nil {
		if rejection, ok := AsRejection(err); ok {
			return rejection
		}
		return &Rejection{Kind: RejectMalformedSchedule, ClassID: record.Class.ID, Reason: err.Error()}
	}
	if len(additions) != 1 {
		return &Rejection{
			Kind:    RejectMissingParent,
			ClassID: record.Class.ID,
			Reason:  fmt.Sprintf("%s requires its theory class to be staged", record.Class.Name),
		}
	}
	return nil
}

func (l *Ledger) additions(candidate models.AcademicClass, parent *models.AcademicClass) ([]models.AcademicClass, error) {
	if !candidate.IsPractice() {
		if err := l.ensureCourseFree(candidate, ""); err != nil {
			return nil, err
		}
		return []models.AcademicClass{candidate}, nil
	}

	if parent == nil || parent.ID != candidate.ParentID() {
		return nil, &Rejection{
			Kind:    RejectMissingParent,
			ClassID: candidate.ID,
			Reason:  fmt.Sprintf("theory class of %s is unavailable", candidate.Name),
		}
	}

	if held, ok := l.Find(parent.ID); ok && held.IsStaged() {
		if err := l.ensureCourseFree(candidate, parent.ID); err != nil {
			return nil, err
		}
		return []models.AcademicClass{candidate}, nil
	}

	if err := l.ensureCourseFree(*parent, ""); err != nil {
		return nil, err
	}
	if candidate.CourseID != parent.CourseID {
		if err := l.ensureCourseFree(candidate, ""); err != nil {
			return nil, err
		}
	}
	return []models.AcademicClass{*parent, candidate}, nil
}

// ensureCourseFree rejects when the class's course already holds a record,
// except for the staged theory class identified by allowStagedID.
func (l *Ledger) ensureCourseFree(class models.AcademicClass, allowStagedID string) error {
	for _, record := range l.records {
		if record.Class.CourseID != class.CourseID {
			continue
		}
		if record.IsStaged() && allowStagedID != "" && record.Class.ID == allowStagedID {
			continue
		}
		state := "staged"
		if !record.IsStaged() {
			state = "enrolled"
		}
		return &Rejection{
			Kind:    RejectDuplicateCourse,
			ClassID: class.ID,
			Reason:  fmt.Sprintf("course %s is already %s through %s", courseLabel(class), state, record.Class.Name),
		}
	}
	return nil
}

func courseLabel(class models.AcademicClass) string {
	if class.CourseCode != "" {
		return class.CourseCode
	}
	return class.CourseID
}
