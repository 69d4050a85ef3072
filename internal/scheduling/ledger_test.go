package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-enrollment-api/internal/models"
)

func TestStagePracticePullsInTheory(t *testing.T) {
	book := testBook()
	th := theory("DB-T1", "DB", at(models.Tuesday, "a1"))
	pr := practice("DB-P1", "DB", "DB-T1", at(models.Tuesday, "a2"))
	ledger := NewLedger(nil, book, Options{})

	added, err := ledger.Stage(pr, &th, sequentialIDs(), stagedAt)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, "DB-T1", added[0].Class.ID)
	assert.Equal(t, "DB-P1", added[1].Class.ID)
	assert.Equal(t, "tmp-1", added[0].RecordID)
	assert.True(t, added[1].IsStaged())
	assert.Equal(t, models.CourseTheoryAndPractice, ledger.CourseState("DB"))
}

func TestStagePracticeIsAtomic(t *testing.T) {
	book := testBook()
	held := theory("OS-T1", "OS", at(models.Tuesday, "a1"))
	ledger := NewLedger([]models.EnrollmentRecord{models.ConfirmedRecord("enr-1", held)}, book, Options{})

	th := theory("DB-T1", "DB", at(models.Wednesday, "m1"))
	pr := practice("DB-P1", "DB", "DB-T1", at(models.Tuesday, "af"))

	added, err := ledger.Stage(pr, &th, sequentialIDs(), stagedAt)
	require.Error(t, err)
	assert.Nil(t, added)
	rejection, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectScheduleConflict, rejection.Kind)
	assert.Equal(t, "DB-P1", rejection.ClassID)
	assert.Len(t, ledger.Records(), 1)
	assert.Empty(t, ledger.Staged())
	assert.Equal(t, models.CourseNotEnrolled, ledger.CourseState("DB"))
}

func TestStagePracticeCheckedAgainstItsOwnTheory(t *testing.T) {
	book := testBook()
	th := theory("DB-T1", "DB", at(models.Thursday, "mf"))
	pr := practice("DB-P1", "DB", "DB-T1", at(models.Thursday, "m2"))
	ledger := NewLedger(nil, book, Options{})

	_, _, err := ledger.Plan(pr, &th)
	rejection, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectScheduleConflict, rejection.Kind)
	assert.Equal(t, "DB-T1", rejection.Verdict.Conflict.ExistingClassID)
}

func TestStagePracticeWhenTheoryAlreadyStaged(t *testing.T) {
	book := testBook()
	th := theory("DB-T1", "DB", at(models.Monday, "m1"))
	pr := practice("DB-P1", "DB", "DB-T1", at(models.Monday, "a1"))
	ledger := NewLedger(nil, book, Options{})
	ids := sequentialIDs()

	_, err := ledger.Stage(th, nil, ids, stagedAt)
	require.NoError(t, err)
	assert.Equal(t, models.CourseTheoryOnly, ledger.CourseState("DB"))

	added, err := ledger.Stage(pr, &th, ids, stagedAt)
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, "DB-P1", added[0].Class.ID)
	assert.Equal(t, models.CourseTheoryAndPractice, ledger.CourseState("DB"))
}

func TestStagePracticeOfDifferentTheoryIsDuplicate(t *testing.T) {
	book := testBook()
	t1 := theory("DB-T1", "DB", at(models.Monday, "m1"))
	t2 := theory("DB-T2", "DB", at(models.Friday, "m1"))
	pr := practice("DB-P2", "DB", "DB-T2", at(models.Friday, "a1"))
	ledger := NewLedger(nil, book, Options{})

	_, err := ledger.Stage(t1, nil, sequentialIDs(), stagedAt)
	require.NoError(t, err)

	_, err = ledger.Stage(pr, &t2, sequentialIDs(), stagedAt)
	rejection, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectDuplicateCourse, rejection.Kind)
}

func TestConfirmedCourseRejectsAnyStaging(t *testing.T) {
	book := testBook()
	confirmed := theory("CS101-A", "CS101", at(models.Monday, "m1"))
	ledger := NewLedger([]models.EnrollmentRecord{models.ConfirmedRecord("enr-1", confirmed)}, book, Options{})

	other := theory("CS101-B", "CS101", at(models.Saturday, "a1"))
	_, err := ledger.Stage(other, nil, sequentialIDs(), stagedAt)
	rejection, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectDuplicateCourse, rejection.Kind)
	assert.Contains(t, rejection.Reason, "enrolled")

	pr := practice("CS101-P1", "CS101", "CS101-A", at(models.Saturday, "a2"))
	_, err = ledger.Stage(pr, &confirmed, sequentialIDs(), stagedAt)
	rejection, ok = AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectDuplicateCourse, rejection.Kind)
	assert.Empty(t, ledger.Staged())
}

func TestAtMostOneTheoryAndOnePracticePerCourse(t *testing.T) {
	book := testBook()
	th := theory("DB-T1", "DB", at(models.Monday, "m1"))
	p1 := practice("DB-P1", "DB", "DB-T1", at(models.Monday, "a1"))
	p2 := practice("DB-P2", "DB", "DB-T1", at(models.Tuesday, "a1"))
	ledger := NewLedger(nil, book, Options{})
	ids := sequentialIDs()

	_, err := ledger.Stage(p1, &th, ids, stagedAt)
	require.NoError(t, err)

	_, err = ledger.Stage(p2, &th, ids, stagedAt)
	require.Error(t, err)
	_, err = ledger.Stage(th, nil, ids, stagedAt)
	require.Error(t, err)

	theories, practices := 0, 0
	for _, record := range ledger.Records() {
		if record.Class.CourseID != "DB" {
			continue
		}
		if record.Class.IsPractice() {
			practices++
		} else {
			theories++
		}
	}
	assert.Equal(t, 1, theories)
	assert.Equal(t, 1, practices)
}

func TestPracticeWithoutParentIsRejected(t *testing.T) {
	ledger := NewLedger(nil, testBook(), Options{})
	pr := practice("DB-P1", "DB", "DB-T1", at(models.Monday, "a1"))

	_, err := ledger.Stage(pr, nil, sequentialIDs(), stagedAt)
	rejection, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectMissingParent, rejection.Kind)
}

func TestRejectEmptyScheduleOption(t *testing.T) {
	empty := theory("SEM-1", "SEM")

	lenient := NewLedger(nil, testBook(), Options{})
	_, err := lenient.Stage(empty, nil, sequentialIDs(), stagedAt)
	require.NoError(t, err)

	strict := NewLedger(nil, testBook(), Options{RejectEmptySchedule: true})
	_, err = strict.Stage(empty, nil, sequentialIDs(), stagedAt)
	rejection, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectMalformedSchedule, rejection.Kind)
}

func TestUnstageTheoryCascadesToPractice(t *testing.T) {
	th := theory("DB-T1", "DB", at(models.Tuesday, "a1"))
	pr := practice("DB-P1", "DB", "DB-T1", at(models.Tuesday, "a2"))
	ledger := NewLedger(nil, testBook(), Options{})
	_, err := ledger.Stage(pr, &th, sequentialIDs(), stagedAt)
	require.NoError(t, err)

	removed, err := ledger.Unstage("DB-T1")
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.Empty(t, ledger.Records())
	assert.Equal(t, models.CourseNotEnrolled, ledger.CourseState("DB"))
}

func TestUnstagePracticeKeepsTheory(t *testing.T) {
	th := theory("DB-T1", "DB", at(models.Tuesday, "a1"))
	pr := practice("DB-P1", "DB", "DB-T1", at(models.Tuesday, "a2"))
	ledger := NewLedger(nil, testBook(), Options{})
	_, err := ledger.Stage(pr, &th, sequentialIDs(), stagedAt)
	require.NoError(t, err)

	removed, err := ledger.Unstage("DB-P1")
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "DB-P1", removed[0].Class.ID)
	assert.Equal(t, models.CourseTheoryOnly, ledger.CourseState("DB"))
}

func TestUnstageRejectsConfirmedAndUnknown(t *testing.T) {
	held := theory("CS101-A", "CS101", at(models.Monday, "m1"))
	ledger := NewLedger([]models.EnrollmentRecord{models.ConfirmedRecord("enr-1", held)}, testBook(), Options{})

	_, err := ledger.Unstage("CS101-A")
	rejection, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectConfirmed, rejection.Kind)

	_, err = ledger.Unstage("nope")
	rejection, ok = AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectNotStaged, rejection.Kind)
	assert.Len(t, ledger.Records(), 1)
}

func TestReplayKeepsValidPlanAndOrdersTheoriesFirst(t *testing.T) {
	th := theory("DB-T1", "DB", at(models.Tuesday, "a1"))
	pr := practice("DB-P1", "DB", "DB-T1", at(models.Tuesday, "a2"))
	staged := []models.EnrollmentRecord{
		models.StagedRecord("tmp-2", pr, stagedAt),
		models.StagedRecord("tmp-1", th, stagedAt),
	}

	ledger, err := Replay(nil, staged, testBook(), Options{})
	require.NoError(t, err)
	records := ledger.Staged()
	require.Len(t, records, 2)
	assert.Equal(t, "tmp-1", records[0].RecordID)
	assert.Equal(t, "tmp-2", records[1].RecordID)
}

func TestReplayFailsWhenConfirmedScheduleChanged(t *testing.T) {
	staged := []models.EnrollmentRecord{
		models.StagedRecord("tmp-1", theory("MA201-B", "MA201", at(models.Monday, "mf")), stagedAt),
	}
	confirmed := []models.EnrollmentRecord{
		models.ConfirmedRecord("enr-1", theory("CS101-A", "CS101", at(models.Monday, "m1"))),
	}

	_, err := Replay(confirmed, staged, testBook(), Options{})
	rejection, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectScheduleConflict, rejection.Kind)
}

func TestCoursesReportsEveryHeldCourse(t *testing.T) {
	confirmed := []models.EnrollmentRecord{
		models.ConfirmedRecord("enr-1", theory("CS101-A", "CS101", at(models.Monday, "m1"))),
	}
	ledger := NewLedger(confirmed, testBook(), Options{})
	th := theory("DB-T1", "DB", at(models.Tuesday, "a1"))
	pr := practice("DB-P1", "DB", "DB-T1", at(models.Tuesday, "a2"))
	_, err := ledger.Stage(pr, &th, sequentialIDs(), stagedAt)
	require.NoError(t, err)

	courses := ledger.Courses()
	require.Len(t, courses, 2)
	assert.Equal(t, "CS101", courses[0].CourseCode)
	assert.Equal(t, models.CourseTheoryOnly, courses[0].State)
	assert.Equal(t, models.CourseTheoryAndPractice, courses[1].State)
}

func TestRebuildDropsStaleEntries(t *testing.T) {
	confirmed := []models.EnrollmentRecord{
		models.ConfirmedRecord("enr-1", theory("CS101-A", "CS101", at(models.Monday, "m1"))),
	}
	th := theory("DB-T1", "DB", at(models.Monday, "mf"))
	pr := practice("DB-P1", "DB", "DB-T1", at(models.Tuesday, "a1"))
	keep := theory("OS-T1", "OS", at(models.Friday, "a1"))
	staged := []models.EnrollmentRecord{
		models.StagedRecord("tmp-1", th, stagedAt),
		models.StagedRecord("tmp-2", pr, stagedAt),
		models.StagedRecord("tmp-3", keep, stagedAt),
	}

	ledger, dropped := Rebuild(confirmed, staged, testBook(), Options{})

	require.Len(t, dropped, 2)
	assert.Equal(t, RejectScheduleConflict, dropped[0].Kind)
	assert.Equal(t, "DB-T1", dropped[0].ClassID)
	assert.Equal(t, RejectMissingParent, dropped[1].Kind)
	require.Len(t, ledger.Staged(), 1)
	assert.Equal(t, "OS-T1", ledger.Staged()[0].Class.ID)
}
