package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-enrollment-api/internal/models"
)

const reserveSeat = "UPDATE academic_classes SET enrolled_count = enrolled_count + 1 WHERE id = $1 AND enrolled_count < capacity"

func TestEnrollmentRepositoryListActiveByStudent(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "class_id", "status", "enrolled_at"}).
		AddRow("enr-1", "stu-1", "CS101-A", models.EnrollmentStatusActive, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, class_id, status, enrolled_at FROM enrollments WHERE student_id = $1 AND status = $2")).
		WithArgs("stu-1", models.EnrollmentStatusActive).
		WillReturnRows(rows)

	enrollments, err := repo.ListActiveByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, "CS101-A", enrollments[0].ClassID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateBatchCommits(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	for _, classID := range []string{"DB-T1", "DB-P1"} {
		mock.ExpectExec(regexp.QuoteMeta(reserveSeat)).WithArgs(classID).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO enrollments").
			WithArgs(sqlmock.AnyArg(), "stu-1", classID, models.EnrollmentStatusActive, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	created, err := repo.CreateBatch(context.Background(), "stu-1", []string{"DB-T1", "DB-P1"})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.NotEmpty(t, created[0].ID)
	assert.Equal(t, "DB-P1", created[1].ClassID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateBatchRollsBackWhenFull(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(reserveSeat)).WithArgs("DB-T1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO enrollments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(reserveSeat)).WithArgs("DB-P1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	created, err := repo.CreateBatch(context.Background(), "stu-1", []string{"DB-T1", "DB-P1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrClassFull))
	assert.Nil(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateBatchRollsBackOnInsertError(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(reserveSeat)).WithArgs("CS101-A").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO enrollments").WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	_, err := repo.CreateBatch(context.Background(), "stu-1", []string{"CS101-A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert enrollment for CS101-A")
	require.NoError(t, mock.ExpectationsWereMet())
}
