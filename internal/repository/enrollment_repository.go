package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-enrollment-api/internal/models"
)

// ErrClassFull is returned when a class has no seat left at submission time.
var ErrClassFull = errors.New("class has no remaining capacity")

// EnrollmentRepository persists confirmed enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an enrollment repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListActiveByStudent returns the student's active enrollments.
func (r *EnrollmentRepository) ListActiveByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	const query = `SELECT id, student_id, class_id, status, enrolled_at FROM enrollments WHERE student_id = $1 AND status = $2 ORDER BY enrolled_at`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// CreateBatch enrolls the student in every class inside one transaction.
// Each class reserves a seat first; a full class aborts the whole batch with
// ErrClassFull.
func (r *EnrollmentRepository) CreateBatch(ctx context.Context, studentID string, classIDs []string) (created []models.Enrollment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin enrollment batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	created = make([]models.Enrollment, 0, len(classIDs))
	for _, classID := range classIDs {
		res, execErr := tx.ExecContext(ctx, `UPDATE academic_classes SET enrolled_count = enrolled_count + 1 WHERE id = $1 AND enrolled_count < capacity`, classID)
		if execErr != nil {
			err = fmt.Errorf("reserve seat in %s: %w", classID, execErr)
			return nil, err
		}
		affected, rowsErr := res.RowsAffected()
		if rowsErr != nil {
			err = fmt.Errorf("reserve seat in %s: %w", classID, rowsErr)
			return nil, err
		}
		if affected == 0 {
			err = fmt.Errorf("reserve seat in %s: %w", classID, ErrClassFull)
			return nil, err
		}

		enrollment := models.Enrollment{
			ID:         uuid.NewString(),
			StudentID:  studentID,
			ClassID:    classID,
			Status:     models.EnrollmentStatusActive,
			EnrolledAt: now,
		}
		const insert = `INSERT INTO enrollments (id, student_id, class_id, status, enrolled_at) VALUES (:id, :student_id, :class_id, :status, :enrolled_at)`
		if _, execErr = sqlx.NamedExecContext(ctx, tx, insert, &enrollment); execErr != nil {
			err = fmt.Errorf("insert enrollment for %s: %w", classID, execErr)
			return nil, err
		}
		created = append(created, enrollment)
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("commit enrollment batch: %w", err)
		return nil, err
	}
	return created, nil
}
