package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/class-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/class-enrollment-api/pkg/errors"
)

type enrollmentRepository interface {
	ListActiveByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	CreateBatch(ctx context.Context, studentID string, classIDs []string) ([]models.Enrollment, error)
}

type classLookup interface {
	Lookup(ctx context.Context, ids []string) (map[string]models.AcademicClass, error)
}

// EnrollmentService reads confirmed enrollments and submits staged batches.
type EnrollmentService struct {
	repo          enrollmentRepository
	classes       classLookup
	submitTimeout time.Duration
	logger        *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, classes classLookup, submitTimeout time.Duration, logger *zap.Logger) *EnrollmentService {
	if submitTimeout <= 0 {
		submitTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, classes: classes, submitTimeout: submitTimeout, logger: logger}
}

// ListConfirmed returns the student's confirmed enrollments joined with
// their classes. Enrollments whose class no longer exists are skipped.
func (s *EnrollmentService) ListConfirmed(ctx context.Context, studentID string) ([]models.EnrollmentRecord, error) {
	enrollments, err := s.repo.ListActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	if len(enrollments) == 0 {
		return []models.EnrollmentRecord{}, nil
	}

	ids := make([]string, 0, len(enrollments))
	for _, enrollment := range enrollments {
		ids = append(ids, enrollment.ClassID)
	}
	classes, err := s.classes.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	records := make([]models.EnrollmentRecord, 0, len(enrollments))
	for _, enrollment := range enrollments {
		class, ok := classes[enrollment.ClassID]
		if !ok {
			s.logger.Warn("enrollment references missing class",
				zap.String("student_id", studentID),
				zap.String("enrollment_id", enrollment.ID),
				zap.String("class_id", enrollment.ClassID))
			continue
		}
		records = append(records, models.ConfirmedRecord(enrollment.ID, class))
	}
	return records, nil
}

// Submit enrolls the student in every class in one transaction bounded by
// the submit timeout. Any failure is reported as ErrSubmissionFailed.
func (s *EnrollmentService) Submit(ctx context.Context, studentID string, classIDs []string) ([]models.Enrollment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	defer cancel()

	created, err := s.repo.CreateBatch(ctx, studentID, classIDs)
	if err != nil {
		fields := []zap.Field{zap.String("student_id", studentID), zap.Strings("class_ids", classIDs), zap.Error(err)}
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("enrollment submission timed out", fields...)
		} else {
			s.logger.Warn("enrollment submission failed", fields...)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrSubmissionFailed.Code, appErrors.ErrSubmissionFailed.Status, appErrors.ErrSubmissionFailed.Message)
	}
	return created, nil
}
