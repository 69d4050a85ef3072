package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/class-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/class-enrollment-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.AcademicClass, int, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.AcademicClass, error)
}

// ClassService lists offerable classes.
type ClassService struct {
	repo   classRepository
	logger *zap.Logger
}

// NewClassService constructs ClassService.
func NewClassService(repo classRepository, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, logger: logger}
}

// List returns classes with pagination metadata.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.AcademicClass, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return classes, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Lookup returns the requested classes keyed by id.
func (s *ClassService) Lookup(ctx context.Context, ids []string) (map[string]models.AcademicClass, error) {
	classes, err := s.repo.FindByIDs(ctx, uniqueStrings(ids))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	out := make(map[string]models.AcademicClass, len(classes))
	for _, class := range classes {
		out[class.ID] = class
	}
	return out, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
