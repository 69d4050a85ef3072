package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/class-enrollment-api/internal/models"
	"github.com/noah-isme/class-enrollment-api/internal/scheduling"
	appErrors "github.com/noah-isme/class-enrollment-api/pkg/errors"
)

const shiftListCacheKey = "shifts:all"

type shiftRepository interface {
	List(ctx context.Context) ([]models.Shift, error)
	FindByID(ctx context.Context, id string) (*models.Shift, error)
	Create(ctx context.Context, shift *models.Shift) error
}

// CreateShiftRequest captures a new shift. Slot may be omitted, in which
// case one is proposed from the name and start time.
type CreateShiftRequest struct {
	Name      string           `json:"name" validate:"required,max=64"`
	StartTime string           `json:"start_time" validate:"required"`
	EndTime   string           `json:"end_time" validate:"required"`
	Slot      models.ShiftSlot `json:"slot"`
}

// ShiftService serves the shift reference list.
type ShiftService struct {
	repo       shiftRepository
	cache      *CacheService
	classifier *scheduling.Classifier
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewShiftService constructs ShiftService.
func NewShiftService(repo shiftRepository, cache *CacheService, classifier *scheduling.Classifier, validate *validator.Validate, logger *zap.Logger) *ShiftService {
	if classifier == nil {
		classifier = scheduling.NewClassifier(nil, nil, nil)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShiftService{repo: repo, cache: cache, classifier: classifier, validator: validate, logger: logger}
}

// Classifier returns the classifier used to resolve legacy shifts.
func (s *ShiftService) Classifier() *scheduling.Classifier {
	return s.classifier
}

// List returns every shift. Shifts stored without a tag are returned with
// the resolved one.
func (s *ShiftService) List(ctx context.Context) ([]models.Shift, error) {
	var shifts []models.Shift
	if s.cache.Get(ctx, shiftListCacheKey, &shifts) {
		return shifts, nil
	}

	shifts, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shifts")
	}
	for i := range shifts {
		shifts[i].Slot = s.classifier.Resolve(shifts[i])
	}
	s.cache.Set(ctx, shiftListCacheKey, shifts, 0)
	return shifts, nil
}

// Get returns a single shift.
func (s *ShiftService) Get(ctx context.Context, id string) (*models.Shift, error) {
	shift, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift")
	}
	shift.Slot = s.classifier.Resolve(*shift)
	return shift, nil
}

// Create stores a shift with an explicit slot tag.
func (s *ShiftService) Create(ctx context.Context, req CreateShiftRequest) (*models.Shift, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift payload")
	}
	start, ok := scheduling.ParseClock(req.StartTime)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must use HH:mm or HH:mm:ss")
	}
	end, ok := scheduling.ParseClock(req.EndTime)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_time must use HH:mm or HH:mm:ss")
	}
	if end <= start {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}

	slot := models.ShiftSlot(strings.ToUpper(strings.TrimSpace(string(req.Slot))))
	switch {
	case slot == "":
		slot = s.classifier.Classify(req.Name, req.StartTime)
	case !slot.Valid():
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown shift slot "+string(req.Slot))
	}

	shift := &models.Shift{
		Name:      strings.TrimSpace(req.Name),
		StartTime: normalizeClock(req.StartTime),
		EndTime:   normalizeClock(req.EndTime),
		Slot:      slot,
	}
	if err := s.repo.Create(ctx, shift); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create shift")
	}
	s.cache.Invalidate(ctx, shiftListCacheKey)
	s.logger.Info("shift created", zap.String("shift_id", shift.ID), zap.String("slot", string(slot)))
	return shift, nil
}

// Book builds a shift book for one evaluation. Lookups of unknown shift ids
// are logged and counted.
func (s *ShiftService) Book(ctx context.Context, metrics *MetricsService) (*scheduling.ShiftBook, error) {
	shifts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	book := scheduling.NewShiftBook(shifts, s.classifier)
	return book.OnMissing(func(shiftID string) {
		s.logger.Warn("schedule references unknown shift", zap.String("shift_id", shiftID))
		metrics.RecordUnknownShift()
	}), nil
}

func normalizeClock(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Count(raw, ":") == 1 {
		raw += ":00"
	}
	if len(raw) == 7 {
		raw = "0" + raw
	}
	return raw
}
