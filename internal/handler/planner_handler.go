package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-enrollment-api/internal/models"
	"github.com/noah-isme/class-enrollment-api/internal/service"
	appErrors "github.com/noah-isme/class-enrollment-api/pkg/errors"
	"github.com/noah-isme/class-enrollment-api/pkg/response"
)

type plannerService interface {
	Enrollments(ctx context.Context, studentID string) ([]models.EnrollmentRecord, error)
	GetPlan(ctx context.Context, studentID string) (*models.PlanView, error)
	Check(ctx context.Context, studentID string, req service.ClassRequest) (*models.CheckResult, error)
	Stage(ctx context.Context, studentID string, req service.ClassRequest) (*models.StageResult, error)
	Unstage(ctx context.Context, studentID, classID string) (*models.UnstageResult, error)
	Clear(ctx context.Context, studentID string) error
	Submit(ctx context.Context, studentID string) (*models.SubmitResult, error)
	Timetable(ctx context.Context, studentID string, week int) (*models.Timetable, error)
	ExportTimetable(ctx context.Context, studentID string, week int, format string) (*service.TimetableExport, error)
}

// PlannerHandler exposes a student's enrollments, staging plan and timetable.
type PlannerHandler struct {
	service plannerService
}

// NewPlannerHandler constructs a planner handler.
func NewPlannerHandler(svc *service.PlannerService) *PlannerHandler {
	return &PlannerHandler{service: svc}
}

// Enrollments godoc
// @Summary List confirmed enrollments
// @Tags Planner
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/enrollments [get]
func (h *PlannerHandler) Enrollments(c *gin.Context) {
	records, err := h.service.Enrollments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// GetPlan godoc
// @Summary Get the staging plan
// @Tags Planner
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/plan [get]
func (h *PlannerHandler) GetPlan(c *gin.Context) {
	plan, err := h.service.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// Check godoc
// @Summary Check whether a class can be staged
// @Description Evaluates the class against the current plan without changing it.
// @Tags Planner
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.ClassRequest true "Class to check"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/plan/check [post]
func (h *PlannerHandler) Check(c *gin.Context) {
	req, ok := bindClassRequest(c)
	if !ok {
		return
	}
	result, err := h.service.Check(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Stage godoc
// @Summary Stage a class
// @Description Staging a practice class also stages its theory class.
// @Tags Planner
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.ClassRequest true "Class to stage"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id}/plan/classes [post]
func (h *PlannerHandler) Stage(c *gin.Context) {
	req, ok := bindClassRequest(c)
	if !ok {
		return
	}
	result, err := h.service.Stage(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Unstage godoc
// @Summary Remove a staged class
// @Description Removing a theory class also removes its staged practice classes.
// @Tags Planner
// @Produce json
// @Param id path string true "Student ID"
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/plan/classes/{classId} [delete]
func (h *PlannerHandler) Unstage(c *gin.Context) {
	result, err := h.service.Unstage(c.Request.Context(), c.Param("id"), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Clear godoc
// @Summary Discard the staging plan
// @Tags Planner
// @Param id path string true "Student ID"
// @Success 204
// @Router /students/{id}/plan [delete]
func (h *PlannerHandler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Submit godoc
// @Summary Submit staged classes
// @Description Enrolls every staged class in one batch. The plan is kept when the batch fails.
// @Tags Planner
// @Produce json
// @Param id path string true "Student ID"
// @Success 201 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /students/{id}/plan/submit [post]
func (h *PlannerHandler) Submit(c *gin.Context) {
	result, err := h.service.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Timetable godoc
// @Summary Weekly timetable
// @Tags Planner
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Param week query int false "Teaching week, 0 for every week"
// @Param format query string false "json, csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/timetable [get]
func (h *PlannerHandler) Timetable(c *gin.Context) {
	week := 0
	if raw := strings.TrimSpace(c.Query("week")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "week must be a number"))
			return
		}
		week = parsed
	}

	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", service.FormatJSON)))
	if format == service.FormatJSON {
		timetable, err := h.service.Timetable(c.Request.Context(), c.Param("id"), week)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, timetable, nil)
		return
	}

	file, err := h.service.ExportTimetable(c.Request.Context(), c.Param("id"), week, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func bindClassRequest(c *gin.Context) (service.ClassRequest, bool) {
	var req service.ClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return req, false
	}
	return req, true
}
