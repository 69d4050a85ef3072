package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-enrollment-api/internal/models"
	"github.com/noah-isme/class-enrollment-api/internal/service"
	appErrors "github.com/noah-isme/class-enrollment-api/pkg/errors"
	"github.com/noah-isme/class-enrollment-api/pkg/response"
)

type shiftService interface {
	List(ctx context.Context) ([]models.Shift, error)
	Get(ctx context.Context, id string) (*models.Shift, error)
	Create(ctx context.Context, req service.CreateShiftRequest) (*models.Shift, error)
}

// ShiftHandler exposes the shift reference list.
type ShiftHandler struct {
	service shiftService
}

// NewShiftHandler constructs a shift handler.
func NewShiftHandler(svc *service.ShiftService) *ShiftHandler {
	return &ShiftHandler{service: svc}
}

// List godoc
// @Summary List shifts
// @Tags Shifts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /shifts [get]
func (h *ShiftHandler) List(c *gin.Context) {
	shifts, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shifts, nil)
}

// Get godoc
// @Summary Get shift detail
// @Tags Shifts
// @Produce json
// @Param shiftId path string true "Shift ID"
// @Success 200 {object} response.Envelope
// @Router /shifts/{shiftId} [get]
func (h *ShiftHandler) Get(c *gin.Context) {
	shift, err := h.service.Get(c.Request.Context(), c.Param("shiftId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shift, nil)
}

// Create godoc
// @Summary Create shift
// @Description The slot is derived from the name and start time when omitted.
// @Tags Shifts
// @Accept json
// @Produce json
// @Param payload body service.CreateShiftRequest true "Shift payload"
// @Success 201 {object} response.Envelope
// @Router /shifts [post]
func (h *ShiftHandler) Create(c *gin.Context) {
	var req service.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid shift payload"))
		return
	}
	shift, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, shift)
}
