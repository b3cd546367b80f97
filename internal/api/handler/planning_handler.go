package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/soundofguitara/parma/internal/dto"
	"github.com/soundofguitara/parma/internal/service"
	"github.com/soundofguitara/parma/pkg/response"
)

// PlanningHandler planning endpoints
type PlanningHandler struct {
	planningSvc service.PlanningService
}

// NewPlanningHandler creates a PlanningHandler
func NewPlanningHandler(planningSvc service.PlanningService) *PlanningHandler {
	return &PlanningHandler{planningSvc: planningSvc}
}

// ListPlanning items ordered by priority then start date.
// GET /api/v1/planning
func (h *PlanningHandler) ListPlanning(c *gin.Context) {
	list, err := h.planningSvc.List(c.Request.Context())
	if err != nil {
		h.handlePlanningError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CreatePlanning POST /api/v1/planning
func (h *PlanningHandler) CreatePlanning(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePlanningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeInvalidParams, msgInvalidParams)
		return
	}

	p, err := h.planningSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handlePlanningError(c, err)
		return
	}

	response.Created(c, p)
}

// UpdatePlanning PUT /api/v1/planning/:id
func (h *PlanningHandler) UpdatePlanning(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdatePlanningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeInvalidParams, msgInvalidParams)
		return
	}

	p, err := h.planningSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handlePlanningError(c, err)
		return
	}

	response.OK(c, p)
}

// DeletePlanning DELETE /api/v1/planning/:id
func (h *PlanningHandler) DeletePlanning(c *gin.Context) {
	if err := h.planningSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handlePlanningError(c, err)
		return
	}

	response.OK(c, nil)
}

// Calendar GET /api/v1/planning/calendar.ics
func (h *PlanningHandler) Calendar(c *gin.Context) {
	body, err := h.planningSvc.Calendar(c.Request.Context())
	if err != nil {
		h.handlePlanningError(c, err)
		return
	}

	response.File(c, "planning.ics", "text/calendar; charset=utf-8", body)
}

func (h *PlanningHandler) handlePlanningError(c *gin.Context, err error) {
	if writeCommonError(c, err, 24000) {
		return
	}
	switch {
	case errors.Is(err, service.ErrPlanningNotFound):
		response.NotFound(c, 24001, err.Error())
	case errors.Is(err, service.ErrBatchNotFound):
		response.NotFound(c, 24002, err.Error())
	default:
		response.InternalError(c)
	}
}
