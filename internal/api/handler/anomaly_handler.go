package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/soundofguitara/parma/internal/dto"
	"github.com/soundofguitara/parma/internal/service"
	"github.com/soundofguitara/parma/pkg/response"
)

// AnomalyHandler anomaly endpoints
type AnomalyHandler struct {
	anomalySvc service.AnomalyService
}

// NewAnomalyHandler creates an AnomalyHandler
func NewAnomalyHandler(anomalySvc service.AnomalyService) *AnomalyHandler {
	return &AnomalyHandler{anomalySvc: anomalySvc}
}

// ListAnomalies GET /api/v1/anomalies?batch_id=
func (h *AnomalyHandler) ListAnomalies(c *gin.Context) {
	var req dto.AnomalyListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeInvalidParams, msgInvalidParams)
		return
	}

	list, err := h.anomalySvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleAnomalyError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetAnomaly GET /api/v1/anomalies/:id
func (h *AnomalyHandler) GetAnomaly(c *gin.Context) {
	a, err := h.anomalySvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAnomalyError(c, err)
		return
	}

	response.OK(c, a)
}

// CreateAnomaly declares an anomaly and shrinks the linked assignment.
// POST /api/v1/anomalies
func (h *AnomalyHandler) CreateAnomaly(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateAnomalyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeInvalidParams, msgInvalidParams)
		return
	}

	a, err := h.anomalySvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleAnomalyError(c, err)
		return
	}

	response.Created(c, a)
}

// UpdateAnomaly resolution workflow.
// PUT /api/v1/anomalies/:id
func (h *AnomalyHandler) UpdateAnomaly(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateAnomalyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeInvalidParams, msgInvalidParams)
		return
	}

	a, err := h.anomalySvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleAnomalyError(c, err)
		return
	}

	response.OK(c, a)
}

// Stats monthly breakdown by type and status.
// GET /api/v1/anomalies/stats?month=2026-10
func (h *AnomalyHandler) Stats(c *gin.Context) {
	stats, err := h.anomalySvc.Stats(c.Request.Context(), c.Query("month"))
	if err != nil {
		h.handleAnomalyError(c, err)
		return
	}

	response.OK(c, stats)
}

// Export monthly anomaly file.
// GET /api/v1/anomalies/export?month=2026-10&format=xlsx
func (h *AnomalyHandler) Export(c *gin.Context) {
	var req dto.AnomalyMonthRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeInvalidParams, msgInvalidParams)
		return
	}

	file, err := h.anomalySvc.Export(c.Request.Context(), &req)
	if err != nil {
		h.handleAnomalyError(c, err)
		return
	}

	response.File(c, file.Filename, file.ContentType, file.Body)
}

func (h *AnomalyHandler) handleAnomalyError(c *gin.Context, err error) {
	if writeCommonError(c, err, 23000) {
		return
	}
	switch {
	case errors.Is(err, service.ErrAnomalyNotFound):
		response.NotFound(c, 23001, err.Error())
	case errors.Is(err, service.ErrNoAnomaliesToExport):
		response.NotFound(c, 23002, err.Error())
	case errors.Is(err, service.ErrBatchNotFound):
		response.NotFound(c, 23003, err.Error())
	case errors.Is(err, service.ErrOperatorNotFound):
		response.NotFound(c, 23004, err.Error())
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 23005, err.Error())
	case errors.Is(err, service.ErrUnknownExportFormat):
		response.BadRequest(c, 23006, err.Error())
	default:
		response.InternalError(c)
	}
}
