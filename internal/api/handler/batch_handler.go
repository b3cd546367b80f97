package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/soundofguitara/parma/internal/dto"
	"github.com/soundofguitara/parma/internal/service"
	"github.com/soundofguitara/parma/pkg/response"
)

// BatchHandler batch endpoints
type BatchHandler struct {
	batchSvc service.BatchService
}

// NewBatchHandler creates a BatchHandler
func NewBatchHandler(batchSvc service.BatchService) *BatchHandler {
	return &BatchHandler{batchSvc: batchSvc}
}

// ListBatches lists batches with their derived status.
// GET /api/v1/batches
func (h *BatchHandler) ListBatches(c *gin.Context) {
	batches, err := h.batchSvc.List(c.Request.Context())
	if err != nil {
		h.handleBatchError(c, err)
		return
	}

	response.OK(c, gin.H{"list": batches})
}

// GetBatch GET /api/v1/batches/:id
func (h *BatchHandler) GetBatch(c *gin.Context) {
	batch, err := h.batchSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleBatchError(c, err)
		return
	}

	response.OK(c, batch)
}

// CreateBatch POST /api/v1/batches
func (h *BatchHandler) CreateBatch(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeInvalidParams, msgInvalidParams)
		return
	}

	batch, err := h.batchSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleBatchError(c, err)
		return
	}

	response.Created(c, batch)
}

// UpdateBatch PUT /api/v1/batches/:id
func (h *BatchHandler) UpdateBatch(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeInvalidParams, msgInvalidParams)
		return
	}

	batch, err := h.batchSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleBatchError(c, err)
		return
	}

	response.OK(c, batch)
}

// DeleteBatch removes a batch and its assignments.
// DELETE /api/v1/batches/:id
func (h *BatchHandler) DeleteBatch(c *gin.Context) {
	if err := h.batchSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleBatchError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *BatchHandler) handleBatchError(c *gin.Context, err error) {
	if writeCommonError(c, err, 20000) {
		return
	}
	switch {
	case errors.Is(err, service.ErrBatchNotFound):
		response.NotFound(c, 20001, err.Error())
	default:
		response.InternalError(c)
	}
}
