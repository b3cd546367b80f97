package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/soundofguitara/parma/internal/dto"
	"github.com/soundofguitara/parma/internal/service"
	"github.com/soundofguitara/parma/pkg/response"
)

// OperatorHandler operator endpoints
type OperatorHandler struct {
	operatorSvc service.OperatorService
}

// NewOperatorHandler creates an OperatorHandler
func NewOperatorHandler(operatorSvc service.OperatorService) *OperatorHandler {
	return &OperatorHandler{operatorSvc: operatorSvc}
}

// ListOperators lists operators with their productivity stats.
// GET /api/v1/operators
func (h *OperatorHandler) ListOperators(c *gin.Context) {
	list, err := h.operatorSvc.List(c.Request.Context())
	if err != nil {
		h.handleOperatorError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetOperator GET /api/v1/operators/:id
func (h *OperatorHandler) GetOperator(c *gin.Context) {
	op, err := h.operatorSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleOperatorError(c, err)
		return
	}

	response.OK(c, op)
}

// CreateOperator POST /api/v1/operators
func (h *OperatorHandler) CreateOperator(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.OperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeInvalidParams, msgInvalidParams)
		return
	}

	op, err := h.operatorSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleOperatorError(c, err)
		return
	}

	response.Created(c, op)
}

// UpdateOperator PUT /api/v1/operators/:id
func (h *OperatorHandler) UpdateOperator(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.OperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeInvalidParams, msgInvalidParams)
		return
	}

	op, err := h.operatorSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleOperatorError(c, err)
		return
	}

	response.OK(c, op)
}

// DeleteOperator removes an operator and its assignments.
// DELETE /api/v1/operators/:id
func (h *OperatorHandler) DeleteOperator(c *gin.Context) {
	if err := h.operatorSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleOperatorError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *OperatorHandler) handleOperatorError(c *gin.Context, err error) {
	if writeCommonError(c, err, 22000) {
		return
	}
	switch {
	case errors.Is(err, service.ErrOperatorNotFound):
		response.NotFound(c, 22001, err.Error())
	default:
		response.InternalError(c)
	}
}
