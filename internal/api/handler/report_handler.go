package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundofguitara/parma/internal/dto"
	"github.com/soundofguitara/parma/internal/service"
	"github.com/soundofguitara/parma/pkg/response"
)

// ReportHandler report endpoints
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler creates a ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Generate builds a report and returns it as a file download.
// POST /api/v1/reports (dates as yyyy-MM-dd, JSON or form)
func (h *ReportHandler) Generate(c *gin.Context) {
	var req dto.ReportRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, codeInvalidParams, msgInvalidParams)
		return
	}

	file, err := h.reportSvc.Generate(c.Request.Context(), &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	if file.ArchivedAs != "" {
		c.Header("X-Report-Archive", file.ArchivedAs)
	}
	response.File(c, file.Filename, file.ContentType, file.Body)
}

// Preview returns the report rows as JSON without encoding a file.
// GET /api/v1/reports/preview?type=&date_from=&date_to=
func (h *ReportHandler) Preview(c *gin.Context) {
	var req dto.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeInvalidParams, msgInvalidParams)
		return
	}

	result, err := h.reportSvc.Preview(c.Request.Context(), &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	if writeCommonError(c, err, 25000) {
		return
	}
	switch {
	case errors.Is(err, service.ErrUnknownReportType):
		response.BadRequest(c, 25001, err.Error())
	case errors.Is(err, service.ErrUnknownExportFormat):
		response.BadRequest(c, 25002, err.Error())
	case errors.Is(err, service.ErrReportEncode):
		_ = c.Error(err)
		response.ErrorWithDetails(c, http.StatusInternalServerError, 25003, service.ErrReportEncode.Error(), "")
	default:
		response.InternalError(c)
	}
}
