package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/soundofguitara/parma/internal/service"
	"github.com/soundofguitara/parma/pkg/response"
)

// DashboardHandler dashboard endpoint
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler creates a DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// GetDashboard GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	stats, err := h.dashboardSvc.Get(c.Request.Context())
	if err != nil {
		if !writeCommonError(c, err, 26000) {
			response.InternalError(c)
		}
		return
	}

	response.OK(c, stats)
}
