package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundofguitara/parma/config"
	"github.com/soundofguitara/parma/internal/service"
	apperrors "github.com/soundofguitara/parma/pkg/errors"
	"github.com/soundofguitara/parma/pkg/response"
)

// Handler groups every HTTP handler.
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Batch      *BatchHandler
	Assignment *AssignmentHandler
	Operator   *OperatorHandler
	Anomaly    *AnomalyHandler
	Planning   *PlanningHandler
	Dashboard  *DashboardHandler
	Report     *ReportHandler
}

// NewHandler builds the handlers on top of svc.
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, cfg),
		User:       NewUserHandler(svc.User),
		Batch:      NewBatchHandler(svc.Batch),
		Assignment: NewAssignmentHandler(svc.Assignment),
		Operator:   NewOperatorHandler(svc.Operator),
		Anomaly:    NewAnomalyHandler(svc.Anomaly),
		Planning:   NewPlanningHandler(svc.Planning),
		Dashboard:  NewDashboardHandler(svc.Dashboard),
		Report:     NewReportHandler(svc.Report),
	}
}

const (
	codeInvalidParams = 10001
	msgInvalidParams  = "Paramètres invalides"
)

// writeCommonError answers validation and store failures, which every module
// shares. It returns false when err is a module specific error.
func writeCommonError(c *gin.Context, err error, validationCode int) bool {
	if ve, ok := apperrors.AsValidation(err); ok {
		response.ErrorWithDetails(c, http.StatusBadRequest, validationCode, ve.Message, ve.Field)
		return true
	}
	if errors.Is(err, apperrors.ErrStoreUnavailable) {
		_ = c.Error(err)
		response.ErrorWithDetails(c, http.StatusInternalServerError, 50001, apperrors.ErrStoreUnavailable.Error(), "")
		return true
	}
	return false
}
