package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soundofguitara/parma/internal/dto"
	"github.com/soundofguitara/parma/internal/model"
	"github.com/soundofguitara/parma/internal/repository"
	apperrors "github.com/soundofguitara/parma/pkg/errors"
	"github.com/soundofguitara/parma/pkg/metrics"
)

// ReportAnomalies tags the monthly anomaly export.
const ReportAnomalies ReportType = "anomalies"

var anomalyColumns = []ReportColumn{
	{Key: "detectionDate", Label: "Date de détection"},
	{Key: "batch", Label: "Lot"},
	{Key: "operator", Label: "Opérateur"},
	{Key: "type", Label: "Type"},
	{Key: "quantity", Label: "Quantité"},
	{Key: "remainingQuantity", Label: "Quantité restante"},
	{Key: "status", Label: "Statut"},
	{Key: "description", Label: "Description"},
}

// AnomalyService production anomalies and their monthly statistics.
type AnomalyService interface {
	List(ctx context.Context, req *dto.AnomalyListRequest) ([]dto.AnomalyResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AnomalyResponse, error)
	Create(ctx context.Context, req *dto.CreateAnomalyRequest, callerID string) (*dto.AnomalyResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateAnomalyRequest, callerID string) (*dto.AnomalyResponse, error)
	Stats(ctx context.Context, month string) (*dto.AnomalyStatsResponse, error)
	Export(ctx context.Context, req *dto.AnomalyMonthRequest) (*ExportFile, error)
}

type anomalyService struct {
	repo          *repository.Repository
	cache         *cacheLayer
	metrics       *metrics.Metrics
	defaultFormat ExportFormat
	loc           *time.Location
	now           func() time.Time
	logger        *zap.Logger
}

// NewAnomalyService creates an AnomalyService. Months are read in loc.
func NewAnomalyService(
	repo *repository.Repository,
	cache *cacheLayer,
	m *metrics.Metrics,
	defaultFormat ExportFormat,
	loc *time.Location,
	now func() time.Time,
	logger *zap.Logger,
) AnomalyService {
	return &anomalyService{
		repo:          repo,
		cache:         cache,
		metrics:       m,
		defaultFormat: defaultFormat,
		loc:           loc,
		now:           now,
		logger:        logger,
	}
}

// ────────────────────── List ──────────────────────

func (s *anomalyService) List(ctx context.Context, req *dto.AnomalyListRequest) ([]dto.AnomalyResponse, error) {
	return cachedRead(ctx, s.cache, collAnomalies, "batch="+req.BatchID, func() ([]dto.AnomalyResponse, error) {
		list, err := s.repo.Anomaly.List(ctx, req.BatchID)
		if err != nil {
			s.logger.Error("list anomalies failed", zap.Error(err))
			return nil, apperrors.Store("list anomalies", err)
		}
		result := make([]dto.AnomalyResponse, 0, len(list))
		for i := range list {
			result = append(result, toAnomalyResponse(&list[i]))
		}
		return result, nil
	})
}

// ────────────────────── GetByID ──────────────────────

func (s *anomalyService) GetByID(ctx context.Context, id string) (*dto.AnomalyResponse, error) {
	a, err := s.repo.Anomaly.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrAnomalyNotFound, "get anomaly")
	}
	resp := toAnomalyResponse(a)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

// Create records an anomaly. When it is tied to an assignment, the boxes it
// affects are taken off that assignment in the same transaction.
func (s *anomalyService) Create(ctx context.Context, req *dto.CreateAnomalyRequest, callerID string) (*dto.AnomalyResponse, error) {
	if req.BatchID == "" {
		return nil, apperrors.Invalid("batch_id", "Veuillez sélectionner un lot.")
	}
	if req.OperatorID == "" {
		return nil, apperrors.Invalid("operator_id", "Veuillez sélectionner un opérateur.")
	}
	if req.DetectionDate == nil || req.DetectionDate.IsZero() {
		return nil, apperrors.Invalid("detection_date", "Veuillez sélectionner une date de détection.")
	}
	typ := model.AnomalyType(req.Type)
	if !typ.Valid() {
		return nil, apperrors.Invalid("type", "Veuillez sélectionner un type d'anomalie.")
	}
	if req.Quantity <= 0 {
		return nil, apperrors.Invalid("quantity", "La quantité doit être supérieure à zéro.")
	}
	if req.RemainingQuantity < 0 {
		return nil, apperrors.Invalid("remaining_quantity", "La quantité restante ne peut pas être négative.")
	}

	batch, err := s.repo.Batch.GetByID(ctx, req.BatchID)
	if err != nil {
		return nil, lookupErr(err, ErrBatchNotFound, "get batch")
	}
	available := batch.TotalBoxes - SumAssignments(batch.Assignments).ProcessedBoxes
	if available < 0 {
		available = 0
	}
	if req.Quantity > available {
		return nil, apperrors.Invalid("quantity", "La quantité ne peut pas dépasser %d boîtes.", available)
	}

	op, err := s.repo.Operator.GetByID(ctx, req.OperatorID)
	if err != nil {
		return nil, lookupErr(err, ErrOperatorNotFound, "get operator")
	}

	var assignment *model.Assignment
	if req.AssignmentID != nil && *req.AssignmentID != "" {
		assignment, err = s.repo.Assignment.GetByID(ctx, *req.AssignmentID)
		if err != nil {
			return nil, lookupErr(err, ErrAssignmentNotFound, "get assignment")
		}
		if assignment.BatchID != req.BatchID {
			return nil, apperrors.Invalid("assignment_id", "L'affectation ne correspond pas au lot sélectionné.")
		}
		if limit := unprocessedBoxes(assignment); req.Quantity > limit {
			return nil, apperrors.Invalid("quantity", assignmentQuantityMsg, limit)
		}
	}

	a := &model.Anomaly{
		BatchID:           req.BatchID,
		OperatorID:        req.OperatorID,
		Type:              typ,
		Quantity:          req.Quantity,
		RemainingQuantity: req.RemainingQuantity,
		Description:       req.Description,
		DetectionDate:     *req.DetectionDate,
		Status:            model.AnomalyPending,
		BaseModel:         model.BaseModel{CreatedBy: &callerID},
	}
	if assignment != nil {
		a.AssignmentID = &assignment.ID
	}
	applyChecklist(a, req.Checklist)

	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.Anomaly.Create(ctx, a); err != nil {
			s.logger.Error("create anomaly failed", zap.String("batch_id", a.BatchID), zap.Error(err))
			return apperrors.Store("create anomaly", err)
		}
		if assignment == nil {
			return nil
		}
		assignment.AssignedBoxes = ReduceAssignedBoxes(assignment.AssignedBoxes, assignment.ProcessedBoxes, a.Quantity)
		assignment.Status = DeriveAssignmentStatus(assignment.ProcessedBoxes, assignment.AssignedBoxes)
		assignment.UpdatedBy = &callerID
		if err := txRepo.Assignment.Update(ctx, assignment); err != nil {
			s.logger.Error("reduce assignment boxes failed", zap.String("assignment_id", assignment.ID), zap.Error(err))
			return apperrors.Store("update assignment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, collAnomalies)

	batch.Assignments = nil
	a.Batch = batch
	a.Operator = op
	resp := toAnomalyResponse(a)
	return &resp, nil
}

const assignmentQuantityMsg = "La quantité ne peut pas dépasser %d boîtes pour cette affectation."

// unprocessedBoxes is the number of boxes an anomaly may still take off a.
func unprocessedBoxes(a *model.Assignment) int {
	if n := a.AssignedBoxes - a.ProcessedBoxes; n > 0 {
		return n
	}
	return 0
}

// ReduceAssignedBoxes takes quantity boxes off an assignment without going
// below the boxes it has already processed.
func ReduceAssignedBoxes(assigned, processed, quantity int) int {
	next := assigned - quantity
	if next < processed {
		next = processed
	}
	if next < 0 {
		next = 0
	}
	return next
}

// ────────────────────── Update ──────────────────────

// Update drives the resolution workflow. The resolution date is stamped when
// the anomaly becomes resolved and cleared if it is reopened. A new quantity
// moves the tied assignment by the difference.
func (s *anomalyService) Update(ctx context.Context, id string, req *dto.UpdateAnomalyRequest, callerID string) (*dto.AnomalyResponse, error) {
	a, err := s.repo.Anomaly.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrAnomalyNotFound, "get anomaly")
	}

	if req.Type != nil {
		typ := model.AnomalyType(*req.Type)
		if !typ.Valid() {
			return nil, apperrors.Invalid("type", "Veuillez sélectionner un type d'anomalie.")
		}
		a.Type = typ
	}
	var assignment *model.Assignment
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, apperrors.Invalid("quantity", "La quantité doit être supérieure à zéro.")
		}
		if *req.Quantity != a.Quantity {
			assignment, err = s.requantify(ctx, a, *req.Quantity)
			if err != nil {
				return nil, err
			}
			a.Quantity = *req.Quantity
		}
	}
	if req.RemainingQuantity != nil {
		if *req.RemainingQuantity < 0 {
			return nil, apperrors.Invalid("remaining_quantity", "La quantité restante ne peut pas être négative.")
		}
		a.RemainingQuantity = *req.RemainingQuantity
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.ResolutionNotes != nil {
		a.ResolutionNotes = *req.ResolutionNotes
	}
	applyChecklist(a, req.Checklist)

	if req.Status != nil {
		st := model.AnomalyStatus(*req.Status)
		if !st.Valid() {
			return nil, apperrors.Invalid("status", "Statut d'anomalie inconnu.")
		}
		switch {
		case st == model.AnomalyResolved && a.Status != model.AnomalyResolved:
			now := s.now()
			a.ResolutionDate = &now
		case st != model.AnomalyResolved:
			a.ResolutionDate = nil
		}
		a.Status = st
	}
	a.UpdatedBy = &callerID

	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.Anomaly.Update(ctx, a); err != nil {
			s.logger.Error("update anomaly failed", zap.String("id", id), zap.Error(err))
			return apperrors.Store("update anomaly", err)
		}
		if assignment == nil {
			return nil
		}
		assignment.UpdatedBy = &callerID
		if err := txRepo.Assignment.Update(ctx, assignment); err != nil {
			s.logger.Error("adjust assignment boxes failed", zap.String("assignment_id", assignment.ID), zap.Error(err))
			return apperrors.Store("update assignment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, collAnomalies)

	resp := toAnomalyResponse(a)
	return &resp, nil
}

// requantify checks a new quantity for a against the batch and returns the
// tied assignment with its assigned boxes moved by the difference, or nil
// when the anomaly is not tied to one.
func (s *anomalyService) requantify(ctx context.Context, a *model.Anomaly, quantity int) (*model.Assignment, error) {
	batch, err := s.repo.Batch.GetByID(ctx, a.BatchID)
	if err != nil {
		return nil, lookupErr(err, ErrBatchNotFound, "get batch")
	}
	available := batch.TotalBoxes - SumAssignments(batch.Assignments).ProcessedBoxes
	if available < 0 {
		available = 0
	}
	if quantity > available {
		return nil, apperrors.Invalid("quantity", "La quantité ne peut pas dépasser %d boîtes.", available)
	}
	if a.AssignmentID == nil || *a.AssignmentID == "" {
		return nil, nil
	}

	assignment, err := s.repo.Assignment.GetByID(ctx, *a.AssignmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Store("get assignment", err)
	}

	delta := quantity - a.Quantity
	if limit := a.Quantity + unprocessedBoxes(assignment); delta > 0 && quantity > limit {
		return nil, apperrors.Invalid("quantity", assignmentQuantityMsg, limit)
	}
	next := assignment.AssignedBoxes - delta
	if delta < 0 {
		// boxes handed back cannot overflow the batch
		capacity := batch.TotalBoxes
		for _, other := range batch.Assignments {
			if other.ID != assignment.ID {
				capacity -= other.AssignedBoxes
			}
		}
		if next > capacity {
			next = max(capacity, assignment.AssignedBoxes)
		}
	}
	assignment.AssignedBoxes = next
	assignment.Status = DeriveAssignmentStatus(assignment.ProcessedBoxes, assignment.AssignedBoxes)
	return assignment, nil
}

// ────────────────────── Stats ──────────────────────

func (s *anomalyService) Stats(ctx context.Context, month string) (*dto.AnomalyStatsResponse, error) {
	window, err := s.month(month)
	if err != nil {
		return nil, err
	}

	query := "stats=" + window.Start.Format("2006-01")
	return cachedRead(ctx, s.cache, collAnomalies, query, func() (*dto.AnomalyStatsResponse, error) {
		records, err := s.repo.Anomaly.ListDetectedBetween(ctx, window.Start, window.End)
		if err != nil {
			s.logger.Error("list anomalies of month failed", zap.String("month", query), zap.Error(err))
			return nil, apperrors.Store("list anomalies", err)
		}
		return AggregateAnomalies(records, window), nil
	})
}

// ────────────────────── Export ──────────────────────

// Export writes the anomalies of one month as a report file.
func (s *anomalyService) Export(ctx context.Context, req *dto.AnomalyMonthRequest) (*ExportFile, error) {
	start := time.Now()

	format, err := ParseExportFormat(req.Format, s.defaultFormat)
	if err != nil {
		return nil, err
	}
	window, err := s.month(req.Month)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.Anomaly.ListDetectedBetween(ctx, window.Start, window.End)
	if err != nil {
		s.logger.Error("list anomalies of month failed", zap.Error(err))
		s.metrics.ReportGenerated(string(ReportAnomalies), string(format), "error", time.Since(start))
		return nil, apperrors.Store("list anomalies", err)
	}
	if len(records) == 0 {
		return nil, ErrNoAnomaliesToExport
	}

	result := &ReportResult{
		Type:    ReportAnomalies,
		Title:   "Anomalies - " + window.Label(),
		Period:  FormatPeriod(window.Start, window.End, s.loc),
		Columns: anomalyColumns,
		Rows:    AnomalyRows(records, s.loc),
	}

	body, err := EncodeReport(result, format)
	if err != nil {
		s.logger.Error("encode anomaly export failed", zap.String("format", string(format)), zap.Error(err))
		s.metrics.ReportGenerated(string(ReportAnomalies), string(format), "error", time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrReportEncode, err)
	}
	s.metrics.ReportGenerated(string(ReportAnomalies), string(format), "ok", time.Since(start))

	return &ExportFile{
		Filename:    fmt.Sprintf("anomalies_%s.%s", window.Start.Format("2006-01"), format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

// AnomalyRows one row per anomaly with French labels, in the given order.
func AnomalyRows(records []model.Anomaly, loc *time.Location) []ReportRow {
	rows := make([]ReportRow, 0, len(records))
	for i := range records {
		a := &records[i]
		batch := a.BatchID
		if a.Batch != nil && a.Batch.Code != "" {
			batch = a.Batch.Code
		}
		rows = append(rows, ReportRow{
			"detectionDate":     a.DetectionDate.In(loc).Format("02/01/2006"),
			"batch":             batch,
			"operator":          anomalyOperatorName(a),
			"type":              a.Type.Label(),
			"quantity":          a.Quantity,
			"remainingQuantity": a.RemainingQuantity,
			"status":            a.Status.Label(),
			"description":       a.Description,
		})
	}
	return rows
}

// month resolves "yyyy-MM" (empty for the current month). Future months have
// no data and are refused.
func (s *anomalyService) month(value string) (MonthWindow, error) {
	now := s.now().In(s.loc)
	window, err := ParseMonth(strings.TrimSpace(value), now, s.loc)
	if err != nil {
		return MonthWindow{}, apperrors.Invalid("month", "Mois invalide, format attendu AAAA-MM.")
	}
	if window.Start.After(now) {
		return MonthWindow{}, apperrors.Invalid("month", "Le mois sélectionné est dans le futur.")
	}
	return window, nil
}
