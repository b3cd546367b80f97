package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/soundofguitara/parma/internal/dto"
	"github.com/soundofguitara/parma/internal/model"
	"github.com/soundofguitara/parma/internal/repository"
	apperrors "github.com/soundofguitara/parma/pkg/errors"
)

// AssignmentService assigns batch boxes to operators.
type AssignmentService interface {
	List(ctx context.Context, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, error)
	Create(ctx context.Context, req *dto.CreateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error)
	Delete(ctx context.Context, id string) error
}

type assignmentService struct {
	repo   *repository.Repository
	cache  *cacheLayer
	logger *zap.Logger
}

// NewAssignmentService creates an AssignmentService.
func NewAssignmentService(repo *repository.Repository, cache *cacheLayer, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, cache: cache, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *assignmentService) List(ctx context.Context, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, error) {
	query := "batch=" + req.BatchID + "&operator=" + req.OperatorID + "&status=" + req.Status
	return cachedRead(ctx, s.cache, collAssignments, query, func() ([]dto.AssignmentResponse, error) {
		list, err := s.repo.Assignment.List(ctx, repository.AssignmentFilter{
			BatchID:    req.BatchID,
			OperatorID: req.OperatorID,
			Status:     model.AssignmentStatus(req.Status),
		})
		if err != nil {
			s.logger.Error("list assignments failed", zap.Error(err))
			return nil, apperrors.Store("list assignments", err)
		}

		result := make([]dto.AssignmentResponse, 0, len(list))
		for i := range list {
			result = append(result, toAssignmentResponse(&list[i]))
		}
		return result, nil
	})
}

// ────────────────────── Create ──────────────────────

func (s *assignmentService) Create(ctx context.Context, req *dto.CreateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error) {
	a := &model.Assignment{
		BatchID:         req.BatchID,
		OperatorID:      req.OperatorID,
		AssignedBoxes:   req.AssignedBoxes,
		ProcessedBoxes:  req.ProcessedBoxes,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		ExpectedEndTime: req.ExpectedEndTime,
		BaseModel:       model.BaseModel{CreatedBy: &callerID},
	}

	batch, err := s.validate(ctx, a, "", false)
	if err != nil {
		return nil, err
	}

	var explicit *model.AssignmentStatus
	if req.Status != nil {
		st := model.AssignmentStatus(*req.Status)
		explicit = &st
	}
	a.Status = ResolveAssignmentStatus(explicit, a.ProcessedBoxes, a.AssignedBoxes)

	if err := s.repo.Assignment.Create(ctx, a); err != nil {
		s.logger.Error("create assignment failed", zap.String("batch_id", a.BatchID), zap.Error(err))
		return nil, apperrors.Store("create assignment", err)
	}
	s.cache.invalidate(ctx, collAssignments)

	a.Batch = batch
	resp := toAssignmentResponse(a)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

// Update overlays the provided fields on the stored row. Unless a status is
// given, the status is derived again whenever either box count changed.
func (s *assignmentService) Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error) {
	a, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrAssignmentNotFound, "get assignment")
	}

	storedAssigned := a.AssignedBoxes
	countsChanged := false
	if req.BatchID != nil {
		a.BatchID = *req.BatchID
	}
	if req.OperatorID != nil {
		a.OperatorID = *req.OperatorID
	}
	if req.AssignedBoxes != nil && *req.AssignedBoxes != a.AssignedBoxes {
		a.AssignedBoxes = *req.AssignedBoxes
		countsChanged = true
	}
	if req.ProcessedBoxes != nil && *req.ProcessedBoxes != a.ProcessedBoxes {
		a.ProcessedBoxes = *req.ProcessedBoxes
		countsChanged = true
	}
	if req.StartTime != nil {
		a.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		a.EndTime = req.EndTime
	} else if req.ClearEndTime {
		a.EndTime = nil
	}
	if req.ExpectedEndTime != nil {
		a.ExpectedEndTime = *req.ExpectedEndTime
	}

	// anomalies can drain an assignment to zero; leave it editable
	zeroKept := storedAssigned == 0 && a.AssignedBoxes == 0
	batch, err := s.validate(ctx, a, a.ID, zeroKept)
	if err != nil {
		return nil, err
	}

	switch {
	case req.Status != nil:
		a.Status = model.AssignmentStatus(*req.Status)
	case countsChanged:
		a.Status = DeriveAssignmentStatus(a.ProcessedBoxes, a.AssignedBoxes)
	}
	a.UpdatedBy = &callerID

	if err := s.repo.Assignment.Update(ctx, a); err != nil {
		s.logger.Error("update assignment failed", zap.String("id", id), zap.Error(err))
		return nil, apperrors.Store("update assignment", err)
	}
	s.cache.invalidate(ctx, collAssignments)

	a.Batch = batch
	resp := toAssignmentResponse(a)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *assignmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Assignment.GetByID(ctx, id); err != nil {
		return lookupErr(err, ErrAssignmentNotFound, "get assignment")
	}
	if err := s.repo.Assignment.Delete(ctx, id); err != nil {
		s.logger.Error("delete assignment failed", zap.String("id", id), zap.Error(err))
		return apperrors.Store("delete assignment", err)
	}
	s.cache.invalidate(ctx, collAssignments)
	return nil
}

// validate checks a before it is written and refreshes its operator name.
// selfID excludes the assignment being edited from the batch capacity.
// allowZero accepts an assigned count of zero that is already stored.
func (s *assignmentService) validate(ctx context.Context, a *model.Assignment, selfID string, allowZero bool) (*model.Batch, error) {
	if a.BatchID == "" {
		return nil, apperrors.Invalid("batch_id", "Veuillez sélectionner un lot.")
	}
	if a.OperatorID == "" {
		return nil, apperrors.Invalid("operator_id", "Veuillez sélectionner un opérateur.")
	}
	if a.AssignedBoxes < 0 || (a.AssignedBoxes == 0 && !allowZero) {
		return nil, apperrors.Invalid("assigned_boxes", "Le nombre de boîtes affectées doit être positif.")
	}
	if a.ProcessedBoxes < 0 {
		return nil, apperrors.Invalid("processed_boxes", "Le nombre de boîtes traitées ne peut pas être négatif.")
	}
	if a.ProcessedBoxes > a.AssignedBoxes {
		return nil, apperrors.Invalid("processed_boxes",
			"Le nombre de boîtes traitées ne peut pas dépasser le nombre de boîtes affectées.")
	}
	if !a.ExpectedEndTime.IsZero() && a.ExpectedEndTime.Before(a.StartTime) {
		return nil, apperrors.Invalid("expected_end_time",
			"La fin prévue ne peut pas précéder le début de l'affectation.")
	}
	if a.EndTime != nil && a.EndTime.Before(a.StartTime) {
		return nil, apperrors.Invalid("end_time", "La fin ne peut pas précéder le début de l'affectation.")
	}

	batch, err := s.repo.Batch.GetByID(ctx, a.BatchID)
	if err != nil {
		return nil, lookupErr(err, ErrBatchNotFound, "get batch")
	}
	op, err := s.repo.Operator.GetByID(ctx, a.OperatorID)
	if err != nil {
		return nil, lookupErr(err, ErrOperatorNotFound, "get operator")
	}
	a.OperatorName = op.Name

	available := batch.TotalBoxes
	for _, other := range batch.Assignments {
		if other.ID != selfID {
			available -= other.AssignedBoxes
		}
	}
	if available < 0 {
		available = 0
	}
	if a.AssignedBoxes > available {
		return nil, apperrors.Invalid("assigned_boxes",
			"Le nombre de boîtes affectées ne peut pas dépasser %d boîtes.", available)
	}

	batch.Assignments = nil
	return batch, nil
}

