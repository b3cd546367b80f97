package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/soundofguitara/parma/internal/dto"
	"github.com/soundofguitara/parma/internal/model"
	"github.com/soundofguitara/parma/internal/repository"
	apperrors "github.com/soundofguitara/parma/pkg/errors"
)

// PlanningService scheduling intents per batch.
type PlanningService interface {
	List(ctx context.Context) ([]dto.PlanningResponse, error)
	Create(ctx context.Context, req *dto.CreatePlanningRequest, callerID string) (*dto.PlanningResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdatePlanningRequest, callerID string) (*dto.PlanningResponse, error)
	Delete(ctx context.Context, id string) error
	Calendar(ctx context.Context) ([]byte, error)
}

type planningService struct {
	repo   *repository.Repository
	cache  *cacheLayer
	now    func() time.Time
	logger *zap.Logger
}

// NewPlanningService creates a PlanningService.
func NewPlanningService(repo *repository.Repository, cache *cacheLayer, now func() time.Time, logger *zap.Logger) PlanningService {
	return &planningService{repo: repo, cache: cache, now: now, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *planningService) List(ctx context.Context) ([]dto.PlanningResponse, error) {
	return cachedRead(ctx, s.cache, collPlanning, "all", func() ([]dto.PlanningResponse, error) {
		items, err := s.repo.Planning.List(ctx)
		if err != nil {
			s.logger.Error("list planning failed", zap.Error(err))
			return nil, apperrors.Store("list planning", err)
		}
		result := make([]dto.PlanningResponse, 0, len(items))
		for i := range items {
			result = append(result, toPlanningResponse(&items[i]))
		}
		return result, nil
	})
}

// ────────────────────── Create ──────────────────────

func (s *planningService) Create(ctx context.Context, req *dto.CreatePlanningRequest, callerID string) (*dto.PlanningResponse, error) {
	item := &model.PlanningItem{
		BatchID:           req.BatchID,
		PlannedStartDate:  req.PlannedStartDate,
		PlannedEndDate:    req.PlannedEndDate,
		RequiredOperators: req.RequiredOperators,
		Priority:          req.Priority,
		Notes:             req.Notes,
		BaseModel:         model.BaseModel{CreatedBy: &callerID},
	}

	batch, err := s.validate(ctx, item)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Planning.Create(ctx, item); err != nil {
		s.logger.Error("create planning failed", zap.String("batch_id", item.BatchID), zap.Error(err))
		return nil, apperrors.Store("create planning", err)
	}
	s.cache.invalidate(ctx, collPlanning)

	item.Batch = batch
	resp := toPlanningResponse(item)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *planningService) Update(ctx context.Context, id string, req *dto.UpdatePlanningRequest, callerID string) (*dto.PlanningResponse, error) {
	item, err := s.repo.Planning.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrPlanningNotFound, "get planning")
	}

	if req.BatchID != nil {
		item.BatchID = *req.BatchID
	}
	if req.PlannedStartDate != nil {
		item.PlannedStartDate = *req.PlannedStartDate
	}
	if req.PlannedEndDate != nil {
		item.PlannedEndDate = *req.PlannedEndDate
	}
	if req.RequiredOperators != nil {
		item.RequiredOperators = *req.RequiredOperators
	}
	if req.Priority != nil {
		item.Priority = *req.Priority
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}

	batch, err := s.validate(ctx, item)
	if err != nil {
		return nil, err
	}
	item.UpdatedBy = &callerID

	if err := s.repo.Planning.Update(ctx, item); err != nil {
		s.logger.Error("update planning failed", zap.String("id", id), zap.Error(err))
		return nil, apperrors.Store("update planning", err)
	}
	s.cache.invalidate(ctx, collPlanning)

	item.Batch = batch
	resp := toPlanningResponse(item)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *planningService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Planning.GetByID(ctx, id); err != nil {
		return lookupErr(err, ErrPlanningNotFound, "get planning")
	}
	if err := s.repo.Planning.Delete(ctx, id); err != nil {
		s.logger.Error("delete planning failed", zap.String("id", id), zap.Error(err))
		return apperrors.Store("delete planning", err)
	}
	s.cache.invalidate(ctx, collPlanning)
	return nil
}

// ────────────────────── Calendar ──────────────────────

// Calendar exports every planning item as an iCalendar feed.
func (s *planningService) Calendar(ctx context.Context) ([]byte, error) {
	items, err := s.repo.Planning.List(ctx)
	if err != nil {
		s.logger.Error("list planning failed", zap.Error(err))
		return nil, apperrors.Store("list planning", err)
	}
	return []byte(BuildPlanningCalendar(items, s.now())), nil
}

func (s *planningService) validate(ctx context.Context, item *model.PlanningItem) (*model.Batch, error) {
	if item.BatchID == "" {
		return nil, apperrors.Invalid("batch_id", "Veuillez sélectionner un lot.")
	}
	if item.Priority < model.PriorityHigh || item.Priority > model.PriorityLow {
		return nil, apperrors.Invalid("priority", "La priorité doit être comprise entre 1 et 3.")
	}
	if item.RequiredOperators < 1 {
		return nil, apperrors.Invalid("required_operators", "Au moins un opérateur est requis.")
	}
	if item.PlannedEndDate.Before(item.PlannedStartDate) {
		return nil, apperrors.Invalid("planned_end_date", "La date de fin ne peut pas précéder la date de début.")
	}

	batch, err := s.repo.Batch.GetByID(ctx, item.BatchID)
	if err != nil {
		return nil, lookupErr(err, ErrBatchNotFound, "get batch")
	}
	batch.Assignments = nil
	return batch, nil
}
