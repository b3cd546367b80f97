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

// OperatorService operators with statistics derived from their assignments.
type OperatorService interface {
	List(ctx context.Context) ([]dto.OperatorResponse, error)
	GetByID(ctx context.Context, id string) (*dto.OperatorResponse, error)
	Create(ctx context.Context, req *dto.OperatorRequest, callerID string) (*dto.OperatorResponse, error)
	Update(ctx context.Context, id string, req *dto.OperatorRequest, callerID string) (*dto.OperatorResponse, error)
	Delete(ctx context.Context, id string) error
}

type operatorService struct {
	repo   *repository.Repository
	cache  *cacheLayer
	now    func() time.Time
	logger *zap.Logger
}

// NewOperatorService creates an OperatorService.
func NewOperatorService(repo *repository.Repository, cache *cacheLayer, now func() time.Time, logger *zap.Logger) OperatorService {
	return &operatorService{repo: repo, cache: cache, now: now, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *operatorService) List(ctx context.Context) ([]dto.OperatorResponse, error) {
	return cachedRead(ctx, s.cache, collOperators, "all", func() ([]dto.OperatorResponse, error) {
		ops, err := s.repo.Operator.List(ctx)
		if err != nil {
			s.logger.Error("list operators failed", zap.Error(err))
			return nil, apperrors.Store("list operators", err)
		}
		assignments, err := s.repo.Assignment.List(ctx, repository.AssignmentFilter{})
		if err != nil {
			s.logger.Error("list assignments failed", zap.Error(err))
			return nil, apperrors.Store("list assignments", err)
		}

		byOperator := GroupByOperator(assignments)
		now := s.now()
		result := make([]dto.OperatorResponse, 0, len(ops))
		for i := range ops {
			result = append(result, toOperatorResponse(&ops[i], DeriveOperatorStats(byOperator[ops[i].ID], now)))
		}
		return result, nil
	})
}

// ────────────────────── GetByID ──────────────────────

func (s *operatorService) GetByID(ctx context.Context, id string) (*dto.OperatorResponse, error) {
	op, err := s.repo.Operator.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrOperatorNotFound, "get operator")
	}
	return s.withStats(ctx, op)
}

// ────────────────────── Create ──────────────────────

func (s *operatorService) Create(ctx context.Context, req *dto.OperatorRequest, callerID string) (*dto.OperatorResponse, error) {
	op := &model.Operator{
		Name:      req.Name,
		BaseModel: model.BaseModel{CreatedBy: &callerID},
	}
	if err := s.repo.Operator.Create(ctx, op); err != nil {
		s.logger.Error("create operator failed", zap.Error(err))
		return nil, apperrors.Store("create operator", err)
	}
	s.cache.invalidate(ctx, collOperators)

	resp := toOperatorResponse(op, OperatorStats{})
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

// Update renames the operator and the name copied onto its assignments.
func (s *operatorService) Update(ctx context.Context, id string, req *dto.OperatorRequest, callerID string) (*dto.OperatorResponse, error) {
	op, err := s.repo.Operator.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrOperatorNotFound, "get operator")
	}

	op.Name = req.Name
	op.UpdatedBy = &callerID

	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.Operator.Update(ctx, op); err != nil {
			s.logger.Error("update operator failed", zap.String("id", id), zap.Error(err))
			return apperrors.Store("update operator", err)
		}
		if err := txRepo.Assignment.RenameOperator(ctx, id, op.Name); err != nil {
			s.logger.Error("rename operator assignments failed", zap.String("id", id), zap.Error(err))
			return apperrors.Store("rename operator assignments", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, collOperators)

	return s.withStats(ctx, op)
}

// ────────────────────── Delete ──────────────────────

// Delete removes the operator and its assignments in one transaction.
func (s *operatorService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Operator.GetByID(ctx, id); err != nil {
		return lookupErr(err, ErrOperatorNotFound, "get operator")
	}

	var removed int64
	err := runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		var err error
		if removed, err = txRepo.Assignment.DeleteByOperator(ctx, id); err != nil {
			s.logger.Error("delete operator assignments failed", zap.String("operator_id", id), zap.Error(err))
			return apperrors.Store("delete operator assignments", err)
		}
		if err := txRepo.Operator.Delete(ctx, id); err != nil {
			s.logger.Error("delete operator failed", zap.String("id", id), zap.Error(err))
			return apperrors.Store("delete operator", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.cache.invalidate(ctx, collOperators)

	s.logger.Info("operator deleted", zap.String("id", id), zap.Int64("assignments", removed))
	return nil
}

func (s *operatorService) withStats(ctx context.Context, op *model.Operator) (*dto.OperatorResponse, error) {
	assignments, err := s.repo.Assignment.List(ctx, repository.AssignmentFilter{OperatorID: op.ID})
	if err != nil {
		s.logger.Error("list operator assignments failed", zap.String("id", op.ID), zap.Error(err))
		return nil, apperrors.Store("list operator assignments", err)
	}
	resp := toOperatorResponse(op, DeriveOperatorStats(assignments, s.now()))
	return &resp, nil
}
