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

// BatchService batches with derived status and progress.
type BatchService interface {
	List(ctx context.Context) ([]dto.BatchResponse, error)
	GetByID(ctx context.Context, id string) (*dto.BatchResponse, error)
	Create(ctx context.Context, req *dto.CreateBatchRequest, callerID string) (*dto.BatchResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateBatchRequest, callerID string) (*dto.BatchResponse, error)
	Delete(ctx context.Context, id string) error
}

type batchService struct {
	repo   *repository.Repository
	cache  *cacheLayer
	now    func() time.Time
	logger *zap.Logger
}

// NewBatchService creates a BatchService.
func NewBatchService(repo *repository.Repository, cache *cacheLayer, now func() time.Time, logger *zap.Logger) BatchService {
	return &batchService{repo: repo, cache: cache, now: now, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *batchService) List(ctx context.Context) ([]dto.BatchResponse, error) {
	return cachedRead(ctx, s.cache, collBatches, "all", func() ([]dto.BatchResponse, error) {
		batches, err := s.repo.Batch.List(ctx)
		if err != nil {
			s.logger.Error("list batches failed", zap.Error(err))
			return nil, apperrors.Store("list batches", err)
		}

		now := s.now()
		result := make([]dto.BatchResponse, 0, len(batches))
		for i := range batches {
			result = append(result, toBatchResponse(&batches[i], now))
		}
		return result, nil
	})
}

// ────────────────────── GetByID ──────────────────────

func (s *batchService) GetByID(ctx context.Context, id string) (*dto.BatchResponse, error) {
	return cachedRead(ctx, s.cache, collBatches, "id="+id, func() (*dto.BatchResponse, error) {
		batch, err := s.repo.Batch.GetByID(ctx, id)
		if err != nil {
			return nil, lookupErr(err, ErrBatchNotFound, "get batch")
		}
		resp := toBatchResponse(batch, s.now())
		return &resp, nil
	})
}

// ────────────────────── Create ──────────────────────

func (s *batchService) Create(ctx context.Context, req *dto.CreateBatchRequest, callerID string) (*dto.BatchResponse, error) {
	if req.ExpectedCompletionDate.Before(req.ReceivedDate) {
		return nil, apperrors.Invalid("expected_completion_date",
			"La date de fin prévue ne peut pas précéder la date de réception.")
	}

	batch := &model.Batch{
		Code:                   req.Code,
		MedicationName:         req.MedicationName,
		TotalBoxes:             req.TotalBoxes,
		ReceivedDate:           req.ReceivedDate,
		ExpectedCompletionDate: req.ExpectedCompletionDate,
		Status:                 model.BatchPending,
		BaseModel:              model.BaseModel{CreatedBy: &callerID},
	}

	if err := s.repo.Batch.Create(ctx, batch); err != nil {
		s.logger.Error("create batch failed", zap.String("code", req.Code), zap.Error(err))
		return nil, apperrors.Store("create batch", err)
	}
	s.cache.invalidate(ctx, collBatches)

	s.logger.Info("batch created", zap.String("id", batch.ID), zap.String("code", batch.Code))
	resp := toBatchResponse(batch, s.now())
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *batchService) Update(ctx context.Context, id string, req *dto.UpdateBatchRequest, callerID string) (*dto.BatchResponse, error) {
	batch, err := s.repo.Batch.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrBatchNotFound, "get batch")
	}

	if req.Code != nil {
		batch.Code = *req.Code
	}
	if req.MedicationName != nil {
		batch.MedicationName = *req.MedicationName
	}
	if req.TotalBoxes != nil {
		assigned := SumAssignments(batch.Assignments).AssignedBoxes
		if *req.TotalBoxes < assigned {
			return nil, apperrors.Invalid("total_boxes",
				"Le nombre total de boîtes ne peut pas être inférieur aux %d boîtes déjà affectées.", assigned)
		}
		batch.TotalBoxes = *req.TotalBoxes
	}
	if req.ReceivedDate != nil {
		batch.ReceivedDate = *req.ReceivedDate
	}
	if req.ExpectedCompletionDate != nil {
		batch.ExpectedCompletionDate = *req.ExpectedCompletionDate
	}
	if batch.ExpectedCompletionDate.Before(batch.ReceivedDate) {
		return nil, apperrors.Invalid("expected_completion_date",
			"La date de fin prévue ne peut pas précéder la date de réception.")
	}

	// The stored status and processed count follow the derivation so that
	// other readers of the table see consistent values.
	ApplyBatchDerivation(batch, s.now())
	batch.UpdatedBy = &callerID

	if err := s.repo.Batch.Update(ctx, batch); err != nil {
		s.logger.Error("update batch failed", zap.String("id", id), zap.Error(err))
		return nil, apperrors.Store("update batch", err)
	}
	s.cache.invalidate(ctx, collBatches)

	resp := toBatchResponse(batch, s.now())
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

// Delete removes the batch and its assignments in one transaction.
func (s *batchService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Batch.GetByID(ctx, id); err != nil {
		return lookupErr(err, ErrBatchNotFound, "get batch")
	}

	var removed int64
	err := runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		var err error
		if removed, err = txRepo.Assignment.DeleteByBatch(ctx, id); err != nil {
			s.logger.Error("delete batch assignments failed", zap.String("batch_id", id), zap.Error(err))
			return apperrors.Store("delete batch assignments", err)
		}
		if err := txRepo.Batch.Delete(ctx, id); err != nil {
			s.logger.Error("delete batch failed", zap.String("id", id), zap.Error(err))
			return apperrors.Store("delete batch", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.cache.invalidate(ctx, collAssignments)
	s.cache.invalidate(ctx, collBatches)

	s.logger.Info("batch deleted", zap.String("id", id), zap.Int64("assignments", removed))
	return nil
}
