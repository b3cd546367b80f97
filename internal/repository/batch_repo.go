package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/soundofguitara/parma/internal/model"
)

// BatchRepository batches with their assignments attached.
type BatchRepository interface {
	Create(ctx context.Context, batch *model.Batch) error
	GetByID(ctx context.Context, id string) (*model.Batch, error)
	List(ctx context.Context) ([]model.Batch, error)
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.Batch, error)
	Update(ctx context.Context, batch *model.Batch) error
	Delete(ctx context.Context, id string) error
}

type batchRepo struct {
	db *gorm.DB
}

// NewBatchRepo creates a BatchRepository.
func NewBatchRepo(db *gorm.DB) BatchRepository {
	return &batchRepo{db: db}
}

func (r *batchRepo) Create(ctx context.Context, batch *model.Batch) error {
	return r.db.WithContext(ctx).Omit("Assignments").Create(batch).Error
}

func (r *batchRepo) GetByID(ctx context.Context, id string) (*model.Batch, error) {
	var batch model.Batch
	err := r.db.WithContext(ctx).
		Preload("Assignments", orderAssignments).
		Where("id = ?", id).
		First(&batch).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepo) List(ctx context.Context) ([]model.Batch, error) {
	var batches []model.Batch
	err := r.db.WithContext(ctx).
		Preload("Assignments", orderAssignments).
		Order("created_at DESC").
		Find(&batches).Error
	return batches, err
}

// ListCreatedBetween returns batches whose created_at lies in [from, to].
func (r *batchRepo) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.Batch, error) {
	var batches []model.Batch
	err := r.db.WithContext(ctx).
		Preload("Assignments", orderAssignments).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Order("code ASC").
		Find(&batches).Error
	return batches, err
}

func (r *batchRepo) Update(ctx context.Context, batch *model.Batch) error {
	return r.db.WithContext(ctx).
		Model(&model.Batch{}).
		Where("id = ?", batch.ID).
		Updates(map[string]interface{}{
			"code":                     batch.Code,
			"medication_name":          batch.MedicationName,
			"total_boxes":              batch.TotalBoxes,
			"processed_boxes":          batch.ProcessedBoxes,
			"received_date":            batch.ReceivedDate,
			"expected_completion_date": batch.ExpectedCompletionDate,
			"status":                   batch.Status,
			"updated_by":               batch.UpdatedBy,
			"updated_at":               gorm.Expr("NOW()"),
		}).Error
}

func (r *batchRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Batch{}).Error
}

func orderAssignments(db *gorm.DB) *gorm.DB {
	return db.Order("start_time ASC")
}
