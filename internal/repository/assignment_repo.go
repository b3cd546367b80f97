package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/soundofguitara/parma/internal/model"
)

// AssignmentFilter narrows List. Empty fields are ignored.
type AssignmentFilter struct {
	BatchID    string
	OperatorID string
	Status     model.AssignmentStatus
}

// AssignmentRepository operator assignments.
type AssignmentRepository interface {
	Create(ctx context.Context, a *model.Assignment) error
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
	List(ctx context.Context, filter AssignmentFilter) ([]model.Assignment, error)
	// ListInWindow returns assignments started at or after from and ended at
	// or before to. Open assignments (no end time) are excluded.
	ListInWindow(ctx context.Context, from, to time.Time) ([]model.Assignment, error)
	Update(ctx context.Context, a *model.Assignment) error
	Delete(ctx context.Context, id string) error
	DeleteByBatch(ctx context.Context, batchID string) (int64, error)
	DeleteByOperator(ctx context.Context, operatorID string) (int64, error)
	RenameOperator(ctx context.Context, operatorID, name string) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo creates an AssignmentRepository.
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, a *model.Assignment) error {
	return r.db.WithContext(ctx).Omit("Batch").Create(a).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var a model.Assignment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) List(ctx context.Context, filter AssignmentFilter) ([]model.Assignment, error) {
	var list []model.Assignment
	db := r.db.WithContext(ctx).Preload("Batch")

	if filter.BatchID != "" {
		db = db.Where("batch_id = ?", filter.BatchID)
	}
	if filter.OperatorID != "" {
		db = db.Where("operator_id = ?", filter.OperatorID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	err := db.Order("start_time DESC").Find(&list).Error
	return list, err
}

func (r *assignmentRepo) ListInWindow(ctx context.Context, from, to time.Time) ([]model.Assignment, error) {
	var list []model.Assignment
	err := r.db.WithContext(ctx).
		Where("start_time >= ? AND end_time <= ?", from, to).
		Order("start_time ASC").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) Update(ctx context.Context, a *model.Assignment) error {
	return r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"batch_id":          a.BatchID,
			"operator_id":       a.OperatorID,
			"operator_name":     a.OperatorName,
			"assigned_boxes":    a.AssignedBoxes,
			"processed_boxes":   a.ProcessedBoxes,
			"start_time":        a.StartTime,
			"end_time":          a.EndTime,
			"expected_end_time": a.ExpectedEndTime,
			"status":            a.Status,
			"updated_by":        a.UpdatedBy,
			"updated_at":        gorm.Expr("NOW()"),
		}).Error
}

func (r *assignmentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Assignment{}).Error
}

func (r *assignmentRepo) DeleteByBatch(ctx context.Context, batchID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Delete(&model.Assignment{})
	return result.RowsAffected, result.Error
}

func (r *assignmentRepo) DeleteByOperator(ctx context.Context, operatorID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("operator_id = ?", operatorID).
		Delete(&model.Assignment{})
	return result.RowsAffected, result.Error
}

// RenameOperator keeps the denormalized operator_name in step with operators.name.
func (r *assignmentRepo) RenameOperator(ctx context.Context, operatorID, name string) error {
	return r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("operator_id = ?", operatorID).
		Update("operator_name", name).Error
}
