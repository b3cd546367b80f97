package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/soundofguitara/parma/internal/model"
)

// PlanningRepository planning items, joined with their batch on reads.
type PlanningRepository interface {
	Create(ctx context.Context, item *model.PlanningItem) error
	GetByID(ctx context.Context, id string) (*model.PlanningItem, error)
	List(ctx context.Context) ([]model.PlanningItem, error)
	Update(ctx context.Context, item *model.PlanningItem) error
	Delete(ctx context.Context, id string) error
}

type planningRepo struct {
	db *gorm.DB
}

// NewPlanningRepo creates a PlanningRepository.
func NewPlanningRepo(db *gorm.DB) PlanningRepository {
	return &planningRepo{db: db}
}

func (r *planningRepo) Create(ctx context.Context, item *model.PlanningItem) error {
	return r.db.WithContext(ctx).Omit("Batch").Create(item).Error
}

func (r *planningRepo) GetByID(ctx context.Context, id string) (*model.PlanningItem, error) {
	var item model.PlanningItem
	err := r.db.WithContext(ctx).
		Preload("Batch").
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// List orders by priority, most urgent first, then by planned start.
func (r *planningRepo) List(ctx context.Context) ([]model.PlanningItem, error) {
	var items []model.PlanningItem
	err := r.db.WithContext(ctx).
		Preload("Batch").
		Order("priority ASC, planned_start_date ASC").
		Find(&items).Error
	return items, err
}

func (r *planningRepo) Update(ctx context.Context, item *model.PlanningItem) error {
	return r.db.WithContext(ctx).
		Model(&model.PlanningItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"batch_id":           item.BatchID,
			"planned_start_date": item.PlannedStartDate,
			"planned_end_date":   item.PlannedEndDate,
			"required_operators": item.RequiredOperators,
			"priority":           item.Priority,
			"notes":              item.Notes,
			"updated_by":         item.UpdatedBy,
			"updated_at":         gorm.Expr("NOW()"),
		}).Error
}

func (r *planningRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.PlanningItem{}).Error
}
