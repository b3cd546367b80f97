package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/soundofguitara/parma/internal/model"
)

// OperatorRepository workshop operators.
type OperatorRepository interface {
	Create(ctx context.Context, op *model.Operator) error
	GetByID(ctx context.Context, id string) (*model.Operator, error)
	List(ctx context.Context) ([]model.Operator, error)
	Update(ctx context.Context, op *model.Operator) error
	Delete(ctx context.Context, id string) error
}

type operatorRepo struct {
	db *gorm.DB
}

// NewOperatorRepo creates an OperatorRepository.
func NewOperatorRepo(db *gorm.DB) OperatorRepository {
	return &operatorRepo{db: db}
}

func (r *operatorRepo) Create(ctx context.Context, op *model.Operator) error {
	return r.db.WithContext(ctx).Create(op).Error
}

func (r *operatorRepo) GetByID(ctx context.Context, id string) (*model.Operator, error) {
	var op model.Operator
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&op).Error
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *operatorRepo) List(ctx context.Context) ([]model.Operator, error) {
	var ops []model.Operator
	err := r.db.WithContext(ctx).Order("name ASC").Find(&ops).Error
	return ops, err
}

func (r *operatorRepo) Update(ctx context.Context, op *model.Operator) error {
	return r.db.WithContext(ctx).
		Model(&model.Operator{}).
		Where("id = ?", op.ID).
		Updates(map[string]interface{}{
			"name":       op.Name,
			"updated_by": op.UpdatedBy,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *operatorRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Operator{}).Error
}
