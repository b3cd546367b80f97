package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/soundofguitara/parma/internal/model"
)

// AnomalyRepository production anomalies.
type AnomalyRepository interface {
	Create(ctx context.Context, a *model.Anomaly) error
	GetByID(ctx context.Context, id string) (*model.Anomaly, error)
	// List returns anomalies newest first, optionally for one batch.
	List(ctx context.Context, batchID string) ([]model.Anomaly, error)
	ListDetectedBetween(ctx context.Context, from, to time.Time) ([]model.Anomaly, error)
	Update(ctx context.Context, a *model.Anomaly) error
}

type anomalyRepo struct {
	db *gorm.DB
}

// NewAnomalyRepo creates an AnomalyRepository.
func NewAnomalyRepo(db *gorm.DB) AnomalyRepository {
	return &anomalyRepo{db: db}
}

func (r *anomalyRepo) Create(ctx context.Context, a *model.Anomaly) error {
	return r.db.WithContext(ctx).Omit("Operator", "Batch").Create(a).Error
}

func (r *anomalyRepo) GetByID(ctx context.Context, id string) (*model.Anomaly, error) {
	var a model.Anomaly
	err := r.db.WithContext(ctx).
		Preload("Operator").
		Preload("Batch").
		Where("id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *anomalyRepo) List(ctx context.Context, batchID string) ([]model.Anomaly, error) {
	var list []model.Anomaly
	db := r.db.WithContext(ctx).Preload("Operator").Preload("Batch")
	if batchID != "" {
		db = db.Where("batch_id = ?", batchID)
	}
	err := db.Order("detection_date DESC").Find(&list).Error
	return list, err
}

func (r *anomalyRepo) ListDetectedBetween(ctx context.Context, from, to time.Time) ([]model.Anomaly, error) {
	var list []model.Anomaly
	err := r.db.WithContext(ctx).
		Preload("Operator").
		Preload("Batch").
		Where("detection_date >= ? AND detection_date <= ?", from, to).
		Order("detection_date DESC").
		Find(&list).Error
	return list, err
}

func (r *anomalyRepo) Update(ctx context.Context, a *model.Anomaly) error {
	return r.db.WithContext(ctx).
		Model(&model.Anomaly{}).
		Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"type":                a.Type,
			"quantity":            a.Quantity,
			"remaining_quantity":  a.RemainingQuantity,
			"description":         a.Description,
			"status":              a.Status,
			"sap_declared":        a.SAPDeclared,
			"deviation_created":   a.DeviationCreated,
			"deviation_number":    a.DeviationNumber,
			"moved_to_hold":       a.MovedToHold,
			"pf_manager_informed": a.PFManagerInformed,
			"qa_informed":         a.QAInformed,
			"resolution_notes":    a.ResolutionNotes,
			"resolution_date":     a.ResolutionDate,
			"updated_by":          a.UpdatedBy,
			"updated_at":          gorm.Expr("NOW()"),
		}).Error
}
