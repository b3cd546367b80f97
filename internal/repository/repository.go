package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository groups every table accessor behind one entry point.
type Repository struct {
	db *gorm.DB

	User       UserRepository
	Batch      BatchRepository
	Assignment AssignmentRepository
	Operator   OperatorRepository
	Anomaly    AnomalyRepository
	Planning   PlanningRepository
}

// NewRepository builds the aggregate on top of db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		User:       NewUserRepo(db),
		Batch:      NewBatchRepo(db),
		Assignment: NewAssignmentRepo(db),
		Operator:   NewOperatorRepo(db),
		Anomaly:    NewAnomalyRepo(db),
		Planning:   NewPlanningRepo(db),
	}
}

// BeginTx starts a transaction. It returns a nil tx when the aggregate has
// no database, which lets services run against in-memory mocks.
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx returns an aggregate bound to tx, or r itself when tx is nil.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Ping checks the underlying connection.
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
