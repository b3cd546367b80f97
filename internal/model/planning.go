package model

import "time"

// Planning priorities, 1 is the most urgent.
const (
	PriorityHigh   = 1
	PriorityMedium = 2
	PriorityLow    = 3
)

// PlanningItem scheduling intent for a batch, table planning
type PlanningItem struct {
	ID                string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BatchID           string    `gorm:"type:uuid;not null"                             json:"batch_id"`
	PlannedStartDate  time.Time `gorm:"not null"                                       json:"planned_start_date"`
	PlannedEndDate    time.Time `gorm:"not null"                                       json:"planned_end_date"`
	RequiredOperators int       `gorm:"not null;default:1"                             json:"required_operators"`
	Priority          int       `gorm:"type:smallint;not null;default:2"               json:"priority"`
	Notes             string    `gorm:"type:text;not null;default:''"                  json:"notes"`
	BaseModel

	Batch *Batch `gorm:"foreignKey:BatchID;references:ID" json:"batch,omitempty"`
}

func (PlanningItem) TableName() string { return "planning" }
