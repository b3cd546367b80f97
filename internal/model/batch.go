package model

import "time"

// BatchStatus is derived on every read from the assignment set and the clock.
type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchInProgress BatchStatus = "in-progress"
	BatchCompleted  BatchStatus = "completed"
	BatchDelayed    BatchStatus = "delayed"
)

// Batch maps to batches
type Batch struct {
	ID                     string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code                   string      `gorm:"type:varchar(50);not null"                      json:"code"`
	MedicationName         string      `gorm:"type:varchar(200);not null"                     json:"medication_name"`
	TotalBoxes             int         `gorm:"not null"                                       json:"total_boxes"`
	ProcessedBoxes         int         `gorm:"not null;default:0"                             json:"processed_boxes"`
	ReceivedDate           time.Time   `gorm:"not null"                                       json:"received_date"`
	ExpectedCompletionDate time.Time   `gorm:"not null"                                       json:"expected_completion_date"`
	Status                 BatchStatus `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // stored for compatibility, never trusted
	BaseModel

	Assignments []Assignment `gorm:"foreignKey:BatchID" json:"assignments,omitempty"`
}

func (Batch) TableName() string { return "batches" }
