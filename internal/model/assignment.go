package model

import "time"

// AssignmentStatus follows processed vs. assigned box counts.
type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "pending"
	AssignmentInProgress AssignmentStatus = "in-progress"
	AssignmentCompleted  AssignmentStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentPending, AssignmentInProgress, AssignmentCompleted:
		return true
	}
	return false
}

// Assignment maps to assignments
type Assignment struct {
	ID              string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BatchID         string           `gorm:"type:uuid;not null;index"                       json:"batch_id"`
	OperatorID      string           `gorm:"type:uuid;not null;index"                       json:"operator_id"`
	OperatorName    string           `gorm:"type:varchar(100);not null;default:''"          json:"operator_name"`
	AssignedBoxes   int              `gorm:"not null"                                       json:"assigned_boxes"`
	ProcessedBoxes  int              `gorm:"not null;default:0"                             json:"processed_boxes"`
	StartTime       time.Time        `gorm:"not null"                                       json:"start_time"`
	EndTime         *time.Time       `json:"end_time"`
	ExpectedEndTime time.Time        `gorm:"not null"                                       json:"expected_end_time"`
	Status          AssignmentStatus `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	BaseModel

	Batch *Batch `gorm:"foreignKey:BatchID;references:ID" json:"batch,omitempty"`
}

func (Assignment) TableName() string { return "assignments" }
