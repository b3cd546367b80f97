package dto

import "time"

// ── Assignments ──

// CreateAssignmentRequest assigns part of a batch to an operator.
// Status is derived from the box counts when omitted.
type CreateAssignmentRequest struct {
	BatchID         string     `json:"batch_id"          binding:"required"`
	OperatorID      string     `json:"operator_id"       binding:"required"`
	AssignedBoxes   int        `json:"assigned_boxes"    binding:"required,min=1"`
	ProcessedBoxes  int        `json:"processed_boxes"   binding:"min=0"`
	StartTime       time.Time  `json:"start_time"        binding:"required"`
	EndTime         *time.Time `json:"end_time"`
	ExpectedEndTime time.Time  `json:"expected_end_time" binding:"required"`
	Status          *string    `json:"status"            binding:"omitempty,oneof=pending in-progress completed"`
}

// UpdateAssignmentRequest partial update; absent fields keep their stored value.
type UpdateAssignmentRequest struct {
	BatchID         *string    `json:"batch_id"`
	OperatorID      *string    `json:"operator_id"`
	AssignedBoxes   *int       `json:"assigned_boxes"    binding:"omitempty,min=0"`
	ProcessedBoxes  *int       `json:"processed_boxes"   binding:"omitempty,min=0"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	ClearEndTime    bool       `json:"clear_end_time"`
	ExpectedEndTime *time.Time `json:"expected_end_time"`
	Status          *string    `json:"status"            binding:"omitempty,oneof=pending in-progress completed"`
}

// AssignmentListRequest query filters
type AssignmentListRequest struct {
	BatchID    string `form:"batch_id"`
	OperatorID string `form:"operator_id"`
	Status     string `form:"status" binding:"omitempty,oneof=pending in-progress completed"`
}

// AssignmentResponse assignment as returned by the API
type AssignmentResponse struct {
	ID              string  `json:"id"`
	BatchID         string  `json:"batch_id"`
	BatchCode       string  `json:"batch_code,omitempty"`
	OperatorID      string  `json:"operator_id"`
	OperatorName    string  `json:"operator_name"`
	AssignedBoxes   int     `json:"assigned_boxes"`
	ProcessedBoxes  int     `json:"processed_boxes"`
	StartTime       string  `json:"start_time"`
	EndTime         *string `json:"end_time"`
	ExpectedEndTime string  `json:"expected_end_time"`
	Status          string  `json:"status"`
}
