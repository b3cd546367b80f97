package dto

import "time"

// ── Batches ──

// CreateBatchRequest new batch of boxes to relabel
type CreateBatchRequest struct {
	Code                   string    `json:"code"                     binding:"required,max=50"`
	MedicationName         string    `json:"medication_name"          binding:"required,max=200"`
	TotalBoxes             int       `json:"total_boxes"              binding:"required,min=1"`
	ReceivedDate           time.Time `json:"received_date"            binding:"required"`
	ExpectedCompletionDate time.Time `json:"expected_completion_date" binding:"required"`
}

// UpdateBatchRequest only the provided fields change
type UpdateBatchRequest struct {
	Code                   *string    `json:"code"                     binding:"omitempty,max=50"`
	MedicationName         *string    `json:"medication_name"          binding:"omitempty,max=200"`
	TotalBoxes             *int       `json:"total_boxes"              binding:"omitempty,min=1"`
	ReceivedDate           *time.Time `json:"received_date"`
	ExpectedCompletionDate *time.Time `json:"expected_completion_date"`
}

// BatchResponse batch with derived status and progress
type BatchResponse struct {
	ID                     string               `json:"id"`
	Code                   string               `json:"code"`
	MedicationName         string               `json:"medication_name"`
	TotalBoxes             int                  `json:"total_boxes"`
	AssignedBoxes          int                  `json:"assigned_boxes"`
	ProcessedBoxes         int                  `json:"processed_boxes"`
	RemainingBoxes         int                  `json:"remaining_boxes"`
	CompletionRate         int                  `json:"completion_rate"` // percent
	ReceivedDate           string               `json:"received_date"`
	ExpectedCompletionDate string               `json:"expected_completion_date"`
	Status                 string               `json:"status"`
	Assignments            []AssignmentResponse `json:"assignments"`
	CreatedAt              string               `json:"created_at"`
	UpdatedAt              string               `json:"updated_at"`
}
