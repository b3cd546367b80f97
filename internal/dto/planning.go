package dto

import "time"

// ── Planning ──

// CreatePlanningRequest scheduling intent for a batch
type CreatePlanningRequest struct {
	BatchID           string    `json:"batch_id"           binding:"required"`
	PlannedStartDate  time.Time `json:"planned_start_date" binding:"required"`
	PlannedEndDate    time.Time `json:"planned_end_date"   binding:"required"`
	RequiredOperators int       `json:"required_operators" binding:"required,min=1"`
	Priority          int       `json:"priority"           binding:"required"`
	Notes             string    `json:"notes"              binding:"max=2000"`
}

// UpdatePlanningRequest partial update
type UpdatePlanningRequest struct {
	BatchID           *string    `json:"batch_id"`
	PlannedStartDate  *time.Time `json:"planned_start_date"`
	PlannedEndDate    *time.Time `json:"planned_end_date"`
	RequiredOperators *int       `json:"required_operators" binding:"omitempty,min=1"`
	Priority          *int       `json:"priority"`
	Notes             *string    `json:"notes"              binding:"omitempty,max=2000"`
}

// PlanningResponse planning item joined with its batch
type PlanningResponse struct {
	ID                string `json:"id"`
	BatchID           string `json:"batch_id"`
	BatchCode         string `json:"batch_code"`
	MedicationName    string `json:"medication_name"`
	PlannedStartDate  string `json:"planned_start_date"`
	PlannedEndDate    string `json:"planned_end_date"`
	RequiredOperators int    `json:"required_operators"`
	Priority          int    `json:"priority"`
	Notes             string `json:"notes"`
}
