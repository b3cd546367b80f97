package dto

import "time"

// ── Anomalies ──

// AnomalyChecklist remediation steps
type AnomalyChecklist struct {
	SAPDeclared       bool    `json:"sap_declared"`
	DeviationCreated  bool    `json:"deviation_created"`
	DeviationNumber   *string `json:"deviation_number,omitempty"`
	MovedToHold       bool    `json:"moved_to_hold"`
	PFManagerInformed bool    `json:"pf_manager_informed"`
	QAInformed        bool    `json:"qa_informed"`
}

// CreateAnomalyRequest fields are checked by the service so the French
// messages reach the user unchanged.
type CreateAnomalyRequest struct {
	BatchID           string            `json:"batch_id"`
	OperatorID        string            `json:"operator_id"`
	AssignmentID      *string           `json:"assignment_id"`
	Type              string            `json:"type"`
	Quantity          int               `json:"quantity"`
	RemainingQuantity int               `json:"remaining_quantity"`
	Description       string            `json:"description"`
	DetectionDate     *time.Time        `json:"detection_date"`
	Checklist         *AnomalyChecklist `json:"checklist"`
}

// UpdateAnomalyRequest resolution workflow; absent fields are kept.
type UpdateAnomalyRequest struct {
	Type              *string           `json:"type"`
	Quantity          *int              `json:"quantity"`
	RemainingQuantity *int              `json:"remaining_quantity"`
	Description       *string           `json:"description"`
	Status            *string           `json:"status"`
	ResolutionNotes   *string           `json:"resolution_notes"`
	Checklist         *AnomalyChecklist `json:"checklist"`
}

// AnomalyListRequest query filters
type AnomalyListRequest struct {
	BatchID string `form:"batch_id"`
}

// AnomalyMonthRequest selects a calendar month, "2026-10".
type AnomalyMonthRequest struct {
	Month  string `form:"month"`
	Format string `form:"format" binding:"omitempty,oneof=xlsx pdf csv json"`
}

// AnomalyResponse anomaly with its nested checklist
type AnomalyResponse struct {
	ID                string           `json:"id"`
	BatchID           string           `json:"batch_id"`
	BatchCode         string           `json:"batch_code,omitempty"`
	OperatorID        string           `json:"operator_id"`
	OperatorName      string           `json:"operator_name,omitempty"`
	AssignmentID      *string          `json:"assignment_id,omitempty"`
	Type              string           `json:"type"`
	TypeLabel         string           `json:"type_label"`
	Quantity          int              `json:"quantity"`
	RemainingQuantity int              `json:"remaining_quantity"`
	Description       string           `json:"description"`
	DetectionDate     string           `json:"detection_date"`
	Status            string           `json:"status"`
	StatusLabel       string           `json:"status_label"`
	Checklist         AnomalyChecklist `json:"checklist"`
	ResolutionNotes   string           `json:"resolution_notes,omitempty"`
	ResolutionDate    *string          `json:"resolution_date,omitempty"`
}

// AggregateBucket one entry of a breakdown
type AggregateBucket struct {
	Count      int    `json:"count"`
	Quantity   int    `json:"quantity"`
	Percentage string `json:"percentage"` // "42%"
}

// AnomalyStatsResponse monthly breakdown
type AnomalyStatsResponse struct {
	Period                AnomalyPeriod              `json:"period"`
	TotalAnomalies        int                        `json:"total_anomalies"`
	TotalQuantityAffected int                        `json:"total_quantity_affected"`
	ByType                map[string]AggregateBucket `json:"by_type"`
	ByStatus              map[string]AggregateBucket `json:"by_status"`
	ByOperator            map[string]AggregateBucket `json:"by_operator"`
}

// AnomalyPeriod month window with its French label
type AnomalyPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"` // "octobre 2026"
}
