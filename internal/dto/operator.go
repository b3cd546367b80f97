package dto

// ── Operators ──

// OperatorRequest create or rename
type OperatorRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// OperatorResponse operator with statistics derived from its assignments
type OperatorResponse struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Productivity        int    `json:"productivity"` // boxes per hour
	TotalBoxesProcessed int    `json:"total_boxes_processed"`
	TotalTimeSpent      int    `json:"total_time_spent"` // minutes
	Efficiency          int    `json:"efficiency"`       // percent
	TotalAssignments    int    `json:"total_assignments"`
	CompletedOnTime     int    `json:"completed_on_time"`
}
