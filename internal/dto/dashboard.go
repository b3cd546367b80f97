package dto

// ── Dashboard ──

// BatchStatusCount batches per derived status
type BatchStatusCount struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Delayed    int `json:"delayed"`
}

// OperatorCount workforce summary
type OperatorCount struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// PerformanceSummary throughput summary
type PerformanceSummary struct {
	AverageBoxesPerHour   int    `json:"average_boxes_per_hour"`
	MostEfficientOperator string `json:"most_efficient_operator"`
}

// DashboardResponse workshop overview
type DashboardResponse struct {
	TotalBatches   int                `json:"total_batches"`
	ActiveBatches  int                `json:"active_batches"`
	CompletedToday int                `json:"completed_today"`
	TotalBoxes     int                `json:"total_boxes"`
	ProcessedBoxes int                `json:"processed_boxes"`
	RemainingBoxes int                `json:"remaining_boxes"`
	CompletionRate int                `json:"completion_rate"`
	Operators      OperatorCount      `json:"operators"`
	Performance    PerformanceSummary `json:"performance"`
	BatchStatus    BatchStatusCount   `json:"batch_status"`
}
