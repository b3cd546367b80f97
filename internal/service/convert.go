package service

import (
	"time"

	"github.com/soundofguitara/parma/internal/dto"
	"github.com/soundofguitara/parma/internal/model"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dto.TimeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dto.TimeLayout)
	return &s
}

func toAssignmentResponse(a *model.Assignment) dto.AssignmentResponse {
	resp := dto.AssignmentResponse{
		ID:              a.ID,
		BatchID:         a.BatchID,
		OperatorID:      a.OperatorID,
		OperatorName:    a.OperatorName,
		AssignedBoxes:   a.AssignedBoxes,
		ProcessedBoxes:  a.ProcessedBoxes,
		StartTime:       formatTime(a.StartTime),
		EndTime:         formatTimePtr(a.EndTime),
		ExpectedEndTime: formatTime(a.ExpectedEndTime),
		Status:          string(a.Status),
	}
	if a.Batch != nil {
		resp.BatchCode = a.Batch.Code
	}
	return resp
}

// toBatchResponse derives status and progress from the loaded assignments.
func toBatchResponse(b *model.Batch, now time.Time) dto.BatchResponse {
	p := ApplyBatchDerivation(b, now)

	assignments := make([]dto.AssignmentResponse, 0, len(b.Assignments))
	for i := range b.Assignments {
		assignments = append(assignments, toAssignmentResponse(&b.Assignments[i]))
	}

	remaining := b.TotalBoxes - p.ProcessedBoxes
	if remaining < 0 {
		remaining = 0
	}

	return dto.BatchResponse{
		ID:                     b.ID,
		Code:                   b.Code,
		MedicationName:         b.MedicationName,
		TotalBoxes:             b.TotalBoxes,
		AssignedBoxes:          p.AssignedBoxes,
		ProcessedBoxes:         p.ProcessedBoxes,
		RemainingBoxes:         remaining,
		CompletionRate:         CompletionPercent(p.ProcessedBoxes, b.TotalBoxes),
		ReceivedDate:           formatTime(b.ReceivedDate),
		ExpectedCompletionDate: formatTime(b.ExpectedCompletionDate),
		Status:                 string(b.Status),
		Assignments:            assignments,
		CreatedAt:              formatTime(b.CreatedAt),
		UpdatedAt:              formatTime(b.UpdatedAt),
	}
}

func toOperatorResponse(op *model.Operator, st OperatorStats) dto.OperatorResponse {
	return dto.OperatorResponse{
		ID:                  op.ID,
		Name:                op.Name,
		Productivity:        st.Productivity,
		TotalBoxesProcessed: st.TotalBoxesProcessed,
		TotalTimeSpent:      st.TotalTimeSpent,
		Efficiency:          st.Efficiency,
		TotalAssignments:    st.TotalAssignments,
		CompletedOnTime:     st.CompletedOnTime,
	}
}

func toAnomalyResponse(a *model.Anomaly) dto.AnomalyResponse {
	resp := dto.AnomalyResponse{
		ID:                a.ID,
		BatchID:           a.BatchID,
		OperatorID:        a.OperatorID,
		AssignmentID:      a.AssignmentID,
		Type:              string(a.Type),
		TypeLabel:         a.Type.Label(),
		Quantity:          a.Quantity,
		RemainingQuantity: a.RemainingQuantity,
		Description:       a.Description,
		DetectionDate:     formatTime(a.DetectionDate),
		Status:            string(a.Status),
		StatusLabel:       a.Status.Label(),
		Checklist: dto.AnomalyChecklist{
			SAPDeclared:       a.SAPDeclared,
			DeviationCreated:  a.DeviationCreated,
			DeviationNumber:   a.DeviationNumber,
			MovedToHold:       a.MovedToHold,
			PFManagerInformed: a.PFManagerInformed,
			QAInformed:        a.QAInformed,
		},
		ResolutionNotes: a.ResolutionNotes,
		ResolutionDate:  formatTimePtr(a.ResolutionDate),
	}
	if a.Batch != nil {
		resp.BatchCode = a.Batch.Code
	}
	if a.Operator != nil {
		resp.OperatorName = a.Operator.Name
	}
	return resp
}

func applyChecklist(a *model.Anomaly, c *dto.AnomalyChecklist) {
	if c == nil {
		return
	}
	a.SAPDeclared = c.SAPDeclared
	a.DeviationCreated = c.DeviationCreated
	a.DeviationNumber = c.DeviationNumber
	a.MovedToHold = c.MovedToHold
	a.PFManagerInformed = c.PFManagerInformed
	a.QAInformed = c.QAInformed
}

func toPlanningResponse(p *model.PlanningItem) dto.PlanningResponse {
	resp := dto.PlanningResponse{
		ID:                p.ID,
		BatchID:           p.BatchID,
		PlannedStartDate:  formatTime(p.PlannedStartDate),
		PlannedEndDate:    formatTime(p.PlannedEndDate),
		RequiredOperators: p.RequiredOperators,
		Priority:          p.Priority,
		Notes:             p.Notes,
	}
	if p.Batch != nil {
		resp.BatchCode = p.Batch.Code
		resp.MedicationName = p.Batch.MedicationName
	}
	return resp
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.RoleName(),
		CreatedAt: formatTime(u.CreatedAt),
	}
}
