package service

import (
	"time"

	"github.com/soundofguitara/parma/internal/model"
)

// OperatorStats figures derived from an operator's whole assignment history.
type OperatorStats struct {
	Productivity        int // boxes per hour
	TotalBoxesProcessed int
	TotalTimeSpent      int // minutes, rounded
	Efficiency          int // percent of assignments completed on time
	TotalAssignments    int
	CompletedOnTime     int
}

// DeriveOperatorStats aggregates assignments at instant now. Open
// assignments count up to now.
func DeriveOperatorStats(assignments []model.Assignment, now time.Time) OperatorStats {
	var st OperatorStats
	var minutes float64

	for i := range assignments {
		a := &assignments[i]
		st.TotalBoxesProcessed += a.ProcessedBoxes
		if !a.StartTime.IsZero() {
			end := now
			if a.EndTime != nil {
				end = *a.EndTime
			}
			minutes += end.Sub(a.StartTime).Minutes()
		}
		if completedOnTime(a) {
			st.CompletedOnTime++
		}
	}

	st.TotalAssignments = len(assignments)
	st.TotalTimeSpent = int(roundFloat(minutes))
	if minutes > 0 {
		st.Productivity = int(roundFloat(float64(st.TotalBoxesProcessed) / minutes * 60))
	}
	st.Efficiency = CompletionPercent(st.CompletedOnTime, st.TotalAssignments)
	return st
}

// completedOnTime: completed, and either no deadline or finished by it.
// A completed assignment without an end time counts as on time.
func completedOnTime(a *model.Assignment) bool {
	if a.Status != model.AssignmentCompleted {
		return false
	}
	if a.ExpectedEndTime.IsZero() || a.EndTime == nil {
		return true
	}
	return !a.EndTime.After(a.ExpectedEndTime)
}

// GroupByOperator indexes assignments by operator id.
func GroupByOperator(assignments []model.Assignment) map[string][]model.Assignment {
	out := make(map[string][]model.Assignment)
	for _, a := range assignments {
		out[a.OperatorID] = append(out[a.OperatorID], a)
	}
	return out
}

// MostProductive returns the name of the operator with the strictly highest
// productivity, the first operator on ties at zero, "N/A" without operators.
func MostProductive(names []string, stats []OperatorStats) string {
	if len(names) == 0 {
		return "N/A"
	}
	best := 0
	for i := 1; i < len(names); i++ {
		if stats[i].Productivity > stats[best].Productivity {
			best = i
		}
	}
	return names[best]
}
