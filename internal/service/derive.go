package service

import (
	"math"
	"strconv"
	"time"

	"github.com/soundofguitara/parma/internal/model"
)

// ── Derived status ──
//
// Stored statuses of batches are never trusted. Every read recomputes them
// from the assignment rows loaded for that request.

// BatchProgress sums the assignments of one batch.
type BatchProgress struct {
	Assignments    int
	AssignedBoxes  int
	ProcessedBoxes int
	AllCompleted   bool
}

// SumAssignments totals assigned and processed boxes. AllCompleted is false
// for an empty set.
func SumAssignments(assignments []model.Assignment) BatchProgress {
	p := BatchProgress{Assignments: len(assignments), AllCompleted: len(assignments) > 0}
	for i := range assignments {
		a := &assignments[i]
		p.AssignedBoxes += a.AssignedBoxes
		p.ProcessedBoxes += a.ProcessedBoxes
		if a.Status != model.AssignmentCompleted {
			p.AllCompleted = false
		}
	}
	return p
}

// DeriveBatchStatus computes a batch status at instant now.
//
// A batch without assignments stays pending even past its deadline.
func DeriveBatchStatus(batch *model.Batch, assignments []model.Assignment, now time.Time) model.BatchStatus {
	if len(assignments) == 0 {
		return model.BatchPending
	}

	p := SumAssignments(assignments)
	switch {
	case p.AllCompleted && p.ProcessedBoxes >= batch.TotalBoxes:
		return model.BatchCompleted
	case batch.ExpectedCompletionDate.Before(now) && p.ProcessedBoxes < batch.TotalBoxes:
		return model.BatchDelayed
	default:
		return model.BatchInProgress
	}
}

// ApplyBatchDerivation overwrites the stored status and processed count of
// batch with values derived from its loaded assignments.
func ApplyBatchDerivation(batch *model.Batch, now time.Time) BatchProgress {
	p := SumAssignments(batch.Assignments)
	batch.Status = DeriveBatchStatus(batch, batch.Assignments, now)
	batch.ProcessedBoxes = p.ProcessedBoxes
	return p
}

// DeriveAssignmentStatus maps box counts to a status.
func DeriveAssignmentStatus(processed, assigned int) model.AssignmentStatus {
	switch {
	case processed <= 0:
		return model.AssignmentPending
	case processed < assigned:
		return model.AssignmentInProgress
	default:
		return model.AssignmentCompleted
	}
}

// ResolveAssignmentStatus lets an explicit status win over derivation.
func ResolveAssignmentStatus(explicit *model.AssignmentStatus, processed, assigned int) model.AssignmentStatus {
	if explicit != nil && *explicit != "" {
		return *explicit
	}
	return DeriveAssignmentStatus(processed, assigned)
}

// ── Percentages ──

// CompletionPercent is round(processed/total*100), 0 when total is 0.
func CompletionPercent(processed, total int) int {
	if total <= 0 {
		return 0
	}
	return roundRatio(processed*100, total)
}

// PercentString renders count/total as "NN%", "0%" when total is 0.
func PercentString(count, total int) string {
	return strconv.Itoa(CompletionPercent(count, total)) + "%"
}

// roundRatio rounds num/den half up.
func roundRatio(num, den int) int {
	if den == 0 {
		return 0
	}
	return int(roundFloat(float64(num) / float64(den)))
}

func roundFloat(v float64) float64 {
	return math.Floor(v + 0.5)
}
