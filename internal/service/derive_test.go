package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/soundofguitara/parma/internal/model"
)

var testNow = time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)

func TestDeriveBatchStatus(t *testing.T) {
	tomorrow := testNow.Add(24 * time.Hour)
	yesterday := testNow.Add(-24 * time.Hour)

	tests := []struct {
		name        string
		total       int
		deadline    time.Time
		assignments []model.Assignment
		want        model.BatchStatus
	}{
		{
			name:     "all completed and all boxes processed",
			total:    100,
			deadline: tomorrow,
			assignments: []model.Assignment{
				{AssignedBoxes: 100, ProcessedBoxes: 100, Status: model.AssignmentCompleted},
			},
			want: model.BatchCompleted,
		},
		{
			name:     "completed wins over a passed deadline",
			total:    100,
			deadline: yesterday,
			assignments: []model.Assignment{
				{AssignedBoxes: 60, ProcessedBoxes: 60, Status: model.AssignmentCompleted},
				{AssignedBoxes: 40, ProcessedBoxes: 40, Status: model.AssignmentCompleted},
			},
			want: model.BatchCompleted,
		},
		{
			name:     "late with some completed assignments",
			total:    100,
			deadline: yesterday,
			assignments: []model.Assignment{
				{AssignedBoxes: 50, ProcessedBoxes: 50, Status: model.AssignmentCompleted},
			},
			want: model.BatchDelayed,
		},
		{
			name:     "all completed but boxes missing before deadline",
			total:    100,
			deadline: tomorrow,
			assignments: []model.Assignment{
				{AssignedBoxes: 50, ProcessedBoxes: 50, Status: model.AssignmentCompleted},
			},
			want: model.BatchInProgress,
		},
		{
			name:     "in progress",
			total:    100,
			deadline: tomorrow,
			assignments: []model.Assignment{
				{AssignedBoxes: 100, ProcessedBoxes: 10, Status: model.AssignmentInProgress},
			},
			want: model.BatchInProgress,
		},
		{
			name:     "no assignment past deadline stays pending",
			total:    100,
			deadline: yesterday,
			want:     model.BatchPending,
		},
		{
			name:     "processed beyond total but one assignment open",
			total:    10,
			deadline: yesterday,
			assignments: []model.Assignment{
				{AssignedBoxes: 12, ProcessedBoxes: 12, Status: model.AssignmentCompleted},
				{AssignedBoxes: 5, ProcessedBoxes: 0, Status: model.AssignmentPending},
			},
			want: model.BatchInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := &model.Batch{TotalBoxes: tt.total, ExpectedCompletionDate: tt.deadline}
			assert.Equal(t, tt.want, DeriveBatchStatus(batch, tt.assignments, testNow))
		})
	}
}

func TestApplyBatchDerivation_IgnoresStoredValues(t *testing.T) {
	batch := &model.Batch{
		TotalBoxes:             100,
		ProcessedBoxes:         999,
		Status:                 model.BatchCompleted,
		ExpectedCompletionDate: testNow.Add(time.Hour),
		Assignments: []model.Assignment{
			{AssignedBoxes: 30, ProcessedBoxes: 10, Status: model.AssignmentInProgress},
			{AssignedBoxes: 20, ProcessedBoxes: 5, Status: model.AssignmentInProgress},
		},
	}

	p := ApplyBatchDerivation(batch, testNow)

	assert.Equal(t, model.BatchInProgress, batch.Status)
	assert.Equal(t, 15, batch.ProcessedBoxes)
	assert.Equal(t, 50, p.AssignedBoxes)
	assert.False(t, p.AllCompleted)
}

func TestDeriveAssignmentStatus_Thresholds(t *testing.T) {
	for assigned := 1; assigned <= 20; assigned++ {
		for processed := 0; processed <= assigned; processed++ {
			got := DeriveAssignmentStatus(processed, assigned)
			switch {
			case processed == 0:
				assert.Equal(t, model.AssignmentPending, got, "p=%d a=%d", processed, assigned)
			case processed < assigned:
				assert.Equal(t, model.AssignmentInProgress, got, "p=%d a=%d", processed, assigned)
			default:
				assert.Equal(t, model.AssignmentCompleted, got, "p=%d a=%d", processed, assigned)
			}
		}
	}
}

func TestResolveAssignmentStatus_ExplicitWins(t *testing.T) {
	explicit := model.AssignmentCompleted
	assert.Equal(t, model.AssignmentCompleted, ResolveAssignmentStatus(&explicit, 0, 10))

	empty := model.AssignmentStatus("")
	assert.Equal(t, model.AssignmentInProgress, ResolveAssignmentStatus(&empty, 3, 10))
	assert.Equal(t, model.AssignmentPending, ResolveAssignmentStatus(nil, 0, 10))
}

func TestCompletionPercent(t *testing.T) {
	assert.Equal(t, 0, CompletionPercent(10, 0))
	assert.Equal(t, 50, CompletionPercent(50, 100))
	assert.Equal(t, 33, CompletionPercent(1, 3))
	assert.Equal(t, 67, CompletionPercent(2, 3))
	assert.Equal(t, 1, CompletionPercent(1, 200)) // 0.5 rounds up
	assert.Equal(t, "0%", PercentString(0, 0))
	assert.Equal(t, "25%", PercentString(1, 4))
}
