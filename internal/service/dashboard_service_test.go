package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/soundofguitara/parma/internal/model"
	apperrors "github.com/soundofguitara/parma/pkg/errors"
)

func TestDashboardService_Get(t *testing.T) {
	s := newMockStore()
	s.addBatch(model.Batch{ID: "b-1", Code: "LOT-1", TotalBoxes: 100, ExpectedCompletionDate: testNow.Add(time.Hour)})
	s.addBatch(model.Batch{ID: "b-2", Code: "LOT-2", TotalBoxes: 50, ExpectedCompletionDate: testNow.Add(-time.Hour)})
	s.addBatch(model.Batch{ID: "b-3", Code: "LOT-3", TotalBoxes: 50, ExpectedCompletionDate: testNow.Add(-time.Hour)})
	s.addOperator("op-1", "Alice")
	s.addOperator("op-2", "Bruno")

	start := testNow.Add(-2 * time.Hour)
	s.addAssignment(model.Assignment{ID: "a-1", BatchID: "b-1", OperatorID: "op-1", AssignedBoxes: 100,
		ProcessedBoxes: 60, StartTime: start, Status: model.AssignmentInProgress})
	s.addAssignment(model.Assignment{ID: "a-2", BatchID: "b-2", OperatorID: "op-2", AssignedBoxes: 20,
		ProcessedBoxes: 20, StartTime: start, EndTime: timePtr(start.Add(time.Hour)), Status: model.AssignmentCompleted})

	svc := NewDashboardService(s.repository(), nil, time.UTC, fixedClock, zap.NewNop())
	got, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}

	if got.TotalBatches != 3 || got.ActiveBatches != 1 {
		t.Errorf("unexpected batch counts %+v", got)
	}
	if got.BatchStatus.InProgress != 1 || got.BatchStatus.Delayed != 1 || got.BatchStatus.Pending != 1 {
		t.Errorf("unexpected status counts %+v", got.BatchStatus)
	}
	if got.TotalBoxes != 200 || got.ProcessedBoxes != 80 || got.RemainingBoxes != 120 || got.CompletionRate != 40 {
		t.Errorf("unexpected box totals %+v", got)
	}
	if got.CompletedToday != 1 {
		t.Errorf("expected 1 completed today, got %d", got.CompletedToday)
	}
	if got.Operators.Total != 2 || got.Operators.Active != 1 {
		t.Errorf("unexpected operator counts %+v", got.Operators)
	}
	// 80 boxes over 180 minutes
	if got.Performance.AverageBoxesPerHour != 27 {
		t.Errorf("expected 27 boxes/h, got %d", got.Performance.AverageBoxesPerHour)
	}
	if got.Performance.MostEfficientOperator != "Alice" {
		t.Errorf("expected Alice, got %s", got.Performance.MostEfficientOperator)
	}
}

func TestComputeDashboard_Empty(t *testing.T) {
	got := ComputeDashboard(nil, nil, nil, testNow)
	if got.CompletionRate != 0 || got.Performance.MostEfficientOperator != "N/A" {
		t.Errorf("unexpected empty dashboard %+v", got)
	}
}

func TestDashboardService_StoreFailure(t *testing.T) {
	s := newMockStore()
	s.operators.err = errors.New("db down")

	svc := NewDashboardService(s.repository(), nil, time.UTC, fixedClock, zap.NewNop())
	if _, err := svc.Get(context.Background()); !errors.Is(err, apperrors.ErrStoreUnavailable) {
		t.Errorf("expected store error, got %v", err)
	}
}
