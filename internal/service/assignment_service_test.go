package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/soundofguitara/parma/internal/dto"
	"github.com/soundofguitara/parma/internal/model"
	apperrors "github.com/soundofguitara/parma/pkg/errors"
)

func setupTestAssignmentService() (*mockStore, AssignmentService) {
	s := newMockStore()
	s.addBatch(model.Batch{ID: "b-1", Code: "LOT-1", MedicationName: "X", TotalBoxes: 100,
		ExpectedCompletionDate: testNow.Add(24 * time.Hour)})
	s.addOperator("op-1", "Alice")
	s.addOperator("op-2", "Bruno")
	return s, NewAssignmentService(s.repository(), nil, zap.NewNop())
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func createReq(assigned, processed int) *dto.CreateAssignmentRequest {
	return &dto.CreateAssignmentRequest{
		BatchID:         "b-1",
		OperatorID:      "op-1",
		AssignedBoxes:   assigned,
		ProcessedBoxes:  processed,
		StartTime:       testNow,
		ExpectedEndTime: testNow.Add(2 * time.Hour),
	}
}

func TestAssignmentService_CreateDerivesStatus(t *testing.T) {
	_, svc := setupTestAssignmentService()
	ctx := context.Background()

	tests := []struct {
		assigned, processed int
		want                model.AssignmentStatus
	}{
		{20, 0, model.AssignmentPending},
		{20, 5, model.AssignmentInProgress},
		{20, 20, model.AssignmentCompleted},
	}
	for _, tt := range tests {
		got, err := svc.Create(ctx, createReq(tt.assigned, tt.processed), "user-1")
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if got.Status != string(tt.want) {
			t.Errorf("p=%d a=%d: expected %s, got %s", tt.processed, tt.assigned, tt.want, got.Status)
		}
		if got.OperatorName != "Alice" || got.BatchCode != "LOT-1" {
			t.Errorf("expected joined names, got %+v", got)
		}
	}
}

func TestAssignmentService_CreateExplicitStatus(t *testing.T) {
	_, svc := setupTestAssignmentService()

	req := createReq(20, 0)
	req.Status = strPtr(string(model.AssignmentInProgress))
	got, err := svc.Create(context.Background(), req, "user-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if got.Status != string(model.AssignmentInProgress) {
		t.Errorf("explicit status should win, got %s", got.Status)
	}
}

func TestAssignmentService_CreateValidation(t *testing.T) {
	s, svc := setupTestAssignmentService()
	s.addAssignment(model.Assignment{ID: "a-0", BatchID: "b-1", OperatorID: "op-2", AssignedBoxes: 70})
	ctx := context.Background()

	over := createReq(40, 0)
	_, err := svc.Create(ctx, over, "user-1")
	ve, ok := apperrors.AsValidation(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Message != "Le nombre de boîtes affectées ne peut pas dépasser 30 boîtes." {
		t.Errorf("unexpected message %q", ve.Message)
	}

	if _, err := svc.Create(ctx, createReq(10, 11), "user-1"); err == nil {
		t.Error("processed > assigned should be rejected")
	}

	missing := createReq(10, 0)
	missing.BatchID = ""
	_, err = svc.Create(ctx, missing, "user-1")
	if ve, ok := apperrors.AsValidation(err); !ok || ve.Message != "Veuillez sélectionner un lot." {
		t.Errorf("expected batch selection message, got %v", err)
	}

	unknownOp := createReq(10, 0)
	unknownOp.OperatorID = "op-9"
	if _, err := svc.Create(ctx, unknownOp, "user-1"); !errors.Is(err, ErrOperatorNotFound) {
		t.Errorf("expected ErrOperatorNotFound, got %v", err)
	}
}

func TestAssignmentService_UpdateMergesBeforeDeriving(t *testing.T) {
	s, svc := setupTestAssignmentService()
	s.addAssignment(model.Assignment{ID: "a-1", BatchID: "b-1", OperatorID: "op-1", OperatorName: "Alice",
		AssignedBoxes: 40, ProcessedBoxes: 10, StartTime: testNow, ExpectedEndTime: testNow.Add(time.Hour),
		Status: model.AssignmentInProgress})
	ctx := context.Background()

	// only processed is sent: the stored assigned count completes the pair
	got, err := svc.Update(ctx, "a-1", &dto.UpdateAssignmentRequest{ProcessedBoxes: intPtr(40)}, "user-1")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.Status != string(model.AssignmentCompleted) {
		t.Errorf("expected completed, got %s", got.Status)
	}

	// only assigned is sent
	got, err = svc.Update(ctx, "a-1", &dto.UpdateAssignmentRequest{AssignedBoxes: intPtr(60)}, "user-1")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.Status != string(model.AssignmentInProgress) {
		t.Errorf("expected in-progress, got %s", got.Status)
	}

	// counts unchanged: stored status is kept
	end := testNow.Add(time.Hour)
	got, err = svc.Update(ctx, "a-1", &dto.UpdateAssignmentRequest{EndTime: &end}, "user-1")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.Status != string(model.AssignmentInProgress) || got.EndTime == nil {
		t.Errorf("unexpected assignment %+v", got)
	}
}

func TestAssignmentService_UpdateCapacityExcludesSelf(t *testing.T) {
	s, svc := setupTestAssignmentService()
	s.addAssignment(model.Assignment{ID: "a-1", BatchID: "b-1", OperatorID: "op-1", AssignedBoxes: 60, StartTime: testNow})
	s.addAssignment(model.Assignment{ID: "a-2", BatchID: "b-1", OperatorID: "op-2", AssignedBoxes: 30, StartTime: testNow})
	ctx := context.Background()

	if _, err := svc.Update(ctx, "a-1", &dto.UpdateAssignmentRequest{AssignedBoxes: intPtr(70)}, "user-1"); err != nil {
		t.Fatalf("70 + 30 fits in 100: %v", err)
	}
	if _, err := svc.Update(ctx, "a-1", &dto.UpdateAssignmentRequest{AssignedBoxes: intPtr(71)}, "user-1"); err == nil {
		t.Error("71 + 30 exceeds 100")
	}
}

func TestAssignmentService_OperatorChangeRefreshesName(t *testing.T) {
	s, svc := setupTestAssignmentService()
	s.addAssignment(model.Assignment{ID: "a-1", BatchID: "b-1", OperatorID: "op-1", OperatorName: "Alice",
		AssignedBoxes: 10, StartTime: testNow})

	got, err := svc.Update(context.Background(), "a-1", &dto.UpdateAssignmentRequest{OperatorID: strPtr("op-2")}, "user-1")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.OperatorName != "Bruno" {
		t.Errorf("expected Bruno, got %s", got.OperatorName)
	}
}

func TestAssignmentService_ListAndDelete(t *testing.T) {
	s, svc := setupTestAssignmentService()
	s.addAssignment(model.Assignment{ID: "a-1", BatchID: "b-1", OperatorID: "op-1", Status: model.AssignmentPending})
	s.addAssignment(model.Assignment{ID: "a-2", BatchID: "b-1", OperatorID: "op-2", Status: model.AssignmentCompleted})
	ctx := context.Background()

	list, err := svc.List(ctx, &dto.AssignmentListRequest{OperatorID: "op-2"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != "a-2" || list[0].BatchCode != "LOT-1" {
		t.Errorf("unexpected list %+v", list)
	}

	if err := svc.Delete(ctx, "a-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(ctx, "a-1"); !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("expected ErrAssignmentNotFound, got %v", err)
	}
}
