package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/soundofguitara/parma/internal/dto"
	"github.com/soundofguitara/parma/internal/model"
	"github.com/soundofguitara/parma/internal/repository"
	apperrors "github.com/soundofguitara/parma/pkg/errors"
)

// DashboardService workshop overview.
type DashboardService interface {
	Get(ctx context.Context) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	cache  *cacheLayer
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewDashboardService creates a DashboardService. "Today" is evaluated in loc.
func NewDashboardService(repo *repository.Repository, cache *cacheLayer, loc *time.Location, now func() time.Time, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, cache: cache, loc: loc, now: now, logger: logger}
}

func (s *dashboardService) Get(ctx context.Context) (*dto.DashboardResponse, error) {
	return cachedRead(ctx, s.cache, collDashboard, "all", func() (*dto.DashboardResponse, error) {
		var (
			batches     []model.Batch
			operators   []model.Operator
			assignments []model.Assignment
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			batches, err = s.repo.Batch.List(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			operators, err = s.repo.Operator.List(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			assignments, err = s.repo.Assignment.List(gctx, repository.AssignmentFilter{})
			return err
		})
		if err := g.Wait(); err != nil {
			s.logger.Error("load dashboard data failed", zap.Error(err))
			return nil, apperrors.Store("load dashboard", err)
		}

		return ComputeDashboard(batches, operators, assignments, s.now().In(s.loc)), nil
	})
}

// ComputeDashboard derives the overview at instant now. Batch statuses are
// derived, not read from the table.
func ComputeDashboard(batches []model.Batch, operators []model.Operator, assignments []model.Assignment, now time.Time) *dto.DashboardResponse {
	resp := &dto.DashboardResponse{TotalBatches: len(batches)}

	for i := range batches {
		b := &batches[i]
		resp.TotalBoxes += b.TotalBoxes
		switch DeriveBatchStatus(b, b.Assignments, now) {
		case model.BatchPending:
			resp.BatchStatus.Pending++
		case model.BatchInProgress:
			resp.BatchStatus.InProgress++
			resp.ActiveBatches++
		case model.BatchCompleted:
			resp.BatchStatus.Completed++
		case model.BatchDelayed:
			resp.BatchStatus.Delayed++
		}
	}

	active := make(map[string]struct{})
	y, m, d := now.Date()
	var minutes float64
	for i := range assignments {
		a := &assignments[i]
		resp.ProcessedBoxes += a.ProcessedBoxes
		if !a.StartTime.IsZero() {
			end := now
			if a.EndTime != nil {
				end = *a.EndTime
			}
			minutes += end.Sub(a.StartTime).Minutes()
		}
		if a.Status == model.AssignmentInProgress {
			active[a.OperatorID] = struct{}{}
		}
		if a.Status == model.AssignmentCompleted && a.EndTime != nil {
			ey, em, ed := a.EndTime.In(now.Location()).Date()
			if ey == y && em == m && ed == d {
				resp.CompletedToday++
			}
		}
	}

	resp.RemainingBoxes = resp.TotalBoxes - resp.ProcessedBoxes
	if resp.RemainingBoxes < 0 {
		resp.RemainingBoxes = 0
	}
	resp.CompletionRate = CompletionPercent(resp.ProcessedBoxes, resp.TotalBoxes)
	if minutes > 0 {
		resp.Performance.AverageBoxesPerHour = int(roundFloat(float64(resp.ProcessedBoxes) / minutes * 60))
	}

	byOperator := GroupByOperator(assignments)
	names := make([]string, len(operators))
	stats := make([]OperatorStats, len(operators))
	for i := range operators {
		names[i] = operators[i].Name
		stats[i] = DeriveOperatorStats(byOperator[operators[i].ID], now)
	}
	resp.Performance.MostEfficientOperator = MostProductive(names, stats)
	resp.Operators = dto.OperatorCount{Total: len(operators), Active: len(active)}

	return resp
}
