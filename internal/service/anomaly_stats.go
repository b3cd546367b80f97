package service

import (
	"fmt"
	"time"

	"github.com/soundofguitara/parma/internal/dto"
	"github.com/soundofguitara/parma/internal/model"
)

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// MonthWindow is the closed interval [first instant, last instant] of a month.
type MonthWindow struct {
	Start time.Time
	End   time.Time
}

// NewMonthWindow returns the calendar month containing t, in t's location.
func NewMonthWindow(t time.Time) MonthWindow {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return MonthWindow{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

// Contains reports whether t falls inside the window, bounds included.
func (w MonthWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Label renders the month in French, e.g. "octobre 2026".
func (w MonthWindow) Label() string {
	return fmt.Sprintf("%s %d", frenchMonths[w.Start.Month()-1], w.Start.Year())
}

// ParseMonth reads "2006-01" in loc. An empty value selects the month of now.
func ParseMonth(value string, now time.Time, loc *time.Location) (MonthWindow, error) {
	if value == "" {
		return NewMonthWindow(now.In(loc)), nil
	}
	t, err := time.ParseInLocation("2006-01", value, loc)
	if err != nil {
		return MonthWindow{}, err
	}
	return NewMonthWindow(t), nil
}

// AggregateAnomalies tallies the anomalies detected inside window. Every
// known type and status gets a bucket, so both breakdowns always partition
// total_anomalies.
func AggregateAnomalies(records []model.Anomaly, window MonthWindow) *dto.AnomalyStatsResponse {
	type tally struct{ count, quantity int }

	byType := make(map[string]*tally, len(model.AnomalyTypes))
	for _, t := range model.AnomalyTypes {
		byType[string(t)] = &tally{}
	}
	byStatus := make(map[string]*tally, len(model.AnomalyStatuses))
	for _, s := range model.AnomalyStatuses {
		byStatus[string(s)] = &tally{}
	}
	byOperator := make(map[string]*tally)

	bump := func(m map[string]*tally, key string, qty int) {
		t, ok := m[key]
		if !ok {
			t = &tally{}
			m[key] = t
		}
		t.count++
		t.quantity += qty
	}

	total, quantity := 0, 0
	for i := range records {
		a := &records[i]
		if !window.Contains(a.DetectionDate) {
			continue
		}
		total++
		quantity += a.Quantity
		bump(byType, string(a.Type), a.Quantity)
		bump(byStatus, string(a.Status), a.Quantity)
		bump(byOperator, anomalyOperatorName(a), a.Quantity)
	}

	buckets := func(m map[string]*tally) map[string]dto.AggregateBucket {
		out := make(map[string]dto.AggregateBucket, len(m))
		for k, t := range m {
			out[k] = dto.AggregateBucket{
				Count:      t.count,
				Quantity:   t.quantity,
				Percentage: PercentString(t.count, total),
			}
		}
		return out
	}

	return &dto.AnomalyStatsResponse{
		Period: dto.AnomalyPeriod{
			Start: window.Start.Format(dto.TimeLayout),
			End:   window.End.Format(dto.TimeLayout),
			Label: window.Label(),
		},
		TotalAnomalies:        total,
		TotalQuantityAffected: quantity,
		ByType:                buckets(byType),
		ByStatus:              buckets(byStatus),
		ByOperator:            buckets(byOperator),
	}
}

func anomalyOperatorName(a *model.Anomaly) string {
	if a.Operator != nil && a.Operator.Name != "" {
		return a.Operator.Name
	}
	return a.OperatorID
}
