package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/soundofguitara/parma/internal/model"
	"github.com/soundofguitara/parma/internal/repository"
)

// ReportType selects one builder.
type ReportType string

const (
	ReportProductivity ReportType = "productivity"
	ReportBatches      ReportType = "batches"
	ReportOperators    ReportType = "operators"
)

// ReportColumn a column key and its French header.
type ReportColumn struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ReportRow one line of a report, keyed by column. Values are int or string.
type ReportRow map[string]interface{}

// ReportResult a report ready for export. A non-empty Error marks a degraded
// report: Rows is empty and Error explains why.
type ReportResult struct {
	Type    ReportType     `json:"type"`
	Title   string         `json:"title"`
	Period  string         `json:"period"`
	Columns []ReportColumn `json:"columns"`
	Rows    []ReportRow    `json:"data"`
	Error   string         `json:"error,omitempty"`
}

// Degraded reports whether building failed.
func (r *ReportResult) Degraded() bool {
	return r.Error != ""
}

// ReportParams a report request after validation. From and To are inclusive.
type ReportParams struct {
	Type   ReportType
	Format ExportFormat
	From   time.Time
	To     time.Time
}

// FormatPeriod renders "dd/MM/yyyy - dd/MM/yyyy" in loc.
func FormatPeriod(from, to time.Time, loc *time.Location) string {
	return from.In(loc).Format("02/01/2006") + " - " + to.In(loc).Format("02/01/2006")
}

const emptyBatchesMessage = "Aucun lot trouvé pour la période sélectionnée."

var messageColumn = ReportColumn{Key: "message", Label: "Message"}

// reportBuilder fetches the rows of one report type.
type reportBuilder struct {
	title   string
	columns []ReportColumn
	rows    func(ctx context.Context, repo *repository.Repository, p ReportParams, now time.Time) ([]ReportRow, error)
}

var reportBuilders = map[ReportType]reportBuilder{
	ReportProductivity: {
		title: "Rapport de productivité",
		columns: []ReportColumn{
			{Key: "operator", Label: "Opérateur"},
			{Key: "boxes", Label: "Boîtes traitées"},
			{Key: "efficiency", Label: "Taux de complétion"},
			{Key: "onTimeRate", Label: "Taux de ponctualité"},
		},
		rows: func(ctx context.Context, repo *repository.Repository, p ReportParams, _ time.Time) ([]ReportRow, error) {
			assignments, err := repo.Assignment.ListInWindow(ctx, p.From, p.To)
			if err != nil {
				return nil, err
			}
			return ProductivityRows(assignments), nil
		},
	},
	ReportBatches: {
		title: "Rapport des lots",
		columns: []ReportColumn{
			{Key: "code", Label: "Code lot"},
			{Key: "medication", Label: "Médicament"},
			{Key: "totalBoxes", Label: "Boîtes totales"},
			{Key: "assignedBoxes", Label: "Boîtes affectées"},
			{Key: "processedBoxes", Label: "Boîtes traitées"},
			{Key: "processed", Label: "Avancement"},
			{Key: "status", Label: "Statut"},
		},
		rows: func(ctx context.Context, repo *repository.Repository, p ReportParams, now time.Time) ([]ReportRow, error) {
			batches, err := repo.Batch.ListCreatedBetween(ctx, p.From, p.To)
			if err != nil {
				return nil, err
			}
			return BatchRows(batches, now), nil
		},
	},
	ReportOperators: {
		title: "Rapport des opérateurs",
		columns: []ReportColumn{
			{Key: "name", Label: "Opérateur"},
			{Key: "totalAssignments", Label: "Affectations"},
			{Key: "totalBoxes", Label: "Boîtes traitées"},
			{Key: "avgSpeed", Label: "Vitesse moyenne"},
		},
		rows: func(ctx context.Context, repo *repository.Repository, p ReportParams, _ time.Time) ([]ReportRow, error) {
			assignments, err := repo.Assignment.ListInWindow(ctx, p.From, p.To)
			if err != nil {
				return nil, err
			}
			return OperatorRows(assignments), nil
		},
	},
}

// KnownReportType reports whether t has a builder.
func KnownReportType(t ReportType) bool {
	_, ok := reportBuilders[t]
	return ok
}

// BuildReport runs the builder of p.Type. A store failure never surfaces as
// an error: it yields a degraded result whose title ends in " (erreur)".
func BuildReport(ctx context.Context, repo *repository.Repository, p ReportParams, now time.Time, loc *time.Location) (*ReportResult, error) {
	b, ok := reportBuilders[p.Type]
	if !ok {
		return nil, ErrUnknownReportType
	}

	result := &ReportResult{
		Type:    p.Type,
		Title:   b.title,
		Period:  FormatPeriod(p.From, p.To, loc),
		Columns: b.columns,
	}

	rows, err := b.rows(ctx, repo, p, now)
	if err != nil {
		result.Title += " (erreur)"
		result.Rows = []ReportRow{}
		result.Error = reportErrorMessage(p.Type, err)
		return result, nil
	}

	result.Rows = rows
	for _, row := range rows {
		if _, ok := row[messageColumn.Key]; ok {
			result.Columns = append(append([]ReportColumn{}, b.columns...), messageColumn)
			break
		}
	}
	return result, nil
}

func reportErrorMessage(t ReportType, err error) string {
	switch t {
	case ReportBatches:
		return "Erreur lors de la récupération des lots: " + err.Error()
	default:
		return "Erreur lors de la récupération des affectations: " + err.Error()
	}
}

// ── Row builders ──

func operatorKey(a *model.Assignment) string {
	if a.OperatorName != "" {
		return a.OperatorName
	}
	return a.OperatorID
}

// ProductivityRows groups assignments per operator, sorted by operator.
func ProductivityRows(assignments []model.Assignment) []ReportRow {
	type acc struct {
		boxes, completed, onTime, count int
	}
	groups := make(map[string]*acc)
	for i := range assignments {
		a := &assignments[i]
		key := operatorKey(a)
		g, ok := groups[key]
		if !ok {
			g = &acc{}
			groups[key] = g
		}
		g.count++
		g.boxes += a.ProcessedBoxes
		if a.Status == model.AssignmentCompleted {
			g.completed++
			if a.EndTime != nil && !a.ExpectedEndTime.IsZero() && !a.EndTime.After(a.ExpectedEndTime) {
				g.onTime++
			}
		}
	}

	rows := make([]ReportRow, 0, len(groups))
	for _, name := range sortedKeys(groups) {
		g := groups[name]
		rows = append(rows, ReportRow{
			"operator":   name,
			"boxes":      g.boxes,
			"efficiency": percentOrDash(g.completed, g.count),
			"onTimeRate": percentOrDash(g.onTime, g.count),
		})
	}
	return rows
}

// BatchRows summarises batches with their assignments, sorted by code.
// Batches missing a required field are dropped. Without any batch the
// result is a single placeholder row carrying a message.
func BatchRows(batches []model.Batch, now time.Time) []ReportRow {
	valid := make([]model.Batch, 0, len(batches))
	for _, b := range batches {
		if b.ID == "" || b.Code == "" || b.MedicationName == "" {
			continue
		}
		valid = append(valid, b)
	}

	if len(valid) == 0 {
		return []ReportRow{{
			"code":           "-",
			"medication":     "-",
			"totalBoxes":     "-",
			"assignedBoxes":  "-",
			"processedBoxes": "-",
			"processed":      "-",
			"status":         "-",
			"message":        emptyBatchesMessage,
		}}
	}

	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].Code != valid[j].Code {
			return valid[i].Code < valid[j].Code
		}
		return valid[i].ID < valid[j].ID
	})

	rows := make([]ReportRow, 0, len(valid))
	for i := range valid {
		b := &valid[i]
		p := SumAssignments(b.Assignments)
		processed := "-"
		if b.TotalBoxes > 0 {
			processed = PercentString(p.ProcessedBoxes, b.TotalBoxes)
		}
		rows = append(rows, ReportRow{
			"code":           b.Code,
			"medication":     b.MedicationName,
			"totalBoxes":     b.TotalBoxes,
			"assignedBoxes":  p.AssignedBoxes,
			"processedBoxes": p.ProcessedBoxes,
			"processed":      processed,
			"status":         string(DeriveBatchStatus(b, b.Assignments, now)),
		})
	}
	return rows
}

// OperatorRows counts assignments and boxes per operator, sorted by name.
func OperatorRows(assignments []model.Assignment) []ReportRow {
	type acc struct{ count, boxes int }
	groups := make(map[string]*acc)
	for i := range assignments {
		a := &assignments[i]
		key := operatorKey(a)
		g, ok := groups[key]
		if !ok {
			g = &acc{}
			groups[key] = g
		}
		g.count++
		g.boxes += a.ProcessedBoxes
	}

	rows := make([]ReportRow, 0, len(groups))
	for _, name := range sortedKeys(groups) {
		g := groups[name]
		speed := "-"
		if g.count > 0 {
			speed = strconv.Itoa(roundRatio(g.boxes, g.count)) + " boîtes/h"
		}
		rows = append(rows, ReportRow{
			"name":             name,
			"totalAssignments": g.count,
			"totalBoxes":       g.boxes,
			"avgSpeed":         speed,
		})
	}
	return rows
}

func percentOrDash(count, total int) string {
	if total == 0 {
		return "-"
	}
	return PercentString(count, total)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
