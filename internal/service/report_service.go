package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/soundofguitara/parma/internal/dto"
	"github.com/soundofguitara/parma/internal/repository"
	apperrors "github.com/soundofguitara/parma/pkg/errors"
	"github.com/soundofguitara/parma/pkg/metrics"
	"github.com/soundofguitara/parma/pkg/storage"
)

// ExportFile a generated file ready to be sent.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
	// ArchivedAs is the object name in the report archive, empty when not archived.
	ArchivedAs string
}

// ReportArchive keeps a copy of generated reports.
type ReportArchive interface {
	Put(ctx context.Context, objectName string, body []byte, contentType string) (string, error)
}

// ReportService builds and exports tabular reports.
type ReportService interface {
	Generate(ctx context.Context, req *dto.ReportRequest) (*ExportFile, error)
	Preview(ctx context.Context, req *dto.ReportRequest) (*ReportResult, error)
}

type reportService struct {
	repo          *repository.Repository
	archive       ReportArchive
	metrics       *metrics.Metrics
	defaultFormat ExportFormat
	loc           *time.Location
	now           func() time.Time
	logger        *zap.Logger
}

// NewReportService creates a ReportService. archive may be nil.
func NewReportService(
	repo *repository.Repository,
	archive ReportArchive,
	m *metrics.Metrics,
	defaultFormat ExportFormat,
	loc *time.Location,
	now func() time.Time,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		repo:          repo,
		archive:       archive,
		metrics:       m,
		defaultFormat: defaultFormat,
		loc:           loc,
		now:           now,
		logger:        logger,
	}
}

// ────────────────────── Preview ──────────────────────

func (s *reportService) Preview(ctx context.Context, req *dto.ReportRequest) (*ReportResult, error) {
	p, err := s.params(req)
	if err != nil {
		return nil, err
	}
	return BuildReport(ctx, s.repo, p, s.now(), s.loc)
}

// ────────────────────── Generate ──────────────────────

// Generate builds the report and encodes it. A degraded report is still
// delivered; only encoding failures are errors.
func (s *reportService) Generate(ctx context.Context, req *dto.ReportRequest) (*ExportFile, error) {
	start := time.Now()

	p, err := s.params(req)
	if err != nil {
		return nil, err
	}

	result, err := BuildReport(ctx, s.repo, p, s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	if result.Degraded() {
		s.logger.Warn("report degraded",
			zap.String("type", string(p.Type)),
			zap.String("error", result.Error),
		)
	}

	body, err := EncodeReport(result, p.Format)
	if err != nil {
		s.logger.Error("encode report failed",
			zap.String("type", string(p.Type)),
			zap.String("format", string(p.Format)),
			zap.Error(err),
		)
		s.metrics.ReportGenerated(string(p.Type), string(p.Format), "error", time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrReportEncode, err)
	}

	file := &ExportFile{
		Filename:    ReportFilename(string(p.Type), p.From, p.To, p.Format, s.loc),
		ContentType: p.Format.ContentType(),
		Body:        body,
	}

	if s.archive != nil && !result.Degraded() {
		object, err := s.archive.Put(ctx, storage.ObjectName(s.now(), file.Filename), body, file.ContentType)
		if err != nil {
			s.logger.Warn("archive report failed", zap.String("file", file.Filename), zap.Error(err))
		} else {
			file.ArchivedAs = object
		}
	}

	outcome := "ok"
	if result.Degraded() {
		outcome = "degraded"
	}
	s.metrics.ReportGenerated(string(p.Type), string(p.Format), outcome, time.Since(start))

	s.logger.Info("report generated",
		zap.String("type", string(p.Type)),
		zap.String("format", string(p.Format)),
		zap.Int("rows", len(result.Rows)),
		zap.Int("bytes", len(body)),
	)
	return file, nil
}

// params validates req and widens its dates to whole days in the report
// timezone: from 00:00:00 to 23:59:59.999999999.
func (s *reportService) params(req *dto.ReportRequest) (ReportParams, error) {
	typ := ReportType(req.Type)
	if !KnownReportType(typ) {
		return ReportParams{}, ErrUnknownReportType
	}
	format, err := ParseExportFormat(req.Format, s.defaultFormat)
	if err != nil {
		return ReportParams{}, err
	}
	if req.DateFrom.IsZero() || req.DateTo.IsZero() {
		return ReportParams{}, apperrors.Invalid("date_from", "Veuillez sélectionner une période.")
	}

	from := StartOfDay(req.DateFrom, s.loc)
	to := StartOfDay(req.DateTo, s.loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
	if to.Before(from) {
		return ReportParams{}, apperrors.Invalid("date_to", "La date de fin doit être postérieure à la date de début.")
	}

	return ReportParams{Type: typ, Format: format, From: from, To: to}, nil
}

// StartOfDay midnight of t's calendar date, read as a date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
