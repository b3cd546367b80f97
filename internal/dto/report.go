package dto

import (
	"encoding/json"
	"fmt"
	"time"
)

// ── Reports ──

// ReportDateLayout is the calendar-day layout report windows use on both
// the query string and the JSON body.
const ReportDateLayout = "2006-01-02"

// ReportRequest report type, export format and inclusive date window
type ReportRequest struct {
	Type     string    `json:"type"      form:"type"      binding:"required,oneof=productivity batches operators"`
	Format   string    `json:"format"    form:"format"    binding:"omitempty,oneof=xlsx excel pdf csv json"`
	DateFrom time.Time `json:"date_from" form:"date_from" binding:"required" time_format:"2006-01-02"`
	DateTo   time.Time `json:"date_to"   form:"date_to"   binding:"required" time_format:"2006-01-02"`
}

// UnmarshalJSON reads date_from and date_to as yyyy-MM-dd. Full RFC 3339
// timestamps are still accepted and keep only their calendar day.
func (r *ReportRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type     string `json:"type"`
		Format   string `json:"format"`
		DateFrom string `json:"date_from"`
		DateTo   string `json:"date_to"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	from, err := parseReportDate("date_from", raw.DateFrom)
	if err != nil {
		return err
	}
	to, err := parseReportDate("date_to", raw.DateTo)
	if err != nil {
		return err
	}
	*r = ReportRequest{Type: raw.Type, Format: raw.Format, DateFrom: from, DateTo: to}
	return nil
}

func parseReportDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(ReportDateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: expected yyyy-MM-dd, got %q", field, value)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
