package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ExportFormat file format of an exported report.
type ExportFormat string

const (
	FormatXLSX ExportFormat = "xlsx"
	FormatPDF  ExportFormat = "pdf"
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

const (
	dataSheet    = "Données"
	noDataText   = "Aucune donnée disponible."
	pdfLineStep  = 8.0
	pdfPageLimit = 280.0
)

// ParseExportFormat accepts "excel" as an alias of xlsx; empty selects def.
func ParseExportFormat(value string, def ExportFormat) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return def, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "pdf":
		return FormatPDF, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	}
	return "", ErrUnknownExportFormat
}

// ContentType MIME type sent with the file.
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	case FormatCSV:
		return "text/csv; charset=windows-1252"
	default:
		return "application/json"
	}
}

// ReportFilename rapport_<type>_<yyyy-MM-dd>_<yyyy-MM-dd>.<ext>
func ReportFilename(name string, from, to time.Time, f ExportFormat, loc *time.Location) string {
	return fmt.Sprintf("rapport_%s_%s_%s.%s",
		name, from.In(loc).Format("2006-01-02"), to.In(loc).Format("2006-01-02"), f)
}

// EncodeReport renders r in format f. A degraded report still produces a
// file that shows its error.
func EncodeReport(r *ReportResult, f ExportFormat) ([]byte, error) {
	switch f {
	case FormatXLSX:
		return encodeXLSX(r)
	case FormatPDF:
		return encodePDF(r)
	case FormatCSV:
		return encodeCSV(r)
	case FormatJSON:
		return json.MarshalIndent(r, "", "  ")
	}
	return nil, ErrUnknownExportFormat
}

func cellText(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// ── xlsx ──

func encodeXLSX(r *ReportResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	if r.Degraded() {
		f.SetCellValue(dataSheet, "A1", "Erreur")
		f.SetCellValue(dataSheet, "B1", r.Error)
		f.SetCellStyle(dataSheet, "A1", "A1", headerStyle)
		f.SetColWidth(dataSheet, "B", "B", 80)
	} else {
		for i, col := range r.Columns {
			f.SetCellValue(dataSheet, cellName(i, 1), col.Label)
			name := colName(i)
			f.SetColWidth(dataSheet, name, name, 20)
		}
		if len(r.Columns) > 0 {
			f.SetCellStyle(dataSheet, cellName(0, 1), cellName(len(r.Columns)-1, 1), headerStyle)
		}
		for rowIdx, row := range r.Rows {
			for i, col := range r.Columns {
				if v, ok := row[col.Key]; ok {
					f.SetCellValue(dataSheet, cellName(i, rowIdx+2), v)
				}
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cellName(colIdx, row int) string {
	name, _ := excelize.CoordinatesToCellName(colIdx+1, row)
	return name
}

// ── pdf ──

func encodePDF(r *ReportResult) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreator("vignetage", true)
	pdf.SetTitle(r.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 16)
	pdf.Text(10, 15, tr(r.Title))
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(10, 25, tr("Période : "+r.Period))

	y := 35.0
	line := func(text string) {
		if y > pdfPageLimit {
			pdf.AddPage()
			y = 15
		}
		pdf.Text(10, y, tr(text))
		y += pdfLineStep
	}

	switch {
	case r.Degraded():
		pdf.SetFont("Helvetica", "B", 10)
		line("Erreur : " + r.Error)
	case len(r.Rows) == 0:
		line(noDataText)
	default:
		labels := make([]string, len(r.Columns))
		for i, col := range r.Columns {
			labels[i] = col.Label
		}
		pdf.SetFont("Helvetica", "B", 10)
		line(strings.Join(labels, " | "))
		pdf.SetFont("Helvetica", "", 10)
		for _, row := range r.Rows {
			values := make([]string, len(r.Columns))
			for i, col := range r.Columns {
				values[i] = cellText(row[col.Key])
			}
			line(strings.Join(values, " | "))
		}
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// ── csv ──

// encodeCSV writes ';'-separated Windows-1252 text, the layout French Excel
// opens without an import wizard.
func encodeCSV(r *ReportResult) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	tw := transform.NewWriter(buf, enc)
	w := csv.NewWriter(tw)
	w.Comma = ';'

	records := [][]string{{r.Title}, {"Période : " + r.Period}}
	switch {
	case r.Degraded():
		records = append(records, []string{"Erreur", r.Error})
	default:
		header := make([]string, len(r.Columns))
		for i, col := range r.Columns {
			header[i] = col.Label
		}
		records = append(records, header)
		for _, row := range r.Rows {
			values := make([]string, len(r.Columns))
			for i, col := range r.Columns {
				values[i] = cellText(row[col.Key])
			}
			records = append(records, values)
		}
	}

	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}
