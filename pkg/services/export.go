package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/apperrors"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/history"
)

// ExportFormat selects the export encoding.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

const exportSheet = "Sheet1"

// ParseExportFormat accepts csv, xlsx and excel.
func ParseExportFormat(name string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "csv":
		return ExportCSV, nil
	case "xlsx", "excel":
		return ExportXLSX, nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q", apperrors.ErrValidationRejected, name)
	}
}

// ContentType returns the MIME type for the format.
func (f ExportFormat) ContentType() string {
	if f == ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// ExportRows writes a header of columns followed by one line per row.
func ExportRows(w io.Writer, format ExportFormat, columns []string, rows []map[string]any) error {
	table := make([][]any, 0, len(rows))
	for _, row := range rows {
		line := make([]any, len(columns))
		for i, col := range columns {
			line[i] = row[col]
		}
		table = append(table, line)
	}
	return writeTable(w, format, columns, table)
}

// ExportHistory writes history records, one per line.
func ExportHistory(w io.Writer, format ExportFormat, records []history.Record) error {
	header := []string{"id", "timestamp", "natural_query", "sql_query", "dialect", "tags", "favorite"}
	table := make([][]any, 0, len(records))
	for _, r := range records {
		table = append(table, []any{
			r.ID, r.Timestamp, r.NaturalQuery, r.SQLQuery, r.Dialect, strings.Join(r.Tags, ","), r.Favorite,
		})
	}
	return writeTable(w, format, header, table)
}

func writeTable(w io.Writer, format ExportFormat, header []string, rows [][]any) error {
	switch format {
	case ExportXLSX:
		return writeXLSX(w, header, rows)
	case ExportCSV:
		return writeCSV(w, header, rows)
	default:
		return fmt.Errorf("%w: unsupported export format %q", apperrors.ErrValidationRejected, format)
	}
}

func writeCSV(w io.Writer, header []string, rows [][]any) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, v := range row {
			record[i] = formatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, header []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = xlsxValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &cells); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func formatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// xlsxValue keeps numbers and booleans native and stringifies the rest.
func xlsxValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case string, bool, int, int32, int64, float32, float64:
		return t
	default:
		return formatCell(t)
	}
}
