package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	"github.com/Black-And-White-Club/team-ledger/pkg/observability/attr"
	"github.com/xuri/excelize/v2"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts csv, xlsx or excel in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", analyticsdomain.ErrUnsupportedFormat, s)
}

// FileName returns "<table>_export.<ext>".
func FileName(table string, f Format) string {
	return table + "_export." + string(f)
}

// TableSource loads one base table by name.
type TableSource interface {
	FetchTable(ctx context.Context, name string) (analyticsdomain.Table, error)
}

// TableSourceFunc adapts a function to TableSource.
type TableSourceFunc func(ctx context.Context, name string) (analyticsdomain.Table, error)

func (f TableSourceFunc) FetchTable(ctx context.Context, name string) (analyticsdomain.Table, error) {
	return f(ctx, name)
}

// TableExportError records the failure of one table's export.
type TableExportError struct {
	Table  string
	Format Format
	Err    error
}

func (e *TableExportError) Error() string {
	return fmt.Sprintf("export %s as %s: %v", e.Table, e.Format, e.Err)
}

func (e *TableExportError) Unwrap() error { return e.Err }

// Artifact is one written export file.
type Artifact struct {
	Table string
	Path  string
	Rows  int
}

// Result lists the files that were written.
type Result struct {
	Format    Format
	Artifacts []Artifact
}

// Exporter serializes base tables into Dir.
type Exporter struct {
	Dir    string
	Logger *slog.Logger
}

// NewExporter builds an Exporter writing into dir.
func NewExporter(dir string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{Dir: dir, Logger: logger}
}

// ExportAll writes every base table in the requested format. Tables are
// independent: a failed table is reported as a *TableExportError in the joined
// error while the others are still written.
func (e *Exporter) ExportAll(ctx context.Context, src TableSource, format string) (Result, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return Result{Format: f}, fmt.Errorf("create export dir %s: %w", e.Dir, err)
	}

	res := Result{Format: f}
	var errs []error
	for _, name := range analyticsdomain.BaseTables {
		art, err := e.exportTable(ctx, src, name, f)
		if err != nil {
			e.Logger.WarnContext(ctx, "Table export failed",
				attr.String("table", name),
				attr.String("format", string(f)),
				attr.Error(err),
			)
			errs = append(errs, &TableExportError{Table: name, Format: f, Err: err})
			continue
		}
		res.Artifacts = append(res.Artifacts, art)
	}
	return res, errors.Join(errs...)
}

func (e *Exporter) exportTable(ctx context.Context, src TableSource, name string, f Format) (Artifact, error) {
	table, err := src.FetchTable(ctx, name)
	if err != nil {
		return Artifact{}, fmt.Errorf("fetch: %w", err)
	}
	path := filepath.Join(e.Dir, FileName(name, f))
	switch f {
	case FormatCSV:
		err = WriteCSV(path, table)
	case FormatXLSX:
		err = WriteXLSX(path, table)
	}
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Table: name, Path: path, Rows: len(table.Rows)}, nil
}

// formatCell renders a table cell for delimited output; nil is an empty cell.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// WriteCSV writes the table with a header row.
func WriteCSV(path string, t analyticsdomain.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(file)
	if err := w.Write(t.Columns); err != nil {
		_ = file.Close()
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = formatCell(row[i])
			}
		}
		if err := w.Write(record); err != nil {
			_ = file.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteXLSX writes the table to a single-sheet workbook named after the table.
func WriteXLSX(path string, t analyticsdomain.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := t.Name
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
