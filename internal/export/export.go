// Package export dumps the accumulated article list to the bulk formats:
// indented JSON, CSV, a spreadsheet, and a summary-statistics record. The
// exporters flatten records generically, so the CSV/XLSX header is always the
// sorted union of the field names present across all records.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"freshkb-cli/internal/model"
	"freshkb-cli/internal/util"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Record is one flattened export row.
type Record = map[string]interface{}

const defaultBasename = "freshservice_kb_export"

type Exporter struct {
	dir    string
	logger *zap.SugaredLogger
}

func New(dir string, logger *zap.SugaredLogger) *Exporter {
	return &Exporter{dir: dir, logger: logger}
}

// Files lists what one bulk export pass produced.
type Files struct {
	JSON    string
	CSV     string
	XLSX    string
	Summary string
}

// StubRecords flattens article stubs into generic export rows.
func StubRecords(stubs []model.ArticleStub) []Record {
	records := make([]Record, 0, len(stubs))
	for _, stub := range stubs {
		data, err := json.Marshal(stub)
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// ExportAll runs the three serializations plus the summary report. Each
// exporter is independent: one failing is logged and does not block the rest.
func (e *Exporter) ExportAll(stubs []model.ArticleStub, name string, now time.Time) Files {
	records := StubRecords(stubs)
	var files Files

	if path, err := e.ExportJSON(records, e.filename(name, "json", now)); err != nil {
		e.logger.Errorf("JSON export failed: %v", err)
	} else {
		files.JSON = path
		e.logger.Infof("Exported %d articles to %s", len(records), path)
	}

	if path, err := e.ExportCSV(records, e.filename(name, "csv", now)); err != nil {
		e.logger.Errorf("CSV export failed: %v", err)
	} else {
		files.CSV = path
		e.logger.Infof("Exported %d articles to %s", len(records), path)
	}

	if path, err := e.ExportXLSX(records, e.filename(name, "xlsx", now)); err != nil {
		e.logger.Errorf("Spreadsheet export failed: %v", err)
	} else {
		files.XLSX = path
		e.logger.Infof("Exported %d articles to %s", len(records), path)
	}

	report := model.NewSummaryReport(stubs, now)
	if path, err := e.WriteSummaryReport(report, e.summaryFilename(name, now)); err != nil {
		e.logger.Errorf("Summary report failed: %v", err)
	} else {
		files.Summary = path
	}

	return files
}

// filename builds the output path: a user-supplied name is slugified and used
// as-is, otherwise the default basename gets a timestamp suffix.
func (e *Exporter) filename(name, ext string, now time.Time) string {
	base := defaultBasename + "_" + util.ExportTimestamp(now)
	if name != "" {
		base = util.SlugifyName(name, 0)
	}
	return filepath.Join(e.dir, base+"."+ext)
}

func (e *Exporter) summaryFilename(name string, now time.Time) string {
	base := defaultBasename + "_" + util.ExportTimestamp(now)
	if name != "" {
		base = util.SlugifyName(name, 0)
	}
	return filepath.Join(e.dir, base+"_summary.json")
}

// ExportJSON writes the records as indented JSON.
func (e *Exporter) ExportJSON(records []Record, path string) (string, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

// ExportCSV writes the records with the sorted union of all field names as
// header; rows leave missing fields blank.
func (e *Exporter) ExportCSV(records []Record, path string) (string, error) {
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	header := FieldUnion(records)

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range records {
		row := make([]string, len(header))
		for i, field := range header {
			if v, ok := rec[field]; ok {
				row[i] = cellString(v)
			}
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return path, nil
}

// ExportXLSX writes the records to a spreadsheet with the same flattening
// the CSV export uses.
func (e *Exporter) ExportXLSX(records []Record, path string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := FieldUnion(records)

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return "", fmt.Errorf("failed to write header row: %w", err)
	}

	for i, rec := range records {
		row := make([]interface{}, len(header))
		for j, field := range header {
			if v, ok := rec[field]; ok {
				row[j] = cellString(v)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return "", fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save spreadsheet: %w", err)
	}
	return path, nil
}

// WriteSummaryReport writes the statistics record as indented JSON.
func (e *Exporter) WriteSummaryReport(report model.SummaryReport, path string) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

// FieldUnion returns the sorted union of field names across records.
func FieldUnion(records []Record) []string {
	seen := make(map[string]bool)
	for _, rec := range records {
		for field := range rec {
			seen[field] = true
		}
	}
	fields := make([]string, 0, len(seen))
	for field := range seen {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// cellString renders one record value into a tabular cell. JSON numbers
// arrive as float64; integral values must not pick up an exponent.
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}
