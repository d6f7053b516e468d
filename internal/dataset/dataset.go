// Package dataset accumulates one row per presented stimulus and writes the
// result table once at the end of a run.
package dataset

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"
)

// Format selects the on-disk representation of a dataset.
type Format int

const (
	FormatCSV Format = iota
	FormatJSON
	FormatXLSX
	FormatYAML
	FormatSQLite
)

// ParseFormat maps a format name to a Format. An unsupported name is a
// fatal configuration error for the caller.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "xlsx":
		return FormatXLSX, nil
	case "yaml":
		return FormatYAML, nil
	case "sqlite":
		return FormatSQLite, nil
	}
	return 0, fmt.Errorf("unsupported data format %q", s)
}

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	case FormatXLSX:
		return "xlsx"
	case FormatYAML:
		return "yaml"
	case FormatSQLite:
		return "sqlite"
	}
	return "unknown"
}

// Dataset is an append-only table with fixed headers.
type Dataset struct {
	headers []string
	rows    [][]string
}

func New(headers ...string) *Dataset {
	return &Dataset{headers: headers}
}

func (d *Dataset) Headers() []string { return d.headers }

func (d *Dataset) Len() int { return len(d.rows) }

// Append adds one row. The row must match the header width.
func (d *Dataset) Append(row []string) error {
	if len(row) != len(d.headers) {
		return fmt.Errorf("row has %d columns, dataset has %d", len(row), len(d.headers))
	}
	d.rows = append(d.rows, row)
	return nil
}

// Rows returns the accumulated rows in append order.
func (d *Dataset) Rows() [][]string { return d.rows }

// WriteFile writes the dataset to path in the given format.
func (d *Dataset) WriteFile(path string, format Format) error {
	switch format {
	case FormatCSV:
		return d.writeCSV(path)
	case FormatJSON:
		return d.writeJSON(path)
	case FormatXLSX:
		return d.writeXLSX(path)
	case FormatYAML:
		return d.writeYAML(path)
	case FormatSQLite:
		return d.writeSQLite(path)
	}
	return fmt.Errorf("unsupported data format %q", format)
}

func (d *Dataset) writeCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(d.headers); err != nil {
		return err
	}
	for _, row := range d.rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (d *Dataset) records() []map[string]string {
	records := make([]map[string]string, 0, len(d.rows))
	for _, row := range d.rows {
		rec := make(map[string]string, len(d.headers))
		for i, h := range d.headers {
			rec[h] = row[i]
		}
		records = append(records, rec)
	}
	return records
}

func (d *Dataset) writeJSON(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(d.records())
}

func (d *Dataset) writeYAML(path string) error {
	data, err := yaml.Marshal(d.records())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (d *Dataset) writeXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]interface{}, len(d.headers))
	for i, h := range d.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range d.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func (d *Dataset) writeSQLite(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	cols := make([]string, len(d.headers))
	marks := make([]string, len(d.headers))
	for i, h := range d.headers {
		cols[i] = fmt.Sprintf("%q TEXT", h)
		marks[i] = "?"
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS results (%s)", strings.Join(cols, ", "))
	if _, err := db.Exec(create); err != nil {
		return fmt.Errorf("create results table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	insert := fmt.Sprintf("INSERT INTO results VALUES (%s)", strings.Join(marks, ", "))
	stmt, err := tx.Prepare(insert)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, row := range d.rows {
		args := make([]interface{}, len(row))
		for i, v := range row {
			args[i] = v
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// UniqueDestination inserts a timestamp before the extension so repeated
// sessions never clobber an earlier result file.
func UniqueDestination(path string) string {
	return uniqueDestination(path, time.Now())
}

func uniqueDestination(path string, now time.Time) string {
	stamp := now.Format("20060102-150405")
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + stamp + ext
}
