package collection

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Table is a raw tabular source: one header row and untyped cells.
// Rows may be ragged; missing trailing cells read as nil.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
	// HeaderRow is the 1-based source row holding the header.
	HeaderRow int
	// SerialDates is set by sources whose numeric cells may be Excel
	// serial dates.
	SerialDates bool
	Date1904    bool
}

// Cell returns the value at row, col or nil when out of range.
func (t *Table) Cell(row, col int) any {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return nil
	}
	return t.Rows[row][col]
}

// Source produces a Table. Read is expected to be slow; callers cache the
// Dataset built from it rather than the Table.
type Source interface {
	Read(ctx context.Context) (*Table, error)
	Name() string
}

// MemorySource serves a prepared table.
type MemorySource struct {
	Label string
	Table Table
}

// Read returns a copy of the table header with the shared rows.
func (m *MemorySource) Read(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t := m.Table
	t.Header = append([]string(nil), m.Table.Header...)
	if t.Name == "" {
		t.Name = m.Name()
	}
	return &t, nil
}

// Name identifies the source in logs.
func (m *MemorySource) Name() string {
	if m.Label == "" {
		return "memory"
	}
	return m.Label
}

// NewMemorySource builds a source from string rows.
func NewMemorySource(header []string, rows ...[]string) *MemorySource {
	cells := make([][]any, len(rows))
	for i, row := range rows {
		cells[i] = make([]any, len(row))
		for j, v := range row {
			cells[i][j] = v
		}
	}
	return &MemorySource{Table: Table{Header: header, Rows: cells, HeaderRow: 1}}
}

// OpenSource picks a Source for path by file extension. sheet applies to
// workbooks only; empty selects the first sheet with data.
func OpenSource(path, sheet string) (Source, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return &ExcelSource{Path: path, Sheet: sheet}, nil
	case ".csv", ".txt", ".tsv":
		return &CSVSource{Path: path}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, ext)
	}
}

// Supported reports whether OpenSource has a reader for path.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm", ".csv", ".txt", ".tsv":
		return true
	}
	return false
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func toCells(row []string) []any {
	cells := make([]any, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}
