package collection

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// ExcelSource reads a workbook with excelize. Cells are read raw, so date
// cells arrive as serial numbers and are decoded by the loader.
type ExcelSource struct {
	Path  string
	Sheet string
}

// Name identifies the source in logs.
func (s *ExcelSource) Name() string {
	if s.Sheet == "" {
		return filepath.Base(s.Path)
	}
	return filepath.Base(s.Path) + "#" + s.Sheet
}

// Read opens the workbook and returns the rows of the selected sheet.
func (s *ExcelSource) Read(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, rows, err := s.selectSheet(f)
	if err != nil {
		return nil, err
	}

	// The header is the first row holding any text.
	headerIdx := -1
	for i, row := range rows {
		if !isBlankRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheet, ErrEmptySource)
	}

	table := &Table{
		Name:        s.Name(),
		Header:      rows[headerIdx],
		HeaderRow:   headerIdx + 1,
		SerialDates: true,
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		table.Date1904 = *props.Date1904
	}

	table.Rows = make([][]any, 0, len(rows)-headerIdx-1)
	for _, row := range rows[headerIdx+1:] {
		table.Rows = append(table.Rows, toCells(row))
	}
	return table, nil
}

func (s *ExcelSource) selectSheet(f *excelize.File) (string, [][]string, error) {
	opts := excelize.Options{RawCellValue: true}

	if s.Sheet != "" {
		rows, err := f.GetRows(s.Sheet, opts)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read sheet %q: %w", s.Sheet, err)
		}
		return s.Sheet, rows, nil
	}

	// Without a configured sheet, use the first one that has rows.
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, opts)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		if len(rows) > 0 {
			return name, rows, nil
		}
	}
	return "", nil, ErrEmptySource
}
