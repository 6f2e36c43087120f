package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"wastelookup/internal/collection"
)

// ScenarioHeader is the default three-column header.
var ScenarioHeader = []string{
	collection.DefaultIdentifierColumn,
	collection.DefaultDateColumn,
	collection.DefaultMassColumn,
}

// ScenarioRows is a small dataset: chip 000111222 has two pickups
// (2024-01-05 3.5 kg, 2024-02-10 2.0 kg) written in different formats,
// and chip 999888777 has one.
var ScenarioRows = [][]string{
	{"000-111 222", "2024-01-05", "3,5"},
	{"999888777", "2024-01-20", "10"},
	{"000111222", "10.02.2024", "2,0 kg"},
}

// ScenarioChip is the chip with two pickups in ScenarioRows.
const ScenarioChip = "000111222"

// ScenarioSource returns ScenarioRows as an in-memory source.
func ScenarioSource() *collection.MemorySource {
	return collection.NewMemorySource(ScenarioHeader, ScenarioRows...)
}

// WriteCSV writes ScenarioHeader plus rows as a semicolon separated file
// and returns its path.
func WriteCSV(t *testing.T, dir, name string, rows [][]string) string {
	t.Helper()
	content := joinRow(ScenarioHeader)
	for _, row := range rows {
		content += joinRow(row)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func joinRow(row []string) string {
	return strings.Join(row, ";") + "\n"
}

// WriteWorkbook writes header and rows to sheet of a new workbook at path.
func WriteWorkbook(t *testing.T, path, sheet string, header []string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	for c, name := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			t.Fatalf("set header: %v", err)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell %s: %v", cell, err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}
