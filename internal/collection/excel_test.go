package collection

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook saves rows to a new workbook, header first.
func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	if sheet != "" {
		require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))
	} else {
		sheet = f.GetSheetName(0)
	}

	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	path := filepath.Join(t.TempDir(), "zvozy.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestExcelSource_Load(t *testing.T) {
	path := writeWorkbook(t, "", [][]any{
		{"Číslo čipu ", " Dátum zvozu", "Počet kg odpadu"},
		{"000-111 222", time.Date(2024, 1, 5, 7, 30, 0, 0, time.UTC), 3.5},
		{"000111222", "10.02.2024", "2,0 kg"},
		{"000111222", "nikdy", 1},
		{123456, "2024-03-01", "n/a"},
	})

	ds, err := Load(context.Background(), &ExcelSource{Path: path}, DefaultColumns())
	require.NoError(t, err)

	require.Len(t, ds.Records, 3)
	assert.Equal(t, 1, ds.Dropped)
	assert.Equal(t, "zvozy.xlsx", ds.Source)

	assert.Equal(t, "000111222", ds.Records[0].ChipID)
	assert.Equal(t, Day(2024, time.January, 5), ds.Records[0].Date)
	require.NotNil(t, ds.Records[0].MassKg)
	assert.Equal(t, 3.5, *ds.Records[0].MassKg)

	assert.Equal(t, Day(2024, time.February, 10), ds.Records[1].Date)
	require.NotNil(t, ds.Records[1].MassKg)
	assert.Equal(t, 2.0, *ds.Records[1].MassKg)

	assert.Equal(t, "123456", ds.Records[2].ChipID)
	assert.Nil(t, ds.Records[2].MassKg)
	assert.Equal(t, 5, ds.Records[2].Row)
}

func TestExcelSource_NamedSheet(t *testing.T) {
	path := writeWorkbook(t, "Zvozy", [][]any{
		{"", "", ""},
		testHeaderCells(),
		{"555", "2024-05-05", 4},
	})

	src := &ExcelSource{Path: path, Sheet: "Zvozy"}
	assert.Equal(t, "zvozy.xlsx#Zvozy", src.Name())

	table, err := src.Read(context.Background())
	require.NoError(t, err)
	assert.True(t, table.SerialDates)
	assert.Equal(t, 2, table.HeaderRow)
	require.Len(t, table.Rows, 1)

	_, err = (&ExcelSource{Path: path, Sheet: "Missing"}).Read(context.Background())
	assert.Error(t, err)
}

func TestExcelSource_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), &ExcelSource{Path: filepath.Join(t.TempDir(), "none.xlsx")}, DefaultColumns())
	assert.Error(t, err)
}

func testHeaderCells() []any {
	cells := make([]any, len(testHeader))
	for i, h := range testHeader {
		cells[i] = h
	}
	return cells
}
