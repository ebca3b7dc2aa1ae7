package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MisterMushn/bilanzieren/internal/tabular"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestXLSX(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Date", "Amount", "Description"},
		{"2024-01-01", -12.5, "REWE Markt"},
		{"2024-01-02", 100.0, "Salary"},
	})

	tbl, err := XLSX(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "Amount", "Description", "Category", "Subcategory"}, tbl.Columns())
	assert.Equal(t, []tabular.Value{-12.5, 100.0}, column(t, tbl, "Amount"))
	assert.Equal(t, []tabular.Value{"REWE Markt", "Salary"}, column(t, tbl, "Description"))
}

func TestXLSXPadsShortRows(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"A", "B"},
		{"x"},
	})

	tbl, err := XLSX(data)
	require.NoError(t, err)

	assert.Equal(t, []tabular.Value{"x"}, column(t, tbl, "A"))
	assert.Equal(t, []tabular.Value{nil}, column(t, tbl, "B"))
}

func TestXLSXRejectsGarbage(t *testing.T) {
	_, err := XLSX([]byte("not a zip archive"))
	require.Error(t, err)
}
