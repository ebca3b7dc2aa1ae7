package ingest

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/MisterMushn/bilanzieren/internal/tabular"
	"github.com/MisterMushn/bilanzieren/pkg/contracts/domain"
)

// XLSX parses the first sheet of a workbook into a table. The first
// row is the header; short rows are padded with nulls since excelize
// drops trailing empty cells. Cell values follow the same conversion
// tolerance as CSV ingestion, with the default `.` decimal mark —
// spreadsheet cells already carry canonical number formatting.
func XLSX(data []byte) (*tabular.Table, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	records, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	header := records[0]
	rows := records[1:]
	table := tabular.New()
	for col, name := range header {
		values := make([]tabular.Value, len(rows))
		for i, record := range rows {
			if col >= len(record) {
				values[i] = nil
				continue
			}
			values[i] = parseCell(record[col], domain.DialectDefault)
		}
		if err := table.AddColumn(name, values); err != nil {
			return nil, fmt.Errorf("bad header: %w", err)
		}
	}

	tabular.EnsureTagColumns(table)
	return table, nil
}
