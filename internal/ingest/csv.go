package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/MisterMushn/bilanzieren/internal/tabular"
	"github.com/MisterMushn/bilanzieren/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSV sniffs the dialect of raw CSV bytes and parses them into a table.
// The header row is mandatory and fixes column names and order. Empty
// fields become nulls; fields that parse as numbers (with the dialect's
// decimal mark) become float64 cells; everything else stays a string.
// Shape mismatches and undetectable delimiters fail the whole ingestion
// without producing a partial table. The returned table always carries
// the Category/Subcategory tag columns.
func CSV(data []byte) (*tabular.Table, error) {
	dialect, err := SniffDialect(data)
	if err != nil {
		return nil, err
	}
	return CSVWithDialect(data, dialect)
}

// CSVWithDialect parses raw CSV bytes using an explicit dialect,
// bypassing the sniffer. Exports of this tool are always the default
// dialect, so round-trip callers use this directly.
func CSVWithDialect(data []byte, dialect domain.Dialect) (*tabular.Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = dialect.Separator()
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed csv: %w", err)
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
			values[i] = parseCell(record[col], dialect)
		}
		if err := table.AddColumn(name, values); err != nil {
			return nil, fmt.Errorf("bad header: %w", err)
		}
	}

	tabular.EnsureTagColumns(table)
	return table, nil
}

// parseCell applies the cell-level conversion tolerance: an empty field
// is a null, a field that survives numeric conversion (after swapping
// the dialect's decimal mark for `.`) is a float64, and anything else
// keeps its original string form. NaN spellings count as missing.
func parseCell(field string, dialect domain.Dialect) tabular.Value {
	if field == "" {
		return nil
	}
	candidate := strings.TrimSpace(field)
	if dialect.DecimalMark() == ',' {
		candidate = strings.ReplaceAll(candidate, ",", ".")
	}
	f, err := strconv.ParseFloat(candidate, 64)
	if err != nil {
		return field
	}
	if math.IsNaN(f) {
		return nil
	}
	return f
}
