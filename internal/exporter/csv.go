// Package exporter serializes a tagged table back into downloadable
// bytes, the inverse of ingestion. Exports always use the default
// dialect (`,` fields, `.` decimals) with standard CSV quoting so any
// spreadsheet tool can open the result.
package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/MisterMushn/bilanzieren/internal/tabular"
)

// Options configures CSV serialization.
type Options struct {
	// BOM prepends a UTF-8 byte order mark so Excel detects the
	// encoding. Off by default; round-tripping through the ingestor
	// works either way.
	BOM bool
}

// Write streams the table to w as CSV: header row first, then every
// row in column order. Null cells become empty fields, numeric cells
// use the shortest round-trippable decimal notation.
func Write(w io.Writer, t *tabular.Table, opts Options) error {
	if opts.BOM {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	columns := t.Columns()
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(columns))
	for i := 0; i < t.NumRows(); i++ {
		for j, v := range t.Row(i) {
			record[j] = tabular.ValueString(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// CSV returns the table serialized as CSV bytes without a BOM.
func CSV(t *tabular.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, t, Options{}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
