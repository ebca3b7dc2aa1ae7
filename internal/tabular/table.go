// Package tabular implements the in-memory table that backs a tagging
// workspace: ordered named columns of nullable cells, boolean row masks,
// and the tag-assignment primitives that operate on them.
package tabular

import (
	"errors"
	"fmt"
	"strconv"
)

// Value is a single table cell. It is one of three things: nil for a
// missing value, a string, or a float64. Declared as an alias so column
// slices interoperate with []interface{} payloads on the wire.
type Value = any

// ErrColumnNotFound is returned when a named column does not exist.
var ErrColumnNotFound = errors.New("column not found")

// Table is an ordered collection of equally long named columns. Column
// order is the insertion order and is preserved through serialization.
// A Table is not safe for concurrent use; callers serialize access.
type Table struct {
	names   []string
	columns map[string][]Value
}

// New creates an empty table.
func New() *Table {
	return &Table{
		columns: make(map[string][]Value),
	}
}

// AddColumn appends a named column. The first column fixes the row
// count; later columns must match it. Duplicate names are rejected.
func (t *Table) AddColumn(name string, values []Value) error {
	if _, exists := t.columns[name]; exists {
		return fmt.Errorf("duplicate column %q", name)
	}
	if len(t.names) > 0 && len(values) != t.NumRows() {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), t.NumRows())
	}
	t.names = append(t.names, name)
	t.columns[name] = values
	return nil
}

// Column returns the backing slice of the named column. Mutations
// through the returned slice mutate the table.
func (t *Table) Column(name string) ([]Value, error) {
	values, ok := t.columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return values, nil
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// TextColumns returns the names of columns that hold at least one
// string cell, in column order. The tag columns qualify whenever they
// exist since they default to empty strings.
func (t *Table) TextColumns() []string {
	var out []string
	for _, name := range t.names {
		for _, v := range t.columns[name] {
			if _, ok := v.(string); ok {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	if len(t.names) == 0 {
		return 0
	}
	return len(t.columns[t.names[0]])
}

// NumColumns returns the column count.
func (t *Table) NumColumns() int {
	return len(t.names)
}

// Row returns a copy of row i across all columns, in column order.
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.names))
	for j, name := range t.names {
		out[j] = t.columns[name][i]
	}
	return out
}

// ValueString coerces a cell to its canonical string form: nil becomes
// the empty string, floats use the shortest round-trippable decimal
// notation, strings pass through unchanged.
func ValueString(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
