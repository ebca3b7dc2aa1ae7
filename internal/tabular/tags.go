package tabular

import (
	"errors"
	"strings"
)

// Tag column names guaranteed present on every ingested table.
const (
	CategoryColumn    = "Category"
	SubcategoryColumn = "Subcategory"
)

// ErrNothingToTag signals that a tag request had no effect: the labels
// were blank, the mask selected no rows, or the mask did not fit the
// table. It is a soft decline; the table is left untouched.
var ErrNothingToTag = errors.New("nothing to tag")

// EnsureTagColumns adds missing Category/Subcategory columns filled
// with empty strings. Existing columns, including any nulls inside
// them, are left untouched. Idempotent.
func EnsureTagColumns(t *Table) {
	for _, name := range []string{CategoryColumn, SubcategoryColumn} {
		if t.HasColumn(name) {
			continue
		}
		values := make([]Value, t.NumRows())
		for i := range values {
			values[i] = ""
		}
		t.names = append(t.names, name)
		t.columns[name] = values
	}
}

// ApplyTag assigns the trimmed category/subcategory pair to every row
// selected by mask, overwriting prior labels, and returns the number of
// rows written. All preconditions are checked before any mutation:
// both labels must be non-blank, and the mask must fit the table and
// select at least one row. Otherwise it returns (0, ErrNothingToTag).
func ApplyTag(t *Table, mask Mask, category, subcategory string) (int, error) {
	category = strings.TrimSpace(category)
	subcategory = strings.TrimSpace(subcategory)
	if category == "" || subcategory == "" {
		return 0, ErrNothingToTag
	}
	if len(mask) != t.NumRows() || !mask.Any() {
		return 0, ErrNothingToTag
	}

	EnsureTagColumns(t)
	categories := t.columns[CategoryColumn]
	subcategories := t.columns[SubcategoryColumn]

	tagged := 0
	for i, on := range mask {
		if !on {
			continue
		}
		categories[i] = category
		subcategories[i] = subcategory
		tagged++
	}
	return tagged, nil
}
