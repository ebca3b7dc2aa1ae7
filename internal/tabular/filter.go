package tabular

import (
	"strings"
)

// UntaggedMask selects the rows whose Category cell is missing, empty,
// or whitespace-only. A table without a Category column is entirely
// untagged.
func UntaggedMask(t *Table) Mask {
	mask := make(Mask, t.NumRows())
	categories, err := t.Column(CategoryColumn)
	if err != nil {
		for i := range mask {
			mask[i] = true
		}
		return mask
	}
	for i, v := range categories {
		mask[i] = strings.TrimSpace(ValueString(v)) == ""
	}
	return mask
}

// KeywordMask selects the rows whose cell in the named column contains
// keyword as a case-insensitive literal substring. Cells are compared
// through their string coercion, so missing values never match a
// non-empty keyword. Returns ErrColumnNotFound for unknown columns.
func KeywordMask(t *Table, column, keyword string) (Mask, error) {
	values, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(keyword)
	mask := make(Mask, len(values))
	for i, v := range values {
		mask[i] = strings.Contains(strings.ToLower(ValueString(v)), needle)
	}
	return mask, nil
}
