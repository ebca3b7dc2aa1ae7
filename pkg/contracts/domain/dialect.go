package domain

// Dialect identifies the CSV formatting convention of an uploaded file.
type Dialect string

const (
	// DialectGerman is `;`-separated fields with `,` as the decimal mark.
	DialectGerman Dialect = "german"
	// DialectDefault is `,`-separated fields with `.` as the decimal mark.
	DialectDefault Dialect = "default"
)

// Separator returns the field separator rune for the dialect.
func (d Dialect) Separator() rune {
	if d == DialectGerman {
		return ';'
	}
	return ','
}

// DecimalMark returns the decimal mark rune for the dialect.
func (d Dialect) DecimalMark() rune {
	if d == DialectGerman {
		return ','
	}
	return '.'
}

// Valid reports whether d is a known dialect.
func (d Dialect) Valid() bool {
	return d == DialectGerman || d == DialectDefault
}
