package tabular

// Mask is a boolean row selector parallel to a table's rows.
type Mask []bool

// Any reports whether at least one row is selected.
func (m Mask) Any() bool {
	for _, on := range m {
		if on {
			return true
		}
	}
	return false
}

// Count returns the number of selected rows.
func (m Mask) Count() int {
	n := 0
	for _, on := range m {
		if on {
			n++
		}
	}
	return n
}

// And returns the element-wise conjunction of two masks of equal length.
func (m Mask) And(other Mask) Mask {
	out := make(Mask, len(m))
	for i := range m {
		out[i] = m[i] && other[i]
	}
	return out
}

// Indices returns the positions of selected rows in ascending order.
func (m Mask) Indices() []int {
	out := make([]int, 0, m.Count())
	for i, on := range m {
		if on {
			out = append(out, i)
		}
	}
	return out
}
