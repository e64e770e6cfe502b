package dataset

import (
	"math"
	"strconv"
)

// Table is a display grid: a header row, an index column and string cells.
// Rows[i] has one cell per entry of Columns.
type Table struct {
	Columns []string
	Index   []string
	Rows    [][]string
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.Abs(v) >= 1e16:
		return strconv.FormatFloat(v, 'e', 6, 64)
	default:
		return strconv.FormatFloat(v, 'f', 6, 64)
	}
}

func formatInt(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return formatFloat(v)
	}
	return strconv.FormatInt(int64(v), 10)
}
