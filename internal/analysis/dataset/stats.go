package dataset

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Series is one number per label, in column order.
type Series struct {
	Name    string
	Labels  []string
	Values  []float64
	Integer bool // render values without a fractional part
}

// Get returns the value for label.
func (s Series) Get(label string) (float64, bool) {
	for i, l := range s.Labels {
		if l == label {
			return s.Values[i], true
		}
	}
	return 0, false
}

// Table lays the series out as a single-column display table.
func (s Series) Table() Table {
	t := Table{
		Columns: []string{s.Name},
		Index:   slices.Clone(s.Labels),
		Rows:    make([][]string, len(s.Values)),
	}
	for i, v := range s.Values {
		if s.Integer {
			t.Rows[i] = []string{formatInt(v)}
		} else {
			t.Rows[i] = []string{formatFloat(v)}
		}
	}
	return t
}

// MissingCounts counts missing cells per column.
func (f *Frame) MissingCounts() Series {
	s := Series{Name: "Missing Values", Integer: true}
	for _, c := range f.columns {
		s.Labels = append(s.Labels, c.Name)
		s.Values = append(s.Values, float64(c.MissingCount()))
	}
	return s
}

// Mean is the arithmetic mean of each numeric column.
func (f *Frame) Mean() Series {
	return f.reduce("Mean", Mean)
}

// Median is the middle value of each numeric column.
func (f *Frame) Median() Series {
	return f.reduce("Median", Median)
}

// StdDev is the sample standard deviation of each numeric column.
func (f *Frame) StdDev() Series {
	return f.reduce("Standard Deviation", StdDev)
}

func (f *Frame) reduce(name string, fn func([]float64) float64) Series {
	s := Series{Name: name}
	for _, c := range f.columns {
		if c.Kind != KindNumeric {
			continue
		}
		s.Labels = append(s.Labels, c.Name)
		s.Values = append(s.Values, fn(c.Numbers()))
	}
	return s
}

// Mean returns NaN for an empty sample.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// Median returns NaN for an empty sample.
func Median(xs []float64) float64 {
	return Quantile(xs, 0.5)
}

// StdDev uses one delta degree of freedom and needs at least two values.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.StdDev(xs, nil)
}

// Quantile interpolates linearly between the two closest ranks of the sorted
// sample. xs is not modified.
func Quantile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}

	sorted := slices.Clone(xs)
	slices.Sort(sorted)

	return quantileSorted(sorted, p)
}

func quantileSorted(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	a, b := sorted[int(lo)], sorted[int(hi)]
	t := h - lo
	switch {
	case t == 0 || a == b:
		return a
	case t >= 0.5:
		// interpolate from the upper end so an infinite lower neighbour
		// does not turn the result into NaN
		return b - (b-a)*(1-t)
	default:
		return a + (b-a)*t
	}
}

// ColumnSummary is one column of the describe table. Numeric fields are set
// for numeric summaries and Unique/Top/Freq for text summaries.
type ColumnSummary struct {
	Name  string
	Count int

	Mean, Std, Min, Q1, Median, Q3, Max float64

	Unique int
	Top    string
	Freq   int
}

// Summary is the describe table.
type Summary struct {
	Numeric bool
	Columns []ColumnSummary
}

// Describe summarises numeric columns with count, mean, std, min, quartiles
// and max. Columns with no values at all count as numeric here. When the
// frame has no such column the text columns are summarised with count,
// unique, top and freq instead. A frame without rows summarises every column
// as text.
func (f *Frame) Describe() Summary {
	if f.rows == 0 && len(f.columns) > 0 {
		out := Summary{Columns: make([]ColumnSummary, 0, len(f.columns))}
		for _, c := range f.columns {
			out.Columns = append(out.Columns, describeText(c))
		}
		return out
	}

	var numeric, text []Column
	for _, c := range f.columns {
		if c.Kind == KindText {
			text = append(text, c)
		} else {
			numeric = append(numeric, c)
		}
	}

	if len(numeric) > 0 || len(text) == 0 {
		out := Summary{Numeric: true, Columns: make([]ColumnSummary, 0, len(numeric))}
		for _, c := range numeric {
			out.Columns = append(out.Columns, describeNumeric(c))
		}
		return out
	}

	out := Summary{Columns: make([]ColumnSummary, 0, len(text))}
	for _, c := range text {
		out.Columns = append(out.Columns, describeText(c))
	}
	return out
}

func describeNumeric(c Column) ColumnSummary {
	xs := c.Numbers()
	s := ColumnSummary{
		Name:   c.Name,
		Count:  len(xs),
		Mean:   Mean(xs),
		Std:    StdDev(xs),
		Min:    math.NaN(),
		Q1:     math.NaN(),
		Median: math.NaN(),
		Q3:     math.NaN(),
		Max:    math.NaN(),
	}
	if len(xs) == 0 {
		return s
	}

	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	s.Min = floats.Min(sorted)
	s.Max = floats.Max(sorted)
	s.Q1 = quantileSorted(sorted, 0.25)
	s.Median = quantileSorted(sorted, 0.5)
	s.Q3 = quantileSorted(sorted, 0.75)

	return s
}

func describeText(c Column) ColumnSummary {
	s := ColumnSummary{Name: c.Name}
	counts := make(map[string]int)
	var order []string

	for _, v := range c.Values {
		if v.IsMissing() {
			continue
		}
		s.Count++
		if counts[v.Text] == 0 {
			order = append(order, v.Text)
		}
		counts[v.Text]++
	}

	s.Unique = len(order)
	for _, text := range order {
		if counts[text] > s.Freq {
			s.Top, s.Freq = text, counts[text]
		}
	}

	return s
}

// Table lays the summary out with statistics as rows and columns as columns.
func (s Summary) Table() Table {
	t := Table{Columns: make([]string, len(s.Columns))}
	for i, c := range s.Columns {
		t.Columns[i] = c.Name
	}

	row := func(label string, cell func(ColumnSummary) string) {
		cells := make([]string, len(s.Columns))
		for i, c := range s.Columns {
			cells[i] = cell(c)
		}
		t.Index = append(t.Index, label)
		t.Rows = append(t.Rows, cells)
	}

	if !s.Numeric {
		row("count", func(c ColumnSummary) string { return formatInt(float64(c.Count)) })
		row("unique", func(c ColumnSummary) string { return formatInt(float64(c.Unique)) })
		row("top", func(c ColumnSummary) string {
			if c.Count == 0 {
				return "NaN"
			}
			return c.Top
		})
		row("freq", func(c ColumnSummary) string {
			if c.Count == 0 {
				return "NaN"
			}
			return formatInt(float64(c.Freq))
		})
		return t
	}

	row("count", func(c ColumnSummary) string { return formatFloat(float64(c.Count)) })
	row("mean", func(c ColumnSummary) string { return formatFloat(c.Mean) })
	row("std", func(c ColumnSummary) string { return formatFloat(c.Std) })
	row("min", func(c ColumnSummary) string { return formatFloat(c.Min) })
	row("25%", func(c ColumnSummary) string { return formatFloat(c.Q1) })
	row("50%", func(c ColumnSummary) string { return formatFloat(c.Median) })
	row("75%", func(c ColumnSummary) string { return formatFloat(c.Q3) })
	row("max", func(c ColumnSummary) string { return formatFloat(c.Max) })

	return t
}
