package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var (
	// ErrEmpty is returned for input without a header row.
	ErrEmpty = errors.New("dataset: no columns to parse from file")
	// ErrMalformed wraps every structural parse failure.
	ErrMalformed = errors.New("dataset: malformed csv")
)

//nolint:gochecknoglobals // constant byte sequence
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Column is a named, typed column of a Frame.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// Numbers returns the numeric cells of the column in row order; missing and
// text cells are skipped.
func (c Column) Numbers() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if v.Kind == KindNumeric {
			out = append(out, v.Num)
		}
	}
	return out
}

// MissingCount counts the missing cells of the column.
func (c Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

func inferKind(values []Value) Kind {
	kind := KindMissing
	for _, v := range values {
		switch v.Kind {
		case KindText:
			return KindText
		case KindNumeric:
			kind = KindNumeric
		case KindMissing:
		}
	}
	return kind
}

// Frame is a rectangular table of parsed cells.
type Frame struct {
	columns []Column
	rows    int
}

// NewFrame builds a Frame from a header and raw records. Short records are
// padded with missing cells; records longer than the header are rejected.
// Header names are made unique.
func NewFrame(header []string, records [][]string) (*Frame, error) {
	if len(header) == 0 {
		return nil, ErrEmpty
	}

	names := uniqueNames(header)
	columns := make([]Column, len(names))
	for i, name := range names {
		columns[i] = Column{Name: name, Values: make([]Value, 0, len(records))}
	}

	for r, record := range records {
		if len(record) > len(names) {
			return nil, fmt.Errorf("%w: expected %d fields in row %d, saw %d",
				ErrMalformed, len(names), r+1, len(record))
		}
		for i := range columns {
			cell := Missing
			if i < len(record) {
				cell = ParseValue(record[i])
			}
			columns[i].Values = append(columns[i].Values, cell)
		}
	}

	for i := range columns {
		columns[i].Kind = inferKind(columns[i].Values)
	}

	return &Frame{columns: columns, rows: len(records)}, nil
}

// ReadCSV parses comma separated input whose first row is the header.
func ReadCSV(r io.Reader) (*Frame, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	var records [][]string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		records = append(records, record)
	}

	return NewFrame(header, records)
}

// uniqueNames names blank headers "Unnamed: <position>" and suffixes repeated
// names with ".1", ".2" and so on.
func uniqueNames(header []string) []string {
	out := make([]string, len(header))
	taken := make(map[string]struct{}, len(header))
	next := make(map[string]int, len(header))

	for i, name := range header {
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}

		candidate := name
		if _, dup := taken[candidate]; dup {
			n := max(next[name], 1)
			for {
				candidate = name + "." + strconv.Itoa(n)
				if _, dup := taken[candidate]; !dup {
					break
				}
				n++
			}
			next[name] = n + 1
		}

		taken[candidate] = struct{}{}
		out[i] = candidate
	}

	return out
}

// Columns returns the columns in header order.
func (f *Frame) Columns() []Column {
	return f.columns
}

// Column looks a column up by name.
func (f *Frame) Column(name string) (Column, bool) {
	for _, c := range f.columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// NumRows is the number of data rows, header excluded.
func (f *Frame) NumRows() int {
	return f.rows
}

// NumericColumns returns the columns whose Kind is KindNumeric.
func (f *Frame) NumericColumns() []Column {
	var out []Column
	for _, c := range f.columns {
		if c.Kind == KindNumeric {
			out = append(out, c)
		}
	}
	return out
}

// CoerceNumeric converts every cell to a number, turning text into missing,
// then drops each row that holds at least one missing cell. Every column of
// the result is KindNumeric.
func (f *Frame) CoerceNumeric() *Frame {
	keep := make([]bool, f.rows)
	kept := 0
	for r := range f.rows {
		keep[r] = true
		for _, c := range f.columns {
			if c.Values[r].Kind != KindNumeric {
				keep[r] = false
				break
			}
		}
		if keep[r] {
			kept++
		}
	}

	columns := make([]Column, len(f.columns))
	for i, c := range f.columns {
		values := make([]Value, 0, kept)
		for r, v := range c.Values {
			if keep[r] {
				values = append(values, v)
			}
		}
		columns[i] = Column{Name: c.Name, Kind: KindNumeric, Values: values}
	}

	return &Frame{columns: columns, rows: kept}
}

// Head returns the first n rows as a display table.
func (f *Frame) Head(n int) Table {
	n = min(max(n, 0), f.rows)

	t := Table{
		Columns: make([]string, len(f.columns)),
		Index:   make([]string, n),
		Rows:    make([][]string, n),
	}
	for i, c := range f.columns {
		t.Columns[i] = c.Name
	}
	for r := range n {
		t.Index[r] = strconv.Itoa(r)
		row := make([]string, len(f.columns))
		for i, c := range f.columns {
			row[i] = c.Values[r].String()
		}
		t.Rows[r] = row
	}

	return t
}
