package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the inferred type of a cell or of a whole column.
type Kind int

const (
	// KindMissing is an empty cell or an NA marker. A column is KindMissing
	// when every one of its cells is.
	KindMissing Kind = iota
	// KindNumeric is a cell that parses as a decimal float. A column is
	// KindNumeric when every non-missing cell is.
	KindNumeric
	// KindText is any other cell. One text cell makes the column KindText.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNumeric:
		return "numeric"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// naTokens are the cell values read as missing, in addition to the empty cell.
//
//nolint:gochecknoglobals // lookup table
var naTokens = map[string]struct{}{
	"NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "<NA>": {}, "#N/A": {}, "#N/A N/A": {},
	"#NA": {}, "-1.#IND": {}, "-1.#QNAN": {}, "1.#IND": {}, "1.#QNAN": {},
}

// Value is one parsed cell.
type Value struct {
	Kind Kind
	Text string  // cell text as read, empty when missing
	Num  float64 // set when Kind is KindNumeric
}

// Missing is the missing cell.
//
//nolint:gochecknoglobals // zero value with a name
var Missing = Value{Kind: KindMissing}

// ParseValue classifies a raw cell.
func ParseValue(raw string) Value {
	if raw == "" {
		return Missing
	}
	if _, ok := naTokens[raw]; ok {
		return Missing
	}

	if num, ok := parseNumber(raw); ok {
		return Value{Kind: KindNumeric, Text: raw, Num: num}
	}

	return Value{Kind: KindText, Text: raw}
}

// parseNumber accepts decimal and scientific notation; hex, binary, octal
// and digit separators stay text.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.ContainsRune(s, '_') {
		return 0, false
	}

	unsigned := strings.TrimLeft(s, "+-")
	if len(unsigned) > 1 && unsigned[0] == '0' && (unsigned[1] == 'x' || unsigned[1] == 'X' || unsigned[1] == 'b' || unsigned[1] == 'B' || unsigned[1] == 'o' || unsigned[1] == 'O') {
		return 0, false
	}

	num, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(num) {
		return 0, false
	}

	return num, true
}

// IsMissing reports whether the cell holds no value.
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing
}

// Float returns the numeric value, or NaN for anything that is not a number.
// It is the per-cell form of numeric coercion.
func (v Value) Float() float64 {
	if v.Kind != KindNumeric {
		return math.NaN()
	}
	return v.Num
}

// String renders the cell for display; missing cells render as "NaN".
func (v Value) String() string {
	if v.Kind == KindMissing {
		return "NaN"
	}
	return v.Text
}
