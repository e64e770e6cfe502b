package render

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/shandysiswandi/csvinsight/internal/analysis/dataset"
)

// WorkbookContentType is the media type of Workbook output.
const WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet is one worksheet of a workbook.
type Sheet struct {
	Name  string
	Table dataset.Table
}

// Workbook writes each sheet with the index in column A and a bold header
// row. Cells that read as numbers are stored as numbers.
func Workbook(sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, errors.New("render: workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("render: header style: %w", err)
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return nil, fmt.Errorf("render: rename sheet %q: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, fmt.Errorf("render: add sheet %q: %w", sheet.Name, err)
		}

		if err := writeSheet(f, sheet, bold); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render: encode workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet Sheet, headerStyle int) error {
	header := make([]any, 0, len(sheet.Table.Columns)+1)
	header = append(header, "")
	for _, c := range sheet.Table.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return fmt.Errorf("render: sheet %q header: %w", sheet.Name, err)
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("render: sheet %q header: %w", sheet.Name, err)
	}
	if err := f.SetCellStyle(sheet.Name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("render: sheet %q header: %w", sheet.Name, err)
	}

	for r, row := range sheet.Table.Rows {
		values := make([]any, 0, len(row)+1)
		label := ""
		if r < len(sheet.Table.Index) {
			label = sheet.Table.Index[r]
		}
		values = append(values, label)
		for _, cell := range row {
			values = append(values, cellValue(cell))
		}

		start, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("render: sheet %q row %d: %w", sheet.Name, r, err)
		}
		if err := f.SetSheetRow(sheet.Name, start, &values); err != nil {
			return fmt.Errorf("render: sheet %q row %d: %w", sheet.Name, r, err)
		}
	}

	return nil
}

// cellValue keeps NaN, infinities and non-numeric text as strings.
func cellValue(cell string) any {
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return cell
	}
	return v
}
