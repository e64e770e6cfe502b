// Package render turns analysis results into the HTML pages and the XLSX
// report served by the analysis module.
package render

import (
	"html/template"
	"strings"

	"github.com/shandysiswandi/csvinsight/internal/analysis/dataset"
)

const tableStyle = `<style>
    .styled-table {
        border-collapse: collapse;
        margin: 25px 0;
        font-size: 0.9em;
        font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
        min-width: 300px;
        box-shadow: 0 0 20px rgba(0, 0, 0, 0.15);
    }
    .styled-table thead tr {
        background-color: #49a120;
        color: #ffffff;
        text-align: left;
    }
    .styled-table th,
    .styled-table td {
        padding: 12px 15px;
    }
    .styled-table tbody tr {
        border-bottom: 1px solid #dddddd;
    }
    .styled-table tbody tr:nth-of-type(even) {
        background-color: #f3f3f3;
    }
    .styled-table tbody tr:last-of-type {
        border-bottom: 2px solid #49a120;
    }
</style>
`

// StyledTable renders t as a dataframe-style table preceded by its style
// block. Every header and cell is escaped.
func StyledTable(t dataset.Table) template.HTML {
	var b strings.Builder
	b.WriteString(tableStyle)
	b.WriteString(`<table border="1" class="dataframe styled-table">` + "\n")

	b.WriteString("  <thead>\n    <tr style=\"text-align: right;\">\n      <th></th>\n")
	for _, c := range t.Columns {
		b.WriteString("      <th>" + template.HTMLEscapeString(c) + "</th>\n")
	}
	b.WriteString("    </tr>\n  </thead>\n  <tbody>\n")

	for i, row := range t.Rows {
		b.WriteString("    <tr>\n")
		label := ""
		if i < len(t.Index) {
			label = t.Index[i]
		}
		b.WriteString("      <th>" + template.HTMLEscapeString(label) + "</th>\n")
		for _, cell := range row {
			b.WriteString("      <td>" + template.HTMLEscapeString(cell) + "</td>\n")
		}
		b.WriteString("    </tr>\n")
	}
	b.WriteString("  </tbody>\n</table>")

	//nolint:gosec // content escaped above
	return template.HTML(b.String())
}
