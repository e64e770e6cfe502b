package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/shandysiswandi/csvinsight/internal/analysis/dataset"
	"github.com/shandysiswandi/csvinsight/internal/analysis/usecase"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.csv>",
	Short: "Print the analysis tables of a local CSV file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		frame, err := dataset.ReadCSV(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		return printTables(cmd.OutOrStdout(), usecase.BuildTables(frame))
	},
}

var titleColor = color.New(color.FgCyan, color.Bold)

func printTables(w io.Writer, t usecase.Tables) error {
	sections := []struct {
		title string
		table dataset.Table
	}{
		{"First Rows", t.Head},
		{"Summary Statistics", t.Summary},
		{"Missing Values", t.Missing},
		{"Mean", t.Mean},
		{"Median", t.Median},
		{"Standard Deviation", t.StdDev},
	}

	for _, s := range sections {
		if _, err := titleColor.Fprintf(w, "\n%s\n", s.title); err != nil {
			return err
		}
		if err := printTable(w, s.table); err != nil {
			return err
		}
	}

	return nil
}

func printTable(w io.Writer, t dataset.Table) error {
	table := tablewriter.NewWriter(w)

	headers := append([]string{""}, t.Columns...)
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(t.Rows))
	for i, row := range t.Rows {
		label := ""
		if i < len(t.Index) {
			label = t.Index[i]
		}
		data = append(data, append([]string{label}, row...))
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
