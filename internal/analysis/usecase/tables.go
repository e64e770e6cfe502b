package usecase

import "github.com/shandysiswandi/csvinsight/internal/analysis/dataset"

// BuildTables computes every table of the analysis page from a parsed frame.
// Mean, median and standard deviation come from the numeric-coerced view.
func BuildTables(f *dataset.Frame) Tables {
	coerced := f.CoerceNumeric()

	return Tables{
		Head:    f.Head(HeadRows),
		Summary: f.Describe().Table(),
		Missing: f.MissingCounts().Table(),
		Mean:    coerced.Mean().Table(),
		Median:  coerced.Median().Table(),
		StdDev:  coerced.StdDev().Table(),
	}
}
