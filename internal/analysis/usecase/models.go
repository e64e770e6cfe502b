package usecase

import (
	"io"

	"github.com/shandysiswandi/csvinsight/internal/analysis/dataset"
	"github.com/shandysiswandi/csvinsight/internal/analysis/entity"
)

type UploadInput struct {
	FileName string
	// Size is the byte count announced by the client, zero when unknown.
	Size int64
	Body io.Reader
}

type UploadResult struct {
	ID      int64
	FileRef string
}

// Tables are the display tables of one analysis.
type Tables struct {
	Head    dataset.Table
	Summary dataset.Table
	Missing dataset.Table
	Mean    dataset.Table
	Median  dataset.Table
	StdDev  dataset.Table
}

type Histogram struct {
	Column string
	URL    string
}

type AnalyzeResult struct {
	Upload     entity.UploadedFile
	Tables     Tables
	Histograms []Histogram
}

type ReportResult struct {
	FileName    string
	ContentType string
	Body        []byte
}

type SweepResult struct {
	Expired int
	Handled int
}
