package usecase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/csvinsight/internal/analysis/chart"
	"github.com/shandysiswandi/csvinsight/internal/analysis/dataset"
	"github.com/shandysiswandi/csvinsight/internal/analysis/entity"
	"github.com/shandysiswandi/csvinsight/internal/analysis/render"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgerror"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgmedia"
)

// Analyze parses the stored file of a record, computes its tables, renders a
// histogram per numeric column and schedules the record for deletion the
// first time it is analysed.
func (u *Usecase) Analyze(ctx context.Context, id int64) (AnalyzeResult, error) {
	up, frame, err := u.load(ctx, id)
	if err != nil {
		return AnalyzeResult{}, err
	}

	result := AnalyzeResult{
		Upload:     up,
		Tables:     BuildTables(frame),
		Histograms: u.renderHistograms(ctx, id, frame),
	}

	if up.DeleteAt == nil {
		due := u.clock.Now().Add(u.retention).UTC()
		var scheduled *time.Time
		err := u.store.UpdateUpload(ctx, id, func(rec *entity.UploadedFile) {
			if rec.DeleteAt == nil {
				rec.DeleteAt = &due
			}
			at := *rec.DeleteAt
			scheduled = &at
		})
		if err != nil {
			return AnalyzeResult{}, mapStoreErr(err)
		}
		result.Upload.DeleteAt = scheduled
		slog.InfoContext(ctx, "upload scheduled for deletion", "upload_id", id, "delete_at", *scheduled)
	}

	return result, nil
}

// Report builds the XLSX export of a record. It neither renders histograms
// nor schedules deletion.
func (u *Usecase) Report(ctx context.Context, id int64) (ReportResult, error) {
	up, frame, err := u.load(ctx, id)
	if err != nil {
		return ReportResult{}, err
	}

	t := BuildTables(frame)
	body, err := render.Workbook([]render.Sheet{
		{Name: "Head", Table: t.Head},
		{Name: "Summary", Table: t.Summary},
		{Name: "Missing", Table: t.Missing},
		{Name: "Mean", Table: t.Mean},
		{Name: "Median", Table: t.Median},
		{Name: "StdDev", Table: t.StdDev},
	})
	if err != nil {
		return ReportResult{}, pkgerror.NewServer(err)
	}

	return ReportResult{
		FileName:    reportName(up.FileName),
		ContentType: render.WorkbookContentType,
		Body:        body,
	}, nil
}

func reportName(fileName string) string {
	return strings.TrimSuffix(pkgmedia.SafeName(baseName(fileName)), csvSuffix) + "_report.xlsx"
}

func (u *Usecase) load(ctx context.Context, id int64) (entity.UploadedFile, *dataset.Frame, error) {
	if u.store == nil || u.media == nil {
		return entity.UploadedFile{}, nil, pkgerror.NewServer(errors.New("missing dependency"))
	}

	up, err := u.store.GetUpload(ctx, id)
	if err != nil {
		return entity.UploadedFile{}, nil, mapStoreErr(err)
	}

	rc, err := u.media.Open(ctx, up.FileRef)
	if pkgmedia.IsNotExist(err) {
		slog.WarnContext(ctx, "uploaded file is missing", "upload_id", id, "file_ref", up.FileRef)
		return entity.UploadedFile{}, nil, ErrFileMissing
	}
	if err != nil {
		return entity.UploadedFile{}, nil, normalizeErr(err)
	}
	defer rc.Close()

	frame, err := dataset.ReadCSV(rc)
	if err != nil {
		slog.WarnContext(ctx, "uploaded file is not readable as csv", "upload_id", id, "file_ref", up.FileRef, "error", err)
		return entity.UploadedFile{}, nil, ErrFileUnreadable
	}

	return up, frame, nil
}

// renderHistograms stores one image per numeric column and returns their
// URLs in column order. A column that fails is logged and left out.
func (u *Usecase) renderHistograms(ctx context.Context, id int64, frame *dataset.Frame) []Histogram {
	columns := frame.NumericColumns()
	out := make([]Histogram, 0, len(columns))
	used := make(map[string]struct{}, len(columns))

	for i, col := range columns {
		key := histogramKey(id, col.Name)
		for n := i; ; n++ {
			if _, dup := used[key]; !dup {
				break
			}
			key = histogramKey(id, col.Name+"_"+strconv.Itoa(n))
		}
		used[key] = struct{}{}

		img, err := chart.HistogramPNG(col.Name, col.Numbers())
		if err != nil {
			slog.ErrorContext(ctx, "failed to render histogram", "upload_id", id, "column", col.Name, "error", err)
			continue
		}

		if err := u.media.Save(ctx, key, bytes.NewReader(img), int64(len(img)), chart.ContentType); err != nil {
			slog.ErrorContext(ctx, "failed to store histogram", "upload_id", id, "column", col.Name, "error", err)
			continue
		}

		out = append(out, Histogram{Column: col.Name, URL: u.media.URL(key)})
	}

	return out
}

func histogramKey(id int64, column string) string {
	return entity.HistogramPrefix(id) + "/histogram_" + pkgmedia.SafeName(column) + ".png"
}
