package inbound

import (
	"context"

	"github.com/shandysiswandi/csvinsight/internal/analysis/usecase"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgrouter"
)

const DefaultMaxUploadBytes int64 = 32 << 20

type uc interface {
	Upload(ctx context.Context, in usecase.UploadInput) (usecase.UploadResult, error)
	Analyze(ctx context.Context, id int64) (usecase.AnalyzeResult, error)
	Report(ctx context.Context, id int64) (usecase.ReportResult, error)
}

// RegisterHTTPEndpoint mounts the upload form and the analysis pages.
// maxUploadBytes <= 0 means DefaultMaxUploadBytes.
func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc, maxUploadBytes int64) {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	end := &HTTPEndpoint{uc: uc, maxUploadBytes: maxUploadBytes}

	r.GET("/", end.Index)
	r.POST("/", end.Upload)

	r.GET("/analyze/:id", end.Analyze)
	r.GET("/analyze/:id/report.xlsx", end.Report)
}
