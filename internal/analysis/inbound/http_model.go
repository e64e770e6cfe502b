package inbound

import (
	"net/http"

	"github.com/shandysiswandi/csvinsight/internal/analysis/render"
	"github.com/shandysiswandi/csvinsight/internal/analysis/usecase"
)

const flashCookieName = "csvinsight_flash"

// Flash notice codes carried by the cookie.
const (
	noticeGone       = "gone"
	noticeMissing    = "missing"
	noticeUnreadable = "unreadable"
)

//nolint:gochecknoglobals // lookup table
var noticeMessages = map[string]string{
	noticeGone:       "That analysis is no longer available. Please upload the file again.",
	noticeMissing:    "The uploaded file could not be found. Please upload it again.",
	noticeUnreadable: "The uploaded file could not be read as CSV.",
}

func flashCookie(notice string) *http.Cookie {
	return &http.Cookie{
		Name:     flashCookieName,
		Value:    notice,
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// uploadView is the upload page plus the cookie that consumes a shown flash.
type uploadView struct {
	render.UploadPage
	clearFlash bool
}

func (v uploadView) HTTPCookies() []*http.Cookie {
	if !v.clearFlash {
		return nil
	}
	return []*http.Cookie{{Name: flashCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true}}
}

func newUploadView(r *http.Request, formErr string, status int) uploadView {
	view := uploadView{UploadPage: render.UploadPage{Error: formErr, Status: status}}

	if c, err := r.Cookie(flashCookieName); err == nil {
		view.Flash = noticeMessages[c.Value]
		view.clearFlash = true
	}

	return view
}

func newAnalyzeView(result usecase.AnalyzeResult) render.AnalyzePage {
	page := render.AnalyzePage{
		ID:         result.Upload.ID,
		FileName:   result.Upload.FileName,
		FirstRows:  render.StyledTable(result.Tables.Head),
		Summary:    render.StyledTable(result.Tables.Summary),
		Missing:    render.StyledTable(result.Tables.Missing),
		Mean:       render.StyledTable(result.Tables.Mean),
		Median:     render.StyledTable(result.Tables.Median),
		StdDev:     render.StyledTable(result.Tables.StdDev),
		Histograms: make([]render.Histogram, 0, len(result.Histograms)),
	}
	if result.Upload.DeleteAt != nil {
		page.DeleteAt = *result.Upload.DeleteAt
	}
	for _, h := range result.Histograms {
		page.Histograms = append(page.Histograms, render.Histogram{Column: h.Column, URL: h.URL})
	}

	return page
}
