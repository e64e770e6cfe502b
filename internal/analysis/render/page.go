package render

import (
	"embed"
	"html/template"
	"io"
	"net/http"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//nolint:gochecknoglobals // parsed once at init
var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// UploadPage is the upload form. Error is the validation message shown
// under the file field, Flash a notice carried over from a redirect.
type UploadPage struct {
	Error  string
	Flash  string
	Status int
}

// RenderHTML implements pkgrouter.HTML.
func (p UploadPage) RenderHTML(w io.Writer) error {
	return pages.ExecuteTemplate(w, "upload.html", p)
}

// StatusCode is 200 unless Status says otherwise.
func (p UploadPage) StatusCode() int {
	if p.Status == 0 {
		return http.StatusOK
	}
	return p.Status
}

// Histogram is one image link on the analysis page.
type Histogram struct {
	Column string
	URL    string
}

// AnalyzePage shows every table of one analysis.
type AnalyzePage struct {
	ID         int64
	FileName   string
	DeleteAt   time.Time
	FirstRows  template.HTML
	Summary    template.HTML
	Missing    template.HTML
	Mean       template.HTML
	Median     template.HTML
	StdDev     template.HTML
	Histograms []Histogram
}

// RenderHTML implements pkgrouter.HTML.
func (p AnalyzePage) RenderHTML(w io.Writer) error {
	return pages.ExecuteTemplate(w, "analyze.html", p)
}
