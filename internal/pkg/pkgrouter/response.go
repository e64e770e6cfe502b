package pkgrouter

import (
	"bytes"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// Redirect makes an endpoint answer with an HTTP redirect instead of a body.
// A zero Code means 302 Found.
type Redirect struct {
	URL     string
	Code    int
	Cookies []*http.Cookie
}

// HTTPCookies implements Cookier.
func (r Redirect) HTTPCookies() []*http.Cookie {
	return r.Cookies
}

// Cookier is implemented by responses that set cookies. Any response kind
// may implement it.
type Cookier interface {
	HTTPCookies() []*http.Cookie
}

func writeCookies(w http.ResponseWriter, resp any) {
	c, ok := resp.(Cookier)
	if !ok {
		return
	}
	for _, cookie := range c.HTTPCookies() {
		http.SetCookie(w, cookie)
	}
}

// HTML is implemented by endpoint responses rendered as an HTML document.
//
// The document is rendered into a buffer first so a template failure still
// produces a clean 500 instead of a half-written page. Implement StatusCode
// to answer with something other than 200.
type HTML interface {
	RenderHTML(w io.Writer) error
}

// File is a downloadable endpoint response.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

func writeRedirect(w http.ResponseWriter, r *http.Request, redirect Redirect) {
	code := redirect.Code
	if code == 0 {
		code = http.StatusFound
	}
	http.Redirect(w, r, redirect.URL, code)
}

func writeHTML(w http.ResponseWriter, r *http.Request, page HTML, code int) {
	var buf bytes.Buffer
	if err := page.RenderHTML(&buf); err != nil {
		slog.ErrorContext(r.Context(), "server: failed to render html", "error", err)
		writeErrorPage(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	//nolint:errcheck // client went away
	w.Write(buf.Bytes())
}

func writeFile(w http.ResponseWriter, file File) {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	if file.Name != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	}
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // client went away
	w.Write(file.Body)
}

//nolint:gochecknoglobals // parsed once
var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Code}} {{.Status}}</title></head>
<body>
<h1>{{.Code}} {{.Status}}</h1>
<p>{{.Message}}</p>
<p><a href="/">Back to upload</a></p>
</body>
</html>
`))

func writeErrorPage(w http.ResponseWriter, msg string, code int) {
	var buf bytes.Buffer
	err := errorPage.Execute(&buf, map[string]any{
		"Code":    code,
		"Status":  http.StatusText(code),
		"Message": msg,
	})
	if err != nil {
		http.Error(w, msg, code)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	//nolint:errcheck // client went away
	w.Write(buf.Bytes())
}

// wantsHTML reports whether the client prefers an HTML document, which is the
// case for browsers navigating to a page or submitting a form.
func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return false
	}
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mediaType {
		case "text/html", "application/xhtml+xml":
			return true
		case "application/json":
			return false
		}
	}
	return false
}
