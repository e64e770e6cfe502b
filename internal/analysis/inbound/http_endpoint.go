package inbound

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/shandysiswandi/csvinsight/internal/analysis/usecase"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgerror"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgrouter"
)

const msgTooLarge = "The file is too large."

var errTooLarge = errors.New("upload exceeds the size limit")

type HTTPEndpoint struct {
	uc             uc
	maxUploadBytes int64
}

func (h *HTTPEndpoint) Index(ctx context.Context, r *http.Request) (any, error) {
	return newUploadView(r, "", http.StatusOK), nil
}

func (h *HTTPEndpoint) Upload(ctx context.Context, r *http.Request) (any, error) {
	if r.ContentLength > h.maxUploadBytes {
		return newUploadView(r, msgTooLarge, http.StatusRequestEntityTooLarge), nil
	}

	in, cleanup, err := h.extractUpload(r)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	result, err := h.uc.Upload(ctx, in)
	if errors.Is(err, errTooLarge) {
		return newUploadView(r, msgTooLarge, http.StatusRequestEntityTooLarge), nil
	}

	var perr *pkgerror.Error
	if errors.As(err, &perr) && isFormError(perr) {
		return newUploadView(r, perr.Msg(), perr.StatusCode()), nil
	}
	if err != nil {
		return nil, err
	}

	return pkgrouter.Redirect{URL: analyzePath(result.ID)}, nil
}

func (h *HTTPEndpoint) Analyze(ctx context.Context, r *http.Request) (any, error) {
	id, err := parseID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Analyze(ctx, id)
	if redirect, ok := backToUpload(err); ok {
		return redirect, nil
	}
	if err != nil {
		return nil, err
	}

	return newAnalyzeView(result), nil
}

func (h *HTTPEndpoint) Report(ctx context.Context, r *http.Request) (any, error) {
	id, err := parseID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Report(ctx, id)
	if redirect, ok := backToUpload(err); ok {
		return redirect, nil
	}
	if err != nil {
		return nil, err
	}

	return pkgrouter.File{
		Name:        result.FileName,
		ContentType: result.ContentType,
		Body:        result.Body,
	}, nil
}

func isFormError(perr *pkgerror.Error) bool {
	switch perr.Code() {
	case pkgerror.CodeInvalidInput, pkgerror.CodeUnsupportedMedia, pkgerror.CodeTooLarge:
		return true
	default:
		return false
	}
}

// backToUpload turns the benign analysis failures into a redirect to the
// upload form carrying a flash notice.
func backToUpload(err error) (pkgrouter.Redirect, bool) {
	var notice string
	switch {
	case err == nil:
		return pkgrouter.Redirect{}, false
	case errors.Is(err, usecase.ErrUploadNotFound):
		notice = noticeGone
	case errors.Is(err, usecase.ErrFileMissing):
		notice = noticeMissing
	case errors.Is(err, usecase.ErrFileUnreadable):
		notice = noticeUnreadable
	default:
		return pkgrouter.Redirect{}, false
	}

	return pkgrouter.Redirect{URL: "/", Cookies: []*http.Cookie{flashCookie(notice)}}, true
}

func parseID(ctx context.Context) (int64, error) {
	id, ok := pkgrouter.GetParamID(ctx, "id")
	if !ok {
		return 0, pkgerror.NewNotFound("The page you requested does not exist.")
	}
	return id, nil
}

func analyzePath(id int64) string {
	return "/analyze/" + strconv.FormatInt(id, 10)
}

// extractUpload streams the "file" part of a multipart form. A request
// without that part yields an input with no body, which the usecase
// reports as a missing field.
func (h *HTTPEndpoint) extractUpload(r *http.Request) (usecase.UploadInput, func(), error) {
	noop := func() {}

	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.EqualFold(mediaType, "multipart/form-data") {
		return usecase.UploadInput{}, noop, nil
	}

	reader, err := r.MultipartReader()
	if err != nil {
		return usecase.UploadInput{}, noop, pkgerror.NewInvalidFormat()
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return usecase.UploadInput{}, noop, nil
		}
		if err != nil {
			return usecase.UploadInput{}, noop, pkgerror.NewInvalidFormat()
		}

		if part.FormName() == "file" {
			in := usecase.UploadInput{
				FileName: part.FileName(),
				Body:     &limitedReader{r: part, remaining: h.maxUploadBytes},
			}
			return in, func() { _ = part.Close() }, nil
		}
		_ = part.Close()
	}
}

// limitedReader fails with errTooLarge instead of truncating.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, errTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}

	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, errTooLarge
	}
	return n, err
}
