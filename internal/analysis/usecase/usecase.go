package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/csvinsight/internal/analysis/entity"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgerror"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgmedia"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkguid"
)

const (
	DefaultRetention  = 10 * time.Minute
	DefaultSweepBatch = 100

	// HeadRows is the number of rows shown as the first rows table.
	HeadRows = 5

	csvSuffix      = ".csv"
	csvContentType = "text/csv"
)

// Messages shown next to the upload form.
const (
	MsgFileRequired = "This field is required."
	MsgNotCSV       = "Please upload a CSV file."
)

var (
	// ErrUploadNotFound is returned for an unknown or purged record.
	ErrUploadNotFound = pkgerror.NewNotFound("upload not found")
	// ErrFileMissing is returned when the record exists but its bytes do not.
	ErrFileMissing = pkgerror.NewNotFound("uploaded file is no longer available")
	// ErrFileUnreadable is returned when the stored bytes are not a CSV table.
	ErrFileUnreadable = pkgerror.NewBusiness("uploaded file could not be read as CSV", pkgerror.CodeInvalidFormat)
	// ErrFileRequired is returned when the form carries no file.
	ErrFileRequired = pkgerror.NewBusiness(MsgFileRequired, pkgerror.CodeInvalidInput)
	// ErrNotCSV is returned when the file name lacks the .csv suffix.
	ErrNotCSV = pkgerror.NewUnsupportedMedia(MsgNotCSV)
)

type Store interface {
	CreateUpload(ctx context.Context, up entity.UploadedFile) error
	GetUpload(ctx context.Context, id int64) (entity.UploadedFile, error)
	UpdateUpload(ctx context.Context, id int64, fn func(up *entity.UploadedFile)) error
	ListExpired(ctx context.Context, now time.Time, limit int) ([]entity.UploadedFile, error)
	DeleteUpload(ctx context.Context, id int64) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.ExpiredUpload) error
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Store   Store
	Media   pkgmedia.Storage
	Events  EventPublisher
	Clock   Clock
	ID      pkguid.NumberID
	EventID pkguid.StringID

	// Retention is how long a record lives after its first analysis.
	Retention time.Duration
	// SweepBatch caps the records handled by one Sweep call.
	SweepBatch int
}

type Usecase struct {
	store      Store
	media      pkgmedia.Storage
	events     EventPublisher
	clock      Clock
	id         pkguid.NumberID
	eventID    pkguid.StringID
	retention  time.Duration
	sweepBatch int
}

func New(dep Dependency) *Usecase {
	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	retention := dep.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}

	batch := dep.SweepBatch
	if batch <= 0 {
		batch = DefaultSweepBatch
	}

	return &Usecase{
		store:      dep.Store,
		media:      dep.Media,
		events:     dep.Events,
		clock:      clock,
		id:         dep.ID,
		eventID:    dep.EventID,
		retention:  retention,
		sweepBatch: batch,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Upload validates the file name, stores the bytes and inserts the record.
// Nothing is persisted when validation fails.
func (u *Usecase) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	if u.store == nil || u.media == nil || u.id == nil {
		return UploadResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	if in.Body == nil || in.FileName == "" {
		return UploadResult{}, ErrFileRequired
	}
	if !strings.HasSuffix(in.FileName, csvSuffix) {
		return UploadResult{}, ErrNotCSV
	}

	id := u.id.Generate()
	key := entity.UploadPrefix(id) + "/" + pkgmedia.SafeName(baseName(in.FileName))

	body := &countingReader{r: in.Body}
	if err := u.media.Save(ctx, key, body, in.Size, csvContentType); err != nil {
		return UploadResult{}, normalizeErr(err)
	}

	size := in.Size
	if size <= 0 {
		size = body.n
	}

	up := entity.UploadedFile{
		ID:        id,
		FileName:  in.FileName,
		FileRef:   key,
		Size:      size,
		CreatedAt: u.clock.Now().UTC(),
	}
	if err := u.store.CreateUpload(ctx, up); err != nil {
		if rmErr := u.media.Remove(ctx, key); rmErr != nil {
			slog.WarnContext(ctx, "failed to remove orphaned upload", "upload_id", id, "file_ref", key, "error", rmErr)
		}
		return UploadResult{}, normalizeErr(err)
	}

	slog.InfoContext(ctx, "upload stored", "upload_id", id, "file_ref", key, "size", size)

	return UploadResult{ID: id, FileRef: key}, nil
}

// baseName strips any client side directory, with either separator.
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		return name[i+1:]
	}
	return name
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func mapStoreErr(err error) error {
	if errors.Is(err, pkgerror.ErrNotFound) {
		return ErrUploadNotFound
	}
	return normalizeErr(err)
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}
