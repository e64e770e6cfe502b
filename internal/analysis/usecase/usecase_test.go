package usecase

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/csvinsight/internal/analysis/entity"
	"github.com/shandysiswandi/csvinsight/internal/analysis/store"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgerror"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgmedia"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type seqID struct {
	mu   sync.Mutex
	next int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.ExpiredUpload
}

func (p *recordingPublisher) Publish(ctx context.Context, event entity.ExpiredUpload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type failingCreateStore struct {
	*store.InMemoryStore
}

func (failingCreateStore) CreateUpload(context.Context, entity.UploadedFile) error {
	return errors.New("disk full")
}

type fixture struct {
	uc    *Usecase
	store *store.InMemoryStore
	media *pkgmedia.Local
	clock *fakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	media, err := pkgmedia.NewLocal(t.TempDir(), "/media/")
	if err != nil {
		t.Fatalf("NewLocal() err = %v", err)
	}

	st := store.NewInMemoryStore()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	uc := New(Dependency{
		Store: st,
		Media: media,
		Clock: clock,
		ID:    &seqID{next: 41},
	})

	return fixture{uc: uc, store: st, media: media, clock: clock}
}

func (f fixture) upload(t *testing.T, name, body string) int64 {
	t.Helper()

	res, err := f.uc.Upload(context.Background(), UploadInput{FileName: name, Body: strings.NewReader(body)})
	if err != nil {
		t.Fatalf("Upload() err = %v", err)
	}
	return res.ID
}

func assertCode(t *testing.T, err error, want pkgerror.Code) *pkgerror.Error {
	t.Helper()

	var perr *pkgerror.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected pkgerror.Error, got %T (%v)", err, err)
	}
	if perr.Code() != want {
		t.Fatalf("error code = %v, want %v", perr.Code(), want)
	}
	return perr
}

func TestUpload_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      UploadInput
		code    pkgerror.Code
		message string
	}{
		{"no file", UploadInput{}, pkgerror.CodeInvalidInput, MsgFileRequired},
		{"no name", UploadInput{Body: strings.NewReader("a\n1\n")}, pkgerror.CodeInvalidInput, MsgFileRequired},
		{"txt", UploadInput{FileName: "data.txt", Body: strings.NewReader("a\n1\n")}, pkgerror.CodeUnsupportedMedia, MsgNotCSV},
		{"upper case suffix", UploadInput{FileName: "DATA.CSV", Body: strings.NewReader("a\n1\n")}, pkgerror.CodeUnsupportedMedia, MsgNotCSV},
		{"csv in the middle", UploadInput{FileName: "data.csv.bak", Body: strings.NewReader("a\n1\n")}, pkgerror.CodeUnsupportedMedia, MsgNotCSV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			_, err := f.uc.Upload(context.Background(), tt.in)
			perr := assertCode(t, err, tt.code)
			if perr.Msg() != tt.message {
				t.Fatalf("Msg() = %q, want %q", perr.Msg(), tt.message)
			}
			if f.store.Len() != 0 {
				t.Fatalf("store has %d records, want 0", f.store.Len())
			}

			entries, _ := os.ReadDir(f.media.Root())
			if len(entries) != 0 {
				t.Fatalf("media root has %d entries, want 0", len(entries))
			}
		})
	}
}

func TestUpload_StoresFileAndRecord(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res, err := f.uc.Upload(context.Background(), UploadInput{
		FileName: `C:\Users\me\my data.csv`,
		Body:     strings.NewReader("a,b\n1,2\n"),
	})
	if err != nil {
		t.Fatalf("Upload() err = %v", err)
	}

	if res.ID != 42 || res.FileRef != "uploads/42/my_data.csv" {
		t.Fatalf("Upload() = %+v", res)
	}

	up, err := f.store.GetUpload(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetUpload() err = %v", err)
	}
	if up.Size != 8 || up.FileName != `C:\Users\me\my data.csv` || up.DeleteAt != nil {
		t.Fatalf("record = %+v", up)
	}
	if !up.CreatedAt.Equal(f.clock.Now()) {
		t.Fatalf("CreatedAt = %v, want %v", up.CreatedAt, f.clock.Now())
	}

	data, err := os.ReadFile(filepath.Join(f.media.Root(), "uploads", "42", "my_data.csv"))
	if err != nil {
		t.Fatalf("stored file: %v", err)
	}
	if string(data) != "a,b\n1,2\n" {
		t.Fatalf("stored file = %q", data)
	}
}

func TestUpload_RemovesFileWhenInsertFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	uc := New(Dependency{
		Store: failingCreateStore{store.NewInMemoryStore()},
		Media: f.media,
		ID:    &seqID{},
	})

	_, err := uc.Upload(context.Background(), UploadInput{FileName: "a.csv", Body: strings.NewReader("a\n1\n")})
	assertCode(t, err, pkgerror.CodeInternal)

	ok, err := f.media.Exists(context.Background(), "uploads/1/a.csv")
	if err != nil || ok {
		t.Fatalf("Exists() = %v, %v; want false, nil", ok, err)
	}
}

func TestAnalyze_MixedColumns(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.upload(t, "data.csv", "a,b\n1,2\n3,4\n5,x\n")

	res, err := f.uc.Analyze(context.Background(), id)
	if err != nil {
		t.Fatalf("Analyze() err = %v", err)
	}

	if got := res.Tables.Mean.Rows; len(got) != 2 || got[0][0] != "2.000000" || got[1][0] != "3.000000" {
		t.Fatalf("Mean rows = %v", got)
	}
	if got := res.Tables.Missing.Rows; len(got) != 2 || got[1][0] != "0" {
		t.Fatalf("Missing rows = %v", got)
	}
	if len(res.Tables.Head.Rows) != 3 {
		t.Fatalf("Head rows = %d, want 3", len(res.Tables.Head.Rows))
	}

	if len(res.Histograms) != 1 || res.Histograms[0].Column != "a" {
		t.Fatalf("Histograms = %+v", res.Histograms)
	}
	if res.Histograms[0].URL != "/media/histograms/42/histogram_a.png" {
		t.Fatalf("URL = %q", res.Histograms[0].URL)
	}
	if _, err := os.Stat(filepath.Join(f.media.Root(), "histograms", "42", "histogram_a.png")); err != nil {
		t.Fatalf("histogram file: %v", err)
	}

	want := f.clock.Now().Add(DefaultRetention)
	if res.Upload.DeleteAt == nil || !res.Upload.DeleteAt.Equal(want) {
		t.Fatalf("DeleteAt = %v, want %v", res.Upload.DeleteAt, want)
	}
}

func TestAnalyze_DeleteAtSetOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.upload(t, "data.csv", "a,b\n1,x\n2,3.5\n,4\n7,-1e308\n")

	first, err := f.uc.Analyze(context.Background(), id)
	if err != nil {
		t.Fatalf("Analyze() err = %v", err)
	}

	f.clock.Advance(5 * time.Minute)

	second, err := f.uc.Analyze(context.Background(), id)
	if err != nil {
		t.Fatalf("Analyze() err = %v", err)
	}
	if !second.Upload.DeleteAt.Equal(*first.Upload.DeleteAt) {
		t.Fatalf("DeleteAt moved from %v to %v", first.Upload.DeleteAt, second.Upload.DeleteAt)
	}
	if !reflect.DeepEqual(first.Tables, second.Tables) {
		t.Fatalf("tables differ between analyses:\n%+v\n%+v", first.Tables, second.Tables)
	}
}

func TestAnalyze_HistogramKeysNeverCollide(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.upload(t, "data.csv", "a b,a_b_2,a?b\n1,2,3\n4,5,6\n")

	res, err := f.uc.Analyze(context.Background(), id)
	if err != nil {
		t.Fatalf("Analyze() err = %v", err)
	}
	if len(res.Histograms) != 3 {
		t.Fatalf("got %d histograms, want 3", len(res.Histograms))
	}

	seen := make(map[string]string, len(res.Histograms))
	for _, h := range res.Histograms {
		if other, dup := seen[h.URL]; dup {
			t.Fatalf("columns %q and %q share %s", other, h.Column, h.URL)
		}
		seen[h.URL] = h.Column
	}

	for _, name := range []string{"histogram_a_b.png", "histogram_a_b_2.png", "histogram_a_b_3.png"} {
		if _, err := os.Stat(filepath.Join(f.media.Root(), "histograms", "42", name)); err != nil {
			t.Fatalf("histogram file %s: %v", name, err)
		}
	}
}

func TestAnalyze_HistogramPerNumericColumn(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.upload(t, "data.csv", "x,y,label,z\n1,2,a,3\n4,5,b,6\n7,,c,9\n")

	res, err := f.uc.Analyze(context.Background(), id)
	if err != nil {
		t.Fatalf("Analyze() err = %v", err)
	}

	got := make([]string, 0, len(res.Histograms))
	for _, h := range res.Histograms {
		got = append(got, h.Column)
	}
	if strings.Join(got, ",") != "x,y,z" {
		t.Fatalf("histogram columns = %v, want [x y z]", got)
	}
}

func TestAnalyze_Failures(t *testing.T) {
	t.Parallel()

	t.Run("unknown record", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		if _, err := f.uc.Analyze(context.Background(), 999); !errors.Is(err, ErrUploadNotFound) {
			t.Fatalf("err = %v, want ErrUploadNotFound", err)
		}
	})

	t.Run("file removed", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.upload(t, "data.csv", "a\n1\n")
		if err := f.media.Remove(context.Background(), "uploads/42/data.csv"); err != nil {
			t.Fatalf("Remove() err = %v", err)
		}
		if _, err := f.uc.Analyze(context.Background(), id); !errors.Is(err, ErrFileMissing) {
			t.Fatalf("err = %v, want ErrFileMissing", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.upload(t, "data.csv", "")
		if _, err := f.uc.Analyze(context.Background(), id); !errors.Is(err, ErrFileUnreadable) {
			t.Fatalf("err = %v, want ErrFileUnreadable", err)
		}
		up, _ := f.store.GetUpload(context.Background(), id)
		if up.DeleteAt != nil {
			t.Fatalf("DeleteAt = %v, want nil after a failed analysis", up.DeleteAt)
		}
	})

	t.Run("ragged rows", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.upload(t, "data.csv", "a\n1,2,3\n")
		if _, err := f.uc.Analyze(context.Background(), id); !errors.Is(err, ErrFileUnreadable) {
			t.Fatalf("err = %v, want ErrFileUnreadable", err)
		}
	})
}

func TestReport(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.upload(t, "sales 2026.csv", "a,b\n1,2\n3,4\n")

	res, err := f.uc.Report(context.Background(), id)
	if err != nil {
		t.Fatalf("Report() err = %v", err)
	}
	if res.FileName != "sales_2026_report.xlsx" {
		t.Fatalf("FileName = %q", res.FileName)
	}
	if !bytes.HasPrefix(res.Body, []byte("PK")) {
		t.Fatal("report is not a zip container")
	}

	up, _ := f.store.GetUpload(context.Background(), id)
	if up.DeleteAt != nil {
		t.Fatal("Report() scheduled the record for deletion")
	}
	if _, err := os.Stat(filepath.Join(f.media.Root(), "histograms")); !os.IsNotExist(err) {
		t.Fatalf("Report() rendered histograms: %v", err)
	}
}

func TestSweep_PurgesInline(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	expired := f.upload(t, "old.csv", "a\n1\n2\n")
	fresh := f.upload(t, "new.csv", "a\n1\n")

	if _, err := f.uc.Analyze(context.Background(), expired); err != nil {
		t.Fatalf("Analyze() err = %v", err)
	}
	f.clock.Advance(DefaultRetention)

	res, err := f.uc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() err = %v", err)
	}
	if res.Expired != 1 || res.Handled != 1 {
		t.Fatalf("Sweep() = %+v", res)
	}

	if _, err := f.store.GetUpload(context.Background(), expired); !errors.Is(err, pkgerror.ErrNotFound) {
		t.Fatalf("expired record still present: %v", err)
	}
	if _, err := f.store.GetUpload(context.Background(), fresh); err != nil {
		t.Fatalf("fresh record removed: %v", err)
	}
	for _, dir := range []string{"uploads/42", "histograms/42"} {
		if _, err := os.Stat(filepath.Join(f.media.Root(), filepath.FromSlash(dir))); !os.IsNotExist(err) {
			t.Fatalf("%s still exists: %v", dir, err)
		}
	}
	if _, err := f.uc.Analyze(context.Background(), expired); !errors.Is(err, ErrUploadNotFound) {
		t.Fatalf("Analyze(purged) err = %v, want ErrUploadNotFound", err)
	}
}

func TestSweep_PublishesEvents(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	pub := &recordingPublisher{}
	uc := New(Dependency{Store: f.store, Media: f.media, Clock: f.clock, ID: &seqID{}, Events: pub, SweepBatch: 1})

	for i := 0; i < 2; i++ {
		id := f.upload(t, "a.csv", "a\n1\n")
		if _, err := uc.Analyze(context.Background(), id); err != nil {
			t.Fatalf("Analyze() err = %v", err)
		}
	}
	f.clock.Advance(time.Hour)

	res, err := uc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() err = %v", err)
	}
	if res.Expired != 1 || len(pub.events) != 1 {
		t.Fatalf("Sweep() = %+v, events = %d; want one per batch", res, len(pub.events))
	}
	if pub.events[0].UploadID != 42 || pub.events[0].FileRef != "uploads/42/a.csv" {
		t.Fatalf("event = %+v", pub.events[0])
	}
	if f.store.Len() != 2 {
		t.Fatalf("publishing must not delete records, store has %d", f.store.Len())
	}
}

func TestPurge_IsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.upload(t, "a.csv", "a\n1\n")
	event := entity.ExpiredUpload{EventID: "e1", UploadID: id, FileRef: "uploads/42/a.csv"}

	if err := f.uc.Purge(context.Background(), event); err != nil {
		t.Fatalf("Purge() err = %v", err)
	}
	if err := f.uc.Purge(context.Background(), event); err != nil {
		t.Fatalf("second Purge() err = %v", err)
	}
	if f.store.Len() != 0 {
		t.Fatalf("store has %d records, want 0", f.store.Len())
	}
}
