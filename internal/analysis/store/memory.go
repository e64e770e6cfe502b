package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shandysiswandi/csvinsight/internal/analysis/entity"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgerror"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	uploads map[int64]*uploadRecord
}

type uploadRecord struct {
	mu     sync.RWMutex
	upload entity.UploadedFile
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		uploads: make(map[int64]*uploadRecord),
	}
}

func (s *InMemoryStore) CreateUpload(ctx context.Context, up entity.UploadedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.uploads[up.ID]; exists {
		return pkgerror.NewBusiness("upload already exists", pkgerror.CodeConflict)
	}

	s.uploads[up.ID] = &uploadRecord{
		upload: cloneUpload(up),
	}

	return nil
}

func (s *InMemoryStore) GetUpload(ctx context.Context, id int64) (entity.UploadedFile, error) {
	rec, err := s.get(id)
	if err != nil {
		return entity.UploadedFile{}, err
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()

	return cloneUpload(rec.upload), nil
}

func (s *InMemoryStore) UpdateUpload(ctx context.Context, id int64, fn func(up *entity.UploadedFile)) error {
	rec, err := s.get(id)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	up := cloneUpload(rec.upload)
	fn(&up)
	up.ID = id
	rec.upload = up

	return nil
}

func (s *InMemoryStore) ListExpired(ctx context.Context, now time.Time, limit int) ([]entity.UploadedFile, error) {
	s.mu.RLock()
	records := make([]*uploadRecord, 0, len(s.uploads))
	for _, rec := range s.uploads {
		records = append(records, rec)
	}
	s.mu.RUnlock()

	out := make([]entity.UploadedFile, 0)
	for _, rec := range records {
		rec.mu.RLock()
		if rec.upload.Expired(now) {
			out = append(out, cloneUpload(rec.upload))
		}
		rec.mu.RUnlock()
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DeleteAt.Equal(*out[j].DeleteAt) {
			return out[i].DeleteAt.Before(*out[j].DeleteAt)
		}
		return out[i].ID < out[j].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (s *InMemoryStore) DeleteUpload(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.uploads[id]; !ok {
		return pkgerror.ErrNotFound
	}
	delete(s.uploads, id)

	return nil
}

// Len is the number of stored records.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.uploads)
}

func (s *InMemoryStore) get(id int64) (*uploadRecord, error) {
	s.mu.RLock()
	rec, ok := s.uploads[id]
	s.mu.RUnlock()
	if !ok {
		return nil, pkgerror.ErrNotFound
	}

	return rec, nil
}

func cloneUpload(up entity.UploadedFile) entity.UploadedFile {
	if up.DeleteAt != nil {
		at := *up.DeleteAt
		up.DeleteAt = &at
	}
	return up
}
