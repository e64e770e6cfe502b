package entity

import "time"

// UploadedFile is the persisted record of one CSV upload.
type UploadedFile struct {
	ID       int64
	FileName string // client supplied name
	FileRef  string // media storage key of the stored bytes
	Size     int64

	CreatedAt time.Time
	// DeleteAt is nil until the first analysis schedules the deletion.
	DeleteAt *time.Time
}

// ScheduledForDeletion reports whether a deletion time has been set.
func (u UploadedFile) ScheduledForDeletion() bool {
	return u.DeleteAt != nil
}

// Expired reports whether the record is due for deletion at now.
func (u UploadedFile) Expired(now time.Time) bool {
	return u.DeleteAt != nil && !u.DeleteAt.After(now)
}
