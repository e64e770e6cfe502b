package entity

// ExpiredUpload asks the purge consumer to remove a record and its media.
type ExpiredUpload struct {
	EventID  string
	UploadID int64
	FileRef  string
}
