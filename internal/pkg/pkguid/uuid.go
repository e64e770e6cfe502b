package pkguid

import "github.com/google/uuid"

// UUID generates time-ordered (version 7) UUID strings. It serves correlation
// IDs and purge event IDs.
type UUID struct{}

var _ StringID = (*UUID)(nil)

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a new UUID string.
func (u *UUID) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
