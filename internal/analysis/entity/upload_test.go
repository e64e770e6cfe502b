package entity

import (
	"testing"
	"time"
)

func TestUploadedFileExpired(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	var u UploadedFile
	if u.ScheduledForDeletion() || u.Expired(now) {
		t.Fatal("a record without DeleteAt is never expired")
	}

	past := now.Add(-time.Second)
	u.DeleteAt = &past
	if !u.ScheduledForDeletion() || !u.Expired(now) {
		t.Fatal("expected record to be expired")
	}

	u.DeleteAt = &now
	if !u.Expired(now) {
		t.Fatal("a record is expired exactly at DeleteAt")
	}

	future := now.Add(time.Minute)
	u.DeleteAt = &future
	if u.Expired(now) {
		t.Fatal("did not expect record to be expired")
	}
}

func TestPrefixes(t *testing.T) {
	if got := UploadPrefix(42); got != "uploads/42" {
		t.Fatalf("unexpected upload prefix: %q", got)
	}
	if got := HistogramPrefix(42); got != "histograms/42" {
		t.Fatalf("unexpected histogram prefix: %q", got)
	}
}
