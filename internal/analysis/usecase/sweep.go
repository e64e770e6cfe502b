package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/csvinsight/internal/analysis/entity"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkgerror"
)

// Sweep finds records whose deletion time has passed. With an event
// publisher each one is handed to the purge consumer; without one it is
// purged inline.
func (u *Usecase) Sweep(ctx context.Context) (SweepResult, error) {
	if u.store == nil {
		return SweepResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	expired, err := u.store.ListExpired(ctx, u.clock.Now(), u.sweepBatch)
	if err != nil {
		return SweepResult{}, normalizeErr(err)
	}

	result := SweepResult{Expired: len(expired)}
	for _, up := range expired {
		event := entity.ExpiredUpload{
			EventID:  u.newEventID(up.ID),
			UploadID: up.ID,
			FileRef:  up.FileRef,
		}

		if u.events != nil {
			err = u.events.Publish(ctx, event)
		} else {
			err = u.Purge(ctx, event)
		}
		if err != nil {
			slog.WarnContext(ctx, "failed to hand over expired upload", "upload_id", up.ID, "event_id", event.EventID, "error", err)
			continue
		}
		result.Handled++
	}

	if result.Expired > 0 {
		slog.InfoContext(ctx, "retention sweep finished", "expired", result.Expired, "handled", result.Handled)
	}

	return result, nil
}

// Purge removes the stored file, the upload and histogram prefixes and the
// record. A record that is already gone counts as purged.
func (u *Usecase) Purge(ctx context.Context, event entity.ExpiredUpload) error {
	if u.store == nil || u.media == nil {
		return pkgerror.NewServer(errors.New("missing dependency"))
	}

	if event.FileRef != "" {
		if err := u.media.Remove(ctx, event.FileRef); err != nil {
			return err
		}
	}
	if err := u.media.RemovePrefix(ctx, entity.UploadPrefix(event.UploadID)); err != nil {
		return err
	}
	if err := u.media.RemovePrefix(ctx, entity.HistogramPrefix(event.UploadID)); err != nil {
		return err
	}

	if err := u.store.DeleteUpload(ctx, event.UploadID); err != nil && !errors.Is(err, pkgerror.ErrNotFound) {
		return err
	}

	slog.InfoContext(ctx, "expired upload purged", "upload_id", event.UploadID, "event_id", event.EventID)

	return nil
}

func (u *Usecase) newEventID(uploadID int64) string {
	if u.eventID != nil {
		return u.eventID.Generate()
	}
	return "expired-" + entity.UploadPrefix(uploadID)
}
