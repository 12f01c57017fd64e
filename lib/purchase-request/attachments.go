package prhandler

import (
	"context"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"procurement-backend/lib/workflow"
	"procurement-backend/models"
	prapimodels "procurement-backend/models/api/purchase-request"
	dbmodels "procurement-backend/models/db"
)

// AddAttachment registers metadata of a file stored elsewhere.
func (i impl) AddAttachment(ctx context.Context, actor, id string, data prapimodels.AttachmentData) (prapimodels.PRView, error) {
	if err := data.Validate(); err != nil {
		return prapimodels.PRView{}, err
	}
	attachment := data.ToDB()
	attachment.ID = uuid.NewString()
	return i.mutateView(ctx, "add_attachment", id, func(s workflow.State, now time.Time) (workflow.Outcome, error) {
		return workflow.AddAttachment(s, attachment, actor, now)
	})
}

// UploadAttachment stores the blob first and then registers it. The blob is removed again
// when the registration fails.
func (i impl) UploadAttachment(ctx context.Context, actor, id string, data prapimodels.AttachmentUpload, file FileData) (prapimodels.PRView, error) {
	if file.Size > models.MaxAttachmentSize {
		return prapimodels.PRView{}, models.ValidationErrorf("file size must be between 0 and %d bytes", models.MaxAttachmentSize)
	}
	if _, err := i.load(i.stores, id); err != nil {
		return prapimodels.PRView{}, err
	}
	key, err := i.files.Upload(ctx, id, file.Name, file.MimeType, file.Reader, file.Size)
	if err != nil {
		return prapimodels.PRView{}, err
	}
	attachment := dbmodels.Attachment{
		Filename:     path.Base(key),
		OriginalName: file.Name,
		MimeType:     file.MimeType,
		Size:         file.Size,
		Path:         key,
		Description:  data.Description,
		Category:     data.Category,
		AccessLevel:  data.AccessLevel,
	}
	attachment.ID = uuid.NewString()
	view, err := i.mutateView(ctx, "add_attachment", id, func(s workflow.State, now time.Time) (workflow.Outcome, error) {
		return workflow.AddAttachment(s, attachment, actor, now)
	})
	if err != nil {
		if rmErr := i.files.Remove(ctx, key); rmErr != nil {
			log.WithField("object_key", key).WithError(rmErr).Warn("orphan attachment object left in storage")
		}
		return prapimodels.PRView{}, err
	}
	return view, nil
}

func (i impl) RemoveAttachment(ctx context.Context, actor, id, attachmentID string) (prapimodels.PRView, error) {
	return i.mutateView(ctx, "remove_attachment", id, func(s workflow.State, now time.Time) (workflow.Outcome, error) {
		return workflow.RemoveAttachment(s, attachmentID, actor, now)
	})
}

// DownloadAttachment opens the blob and records the access. The caller closes the reader.
func (i impl) DownloadAttachment(ctx context.Context, actor, id, attachmentID string) (prapimodels.AttachmentView, io.ReadCloser, error) {
	var rec dbmodels.Attachment
	var reader io.ReadCloser
	err := i.locked(ctx, id, func() error {
		return i.run(func(s Stores) error {
			if _, err := i.loadForUpdate(s, id); err != nil {
				return err
			}
			found, err := s.Attachments.GetByID(id, attachmentID)
			if err != nil {
				return err
			}
			if found == nil || !found.IsActive {
				return models.NotFoundErrorf("attachment %s", attachmentID)
			}
			rec, err = workflow.RecordDownload(*found, actor, i.now())
			if err != nil {
				return err
			}
			reader, err = i.files.Download(ctx, rec.Path)
			if err != nil {
				return err
			}
			return s.Attachments.Save(rec)
		})
	})
	if err != nil {
		if reader != nil {
			reader.Close()
		}
		return prapimodels.AttachmentView{}, nil, err
	}
	return prapimodels.AttachmentConvert(rec), reader, nil
}

func (i impl) AttachmentStats(id string) (dbmodels.AttachmentStats, error) {
	if _, err := i.load(i.stores, id); err != nil {
		return dbmodels.AttachmentStats{}, err
	}
	stats, err := i.stores.Attachments.Stats(id)
	if err != nil {
		return dbmodels.AttachmentStats{}, err
	}
	if stats.Categories == nil {
		stats.Categories = []models.AttachmentCategory{}
	}
	return stats, nil
}
