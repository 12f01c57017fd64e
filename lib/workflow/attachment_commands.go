package workflow

import (
	"time"

	"procurement-backend/models"
	dbmodels "procurement-backend/models/db"
)

// AddAttachment is allowed in every status.
func AddAttachment(s State, attachment dbmodels.Attachment, actor string, now time.Time) (Outcome, error) {
	if err := requireActor(actor); err != nil {
		return Outcome{}, err
	}
	attachment = prepareAttachment(attachment, s.PR.ID, actor, now)
	if err := ValidateAttachment(attachment); err != nil {
		return Outcome{}, err
	}
	next := s.clone()
	next.Attachments = append(next.Attachments, attachment)
	touch(&next.PR, actor, now)
	return emit(next, actor, now, dbmodels.AttachmentAddedPayload{
		AttachmentID: attachment.ID,
		OriginalName: attachment.OriginalName,
		Category:     attachment.Category,
		Size:         attachment.Size,
	}), nil
}

// RemoveAttachment deactivates the record; the row and its blob are kept.
func RemoveAttachment(s State, attachmentID, actor string, now time.Time) (Outcome, error) {
	if err := requireActor(actor); err != nil {
		return Outcome{}, err
	}
	idx := s.attachmentIndex(attachmentID)
	if idx < 0 || !s.Attachments[idx].IsActive {
		return Outcome{}, models.NotFoundErrorf("attachment %s", attachmentID)
	}
	next := s.clone()
	next.Attachments[idx] = deactivate(next.Attachments[idx], actor, now)
	touch(&next.PR, actor, now)
	return emit(next, actor, now, dbmodels.AttachmentRemovedPayload{
		AttachmentID: attachmentID,
		OriginalName: next.Attachments[idx].OriginalName,
	}), nil
}

func deactivate(attachment dbmodels.Attachment, actor string, now time.Time) dbmodels.Attachment {
	attachment.IsActive = false
	attachment.DeactivatedBy = actor
	attachment.DeactivatedDate = &now
	attachment.UpdatedAt = now
	return attachment
}

// RecordDownload only tracks access; it never denies it.
func RecordDownload(attachment dbmodels.Attachment, actor string, now time.Time) (dbmodels.Attachment, error) {
	if err := requireActor(actor); err != nil {
		return dbmodels.Attachment{}, err
	}
	attachment.DownloadCount++
	attachment.LastAccessedBy = actor
	attachment.LastAccessedDate = &now
	return attachment, nil
}
