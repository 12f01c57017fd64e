package workflow

import (
	"time"

	"procurement-backend/models"
	dbmodels "procurement-backend/models/db"
)

func guardPending(entry dbmodels.Approval) error {
	if !entry.Status.IsPending() {
		return models.AlreadyProcessedErrorf("approval level %d is %v", entry.Level, entry.Status)
	}
	return nil
}

func ApproveEntry(entry dbmodels.Approval, comments, actor string, now time.Time) (dbmodels.Approval, error) {
	if err := requireActor(actor); err != nil {
		return entry, err
	}
	if err := guardPending(entry); err != nil {
		return entry, err
	}
	if tooLong(comments, 500) {
		return entry, models.ValidationErrorf("comments cannot exceed 500 characters")
	}
	entry.Status = models.ApprovalStatusApproved
	entry.Comments = comments
	entry.ApprovedDate = &now
	entry.LastModifiedBy = actor
	entry.UpdatedAt = now
	return entry, nil
}

// RejectEntry rejects a single level. The request status is left alone.
func RejectEntry(entry dbmodels.Approval, comments, actor string, now time.Time) (dbmodels.Approval, error) {
	if err := requireActor(actor); err != nil {
		return entry, err
	}
	if err := guardPending(entry); err != nil {
		return entry, err
	}
	if tooLong(comments, 500) {
		return entry, models.ValidationErrorf("comments cannot exceed 500 characters")
	}
	entry.Status = models.ApprovalStatusRejected
	entry.Comments = comments
	entry.ApprovedDate = &now
	entry.LastModifiedBy = actor
	entry.UpdatedAt = now
	return entry, nil
}

// DelegateEntry only records who took over; no new pending entry is created.
func DelegateEntry(entry dbmodels.Approval, delegateTo, reason, actor string, now time.Time) (dbmodels.Approval, error) {
	if err := requireActor(actor); err != nil {
		return entry, err
	}
	if err := guardPending(entry); err != nil {
		return entry, err
	}
	if delegateTo == "" {
		return entry, models.ValidationErrorf("delegate is required")
	}
	if tooLong(reason, 200) {
		return entry, models.ValidationErrorf("delegation reason cannot exceed 200 characters")
	}
	entry.DelegatedFrom = entry.Approver
	entry.DelegatedTo = delegateTo
	entry.DelegationReason = reason
	entry.Status = models.ApprovalStatusDelegated
	entry.LastModifiedBy = actor
	entry.UpdatedAt = now
	return entry, nil
}

// EscalateEntry flags the entry whatever its status.
func EscalateEntry(entry dbmodels.Approval, reason, actor string, now time.Time) (dbmodels.Approval, error) {
	if err := requireActor(actor); err != nil {
		return entry, err
	}
	if tooLong(reason, 200) {
		return entry, models.ValidationErrorf("escalation reason cannot exceed 200 characters")
	}
	entry.IsEscalated = true
	entry.EscalatedDate = &now
	entry.EscalatedBy = actor
	entry.EscalationReason = reason
	entry.LastModifiedBy = actor
	entry.UpdatedAt = now
	return entry, nil
}

func SendReminder(entry dbmodels.Approval, now time.Time) dbmodels.Approval {
	entry.ReminderCount++
	entry.ReminderSent = true
	entry.LastReminderDate = &now
	entry.UpdatedAt = now
	return entry
}
