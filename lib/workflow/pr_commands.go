package workflow

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"procurement-backend/models"
	dbmodels "procurement-backend/models/db"
)

// Create validates a new request and assigns its number, defaults and child ordinals.
// draft.PR.ID must already be set; children reference it.
func Create(draft State, prNumber, actor string, now time.Time) (Outcome, error) {
	if err := requireActor(actor); err != nil {
		return Outcome{}, err
	}
	if draft.PR.ID == "" {
		return Outcome{}, errors.New("purchase request id is not assigned")
	}
	next := draft.clone()
	pr := &next.PR
	applyPRDefaults(pr)
	if err := ValidatePR(*pr); err != nil {
		return Outcome{}, err
	}
	if err := validateRequiredDate(pr.RequiredDate, now); err != nil {
		return Outcome{}, err
	}
	pr.PRNumber = prNumber
	pr.Status = models.PRStatusDraft
	pr.CreatedBy = actor
	pr.LastModifiedBy = actor
	pr.CreatedAt = now
	pr.UpdatedAt = now
	pr.Version = 1
	pr.CurrentApprovalLevel = 0
	pr.SubmittedDate, pr.ApprovedDate, pr.RejectedDate, pr.CancelledDate = nil, nil, nil, nil
	pr.IsDeleted, pr.DeletedDate, pr.DeletedBy = false, nil, ""
	pr.AuditLog = dbmodels.AuditLog{}
	pr.RecalcBudgetVariance()

	var err error
	if next.Items, err = prepareItems(draft.Items, pr.ID, actor, now); err != nil {
		return Outcome{}, err
	}
	if next.Attachments, err = prepareAttachments(draft.Attachments, pr.ID, actor, now); err != nil {
		return Outcome{}, err
	}
	if next.Approvals, err = prepareApprovals(draft.Approvals, pr.ID, actor, now); err != nil {
		return Outcome{}, err
	}
	pr.TotalApprovalLevels = len(next.Approvals)
	pr.LastItemNumber = len(next.Items)

	return emit(next, actor, now, dbmodels.CreatedPayload{
		PRNumber:        prNumber,
		ItemCount:       len(next.Items),
		ApprovalLevels:  len(next.Approvals),
		EstimatedBudget: pr.EstimatedBudget,
	}), nil
}

func Submit(s State, actor string, now time.Time) (Outcome, error) {
	if err := requireActor(actor); err != nil {
		return Outcome{}, err
	}
	if !s.PR.Status.AllowSubmit() {
		return Outcome{}, models.InvalidTransitionErrorf("only draft PRs can be submitted, current status %v", s.PR.Status)
	}
	if len(s.Items) == 0 {
		return Outcome{}, models.ValidationErrorf("PR must have at least one item to submit")
	}
	next := s.clone()
	next.PR.Status = models.PRStatusSubmitted
	next.PR.SubmittedDate = &now
	next.PR.CurrentApprovalLevel = currentLevel(next.Approvals)
	if len(next.Approvals) == 0 {
		next.PR.CurrentApprovalLevel = 0
	}
	touch(&next.PR, actor, now)
	return emit(next, actor, now, dbmodels.SubmittedPayload{
		ItemCount:       len(next.Items),
		EstimatedBudget: next.PR.EstimatedBudget,
	}), nil
}

// Approve records the decision for one level. Levels may be approved in any order;
// the request is approved once every entry is.
func Approve(s State, level int, actor, comments string, now time.Time) (Outcome, error) {
	if err := requireActor(actor); err != nil {
		return Outcome{}, err
	}
	idx := s.approvalIndex(level)
	if idx < 0 {
		return Outcome{}, models.NotFoundErrorf("approval level %d", level)
	}
	entry, err := ApproveEntry(s.Approvals[idx], comments, actor, now)
	if err != nil {
		return Outcome{}, err
	}
	next := s.clone()
	next.Approvals[idx] = entry
	completed := allApproved(next.Approvals)
	if completed {
		next.PR.Status = models.PRStatusApproved
		next.PR.ApprovedDate = &now
	}
	next.PR.CurrentApprovalLevel = currentLevel(next.Approvals)
	touch(&next.PR, actor, now)
	return emit(next, actor, now, dbmodels.ApprovalRecordedPayload{
		Level:     level,
		LevelName: entry.LevelName,
		Approver:  actor,
		Comments:  comments,
		Completed: completed,
	}), nil
}

// Reject is accepted in any status. Pending chain entries are skipped.
func Reject(s State, reason, actor string, now time.Time) (Outcome, error) {
	if err := requireActor(actor); err != nil {
		return Outcome{}, err
	}
	if tooLong(reason, 500) {
		return Outcome{}, models.ValidationErrorf("rejection reason cannot exceed 500 characters")
	}
	next := s.clone()
	next.PR.Status = models.PRStatusRejected
	next.PR.RejectionReason = reason
	next.PR.RejectedDate = &now
	skipped := skipPending(next.Approvals, actor, now)
	touch(&next.PR, actor, now)
	return emit(next, actor, now, dbmodels.RejectedPayload{
		Reason:        reason,
		SkippedLevels: skipped,
	}), nil
}

func Cancel(s State, reason, actor string, now time.Time) (Outcome, error) {
	if err := requireActor(actor); err != nil {
		return Outcome{}, err
	}
	if !s.PR.Status.AllowCancel() {
		return Outcome{}, models.InvalidTransitionErrorf("cannot cancel PR in status %v", s.PR.Status)
	}
	if tooLong(reason, 500) {
		return Outcome{}, models.ValidationErrorf("cancellation reason cannot exceed 500 characters")
	}
	next := s.clone()
	next.PR.Status = models.PRStatusCancelled
	next.PR.CancellationReason = reason
	next.PR.CancelledDate = &now
	skipped := skipPending(next.Approvals, actor, now)
	touch(&next.PR, actor, now)
	return emit(next, actor, now, dbmodels.CancelledPayload{
		Reason:        reason,
		SkippedLevels: skipped,
	}), nil
}

func SoftDelete(s State, actor string, now time.Time) (Outcome, error) {
	if err := requireActor(actor); err != nil {
		return Outcome{}, err
	}
	if s.PR.IsDeleted {
		return Outcome{}, models.NotFoundErrorf("purchase request %s", s.PR.ID)
	}
	if !s.PR.Status.AllowDelete() {
		return Outcome{}, models.InvalidTransitionErrorf("Cannot delete approved PR")
	}
	next := s.clone()
	next.PR.IsDeleted = true
	next.PR.DeletedDate = &now
	next.PR.DeletedBy = actor
	touch(&next.PR, actor, now)
	return emit(next, actor, now, dbmodels.DeletedPayload{}), nil
}

// Patch is a partial update. Nil fields are left untouched; a non-nil child list
// replaces the current one wholesale.
type Patch struct {
	Title                 *string
	Description           *string
	Department            *models.Department
	Requestor             *string
	RequestorEmail        *string
	CostCenter            *string
	BusinessJustification *string
	Priority              *models.Priority
	RequiredDate          *time.Time
	EstimatedBudget       *float64
	ActualSpend           *float64
	Currency              *models.Currency
	PreferredVendor       *string
	VendorContact         *string
	VendorEmail           *string
	VendorPhone           *string
	VendorNotes           *string
	DirectManager         *string
	FinanceApprover       *string
	ApproverInstructions  *string
	InternalNotes         *string

	Items       *[]dbmodels.PRItem
	Attachments *[]dbmodels.Attachment
	Approvals   *[]dbmodels.Approval
}

func apply[T comparable](field string, dst *T, value *T, changes *[]dbmodels.FieldChange) {
	if value == nil || *dst == *value {
		return
	}
	*changes = append(*changes, dbmodels.FieldChange{
		Field:  field,
		Before: fmt.Sprint(*dst),
		After:  fmt.Sprint(*value),
	})
	*dst = *value
}

func formatDate(date *time.Time) string {
	if date == nil {
		return ""
	}
	return date.Format(time.DateOnly)
}

// Update merges the patch. Approved, rejected and cancelled requests are read-only.
func Update(s State, patch Patch, actor string, now time.Time) (Outcome, error) {
	if err := requireActor(actor); err != nil {
		return Outcome{}, err
	}
	if !s.PR.Status.AllowEdit() {
		return Outcome{}, models.InvalidTransitionErrorf("cannot update PR in status %v", s.PR.Status)
	}
	next := s.clone()
	pr := &next.PR
	changes := []dbmodels.FieldChange{}
	apply("title", &pr.Title, patch.Title, &changes)
	apply("description", &pr.Description, patch.Description, &changes)
	apply("department", &pr.Department, patch.Department, &changes)
	apply("requestor", &pr.Requestor, patch.Requestor, &changes)
	apply("requestorEmail", &pr.RequestorEmail, patch.RequestorEmail, &changes)
	apply("costCenter", &pr.CostCenter, patch.CostCenter, &changes)
	apply("businessJustification", &pr.BusinessJustification, patch.BusinessJustification, &changes)
	apply("priority", &pr.Priority, patch.Priority, &changes)
	apply("estimatedBudget", &pr.EstimatedBudget, patch.EstimatedBudget, &changes)
	apply("actualSpend", &pr.ActualSpend, patch.ActualSpend, &changes)
	apply("currency", &pr.Currency, patch.Currency, &changes)
	apply("preferredVendor", &pr.PreferredVendor, patch.PreferredVendor, &changes)
	apply("vendorContact", &pr.VendorContact, patch.VendorContact, &changes)
	apply("vendorEmail", &pr.VendorEmail, patch.VendorEmail, &changes)
	apply("vendorPhone", &pr.VendorPhone, patch.VendorPhone, &changes)
	apply("vendorNotes", &pr.VendorNotes, patch.VendorNotes, &changes)
	apply("directManager", &pr.DirectManager, patch.DirectManager, &changes)
	apply("financeApprover", &pr.FinanceApprover, patch.FinanceApprover, &changes)
	apply("approverInstructions", &pr.ApproverInstructions, patch.ApproverInstructions, &changes)
	apply("internalNotes", &pr.InternalNotes, patch.InternalNotes, &changes)
	if patch.RequiredDate != nil && formatDate(pr.RequiredDate) != formatDate(patch.RequiredDate) {
		if err := validateRequiredDate(patch.RequiredDate, now); err != nil {
			return Outcome{}, err
		}
		changes = append(changes, dbmodels.FieldChange{
			Field:  "requiredDate",
			Before: formatDate(pr.RequiredDate),
			After:  formatDate(patch.RequiredDate),
		})
		requiredDate := *patch.RequiredDate
		pr.RequiredDate = &requiredDate
	}
	applyPRDefaults(pr)
	if err := ValidatePR(*pr); err != nil {
		return Outcome{}, err
	}

	payload := dbmodels.UpdatedPayload{Changes: changes}
	var err error
	if patch.Items != nil {
		if next.Items, err = prepareItems(*patch.Items, pr.ID, actor, now); err != nil {
			return Outcome{}, err
		}
		pr.LastItemNumber = len(next.Items)
		payload.ItemsReplaced = true
	}
	if patch.Attachments != nil {
		fresh, err := prepareAttachments(*patch.Attachments, pr.ID, actor, now)
		if err != nil {
			return Outcome{}, err
		}
		kept := make([]dbmodels.Attachment, 0, len(next.Attachments)+len(fresh))
		for _, attachment := range next.Attachments {
			if attachment.IsActive {
				attachment = deactivate(attachment, actor, now)
			}
			kept = append(kept, attachment)
		}
		next.Attachments = append(kept, fresh...)
		payload.AttachmentsReplaced = true
	}
	if patch.Approvals != nil {
		if next.Approvals, err = prepareApprovals(*patch.Approvals, pr.ID, actor, now); err != nil {
			return Outcome{}, err
		}
		pr.TotalApprovalLevels = len(next.Approvals)
		if pr.Status != models.PRStatusDraft {
			pr.CurrentApprovalLevel = currentLevel(next.Approvals)
		}
		payload.ApprovalsReplaced = true
	}
	touch(pr, actor, now)
	return emit(next, actor, now, payload), nil
}
