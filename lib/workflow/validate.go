package workflow

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"procurement-backend/lib/utils/helpers"
	"procurement-backend/models"
	dbmodels "procurement-backend/models/db"
)

var (
	costCenterRe = regexp.MustCompile(`^CC-\d{4}-\d{3}$`)
	emailRe      = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
)

func tooLong(value string, max int) bool {
	return utf8.RuneCountInString(value) > max
}

func maxLen(field, value string, max int) error {
	if tooLong(value, max) {
		return models.ValidationErrorf("%s cannot exceed %d characters", field, max)
	}
	return nil
}

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

func ValidatePR(pr dbmodels.PurchaseRequest) error {
	missing := []string{}
	if strings.TrimSpace(pr.Title) == "" {
		missing = append(missing, "title")
	}
	if pr.Department == "" {
		missing = append(missing, "department")
	}
	if strings.TrimSpace(pr.Requestor) == "" {
		missing = append(missing, "requestor")
	}
	if strings.TrimSpace(pr.CostCenter) == "" {
		missing = append(missing, "costCenter")
	}
	if strings.TrimSpace(pr.BusinessJustification) == "" {
		missing = append(missing, "businessJustification")
	}
	if len(missing) != 0 {
		return models.ValidationErrorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if err := pr.Department.Validate(); err != nil {
		return err
	}
	if err := pr.Priority.Validate(); err != nil {
		return err
	}
	if err := pr.Currency.Validate(); err != nil {
		return err
	}
	if !costCenterRe.MatchString(pr.CostCenter) {
		return models.ValidationErrorf("cost center must be in format CC-YYYY-XXX")
	}
	if pr.EstimatedBudget < 0 || pr.EstimatedBudget > models.MaxEstimatedBudget {
		return models.ValidationErrorf("estimated budget must be between 0 and %d", models.MaxEstimatedBudget)
	}
	if pr.ActualSpend < 0 {
		return models.ValidationErrorf("actual spend cannot be negative")
	}
	if pr.RequestorEmail != "" && !IsValidEmail(pr.RequestorEmail) {
		return models.ValidationErrorf("invalid requestor email")
	}
	if pr.VendorEmail != "" && !IsValidEmail(pr.VendorEmail) {
		return models.ValidationErrorf("invalid vendor email")
	}
	limits := []struct {
		field string
		value string
		max   int
	}{
		{"title", pr.Title, 100},
		{"requestor", pr.Requestor, 50},
		{"businessJustification", pr.BusinessJustification, 500},
		{"preferredVendor", pr.PreferredVendor, 100},
		{"vendorContact", pr.VendorContact, 50},
		{"vendorNotes", pr.VendorNotes, 300},
		{"directManager", pr.DirectManager, 50},
		{"financeApprover", pr.FinanceApprover, 50},
		{"approverInstructions", pr.ApproverInstructions, 300},
		{"internalNotes", pr.InternalNotes, 1000},
		{"rejectionReason", pr.RejectionReason, 500},
	}
	for _, limit := range limits {
		if err := maxLen(limit.field, limit.value, limit.max); err != nil {
			return err
		}
	}
	return nil
}

// validateRequiredDate rejects dates before the current day.
func validateRequiredDate(date *time.Time, now time.Time) error {
	if date == nil {
		return nil
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return models.ValidationErrorf("required date cannot be in the past")
	}
	return nil
}

func ValidateItem(item dbmodels.PRItem) error {
	if strings.TrimSpace(item.Description) == "" {
		return models.ValidationErrorf("item description is required")
	}
	if err := maxLen("item description", item.Description, 200); err != nil {
		return err
	}
	if err := item.Category.Validate(); err != nil {
		return err
	}
	if item.Quantity < 1 || item.Quantity > models.MaxItemQuantity {
		return models.ValidationErrorf("quantity must be between 1 and %d", models.MaxItemQuantity)
	}
	if err := item.Unit.Validate(); err != nil {
		return err
	}
	if item.UnitPrice < 0 || item.UnitPrice > models.MaxItemUnitPrice {
		return models.ValidationErrorf("unit price must be between 0 and %d", models.MaxItemUnitPrice)
	}
	if err := item.Status.Validate(); err != nil {
		return err
	}
	if err := maxLen("supplier", item.Supplier, 100); err != nil {
		return err
	}
	return maxLen("item notes", item.Notes, 200)
}

func ValidateAttachment(attachment dbmodels.Attachment) error {
	missing := []string{}
	if strings.TrimSpace(attachment.Filename) == "" {
		missing = append(missing, "filename")
	}
	if strings.TrimSpace(attachment.OriginalName) == "" {
		missing = append(missing, "originalName")
	}
	if strings.TrimSpace(attachment.MimeType) == "" {
		missing = append(missing, "mimeType")
	}
	if strings.TrimSpace(attachment.Path) == "" {
		missing = append(missing, "path")
	}
	if len(missing) != 0 {
		return models.ValidationErrorf("missing attachment fields: %s", strings.Join(missing, ", "))
	}
	if attachment.Size < 0 || attachment.Size > models.MaxAttachmentSize {
		return models.ValidationErrorf("file size must be between 0 and %d bytes", models.MaxAttachmentSize)
	}
	if err := attachment.Category.Validate(); err != nil {
		return err
	}
	if err := attachment.AccessLevel.Validate(); err != nil {
		return err
	}
	if attachment.Version < 1 {
		return models.ValidationErrorf("attachment version must be at least 1")
	}
	return maxLen("attachment description", attachment.Description, 200)
}

func ValidateApproval(approval dbmodels.Approval) error {
	if approval.Level < 1 || approval.Level > models.MaxApprovalLevel {
		return models.ValidationErrorf("approval level must be between 1 and %d", models.MaxApprovalLevel)
	}
	if err := approval.LevelName.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(approval.Approver) == "" {
		return models.ValidationErrorf("approver name is required")
	}
	if err := maxLen("approver", approval.Approver, 50); err != nil {
		return err
	}
	if approval.ApproverEmail == "" {
		return models.ValidationErrorf("approver email is required")
	}
	if !IsValidEmail(approval.ApproverEmail) {
		return models.ValidationErrorf("invalid approver email: %s", approval.ApproverEmail)
	}
	if approval.DueDate.IsZero() {
		return models.ValidationErrorf("approval due date is required")
	}
	if err := maxLen("approver department", approval.ApproverDepartment, 50); err != nil {
		return err
	}
	return maxLen("comments", approval.Comments, 500)
}

func applyPRDefaults(pr *dbmodels.PurchaseRequest) {
	if pr.Priority == "" {
		pr.Priority = models.PriorityMedium
	}
	if pr.Currency == "" {
		pr.Currency = models.CurrencyINR
	}
	pr.Title = strings.TrimSpace(pr.Title)
	pr.Requestor = strings.TrimSpace(pr.Requestor)
	pr.CostCenter = strings.TrimSpace(pr.CostCenter)
	pr.BusinessJustification = strings.TrimSpace(pr.BusinessJustification)
	pr.RequestorEmail = helpers.NormalizeEmail(pr.RequestorEmail)
	pr.VendorEmail = helpers.NormalizeEmail(pr.VendorEmail)
}

func prepareItem(item dbmodels.PRItem, prID string, number int, actor string, now time.Time) dbmodels.PRItem {
	item.PRID = prID
	item.ItemNumber = number
	if item.Unit == "" {
		item.Unit = models.ItemUnitEach
	}
	if item.Status == "" {
		item.Status = models.ItemStatusPending
	}
	item.CreatedBy = actor
	item.LastModifiedBy = actor
	item.CreatedAt = now
	item.UpdatedAt = now
	item.RecalcTotal()
	return item
}

func prepareAttachment(attachment dbmodels.Attachment, prID, actor string, now time.Time) dbmodels.Attachment {
	attachment.PRID = prID
	if attachment.Category == "" {
		attachment.Category = models.AttachmentCategoryOther
	}
	if attachment.AccessLevel == "" {
		attachment.AccessLevel = models.AccessLevelInternal
	}
	if attachment.Version == 0 {
		attachment.Version = 1
	}
	attachment.IsActive = true
	attachment.UploadDate = now
	attachment.UploadedBy = actor
	attachment.DownloadCount = 0
	attachment.CreatedAt = now
	attachment.UpdatedAt = now
	return attachment
}

func prepareApproval(approval dbmodels.Approval, prID string, level int, actor string, now time.Time) dbmodels.Approval {
	approval.PRID = prID
	approval.Level = level
	approval.ApproverEmail = helpers.NormalizeEmail(approval.ApproverEmail)
	approval.Status = models.ApprovalStatusPending
	approval.ApprovedDate = nil
	approval.CreatedBy = actor
	approval.LastModifiedBy = actor
	approval.CreatedAt = now
	approval.UpdatedAt = now
	return approval
}

func prepareItems(items []dbmodels.PRItem, prID, actor string, now time.Time) ([]dbmodels.PRItem, error) {
	result := make([]dbmodels.PRItem, 0, len(items))
	for idx, item := range items {
		item = prepareItem(item, prID, idx+1, actor, now)
		if err := ValidateItem(item); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

func prepareAttachments(attachments []dbmodels.Attachment, prID, actor string, now time.Time) ([]dbmodels.Attachment, error) {
	result := make([]dbmodels.Attachment, 0, len(attachments))
	for _, attachment := range attachments {
		attachment = prepareAttachment(attachment, prID, actor, now)
		if err := ValidateAttachment(attachment); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, nil
}

func prepareApprovals(approvals []dbmodels.Approval, prID, actor string, now time.Time) ([]dbmodels.Approval, error) {
	result := make([]dbmodels.Approval, 0, len(approvals))
	for idx, approval := range approvals {
		approval = prepareApproval(approval, prID, idx+1, actor, now)
		if err := ValidateApproval(approval); err != nil {
			return nil, err
		}
		result = append(result, approval)
	}
	return result, nil
}
