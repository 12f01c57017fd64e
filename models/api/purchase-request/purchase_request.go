package prapimodels

import (
	"strings"
	"time"

	"procurement-backend/lib/utils/helpers"
	"procurement-backend/models"
	dbmodels "procurement-backend/models/db"
)

type PRData struct {
	Title                 string            `json:"title"`
	Description           string            `json:"description"`
	Department            models.Department `json:"department"`
	Requestor             string            `json:"requestor"`
	RequestorEmail        string            `json:"requestor_email"`
	CostCenter            string            `json:"cost_center"` // CC-YYYY-XXX
	BusinessJustification string            `json:"business_justification"`
	Priority              models.Priority   `json:"priority"`
	RequiredDate          *time.Time        `json:"required_date"`
	EstimatedBudget       float64           `json:"estimated_budget"`
	ActualSpend           float64           `json:"actual_spend"`
	Currency              models.Currency   `json:"currency"`
	PreferredVendor       string            `json:"preferred_vendor"`
	VendorContact         string            `json:"vendor_contact"`
	VendorEmail           string            `json:"vendor_email"`
	VendorPhone           string            `json:"vendor_phone"`
	VendorNotes           string            `json:"vendor_notes"`
	DirectManager         string            `json:"direct_manager"`
	FinanceApprover       string            `json:"finance_approver"`
	ApproverInstructions  string            `json:"approver_instructions"`
	InternalNotes         string            `json:"internal_notes"`
}

type PRCreate struct {
	PRData
	Items       []ItemData       `json:"items"`
	Attachments []AttachmentData `json:"attachments"`
	Approvals   []ApprovalData   `json:"approvals"`
}

func (r PRCreate) Validate() error {
	if len(r.Approvals) > models.MaxApprovalLevel {
		return models.ValidationErrorf("approval chain cannot exceed %d levels", models.MaxApprovalLevel)
	}
	return nil
}

func (r PRCreate) ToDB() dbmodels.PurchaseRequest {
	rec := dbmodels.PurchaseRequest{
		Title:                 r.Title,
		Description:           r.Description,
		Department:            r.Department,
		Requestor:             r.Requestor,
		RequestorEmail:        helpers.NormalizeEmail(r.RequestorEmail),
		CostCenter:            r.CostCenter,
		BusinessJustification: r.BusinessJustification,
		Priority:              r.Priority,
		RequiredDate:          r.RequiredDate,
		EstimatedBudget:       r.EstimatedBudget,
		ActualSpend:           r.ActualSpend,
		Currency:              r.Currency,
		PreferredVendor:       r.PreferredVendor,
		VendorContact:         r.VendorContact,
		VendorEmail:           helpers.NormalizeEmail(r.VendorEmail),
		VendorPhone:           r.VendorPhone,
		VendorNotes:           r.VendorNotes,
		DirectManager:         r.DirectManager,
		FinanceApprover:       r.FinanceApprover,
		ApproverInstructions:  r.ApproverInstructions,
		InternalNotes:         r.InternalNotes,
	}
	rec.Items = ItemsToDB(r.Items)
	rec.Attachments = AttachmentsToDB(r.Attachments)
	rec.Approvals = ApprovalsToDB(r.Approvals)
	return rec
}

// PRUpdate is a partial update: absent fields keep their values,
// a present child list replaces the stored one.
type PRUpdate struct {
	Title                 *string            `json:"title"`
	Description           *string            `json:"description"`
	Department            *models.Department `json:"department"`
	Requestor             *string            `json:"requestor"`
	RequestorEmail        *string            `json:"requestor_email"`
	CostCenter            *string            `json:"cost_center"`
	BusinessJustification *string            `json:"business_justification"`
	Priority              *models.Priority   `json:"priority"`
	RequiredDate          *time.Time         `json:"required_date"`
	EstimatedBudget       *float64           `json:"estimated_budget"`
	ActualSpend           *float64           `json:"actual_spend"`
	Currency              *models.Currency   `json:"currency"`
	PreferredVendor       *string            `json:"preferred_vendor"`
	VendorContact         *string            `json:"vendor_contact"`
	VendorEmail           *string            `json:"vendor_email"`
	VendorPhone           *string            `json:"vendor_phone"`
	VendorNotes           *string            `json:"vendor_notes"`
	DirectManager         *string            `json:"direct_manager"`
	FinanceApprover       *string            `json:"finance_approver"`
	ApproverInstructions  *string            `json:"approver_instructions"`
	InternalNotes         *string            `json:"internal_notes"`
	Items                 *[]ItemData        `json:"items"`
	Attachments           *[]AttachmentData  `json:"attachments"`
	Approvals             *[]ApprovalData    `json:"approvals"`
}

func (r PRUpdate) Validate() error {
	if r.Approvals != nil && len(*r.Approvals) > models.MaxApprovalLevel {
		return models.ValidationErrorf("approval chain cannot exceed %d levels", models.MaxApprovalLevel)
	}
	return nil
}

type ItemData struct {
	Description  string              `json:"description"`
	Category     models.ItemCategory `json:"category"`
	Quantity     int                 `json:"quantity"`
	Unit         models.ItemUnit     `json:"unit"`
	UnitPrice    float64             `json:"unit_price"`
	Supplier     string              `json:"supplier"`
	DeliveryDate *time.Time          `json:"delivery_date"`
	Notes        string              `json:"notes"`
	Status       models.ItemStatus   `json:"status"`
}

func (d ItemData) Validate() error {
	if strings.TrimSpace(d.Description) == "" {
		return models.ValidationErrorf("item description is required")
	}
	return nil
}

func (d ItemData) ToDB() dbmodels.PRItem {
	return dbmodels.PRItem{
		Description:  strings.TrimSpace(d.Description),
		Category:     d.Category,
		Quantity:     d.Quantity,
		Unit:         d.Unit,
		UnitPrice:    d.UnitPrice,
		Supplier:     d.Supplier,
		DeliveryDate: d.DeliveryDate,
		Notes:        d.Notes,
		Status:       d.Status,
	}
}

func ItemsToDB(list []ItemData) []dbmodels.PRItem {
	result := make([]dbmodels.PRItem, 0, len(list))
	for _, item := range list {
		result = append(result, item.ToDB())
	}
	return result
}

type ItemUpdate struct {
	Description  *string              `json:"description"`
	Category     *models.ItemCategory `json:"category"`
	Quantity     *int                 `json:"quantity"`
	Unit         *models.ItemUnit     `json:"unit"`
	UnitPrice    *float64             `json:"unit_price"`
	Supplier     *string              `json:"supplier"`
	DeliveryDate *time.Time           `json:"delivery_date"`
	Notes        *string              `json:"notes"`
	Status       *models.ItemStatus   `json:"status"`
}

func (d ItemUpdate) Validate() error {
	return nil
}

type ItemStatusUpdate struct {
	Status models.ItemStatus `json:"status"`
}

func (d ItemStatusUpdate) Validate() error {
	return d.Status.Validate()
}

type AttachmentData struct {
	Filename     string                    `json:"filename"`
	OriginalName string                    `json:"original_name"`
	MimeType     string                    `json:"mime_type"`
	Size         int64                     `json:"size"`
	Path         string                    `json:"path"`
	Description  string                    `json:"description"`
	Category     models.AttachmentCategory `json:"category"`
	AccessLevel  models.AccessLevel        `json:"access_level"`
	Version      int                       `json:"version"`
}

func (d AttachmentData) Validate() error {
	return nil
}

func (d AttachmentData) ToDB() dbmodels.Attachment {
	return dbmodels.Attachment{
		Filename:     d.Filename,
		OriginalName: d.OriginalName,
		MimeType:     d.MimeType,
		Size:         d.Size,
		Path:         d.Path,
		Description:  d.Description,
		Category:     d.Category,
		AccessLevel:  d.AccessLevel,
		Version:      d.Version,
	}
}

func AttachmentsToDB(list []AttachmentData) []dbmodels.Attachment {
	result := make([]dbmodels.Attachment, 0, len(list))
	for _, attachment := range list {
		result = append(result, attachment.ToDB())
	}
	return result
}

// AttachmentUpload carries the form fields sent next to the uploaded file.
type AttachmentUpload struct {
	Description string                    `form:"description"`
	Category    models.AttachmentCategory `form:"category"`
	AccessLevel models.AccessLevel        `form:"access_level"`
}

type ApprovalData struct {
	LevelName          models.ApprovalLevelName     `json:"level_name"`
	Approver           string                       `json:"approver"`
	ApproverEmail      string                       `json:"approver_email"`
	ApproverDepartment string                       `json:"approver_department"`
	DueDate            time.Time                    `json:"due_date"`
	Conditions         []dbmodels.ApprovalCondition `json:"conditions"`
}

func (d ApprovalData) ToDB() dbmodels.Approval {
	return dbmodels.Approval{
		LevelName:          d.LevelName,
		Approver:           strings.TrimSpace(d.Approver),
		ApproverEmail:      d.ApproverEmail,
		ApproverDepartment: d.ApproverDepartment,
		DueDate:            d.DueDate,
		ApprovalConditions: d.Conditions,
	}
}

func ApprovalsToDB(list []ApprovalData) []dbmodels.Approval {
	result := make([]dbmodels.Approval, 0, len(list))
	for _, approval := range list {
		result = append(result, approval.ToDB())
	}
	return result
}

type ApproveRequest struct {
	Level    int    `json:"level"`
	Comments string `json:"comments"`
}

func (r ApproveRequest) Validate() error {
	if r.Level < 1 || r.Level > models.MaxApprovalLevel {
		return models.ValidationErrorf("approval level must be between 1 and %d", models.MaxApprovalLevel)
	}
	return nil
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}

func (r ReasonRequest) Validate() error {
	return nil
}

type CommentsRequest struct {
	Comments string `json:"comments"`
}

func (r CommentsRequest) Validate() error {
	return nil
}

type DelegateRequest struct {
	DelegateTo string `json:"delegate_to"`
	Reason     string `json:"reason"`
}

func (r DelegateRequest) Validate() error {
	if strings.TrimSpace(r.DelegateTo) == "" {
		return models.ValidationErrorf("delegate_to is required")
	}
	return nil
}

type BulkStatusRequest struct {
	IDs    []string          `json:"ids"`
	Action models.BulkAction `json:"action"`
	Reason string            `json:"reason"`
}

func (r BulkStatusRequest) Validate() error {
	if len(r.IDs) == 0 {
		return models.ValidationErrorf("PR IDs array is required")
	}
	return r.Action.Validate()
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (r BulkDeleteRequest) Validate() error {
	if len(r.IDs) == 0 {
		return models.ValidationErrorf("PR IDs array is required")
	}
	return nil
}
